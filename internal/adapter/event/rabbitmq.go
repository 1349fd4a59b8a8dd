package event

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/fastenworks/partstore/internal/core/domain"
)

const orderCreatedQueue = "order.created"

// OrderCreatedEvent is the wire shape consumed by fulfillment.
type OrderCreatedEvent struct {
	OrderID      int64                   `json:"order_id"`
	CustomerName string                  `json:"customer_name"`
	Items        []OrderCreatedEventItem `json:"items"`
}

type OrderCreatedEventItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// RabbitMQ wraps one connection and channel pair.
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func Dial(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "connect to rabbitmq")
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}

	return &RabbitMQ{conn: conn, channel: channel}, nil
}

func (r *RabbitMQ) Close() {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}

// OrderPublisher publishes order.created events to a durable queue.
type OrderPublisher struct {
	mq  *RabbitMQ
	log *logrus.Entry
}

func NewOrderPublisher(mq *RabbitMQ, log *logrus.Entry) (*OrderPublisher, error) {
	_, err := mq.channel.QueueDeclare(
		orderCreatedQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "declare queue %s", orderCreatedQueue)
	}
	return &OrderPublisher{mq: mq, log: log}, nil
}

func (p *OrderPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	event := OrderCreatedEvent{
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
	}
	for _, item := range order.LineItems {
		event.Items = append(event.Items, OrderCreatedEventItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "encode order.created event")
	}

	err = p.mq.channel.PublishWithContext(ctx,
		"",                // default exchange
		orderCreatedQueue, // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        data,
		},
	)
	if err != nil {
		return errors.Wrap(err, "publish order.created")
	}

	p.log.WithField("order_id", order.ID).Info("published order.created event")
	return nil
}

// NopPublisher drops events; used when AMQP is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(context.Context, *domain.Order) error {
	return nil
}
