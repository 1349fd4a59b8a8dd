// Package importer normalizes heterogeneous supplier CSV feeds into
// catalog products. Each known feed layout is identified by its exact
// header signature and mapped through a dedicated row parser.
package importer

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fastenworks/partstore/internal/core/domain"
	"github.com/fastenworks/partstore/internal/port"
)

var (
	ErrEmptyFeed         = errors.New("csv content is empty or invalid")
	ErrUnknownFeedFormat = errors.New("no parse function found for headers")
)

// FeedProduct is one normalized feed row.
type FeedProduct struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	ThreadSize string  `json:"threadSize"`
	Material   string  `json:"material"`
	Finish     string  `json:"finish"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

type rowParser func(record map[string]string) (FeedProduct, error)

// feedFormats maps a feed's exact header signature to its row parser.
// New supplier layouts get a new entry here.
var feedFormats = map[string]rowParser{
	"product_id,description,thread_size,material,finish,quantity,price,category": func(record map[string]string) (FeedProduct, error) {
		quantity, err := strconv.Atoi(record["quantity"])
		if err != nil {
			return FeedProduct{}, errors.Wrap(err, "parse quantity")
		}
		price, err := strconv.ParseFloat(record["price"], 64)
		if err != nil {
			return FeedProduct{}, errors.Wrap(err, "parse price")
		}
		return FeedProduct{
			Name:       record["description"],
			Category:   record["category"],
			ThreadSize: record["thread_size"],
			Material:   record["material"],
			Finish:     record["finish"],
			Quantity:   quantity,
			Price:      price,
		}, nil
	},
	"item_number,product_name,threading,composition,surface_treatment,stock,unit_cost,product_category": func(record map[string]string) (FeedProduct, error) {
		quantity, err := strconv.Atoi(record["stock"])
		if err != nil {
			return FeedProduct{}, errors.Wrap(err, "parse stock")
		}
		price, err := strconv.ParseFloat(record["unit_cost"], 64)
		if err != nil {
			return FeedProduct{}, errors.Wrap(err, "parse unit_cost")
		}
		return FeedProduct{
			Name:       record["product_name"],
			Category:   record["product_category"],
			ThreadSize: record["threading"],
			Material:   record["composition"],
			Finish:     record["surface_treatment"],
			Quantity:   quantity,
			Price:      price,
		}, nil
	},
}

// Parse reads a CSV feed, picks the parser matching the header
// signature, and normalizes every row.
func Parse(r io.Reader) ([]FeedProduct, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFeed
	}
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}

	signature := strings.Join(header, ",")
	parse, ok := feedFormats[signature]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownFeedFormat, "%s", signature)
	}

	var products []FeedProduct
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read csv row %d", row)
		}

		fields := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(record) {
				fields[column] = record[i]
			}
		}

		product, err := parse(fields)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", row)
		}
		products = append(products, product)
	}

	if len(products) == 0 {
		return nil, ErrEmptyFeed
	}
	return products, nil
}

// Report summarizes one import run.
type Report struct {
	RunID    string `json:"runId"`
	Rows     int    `json:"rows"`
	Imported int    `json:"imported"`
}

// Importer parses feeds and persists the normalized rows as catalog
// products. Imported stock lands in both the catalog quantity
// descriptor and the orderable inventory count.
type Importer struct {
	products port.ProductStore
	log      *logrus.Entry
}

func New(products port.ProductStore, log *logrus.Entry) *Importer {
	return &Importer{products: products, log: log}
}

func (i *Importer) Import(ctx context.Context, r io.Reader) (*Report, error) {
	rows, err := Parse(r)
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: uuid.NewString(), Rows: len(rows)}
	for _, row := range rows {
		_, err := i.products.Create(ctx, domain.NewProduct{
			Name:       row.Name,
			Category:   row.Category,
			Material:   row.Material,
			ThreadSize: row.ThreadSize,
			Finish:     row.Finish,
			Quantity:   row.Quantity,
			Price:      row.Price,
			Inventory:  row.Quantity,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "import %q", row.Name)
		}
		report.Imported++
	}

	i.log.WithFields(logrus.Fields{
		"run_id":   report.RunID,
		"imported": report.Imported,
	}).Info("csv feed imported")
	return report, nil
}
