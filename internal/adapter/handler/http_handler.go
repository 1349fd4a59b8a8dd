package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fastenworks/partstore/internal/core/domain"
	"github.com/fastenworks/partstore/internal/core/service"
	"github.com/fastenworks/partstore/internal/importer"
)

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, input service.PlaceOrderInput) (*domain.Order, error)
}

type InventoryManager interface {
	SetInventory(ctx context.Context, productID int64, newValue int64) (*domain.Product, error)
	GetInventory(ctx context.Context, productID int64) (int, error)
}

type Catalog interface {
	ListProducts(ctx context.Context, filter domain.CatalogFilter) ([]domain.Product, error)
	CreateProduct(ctx context.Context, input domain.NewProduct) (*domain.Product, error)
}

type FeedImporter interface {
	Import(ctx context.Context, r io.Reader) (*importer.Report, error)
}

type HTTPHandler struct {
	orders    OrderPlacer
	inventory InventoryManager
	catalog   Catalog
	importer  FeedImporter
	log       *logrus.Entry
}

func NewHTTPHandler(orders OrderPlacer, inventory InventoryManager, catalog Catalog, feeds FeedImporter, log *logrus.Entry) *HTTPHandler {
	return &HTTPHandler{
		orders:    orders,
		inventory: inventory,
		catalog:   catalog,
		importer:  feeds,
		log:       log,
	}
}

func (h *HTTPHandler) Register(r *gin.Engine) {
	r.GET("/health", h.healthCheck)
	r.POST("/api/orders", h.createOrder)
	r.GET("/api/products", h.listProducts)
	r.POST("/api/products", h.createProduct)
	r.PUT("/api/inventory/:productId", h.updateInventory)
	r.GET("/api/inventory/:productId", h.getInventory)
	r.POST("/api/import-csv", h.importCSV)
}

func (h *HTTPHandler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createOrderRequest struct {
	CustomerName string                `json:"customerName"`
	Products     []orderProductRequest `json:"products"`
}

type orderProductRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (h *HTTPHandler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	input := service.PlaceOrderInput{CustomerName: req.CustomerName}
	for _, p := range req.Products {
		input.Items = append(input.Items, service.LineItemInput{
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
		})
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), input)
	if err != nil {
		h.log.WithError(err).Warn("order placement failed")
		switch {
		case errors.Is(err, domain.ErrInvalidQuantity),
			errors.Is(err, domain.ErrInsufficientInventory):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrOrderRetrievalFailed),
			errors.Is(err, domain.ErrInventoryRetriesExhausted):
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *HTTPHandler) listProducts(c *gin.Context) {
	filter := domain.CatalogFilter{
		Category:   c.Query("category"),
		Material:   c.Query("material"),
		ThreadSize: c.Query("threadSize"),
		Finish:     c.Query("finish"),
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.log.WithError(err).Error("failed to list products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *HTTPHandler) createProduct(c *gin.Context) {
	var req domain.NewProduct
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidProduct),
			errors.Is(err, domain.ErrNegativeInventory),
			errors.Is(err, domain.ErrInventoryOverflow):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.WithError(err).Error("failed to create product")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, product)
}

type updateInventoryRequest struct {
	Inventory *int64 `json:"inventory"`
}

func (h *HTTPHandler) updateInventory(c *gin.Context) {
	productID, ok := h.productIDParam(c)
	if !ok {
		return
	}

	var req updateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Inventory == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no inventory in the request body"})
		return
	}

	product, err := h.inventory.SetInventory(c.Request.Context(), productID, *req.Inventory)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNegativeInventory),
			errors.Is(err, domain.ErrInventoryOverflow):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			h.log.WithError(err).Error("failed to update inventory")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *HTTPHandler) getInventory(c *gin.Context) {
	productID, ok := h.productIDParam(c)
	if !ok {
		return
	}

	inventory, err := h.inventory.GetInventory(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.WithError(err).Error("failed to get inventory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"inventory": inventory})
}

func (h *HTTPHandler) importCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer file.Close()

	report, err := h.importer.Import(c.Request.Context(), file)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrEmptyFeed),
			errors.Is(err, importer.ErrUnknownFeedFormat):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.WithError(err).Error("csv import failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "an error occurred while processing the file"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "file imported successfully", "report": report})
}

func (h *HTTPHandler) productIDParam(c *gin.Context) (int64, bool) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId, it must be a number"})
		return 0, false
	}
	return productID, true
}
