package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nahuarce12/ecommerce/internal/adapter/http/middleware"
	domain "github.com/nahuarce12/ecommerce/internal/entity"
	"github.com/nahuarce12/ecommerce/internal/usecase"
)

type OrderHandler struct {
	create   *usecase.CreateOrder
	validate *usecase.ValidateStock
	getOrder *usecase.GetOrder
}

func NewOrderHandler(create *usecase.CreateOrder, validate *usecase.ValidateStock, getOrder *usecase.GetOrder) *OrderHandler {
	return &OrderHandler{create: create, validate: validate, getOrder: getOrder}
}

type cartLineReq struct {
	ProductID string `json:"productId" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type createOrderReq struct {
	Items            []cartLineReq `json:"items" binding:"required"`
	PaymentMethod    string        `json:"paymentMethod" binding:"required"`
	ShippingCity     string        `json:"shippingCity" binding:"required"`
	ShippingProvince string        `json:"shippingProvince" binding:"required"`
}

type createOrderResp struct {
	Success       bool   `json:"success"`
	OrderID       string `json:"orderId"`
	Total         string `json:"total"`
	ShippingCost  string `json:"shippingCost"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

func toCartLines(items []cartLineReq) []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(items))
	for _, it := range items {
		size := it.Size
		if size == "" {
			size = "ÚNICO"
		}
		color := it.Color
		if color == "" {
			color = "DEFAULT"
		}
		lines = append(lines, domain.CartLine{
			ProductID: it.ProductID,
			Size:      size,
			Color:     color,
			Quantity:  it.Quantity,
		})
	}
	return lines
}

// CreateOrder handles one checkout submission.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	idemKey := c.GetHeader("X-Idempotency-Key") // prevent duplicated submissions

	ctx, cancel := contextWithTimeout(c, 5*time.Second)
	defer cancel()

	out, err := h.create.Execute(ctx, usecase.CreateOrderInput{
		UserID:           middleware.UserID(c),
		IdempotencyKey:   idemKey,
		PaymentMethod:    req.PaymentMethod,
		ShippingCity:     req.ShippingCity,
		ShippingProvince: req.ShippingProvince,
		Lines:            toCartLines(req.Items),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createOrderResp{
		Success:       true,
		OrderID:       out.OrderID,
		Total:         out.Total.StringFixed(2),
		ShippingCost:  out.ShippingCost.StringFixed(2),
		Status:        string(out.Status),
		PaymentStatus: string(out.PaymentStatus),
	})
}

type validateStockReq struct {
	Items []cartLineReq `json:"items" binding:"required"`
}

type shortageView struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// ValidateStock is the advisory pre-checkout check; it mutates nothing.
func (h *OrderHandler) ValidateStock(c *gin.Context) {
	var req validateStockReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := contextWithTimeout(c, 3*time.Second)
	defer cancel()

	shortages, err := h.validate.Execute(ctx, toCartLines(req.Items))
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]shortageView, 0, len(shortages))
	for _, s := range shortages {
		views = append(views, shortageView(s))
	}
	c.JSON(http.StatusOK, gin.H{"ok": len(views) == 0, "shortages": views})
}

type orderItemView struct {
	ProductID       string `json:"productId,omitempty"`
	ProductName     string `json:"productName"`
	Size            string `json:"size"`
	Color           string `json:"color"`
	Quantity        int    `json:"quantity"`
	PriceAtPurchase string `json:"priceAtPurchase"`
}

type orderView struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"paymentStatus"`
	Total           string          `json:"total"`
	ShippingCost    string          `json:"shippingCost"`
	ShippingAddress string          `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	TrackingNumber  string          `json:"trackingNumber,omitempty"`
	Items           []orderItemView `json:"items"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func toOrderView(o *domain.Order) orderView {
	items := make([]orderItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemView{
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Size:            it.Size,
			Color:           it.Color,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.PriceAtPurchase.StringFixed(2),
		})
	}
	return orderView{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		Total:           o.Total.StringFixed(2),
		ShippingCost:    o.ShippingCost.StringFixed(2),
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   string(o.PaymentMethod),
		TrackingNumber:  o.TrackingNumber,
		Items:           items,
		CreatedAt:       o.CreatedAt,
	}
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, 2*time.Second)
	defer cancel()

	order, err := h.getOrder.Execute(ctx, middleware.UserID(c), c.Param("id"), false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(order))
}

// GetOrderStatus serves the checkout status-page poll from the Redis
// status cache when possible.
func (h *OrderHandler) GetOrderStatus(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, 2*time.Second)
	defer cancel()

	status, err := h.getOrder.Status(ctx, middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": c.Param("id"), "status": status})
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, 3*time.Second)
	defer cancel()

	orders, err := h.getOrder.ListForUser(ctx, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, toOrderView(&orders[i]))
	}
	c.JSON(http.StatusOK, views)
}

// respondError maps the usecase failure taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		valErr   *usecase.ValidationError
		stockErr *usecase.StockError
		provErr  *usecase.ProviderError
	)
	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, usecase.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate_request"})
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": valErr.Reason})
	case errors.As(err, &stockErr):
		views := make([]shortageView, 0, len(stockErr.Shortages))
		for _, s := range stockErr.Shortages {
			views = append(views, shortageView(s))
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": stockErr.Error(), "shortages": views})
	case errors.As(err, &provErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": provErr.Message, "details": gin.H{"status": provErr.Status}})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
