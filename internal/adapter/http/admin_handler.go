package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nahuarce12/ecommerce/internal/usecase"
)

// AdminHandler exposes the back-office order actions: confirming offline
// payments, advancing fulfillment, and sweeping expired orders on demand.
type AdminHandler struct {
	confirm  *usecase.ConfirmPayment
	shipping *usecase.UpdateShipping
	expire   *usecase.ExpireOrders
	getOrder *usecase.GetOrder
}

func NewAdminHandler(confirm *usecase.ConfirmPayment, shipping *usecase.UpdateShipping,
	expire *usecase.ExpireOrders, getOrder *usecase.GetOrder) *AdminHandler {
	return &AdminHandler{confirm: confirm, shipping: shipping, expire: expire, getOrder: getOrder}
}

// ConfirmPayment marks a bank-transfer/cash order paid after staff verified
// the payment out of band. Idempotent: confirming twice reports applied=false.
func (h *AdminHandler) ConfirmPayment(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, 5*time.Second)
	defer cancel()

	out, err := h.confirm.Execute(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "applied": out.Applied})
}

type updateShippingReq struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"trackingNumber"`
}

func (h *AdminHandler) UpdateShipping(c *gin.Context) {
	var req updateShippingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := contextWithTimeout(c, 5*time.Second)
	defer cancel()

	if err := h.shipping.Execute(ctx, usecase.UpdateShippingInput{
		OrderID:        c.Param("id"),
		Status:         req.Status,
		TrackingNumber: req.TrackingNumber,
	}); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) GetOrder(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, 2*time.Second)
	defer cancel()

	order, err := h.getOrder.Execute(ctx, "", c.Param("id"), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(order))
}

// ExpireOrders runs the stale-pending sweep immediately instead of waiting
// for the scheduled tick.
func (h *AdminHandler) ExpireOrders(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	n, err := h.expire.Execute(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cancelled": n})
}
