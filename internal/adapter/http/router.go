package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nahuarce12/ecommerce/internal/adapter/http/middleware"
	"github.com/nahuarce12/ecommerce/internal/logging"
)

func NewRouter(oh *OrderHandler, ph *PaymentHandler, ah *AdminHandler, th *TokenHandler, authz *middleware.Authz) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", th.IssueToken)

	// Provider callback: unauthenticated, HMAC-verified inside the handler.
	r.POST("/v1/payments/webhook", ph.Webhook)

	v1 := r.Group("/v1")
	{
		v1.POST("/stock/validate", authz.Require("orders.read"), oh.ValidateStock)
		v1.POST("/orders", authz.Require("orders.write"), oh.CreateOrder)
		v1.GET("/orders", authz.Require("orders.read"), oh.ListMyOrders)
		v1.GET("/orders/:id", authz.Require("orders.read"), oh.GetOrderByID)
		v1.GET("/orders/:id/status", authz.Require("orders.read"), oh.GetOrderStatus)
		v1.POST("/payments/preference", authz.Require("orders.write"), ph.CreatePreference)
	}

	admin := r.Group("/v1/admin", authz.Require("orders.admin"))
	{
		admin.GET("/orders/:id", ah.GetOrder)
		admin.POST("/orders/:id/paid", ah.ConfirmPayment)
		admin.PATCH("/orders/:id/shipping", ah.UpdateShipping)
		admin.POST("/orders/expire", ah.ExpireOrders)
	}

	return r
}
