package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nahuarce12/ecommerce/internal/adapter/http/middleware"
	"github.com/nahuarce12/ecommerce/internal/logging"
	"github.com/nahuarce12/ecommerce/internal/security"
	"github.com/nahuarce12/ecommerce/internal/usecase"
)

type PaymentHandler struct {
	preference *usecase.IssuePreference
	webhook    *usecase.ProcessNotification
	verifier   *security.WebhookVerifier // nil disables signature checks
}

func NewPaymentHandler(preference *usecase.IssuePreference, webhook *usecase.ProcessNotification,
	verifier *security.WebhookVerifier) *PaymentHandler {
	return &PaymentHandler{preference: preference, webhook: webhook, verifier: verifier}
}

type preferenceReq struct {
	OrderID string `json:"orderId" binding:"required"`
}

type preferenceResp struct {
	Success          bool   `json:"success"`
	PreferenceID     string `json:"preferenceId"`
	InitPoint        string `json:"initPoint"`
	SandboxInitPoint string `json:"sandboxInitPoint,omitempty"`
}

// CreatePreference builds the provider checkout session for an order owned
// by the caller and returns the hosted checkout URLs.
func (h *PaymentHandler) CreatePreference(c *gin.Context) {
	var req preferenceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	out, err := h.preference.Execute(ctx, usecase.IssuePreferenceInput{
		UserID:  middleware.UserID(c),
		OrderID: req.OrderID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preferenceResp{
		Success:          true,
		PreferenceID:     out.PreferenceID,
		InitPoint:        out.InitPoint,
		SandboxInitPoint: out.SandboxInitPoint,
	})
}

// webhookPayload accepts both notification shapes the provider has used:
//   legacy: { "resource": "123", "topic": "payment" }
//   current: { "type": "payment", "data": { "id": "123" }, "action": "..." }
type webhookPayload struct {
	Type     string `json:"type"`
	Topic    string `json:"topic"`
	Resource string `json:"resource"`
	Data     struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (p webhookPayload) kind() string {
	if p.Type != "" {
		return p.Type
	}
	return p.Topic
}

func (p webhookPayload) paymentID() string {
	if p.Data.ID != "" {
		return p.Data.ID
	}
	return p.Resource
}

// Webhook receives provider payment callbacks. The response contract keeps
// the provider's retry loop sane: 200 for processed or intentionally
// ignored notifications, 4xx for malformed input, 5xx only when a retry
// could plausibly help.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		middleware.WebhookOutcomes.WithLabelValues("error").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "unparseable notification"})
		return
	}

	if h.verifier != nil {
		err := h.verifier.Verify(c.GetHeader("x-signature"), c.GetHeader("x-request-id"), payload.paymentID())
		if err != nil {
			logging.From(c).Warn("webhook signature rejected", "err", err)
			middleware.WebhookOutcomes.WithLabelValues("error").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	}

	// Bounded: the usecase re-queries the provider on this context.
	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	outcome, err := h.webhook.Execute(ctx, usecase.NotificationInput{
		Kind:      payload.kind(),
		PaymentID: payload.paymentID(),
	})
	if err != nil {
		middleware.WebhookOutcomes.WithLabelValues("error").Inc()

		var (
			provErr *usecase.ProviderError
			perErr  *usecase.PersistenceError
		)
		switch {
		case errors.Is(err, usecase.ErrNoPaymentID), errors.Is(err, usecase.ErrNoOrderReference):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, usecase.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.As(err, &provErr):
			// Provider fetch failed; their retry may succeed.
			c.JSON(http.StatusBadGateway, gin.H{"error": provErr.Message})
		case errors.As(err, &perErr):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error updating order"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		}
		return
	}

	middleware.WebhookOutcomes.WithLabelValues(string(outcome)).Inc()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
