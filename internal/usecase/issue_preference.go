package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nahuarce12/ecommerce/internal/logging"
)

type IssuePreferenceInput struct {
	UserID  string
	OrderID string
}

type IssuePreferenceOutput struct {
	PreferenceID     string
	InitPoint        string
	SandboxInitPoint string
}

// IssuePreference builds a provider checkout session for an order the caller
// owns and hands back the hosted checkout URLs.
type IssuePreference struct {
	orders   OrderRepo
	profiles ProfileRepo
	gateway  PaymentGateway

	baseURL             string
	currency            string
	statementDescriptor string
	preferenceTTL       time.Duration
}

func NewIssuePreference(orders OrderRepo, profiles ProfileRepo, gateway PaymentGateway,
	baseURL, currency, statementDescriptor string, preferenceTTL time.Duration) *IssuePreference {
	return &IssuePreference{
		orders:              orders,
		profiles:            profiles,
		gateway:             gateway,
		baseURL:             baseURL,
		currency:            currency,
		statementDescriptor: statementDescriptor,
		preferenceTTL:       preferenceTTL,
	}
}

func (uc *IssuePreference) Execute(ctx context.Context, in IssuePreferenceInput) (IssuePreferenceOutput, error) {
	if in.UserID == "" {
		return IssuePreferenceOutput{}, ErrUnauthenticated
	}
	if in.OrderID == "" {
		return IssuePreferenceOutput{}, &ValidationError{Reason: "order id is required"}
	}

	order, err := uc.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return IssuePreferenceOutput{}, &PersistenceError{Op: "fetch order", Err: err}
	}
	// Ownership is part of the lookup: someone else's order is "not found".
	if order == nil || order.UserID != in.UserID {
		return IssuePreferenceOutput{}, ErrNotFound
	}

	items := make([]PreferenceItem, 0, len(order.Items)+1)
	for _, it := range order.Items {
		id := it.ProductID
		if id == "" {
			id = it.ID
		}
		items = append(items, PreferenceItem{
			ID:          id,
			Title:       it.ProductName,
			Description: fmt.Sprintf("%s - %s", it.Size, it.Color),
			Quantity:    it.Quantity,
			UnitPrice:   it.PriceAtPurchase,
			Currency:    uc.currency,
		})
	}
	if order.ShippingCost.IsPositive() {
		items = append(items, PreferenceItem{
			ID:          "shipping",
			Title:       "Envío",
			Description: "Costo de envío",
			Quantity:    1,
			UnitPrice:   order.ShippingCost,
			Currency:    uc.currency,
		})
	}

	// Payer hints are optional; a missing profile just means no hints.
	var payer PayerHints
	if profile, err := uc.profiles.GetByUserID(ctx, in.UserID); err == nil && profile != nil {
		payer = PayerHints{
			Name:       profile.FullName,
			Email:      profile.Email,
			Phone:      profile.Phone,
			Street:     profile.AddressLine1,
			PostalCode: profile.PostalCode,
		}
	}

	statusPage := fmt.Sprintf("%s/checkout/success/%s", uc.baseURL, order.ID)
	req := PreferenceRequest{
		ExternalReference:   order.ID,
		Items:               items,
		Payer:               payer,
		SuccessURL:          statusPage + "?status=approved",
		FailureURL:          statusPage + "?status=failure",
		PendingURL:          statusPage + "?status=pending",
		NotificationURL:     uc.baseURL + "/v1/payments/webhook",
		StatementDescriptor: uc.statementDescriptor,
		ExpiresAt:           time.Now().UTC().Add(uc.preferenceTTL),
	}

	res, err := uc.gateway.CreatePreference(ctx, req)
	if err != nil {
		var provErr *ProviderError
		if errors.As(err, &provErr) {
			return IssuePreferenceOutput{}, err
		}
		return IssuePreferenceOutput{}, &ProviderError{Message: err.Error()}
	}

	// Best-effort: the redirect URL is already in hand, so a failure to
	// record the preference id must not fail the checkout.
	if err := uc.orders.SetPreferenceID(ctx, order.ID, res.ID); err != nil {
		logging.FromCtx(ctx).Warn("persist preference id failed",
			"order_id", order.ID, "preference_id", res.ID, "err", err)
	}

	return IssuePreferenceOutput{
		PreferenceID:     res.ID,
		InitPoint:        res.InitPoint,
		SandboxInitPoint: res.SandboxInitPoint,
	}, nil
}
