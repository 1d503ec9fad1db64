package usecase

import (
	"context"
	"time"

	domain "github.com/nahuarce12/ecommerce/internal/entity"
	"github.com/shopspring/decimal"
)

type OrderRepo interface {
	// Create inserts the order header and its items in one transaction.
	// When decrementStock is true the products' stock is decremented in the
	// same transaction; a line that would go negative fails the whole insert
	// with ErrInsufficientStock.
	Create(ctx context.Context, o *domain.Order, decrementStock bool) error

	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)

	// TransitionPayment applies "set payment_status=to (and status) only if
	// payment_status is still from" as a single conditional update and
	// reports whether a row was affected. refs, when non-nil, persists the
	// provider identifiers in the same statement.
	TransitionPayment(ctx context.Context, id string, from, to domain.PaymentStatus, status domain.Status, refs *domain.PaymentRefs) (bool, error)

	// SetPaymentRefs refreshes provider identifiers without touching status.
	SetPaymentRefs(ctx context.Context, id string, refs domain.PaymentRefs) error

	SetPreferenceID(ctx context.Context, id, preferenceID string) error
	SetShipping(ctx context.Context, id string, status domain.Status, trackingNumber string) error

	// CancelStalePending cancels orders still awaiting payment past the age
	// threshold and returns how many were cancelled.
	CancelStalePending(ctx context.Context, olderThan time.Duration) (int64, error)
}

type ProductRepo interface {
	GetPricing(ctx context.Context, productID string) (*domain.ProductPricing, error)
	// DecrementStock atomically subtracts qty, refusing to go negative.
	DecrementStock(ctx context.Context, productID string, qty int) error
}

type ProfileRepo interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
}

// PreferenceRequest is the provider-agnostic input for a hosted checkout
// session. The gateway adapter translates it to the provider's wire shape.
type PreferenceRequest struct {
	ExternalReference   string
	Items               []PreferenceItem
	Payer               PayerHints
	SuccessURL          string
	FailureURL          string
	PendingURL          string
	NotificationURL     string
	StatementDescriptor string
	ExpiresAt           time.Time
}

type PreferenceItem struct {
	ID          string
	Title       string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Currency    string
}

// PayerHints are optional contact details attached to the checkout session.
// Absent fields are omitted on the wire, never defaulted.
type PayerHints struct {
	Name       string
	Email      string
	Phone      string
	Street     string
	PostalCode string
}

type PreferenceResult struct {
	ID               string
	InitPoint        string
	SandboxInitPoint string
}

// Provider payment statuses the state machine reacts to.
const (
	ProviderApproved  = "approved"
	ProviderRejected  = "rejected"
	ProviderCancelled = "cancelled"
	ProviderInProcess = "in_process"
	ProviderPending   = "pending"
)

// PaymentInfo is the re-queried truth about a payment. Webhook payloads are
// not trusted for status or amount; the gateway is always asked again.
type PaymentInfo struct {
	ID                string
	Status            string
	ExternalReference string
	MerchantOrderID   string
	TransactionAmount decimal.Decimal
}

type PaymentGateway interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*PreferenceResult, error)
	GetPayment(ctx context.Context, paymentID string) (*PaymentInfo, error)
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

type OrderCache interface {
	SetStatus(ctx context.Context, orderID string, status string) error
	GetStatus(ctx context.Context, orderID string) (string, bool, error)
}

type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, msg OrderCreatedMsg) error
	PublishOrderPaid(ctx context.Context, msg OrderPaidMsg) error
}
