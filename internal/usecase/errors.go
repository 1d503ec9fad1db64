package usecase

import (
	"errors"
	"fmt"
	"strings"

	domain "github.com/nahuarce12/ecommerce/internal/entity"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrNotFound        = errors.New("order not found")
	ErrDuplicate       = errors.New("duplicate idempotency key")

	// ErrInsufficientStock is returned by the stock decrement primitive when
	// the guarded update matches no row (stock would go negative).
	ErrInsufficientStock = errors.New("insufficient stock")

	// Webhook-only: the notification payload was missing required data.
	ErrNoPaymentID       = errors.New("no payment id in notification")
	ErrNoOrderReference  = errors.New("no order reference in payment")
)

// ValidationError rejects a request before any side effect happens
// (empty cart, bad payment method, incomplete shipping profile).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// StockError reports every cart line whose requested quantity exceeds the
// authoritative stock at the time of the check.
type StockError struct {
	Shortages []domain.Shortage
}

func (e *StockError) Error() string {
	if len(e.Shortages) == 0 {
		return "insufficient stock"
	}
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		name := s.ProductName
		if name == "" {
			name = s.ProductID
		}
		parts = append(parts, fmt.Sprintf("%s: requested %d, available %d", name, s.Requested, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

// ProviderError surfaces a payment-gateway failure with whatever status and
// message the gateway returned.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("payment provider error (status %d): %s", e.Status, e.Message)
	}
	return "payment provider error: " + e.Message
}

// PersistenceError wraps a storage failure. Webhook handling surfaces these
// as 5xx so the provider retries.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
