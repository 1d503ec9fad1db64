package usecase

import (
	"context"

	domain "github.com/nahuarce12/ecommerce/internal/entity"
	"github.com/nahuarce12/ecommerce/internal/logging"
)

const idemScopePayment = "payment"

// NotificationInput is a provider callback already normalized from either
// historical payload shape by the HTTP adapter.
type NotificationInput struct {
	Kind      string // "payment" or anything else (ignored)
	PaymentID string
}

type NotificationOutcome string

const (
	// OutcomeIgnored: non-payment notification or a provider status the
	// state machine does not react to. Acknowledged, no mutation.
	OutcomeIgnored NotificationOutcome = "ignored"
	// OutcomeApplied: a state transition happened on this invocation.
	OutcomeApplied NotificationOutcome = "applied"
	// OutcomeNoOp: redelivery or late notification; the order was already in
	// a terminal or cancelled state and nothing changed.
	OutcomeNoOp NotificationOutcome = "no_op"
)

// ProcessNotification handles at-least-once, possibly out-of-order payment
// callbacks. The payload is never trusted: payment status and the order
// reference are re-queried from the provider, and the transition itself is
// a conditional update so concurrent redeliveries cannot double-apply.
type ProcessNotification struct {
	orders  OrderRepo
	gateway PaymentGateway
	idem    IdempotencyStore
	settler *PaymentSettler
}

func NewProcessNotification(orders OrderRepo, gateway PaymentGateway,
	idem IdempotencyStore, settler *PaymentSettler) *ProcessNotification {
	return &ProcessNotification{orders: orders, gateway: gateway, idem: idem, settler: settler}
}

func (uc *ProcessNotification) Execute(ctx context.Context, in NotificationInput) (NotificationOutcome, error) {
	log := logging.FromCtx(ctx)

	if in.Kind != "payment" {
		log.Info("ignoring non-payment notification", "kind", in.Kind)
		return OutcomeIgnored, nil
	}
	if in.PaymentID == "" {
		return "", ErrNoPaymentID
	}

	// Fast path: this payment id already reached a terminal state here.
	if _, seen, _ := uc.idem.Recall(ctx, idemScopePayment, in.PaymentID); seen {
		log.Info("duplicate payment notification", "payment_id", in.PaymentID)
		return OutcomeNoOp, nil
	}

	payment, err := uc.gateway.GetPayment(ctx, in.PaymentID)
	if err != nil {
		return "", err
	}
	if payment.ExternalReference == "" {
		return "", ErrNoOrderReference
	}

	order, err := uc.orders.GetByID(ctx, payment.ExternalReference)
	if err != nil {
		return "", &PersistenceError{Op: "fetch order", Err: err}
	}
	if order == nil {
		return "", ErrNotFound
	}

	refs := &domain.PaymentRefs{
		PaymentID:       payment.ID,
		MerchantOrderID: payment.MerchantOrderID,
	}

	switch payment.Status {
	case ProviderApproved:
		applied, err := uc.settler.MarkPaid(ctx, order, refs)
		if err != nil {
			return "", err
		}
		if !applied {
			// Already paid, or cancelled by the expiry sweep. A redelivery
			// that cannot transition is acknowledged, not retried.
			log.Info("approved notification is a no-op",
				"order_id", order.ID, "payment_status", string(order.PaymentStatus))
			return OutcomeNoOp, nil
		}
		_ = uc.idem.Remember(ctx, idemScopePayment, in.PaymentID, order.ID)
		log.Info("order settled", "order_id", order.ID, "payment_id", payment.ID)
		return OutcomeApplied, nil

	case ProviderRejected, ProviderCancelled:
		applied, err := uc.orders.TransitionPayment(ctx, order.ID,
			domain.PaymentPending, domain.PaymentFailed, order.Status, refs)
		if err != nil {
			return "", &PersistenceError{Op: "transition payment", Err: err}
		}
		if !applied {
			return OutcomeNoOp, nil
		}
		_ = uc.idem.Remember(ctx, idemScopePayment, in.PaymentID, order.ID)
		log.Info("payment failed", "order_id", order.ID, "payment_id", payment.ID, "provider_status", payment.Status)
		return OutcomeApplied, nil

	case ProviderInProcess, ProviderPending:
		// Keep pending_payment, just refresh the provider identifiers.
		if err := uc.orders.SetPaymentRefs(ctx, order.ID, *refs); err != nil {
			return "", &PersistenceError{Op: "set payment refs", Err: err}
		}
		return OutcomeApplied, nil
	}

	log.Info("ignoring provider status", "order_id", order.ID, "provider_status", payment.Status)
	return OutcomeIgnored, nil
}
