package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	domain "github.com/nahuarce12/ecommerce/internal/entity"
)

var errBoom = errors.New("boom")

// In-memory ports shared by the usecase tests. They mimic the conditional
// semantics of the real adapters (guarded transitions, guarded decrements)
// so races and redeliveries can be exercised without a database.

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order

	createErr   error
	createCalls int
}

func newFakeOrderRepo(seed ...*domain.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: map[string]*domain.Order{}}
	for _, o := range seed {
		cp := *o
		r.orders[o.ID] = &cp
	}
	return r
}

func (r *fakeOrderRepo) Create(_ context.Context, o *domain.Order, _ bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.createErr != nil {
		return r.createErr
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) TransitionPayment(_ context.Context, id string, from, to domain.PaymentStatus, status domain.Status, refs *domain.PaymentRefs) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.PaymentStatus != from || o.Status == domain.StatusCancelled {
		return false, nil
	}
	o.PaymentStatus = to
	o.Status = status
	if refs != nil {
		o.Refs.PaymentID = refs.PaymentID
		o.Refs.MerchantOrderID = refs.MerchantOrderID
	}
	return true, nil
}

func (r *fakeOrderRepo) SetPaymentRefs(_ context.Context, id string, refs domain.PaymentRefs) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Refs.PaymentID = refs.PaymentID
	o.Refs.MerchantOrderID = refs.MerchantOrderID
	return nil
}

func (r *fakeOrderRepo) SetPreferenceID(_ context.Context, id, preferenceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Refs.PreferenceID = preferenceID
	return nil
}

func (r *fakeOrderRepo) SetShipping(_ context.Context, id string, status domain.Status, trackingNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.TrackingNumber = trackingNumber
	return nil
}

func (r *fakeOrderRepo) CancelStalePending(_ context.Context, olderThan time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var n int64
	for _, o := range r.orders {
		if o.PaymentStatus == domain.PaymentPending && o.Status == domain.StatusPending && o.CreatedAt.Before(cutoff) {
			o.Status = domain.StatusCancelled
			n++
		}
	}
	return n, nil
}

func (r *fakeOrderRepo) get(id string) *domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id]
}

var _ OrderRepo = (*fakeOrderRepo)(nil)

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*domain.ProductPricing

	decrements map[string]int
}

func newFakeProductRepo(seed ...*domain.ProductPricing) *fakeProductRepo {
	r := &fakeProductRepo{
		products:   map[string]*domain.ProductPricing{},
		decrements: map[string]int{},
	}
	for _, p := range seed {
		cp := *p
		r.products[p.ID] = &cp
	}
	return r
}

func (r *fakeProductRepo) GetPricing(_ context.Context, productID string) (*domain.ProductPricing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, productID string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok || p.Stock < qty {
		return ErrInsufficientStock
	}
	p.Stock -= qty
	r.decrements[productID] += qty
	return nil
}

var _ ProductRepo = (*fakeProductRepo)(nil)

type fakeProfileRepo struct {
	profile *domain.Profile
	err     error
}

func (r *fakeProfileRepo) GetByUserID(context.Context, string) (*domain.Profile, error) {
	return r.profile, r.err
}

var _ ProfileRepo = (*fakeProfileRepo)(nil)

func completeProfile(userID string) *domain.Profile {
	return &domain.Profile{
		UserID:       userID,
		FullName:     "Nahuel Arce",
		Email:        "nahuel@example.com",
		Phone:        "341-5551234",
		AddressLine1: "Av. Belgrano 1234",
		City:         "Rosario",
		Province:     "Santa Fe",
		PostalCode:   "2000",
		Country:      "Argentina",
	}
}

type fakeIdem struct {
	mu     sync.Mutex
	locks  map[string]bool
	values map[string]string
}

func newFakeIdem() *fakeIdem {
	return &fakeIdem{locks: map[string]bool{}, values: map[string]string{}}
}

func (s *fakeIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scope + "|" + key
	if s.locks[k] {
		return false, nil
	}
	s.locks[k] = true
	return true, nil
}

func (s *fakeIdem) Remember(_ context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[scope+"|"+key] = value
	return nil
}

func (s *fakeIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[scope+"|"+key]
	return v, ok, nil
}

var _ IdempotencyStore = (*fakeIdem)(nil)

type fakeCache struct {
	mu       sync.Mutex
	statuses map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{statuses: map[string]string{}} }

func (c *fakeCache) SetStatus(_ context.Context, orderID, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[orderID] = status
	return nil
}

func (c *fakeCache) GetStatus(_ context.Context, orderID string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.statuses[orderID]
	return s, ok, nil
}

var _ OrderCache = (*fakeCache)(nil)

type fakePublisher struct {
	mu      sync.Mutex
	created []OrderCreatedMsg
	paid    []OrderPaidMsg
	err     error
}

func (p *fakePublisher) PublishOrderCreated(_ context.Context, msg OrderCreatedMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.created = append(p.created, msg)
	return nil
}

func (p *fakePublisher) PublishOrderPaid(_ context.Context, msg OrderPaidMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.paid = append(p.paid, msg)
	return nil
}

var _ EventPublisher = (*fakePublisher)(nil)

type fakeGateway struct {
	payment    *PaymentInfo
	paymentErr error

	preference    *PreferenceResult
	preferenceErr error
	lastRequest   *PreferenceRequest
}

func (g *fakeGateway) CreatePreference(_ context.Context, req PreferenceRequest) (*PreferenceResult, error) {
	g.lastRequest = &req
	if g.preferenceErr != nil {
		return nil, g.preferenceErr
	}
	return g.preference, nil
}

func (g *fakeGateway) GetPayment(context.Context, string) (*PaymentInfo, error) {
	if g.paymentErr != nil {
		return nil, g.paymentErr
	}
	return g.payment, nil
}

var _ PaymentGateway = (*fakeGateway)(nil)
