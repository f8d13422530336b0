package services

import (
	"cmp"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"ticketeira/src/db"
	"ticketeira/src/models"
	"ticketeira/src/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// memStore is an in-memory data store with the same atomicity guarantees
// as db.Store: unique session per sale batch and a conditional increment.
type memStore struct {
	mu           sync.Mutex
	events       map[uuid.UUID]*models.Event
	tickets      map[uuid.UUID]*models.Ticket
	users        map[uuid.UUID]*models.User
	feeConfigs   []*models.FeeConfig
	producerFees []*models.ProducerCustomFee
	batches      map[string]*models.SaleBatch
	withdrawals  map[uuid.UUID]*models.WithdrawalRequest
	categories   map[string]*models.Category
	activity     []*models.ActivityLog

	createBatchCalls int
	failCreateBatch  error
}

func newMemStore() *memStore {
	return &memStore{
		events:      map[uuid.UUID]*models.Event{},
		tickets:     map[uuid.UUID]*models.Ticket{},
		users:       map[uuid.UUID]*models.User{},
		batches:     map[string]*models.SaleBatch{},
		withdrawals: map[uuid.UUID]*models.WithdrawalRequest{},
		categories:  map[string]*models.Category{},
	}
}

func (m *memStore) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) GetTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetActiveFeeConfig(ctx context.Context) (*models.FeeConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.feeConfigs {
		if c.IsActive {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetProducerCustomFee(ctx context.Context, producerID uuid.UUID) (*models.ProducerCustomFee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.producerFees {
		if f.IsActive && f.ProducerID == producerID {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindSaleBatch(ctx context.Context, sessionID string) (*models.SaleBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[sessionID]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *b
	cp.Sales = append([]models.Sale(nil), b.Sales...)
	slices.SortFunc(cp.Sales, func(x, y models.Sale) int { return cmp.Compare(x.UnitIndex, y.UnitIndex) })
	return &cp, nil
}

func (m *memStore) CreateSaleBatch(ctx context.Context, batch *models.SaleBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createBatchCalls++
	if m.failCreateBatch != nil {
		return m.failCreateBatch
	}
	if _, ok := m.batches[batch.StripeSessionID]; ok {
		return db.ErrDuplicate
	}
	t, ok := m.tickets[batch.TicketID]
	if !ok || t.QuantitySold+batch.Quantity > t.QuantityTotal {
		return db.ErrInventoryExhausted
	}
	t.QuantitySold += batch.Quantity
	cp := *batch
	cp.Sales = append([]models.Sale(nil), batch.Sales...)
	m.batches[batch.StripeSessionID] = &cp
	return nil
}

func (m *memStore) GetWithdrawal(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.withdrawals[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *memStore) TransitionWithdrawal(ctx context.Context, id uuid.UUID, from types.WithdrawalStatus, changes *models.WithdrawalRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.withdrawals[id]
	if !ok || w.Status != from {
		return db.ErrStaleStatus
	}
	w.Status = changes.Status
	if changes.ApprovedBy != nil {
		w.ApprovedBy, w.ApprovedAt = changes.ApprovedBy, changes.ApprovedAt
	}
	if changes.RejectionReason != nil {
		w.RejectionReason = changes.RejectionReason
	}
	if changes.PayoutReferenceID != nil {
		w.PayoutReferenceID, w.CompletedAt = changes.PayoutReferenceID, changes.CompletedAt
	}
	return nil
}

func (m *memStore) ReplaceFeeConfig(ctx context.Context, cfg *models.FeeConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.feeConfigs {
		c.IsActive = false
	}
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	cfg.IsActive = true
	cp := *cfg
	m.feeConfigs = append(m.feeConfigs, &cp)
	return nil
}

func (m *memStore) ReplaceProducerFee(ctx context.Context, producerID uuid.UUID, fee *models.ProducerCustomFee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.producerFees {
		if f.ProducerID == producerID {
			f.IsActive = false
		}
	}
	if fee == nil {
		return nil
	}
	fee.ID, fee.ProducerID, fee.IsActive = uuid.New(), producerID, true
	cp := *fee
	m.producerFees = append(m.producerFees, &cp)
	return nil
}

func (m *memStore) CategorySlugExists(ctx context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.categories[slug]
	return ok, nil
}

func (m *memStore) CreateCategory(ctx context.Context, category *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[category.Slug]; ok {
		return db.ErrDuplicate
	}
	category.ID = uuid.New()
	m.categories[category.Slug] = category
	return nil
}

func (m *memStore) LogActivity(ctx context.Context, entry *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activity = append(m.activity, entry)
	return nil
}

func (m *memStore) soldOf(ticketID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tickets[ticketID].QuantitySold
}

func (m *memStore) activityActions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var actions []string
	for _, a := range m.activity {
		actions = append(actions, a.Action)
	}
	return actions
}

// fakeGateway keeps created sessions so they can be retrieved and paid.
type fakeGateway struct {
	mu        sync.Mutex
	sessions  map[string]*types.ProviderSession
	requests  []*types.CheckoutSessionRequest
	createErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: map[string]*types.ProviderSession{}}
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req *types.CheckoutSessionRequest) (*types.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	id := "cs_test_" + uuid.NewString()
	g.requests = append(g.requests, req)
	var amountTotal int64
	for _, item := range req.LineItems {
		amountTotal += item.UnitAmount * item.Quantity
	}
	g.sessions[id] = &types.ProviderSession{
		ID:            id,
		PaymentStatus: "unpaid",
		AmountTotal:   amountTotal,
		Metadata:      req.Metadata,
		CustomerEmail: req.CustomerEmail,
	}
	return &types.CheckoutSession{ID: id, URL: "https://checkout.stripe.com/c/pay/" + id}, nil
}

func (g *fakeGateway) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*types.ProviderSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[sessionID]
	if !ok {
		return nil, types.NewError(types.NotFound, "checkout session not found")
	}
	cp := *s
	return &cp, nil
}

func (g *fakeGateway) put(s *types.ProviderSession) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[s.ID] = s
}

func (g *fakeGateway) pay(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[sessionID].PaymentStatus = "paid"
	g.sessions[sessionID].PaymentIntentID = "pi_" + sessionID
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, n *types.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

var errBoom = errors.New("boom")

func buyer() *types.Identity {
	return &types.Identity{ID: uuid.New(), EmailAddress: "buyer@example.com", Role: types.ROLE_BUYER}
}

func admin() *types.Identity {
	return &types.Identity{ID: uuid.New(), EmailAddress: "admin@example.com", Role: types.ROLE_ADMIN, RoleApproved: true}
}
