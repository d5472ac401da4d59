package service

import (
	"context"
	"errors"
	"strconv"

	"karat/internal/domain"
	"karat/internal/mailer"
	"karat/internal/payment"
	"karat/internal/repository"
)

// mockProductRepository serves products from per-table maps, mirroring the
// denormalized catalog.
type mockProductRepository struct {
	tables map[string]map[string]*domain.Product
	// consolidated maps id -> source table; empty means consolidated miss
	consolidated map[string]string
	resolveErr   error
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		tables:       make(map[string]map[string]*domain.Product),
		consolidated: make(map[string]string),
	}
}

func (m *mockProductRepository) add(table string, p *domain.Product) {
	if m.tables[table] == nil {
		m.tables[table] = make(map[string]*domain.Product)
	}
	m.tables[table][p.ID] = p
}

func (m *mockProductRepository) FindByID(_ context.Context, table, id string) (*domain.Product, error) {
	if p, ok := m.tables[table][id]; ok {
		return p, nil
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) FindAnyByID(ctx context.Context, tables []string, id string) (*domain.Product, string, error) {
	for _, table := range tables {
		if p, err := m.FindByID(ctx, table, id); err == nil {
			return p, table, nil
		}
	}
	return nil, "", repository.ErrProductNotFound
}

func (m *mockProductRepository) Resolve(ctx context.Context, id string) (*domain.Product, string, error) {
	if m.resolveErr != nil {
		return nil, "", m.resolveErr
	}
	if table, ok := m.consolidated[id]; ok {
		if p, err := m.FindByID(ctx, table, id); err == nil {
			return p, table, nil
		}
	}
	return m.FindAnyByID(ctx, domain.ProductTables, id)
}

// mockOrderRepository records writes keyed the way the table is.
type mockOrderRepository struct {
	pending    []*domain.Order
	pendingErr error
	paid       map[string]*domain.Order // "sessionID/lineIndex"
	paidCalls  int
	paidErr    error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{paid: make(map[string]*domain.Order)}
}

func (m *mockOrderRepository) InsertPending(_ context.Context, order *domain.Order) error {
	if m.pendingErr != nil {
		return m.pendingErr
	}
	m.pending = append(m.pending, order)
	return nil
}

func (m *mockOrderRepository) SavePaid(_ context.Context, orders []*domain.Order) error {
	m.paidCalls++
	if m.paidErr != nil {
		return m.paidErr
	}
	for _, o := range orders {
		m.paid[orderKey(o)] = o
	}
	return nil
}

func (m *mockOrderRepository) FindBySession(_ context.Context, sessionID string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range m.paid {
		if o.StripeSessionID == sessionID {
			out = append(out, o)
		}
	}
	return out, nil
}

func orderKey(o *domain.Order) string {
	return o.StripeSessionID + "/" + strconv.Itoa(o.LineIndex)
}

// mockGateway captures the session request and answers with a fixed URL.
type mockGateway struct {
	customerID  string
	customerErr error
	session     *payment.Session
	sessionErr  error
	lastRequest *payment.SessionRequest
}

func (m *mockGateway) CreateCheckoutSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	m.lastRequest = &req
	if m.sessionErr != nil {
		return nil, m.sessionErr
	}
	if m.session != nil {
		return m.session, nil
	}
	return &payment.Session{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

func (m *mockGateway) FindCustomerByEmail(_ context.Context, _ string) (string, error) {
	return m.customerID, m.customerErr
}

// mockPromoService answers a fixed validation result.
type mockPromoService struct {
	result PromoResult
	err    error
}

func (m *mockPromoService) Validate(_ context.Context, _ string) (PromoResult, error) {
	return m.result, m.err
}

// mockPromoRepository backs the real promo service in its tests.
type mockPromoRepository struct {
	codes map[string]*domain.PromoCode
}

func (m *mockPromoRepository) FindByCode(_ context.Context, code string) (*domain.PromoCode, error) {
	if p, ok := m.codes[code]; ok {
		return p, nil
	}
	return nil, repository.ErrPromoCodeNotFound
}

// mockSender records the last message instead of talking to a provider.
type mockSender struct {
	last *mailer.Message
	err  error
}

func (m *mockSender) Send(_ context.Context, msg mailer.Message) (string, error) {
	m.last = &msg
	if m.err != nil {
		return "", m.err
	}
	return "email_123", nil
}

var errStorage = errors.New("storage unavailable")
