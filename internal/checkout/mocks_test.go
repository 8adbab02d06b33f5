package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
	"github.com/fjod/go_cart/storefront-service/internal/events"
)

func product(id string, price int64, sizes ...string) domain.Product {
	if sizes == nil {
		sizes = []string{}
	}
	return domain.Product{
		MongoID: id,
		Name:    "Product " + id,
		Price:   decimal.NewFromInt(price),
		Sizes:   sizes,
	}
}

func item(p domain.Product, size string, qty int) domain.LineItem {
	return domain.LineItem{Product: p, SelectedSize: size, Quantity: qty}
}

// MockCatalog implements Catalog for testing
type MockCatalog struct {
	mu       sync.Mutex
	Products map[string]*domain.Product
	Err      error
	Calls    []string
}

func (m *MockCatalog) Product(_ context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, id)
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Products[id]
	if !ok {
		return nil, errors.New("product not found")
	}
	return p, nil
}

// gatedCatalog holds every lookup until release is closed.
type gatedCatalog struct {
	product domain.Product
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedCatalog(p domain.Product) *gatedCatalog {
	return &gatedCatalog{product: p, started: make(chan struct{}), release: make(chan struct{})}
}

func (c *gatedCatalog) Product(ctx context.Context, _ string) (*domain.Product, error) {
	c.once.Do(func() { close(c.started) })
	select {
	case <-c.release:
		p := c.product
		return &p, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// MockOrders implements OrderPlacer for testing
type MockOrders struct {
	Payload *domain.OrderPayload
	Calls   int
	Order   *domain.Order
	Err     error
}

func (m *MockOrders) PlaceOrder(_ context.Context, payload domain.OrderPayload) (*domain.Order, error) {
	m.Calls++
	m.Payload = &payload
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Order, nil
}

// MockGateway implements PaymentGateway for testing
type MockGateway struct {
	BeginCalls  int
	BeginAmount decimal.Decimal
	BeginErr    error
	VerifyCalls int
	VerifyErr   error
}

func (m *MockGateway) Begin(_ context.Context, amount decimal.Decimal) (*domain.GatewayOrder, error) {
	m.BeginCalls++
	m.BeginAmount = amount
	if m.BeginErr != nil {
		return nil, m.BeginErr
	}
	return &domain.GatewayOrder{ID: "order_gw_1", Amount: amount, Currency: "INR"}, nil
}

func (m *MockGateway) Verify(_ context.Context, _ string, _ domain.PaymentResult) error {
	m.VerifyCalls++
	return m.VerifyErr
}

func (m *MockGateway) Currency() string {
	return "INR"
}

// MockProfile implements ProfileUpdater for testing
type MockProfile struct {
	mu      sync.Mutex
	Updates []AddressUpdate
	Err     error
}

func (m *MockProfile) UpdateUser(_ context.Context, update any) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := update.(AddressUpdate); ok {
		m.Updates = append(m.Updates, u)
	}
	return nil, m.Err
}

// MockCart implements CartClearer for testing
type MockCart struct {
	Cleared []string
	Err     error
}

func (m *MockCart) Clear(_ context.Context, owner string) error {
	m.Cleared = append(m.Cleared, owner)
	return m.Err
}

// MockPublisher implements events.Publisher for testing
type MockPublisher struct {
	mu      sync.Mutex
	Events  []events.OrderEvent
	Err     error
	Release chan struct{}
}

func (m *MockPublisher) Publish(ctx context.Context, event events.OrderEvent) error {
	if m.Release != nil {
		select {
		case <-m.Release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return m.Err
}

func (m *MockPublisher) Published() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Events)
}

func (m *MockPublisher) Close() error {
	return nil
}

// MockUsers implements UserLoader for testing
type MockUsers struct {
	User *domain.User
	Err  error
}

func (m *MockUsers) CurrentUser(context.Context) (*domain.User, error) {
	return m.User, m.Err
}

// memoryStore round-trips sessions through JSON like the real stores do.
type memoryStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
	SaveErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: make(map[string][]byte)}
}

func (m *memoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (m *memoryStore) Save(_ context.Context, sess *Session) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = raw
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
