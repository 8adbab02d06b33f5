package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront-service/internal/api"
	"github.com/fjod/go_cart/storefront-service/internal/checkout"
	"github.com/fjod/go_cart/storefront-service/internal/domain"
	"github.com/fjod/go_cart/storefront-service/internal/storefront"
)

// --- Mocks ---

type CheckoutServiceMock struct {
	view *checkout.View
	conf *checkout.Confirmation
	err  error

	lastStart    checkout.StartRequest
	lastID       string
	lastIndex    int
	lastDelta    int
	lastSize     string
	lastStep     checkout.Step
	lastShipping checkout.Shipping
	lastMethod   domain.PaymentMethod
	lastResult   domain.PaymentResult
}

func (m *CheckoutServiceMock) Start(ctx context.Context, req checkout.StartRequest) (*checkout.View, error) {
	m.lastStart = req
	return m.result()
}

func (m *CheckoutServiceMock) Get(ctx context.Context, id string) (*checkout.View, error) {
	m.lastID = id
	return m.result()
}

func (m *CheckoutServiceMock) ChangeQuantity(ctx context.Context, id string, index, delta int) (*checkout.View, error) {
	m.lastID, m.lastIndex, m.lastDelta = id, index, delta
	return m.result()
}

func (m *CheckoutServiceMock) ChangeSize(ctx context.Context, id string, index int, size string) (*checkout.View, error) {
	m.lastID, m.lastIndex, m.lastSize = id, index, size
	return m.result()
}

func (m *CheckoutServiceMock) Deselect(ctx context.Context, id string, index int) (*checkout.View, error) {
	m.lastID, m.lastIndex = id, index
	return m.result()
}

func (m *CheckoutServiceMock) Navigate(ctx context.Context, id string, target checkout.Step) (*checkout.View, error) {
	m.lastID, m.lastStep = id, target
	return m.result()
}

func (m *CheckoutServiceMock) UpdateShipping(ctx context.Context, id string, shipping checkout.Shipping) (*checkout.View, error) {
	m.lastID, m.lastShipping = id, shipping
	return m.result()
}

func (m *CheckoutServiceMock) SelectPayment(ctx context.Context, id string, method domain.PaymentMethod) (*checkout.View, error) {
	m.lastID, m.lastMethod = id, method
	return m.result()
}

func (m *CheckoutServiceMock) Submit(ctx context.Context, id string) (*checkout.View, *checkout.Confirmation, error) {
	m.lastID = id
	return m.view, m.conf, m.err
}

func (m *CheckoutServiceMock) CompletePayment(ctx context.Context, id string, result domain.PaymentResult) (*checkout.View, *checkout.Confirmation, error) {
	m.lastID, m.lastResult = id, result
	return m.view, m.conf, m.err
}

func (m *CheckoutServiceMock) CloseConfirmation(ctx context.Context, id string) (*checkout.View, error) {
	m.lastID = id
	return m.result()
}

func (m *CheckoutServiceMock) result() (*checkout.View, error) {
	if m.err != nil {
		return m.view, m.err
	}
	return m.view, nil
}

type CartServiceMock struct {
	cart *domain.Cart
	err  error

	lastUser     string
	lastAdd      api.AddCartItemRequest
	lastQuantity int
	lastDelta    int
	stepped      bool
	removed      bool
}

func (m *CartServiceMock) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	m.lastUser = userID
	if userID == "" {
		return nil, storefront.ErrNotSignedIn
	}
	return m.cart, m.err
}

func (m *CartServiceMock) Add(ctx context.Context, userID string, req api.AddCartItemRequest) (*domain.Cart, error) {
	m.lastUser, m.lastAdd = userID, req
	return m.cart, m.err
}

func (m *CartServiceMock) SetQuantity(ctx context.Context, userID, productID, size string, quantity int) (*domain.Cart, error) {
	m.lastUser, m.lastQuantity = userID, quantity
	return m.cart, m.err
}

func (m *CartServiceMock) Step(ctx context.Context, userID, productID, size string, delta int) (*domain.Cart, error) {
	m.lastUser, m.lastDelta, m.stepped = userID, delta, true
	return m.cart, m.err
}

func (m *CartServiceMock) Remove(ctx context.Context, userID, productID, size string) (*domain.Cart, error) {
	m.lastUser, m.removed = userID, true
	return m.cart, m.err
}

type FavoritesServiceMock struct {
	items  []domain.Product
	status storefront.FavoriteStatus
	err    error
}

func (m *FavoritesServiceMock) List(ctx context.Context, userID string) ([]domain.Product, error) {
	return m.items, m.err
}

func (m *FavoritesServiceMock) Toggle(ctx context.Context, userID, productID string) ([]domain.Product, error) {
	return m.items, m.err
}

func (m *FavoritesServiceMock) Status(userID, productID string) storefront.FavoriteStatus {
	return m.status
}

type OrdersServiceMock struct {
	order  *domain.Order
	orders []domain.Order
	err    error
}

func (m OrdersServiceMock) List(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, storefront.ErrNotSignedIn
	}
	return m.orders, m.err
}

func (m OrdersServiceMock) Get(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	if userID == "" {
		return nil, storefront.ErrNotSignedIn
	}
	return m.order, m.err
}

type CatalogServiceMock struct {
	products []domain.Product
	err      error
}

func (m CatalogServiceMock) Products(ctx context.Context, categoryID string) ([]domain.Product, error) {
	return m.products, m.err
}

func (m CatalogServiceMock) Product(ctx context.Context, id string) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.products {
		if m.products[i].ID() == id {
			return &m.products[i], nil
		}
	}
	return nil, &api.APIError{Status: http.StatusNotFound, Message: "Product not found"}
}

func (m CatalogServiceMock) Categories(ctx context.Context) ([]domain.Category, error) {
	return nil, m.err
}

func (m CatalogServiceMock) Category(ctx context.Context, id string) (*domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	if id != "c1" {
		return nil, &api.APIError{Status: http.StatusNotFound, Message: "Category not found"}
	}
	return &domain.Category{ID: "c1", Name: "Sarees"}, nil
}

type SupportServiceMock struct {
	sent    []domain.ContactMessage
	profile *domain.ColorProfile
	err     error
}

func (m *SupportServiceMock) SendMessage(ctx context.Context, msg domain.ContactMessage) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *SupportServiceMock) ColorProfile(ctx context.Context, owner string) (*domain.ColorProfile, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	return m.profile, m.profile != nil, nil
}

func (m *SupportServiceMock) AnalyzeColors(ctx context.Context, owner string, req domain.ColorAnalysisRequest) (*domain.ColorProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ColorProfile{SkinTone: req.SkinTone, SuggestedColors: []domain.Swatch{{Name: "Teal", Hex: "#008080"}}}, nil
}

type UserServiceMock struct {
	user   *domain.User
	result *domain.AuthResult
	err    error
}

func (m UserServiceMock) CheckUser(ctx context.Context, email string) (*api.CheckUserResult, error) {
	return &api.CheckUserResult{}, m.err
}

func (m UserServiceMock) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	return m.result, m.err
}

func (m UserServiceMock) VerifyOTP(ctx context.Context, v domain.OTPVerification) (*domain.AuthResult, error) {
	return m.result, m.err
}

func (m UserServiceMock) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	return m.result, m.err
}

func (m UserServiceMock) Current(ctx context.Context) (*domain.User, error) {
	return m.user, m.err
}

func (m UserServiceMock) Update(ctx context.Context, update map[string]any) (*domain.User, error) {
	return m.user, m.err
}

// --- helpers ---

func withOwner(r *http.Request, owner string) *http.Request {
	return r.WithContext(checkout.WithOwner(r.Context(), owner))
}

func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func shirt() domain.Product {
	return domain.Product{
		MongoID: "p1",
		Name:    "Linen Shirt",
		Price:   decimal.NewFromInt(499),
		Sizes:   domain.Sizes{"S", "M"},
	}
}

func stepOneView() *checkout.View {
	return &checkout.View{
		ID:       "sess-1",
		Step:     checkout.StepSelection,
		StepName: checkout.StepSelection.String(),
		Items: []domain.LineItem{
			{Product: shirt(), SelectedSize: "S", Quantity: 1},
		},
	}
}
