package storefront

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront-service/internal/api"
	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

func cartWith(entries ...domain.CartItem) *domain.Cart {
	return &domain.Cart{Products: entries}
}

func entry(id, size string, qty int, price int64) domain.CartItem {
	return domain.CartItem{
		Product:  &domain.Product{MongoID: id, Name: "Kurti " + id, Price: decimal.NewFromInt(price)},
		Size:     size,
		Quantity: qty,
		Price:    decimal.NewFromInt(price),
	}
}

type mockCartAPI struct {
	mu       sync.Mutex
	cart     *domain.Cart
	err      error
	getCalls atomic.Int32
	release  chan struct{}

	updated []int
	removed []string
	added   []api.AddCartItemRequest
}

func (m *mockCartAPI) Cart(context.Context) (*domain.Cart, error) {
	m.getCalls.Add(1)
	if m.release != nil {
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m *mockCartAPI) AddCartItem(_ context.Context, req api.AddCartItemRequest) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added = append(m.added, req)
	if m.err != nil {
		return nil, m.err
	}
	m.cart.Products = append(m.cart.Products, entry(req.ProductID, req.Size, req.Quantity, 100))
	return m.cart, nil
}

func (m *mockCartAPI) UpdateCartItem(_ context.Context, productID, size string, quantity int) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, quantity)
	if m.err != nil {
		return nil, m.err
	}
	if e := m.cart.Find(productID, size); e != nil {
		e.Quantity = quantity
	}
	return m.cart, nil
}

func (m *mockCartAPI) RemoveCartItem(_ context.Context, productID, size string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, productID+"/"+size)
	if m.err != nil {
		return nil, m.err
	}
	kept := m.cart.Products[:0]
	for _, e := range m.cart.Products {
		if e.Product.ID() == productID && e.Size == size {
			continue
		}
		kept = append(kept, e)
	}
	m.cart.Products = kept
	return m.cart, nil
}

type mockFavoritesAPI struct {
	mu      sync.Mutex
	items   []domain.Product
	err     error
	adds    int
	removes int
	started chan struct{}
	release chan struct{}
}

func (m *mockFavoritesAPI) Favorites(context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.Product{}, m.items...), nil
}

func (m *mockFavoritesAPI) wait() {
	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.release != nil {
		<-m.release
	}
}

func (m *mockFavoritesAPI) AddFavorite(_ context.Context, productID string) ([]domain.Product, error) {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adds++
	if m.err != nil {
		return nil, m.err
	}
	m.items = append(m.items, domain.Product{MongoID: productID})
	return append([]domain.Product{}, m.items...), nil
}

func (m *mockFavoritesAPI) RemoveFavorite(_ context.Context, productID string) ([]domain.Product, error) {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removes++
	if m.err != nil {
		return nil, m.err
	}
	kept := []domain.Product{}
	for _, p := range m.items {
		if p.ID() != productID {
			kept = append(kept, p)
		}
	}
	m.items = kept
	return append([]domain.Product{}, m.items...), nil
}
