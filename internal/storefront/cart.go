package storefront

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_cart/storefront-service/internal/api"
	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

var (
	ErrNotSignedIn   = errors.New("sign in to use the cart")
	ErrCartItemGone  = errors.New("item is not in the cart")
	ErrInvalidAmount = errors.New("quantity must be at least 1")
)

type CartAPI interface {
	Cart(ctx context.Context) (*domain.Cart, error)
	AddCartItem(ctx context.Context, req api.AddCartItemRequest) (*domain.Cart, error)
	UpdateCartItem(ctx context.Context, productID, size string, quantity int) (*domain.Cart, error)
	RemoveCartItem(ctx context.Context, productID, size string) (*domain.Cart, error)
}

// CartService mirrors the remote cart. Every remote answer replaces the
// cached copy; the cache is only a read-through layer.
type CartService struct {
	api    CartAPI
	cache  CartCache
	sfg    singleflight.Group // Prevents cache stampede
	logger *zap.Logger
}

func NewCartService(cartAPI CartAPI, cache CartCache, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{api: cartAPI, cache: cache, logger: logger}
}

// cartFetchTimeout bounds a shared remote read. The read is detached from the
// request that started it; every caller still honours its own context.
const cartFetchTimeout = 10 * time.Second

// Get serves the cached cart of owner or reads it from the storefront API.
// Concurrent reads for one owner share a single remote call.
func (s *CartService) Get(ctx context.Context, owner string) (*domain.Cart, error) {
	if owner == "" {
		return nil, ErrNotSignedIn
	}
	ch := s.sfg.DoChan(owner, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cartFetchTimeout)
		defer cancel()
		return s.load(fctx, owner)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Cart), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *CartService) load(ctx context.Context, owner string) (*domain.Cart, error) {
	if s.cache != nil {
		cart, err := s.cache.Get(ctx, owner)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("cart cache get failed", zap.String("owner", owner), zap.Error(err))
		}
	}

	cart, err := s.api.Cart(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, owner, cart)
	return cart, nil
}

func (s *CartService) Add(ctx context.Context, owner string, req api.AddCartItemRequest) (*domain.Cart, error) {
	if owner == "" {
		return nil, ErrNotSignedIn
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		return nil, ErrInvalidAmount
	}
	return s.apply(ctx, owner, func() (*domain.Cart, error) {
		return s.api.AddCartItem(ctx, req)
	})
}

// SetQuantity writes an absolute quantity. Anything below 1 removes the
// item, which is what decrementing a single item on the cart page does.
func (s *CartService) SetQuantity(ctx context.Context, owner, productID, size string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return s.Remove(ctx, owner, productID, size)
	}
	if owner == "" {
		return nil, ErrNotSignedIn
	}
	return s.apply(ctx, owner, func() (*domain.Cart, error) {
		return s.api.UpdateCartItem(ctx, productID, size, quantity)
	})
}

// Step changes the quantity of an item already in the cart by delta.
func (s *CartService) Step(ctx context.Context, owner, productID, size string, delta int) (*domain.Cart, error) {
	cart, err := s.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	entry := cart.Find(productID, size)
	if entry == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrCartItemGone, productID, size)
	}
	return s.SetQuantity(ctx, owner, productID, size, entry.Quantity+delta)
}

func (s *CartService) Remove(ctx context.Context, owner, productID, size string) (*domain.Cart, error) {
	if owner == "" {
		return nil, ErrNotSignedIn
	}
	return s.apply(ctx, owner, func() (*domain.Cart, error) {
		return s.api.RemoveCartItem(ctx, productID, size)
	})
}

// Clear empties the local cart state after an order. The remote cart has no
// clear endpoint and is left as is.
func (s *CartService) Clear(ctx context.Context, owner string) error {
	if owner == "" || s.cache == nil {
		return nil
	}
	if err := s.cache.Set(ctx, owner, &domain.Cart{Products: []domain.CartItem{}}); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.logger.Debug("local cart cleared", zap.String("owner", owner))
	return nil
}

func (s *CartService) apply(ctx context.Context, owner string, call func() (*domain.Cart, error)) (*domain.Cart, error) {
	cart, err := call()
	if err != nil {
		s.logger.Warn("remote cart update failed", zap.String("owner", owner), zap.Error(err))
		s.invalidate(ctx, owner)
		return nil, err
	}
	s.store(ctx, owner, cart)
	return cart, nil
}

func (s *CartService) store(ctx context.Context, owner string, cart *domain.Cart) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, owner, cart); err != nil {
		s.logger.Warn("cart cache set failed", zap.String("owner", owner), zap.Error(err))
	}
}

func (s *CartService) invalidate(ctx context.Context, owner string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, owner); err != nil {
		s.logger.Warn("cart cache invalidate failed", zap.String("owner", owner), zap.Error(err))
	}
}
