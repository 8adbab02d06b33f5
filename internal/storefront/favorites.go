package storefront

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

var ErrFavoritePending = errors.New("favorite change for this product is still in flight")

type FavoritesAPI interface {
	Favorites(ctx context.Context) ([]domain.Product, error)
	AddFavorite(ctx context.Context, productID string) ([]domain.Product, error)
	RemoveFavorite(ctx context.Context, productID string) ([]domain.Product, error)
}

type FavoriteStatus struct {
	ProductID string `json:"productId"`
	Favorite  bool   `json:"favorite"`
	Pending   bool   `json:"pending"`
}

// FavoritesService holds one favorites list per user, replaced only by
// lists the server confirmed. While a change is in flight the product is
// marked pending and further changes to it are refused.
type FavoritesService struct {
	api    FavoritesAPI
	logger *zap.Logger

	mu    sync.Mutex
	users map[string]*favoriteState
}

type favoriteState struct {
	items   []domain.Product
	loaded  bool
	pending map[string]bool
}

func NewFavoritesService(favoritesAPI FavoritesAPI, logger *zap.Logger) *FavoritesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FavoritesService{
		api:    favoritesAPI,
		logger: logger,
		users:  make(map[string]*favoriteState),
	}
}

// List fetches the list from the server and makes it the confirmed state.
func (s *FavoritesService) List(ctx context.Context, userID string) ([]domain.Product, error) {
	if userID == "" {
		return nil, ErrNotSignedIn
	}
	items, err := s.api.Favorites(ctx)
	if err != nil {
		return nil, err
	}
	s.confirm(userID, items)
	return items, nil
}

// Toggle adds the product when the confirmed list lacks it and removes it
// otherwise.
func (s *FavoritesService) Toggle(ctx context.Context, userID, productID string) ([]domain.Product, error) {
	if err := s.ensureLoaded(ctx, userID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	add := !containsProduct(s.state(userID).items, productID)
	s.mu.Unlock()
	return s.change(ctx, userID, productID, add)
}

func (s *FavoritesService) Add(ctx context.Context, userID, productID string) ([]domain.Product, error) {
	return s.change(ctx, userID, productID, true)
}

func (s *FavoritesService) Remove(ctx context.Context, userID, productID string) ([]domain.Product, error) {
	return s.change(ctx, userID, productID, false)
}

// Status reports the confirmed state of one product.
func (s *FavoritesService) Status(userID, productID string) FavoriteStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	return FavoriteStatus{
		ProductID: productID,
		Favorite:  containsProduct(st.items, productID),
		Pending:   st.pending[productID],
	}
}

func (s *FavoritesService) change(ctx context.Context, userID, productID string, add bool) ([]domain.Product, error) {
	if userID == "" {
		return nil, ErrNotSignedIn
	}

	s.mu.Lock()
	st := s.state(userID)
	if st.pending[productID] {
		s.mu.Unlock()
		return nil, ErrFavoritePending
	}
	st.pending[productID] = true
	s.mu.Unlock()

	var (
		items []domain.Product
		err   error
	)
	if add {
		items, err = s.api.AddFavorite(ctx, productID)
	} else {
		items, err = s.api.RemoveFavorite(ctx, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(st.pending, productID)
	if err != nil {
		s.logger.Warn("favorite change failed",
			zap.String("user_id", userID),
			zap.String("product_id", productID),
			zap.Bool("add", add),
			zap.Error(err))
		return nil, err
	}
	st.items = items
	st.loaded = true
	return items, nil
}

func (s *FavoritesService) ensureLoaded(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrNotSignedIn
	}
	s.mu.Lock()
	loaded := s.state(userID).loaded
	s.mu.Unlock()
	if loaded {
		return nil
	}
	_, err := s.List(ctx, userID)
	return err
}

func (s *FavoritesService) confirm(userID string, items []domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	st.items = items
	st.loaded = true
}

// state must be called with mu held.
func (s *FavoritesService) state(userID string) *favoriteState {
	st, ok := s.users[userID]
	if !ok {
		st = &favoriteState{pending: make(map[string]bool)}
		s.users[userID] = st
	}
	return st
}

func containsProduct(items []domain.Product, productID string) bool {
	return slices.ContainsFunc(items, func(p domain.Product) bool {
		return p.ID() == productID
	})
}
