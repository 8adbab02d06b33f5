package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_cart/storefront-service/internal/api"
	"github.com/fjod/go_cart/storefront-service/internal/checkout"
	"github.com/fjod/go_cart/storefront-service/internal/domain"
	"github.com/fjod/go_cart/storefront-service/internal/storefront"
)

type CartService interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Add(ctx context.Context, userID string, req api.AddCartItemRequest) (*domain.Cart, error)
	SetQuantity(ctx context.Context, userID, productID, size string, quantity int) (*domain.Cart, error)
	Step(ctx context.Context, userID, productID, size string, delta int) (*domain.Cart, error)
	Remove(ctx context.Context, userID, productID, size string) (*domain.Cart, error)
}

type FavoritesService interface {
	List(ctx context.Context, userID string) ([]domain.Product, error)
	Toggle(ctx context.Context, userID, productID string) ([]domain.Product, error)
	Status(userID, productID string) storefront.FavoriteStatus
}

type CartHandler struct {
	cart      CartService
	favorites FavoritesService
	timeout   time.Duration
}

func NewCartHandler(cart CartService, favorites FavoritesService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cart:      cart,
		favorites: favorites,
		timeout:   timeout,
	}
}

// UpdateItemRequestDTO sets an absolute quantity when Quantity is present and
// steps by Delta otherwise.
type UpdateItemRequestDTO struct {
	Quantity *int `json:"quantity,omitempty"`
	Delta    int  `json:"delta,omitempty"`
}

type CartResponseDTO struct {
	Products  []domain.CartItem `json:"products"`
	Total     string            `json:"total"`
	ItemCount int               `json:"item_count"`
}

type FavoritesResponseDTO struct {
	Items  []domain.Product            `json:"items"`
	Status *storefront.FavoriteStatus `json:"status,omitempty"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.respondCart(w, http.StatusOK)(h.cart.Get(ctx, checkout.OwnerFromContext(r.Context())))
}

// POST /api/v1/cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req api.AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	h.respondCart(w, http.StatusCreated)(h.cart.Add(ctx, checkout.OwnerFromContext(r.Context()), req))
}

// PUT /api/v1/cart/items/{product_id}/{size}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	userID := checkout.OwnerFromContext(r.Context())
	productID, size := chi.URLParam(r, "product_id"), chi.URLParam(r, "size")
	if req.Quantity != nil {
		h.respondCart(w, http.StatusOK)(h.cart.SetQuantity(ctx, userID, productID, size, *req.Quantity))
		return
	}
	h.respondCart(w, http.StatusOK)(h.cart.Step(ctx, userID, productID, size, req.Delta))
}

// DELETE /api/v1/cart/items/{product_id}/{size}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := checkout.OwnerFromContext(r.Context())
	h.respondCart(w, http.StatusOK)(h.cart.Remove(ctx, userID, chi.URLParam(r, "product_id"), chi.URLParam(r, "size")))
}

// GET /api/v1/favorites
func (h *CartHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.favorites.List(ctx, checkout.OwnerFromContext(r.Context()))
	if err != nil {
		handleError(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, FavoritesResponseDTO{Items: items})
}

// POST /api/v1/favorites/{product_id}/toggle
func (h *CartHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := checkout.OwnerFromContext(r.Context())
	productID := chi.URLParam(r, "product_id")
	items, err := h.favorites.Toggle(ctx, userID, productID)
	if err != nil {
		handleError(w, err, "")
		return
	}
	status := h.favorites.Status(userID, productID)
	respondJSON(w, http.StatusOK, FavoritesResponseDTO{Items: items, Status: &status})
}

func (h *CartHandler) respondCart(w http.ResponseWriter, status int) func(*domain.Cart, error) {
	return func(cart *domain.Cart, err error) {
		if err != nil {
			handleError(w, err, "")
			return
		}
		if cart == nil {
			cart = &domain.Cart{}
		}
		products := cart.Products
		if products == nil {
			products = []domain.CartItem{}
		}
		respondJSON(w, status, CartResponseDTO{
			Products:  products,
			Total:     cart.Total().StringFixed(2),
			ItemCount: cart.ItemCount(),
		})
	}
}
