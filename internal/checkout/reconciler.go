package checkout

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

// Catalog looks products up by id.
type Catalog interface {
	Product(ctx context.Context, id string) (*domain.Product, error)
}

// Source is what a checkout starts from: items handed over by the cart page,
// or a single product id from the URL.
type Source struct {
	Items     []domain.LineItem
	ProductID string
}

// fetchTimeout bounds a shared catalog lookup. It runs detached from the
// request that started it, so one caller going away does not fail the others.
const fetchTimeout = 10 * time.Second

type Reconciler struct {
	catalog       Catalog
	sfg           singleflight.Group // the same product listed twice is fetched once
	redirectDelay time.Duration
	logger        *zap.Logger
}

func NewReconciler(catalog Catalog, redirectDelay time.Duration, logger *zap.Logger) *Reconciler {
	if redirectDelay <= 0 {
		redirectDelay = DefaultRedirectDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		catalog:       catalog,
		redirectDelay: redirectDelay,
		logger:        logger,
	}
}

// Reconcile returns a fully hydrated item list. Any failed lookup fails the
// whole list with a *HydrationError.
func (r *Reconciler) Reconcile(ctx context.Context, src Source) ([]domain.LineItem, error) {
	if len(src.Items) > 0 {
		return r.hydrateAll(ctx, src.Items)
	}
	if src.ProductID == "" {
		return []domain.LineItem{}, nil
	}

	product, err := r.fetch(ctx, src.ProductID)
	if err != nil {
		return nil, err
	}
	return []domain.LineItem{{
		Product:      *product,
		SelectedSize: product.FirstSize(),
		Quantity:     domain.MinQuantity,
	}}, nil
}

func (r *Reconciler) hydrateAll(ctx context.Context, items []domain.LineItem) ([]domain.LineItem, error) {
	out := slices.Clone(items)
	g, gctx := errgroup.WithContext(ctx)
	for i := range out {
		if out[i].Product.IsHydrated() {
			continue
		}
		g.Go(func() error {
			product, err := r.fetch(gctx, out[i].Product.ID())
			if err != nil {
				return err
			}
			out[i].Product = *product
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range out {
		out[i].Quantity = clampQuantity(out[i].Quantity)
	}
	return out, nil
}

func (r *Reconciler) fetch(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, r.failure(id, fmt.Errorf("line item has no product id"))
	}
	ch := r.sfg.DoChan(id, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		return r.catalog.Product(fctx, id)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, r.failure(id, ctx.Err())
	}
	if res.Err != nil {
		r.logger.Error("product hydration failed", zap.String("product_id", id), zap.Error(res.Err))
		return nil, r.failure(id, res.Err)
	}
	fetched, _ := res.Val.(*domain.Product)
	if fetched == nil {
		return nil, r.failure(id, fmt.Errorf("catalog returned no product"))
	}
	product := *fetched
	return &product, nil
}

func (r *Reconciler) failure(id string, err error) *HydrationError {
	return &HydrationError{
		ProductID:     id,
		RedirectTo:    HomePath,
		RedirectAfter: r.redirectDelay,
		Err:           err,
	}
}

func clampQuantity(q int) int {
	return max(domain.MinQuantity, min(domain.MaxQuantity, q))
}

// Selection is the mutable item list the wizard edits on step 1.
type Selection []domain.LineItem

// ChangeQuantity adds delta and clamps the result to [1,10].
func (s Selection) ChangeQuantity(index, delta int) error {
	if index < 0 || index >= len(s) {
		return ErrItemIndex
	}
	s[index].Quantity = clampQuantity(s[index].Quantity + delta)
	return nil
}

// ChangeSize replaces the selected size. Products without a size list accept
// any value.
func (s Selection) ChangeSize(index int, size string) error {
	if index < 0 || index >= len(s) {
		return ErrItemIndex
	}
	sizes := s[index].Product.Sizes
	if len(sizes) > 0 && !slices.Contains(sizes, size) {
		return ErrUnknownSize
	}
	s[index].SelectedSize = size
	return nil
}

// Deselect removes the item without confirmation.
func (s Selection) Deselect(index int) (Selection, error) {
	if index < 0 || index >= len(s) {
		return s, ErrItemIndex
	}
	return slices.Delete(s, index, index+1), nil
}
