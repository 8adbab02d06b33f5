package storefront

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

type CatalogAPI interface {
	Products(ctx context.Context, categoryID string) ([]domain.Product, error)
	Product(ctx context.Context, id string) (*domain.Product, error)
	IncrementProductView(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]domain.Category, error)
	Category(ctx context.Context, id string) (*domain.Category, error)
}

type CatalogService struct {
	api    CatalogAPI
	logger *zap.Logger
}

func NewCatalogService(catalogAPI CatalogAPI, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{api: catalogAPI, logger: logger}
}

func (s *CatalogService) Products(ctx context.Context, categoryID string) ([]domain.Product, error) {
	products, err := s.api.Products(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// Product returns one product and counts the view in the background.
func (s *CatalogService) Product(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.api.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	go func() {
		viewCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.api.IncrementProductView(viewCtx, id); err != nil {
			s.logger.Debug("product view not counted", zap.String("product_id", id), zap.Error(err))
		}
	}()
	return product, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.api.Categories(ctx)
}

func (s *CatalogService) Category(ctx context.Context, id string) (*domain.Category, error) {
	return s.api.Category(ctx, id)
}
