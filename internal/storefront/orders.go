package storefront

import (
	"context"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

type OrdersAPI interface {
	MyOrders(ctx context.Context) ([]domain.Order, error)
	Order(ctx context.Context, id string) (*domain.Order, error)
}

type OrdersService struct {
	api OrdersAPI
}

func NewOrdersService(ordersAPI OrdersAPI) *OrdersService {
	return &OrdersService{api: ordersAPI}
}

func (s *OrdersService) List(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, ErrNotSignedIn
	}
	orders, err := s.api.MyOrders(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *OrdersService) Get(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	if userID == "" {
		return nil, ErrNotSignedIn
	}
	return s.api.Order(ctx, orderID)
}
