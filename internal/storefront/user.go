package storefront

import (
	"context"
	"strings"

	"github.com/fjod/go_cart/storefront-service/internal/api"
	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

type AuthAPI interface {
	CheckUser(ctx context.Context, email string) (*api.CheckUserResult, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error)
	VerifyOTP(ctx context.Context, v domain.OTPVerification) (*domain.AuthResult, error)
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
	UpdateUser(ctx context.Context, update any) (*domain.User, error)
}

// UserService passes authentication through to the storefront API; tokens
// are issued and checked there.
type UserService struct {
	api AuthAPI
}

func NewUserService(authAPI AuthAPI) *UserService {
	return &UserService{api: authAPI}
}

func (s *UserService) CheckUser(ctx context.Context, email string) (*api.CheckUserResult, error) {
	return s.api.CheckUser(ctx, strings.TrimSpace(strings.ToLower(email)))
}

func (s *UserService) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	reg.Email = strings.TrimSpace(strings.ToLower(reg.Email))
	return s.api.Register(ctx, reg)
}

func (s *UserService) VerifyOTP(ctx context.Context, v domain.OTPVerification) (*domain.AuthResult, error) {
	return s.api.VerifyOTP(ctx, v)
}

func (s *UserService) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	creds.Email = strings.TrimSpace(strings.ToLower(creds.Email))
	return s.api.Login(ctx, creds)
}

func (s *UserService) Current(ctx context.Context) (*domain.User, error) {
	return s.api.CurrentUser(ctx)
}

func (s *UserService) Update(ctx context.Context, update map[string]any) (*domain.User, error) {
	return s.api.UpdateUser(ctx, update)
}
