package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront-service/internal/api"
	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

var (
	ErrInvalidContact       = errors.New("name, a valid email and a message are required")
	ErrInvalidColorAnalysis = errors.New("skin tone, hair color and eye color are required")
)

type SupportAPI interface {
	SendContactMessage(ctx context.Context, msg domain.ContactMessage) error
	ColorProfile(ctx context.Context) (*domain.ColorProfile, error)
	AnalyzeColors(ctx context.Context, req domain.ColorAnalysisRequest) (*domain.ColorProfile, error)
}

// SupportService fronts the contact form and the color analysis tool.
type SupportService struct {
	api      SupportAPI
	validate *validator.Validate
	logger   *zap.Logger
}

func NewSupportService(supportAPI SupportAPI, logger *zap.Logger) *SupportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupportService{
		api:      supportAPI,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// SendMessage forwards a contact message. Signing in is not required.
func (s *SupportService) SendMessage(ctx context.Context, msg domain.ContactMessage) error {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.ToLower(strings.TrimSpace(msg.Email))
	msg.Message = strings.TrimSpace(msg.Message)
	if err := s.validate.Struct(msg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContact, err)
	}
	if err := s.api.SendContactMessage(ctx, msg); err != nil {
		s.logger.Warn("contact message not sent", zap.Error(err))
		return err
	}
	return nil
}

// ColorProfile returns the shopper's saved analysis. found is false when
// they have never run one.
func (s *SupportService) ColorProfile(ctx context.Context, owner string) (*domain.ColorProfile, bool, error) {
	if owner == "" {
		return nil, false, ErrNotSignedIn
	}
	profile, err := s.api.ColorProfile(ctx)
	if api.NotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return withSwatches(profile), true, nil
}

func (s *SupportService) AnalyzeColors(ctx context.Context, owner string, req domain.ColorAnalysisRequest) (*domain.ColorProfile, error) {
	if owner == "" {
		return nil, ErrNotSignedIn
	}
	req.SkinTone = strings.TrimSpace(req.SkinTone)
	req.HairColor = strings.TrimSpace(req.HairColor)
	req.EyeColor = strings.TrimSpace(req.EyeColor)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidColorAnalysis, err)
	}
	profile, err := s.api.AnalyzeColors(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("color analysis stored", zap.String("owner", owner), zap.Int("swatches", len(profile.SuggestedColors)))
	return withSwatches(profile), nil
}

func withSwatches(p *domain.ColorProfile) *domain.ColorProfile {
	if p.SuggestedColors == nil {
		p.SuggestedColors = []domain.Swatch{}
	}
	return p
}
