package checkout

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

// Store persists sessions between requests.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
}

type UserLoader interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
}

type ownerKey struct{}

// WithOwner attaches the id of the signed-in shopper.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}

type StartRequest struct {
	Items     []domain.LineItem `json:"items,omitempty"`
	ProductID string            `json:"product_id,omitempty"`
}

type Service struct {
	store      Store
	reconciler *Reconciler
	submitter  *Submitter
	users      UserLoader
	locks      *keyedMutex
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(store Store, reconciler *Reconciler, submitter *Submitter, users UserLoader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		reconciler: reconciler,
		submitter:  submitter,
		users:      users,
		locks:      newKeyedMutex(),
		logger:     logger,
		now:        time.Now,
	}
}

// Start reconciles the incoming items and opens a session on step 1. A
// hydration failure opens nothing.
func (s *Service) Start(ctx context.Context, req StartRequest) (*View, error) {
	items, err := s.reconciler.Reconcile(ctx, Source{Items: req.Items, ProductID: req.ProductID})
	if err != nil {
		return nil, err
	}

	owner := OwnerFromContext(ctx)
	var user *domain.User
	if owner != "" && s.users != nil {
		user, err = s.users.CurrentUser(ctx)
		if err != nil {
			s.logger.Warn("loading current user failed, continuing as guest", zap.String("owner", owner), zap.Error(err))
			user = nil
		}
	}

	sess := NewSession(owner, user, items, s.now())
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save checkout session: %w", err)
	}
	s.logger.Info("checkout started",
		zap.String("session_id", sess.ID),
		zap.Int("items", len(sess.Items)),
		zap.Bool("authenticated", sess.Authenticated()))
	return sess.View(), nil
}

func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.View(), nil
}

func (s *Service) ChangeQuantity(ctx context.Context, id string, index, delta int) (*View, error) {
	return s.view(s.mutate(ctx, id, func(sess *Session) error {
		if err := sess.requireEditable(StepSelection); err != nil {
			return err
		}
		return sess.selection().ChangeQuantity(index, delta)
	}))
}

func (s *Service) ChangeSize(ctx context.Context, id string, index int, size string) (*View, error) {
	return s.view(s.mutate(ctx, id, func(sess *Session) error {
		if err := sess.requireEditable(StepSelection); err != nil {
			return err
		}
		return sess.selection().ChangeSize(index, size)
	}))
}

func (s *Service) Deselect(ctx context.Context, id string, index int) (*View, error) {
	return s.view(s.mutate(ctx, id, func(sess *Session) error {
		if err := sess.requireEditable(StepSelection); err != nil {
			return err
		}
		items, err := sess.selection().Deselect(index)
		if err != nil {
			return err
		}
		sess.Items = items
		return nil
	}))
}

// Navigate moves the wizard; every successful move asks the UI to scroll up.
func (s *Service) Navigate(ctx context.Context, id string, target Step) (*View, error) {
	v, err := s.view(s.mutate(ctx, id, func(sess *Session) error {
		return sess.Navigate(target)
	}))
	if err == nil {
		v.ScrollToTop = true
	}
	return v, err
}

func (s *Service) UpdateShipping(ctx context.Context, id string, shipping Shipping) (*View, error) {
	return s.view(s.mutate(ctx, id, func(sess *Session) error {
		if err := sess.requireEditable(StepShipping); err != nil {
			return err
		}
		if shipping.Option == "" {
			shipping.Option = domain.ShippingStandard
		}
		if !shipping.Option.Valid() {
			return fmt.Errorf("%w: %q", ErrShippingOption, shipping.Option)
		}
		if idx := shipping.Address.SelectedIndex; idx != nil {
			if sess.User == nil || *idx < 0 || *idx >= len(sess.User.Addresses) {
				return ErrAddressIndex
			}
		}
		sess.Shipping = shipping
		return nil
	}))
}

func (s *Service) SelectPayment(ctx context.Context, id string, method domain.PaymentMethod) (*View, error) {
	return s.view(s.mutate(ctx, id, func(sess *Session) error {
		if err := sess.requireEditable(StepPayment); err != nil {
			return err
		}
		if !method.Valid() {
			return fmt.Errorf("%w: %q", ErrPaymentMethod, method)
		}
		sess.PaymentMethod = method
		return nil
	}))
}

var tracer = otel.Tracer("storefront/checkout")

func (s *Service) Submit(ctx context.Context, id string) (*View, *Confirmation, error) {
	ctx, span := tracer.Start(ctx, "checkout.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("checkout.session_id", id))

	var conf *Confirmation
	sess, err := s.mutate(ctx, id, func(sess *Session) error {
		var err error
		conf, err = s.submitter.Submit(ctx, sess)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit failed")
	}
	v, _ := s.view(sess, nil)
	return v, conf, err
}

func (s *Service) CompletePayment(ctx context.Context, id string, result domain.PaymentResult) (*View, *Confirmation, error) {
	ctx, span := tracer.Start(ctx, "checkout.CompletePayment")
	defer span.End()
	span.SetAttributes(attribute.String("checkout.session_id", id))

	var conf *Confirmation
	sess, err := s.mutate(ctx, id, func(sess *Session) error {
		var err error
		conf, err = s.submitter.CompletePayment(ctx, sess, result)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "payment completion failed")
	}
	v, _ := s.view(sess, nil)
	return v, conf, err
}

// CloseConfirmation dismisses the confirmation and sends the shopper home.
// A submitted session is done with and removed from the store.
func (s *Service) CloseConfirmation(ctx context.Context, id string) (*View, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.ShowConfirmation = false
	if sess.Step.IsTerminal() {
		if err := s.store.Delete(ctx, id); err != nil {
			s.logger.Error("deleting checkout session failed", zap.String("session_id", id), zap.Error(err))
			return nil, fmt.Errorf("delete checkout session: %w", err)
		}
		s.logger.Debug("checkout session closed", zap.String("session_id", id))
	} else if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	v := sess.View()
	v.RedirectTo = HomePath
	return v, nil
}

func (s *Service) load(ctx context.Context, id string) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Owner != "" && sess.Owner != OwnerFromContext(ctx) {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// mutate runs fn under the session lock and saves the result. A failed fn
// is still saved when it left a message, an order id or a payment status
// behind.
func (s *Service) mutate(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	before := fingerprint{sess.Error, sess.OrderID, sess.PaymentStatus}
	if fnErr := fn(sess); fnErr != nil {
		if (fingerprint{sess.Error, sess.OrderID, sess.PaymentStatus}) != before {
			s.save(ctx, sess)
		}
		return sess, fnErr
	}
	if err := s.save(ctx, sess); err != nil {
		return sess, err
	}
	return sess, nil
}

type fingerprint struct {
	message string
	orderID string
	payment PaymentStatus
}

func (s *Service) save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		s.logger.Error("saving checkout session failed", zap.String("session_id", sess.ID), zap.Error(err))
		return fmt.Errorf("save checkout session: %w", err)
	}
	return nil
}

func (s *Service) view(sess *Session, err error) (*View, error) {
	if sess == nil {
		return nil, err
	}
	return sess.View(), err
}
