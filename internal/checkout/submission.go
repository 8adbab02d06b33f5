package checkout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
	"github.com/fjod/go_cart/storefront-service/internal/events"
	"github.com/fjod/go_cart/storefront-service/internal/ledger"
)

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, payload domain.OrderPayload) (*domain.Order, error)
}

type PaymentGateway interface {
	Begin(ctx context.Context, amount decimal.Decimal) (*domain.GatewayOrder, error)
	Verify(ctx context.Context, orderID string, result domain.PaymentResult) error
	Currency() string
}

type ProfileUpdater interface {
	UpdateUser(ctx context.Context, update any) (*domain.User, error)
}

// CartClearer empties the shopper's local cart state.
type CartClearer interface {
	Clear(ctx context.Context, owner string) error
}

// AddressUpdate is the profile update sent when a new address is saved.
type AddressUpdate struct {
	Addresses []domain.Address `json:"addresses"`
}

// Confirmation is returned by a successful submission.
type Confirmation struct {
	OrderID          string               `json:"orderId"`
	PaymentMethod    domain.PaymentMethod `json:"paymentMethod"`
	Total            decimal.Decimal      `json:"total"`
	Gateway          *domain.GatewayOrder `json:"gateway,omitempty"`
	ShowConfirmation bool                 `json:"showConfirmation"`
	Replayed         bool                 `json:"replayed,omitempty"`
}

type Submitter struct {
	orders    OrderPlacer
	gateway   PaymentGateway
	profile   ProfileUpdater
	cart      CartClearer
	ledger    ledger.Repository
	publisher events.Publisher
	logger    *zap.Logger

	saveTimeout time.Duration
	background  sync.WaitGroup
	now         func() time.Time
}

type SubmitterDeps struct {
	Orders    OrderPlacer
	Gateway   PaymentGateway
	Profile   ProfileUpdater
	Cart      CartClearer
	Ledger    ledger.Repository
	Publisher events.Publisher
	Logger    *zap.Logger
	// SaveTimeout bounds the background address save and event publish.
	SaveTimeout time.Duration
}

func NewSubmitter(deps SubmitterDeps) *Submitter {
	s := &Submitter{
		orders:      deps.Orders,
		gateway:     deps.Gateway,
		profile:     deps.Profile,
		cart:        deps.Cart,
		ledger:      deps.Ledger,
		publisher:   deps.Publisher,
		logger:      deps.Logger,
		saveTimeout: deps.SaveTimeout,
		now:         time.Now,
	}
	if s.ledger == nil {
		s.ledger = ledger.NewMemoryRepository()
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.saveTimeout <= 0 {
		s.saveTimeout = 10 * time.Second
	}
	return s
}

// Submit places the order for a session on the payment step. Cash on
// delivery completes the checkout; online methods return the gateway order
// the browser pays against.
func (s *Submitter) Submit(ctx context.Context, sess *Session) (*Confirmation, error) {
	if len(sess.Items) == 0 {
		sess.Error = msgEmptyCart
		return nil, ErrEmptyCart
	}
	if err := sess.requireStep(StepPayment); err != nil {
		return nil, err
	}
	if !sess.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrPaymentMethod, sess.PaymentMethod)
	}

	if sess.OrderPlaced() {
		return s.resume(ctx, sess)
	}

	if entry := s.lookup(ctx, sess.IdempotencyKey); entry != nil {
		s.logger.Info("duplicate submission detected",
			zap.String("idempotency_key", sess.IdempotencyKey),
			zap.String("order_id", entry.OrderID),
			zap.String("status", entry.Status.String()))
		return s.replay(ctx, sess, entry, true)
	}

	if err := sess.validateShipping(); err != nil {
		return nil, err
	}
	pricing := sess.Pricing()
	payload, err := buildPayload(sess, pricing)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.PlaceOrder(ctx, payload)
	if err == nil && order.ID == "" {
		err = errors.New("order response carried no id")
	}
	if err != nil {
		s.logger.Error("order placement failed", zap.String("session_id", sess.ID), zap.Error(err))
		sess.Error = msgPlacementFailed
		return nil, fmt.Errorf("%w: %v", ErrOrderPlacement, err)
	}
	sess.OrderID = order.ID
	sess.PlacedTotal = pricing.Total
	sess.Error = ""
	s.logger.Info("order placed",
		zap.String("session_id", sess.ID),
		zap.String("order_id", order.ID),
		zap.String("payment_method", sess.PaymentMethod.String()))

	s.record(ctx, sess, pricing.Total)
	s.publish(ctx, events.OrderPlaced, sess, payload.OrderItems, pricing.Total)
	s.saveNewAddress(ctx, sess)

	if !sess.PaymentMethod.IsOnline() {
		return s.complete(ctx, sess, pricing.Total, false)
	}
	return s.handOff(ctx, sess, pricing.Total, false)
}

// CompletePayment verifies what the gateway checkout reported. A failed
// verification leaves the order pending so the shopper can pay again.
func (s *Submitter) CompletePayment(ctx context.Context, sess *Session, result domain.PaymentResult) (*Confirmation, error) {
	if sess.Step.IsTerminal() {
		return nil, ErrSessionClosed
	}
	if sess.OrderID == "" || (sess.PaymentStatus != PaymentPending && sess.PaymentStatus != PaymentFailed) {
		return nil, ErrNoPendingPayment
	}

	if err := s.gateway.Verify(ctx, sess.OrderID, result); err != nil {
		s.logger.Warn("payment verification failed",
			zap.String("session_id", sess.ID),
			zap.String("order_id", sess.OrderID),
			zap.Error(err))
		sess.Error = msgVerificationFailed
		sess.PaymentStatus = PaymentFailed
		s.updateLedger(ctx, sess.IdempotencyKey, ledger.StatusPaymentFailed)
		return nil, fmt.Errorf("%w: %v", ErrPaymentVerification, err)
	}

	total := sess.placedTotal()
	sess.PaymentStatus = PaymentPaid
	s.updateLedger(ctx, sess.IdempotencyKey, ledger.StatusPaid)
	s.publish(ctx, events.OrderPaid, sess, nil, total)
	return s.complete(ctx, sess, total, false)
}

// Wait blocks until background profile updates and event publishes have
// finished.
func (s *Submitter) Wait() {
	s.background.Wait()
}

// resume finishes a submission whose order already exists. The ledger entry
// decides method and amount; the copy on the session covers a ledger that
// missed the record.
func (s *Submitter) resume(ctx context.Context, sess *Session) (*Confirmation, error) {
	if entry := s.lookup(ctx, sess.IdempotencyKey); entry != nil && entry.OrderID == sess.OrderID {
		return s.replay(ctx, sess, entry, false)
	}
	total := sess.placedTotal()
	if sess.PaymentStatus == PaymentPaid || !sess.PaymentMethod.IsOnline() {
		return s.complete(ctx, sess, total, false)
	}
	return s.handOff(ctx, sess, total, false)
}

// replay continues from a ledger entry with the method and total the order
// was placed with.
func (s *Submitter) replay(ctx context.Context, sess *Session, entry *ledger.Entry, replayed bool) (*Confirmation, error) {
	sess.OrderID = entry.OrderID
	sess.PlacedTotal = entry.Total
	if method := domain.PaymentMethod(entry.PaymentMethod); method.Valid() {
		sess.PaymentMethod = method
	}
	sess.Error = ""
	switch {
	case entry.Status == ledger.StatusPaid:
		sess.PaymentStatus = PaymentPaid
		return s.complete(ctx, sess, entry.Total, replayed)
	case !sess.PaymentMethod.IsOnline():
		return s.complete(ctx, sess, entry.Total, replayed)
	default:
		return s.handOff(ctx, sess, entry.Total, replayed)
	}
}

func (s *Submitter) complete(ctx context.Context, sess *Session, total decimal.Decimal, replayed bool) (*Confirmation, error) {
	if s.cart != nil {
		if err := s.cart.Clear(ctx, sess.Owner); err != nil {
			s.logger.Warn("clear cart failed", zap.String("owner", sess.Owner), zap.Error(err))
		}
	}
	sess.Gateway = nil
	sess.ShowConfirmation = true
	if err := sess.MarkSubmitted(); err != nil {
		return nil, err
	}
	return &Confirmation{
		OrderID:          sess.OrderID,
		PaymentMethod:    sess.PaymentMethod,
		Total:            total,
		ShowConfirmation: true,
		Replayed:         replayed,
	}, nil
}

func (s *Submitter) handOff(ctx context.Context, sess *Session, total decimal.Decimal, replayed bool) (*Confirmation, error) {
	gw, err := s.gateway.Begin(ctx, total)
	if err != nil {
		s.logger.Error("payment handoff failed",
			zap.String("session_id", sess.ID),
			zap.String("order_id", sess.OrderID),
			zap.Error(err))
		sess.Error = msgGatewayFailed
		return nil, fmt.Errorf("%w: %v", ErrPaymentHandoff, err)
	}
	sess.Gateway = gw
	sess.PaymentStatus = PaymentPending
	sess.Error = ""
	return &Confirmation{
		OrderID:       sess.OrderID,
		PaymentMethod: sess.PaymentMethod,
		Total:         total,
		Gateway:       gw,
		Replayed:      replayed,
	}, nil
}

func (s *Submitter) lookup(ctx context.Context, key string) *ledger.Entry {
	entry, err := s.ledger.GetByIdempotencyKey(ctx, key)
	if err != nil {
		if !errors.Is(err, ledger.ErrIdempotencyKeyNotFound) {
			s.logger.Warn("idempotency lookup failed", zap.String("idempotency_key", key), zap.Error(err))
		}
		return nil
	}
	return entry
}

func (s *Submitter) record(ctx context.Context, sess *Session, total decimal.Decimal) {
	err := s.ledger.Create(ctx, &ledger.Entry{
		IdempotencyKey: sess.IdempotencyKey,
		SessionID:      sess.ID,
		OrderID:        sess.OrderID,
		UserID:         sess.Owner,
		PaymentMethod:  sess.PaymentMethod.String(),
		Total:          total,
		Status:         ledger.StatusPending,
	})
	if err != nil {
		s.logger.Warn("ledger record failed", zap.String("order_id", sess.OrderID), zap.Error(err))
	}
}

func (s *Submitter) updateLedger(ctx context.Context, key string, status ledger.Status) {
	if err := s.ledger.UpdateStatus(ctx, key, status); err != nil {
		s.logger.Warn("ledger status update failed",
			zap.String("idempotency_key", key),
			zap.String("status", status.String()),
			zap.Error(err))
	}
}

// publish sends the order event in the background; the response never waits
// for the broker.
func (s *Submitter) publish(ctx context.Context, eventType string, sess *Session, items []domain.OrderItem, total decimal.Decimal) {
	currency := ""
	if s.gateway != nil {
		currency = s.gateway.Currency()
	}
	event := events.OrderEvent{
		Type:          eventType,
		OrderID:       sess.OrderID,
		SessionID:     sess.ID,
		UserID:        sess.Owner,
		PaymentMethod: sess.PaymentMethod.String(),
		Items:         items,
		TotalAmount:   total,
		Currency:      currency,
		OccurredAt:    s.now().UTC(),
	}

	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.saveTimeout)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		defer cancel()
		if err := s.publisher.Publish(bg, event); err != nil {
			s.logger.Warn("order event not published",
				zap.String("event_type", event.Type),
				zap.String("order_id", event.OrderID),
				zap.Error(err))
		}
	}()
}

// saveNewAddress appends the new address to the profile in the background.
// The result is only logged.
func (s *Submitter) saveNewAddress(ctx context.Context, sess *Session) {
	if s.profile == nil || sess.User == nil || !sess.Shipping.SaveNewAddress {
		return
	}
	resolved := sess.ResolvedAddress()
	if resolved.FromSaved() {
		return
	}
	fields := resolved.Fields
	addresses := append(slices.Clone(sess.User.Addresses), domain.Address{
		Label:       sess.Shipping.NewAddressLabel,
		HouseFlatNo: fields.HouseFlatNo,
		Building:    fields.Building,
		Area:        fields.Area,
		City:        fields.City,
		Pin:         fields.Pin,
		State:       fields.State,
		Country:     fields.Country,
		Address:     resolved.Address,
		IsDefault:   len(sess.User.Addresses) == 0,
	})

	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.saveTimeout)
	userID := sess.User.ID
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		defer cancel()
		if _, err := s.profile.UpdateUser(bg, AddressUpdate{Addresses: addresses}); err != nil {
			s.logger.Warn("saving new address failed", zap.String("user_id", userID), zap.Error(err))
			return
		}
		s.logger.Debug("new address saved", zap.String("user_id", userID))
	}()
}

func buildPayload(sess *Session, pricing PricingSnapshot) (domain.OrderPayload, error) {
	phone, err := ResolveReceiverPhone(sess.User, sess.Shipping.Receiver)
	if err != nil {
		return domain.OrderPayload{}, err
	}
	items := make([]domain.OrderItem, 0, len(sess.Items))
	for _, item := range sess.Items {
		items = append(items, domain.OrderItem{
			Product:  item.Product.ID(),
			Name:     item.Product.Name,
			ImageURL: item.Product.PrimaryImage(),
			Quantity: item.Quantity,
			Price:    item.Product.Price,
			Size:     item.SelectedSize,
		})
	}
	return domain.OrderPayload{
		OrderItems:      items,
		ShippingAddress: domain.OrderAddress{Address: sess.ResolvedAddress().Address},
		ReceiverPhone:   phone,
		PaymentMethod:   sess.PaymentMethod,
		TaxPrice:        pricing.Tax,
		ShippingPrice:   pricing.ShippingCost,
		TotalPrice:      pricing.Total,
	}, nil
}
