package checkout

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

type PaymentStatus string

const (
	PaymentNone    PaymentStatus = ""
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Shipping holds everything entered on step 2.
type Shipping struct {
	FirstName         string                `json:"firstName"`
	LastName          string                `json:"lastName"`
	Address           AddressSelection      `json:"address"`
	NewAddressLabel   string                `json:"newAddressLabel"`
	SaveNewAddress    bool                  `json:"saveNewAddress"`
	Receiver          domain.Receiver       `json:"receiver"`
	ReceiverFirstName string                `json:"receiverFirstName,omitempty"`
	ReceiverLastName  string                `json:"receiverLastName,omitempty"`
	Option            domain.ShippingOption `json:"option"`
}

// Session is the state of one checkout. It is owned by a single shopper and
// persisted between requests; pricing is never stored on it.
type Session struct {
	ID               string               `json:"id"`
	Owner            string               `json:"owner"`
	User             *domain.User         `json:"user,omitempty"`
	Items            []domain.LineItem    `json:"items"`
	Step             Step                 `json:"step"`
	Shipping         Shipping             `json:"shipping"`
	PaymentMethod    domain.PaymentMethod `json:"paymentMethod"`
	OrderID          string               `json:"orderId,omitempty"`
	PlacedTotal      decimal.Decimal      `json:"placedTotal"`
	PaymentStatus    PaymentStatus        `json:"paymentStatus,omitempty"`
	Gateway          *domain.GatewayOrder `json:"gateway,omitempty"`
	ShowConfirmation bool                 `json:"showConfirmation"`
	Error            string               `json:"error,omitempty"`
	IdempotencyKey   string               `json:"idempotencyKey"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// NewSession starts on step 1 with the form pre-filled from the signed-in
// user: name, default address and mobile as receiver phone.
func NewSession(owner string, user *domain.User, items []domain.LineItem, now time.Time) *Session {
	s := &Session{
		ID:             uuid.NewString(),
		Owner:          owner,
		User:           user,
		Items:          items,
		Step:           StepSelection,
		PaymentMethod:  domain.PaymentCard,
		IdempotencyKey: uuid.NewString(),
		CreatedAt:      now,
		UpdatedAt:      now,
		Shipping: Shipping{
			NewAddressLabel: "Home",
			Option:          domain.ShippingStandard,
		},
	}
	if s.Items == nil {
		s.Items = []domain.LineItem{}
	}
	if user != nil {
		first, last, _ := strings.Cut(strings.TrimSpace(user.Name), " ")
		s.Shipping.FirstName = first
		s.Shipping.LastName = strings.TrimSpace(last)
		if idx := user.DefaultAddressIndex(); idx >= 0 {
			s.Shipping.Address.SelectedIndex = &idx
			s.Shipping.Address.NewAddress = user.Addresses[idx].Fields()
		}
		s.Shipping.Receiver.Phone = user.Mobile
	}
	return s
}

func (s *Session) Authenticated() bool {
	return s.User != nil
}

func (s *Session) ResolvedAddress() ResolvedAddress {
	return ResolveShippingTarget(s.User, s.Shipping.Address)
}

func (s *Session) Pricing() PricingSnapshot {
	return Calculate(s.Items, s.Shipping.Option.Cost())
}

// OrderPlaced reports whether the remote order exists. From then on items,
// shipping and payment method are the ones the order was placed with.
func (s *Session) OrderPlaced() bool {
	return s.OrderID != ""
}

// placedTotal is the amount the order was placed for.
func (s *Session) placedTotal() decimal.Decimal {
	if s.PlacedTotal.IsZero() {
		return s.Pricing().Total
	}
	return s.PlacedTotal
}

func (s *Session) selection() Selection {
	return Selection(s.Items)
}

// View is what the rendering layer receives.
type View struct {
	ID               string               `json:"id"`
	Step             Step                 `json:"step"`
	StepName         string               `json:"stepName"`
	Items            []domain.LineItem    `json:"items"`
	Pricing          PricingSnapshot      `json:"pricing"`
	CanContinue      bool                 `json:"canContinue"`
	ScrollToTop      bool                 `json:"scrollToTop"`
	Authenticated    bool                 `json:"authenticated"`
	SavedAddresses   []domain.Address     `json:"savedAddresses,omitempty"`
	Shipping         Shipping             `json:"shipping"`
	ResolvedAddress  ResolvedAddress      `json:"resolvedAddress"`
	PaymentMethod    domain.PaymentMethod `json:"paymentMethod"`
	OrderID          string               `json:"orderId,omitempty"`
	PaymentStatus    PaymentStatus        `json:"paymentStatus,omitempty"`
	Gateway          *domain.GatewayOrder `json:"gateway,omitempty"`
	ShowConfirmation bool                 `json:"showConfirmation"`
	Error            string               `json:"error,omitempty"`
	RedirectTo       string               `json:"redirectTo,omitempty"`
}

func (s *Session) View() *View {
	v := &View{
		ID:               s.ID,
		Step:             s.Step,
		StepName:         s.Step.String(),
		Items:            s.Items,
		Pricing:          s.Pricing(),
		CanContinue:      s.CanContinue(),
		Authenticated:    s.Authenticated(),
		Shipping:         s.Shipping,
		ResolvedAddress:  s.ResolvedAddress(),
		PaymentMethod:    s.PaymentMethod,
		OrderID:          s.OrderID,
		PaymentStatus:    s.PaymentStatus,
		Gateway:          s.Gateway,
		ShowConfirmation: s.ShowConfirmation,
		Error:            s.Error,
	}
	if s.User != nil {
		v.SavedAddresses = s.User.Addresses
	}
	return v
}
