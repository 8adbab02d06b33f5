package checkout

import (
	"strings"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

// AddressSelection is the shopper's choice on the shipping step.
type AddressSelection struct {
	SelectedIndex *int                   `json:"selectedAddressIndex,omitempty"`
	UseNewAddress bool                   `json:"useNewAddress"`
	NewAddress    domain.ShippingAddress `json:"newAddress"`
}

// ResolvedAddress is the single active shipping address.
type ResolvedAddress struct {
	Address string                 `json:"address"`
	Fields  domain.ShippingAddress `json:"fields"`
	// SavedIndex is -1 when the new-address form is in use.
	SavedIndex int `json:"savedIndex"`
}

func (r ResolvedAddress) FromSaved() bool {
	return r.SavedIndex >= 0
}

// ResolveShippingTarget picks the active address. A signed-in user with saved
// addresses ships to one of them unless the new-address form is enabled;
// everyone else ships to the form. An out-of-range index shows the default
// address; validateShipping refuses to go on with it.
func ResolveShippingTarget(user *domain.User, sel AddressSelection) ResolvedAddress {
	if user != nil && len(user.Addresses) > 0 && !sel.UseNewAddress {
		idx := user.DefaultAddressIndex()
		if sel.SelectedIndex != nil && *sel.SelectedIndex >= 0 && *sel.SelectedIndex < len(user.Addresses) {
			idx = *sel.SelectedIndex
		}
		saved := user.Addresses[idx]
		fields := saved.Fields()
		text := strings.TrimSpace(saved.Address)
		if text == "" {
			text = fields.Format()
		}
		return ResolvedAddress{Address: text, Fields: fields, SavedIndex: idx}
	}
	return ResolvedAddress{
		Address:    sel.NewAddress.Format(),
		Fields:     sel.NewAddress,
		SavedIndex: -1,
	}
}

// ResolveReceiverPhone returns the phone of whoever takes delivery: the
// buyer's registered mobile unless a different receiver was entered.
func ResolveReceiverPhone(user *domain.User, receiver domain.Receiver) (string, error) {
	phone := strings.TrimSpace(receiver.Phone)
	if user != nil && !receiver.UsesDifferentReceiver && strings.TrimSpace(user.Mobile) != "" {
		phone = strings.TrimSpace(user.Mobile)
	}
	if phone == "" {
		return "", ErrReceiverPhoneRequired
	}
	return phone, nil
}
