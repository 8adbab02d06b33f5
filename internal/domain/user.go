package domain

import "strings"

// Address is a saved address from the user's profile. The profile page writes
// houseFlatNo/pin while older records carry house/postalCode, so both are kept.
type Address struct {
	Label       string `json:"label,omitempty"`
	HouseFlatNo string `json:"houseFlatNo,omitempty"`
	House       string `json:"house,omitempty"`
	Building    string `json:"building,omitempty"`
	Area        string `json:"area,omitempty"`
	City        string `json:"city,omitempty"`
	Pin         string `json:"pin,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	Address     string `json:"address,omitempty"`
	IsDefault   bool   `json:"isDefault"`
}

// Fields flattens a saved address into the form representation.
func (a Address) Fields() ShippingAddress {
	house := a.HouseFlatNo
	if house == "" {
		house = a.House
	}
	pin := a.Pin
	if pin == "" {
		pin = a.PostalCode
	}
	return ShippingAddress{
		HouseFlatNo: house,
		Building:    a.Building,
		Area:        a.Area,
		City:        a.City,
		Pin:         pin,
		State:       a.State,
		Country:     a.Country,
	}
}

// ShippingAddress is the structured new-address form.
type ShippingAddress struct {
	HouseFlatNo string `json:"houseFlatNo"`
	Building    string `json:"building"`
	Area        string `json:"area"`
	City        string `json:"city"`
	Pin         string `json:"pin"`
	State       string `json:"state"`
	Country     string `json:"country"`
}

func (s ShippingAddress) parts() []string {
	return []string{s.HouseFlatNo, s.Building, s.Area, s.City, s.Pin, s.State, s.Country}
}

// Format joins the non-empty parts with ", ", dropping stray commas and
// whitespace users tend to type into the individual fields.
func (s ShippingAddress) Format() string {
	kept := make([]string, 0, 7)
	for _, part := range s.parts() {
		part = strings.Trim(strings.TrimSpace(part), ", ")
		part = strings.Join(strings.Fields(part), " ")
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ", ")
}

func (s ShippingAddress) IsEmpty() bool {
	return s.Format() == ""
}

// Missing lists the names of required fields left blank. Building is optional.
func (s ShippingAddress) Missing() []string {
	var missing []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	check("houseFlatNo", s.HouseFlatNo)
	check("area", s.Area)
	check("city", s.City)
	check("pin", s.Pin)
	check("state", s.State)
	check("country", s.Country)
	return missing
}

type User struct {
	ID        string    `json:"_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	Addresses []Address `json:"addresses,omitempty"`
}

// DefaultAddressIndex is the index of the address flagged default, else 0.
// It returns -1 when there are no saved addresses.
func (u *User) DefaultAddressIndex() int {
	if u == nil || len(u.Addresses) == 0 {
		return -1
	}
	for i, a := range u.Addresses {
		if a.IsDefault {
			return i
		}
	}
	return 0
}

// Receiver is the person taking delivery.
type Receiver struct {
	Phone                 string `json:"phone"`
	UsesDifferentReceiver bool   `json:"usesDifferentReceiver"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Name      string    `json:"name"`
	Mobile    string    `json:"mobile"`
	Gender    string    `json:"gender,omitempty"`
	Addresses []Address `json:"addresses,omitempty"`
}

type OTPVerification struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// AuthResult is the login/register response; the token is what callers
// forward as x-auth-token.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}
