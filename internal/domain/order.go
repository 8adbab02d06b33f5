package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentUPI    PaymentMethod = "upi"
	PaymentWallet PaymentMethod = "wallet"
	PaymentCOD    PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentUPI, PaymentWallet, PaymentCOD:
		return true
	}
	return false
}

// IsOnline reports whether the method goes through the payment gateway.
func (m PaymentMethod) IsOnline() bool {
	return m.Valid() && m != PaymentCOD
}

func (m PaymentMethod) String() string {
	return string(m)
}

type ShippingOption string

const (
	ShippingStandard ShippingOption = "standard"
	ShippingExpress  ShippingOption = "express"
)

var expressShippingCost = decimal.NewFromInt(99)

// Cost of the option; standard delivery is free.
func (o ShippingOption) Cost() decimal.Decimal {
	if o == ShippingExpress {
		return expressShippingCost
	}
	return decimal.Zero
}

func (o ShippingOption) Valid() bool {
	return o == ShippingStandard || o == ShippingExpress
}

type OrderItem struct {
	Product  string          `json:"product"`
	Name     string          `json:"name"`
	ImageURL string          `json:"imageUrl"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Size     string          `json:"size"`
}

type OrderAddress struct {
	Address string `json:"address"`
}

// OrderPayload is the POST /orders body.
type OrderPayload struct {
	OrderItems      []OrderItem     `json:"orderItems"`
	ShippingAddress OrderAddress    `json:"shippingAddress"`
	ReceiverPhone   string          `json:"receiverPhone"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	TaxPrice        decimal.Decimal `json:"taxPrice"`
	ShippingPrice   decimal.Decimal `json:"shippingPrice"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
}

// Order is the remote order record.
type Order struct {
	ID              string          `json:"_id"`
	User            string          `json:"user,omitempty"`
	OrderItems      []OrderItem     `json:"orderItems"`
	ShippingAddress OrderAddress    `json:"shippingAddress"`
	ReceiverPhone   string          `json:"receiverPhone,omitempty"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	TaxPrice        decimal.Decimal `json:"taxPrice"`
	ShippingPrice   decimal.Decimal `json:"shippingPrice"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	IsDelivered     bool            `json:"isDelivered"`
	Status          string          `json:"status,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}
