package domain

import "github.com/shopspring/decimal"

// CarrierOption is one shipping service quoted by the carrier API.
// It is never persisted. PriceText is the price exactly as the carrier
// sent it; Price is the parsed amount.
type CarrierOption struct {
	ID               int
	Name             string
	Price            decimal.Decimal
	PriceText        string
	Currency         string
	CompanyName      string
	DeliveryTimeDays int
}

// DeliveryQuoteLine is the uniform output of both pricing strategies.
// ReferenceCode is empty for local delivery.
type DeliveryQuoteLine struct {
	LeadTimeLabel string
	Price         string
	Description   string
	ReferenceCode string
}

// NearbyStore is a catalog store decorated with travel metrics from the
// customer's location.
type NearbyStore struct {
	Store    Store
	Distance string
	Duration string
}

// Pin is a map marker for a store.
type Pin struct {
	Position Coordinates
	Title    string
}

// DeliveryQuote answers "what would delivery from the nearest relevant
// store cost and take?".
type DeliveryQuote struct {
	Store           Store
	Distance        string
	DeliveryAddress string
	Lines           []DeliveryQuoteLine
	Pins            []Pin
	Page            Page
}
