package domain

import "github.com/shopspring/decimal"

// HomeCountry is the country code the delivery form defaults to. Any other
// code is accepted but flags the order as international shipping.
const HomeCountry = "RS"

// CheckoutDraft is the delivery form under construction. It lives only for
// the duration of the checkout screen and is never persisted.
type CheckoutDraft struct {
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	Floor       string `json:"floor,omitempty"`
	Apartment   string `json:"apartment,omitempty"`
	PostalCode  string `json:"postalCode"`
	Note        string `json:"note,omitempty"`
}

func (d CheckoutDraft) International() bool {
	return d.Country != "" && d.Country != HomeCountry
}

type OrderItem struct {
	ProductID int64           `json:"id"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderSubmission is the record sent to the remote order service. It is
// built once per submit attempt and not modified afterwards. Total includes
// the delivery surcharge.
type OrderSubmission struct {
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName"`
	Country     string          `json:"country"`
	City        string          `json:"city"`
	Street      string          `json:"street"`
	HouseNumber string          `json:"houseNumber"`
	Floor       string          `json:"floor,omitempty"`
	Apartment   string          `json:"apartment,omitempty"`
	PostalCode  string          `json:"postalCode"`
	Note        string          `json:"note,omitempty"`
	Items       []OrderItem     `json:"items"`
	Total       decimal.Decimal `json:"total"`
}
