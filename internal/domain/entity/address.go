package entity

import "time"

// Address types. "both" counts as its own type for the default-address rule:
// a user may hold one default shipping, one default billing and one default
// "both" address at the same time.
const (
	AddressShipping = "shipping"
	AddressBilling  = "billing"
	AddressBoth     = "both"
)

// Address belongs to exactly one User. At most one address per
// (user, address_type) carries IsDefault; the repository enforces this
// inside the write transaction and the schema backs it with a partial
// unique index.
type Address struct {
	ID            string
	UserID        string
	AddressType   string
	StreetAddress string
	Apartment     string
	City          string
	State         string
	PostalCode    string
	Country       string
	IsDefault     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
