package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Security is a tradable instrument. UUID is its stable identity.
type Security struct {
	UUID     string
	Name     string
	ISIN     string
	Currency string

	// Prices is the historical quote series. Entries may be nil in files
	// written by old versions.
	Prices []*SecurityPrice
}

// SecurityPrice is one historical quote.
type SecurityPrice struct {
	Date  time.Time
	Value decimal.Decimal
}

// SameSecurity compares two securities by stable identity. Securities without
// a UUID only match themselves.
func SameSecurity(a, b *Security) bool {
	if a == nil || b == nil {
		return false
	}
	if a.UUID == "" || b.UUID == "" {
		return a == b
	}
	return a.UUID == b.UUID
}

// Label returns a display name for the security.
func (s *Security) Label() string {
	if s == nil {
		return ""
	}
	if s.Name != "" {
		return s.Name
	}
	return s.UUID
}
