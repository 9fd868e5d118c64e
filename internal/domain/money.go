package domain

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an exact amount in a currency. The currency may be empty when the
// source data never assigned one.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney creates Money from an amount and an ISO currency code.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// String formats the amount with the currency's symbol and fraction digits.
// Unknown or missing currencies fall back to a plain two-digit rendering.
func (m Money) String() string {
	cur := money.GetCurrency(strings.ToUpper(m.Currency))
	if m.Currency == "" || cur == nil {
		s := m.Amount.StringFixed(2)
		if m.Currency != "" {
			s += " " + m.Currency
		}
		return s
	}
	minor := m.Amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// Equal compares amount and currency.
func (m Money) Equal(n Money) bool {
	return m.Amount.Equal(n.Amount) && m.Currency == n.Currency
}
