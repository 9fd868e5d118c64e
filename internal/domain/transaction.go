package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tags what a transaction does.
type TransactionType string

const (
	TypeBuy              TransactionType = "BUY"
	TypeSell             TransactionType = "SELL"
	TypeTransferIn       TransactionType = "TRANSFER_IN"
	TypeTransferOut      TransactionType = "TRANSFER_OUT"
	TypeDeposit          TransactionType = "DEPOSIT"
	TypeRemoval          TransactionType = "REMOVAL"
	TypeDividends        TransactionType = "DIVIDENDS"
	TypeInterest         TransactionType = "INTEREST"
	TypeInterestCharge   TransactionType = "INTEREST_CHARGE"
	TypeFees             TransactionType = "FEES"
	TypeFeesRefund       TransactionType = "FEES_REFUND"
	TypeTaxes            TransactionType = "TAXES"
	TypeTaxRefund        TransactionType = "TAX_REFUND"
	TypeDeliveryInbound  TransactionType = "DELIVERY_INBOUND"
	TypeDeliveryOutbound TransactionType = "DELIVERY_OUTBOUND"
)

// IsTrade reports whether the type is BUY or SELL.
func (t TransactionType) IsTrade() bool {
	return t == TypeBuy || t == TypeSell
}

// IsTransfer reports whether the type is TRANSFER_IN or TRANSFER_OUT.
func (t TransactionType) IsTransfer() bool {
	return t == TypeTransferIn || t == TypeTransferOut
}

// IsCrossRelevant reports whether a transaction of this type must be paired
// with a counterpart in another container.
func (t TransactionType) IsCrossRelevant() bool {
	return t.IsTrade() || t.IsTransfer()
}

// Opposite returns the counterpart direction of a transfer. Other types are
// returned unchanged.
func (t TransactionType) Opposite() TransactionType {
	switch t {
	case TypeTransferIn:
		return TypeTransferOut
	case TypeTransferOut:
		return TypeTransferIn
	default:
		return t
	}
}

// ForbidsSecurity reports whether an account transaction of this type must
// never reference a security.
func (t TransactionType) ForbidsSecurity() bool {
	switch t {
	case TypeDeposit, TypeRemoval, TypeTransferIn, TypeTransferOut, TypeInterestCharge:
		return true
	default:
		return false
	}
}

// SharesSign returns +1 for types adding shares to a portfolio, -1 for types
// removing them and 0 otherwise.
func (t TransactionType) SharesSign() int {
	switch t {
	case TypeBuy, TypeTransferIn, TypeDeliveryInbound:
		return 1
	case TypeSell, TypeTransferOut, TypeDeliveryOutbound:
		return -1
	default:
		return 0
	}
}

// UnitType classifies a transaction sub-unit.
type UnitType string

const (
	UnitGrossValue UnitType = "GROSS_VALUE"
	UnitTax        UnitType = "TAX"
	UnitFee        UnitType = "FEE"
)

// Unit is a tax, fee or gross-value component attached to a transaction.
// ForexAmount and ExchangeRate are set when the unit was booked in a foreign
// currency.
type Unit struct {
	Type         UnitType
	Amount       Money
	ForexAmount  *Money
	ExchangeRate *decimal.Decimal
}

// Transaction holds the fields shared by account and portfolio transactions.
type Transaction struct {
	ID       string
	Type     TransactionType
	Date     time.Time
	Currency string
	Amount   decimal.Decimal
	Security *Security
	Shares   decimal.Decimal
	Units    []Unit
	Note     string

	// ExDate is the ex-dividend date; only meaningful on DIVIDENDS.
	ExDate *time.Time

	// CrossEntryID links the transaction to its counterpart. Empty when the
	// transaction stands alone.
	CrossEntryID string
}

// HasDate reports whether a date was recorded.
func (t *Transaction) HasDate() bool {
	return !t.Date.IsZero()
}

// Money returns the transaction amount in the transaction currency.
func (t *Transaction) Money() Money {
	return NewMoney(t.Amount, t.Currency)
}

// CopyFrom copies every payload field of src except type, identity and
// linkage.
func (t *Transaction) CopyFrom(src *Transaction) {
	t.Date = src.Date
	t.Currency = src.Currency
	t.Amount = src.Amount
	t.Security = src.Security
	t.Shares = src.Shares
	t.Units = CloneUnits(src.Units)
	t.Note = src.Note
	t.ExDate = src.ExDate
}

// CloneUnits returns a deep copy of units.
func CloneUnits(units []Unit) []Unit {
	if units == nil {
		return nil
	}
	out := slices.Clone(units)
	for i := range out {
		if out[i].ForexAmount != nil {
			forex := *out[i].ForexAmount
			out[i].ForexAmount = &forex
		}
		if out[i].ExchangeRate != nil {
			rate := *out[i].ExchangeRate
			out[i].ExchangeRate = &rate
		}
	}
	return out
}

// AccountTransaction is a cash movement booked on an account.
type AccountTransaction struct {
	Transaction
}

// PortfolioTransaction is a security movement booked on a portfolio.
type PortfolioTransaction struct {
	Transaction
}
