package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CrossEntryKind names the shape of a cross entry.
type CrossEntryKind string

const (
	// KindBuySell pairs a portfolio BUY/SELL (source) with an account BUY/SELL (target).
	KindBuySell CrossEntryKind = "buy_sell"
	// KindAccountTransfer pairs an account TRANSFER_OUT (source) with an account TRANSFER_IN (target).
	KindAccountTransfer CrossEntryKind = "account_transfer"
	// KindPortfolioTransfer pairs a portfolio TRANSFER_OUT (source) with a portfolio TRANSFER_IN (target).
	KindPortfolioTransfer CrossEntryKind = "portfolio_transfer"
)

// Leg is one side of a cross entry. Exactly one of Account and Portfolio is set.
type Leg struct {
	Account       *Account
	Portfolio     *Portfolio
	TransactionID string
}

// Owner returns the container holding the leg's transaction.
func (l Leg) Owner() Owner {
	if l.Account != nil {
		return l.Account
	}
	if l.Portfolio != nil {
		return l.Portfolio
	}
	return nil
}

func (l Leg) sameOwner(o Leg) bool {
	if l.Account != nil {
		return l.Account == o.Account
	}
	return l.Portfolio != nil && l.Portfolio == o.Portfolio
}

// transaction resolves the leg's transaction inside its owner.
func (l Leg) transaction() (*Transaction, bool) {
	switch {
	case l.Account != nil:
		if t, ok := l.Account.Transaction(l.TransactionID); ok {
			return &t.Transaction, true
		}
	case l.Portfolio != nil:
		if t, ok := l.Portfolio.Transaction(l.TransactionID); ok {
			return &t.Transaction, true
		}
	}
	return nil, false
}

// CrossEntry links two transactions in two different containers that
// together represent one economic event.
type CrossEntry struct {
	ID     string
	Kind   CrossEntryKind
	Source Leg
	Target Leg
}

// Counterpart returns the leg opposite to the transaction with the given ID.
func (c *CrossEntry) Counterpart(transactionID string) (Leg, bool) {
	switch transactionID {
	case c.Source.TransactionID:
		return c.Target, true
	case c.Target.TransactionID:
		return c.Source, true
	default:
		return Leg{}, false
	}
}

// validShape checks the leg owner kinds against the kind.
func (c *CrossEntry) validShape() bool {
	switch c.Kind {
	case KindBuySell:
		return c.Source.Portfolio != nil && c.Target.Account != nil
	case KindAccountTransfer:
		return c.Source.Account != nil && c.Target.Account != nil
	case KindPortfolioTransfer:
		return c.Source.Portfolio != nil && c.Target.Portfolio != nil
	default:
		return false
	}
}

// BuySell describes a trade to insert as a portfolio/account pair.
type BuySell struct {
	Portfolio *Portfolio
	Account   *Account
	Type      TransactionType
	Date      time.Time
	Currency  string
	Security  *Security
	Shares    decimal.Decimal
	Amount    decimal.Decimal
	Note      string

	// Units are attached to the portfolio side.
	Units []Unit
}

// AccountTransfer describes cash moving from one account to another.
type AccountTransfer struct {
	From *Account
	To   *Account
	Date time.Time
	// Currency of the outbound leg; ToCurrency defaults to it when empty.
	Currency   string
	ToCurrency string
	Amount     decimal.Decimal
	Note       string
}

// PortfolioTransfer describes shares moving from one portfolio to another.
type PortfolioTransfer struct {
	From     *Portfolio
	To       *Portfolio
	Date     time.Time
	Currency string
	Security *Security
	Shares   decimal.Decimal
	Amount   decimal.Decimal
	Note     string
}
