package jsonfile

import (
	"time"

	"github.com/shopspring/decimal"
)

// snapshot is the on-disk shape of a ledger. Containers and securities are
// referenced by key; a key that resolves to nothing is loaded as a detached
// object so the healing checks can recover it.
type snapshot struct {
	Version      int    `json:"version"`
	BaseCurrency string `json:"baseCurrency,omitempty"`

	Securities []*securityRecord `json:"securities"`
	Accounts   []accountRecord   `json:"accounts"`
	Portfolios []portfolioRecord `json:"portfolios"`

	CrossEntries []crossEntryRecord `json:"crossEntries,omitempty"`

	// Objects referenced by the ledger but missing from its lists.
	DetachedSecurities []*securityRecord `json:"detachedSecurities,omitempty"`
	DetachedAccounts   []accountRecord   `json:"detachedAccounts,omitempty"`
}

type securityRecord struct {
	Key      string         `json:"key"`
	UUID     string         `json:"uuid,omitempty"`
	Name     string         `json:"name"`
	ISIN     string         `json:"isin,omitempty"`
	Currency string         `json:"currency,omitempty"`
	Prices   []*priceRecord `json:"prices,omitempty"`
}

type priceRecord struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

type accountRecord struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Currency     string              `json:"currency,omitempty"`
	Retired      bool                `json:"retired,omitempty"`
	Transactions []transactionRecord `json:"transactions,omitempty"`
}

type portfolioRecord struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	ReferenceAccount string              `json:"referenceAccount,omitempty"`
	Retired          bool                `json:"retired,omitempty"`
	Transactions     []transactionRecord `json:"transactions,omitempty"`
}

type transactionRecord struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Date       *time.Time      `json:"date,omitempty"`
	Currency   string          `json:"currency,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Security   string          `json:"security,omitempty"`
	Shares     decimal.Decimal `json:"shares"`
	Units      []unitRecord    `json:"units,omitempty"`
	Note       string          `json:"note,omitempty"`
	ExDate     *time.Time      `json:"exDate,omitempty"`
	CrossEntry string          `json:"crossEntry,omitempty"`
}

type unitRecord struct {
	Type          string           `json:"type"`
	Amount        decimal.Decimal  `json:"amount"`
	Currency      string           `json:"currency"`
	ForexAmount   *decimal.Decimal `json:"forexAmount,omitempty"`
	ForexCurrency string           `json:"forexCurrency,omitempty"`
	ExchangeRate  *decimal.Decimal `json:"exchangeRate,omitempty"`
}

type crossEntryRecord struct {
	ID     string    `json:"id"`
	Kind   string    `json:"kind"`
	Source legRecord `json:"source"`
	Target legRecord `json:"target"`
}

type legRecord struct {
	Account     string `json:"account,omitempty"`
	Portfolio   string `json:"portfolio,omitempty"`
	Transaction string `json:"transaction"`
}
