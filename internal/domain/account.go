package domain

import "slices"

// EntityKind names the type of entity an issue points at.
type EntityKind string

const (
	EntityLedger    EntityKind = "ledger"
	EntityAccount   EntityKind = "account"
	EntityPortfolio EntityKind = "portfolio"
	EntitySecurity  EntityKind = "security"
)

// Owner is a container of transactions: an account or a portfolio.
type Owner interface {
	OwnerID() string
	OwnerName() string
	OwnerKind() EntityKind
}

// Account is a cash container holding transactions in one currency.
type Account struct {
	ID           string
	Name         string
	Currency     string
	Retired      bool
	Transactions []*AccountTransaction
}

func (a *Account) OwnerID() string       { return a.ID }
func (a *Account) OwnerName() string     { return a.Name }
func (a *Account) OwnerKind() EntityKind { return EntityAccount }

// Transaction returns the transaction with the given ID.
func (a *Account) Transaction(id string) (*AccountTransaction, bool) {
	for _, t := range a.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

func (a *Account) add(t *AccountTransaction) {
	a.Transactions = append(a.Transactions, t)
}

func (a *Account) indexOf(id string) int {
	return slices.IndexFunc(a.Transactions, func(t *AccountTransaction) bool { return t.ID == id })
}

// moveTo moves the transaction with the given ID to position idx.
func (a *Account) moveTo(id string, idx int) bool {
	from := a.indexOf(id)
	if from < 0 || idx < 0 || idx >= len(a.Transactions) {
		return false
	}
	t := a.Transactions[from]
	a.Transactions = slices.Insert(slices.Delete(a.Transactions, from, from+1), idx, t)
	return true
}

func (a *Account) remove(id string) (*AccountTransaction, bool) {
	idx := slices.IndexFunc(a.Transactions, func(t *AccountTransaction) bool { return t.ID == id })
	if idx < 0 {
		return nil, false
	}
	t := a.Transactions[idx]
	a.Transactions = slices.Delete(a.Transactions, idx, idx+1)
	return t, true
}

// Portfolio is a security-holdings container. ReferenceAccount is the cash
// account its trades settle against.
type Portfolio struct {
	ID               string
	Name             string
	ReferenceAccount *Account
	Retired          bool
	Transactions     []*PortfolioTransaction
}

func (p *Portfolio) OwnerID() string       { return p.ID }
func (p *Portfolio) OwnerName() string     { return p.Name }
func (p *Portfolio) OwnerKind() EntityKind { return EntityPortfolio }

// Transaction returns the transaction with the given ID.
func (p *Portfolio) Transaction(id string) (*PortfolioTransaction, bool) {
	for _, t := range p.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

func (p *Portfolio) add(t *PortfolioTransaction) {
	p.Transactions = append(p.Transactions, t)
}

func (p *Portfolio) indexOf(id string) int {
	return slices.IndexFunc(p.Transactions, func(t *PortfolioTransaction) bool { return t.ID == id })
}

// moveTo moves the transaction with the given ID to position idx.
func (p *Portfolio) moveTo(id string, idx int) bool {
	from := p.indexOf(id)
	if from < 0 || idx < 0 || idx >= len(p.Transactions) {
		return false
	}
	t := p.Transactions[from]
	p.Transactions = slices.Insert(slices.Delete(p.Transactions, from, from+1), idx, t)
	return true
}

func (p *Portfolio) remove(id string) (*PortfolioTransaction, bool) {
	idx := slices.IndexFunc(p.Transactions, func(t *PortfolioTransaction) bool { return t.ID == id })
	if idx < 0 {
		return nil, false
	}
	t := p.Transactions[idx]
	p.Transactions = slices.Delete(p.Transactions, idx, idx+1)
	return t, true
}

// replace swaps the transaction with the given ID for t, keeping its position.
func (p *Portfolio) replace(id string, t *PortfolioTransaction) bool {
	idx := slices.IndexFunc(p.Transactions, func(t *PortfolioTransaction) bool { return t.ID == id })
	if idx < 0 {
		return false
	}
	p.Transactions[idx] = t
	return true
}
