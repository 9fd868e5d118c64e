package usecase

import (
	"fmt"
	"slices"

	"github.com/iho/ledgercheck/internal/domain"
)

// Fixes capture IDs rather than pointers and resolve them against the ledger
// they are applied to. A target that no longer exists yields ErrStaleFix.

func stale(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStaleFix, err)
}

// transactionRef identifies a transaction inside one container.
type transactionRef struct {
	kind    domain.EntityKind
	ownerID string
	txID    string
}

func refTo(owner domain.Owner, t *domain.Transaction) transactionRef {
	return transactionRef{kind: owner.OwnerKind(), ownerID: owner.OwnerID(), txID: t.ID}
}

func (r transactionRef) resolve(l *domain.Ledger) (domain.Owner, *domain.Transaction, error) {
	owner, err := l.Owner(r.kind, r.ownerID)
	if err != nil {
		return nil, nil, stale(err)
	}
	t, err := l.FindTransaction(owner, r.txID)
	if err != nil {
		return nil, nil, stale(err)
	}
	return owner, t, nil
}

// resolveOrphan resolves the transaction and verifies it is still unpaired.
func (r transactionRef) resolveOrphan(l *domain.Ledger) (domain.Owner, *domain.Transaction, error) {
	owner, t, err := r.resolve(l)
	if err != nil {
		return nil, nil, err
	}
	if l.Linked(owner, t) {
		return nil, nil, stale(fmt.Errorf("transaction %s is already paired", t.ID))
	}
	return owner, t, nil
}

func deleteFix(ref transactionRef) domain.Fix {
	return domain.NewFix("Delete transaction", "Transaction deleted", func(l *domain.Ledger) error {
		owner, _, err := ref.resolve(l)
		if err != nil {
			return err
		}
		return l.DeleteTransaction(owner, ref.txID)
	})
}

// deleteOrphanFix deletes a transaction only while it is still unpaired.
func deleteOrphanFix(ref transactionRef) domain.Fix {
	return domain.NewFix("Delete transaction", "Transaction deleted", func(l *domain.Ledger) error {
		owner, _, err := ref.resolveOrphan(l)
		if err != nil {
			return err
		}
		return l.RemoveTransaction(owner, ref.txID)
	})
}

func transactionIssue(owner domain.Owner, t *domain.Transaction, label string, fixes ...domain.Fix) domain.Issue {
	issue := domain.Issue{
		Entity: domain.RefOf(owner),
		Label:  label,
		Fixes:  fixes,
	}
	if t.HasDate() {
		date := t.Date
		issue.Date = &date
	}
	amount := t.Money()
	issue.Amount = &amount
	return issue
}

// portfoliosFor lists portfolios with those referencing a first.
func portfoliosFor(l *domain.Ledger, a *domain.Account) []*domain.Portfolio {
	out := make([]*domain.Portfolio, 0, len(l.Portfolios))
	for _, p := range l.Portfolios {
		if p.ReferenceAccount == a {
			out = append(out, p)
		}
	}
	for _, p := range l.Portfolios {
		if p.ReferenceAccount != a {
			out = append(out, p)
		}
	}
	return out
}

// accountsFor lists accounts with the reference account of p first.
func accountsFor(l *domain.Ledger, p *domain.Portfolio) []*domain.Account {
	out := make([]*domain.Account, 0, len(l.Accounts))
	if p.ReferenceAccount != nil && l.HasAccount(p.ReferenceAccount) {
		out = append(out, p.ReferenceAccount)
	}
	for _, a := range l.Accounts {
		if a != p.ReferenceAccount {
			out = append(out, a)
		}
	}
	return out
}

func otherAccounts(l *domain.Ledger, a *domain.Account) []*domain.Account {
	return slices.DeleteFunc(slices.Clone(l.Accounts), func(o *domain.Account) bool { return o == a })
}

func otherPortfolios(l *domain.Ledger, p *domain.Portfolio) []*domain.Portfolio {
	return slices.DeleteFunc(slices.Clone(l.Portfolios), func(o *domain.Portfolio) bool { return o == p })
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
