package usecase

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/iho/ledgercheck/internal/domain"
)

// healingCheck repairs one class of defects in place and never reports
// issues.
type healingCheck struct {
	name string
	heal func(l *domain.Ledger) error
}

func (c healingCheck) Name() string { return c.name }

func (c healingCheck) Execute(l *domain.Ledger) ([]domain.Issue, error) {
	if err := c.heal(l); err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	return nil, nil
}

// NewDanglingAccountsCheck re-adds accounts that are referenced by a
// portfolio or a trade but missing from the ledger's account list.
func NewDanglingAccountsCheck() Check {
	return healingCheck{name: CheckDanglingAccounts, heal: recoverDanglingAccounts}
}

// NewWrongTransfersCheck converts TRANSFER_IN portfolio transactions that
// were booked as one side of a trade into inbound deliveries.
func NewWrongTransfersCheck() Check {
	return healingCheck{name: CheckWrongTransfers, heal: convertWrongTransfers}
}

// NewTaxRefundSecurityCheck clears unknown securities from TAX_REFUND
// transactions written by older ledger versions.
func NewTaxRefundSecurityCheck() Check {
	return healingCheck{name: CheckTaxRefundSecurity, heal: clearTaxRefundSecurities}
}

// NewCashSecuritiesCheck strips securities from cash-only account
// transactions.
func NewCashSecuritiesCheck() Check {
	return healingCheck{name: CheckCashSecurities, heal: stripCashSecurities}
}

// NewOrphanedSecuritiesCheck adds securities referenced by transactions to
// the ledger's master list.
func NewOrphanedSecuritiesCheck() Check {
	return healingCheck{name: CheckOrphanedSecurities, heal: promoteOrphanedSecurities}
}

// NewSecurityUUIDCheck assigns a fresh UUID to securities without one.
func NewSecurityUUIDCheck() Check {
	return healingCheck{name: CheckSecurityUUID, heal: assignSecurityUUIDs}
}

// NewNullPricesCheck drops nil entries from price histories.
func NewNullPricesCheck() Check {
	return healingCheck{name: CheckNullPrices, heal: dropNullPrices}
}

// NewExDateCheck clears the ex-date of anything that is not a dividend.
func NewExDateCheck() Check {
	return healingCheck{name: CheckExDate, heal: clearStrayExDates}
}

func recoveredName(name string) string {
	if name == "" {
		return "Account " + RecoveredMarker
	}
	return name + " " + RecoveredMarker
}

func recoverDanglingAccounts(l *domain.Ledger) error {
	recoverAccount := func(a *domain.Account) {
		if a == nil || l.HasAccount(a) {
			return
		}
		a.Name = recoveredName(a.Name)
		l.AddAccount(a)
	}

	for _, p := range l.Portfolios {
		recoverAccount(p.ReferenceAccount)
	}
	for _, c := range l.CrossEntries() {
		if c.Kind != domain.KindBuySell {
			continue
		}
		recoverAccount(c.Target.Account)
	}
	return nil
}

func convertWrongTransfers(l *domain.Ledger) error {
	for _, p := range l.Portfolios {
		for _, t := range slices.Clone(p.Transactions) {
			if t.Type != domain.TypeTransferIn {
				continue
			}
			c, ok := l.CrossEntry(t.CrossEntryID)
			if !ok || c.Kind != domain.KindBuySell || c.Source.TransactionID != t.ID {
				continue
			}
			accountLeg := c.Target

			delivery := &domain.PortfolioTransaction{}
			delivery.CopyFrom(&t.Transaction)
			delivery.Type = domain.TypeDeliveryInbound
			if err := l.ReplacePortfolioTransaction(p, t.ID, delivery); err != nil {
				return err
			}

			if accountLeg.Account == nil {
				continue
			}
			if _, ok := accountLeg.Account.Transaction(accountLeg.TransactionID); !ok {
				continue
			}
			if err := l.RemoveTransaction(accountLeg.Account, accountLeg.TransactionID); err != nil {
				return err
			}
		}
	}
	return nil
}

func clearTaxRefundSecurities(l *domain.Ledger) error {
	if l.Version >= domain.VersionTaxRefundSecurityFix {
		return nil
	}
	for _, a := range l.Accounts {
		for _, t := range a.Transactions {
			if t.Type == domain.TypeTaxRefund && t.Security != nil && l.MasterSecurity(t.Security) == nil {
				t.Security = nil
			}
		}
	}
	return nil
}

func stripCashSecurities(l *domain.Ledger) error {
	for _, a := range l.Accounts {
		for _, t := range a.Transactions {
			if t.Type.ForbidsSecurity() {
				t.Security = nil
			}
		}
	}
	return nil
}

func promoteOrphanedSecurities(l *domain.Ledger) error {
	for _, t := range l.Transactions() {
		if t.Security == nil || l.HasSecurity(t.Security) {
			continue
		}
		if master := l.MasterSecurity(t.Security); master != nil {
			t.Security = master
			continue
		}
		l.AddSecurity(t.Security)
	}
	return nil
}

func assignSecurityUUIDs(l *domain.Ledger) error {
	for _, s := range l.Securities {
		if s.UUID == "" {
			s.UUID = uuid.NewString()
		}
	}
	return nil
}

func dropNullPrices(l *domain.Ledger) error {
	for _, s := range l.Securities {
		s.Prices = slices.DeleteFunc(s.Prices, func(p *domain.SecurityPrice) bool { return p == nil })
	}
	return nil
}

func clearStrayExDates(l *domain.Ledger) error {
	for _, t := range l.Transactions() {
		if t.ExDate != nil && t.Type != domain.TypeDividends {
			t.ExDate = nil
		}
	}
	return nil
}
