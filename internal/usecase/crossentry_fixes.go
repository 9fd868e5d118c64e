package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgercheck/internal/domain"
)

// Shares booked by fixes that create the missing portfolio side of a trade.
var pairedShares = decimal.NewFromInt(1)

func unmatchedAccountTradeIssue(l *domain.Ledger, o accountOrphan) domain.Issue {
	ref := o.ref()
	fixes := []domain.Fix{convertToCashFix(ref, o.tx.Type)}
	for _, p := range portfoliosFor(l, o.account) {
		fixes = append(fixes, pairWithPortfolioFix(ref, p.ID, p.Name))
	}
	fixes = append(fixes, deleteOrphanFix(ref))

	return transactionIssue(o.account, &o.tx.Transaction,
		fmt.Sprintf("%s of %s in account %q has no matching portfolio transaction", o.tx.Type, o.tx.Security.Label(), o.account.Name),
		fixes...)
}

func unmatchedPortfolioTradeIssue(l *domain.Ledger, o portfolioOrphan) domain.Issue {
	ref := o.ref()
	fixes := []domain.Fix{convertToDeliveryFix(ref, o.tx.Type)}
	if o.tx.Security != nil {
		for _, a := range accountsFor(l, o.portfolio) {
			fixes = append(fixes, pairWithAccountFix(ref, a.ID, a.Name))
		}
	}
	fixes = append(fixes, deleteOrphanFix(ref))

	return transactionIssue(o.portfolio, &o.tx.Transaction,
		fmt.Sprintf("%s of %s in portfolio %q has no matching account transaction", o.tx.Type, o.tx.Security.Label(), o.portfolio.Name),
		fixes...)
}

func unmatchedAccountTransferIssue(l *domain.Ledger, o accountOrphan) domain.Issue {
	ref := o.ref()
	var fixes []domain.Fix
	for _, a := range otherAccounts(l, o.account) {
		fixes = append(fixes, accountCounterTransferFix(ref, a.ID, a.Name))
	}
	fixes = append(fixes, deleteOrphanFix(ref))

	return transactionIssue(o.account, &o.tx.Transaction,
		fmt.Sprintf("%s in account %q has no counterpart in another account", o.tx.Type, o.account.Name),
		fixes...)
}

func unmatchedPortfolioTransferIssue(l *domain.Ledger, o portfolioOrphan) domain.Issue {
	ref := o.ref()
	var fixes []domain.Fix
	if o.tx.Security != nil {
		for _, p := range otherPortfolios(l, o.portfolio) {
			fixes = append(fixes, portfolioCounterTransferFix(ref, p.ID, p.Name))
		}
	}
	fixes = append(fixes, deleteOrphanFix(ref))

	return transactionIssue(o.portfolio, &o.tx.Transaction,
		fmt.Sprintf("%s of %s in portfolio %q has no counterpart in another portfolio", o.tx.Type, o.tx.Security.Label(), o.portfolio.Name),
		fixes...)
}

// convertToCashFix turns an account BUY into a removal and a SELL into a
// deposit.
func convertToCashFix(ref transactionRef, typ domain.TransactionType) domain.Fix {
	target := domain.TypeDeposit
	if typ == domain.TypeBuy {
		target = domain.TypeRemoval
	}
	return domain.NewFix(
		fmt.Sprintf("Convert to %s", target),
		fmt.Sprintf("Converted to %s", target),
		func(l *domain.Ledger) error {
			_, t, err := ref.resolveOrphan(l)
			if err != nil {
				return err
			}
			t.Type = target
			t.Security = nil
			t.Shares = decimal.Zero
			return nil
		})
}

// convertToDeliveryFix turns a portfolio BUY into an inbound delivery and a
// SELL into an outbound delivery.
func convertToDeliveryFix(ref transactionRef, typ domain.TransactionType) domain.Fix {
	target := domain.TypeDeliveryOutbound
	if typ == domain.TypeBuy {
		target = domain.TypeDeliveryInbound
	}
	return domain.NewFix(
		fmt.Sprintf("Convert to %s", target),
		fmt.Sprintf("Converted to %s", target),
		func(l *domain.Ledger) error {
			_, t, err := ref.resolveOrphan(l)
			if err != nil {
				return err
			}
			t.Type = target
			return nil
		})
}

func pairWithPortfolioFix(ref transactionRef, portfolioID, portfolioName string) domain.Fix {
	return domain.NewFix(
		fmt.Sprintf("Create matching transaction in portfolio %q", portfolioName),
		fmt.Sprintf("Created matching transaction in portfolio %q", portfolioName),
		func(l *domain.Ledger) error {
			owner, t, err := ref.resolveOrphan(l)
			if err != nil {
				return err
			}
			p, err := l.Portfolio(portfolioID)
			if err != nil {
				return stale(err)
			}
			account := owner.(*domain.Account)

			_, at, err := l.InsertBuySell(domain.BuySell{
				Portfolio: p,
				Account:   account,
				Type:      t.Type,
				Date:      t.Date,
				Currency:  t.Currency,
				Security:  t.Security,
				Shares:    pairedShares,
				Amount:    t.Amount,
				Note:      t.Note,
				Units:     t.Units,
			})
			if err != nil {
				return err
			}
			return l.SupersedeTransaction(account, t.ID, at.ID)
		})
}

func pairWithAccountFix(ref transactionRef, accountID, accountName string) domain.Fix {
	return domain.NewFix(
		fmt.Sprintf("Create matching transaction in account %q", accountName),
		fmt.Sprintf("Created matching transaction in account %q", accountName),
		func(l *domain.Ledger) error {
			owner, t, err := ref.resolveOrphan(l)
			if err != nil {
				return err
			}
			a, err := l.Account(accountID)
			if err != nil {
				return stale(err)
			}
			portfolio := owner.(*domain.Portfolio)

			pt, _, err := l.InsertBuySell(domain.BuySell{
				Portfolio: portfolio,
				Account:   a,
				Type:      t.Type,
				Date:      t.Date,
				Currency:  t.Currency,
				Security:  t.Security,
				Shares:    t.Shares,
				Amount:    t.Amount,
				Note:      t.Note,
				Units:     t.Units,
			})
			if err != nil {
				return err
			}
			return l.SupersedeTransaction(portfolio, t.ID, pt.ID)
		})
}

func accountCounterTransferFix(ref transactionRef, accountID, accountName string) domain.Fix {
	return domain.NewFix(
		fmt.Sprintf("Create counter-transfer in account %q", accountName),
		fmt.Sprintf("Created counter-transfer in account %q", accountName),
		func(l *domain.Ledger) error {
			owner, t, err := ref.resolveOrphan(l)
			if err != nil {
				return err
			}
			other, err := l.Account(accountID)
			if err != nil {
				return stale(err)
			}
			self := owner.(*domain.Account)

			transfer := domain.AccountTransfer{
				Date:     t.Date,
				Currency: t.Currency,
				Amount:   t.Amount,
				Note:     t.Note,
			}
			if t.Type == domain.TypeTransferOut {
				transfer.From, transfer.To = self, other
			} else {
				transfer.From, transfer.To = other, self
			}
			out, in, err := l.InsertAccountTransfer(transfer)
			if err != nil {
				return err
			}
			if t.Type == domain.TypeTransferOut {
				return l.SupersedeTransaction(self, t.ID, out.ID)
			}
			return l.SupersedeTransaction(self, t.ID, in.ID)
		})
}

func portfolioCounterTransferFix(ref transactionRef, portfolioID, portfolioName string) domain.Fix {
	return domain.NewFix(
		fmt.Sprintf("Create counter-transfer in portfolio %q", portfolioName),
		fmt.Sprintf("Created counter-transfer in portfolio %q", portfolioName),
		func(l *domain.Ledger) error {
			owner, t, err := ref.resolveOrphan(l)
			if err != nil {
				return err
			}
			other, err := l.Portfolio(portfolioID)
			if err != nil {
				return stale(err)
			}
			self := owner.(*domain.Portfolio)

			transfer := domain.PortfolioTransfer{
				Date:     t.Date,
				Currency: t.Currency,
				Security: t.Security,
				Shares:   t.Shares,
				Amount:   t.Amount,
				Note:     t.Note,
			}
			if t.Type == domain.TypeTransferOut {
				transfer.From, transfer.To = self, other
			} else {
				transfer.From, transfer.To = other, self
			}
			out, in, err := l.InsertPortfolioTransfer(transfer)
			if err != nil {
				return err
			}
			if t.Type == domain.TypeTransferOut {
				return l.SupersedeTransaction(self, t.ID, out.ID)
			}
			return l.SupersedeTransaction(self, t.ID, in.ID)
		})
}
