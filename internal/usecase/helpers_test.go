package usecase_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/ledgercheck/internal/domain"
)

var tradeDate = time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)

type fixture struct {
	ledger *domain.Ledger
	cash   *domain.Account
	depot  *domain.Portfolio
	acme   *domain.Security
}

// newFixture builds a ledger with one EUR account, one portfolio using it
// as reference account and one security.
func newFixture() *fixture {
	l := domain.NewLedger(nil)
	l.BaseCurrency = "EUR"

	cash := &domain.Account{Name: "Cash", Currency: "EUR"}
	l.AddAccount(cash)

	depot := &domain.Portfolio{Name: "Depot", ReferenceAccount: cash}
	l.AddPortfolio(depot)

	acme := &domain.Security{UUID: "acme-uuid", Name: "ACME", Currency: "EUR"}
	l.AddSecurity(acme)

	return &fixture{ledger: l, cash: cash, depot: depot, acme: acme}
}

func (f *fixture) addAccount(name, currency string) *domain.Account {
	a := &domain.Account{Name: name, Currency: currency}
	f.ledger.AddAccount(a)
	return a
}

func (f *fixture) addPortfolio(name string, reference *domain.Account) *domain.Portfolio {
	p := &domain.Portfolio{Name: name, ReferenceAccount: reference}
	f.ledger.AddPortfolio(p)
	return p
}

// accountTx books an unpaired account transaction.
func (f *fixture) accountTx(a *domain.Account, typ domain.TransactionType, amount int64, security *domain.Security) *domain.AccountTransaction {
	t := &domain.AccountTransaction{Transaction: domain.Transaction{
		Type:     typ,
		Date:     tradeDate,
		Currency: a.Currency,
		Amount:   decimal.NewFromInt(amount),
		Security: security,
	}}
	if security != nil && typ.IsTrade() {
		t.Shares = decimal.NewFromInt(10)
	}
	f.ledger.AddAccountTransaction(a, t)
	return t
}

// portfolioTx books an unpaired portfolio transaction.
func (f *fixture) portfolioTx(p *domain.Portfolio, typ domain.TransactionType, shares, amount int64, security *domain.Security) *domain.PortfolioTransaction {
	t := &domain.PortfolioTransaction{Transaction: domain.Transaction{
		Type:     typ,
		Date:     tradeDate,
		Currency: "EUR",
		Amount:   decimal.NewFromInt(amount),
		Security: security,
		Shares:   decimal.NewFromInt(shares),
	}}
	f.ledger.AddPortfolioTransaction(p, t)
	return t
}

func fixLabels(issue domain.Issue) []string {
	labels := make([]string, 0, len(issue.Fixes))
	for _, fix := range issue.Fixes {
		labels = append(labels, fix.Label)
	}
	return labels
}

// fixByPrefix returns the first fix whose label starts with prefix.
func fixByPrefix(t *testing.T, issue domain.Issue, prefix string) domain.Fix {
	t.Helper()
	for _, fix := range issue.Fixes {
		if strings.HasPrefix(fix.Label, prefix) {
			return fix
		}
	}
	require.Failf(t, "fix not found", "no fix starting with %q in %v", prefix, fixLabels(issue))
	return domain.Fix{}
}

func linkedPair(t *testing.T, l *domain.Ledger, owner domain.Owner, tx *domain.Transaction) (domain.Owner, *domain.Transaction) {
	t.Helper()
	cOwner, ct, ok := l.Counterpart(owner, tx)
	require.True(t, ok, "expected %s to be linked", tx.ID)
	return cOwner, ct
}
