package usecase_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/ledgercheck/internal/domain"
	"github.com/iho/ledgercheck/internal/usecase"
)

func TestCrossEntryCheck_ReconcilesOrphanedTrade(t *testing.T) {
	f := newFixture()
	f.accountTx(f.cash, domain.TypeBuy, 1000, f.acme)
	fee := domain.Unit{Type: domain.UnitFee, Amount: domain.NewMoney(decimal.NewFromInt(5), "EUR")}
	pt := f.portfolioTx(f.depot, domain.TypeBuy, 10, 1000, f.acme)
	pt.Units = []domain.Unit{fee}

	issues, err := usecase.NewCrossEntryCheck().Execute(f.ledger)
	require.NoError(t, err)
	assert.Empty(t, issues)

	require.Len(t, f.cash.Transactions, 1)
	require.Len(t, f.depot.Transactions, 1)

	at := f.cash.Transactions[0]
	owner, counterpart := linkedPair(t, f.ledger, f.cash, &at.Transaction)
	assert.Equal(t, domain.Owner(f.depot), owner)
	assert.Equal(t, f.depot.Transactions[0].ID, counterpart.ID)

	owner, counterpart = linkedPair(t, f.ledger, f.depot, &f.depot.Transactions[0].Transaction)
	assert.Equal(t, domain.Owner(f.cash), owner)
	assert.Equal(t, at.ID, counterpart.ID)

	paired := f.depot.Transactions[0]
	assert.True(t, paired.Shares.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, []domain.Unit{fee}, paired.Units)
	assert.Same(t, f.acme, paired.Security)
}

func TestCrossEntryCheck_IgnoresPairedTransactions(t *testing.T) {
	f := newFixture()
	other := f.addAccount("Savings", "EUR")
	second := f.addPortfolio("Second", f.cash)

	_, _, err := f.ledger.InsertBuySell(domain.BuySell{
		Portfolio: f.depot, Account: f.cash, Type: domain.TypeSell,
		Date: tradeDate, Currency: "EUR", Security: f.acme,
		Shares: decimal.NewFromInt(3), Amount: decimal.NewFromInt(300),
	})
	require.NoError(t, err)
	_, _, err = f.ledger.InsertAccountTransfer(domain.AccountTransfer{
		From: f.cash, To: other, Date: tradeDate, Currency: "EUR", Amount: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	_, _, err = f.ledger.InsertPortfolioTransfer(domain.PortfolioTransfer{
		From: f.depot, To: second, Date: tradeDate, Currency: "EUR", Security: f.acme,
		Shares: decimal.NewFromInt(1), Amount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	issues, err := usecase.NewCrossEntryCheck().Execute(f.ledger)
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Len(t, f.ledger.CrossEntries(), 3)
}

func TestCrossEntryCheck_SecondRunFindsNothing(t *testing.T) {
	f := newFixture()
	f.accountTx(f.cash, domain.TypeSell, 700, f.acme)
	f.portfolioTx(f.depot, domain.TypeSell, 7, 700, f.acme)

	check := usecase.NewCrossEntryCheck()
	issues, err := check.Execute(f.ledger)
	require.NoError(t, err)
	require.Empty(t, issues)
	entries := f.ledger.CrossEntries()

	issues, err = check.Execute(f.ledger)
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, entries, f.ledger.CrossEntries())
}

func TestCrossEntryCheck_OrphanedAccountBuy(t *testing.T) {
	f := newFixture()
	at := f.accountTx(f.cash, domain.TypeBuy, 1000, f.acme)

	issues, err := usecase.NewCrossEntryCheck().Execute(f.ledger)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, domain.EntityAccount, issue.Entity.Kind)
	assert.Equal(t, f.cash.ID, issue.Entity.ID)
	require.NotNil(t, issue.Date)
	assert.True(t, issue.Date.Equal(tradeDate))
	require.NotNil(t, issue.Amount)
	assert.True(t, issue.Amount.Amount.Equal(at.Amount))
	assert.Equal(t, []string{
		"Convert to REMOVAL",
		`Create matching transaction in portfolio "Depot"`,
		"Delete transaction",
	}, fixLabels(issue))

	require.NoError(t, fixByPrefix(t, issue, "Delete").Execute(f.ledger))
	assert.Empty(t, f.cash.Transactions)
}

func TestCrossEntryCheck_AccountTradeWithoutSecurity(t *testing.T) {
	f := newFixture()
	f.accountTx(f.cash, domain.TypeBuy, 1000, nil)
	f.portfolioTx(f.depot, domain.TypeBuy, 10, 1000, f.acme)

	issues, err := usecase.NewCrossEntryCheck().Execute(f.ledger)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, []string{"Delete transaction"}, fixLabels(issues[0]))
	assert.Equal(t, domain.EntityAccount, issues[0].Entity.Kind)

	// the portfolio side stays unmatched
	assert.Equal(t, domain.EntityPortfolio, issues[1].Entity.Kind)
	assert.Equal(t, "Convert to DELIVERY_INBOUND", issues[1].Fixes[0].Label)
}

func TestCrossEntryCheck_FirstCandidateWins(t *testing.T) {
	f := newFixture()
	second := f.addPortfolio("Second", f.cash)
	f.accountTx(f.cash, domain.TypeBuy, 1000, f.acme)
	first := f.portfolioTx(f.depot, domain.TypeBuy, 10, 1000, f.acme)
	f.portfolioTx(second, domain.TypeBuy, 10, 1000, f.acme)

	issues, err := usecase.NewCrossEntryCheck().Execute(f.ledger)
	require.NoError(t, err)

	require.Len(t, f.depot.Transactions, 1)
	assert.NotEqual(t, first.ID, f.depot.Transactions[0].ID, "original should be replaced")
	assert.True(t, f.ledger.Linked(f.depot, &f.depot.Transactions[0].Transaction))

	require.Len(t, issues, 1)
	assert.Equal(t, second.ID, issues[0].Entity.ID)
}

func TestCrossEntryCheck_TradeCriteria(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *fixture, pt *domain.PortfolioTransaction)
	}{
		{"type", func(_ *fixture, pt *domain.PortfolioTransaction) { pt.Type = domain.TypeSell }},
		{"date", func(_ *fixture, pt *domain.PortfolioTransaction) { pt.Date = tradeDate.Add(1) }},
		{"amount", func(_ *fixture, pt *domain.PortfolioTransaction) { pt.Amount = decimal.NewFromInt(999) }},
		{"security", func(f *fixture, pt *domain.PortfolioTransaction) {
			other := &domain.Security{UUID: "other-uuid", Name: "Other"}
			f.ledger.AddSecurity(other)
			pt.Security = other
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.accountTx(f.cash, domain.TypeBuy, 1000, f.acme)
			pt := f.portfolioTx(f.depot, domain.TypeBuy, 10, 1000, f.acme)
			tt.mutate(f, pt)

			issues, err := usecase.NewCrossEntryCheck().Execute(f.ledger)
			require.NoError(t, err)
			assert.Len(t, issues, 2)
			assert.Empty(t, f.ledger.CrossEntries())
		})
	}
}

func TestCrossEntryCheck_PairWithPortfolioFix(t *testing.T) {
	f := newFixture()
	at := f.accountTx(f.cash, domain.TypeBuy, 1000, f.acme)

	issues, err := usecase.NewCrossEntryCheck().Execute(f.ledger)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	require.NoError(t, fixByPrefix(t, issues[0], "Create matching").Execute(f.ledger))

	require.Len(t, f.cash.Transactions, 1)
	require.Len(t, f.depot.Transactions, 1)
	assert.NotEqual(t, at.ID, f.cash.Transactions[0].ID)
	pt := f.depot.Transactions[0]
	assert.True(t, pt.Shares.Equal(decimal.NewFromInt(1)))
	assert.True(t, f.ledger.Linked(f.depot, &pt.Transaction))

	issues, err = usecase.NewCrossEntryCheck().Execute(f.ledger)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestCrossEntryCheck_PortfolioTradeFixes(t *testing.T) {
	f := newFixture()
	savings := f.addAccount("Savings", "EUR")
	pt := f.portfolioTx(f.depot, domain.TypeSell, 4, 400, f.acme)

	issues, err := usecase.NewCrossEntryCheck().Execute(f.ledger)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, []string{
		"Convert to DELIVERY_OUTBOUND",
		`Create matching transaction in account "Cash"`,
		`Create matching transaction in account "Savings"`,
		"Delete transaction",
	}, fixLabels(issues[0]))

	t.Run("convert", func(t *testing.T) {
		g := newFixture()
		gt := g.portfolioTx(g.depot, domain.TypeBuy, 4, 400, g.acme)
		found, err := usecase.NewCrossEntryCheck().Execute(g.ledger)
		require.NoError(t, err)
		require.NoError(t, found[0].Fixes[0].Execute(g.ledger))
		assert.Equal(t, domain.TypeDeliveryInbound, gt.Type)

		found, err = usecase.NewCrossEntryCheck().Execute(g.ledger)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("pair with account", func(t *testing.T) {
		require.NoError(t, fixByPrefix(t, issues[0], `Create matching transaction in account "Savings"`).Execute(f.ledger))
		require.Len(t, savings.Transactions, 1)
		require.Len(t, f.depot.Transactions, 1)
		assert.NotEqual(t, pt.ID, f.depot.Transactions[0].ID)
		assert.True(t, f.depot.Transactions[0].Shares.Equal(decimal.NewFromInt(4)))
		linkedPair(t, f.ledger, savings, &savings.Transactions[0].Transaction)
	})
}

func TestCrossEntryCheck_PairsAccountTransfers(t *testing.T) {
	f := newFixture()
	usd := f.addAccount("Dollars", "USD")
	in := f.accountTx(usd, domain.TypeTransferIn, 250, nil)
	f.accountTx(f.cash, domain.TypeTransferOut, 250, nil)

	issues, err := usecase.NewCrossEntryCheck().Execute(f.ledger)
	require.NoError(t, err)
	assert.Empty(t, issues)

	entries := f.ledger.CrossEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.KindAccountTransfer, entries[0].Kind)
	assert.Same(t, f.cash, entries[0].Source.Account)
	assert.Same(t, usd, entries[0].Target.Account)

	require.Len(t, usd.Transactions, 1)
	assert.NotEqual(t, in.ID, usd.Transactions[0].ID)
	assert.Equal(t, "USD", usd.Transactions[0].Currency)
	assert.Equal(t, "EUR", f.cash.Transactions[0].Currency)
}

func TestCrossEntryCheck_TransferWithinOneAccountIsNotPaired(t *testing.T) {
	f := newFixture()
	f.accountTx(f.cash, domain.TypeTransferOut, 250, nil)
	f.accountTx(f.cash, domain.TypeTransferIn, 250, nil)

	issues, err := usecase.NewCrossEntryCheck().Execute(f.ledger)
	require.NoError(t, err)
	assert.Len(t, issues, 2)
}

func TestCrossEntryCheck_UnmatchedAccountTransfer(t *testing.T) {
	f := newFixture()
	savings := f.addAccount("Savings", "EUR")
	out := f.accountTx(f.cash, domain.TypeTransferOut, 80, nil)

	issues, err := usecase.NewCrossEntryCheck().Execute(f.ledger)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, []string{
		`Create counter-transfer in account "Savings"`,
		"Delete transaction",
	}, fixLabels(issues[0]))

	require.NoError(t, issues[0].Fixes[0].Execute(f.ledger))
	require.Len(t, savings.Transactions, 1)
	assert.Equal(t, domain.TypeTransferIn, savings.Transactions[0].Type)
	assert.NotEqual(t, out.ID, f.cash.Transactions[0].ID)
	linkedPair(t, f.ledger, f.cash, &f.cash.Transactions[0].Transaction)
}

func TestCrossEntryCheck_PortfolioTransfers(t *testing.T) {
	t.Run("paired", func(t *testing.T) {
		f := newFixture()
		second := f.addPortfolio("Second", f.cash)
		f.portfolioTx(second, domain.TypeTransferIn, 5, 500, f.acme)
		f.portfolioTx(f.depot, domain.TypeTransferOut, 5, 500, f.acme)

		issues, err := usecase.NewCrossEntryCheck().Execute(f.ledger)
		require.NoError(t, err)
		assert.Empty(t, issues)

		entries := f.ledger.CrossEntries()
		require.Len(t, entries, 1)
		assert.Same(t, f.depot, entries[0].Source.Portfolio)
		assert.Same(t, second, entries[0].Target.Portfolio)
	})

	t.Run("share count differs", func(t *testing.T) {
		f := newFixture()
		second := f.addPortfolio("Second", f.cash)
		f.portfolioTx(second, domain.TypeTransferIn, 4, 500, f.acme)
		f.portfolioTx(f.depot, domain.TypeTransferOut, 5, 500, f.acme)

		issues, err := usecase.NewCrossEntryCheck().Execute(f.ledger)
		require.NoError(t, err)
		require.Len(t, issues, 2)
		assert.Equal(t, []string{
			`Create counter-transfer in portfolio "Depot"`,
			"Delete transaction",
		}, fixLabels(issues[1]))
	})
}

func TestCrossEntryCheck_StaleFix(t *testing.T) {
	f := newFixture()
	f.accountTx(f.cash, domain.TypeBuy, 1000, f.acme)

	issues, err := usecase.NewCrossEntryCheck().Execute(f.ledger)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	remove := fixByPrefix(t, issues[0], "Delete")
	require.NoError(t, remove.Execute(f.ledger))

	err = remove.Execute(f.ledger)
	require.ErrorIs(t, err, domain.ErrStaleFix)
	require.ErrorIs(t, err, domain.ErrTransactionNotFound)

	err = fixByPrefix(t, issues[0], "Convert").Execute(f.ledger)
	require.ErrorIs(t, err, domain.ErrStaleFix)
}

func TestCrossEntryCheck_DeleteFixLeavesPairedOrphanAlone(t *testing.T) {
	f := newFixture()
	at := f.accountTx(f.cash, domain.TypeBuy, 1000, f.acme)

	issues, err := usecase.NewCrossEntryCheck().Execute(f.ledger)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	// paired by another route after the issue was reported
	pt := f.portfolioTx(f.depot, domain.TypeBuy, 10, 1000, f.acme)
	require.NoError(t, f.ledger.RegisterCrossEntry(&domain.CrossEntry{
		Kind:   domain.KindBuySell,
		Source: domain.Leg{Portfolio: f.depot, TransactionID: pt.ID},
		Target: domain.Leg{Account: f.cash, TransactionID: at.ID},
	}))

	err = fixByPrefix(t, issues[0], "Delete").Execute(f.ledger)
	require.ErrorIs(t, err, domain.ErrStaleFix)
	assert.Len(t, f.cash.Transactions, 1)
	assert.Len(t, f.depot.Transactions, 1)
}

func TestCrossEntryCheck_PairingFixKeepsPosition(t *testing.T) {
	f := newFixture()
	orphan := f.accountTx(f.cash, domain.TypeBuy, 1000, f.acme)
	later := f.accountTx(f.cash, domain.TypeDeposit, 50, nil)

	issues, err := usecase.NewCrossEntryCheck().Execute(f.ledger)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	require.NoError(t, fixByPrefix(t, issues[0], "Create matching").Execute(f.ledger))

	require.Len(t, f.cash.Transactions, 2)
	assert.NotEqual(t, orphan.ID, f.cash.Transactions[0].ID)
	assert.True(t, f.ledger.Linked(f.cash, &f.cash.Transactions[0].Transaction))
	assert.Same(t, later, f.cash.Transactions[1])
}
