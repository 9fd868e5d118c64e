package usecase

import (
	"fmt"

	"github.com/iho/ledgercheck/internal/domain"
)

// CrossEntryCheck pairs up orphaned halves of trades and transfers and
// reports the orphans it cannot pair.
//
// It runs three passes in order: trades, account transfers, portfolio
// transfers. Each pass matches over a snapshot of its orphan pool, then
// commits all pairings at once. Among several equally valid candidates the
// first in ledger order wins.
type CrossEntryCheck struct{}

// NewCrossEntryCheck creates a new cross entry check
func NewCrossEntryCheck() *CrossEntryCheck {
	return &CrossEntryCheck{}
}

// Name returns the check name.
func (c *CrossEntryCheck) Name() string {
	return CheckCrossEntries
}

// Execute runs the three matching passes. Rebuilt pairs take the positions
// of the orphans they replace.
func (c *CrossEntryCheck) Execute(l *domain.Ledger) ([]domain.Issue, error) {
	pools := collectOrphans(l)

	var issues []domain.Issue

	tradeIssues, err := reconcileTrades(l, pools.accountTrades, pools.portfolioTrades)
	if err != nil {
		return nil, err
	}
	issues = append(issues, tradeIssues...)

	transferIssues, err := reconcileAccountTransfers(l, pools.accountTransfers)
	if err != nil {
		return nil, err
	}
	issues = append(issues, transferIssues...)

	deliveryIssues, err := reconcilePortfolioTransfers(l, pools.portfolioTransfers)
	if err != nil {
		return nil, err
	}
	issues = append(issues, deliveryIssues...)

	return issues, nil
}

type accountOrphan struct {
	account *domain.Account
	tx      *domain.AccountTransaction
}

func (o accountOrphan) ref() transactionRef { return refTo(o.account, &o.tx.Transaction) }

type portfolioOrphan struct {
	portfolio *domain.Portfolio
	tx        *domain.PortfolioTransaction
}

func (o portfolioOrphan) ref() transactionRef { return refTo(o.portfolio, &o.tx.Transaction) }

type orphanPools struct {
	accountTrades      []accountOrphan
	accountTransfers   []accountOrphan
	portfolioTrades    []portfolioOrphan
	portfolioTransfers []portfolioOrphan
}

// collectOrphans gathers every cross-relevant transaction without a valid
// cross entry.
func collectOrphans(l *domain.Ledger) orphanPools {
	var pools orphanPools
	for _, a := range l.Accounts {
		for _, t := range a.Transactions {
			if !t.Type.IsCrossRelevant() || l.Linked(a, &t.Transaction) {
				continue
			}
			o := accountOrphan{account: a, tx: t}
			if t.Type.IsTrade() {
				pools.accountTrades = append(pools.accountTrades, o)
			} else {
				pools.accountTransfers = append(pools.accountTransfers, o)
			}
		}
	}
	for _, p := range l.Portfolios {
		for _, t := range p.Transactions {
			if !t.Type.IsCrossRelevant() || l.Linked(p, &t.Transaction) {
				continue
			}
			o := portfolioOrphan{portfolio: p, tx: t}
			if t.Type.IsTrade() {
				pools.portfolioTrades = append(pools.portfolioTrades, o)
			} else {
				pools.portfolioTransfers = append(pools.portfolioTransfers, o)
			}
		}
	}
	return pools
}

// Trades

type tradePair struct {
	account   accountOrphan
	portfolio portfolioOrphan
}

type tradeMatching struct {
	pairs             []tradePair
	missingSecurity   []accountOrphan
	unmatchedAccounts []accountOrphan
	unmatchedHoldings []portfolioOrphan
}

func tradeMatches(a accountOrphan, p portfolioOrphan) bool {
	return p.tx.Type == a.tx.Type &&
		p.tx.Date.Equal(a.tx.Date) &&
		domain.SameSecurity(p.tx.Security, a.tx.Security) &&
		p.tx.Amount.Equal(a.tx.Amount)
}

func matchTrades(accounts []accountOrphan, portfolios []portfolioOrphan) tradeMatching {
	var m tradeMatching
	consumed := make([]bool, len(portfolios))

	for _, a := range accounts {
		if a.tx.Security == nil {
			m.missingSecurity = append(m.missingSecurity, a)
			continue
		}
		match := -1
		for i, p := range portfolios {
			if !consumed[i] && tradeMatches(a, p) {
				match = i
				break
			}
		}
		if match < 0 {
			m.unmatchedAccounts = append(m.unmatchedAccounts, a)
			continue
		}
		consumed[match] = true
		m.pairs = append(m.pairs, tradePair{account: a, portfolio: portfolios[match]})
	}

	for i, p := range portfolios {
		if !consumed[i] {
			m.unmatchedHoldings = append(m.unmatchedHoldings, p)
		}
	}
	return m
}

func commitTrade(l *domain.Ledger, pair tradePair) error {
	a, p := pair.account, pair.portfolio
	pt, at, err := l.InsertBuySell(domain.BuySell{
		Portfolio: p.portfolio,
		Account:   a.account,
		Type:      a.tx.Type,
		Date:      a.tx.Date,
		Currency:  firstNonEmpty(a.tx.Currency, p.tx.Currency),
		Security:  p.tx.Security,
		Shares:    p.tx.Shares,
		Amount:    a.tx.Amount,
		Note:      firstNonEmpty(a.tx.Note, p.tx.Note),
		Units:     p.tx.Units,
	})
	if err != nil {
		return fmt.Errorf("pair trade %s with %s: %w", a.tx.ID, p.tx.ID, err)
	}
	if err := l.SupersedeTransaction(a.account, a.tx.ID, at.ID); err != nil {
		return err
	}
	return l.SupersedeTransaction(p.portfolio, p.tx.ID, pt.ID)
}

func reconcileTrades(l *domain.Ledger, accounts []accountOrphan, portfolios []portfolioOrphan) ([]domain.Issue, error) {
	m := matchTrades(accounts, portfolios)

	for _, pair := range m.pairs {
		if err := commitTrade(l, pair); err != nil {
			return nil, err
		}
	}

	issues := make([]domain.Issue, 0, len(m.missingSecurity)+len(m.unmatchedAccounts)+len(m.unmatchedHoldings))
	for _, o := range m.missingSecurity {
		issues = append(issues, transactionIssue(o.account, &o.tx.Transaction,
			fmt.Sprintf("%s without a security in account %q", o.tx.Type, o.account.Name),
			deleteOrphanFix(o.ref())))
	}
	for _, o := range m.unmatchedAccounts {
		issues = append(issues, unmatchedAccountTradeIssue(l, o))
	}
	for _, o := range m.unmatchedHoldings {
		issues = append(issues, unmatchedPortfolioTradeIssue(l, o))
	}
	return issues, nil
}

// Account transfers

type transferPair[T any] struct {
	out T
	in  T
}

// matchTransfers pairs each unconsumed suspect with the first unconsumed
// candidate accepted by matches, orienting the pair by direction.
func matchTransfers[T any](pool []T, matches func(suspect, candidate T) bool, outbound func(T) bool) ([]transferPair[T], []T) {
	var (
		pairs     []transferPair[T]
		unmatched []T
	)
	consumed := make([]bool, len(pool))

	for i, suspect := range pool {
		if consumed[i] {
			continue
		}
		consumed[i] = true

		match := -1
		for j, candidate := range pool {
			if !consumed[j] && matches(suspect, candidate) {
				match = j
				break
			}
		}
		if match < 0 {
			unmatched = append(unmatched, suspect)
			continue
		}
		consumed[match] = true

		if outbound(suspect) {
			pairs = append(pairs, transferPair[T]{out: suspect, in: pool[match]})
		} else {
			pairs = append(pairs, transferPair[T]{out: pool[match], in: suspect})
		}
	}
	return pairs, unmatched
}

func accountTransferMatches(suspect, candidate accountOrphan) bool {
	return candidate.account != suspect.account &&
		candidate.tx.Type == suspect.tx.Type.Opposite() &&
		candidate.tx.Date.Equal(suspect.tx.Date) &&
		candidate.tx.Amount.Equal(suspect.tx.Amount)
}

func commitAccountTransfer(l *domain.Ledger, pair transferPair[accountOrphan]) error {
	out, in := pair.out, pair.in
	outbound, inbound, err := l.InsertAccountTransfer(domain.AccountTransfer{
		From:       out.account,
		To:         in.account,
		Date:       out.tx.Date,
		Currency:   out.tx.Currency,
		ToCurrency: in.tx.Currency,
		Amount:     out.tx.Amount,
		Note:       firstNonEmpty(out.tx.Note, in.tx.Note),
	})
	if err != nil {
		return fmt.Errorf("pair transfer %s with %s: %w", out.tx.ID, in.tx.ID, err)
	}
	// each leg keeps the currency it was booked in, even when empty
	inbound.Currency = in.tx.Currency
	outbound.Units = domain.CloneUnits(out.tx.Units)
	inbound.Units = domain.CloneUnits(in.tx.Units)

	if err := l.SupersedeTransaction(out.account, out.tx.ID, outbound.ID); err != nil {
		return err
	}
	return l.SupersedeTransaction(in.account, in.tx.ID, inbound.ID)
}

func reconcileAccountTransfers(l *domain.Ledger, pool []accountOrphan) ([]domain.Issue, error) {
	pairs, unmatched := matchTransfers(pool, accountTransferMatches, func(o accountOrphan) bool {
		return o.tx.Type == domain.TypeTransferOut
	})

	for _, pair := range pairs {
		if err := commitAccountTransfer(l, pair); err != nil {
			return nil, err
		}
	}

	issues := make([]domain.Issue, 0, len(unmatched))
	for _, o := range unmatched {
		issues = append(issues, unmatchedAccountTransferIssue(l, o))
	}
	return issues, nil
}

// Portfolio transfers

func portfolioTransferMatches(suspect, candidate portfolioOrphan) bool {
	return candidate.portfolio != suspect.portfolio &&
		candidate.tx.Type == suspect.tx.Type.Opposite() &&
		candidate.tx.Date.Equal(suspect.tx.Date) &&
		domain.SameSecurity(candidate.tx.Security, suspect.tx.Security) &&
		candidate.tx.Shares.Equal(suspect.tx.Shares) &&
		candidate.tx.Amount.Equal(suspect.tx.Amount)
}

func commitPortfolioTransfer(l *domain.Ledger, pair transferPair[portfolioOrphan]) error {
	out, in := pair.out, pair.in
	outbound, inbound, err := l.InsertPortfolioTransfer(domain.PortfolioTransfer{
		From:     out.portfolio,
		To:       in.portfolio,
		Date:     out.tx.Date,
		Currency: out.tx.Currency,
		Security: out.tx.Security,
		Shares:   out.tx.Shares,
		Amount:   out.tx.Amount,
		Note:     firstNonEmpty(out.tx.Note, in.tx.Note),
	})
	if err != nil {
		return fmt.Errorf("pair transfer %s with %s: %w", out.tx.ID, in.tx.ID, err)
	}
	inbound.Currency = in.tx.Currency
	outbound.Units = domain.CloneUnits(out.tx.Units)
	inbound.Units = domain.CloneUnits(in.tx.Units)

	if err := l.SupersedeTransaction(out.portfolio, out.tx.ID, outbound.ID); err != nil {
		return err
	}
	return l.SupersedeTransaction(in.portfolio, in.tx.ID, inbound.ID)
}

func reconcilePortfolioTransfers(l *domain.Ledger, pool []portfolioOrphan) ([]domain.Issue, error) {
	pairs, unmatched := matchTransfers(pool, portfolioTransferMatches, func(o portfolioOrphan) bool {
		return o.tx.Type == domain.TypeTransferOut
	})

	for _, pair := range pairs {
		if err := commitPortfolioTransfer(l, pair); err != nil {
			return nil, err
		}
	}

	issues := make([]domain.Issue, 0, len(unmatched))
	for _, o := range unmatched {
		issues = append(issues, unmatchedPortfolioTransferIssue(l, o))
	}
	return issues, nil
}
