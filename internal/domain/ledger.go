package domain

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strconv"
)

const (
	// VersionTaxRefundSecurityFix is the first file format version that no
	// longer wrote stray securities onto TAX_REFUND transactions.
	VersionTaxRefundSecurityFix = 52

	// CurrentVersion is the file format version written by this code.
	CurrentVersion = 60
)

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

type sequence struct {
	n int
}

func (s *sequence) Generate() string {
	s.n++
	return "gen-" + strconv.Itoa(s.n)
}

// Ledger is the root aggregate: it owns accounts, portfolios and securities
// and is the unit of consistency checking.
//
// Containers and securities are referenced by pointer; transactions and
// cross entries are referenced by ID and resolved through the ledger.
type Ledger struct {
	Version      int
	BaseCurrency string
	Accounts     []*Account
	Portfolios   []*Portfolio
	Securities   []*Security

	crossEntries map[string]*CrossEntry
	ids          IDGenerator
}

// NewLedger creates an empty ledger. A nil generator falls back to a
// process-local sequence.
func NewLedger(ids IDGenerator) *Ledger {
	if ids == nil {
		ids = &sequence{}
	}
	return &Ledger{
		Version:      CurrentVersion,
		crossEntries: make(map[string]*CrossEntry),
		ids:          ids,
	}
}

// NewID returns a fresh identifier from the ledger's generator.
func (l *Ledger) NewID() string {
	return l.ids.Generate()
}

// AddAccount appends an account, assigning an ID when missing.
func (l *Ledger) AddAccount(a *Account) {
	if a.ID == "" {
		a.ID = l.NewID()
	}
	l.Accounts = append(l.Accounts, a)
}

// AddPortfolio appends a portfolio, assigning an ID when missing.
func (l *Ledger) AddPortfolio(p *Portfolio) {
	if p.ID == "" {
		p.ID = l.NewID()
	}
	l.Portfolios = append(l.Portfolios, p)
}

// AddSecurity appends a security to the master list.
func (l *Ledger) AddSecurity(s *Security) {
	l.Securities = append(l.Securities, s)
}

// HasAccount reports whether the account object is part of the account list.
func (l *Ledger) HasAccount(a *Account) bool {
	return slices.Contains(l.Accounts, a)
}

// HasSecurity reports whether the security object is part of the master list.
func (l *Ledger) HasSecurity(s *Security) bool {
	return slices.Contains(l.Securities, s)
}

// Account returns the listed account with the given ID.
func (l *Ledger) Account(id string) (*Account, error) {
	for _, a := range l.Accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
}

// Portfolio returns the listed portfolio with the given ID.
func (l *Ledger) Portfolio(id string) (*Portfolio, error) {
	for _, p := range l.Portfolios {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPortfolioNotFound, id)
}

// Security returns the listed security with the given UUID.
func (l *Ledger) Security(uuid string) (*Security, error) {
	for _, s := range l.Securities {
		if s.UUID != "" && s.UUID == uuid {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSecurityNotFound, uuid)
}

// MasterSecurity returns the listed security sharing the identity of s, or nil.
func (l *Ledger) MasterSecurity(s *Security) *Security {
	for _, m := range l.Securities {
		if SameSecurity(m, s) {
			return m
		}
	}
	return nil
}

// Owner resolves an account or portfolio by kind and ID.
func (l *Ledger) Owner(kind EntityKind, id string) (Owner, error) {
	switch kind {
	case EntityAccount:
		return l.Account(id)
	case EntityPortfolio:
		return l.Portfolio(id)
	default:
		return nil, fmt.Errorf("%w: %s %s", ErrTransactionNotFound, kind, id)
	}
}

// Transactions yields every transaction with its owner, accounts first, in
// ledger order.
func (l *Ledger) Transactions() iter.Seq2[Owner, *Transaction] {
	return func(yield func(Owner, *Transaction) bool) {
		for _, a := range l.Accounts {
			for _, t := range a.Transactions {
				if !yield(a, &t.Transaction) {
					return
				}
			}
		}
		for _, p := range l.Portfolios {
			for _, t := range p.Transactions {
				if !yield(p, &t.Transaction) {
					return
				}
			}
		}
	}
}

// FindAccountTransaction searches all listed accounts for a transaction.
func (l *Ledger) FindAccountTransaction(id string) (*Account, *AccountTransaction, error) {
	for _, a := range l.Accounts {
		if t, ok := a.Transaction(id); ok {
			return a, t, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: account transaction %s", ErrTransactionNotFound, id)
}

// FindPortfolioTransaction searches all listed portfolios for a transaction.
func (l *Ledger) FindPortfolioTransaction(id string) (*Portfolio, *PortfolioTransaction, error) {
	for _, p := range l.Portfolios {
		if t, ok := p.Transaction(id); ok {
			return p, t, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: portfolio transaction %s", ErrTransactionNotFound, id)
}

// FindTransaction resolves a transaction inside a given owner.
func (l *Ledger) FindTransaction(owner Owner, id string) (*Transaction, error) {
	switch o := owner.(type) {
	case *Account:
		if t, ok := o.Transaction(id); ok {
			return &t.Transaction, nil
		}
	case *Portfolio:
		if t, ok := o.Transaction(id); ok {
			return &t.Transaction, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
}

// AddAccountTransaction appends an unpaired transaction to an account.
func (l *Ledger) AddAccountTransaction(a *Account, t *AccountTransaction) {
	if t.ID == "" {
		t.ID = l.NewID()
	}
	a.add(t)
}

// AddPortfolioTransaction appends an unpaired transaction to a portfolio.
func (l *Ledger) AddPortfolioTransaction(p *Portfolio, t *PortfolioTransaction) {
	if t.ID == "" {
		t.ID = l.NewID()
	}
	p.add(t)
}

// CrossEntry returns the cross entry with the given ID.
func (l *Ledger) CrossEntry(id string) (*CrossEntry, bool) {
	c, ok := l.crossEntries[id]
	return c, ok
}

// CrossEntries returns all cross entries ordered by ID.
func (l *Ledger) CrossEntries() []*CrossEntry {
	keys := slices.Sorted(maps.Keys(l.crossEntries))
	out := make([]*CrossEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, l.crossEntries[k])
	}
	return out
}

// RegisterCrossEntry records an existing cross entry, typically while
// loading a ledger. Transactions resolvable through its legs get their
// CrossEntryID set.
func (l *Ledger) RegisterCrossEntry(c *CrossEntry) error {
	if c.ID == "" {
		c.ID = l.NewID()
	}
	if !c.validShape() {
		return fmt.Errorf("%w: %s %s", ErrInvalidCrossEntryShape, c.Kind, c.ID)
	}
	l.crossEntries[c.ID] = c
	for _, leg := range []Leg{c.Source, c.Target} {
		if t, ok := leg.transaction(); ok {
			t.CrossEntryID = c.ID
		}
	}
	return nil
}

// Counterpart returns the transaction linked to t through a valid cross
// entry. A cross entry is valid when it names t on one leg under owner, and
// the other leg resolves to a transaction in a different container that
// points back to the same cross entry.
func (l *Ledger) Counterpart(owner Owner, t *Transaction) (Owner, *Transaction, bool) {
	if t.CrossEntryID == "" {
		return nil, nil, false
	}
	c, ok := l.crossEntries[t.CrossEntryID]
	if !ok {
		return nil, nil, false
	}

	var self, other Leg
	switch t.ID {
	case c.Source.TransactionID:
		self, other = c.Source, c.Target
	case c.Target.TransactionID:
		self, other = c.Target, c.Source
	default:
		return nil, nil, false
	}

	if self.Owner() != owner || other.Owner() == nil || self.sameOwner(other) {
		return nil, nil, false
	}

	ot, ok := other.transaction()
	if !ok || ot.CrossEntryID != c.ID {
		return nil, nil, false
	}
	return other.Owner(), ot, true
}

// Linked reports whether t owns a valid cross entry.
func (l *Ledger) Linked(owner Owner, t *Transaction) bool {
	_, _, ok := l.Counterpart(owner, t)
	return ok
}

// InsertBuySell creates the portfolio and account sides of a trade together
// with the cross entry linking them.
func (l *Ledger) InsertBuySell(e BuySell) (*PortfolioTransaction, *AccountTransaction, error) {
	if e.Portfolio == nil || e.Account == nil {
		return nil, nil, ErrMissingOwner
	}
	if !e.Type.IsTrade() {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidTransactionType, e.Type)
	}
	if e.Security == nil {
		return nil, nil, ErrSecurityRequired
	}

	c := &CrossEntry{ID: l.NewID(), Kind: KindBuySell}
	base := Transaction{
		Type:         e.Type,
		Date:         e.Date,
		Currency:     e.Currency,
		Amount:       e.Amount,
		Security:     e.Security,
		Shares:       e.Shares,
		Note:         e.Note,
		CrossEntryID: c.ID,
	}

	pt := &PortfolioTransaction{Transaction: base}
	pt.ID = l.NewID()
	pt.Units = CloneUnits(e.Units)

	at := &AccountTransaction{Transaction: base}
	at.ID = l.NewID()

	c.Source = Leg{Portfolio: e.Portfolio, TransactionID: pt.ID}
	c.Target = Leg{Account: e.Account, TransactionID: at.ID}

	e.Portfolio.add(pt)
	e.Account.add(at)
	l.crossEntries[c.ID] = c
	return pt, at, nil
}

// InsertAccountTransfer creates the outbound and inbound legs of a cash
// transfer together with the cross entry linking them.
func (l *Ledger) InsertAccountTransfer(e AccountTransfer) (*AccountTransaction, *AccountTransaction, error) {
	if e.From == nil || e.To == nil {
		return nil, nil, ErrMissingOwner
	}
	if e.From == e.To {
		return nil, nil, ErrSameOwner
	}

	toCurrency := e.ToCurrency
	if toCurrency == "" {
		toCurrency = e.Currency
	}

	c := &CrossEntry{ID: l.NewID(), Kind: KindAccountTransfer}
	out := &AccountTransaction{Transaction: Transaction{
		ID:           l.NewID(),
		Type:         TypeTransferOut,
		Date:         e.Date,
		Currency:     e.Currency,
		Amount:       e.Amount,
		Note:         e.Note,
		CrossEntryID: c.ID,
	}}
	in := &AccountTransaction{Transaction: Transaction{
		ID:           l.NewID(),
		Type:         TypeTransferIn,
		Date:         e.Date,
		Currency:     toCurrency,
		Amount:       e.Amount,
		Note:         e.Note,
		CrossEntryID: c.ID,
	}}

	c.Source = Leg{Account: e.From, TransactionID: out.ID}
	c.Target = Leg{Account: e.To, TransactionID: in.ID}

	e.From.add(out)
	e.To.add(in)
	l.crossEntries[c.ID] = c
	return out, in, nil
}

// InsertPortfolioTransfer creates the outbound and inbound legs of a share
// transfer together with the cross entry linking them.
func (l *Ledger) InsertPortfolioTransfer(e PortfolioTransfer) (*PortfolioTransaction, *PortfolioTransaction, error) {
	if e.From == nil || e.To == nil {
		return nil, nil, ErrMissingOwner
	}
	if e.From == e.To {
		return nil, nil, ErrSameOwner
	}
	if e.Security == nil {
		return nil, nil, ErrSecurityRequired
	}

	c := &CrossEntry{ID: l.NewID(), Kind: KindPortfolioTransfer}
	base := Transaction{
		Date:         e.Date,
		Currency:     e.Currency,
		Amount:       e.Amount,
		Security:     e.Security,
		Shares:       e.Shares,
		Note:         e.Note,
		CrossEntryID: c.ID,
	}

	out := &PortfolioTransaction{Transaction: base}
	out.ID = l.NewID()
	out.Type = TypeTransferOut

	in := &PortfolioTransaction{Transaction: base}
	in.ID = l.NewID()
	in.Type = TypeTransferIn

	c.Source = Leg{Portfolio: e.From, TransactionID: out.ID}
	c.Target = Leg{Portfolio: e.To, TransactionID: in.ID}

	e.From.add(out)
	e.To.add(in)
	l.crossEntries[c.ID] = c
	return out, in, nil
}

// RemoveTransaction removes a single transaction from its owner without
// touching its counterpart. A cross entry naming the transaction is dropped
// and the counterpart, if any, becomes unlinked.
func (l *Ledger) RemoveTransaction(owner Owner, id string) error {
	var removed *Transaction
	switch o := owner.(type) {
	case *Account:
		if t, ok := o.remove(id); ok {
			removed = &t.Transaction
		}
	case *Portfolio:
		if t, ok := o.remove(id); ok {
			removed = &t.Transaction
		}
	}
	if removed == nil {
		return fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}

	if c, ok := l.crossEntries[removed.CrossEntryID]; ok {
		if _, names := c.Counterpart(removed.ID); names {
			l.UnlinkCrossEntry(c.ID)
		}
	}
	removed.CrossEntryID = ""
	return nil
}

// SupersedeTransaction removes the transaction oldID from owner like
// RemoveTransaction and moves newID, already in owner, into the freed
// position. Replay order of the container is preserved.
func (l *Ledger) SupersedeTransaction(owner Owner, oldID, newID string) error {
	var idx int
	switch o := owner.(type) {
	case *Account:
		idx = o.indexOf(oldID)
		if o.indexOf(newID) < 0 {
			idx = -1
		}
	case *Portfolio:
		idx = o.indexOf(oldID)
		if o.indexOf(newID) < 0 {
			idx = -1
		}
	default:
		idx = -1
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTransactionNotFound, oldID)
	}

	if err := l.RemoveTransaction(owner, oldID); err != nil {
		return err
	}
	switch o := owner.(type) {
	case *Account:
		o.moveTo(newID, idx)
	case *Portfolio:
		o.moveTo(newID, idx)
	}
	return nil
}

// DeleteTransaction removes a transaction and, when it owns a valid cross
// entry, its counterpart as well.
func (l *Ledger) DeleteTransaction(owner Owner, id string) error {
	t, err := l.FindTransaction(owner, id)
	if err != nil {
		return err
	}

	if cOwner, ct, ok := l.Counterpart(owner, t); ok {
		if err := l.RemoveTransaction(cOwner, ct.ID); err != nil {
			return err
		}
	}
	return l.RemoveTransaction(owner, id)
}

// UnlinkCrossEntry drops a cross entry and clears the back-reference of every
// leg transaction still pointing at it.
func (l *Ledger) UnlinkCrossEntry(id string) {
	c, ok := l.crossEntries[id]
	if !ok {
		return
	}
	delete(l.crossEntries, id)
	for _, leg := range []Leg{c.Source, c.Target} {
		if t, ok := leg.transaction(); ok && t.CrossEntryID == id {
			t.CrossEntryID = ""
		}
	}
}

// ReplacePortfolioTransaction swaps a transaction for another one at the same
// position. The replaced transaction's cross entry is unlinked but its
// counterpart is left in place.
func (l *Ledger) ReplacePortfolioTransaction(p *Portfolio, id string, t *PortfolioTransaction) error {
	old, ok := p.Transaction(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	if t.ID == "" {
		t.ID = l.NewID()
	}
	if old.CrossEntryID != "" {
		l.UnlinkCrossEntry(old.CrossEntryID)
	}
	p.replace(id, t)
	return nil
}
