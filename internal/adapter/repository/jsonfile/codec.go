package jsonfile

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iho/ledgercheck/internal/domain"
)

// Decode reads a ledger snapshot. ids generates IDs for objects created
// later on the returned ledger.
func Decode(r io.Reader, ids domain.IDGenerator) (*domain.Ledger, error) {
	var s snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	return s.toLedger(ids), nil
}

// Encode writes a ledger snapshot.
func Encode(w io.Writer, l *domain.Ledger) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fromLedger(l)); err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	return nil
}

type resolver struct {
	securities map[string]*domain.Security
	accounts   map[string]*domain.Account
}

// security resolves a key, creating a detached stub for unknown keys.
func (r *resolver) security(key string) *domain.Security {
	if key == "" {
		return nil
	}
	s, ok := r.securities[key]
	if !ok {
		s = &domain.Security{UUID: key}
		r.securities[key] = s
	}
	return s
}

// account resolves an ID, creating a detached stub for unknown IDs.
func (r *resolver) account(id string) *domain.Account {
	if id == "" {
		return nil
	}
	a, ok := r.accounts[id]
	if !ok {
		a = &domain.Account{ID: id}
		r.accounts[id] = a
	}
	return a
}

func (s *snapshot) toLedger(ids domain.IDGenerator) *domain.Ledger {
	l := domain.NewLedger(ids)
	l.Version = s.Version
	l.BaseCurrency = s.BaseCurrency

	r := &resolver{
		securities: make(map[string]*domain.Security),
		accounts:   make(map[string]*domain.Account),
	}

	for _, rec := range s.Securities {
		if rec == nil {
			continue
		}
		sec := rec.toDomain()
		l.AddSecurity(sec)
		r.securities[rec.Key] = sec
	}
	for _, rec := range s.DetachedSecurities {
		if rec != nil {
			r.securities[rec.Key] = rec.toDomain()
		}
	}

	listed := make([]*domain.Account, 0, len(s.Accounts))
	for _, rec := range s.Accounts {
		a := rec.toDomain()
		r.accounts[a.ID] = a
		listed = append(listed, a)
	}
	for _, rec := range s.DetachedAccounts {
		r.accounts[rec.ID] = rec.toDomain()
	}

	for _, a := range listed {
		l.AddAccount(a)
	}
	for i, rec := range s.Accounts {
		for _, t := range rec.Transactions {
			l.AddAccountTransaction(listed[i], &domain.AccountTransaction{Transaction: t.toDomain(r)})
		}
	}
	for _, rec := range s.DetachedAccounts {
		a := r.accounts[rec.ID]
		for _, t := range rec.Transactions {
			l.AddAccountTransaction(a, &domain.AccountTransaction{Transaction: t.toDomain(r)})
		}
	}

	portfolios := make(map[string]*domain.Portfolio, len(s.Portfolios))
	for _, rec := range s.Portfolios {
		p := &domain.Portfolio{
			ID:               rec.ID,
			Name:             rec.Name,
			ReferenceAccount: r.account(rec.ReferenceAccount),
			Retired:          rec.Retired,
		}
		l.AddPortfolio(p)
		portfolios[p.ID] = p
		for _, t := range rec.Transactions {
			l.AddPortfolioTransaction(p, &domain.PortfolioTransaction{Transaction: t.toDomain(r)})
		}
	}

	leg := func(rec legRecord) domain.Leg {
		return domain.Leg{
			Account:       r.account(rec.Account),
			Portfolio:     portfolios[rec.Portfolio],
			TransactionID: rec.Transaction,
		}
	}
	for _, rec := range s.CrossEntries {
		c := &domain.CrossEntry{
			ID:     rec.ID,
			Kind:   domain.CrossEntryKind(rec.Kind),
			Source: leg(rec.Source),
			Target: leg(rec.Target),
		}
		// malformed entries are dropped; their transactions load as orphans
		_ = l.RegisterCrossEntry(c)
	}

	return l
}

func (rec *securityRecord) toDomain() *domain.Security {
	s := &domain.Security{
		UUID:     rec.UUID,
		Name:     rec.Name,
		ISIN:     rec.ISIN,
		Currency: rec.Currency,
	}
	if rec.Prices != nil {
		s.Prices = make([]*domain.SecurityPrice, len(rec.Prices))
		for i, p := range rec.Prices {
			if p != nil {
				s.Prices[i] = &domain.SecurityPrice{Date: p.Date, Value: p.Value}
			}
		}
	}
	return s
}

func (rec accountRecord) toDomain() *domain.Account {
	return &domain.Account{
		ID:       rec.ID,
		Name:     rec.Name,
		Currency: rec.Currency,
		Retired:  rec.Retired,
	}
}

func (rec transactionRecord) toDomain(r *resolver) domain.Transaction {
	t := domain.Transaction{
		ID:           rec.ID,
		Type:         domain.TransactionType(rec.Type),
		Currency:     rec.Currency,
		Amount:       rec.Amount,
		Security:     r.security(rec.Security),
		Shares:       rec.Shares,
		Note:         rec.Note,
		ExDate:       rec.ExDate,
		CrossEntryID: rec.CrossEntry,
	}
	if rec.Date != nil {
		t.Date = *rec.Date
	}
	for _, u := range rec.Units {
		unit := domain.Unit{
			Type:         domain.UnitType(u.Type),
			Amount:       domain.NewMoney(u.Amount, u.Currency),
			ExchangeRate: u.ExchangeRate,
		}
		if u.ForexAmount != nil {
			forex := domain.NewMoney(*u.ForexAmount, u.ForexCurrency)
			unit.ForexAmount = &forex
		}
		t.Units = append(t.Units, unit)
	}
	return t
}

type encoder struct {
	securityKeys map[*domain.Security]string
	detached     map[*domain.Account]bool
	out          *snapshot
}

func fromLedger(l *domain.Ledger) *snapshot {
	e := &encoder{
		securityKeys: make(map[*domain.Security]string),
		detached:     make(map[*domain.Account]bool),
		out: &snapshot{
			Version:      l.Version,
			BaseCurrency: l.BaseCurrency,
			Securities:   make([]*securityRecord, 0, len(l.Securities)),
			Accounts:     make([]accountRecord, 0, len(l.Accounts)),
			Portfolios:   make([]portfolioRecord, 0, len(l.Portfolios)),
		},
	}

	for i, s := range l.Securities {
		if s == nil {
			continue
		}
		key := s.UUID
		if key == "" {
			key = fmt.Sprintf("security-%d", i)
		}
		e.securityKeys[s] = key
		e.out.Securities = append(e.out.Securities, securityToRecord(key, s))
	}

	for _, a := range l.Accounts {
		e.out.Accounts = append(e.out.Accounts, e.account(a))
	}

	var pending []*domain.Account
	markDetached := func(a *domain.Account) {
		if a != nil && !l.HasAccount(a) && !e.detached[a] {
			e.detached[a] = true
			pending = append(pending, a)
		}
	}

	for _, p := range l.Portfolios {
		rec := portfolioRecord{ID: p.ID, Name: p.Name, Retired: p.Retired}
		if p.ReferenceAccount != nil {
			rec.ReferenceAccount = p.ReferenceAccount.ID
			markDetached(p.ReferenceAccount)
		}
		for _, t := range p.Transactions {
			rec.Transactions = append(rec.Transactions, e.transaction(&t.Transaction))
		}
		e.out.Portfolios = append(e.out.Portfolios, rec)
	}

	for _, c := range l.CrossEntries() {
		markDetached(c.Source.Account)
		markDetached(c.Target.Account)
		e.out.CrossEntries = append(e.out.CrossEntries, crossEntryRecord{
			ID:     c.ID,
			Kind:   string(c.Kind),
			Source: legToRecord(c.Source),
			Target: legToRecord(c.Target),
		})
	}

	for _, a := range pending {
		e.out.DetachedAccounts = append(e.out.DetachedAccounts, e.account(a))
	}

	return e.out
}

func (e *encoder) account(a *domain.Account) accountRecord {
	rec := accountRecord{ID: a.ID, Name: a.Name, Currency: a.Currency, Retired: a.Retired}
	for _, t := range a.Transactions {
		rec.Transactions = append(rec.Transactions, e.transaction(&t.Transaction))
	}
	return rec
}

// securityKey returns the key of s, recording it as detached when it is not
// part of the master list.
func (e *encoder) securityKey(s *domain.Security) string {
	if s == nil {
		return ""
	}
	if key, ok := e.securityKeys[s]; ok {
		return key
	}
	key := s.UUID
	if key == "" {
		key = fmt.Sprintf("detached-%d", len(e.out.DetachedSecurities))
	}
	e.securityKeys[s] = key
	e.out.DetachedSecurities = append(e.out.DetachedSecurities, securityToRecord(key, s))
	return key
}

func (e *encoder) transaction(t *domain.Transaction) transactionRecord {
	rec := transactionRecord{
		ID:         t.ID,
		Type:       string(t.Type),
		Currency:   t.Currency,
		Amount:     t.Amount,
		Security:   e.securityKey(t.Security),
		Shares:     t.Shares,
		Note:       t.Note,
		ExDate:     t.ExDate,
		CrossEntry: t.CrossEntryID,
	}
	if t.HasDate() {
		date := t.Date
		rec.Date = &date
	}
	for _, u := range t.Units {
		unit := unitRecord{
			Type:         string(u.Type),
			Amount:       u.Amount.Amount,
			Currency:     u.Amount.Currency,
			ExchangeRate: u.ExchangeRate,
		}
		if u.ForexAmount != nil {
			amount := u.ForexAmount.Amount
			unit.ForexAmount = &amount
			unit.ForexCurrency = u.ForexAmount.Currency
		}
		rec.Units = append(rec.Units, unit)
	}
	return rec
}

func securityToRecord(key string, s *domain.Security) *securityRecord {
	rec := &securityRecord{
		Key:      key,
		UUID:     s.UUID,
		Name:     s.Name,
		ISIN:     s.ISIN,
		Currency: s.Currency,
	}
	for _, p := range s.Prices {
		if p == nil {
			rec.Prices = append(rec.Prices, nil)
			continue
		}
		rec.Prices = append(rec.Prices, &priceRecord{Date: p.Date, Value: p.Value})
	}
	return rec
}

func legToRecord(l domain.Leg) legRecord {
	rec := legRecord{Transaction: l.TransactionID}
	if l.Account != nil {
		rec.Account = l.Account.ID
	}
	if l.Portfolio != nil {
		rec.Portfolio = l.Portfolio.ID
	}
	return rec
}
