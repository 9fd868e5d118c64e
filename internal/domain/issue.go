package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntityRef points at the entity an issue is about.
type EntityRef struct {
	Kind EntityKind
	ID   string
	Name string
}

// RefOf builds a reference to an account or portfolio.
func RefOf(o Owner) EntityRef {
	return EntityRef{Kind: o.OwnerKind(), ID: o.OwnerID(), Name: o.OwnerName()}
}

// LedgerRef is the reference used for ledger-wide issues.
var LedgerRef = EntityRef{Kind: EntityLedger}

// Fix is a self-contained repair of one issue.
type Fix struct {
	// Label describes what the fix will do.
	Label string
	// DoneLabel describes what the fix did, shown once after execution.
	DoneLabel string

	apply func(l *Ledger) error
}

// NewFix creates a fix from its labels and the mutation it performs.
func NewFix(label, doneLabel string, apply func(l *Ledger) error) Fix {
	return Fix{Label: label, DoneLabel: doneLabel, apply: apply}
}

// Execute applies the fix to the ledger in place.
func (f Fix) Execute(l *Ledger) error {
	if f.apply == nil {
		return fmt.Errorf("%w: %q has no action", ErrStaleFix, f.Label)
	}
	return f.apply(l)
}

// Issue is a detected invariant violation. An empty Fixes list means the
// condition is detectable but cannot be repaired automatically.
type Issue struct {
	ID       string
	Check    string
	Entity   EntityRef
	Date     *time.Time
	Amount   *Money
	Quantity *decimal.Decimal
	Label    string
	Fixes    []Fix
}

// Fix returns the fix at index.
func (i Issue) Fix(index int) (Fix, error) {
	if index < 0 || index >= len(i.Fixes) {
		return Fix{}, fmt.Errorf("%w: issue %s has no fix %d", ErrFixNotFound, i.ID, index)
	}
	return i.Fixes[index], nil
}
