package usecase

import (
	"context"
	"time"

	"github.com/iho/ledgercheck/internal/domain"
)

// Check validates or repairs one class of ledger invariants.
//
// Execute must report every detectable condition as an issue. An error is
// reserved for faults inside the check itself. Auto-healing checks mutate
// the ledger and return no issues.
type Check interface {
	Name() string
	Execute(ledger *domain.Ledger) ([]domain.Issue, error)
}

// LedgerStore loads and saves a ledger snapshot.
type LedgerStore interface {
	Load(ctx context.Context) (*domain.Ledger, error)
	Save(ctx context.Context, ledger *domain.Ledger) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Recorder receives check and fix outcomes for monitoring.
type Recorder interface {
	ObserveCheck(check string, duration time.Duration, issues int)
	CheckFailed(check string)
	FixExecuted(check string, ok bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCheck(string, time.Duration, int) {}
func (nopRecorder) CheckFailed(string)                      {}
func (nopRecorder) FixExecuted(string, bool)                {}
