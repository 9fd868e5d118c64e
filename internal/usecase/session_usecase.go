package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iho/ledgercheck/internal/domain"
)

// LedgerSession owns one ledger and serializes every check run and fix
// against it. The last report is cached so issue IDs stay valid until the
// ledger changes.
type LedgerSession struct {
	mu sync.Mutex

	ledger       *domain.Ledger
	checker      *ConsistencyUseCase
	store        LedgerStore
	saveAfterFix bool

	report *CheckReport
}

// NewLedgerSession creates a new session. store may be nil when the ledger
// is never written back.
func NewLedgerSession(ledger *domain.Ledger, checker *ConsistencyUseCase, store LedgerStore, saveAfterFix bool) *LedgerSession {
	return &LedgerSession{
		ledger:       ledger,
		checker:      checker,
		store:        store,
		saveAfterFix: saveAfterFix,
	}
}

// Issues returns the cached report, running the checks if there is none.
func (s *LedgerSession) Issues(ctx context.Context) (*CheckReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ensureReport(ctx)
}

// Recheck discards the cached report and runs the checks again.
func (s *LedgerSession) Recheck(ctx context.Context) (*CheckReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report = nil
	return s.ensureReport(ctx)
}

func (s *LedgerSession) ensureReport(ctx context.Context) (*CheckReport, error) {
	if s.report != nil {
		return s.report, nil
	}
	report, err := s.checker.Run(ctx, s.ledger)
	if err != nil {
		return nil, err
	}
	s.report = report
	return report, nil
}

// ApplyFix executes one fix of a cached issue and returns its done label.
// The cached report is dropped once a fix has run, whether or not it
// succeeded, so issue IDs are single-use: callers list or recheck again
// before the next fix.
func (s *LedgerSession) ApplyFix(ctx context.Context, issueID string, fixIndex int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// IDs are minted per run; without a cached report none can match.
	if s.report == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrIssueNotFound, issueID)
	}
	issue, err := s.report.Issue(issueID)
	if err != nil {
		return "", err
	}

	done, err := s.checker.ApplyFix(ctx, s.ledger, issue, fixIndex)
	if err != nil {
		if !errors.Is(err, domain.ErrFixNotFound) {
			s.report = nil
		}
		return "", err
	}
	s.report = nil

	if s.saveAfterFix && s.store != nil {
		if err := s.store.Save(ctx, s.ledger); err != nil {
			return done, fmt.Errorf("save ledger: %w", err)
		}
	}
	return done, nil
}

// Save writes the ledger to the store.
func (s *LedgerSession) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.Save(ctx, s.ledger)
}
