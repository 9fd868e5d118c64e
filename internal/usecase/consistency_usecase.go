package usecase

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/ledgercheck/internal/domain"
)

// CheckFailure records a check that faulted and was skipped.
type CheckFailure struct {
	Check string
	Err   error
}

// CheckReport is the outcome of one run over a ledger.
type CheckReport struct {
	Issues    []domain.Issue
	Failures  []CheckFailure
	CheckedAt time.Time
}

// Issue returns the reported issue with the given ID.
func (r *CheckReport) Issue(id string) (domain.Issue, error) {
	for _, issue := range r.Issues {
		if issue.ID == id {
			return issue, nil
		}
	}
	return domain.Issue{}, fmt.Errorf("%w: %s", domain.ErrIssueNotFound, id)
}

// ConsistencyUseCase runs an ordered list of checks over a ledger and
// executes the fixes they offer.
type ConsistencyUseCase struct {
	checks   []Check
	ids      IDGenerator
	recorder Recorder
	logger   zerolog.Logger
}

// NewConsistencyUseCase creates a new consistency use case. A nil recorder
// discards measurements.
func NewConsistencyUseCase(
	checks []Check,
	ids IDGenerator,
	recorder Recorder,
	logger zerolog.Logger,
) *ConsistencyUseCase {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ConsistencyUseCase{
		checks:   checks,
		ids:      ids,
		recorder: recorder,
		logger:   logger,
	}
}

// Run executes every check in order. A faulting check is logged, recorded in
// the report and skipped. Cancellation is honoured between checks only; the
// returned report holds whatever ran before it.
func (uc *ConsistencyUseCase) Run(ctx context.Context, ledger *domain.Ledger) (*CheckReport, error) {
	return uc.run(ctx, uc.checks, ledger)
}

// RunAllChecks executes every check and returns the issues found.
func (uc *ConsistencyUseCase) RunAllChecks(ctx context.Context, ledger *domain.Ledger) []domain.Issue {
	report, _ := uc.Run(ctx, ledger)
	return report.Issues
}

// Heal runs only the auto-healing checks.
func (uc *ConsistencyUseCase) Heal(ctx context.Context, ledger *domain.Ledger) (*CheckReport, error) {
	return uc.run(ctx, HealingChecks(), ledger)
}

func (uc *ConsistencyUseCase) run(ctx context.Context, checks []Check, ledger *domain.Ledger) (*CheckReport, error) {
	report := &CheckReport{CheckedAt: time.Now().UTC()}

	for _, check := range checks {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		name := check.Name()
		issues, err := uc.runCheck(check, ledger)
		if err != nil {
			report.Failures = append(report.Failures, CheckFailure{Check: name, Err: err})
			continue
		}

		for i := range issues {
			issues[i].ID = uc.ids.Generate()
			issues[i].Check = name
		}
		report.Issues = append(report.Issues, issues...)
	}

	uc.logger.Info().
		Int("checks", len(checks)).
		Int("issues", len(report.Issues)).
		Int("failures", len(report.Failures)).
		Msg("ledger checked")

	return report, nil
}

func (uc *ConsistencyUseCase) runCheck(check Check, ledger *domain.Ledger) ([]domain.Issue, error) {
	name := check.Name()
	uc.logger.Debug().Str("check", name).Msg("check started")

	start := time.Now()
	issues, err := executeCheck(check, ledger)
	duration := time.Since(start)

	if err != nil {
		uc.recorder.CheckFailed(name)
		uc.logger.Error().Err(err).Str("check", name).Msg("check failed, skipping")
		return nil, err
	}

	uc.recorder.ObserveCheck(name, duration, len(issues))
	uc.logger.Debug().
		Str("check", name).
		Int("issues", len(issues)).
		Dur("duration", duration).
		Msg("check finished")

	return issues, nil
}

// executeCheck turns a panic inside the check into an error.
func executeCheck(check Check, ledger *domain.Ledger) (issues []domain.Issue, err error) {
	defer func() {
		if r := recover(); r != nil {
			issues = nil
			err = fmt.Errorf("%w: %s: %v\n%s", ErrCheckPanicked, check.Name(), r, debug.Stack())
		}
	}()
	return check.Execute(ledger)
}

// ApplyFix executes the fix at index of issue and returns its done label.
// A failed fix is not retried; the ledger should be checked again.
func (uc *ConsistencyUseCase) ApplyFix(ctx context.Context, ledger *domain.Ledger, issue domain.Issue, index int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fix, err := issue.Fix(index)
	if err != nil {
		return "", err
	}

	if err := executeFix(fix, ledger); err != nil {
		uc.recorder.FixExecuted(issue.Check, false)
		uc.logger.Warn().
			Err(err).
			Str("check", issue.Check).
			Str("issue_id", issue.ID).
			Str("fix", fix.Label).
			Msg("fix failed")
		return "", fmt.Errorf("apply fix %q: %w", fix.Label, err)
	}

	uc.recorder.FixExecuted(issue.Check, true)
	uc.logger.Info().
		Str("check", issue.Check).
		Str("issue_id", issue.ID).
		Str("fix", fix.Label).
		Msg(fix.DoneLabel)

	return fix.DoneLabel, nil
}

func executeFix(fix domain.Fix, ledger *domain.Ledger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fix panicked: %v", r)
		}
	}()
	return fix.Execute(ledger)
}
