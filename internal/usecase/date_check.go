package usecase

import (
	"fmt"
	"time"

	"github.com/iho/ledgercheck/internal/domain"
)

// MissingDateCheck reports transactions without a date.
type MissingDateCheck struct {
	now func() time.Time
}

// NewMissingDateCheck creates a check whose fix stamps the date returned by
// now. A nil now uses time.Now.
func NewMissingDateCheck(now func() time.Time) *MissingDateCheck {
	if now == nil {
		now = time.Now
	}
	return &MissingDateCheck{now: now}
}

// Name returns the check name.
func (c *MissingDateCheck) Name() string {
	return CheckMissingDate
}

// Execute reports one issue per transaction or cross entry.
func (c *MissingDateCheck) Execute(l *domain.Ledger) ([]domain.Issue, error) {
	var issues []domain.Issue
	reported := make(map[string]bool)

	for owner, t := range l.Transactions() {
		if t.HasDate() {
			continue
		}
		if l.Linked(owner, t) {
			if reported[t.CrossEntryID] {
				continue
			}
			reported[t.CrossEntryID] = true
		}

		issues = append(issues, transactionIssue(owner, t,
			fmt.Sprintf("%s in %s %q has no date", t.Type, owner.OwnerKind(), owner.OwnerName()),
			c.setDateFix(refTo(owner, t))))
	}
	return issues, nil
}

func (c *MissingDateCheck) setDateFix(ref transactionRef) domain.Fix {
	return domain.NewFix("Set date to today", "Date set to today", func(l *domain.Ledger) error {
		owner, t, err := ref.resolve(l)
		if err != nil {
			return err
		}
		now := c.now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		t.Date = today
		if _, ct, ok := l.Counterpart(owner, t); ok {
			ct.Date = today
		}
		return nil
	})
}
