package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgercheck/internal/domain"
	"github.com/iho/ledgercheck/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// EntityResponse identifies the entity an issue is about.
type EntityResponse struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// FixResponse describes one offered fix.
type FixResponse struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// AmountResponse is a money amount with its formatted rendering.
type AmountResponse struct {
	Value     decimal.Decimal `json:"value"`
	Currency  string          `json:"currency,omitempty"`
	Formatted string          `json:"formatted"`
}

// IssueResponse represents an issue in API responses.
type IssueResponse struct {
	ID       string           `json:"id"`
	Check    string           `json:"check"`
	Entity   EntityResponse   `json:"entity"`
	Label    string           `json:"label"`
	Date     *time.Time       `json:"date,omitempty"`
	Amount   *AmountResponse  `json:"amount,omitempty"`
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Fixes    []FixResponse    `json:"fixes"`
}

// IssueFromDomain converts a domain issue to a response.
func IssueFromDomain(i domain.Issue) *IssueResponse {
	resp := &IssueResponse{
		ID:    i.ID,
		Check: i.Check,
		Entity: EntityResponse{
			Kind: string(i.Entity.Kind),
			ID:   i.Entity.ID,
			Name: i.Entity.Name,
		},
		Label:    i.Label,
		Date:     i.Date,
		Quantity: i.Quantity,
		Fixes:    make([]FixResponse, len(i.Fixes)),
	}
	if i.Amount != nil {
		resp.Amount = &AmountResponse{
			Value:     i.Amount.Amount,
			Currency:  i.Amount.Currency,
			Formatted: i.Amount.String(),
		}
	}
	for idx, fix := range i.Fixes {
		resp.Fixes[idx] = FixResponse{Index: idx, Label: fix.Label}
	}
	return resp
}

// IssuesFromDomain converts domain issues to responses.
func IssuesFromDomain(issues []domain.Issue) []*IssueResponse {
	result := make([]*IssueResponse, len(issues))
	for i, issue := range issues {
		result[i] = IssueFromDomain(issue)
	}
	return result
}

// CheckFailureResponse reports a check that faulted.
type CheckFailureResponse struct {
	Check string `json:"check"`
	Error string `json:"error"`
}

// ReportResponse represents a check run in API responses.
type ReportResponse struct {
	CheckedAt time.Time               `json:"checked_at"`
	Total     int                     `json:"total"`
	Issues    []*IssueResponse        `json:"issues"`
	Failures  []*CheckFailureResponse `json:"failures,omitempty"`
}

// ReportFromDomain converts a report to a response holding one page of
// issues out of total.
func ReportFromDomain(r *usecase.CheckReport, issues []domain.Issue, total int) *ReportResponse {
	resp := &ReportResponse{
		CheckedAt: r.CheckedAt,
		Total:     total,
		Issues:    IssuesFromDomain(issues),
	}
	for _, f := range r.Failures {
		resp.Failures = append(resp.Failures, &CheckFailureResponse{Check: f.Check, Error: f.Err.Error()})
	}
	return resp
}

// FixResultResponse reports an executed fix.
type FixResultResponse struct {
	IssueID string `json:"issue_id"`
	Fix     int    `json:"fix"`
	Done    string `json:"done"`
}
