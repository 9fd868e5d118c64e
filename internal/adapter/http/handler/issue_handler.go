package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iho/ledgercheck/internal/adapter/http/dto"
	"github.com/iho/ledgercheck/internal/domain"
	"github.com/iho/ledgercheck/internal/usecase"
)

// LedgerService defines the behavior needed by IssueHandler.
type LedgerService interface {
	Issues(ctx context.Context) (*usecase.CheckReport, error)
	Recheck(ctx context.Context) (*usecase.CheckReport, error)
	ApplyFix(ctx context.Context, issueID string, fixIndex int) (string, error)
}

// IssueHandler serves the issue list and fix execution.
type IssueHandler struct {
	ledger LedgerService
}

// NewIssueHandler creates a new IssueHandler.
func NewIssueHandler(ledger LedgerService) *IssueHandler {
	return &IssueHandler{ledger: ledger}
}

// List returns the current issues, optionally filtered by check.
func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.Issues(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to check ledger", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, page(r, report))
}

// Recheck discards cached results and runs every check again.
func (h *IssueHandler) Recheck(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.Recheck(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to check ledger", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, page(r, report))
}

// Get returns one issue with its fixes.
func (h *IssueHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing issue ID", "")
		return
	}

	report, err := h.ledger.Issues(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to check ledger", err.Error())
		return
	}

	issue, err := report.Issue(id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get issue", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IssueFromDomain(issue))
}

// ApplyFix executes a fix of an issue. Issue IDs expire with every fix, so a
// second fix needs a fresh listing first.
func (h *IssueHandler) ApplyFix(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing issue ID", "")
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid fix index", err.Error())
		return
	}

	done, err := h.ledger.ApplyFix(r.Context(), id, index)
	if err != nil {
		status := mapDomainError(err)
		if done != "" {
			// the fix went through but persisting it failed
			status = http.StatusInternalServerError
		}
		writeError(w, status, "failed to apply fix", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.FixResultResponse{IssueID: id, Fix: index, Done: done})
}

func page(r *http.Request, report *usecase.CheckReport) *dto.ReportResponse {
	issues := report.Issues
	if check := r.URL.Query().Get("check"); check != "" {
		filtered := make([]domain.Issue, 0, len(issues))
		for _, issue := range issues {
			if issue.Check == check {
				filtered = append(filtered, issue)
			}
		}
		issues = filtered
	}

	limit := parseIntQuery(r, "limit", 100)
	offset := parseIntQuery(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	if offset > len(issues) {
		offset = len(issues)
	}
	end := len(issues)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return dto.ReportFromDomain(report, issues[offset:end], len(issues))
}
