package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/ledgercheck/internal/adapter/http/dto"
	"github.com/iho/ledgercheck/internal/domain"
	"github.com/iho/ledgercheck/internal/usecase"
)

type ledgerServiceStub struct {
	issuesFn   func(ctx context.Context) (*usecase.CheckReport, error)
	recheckFn  func(ctx context.Context) (*usecase.CheckReport, error)
	applyFixFn func(ctx context.Context, issueID string, fixIndex int) (string, error)
}

func (s *ledgerServiceStub) Issues(ctx context.Context) (*usecase.CheckReport, error) {
	return s.issuesFn(ctx)
}

func (s *ledgerServiceStub) Recheck(ctx context.Context) (*usecase.CheckReport, error) {
	return s.recheckFn(ctx)
}

func (s *ledgerServiceStub) ApplyFix(ctx context.Context, issueID string, fixIndex int) (string, error) {
	return s.applyFixFn(ctx, issueID, fixIndex)
}

func sampleReport() *usecase.CheckReport {
	issues := make([]domain.Issue, 0, 5)
	for i := range 5 {
		check := "cross-entries"
		if i%2 == 1 {
			check = "shares-held"
		}
		issues = append(issues, domain.Issue{
			ID:     fmt.Sprintf("issue-%d", i),
			Check:  check,
			Entity: domain.LedgerRef,
			Label:  "problem",
			Fixes:  []domain.Fix{domain.NewFix("Delete transaction", "Transaction deleted", nil)},
		})
	}
	return &usecase.CheckReport{Issues: issues, CheckedAt: time.Now()}
}

func newTestRouter(h *IssueHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/issues", h.List)
	r.Post("/issues/recheck", h.Recheck)
	r.Get("/issues/{id}", h.Get)
	r.Post("/issues/{id}/fixes/{index}", h.ApplyFix)
	return r
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestIssueHandler_List(t *testing.T) {
	report := sampleReport()
	router := newTestRouter(NewIssueHandler(&ledgerServiceStub{
		issuesFn: func(ctx context.Context) (*usecase.CheckReport, error) { return report, nil },
	}))

	testCases := []struct {
		name     string
		target   string
		total    int
		firstID  string
		pageSize int
	}{
		{"all", "/issues", 5, "issue-0", 5},
		{"paged", "/issues?limit=2&offset=2", 5, "issue-2", 2},
		{"filtered", "/issues?check=shares-held", 2, "issue-1", 2},
		{"offset past end", "/issues?offset=50", 5, "", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, router, http.MethodGet, tc.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}

			var resp dto.ReportResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Total != tc.total {
				t.Fatalf("expected total %d, got %d", tc.total, resp.Total)
			}
			if len(resp.Issues) != tc.pageSize {
				t.Fatalf("expected %d issues, got %d", tc.pageSize, len(resp.Issues))
			}
			if tc.pageSize > 0 && resp.Issues[0].ID != tc.firstID {
				t.Fatalf("expected first issue %s, got %s", tc.firstID, resp.Issues[0].ID)
			}
		})
	}
}

func TestIssueHandler_ListError(t *testing.T) {
	router := newTestRouter(NewIssueHandler(&ledgerServiceStub{
		issuesFn: func(ctx context.Context) (*usecase.CheckReport, error) { return nil, context.Canceled },
	}))

	rec := serve(t, router, http.MethodGet, "/issues")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestIssueHandler_Recheck(t *testing.T) {
	called := false
	router := newTestRouter(NewIssueHandler(&ledgerServiceStub{
		recheckFn: func(ctx context.Context) (*usecase.CheckReport, error) {
			called = true
			return sampleReport(), nil
		},
	}))

	rec := serve(t, router, http.MethodPost, "/issues/recheck")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !called {
		t.Fatalf("expected recheck to be called")
	}
}

func TestIssueHandler_Get(t *testing.T) {
	router := newTestRouter(NewIssueHandler(&ledgerServiceStub{
		issuesFn: func(ctx context.Context) (*usecase.CheckReport, error) { return sampleReport(), nil },
	}))

	rec := serve(t, router, http.MethodGet, "/issues/issue-3")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp dto.IssueResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "issue-3" || len(resp.Fixes) != 1 {
		t.Fatalf("unexpected issue %+v", resp)
	}

	rec = serve(t, router, http.MethodGet, "/issues/missing")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestIssueHandler_ApplyFix(t *testing.T) {
	testCases := []struct {
		name   string
		target string
		done   string
		err    error
		status int
	}{
		{"success", "/issues/issue-1/fixes/0", "Transaction deleted", nil, http.StatusOK},
		{"bad index", "/issues/issue-1/fixes/abc", "", nil, http.StatusBadRequest},
		{"unknown issue", "/issues/nope/fixes/0", "", domain.ErrIssueNotFound, http.StatusNotFound},
		{"unknown fix", "/issues/issue-1/fixes/9", "", domain.ErrFixNotFound, http.StatusNotFound},
		{"stale", "/issues/issue-1/fixes/0", "", fmt.Errorf("apply fix: %w", domain.ErrStaleFix), http.StatusConflict},
		{"save failed", "/issues/issue-1/fixes/0", "Transaction deleted", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var gotID string
			var gotIndex int
			router := newTestRouter(NewIssueHandler(&ledgerServiceStub{
				applyFixFn: func(ctx context.Context, issueID string, fixIndex int) (string, error) {
					gotID, gotIndex = issueID, fixIndex
					return tc.done, tc.err
				},
			}))

			rec := serve(t, router, http.MethodPost, tc.target)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if tc.status != http.StatusOK {
				return
			}

			var resp dto.FixResultResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Done != tc.done || gotID != "issue-1" || gotIndex != 0 {
				t.Fatalf("unexpected result %+v (id=%s index=%d)", resp, gotID, gotIndex)
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	healthy := NewHealthHandler(nil)
	rec := httptest.NewRecorder()
	healthy.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	broken := NewHealthHandler(func(ctx context.Context) error { return errors.New("no such file") })
	rec = httptest.NewRecorder()
	broken.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	broken.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected liveness to ignore the probe, got %d", rec.Code)
	}
}
