package interfaces

import (
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	domain "aeroledger/internal/report/domain"
)

type stubBuilder struct {
	matrix   *domain.Matrix
	err      error
	lastOpts domain.Options
}

func (s *stubBuilder) Build(_ context.Context, opts domain.Options) (*domain.Matrix, error) {
	s.lastOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return s.matrix, nil
}

func newTestHandler(builder *stubBuilder) *Handler {
	return newTestHandlerWithDefault(builder, "")
}

func newTestHandlerWithDefault(builder *stubBuilder, defaultYear string) *Handler {
	h := NewHandler(builder, nil, log.New(os.Stderr, "", 0), defaultYear)
	h.now = func() time.Time {
		return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
	return h
}

func TestHandler_ExportXLSX(t *testing.T) {
	builder := &stubBuilder{matrix: sampleMatrix()}
	h := newTestHandler(builder)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/expenses.xlsx?year=all&showSubcategories=true&reportForATS=true", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "spreadsheetml") {
		t.Fatalf("content type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "expenses-report-all-2025-06-15.xlsx") {
		t.Fatalf("disposition = %q", got)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("empty body")
	}
	if builder.lastOpts.YearFilter != domain.YearFilterAll {
		t.Fatalf("year filter = %q", builder.lastOpts.YearFilter)
	}
	if !builder.lastOpts.ShowSubcategories || !builder.lastOpts.ApplyATSFilter {
		t.Fatalf("options not forwarded: %+v", builder.lastOpts)
	}
}

func TestHandler_ExportPDF(t *testing.T) {
	h := newTestHandler(&stubBuilder{matrix: sampleMatrix()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/expenses.pdf", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("content type = %q", got)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Fatal("body is not a PDF")
	}
}

func TestHandler_ConfiguredDefaultYear(t *testing.T) {
	builder := &stubBuilder{matrix: sampleMatrix()}
	h := newTestHandlerWithDefault(builder, domain.YearFilterAll)

	// No year parameter: the configured default applies.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/expenses.xlsx", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if builder.lastOpts.YearFilter != domain.YearFilterAll {
		t.Fatalf("year filter = %q, want configured default", builder.lastOpts.YearFilter)
	}

	// An explicit parameter still overrides it.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports/expenses.xlsx?year=current", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if builder.lastOpts.YearFilter != domain.YearFilterCurrent {
		t.Fatalf("year filter = %q, want current", builder.lastOpts.YearFilter)
	}
}

func TestHandler_NoData(t *testing.T) {
	h := newTestHandler(&stubBuilder{err: domain.ErrNoDataForPeriod})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/expenses.xlsx", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandler_BadYear(t *testing.T) {
	builder := &stubBuilder{matrix: sampleMatrix()}
	h := newTestHandler(builder)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/expenses.xlsx?year=2024", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(&stubBuilder{matrix: sampleMatrix()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/expenses.xlsx", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
