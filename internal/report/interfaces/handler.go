package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"aeroledger/internal/audit"
	"aeroledger/internal/auth"
	"aeroledger/internal/observability/metrics"
	"aeroledger/internal/report/domain"
)

type matrixBuilder interface {
	Build(ctx context.Context, opts domain.Options) (*domain.Matrix, error)
}

// Handler serves expense report exports.
type Handler struct {
	service     matrixBuilder
	auditor     audit.Logger
	logger      *log.Logger
	defaultYear string
	now         func() time.Time
}

// NewHandler builds the report HTTP handler. defaultYear applies when the
// request omits the year parameter.
func NewHandler(service matrixBuilder, auditor audit.Logger, logger *log.Logger, defaultYear string) *Handler {
	if defaultYear == "" {
		defaultYear = domain.YearFilterCurrent
	}
	return &Handler{service: service, auditor: auditor, logger: logger, defaultYear: defaultYear, now: time.Now}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	switch r.URL.Path {
	case "/api/v1/reports/expenses.xlsx":
		h.handleExport(w, r, "xlsx")
	case "/api/v1/reports/expenses.pdf":
		h.handleExport(w, r, "pdf")
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, format string) {
	start := h.now()

	opts, err := parseOptions(r, h.defaultYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	matrix, err := h.service.Build(r.Context(), opts)
	if err != nil {
		metrics.ObserveReportExport(format, metrics.ResultError, h.now().Sub(start))
		if errors.Is(err, domain.ErrNoDataForPeriod) {
			writeError(w, http.StatusNotFound, "no data for requested period")
			return
		}
		h.logger.Printf("report export %s failed: %v", format, err)
		writeError(w, http.StatusInternalServerError, "report build failed")
		return
	}

	var payload []byte
	var contentType string
	switch format {
	case "xlsx":
		payload, err = BuildReportXLSX(matrix)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		payload, err = BuildReportPDF(matrix)
		contentType = "application/pdf"
	}
	if err != nil {
		metrics.ObserveReportExport(format, metrics.ResultError, h.now().Sub(start))
		h.logger.Printf("report render %s failed: %v", format, err)
		writeError(w, http.StatusInternalServerError, "report render failed")
		return
	}

	metrics.ObserveReportExport(format, metrics.ResultSuccess, h.now().Sub(start))
	h.logAudit(r, format, opts)

	filename := ReportFilename(opts.YearFilter, format, h.now())
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func parseOptions(r *http.Request, defaultYear string) (domain.Options, error) {
	query := r.URL.Query()

	yearFilter := defaultYear
	switch strings.ToLower(query.Get("year")) {
	case "":
	case domain.YearFilterCurrent:
		yearFilter = domain.YearFilterCurrent
	case domain.YearFilterAll:
		yearFilter = domain.YearFilterAll
	default:
		return domain.Options{}, fmt.Errorf("year must be %q or %q", domain.YearFilterCurrent, domain.YearFilterAll)
	}

	showSubcategories, err := parseBoolParam(query.Get("showSubcategories"))
	if err != nil {
		return domain.Options{}, fmt.Errorf("showSubcategories: %w", err)
	}
	applyATS, err := parseBoolParam(query.Get("reportForATS"))
	if err != nil {
		return domain.Options{}, fmt.Errorf("reportForATS: %w", err)
	}

	return domain.Options{
		YearFilter:        yearFilter,
		ShowSubcategories: showSubcategories,
		ApplyATSFilter:    applyATS,
	}, nil
}

func parseBoolParam(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New("expected true or false")
	}
	return value, nil
}

func (h *Handler) logAudit(r *http.Request, format string, opts domain.Options) {
	if h.auditor == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{
		"format":             format,
		"year":               opts.YearFilter,
		"show_subcategories": opts.ShowSubcategories,
		"report_for_ats":     opts.ApplyATSFilter,
	})
	entry := audit.Entry{
		ID:           audit.NewID(),
		Actor:        auth.UserIDFromContext(r.Context()),
		ActorEmail:   auth.EmailFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "report.export",
		ResourceType: "report",
		ResourceID:   "expenses",
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
		CreatedAt:    h.now().UTC(),
	}
	if err := h.auditor.Log(r.Context(), entry); err != nil {
		h.logger.Printf("audit log failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
