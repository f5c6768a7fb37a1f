package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"aeroledger/internal/audit"
	"aeroledger/internal/auth"
	"aeroledger/internal/expenses/domain"
	"aeroledger/internal/observability/metrics"
)

const dateLayout = "2006-01-02"

// Repository is the persistence surface the handler needs.
type Repository interface {
	List(ctx context.Context) ([]domain.Expense, error)
	Get(ctx context.Context, id string) (*domain.Expense, error)
	Create(ctx context.Context, expense *domain.Expense) error
	Update(ctx context.Context, expense *domain.Expense) error
	Delete(ctx context.Context, id string) error
}

// ExpenseHandler serves expense CRUD requests.
type ExpenseHandler struct {
	repo        Repository
	auditLogger audit.Logger
	logger      *log.Logger
	validate    *validator.Validate
}

// NewExpenseHandler constructs the handler.
func NewExpenseHandler(repo Repository, auditLogger audit.Logger, logger *log.Logger) (*ExpenseHandler, error) {
	if repo == nil {
		return nil, errors.New("expense handler: nil repository")
	}
	return &ExpenseHandler{repo: repo, auditLogger: auditLogger, logger: logger, validate: validator.New()}, nil
}

type expenseRequest struct {
	Type        string  `json:"type" validate:"required,max=128"`
	Subtype     string  `json:"subtype" validate:"max=128"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	Currency    string  `json:"currency" validate:"required,oneof=USD AED EUR"`
	PeriodStart string  `json:"period_start" validate:"omitempty,datetime=2006-01-02"`
	PeriodEnd   string  `json:"period_end" validate:"omitempty,datetime=2006-01-02"`
	FlightID    *string `json:"flight_id"`
	InvoiceID   *string `json:"invoice_id"`
	Place       string  `json:"place" validate:"max=128"`
	Comments    string  `json:"comments"`
}

func (h *ExpenseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/expenses"), "/")
	switch {
	case id == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case id == "" && r.Method == http.MethodPost:
		h.handleCreate(w, r)
	case id != "" && r.Method == http.MethodGet:
		h.handleGet(w, r, id)
	case id != "" && r.Method == http.MethodPut:
		h.handleUpdate(w, r, id)
	case id != "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ExpenseHandler) handleList(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Printf("list expenses failed: %v", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	if expenses == nil {
		expenses = []domain.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (h *ExpenseHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	expense, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get expense")
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (h *ExpenseHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	periodStart, periodEnd, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	now := time.Now().UTC()
	expense := &domain.Expense{
		ID:          uuid.NewString(),
		Type:        strings.TrimSpace(req.Type),
		Subtype:     strings.TrimSpace(req.Subtype),
		Amount:      req.Amount,
		Currency:    req.Currency,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		FlightID:    req.FlightID,
		InvoiceID:   req.InvoiceID,
		Place:       strings.TrimSpace(req.Place),
		Comments:    req.Comments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.repo.Create(r.Context(), expense); err != nil {
		h.logger.Printf("create expense failed: %v", err)
		http.Error(w, "create failed", http.StatusInternalServerError)
		return
	}
	metrics.ObserveRecordWrite("expense", "create")
	h.logAudit(r, "expense.create", expense.ID, req)
	writeJSON(w, http.StatusCreated, expense)
}

func (h *ExpenseHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	periodStart, periodEnd, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	expense, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get expense")
		return
	}
	expense.Type = strings.TrimSpace(req.Type)
	expense.Subtype = strings.TrimSpace(req.Subtype)
	expense.Amount = req.Amount
	expense.Currency = req.Currency
	expense.PeriodStart = periodStart
	expense.PeriodEnd = periodEnd
	expense.FlightID = req.FlightID
	expense.InvoiceID = req.InvoiceID
	expense.Place = strings.TrimSpace(req.Place)
	expense.Comments = req.Comments
	expense.UpdatedAt = time.Now().UTC()

	if err := h.repo.Update(r.Context(), expense); err != nil {
		h.respondError(w, err, "update expense")
		return
	}
	metrics.ObserveRecordWrite("expense", "update")
	h.logAudit(r, "expense.update", expense.ID, req)
	writeJSON(w, http.StatusOK, expense)
}

func (h *ExpenseHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.respondError(w, err, "delete expense")
		return
	}
	metrics.ObserveRecordWrite("expense", "delete")
	h.logAudit(r, "expense.delete", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ExpenseHandler) decode(w http.ResponseWriter, r *http.Request) (expenseRequest, bool) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return req, false
	}
	defer r.Body.Close()
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "invalid expense payload: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// parsePeriod enforces the amortization window invariants: both ends or
// neither, first-of-month values, end strictly after start (exclusive end).
func parsePeriod(startRaw, endRaw string) (*time.Time, *time.Time, error) {
	if startRaw == "" && endRaw == "" {
		return nil, nil, nil
	}
	if startRaw == "" || endRaw == "" {
		return nil, nil, errors.New("period_start and period_end must both be set or both be empty")
	}
	start, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		return nil, nil, errors.New("invalid period_start")
	}
	end, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		return nil, nil, errors.New("invalid period_end")
	}
	if start.Day() != 1 || end.Day() != 1 {
		return nil, nil, errors.New("period bounds must be the first day of a month")
	}
	if !end.After(start) {
		return nil, nil, errors.New("period_end must be after period_start")
	}
	return &start, &end, nil
}

func (h *ExpenseHandler) respondError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "expense not found", http.StatusNotFound)
		return
	}
	h.logger.Printf("%s failed: %v", op, err)
	http.Error(w, op+" failed", http.StatusInternalServerError)
}

func (h *ExpenseHandler) logAudit(r *http.Request, action, resourceID string, payload any) {
	if h.auditLogger == nil {
		return
	}
	var meta json.RawMessage
	var digest string
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			meta = data
			digest = audit.DigestJSON(data)
		}
	}
	entry := audit.Entry{
		ID:            audit.NewID(),
		Actor:         auth.UserIDFromContext(r.Context()),
		ActorEmail:    auth.EmailFromContext(r.Context()),
		Role:          string(auth.RoleFromContext(r.Context())),
		Action:        action,
		ResourceType:  "expense",
		ResourceID:    resourceID,
		Metadata:      meta,
		PayloadDigest: digest,
		IP:            audit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.auditLogger.Log(r.Context(), entry); err != nil && h.logger != nil {
		h.logger.Printf("audit log failed: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
