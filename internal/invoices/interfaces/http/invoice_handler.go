package http

import (
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
	"aeroledger/internal/invoices/domain"
	"aeroledger/internal/observability/metrics"
)

const dateLayout = "2006-01-02"

// InvoiceHandler serves invoice CRUD and the invoice type lookup.
type InvoiceHandler struct {
	repo        domain.Repository
	auditLogger audit.Logger
	logger      *log.Logger
	validate    *validator.Validate
}

// NewInvoiceHandler constructs the handler.
func NewInvoiceHandler(repo domain.Repository, auditLogger audit.Logger, logger *log.Logger) (*InvoiceHandler, error) {
	if repo == nil {
		return nil, errors.New("invoice handler: nil repository")
	}
	return &InvoiceHandler{repo: repo, auditLogger: auditLogger, logger: logger, validate: validator.New()}, nil
}

type invoiceRequest struct {
	Number        string  `json:"number" validate:"required,max=64"`
	InvoiceTypeID *string `json:"invoice_type_id"`
	IssuedOn      string  `json:"issued_on" validate:"omitempty,datetime=2006-01-02"`
	Amount        float64 `json:"amount" validate:"gte=0"`
	Currency      string  `json:"currency" validate:"required,oneof=USD AED EUR"`
	Notes         string  `json:"notes"`
}

func (h *InvoiceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/invoice-types" {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleListTypes(w, r)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/invoices"), "/")
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

func (h *InvoiceHandler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.repo.ListTypes(r.Context())
	if err != nil {
		h.logger.Printf("list invoice types failed: %v", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	if types == nil {
		types = []domain.InvoiceType{}
	}
	writeJSON(w, http.StatusOK, types)
}

func (h *InvoiceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Printf("list invoices failed: %v", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	if invoices == nil {
		invoices = []domain.Invoice{}
	}
	writeJSON(w, http.StatusOK, invoices)
}

func (h *InvoiceHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	invoice, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get invoice")
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	now := time.Now().UTC()
	invoice := &domain.Invoice{
		ID:            uuid.NewString(),
		Number:        strings.TrimSpace(req.Number),
		InvoiceTypeID: req.InvoiceTypeID,
		IssuedOn:      parseDate(req.IssuedOn),
		Amount:        req.Amount,
		Currency:      req.Currency,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.repo.Create(r.Context(), invoice); err != nil {
		h.logger.Printf("create invoice failed: %v", err)
		http.Error(w, "create failed", http.StatusInternalServerError)
		return
	}
	metrics.ObserveRecordWrite("invoice", "create")
	h.logAudit(r, "invoice.create", invoice.ID, req)
	writeJSON(w, http.StatusCreated, invoice)
}

func (h *InvoiceHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	invoice, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get invoice")
		return
	}
	invoice.Number = strings.TrimSpace(req.Number)
	invoice.InvoiceTypeID = req.InvoiceTypeID
	invoice.IssuedOn = parseDate(req.IssuedOn)
	invoice.Amount = req.Amount
	invoice.Currency = req.Currency
	invoice.Notes = req.Notes
	invoice.UpdatedAt = time.Now().UTC()

	if err := h.repo.Update(r.Context(), invoice); err != nil {
		h.respondError(w, err, "update invoice")
		return
	}
	metrics.ObserveRecordWrite("invoice", "update")
	h.logAudit(r, "invoice.update", invoice.ID, req)
	writeJSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.respondError(w, err, "delete invoice")
		return
	}
	metrics.ObserveRecordWrite("invoice", "delete")
	h.logAudit(r, "invoice.delete", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *InvoiceHandler) decode(w http.ResponseWriter, r *http.Request) (invoiceRequest, bool) {
	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return req, false
	}
	defer r.Body.Close()
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "invalid invoice payload: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil
	}
	return &parsed
}

func (h *InvoiceHandler) respondError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "invoice not found", http.StatusNotFound)
		return
	}
	h.logger.Printf("%s failed: %v", op, err)
	http.Error(w, op+" failed", http.StatusInternalServerError)
}

func (h *InvoiceHandler) logAudit(r *http.Request, action, resourceID string, payload any) {
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
		ResourceType:  "invoice",
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
