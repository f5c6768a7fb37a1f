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
	"aeroledger/internal/fleet/domain"
	"aeroledger/internal/observability/metrics"
)

const dateLayout = "2006-01-02"

// FlightHandler serves flight CRUD requests.
type FlightHandler struct {
	repo        domain.Repository
	auditLogger audit.Logger
	logger      *log.Logger
	validate    *validator.Validate
}

// NewFlightHandler constructs the handler.
func NewFlightHandler(repo domain.Repository, auditLogger audit.Logger, logger *log.Logger) (*FlightHandler, error) {
	if repo == nil {
		return nil, errors.New("flight handler: nil repository")
	}
	return &FlightHandler{repo: repo, auditLogger: auditLogger, logger: logger, validate: validator.New()}, nil
}

type flightRequest struct {
	FlightDate  string `json:"flight_date" validate:"required,datetime=2006-01-02"`
	Origin      string `json:"origin" validate:"max=8"`
	Destination string `json:"destination" validate:"max=8"`
	TailNumber  string `json:"tail_number" validate:"max=16"`
	Notes       string `json:"notes"`
}

func (h *FlightHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/flights"), "/")
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

func (h *FlightHandler) handleList(w http.ResponseWriter, r *http.Request) {
	flights, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Printf("list flights failed: %v", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	if flights == nil {
		flights = []domain.Flight{}
	}
	writeJSON(w, http.StatusOK, flights)
}

func (h *FlightHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	flight, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get flight")
		return
	}
	writeJSON(w, http.StatusOK, flight)
}

func (h *FlightHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	flightDate, _ := time.Parse(dateLayout, req.FlightDate)
	now := time.Now().UTC()
	flight := &domain.Flight{
		ID:          uuid.NewString(),
		FlightDate:  flightDate,
		Origin:      strings.ToUpper(strings.TrimSpace(req.Origin)),
		Destination: strings.ToUpper(strings.TrimSpace(req.Destination)),
		TailNumber:  strings.TrimSpace(req.TailNumber),
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.repo.Create(r.Context(), flight); err != nil {
		h.logger.Printf("create flight failed: %v", err)
		http.Error(w, "create failed", http.StatusInternalServerError)
		return
	}
	metrics.ObserveRecordWrite("flight", "create")
	h.logAudit(r, "flight.create", flight.ID, req)
	writeJSON(w, http.StatusCreated, flight)
}

func (h *FlightHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	flight, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get flight")
		return
	}
	flightDate, _ := time.Parse(dateLayout, req.FlightDate)
	flight.FlightDate = flightDate
	flight.Origin = strings.ToUpper(strings.TrimSpace(req.Origin))
	flight.Destination = strings.ToUpper(strings.TrimSpace(req.Destination))
	flight.TailNumber = strings.TrimSpace(req.TailNumber)
	flight.Notes = req.Notes
	flight.UpdatedAt = time.Now().UTC()

	if err := h.repo.Update(r.Context(), flight); err != nil {
		h.respondError(w, err, "update flight")
		return
	}
	metrics.ObserveRecordWrite("flight", "update")
	h.logAudit(r, "flight.update", flight.ID, req)
	writeJSON(w, http.StatusOK, flight)
}

func (h *FlightHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.respondError(w, err, "delete flight")
		return
	}
	metrics.ObserveRecordWrite("flight", "delete")
	h.logAudit(r, "flight.delete", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *FlightHandler) decode(w http.ResponseWriter, r *http.Request) (flightRequest, bool) {
	var req flightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return req, false
	}
	defer r.Body.Close()
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "invalid flight payload: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (h *FlightHandler) respondError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "flight not found", http.StatusNotFound)
		return
	}
	h.logger.Printf("%s failed: %v", op, err)
	http.Error(w, op+" failed", http.StatusInternalServerError)
}

func (h *FlightHandler) logAudit(r *http.Request, action, resourceID string, payload any) {
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
		ResourceType:  "flight",
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
