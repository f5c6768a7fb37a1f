package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"aeroledger/internal/accounts/application"
	"aeroledger/internal/audit"
	"aeroledger/internal/auth"
	"aeroledger/internal/observability/metrics"
)

// AuthHandler serves login, logout and identity lookups.
type AuthHandler struct {
	service      *application.Service
	auditLogger  audit.Logger
	logger       *log.Logger
	validate     *validator.Validate
	secureCookie bool
}

// NewAuthHandler constructs the handler. secureCookie should be true when
// the service terminates TLS or sits behind an HTTPS proxy.
func NewAuthHandler(service *application.Service, auditLogger audit.Logger, logger *log.Logger, secureCookie bool) (*AuthHandler, error) {
	if service == nil {
		return nil, errors.New("auth handler: nil service")
	}
	return &AuthHandler{
		service:      service,
		auditLogger:  auditLogger,
		logger:       logger,
		validate:     validator.New(),
		secureCookie: secureCookie,
	}, nil
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/auth/login" && r.Method == http.MethodPost:
		h.handleLogin(w, r)
	case r.URL.Path == "/api/v1/auth/logout" && r.Method == http.MethodPost:
		h.handleLogout(w, r)
	case r.URL.Path == "/api/v1/auth/me" && r.Method == http.MethodGet:
		h.handleMe(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		metrics.ObserveLogin(metrics.ResultError)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.Printf("login failed: %v", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	metrics.ObserveLogin(metrics.ResultSuccess)

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(h.service.SessionTTL()),
	})

	h.logAudit(r, user.ID, user.Email, user.Role)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(loginResponse{Token: token, User: user})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Me(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h.logger.Printf("me lookup failed: %v", err)
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(user)
}

func (h *AuthHandler) logAudit(r *http.Request, userID, email, role string) {
	if h.auditLogger == nil {
		return
	}
	entry := audit.Entry{
		ID:           audit.NewID(),
		Actor:        userID,
		ActorEmail:   email,
		Role:         role,
		Action:       "auth.login",
		ResourceType: "user",
		ResourceID:   userID,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.auditLogger.Log(r.Context(), entry); err != nil && h.logger != nil {
		h.logger.Printf("audit log failed: %v", err)
	}
}
