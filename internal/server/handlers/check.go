package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/domainsweep/domainsweep/internal/core"
	"github.com/domainsweep/domainsweep/internal/server/middleware"
)

// DomainCheck resolves a single domain to a check result.
type DomainCheck interface {
	Check(ctx context.Context, domain string) (*core.CheckResult, error)
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// CheckHandler serves GET /v1/check?domain=example.com.
type CheckHandler struct {
	Checker DomainCheck
	Logger  *zap.Logger
}

func (h *CheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	domain := strings.TrimSpace(r.URL.Query().Get("domain"))
	if domain == "" {
		writeError(w, r, http.StatusBadRequest, "domain query parameter is required")
		return
	}

	result, err := h.Checker.Check(r.Context(), domain)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("Check failed",
				zap.String("domain", domain),
				zap.String("request_id", middleware.GetRequestID(r.Context())),
				zap.Error(err),
			)
		}
		writeError(w, r, http.StatusInternalServerError, "check failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(result)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:     message,
		RequestID: middleware.GetRequestID(r.Context()),
	})
}
