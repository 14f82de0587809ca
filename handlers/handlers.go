// ABOUTME: HTTP handlers for the hived validator API endpoints
// ABOUTME: Shared handler state plus JSON response and error helpers

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/markalston/hived-validator/config"
	"github.com/markalston/hived-validator/hived"
	"github.com/markalston/hived-validator/models"
)

const (
	defaultValidateTimeout  = 60 * time.Second
	defaultBatchConcurrency = 4
)

type Handler struct {
	cfg       *config.Config
	validator *hived.Validator
	units     models.ResourceUnits
}

// NewHandler creates the API handler. cfg may be nil in tests, in which
// case defaults apply.
func NewHandler(cfg *config.Config, validator *hived.Validator, units models.ResourceUnits) *Handler {
	return &Handler{
		cfg:       cfg,
		validator: validator,
		units:     units,
	}
}

func (h *Handler) validateTimeout() time.Duration {
	if h.cfg == nil || h.cfg.ValidateTimeout <= 0 {
		return defaultValidateTimeout
	}
	return h.cfg.ValidateTimeoutDuration()
}

func (h *Handler) batchConcurrency() int {
	if h.cfg == nil || h.cfg.BatchConcurrency <= 0 {
		return defaultBatchConcurrency
	}
	return h.cfg.BatchConcurrency
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.writeJSON(w, code, models.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// validationError maps a pipeline error to the response callers see:
// protocol violations are the client's fault, scheduler failures are an
// upstream fault, anything else is ours.
func validationError(err error) models.ErrorResponse {
	var he *hived.Error
	if errors.As(err, &he) {
		switch he.Code {
		case hived.CodeInvalidProtocol:
			return models.ErrorResponse{Error: he.Message, Type: he.Code, Code: http.StatusBadRequest}
		case hived.CodeCannotReachHiveD:
			resp := models.ErrorResponse{Error: he.Message, Type: he.Code, Code: http.StatusBadGateway}
			if he.Err != nil {
				resp.Details = he.Err.Error()
			}
			return resp
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.ErrorResponse{Error: "Validation timed out", Details: err.Error(), Code: http.StatusGatewayTimeout}
	}
	return models.ErrorResponse{Error: "Validation failed", Details: err.Error(), Code: http.StatusInternalServerError}
}

func (h *Handler) writeValidationError(w http.ResponseWriter, job string, err error) {
	resp := validationError(err)
	if resp.Code < http.StatusInternalServerError {
		slog.Warn("Job rejected", "job", job, "error", err)
	} else {
		slog.Error("Job validation failed", "job", job, "error", err)
	}
	h.writeJSON(w, resp.Code, resp)
}
