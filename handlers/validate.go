// ABOUTME: HTTP handlers for job protocol validation
// ABOUTME: Single and batch validation; responses carry the protocol with hivedPodSpec attached

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"
	"sigs.k8s.io/yaml"

	"github.com/markalston/hived-validator/hived"
	"github.com/markalston/hived-validator/models"
)

const maxBodyBytes = 4 << 20

// Validate compiles one job protocol, given as JSON or YAML, and returns it
// with a hivedPodSpec attached to every task role.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	raw, err := readDocument(w, r)
	if err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var protocol map[string]interface{}
	if err := json.Unmarshal(raw, &protocol); err != nil || protocol == nil {
		h.writeError(w, "Job protocol must be an object", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.validateTimeout())
	defer cancel()

	if err := h.validateProtocol(ctx, protocol); err != nil {
		h.writeValidationError(w, jobName(protocol), err)
		return
	}
	h.writeJSON(w, http.StatusOK, protocol)
}

// ValidateBatch validates each job independently, up to the configured
// concurrency, and reports results in request order. A rejected job does
// not fail the batch.
func (h *Handler) ValidateBatch(w http.ResponseWriter, r *http.Request) {
	raw, err := readDocument(w, r)
	if err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var req models.BatchValidateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Jobs) == 0 {
		h.writeError(w, "At least one job is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.validateTimeout())
	defer cancel()

	results := make([]models.BatchValidateResult, len(req.Jobs))
	g := new(errgroup.Group)
	g.SetLimit(h.batchConcurrency())
	for i, protocol := range req.Jobs {
		g.Go(func() error {
			results[i] = h.validateBatchItem(ctx, protocol)
			return nil
		})
	}
	g.Wait()

	slog.Info("Validated job batch", "jobs", len(results))
	h.writeJSON(w, http.StatusOK, models.BatchValidateResponse{Results: results})
}

func (h *Handler) validateBatchItem(ctx context.Context, protocol map[string]interface{}) models.BatchValidateResult {
	result := models.BatchValidateResult{Name: jobName(protocol)}
	if protocol == nil {
		result.Error = &models.ErrorResponse{Error: "Job protocol must be an object", Code: http.StatusBadRequest}
		return result
	}
	if err := h.validateProtocol(ctx, protocol); err != nil {
		resp := validationError(err)
		slog.Warn("Batch job rejected", "job", result.Name, "error", err)
		result.Error = &resp
		return result
	}
	result.Valid = true
	result.Protocol = protocol
	return result
}

// validateProtocol runs the pipeline and attaches the pod specs to the raw
// document in place, leaving every other field as submitted.
func (h *Handler) validateProtocol(ctx context.Context, protocol map[string]interface{}) error {
	job, err := models.ProtocolFromMap(protocol)
	if err != nil {
		return hived.InvalidProtocol("%v.", err)
	}

	result, err := h.validator.Validate(ctx, job)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("validation of %s abandoned: %w", job.Name, err)
	}

	return models.AttachPodSpecs(protocol, result.PodSpecs)
}

// readDocument reads a JSON or YAML body and returns it as JSON
func readDocument(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	data, err := yaml.YAMLToJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse body: %w", err)
	}
	return data, nil
}

func jobName(protocol map[string]interface{}) string {
	name, _ := protocol["name"].(string)
	return name
}
