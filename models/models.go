// ABOUTME: Shared API response models for the validator service
// ABOUTME: JSON-serializable structures for health, errors, and batch results

package models

// ErrorResponse represents an error response. Type carries the validation
// error code (InvalidProtocolError, CannotReachHiveDScheduler) when known.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Type    string `json:"type,omitempty"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status         string `json:"status"`
	HivedScheduler string `json:"hived_scheduler"`
	ResourceUnits  int    `json:"resource_units"`
}

// BatchValidateRequest wraps several job protocols for one batch call.
// Each element is kept raw so unknown protocol fields survive the round trip.
type BatchValidateRequest struct {
	Jobs []map[string]interface{} `json:"jobs"`
}

// BatchValidateResult is the outcome of validating one job in a batch
type BatchValidateResult struct {
	Name     string                 `json:"name"`
	Valid    bool                   `json:"valid"`
	Protocol map[string]interface{} `json:"protocol,omitempty"`
	Error    *ErrorResponse         `json:"error,omitempty"`
}

// BatchValidateResponse preserves the order of the request's jobs
type BatchValidateResponse struct {
	Results []BatchValidateResult `json:"results"`
}
