// ABOUTME: HTTP client for the hived validator API
// ABOUTME: Wraps API calls with proper error handling for CLI usage

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client is the API client for the hived validator backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client with the given base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// HealthResponse represents the /api/v1/health endpoint response
type HealthResponse struct {
	Status         string `json:"status"`
	HivedScheduler string `json:"hived_scheduler"`
	ResourceUnits  int    `json:"resource_units"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Type    string `json:"type,omitempty"`
	Code    int    `json:"code"`
}

// APIError is returned when the backend answers with an error body.
// Type is the validation error code when the backend reports one.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
	Type       string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("backend error: %s", e.Message)
}

// Rejected reports whether the backend rejected the job protocol itself,
// as opposed to failing to evaluate it.
func (e *APIError) Rejected() bool {
	return e.StatusCode == http.StatusBadRequest
}

// CellTypeInfo is one row of a virtual cluster's cell type table
type CellTypeInfo struct {
	CellType   string  `json:"cellType"`
	Quota      int     `json:"quota"`
	GPU        float64 `json:"gpu"`
	CPU        float64 `json:"cpu"`
	Memory     float64 `json:"memory"`
	IsLeafCell bool    `json:"isLeafCell"`
}

// VirtualClusterCells represents the /api/v1/virtualclusters/{vc}/cells response
type VirtualClusterCells struct {
	VirtualCluster string         `json:"virtualCluster"`
	LeafQuota      int            `json:"leafQuota"`
	Cells          []CellTypeInfo `json:"cells"`
}

// PodGroupNode is one node of a pod group tree
type PodGroupNode struct {
	Name          string          `json:"name,omitempty"`
	WithinOneCell *string         `json:"withinOneCell"`
	Pods          []PodDescriptor `json:"pods"`
	ChildGroups   []PodGroupNode  `json:"childGroups,omitempty"`
}

// PodDescriptor describes a set of identical pods inside a group
type PodDescriptor struct {
	PodMinNumber       int         `json:"podMinNumber"`
	PodMaxNumber       int         `json:"podMaxNumber"`
	CellsPerPod        CellsPerPod `json:"cellsPerPod"`
	ContainsCurrentPod bool        `json:"containsCurrentPod"`
}

// CellsPerPod is the cell demand of a single pod
type CellsPerPod struct {
	CellType   *string `json:"cellType"`
	CellNumber int     `json:"cellNumber"`
}

// PodSpec is the scheduling directive attached to each task role
type PodSpec struct {
	VirtualCluster string        `json:"virtualCluster"`
	Priority       *int          `json:"priority"`
	PinnedCellID   *string       `json:"pinnedCellId"`
	CellType       *string       `json:"cellType"`
	CellNumber     int           `json:"cellNumber"`
	PodRootGroup   *PodGroupNode `json:"podRootGroup"`
}

// TaskRole carries the fields of an annotated task role the CLI reports on
type TaskRole struct {
	Instances    int     `json:"instances"`
	HivedPodSpec PodSpec `json:"hivedPodSpec"`
}

// ValidatedJob is an annotated protocol. Raw keeps the full document as
// returned, including fields the CLI does not model.
type ValidatedJob struct {
	Name      string              `json:"name"`
	TaskRoles map[string]TaskRole `json:"taskRoles"`
	Raw       json.RawMessage     `json:"-"`
}

// Health calls the /api/v1/health endpoint
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}

	return &health, nil
}

// ValidateJob calls POST /api/v1/jobs/validate with a YAML or JSON protocol.
// A protocol the backend rejects is returned as an *APIError.
func (c *Client) ValidateJob(ctx context.Context, protocol []byte, contentType string) (*ValidatedJob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/jobs/validate", bytes.NewReader(protocol))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	var job ValidatedJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	job.Raw = raw

	return &job, nil
}

// VirtualClusterCells calls GET /api/v1/virtualclusters/{vc}/cells
func (c *Client) VirtualClusterCells(ctx context.Context, vc string) (*VirtualClusterCells, error) {
	endpoint := c.baseURL + "/api/v1/virtualclusters/" + url.PathEscape(vc) + "/cells"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var cells VirtualClusterCells
	if err := json.NewDecoder(resp.Body).Decode(&cells); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}

	return &cells, nil
}

// handleRequestError converts HTTP client errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return fmt.Errorf("request canceled")
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    errResp.Error,
		Details:    errResp.Details,
		Type:       errResp.Type,
	}
}
