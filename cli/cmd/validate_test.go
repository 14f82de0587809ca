// ABOUTME: Tests for the validate command
// ABOUTME: Verifies exit codes, stdin input, and human and JSON output

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/markalston/hived-validator/cli/internal/client"
)

const annotatedJob = `{
  "name": "bert",
  "taskRoles": {
    "worker": {"instances": 4, "hivedPodSpec": {"virtualCluster": "default", "priority": 100, "pinnedCellId": null, "cellType": "GPU", "cellNumber": 2}},
    "ps": {"instances": 1, "hivedPodSpec": {"virtualCluster": "default", "priority": 100, "pinnedCellId": null, "cellType": "GPU", "cellNumber": 0}}
  }
}`

func validateServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/jobs/validate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	apiURL = server.URL
	t.Cleanup(func() { apiURL = "" })
	return server
}

func writeProtocol(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write protocol: %v", err)
	}
	return path
}

func TestValidateCommand_Valid(t *testing.T) {
	validateServer(t, http.StatusOK, annotatedJob)
	path := writeProtocol(t, "job.yaml", "name: bert\n")

	var buf bytes.Buffer
	exitCode := runValidate(context.Background(), &buf, path, nil)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	output := buf.String()
	if !strings.Contains(output, "Job bert is valid (virtual cluster default)") {
		t.Errorf("expected validity line, got %q", output)
	}
	// ps sorts before worker
	if strings.Index(output, "ps ") > strings.Index(output, "worker ") {
		t.Error("expected task roles sorted by name")
	}
	if !strings.Contains(output, "100") {
		t.Error("expected priority in output")
	}
}

func TestValidateCommand_JSONOutputKeepsDocument(t *testing.T) {
	validateServer(t, http.StatusOK, annotatedJob)
	path := writeProtocol(t, "job.json", `{"name": "bert"}`)
	jsonOutput = true
	defer func() { jsonOutput = false }()

	var buf bytes.Buffer
	if exitCode := runValidate(context.Background(), &buf, path, nil); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["name"] != "bert" {
		t.Errorf("expected annotated protocol, got %v", parsed)
	}
}

func TestValidateCommand_Rejected(t *testing.T) {
	validateServer(t, http.StatusBadRequest,
		`{"error": "worker has unknown skuType FPGA, allowed values are [GPU].", "type": "InvalidProtocolError", "code": 400}`)
	path := writeProtocol(t, "job.yaml", "name: bert\n")

	var buf bytes.Buffer
	exitCode := runValidate(context.Background(), &buf, path, nil)

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "InvalidProtocolError") || !strings.Contains(buf.String(), "unknown skuType FPGA") {
		t.Errorf("expected rejection reason, got %q", buf.String())
	}
}

func TestValidateCommand_RejectedJSON(t *testing.T) {
	validateServer(t, http.StatusBadRequest, `{"error": "bad", "type": "InvalidProtocolError", "code": 400}`)
	path := writeProtocol(t, "job.yaml", "name: bert\n")
	jsonOutput = true
	defer func() { jsonOutput = false }()

	var buf bytes.Buffer
	if exitCode := runValidate(context.Background(), &buf, path, nil); exitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", exitCode)
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["valid"] != false || parsed["type"] != "InvalidProtocolError" {
		t.Errorf("unexpected rejection JSON %v", parsed)
	}
}

func TestValidateCommand_SchedulerUnreachable(t *testing.T) {
	validateServer(t, http.StatusBadGateway,
		`{"error": "cannot reach scheduler", "details": "status 503", "type": "CannotReachHiveDScheduler", "code": 502}`)
	path := writeProtocol(t, "job.yaml", "name: bert\n")

	var buf bytes.Buffer
	exitCode := runValidate(context.Background(), &buf, path, nil)

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "status 503") {
		t.Errorf("expected details in output, got %q", buf.String())
	}
}

func TestValidateCommand_Stdin(t *testing.T) {
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		io.WriteString(w, annotatedJob)
	}))
	defer server.Close()
	apiURL = server.URL
	defer func() { apiURL = "" }()

	var buf bytes.Buffer
	exitCode := runValidate(context.Background(), &buf, "-", strings.NewReader("name: bert\n"))

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if gotContentType != "application/yaml" {
		t.Errorf("expected stdin sent as YAML, got %s", gotContentType)
	}
}

func TestValidateCommand_MissingFile(t *testing.T) {
	var buf bytes.Buffer
	exitCode := runValidate(context.Background(), &buf, filepath.Join(t.TempDir(), "missing.yaml"), nil)

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Error:") {
		t.Error("expected error message in output")
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := map[string]string{
		"job.json": "application/json",
		"JOB.JSON": "application/json",
		"job.yaml": "application/yaml",
		"job.yml":  "application/yaml",
		"-":        "application/yaml",
	}
	for path, want := range tests {
		if got := contentTypeFor(path); got != want {
			t.Errorf("contentTypeFor(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestFormatValidatedHuman_PinnedCell(t *testing.T) {
	pinned := "rack-1"
	job := &client.ValidatedJob{
		Name: "pinned",
		TaskRoles: map[string]client.TaskRole{
			"w": {Instances: 2, HivedPodSpec: client.PodSpec{VirtualCluster: "vc1", PinnedCellID: &pinned, CellNumber: 1}},
		},
	}

	output := formatValidatedHuman(job)

	if !strings.Contains(output, "rack-1") {
		t.Error("expected pinned cell id in output")
	}
	// nil priority and nil cell type both render as a dash
	if strings.Count(output, " - ") < 2 {
		t.Errorf("expected dashes for missing fields, got %q", output)
	}
}
