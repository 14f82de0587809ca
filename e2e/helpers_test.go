// ABOUTME: Test helpers for e2e tests
// ABOUTME: Fake scheduler inspection server, environment management, and server wiring

package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/markalston/hived-validator/config"
	"github.com/markalston/hived-validator/handlers"
	"github.com/markalston/hived-validator/hived"
	"github.com/markalston/hived-validator/middleware"
	"github.com/markalston/hived-validator/models"
	"github.com/markalston/hived-validator/services"
)

const catalogYAML = `
resourceUnits:
  GPU:
    gpu: 1
    cpu: 4
    memory: 16Gi
  K80:
    gpu: 1
    cpu: 5
    memory: 57344
`

// withTestHivedEnv sets the required scheduler and catalog variables plus
// additional vars, returning a cleanup function that restores all original
// values.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    t.Cleanup(withTestHivedEnv(t, map[string]string{
//	        "CORS_ALLOWED_ORIGINS": "https://example.com",
//	    }))
//	}
func withTestHivedEnv(t *testing.T, extra map[string]string) func() {
	t.Helper()

	originals := map[string]string{
		"HIVED_SCHEDULER_URL": os.Getenv("HIVED_SCHEDULER_URL"),
		"RESOURCE_UNITS":      os.Getenv("RESOURCE_UNITS"),
		"RESOURCE_UNITS_FILE": os.Getenv("RESOURCE_UNITS_FILE"),
	}
	for key := range extra {
		originals[key] = os.Getenv(key)
	}

	os.Setenv("HIVED_SCHEDULER_URL", "http://hived.example.com:30096")
	os.Setenv("RESOURCE_UNITS", catalogYAML)
	os.Unsetenv("RESOURCE_UNITS_FILE")

	for key, value := range extra {
		os.Setenv(key, value)
	}

	return func() {
		for key, value := range originals {
			if value == "" {
				os.Unsetenv(key)
				continue
			}
			os.Setenv(key, value)
		}
	}
}

// fakeScheduler serves the virtual cluster inspection endpoint from a fixed
// topology per virtual cluster and counts requests.
type fakeScheduler struct {
	mu       sync.Mutex
	clusters map[string][]models.CellStatus
	requests int
	status   int
}

func (f *fakeScheduler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	if f.status != 0 {
		w.WriteHeader(f.status)
		fmt.Fprint(w, "scheduler unavailable")
		return
	}

	vc := strings.TrimPrefix(r.URL.Path, "/v1/inspect/clusterstatus/virtualclusters/")
	cells, ok := f.clusters[vc]
	if !ok || vc == r.URL.Path {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "virtual cluster %s not found", vc)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cells)
}

func (f *fakeScheduler) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// gpuNodes builds n NODE cells of perNode GPU leaves plus one leaf of an
// unknown type per node that the catalog filter must drop.
func gpuNodes(n, perNode int) []models.CellStatus {
	var cells []models.CellStatus
	for i := 0; i < n; i++ {
		node := models.CellStatus{CellType: "NODE", CellAddress: fmt.Sprintf("10.0.0.%d", i)}
		for g := 0; g < perNode; g++ {
			node.CellChildren = append(node.CellChildren, models.CellStatus{
				CellType:     "GPU",
				LeafCellType: "GPU",
				CellAddress:  fmt.Sprintf("10.0.0.%d/%d", i, g),
			})
		}
		node.CellChildren = append(node.CellChildren, models.CellStatus{CellType: "FPGA", LeafCellType: "FPGA"})
		cells = append(cells, node)
	}
	return cells
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{clusters: map[string][]models.CellStatus{
		"default": gpuNodes(2, 16),
		"vc1":     gpuNodes(1, 4),
	}}
}

// newTestServer wires the real config, catalog, client, validator, and mux
// against schedulerURL, the way main does.
func newTestServer(t *testing.T, schedulerURL string, extraEnv map[string]string) *httptest.Server {
	t.Helper()

	env := map[string]string{"HIVED_SCHEDULER_URL": schedulerURL}
	for k, v := range extraEnv {
		env[k] = v
	}
	t.Cleanup(withTestHivedEnv(t, env))

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	units, err := services.ParseResourceUnits([]byte(cfg.ResourceUnits))
	if err != nil {
		t.Fatalf("Failed to parse catalog: %v", err)
	}

	client := services.NewHivedClient(cfg.HivedSchedulerURL, services.HivedClientOptions{
		CACert:            cfg.HivedCACert,
		SkipSSLValidation: cfg.HivedSkipSSLValidation,
		Timeout:           cfg.HivedFetchTimeoutDuration(),
	})
	h := handlers.NewHandler(cfg, hived.NewValidator(client, units, cfg.DefaultVirtualCluster), units)
	limits := middleware.NewLimits(cfg.RateLimitEnabled, cfg.RateLimitWrite, cfg.RateLimitDefault)

	server := httptest.NewServer(handlers.NewServeMux(h, cfg.CORSAllowedOrigins, limits))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}
