// ABOUTME: Hived scheduler inspection client for virtual cluster topology
// ABOUTME: Fetches cell status trees, optionally through an SSH+SOCKS5 jumpbox

package services

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cloudfoundry/socks5-proxy"
	"github.com/markalston/hived-validator/models"
)

// HivedClientOptions configures transport details of a HivedClient
type HivedClientOptions struct {
	CACert            string
	SkipSSLValidation bool
	AllProxy          string
	Timeout           time.Duration
}

type HivedClient struct {
	baseURL string
	client  *http.Client
}

func NewHivedClient(baseURL string, opts HivedClientOptions) *HivedClient {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL != "" && !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}

	tlsConfig := &tls.Config{}
	if opts.CACert != "" {
		certPool := x509.NewCertPool()
		if ok := certPool.AppendCertsFromPEM([]byte(opts.CACert)); ok {
			tlsConfig.RootCAs = certPool
		} else {
			slog.Warn("Failed to parse HIVED_CA_CERT, using system roots")
		}
	} else if opts.SkipSSLValidation {
		tlsConfig.InsecureSkipVerify = true
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSClientConfig:     tlsConfig,
		TLSHandshakeTimeout: 30 * time.Second,
	}

	if opts.AllProxy != "" {
		if dialContextFunc := createSOCKS5DialContextFunc(opts.AllProxy); dialContextFunc != nil {
			transport.DialContext = dialContextFunc
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HivedClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// SetHTTPClient allows overriding the HTTP client (useful for testing)
func (c *HivedClient) SetHTTPClient(client *http.Client) {
	c.client = client
}

// BaseURL returns the normalized scheduler inspection base URL
func (c *HivedClient) BaseURL() string {
	return c.baseURL
}

// GetVirtualClusterStatus returns the raw cell status tree of one virtual cluster
func (c *HivedClient) GetVirtualClusterStatus(ctx context.Context, virtualCluster string) ([]models.CellStatus, error) {
	if err := ValidateVirtualClusterName(virtualCluster); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/v1/inspect/clusterstatus/virtualclusters/%s", c.baseURL, url.PathEscape(virtualCluster))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	slog.Debug("Fetching virtual cluster status", "virtual_cluster", virtualCluster)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get virtual cluster status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("hived scheduler returned status %d: %s", resp.StatusCode, sanitizeForLog(string(body)))
	}

	var cells []models.CellStatus
	if err := json.NewDecoder(resp.Body).Decode(&cells); err != nil {
		return nil, fmt.Errorf("failed to parse virtual cluster status: %w", err)
	}

	slog.Debug("Fetched virtual cluster status", "virtual_cluster", virtualCluster, "top_level_cells", len(cells))
	return cells, nil
}

// createSOCKS5DialContextFunc creates a dial function for SSH+SOCKS5 proxy connections.
// Supports format: ssh+socks5://user@host:port?private-key=/path/to/key
func createSOCKS5DialContextFunc(allProxy string) func(ctx context.Context, network, address string) (net.Conn, error) {
	allProxy = strings.TrimPrefix(allProxy, "ssh+")

	proxyURL, err := url.Parse(allProxy)
	if err != nil {
		slog.Error("Failed to parse HIVED_ALL_PROXY URL", "error", err)
		return nil
	}

	queryMap, err := url.ParseQuery(proxyURL.RawQuery)
	if err != nil {
		slog.Error("Failed to parse HIVED_ALL_PROXY query params", "error", err)
		return nil
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	proxySSHKeyPath := queryMap.Get("private-key")
	if proxySSHKeyPath == "" {
		slog.Error("HIVED_ALL_PROXY missing required 'private-key' query param")
		return nil
	}

	proxySSHKey, err := os.ReadFile(proxySSHKeyPath)
	if err != nil {
		slog.Error("Failed to read SSH private key", "path", proxySSHKeyPath, "error", err)
		return nil
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.RWMutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.RLock()
		haveDialer := dialer != nil
		mut.RUnlock()

		if haveDialer {
			return dialer(network, address)
		}

		mut.Lock()
		defer mut.Unlock()
		if dialer == nil {
			proxyDialer, err := socks5Proxy.Dialer(username, string(proxySSHKey), proxyURL.Host)
			if err != nil {
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = proxyDialer
		}
		return dialer(network, address)
	}
}
