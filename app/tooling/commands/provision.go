package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bosn/zero-todo/sdk/environment"
	"github.com/bosn/zero-todo/sdk/logger"
)

const (
	defaultZeroEndpoint = "https://zero.tidbapi.com/v1alpha1/instances"
	defaultInstanceFile = ".ci/zero-instance.json"

	// reuseBuffer is how much lifetime a cached instance must have left to
	// be worth reusing instead of provisioning a fresh one.
	reuseBuffer = 5 * time.Minute
)

// instanceMetadata is what gets cached between CI runs.
type instanceMetadata struct {
	BaseConnectionString string    `json:"baseConnectionString"`
	ExpiresAt            time.Time `json:"expiresAt"`
}

// zeroResponse mirrors the provisioning API payload. Some deployments nest
// the fields under an instance object.
type zeroResponse struct {
	ConnectionString string `json:"connectionString"`
	ExpiresAt        string `json:"expiresAt"`
	Instance         *struct {
		ConnectionString string `json:"connectionString"`
		ExpiresAt        string `json:"expiresAt"`
	} `json:"instance"`
}

// isReusable reports whether the cached instance still has more than the
// reuse buffer of lifetime left at now.
func isReusable(meta *instanceMetadata, now time.Time) bool {
	if meta == nil || meta.BaseConnectionString == "" || meta.ExpiresAt.IsZero() {
		return false
	}
	return meta.ExpiresAt.Sub(now) > reuseBuffer
}

// toBaseConnectionString strips the database path from a connection string
// so CI can create per-run databases on the instance.
func toBaseConnectionString(connStr string) (string, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return "", fmt.Errorf("parsing connection string: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("expected postgres:// connection string, got: %s://", u.Scheme)
	}
	u.Path = "/"
	return u.String(), nil
}

// maskConnectionString renders a connection string safe for logs.
func maskConnectionString(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		return "<unparseable>"
	}
	return fmt.Sprintf("%s://%s@%s/", u.Scheme, u.User.Username(), u.Host)
}

func readCachedMetadata(path string) (*instanceMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading instance cache: %w", err)
	}

	var meta instanceMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing instance cache: %w", err)
	}
	return &meta, nil
}

func writeMetadata(path string, meta *instanceMetadata) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding instance cache: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing instance cache: %w", err)
	}
	return nil
}

func createInstance(ctx context.Context, log *logger.Logger, endpoint, apiKey, tag string) (*instanceMetadata, error) {
	log.Info("provision-instance", "status", "requesting a new instance", "endpoint", endpoint)

	body, err := json.Marshal(map[string]string{"tag": tag})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling provisioning api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("provisioning api request failed (%d): %s", resp.StatusCode, respBody)
	}

	var payload zeroResponse
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	connStr, expiresAt := payload.ConnectionString, payload.ExpiresAt
	if payload.Instance != nil {
		if connStr == "" {
			connStr = payload.Instance.ConnectionString
		}
		if expiresAt == "" {
			expiresAt = payload.Instance.ExpiresAt
		}
	}
	if connStr == "" || expiresAt == "" {
		return nil, fmt.Errorf("provisioning api response missing connectionString/expiresAt")
	}

	expires, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("parsing expiresAt: %w", err)
	}

	base, err := toBaseConnectionString(connStr)
	if err != nil {
		return nil, err
	}

	return &instanceMetadata{
		BaseConnectionString: base,
		ExpiresAt:            expires,
	}, nil
}

// appendGitHubOutput appends key=value lines to the file named by
// GITHUB_OUTPUT so the values become step outputs. Outside GitHub Actions
// this is a no-op.
func appendGitHubOutput(values map[string]string, order []string) error {
	outFile := os.Getenv("GITHUB_OUTPUT")
	if outFile == "" {
		return nil
	}

	var sb strings.Builder
	for _, key := range order {
		sb.WriteString(key)
		sb.WriteString("=")
		sb.WriteString(values[key])
		sb.WriteString("\n")
	}

	f, err := os.OpenFile(outFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening GITHUB_OUTPUT file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(sb.String()); err != nil {
		return fmt.Errorf("writing GITHUB_OUTPUT file: %w", err)
	}
	return nil
}

// ProvisionInstance gets or creates a serverless database instance for CI.
// A cached instance with enough lifetime left is reused; otherwise a new
// one is provisioned and cached.
func ProvisionInstance(ctx context.Context, log *logger.Logger) error {
	endpoint := environment.GetEnvOrDefault("ZERO_API_ENDPOINT", defaultZeroEndpoint)
	cacheFile := environment.GetEnvOrDefault("ZERO_INSTANCE_FILE", defaultInstanceFile)
	apiKey := os.Getenv("ZERO_API_KEY")

	tag := os.Getenv("ZERO_TAG")
	if tag == "" {
		repo := environment.GetEnvOrDefault("GITHUB_REPOSITORY", "local")
		tag = "ci-" + strings.ReplaceAll(repo, "/", "-")
	}

	cached, err := readCachedMetadata(cacheFile)
	if err != nil {
		return err
	}

	meta := cached
	cacheUpdated := false

	if isReusable(cached, time.Now()) {
		log.Info("provision-instance", "status", "reusing cached instance", "expires_at", cached.ExpiresAt)
	} else {
		meta, err = createInstance(ctx, log, endpoint, apiKey, tag)
		if err != nil {
			return err
		}
		if err := writeMetadata(cacheFile, meta); err != nil {
			return err
		}
		cacheUpdated = true
		log.Info("provision-instance", "status", "created new instance", "expires_at", meta.ExpiresAt)
	}

	log.Info("provision-instance", "base_connection", maskConnectionString(meta.BaseConnectionString))

	values := map[string]string{
		"base_connection_string": meta.BaseConnectionString,
		"expires_at":             meta.ExpiresAt.Format(time.RFC3339),
		"cache_updated":          fmt.Sprintf("%t", cacheUpdated),
	}
	return appendGitHubOutput(values, []string{"base_connection_string", "expires_at", "cache_updated"})
}
