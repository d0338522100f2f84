// Package domains provides the registrar availability checker.
package domains

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/models"
)

// Checker reports per-TLD availability for a business name. Use this
// interface for dependency injection to enable mocking in tests.
type Checker interface {
	// Check returns a map of TLD -> availability for the given name.
	Check(ctx context.Context, name string) (map[string]models.TLDAvailability, error)
}

// Config holds the registrar API settings.
type Config struct {
	BaseURL string
	APIKey  string
	TLDs    []string
	Timeout time.Duration
}

// HTTPChecker queries an external registrar availability API.
type HTTPChecker struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPChecker creates an availability checker against the configured API.
func NewHTTPChecker(cfg Config, logger *zap.Logger) *HTTPChecker {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPChecker{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("domains"),
	}
}

// availabilityResponse is the registrar API's wire format.
type availabilityResponse struct {
	Results []struct {
		Domain    string `json:"domain"`
		Available bool   `json:"available"`
		Price     string `json:"price,omitempty"`
	} `json:"results"`
}

// Check queries the registrar for every configured TLD of the slugified name.
func (c *HTTPChecker) Check(ctx context.Context, name string) (map[string]models.TLDAvailability, error) {
	slug := Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("name %q has no domain-safe characters", name)
	}

	domains := make([]string, len(c.cfg.TLDs))
	for i, tld := range c.cfg.TLDs {
		domains[i] = slug + tld
	}

	endpoint := fmt.Sprintf("%s/v1/availability?domains=%s",
		strings.TrimSuffix(c.cfg.BaseURL, "/"),
		url.QueryEscape(strings.Join(domains, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build availability request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("availability request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("availability request returned %d", resp.StatusCode)
	}

	var parsed availabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode availability response: %w", err)
	}

	results := make(map[string]models.TLDAvailability, len(parsed.Results))
	for _, r := range parsed.Results {
		tld := strings.TrimPrefix(r.Domain, slug)
		if tld == "" || tld == r.Domain {
			continue
		}
		results[tld] = models.TLDAvailability{Available: r.Available, Price: r.Price}
	}

	c.logger.Debug("availability check completed",
		zap.String("name", slug),
		zap.Int("tlds", len(results)),
		zap.Duration("elapsed", time.Since(start)))

	return results, nil
}

var nonDomainChars = regexp.MustCompile(`[^a-z0-9-]+`)

// Slugify lowercases a business name and strips characters that cannot
// appear in a domain label.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "")
	slug = nonDomainChars.ReplaceAllString(slug, "")
	return strings.Trim(slug, "-")
}

// Ensure HTTPChecker implements Checker at compile time.
var _ Checker = (*HTTPChecker)(nil)

// MockChecker is a configurable mock for testing availability checks.
type MockChecker struct {
	// CheckFunc is called when Check is invoked. If nil, reports the name
	// available under ".com".
	CheckFunc func(ctx context.Context, name string) (map[string]models.TLDAvailability, error)

	// Call tracking for verification
	CheckCalls int
}

// Check implements Checker.
func (m *MockChecker) Check(ctx context.Context, name string) (map[string]models.TLDAvailability, error) {
	m.CheckCalls++
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, name)
	}
	return map[string]models.TLDAvailability{
		".com": {Available: true},
	}, nil
}

// Ensure MockChecker implements Checker at compile time.
var _ Checker = (*MockChecker)(nil)
