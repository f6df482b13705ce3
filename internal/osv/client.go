package osv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultQueryURL = "https://api.osv.dev/v1/query"

// Client queries the OSV vulnerability database.
type Client struct {
	APIURL     string
	HTTPClient *http.Client

	// OnRequest, when set, observes the outcome of every query:
	// "success", "http_error" or "error".
	OnRequest func(outcome string)
}

// NewClient returns a client against the public OSV API.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		APIURL:     defaultQueryURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type queryPackage struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

type queryRequest struct {
	Package queryPackage `json:"package"`
	Version string       `json:"version,omitempty"`
}

type queryResponse struct {
	Vulns []rawVulnerability `json:"vulns"`
}

// Query fetches the raw advisories for one package. An unpinned
// dependency (version "latest") is queried without a version, which asks
// OSV for advisories across all known versions.
func (c *Client) Query(ctx context.Context, name, version, ecosystem string) ([]rawVulnerability, error) {
	reqBody := queryRequest{
		Package: queryPackage{Name: name, Ecosystem: ecosystem},
	}
	if version != "" && version != "latest" {
		reqBody.Version = version
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.observe("error")
		return nil, fmt.Errorf("OSV API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.observe("http_error")
		return nil, fmt.Errorf("OSV API returned status: %s", resp.Status)
	}

	var data queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		c.observe("error")
		return nil, fmt.Errorf("failed to decode OSV response: %w", err)
	}
	c.observe("success")
	return data.Vulns, nil
}

func (c *Client) observe(outcome string) {
	if c.OnRequest != nil {
		c.OnRequest(outcome)
	}
}
