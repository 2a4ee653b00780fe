package cmlapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// defaultTimeout bounds the list, download and lifecycle calls.
	defaultTimeout = 30 * time.Second

	// identityTimeout bounds the identity and session-management calls,
	// which must fail fast so credential restoration is never left hanging.
	identityTimeout = 10 * time.Second
)

// Client talks to one CML controller.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     zerolog.Logger
}

// New creates a Client for the controller at baseURL.
func New(baseURL string, logger zerolog.Logger) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // self-signed internal controllers
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/",
		httpc:   &http.Client{Transport: transport},
		log:     logger,
	}
}

// do issues a single request and returns the raw response body and status
// code. Transport-level failures are reported with status 0.
func (c *Client) do(ctx context.Context, timeout time.Duration, method, path, token string, body any) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return "", 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return "", 0, fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read %s %s response: %w", method, path, err)
	}
	return string(data), resp.StatusCode, nil
}

// Authenticate logs in and returns the bearer token. The controller
// answers with the token as a quoted text body; the quotes are stripped.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, int, error) {
	body := map[string]string{"username": username, "password": password}
	text, status, err := c.do(ctx, identityTimeout, http.MethodPost, "authenticate", "", body)
	c.log.Info().Int("status", status).Msg("Authenticate")
	if err != nil {
		return "", status, err
	}
	return stripQuotes(text), status, nil
}

// ListLabs returns the IDs of every lab on the controller, including labs
// owned by other users.
func (c *Client) ListLabs(ctx context.Context, token string) ([]string, int, error) {
	text, status, err := c.do(ctx, defaultTimeout, http.MethodGet, "labs?show_all=true", token, nil)
	c.log.Info().Int("status", status).Msg("ListLabs")
	if err != nil {
		return nil, status, err
	}
	if status != http.StatusOK {
		return nil, status, nil
	}
	var labs []string
	if err := json.Unmarshal([]byte(text), &labs); err != nil {
		return nil, status, fmt.Errorf("failed to decode lab list: %w", err)
	}
	return labs, status, nil
}

// ListNodes returns the IDs of every node in a lab.
func (c *Client) ListNodes(ctx context.Context, token, labID string) ([]string, int, error) {
	path := fmt.Sprintf("labs/%s/nodes?data=false", labID)
	text, status, err := c.do(ctx, defaultTimeout, http.MethodGet, path, token, nil)
	c.log.Info().Str("lab", labID).Int("status", status).Msg("ListNodes")
	if err != nil {
		return nil, status, err
	}
	if status != http.StatusOK {
		return nil, status, nil
	}
	var nodes []string
	if err := json.Unmarshal([]byte(text), &nodes); err != nil {
		return nil, status, fmt.Errorf("failed to decode node list for lab %s: %w", labID, err)
	}
	return nodes, status, nil
}

// ExtractNodeConfig pulls the running configuration of a node into the lab
// definition. The controller rejects the call for nodes that are not
// running; such nodes are simply missing from the export.
func (c *Client) ExtractNodeConfig(ctx context.Context, token, labID, nodeID string) (string, int, error) {
	path := fmt.Sprintf("labs/%s/nodes/%s/extract_configuration", labID, nodeID)
	text, status, err := c.do(ctx, defaultTimeout, http.MethodPut, path, token, nil)
	c.log.Info().Str("lab", labID).Str("node", nodeID).Int("status", status).Msg("ExtractNodeConfig")
	return text, status, err
}

// DownloadLab returns the lab definition as raw YAML text.
func (c *Client) DownloadLab(ctx context.Context, token, labID string) (string, int, error) {
	path := fmt.Sprintf("labs/%s/download", labID)
	text, status, err := c.do(ctx, defaultTimeout, http.MethodGet, path, token, nil)
	c.log.Info().Str("lab", labID).Int("status", status).Msg("DownloadLab")
	return text, status, err
}

// StopLab stops a lab. Success is 204.
func (c *Client) StopLab(ctx context.Context, token, labID string) (int, error) {
	path := fmt.Sprintf("labs/%s/stop", labID)
	_, status, err := c.do(ctx, defaultTimeout, http.MethodPut, path, token, nil)
	c.log.Info().Str("lab", labID).Int("status", status).Msg("StopLab")
	return status, err
}

// WipeLab wipes a stopped lab's node state. Success is 204.
func (c *Client) WipeLab(ctx context.Context, token, labID string) (int, error) {
	path := fmt.Sprintf("labs/%s/wipe", labID)
	_, status, err := c.do(ctx, defaultTimeout, http.MethodPut, path, token, nil)
	c.log.Info().Str("lab", labID).Int("status", status).Msg("WipeLab")
	return status, err
}

// DeleteLab deletes a lab. Success is 204; deletion is terminal.
func (c *Client) DeleteLab(ctx context.Context, token, labID string) (int, error) {
	path := fmt.Sprintf("labs/%s", labID)
	_, status, err := c.do(ctx, defaultTimeout, http.MethodDelete, path, token, nil)
	c.log.Info().Str("lab", labID).Int("status", status).Msg("DeleteLab")
	return status, err
}

// ResolveAdminID returns the user ID of the admin account.
func (c *Client) ResolveAdminID(ctx context.Context, token string) (string, int, error) {
	text, status, err := c.do(ctx, identityTimeout, http.MethodGet, "users/admin/id", token, nil)
	c.log.Info().Int("status", status).Msg("ResolveAdminID")
	if err != nil {
		return "", status, err
	}
	return parseAdminID(text), status, nil
}

// parseAdminID accepts the three body shapes observed across controller
// versions: a JSON object with an "id" field, a bare JSON string, or
// unquoted plain text.
func parseAdminID(body string) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &obj); err == nil {
		if raw, ok := obj["id"]; ok {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				return s
			}
			return stripQuotes(string(raw))
		}
	}
	var s string
	if err := json.Unmarshal([]byte(body), &s); err == nil {
		return stripQuotes(s)
	}
	return stripQuotes(body)
}

// stripQuotes trims whitespace and any surrounding quote characters from a
// text body.
func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	return strings.Trim(s, `'`)
}
