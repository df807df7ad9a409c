package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/praxislabs/anthropic-go/headers"
)

const defaultBaseURL = "https://api.anthropic.com/v1"
const defaultAPIVersion = "2023-06-01"
const defaultUserAgent = "anthropic-go/" + Version

const requestIDHeaderName = headers.RequestID

// Config wires authentication, base URL, and telemetry for the API client.
type Config struct {
	BaseURL    string
	APIKey     string
	APIVersion string
	HTTPClient *http.Client
	Telemetry  TelemetryHooks
	UserAgent  string
}

// Client provides high-level access to the Messages API.
type Client struct {
	baseURL    string
	apiKey     string
	apiVersion string
	httpClient *http.Client
	telemetry  TelemetryHooks
	userAgent  string

	// Grouped service clients.
	Messages *MessagesClient
	Models   *ModelsClient
}

// NewClient validates the configuration and returns a ready-to-use Client.
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	normalized, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ConfigError{Reason: "api key required"}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	client := &Client{
		baseURL:    normalized,
		apiKey:     apiKey,
		apiVersion: apiVersion,
		httpClient: httpClient,
		telemetry:  cfg.Telemetry,
		userAgent:  ua,
	}
	client.Messages = &MessagesClient{client: client}
	client.Models = &ModelsClient{client: client}
	return client, nil
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ConfigError{Reason: "base URL required"}
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", ConfigError{Reason: fmt.Sprintf("invalid base URL: %v", err)}
	}
	if u.Scheme == "" {
		return "", ConfigError{Reason: "base URL missing scheme (http/https)"}
	}
	if u.Host == "" {
		return "", ConfigError{Reason: "base URL missing host"}
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return strings.TrimSuffix(u.String(), "/"), nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	injectTraceparent(ctx, req)
	return req, nil
}

func (c *Client) prepare(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set(headers.APIKey, c.apiKey)
	req.Header.Set(headers.APIVersion, c.apiVersion)
	if req.Header.Get(requestIDHeaderName) == "" {
		req.Header.Set(requestIDHeaderName, uuid.NewString())
	}
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	c.prepare(req)
	if c.telemetry.OnHTTPRequest != nil {
		c.telemetry.OnHTTPRequest(req.Context(), req)
	}
	c.telemetry.log(req.Context(), LogLevelInfo, "http_request", map[string]any{
		"method": req.Method,
		"url":    req.URL.String(),
	})
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.telemetry.OnHTTPResponse != nil {
		c.telemetry.OnHTTPResponse(req.Context(), req, resp, err, time.Since(start))
	}
	c.telemetry.metric(req.Context(), "sdk_http_request_latency_ms", float64(time.Since(start).Milliseconds()), map[string]string{
		"path": req.URL.Path,
	})
	if err != nil {
		return nil, TransportError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return resp, nil
}

func (c *Client) buildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}
