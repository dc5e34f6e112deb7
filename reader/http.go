package reader

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"watchlist/config"
	"watchlist/logger"
	"watchlist/models"
)

// maxBody bounds how much of a provider response is read.
const maxBody = 64 << 20

type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.agent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.agent)
	}
	return t.base.RoundTrip(req)
}

// NewHTTPClient builds the pooled client shared by the HTTP based readers.
func NewHTTPClient(cfg config.HTTPConfig) *http.Client {
	return newHTTPClient(cfg, false)
}

// NewInsecureHTTPClient is NewHTTPClient for local gateways serving self-signed certificates.
func NewInsecureHTTPClient(cfg config.HTTPConfig) *http.Client {
	return newHTTPClient(cfg, true)
}

func newHTTPClient(cfg config.HTTPConfig, insecure bool) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		DisableCompression:  false,
	}
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // local gateway
	}
	return &http.Client{
		Transport: userAgentTransport{agent: cfg.UserAgent, base: transport},
		Timeout:   cfg.Timeout,
	}
}

// Get fetches url and returns the body. Transport errors and non-2xx statuses
// are reported as fetch failures of source.
func Get(ctx context.Context, client *http.Client, source, url string) ([]byte, error) {
	log := logger.GetLogger().WithComponent(source).WithFields(logger.Fields{
		"operation": "http_get",
		"url":       url,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, models.FetchError(source, err)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, models.FetchError(source, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, models.FetchError(source, err)
	}
	logger.LogPerformanceEntry(log, source, "api_request", time.Since(start), logger.Fields{
		"status": resp.StatusCode,
		"bytes":  len(body),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, models.FetchError(source, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return body, nil
}

// DecodeJSON unmarshals body into v, reporting schema mismatches as decode failures.
func DecodeJSON(source string, body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return models.DecodeError(source, err)
	}
	return nil
}
