package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AdvisoryService is a thin proxy to the external AI advisory API. It
// forwards the caller's JSON body and returns the upstream response
// verbatim; it never interprets the payload.
type AdvisoryService struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewAdvisoryService creates an advisory proxy client. Returns nil when
// no base URL is configured, which disables the proxy surface.
func NewAdvisoryService(baseURL, apiKey string) *AdvisoryService {
	if baseURL == "" {
		return nil
	}
	return &AdvisoryService{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// AdvisoryResponse carries the upstream status and raw body
type AdvisoryResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Forward posts the body to the advisory API path and returns the
// upstream response.
func (s *AdvisoryService) Forward(ctx context.Context, path string, body io.Reader) (*AdvisoryResponse, error) {
	url := s.baseURL + "/" + strings.TrimLeft(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build advisory request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("advisory request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read advisory response: %w", err)
	}

	return &AdvisoryResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}
