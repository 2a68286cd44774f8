package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"mock_env_server/internal/domain/iface"
	configs "mock_env_server/internal/infra/config"
)

// HTTPProber issues GET baseURL with a hard timeout.
type HTTPProber struct {
	client  *http.Client
	timeout time.Duration
}

var _ iface.Prober = (*HTTPProber)(nil)

func NewHTTPProber(config *configs.HealthConfig) *HTTPProber {
	return &HTTPProber{
		client:  &http.Client{Timeout: config.ProbeTimeout},
		timeout: config.ProbeTimeout,
	}
}

func (p *HTTPProber) Probe(ctx context.Context, baseURL string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return 0, fmt.Errorf("invalid probe url: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode, nil
}
