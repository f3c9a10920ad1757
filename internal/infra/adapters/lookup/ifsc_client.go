package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"telegram-upi-lookup/internal/domain"
	"telegram-upi-lookup/internal/domain/model"
	"telegram-upi-lookup/internal/domain/ports/adapter"
	"telegram-upi-lookup/internal/infra/metrics"
)

var _ adapter.IFSCClient = (*RazorpayIFSCClient)(nil)

// RazorpayIFSCClient queries the public IFSC directory at {BaseURL}/{IFSC}.
// There is no retry: one request per lookup, bounded by the client timeout.
type RazorpayIFSCClient struct {
	BaseURL string
	Client  *http.Client
	log     *zerolog.Logger
}

func NewRazorpayIFSCClient(baseURL string, timeout time.Duration, logger *zerolog.Logger) *RazorpayIFSCClient {
	l := logger.With().Str("component", "RazorpayIFSCClient").Logger()
	return &RazorpayIFSCClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
		log:     &l,
	}
}

func (c *RazorpayIFSCClient) Fetch(ctx context.Context, ifsc string) (*model.IFSCDetails, error) {
	u := c.BaseURL + "/" + url.PathEscape(ifsc)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build ifsc request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		metrics.ObserveUpstream("ifsc", 0, time.Since(start))
		c.log.Warn().Err(err).Str("ifsc", ifsc).Msg("ifsc request failed")
		return nil, fmt.Errorf("ifsc %s: %v: %w", ifsc, err, domain.ErrUpstream)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug().Err(err).Msg("close ifsc response body")
		}
	}()
	metrics.ObserveUpstream("ifsc", resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("ifsc %s: %w", ifsc, domain.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		c.log.Warn().Int("status", resp.StatusCode).Str("ifsc", ifsc).Msg("ifsc service returned non-200")
		return nil, fmt.Errorf("ifsc %s: status %d: %w", ifsc, resp.StatusCode, domain.ErrUpstream)
	}

	var details model.IFSCDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		c.log.Warn().Err(err).Str("ifsc", ifsc).Msg("decode ifsc response")
		return nil, fmt.Errorf("ifsc %s: decode: %v: %w", ifsc, err, domain.ErrUpstream)
	}
	if details.IFSC == "" {
		details.IFSC = ifsc
	}
	return &details, nil
}
