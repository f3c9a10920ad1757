package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"telegram-upi-lookup/internal/domain"
	"telegram-upi-lookup/internal/domain/model"
	"telegram-upi-lookup/internal/domain/ports/adapter"
	"telegram-upi-lookup/internal/infra/metrics"
)

var (
	_ adapter.HandleResolver = (*StaticResolver)(nil)
	_ adapter.HandleResolver = (*RemoteResolver)(nil)
	_ adapter.HandleResolver = ChainResolver(nil)
)

// StaticResolver answers from an in-memory handle table.
type StaticResolver struct {
	handles map[string]model.BankHandle
}

func NewStaticResolver(handles []model.BankHandle) *StaticResolver {
	m := make(map[string]model.BankHandle, len(handles))
	for _, h := range handles {
		h.Handle = strings.ToLower(strings.TrimSpace(h.Handle))
		if h.Handle == "" {
			continue
		}
		m[h.Handle] = h
	}
	return &StaticResolver{handles: m}
}

func (s *StaticResolver) Resolve(_ context.Context, handle string) (*model.BankHandle, error) {
	h, ok := s.handles[strings.ToLower(handle)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", handle, domain.ErrUnknownHandle)
	}
	return &h, nil
}

func (s *StaticResolver) Len() int { return len(s.handles) }

// LoadHandlesFile reads extra handles from a YAML list of {handle, bank, ifsc}.
// Entries with a malformed IFSC are rejected so a typo cannot reach users.
func LoadHandlesFile(path string) ([]model.BankHandle, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read handles file: %w", err)
	}
	var handles []model.BankHandle
	if err := yaml.Unmarshal(b, &handles); err != nil {
		return nil, fmt.Errorf("parse handles file: %w", err)
	}
	for i := range handles {
		code, err := model.NormalizeIFSC(handles[i].IFSC)
		if err != nil {
			return nil, fmt.Errorf("handles file entry %q: %w", handles[i].Handle, err)
		}
		handles[i].IFSC = code
	}
	return handles, nil
}

// RemoteResolver asks a UPI handle directory at {BaseURL}/{handle}, which answers
// with {"handle": "...", "bank": "...", "ifsc": "..."}.
type RemoteResolver struct {
	BaseURL string
	Client  *http.Client
	log     *zerolog.Logger
}

func NewRemoteResolver(baseURL string, timeout time.Duration, logger *zerolog.Logger) *RemoteResolver {
	l := logger.With().Str("component", "RemoteResolver").Logger()
	return &RemoteResolver{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
		log:     &l,
	}
}

func (r *RemoteResolver) Resolve(ctx context.Context, handle string) (*model.BankHandle, error) {
	u := r.BaseURL + "/" + url.PathEscape(handle)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build upi request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := r.Client.Do(req)
	if err != nil {
		metrics.ObserveUpstream("upi", 0, time.Since(start))
		r.log.Warn().Err(err).Str("handle", handle).Msg("upi directory request failed")
		return nil, fmt.Errorf("handle %s: %v: %w", handle, err, domain.ErrUpstream)
	}
	defer resp.Body.Close()
	metrics.ObserveUpstream("upi", resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", handle, domain.ErrUnknownHandle)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("handle %s: status %d: %w", handle, resp.StatusCode, domain.ErrUpstream)
	}

	var out model.BankHandle
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("handle %s: decode: %v: %w", handle, err, domain.ErrUpstream)
	}
	if out.Bank == "" {
		return nil, fmt.Errorf("%s: %w", handle, domain.ErrUnknownHandle)
	}
	code, err := model.NormalizeIFSC(out.IFSC)
	if err != nil {
		return nil, fmt.Errorf("handle %s: %v: %w", handle, err, domain.ErrUpstream)
	}
	out.IFSC = code
	if out.Handle == "" {
		out.Handle = strings.ToLower(handle)
	}
	return &out, nil
}

// ChainResolver tries each resolver in order and returns the first hit.
// Upstream failures from one resolver are swallowed and reported as an unknown
// handle when no later resolver knows it.
type ChainResolver []adapter.HandleResolver

func (c ChainResolver) Resolve(ctx context.Context, handle string) (*model.BankHandle, error) {
	for _, r := range c {
		if r == nil {
			continue
		}
		h, err := r.Resolve(ctx, handle)
		if err == nil {
			return h, nil
		}
		if !errors.Is(err, domain.ErrUnknownHandle) && !errors.Is(err, domain.ErrUpstream) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%s: %w", handle, domain.ErrUnknownHandle)
}
