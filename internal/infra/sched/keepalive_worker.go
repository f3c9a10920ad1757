package sched

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"telegram-upi-lookup/internal/infra/metrics"
)

// KeepAliveWorker periodically GETs the bot's own public URL so free-tier hosts
// that sleep idle services keep the webhook receiver warm.
type KeepAliveWorker struct {
	url      string
	interval time.Duration
	client   *http.Client
	log      *zerolog.Logger
}

func NewKeepAliveWorker(url string, interval time.Duration, logger *zerolog.Logger) *KeepAliveWorker {
	kaLog := logger.With().Str("component", "KeepAliveWorker").Logger()
	return &KeepAliveWorker{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      &kaLog,
	}
}

func (w *KeepAliveWorker) Run(ctx context.Context) error {
	w.log.Info().Str("url", w.url).Dur("interval", w.interval).Msg("Starting keep-alive worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping keep-alive worker")
			return ctx.Err()
		case <-ticker.C:
			if err := w.Ping(ctx); err != nil {
				metrics.IncKeepAlivePing("failed")
				w.log.Warn().Err(err).Msg("keep-alive ping failed")
				continue
			}
			metrics.IncKeepAlivePing("ok")
		}
	}
}

// Ping performs a single keep-alive request; any 2xx counts as success.
func (w *KeepAliveWorker) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.url, nil)
	if err != nil {
		return err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("keep-alive: unexpected status %d", resp.StatusCode)
	}
	return nil
}
