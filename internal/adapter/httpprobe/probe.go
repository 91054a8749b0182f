package httpprobe

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/waiwai24/free-ollama/internal/common/logging"
	"github.com/waiwai24/free-ollama/internal/domain"
)

type Prober struct {
	client *Client
}

func NewProber(client *Client) *Prober {
	return &Prober{client: client}
}

// Probe issues exactly one GET against the target's tags endpoint. Time spent
// waiting on the rate limiter is not part of the measured elapsed time.
func (p *Prober) Probe(ctx context.Context, target domain.Target, timeout time.Duration) domain.ProbeOutcome {
	c := p.client

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.FailureOutcome(errorKind(err), 0)
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target.BaseURL()+TagsPath, nil)
	if err != nil {
		return domain.FailureOutcome(domain.ErrorProtocol, time.Since(start))
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		kind := errorKind(err)
		c.logger.DebugContext(ctx, "Probe failed", logging.Target(target), slog.String("kind", string(kind)), logging.Error(err))

		return domain.FailureOutcome(kind, time.Since(start))
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		kind := errorKind(err)
		c.logger.DebugContext(ctx, "Failed to read probe response", logging.Target(target), slog.String("kind", string(kind)), logging.Error(err))

		return domain.FailureOutcome(kind, time.Since(start))
	}

	return domain.ResponseOutcome(resp.StatusCode, body, time.Since(start))
}
