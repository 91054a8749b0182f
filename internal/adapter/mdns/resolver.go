package mdns

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/waiwai24/free-ollama/internal/common/logging"
)

const localSuffix = ".local"

// Resolver answers A/AAAA lookups for link-local names through multicast DNS.
type Resolver struct {
	client *Client
}

func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

// Handles reports whether host is a multicast DNS name.
func (r *Resolver) Handles(host string) bool {
	return IsLocalName(host)
}

func (r *Resolver) Resolve(ctx context.Context, host string) (string, error) {
	if err := r.client.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}

	defer r.client.sem.Release(1)

	_, addr, err := r.client.conn.QueryAddr(ctx, host)
	if err != nil {
		r.client.logger.DebugContext(ctx, "mDNS query failed", slog.String("host", host), logging.Error(err))
		return "", fmt.Errorf("failed to resolve %s via mdns: %w", host, err)
	}

	return addr.String(), nil
}

func IsLocalName(host string) bool {
	name := strings.ToLower(strings.TrimSuffix(host, "."))

	return len(name) > len(localSuffix) && strings.HasSuffix(name, localSuffix)
}
