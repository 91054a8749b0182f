package httpprobe

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	TagsPath = "/api/tags"

	defaultMaxBodyBytes = 4 << 20
)

// Resolver resolves hosts the system resolver cannot, such as mDNS names.
type Resolver interface {
	Handles(host string) bool
	Resolve(ctx context.Context, host string) (string, error)
}

type Options struct {
	// RequestsPerSecond caps the request rate across all probes, zero means
	// unlimited.
	RequestsPerSecond  float64
	InsecureSkipVerify bool
	MaxBodyBytes       int64
	UserAgent          string
	Resolver           Resolver
}

// Client owns the transport shared by all probes.
type Client struct {
	logger    *slog.Logger
	http      *http.Client
	limiter   *rate.Limiter
	maxBody   int64
	userAgent string
}

func New(logger *slog.Logger, opts Options) (*Client, error) {
	if opts.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("httpprobe: requests per second must not be negative")
	}

	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	if opts.UserAgent == "" {
		opts.UserAgent = "free-ollama"
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		burst := max(int(opts.RequestsPerSecond), 1)
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	dialer := &net.Dialer{KeepAlive: 30 * time.Second}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialContext(dialer, opts.Resolver),
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify}, //nolint:gosec // opt-in via --probe.insecure
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &Client{
		logger: logger,
		http: &http.Client{
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter:   limiter,
		maxBody:   opts.MaxBodyBytes,
		userAgent: opts.UserAgent,
	}, nil
}

// Close drops idle keep-alive connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

func dialContext(dialer *net.Dialer, resolver Resolver) dialFunc {
	if resolver == nil {
		return dialer.DialContext
	}

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil || !resolver.Handles(host) {
			return dialer.DialContext(ctx, network, addr)
		}

		ip, err := resolver.Resolve(ctx, host)
		if err != nil {
			return nil, &net.DNSError{
				Err:        err.Error(),
				Name:       host,
				IsTimeout:  errors.Is(err, context.DeadlineExceeded),
				IsNotFound: !errors.Is(err, context.DeadlineExceeded),
			}
		}

		return dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
	}
}
