package domain

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
)

var (
	ErrMalformedInput    = errors.New("malformed input")
	ErrUnsupportedScheme = errors.New("unsupported scheme")
)

// Target is a single candidate endpoint. It is a plain value: two targets with
// the same fields are interchangeable.
type Target struct {
	Host        string `json:"host" yaml:"host"`
	Port        int    `json:"port" yaml:"port"`
	Scheme      Scheme `json:"scheme" yaml:"scheme"`
	SourceLabel string `json:"source" yaml:"source"`
	Country     string `json:"country,omitempty" yaml:"country,omitempty"`
}

func (t Target) Endpoint() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

func (t Target) BaseURL() string {
	return string(t.Scheme) + "://" + t.Endpoint()
}

func (t Target) Validate() error {
	if t.Host == "" {
		return fmt.Errorf("%w: empty host", ErrMalformedInput)
	}

	if t.Port < 1 || t.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrMalformedInput, t.Port)
	}

	if t.Scheme != SchemeHTTP && t.Scheme != SchemeHTTPS {
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, t.Scheme)
	}

	return nil
}

// AssetRow is one decoded input row, numbered from 1 in file order.
type AssetRow struct {
	Line    int
	Country string
	Link    string
}

type RowError struct {
	Line int
	Link string
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d (%q): %v", e.Line, e.Link, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

func ParseTarget(country, rawURL string, line int) (Target, error) {
	rawURL = strings.TrimSpace(rawURL)

	u, err := url.Parse(rawURL)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	if u.Scheme == "" || u.Hostname() == "" {
		return Target{}, fmt.Errorf("%w: no scheme or host in %q", ErrMalformedInput, rawURL)
	}

	var (
		scheme = Scheme(strings.ToLower(u.Scheme))
		port   int
	)

	switch scheme {
	case SchemeHTTP:
		port = 80
	case SchemeHTTPS:
		port = 443
	default:
		return Target{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return Target{}, fmt.Errorf("%w: invalid port %q", ErrMalformedInput, p)
		}
	}

	return Target{
		Host:        u.Hostname(),
		Port:        port,
		Scheme:      scheme,
		SourceLabel: "line-" + strconv.Itoa(line),
		Country:     strings.TrimSpace(country),
	}, nil
}

// AdaptRows converts rows into targets in input order. Rows that cannot be
// adapted are skipped and reported back, they never fail the batch.
func AdaptRows(rows []AssetRow) ([]Target, []RowError) {
	targets := make([]Target, 0, len(rows))

	var rowErrs []RowError

	for _, row := range rows {
		target, err := ParseTarget(row.Country, row.Link, row.Line)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: row.Line, Link: row.Link, Err: err})
			continue
		}

		targets = append(targets, target)
	}

	return targets, rowErrs
}
