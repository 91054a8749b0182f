package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/waiwai24/free-ollama/internal/adapter/csvinput"
	"github.com/waiwai24/free-ollama/internal/adapter/httpprobe"
	"github.com/waiwai24/free-ollama/internal/adapter/mdns"
	"github.com/waiwai24/free-ollama/internal/adapter/progress"
	"github.com/waiwai24/free-ollama/internal/adapter/report"
	"github.com/waiwai24/free-ollama/internal/common/logging"
	"github.com/waiwai24/free-ollama/internal/ports"
	"github.com/waiwai24/free-ollama/internal/usecase"
)

type Probe struct {
	Timeout     time.Duration `name:"timeout" env:"PROBE_TIMEOUT" default:"3s" help:"The maximum duration of a single probe, connection included (e.g., 500ms, 3s)."`
	Concurrency int           `name:"concurrency" env:"PROBE_CONCURRENCY" default:"100" help:"The maximum number of probes in flight."`
	Rate        float64       `name:"rate" env:"PROBE_RATE" default:"0" help:"The maximum number of requests per second across all probes, 0 disables the limit."`
	Insecure    bool          `name:"insecure" env:"PROBE_INSECURE" help:"Skip TLS certificate verification for https targets."`
	MaxBody     int64         `name:"max-body" env:"PROBE_MAX_BODY" default:"4194304" help:"The maximum number of response body bytes read per probe."`
}

type MDNS struct {
	UseIPv4  bool   `name:"ipv4" env:"MDNS_USE_IPV4" default:"true" negatable:"" help:"Query mDNS over IPv4. Enabled by default."`
	IPv4Addr string `name:"ipv4.addr" env:"MDNS_IPV4_ADDR" default:"224.0.0.0:5353" help:"IPv4 address to bind to for mDNS queries."`
	UseIPv6  bool   `name:"ipv6" env:"MDNS_USE_IPV6" default:"true" negatable:"" help:"Query mDNS over IPv6. Enabled by default."`
	IPv6Addr string `name:"ipv6.addr" env:"MDNS_IPV6_ADDR" default:"[FF02::]:5353" help:"IPv6 address to bind to for mDNS queries."`
}

type Output struct {
	Dir    string `name:"dir" env:"OUTPUT_DIR" default:"results" help:"Directory receiving one report file per scan. Empty disables report files."`
	Format string `name:"format" env:"OUTPUT_FORMAT" default:"json" enum:"json,yaml" help:"Report file format (json, yaml)."`
	SQLite string `name:"sqlite" env:"OUTPUT_SQLITE" help:"SQLite database every report is appended to."`
}

// Discovery holds the flags shared by every command that runs a scan.
type Discovery struct {
	Input    string `name:"input" short:"i" env:"INPUT" required:"" help:"CSV file with country,link rows."`
	Probe    Probe  `embed:"" prefix:"probe."`
	UseMDNS  bool   `name:"mdns" env:"MDNS" help:"Resolve .local hosts through multicast DNS."`
	MDNS     MDNS   `embed:"" prefix:"mdns."`
	Output   Output `embed:"" prefix:"output."`
	Progress string `name:"progress" env:"PROGRESS" default:"auto" enum:"auto,tty,log,none" help:"Progress rendering (auto, tty, log, none)."`
}

func (d *Discovery) validate() []error {
	var errs []error

	p := &d.Probe

	if p.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("--probe.timeout: must be greater than zero"))
	}

	if p.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("--probe.concurrency: must be greater than zero"))
	}

	if p.Rate < 0 {
		errs = append(errs, fmt.Errorf("--probe.rate: must not be negative"))
	}

	if p.MaxBody <= 0 {
		errs = append(errs, fmt.Errorf("--probe.max-body: must be greater than zero"))
	}

	if d.UseMDNS {
		m := &d.MDNS

		if !m.UseIPv4 && !m.UseIPv6 {
			errs = append(errs, errors.New("at least one of --mdns.ipv4 or --mdns.ipv6 must be enabled"))
		}

		if m.UseIPv4 && !isUDP4AddrResolvable(m.IPv4Addr) {
			errs = append(errs, fmt.Errorf("--mdns.ipv4.addr: must be a valid UDP IPv4 address e.g. 224.0.0.0:5353"))
		}

		if m.UseIPv6 && !isUDP6AddrResolvable(m.IPv6Addr) {
			errs = append(errs, fmt.Errorf("--mdns.ipv6.addr: must be a valid UDP IPv6 address e.g. [FF02::]:5353"))
		}
	}

	return errs
}

// discovery is a wired DiscoverServicesUseCase plus everything that has to
// be released when it is no longer used.
type discovery struct {
	uc       *usecase.DiscoverServicesUseCase
	reporter *progress.Reporter
	closers  []io.Closer
}

func newDiscovery(ctx context.Context, logger *slog.Logger, d *Discovery, publishers ...ports.ScanReportPublisher) (_ *discovery, err error) {
	dc := &discovery{}

	defer func() {
		if err != nil {
			dc.Close()
		}
	}()

	var resolver httpprobe.Resolver

	if d.UseMDNS {
		mdnsClient, err := mdns.New(logger, mdns.Options{
			UseIPv4:     d.MDNS.UseIPv4,
			UseIPv6:     d.MDNS.UseIPv6,
			IPv4Addr:    d.MDNS.IPv4Addr,
			IPv6Addr:    d.MDNS.IPv6Addr,
			Concurrency: d.Probe.Concurrency,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create mdns client: %w", err)
		}

		dc.closers = append(dc.closers, mdnsClient)
		resolver = mdns.NewResolver(mdnsClient)
	}

	client, err := httpprobe.New(logger, httpprobe.Options{
		RequestsPerSecond:  d.Probe.Rate,
		InsecureSkipVerify: d.Probe.Insecure,
		MaxBodyBytes:       d.Probe.MaxBody,
		UserAgent:          "free-ollama/" + logging.Version(),
		Resolver:           resolver,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	dc.closers = append(dc.closers, client)

	var reportPublishers []ports.ScanReportPublisher

	if d.Output.Dir != "" {
		fileWriter, err := report.NewFileWriter(logger, d.Output.Dir, report.Format(d.Output.Format))
		if err != nil {
			return nil, err
		}

		reportPublishers = append(reportPublishers, fileWriter)
	}

	if d.Output.SQLite != "" {
		sqliteWriter, err := report.OpenSQLite(ctx, logger, d.Output.SQLite)
		if err != nil {
			return nil, err
		}

		dc.closers = append(dc.closers, sqliteWriter)
		reportPublishers = append(reportPublishers, sqliteWriter)
	}

	dc.reporter = progress.New(logger, os.Stderr, progress.ResolveMode(progress.Mode(d.Progress), os.Stderr))

	scanner := usecase.NewScanServicesUseCase(
		logger,
		httpprobe.NewProber(client),
		dc.reporter,
		d.Probe.Timeout,
		d.Probe.Concurrency,
	)

	dc.uc = usecase.NewDiscoverServicesUseCase(
		logger,
		csvinput.NewFileSource(d.Input),
		scanner,
		append(reportPublishers, publishers...)...,
	)

	return dc, nil
}

// Close stops progress rendering and releases the network and database
// resources in reverse order of creation.
func (dc *discovery) Close() {
	if dc.reporter != nil {
		_ = dc.reporter.Close()
	}

	for i := len(dc.closers) - 1; i >= 0; i-- {
		_ = dc.closers[i].Close()
	}
}
