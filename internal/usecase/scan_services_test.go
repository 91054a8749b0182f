package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/waiwai24/free-ollama/internal/domain"
	"github.com/waiwai24/free-ollama/internal/ports"
	portsm "github.com/waiwai24/free-ollama/internal/ports/mocks"
)

const tagsBody = `{"models":[{"name":"llama3","modified_at":"2024-01-01T00:00:00Z","size":4000000000,"digest":"abc","details":{"format":"gguf","family":"llama","families":["llama"],"parameter_size":"8B","quantization_level":"Q4_0"}}]}`

func TestScanServicesUseCase_ClassifiesEveryTarget(t *testing.T) {
	ctx := t.Context()

	prober := portsm.NewMockServiceProber(t)
	progress := portsm.NewMockProgressReporter(t)

	uc := newTestScanServicesUseCase(t, prober, progress, 2)

	active := testTarget("10.0.0.1", 11434)
	refused := testTarget("10.0.0.2", 11434)

	prober.On("Probe", mock.Anything, active, 3*time.Second).
		Return(domain.ResponseOutcome(200, []byte(tagsBody), 20*time.Millisecond))
	prober.On("Probe", mock.Anything, refused, 3*time.Second).
		Return(domain.FailureOutcome(domain.ErrorConnection, time.Millisecond))

	progress.On("Report", mock.Anything, mock.Anything).Return()

	records, err := uc.Execute(ctx, ScanServicesCommand{
		Targets: []domain.Target{active, refused},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	byHost := recordsByHost(records)

	require.True(t, byHost["10.0.0.1"].IsActive)
	require.InDelta(t, 1.0, byHost["10.0.0.1"].Confidence, 0.0001)
	require.Equal(t, []string{"llama3"}, byHost["10.0.0.1"].ModelNames())

	require.False(t, byHost["10.0.0.2"].IsActive)
	require.Zero(t, byHost["10.0.0.2"].Confidence)
	require.Equal(t, []string{"connection"}, byHost["10.0.0.2"].Notes)

	progress.AssertNumberOfCalls(t, "Report", 2)
}

func TestScanServicesUseCase_ReportsProgressUpToTotal(t *testing.T) {
	ctx := t.Context()

	prober := portsm.NewMockServiceProber(t)
	progress := portsm.NewMockProgressReporter(t)

	uc := newTestScanServicesUseCase(t, prober, progress, 3)

	targets := makeTargets(5)

	prober.On("Probe", mock.Anything, mock.Anything, 3*time.Second).
		Return(domain.ResponseOutcome(404, nil, time.Millisecond))

	var (
		mu   sync.Mutex
		seen []int
	)

	progress.On("Report", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		event := args.Get(1).(ports.ProgressEvent)
		assert.Equal(t, 5, event.Total)

		mu.Lock()
		seen = append(seen, event.Done)
		mu.Unlock()
	}).Return()

	records, err := uc.Execute(ctx, ScanServicesCommand{Targets: targets})
	require.NoError(t, err)
	require.Len(t, records, 5)

	require.ElementsMatch(t, []int{1, 2, 3, 4, 5}, seen)
}

func TestScanServicesUseCase_BoundsConcurrency(t *testing.T) {
	ctx := t.Context()

	prober := &countingProber{delay: 5 * time.Millisecond}
	progress := portsm.NewMockProgressReporter(t)
	progress.On("Report", mock.Anything, mock.Anything).Return()

	uc := newTestScanServicesUseCase(t, prober, progress, 10)

	records, err := uc.Execute(ctx, ScanServicesCommand{Targets: makeTargets(50)})
	require.NoError(t, err)
	require.Len(t, records, 50)

	require.LessOrEqual(t, prober.maxInFlight.Load(), int64(10))
	require.Equal(t, int64(50), prober.calls.Load())

	sources := make(map[string]struct{}, len(records))
	for _, r := range records {
		sources[r.Target.SourceLabel] = struct{}{}
	}

	require.Len(t, sources, 50)
}

func TestScanServicesUseCase_RecoversFromPanickingProbe(t *testing.T) {
	ctx := t.Context()

	prober := portsm.NewMockServiceProber(t)
	progress := portsm.NewMockProgressReporter(t)

	uc := newTestScanServicesUseCase(t, prober, progress, 2)

	ok := testTarget("10.0.0.1", 11434)
	broken := testTarget("10.0.0.2", 11434)

	prober.On("Probe", mock.Anything, ok, mock.Anything).
		Return(domain.ResponseOutcome(200, []byte(tagsBody), time.Millisecond))
	prober.On("Probe", mock.Anything, broken, mock.Anything).
		Return(func(context.Context, domain.Target, time.Duration) domain.ProbeOutcome {
			panic("boom")
		})

	progress.On("Report", mock.Anything, mock.Anything).Return()

	records, err := uc.Execute(ctx, ScanServicesCommand{Targets: []domain.Target{ok, broken}})
	require.NoError(t, err)
	require.Len(t, records, 2)

	byHost := recordsByHost(records)
	require.True(t, byHost["10.0.0.1"].IsActive)
	require.False(t, byHost["10.0.0.2"].IsActive)
	require.Equal(t, []string{"other"}, byHost["10.0.0.2"].Notes)
}

func TestScanServicesUseCase_FailsBeforeProbingOnInvalidInput(t *testing.T) {
	ctx := t.Context()

	prober := portsm.NewMockServiceProber(t)
	progress := portsm.NewMockProgressReporter(t)

	uc := newTestScanServicesUseCase(t, prober, progress, 2)

	_, err := uc.Execute(ctx, ScanServicesCommand{
		Targets: []domain.Target{
			testTarget("10.0.0.1", 11434),
			{Host: "10.0.0.2", Port: 0, Scheme: domain.SchemeHTTP, SourceLabel: "line-2"},
		},
	})
	require.ErrorContains(t, err, "invalid target line-2")
	require.ErrorIs(t, err, domain.ErrMalformedInput)

	prober.AssertNotCalled(t, "Probe", mock.Anything, mock.Anything, mock.Anything)
	progress.AssertNotCalled(t, "Report", mock.Anything, mock.Anything)
}

func TestScanServicesUseCase_RejectsInvalidConfiguration(t *testing.T) {
	ctx := t.Context()

	prober := portsm.NewMockServiceProber(t)
	progress := portsm.NewMockProgressReporter(t)

	uc := NewScanServicesUseCase(slog.New(slog.NewTextHandler(io.Discard, nil)), prober, progress, 0, 0)

	_, err := uc.Execute(ctx, ScanServicesCommand{Targets: makeTargets(1)})
	require.ErrorContains(t, err, "timeout must be greater than zero")
	require.ErrorContains(t, err, "concurrency must be greater than zero")
}

func TestScanServicesUseCase_EmptyBatch(t *testing.T) {
	ctx := t.Context()

	uc := newTestScanServicesUseCase(t, portsm.NewMockServiceProber(t), portsm.NewMockProgressReporter(t), 4)

	records, err := uc.Execute(ctx, ScanServicesCommand{})
	require.NoError(t, err)
	require.NotNil(t, records)
	require.Empty(t, records)
}

func TestScanServicesUseCase_CanceledContextKeepsEveryTarget(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	targets := makeTargets(40)

	prober := &blockingProber{fast: map[string]struct{}{}}
	for _, target := range targets[:3] {
		prober.fast[target.Host] = struct{}{}
	}

	progress := portsm.NewMockProgressReporter(t)
	progress.On("Report", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		if args.Get(1).(ports.ProgressEvent).Done == 3 {
			cancel()
		}
	}).Return()

	uc := newTestScanServicesUseCase(t, prober, progress, 4)

	records, err := uc.Execute(ctx, ScanServicesCommand{Targets: targets})
	require.NoError(t, err)
	require.Len(t, records, len(targets))

	var active int

	for _, record := range records {
		if _, ok := prober.fast[record.Target.Host]; ok {
			require.True(t, record.IsActive)
			active++

			continue
		}

		require.False(t, record.IsActive)
		require.Equal(t, []string{"other"}, record.Notes)
	}

	require.Equal(t, 3, active)
	progress.AssertNumberOfCalls(t, "Report", len(targets))
}

func TestScanServicesUseCase_RecoversFromPanickingProgressReporter(t *testing.T) {
	ctx := t.Context()

	prober := portsm.NewMockServiceProber(t)
	progress := portsm.NewMockProgressReporter(t)

	prober.On("Probe", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ResponseOutcome(200, []byte(tagsBody), time.Millisecond))
	progress.On("Report", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("render failed")
	}).Return()

	uc := newTestScanServicesUseCase(t, prober, progress, 2)

	records, err := uc.Execute(ctx, ScanServicesCommand{Targets: makeTargets(3)})
	require.NoError(t, err)
	require.Len(t, records, 3)

	for _, record := range records {
		require.True(t, record.IsActive)
	}
}

// blockingProber answers fast hosts at once and holds every other probe until
// the context is done, mirroring how the HTTP prober reports cancellation.
type blockingProber struct {
	fast map[string]struct{}
}

func (p *blockingProber) Probe(ctx context.Context, target domain.Target, _ time.Duration) domain.ProbeOutcome {
	if _, ok := p.fast[target.Host]; ok {
		return domain.ResponseOutcome(200, []byte(tagsBody), time.Millisecond)
	}

	<-ctx.Done()

	return domain.FailureOutcome(domain.ErrorOther, time.Millisecond)
}

type countingProber struct {
	delay       time.Duration
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
	calls       atomic.Int64
}

func (p *countingProber) Probe(_ context.Context, _ domain.Target, _ time.Duration) domain.ProbeOutcome {
	p.calls.Add(1)

	current := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)

	for {
		peak := p.maxInFlight.Load()
		if current <= peak || p.maxInFlight.CompareAndSwap(peak, current) {
			break
		}
	}

	time.Sleep(p.delay)

	return domain.FailureOutcome(domain.ErrorTimeout, p.delay)
}

func newTestScanServicesUseCase(t *testing.T, prober ports.ServiceProber, progress ports.ProgressReporter, concurrency int) *ScanServicesUseCase {
	t.Helper()

	return NewScanServicesUseCase(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		prober,
		progress,
		3*time.Second,
		concurrency,
	)
}

func testTarget(host string, port int) domain.Target {
	return domain.Target{
		Host:        host,
		Port:        port,
		Scheme:      domain.SchemeHTTP,
		SourceLabel: fmt.Sprintf("line-%s", host),
	}
}

func makeTargets(n int) []domain.Target {
	targets := make([]domain.Target, 0, n)
	for i := range n {
		targets = append(targets, domain.Target{
			Host:        fmt.Sprintf("10.0.%d.%d", i/250, i%250+1),
			Port:        11434,
			Scheme:      domain.SchemeHTTP,
			SourceLabel: fmt.Sprintf("line-%d", i+1),
		})
	}

	return targets
}

func recordsByHost(records []domain.ServiceRecord) map[string]domain.ServiceRecord {
	byHost := make(map[string]domain.ServiceRecord, len(records))
	for _, r := range records {
		byHost[r.Target.Host] = r
	}

	return byHost
}
