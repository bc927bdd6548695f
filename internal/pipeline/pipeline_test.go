package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/station-grid-etl/internal/domain"
	"github.com/couchcryptid/station-grid-etl/internal/observability"
	"github.com/couchcryptid/station-grid-etl/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	batches [][]domain.RawEvent
	index   atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	i := int(m.index.Add(1) - 1)
	if i >= len(m.batches) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type failingExtractor struct {
	calls atomic.Int64
}

func (m *failingExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	m.calls.Add(1)
	return nil, errors.New("broker unavailable")
}

type mockLoader struct {
	mu     sync.Mutex
	loaded []domain.OutputEvent
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func (m *mockLoader) events() []domain.OutputEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OutputEvent(nil), m.loaded...)
}

func newPipeline(e pipeline.BatchExtractor, l pipeline.BatchLoader) *pipeline.Pipeline {
	return pipeline.New(e, newTestTransformer(), l, slog.Default(), observability.NewMetricsForTesting(), 50)
}

func rawLine(line string, commit func(ctx context.Context) error) domain.RawEvent {
	return domain.RawEvent{
		Value:  []byte(line),
		Topic:  "raw-site-records",
		Commit: commit,
	}
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	var committed atomic.Int64
	commit := func(context.Context) error { committed.Add(1); return nil }

	ext := &mockExtractor{batches: [][]domain.RawEvent{{rawLine(validLine, commit)}}}
	ldr := &mockLoader{}
	p := newPipeline(ext, ldr)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))

	loaded := ldr.events()
	require.Len(t, loaded, 1)
	assert.Equal(t, []byte("06|037|0002"), loaded[0].Key)
	assert.Equal(t, int64(1), committed.Load())
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // no batches, will block
	ldr := &mockLoader{}
	p := newPipeline(ext, ldr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.events())
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_RejectedRecordSkippedAndCommitted(t *testing.T) {
	var committed atomic.Int64
	commit := func(context.Context) error { committed.Add(1); return nil }

	rejected := rawLine(`CC,001,0001,45.0,-75.0,WGS84,,,,,`, commit)
	valid := rawLine(validLine, commit)

	ext := &mockExtractor{batches: [][]domain.RawEvent{{rejected, valid}}}
	ldr := &mockLoader{}
	p := newPipeline(ext, ldr)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))

	loaded := ldr.events()
	require.Len(t, loaded, 1, "only the valid record reaches the sink")
	assert.Equal(t, []byte("06|037|0002"), loaded[0].Key)
	assert.Equal(t, int64(2), committed.Load(), "rejected record is still committed")
}

func TestPipeline_Run_AllRejectedStillReady(t *testing.T) {
	ext := &mockExtractor{batches: [][]domain.RawEvent{{
		rawLine(`CC,001,0001,45.0,-75.0,WGS84,,,,,`, nil),
		rawLine(`80,002,0001,19.0,-99.0,WGS84,,,,,`, nil),
	}}}
	ldr := &mockLoader{}
	p := newPipeline(ext, ldr)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.events())
	assert.NoError(t, p.CheckReadiness(context.Background()),
		"a fully rejected batch still marks the pipeline ready")
}

func TestPipeline_Run_ExtractErrorRetriesWithBackoff(t *testing.T) {
	ext := &failingExtractor{}
	ldr := &mockLoader{}
	p := newPipeline(ext, ldr)

	ctx, cancel := context.WithTimeout(context.Background(), 700*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	// 200ms then 400ms backoff fit at least two retries inside 700ms.
	assert.GreaterOrEqual(t, ext.calls.Load(), int64(2))
	assert.Empty(t, ldr.events())
}

func TestPipeline_Run_LoadErrorDoesNotCommit(t *testing.T) {
	var committed atomic.Int64
	commit := func(context.Context) error { committed.Add(1); return nil }

	ext := &mockExtractor{batches: [][]domain.RawEvent{{rawLine(validLine, commit)}}}
	ldr := &mockLoader{err: errors.New("sink unavailable")}
	p := newPipeline(ext, ldr)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Zero(t, committed.Load(), "offsets must not be committed when the load fails")
	assert.Error(t, p.CheckReadiness(context.Background()))
}
