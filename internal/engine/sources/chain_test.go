package sources

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_tldr/internal/engine"
)

type fakeStrategy struct {
	name  string
	segs  []engine.RawSegment
	err   error
	panic bool
	block bool
	calls atomic.Int32
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Attempt(ctx context.Context, _ string) ([]engine.RawSegment, error) {
	f.calls.Add(1)
	if f.panic {
		panic("boom")
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.segs, f.err
}

var oneSegment = []engine.RawSegment{{Text: "hi", OffsetMillis: 0, DurationMillis: 1000}}

func TestChainFallsThrough(t *testing.T) {
	failing := &fakeStrategy{name: "player", err: fail(KindDownloadFailed, errors.New("502"))}
	panicking := &fakeStrategy{name: "panel", panic: true}
	empty := &fakeStrategy{name: "scrape", segs: []engine.RawSegment{}}
	working := &fakeStrategy{name: "ytdlp", segs: oneSegment}
	unused := &fakeStrategy{name: "extra", segs: oneSegment}

	c := NewChain(time.Second, failing, panicking, empty, working, unused)
	segs, err := c.Fetch(context.Background(), "vid123")
	require.NoError(t, err)
	assert.Equal(t, oneSegment, segs)

	for _, s := range []*fakeStrategy{failing, panicking, empty, working} {
		assert.Equal(t, int32(1), s.calls.Load(), s.name)
	}
	assert.Equal(t, int32(0), unused.calls.Load(), "chain stops at first success")
}

func TestChainStrategyTimeout(t *testing.T) {
	slow := &fakeStrategy{name: "slow", block: true}
	fast := &fakeStrategy{name: "fast", segs: oneSegment}

	c := NewChain(20*time.Millisecond, slow, fast)
	segs, err := c.Fetch(context.Background(), "vid123")
	require.NoError(t, err)
	assert.Equal(t, oneSegment, segs)
}

// slowStrategy succeeds after delay unless its context ends first.
type slowStrategy struct {
	delay  time.Duration
	budget time.Duration
}

func (slowStrategy) Name() string { return "slow" }

func (s slowStrategy) Timeout() time.Duration { return s.budget }

func (s slowStrategy) Attempt(ctx context.Context, _ string) ([]engine.RawSegment, error) {
	select {
	case <-time.After(s.delay):
		return oneSegment, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestChainHonorsStrategyBudget(t *testing.T) {
	c := NewChain(20*time.Millisecond, slowStrategy{delay: 80 * time.Millisecond, budget: 2 * time.Second})
	segs, err := c.Fetch(context.Background(), "vid123")
	require.NoError(t, err)
	assert.Equal(t, oneSegment, segs)
}

func TestChainTimeoutFor(t *testing.T) {
	cfg := engine.Config{StrategyTimeout: 30 * time.Second, YtDlpTimeout: 90 * time.Second, CaptionStrategies: []string{"player", "ytdlp"}}
	c, err := NewChainFromConfig(cfg, &fakeRunner{})
	require.NoError(t, err)
	require.Len(t, c.strategies, 2)

	assert.Equal(t, 30*time.Second, c.timeoutFor(c.strategies[0]))
	assert.Equal(t, 90*time.Second, c.timeoutFor(c.strategies[1]))
	assert.Equal(t, 30*time.Second, c.timeoutFor(slowStrategy{budget: time.Second}))
}

func TestChainExhaustion(t *testing.T) {
	tests := []struct {
		name       string
		errs       []error
		wantKind   Kind
		wantStrat  string
		wantStatus int
	}{
		{
			name:       "most specific wins",
			errs:       []error{fail(KindNotFound, errors.New("a")), fail(KindRateLimited, errors.New("b")), fail(KindDownloadFailed, errors.New("c"))},
			wantKind:   KindRateLimited,
			wantStrat:  "s1",
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "unavailable beats rate limit",
			errs:       []error{fail(KindRateLimited, errors.New("a")), fail(KindVideoUnavailable, errors.New("b"))},
			wantKind:   KindVideoUnavailable,
			wantStrat:  "s1",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "no captions",
			errs:       []error{fail(KindCaptionsDisabled, errors.New("a")), nil},
			wantKind:   KindCaptionsDisabled,
			wantStrat:  "s0",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "download failure beats unknown",
			errs:       []error{errors.New("plain"), fail(KindDownloadFailed, errors.New("b"))},
			wantKind:   KindDownloadFailed,
			wantStrat:  "s1",
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "untyped errors are unknown",
			errs:       []error{errors.New("plain")},
			wantKind:   KindUnknown,
			wantStrat:  "s0",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "untyped rate limit status",
			errs:       []error{&engine.StatusError{StatusCode: http.StatusTooManyRequests}},
			wantKind:   KindRateLimited,
			wantStrat:  "s0",
			wantStatus: http.StatusTooManyRequests,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategies := make([]Strategy, len(tt.errs))
			for i, err := range tt.errs {
				strategies[i] = &fakeStrategy{name: "s" + string(rune('0'+i)), err: err}
			}

			segs, err := NewChain(time.Second, strategies...).Fetch(context.Background(), "vid123")
			assert.Nil(t, segs)

			var ae *AcquisitionError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.wantKind, ae.Kind)
			assert.Equal(t, tt.wantStrat, ae.Strategy)
			assert.Equal(t, "vid123", ae.VideoID)

			code, msg := engine.CodeOf(err)
			assert.Equal(t, tt.wantStatus, code.HTTPStatus())
			assert.NotEmpty(t, msg)
		})
	}
}

func TestChainCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &fakeStrategy{name: "player", segs: oneSegment}
	_, err := NewChain(time.Second, s).Fetch(ctx, "vid123")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), s.calls.Load())
}

func TestNewStrategies(t *testing.T) {
	got, err := NewStrategies(engine.Config{CaptionStrategies: []string{"ytdlp", " Player ", "scrape", "panel"}}, nil)
	require.NoError(t, err)
	names := make([]string, len(got))
	for i, s := range got {
		names[i] = s.Name()
	}
	assert.Equal(t, []string{"ytdlp", "player", "scrape", "panel"}, names)

	def, err := NewStrategies(engine.Config{}, nil)
	require.NoError(t, err)
	assert.Len(t, def, len(engine.DefaultCaptionStrategies))

	_, err = NewStrategies(engine.Config{CaptionStrategies: []string{"player", "carrier-pigeon"}}, nil)
	assert.Error(t, err)
}
