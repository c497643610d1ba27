package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/newthinker/tradando/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCollector for testing
type mockCollector struct {
	name     string
	supports bool
	data     []core.OHLCV
	err      error
	calls    int
}

func (m *mockCollector) Name() string                { return m.name }
func (m *mockCollector) Supports(symbol string) bool { return m.supports }
func (m *mockCollector) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	m.calls++
	return m.data, m.err
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	mock := &mockCollector{name: "mock"}
	r.Register(mock)

	c, ok := r.Get("mock")
	if !ok {
		t.Fatal("expected to find registered collector")
	}

	if c.Name() != "mock" {
		t.Errorf("expected name 'mock', got '%s'", c.Name())
	}
}

func TestRegistry_GetAll(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockCollector{name: "a"})
	r.Register(&mockCollector{name: "b"})
	r.Register(&mockCollector{name: "a"})

	all := r.GetAll()
	if len(all) != 2 {
		t.Fatalf("expected 2 collectors, got %d", len(all))
	}
	if all[0].Name() != "a" || all[1].Name() != "b" {
		t.Errorf("expected registration order a, b")
	}
}

func TestChain_FallsBack(t *testing.T) {
	bars := []core.OHLCV{{Symbol: "AAPL", Close: 100}}
	failing := &mockCollector{name: "failing", supports: true, err: errors.New("boom")}
	empty := &mockCollector{name: "empty", supports: true}
	skipped := &mockCollector{name: "skipped", supports: false, data: bars}
	good := &mockCollector{name: "good", supports: true, data: bars}

	r := NewRegistry()
	r.Register(failing)
	r.Register(empty)
	r.Register(skipped)
	r.Register(good)

	data, err := NewChain(r, nil).FetchHistory(context.Background(), "AAPL", time.Time{}, time.Now(), "1d")
	require.NoError(t, err)

	assert.Equal(t, bars, data)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, empty.calls)
	assert.Zero(t, skipped.calls)
}

func TestChain_AllFailed(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockCollector{name: "a", supports: true, err: errors.New("timeout")})
	r.Register(&mockCollector{name: "b", supports: true, err: errors.New("404")})

	_, err := NewChain(r, nil).FetchHistory(context.Background(), "AAPL", time.Time{}, time.Now(), "1d")

	assert.ErrorIs(t, err, core.ErrDataUnavailable)
	assert.ErrorIs(t, err, core.ErrCollectorFailed)
	assert.Contains(t, err.Error(), "timeout")
	assert.Contains(t, err.Error(), "404")
}

func TestChain_NoData(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockCollector{name: "a", supports: true})

	_, err := NewChain(r, nil).FetchHistory(context.Background(), "AAPL", time.Time{}, time.Now(), "1d")

	assert.ErrorIs(t, err, core.ErrDataUnavailable)
	assert.NotErrorIs(t, err, core.ErrCollectorFailed)
}

func TestChain_Unsupported(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockCollector{name: "a", supports: false})

	_, err := NewChain(r, nil).FetchHistory(context.Background(), "???", time.Time{}, time.Now(), "1d")
	assert.ErrorIs(t, err, core.ErrDataUnavailable)
}
