package rsi

import (
	"testing"
	"time"

	"github.com/newthinker/tradando/internal/core"
	"github.com/newthinker/tradando/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBars(prices []float64) []core.OHLCV {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]core.OHLCV, len(prices))
	for i, p := range prices {
		bars[i] = core.OHLCV{Symbol: "TEST", Close: p, Time: base.AddDate(0, 0, i)}
	}
	return bars
}

func TestRSI_Metadata(t *testing.T) {
	var s strategy.Strategy = New(DefaultPeriod, DefaultOverbought, DefaultOversold, strategy.DefaultExitRule())

	assert.Equal(t, "rsi", s.Name())
	assert.Equal(t, "RSI (14) with Overbought (70) and Oversold (30) levels", s.Description())
	assert.Equal(t, 14, s.Lookback())
}

func TestRSI_RisingSeriesSells(t *testing.T) {
	s := New(3, 70, 30, strategy.DefaultExitRule())
	frame := s.GenerateSignals(makeBars([]float64{10, 11, 12, 13, 14, 15}))

	values, ok := frame.Column(Column)
	require.True(t, ok)

	for i := 0; i < 3; i++ {
		assert.False(t, values[i].Valid, "bar %d", i)
		assert.Equal(t, core.SignalHold, frame.Signals[i], "bar %d", i)
	}
	for i := 3; i < 6; i++ {
		assert.Equal(t, 100.0, values[i].Float, "bar %d", i)
		assert.Equal(t, core.SignalSell, frame.Signals[i], "bar %d", i)
	}
}

func TestRSI_FallingSeriesBuys(t *testing.T) {
	s := New(3, 70, 30, strategy.DefaultExitRule())
	frame := s.GenerateSignals(makeBars([]float64{15, 14, 13, 12, 11}))

	assert.Equal(t, []core.Signal{
		core.SignalHold, core.SignalHold, core.SignalHold,
		core.SignalBuy, core.SignalBuy,
	}, frame.Signals)
}

func TestRSI_NeutralHolds(t *testing.T) {
	s := New(2, 70, 30, strategy.DefaultExitRule())
	// deltas +1, -1 -> RSI 50
	frame := s.GenerateSignals(makeBars([]float64{10, 11, 10}))

	values, _ := frame.Column(Column)
	assert.InDelta(t, 50.0, values[2].Float, 1e-9)
	assert.Equal(t, core.SignalHold, frame.Signals[2])
}

func TestFactory(t *testing.T) {
	tests := []struct {
		name    string
		params  strategy.Params
		wantErr bool
	}{
		{name: "defaults", params: nil},
		{name: "custom", params: strategy.Params{"period": "10", "overbought": 80, "oversold": 20}},
		{name: "zero period", params: strategy.Params{"period": 0}, wantErr: true},
		{name: "inverted thresholds", params: strategy.Params{"overbought": 20, "oversold": 80}, wantErr: true},
		{name: "non numeric", params: strategy.Params{"oversold": "low"}, wantErr: true},
		{name: "negative stop", params: strategy.Params{"stop_loss_pct": -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Factory(tt.params)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrConfigInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Name, s.Name())
		})
	}
}
