package portfolio

import (
	"testing"
	"time"

	"github.com/newthinker/tradando/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestPortfolio_New(t *testing.T) {
	p := New(10000)

	assert.Equal(t, 10000.0, p.InitialCash())
	assert.Equal(t, 10000.0, p.Cash())
	assert.Zero(t, p.Holdings())
	assert.Nil(t, p.EntryPrice())
	assert.False(t, p.IsLong())
	assert.Equal(t, 10000.0, p.CurrentValue(123))
}

func TestPortfolio_ExecuteBuy(t *testing.T) {
	p := New(10000)

	trade, ok := p.ExecuteBuy(150, t0)
	require.True(t, ok)

	assert.Equal(t, core.SideBuy, trade.Side)
	assert.Equal(t, core.ReasonSignal, trade.Reason)
	assert.Equal(t, 150.0, trade.Price)
	assert.Equal(t, 10000.0, trade.Amount)
	assert.Equal(t, 66.66666667, trade.Shares)
	assert.Equal(t, t0, trade.Time)
	assert.Nil(t, trade.PnLPct)

	assert.Zero(t, p.Cash())
	assert.InDelta(t, 10000.0/150, p.Holdings(), 1e-12)
	require.NotNil(t, p.EntryPrice())
	assert.Equal(t, 150.0, *p.EntryPrice())
	assert.True(t, p.IsLong())
}

func TestPortfolio_BuyWithoutCashIsNoop(t *testing.T) {
	p := New(10000)
	_, ok := p.ExecuteBuy(100, t0)
	require.True(t, ok)

	_, ok = p.ExecuteBuy(90, t0.AddDate(0, 0, 1))
	assert.False(t, ok)
	assert.Equal(t, 100.0, *p.EntryPrice())
	assert.Len(t, p.Trades(), 1)

	empty := New(0)
	_, ok = empty.ExecuteBuy(100, t0)
	assert.False(t, ok)
}

func TestPortfolio_BuyAtNonPositivePriceIsNoop(t *testing.T) {
	p := New(10000)
	_, ok := p.ExecuteBuy(0, t0)
	assert.False(t, ok)
	assert.Equal(t, 10000.0, p.Cash())
}

func TestPortfolio_SellWhenFlatIsNoop(t *testing.T) {
	p := New(10000)
	_, ok := p.ExecuteSell(100, t0, core.ReasonSignal)
	assert.False(t, ok)
	assert.Empty(t, p.Trades())
}

func TestPortfolio_RoundTrip(t *testing.T) {
	p := New(10000)
	_, ok := p.ExecuteBuy(100, t0)
	require.True(t, ok)

	trade, ok := p.ExecuteSell(110, t0.AddDate(0, 0, 5), core.ReasonTakeProfit)
	require.True(t, ok)

	assert.Equal(t, core.SideSell, trade.Side)
	assert.Equal(t, core.ReasonTakeProfit, trade.Reason)
	assert.Equal(t, 110.0, trade.Price)
	assert.Equal(t, 11000.0, trade.Amount)
	assert.Equal(t, 100.0, trade.Shares)
	require.NotNil(t, trade.PnLPct)
	assert.Equal(t, 10.0, *trade.PnLPct)
	assert.Equal(t, 1000.0, *trade.PnLAmount)
	assert.Equal(t, 100.0, *trade.EntryPrice)

	assert.Equal(t, 11000.0, p.Cash())
	assert.Zero(t, p.Holdings())
	assert.Nil(t, p.EntryPrice())
	assert.False(t, p.IsLong())
}

func TestPortfolio_SellDefaultsToSignalReason(t *testing.T) {
	p := New(1000)
	p.ExecuteBuy(10, t0)

	trade, ok := p.ExecuteSell(9, t0, "")
	require.True(t, ok)
	assert.Equal(t, core.ReasonSignal, trade.Reason)
	assert.Equal(t, -10.0, *trade.PnLPct)
	assert.Equal(t, -100.0, *trade.PnLAmount)
}

func TestPortfolio_CashXorHoldings(t *testing.T) {
	p := New(5000)
	prices := []float64{100, 95, 120, 80, 81, 200}

	for i, price := range prices {
		at := t0.AddDate(0, 0, i)
		if i%2 == 0 {
			p.ExecuteBuy(price, at)
		} else {
			p.ExecuteSell(price, at, core.ReasonSignal)
		}
		assert.False(t, p.Cash() > 0 && p.Holdings() > 0, "step %d holds cash and shares", i)
		assert.Equal(t, p.IsLong(), p.EntryPrice() != nil, "step %d entry price out of sync", i)
	}
}

func TestPortfolio_CurrentValueIsSideEffectFree(t *testing.T) {
	p := New(10000)
	p.ExecuteBuy(100, t0)

	first := p.CurrentValue(105)
	second := p.CurrentValue(105)

	assert.Equal(t, first, second)
	assert.InDelta(t, 10500.0, first, 1e-9)
	assert.Len(t, p.Trades(), 1)
}

func TestPortfolio_EntryPriceIsCopied(t *testing.T) {
	p := New(10000)
	p.ExecuteBuy(100, t0)

	entry := p.EntryPrice()
	*entry = 1
	assert.Equal(t, 100.0, *p.EntryPrice())
}

func TestPortfolio_Statistics(t *testing.T) {
	p := New(10000)
	p.ExecuteBuy(100, t0)
	p.ExecuteSell(94, t0.AddDate(0, 0, 1), core.ReasonStopLoss)
	p.ExecuteBuy(90, t0.AddDate(0, 0, 2))
	p.ExecuteSell(95, t0.AddDate(0, 0, 3), core.ReasonTakeProfit)
	p.ExecuteBuy(96, t0.AddDate(0, 0, 4))

	stats := p.Statistics()

	assert.Equal(t, 5, stats.NTrades)
	assert.Equal(t, 3, stats.NBuys)
	assert.Equal(t, 2, stats.NSells)
	assert.Equal(t, 1, stats.NStopLosses)
	assert.Equal(t, 1, stats.NTakeProfits)
	assert.Equal(t, 3, stats.NSignalTrades)
	assert.Len(t, stats.Trades, 5)
	assert.Equal(t, stats.NTrades, stats.NBuys+stats.NSells)
}
