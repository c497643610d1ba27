// Package portfolio implements the all-in, all-out position ledger driven by
// a backtest run.
package portfolio

import (
	"time"

	"github.com/newthinker/tradando/internal/core"
)

// Portfolio holds cash or a single long position, never both, plus the
// append-only trade log. Running state is kept unrounded; rounding happens
// only when a trade is recorded. A Portfolio belongs to exactly one run and is
// not safe for concurrent use.
type Portfolio struct {
	initialCash float64
	cash        float64
	holdings    float64
	entryPrice  *float64
	lastBuy     *core.Trade
	trades      []core.Trade
}

// New creates a flat portfolio holding initialCash
func New(initialCash float64) *Portfolio {
	return &Portfolio{
		initialCash: initialCash,
		cash:        initialCash,
	}
}

// InitialCash returns the cash the portfolio started with
func (p *Portfolio) InitialCash() float64 { return p.initialCash }

// Cash returns the unrounded cash balance
func (p *Portfolio) Cash() float64 { return p.cash }

// Holdings returns the unrounded share quantity held
func (p *Portfolio) Holdings() float64 { return p.holdings }

// EntryPrice returns the entry price of the open position, nil when flat
func (p *Portfolio) EntryPrice() *float64 {
	if p.entryPrice == nil {
		return nil
	}
	v := *p.entryPrice
	return &v
}

// IsLong reports whether a position is open
func (p *Portfolio) IsLong() bool {
	return p.holdings > 0
}

// ExecuteBuy commits all cash at price. It is a no-op returning false when
// there is no cash or the price is not positive.
func (p *Portfolio) ExecuteBuy(price float64, at time.Time) (core.Trade, bool) {
	if p.cash <= 0 || price <= 0 {
		return core.Trade{}, false
	}

	amount := p.cash
	shares := amount / price

	p.holdings = shares
	p.cash = 0
	entry := price
	p.entryPrice = &entry

	trade := core.Trade{
		Side:   core.SideBuy,
		Reason: core.ReasonSignal,
		Price:  core.RoundMoney(price),
		Time:   at,
		Amount: core.RoundMoney(amount),
		Shares: core.RoundShares(shares),
	}
	p.trades = append(p.trades, trade)
	last := trade
	p.lastBuy = &last

	return trade, true
}

// ExecuteSell liquidates all holdings at price for the given reason. It is a
// no-op returning false when flat.
func (p *Portfolio) ExecuteSell(price float64, at time.Time, reason core.Reason) (core.Trade, bool) {
	if p.holdings <= 0 {
		return core.Trade{}, false
	}
	if reason == "" {
		reason = core.ReasonSignal
	}

	shares := p.holdings
	proceeds := shares * price

	var pnlPct, entryPrice float64
	if p.entryPrice != nil && *p.entryPrice != 0 {
		pnlPct = (price - *p.entryPrice) / *p.entryPrice * 100
		entryPrice = *p.entryPrice
	}
	var pnlAmount float64
	if p.lastBuy != nil {
		pnlAmount = proceeds - p.lastBuy.Amount
	}

	p.cash = proceeds
	p.holdings = 0

	pnlPct = core.RoundMoney(pnlPct)
	pnlAmount = core.RoundMoney(pnlAmount)
	entryPrice = core.RoundMoney(entryPrice)

	trade := core.Trade{
		Side:       core.SideSell,
		Reason:     reason,
		Price:      core.RoundMoney(price),
		Time:       at,
		Amount:     core.RoundMoney(proceeds),
		Shares:     core.RoundShares(shares),
		PnLPct:     &pnlPct,
		PnLAmount:  &pnlAmount,
		EntryPrice: &entryPrice,
	}
	p.trades = append(p.trades, trade)
	p.entryPrice = nil
	p.lastBuy = nil

	return trade, true
}

// CurrentValue marks the portfolio to market at price
func (p *Portfolio) CurrentValue(price float64) float64 {
	return p.cash + p.holdings*price
}

// Trades returns a copy of the trade log
func (p *Portfolio) Trades() []core.Trade {
	out := make([]core.Trade, len(p.trades))
	copy(out, p.trades)
	return out
}

// Statistics summarizes the trade log
type Statistics struct {
	NTrades       int          `json:"n_trades"`
	NBuys         int          `json:"n_buys"`
	NSells        int          `json:"n_sells"`
	NStopLosses   int          `json:"n_stop_losses"`
	NTakeProfits  int          `json:"n_take_profits"`
	NSignalTrades int          `json:"n_signal_trades"`
	Trades        []core.Trade `json:"trades"`
}

// Statistics counts trades by side and by reason
func (p *Portfolio) Statistics() Statistics {
	stats := Statistics{
		NTrades: len(p.trades),
		Trades:  p.Trades(),
	}
	for _, t := range p.trades {
		switch t.Side {
		case core.SideBuy:
			stats.NBuys++
		case core.SideSell:
			stats.NSells++
		}
		switch t.Reason {
		case core.ReasonStopLoss:
			stats.NStopLosses++
		case core.ReasonTakeProfit:
			stats.NTakeProfits++
		case core.ReasonSignal:
			stats.NSignalTrades++
		}
	}
	return stats
}
