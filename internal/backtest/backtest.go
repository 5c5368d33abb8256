// Package backtest simulates an SMA crossover strategy over a daily price
// series and compares it against a buy-and-hold benchmark.
package backtest

import (
	"errors"
	"fmt"
	"math"
	"time"

	"smacross/internal/series"
	"smacross/internal/strategy"
)

var (
	// ErrInvalidParameter is returned when a window or the initial capital
	// fails validation. No computation is started.
	ErrInvalidParameter = errors.New("invalid backtest parameter")

	// ErrInsufficientData is returned when the price series is shorter
	// than the long window, leaving no index with a defined crossover.
	ErrInsufficientData = errors.New("not enough price points for the long window")
)

// Params are the only three tunables of the simulation. Full-capital
// sizing, whole shares and zero transaction costs are fixed policy.
type Params struct {
	ShortWindow    int
	LongWindow     int
	InitialCapital float64
}

// Validate rejects unusable parameters before any computation starts.
func (p Params) Validate() error {
	if p.ShortWindow <= 0 {
		return fmt.Errorf("%w: short window must be positive, got %d", ErrInvalidParameter, p.ShortWindow)
	}
	if p.LongWindow <= 0 {
		return fmt.Errorf("%w: long window must be positive, got %d", ErrInvalidParameter, p.LongWindow)
	}
	if p.ShortWindow >= p.LongWindow {
		return fmt.Errorf("%w: short window (%d) must be smaller than long window (%d)",
			ErrInvalidParameter, p.ShortWindow, p.LongWindow)
	}
	if p.InitialCapital <= 0 {
		return fmt.Errorf("%w: initial capital must be positive, got %v", ErrInvalidParameter, p.InitialCapital)
	}
	return nil
}

// Action is the side of an executed trade.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Trade is an immutable audit record of one position change.
type Trade struct {
	Date   time.Time `json:"date"`
	Action Action    `json:"action"`
	Price  float64   `json:"price"`
	Shares int64     `json:"shares"`
}

// EquityPoint is the total portfolio value at one time step.
type EquityPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Result holds the simulation output for the strategy.
type Result struct {
	FinalValue     float64       `json:"final_value"`
	TotalReturnPct float64       `json:"total_return_pct"`
	Trades         []Trade       `json:"trades"`
	EquityCurve    []EquityPoint `json:"equity_curve"`
}

// Benchmark holds the buy-and-hold comparison figures.
type Benchmark struct {
	FinalValue     float64 `json:"final_value"`
	TotalReturnPct float64 `json:"total_return_pct"`
}

// Summary bundles one full run: strategy result and benchmark.
type Summary struct {
	Symbol    string    `json:"symbol"`
	Params    Params    `json:"params"`
	Strategy  Result    `json:"strategy"`
	Benchmark Benchmark `json:"benchmark"`
}

// State is the portfolio at one point of the walk. It is owned exclusively
// by the simulation loop; each step produces the next state.
type State struct {
	Cash     float64
	Shares   int64
	Position strategy.Signal
}

// Step applies one time step: a golden cross while flat converts all cash
// into whole shares at the day's close, a death cross while long liquidates
// everything. Any other combination leaves the state unchanged. The
// position guard makes duplicate events of the same direction no-ops.
func (st State) Step(p series.PricePoint, cross *strategy.Cross) (State, *Trade) {
	if cross == nil {
		return st, nil
	}

	switch {
	case cross.Type == strategy.GoldenCross && st.Position == strategy.Flat:
		shares := int64(math.Floor(st.Cash / p.Close))
		st.Cash -= float64(shares) * p.Close
		st.Shares = shares
		st.Position = strategy.Long
		return st, &Trade{Date: p.Date, Action: ActionBuy, Price: p.Close, Shares: shares}

	case cross.Type == strategy.DeathCross && st.Position == strategy.Long:
		shares := st.Shares
		st.Cash += float64(shares) * p.Close
		st.Shares = 0
		st.Position = strategy.Flat
		return st, &Trade{Date: p.Date, Action: ActionSell, Price: p.Close, Shares: shares}
	}

	return st, nil
}

// Equity is the mark-to-market portfolio value at the given close.
func (st State) Equity(close float64) float64 {
	return st.Cash + float64(st.Shares)*close
}

// Run simulates the crossover strategy over the series. All preconditions
// are checked up front; no partial result is ever produced.
func Run(s series.Series, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Len() < p.LongWindow {
		return nil, fmt.Errorf("%w: have %d points, need at least %d",
			ErrInsufficientData, s.Len(), p.LongWindow)
	}

	strat, err := strategy.NewSMACross(p.ShortWindow, p.LongWindow)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	_, crosses, err := strat.Signals(s.Closes())
	if err != nil {
		return nil, err
	}

	crossAt := make(map[int]*strategy.Cross, len(crosses))
	for i := range crosses {
		crossAt[crosses[i].Index] = &crosses[i]
	}

	state := State{Cash: p.InitialCapital, Position: strategy.Flat}
	result := &Result{
		EquityCurve: make([]EquityPoint, 0, s.Len()),
	}

	for i, pt := range s.Points {
		var trade *Trade
		state, trade = state.Step(pt, crossAt[i])
		if trade != nil {
			result.Trades = append(result.Trades, *trade)
		}
		result.EquityCurve = append(result.EquityCurve, EquityPoint{
			Date:  pt.Date,
			Value: state.Equity(pt.Close),
		})
	}

	// Open positions are valued at the last close, never auto-liquidated.
	result.FinalValue = result.EquityCurve[len(result.EquityCurve)-1].Value
	result.TotalReturnPct = (result.FinalValue/p.InitialCapital - 1) * 100
	return result, nil
}

// BuyAndHold computes the benchmark: buy the maximum number of whole shares
// at the first close, keep the leftover as cash, never trade again.
func BuyAndHold(s series.Series, initialCapital float64) (*Benchmark, error) {
	if initialCapital <= 0 {
		return nil, fmt.Errorf("%w: initial capital must be positive, got %v", ErrInvalidParameter, initialCapital)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	first := s.Points[0].Close
	shares := int64(math.Floor(initialCapital / first))
	leftover := initialCapital - float64(shares)*first

	last := s.Points[s.Len()-1].Close
	final := float64(shares)*last + leftover

	return &Benchmark{
		FinalValue:     final,
		TotalReturnPct: (final/initialCapital - 1) * 100,
	}, nil
}
