// Package valuation computes the read-time portfolio snapshot: holdings
// joined with current prices plus the aggregate money metrics.
package valuation

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"portfolio-tracker/models"
)

// HoldingsLister is the slice of the holdings store the engine reads.
type HoldingsLister interface {
	List(ctx context.Context, ownerID uint) ([]models.Holding, error)
}

// Quoter resolves a symbol to a current price, typically the quote cache.
type Quoter interface {
	Get(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Position is one holding enriched with its latest price. LatestPrice is nil
// when the quote source was unavailable for the symbol; an unknown price is
// reported as absent, never conflated with a price of zero.
type Position struct {
	ID          uint             `json:"id"`
	Symbol      string           `json:"symbol"`
	Quantity    decimal.Decimal  `json:"quantity"`
	BuyPrice    decimal.Decimal  `json:"buy_price"`
	LatestPrice *decimal.Decimal `json:"latest_price"`
}

// Snapshot is derived on every read and never persisted.
type Snapshot struct {
	Holdings        []Position      `json:"holdings"`
	TotalInvestment decimal.Decimal `json:"total_investment"`
	CurrentValue    decimal.Decimal `json:"current_value"`
	UnrealizedPL    decimal.Decimal `json:"unrealized_pl"`
}

type Engine struct {
	store  HoldingsLister
	quotes Quoter
	log    zerolog.Logger
}

func NewEngine(store HoldingsLister, quotes Quoter, log zerolog.Logger) *Engine {
	return &Engine{store: store, quotes: quotes, log: log}
}

// Snapshot lists the owner's holdings and prices them. Each distinct symbol
// is looked up exactly once, concurrently; a symbol whose lookup fails
// contributes an absent price and zero current value for all of its holdings,
// never an error for the whole snapshot.
func (e *Engine) Snapshot(ctx context.Context, ownerID uint) (*Snapshot, error) {
	holdings, err := e.store.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	symbols := make(map[string]struct{}, len(holdings))
	for _, h := range holdings {
		symbols[h.Symbol] = struct{}{}
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		prices = make(map[string]decimal.Decimal, len(symbols))
	)
	for symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			price, err := e.quotes.Get(ctx, symbol)
			if err != nil {
				e.log.Warn().Str("symbol", symbol).Msg("no price available, degrading to absent")
				return
			}
			mu.Lock()
			prices[symbol] = price
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	snap := &Snapshot{Holdings: make([]Position, 0, len(holdings))}
	for _, h := range holdings {
		pos := Position{
			ID:       h.ID,
			Symbol:   h.Symbol,
			Quantity: h.Quantity,
			BuyPrice: h.BuyPrice,
		}
		snap.TotalInvestment = snap.TotalInvestment.Add(h.BuyPrice.Mul(h.Quantity))
		if price, ok := prices[h.Symbol]; ok {
			p := price
			pos.LatestPrice = &p
			snap.CurrentValue = snap.CurrentValue.Add(price.Mul(h.Quantity))
		}
		snap.Holdings = append(snap.Holdings, pos)
	}
	// Aggregation runs at full precision; only the presented totals round.
	snap.TotalInvestment = snap.TotalInvestment.Round(2)
	snap.CurrentValue = snap.CurrentValue.Round(2)
	snap.UnrealizedPL = snap.CurrentValue.Sub(snap.TotalInvestment)
	return snap, nil
}
