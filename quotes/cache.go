package quotes

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"portfolio-tracker/apperr"
)

type entry struct {
	price     decimal.Decimal
	fetchedAt time.Time
}

// Cache sits in front of a Source and bounds both external call volume and
// memory. Entries inside the freshness window are returned as-is; stale or
// missing entries go through a per-symbol single flight to the source. When
// the source fails, a stale entry is served degraded rather than failing the
// read; a cold miss propagates apperr.ErrQuoteUnavailable.
type Cache struct {
	source    Source
	freshness time.Duration
	entries   *lru.Cache[string, entry]
	group     singleflight.Group
	log       zerolog.Logger

	now func() time.Time // test hook
}

func NewCache(source Source, freshness time.Duration, maxEntries int, log zerolog.Logger) (*Cache, error) {
	entries, err := lru.New[string, entry](maxEntries)
	if err != nil {
		return nil, err
	}
	return &Cache{
		source:    source,
		freshness: freshness,
		entries:   entries,
		log:       log,
		now:       time.Now,
	}, nil
}

// Get returns the current price for symbol.
func (c *Cache) Get(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if e, ok := c.entries.Get(symbol); ok && c.now().Sub(e.fetchedAt) < c.freshness {
		return e.price, nil
	}

	// Late arrivals share the in-flight fetch instead of hitting the source
	// again for the same symbol.
	v, err, _ := c.group.Do(symbol, func() (interface{}, error) {
		price, err := c.source.FetchPrice(ctx, symbol)
		if err != nil {
			// One immediate retry; the timeout budget is short enough.
			price, err = c.source.FetchPrice(ctx, symbol)
		}
		if err != nil {
			return decimal.Zero, err
		}
		c.entries.Add(symbol, entry{price: price, fetchedAt: c.now()})
		return price, nil
	})
	if err == nil {
		return v.(decimal.Decimal), nil
	}

	// Refresh failed. A stale entry is still better than nothing; it stays
	// stale so the next read retries the source.
	if e, ok := c.entries.Get(symbol); ok {
		c.log.Warn().Str("symbol", symbol).Time("fetched_at", e.fetchedAt).
			Msg("quote refresh failed, serving stale price")
		return e.price, nil
	}
	return decimal.Zero, apperr.ErrQuoteUnavailable
}
