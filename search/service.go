// Package search resolves partial user queries to ranked ticker candidates.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"portfolio-tracker/quotes"
)

// QueryCache holds recent search results keyed by normalized query.
type QueryCache interface {
	Get(ctx context.Context, query string) ([]quotes.SymbolMatch, bool)
	Set(ctx context.Context, query string, matches []quotes.SymbolMatch)
}

// Service guards and caches symbol directory lookups. A source failure
// degrades to an empty result set; search never fails the UI.
type Service struct {
	source quotes.Source
	cache  QueryCache
	log    zerolog.Logger
}

func NewService(source quotes.Source, cache QueryCache, log zerolog.Logger) *Service {
	return &Service{source: source, cache: cache, log: log}
}

// Search returns ranked candidates for query. Empty and whitespace-only
// queries return an empty slice without touching the external source.
func (s *Service) Search(ctx context.Context, query string) ([]quotes.SymbolMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []quotes.SymbolMatch{}, nil
	}
	query = strings.ToUpper(query)

	if s.cache != nil {
		if matches, ok := s.cache.Get(ctx, query); ok {
			return matches, nil
		}
	}

	matches, err := s.source.SearchSymbols(ctx, query)
	if err != nil {
		s.log.Warn().Err(err).Str("query", query).Msg("symbol search degraded to empty")
		return []quotes.SymbolMatch{}, nil
	}
	if matches == nil {
		matches = []quotes.SymbolMatch{}
	}
	if s.cache != nil {
		s.cache.Set(ctx, query, matches)
	}
	return matches, nil
}

// RedisQueryCache backs QueryCache with redis, TTL-bounded.
type RedisQueryCache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

func NewRedisQueryCache(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisQueryCache {
	return &RedisQueryCache{rdb: rdb, ttl: ttl, log: log}
}

func (c *RedisQueryCache) key(query string) string {
	return "search:" + query
}

func (c *RedisQueryCache) Get(ctx context.Context, query string) ([]quotes.SymbolMatch, bool) {
	raw, err := c.rdb.Get(ctx, c.key(query)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Msg("search cache read failed")
		}
		return nil, false
	}
	var matches []quotes.SymbolMatch
	if err := json.Unmarshal([]byte(raw), &matches); err != nil {
		return nil, false
	}
	return matches, true
}

func (c *RedisQueryCache) Set(ctx context.Context, query string, matches []quotes.SymbolMatch) {
	raw, err := json.Marshal(matches)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(query), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("search cache write failed")
	}
}
