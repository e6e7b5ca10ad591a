// Package quotes resolves ticker symbols to market prices through the
// Alpha Vantage API, with a bounded in-process cache in front of it.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"portfolio-tracker/apperr"
)

const defaultBaseURL = "https://www.alphavantage.co"

// SymbolMatch is one ranked candidate from the symbol directory.
type SymbolMatch struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Source resolves symbols against an external quote provider. The provider is
// network-bound and rate-limited: every failure mode surfaces as
// apperr.ErrQuoteUnavailable and callers are expected to degrade.
type Source interface {
	FetchPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	SearchSymbols(ctx context.Context, query string) ([]SymbolMatch, error)
}

// Client is the Alpha Vantage implementation of Source.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(apiKey string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type globalQuoteResponse struct {
	GlobalQuote struct {
		Price string `json:"05. price"`
	} `json:"Global Quote"`
}

type symbolSearchResponse struct {
	BestMatches []struct {
		Symbol string `json:"1. symbol"`
		Name   string `json:"2. name"`
	} `json:"bestMatches"`
}

// FetchPrice resolves the current price via GLOBAL_QUOTE.
func (c *Client) FetchPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var result globalQuoteResponse
	if err := c.get(ctx, url.Values{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {symbol},
	}, &result); err != nil {
		return decimal.Zero, err
	}

	if result.GlobalQuote.Price == "" {
		c.log.Warn().Str("symbol", symbol).Msg("quote response carried no price")
		return decimal.Zero, apperr.ErrQuoteUnavailable
	}
	price, err := decimal.NewFromString(result.GlobalQuote.Price)
	if err != nil {
		c.log.Warn().Str("symbol", symbol).Str("price", result.GlobalQuote.Price).Msg("unparseable price")
		return decimal.Zero, apperr.ErrQuoteUnavailable
	}
	return price, nil
}

// SearchSymbols resolves a partial query via SYMBOL_SEARCH, returning at most
// ten matches in the provider's relevance order.
func (c *Client) SearchSymbols(ctx context.Context, query string) ([]SymbolMatch, error) {
	var result symbolSearchResponse
	if err := c.get(ctx, url.Values{
		"function": {"SYMBOL_SEARCH"},
		"keywords": {query},
	}, &result); err != nil {
		return nil, err
	}

	matches := make([]SymbolMatch, 0, len(result.BestMatches))
	for _, m := range result.BestMatches {
		matches = append(matches, SymbolMatch{Symbol: m.Symbol, Name: m.Name})
		if len(matches) == 10 {
			break
		}
	}
	return matches, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out interface{}) error {
	params.Set("apikey", c.apiKey)
	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return apperr.ErrQuoteUnavailable
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("quote source request failed")
		return apperr.ErrQuoteUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Msg("quote source returned non-200")
		return apperr.ErrQuoteUnavailable
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.Warn().Err(err).Msg("quote source returned malformed body")
		return apperr.ErrQuoteUnavailable
	}
	return nil
}
