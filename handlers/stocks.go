package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"portfolio-tracker/quotes"
)

// SymbolSearcher resolves partial queries to ranked ticker candidates.
type SymbolSearcher interface {
	Search(ctx context.Context, query string) ([]quotes.SymbolMatch, error)
}

type StocksHandler struct {
	search SymbolSearcher
	log    zerolog.Logger
}

func NewStocksHandler(search SymbolSearcher, log zerolog.Logger) *StocksHandler {
	return &StocksHandler{search: search, log: log}
}

// Search never errors on an empty result: an unknown query and a degraded
// source both return an empty list.
func (h *StocksHandler) Search(c *gin.Context) {
	matches, err := h.search.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}
