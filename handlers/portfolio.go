package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"portfolio-tracker/apperr"
	"portfolio-tracker/middleware"
	"portfolio-tracker/models"
	"portfolio-tracker/valuation"
)

// HoldingsStore is the slice of the holdings repository the handlers need.
type HoldingsStore interface {
	Add(ctx context.Context, ownerID uint, symbol string, quantity, buyPrice decimal.Decimal) (*models.Holding, error)
	Remove(ctx context.Context, ownerID, id uint) error
}

// Valuer computes the read-time snapshot.
type Valuer interface {
	Snapshot(ctx context.Context, ownerID uint) (*valuation.Snapshot, error)
}

type PortfolioHandler struct {
	holdings HoldingsStore
	engine   Valuer
	log      zerolog.Logger
}

func NewPortfolioHandler(holdings HoldingsStore, engine Valuer, log zerolog.Logger) *PortfolioHandler {
	return &PortfolioHandler{holdings: holdings, engine: engine, log: log}
}

type AddHoldingInput struct {
	Symbol   string          `json:"symbol" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	BuyPrice decimal.Decimal `json:"buy_price"`
}

// Get returns the valued snapshot. A degraded quote lookup shows up as a null
// latest_price, never as a failed request.
func (h *PortfolioHandler) Get(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)

	snap, err := h.engine.Snapshot(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("snapshot failed")
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *PortfolioHandler) Add(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)

	var input AddHoldingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		writeError(c, apperr.Validation("%s", err.Error()))
		return
	}

	holding, err := h.holdings.Add(c.Request.Context(), userID, input.Symbol, input.Quantity, input.BuyPrice)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, holding)
}

func (h *PortfolioHandler) Delete(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		writeError(c, apperr.Validation("invalid holding id"))
		return
	}

	if err := h.holdings.Remove(c.Request.Context(), userID, uint(id)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
