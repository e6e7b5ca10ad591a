package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"portfolio-tracker/apperr"
	"portfolio-tracker/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Holding{}, &models.Transaction{}))
	return db
}

func TestAddNormalizesAndLists(t *testing.T) {
	s := NewHoldingsStore(newTestDB(t))
	ctx := context.Background()

	created, err := s.Add(ctx, 1, "  aapl ", decimal.NewFromInt(2), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, "AAPL", created.Symbol)

	holdings, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.True(t, holdings[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, holdings[0].BuyPrice.Equal(decimal.NewFromInt(100)))
}

func TestAddValidation(t *testing.T) {
	s := NewHoldingsStore(newTestDB(t))
	ctx := context.Background()

	cases := []struct {
		name     string
		symbol   string
		quantity decimal.Decimal
		buyPrice decimal.Decimal
	}{
		{"empty symbol", "   ", decimal.NewFromInt(1), decimal.NewFromInt(1)},
		{"zero quantity", "AAPL", decimal.Zero, decimal.NewFromInt(1)},
		{"negative quantity", "AAPL", decimal.NewFromInt(-1), decimal.NewFromInt(1)},
		{"negative buy price", "AAPL", decimal.NewFromInt(1), decimal.NewFromInt(-1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Add(ctx, 1, tc.symbol, tc.quantity, tc.buyPrice)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}

	// Zero buy price is allowed (free shares exist).
	_, err := s.Add(ctx, 1, "AAPL", decimal.NewFromInt(1), decimal.Zero)
	assert.NoError(t, err)
}

func TestListInsertionOrderAndOwnerScope(t *testing.T) {
	s := NewHoldingsStore(newTestDB(t))
	ctx := context.Background()

	_, err := s.Add(ctx, 1, "MSFT", decimal.NewFromInt(1), decimal.NewFromInt(300))
	require.NoError(t, err)
	_, err = s.Add(ctx, 1, "AAPL", decimal.NewFromInt(2), decimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = s.Add(ctx, 2, "GOOG", decimal.NewFromInt(1), decimal.NewFromInt(150))
	require.NoError(t, err)

	holdings, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, "MSFT", holdings[0].Symbol)
	assert.Equal(t, "AAPL", holdings[1].Symbol)

	other, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "GOOG", other[0].Symbol)
}

func TestRemoveIsOwnerScoped(t *testing.T) {
	s := NewHoldingsStore(newTestDB(t))
	ctx := context.Background()

	created, err := s.Add(ctx, 1, "AAPL", decimal.NewFromInt(2), decimal.NewFromInt(100))
	require.NoError(t, err)

	// Another user cannot delete it.
	err = s.Remove(ctx, 2, created.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, s.Remove(ctx, 1, created.ID))

	holdings, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, holdings)

	// A second remove is a not-found, not a no-op.
	err = s.Remove(ctx, 1, created.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestAddAndRemoveJournalTransactions(t *testing.T) {
	db := newTestDB(t)
	s := NewHoldingsStore(db)
	ctx := context.Background()

	created, err := s.Add(ctx, 1, "AAPL", decimal.NewFromInt(2), decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, 1, created.ID))

	var journal []models.Transaction
	require.NoError(t, db.Order("id asc").Find(&journal).Error)
	require.Len(t, journal, 2)
	assert.Equal(t, "buy", journal[0].Type)
	assert.Equal(t, "sell", journal[1].Type)
	assert.Equal(t, "AAPL", journal[1].Symbol)
}
