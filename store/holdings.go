// Package store provides the gorm-backed repositories for users and holdings.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"portfolio-tracker/apperr"
	"portfolio-tracker/models"
)

// HoldingsStore owns the per-user holdings collection. Every operation is
// owner-scoped; a holding is never visible to another user.
type HoldingsStore struct {
	db *gorm.DB
}

func NewHoldingsStore(db *gorm.DB) *HoldingsStore {
	return &HoldingsStore{db: db}
}

// NormalizeSymbol uppercases and trims a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Add validates and stores a new holding and journals the buy transaction.
func (s *HoldingsStore) Add(ctx context.Context, ownerID uint, symbol string, quantity, buyPrice decimal.Decimal) (*models.Holding, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, apperr.Validation("symbol must not be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.Validation("quantity must be positive")
	}
	if buyPrice.IsNegative() {
		return nil, apperr.Validation("buy price must not be negative")
	}

	holding := models.Holding{
		UserID:   ownerID,
		Symbol:   symbol,
		Quantity: quantity,
		BuyPrice: buyPrice,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&holding).Error; err != nil {
			return err
		}
		journal := models.Transaction{
			UserID:   ownerID,
			Type:     "buy",
			Symbol:   symbol,
			Quantity: quantity,
			Price:    buyPrice,
		}
		return tx.Create(&journal).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create holding: %w", err)
	}
	return &holding, nil
}

// List returns the owner's holdings in insertion order.
func (s *HoldingsStore) List(ctx context.Context, ownerID uint) ([]models.Holding, error) {
	var holdings []models.Holding
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("id asc").
		Find(&holdings).Error
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	return holdings, nil
}

// Remove deletes a holding owned by ownerID and journals the sell. A holding
// owned by someone else, or already removed, is a not-found.
func (s *HoldingsStore) Remove(ctx context.Context, ownerID, id uint) error {
	var holding models.Holding
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("holding %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("find holding: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&holding).Error; err != nil {
			return err
		}
		journal := models.Transaction{
			UserID:   ownerID,
			Type:     "sell",
			Symbol:   holding.Symbol,
			Quantity: holding.Quantity,
			Price:    holding.BuyPrice,
		}
		return tx.Create(&journal).Error
	})
	if err != nil {
		return fmt.Errorf("delete holding: %w", err)
	}
	return nil
}
