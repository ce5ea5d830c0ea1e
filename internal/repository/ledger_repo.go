package repository

import (
	"context"

	"shopinventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerFilter defines filters for listing ledger entries.
type LedgerFilter struct {
	ProductID *uuid.UUID
	Kind      string
	Page      int
	Limit     int
}

// LedgerRepository is insert-only: entries are never updated or deleted.
type LedgerRepository interface {
	CreateTx(tx *gorm.DB, e *model.LedgerEntry) error
	List(ctx context.Context, filter LedgerFilter) ([]model.LedgerEntry, int64, error)
	ListBySaleID(ctx context.Context, saleID uuid.UUID) ([]model.LedgerEntry, error)
	// BalancesByProduct returns the signed sum of entries per product.
	BalancesByProduct(ctx context.Context) (map[uuid.UUID]int, error)
}

type ledgerRepo struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db: db}
}

func (r *ledgerRepo) CreateTx(tx *gorm.DB, e *model.LedgerEntry) error {
	return tx.Omit("Product").Create(e).Error
}

func (r *ledgerRepo) List(ctx context.Context, filter LedgerFilter) ([]model.LedgerEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.LedgerEntry{})
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var entries []model.LedgerEntry
	err := q.Preload("Product").Order("occurred_at DESC, created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, total, err
}

func (r *ledgerRepo) ListBySaleID(ctx context.Context, saleID uuid.UUID) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Order("created_at ASC").Find(&entries).Error
	return entries, err
}

func (r *ledgerRepo) BalancesByProduct(ctx context.Context) (map[uuid.UUID]int, error) {
	var rows []struct {
		ProductID uuid.UUID
		Balance   int
	}
	err := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Select("product_id, COALESCE(SUM(quantity), 0) AS balance").
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		out[row.ProductID] = row.Balance
	}
	return out, nil
}
