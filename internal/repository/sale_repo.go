package repository

import (
	"context"
	"time"

	"shopinventory/internal/dto"
	"shopinventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClientTotals aggregates the sales linked to one client.
type ClientTotals struct {
	ClientID      uuid.UUID
	PurchaseCount int
	TotalSpent    decimal.Decimal
}

type SaleRepository interface {
	// CreateTx inserts the sale header and its lines.
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)
	// ListBetween returns sales with from <= sold_at <= to, lines preloaded.
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Sale, error)
	TotalsByClient(ctx context.Context) ([]ClientTotals, error)
	TotalsForClient(ctx context.Context, clientID uuid.UUID) (ClientTotals, error)
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	if err := tx.Omit(clause.Associations).Create(s).Error; err != nil {
		return err
	}
	if len(s.Lines) == 0 {
		return nil
	}
	for i := range s.Lines {
		s.Lines[i].SaleID = s.ID
	}
	return tx.Omit(clause.Associations).Create(&s.Lines).Error
}

func orderedLines(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Lines", orderedLines).
		Preload("Lines.Product").
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var sales []model.Sale
	err := q.Preload("Client").
		Preload("Lines", orderedLines).
		Preload("Lines.Product").
		Order("sold_at DESC").
		Limit(filter.Limit).Offset(offset).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		Preload("Lines.Product").
		Where("sold_at >= ? AND sold_at <= ?", from, to).
		Order("sold_at ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) TotalsByClient(ctx context.Context) ([]ClientTotals, error) {
	var rows []ClientTotals
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("client_id, COUNT(*) AS purchase_count, COALESCE(SUM(total), 0) AS total_spent").
		Where("client_id IS NOT NULL").
		Group("client_id").
		Scan(&rows).Error
	return rows, err
}

func (r *saleRepo) TotalsForClient(ctx context.Context, clientID uuid.UUID) (ClientTotals, error) {
	out := ClientTotals{ClientID: clientID}
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("COUNT(*) AS purchase_count, COALESCE(SUM(total), 0) AS total_spent").
		Where("client_id = ?", clientID).
		Scan(&out).Error
	out.ClientID = clientID
	return out, err
}
