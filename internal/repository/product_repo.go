package repository

import (
	"context"
	"strings"

	"shopinventory/internal/dto"
	"shopinventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	ListAll(ctx context.Context) ([]model.Product, error)
	ListLowStock(ctx context.Context) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	DistinctValues(ctx context.Context, column string) ([]string, error)

	// Used inside transactions, callers must pass the tx instance
	CreateTx(tx *gorm.DB, p *model.Product) error
	LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error
	SKUsWithPrefixTx(tx *gorm.DB, prefix string) ([]string, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

// updatableColumns excludes quantity: stock only moves through UpdateStockTx.
var updatableColumns = []string{
	"name", "gender", "size", "color_print", "supplier_id",
	"cost", "sale_price", "reorder_threshold", "purchase_date", "updated_at",
}

// distinctColumns whitelists the columns DistinctValues may read.
var distinctColumns = map[string]bool{"gender": true, "size": true, "color_print": true}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Supplier").First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Supplier").Where("sku = ?", sku).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.Query != "" {
		like := "%" + escapeLike(filter.Query) + "%"
		q = q.Where(`name ILIKE ? ESCAPE '\' OR sku ILIKE ? ESCAPE '\'`, like, like)
	}
	if filter.SupplierID != "" {
		q = q.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.LowStock {
		q = q.Where("quantity <= reorder_threshold")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Supplier").Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) ListAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) ListLowStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Preload("Supplier").
		Where("quantity <= reorder_threshold").
		Order("quantity ASC, name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Model(p).Select(updatableColumns).Updates(p).Error
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) DistinctValues(ctx context.Context, column string) ([]string, error) {
	if !distinctColumns[column] {
		return nil, gorm.ErrInvalidField
	}
	var values []string
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where(column+" <> ''").
		Distinct(column).
		Order(column+" ASC").
		Pluck(column, &values).Error
	return values, err
}

func (r *productRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Omit(clause.Associations).Create(p).Error
}

// LockByIDTx reads the product with SELECT ... FOR UPDATE so concurrent stock
// writers queue behind the current transaction.
func (r *productRepo) LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error
}

func (r *productRepo) SKUsWithPrefixTx(tx *gorm.DB, prefix string) ([]string, error) {
	var skus []string
	err := tx.Model(&model.Product{}).
		Where(`sku LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").
		Pluck("sku", &skus).Error
	return skus, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
