package repository

import (
	"context"

	"shopinventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FieldOptionRepository interface {
	Create(ctx context.Context, o *model.FieldOption) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FieldOption, error)
	FindByValue(ctx context.Context, t model.FieldOptionType, value string) (*model.FieldOption, error)
	// List orders active options first, then by value.
	List(ctx context.Context, t model.FieldOptionType, includeInactive bool) ([]model.FieldOption, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type fieldOptionRepo struct{ db *gorm.DB }

func NewFieldOptionRepository(db *gorm.DB) FieldOptionRepository { return &fieldOptionRepo{db: db} }

func (r *fieldOptionRepo) Create(ctx context.Context, o *model.FieldOption) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *fieldOptionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.FieldOption, error) {
	var o model.FieldOption
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *fieldOptionRepo) FindByValue(ctx context.Context, t model.FieldOptionType, value string) (*model.FieldOption, error) {
	var o model.FieldOption
	err := r.db.WithContext(ctx).
		Where("type = ? AND lower(value) = lower(?)", t, value).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *fieldOptionRepo) List(ctx context.Context, t model.FieldOptionType, includeInactive bool) ([]model.FieldOption, error) {
	var list []model.FieldOption
	q := r.db.WithContext(ctx).Where("type = ?", t)
	if !includeInactive {
		q = q.Where("active = true")
	}
	err := q.Order("active DESC, value ASC").Find(&list).Error
	return list, err
}

func (r *fieldOptionRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).Model(&model.FieldOption{}).Where("id = ?", id).Update("active", active).Error
}
