package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs fn inside a single database transaction. The tx handle is
// passed to the *Tx repository methods; returning an error rolls everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct{ db *gorm.DB }

func NewTransactor(db *gorm.DB) Transactor { return &gormTransactor{db: db} }

func (t *gormTransactor) WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}
