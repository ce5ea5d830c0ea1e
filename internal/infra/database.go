package infra

import (
	"fmt"

	"shopinventory/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx and configures the pool.
// Schema management is a separate step, see RunMigrations.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		// Foreign keys are created by applySchemaPatches so their ON DELETE rules are explicit.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// RunMigrations creates or updates every table and then applies the schema patches.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Supplier{},
		&model.Client{},
		&model.FieldOption{},
		&model.Product{},
		&model.Sale{},
		&model.SaleLine{},
		&model.LedgerEntry{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express:
// expression indexes, explicit FK delete rules and check constraints.
//
// Ledger entries and sale lines intentionally carry no FK to products so a
// product can be hard-deleted without losing its history.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"unique supplier name (case-insensitive)",
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_suppliers_name_lower ON suppliers (lower(name))`},
		{"unique field option per type (case-insensitive)",
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_field_options_type_value_lower ON field_options (type, lower(value))`},
		{"sku prefix scans", `CREATE INDEX IF NOT EXISTS idx_products_sku_pattern ON products (sku text_pattern_ops)`},
		{"fk products.supplier_id", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_products_supplier') THEN
    ALTER TABLE products
      ADD CONSTRAINT fk_products_supplier
      FOREIGN KEY (supplier_id) REFERENCES suppliers(id) ON DELETE RESTRICT;
  END IF;
END $$`},
		{"fk sale_lines.sale_id cascade", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_sale_lines_sale') THEN
    ALTER TABLE sale_lines
      ADD CONSTRAINT fk_sale_lines_sale
      FOREIGN KEY (sale_id) REFERENCES sales(id) ON DELETE CASCADE;
  END IF;
END $$`},
		{"fk sales.client_id set null", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_sales_client') THEN
    ALTER TABLE sales
      ADD CONSTRAINT fk_sales_client
      FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE SET NULL;
  END IF;
END $$`},
		{"fk ledger_entries.sale_id", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_ledger_entries_sale') THEN
    ALTER TABLE ledger_entries
      ADD CONSTRAINT fk_ledger_entries_sale
      FOREIGN KEY (sale_id) REFERENCES sales(id) ON DELETE SET NULL;
  END IF;
END $$`},
		{"check sale_lines.quantity > 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_sale_lines_quantity') THEN
    ALTER TABLE sale_lines ADD CONSTRAINT chk_sale_lines_quantity CHECK (quantity > 0);
  END IF;
END $$`},
		{"check ledger_entries.kind", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_ledger_entries_kind') THEN
    ALTER TABLE ledger_entries ADD CONSTRAINT chk_ledger_entries_kind
      CHECK (kind IN ('purchase', 'sale', 'return', 'adjustment'));
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
