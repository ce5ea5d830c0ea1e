package service

import (
	"context"
	"testing"
	"time"

	"shopinventory/internal/infra"
	"shopinventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	st         *memStore
	products   *stubProductRepo
	entries    *stubLedgerRepo
	suppliers  *stubSupplierRepo
	clients    *stubClientRepo
	sales      *stubSaleRepo
	dispatcher *stubDispatcher

	// first supplier added; addProduct attaches products to it
	defaultSupplier uuid.UUID

	ledger   LedgerService
	catalog  ProductService
	selling  SaleService
	reports  ReportService
	supplier SupplierService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := newMemStore()
	f := &fixture{
		st:         st,
		products:   &stubProductRepo{st: st},
		entries:    &stubLedgerRepo{st: st},
		suppliers:  &stubSupplierRepo{st: st},
		clients:    &stubClientRepo{st: st},
		sales:      &stubSaleRepo{st: st},
		dispatcher: &stubDispatcher{},
	}
	tx := &stubTransactor{st: st}
	locks := infra.NewKeyedMutex()

	f.ledger = NewLedgerService(f.products, f.entries, tx, locks, f.dispatcher)
	f.catalog = NewProductService(f.products, f.suppliers, f.ledger, tx, locks, nil,
		ProductOptions{DefaultReorderThreshold: 5})
	f.selling = NewSaleService(f.sales, f.clients, f.products, f.entries, f.ledger, tx, locks, f.dispatcher)
	f.reports = NewReportService(f.products, f.suppliers, f.clients, f.sales, f.entries)
	f.supplier = NewSupplierService(f.suppliers)
	return f
}

func (f *fixture) addSupplier(t *testing.T, name string, active bool) model.Supplier {
	t.Helper()
	s := model.Supplier{ID: uuid.New(), Name: name, Active: active, CreatedAt: time.Now()}
	f.st.suppliers[s.ID] = s
	if f.defaultSupplier == uuid.Nil {
		f.defaultSupplier = s.ID
	}
	return s
}

// addProduct seeds a product whose quantity is backed by a purchase entry.
func (f *fixture) addProduct(t *testing.T, name string, price, cost string, qty int) model.Product {
	t.Helper()
	if f.defaultSupplier == uuid.Nil {
		f.addSupplier(t, "Default Supplier", true)
	}
	code := "SEED-" + name
	p := model.Product{
		ID:               uuid.New(),
		SKU:              &code,
		Name:             name,
		SupplierID:       f.defaultSupplier,
		SalePrice:        decimal.RequireFromString(price),
		Cost:             decimal.RequireFromString(cost),
		Quantity:         qty,
		ReorderThreshold: 1,
	}
	f.st.products[p.ID] = p
	if qty != 0 {
		f.st.entries = append(f.st.entries, model.LedgerEntry{
			ID: uuid.New(), ProductID: p.ID, Kind: model.LedgerPurchase,
			Quantity: qty, BalanceAfter: qty, UnitCost: p.Cost, OccurredAt: time.Now(),
		})
	}
	return p
}

func (f *fixture) quantity(id uuid.UUID) int { return f.st.products[id].Quantity }

// requireLedgerConsistent checks quantity == sum(ledger) for every product.
func (f *fixture) requireLedgerConsistent(t *testing.T) {
	t.Helper()
	drift, err := f.reports.LedgerDrift(context.Background())
	require.NoError(t, err)
	require.Empty(t, drift)
}

func ptr[T any](v T) *T { return &v }
