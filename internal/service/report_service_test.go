package service

import (
	"context"
	"testing"
	"time"

	"shopinventory/internal/apierror"
	"shopinventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) addSale(t *testing.T, at time.Time, clientID *uuid.UUID, lines ...model.SaleLine) model.Sale {
	t.Helper()
	s := model.Sale{ID: uuid.New(), SoldAt: at, ClientID: clientID, Total: decimal.Zero}
	for i := range lines {
		lines[i].ID = uuid.New()
		lines[i].SaleID = s.ID
		lines[i].Position = i + 1
		s.Total = s.Total.Add(lines[i].Subtotal())
	}
	s.Lines = lines
	f.st.sales[s.ID] = s
	return s
}

func TestInventoryValuation(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "4.00", "2", 3)
	f.addProduct(t, "B", "9.00", "5", 1)

	v, err := f.reports.InventoryValuation(context.Background())
	require.NoError(t, err)
	assert.True(t, dec("11.00").Equal(v.TotalCostValue))
	assert.True(t, dec("21.00").Equal(v.TotalRetailValue))
	assert.Equal(t, 4, v.TotalQuantity)
	assert.Equal(t, 2, v.TotalSKUs)
}

func TestSalesSummary_TotalsAndProfit(t *testing.T) {
	f := newFixture(t)
	rs := f.reports.(*reportService)
	rs.now = func() time.Time { return time.Date(2026, 3, 31, 15, 0, 0, 0, time.UTC) }

	a := f.addProduct(t, "Alpha", "10.00", "6.00", 50)
	b := f.addProduct(t, "Beta", "5.00", "3.00", 50)

	f.addSale(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), nil,
		model.SaleLine{ProductID: a.ID, Quantity: 2, UnitPrice: dec("10.00"), UnitCost: dec("6.00")})
	f.addSale(t, time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC), nil,
		model.SaleLine{ProductID: a.ID, Quantity: 2, UnitPrice: dec("10.00"), UnitCost: dec("6.00")},
		model.SaleLine{ProductID: b.ID, Quantity: 2, UnitPrice: dec("5.00"), UnitCost: dec("3.00")})
	// outside the default window
	f.addSale(t, time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC), nil,
		model.SaleLine{ProductID: b.ID, Quantity: 9, UnitPrice: dec("5.00"), UnitCost: dec("3.00")})

	sum, err := f.reports.SalesSummary(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", sum.Start)
	assert.Equal(t, "2026-03-31", sum.End)
	assert.Equal(t, 2, sum.NumberOfSales)
	assert.True(t, dec("50.00").Equal(sum.TotalRevenue))
	assert.True(t, dec("30.00").Equal(sum.TotalCOGS))
	assert.True(t, dec("20.00").Equal(sum.GrossProfit))

	require.Len(t, sum.TopProducts, 2)
	assert.Equal(t, "Alpha", sum.TopProducts[0].Name)
	assert.Equal(t, 4, sum.TopProducts[0].QuantitySold)
	assert.True(t, dec("40.00").Equal(sum.TopProducts[0].Revenue))

	sum, err = f.reports.SalesSummary(context.Background(), "2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.NumberOfSales)
}

func TestSalesSummary_RejectsBadRanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.reports.SalesSummary(ctx, "2026/01/01", "")
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))

	_, err = f.reports.SalesSummary(ctx, "", "tomorrow")
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))

	_, err = f.reports.SalesSummary(ctx, "2026-02-01", "2026-01-01")
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestSupplierAndClientSummaries(t *testing.T) {
	f := newFixture(t)
	acme := f.addSupplier(t, "Acme", true)
	f.addSupplier(t, "Bolt", false)
	f.addProduct(t, "A", "4.00", "2.00", 3)
	f.addProduct(t, "B", "9.00", "5.00", 1)

	suppliers, err := f.reports.SupplierSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, suppliers, 2)
	assert.Equal(t, acme.ID.String(), suppliers[0].SupplierID)
	assert.Equal(t, 2, suppliers[0].ProductCount)
	assert.Equal(t, 4, suppliers[0].TotalQuantity)
	assert.True(t, dec("11").Equal(suppliers[0].StockCostValue))
	assert.Equal(t, 0, suppliers[1].ProductCount)

	big := model.Client{ID: uuid.New(), Name: "Zoe"}
	small := model.Client{ID: uuid.New(), Name: "Ana"}
	idle := model.Client{ID: uuid.New(), Name: "Aaron"}
	for _, c := range []model.Client{big, small, idle} {
		f.st.clients[c.ID] = c
	}
	pid := uuid.New()
	f.addSale(t, time.Now(), &big.ID, model.SaleLine{ProductID: pid, Quantity: 3, UnitPrice: dec("10")})
	f.addSale(t, time.Now(), &small.ID, model.SaleLine{ProductID: pid, Quantity: 1, UnitPrice: dec("10")})
	f.addSale(t, time.Now(), &small.ID, model.SaleLine{ProductID: pid, Quantity: 1, UnitPrice: dec("5")})

	clients, err := f.reports.ClientSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 3)
	assert.Equal(t, "Zoe", clients[0].Name)
	assert.Equal(t, "Ana", clients[1].Name)
	assert.Equal(t, 2, clients[1].PurchaseCount)
	assert.True(t, dec("15").Equal(clients[1].TotalSpent))
	assert.Equal(t, "Aaron", clients[2].Name)
	assert.Equal(t, 0, clients[2].PurchaseCount)
}

func TestOverviewRoundsLikeValuation(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "1.115", "0.335", 3)

	o, err := f.reports.Overview(context.Background())
	require.NoError(t, err)
	v, err := f.reports.InventoryValuation(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1.01", o.TotalCostValue.String())
	assert.Equal(t, "3.35", o.TotalRetailValue.String())
	assert.True(t, v.TotalCostValue.Equal(o.TotalCostValue))
	assert.True(t, v.TotalRetailValue.Equal(o.TotalRetailValue))
}

func TestOverviewLowStockAndDrift(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "4.00", "2.00", 1) // threshold 1: low
	b := f.addProduct(t, "B", "9.00", "5.00", 6)

	o, err := f.reports.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, o.TotalProducts)
	assert.Equal(t, 1, o.LowStockCount)
	assert.True(t, dec("32").Equal(o.TotalCostValue))

	low, err := f.reports.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "A", low[0].Name)

	// simulate a write that bypassed the ledger
	row := f.st.products[b.ID]
	row.Quantity = 9
	f.st.products[b.ID] = row

	drift, err := f.reports.LedgerDrift(context.Background())
	require.NoError(t, err)
	require.Len(t, drift, 1)
	assert.Equal(t, 9, drift[0].Quantity)
	assert.Equal(t, 6, drift[0].LedgerSum)
}
