package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"shopinventory/internal/apierror"
	"shopinventory/internal/dto"
	"shopinventory/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultSummaryDays = 30
	topProductsLimit   = 10
)

// ReportService is read-only. Aggregations run in memory over repository reads.
type ReportService interface {
	StockLevels(ctx context.Context) ([]dto.StockLevel, error)
	InventoryValuation(ctx context.Context) (*dto.InventoryValuation, error)
	LowStock(ctx context.Context) ([]dto.ProductResponse, error)
	// SalesSummary takes YYYY-MM-DD bounds; empty values default to the trailing 30 days.
	SalesSummary(ctx context.Context, start, end string) (*dto.SalesSummary, error)
	SupplierSummary(ctx context.Context) ([]dto.SupplierSummary, error)
	ClientSummary(ctx context.Context) ([]dto.ClientSummary, error)
	Overview(ctx context.Context) (*dto.Overview, error)
	// LedgerDrift lists products whose quantity differs from their ledger sum.
	LedgerDrift(ctx context.Context) ([]dto.LedgerDrift, error)
}

type reportService struct {
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	clients   repository.ClientRepository
	sales     repository.SaleRepository
	entries   repository.LedgerRepository
	now       func() time.Time
}

func NewReportService(
	products repository.ProductRepository,
	suppliers repository.SupplierRepository,
	clients repository.ClientRepository,
	sales repository.SaleRepository,
	entries repository.LedgerRepository,
) ReportService {
	return &reportService{
		products:  products,
		suppliers: suppliers,
		clients:   clients,
		sales:     sales,
		entries:   entries,
		now:       time.Now,
	}
}

func (s *reportService) StockLevels(ctx context.Context) ([]dto.StockLevel, error) {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, apierror.Internal("list products", err)
	}
	out := make([]dto.StockLevel, len(products))
	for i := range products {
		p := &products[i]
		out[i] = dto.StockLevel{
			ProductID:        p.ID.String(),
			SKU:              p.SKU,
			Name:             p.Name,
			Quantity:         p.Quantity,
			ReorderThreshold: p.ReorderThreshold,
			LowStock:         p.IsLowStock(),
		}
	}
	return out, nil
}

func (s *reportService) InventoryValuation(ctx context.Context) (*dto.InventoryValuation, error) {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, apierror.Internal("list products", err)
	}
	v := &dto.InventoryValuation{
		TotalSKUs:        len(products),
		TotalCostValue:   decimal.Zero,
		TotalRetailValue: decimal.Zero,
	}
	for i := range products {
		p := &products[i]
		v.TotalQuantity += p.Quantity
		v.TotalCostValue = v.TotalCostValue.Add(p.CostValue())
		v.TotalRetailValue = v.TotalRetailValue.Add(p.RetailValue())
	}
	v.TotalCostValue = v.TotalCostValue.Round(2)
	v.TotalRetailValue = v.TotalRetailValue.Round(2)
	return v, nil
}

func (s *reportService) LowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.products.ListLowStock(ctx)
	if err != nil {
		return nil, apierror.Internal("list low stock", err)
	}
	out := make([]dto.ProductResponse, len(products))
	for i := range products {
		out[i] = productToResponse(&products[i])
	}
	return out, nil
}

func (s *reportService) SalesSummary(ctx context.Context, start, end string) (*dto.SalesSummary, error) {
	from, to, err := s.summaryRange(strings.TrimSpace(start), strings.TrimSpace(end))
	if err != nil {
		return nil, err
	}

	sales, err := s.sales.ListBetween(ctx, from, to.Add(24*time.Hour-time.Nanosecond))
	if err != nil {
		return nil, apierror.Internal("list sales", err)
	}

	summary := &dto.SalesSummary{
		Start:         from.Format(dateLayout),
		End:           to.Format(dateLayout),
		NumberOfSales: len(sales),
		TotalRevenue:  decimal.Zero,
		TotalCOGS:     decimal.Zero,
		TopProducts:   []dto.TopProduct{},
	}

	byProduct := make(map[uuid.UUID]*dto.TopProduct)
	for i := range sales {
		sale := &sales[i]
		summary.TotalRevenue = summary.TotalRevenue.Add(sale.Total)
		summary.TotalCOGS = summary.TotalCOGS.Add(sale.Cost())

		for j := range sale.Lines {
			line := &sale.Lines[j]
			tp, ok := byProduct[line.ProductID]
			if !ok {
				tp = &dto.TopProduct{ProductID: line.ProductID.String(), Name: "(deleted product)", Revenue: decimal.Zero}
				if line.Product != nil {
					tp.Name = line.Product.Name
					tp.SKU = line.Product.SKU
				}
				byProduct[line.ProductID] = tp
			}
			tp.QuantitySold += line.Quantity
			tp.Revenue = tp.Revenue.Add(line.Subtotal())
		}
	}
	summary.GrossProfit = summary.TotalRevenue.Sub(summary.TotalCOGS)

	for _, tp := range byProduct {
		summary.TopProducts = append(summary.TopProducts, *tp)
	}
	sort.Slice(summary.TopProducts, func(i, j int) bool {
		a, b := summary.TopProducts[i], summary.TopProducts[j]
		if a.QuantitySold != b.QuantitySold {
			return a.QuantitySold > b.QuantitySold
		}
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		return a.Name < b.Name
	})
	if len(summary.TopProducts) > topProductsLimit {
		summary.TopProducts = summary.TopProducts[:topProductsLimit]
	}
	return summary, nil
}

// summaryRange resolves the inclusive day range. Unlike sale timestamps,
// malformed dates here are rejected.
func (s *reportService) summaryRange(start, end string) (time.Time, time.Time, error) {
	now := s.now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if end != "" {
		t, err := time.Parse(dateLayout, end)
		if err != nil {
			return time.Time{}, time.Time{}, apierror.Validation("Invalid end_date %q, use YYYY-MM-DD", end)
		}
		to = t
	}
	from := to.AddDate(0, 0, -defaultSummaryDays)
	if start != "" {
		t, err := time.Parse(dateLayout, start)
		if err != nil {
			return time.Time{}, time.Time{}, apierror.Validation("Invalid start_date %q, use YYYY-MM-DD", start)
		}
		from = t
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, apierror.Validation("start_date must not be after end_date")
	}
	return from, to, nil
}

func (s *reportService) SupplierSummary(ctx context.Context) ([]dto.SupplierSummary, error) {
	suppliers, err := s.suppliers.List(ctx, true)
	if err != nil {
		return nil, apierror.Internal("list suppliers", err)
	}
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, apierror.Internal("list products", err)
	}

	index := make(map[uuid.UUID]int, len(suppliers))
	out := make([]dto.SupplierSummary, len(suppliers))
	for i := range suppliers {
		index[suppliers[i].ID] = i
		out[i] = dto.SupplierSummary{
			SupplierID:       suppliers[i].ID.String(),
			Name:             suppliers[i].Name,
			Active:           suppliers[i].Active,
			StockCostValue:   decimal.Zero,
			StockRetailValue: decimal.Zero,
		}
	}
	for i := range products {
		p := &products[i]
		idx, ok := index[p.SupplierID]
		if !ok {
			continue
		}
		row := &out[idx]
		row.ProductCount++
		row.TotalQuantity += p.Quantity
		row.StockCostValue = row.StockCostValue.Add(p.CostValue())
		row.StockRetailValue = row.StockRetailValue.Add(p.RetailValue())
	}
	return out, nil
}

func (s *reportService) ClientSummary(ctx context.Context) ([]dto.ClientSummary, error) {
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, apierror.Internal("list clients", err)
	}
	totals, err := s.sales.TotalsByClient(ctx)
	if err != nil {
		return nil, apierror.Internal("client totals", err)
	}
	byClient := make(map[uuid.UUID]repository.ClientTotals, len(totals))
	for _, t := range totals {
		byClient[t.ClientID] = t
	}

	out := make([]dto.ClientSummary, len(clients))
	for i := range clients {
		row := dto.ClientSummary{
			ClientID:   clients[i].ID.String(),
			Name:       clients[i].Name,
			TotalSpent: decimal.Zero,
		}
		if t, ok := byClient[clients[i].ID]; ok {
			row.PurchaseCount = t.PurchaseCount
			row.TotalSpent = t.TotalSpent
		}
		out[i] = row
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.PurchaseCount == 0) != (b.PurchaseCount == 0) {
			return b.PurchaseCount == 0
		}
		if !a.TotalSpent.Equal(b.TotalSpent) {
			return a.TotalSpent.GreaterThan(b.TotalSpent)
		}
		return a.Name < b.Name
	})
	return out, nil
}

func (s *reportService) Overview(ctx context.Context) (*dto.Overview, error) {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, apierror.Internal("list products", err)
	}
	o := &dto.Overview{
		TotalProducts:    len(products),
		TotalCostValue:   decimal.Zero,
		TotalRetailValue: decimal.Zero,
	}
	for i := range products {
		p := &products[i]
		o.TotalCostValue = o.TotalCostValue.Add(p.CostValue())
		o.TotalRetailValue = o.TotalRetailValue.Add(p.RetailValue())
		if p.IsLowStock() {
			o.LowStockCount++
		}
	}
	o.TotalCostValue = o.TotalCostValue.Round(2)
	o.TotalRetailValue = o.TotalRetailValue.Round(2)
	return o, nil
}

func (s *reportService) LedgerDrift(ctx context.Context) ([]dto.LedgerDrift, error) {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, apierror.Internal("list products", err)
	}
	balances, err := s.entries.BalancesByProduct(ctx)
	if err != nil {
		return nil, apierror.Internal("ledger balances", err)
	}
	out := []dto.LedgerDrift{}
	for i := range products {
		p := &products[i]
		if sum := balances[p.ID]; sum != p.Quantity {
			out = append(out, dto.LedgerDrift{ProductID: p.ID.String(), Name: p.Name, Quantity: p.Quantity, LedgerSum: sum})
		}
	}
	return out, nil
}
