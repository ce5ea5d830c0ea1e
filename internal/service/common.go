package service

import (
	"context"
	"strings"
	"time"

	"shopinventory/internal/apierror"
	"shopinventory/internal/dto"
	"shopinventory/internal/model"
	"shopinventory/internal/repository"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// JobDispatcher receives post-commit work. A nil dispatcher disables async jobs.
type JobDispatcher interface {
	EnqueueReceipt(ctx context.Context, saleID uuid.UUID) error
	EnqueueLowStockAlert(ctx context.Context, p *model.Product) error
}

// lookupErr turns a repository lookup failure into a typed API error.
func lookupErr(err error, what string) error {
	if repository.IsNotFound(err) {
		return apierror.NotFound("%s not found", what)
	}
	return apierror.Internal("load "+strings.ToLower(what), err)
}

// crossedThreshold reports whether a stock move took the product from above
// its reorder threshold to at or below it.
func crossedThreshold(before, after, threshold int) bool {
	return before > threshold && after <= threshold
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, apierror.Validation("Invalid date %q, use YYYY-MM-DD", raw)
	}
	return &t, nil
}

func pageCount(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// ── Mappers ──────────────────────────────────────────────────────────────────

func productToResponse(p *model.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:               p.ID.String(),
		SKU:              p.SKU,
		Name:             p.Name,
		Gender:           p.Gender,
		Size:             p.Size,
		ColorPrint:       p.ColorPrint,
		SupplierID:       p.SupplierID.String(),
		Cost:             p.Cost,
		SalePrice:        p.SalePrice,
		Quantity:         p.Quantity,
		ReorderThreshold: p.ReorderThreshold,
		LowStock:         p.IsLowStock(),
		PurchaseDate:     formatDate(p.PurchaseDate),
		CreatedAt:        formatTime(p.CreatedAt),
		UpdatedAt:        formatTime(p.UpdatedAt),
	}
	if p.Supplier != nil {
		resp.SupplierName = p.Supplier.Name
	}
	return resp
}

func supplierToResponse(s *model.Supplier) dto.SupplierResponse {
	return dto.SupplierResponse{
		ID:        s.ID.String(),
		Name:      s.Name,
		Active:    s.Active,
		CreatedAt: formatTime(s.CreatedAt),
	}
}

func fieldOptionToResponse(o *model.FieldOption) dto.FieldOptionResponse {
	return dto.FieldOptionResponse{
		ID:     o.ID.String(),
		Type:   string(o.Type),
		Value:  o.Value,
		Active: o.Active,
	}
}

func ledgerToResponse(e *model.LedgerEntry) dto.LedgerEntryResponse {
	resp := dto.LedgerEntryResponse{
		ID:            e.ID.String(),
		ProductID:     e.ProductID.String(),
		Kind:          string(e.Kind),
		Quantity:      e.Quantity,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		UnitCost:      e.UnitCost,
		Notes:         e.Notes,
		OccurredAt:    formatTime(e.OccurredAt),
	}
	if e.SaleID != nil {
		id := e.SaleID.String()
		resp.SaleID = &id
	}
	if e.Product != nil {
		resp.ProductName = e.Product.Name
	}
	return resp
}

func saleToResponse(s *model.Sale) dto.SaleResponse {
	resp := dto.SaleResponse{
		ID:     s.ID.String(),
		SoldAt: formatTime(s.SoldAt),
		Total:  s.Total,
		Notes:  s.Notes,
		Lines:  make([]dto.SaleLineResponse, 0, len(s.Lines)),
	}
	if s.ClientID != nil {
		id := s.ClientID.String()
		resp.ClientID = &id
	}
	if s.Client != nil {
		name := s.Client.Name
		resp.ClientName = &name
	}
	for i := range s.Lines {
		l := &s.Lines[i]
		line := dto.SaleLineResponse{
			ID:        l.ID.String(),
			ProductID: l.ProductID.String(),
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			UnitCost:  l.UnitCost,
			Subtotal:  l.Subtotal(),
		}
		if l.Product != nil {
			line.ProductName = l.Product.Name
			line.SKU = l.Product.SKU
		}
		resp.Lines = append(resp.Lines, line)
	}
	return resp
}
