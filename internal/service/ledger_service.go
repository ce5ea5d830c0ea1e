package service

import (
	"context"
	"strings"
	"time"

	"shopinventory/internal/apierror"
	"shopinventory/internal/dto"
	"shopinventory/internal/infra"
	"shopinventory/internal/metrics"
	"shopinventory/internal/model"
	"shopinventory/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StockMutation describes one change of a product's on-hand quantity.
type StockMutation struct {
	ProductID uuid.UUID
	Kind      model.LedgerKind
	Delta     int
	Notes     string
	SaleID    *uuid.UUID
	At        time.Time
}

// LedgerService is the only writer of product quantities. Every quantity change
// goes through ApplyTx, which pairs it with exactly one ledger entry in the
// caller's transaction.
type LedgerService interface {
	// ApplyTx must run inside a transaction opened by the caller. It does not
	// enforce a stock floor; callers that need one check before calling.
	ApplyTx(tx *gorm.DB, m StockMutation) (*model.LedgerEntry, *model.Product, error)
	// RecordManual books an adjustment or a return requested by an operator.
	RecordManual(ctx context.Context, req dto.CreateTransactionRequest) (*dto.TransactionResponse, error)
	List(ctx context.Context, filter dto.LedgerFilter) (*dto.LedgerListResponse, error)
}

type ledgerService struct {
	products   repository.ProductRepository
	entries    repository.LedgerRepository
	tx         repository.Transactor
	locks      *infra.KeyedMutex
	dispatcher JobDispatcher
	now        func() time.Time
}

func NewLedgerService(
	products repository.ProductRepository,
	entries repository.LedgerRepository,
	tx repository.Transactor,
	locks *infra.KeyedMutex,
	dispatcher JobDispatcher,
) LedgerService {
	return &ledgerService{
		products:   products,
		entries:    entries,
		tx:         tx,
		locks:      locks,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

func (s *ledgerService) ApplyTx(tx *gorm.DB, m StockMutation) (*model.LedgerEntry, *model.Product, error) {
	if !m.Kind.Valid() {
		return nil, nil, apierror.Validation("Invalid transaction kind %q", m.Kind)
	}
	if m.Delta == 0 {
		return nil, nil, apierror.Validation("Quantity must be non-zero")
	}

	p, err := s.products.LockByIDTx(tx, m.ProductID)
	if err != nil {
		return nil, nil, lookupErr(err, "Product")
	}

	if err := s.products.UpdateStockTx(tx, p.ID, m.Delta); err != nil {
		return nil, nil, apierror.Internal("update stock", err)
	}

	at := m.At
	if at.IsZero() {
		at = s.now()
	}
	entry := &model.LedgerEntry{
		ProductID:     p.ID,
		Kind:          m.Kind,
		Quantity:      m.Delta,
		BalanceBefore: p.Quantity,
		BalanceAfter:  p.Quantity + m.Delta,
		UnitCost:      p.Cost,
		Notes:         m.Notes,
		SaleID:        m.SaleID,
		OccurredAt:    at,
	}
	if err := s.entries.CreateTx(tx, entry); err != nil {
		return nil, nil, apierror.Internal("insert ledger entry", err)
	}

	p.Quantity = entry.BalanceAfter
	return entry, p, nil
}

func (s *ledgerService) RecordManual(ctx context.Context, req dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.Validation("Invalid product_id")
	}

	kind := model.LedgerKind(strings.ToLower(strings.TrimSpace(req.Kind)))
	if kind != model.LedgerAdjustment && kind != model.LedgerReturn {
		return nil, apierror.Validation("Invalid transaction kind %q, only 'adjustment' or 'return' can be recorded manually", req.Kind)
	}
	if req.Quantity == 0 {
		return nil, apierror.Validation("Quantity must be non-zero")
	}
	if kind == model.LedgerReturn && req.Quantity < 0 {
		return nil, apierror.Validation("Quantity for a return must be positive")
	}

	at := s.now()
	if req.Date != nil && *req.Date != "" {
		parsed, ok := parseTimestamp(*req.Date)
		if !ok {
			return nil, apierror.Validation("Invalid date %q, use RFC3339 or YYYY-MM-DD", *req.Date)
		}
		at = parsed
	}

	unlock := s.locks.Lock(productID.String())
	defer unlock()

	var entry *model.LedgerEntry
	var product *model.Product
	err = s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		var err error
		entry, product, err = s.ApplyTx(tx, StockMutation{
			ProductID: productID,
			Kind:      kind,
			Delta:     req.Quantity,
			Notes:     req.Notes,
			At:        at,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.LedgerEntries.WithLabelValues(string(kind)).Inc()
	log.Info().
		Str("product_id", productID.String()).
		Str("kind", string(kind)).
		Int("quantity", req.Quantity).
		Int("balance_after", entry.BalanceAfter).
		Msg("manual stock transaction recorded")

	if crossedThreshold(entry.BalanceBefore, entry.BalanceAfter, product.ReorderThreshold) {
		notifyLowStock(ctx, s.dispatcher, product)
	}

	entry.Product = product
	return &dto.TransactionResponse{
		Entry:              ledgerToResponse(entry),
		NewProductQuantity: product.Quantity,
	}, nil
}

func (s *ledgerService) List(ctx context.Context, filter dto.LedgerFilter) (*dto.LedgerListResponse, error) {
	f := repository.LedgerFilter{Kind: filter.Kind, Page: filter.Page, Limit: filter.Limit}
	if filter.ProductID != "" {
		id, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, apierror.Validation("Invalid product_id")
		}
		f.ProductID = &id
	}
	if f.Kind != "" && !model.LedgerKind(f.Kind).Valid() {
		return nil, apierror.Validation("Invalid transaction kind %q", f.Kind)
	}

	entries, total, err := s.entries.List(ctx, f)
	if err != nil {
		return nil, apierror.Internal("list ledger entries", err)
	}
	resp := &dto.LedgerListResponse{
		Data:  make([]dto.LedgerEntryResponse, 0, len(entries)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range entries {
		resp.Data = append(resp.Data, ledgerToResponse(&entries[i]))
	}
	return resp, nil
}

// notifyLowStock queues an alert; failures are logged, never returned, because
// the stock change has already been committed.
func notifyLowStock(ctx context.Context, d JobDispatcher, p *model.Product) {
	if d == nil {
		return
	}
	if err := d.EnqueueLowStockAlert(ctx, p); err != nil {
		log.Warn().Err(err).Str("product_id", p.ID.String()).Msg("failed to enqueue low-stock alert")
		return
	}
	metrics.LowStockAlerts.Inc()
}

// parseTimestamp accepts RFC3339 (with or without fractional seconds) and plain dates.
func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000000Z", "2006-01-02T15:04:05", dateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
