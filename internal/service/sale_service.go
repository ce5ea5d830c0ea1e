package service

import (
	"bytes"
	"context"
	"fmt"
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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	Create(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	// Receipt renders the sale as a PDF document.
	Receipt(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type saleService struct {
	sales      repository.SaleRepository
	clients    repository.ClientRepository
	products   repository.ProductRepository
	entries    repository.LedgerRepository
	ledger     LedgerService
	tx         repository.Transactor
	locks      *infra.KeyedMutex
	dispatcher JobDispatcher
	now        func() time.Time
}

func NewSaleService(
	sales repository.SaleRepository,
	clients repository.ClientRepository,
	products repository.ProductRepository,
	entries repository.LedgerRepository,
	ledger LedgerService,
	tx repository.Transactor,
	locks *infra.KeyedMutex,
	dispatcher JobDispatcher,
) SaleService {
	return &saleService{
		sales:      sales,
		clients:    clients,
		products:   products,
		entries:    entries,
		ledger:     ledger,
		tx:         tx,
		locks:      locks,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────
// All-or-nothing:
//   1. Resolve the optional client
//   2. Lock every referenced product id (sorted, see KeyedMutex)
//   3. BEGIN TX: validate lines in order against locked rows, insert sale + lines,
//      one sale ledger entry per line
//   4. COMMIT
//   5. (async) receipt job, low-stock alerts

func (s *saleService) Create(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(req.Lines) == 0 {
		metrics.SalesRejected.WithLabelValues("empty").Inc()
		return nil, apierror.Validation("A sale needs at least one line")
	}

	var client *model.Client
	if req.ClientID != nil && strings.TrimSpace(*req.ClientID) != "" {
		cid, err := uuid.Parse(strings.TrimSpace(*req.ClientID))
		if err != nil {
			return nil, apierror.NotFound("Client not found")
		}
		client, err = s.clients.FindByID(ctx, cid)
		if err != nil {
			return nil, lookupErr(err, "Client")
		}
	}

	soldAt := s.now()
	if req.SoldAt != nil && *req.SoldAt != "" {
		if t, ok := parseTimestamp(*req.SoldAt); ok {
			soldAt = t
		} else {
			log.Warn().Str("sold_at", *req.SoldAt).Msg("unparsable sale timestamp, using current time")
		}
	}

	keys := make([]string, 0, len(req.Lines))
	for _, l := range req.Lines {
		if id, err := uuid.Parse(l.ProductID); err == nil {
			keys = append(keys, id.String())
		}
	}
	unlock := s.locks.Lock(keys...)
	defer unlock()

	sale := &model.Sale{
		ID:     uuid.New(),
		SoldAt: soldAt,
		Notes:  req.Notes,
		Total:  decimal.Zero,
	}
	if client != nil {
		sale.ClientID = &client.ID
		sale.Client = client
	}

	var entries []model.LedgerEntry
	var touched []*model.Product

	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		entries = entries[:0]
		touched = touched[:0]

		seen := make(map[uuid.UUID]*model.Product)
		pending := make(map[uuid.UUID]int)
		lines := make([]model.SaleLine, 0, len(req.Lines))

		for i, l := range req.Lines {
			pid, err := uuid.Parse(l.ProductID)
			if err != nil {
				return apierror.NotFound("Product %s not found", l.ProductID)
			}
			p, ok := seen[pid]
			if !ok {
				p, err = s.products.LockByIDTx(tx, pid)
				if err != nil {
					return lookupErr(err, fmt.Sprintf("Product %s", l.ProductID))
				}
				seen[pid] = p
			}
			if l.Quantity <= 0 {
				return apierror.Validation("Quantity for %s must be a positive integer", p.Name)
			}
			available := p.Quantity - pending[pid]
			if available < l.Quantity {
				metrics.SalesRejected.WithLabelValues("insufficient_stock").Inc()
				return apierror.Validation("Insufficient stock for %s. Available: %d, Requested: %d",
					p.Name, available, l.Quantity)
			}
			pending[pid] += l.Quantity

			line := model.SaleLine{
				ID:        uuid.New(),
				SaleID:    sale.ID,
				Position:  i + 1,
				ProductID: pid,
				Quantity:  l.Quantity,
				UnitPrice: p.SalePrice,
				UnitCost:  p.Cost,
			}
			sale.Total = sale.Total.Add(line.Subtotal())
			lines = append(lines, line)
		}

		sale.Lines = lines
		if err := s.sales.CreateTx(tx, sale); err != nil {
			return apierror.Internal("insert sale", err)
		}

		note := "Sale " + sale.ID.String()
		for i := range sale.Lines {
			line := &sale.Lines[i]
			entry, p, err := s.ledger.ApplyTx(tx, StockMutation{
				ProductID: line.ProductID,
				Kind:      model.LedgerSale,
				Delta:     -line.Quantity,
				Notes:     note,
				SaleID:    &sale.ID,
				At:        soldAt,
			})
			if err != nil {
				return err
			}
			entries = append(entries, *entry)
			touched = append(touched, p)
			line.Product = p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.SalesCounter.Inc()
	metrics.SalesRevenue.Add(sale.Total.InexactFloat64())
	metrics.LedgerEntries.WithLabelValues(string(model.LedgerSale)).Add(float64(len(entries)))
	log.Info().
		Str("sale_id", sale.ID.String()).
		Int("lines", len(sale.Lines)).
		Str("total", sale.Total.StringFixed(2)).
		Msg("sale committed")

	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueReceipt(ctx, sale.ID); err != nil {
			log.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("failed to enqueue receipt job")
		}
	}
	for i := range entries {
		if crossedThreshold(entries[i].BalanceBefore, entries[i].BalanceAfter, touched[i].ReorderThreshold) {
			notifyLowStock(ctx, s.dispatcher, touched[i])
		}
	}

	resp := saleToResponse(sale)
	resp.Ledger = make([]dto.LedgerEntryResponse, 0, len(entries))
	for i := range entries {
		resp.Ledger = append(resp.Ledger, ledgerToResponse(&entries[i]))
	}
	return &resp, nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Sale")
	}
	entries, err := s.entries.ListBySaleID(ctx, id)
	if err != nil {
		return nil, apierror.Internal("load sale ledger", err)
	}
	resp := saleToResponse(sale)
	for i := range entries {
		resp.Ledger = append(resp.Ledger, ledgerToResponse(&entries[i]))
	}
	return &resp, nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.ClientID != "" {
		if _, err := uuid.Parse(filter.ClientID); err != nil {
			return nil, apierror.Validation("Invalid client_id")
		}
	}
	sales, total, err := s.sales.List(ctx, filter)
	if err != nil {
		return nil, apierror.Internal("list sales", err)
	}
	resp := &dto.SaleListResponse{
		Data:  make([]dto.SaleResponse, 0, len(sales)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range sales {
		resp.Data = append(resp.Data, saleToResponse(&sales[i]))
	}
	return resp, nil
}

func (s *saleService) Receipt(ctx context.Context, id uuid.UUID) ([]byte, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Sale")
	}
	var buf bytes.Buffer
	if err := infra.RenderReceipt(&buf, sale); err != nil {
		return nil, apierror.Internal("render receipt", err)
	}
	return buf.Bytes(), nil
}
