package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"shopinventory/internal/apierror"
	"shopinventory/internal/dto"
	"shopinventory/internal/infra"
	"shopinventory/internal/metrics"
	"shopinventory/internal/model"
	"shopinventory/internal/repository"
	"shopinventory/internal/sku"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	maxSKUAttempts = 3
	skuCachePrefix = "sku:"
)

// ProductOptions carries catalog defaults read from configuration.
type ProductOptions struct {
	DefaultReorderThreshold int
	CacheTTL                time.Duration
}

// ProductService defines the business logic contract for the catalog.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	GetBySKU(ctx context.Context, code string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductUpdateResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Import(ctx context.Context, req dto.ImportProductsRequest) (*dto.ImportProductsResponse, error)
	DistinctValues(ctx context.Context, field string) ([]string, error)
}

type productService struct {
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	ledger    LedgerService
	tx        repository.Transactor
	locks     *infra.KeyedMutex
	rdb       *redis.Client
	opts      ProductOptions
	now       func() time.Time
}

func NewProductService(
	products repository.ProductRepository,
	suppliers repository.SupplierRepository,
	ledger LedgerService,
	tx repository.Transactor,
	locks *infra.KeyedMutex,
	rdb *redis.Client,
	opts ProductOptions,
) ProductService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 4 * time.Hour
	}
	return &productService{
		products:  products,
		suppliers: suppliers,
		ledger:    ledger,
		tx:        tx,
		locks:     locks,
		rdb:       rdb,
		opts:      opts,
		now:       time.Now,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.Cost == nil {
		return nil, apierror.Validation("cost is required")
	}
	if req.SalePrice == nil {
		return nil, apierror.Validation("sale_price is required")
	}
	if req.Quantity < 0 {
		return nil, apierror.Validation("quantity cannot be negative")
	}

	supplier, err := s.assignableSupplier(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}
	purchaseDate, err := parseOptionalDate(req.PurchaseDate)
	if err != nil {
		return nil, err
	}

	threshold := s.opts.DefaultReorderThreshold
	if req.ReorderThreshold != nil {
		threshold = *req.ReorderThreshold
	}

	p := &model.Product{
		Name:             strings.TrimSpace(req.Name),
		Gender:           strings.TrimSpace(req.Gender),
		Size:             strings.TrimSpace(req.Size),
		ColorPrint:       strings.TrimSpace(req.ColorPrint),
		SupplierID:       supplier.ID,
		Cost:             *req.Cost,
		SalePrice:        *req.SalePrice,
		ReorderThreshold: threshold,
		PurchaseDate:     purchaseDate,
	}
	if err := s.create(ctx, p, req.Quantity); err != nil {
		return nil, err
	}
	p.Supplier = supplier

	resp := productToResponse(p)
	return &resp, nil
}

// create assigns a SKU and inserts p with its opening purchase entry in one
// transaction. SKU generation is serialized per base and retried when the
// unique index still rejects the code.
func (s *productService) create(ctx context.Context, p *model.Product, initialQty int) error {
	base := sku.Base(p.Name, p.Gender, p.Size, p.ColorPrint)
	unlock := s.locks.Lock(skuCachePrefix + base)
	defer unlock()

	for attempt := 1; ; attempt++ {
		err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
			existing, err := s.products.SKUsWithPrefixTx(tx, sku.Prefix(base))
			if err != nil {
				return apierror.Internal("scan skus", err)
			}
			code := sku.Next(base, existing)

			p.ID = uuid.New()
			p.SKU = &code
			p.Quantity = 0
			if err := s.products.CreateTx(tx, p); err != nil {
				return err
			}

			if initialQty > 0 {
				_, updated, err := s.ledger.ApplyTx(tx, StockMutation{
					ProductID: p.ID,
					Kind:      model.LedgerPurchase,
					Delta:     initialQty,
					Notes:     "Initial stock",
					At:        s.now(),
				})
				if err != nil {
					return err
				}
				p.Quantity = updated.Quantity
			}
			return nil
		})
		if err == nil {
			break
		}
		if repository.IsUniqueViolation(err) {
			if attempt < maxSKUAttempts {
				metrics.SKURetries.Inc()
				log.Warn().Str("sku_base", base).Int("attempt", attempt).Msg("sku collision, regenerating")
				continue
			}
			return apierror.Conflict("Could not allocate a unique SKU for %s", p.Name)
		}
		var apiErr *apierror.Error
		if errors.As(err, &apiErr) {
			return err
		}
		return apierror.Internal("create product", err)
	}

	if initialQty > 0 {
		metrics.LedgerEntries.WithLabelValues(string(model.LedgerPurchase)).Inc()
	}
	log.Info().Str("product_id", p.ID.String()).Str("sku", *p.SKU).Int("quantity", p.Quantity).Msg("product created")
	return nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Product")
	}
	resp := productToResponse(p)
	return &resp, nil
}

// GetBySKU caches the sku -> id mapping only, so stock figures are always read fresh.
func (s *productService) GetBySKU(ctx context.Context, code string) (*dto.ProductResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	cacheKey := skuCachePrefix + code

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			if id, parseErr := uuid.Parse(cached); parseErr == nil {
				if p, findErr := s.products.FindByID(ctx, id); findErr == nil {
					resp := productToResponse(p)
					return &resp, nil
				}
			}
			_ = s.rdb.Del(ctx, cacheKey).Err()
		}
	}

	p, err := s.products.FindBySKU(ctx, code)
	if err != nil {
		return nil, lookupErr(err, "Product")
	}
	if s.rdb != nil {
		// best effort
		_ = s.rdb.Set(context.Background(), cacheKey, p.ID.String(), s.opts.CacheTTL).Err()
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.SupplierID != "" {
		if _, err := uuid.Parse(filter.SupplierID); err != nil {
			return nil, apierror.Validation("Invalid supplier_id")
		}
	}
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, apierror.Internal("list products", err)
	}
	resp := &dto.ProductListResponse{
		Data:       make([]dto.ProductResponse, 0, len(products)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: pageCount(total, filter.Limit),
	}
	for i := range products {
		resp.Data = append(resp.Data, productToResponse(&products[i]))
	}
	return resp, nil
}

func (s *productService) DistinctValues(ctx context.Context, field string) ([]string, error) {
	switch field {
	case "gender", "size", "color_print":
	default:
		return nil, apierror.Validation("Unknown field %q, expected gender, size or color_print", field)
	}
	values, err := s.products.DistinctValues(ctx, field)
	if err != nil {
		return nil, apierror.Internal("distinct values", err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

// ── Update / Delete ───────────────────────────────────────────────────────────

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductUpdateResult, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Product")
	}

	changed := false
	setString := func(dst *string, src *string) {
		if src == nil {
			return
		}
		v := strings.TrimSpace(*src)
		if *dst != v {
			*dst = v
			changed = true
		}
	}
	setDecimal := func(dst *decimal.Decimal, src *decimal.Decimal) {
		if src != nil && !dst.Equal(*src) {
			*dst = *src
			changed = true
		}
	}

	setString(&p.Name, req.Name)
	setString(&p.Gender, req.Gender)
	setString(&p.Size, req.Size)
	setString(&p.ColorPrint, req.ColorPrint)
	setDecimal(&p.Cost, req.Cost)
	setDecimal(&p.SalePrice, req.SalePrice)

	if req.ReorderThreshold != nil && *req.ReorderThreshold != p.ReorderThreshold {
		p.ReorderThreshold = *req.ReorderThreshold
		changed = true
	}
	if req.PurchaseDate != nil {
		d, err := parseOptionalDate(req.PurchaseDate)
		if err != nil {
			return nil, err
		}
		if !sameDate(p.PurchaseDate, d) {
			p.PurchaseDate = d
			changed = true
		}
	}
	if req.SupplierID != nil {
		supplier, err := s.assignableSupplier(ctx, *req.SupplierID)
		if err != nil {
			return nil, err
		}
		if supplier.ID != p.SupplierID {
			p.SupplierID = supplier.ID
			changed = true
		}
		p.Supplier = supplier
	}

	if !changed {
		return &dto.ProductUpdateResult{Product: productToResponse(p), Changed: false}, nil
	}

	p.UpdatedAt = s.now()
	if err := s.products.Update(ctx, p); err != nil {
		return nil, apierror.Internal("update product", err)
	}
	return &dto.ProductUpdateResult{Product: productToResponse(p), Changed: true}, nil
}

// Delete removes the product row. Ledger entries and sale lines keep the id.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return lookupErr(err, "Product")
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return lookupErr(err, "Product")
	}
	if s.rdb != nil && p.SKU != nil {
		_ = s.rdb.Del(ctx, skuCachePrefix+*p.SKU).Err()
	}
	log.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}

// ── Import ────────────────────────────────────────────────────────────────────

// Import creates each row independently. Suppliers are matched by name and
// created when missing; a failing row never stops the batch.
func (s *productService) Import(ctx context.Context, req dto.ImportProductsRequest) (*dto.ImportProductsResponse, error) {
	resp := &dto.ImportProductsResponse{
		Created: []dto.ProductResponse{},
		Failed:  []dto.ImportRowError{},
	}
	suppliers := make(map[string]*model.Supplier)

	for i, row := range req.Products {
		fail := func(err error) {
			resp.Failed = append(resp.Failed, dto.ImportRowError{Row: i + 1, Name: row.Name, Error: apierror.MessageOf(err)})
		}

		if err := checkImportRow(row); err != nil {
			fail(err)
			continue
		}
		supplier, err := s.supplierForImport(ctx, suppliers, row.Supplier)
		if err != nil {
			fail(err)
			continue
		}
		purchaseDate, err := parseOptionalDate(row.PurchaseDate)
		if err != nil {
			fail(err)
			continue
		}

		p := &model.Product{
			Name:             strings.TrimSpace(row.Name),
			Gender:           strings.TrimSpace(row.Gender),
			Size:             strings.TrimSpace(row.Size),
			ColorPrint:       strings.TrimSpace(row.ColorPrint),
			SupplierID:       supplier.ID,
			Cost:             row.Cost,
			SalePrice:        row.SalePrice,
			ReorderThreshold: s.opts.DefaultReorderThreshold,
			PurchaseDate:     purchaseDate,
		}
		if err := s.create(ctx, p, row.Quantity); err != nil {
			fail(err)
			continue
		}
		p.Supplier = supplier
		resp.Created = append(resp.Created, productToResponse(p))
	}

	log.Info().Int("created", len(resp.Created)).Int("failed", len(resp.Failed)).Msg("product import finished")
	return resp, nil
}

func checkImportRow(row dto.ImportProductRow) error {
	switch {
	case strings.TrimSpace(row.Name) == "":
		return apierror.Validation("name is required")
	case row.Cost.IsNegative() || row.SalePrice.IsNegative():
		return apierror.Validation("cost and sale_price must not be negative")
	case row.Quantity < 0:
		return apierror.Validation("quantity must not be negative")
	}
	return nil
}

func (s *productService) supplierForImport(ctx context.Context, cache map[string]*model.Supplier, name string) (*model.Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierror.Validation("supplier is required")
	}
	key := strings.ToLower(name)
	if sup, ok := cache[key]; ok {
		return activeSupplier(sup)
	}

	sup, err := s.suppliers.FindByName(ctx, name)
	if repository.IsNotFound(err) {
		sup = &model.Supplier{Name: name, Active: true}
		err = s.suppliers.Create(ctx, sup)
		if repository.IsUniqueViolation(err) {
			sup, err = s.suppliers.FindByName(ctx, name)
		}
	}
	if err != nil {
		return nil, apierror.Internal("resolve supplier", err)
	}
	cache[key] = sup
	return activeSupplier(sup)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (s *productService) assignableSupplier(ctx context.Context, rawID string) (*model.Supplier, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, apierror.Validation("Invalid supplier_id")
	}
	sup, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Supplier")
	}
	return activeSupplier(sup)
}

func activeSupplier(sup *model.Supplier) (*model.Supplier, error) {
	if !sup.Active {
		return nil, apierror.Validation("Supplier %s is inactive and cannot be assigned to products", sup.Name)
	}
	return sup, nil
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	return parseDate(strings.TrimSpace(*raw))
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Format(dateLayout) == b.Format(dateLayout)
}
