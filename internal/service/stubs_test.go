package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"shopinventory/internal/dto"
	"shopinventory/internal/model"
	"shopinventory/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store shared by every stub ────────────────────────────────────
// Rows are kept by value so a snapshot is a plain map copy.

type memStore struct {
	products  map[uuid.UUID]model.Product
	suppliers map[uuid.UUID]model.Supplier
	clients   map[uuid.UUID]model.Client
	options   map[uuid.UUID]model.FieldOption
	sales     map[uuid.UUID]model.Sale
	users     map[uuid.UUID]model.User
	entries   []model.LedgerEntry

	// hideSKUs makes the next N prefix scans return nothing, simulating a
	// concurrent writer the scan did not see.
	hideSKUs int
}

func newMemStore() *memStore {
	return &memStore{
		products:  map[uuid.UUID]model.Product{},
		suppliers: map[uuid.UUID]model.Supplier{},
		clients:   map[uuid.UUID]model.Client{},
		options:   map[uuid.UUID]model.FieldOption{},
		sales:     map[uuid.UUID]model.Sale{},
		users:     map[uuid.UUID]model.User{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() *memStore {
	return &memStore{
		products:  copyMap(s.products),
		suppliers: copyMap(s.suppliers),
		clients:   copyMap(s.clients),
		options:   copyMap(s.options),
		sales:     copyMap(s.sales),
		users:     copyMap(s.users),
		entries:   append([]model.LedgerEntry(nil), s.entries...),
		hideSKUs:  s.hideSKUs,
	}
}

func (s *memStore) restore(snap *memStore) {
	s.products = snap.products
	s.suppliers = snap.suppliers
	s.clients = snap.clients
	s.options = snap.options
	s.sales = snap.sales
	s.users = snap.users
	s.entries = snap.entries
}

// ledgerSum returns the signed sum of ledger entries for one product.
func (s *memStore) ledgerSum(id uuid.UUID) int {
	sum := 0
	for _, e := range s.entries {
		if e.ProductID == id {
			sum += e.Quantity
		}
	}
	return sum
}

// ── Transactor ───────────────────────────────────────────────────────────────

type stubTransactor struct{ st *memStore }

var _ repository.Transactor = (*stubTransactor)(nil)

func (t *stubTransactor) WithinTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	snap := t.st.snapshot()
	if err := fn(nil); err != nil {
		t.st.restore(snap)
		return err
	}
	return nil
}

// ── ProductRepository ────────────────────────────────────────────────────────

type stubProductRepo struct{ st *memStore }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func (r *stubProductRepo) withSupplier(p model.Product) *model.Product {
	if sup, ok := r.st.suppliers[p.SupplierID]; ok {
		p.Supplier = &sup
	}
	return &p
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.withSupplier(p), nil
}

func (r *stubProductRepo) FindBySKU(_ context.Context, code string) (*model.Product, error) {
	for _, p := range r.st.products {
		if p.SKU != nil && *p.SKU == code {
			return r.withSupplier(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) sorted(keep func(p *model.Product) bool) []model.Product {
	out := []model.Product{}
	for _, p := range r.st.products {
		if keep == nil || keep(&p) {
			out = append(out, *r.withSupplier(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *stubProductRepo) List(_ context.Context, f dto.ProductFilter) ([]model.Product, int64, error) {
	all := r.sorted(func(p *model.Product) bool {
		if f.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Query)) {
			return false
		}
		if f.SupplierID != "" && p.SupplierID.String() != f.SupplierID {
			return false
		}
		return !f.LowStock || p.IsLowStock()
	})
	total := int64(len(all))
	start := (f.Page - 1) * f.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *stubProductRepo) ListAll(_ context.Context) ([]model.Product, error) {
	return r.sorted(nil), nil
}

func (r *stubProductRepo) ListLowStock(_ context.Context) ([]model.Product, error) {
	return r.sorted(func(p *model.Product) bool { return p.IsLowStock() }), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	cur, ok := r.st.products[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	next := *p
	next.Quantity = cur.Quantity
	next.Supplier = nil
	r.st.products[p.ID] = next
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.st.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.st.products, id)
	return nil
}

func (r *stubProductRepo) DistinctValues(_ context.Context, column string) ([]string, error) {
	seen := map[string]bool{}
	for _, p := range r.st.products {
		var v string
		switch column {
		case "gender":
			v = p.Gender
		case "size":
			v = p.Size
		case "color_print":
			v = p.ColorPrint
		default:
			return nil, gorm.ErrInvalidField
		}
		if v != "" {
			seen[v] = true
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

func (r *stubProductRepo) CreateTx(_ *gorm.DB, p *model.Product) error {
	for _, existing := range r.st.products {
		if p.SKU != nil && existing.SKU != nil && *existing.SKU == *p.SKU {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	row := *p
	row.Supplier = nil
	r.st.products[p.ID] = row
	return nil
}

func (r *stubProductRepo) LockByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *stubProductRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.st.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Quantity += delta
	r.st.products[id] = p
	return nil
}

func (r *stubProductRepo) SKUsWithPrefixTx(_ *gorm.DB, prefix string) ([]string, error) {
	if r.st.hideSKUs > 0 {
		r.st.hideSKUs--
		return nil, nil
	}
	var out []string
	for _, p := range r.st.products {
		if p.SKU != nil && strings.HasPrefix(*p.SKU, prefix) {
			out = append(out, *p.SKU)
		}
	}
	return out, nil
}

// ── LedgerRepository ─────────────────────────────────────────────────────────

type stubLedgerRepo struct{ st *memStore }

var _ repository.LedgerRepository = (*stubLedgerRepo)(nil)

func (r *stubLedgerRepo) CreateTx(_ *gorm.DB, e *model.LedgerEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	row := *e
	row.Product = nil
	r.st.entries = append(r.st.entries, row)
	return nil
}

func (r *stubLedgerRepo) List(_ context.Context, f repository.LedgerFilter) ([]model.LedgerEntry, int64, error) {
	var out []model.LedgerEntry
	for i := len(r.st.entries) - 1; i >= 0; i-- {
		e := r.st.entries[i]
		if f.ProductID != nil && e.ProductID != *f.ProductID {
			continue
		}
		if f.Kind != "" && string(e.Kind) != f.Kind {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (r *stubLedgerRepo) ListBySaleID(_ context.Context, saleID uuid.UUID) ([]model.LedgerEntry, error) {
	var out []model.LedgerEntry
	for _, e := range r.st.entries {
		if e.SaleID != nil && *e.SaleID == saleID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubLedgerRepo) BalancesByProduct(_ context.Context) (map[uuid.UUID]int, error) {
	out := map[uuid.UUID]int{}
	for _, e := range r.st.entries {
		out[e.ProductID] += e.Quantity
	}
	return out, nil
}

// ── SupplierRepository ───────────────────────────────────────────────────────

type stubSupplierRepo struct{ st *memStore }

var _ repository.SupplierRepository = (*stubSupplierRepo)(nil)

func (r *stubSupplierRepo) Create(_ context.Context, s *model.Supplier) error {
	for _, existing := range r.st.suppliers {
		if strings.EqualFold(existing.Name, s.Name) {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	r.st.suppliers[s.ID] = *s
	return nil
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.st.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r *stubSupplierRepo) FindByName(_ context.Context, name string) (*model.Supplier, error) {
	for _, s := range r.st.suppliers {
		if strings.EqualFold(s.Name, name) {
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSupplierRepo) List(_ context.Context, includeInactive bool) ([]model.Supplier, error) {
	out := []model.Supplier{}
	for _, s := range r.st.suppliers {
		if includeInactive || s.Active {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubSupplierRepo) Update(_ context.Context, s *model.Supplier) error {
	r.st.suppliers[s.ID] = *s
	return nil
}

func (r *stubSupplierRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	s := r.st.suppliers[id]
	s.Active = active
	r.st.suppliers[id] = s
	return nil
}

// ── ClientRepository ─────────────────────────────────────────────────────────

type stubClientRepo struct{ st *memStore }

var _ repository.ClientRepository = (*stubClientRepo)(nil)

func (r *stubClientRepo) Create(_ context.Context, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	r.st.clients[c.ID] = *c
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := r.st.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *stubClientRepo) List(_ context.Context) ([]model.Client, error) {
	out := []model.Client{}
	for _, c := range r.st.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubClientRepo) Update(_ context.Context, c *model.Client) error {
	r.st.clients[c.ID] = *c
	return nil
}

func (r *stubClientRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.st.clients[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.st.clients, id)
	for sid, s := range r.st.sales {
		if s.ClientID != nil && *s.ClientID == id {
			s.ClientID = nil
			r.st.sales[sid] = s
		}
	}
	return nil
}

// ── FieldOptionRepository ────────────────────────────────────────────────────

type stubFieldOptionRepo struct{ st *memStore }

var _ repository.FieldOptionRepository = (*stubFieldOptionRepo)(nil)

func (r *stubFieldOptionRepo) Create(_ context.Context, o *model.FieldOption) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	r.st.options[o.ID] = *o
	return nil
}

func (r *stubFieldOptionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.FieldOption, error) {
	o, ok := r.st.options[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (r *stubFieldOptionRepo) FindByValue(_ context.Context, t model.FieldOptionType, value string) (*model.FieldOption, error) {
	for _, o := range r.st.options {
		if o.Type == t && strings.EqualFold(o.Value, value) {
			return &o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubFieldOptionRepo) List(_ context.Context, t model.FieldOptionType, includeInactive bool) ([]model.FieldOption, error) {
	out := []model.FieldOption{}
	for _, o := range r.st.options {
		if o.Type == t && (includeInactive || o.Active) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Active != out[j].Active {
			return out[i].Active
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

func (r *stubFieldOptionRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	o := r.st.options[id]
	o.Active = active
	r.st.options[id] = o
	return nil
}

// ── SaleRepository ───────────────────────────────────────────────────────────

type stubSaleRepo struct{ st *memStore }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	s.CreatedAt = time.Now()
	row := *s
	row.Client = nil
	row.Lines = make([]model.SaleLine, len(s.Lines))
	for i, l := range s.Lines {
		l.SaleID = s.ID
		l.Product = nil
		row.Lines[i] = l
	}
	r.st.sales[s.ID] = row
	return nil
}

func (r *stubSaleRepo) hydrate(s model.Sale) model.Sale {
	if s.ClientID != nil {
		if c, ok := r.st.clients[*s.ClientID]; ok {
			s.Client = &c
		}
	}
	lines := make([]model.SaleLine, len(s.Lines))
	for i, l := range s.Lines {
		if p, ok := r.st.products[l.ProductID]; ok {
			l.Product = &p
		}
		lines[i] = l
	}
	s.Lines = lines
	return s
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.st.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := r.hydrate(s)
	return &out, nil
}

func (r *stubSaleRepo) List(_ context.Context, f dto.SaleFilter) ([]model.Sale, int64, error) {
	out := []model.Sale{}
	for _, s := range r.st.sales {
		if f.ClientID != "" && (s.ClientID == nil || s.ClientID.String() != f.ClientID) {
			continue
		}
		out = append(out, r.hydrate(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SoldAt.After(out[j].SoldAt) })
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) ListBetween(_ context.Context, from, to time.Time) ([]model.Sale, error) {
	out := []model.Sale{}
	for _, s := range r.st.sales {
		if !s.SoldAt.Before(from) && !s.SoldAt.After(to) {
			out = append(out, r.hydrate(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SoldAt.Before(out[j].SoldAt) })
	return out, nil
}

func (r *stubSaleRepo) TotalsByClient(_ context.Context) ([]repository.ClientTotals, error) {
	byClient := map[uuid.UUID]*repository.ClientTotals{}
	for _, s := range r.st.sales {
		if s.ClientID == nil {
			continue
		}
		t, ok := byClient[*s.ClientID]
		if !ok {
			t = &repository.ClientTotals{ClientID: *s.ClientID, TotalSpent: decimal.Zero}
			byClient[*s.ClientID] = t
		}
		t.PurchaseCount++
		t.TotalSpent = t.TotalSpent.Add(s.Total)
	}
	out := make([]repository.ClientTotals, 0, len(byClient))
	for _, t := range byClient {
		out = append(out, *t)
	}
	return out, nil
}

func (r *stubSaleRepo) TotalsForClient(ctx context.Context, clientID uuid.UUID) (repository.ClientTotals, error) {
	all, _ := r.TotalsByClient(ctx)
	for _, t := range all {
		if t.ClientID == clientID {
			return t, nil
		}
	}
	return repository.ClientTotals{ClientID: clientID, TotalSpent: decimal.Zero}, nil
}

// ── UserRepository ───────────────────────────────────────────────────────────

type stubUserRepo struct{ st *memStore }

var _ repository.UserRepository = (*stubUserRepo)(nil)

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.st.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.st.users[u.ID] = *u
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.st.users {
		if strings.EqualFold(u.Email, email) && u.Active {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	out := []model.User{}
	for _, u := range r.st.users {
		out = append(out, u)
	}
	return out, nil
}

// ── JobDispatcher ────────────────────────────────────────────────────────────

type stubDispatcher struct {
	mu       sync.Mutex
	receipts []uuid.UUID
	alerts   []uuid.UUID
}

var _ JobDispatcher = (*stubDispatcher)(nil)

func (d *stubDispatcher) EnqueueReceipt(_ context.Context, saleID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.receipts = append(d.receipts, saleID)
	return nil
}

func (d *stubDispatcher) EnqueueLowStockAlert(_ context.Context, p *model.Product) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, p.ID)
	return nil
}
