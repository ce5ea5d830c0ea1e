package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"shopinventory/internal/infra"
	"shopinventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMailer struct {
	mu         sync.Mutex
	configured bool
	failFirst  int
	sent       []string
	attachment string
}

func (m *fakeMailer) Configured() bool { return m.configured }

func (m *fakeMailer) Send(to, _, _, attachmentPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFirst > 0 {
		m.failFirst--
		return errors.New("smtp: 421 try again later")
	}
	m.sent = append(m.sent, to)
	m.attachment = attachmentPath
	return nil
}

type fakeSales map[uuid.UUID]*model.Sale

func (f fakeSales) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := f[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func testNotifier(m MailSender) *Notifier {
	n := NewNotifier(m, infra.NewCircuitBreaker(infra.DefaultCBConfig("mail-test")))
	n.backoff = time.Millisecond
	return n
}

func sampleSale(email *string) *model.Sale {
	id := uuid.New()
	return &model.Sale{
		ID:     id,
		SoldAt: time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC),
		Total:  decimal.RequireFromString("20.00"),
		Client: &model.Client{ID: uuid.New(), Name: "Ana", Email: email},
		Lines: []model.SaleLine{{
			ID: uuid.New(), SaleID: id, Position: 1, ProductID: uuid.New(), Quantity: 2,
			UnitPrice: decimal.RequireFromString("10.00"), UnitCost: decimal.RequireFromString("6.00"),
			Product: &model.Product{Name: "Shirt"},
		}},
	}
}

func payload(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestReceiptWorker_WritesPDFAndMailsClient(t *testing.T) {
	email := "ana@example.com"
	sale := sampleSale(&email)
	mailer := &fakeMailer{configured: true, failFirst: 1}
	dir := t.TempDir()
	w := NewReceiptWorker(fakeSales{sale.ID: sale}, testNotifier(mailer), dir)

	err := w.Process(context.Background(), payload(t, ReceiptJobPayload{SaleID: sale.ID.String()}))
	require.NoError(t, err)

	assert.Equal(t, []string{email}, mailer.sent)
	assert.Equal(t, filepath.Join(dir, "receipt_"+sale.ID.String()+".pdf"), mailer.attachment)
	_, statErr := os.Stat(mailer.attachment)
	assert.NoError(t, statErr)
}

func TestReceiptWorker_SkipsMailWithoutClientEmail(t *testing.T) {
	sale := sampleSale(nil)
	mailer := &fakeMailer{configured: true}
	w := NewReceiptWorker(fakeSales{sale.ID: sale}, testNotifier(mailer), t.TempDir())

	require.NoError(t, w.Process(context.Background(), payload(t, ReceiptJobPayload{SaleID: sale.ID.String()})))
	assert.Empty(t, mailer.sent)
}

func TestReceiptWorker_DropsUnknownSale(t *testing.T) {
	w := NewReceiptWorker(fakeSales{}, testNotifier(&fakeMailer{configured: true}), t.TempDir())
	assert.NoError(t, w.Process(context.Background(), payload(t, ReceiptJobPayload{SaleID: uuid.NewString()})))
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{"sale_id":"nope"}`)))
}

func TestReceiptWorker_ReturnsErrorWhenMailKeepsFailing(t *testing.T) {
	email := "ana@example.com"
	sale := sampleSale(&email)
	mailer := &fakeMailer{configured: true, failFirst: 10}
	w := NewReceiptWorker(fakeSales{sale.ID: sale}, testNotifier(mailer), t.TempDir())

	err := w.Process(context.Background(), payload(t, ReceiptJobPayload{SaleID: sale.ID.String()}))
	assert.Error(t, err)
}

func TestAlertWorker(t *testing.T) {
	mailer := &fakeMailer{configured: true}
	w := NewAlertWorker(testNotifier(mailer), "stock@shop.test")
	code := "ABC-M-TAMG-VER-001"

	err := w.Process(context.Background(), payload(t, LowStockJobPayload{
		ProductID: uuid.NewString(), Name: "Shirt", SKU: &code, Quantity: 1, Threshold: 5,
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"stock@shop.test"}, mailer.sent)

	silent := NewAlertWorker(testNotifier(mailer), "")
	require.NoError(t, silent.Process(context.Background(), payload(t, LowStockJobPayload{Name: "Hat"})))
	assert.Len(t, mailer.sent, 1)
}

type panicHandler struct{}

func (panicHandler) Process(context.Context, json.RawMessage) error { panic("boom") }

func TestRunHandler(t *testing.T) {
	ctx := context.Background()

	err := runHandler(ctx, map[string]Handler{}, Job{Type: "mystery"})
	assert.ErrorIs(t, err, ErrUnknownJob)

	err = runHandler(ctx, map[string]Handler{"p": panicHandler{}}, Job{Type: "p"})
	assert.Error(t, err)
}

func TestWithRetry(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func(int) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = withRetry(ctx, 3, time.Hour, func(int) error { return errors.New("down") })
	assert.ErrorIs(t, err, context.Canceled)
}
