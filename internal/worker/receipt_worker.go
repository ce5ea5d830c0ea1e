package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipts: renders the PDF to disk and,
// when the sale has a client with an email address, mails it.

import (
	"context"
	"encoding/json"
	"fmt"

	"shopinventory/internal/infra"
	"shopinventory/internal/model"
	"shopinventory/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SaleLoader is the slice of repository.SaleRepository the worker needs.
type SaleLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
}

type ReceiptWorker struct {
	sales       SaleLoader
	notifier    *Notifier
	storagePath string
}

func NewReceiptWorker(sales SaleLoader, notifier *Notifier, storagePath string) *ReceiptWorker {
	return &ReceiptWorker{sales: sales, notifier: notifier, storagePath: storagePath}
}

// Process handles a single receipt job:
//  1. Parse ReceiptJobPayload
//  2. Load the sale with lines and client
//  3. Write the PDF under storagePath
//  4. Mail it to the client, if any
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return nil
	}
	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		log.Error().Str("sale_id", payload.SaleID).Msg("receipt_worker: invalid sale_id")
		return nil
	}

	sale, err := w.sales.FindByID(ctx, saleID)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Warn().Str("sale_id", payload.SaleID).Msg("receipt_worker: sale no longer exists")
			return nil
		}
		return fmt.Errorf("load sale: %w", err)
	}

	path, err := infra.WriteReceiptFile(sale, w.storagePath)
	if err != nil {
		return err
	}
	log.Info().Str("sale_id", payload.SaleID).Str("path", path).Msg("receipt_worker: receipt written")

	if sale.Client == nil || sale.Client.Email == nil || *sale.Client.Email == "" {
		return nil
	}
	if !w.notifier.Configured() {
		log.Debug().Str("sale_id", payload.SaleID).Msg("receipt_worker: smtp not configured, skipping mail")
		return nil
	}

	subject := fmt.Sprintf("Your receipt %s", shortID(sale.ID))
	body := fmt.Sprintf("Hello %s,\n\nThank you for your purchase. Total: %s.\nYour receipt is attached.\n",
		sale.Client.Name, sale.Total.StringFixed(2))
	if err := w.notifier.Send(ctx, *sale.Client.Email, subject, body, path); err != nil {
		return fmt.Errorf("mail receipt: %w", err)
	}
	log.Info().Str("sale_id", payload.SaleID).Str("to", *sale.Client.Email).Msg("receipt_worker: receipt mailed")
	return nil
}

func shortID(id uuid.UUID) string { return id.String()[:8] }
