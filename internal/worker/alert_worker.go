package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// AlertWorker mails low-stock notifications to the configured inbox.
type AlertWorker struct {
	notifier *Notifier
	to       string
}

func NewAlertWorker(notifier *Notifier, to string) *AlertWorker {
	return &AlertWorker{notifier: notifier, to: to}
}

func (w *AlertWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload LowStockJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return nil
	}

	logger := log.With().Str("product_id", payload.ProductID).Int("quantity", payload.Quantity).Logger()
	if w.to == "" || !w.notifier.Configured() {
		logger.Warn().Msg("alert_worker: low stock (no alert inbox configured)")
		return nil
	}

	sku := "-"
	if payload.SKU != nil {
		sku = *payload.SKU
	}
	subject := fmt.Sprintf("Low stock: %s", payload.Name)
	body := fmt.Sprintf("%s (SKU %s) is down to %d units; reorder threshold is %d.\n",
		payload.Name, sku, payload.Quantity, payload.Threshold)

	if err := w.notifier.Send(ctx, w.to, subject, body, ""); err != nil {
		return fmt.Errorf("mail alert: %w", err)
	}
	logger.Info().Msg("alert_worker: low-stock alert sent")
	return nil
}
