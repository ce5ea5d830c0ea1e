package worker

import (
	"context"
	"time"

	"shopinventory/internal/infra"

	"github.com/rs/zerolog/log"
)

// MailSender is satisfied by *infra.Mailer.
type MailSender interface {
	Configured() bool
	Send(to, subject, body, attachmentPath string) error
}

// Notifier sends mail through a circuit breaker with bounded retries.
// Receipt and alert workers share one Notifier so they trip the same breaker.
type Notifier struct {
	mailer      MailSender
	cb          *infra.CircuitBreaker
	maxAttempts int
	backoff     time.Duration
}

func NewNotifier(mailer MailSender, cb *infra.CircuitBreaker) *Notifier {
	return &Notifier{mailer: mailer, cb: cb, maxAttempts: 3, backoff: time.Second}
}

// Configured reports whether mail can be sent at all.
func (n *Notifier) Configured() bool { return n.mailer != nil && n.mailer.Configured() }

// Breaker exposes the breaker so the DLQ replay loop can respect it.
func (n *Notifier) Breaker() *infra.CircuitBreaker { return n.cb }

func (n *Notifier) Send(ctx context.Context, to, subject, body, attachmentPath string) error {
	return withRetry(ctx, n.maxAttempts, n.backoff, func(attempt int) error {
		err := n.cb.Execute(func() error {
			return n.mailer.Send(to, subject, body, attachmentPath)
		})
		if err != nil {
			log.Warn().Err(err).Str("to", to).Int("attempt", attempt).Msg("mail: send failed")
		}
		return err
	})
}
