package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brehash/kscinventory-sub002/internal/infra"

	"github.com/rs/zerolog/log"
)

// Sender delivers a message. *infra.Mailer implements it.
type Sender interface {
	Configured() bool
	Send(to []string, subject, body string, attachments ...infra.Attachment) error
}

var _ Sender = (*infra.Mailer)(nil)

// EmailWorker sends alert emails queued on QueueEmail.
type EmailWorker struct {
	mailer Sender
}

func NewEmailWorker(mailer Sender) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

func (w *EmailWorker) Handle(_ context.Context, raw json.RawMessage) error {
	var payload EmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(fmt.Errorf("email_worker: invalid payload: %w", err))
	}
	if len(payload.To) == 0 {
		log.Warn().Str("subject", payload.Subject).Msg("email_worker: no recipients, skipping")
		return nil
	}
	if !w.mailer.Configured() {
		log.Warn().Str("subject", payload.Subject).Msg("email_worker: SMTP not configured, dropping")
		return nil
	}
	if err := w.mailer.Send(payload.To, payload.Subject, payload.Body); err != nil {
		return fmt.Errorf("email_worker: %w", err)
	}
	log.Info().Strs("to", payload.To).Str("subject", payload.Subject).Msg("email_worker: sent")
	return nil
}
