package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/brehash/kscinventory-sub002/internal/service"

	"github.com/rs/zerolog/log"
)

// WooPusher is the part of service.SyncService the push worker needs.
type WooPusher interface {
	PushStock(ctx context.Context, productID string) error
	PushOrderStatus(ctx context.Context, orderID string) error
}

var _ WooPusher = (service.SyncService)(nil)

// WooWorker writes local changes back to WooCommerce.
type WooWorker struct {
	sync WooPusher
}

func NewWooWorker(sync WooPusher) *WooWorker {
	return &WooWorker{sync: sync}
}

func (w *WooWorker) HandleStock(ctx context.Context, raw json.RawMessage) error {
	var p StockPushPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.ProductID == "" {
		return Permanent(fmt.Errorf("woo_worker: invalid stock payload: %s", raw))
	}
	return classify(w.sync.PushStock(ctx, p.ProductID), "product", p.ProductID)
}

func (w *WooWorker) HandleOrderStatus(ctx context.Context, raw json.RawMessage) error {
	var p OrderStatusPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.OrderID == "" {
		return Permanent(fmt.Errorf("woo_worker: invalid order payload: %s", raw))
	}
	return classify(w.sync.PushOrderStatus(ctx, p.OrderID), "order", p.OrderID)
}

// classify drops pushes that can never succeed. Everything else, including
// an open circuit breaker, is retried.
func classify(err error, what, id string) error {
	switch {
	case err == nil:
		log.Debug().Str(what, id).Msg("woo_worker: pushed")
		return nil
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrWooNotLinked),
		errors.Is(err, service.ErrWooNotConfigured):
		log.Info().Err(err).Str(what, id).Msg("woo_worker: push skipped")
		return nil
	default:
		return err
	}
}
