package worker

import (
	"context"
	"encoding/json"

	"github.com/brehash/kscinventory-sub002/internal/service"

	"github.com/redis/go-redis/v9"
)

const (
	QueueWooStock       = "jobs:woo_stock"
	QueueWooOrderStatus = "jobs:woo_order_status"
	QueueEmail          = "jobs:email"
)

// Queues lists every queue the pool consumes, in BRPOP priority order.
var Queues = []string{QueueWooStock, QueueWooOrderStatus, QueueEmail}

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

type StockPushPayload struct {
	ProductID string `json:"product_id"`
}

type OrderStatusPayload struct {
	OrderID string `json:"order_id"`
}

type EmailPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

var _ service.JobDispatcher = (*Dispatcher)(nil)

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueStockPush schedules writing a product's quantity to WooCommerce.
func (d *Dispatcher) EnqueueStockPush(ctx context.Context, productID string) error {
	return d.enqueue(ctx, QueueWooStock, "woo_stock", StockPushPayload{ProductID: productID})
}

// EnqueueOrderStatusPush schedules writing an order's status to WooCommerce.
func (d *Dispatcher) EnqueueOrderStatusPush(ctx context.Context, orderID string) error {
	return d.enqueue(ctx, QueueWooOrderStatus, "woo_order_status", OrderStatusPayload{OrderID: orderID})
}

func (d *Dispatcher) EnqueueEmail(ctx context.Context, to []string, subject, body string) error {
	return d.enqueue(ctx, QueueEmail, "email", EmailPayload{To: to, Subject: subject, Body: body})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	encoded, err := encodeJob(jobType, payload)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

func encodeJob(jobType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Job{Type: jobType, Payload: data})
}
