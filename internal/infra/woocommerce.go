package infra

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrWooNotFound is returned when the shop answers 404 for a resource.
var ErrWooNotFound = errors.New("woocommerce: resource not found")

// WooAPIError carries a non-2xx answer from the shop.
type WooAPIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *WooAPIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("woocommerce: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("woocommerce: unexpected status %d", e.Status)
}

// Timestamps in *_gmt fields come without a zone designator.
const wooTimeLayout = "2006-01-02T15:04:05"

// ParseWooTime parses a *_gmt timestamp as UTC. Empty input yields the zero time.
func ParseWooTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(wooTimeLayout, s, time.UTC)
}

type WooAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type WooLineItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	ProductID   int64   `json:"product_id"`
	VariationID int64   `json:"variation_id"`
	Quantity    int     `json:"quantity"`
	SKU         string  `json:"sku"`
	Price       float64 `json:"price"`
	Subtotal    string  `json:"subtotal"`
	Total       string  `json:"total"`
}

// WooOrder is the subset of the /orders resource the sync reads. Money fields
// are decimal strings as sent by the shop.
type WooOrder struct {
	ID                 int64         `json:"id"`
	Number             string        `json:"number"`
	Status             string        `json:"status"`
	Currency           string        `json:"currency"`
	DateCreatedGMT     string        `json:"date_created_gmt"`
	DateModifiedGMT    string        `json:"date_modified_gmt"`
	DateCompletedGMT   string        `json:"date_completed_gmt"`
	DiscountTotal      string        `json:"discount_total"`
	ShippingTotal      string        `json:"shipping_total"`
	TotalTax           string        `json:"total_tax"`
	Total              string        `json:"total"`
	PaymentMethodTitle string        `json:"payment_method_title"`
	CustomerNote       string        `json:"customer_note"`
	Billing            WooAddress    `json:"billing"`
	Shipping           WooAddress    `json:"shipping"`
	LineItems          []WooLineItem `json:"line_items"`
}

type WooProduct struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	Status        string `json:"status"`
	Price         string `json:"price"`
	RegularPrice  string `json:"regular_price"`
	ManageStock   bool   `json:"manage_stock"`
	StockQuantity *int   `json:"stock_quantity"`
}

// WooOrderQuery filters ListOrders. A nil ModifiedAfter lists everything.
type WooOrderQuery struct {
	ModifiedAfter *time.Time
	Page          int
	PerPage       int
}

// WooClient talks to the WooCommerce REST API v3 using consumer key/secret
// basic auth. Every call goes through the circuit breaker.
type WooClient struct {
	baseURL    string
	key        string
	secret     string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewWooClient(baseURL, key, secret string, cb *CircuitBreaker) *WooClient {
	if cb == nil {
		cb = NewCircuitBreaker(DefaultCBConfig("woocommerce"))
	}
	return &WooClient{
		baseURL:    strings.TrimRight(baseURL, "/") + "/wp-json/wc/v3",
		key:        key,
		secret:     secret,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cb:         cb,
	}
}

// Breaker exposes the client's circuit breaker for health reporting.
func (c *WooClient) Breaker() *CircuitBreaker { return c.cb }

// ListOrders returns one page of orders, oldest modification first, together
// with the total page count reported by the shop.
func (c *WooClient) ListOrders(ctx context.Context, q WooOrderQuery) ([]WooOrder, int, error) {
	params := pageParams(q.Page, q.PerPage)
	params.Set("orderby", "modified")
	params.Set("order", "asc")
	if q.ModifiedAfter != nil {
		params.Set("modified_after", q.ModifiedAfter.UTC().Format(wooTimeLayout))
		params.Set("dates_are_gmt", "true")
	}

	var orders []WooOrder
	hdr, err := c.do(ctx, http.MethodGet, "/orders", params, nil, &orders)
	if err != nil {
		return nil, 0, err
	}
	return orders, totalPages(hdr), nil
}

func (c *WooClient) GetOrder(ctx context.Context, id int64) (*WooOrder, error) {
	var o WooOrder
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *WooClient) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	body := map[string]string{"status": status}
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", id), nil, body, nil)
	return err
}

// ListProducts returns one page of products and the total page count.
func (c *WooClient) ListProducts(ctx context.Context, page, perPage int) ([]WooProduct, int, error) {
	var products []WooProduct
	hdr, err := c.do(ctx, http.MethodGet, "/products", pageParams(page, perPage), nil, &products)
	if err != nil {
		return nil, 0, err
	}
	return products, totalPages(hdr), nil
}

// UpdateProductStock sets the shop's stock level and turns on stock management.
func (c *WooClient) UpdateProductStock(ctx context.Context, id int64, qty int) error {
	body := map[string]any{"manage_stock": true, "stock_quantity": qty}
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), nil, body, nil)
	return err
}

func (c *WooClient) do(ctx context.Context, method, path string, params url.Values, in, out any) (http.Header, error) {
	var hdr http.Header
	err := c.cb.Execute(func() error {
		var body io.Reader
		if in != nil {
			b, err := json.Marshal(in)
			if err != nil {
				return fmt.Errorf("woocommerce: marshal body: %w", err)
			}
			body = bytes.NewReader(b)
		}

		u := c.baseURL + path
		if len(params) > 0 {
			u += "?" + params.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, method, u, body)
		if err != nil {
			return fmt.Errorf("woocommerce: create request: %w", err)
		}
		req.SetBasicAuth(c.key, c.secret)
		req.Header.Set("Accept", "application/json")
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("woocommerce: request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return ErrWooNotFound
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			apiErr := &WooAPIError{Status: resp.StatusCode}
			_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(apiErr)
			return apiErr
		}

		hdr = resp.Header
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("woocommerce: decode response: %w", err)
		}
		return nil
	}, isClientError)
	return hdr, err
}

// isClientError keeps 4xx answers (bad id, validation) from tripping the breaker.
// 429 is the shop asking us to back off, so it does count.
func isClientError(err error) bool {
	if errors.Is(err, ErrWooNotFound) {
		return true
	}
	var apiErr *WooAPIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 400 && apiErr.Status < 500 && apiErr.Status != http.StatusTooManyRequests
	}
	return false
}

func pageParams(page, perPage int) url.Values {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 100
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("per_page", strconv.Itoa(perPage))
	return v
}

func totalPages(h http.Header) int {
	n, err := strconv.Atoi(h.Get("X-WP-TotalPages"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// VerifyWooSignature checks the X-WC-Webhook-Signature header: base64 of the
// HMAC-SHA256 of the raw body keyed with the webhook secret.
func VerifyWooSignature(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
