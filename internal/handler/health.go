package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/brehash/kscinventory-sub002/internal/infra"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// HealthCheck pings one dependency; nil means reachable.
type HealthCheck func(ctx context.Context) error

// Health reports dependency status. Every check is required: any failure
// answers 503. The WooCommerce breaker is informational only, since the
// API keeps working while the shop is unreachable.
func Health(checks map[string]HealthCheck, wooBreaker *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		names := make([]string, 0, len(checks))
		results := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
			results = append(results, "")
		}

		var g errgroup.Group
		for i, name := range names {
			i, check := i, checks[name]
			g.Go(func() error {
				results[i] = "connected"
				if err := check(ctx); err != nil {
					results[i] = "error"
				}
				return nil
			})
		}
		_ = g.Wait()

		body := gin.H{}
		status := http.StatusOK
		for i, name := range names {
			body[name] = results[i]
			if results[i] != "connected" {
				status = http.StatusServiceUnavailable
			}
		}
		body["ok"] = status == http.StatusOK
		if wooBreaker != nil {
			body["woocommerce"] = wooBreaker.State().String()
		} else {
			body["woocommerce"] = "disabled"
		}
		c.JSON(status, body)
	}
}
