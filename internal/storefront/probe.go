package storefront

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Probe checks backend reachability with an unauthenticated GET on the API
// origin. Any HTTP response within the probe timeout counts as reachable.
func (c *Client) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.probe.R().SetContext(ctx).Execute(http.MethodGet, c.origin)
	c.metrics.ObserveProbe(err == nil)
	if err != nil {
		c.logger.Warn("backend health check failed", zap.String("url", c.origin), zap.Error(err))
		return &NetworkError{Method: http.MethodGet, Path: c.origin, Err: err}
	}
	c.logger.Debug("backend health check",
		zap.Int("status", resp.StatusCode()), zap.Duration("took", time.Since(start)))
	return nil
}
