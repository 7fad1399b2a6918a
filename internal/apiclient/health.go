package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// Health probes the service once. Any 200 counts as healthy.
func (c *Client) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// WaitHealthy probes with exponential backoff until the service answers or
// the attempts are exhausted.
func (c *Client) WaitHealthy(ctx context.Context, attempts uint64) error {
	backoff := retry.WithMaxRetries(attempts, retry.NewExponential(500*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if c.Health(ctx) {
			return nil
		}
		return retry.RetryableError(fmt.Errorf("service not healthy at %s", c.baseURL))
	})
}
