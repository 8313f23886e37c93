package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/relaydocs/relaygw/internal/ratelimit/store"
)

// ErrStoreUnavailable is reported when the counter store cannot be reached.
var ErrStoreUnavailable = errors.New("counter store unavailable, using local fallback")

// CounterStoreCheck probes the shared counter store. It is non-critical:
// rate limiting and lockout fall back to local state.
func CounterStoreCheck(source store.Source) Check {
	return Check{
		Name: "counter_store",
		Probe: func(ctx context.Context) error {
			s, ok := source.Store(ctx)
			if !ok {
				return ErrStoreUnavailable
			}
			if err := s.Ping(ctx); err != nil {
				return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
			}
			return nil
		},
	}
}

// HTTPCheck expects a 2xx from GET url.
func HTTPCheck(name, url string, client *http.Client, critical bool) Check {
	if client == nil {
		client = http.DefaultClient
	}

	return Check{
		Name:     name,
		Critical: critical,
		Probe: func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return fmt.Errorf("building request: %w", err)
			}

			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				return fmt.Errorf("unexpected status %d", resp.StatusCode)
			}
			return nil
		},
	}
}
