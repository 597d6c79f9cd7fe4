package httpload

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// NewWorkerClient creates a client with its own connection pool. Each worker
// owns one so keep-alive connections are reused across its own attempts and
// never shared with other workers.
func NewWorkerClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        4,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     120 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true,
	}
	// Per-attempt timeouts come from the request context
	return &http.Client{Transport: transport}
}

// CloseIdle releases the idle connections of a worker client
func CloseIdle(client Doer) {
	if c, ok := client.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}

// WaitForReady polls url until it answers with any HTTP status or the timeout
// expires. Used while freshly started target containers boot.
func WaitForReady(ctx context.Context, url string, timeout time.Duration) error {
	client := NewWorkerClient()
	defer client.CloseIdleConnections()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		reqCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
		if err != nil {
			cancel()
			return fmt.Errorf("build readiness request: %w", err)
		}
		resp, err := client.Do(req)
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			cancel()
			return nil
		}
		cancel()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}

	return fmt.Errorf("timeout waiting for %s after %v", url, timeout)
}
