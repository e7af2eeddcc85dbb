// Package llm holds the domain.ChatModel implementations for the supported
// model providers.
package llm

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"quizgen/internal/domain"
)

const maxUpstreamErrorBody = 64 << 10

type captureKey struct{}

// upstreamCapture holds the first non-2xx response seen during one call.
type upstreamCapture struct {
	mu  sync.Mutex
	err *domain.DomainError
}

func (c *upstreamCapture) set(err *domain.DomainError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

func (c *upstreamCapture) get() *domain.DomainError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func withUpstreamCapture(ctx context.Context) (context.Context, *upstreamCapture) {
	c := &upstreamCapture{}
	return context.WithValue(ctx, captureKey{}, c), c
}

// upstreamDoer sits between a provider SDK and the network. It stamps the
// attribution headers and turns every non-2xx response into an UpstreamError
// carrying the status and body text, which the SDKs would otherwise reword.
type upstreamDoer struct {
	client  *http.Client
	headers map[string]string
}

func newUpstreamDoer(client *http.Client, headers map[string]string) *upstreamDoer {
	return &upstreamDoer{client: client, headers: headers}
}

func (d *upstreamDoer) Do(req *http.Request) (*http.Response, error) {
	for k, v := range d.headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamErrorBody))
	_ = resp.Body.Close()
	upErr := domain.NewUpstreamError(resp.StatusCode, strings.TrimSpace(string(body)))
	if c, ok := req.Context().Value(captureKey{}).(*upstreamCapture); ok {
		c.set(upErr)
	}
	return nil, upErr
}

// RoundTrip lets the doer serve SDKs that only accept an *http.Client.
func (d *upstreamDoer) RoundTrip(req *http.Request) (*http.Response, error) {
	return d.Do(req)
}
