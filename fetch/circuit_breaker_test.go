package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := NewFetcher(
		WithHTTPClient(server.Client()),
		WithMaxRetries(0),
		WithBaseDelay(time.Millisecond),
	)
	cbf := NewCircuitBreakerFetcher(f)

	// Trip threshold is 5 consecutive failures.
	for i := 0; i < 5; i++ {
		if _, err := cbf.Fetch(context.Background(), server.URL+"/test.crate"); err == nil {
			t.Fatal("expected upstream failure")
		}
	}

	_, err := cbf.Fetch(context.Background(), server.URL+"/test.crate")
	if !errors.Is(err, ErrUpstreamDown) {
		t.Fatalf("Fetch error = %v, want open-circuit ErrUpstreamDown", err)
	}

	states := cbf.BreakerStates()
	host := hostOf(t, server.URL)
	if states[host] != "open" {
		t.Errorf("breaker state = %q, want open", states[host])
	}
}

func TestCircuitBreakerPassesSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	cbf := NewCircuitBreakerFetcher(NewFetcher(WithHTTPClient(server.Client())))
	artifact, err := cbf.Fetch(context.Background(), server.URL+"/test.crate")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	_ = artifact.Body.Close()

	states := cbf.BreakerStates()
	host := hostOf(t, server.URL)
	if states[host] != "closed" {
		t.Errorf("breaker state = %q, want closed", states[host])
	}
}

func hostOf(t *testing.T, rawURL string) string {
	t.Helper()
	return extractRegistry(rawURL)
}

func TestHeadCircuitBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "7")
	}))
	defer server.Close()

	cbf := NewCircuitBreakerFetcher(NewFetcher(WithHTTPClient(server.Client())))
	size, _, err := cbf.Head(context.Background(), server.URL+"/test.crate")
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if size != 7 {
		t.Errorf("size = %d, want 7", size)
	}
}
