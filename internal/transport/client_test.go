package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crawlpage/crawlpage/internal/model"
)

// newTestClient builds a client with a tiny backoff suitable for tests.
func newTestClient(opts ...Option) *Client {
	base := []Option{
		WithRetryTotal(3),
		WithBackoffFactor(5 * time.Millisecond),
	}
	return New("crawlpage-test/1.0", 5*time.Second, append(base, opts...)...)
}

// TestFetchSuccess tests classification of a plain successful fetch.
func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "crawlpage-test/1.0" {
			t.Errorf("request missing identifying user agent, got %q", ua)
		}
		fmt.Fprint(w, "<html><body>page one</body></html>")
	}))
	defer srv.Close()

	outcome := newTestClient().Fetch(context.Background(), srv.URL)

	if outcome.Kind != model.OutcomeSuccess {
		t.Fatalf("expected success, got %s (err: %v)", outcome.Kind, outcome.Err)
	}
	if outcome.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", outcome.Attempts)
	}
	if string(outcome.Body) != "<html><body>page one</body></html>" {
		t.Errorf("unexpected body %q", outcome.Body)
	}
}

// TestFetchRetryBound tests that a persistent 503 consumes exactly the
// configured attempt total with strictly increasing backoff, then yields a
// fatal outcome.
func TestFetchRetryBound(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	factor := 20 * time.Millisecond
	client := newTestClient(WithBackoffFactor(factor))

	start := time.Now()
	outcome := client.Fetch(context.Background(), srv.URL)
	elapsed := time.Since(start)

	if outcome.Kind != model.OutcomeFatal {
		t.Fatalf("expected fatal after exhausted retries, got %s", outcome.Kind)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", got)
	}
	if outcome.Attempts != 3 {
		t.Errorf("expected outcome to record 3 attempts, got %d", outcome.Attempts)
	}
	// Backoff sequence is factor, 2*factor: the run cannot finish faster
	// than their sum.
	if minimum := 3 * factor; elapsed < minimum {
		t.Errorf("backoff too short: %v < %v", elapsed, minimum)
	}
}

// TestFetchRecoversAfterTransient tests that a transient failure followed
// by success yields the page.
func TestFetchRecoversAfterTransient(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "recovered")
	}))
	defer srv.Close()

	outcome := newTestClient().Fetch(context.Background(), srv.URL)

	if outcome.Kind != model.OutcomeSuccess {
		t.Fatalf("expected success after retry, got %s", outcome.Kind)
	}
	if outcome.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", outcome.Attempts)
	}
}

// TestFetchNotFound tests that a 404 is a terminal, non-error outcome.
func TestFetchNotFound(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	outcome := newTestClient().Fetch(context.Background(), srv.URL)

	if outcome.Kind != model.OutcomeNotFound {
		t.Fatalf("expected not_found, got %s", outcome.Kind)
	}
	if outcome.Err != nil {
		t.Errorf("404 must not carry an error, got %v", outcome.Err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("404 must not be retried, got %d attempts", got)
	}
}

// TestFetchBlocked tests that 429 and anti-bot bodies short-circuit retry.
func TestFetchBlocked(t *testing.T) {
	t.Parallel()

	t.Run("429 is blocked without retry", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		outcome := newTestClient().Fetch(context.Background(), srv.URL)

		if outcome.Kind != model.OutcomeBlocked {
			t.Fatalf("expected blocked, got %s", outcome.Kind)
		}
		if got := hits.Load(); got != 1 {
			t.Errorf("blocked response must not be retried, got %d attempts", got)
		}
	})

	t.Run("captcha body on 200 is blocked", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "<html>please solve the captcha below</html>")
		}))
		defer srv.Close()

		outcome := newTestClient().Fetch(context.Background(), srv.URL)
		if outcome.Kind != model.OutcomeBlocked {
			t.Fatalf("expected blocked, got %s", outcome.Kind)
		}
	})
}

// TestFetchFatalStatus tests that a non-retryable status fails immediately.
func TestFetchFatalStatus(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	outcome := newTestClient().Fetch(context.Background(), srv.URL)

	if outcome.Kind != model.OutcomeFatal {
		t.Fatalf("expected fatal, got %s", outcome.Kind)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("401 must not be retried, got %d attempts", got)
	}
}

// TestFetchConnectionError tests retry on connection-level failures.
func TestFetchConnectionError(t *testing.T) {
	t.Parallel()

	// Reserve a port and close the server so connections are refused.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	outcome := newTestClient().Fetch(context.Background(), url)

	if outcome.Kind != model.OutcomeFatal {
		t.Fatalf("expected fatal after connection retries, got %s", outcome.Kind)
	}
	if outcome.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", outcome.Attempts)
	}
	if outcome.Err == nil {
		t.Error("expected underlying cause, got nil")
	}
}

// TestFetchCancellation tests that backoff waits respect cancellation.
func TestFetchCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(WithBackoffFactor(10 * time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	outcome := client.Fetch(ctx, srv.URL)

	if outcome.Kind != model.OutcomeFatal {
		t.Fatalf("expected fatal on cancellation, got %s", outcome.Kind)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("cancellation did not interrupt backoff: %v", elapsed)
	}
}

// TestFetchBodyCap tests that oversized bodies are truncated, not fatal.
func TestFetchBodyCap(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		for range 1000 {
			fmt.Fprint(w, "0123456789")
		}
	}))
	defer srv.Close()

	client := newTestClient(WithMaxBodySize(100))
	outcome := client.Fetch(context.Background(), srv.URL)

	if outcome.Kind != model.OutcomeSuccess {
		t.Fatalf("expected success, got %s", outcome.Kind)
	}
	if len(outcome.Body) != 100 {
		t.Errorf("expected body capped at 100 bytes, got %d", len(outcome.Body))
	}
}
