package translate_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/JustinDev-afk/languagebridge/speech"
	"github.com/JustinDev-afk/languagebridge/translate"
)

type serverRequest struct {
	Text string `json:"text"`
	From string `json:"from"`
	To   string `json:"to"`
}

func newTranslateServer(t *testing.T, status int, translation string) (*httptest.Server, *int64) {
	t.Helper()
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		var req serverRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"translation": translation})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(srv *httptest.Server) *translate.Client {
	return translate.NewClient(translate.Options{
		Endpoint:          srv.URL,
		Key:               "test-key",
		CacheSize:         100,
		RequestsPerSecond: 1000,
	})
}

func TestTranslateSuccess(t *testing.T) {
	srv, _ := newTranslateServer(t, http.StatusOK, "سلام")
	c := newTestClient(srv)

	got, err := c.Translate(context.Background(), "hello", "en", "fa")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "سلام" {
		t.Errorf("Translate() = %q, want the remote translation", got)
	}
}

func TestTranslateSameLanguageSkipsBackend(t *testing.T) {
	srv, calls := newTranslateServer(t, http.StatusOK, "unused")
	c := newTestClient(srv)

	got, err := c.Translate(context.Background(), "hello", "en", "en")
	if err != nil || got != "hello" {
		t.Fatalf("Translate(same lang) = %q, %v", got, err)
	}
	if atomic.LoadInt64(calls) != 0 {
		t.Error("same-language translation hit the backend")
	}
}

func TestTranslateEmptyTextSkipsBackend(t *testing.T) {
	srv, calls := newTranslateServer(t, http.StatusOK, "unused")
	c := newTestClient(srv)

	for _, text := range []string{"", "   "} {
		got, err := c.Translate(context.Background(), text, "en", "fa")
		if err != nil || got != text {
			t.Fatalf("Translate(%q) = %q, %v", text, got, err)
		}
	}
	if atomic.LoadInt64(calls) != 0 {
		t.Error("blank translation hit the backend")
	}
}

func TestTranslateCachesResults(t *testing.T) {
	srv, calls := newTranslateServer(t, http.StatusOK, "سلام")
	c := newTestClient(srv)

	for i := 0; i < 3; i++ {
		if _, err := c.Translate(context.Background(), "hello", "en", "fa"); err != nil {
			t.Fatalf("Translate() error = %v", err)
		}
	}
	if got := atomic.LoadInt64(calls); got != 1 {
		t.Errorf("backend called %d times, want 1", got)
	}
	if hits, _ := c.Cache().Stats(); hits != 2 {
		t.Errorf("cache hits = %d, want 2", hits)
	}
}

func TestTranslateDegradesOnServerError(t *testing.T) {
	srv, _ := newTranslateServer(t, http.StatusInternalServerError, "")
	c := newTestClient(srv)

	var mu sync.Mutex
	var faults []speech.Fault
	c.OnFault(func(f speech.Fault) {
		mu.Lock()
		faults = append(faults, f)
		mu.Unlock()
	})

	got, err := c.Translate(context.Background(), "hello", "en", "fa")
	if err != nil {
		t.Fatalf("Translate() error = %v, want nil (degraded)", err)
	}
	if got != "hello" {
		t.Errorf("Translate() = %q, want the original text back", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(faults) != 1 || faults[0].Kind != speech.FaultTranslationFailed {
		t.Errorf("faults = %+v, want one translation failure", faults)
	}
}

func TestTranslateDegradesOnUnreachableBackend(t *testing.T) {
	srv, _ := newTranslateServer(t, http.StatusOK, "unused")
	srv.Close()
	c := newTestClient(srv)

	got, err := c.Translate(context.Background(), "hello", "en", "fa")
	if err != nil || got != "hello" {
		t.Fatalf("Translate() = %q, %v, want hello, nil", got, err)
	}
}

func TestTranslateClassifiesServiceFaults(t *testing.T) {
	tests := []struct {
		status int
		kind   speech.FaultKind
	}{
		{http.StatusUnauthorized, speech.FaultInvalidCredential},
		{http.StatusForbidden, speech.FaultSessionExpired},
		{http.StatusTooManyRequests, speech.FaultQuotaExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			srv, _ := newTranslateServer(t, tt.status, "")
			c := newTestClient(srv)

			var mu sync.Mutex
			var faults []speech.Fault
			c.OnFault(func(f speech.Fault) {
				mu.Lock()
				faults = append(faults, f)
				mu.Unlock()
			})

			got, err := c.Translate(context.Background(), "hello", "en", "fa")
			if err != nil || got != "hello" {
				t.Fatalf("Translate() = %q, %v, want degraded original", got, err)
			}

			mu.Lock()
			defer mu.Unlock()
			if len(faults) != 1 {
				t.Fatalf("got %d faults, want 1", len(faults))
			}
			if faults[0].Kind != tt.kind {
				t.Errorf("fault kind = %v, want %v", faults[0].Kind, tt.kind)
			}
			if !errors.Is(faults[0].Err, tt.kind.Sentinel()) {
				t.Errorf("fault error %v does not match sentinel", faults[0].Err)
			}
		})
	}
}

func TestTranslateContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-block
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})
	c := newTestClient(srv)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var got string
	var err error
	go func() {
		defer close(done)
		got, err = c.Translate(ctx, "hello", "en", "fa")
	}()
	cancel()
	<-done

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Translate() error = %v, want context.Canceled", err)
	}
	if got != "" {
		t.Errorf("aborted translation returned %q, want empty", got)
	}
}

func TestTranslateFailureNotCached(t *testing.T) {
	var status int64 = http.StatusInternalServerError
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&calls, 1)
		if s := atomic.LoadInt64(&status); s != http.StatusOK {
			w.WriteHeader(int(s))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"translation": "سلام"})
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(srv)

	if got, _ := c.Translate(context.Background(), "hello", "en", "fa"); got != "hello" {
		t.Fatalf("first call = %q, want degraded original", got)
	}

	// Degraded results must not poison the cache; once the backend
	// recovers the next call should succeed remotely.
	atomic.StoreInt64(&status, http.StatusOK)
	got, err := c.Translate(context.Background(), "hello", "en", "fa")
	if err != nil || got != "سلام" {
		t.Fatalf("second call = %q, %v, want the real translation", got, err)
	}
	if atomic.LoadInt64(&calls) != 2 {
		t.Errorf("backend calls = %d, want 2", atomic.LoadInt64(&calls))
	}
}
