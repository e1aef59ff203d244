package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/islandtune/internal/shared"
	"github.com/desertthunder/islandtune/internal/tasks"
	"github.com/desertthunder/islandtune/internal/tune"
	"gitlab.com/gomidi/midi/v2/smf"
)

func newTestRouter(t *testing.T, logs *bytes.Buffer) *MuxRouter {
	t.Helper()
	logger := shared.NewLogger(logs)

	r := NewMuxRouter()
	r.Use(Logging(logger), CORS())
	r.Handler(NewTuneHandler(tune.DefaultCatalog, tasks.RenderOpts{}, logger))
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMuxRouter(t *testing.T) {
	t.Run("middleware runs in the order added", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewMuxRouter()
		r.Use(mark("first"), mark("second"))
		r.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		rec := do(t, r, http.MethodGet, "/ping", "")
		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
		if strings.Join(order, ",") != "first,second" {
			t.Errorf("unexpected middleware order %v", order)
		}
	})

	t.Run("method mismatch", func(t *testing.T) {
		r := NewMuxRouter()
		r.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

		if rec := do(t, r, http.MethodPost, "/ping", ""); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("logs requests", func(t *testing.T) {
		var logs bytes.Buffer
		r := newTestRouter(t, &logs)
		do(t, r, http.MethodGet, "/health", "")

		if !strings.Contains(logs.String(), "/health") {
			t.Errorf("expected request log, got %q", logs.String())
		}
	})

	t.Run("CORS headers", func(t *testing.T) {
		r := newTestRouter(t, &bytes.Buffer{})
		req := httptest.NewRequest(http.MethodGet, "/api/tunes", nil)
		req.Header.Set("Origin", "http://example.com")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("expected wildcard origin, got %q", got)
		}
	})
}

func TestTuneHandler(t *testing.T) {
	r := newTestRouter(t, &bytes.Buffer{})

	t.Run("health", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/health", "")
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("list", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/api/tunes", "")
		tunes := decode[[]tuneJSON](t, rec)

		if len(tunes) != 10 {
			t.Fatalf("expected 10 tunes, got %d", len(tunes))
		}
		if tunes[9].Index != 10 || tunes[9].Name != "X Files" {
			t.Errorf("unexpected last tune %+v", tunes[9])
		}
	})

	t.Run("get by number", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/api/tunes/5", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		got := decode[tuneJSON](t, rec)
		if got.Name != "Mii" || len(got.Events) != 13 || !near(got.Length, 1.6) {
			t.Errorf("unexpected tune %+v", got)
		}
		if got.Events[0].Pitch != "G3" || got.Events[0].Key != 55 || !near(got.Events[0].Duration, 0.2) {
			t.Errorf("unexpected first event %+v", got.Events[0])
		}
	})

	t.Run("unknown tune", func(t *testing.T) {
		if rec := do(t, r, http.MethodGet, "/api/tunes/nope", ""); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("midi", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/api/tunes/Mii/midi", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "audio/midi" {
			t.Errorf("unexpected content type %q", ct)
		}
		if _, err := smf.ReadFrom(rec.Body); err != nil {
			t.Errorf("response is not a MIDI file: %v", err)
		}
	})

	t.Run("compile", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/api/compile", `{"notation":"c--x","duration":0.2}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		got := decode[tuneJSON](t, rec)
		if len(got.Events) != 2 || !near(got.Events[0].Duration, 0.6) || got.Events[1].Pitch != tune.RestLabel {
			t.Errorf("unexpected events %+v", got.Events)
		}
		if !near(got.Length, 0.8) {
			t.Errorf("expected 0.8s, got %v", got.Length)
		}
	})

	t.Run("compile errors", func(t *testing.T) {
		tc := []struct {
			name string
			body string
			code int
		}{
			{name: "invalid notation", body: `{"notation":"hello"}`, code: http.StatusUnprocessableEntity},
			{name: "bad json", body: `{`, code: http.StatusBadRequest},
			{name: "negative duration", body: `{"notation":"c","duration":-1}`, code: http.StatusBadRequest},
			{name: "duration above a minute", body: `{"notation":"c----------","duration":1000000000}`, code: http.StatusBadRequest},
			{name: "overflowing duration", body: `{"notation":"c","duration":1e30}`, code: http.StatusBadRequest},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				rec := do(t, r, http.MethodPost, "/api/compile", tt.body)
				if rec.Code != tt.code {
					t.Errorf("expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
				}
				if body := decode[map[string]string](t, rec); body["error"] == "" {
					t.Error("expected error message")
				}
			})
		}
	})
}

func TestServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), shared.NewLogger(&bytes.Buffer{}))
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
