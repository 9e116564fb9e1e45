package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/productintel-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func newTestClient(t *testing.T, baseURL string) Client {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", baseURL)
	t.Setenv("OPENAI_MAX_RETRIES", "1")
	t.Setenv("OPENAI_TIMEOUT_SECONDS", "2")
	c, err := NewClient(testLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestEmbedRequestShape(t *testing.T) {
	var captured embeddingsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Fatalf("path: got %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("authorization header: got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		resp := map[string]any{"data": []map[string]any{
			{"embedding": []float64{0.1, 0.2}, "index": 1},
			{"embedding": []float64{0.3, 0.4}, "index": 0},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	vecs, err := c.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if captured.Model != "text-embedding-3-small" {
		t.Fatalf("model: got %q", captured.Model)
	}
	if len(vecs) != 2 {
		t.Fatalf("vectors: got %d", len(vecs))
	}
	// Out-of-order response indices land at their declared positions.
	if vecs[0][0] != float32(0.3) || vecs[1][0] != float32(0.1) {
		t.Fatalf("vectors misplaced: %v", vecs)
	}
}

func TestEmbedWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	c, err := NewClient(testLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.Configured() {
		t.Fatal("Configured: want false")
	}
	if _, err := c.Embed(context.Background(), []string{"x"}); !errors.Is(err, ErrAPIKeyMissing) {
		t.Fatalf("want ErrAPIKeyMissing, got %v", err)
	}
	if _, err := c.GenerateText(context.Background(), "s", "u"); !errors.Is(err, ErrAPIKeyMissing) {
		t.Fatalf("want ErrAPIKeyMissing, got %v", err)
	}
}

func TestGenerateTextRetriesOn500(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		resp := map[string]any{"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": " the answer "}},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	got, err := c.GenerateText(context.Background(), "sys", "usr")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "the answer" {
		t.Fatalf("answer: got %q", got)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls: want 2 got %d", calls.Load())
	}
}

func TestGenerateTextDoesNotRetryOn400(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	if _, err := c.GenerateText(context.Background(), "sys", "usr"); err == nil {
		t.Fatal("want error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls: want 1 got %d", calls.Load())
	}
}

func TestGenerateTextHonorsContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.GenerateText(ctx, "sys", "usr")
	if err == nil {
		t.Fatal("want error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("did not fail within deadline: took %v", elapsed)
	}
}
