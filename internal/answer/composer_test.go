package answer

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/productintel-backend/internal/domain"
	"github.com/yungbote/productintel-backend/internal/platform/apierr"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
	"github.com/yungbote/productintel-backend/internal/platform/openai"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

type stubGenerator struct {
	reply      string
	err        error
	lastSystem string
	lastUser   string
	calls      int
}

func (s *stubGenerator) GenerateText(_ context.Context, system string, user string) (string, error) {
	s.calls++
	s.lastSystem = system
	s.lastUser = user
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newService(t *testing.T, gen Generator) *Service {
	t.Helper()
	svc, err := NewService(testLogger(t), gen, 5*time.Second)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return svc
}

func passages() []domain.RetrievedPassage {
	return []domain.RetrievedPassage{
		{Text: "The battery is rated at 4422 mAh.", Source: "specs.txt", Score: 0.91},
		{Text: "Charging uses USB-C at up to 27W.", Source: "manual.txt", Score: 0.84},
		{Text: "The battery supports fast charging.", Source: "specs.txt", Score: 0.77},
	}
}

func TestComposeBuildsGroundedPrompt(t *testing.T) {
	gen := &stubGenerator{reply: "The battery is rated at 4422 mAh."}
	svc := newService(t, gen)

	got, err := svc.Compose(context.Background(), "what is the battery capacity?", passages(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Answer != gen.reply {
		t.Fatalf("want=%q got=%q", gen.reply, got.Answer)
	}
	if !strings.Contains(gen.lastSystem, "ONLY the information provided in the context") {
		t.Fatalf("system prompt missing grounding instruction: %q", gen.lastSystem)
	}
	if !strings.HasPrefix(gen.lastUser, "Context:\n") {
		t.Fatalf("user prompt does not start with context block: %q", gen.lastUser)
	}
	if !strings.Contains(gen.lastUser, "Question: what is the battery capacity?") {
		t.Fatalf("user prompt missing question: %q", gen.lastUser)
	}
	for _, p := range passages() {
		if !strings.Contains(gen.lastUser, p.Text) {
			t.Fatalf("user prompt missing passage %q", p.Text)
		}
	}
}

func TestComposeDedupesSourcesInOrder(t *testing.T) {
	svc := newService(t, &stubGenerator{reply: "ok"})

	got, err := svc.Compose(context.Background(), "q", passages(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"specs.txt", "manual.txt"}
	if len(got.ContextSources) != len(want) {
		t.Fatalf("want=%v got=%v", want, got.ContextSources)
	}
	for i := range want {
		if got.ContextSources[i] != want[i] {
			t.Fatalf("want=%v got=%v", want, got.ContextSources)
		}
	}
}

func TestComposeNoPassages(t *testing.T) {
	gen := &stubGenerator{reply: "should not be used"}
	svc := newService(t, gen)

	got, err := svc.Compose(context.Background(), "q", nil, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Answer != NoRelevantInformation {
		t.Fatalf("want=%q got=%q", NoRelevantInformation, got.Answer)
	}
	if len(got.ContextSources) != 0 {
		t.Fatalf("want no sources got=%v", got.ContextSources)
	}
	if gen.calls != 0 {
		t.Fatalf("generator called with no passages: calls=%d", gen.calls)
	}
}

func TestComposeExtractiveFallback(t *testing.T) {
	gen := &stubGenerator{reply: "should not be used"}
	svc := newService(t, gen)

	long := strings.Repeat("battery ", 60)
	ps := []domain.RetrievedPassage{{Text: long, Source: "specs.txt", Score: 0.9}}

	got, err := svc.Compose(context.Background(), "q", ps, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got.Answer, "Based on the documentation: ") {
		t.Fatalf("fallback answer missing prefix: %q", got.Answer)
	}
	if !strings.HasSuffix(got.Answer, "...") {
		t.Fatalf("long excerpt not truncated: %q", got.Answer)
	}
	if gen.calls != 0 {
		t.Fatalf("generator called in fallback mode: calls=%d", gen.calls)
	}
}

func TestComposeMissingAPIKey(t *testing.T) {
	svc := newService(t, &stubGenerator{err: openai.ErrAPIKeyMissing})

	_, err := svc.Compose(context.Background(), "q", passages(), true)
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusServiceUnavailable {
		t.Fatalf("want 503 apierr got=%v", err)
	}
}

func TestComposeUpstreamFailure(t *testing.T) {
	svc := newService(t, &stubGenerator{err: errors.New("boom")})

	_, err := svc.Compose(context.Background(), "q", passages(), true)
	ae := apierr.From(err)
	if ae == nil || ae.Status != http.StatusBadGateway {
		t.Fatalf("want 502 apierr got=%v", err)
	}
}
