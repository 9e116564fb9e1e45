package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/productintel-backend/internal/domain"
	"github.com/yungbote/productintel-backend/internal/platform/apierr"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
	"github.com/yungbote/productintel-backend/internal/platform/openai"
)

const (
	systemPrompt = "You are a technical product expert. " +
		"Answer questions using ONLY the information provided in the context below.\n\n" +
		"Critical Rules:\n" +
		"1. Quote exact specifications with proper units (mAh, inches, GB, cores, Hz, nits)\n" +
		"2. If the context doesn't contain the answer, respond: 'This information is not specified in the documentation'\n" +
		"3. Never make assumptions, estimates, or use external knowledge\n" +
		"4. For numerical specs, use the exact values from the context\n" +
		"5. Keep answers concise but complete - include all relevant details from context\n" +
		"6. If multiple variants exist, clarify which one you're describing\n\n" +
		"Format your answer clearly and professionally."

	// Returned verbatim when retrieval produced nothing usable.
	NoRelevantInformation = "No relevant information found in the product documentation."

	excerptLimit = 300
)

// Generator abstracts the LLM call so tests can run without a live API.
// The OpenAI client satisfies it directly.
type Generator interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type Service struct {
	log     *logger.Logger
	llm     Generator
	timeout time.Duration
}

func NewService(log *logger.Logger, llm Generator, timeout time.Duration) (*Service, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if llm == nil {
		return nil, fmt.Errorf("generator required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{log: log.With("service", "AnswerComposer"), llm: llm, timeout: timeout}, nil
}

// Compose synthesizes an answer from the retrieved passages. With
// useExternalLLM false it returns an excerpt of the best passage instead of
// calling out. ContextSources preserves first-seen passage order.
func (s *Service) Compose(ctx context.Context, question string, passages []domain.RetrievedPassage, useExternalLLM bool) (*domain.AnswerResult, error) {
	if len(passages) == 0 {
		return &domain.AnswerResult{
			Answer:         NoRelevantInformation,
			ContextSources: []string{},
		}, nil
	}

	sources := dedupeSources(passages)

	if !useExternalLLM {
		return &domain.AnswerResult{
			Answer:         "Based on the documentation: " + excerpt(passages[0].Text),
			ContextSources: sources,
		}, nil
	}

	var b strings.Builder
	b.WriteString("Context:\n")
	for i, p := range passages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.Text)
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.llm.GenerateText(callCtx, systemPrompt, b.String())
	if err != nil {
		if errors.Is(err, openai.ErrAPIKeyMissing) {
			return nil, apierr.ConfigurationError("answer generation is not configured", err)
		}
		s.log.Error("Answer generation failed", "error", err)
		return nil, apierr.UpstreamUnavailable("answer generation unavailable", err)
	}

	return &domain.AnswerResult{
		Answer:         text,
		ContextSources: sources,
	}, nil
}

func dedupeSources(passages []domain.RetrievedPassage) []string {
	seen := make(map[string]struct{}, len(passages))
	sources := make([]string, 0, len(passages))
	for _, p := range passages {
		if _, ok := seen[p.Source]; ok {
			continue
		}
		seen[p.Source] = struct{}{}
		sources = append(sources, p.Source)
	}
	return sources
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptLimit {
		return text
	}
	return string(runes[:excerptLimit]) + "..."
}
