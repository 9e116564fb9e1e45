package handlers

import (
	"context"

	"github.com/yungbote/productintel-backend/internal/domain"
)

// Service dependencies are consumed through narrow interfaces so handler
// tests can run against in-memory fakes.

type OCRService interface {
	ExtractText(ctx context.Context, img []byte, mimeType string) (string, error)
}

type MatcherService interface {
	Match(ocrText string, topK int) []domain.MatchCandidate
}

type RetrieverService interface {
	Retrieve(ctx context.Context, productID, question string) ([]domain.RetrievedPassage, error)
}

type ComposerService interface {
	Compose(ctx context.Context, question string, passages []domain.RetrievedPassage, useExternalLLM bool) (*domain.AnswerResult, error)
}

type AnswerCache interface {
	Get(ctx context.Context, productID, question string) (*domain.AnswerResult, bool)
	Set(ctx context.Context, productID, question string, result *domain.AnswerResult)
}

type RecognitionResponse struct {
	Candidates    []domain.MatchCandidate `json:"candidates"`
	BestProductID *string                 `json:"best_product_id"`
}

type CombinedResponse struct {
	Recognition RecognitionResponse  `json:"recognition"`
	Answer      *domain.AnswerResult `json:"answer"`
}
