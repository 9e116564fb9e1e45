package retriever

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/productintel-backend/internal/catalog"
	"github.com/yungbote/productintel-backend/internal/chunkindex"
	"github.com/yungbote/productintel-backend/internal/domain"
	"github.com/yungbote/productintel-backend/internal/platform/apierr"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
)

// Embedder turns a question into a query vector. The OpenAI client
// satisfies it directly.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

type Service struct {
	log   *logger.Logger
	cat   *catalog.Catalog
	index *chunkindex.Index
	embed Embedder
	topK  int
}

func NewService(log *logger.Logger, cat *catalog.Catalog, index *chunkindex.Index, embed Embedder, topK int) (*Service, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cat == nil || index == nil {
		return nil, fmt.Errorf("catalog and index required")
	}
	if embed == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if topK <= 0 {
		topK = 5
	}
	return &Service{
		log:   log.With("service", "Retriever"),
		cat:   cat,
		index: index,
		embed: embed,
		topK:  topK,
	}, nil
}

// Retrieve returns the passages most similar to the question, scoped to one
// product. The product is validated before any embedding call is made.
func (s *Service) Retrieve(ctx context.Context, productID, question string) ([]domain.RetrievedPassage, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, apierr.InvalidInput("product_id is required", nil)
	}
	if !s.cat.Has(productID) {
		return nil, apierr.NotFound(fmt.Sprintf("unknown product: %s", productID), nil)
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apierr.InvalidInput("question is required", nil)
	}

	if s.index.CountFor(productID) == 0 {
		s.log.Info("No indexed documentation for product", "product_id", productID)
		return []domain.RetrievedPassage{}, nil
	}

	vecs, err := s.embed.Embed(ctx, []string{question})
	if err != nil {
		return nil, apierr.UpstreamUnavailable("embedding service unavailable", err)
	}
	if len(vecs) != 1 {
		return nil, apierr.UpstreamUnavailable("embedding service returned unexpected result", nil)
	}
	query := vecs[0]
	chunkindex.NormalizeVector(query)

	if s.index.Dimension() != 0 && len(query) != s.index.Dimension() {
		return nil, apierr.UpstreamUnavailable("embedding dimension mismatch with index", nil)
	}

	hits := s.index.Search(productID, query, s.topK)
	passages := make([]domain.RetrievedPassage, 0, len(hits))
	for _, h := range hits {
		passages = append(passages, domain.RetrievedPassage{
			Text:   h.Text,
			Source: h.Source,
			Score:  h.Score,
		})
	}
	s.log.Debug("Retrieved passages", "product_id", productID, "count", len(passages))
	return passages, nil
}
