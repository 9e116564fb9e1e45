package app

import (
	"context"
	"fmt"

	"github.com/yungbote/productintel-backend/internal/answer"
	"github.com/yungbote/productintel-backend/internal/catalog"
	"github.com/yungbote/productintel-backend/internal/chunkindex"
	"github.com/yungbote/productintel-backend/internal/domain"
	"github.com/yungbote/productintel-backend/internal/matcher"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
	"github.com/yungbote/productintel-backend/internal/retriever"
)

type Services struct {
	Catalog   *catalog.Catalog
	Matcher   *matcher.Service
	Index     *chunkindex.Index
	Retriever *retriever.Service
	Composer  *answer.Service
}

// wireServices loads the catalog and chunk index into memory once at startup.
// The catalog must exist before the index: index rows are validated against
// catalog membership.
func wireServices(log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")
	ctx := context.Background()

	rows, err := reposet.Product.ListAll(ctx, nil)
	if err != nil {
		return Services{}, fmt.Errorf("load products: %w", err)
	}
	if len(rows) == 0 {
		return Services{}, fmt.Errorf("product catalog is empty, run buildindex first")
	}
	cat, err := catalog.New(derefProducts(rows))
	if err != nil {
		return Services{}, fmt.Errorf("build catalog: %w", err)
	}

	matchSvc, err := matcher.NewService(log, cat, matcher.Config{
		Weights:       cfg.Weights,
		MinConfidence: cfg.MinConfidence,
		TopK:          cfg.TopKMatches,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init matcher: %w", err)
	}

	chunkRows, err := reposet.ProductChunk.ListAll(ctx, nil)
	if err != nil {
		return Services{}, fmt.Errorf("load chunks: %w", err)
	}
	index, err := chunkindex.New(log, cat, derefChunks(chunkRows))
	if err != nil {
		return Services{}, fmt.Errorf("build chunk index: %w", err)
	}

	retrSvc, err := retriever.NewService(log, cat, index, clients.Openai, cfg.TopKRetrieval)
	if err != nil {
		return Services{}, fmt.Errorf("init retriever: %w", err)
	}

	composer, err := answer.NewService(log, clients.Openai, cfg.AnswerTimeout)
	if err != nil {
		return Services{}, fmt.Errorf("init answer composer: %w", err)
	}

	log.Info("Services wired",
		"products", cat.Len(),
		"chunks", index.Len(),
		"embedding_dim", index.Dimension(),
	)
	return Services{
		Catalog:   cat,
		Matcher:   matchSvc,
		Index:     index,
		Retriever: retrSvc,
		Composer:  composer,
	}, nil
}

func derefProducts(rows []*domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	return out
}

func derefChunks(rows []*domain.ProductChunk) []domain.ProductChunk {
	out := make([]domain.ProductChunk, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	return out
}
