package chunkindex

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/productintel-backend/internal/domain"
)

// Embedder is the slice of the embedding client the builder needs.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// EmbedChunks fills in the Embedding column for every chunk: batched calls to
// the embedder, fanned out with a bounded group, vectors L2-normalized before
// serialization. Each goroutine writes only its own batch's rows.
func EmbedChunks(ctx context.Context, emb Embedder, chunks []domain.ProductChunk, batchSize, concurrency int) error {
	if len(chunks) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 64
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for i := range batch {
				texts[i] = batch[i].Text
			}
			vecs, err := emb.Embed(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed batch: %w", err)
			}
			if len(vecs) != len(batch) {
				return fmt.Errorf("embed batch: got %d vectors for %d chunks", len(vecs), len(batch))
			}
			for i := range batch {
				raw, err := json.Marshal(NormalizeVector(vecs[i]))
				if err != nil {
					return fmt.Errorf("encode embedding: %w", err)
				}
				batch[i].Embedding = raw
			}
			return nil
		})
	}
	return g.Wait()
}
