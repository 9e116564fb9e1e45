// Package chunkindex is the in-memory nearest-neighbor index over product
// documentation chunks. It is built offline, loaded once at startup, and
// read-only afterwards; all vectors are L2-normalized so cosine similarity is
// a dot product.
package chunkindex

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/yungbote/productintel-backend/internal/catalog"
	"github.com/yungbote/productintel-backend/internal/domain"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
)

type entry struct {
	text   string
	source string
	seq    int
	vec    []float32
}

type Hit struct {
	Text   string
	Source string
	Score  float64
}

type Index struct {
	log       *logger.Logger
	dim       int
	byProduct map[string][]entry
	total     int
}

// New decodes and validates persisted chunks against the catalog: every chunk
// must belong to a known product and carry a vector of one shared dimension.
func New(log *logger.Logger, cat *catalog.Catalog, chunks []domain.ProductChunk) (*Index, error) {
	ix := &Index{
		log:       log.With("service", "ChunkIndex"),
		byProduct: make(map[string][]entry),
	}
	for i := range chunks {
		c := &chunks[i]
		if !cat.Has(c.ProductID) {
			return nil, fmt.Errorf("chunk %s/%d references unknown product %q", c.Source, c.Seq, c.ProductID)
		}
		var vec []float32
		if err := json.Unmarshal(c.Embedding, &vec); err != nil {
			return nil, fmt.Errorf("chunk %s/%d: decode embedding: %w", c.Source, c.Seq, err)
		}
		if len(vec) == 0 {
			return nil, fmt.Errorf("chunk %s/%d: empty embedding", c.Source, c.Seq)
		}
		if ix.dim == 0 {
			ix.dim = len(vec)
		} else if len(vec) != ix.dim {
			return nil, fmt.Errorf("chunk %s/%d: dimension %d, index dimension %d", c.Source, c.Seq, len(vec), ix.dim)
		}
		ix.byProduct[c.ProductID] = append(ix.byProduct[c.ProductID], entry{
			text:   c.Text,
			source: c.Source,
			seq:    c.Seq,
			vec:    vec,
		})
		ix.total++
	}
	for id := range ix.byProduct {
		es := ix.byProduct[id]
		sort.SliceStable(es, func(i, j int) bool { return es[i].seq < es[j].seq })
	}
	ix.log.Info("Chunk index loaded", "chunks", ix.total, "products", len(ix.byProduct), "dimension", ix.dim)
	return ix, nil
}

// Dimension is 0 for an empty index.
func (ix *Index) Dimension() int { return ix.dim }

func (ix *Index) Len() int { return ix.total }

// CountFor reports how many chunks productID owns.
func (ix *Index) CountFor(productID string) int {
	return len(ix.byProduct[productID])
}

// Search returns up to topK of productID's chunks ranked by cosine similarity
// to queryVec, best first; ties keep document order. A product with no chunks
// yields an empty result.
func (ix *Index) Search(productID string, queryVec []float32, topK int) []Hit {
	entries := ix.byProduct[productID]
	if len(entries) == 0 || topK <= 0 {
		return []Hit{}
	}

	hits := make([]Hit, 0, len(entries))
	for _, e := range entries {
		hits = append(hits, Hit{
			Text:   e.text,
			Source: e.source,
			Score:  dot(e.vec, queryVec),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// NormalizeVector scales v to unit length in place and returns it. Zero
// vectors are returned unchanged.
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}
