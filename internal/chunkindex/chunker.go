package chunkindex

import (
	"fmt"
	"strings"

	"github.com/yungbote/productintel-backend/internal/domain"
)

// ChunkPolicy is the document splitting policy. It is fixed configuration,
// not a hidden constant: the same policy must be used for every build or the
// index stops being reproducible.
type ChunkPolicy struct {
	// Size is the window length in words.
	Size int
	// Overlap is how many words consecutive windows share.
	Overlap int
	// MinWords drops trailing windows shorter than this.
	MinWords int
}

func DefaultPolicy() ChunkPolicy {
	return ChunkPolicy{Size: 300, Overlap: 75, MinWords: 20}
}

func (p ChunkPolicy) Validate() error {
	if p.Size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", p.Size)
	}
	if p.Overlap < 0 || p.Overlap >= p.Size {
		return fmt.Errorf("chunk overlap must be in [0, size), got %d", p.Overlap)
	}
	if p.MinWords < 0 {
		return fmt.Errorf("chunk min words must be >= 0, got %d", p.MinWords)
	}
	if p.MinWords > p.Size {
		return fmt.Errorf("chunk min words must be <= size, got %d > %d", p.MinWords, p.Size)
	}
	return nil
}

// SplitDocument cuts content into word windows per the policy and returns
// chunks in document order, embeddings unset. Deterministic for identical
// input.
func SplitDocument(productID, source, content string, p ChunkPolicy) ([]domain.ProductChunk, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	words := strings.Fields(content)
	if len(words) == 0 {
		return nil, nil
	}

	step := p.Size - p.Overlap
	var chunks []domain.ProductChunk
	seq := 0
	for start := 0; start < len(words); start += step {
		end := start + p.Size
		if end > len(words) {
			end = len(words)
		}
		window := words[start:end]
		if len(window) < p.MinWords {
			break
		}
		chunks = append(chunks, domain.ProductChunk{
			ProductID: productID,
			Source:    source,
			Seq:       seq,
			Text:      strings.Join(window, " "),
		})
		seq++
	}
	return chunks, nil
}
