package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Product is one catalog record. Rows are written by cmd/buildindex and
// read-only for the lifetime of the server process.
type Product struct {
	ID        uint           `gorm:"primaryKey" json:"-"`
	ProductID string         `gorm:"uniqueIndex;not null" json:"product_id"`
	Title     string         `gorm:"not null" json:"title"`
	Brand     string         `json:"brand"`
	Model     string         `json:"model"`
	Category  string         `json:"category"`
	Aliases   datatypes.JSON `json:"aliases,omitempty"`
	CreatedAt time.Time      `json:"-"`
}

// ProductChunk is one retrieval unit of a product document. Embedding holds
// the L2-normalized vector as a JSON array of float32; every row in an index
// build shares one dimension.
type ProductChunk struct {
	ID        uint           `gorm:"primaryKey" json:"-"`
	ProductID string         `gorm:"index;not null" json:"product_id"`
	Source    string         `gorm:"not null" json:"source"`
	Seq       int            `gorm:"not null" json:"seq"`
	Text      string         `gorm:"not null" json:"text"`
	Embedding datatypes.JSON `gorm:"not null" json:"-"`
	CreatedAt time.Time      `json:"-"`
}

// AliasList decodes the Aliases JSON column. Nil on empty or malformed data.
func (p *Product) AliasList() []string {
	if len(p.Aliases) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(p.Aliases, &out); err != nil {
		return nil
	}
	return out
}

// MatchCandidate is a per-request recognition result. Not persisted.
type MatchCandidate struct {
	ProductID string   `json:"product_id"`
	Title     string   `json:"title"`
	Score     float64  `json:"score"`
	Evidence  []string `json:"evidence"`
}

// RetrievedPassage is a per-request retrieval hit. Not persisted.
type RetrievedPassage struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// AnswerResult is the synthesized answer plus the provenance of the context
// that was actually supplied to the model.
type AnswerResult struct {
	Answer         string   `json:"answer"`
	ContextSources []string `json:"context_sources"`
}
