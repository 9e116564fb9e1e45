// Package matcher ranks catalog products by fuzzy similarity to a block of
// OCR text across weighted fields.
package matcher

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yungbote/productintel-backend/internal/catalog"
	"github.com/yungbote/productintel-backend/internal/domain"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
	"github.com/yungbote/productintel-backend/internal/textnorm"
)

// evidenceThreshold is the per-field score above which a field earns its own
// evidence line.
const evidenceThreshold = 0.6

// Weights is the fixed per-field weight table. Title carries the most signal,
// brand and aliases the least. Must sum to 1.
type Weights struct {
	Title   float64
	Model   float64
	Brand   float64
	Aliases float64
}

func DefaultWeights() Weights {
	return Weights{Title: 0.5, Model: 0.3, Brand: 0.15, Aliases: 0.05}
}

func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"title": w.Title, "model": w.Model, "brand": w.Brand, "aliases": w.Aliases,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s is negative: %v", name, v)
		}
	}
	sum := w.Title + w.Model + w.Brand + w.Aliases
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("weights must sum to 1.0, got %v", sum)
	}
	return nil
}

type Config struct {
	Weights       Weights
	MinConfidence float64
	TopK          int
}

type Service struct {
	log     *logger.Logger
	cfg     Config
	records []record
}

// record carries the normalized match fields, precomputed once at startup so
// request-time work is scoring only.
type record struct {
	productID string
	title     string
	model     string
	brand     string

	normTitle   string
	normModel   string
	normBrand   string
	normAliases string
}

func NewService(log *logger.Logger, cat *catalog.Catalog, cfg Config) (*Service, error) {
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return nil, fmt.Errorf("min confidence out of range: %v", cfg.MinConfidence)
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}

	records := make([]record, 0, cat.Len())
	for _, p := range cat.Products() {
		records = append(records, record{
			productID:   p.ProductID,
			title:       p.Title,
			model:       p.Model,
			brand:       p.Brand,
			normTitle:   textnorm.Normalize(p.Title),
			normModel:   textnorm.Normalize(p.Model),
			normBrand:   textnorm.Normalize(p.Brand),
			normAliases: textnorm.Normalize(strings.Join(p.AliasList(), " ")),
		})
	}

	slog := log.With("service", "MatcherService")
	slog.Info("Matcher initialized",
		"products", len(records),
		"min_confidence", cfg.MinConfidence,
	)
	return &Service{log: slog, cfg: cfg, records: records}, nil
}

// Match scores ocrText against every catalog record and returns at most topK
// candidates at or above the confidence threshold, best first. An empty
// result is a valid outcome, not an error. topK <= 0 falls back to the
// configured default.
func (s *Service) Match(ocrText string, topK int) []domain.MatchCandidate {
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	norm := textnorm.Normalize(ocrText)
	if norm == "" {
		return []domain.MatchCandidate{}
	}

	candidates := make([]domain.MatchCandidate, 0, len(s.records))
	for _, rec := range s.records {
		fields := []fieldScore{
			{name: "Title", value: rec.title, score: scoreField(norm, rec.normTitle), weight: s.cfg.Weights.Title},
			{name: "Model", value: rec.model, score: scoreField(norm, rec.normModel), weight: s.cfg.Weights.Model},
			{name: "Brand", value: rec.brand, score: scoreField(norm, rec.normBrand), weight: s.cfg.Weights.Brand},
			{name: "Aliases", value: rec.normAliases, score: scoreField(norm, rec.normAliases), weight: s.cfg.Weights.Aliases},
		}

		combined := 0.0
		for _, f := range fields {
			combined += f.score * f.weight
		}
		if combined < s.cfg.MinConfidence {
			continue
		}

		candidates = append(candidates, domain.MatchCandidate{
			ProductID: rec.productID,
			Title:     rec.title,
			Score:     round3(combined),
			Evidence:  buildEvidence(fields, ocrText),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	s.log.Debug("Match complete", "candidates", len(candidates), "ocr_len", len(ocrText))
	return candidates
}

type fieldScore struct {
	name   string
	value  string
	score  float64
	weight float64
}

// scoreField returns 0 for a missing field value; the field still drags the
// weighted sum down by its own weight and nothing else.
func scoreField(normOCR, normField string) float64 {
	if normField == "" {
		return 0
	}
	return TokenSetRatio(normOCR, normField)
}

// buildEvidence lists fields that cleared the evidence bar, strongest first.
// When none did, fall back to an excerpt of the raw OCR text so a candidate
// never ships with empty evidence.
func buildEvidence(fields []fieldScore, ocrText string) []string {
	contributing := make([]fieldScore, 0, len(fields))
	for _, f := range fields {
		if f.value != "" && f.score > evidenceThreshold {
			contributing = append(contributing, f)
		}
	}
	sort.SliceStable(contributing, func(i, j int) bool {
		return contributing[i].score > contributing[j].score
	})

	evidence := make([]string, 0, len(contributing))
	for _, f := range contributing {
		evidence = append(evidence, fmt.Sprintf("%s match: %s (%.2f)", f.name, f.value, f.score))
	}
	if len(evidence) == 0 {
		excerpt := ocrText
		if len(excerpt) > 50 {
			excerpt = excerpt[:50]
		}
		evidence = append(evidence, "OCR: "+excerpt)
	}
	return evidence
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
