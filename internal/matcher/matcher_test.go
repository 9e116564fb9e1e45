package matcher

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/productintel-backend/internal/catalog"
	"github.com/yungbote/productintel-backend/internal/domain"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func aliasJSON(t *testing.T, aliases ...string) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(aliases)
	if err != nil {
		t.Fatalf("marshal aliases: %v", err)
	}
	return datatypes.JSON(raw)
}

func fixtureCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	products := []domain.Product{
		{ProductID: "iphone-15-pro-max", Title: "iPhone 15 Pro Max", Brand: "Apple", Model: "iPhone 15 Pro Max", Category: "smartphone", Aliases: aliasJSON(t, "15 Pro Max", "iPhone 15 Pro Max 256GB")},
		{ProductID: "iphone-15-pro", Title: "iPhone 15 Pro", Brand: "Apple", Model: "iPhone 15 Pro", Category: "smartphone"},
		{ProductID: "iphone-15", Title: "iPhone 15", Brand: "Apple", Model: "iPhone 15", Category: "smartphone"},
		{ProductID: "iphone-14", Title: "iPhone 14", Brand: "Apple", Model: "iPhone 14", Category: "smartphone"},
		{ProductID: "macbook-pro-16", Title: "MacBook Pro 16-inch", Brand: "Apple", Model: "MacBook Pro 16", Category: "laptop"},
		{ProductID: "macbook-pro-14", Title: "MacBook Pro 14-inch", Brand: "Apple", Model: "MacBook Pro 14", Category: "laptop"},
		{ProductID: "macbook-air-13", Title: "MacBook Air 13-inch", Brand: "Apple", Model: "MacBook Air 13", Category: "laptop"},
		{ProductID: "ipad-pro-12-9", Title: "iPad Pro 12.9-inch", Brand: "Apple", Model: "iPad Pro 12.9", Category: "tablet"},
		{ProductID: "ipad-air", Title: "iPad Air", Brand: "Apple", Model: "iPad Air", Category: "tablet"},
		{ProductID: "apple-watch-ultra-2", Title: "Apple Watch Ultra 2", Brand: "Apple", Model: "Watch Ultra 2", Category: "wearable"},
		{ProductID: "airpods-pro-2", Title: "AirPods Pro 2nd generation", Brand: "Apple", Model: "AirPods Pro 2", Category: "audio"},
		{ProductID: "apple-tv-4k", Title: "Apple TV 4K", Brand: "Apple", Model: "Apple TV 4K", Category: "tv"},
	}
	cat, err := catalog.New(products)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func newService(t *testing.T, minConfidence float64) *Service {
	t.Helper()
	svc, err := NewService(testLogger(t), fixtureCatalog(t), Config{
		Weights:       DefaultWeights(),
		MinConfidence: minConfidence,
		TopK:          3,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestMatchIdentifiesIPhone15ProMax(t *testing.T) {
	svc := newService(t, 0.6)

	got := svc.Match("iPhone 15 Pro Max 256GB", 3)
	if len(got) == 0 {
		t.Fatal("want candidates, got none")
	}
	best := got[0]
	if best.ProductID != "iphone-15-pro-max" {
		t.Fatalf("best product: want=iphone-15-pro-max got=%s", best.ProductID)
	}
	if best.Score < 0.8 {
		t.Fatalf("best score: want >= 0.8 got=%v", best.Score)
	}
	foundTitle := false
	for _, ev := range best.Evidence {
		if strings.HasPrefix(ev, "Title match:") {
			foundTitle = true
		}
	}
	if !foundTitle {
		t.Fatalf("want a Title evidence entry, got %v", best.Evidence)
	}
}

func TestMatchEmptyOCRText(t *testing.T) {
	svc := newService(t, 0.6)
	for _, in := range []string{"", "   ", "\n\t"} {
		if got := svc.Match(in, 3); len(got) != 0 {
			t.Fatalf("Match(%q): want empty got %d candidates", in, len(got))
		}
	}
}

func TestMatchDeterministic(t *testing.T) {
	svc := newService(t, 0.3)
	first := svc.Match("Apple MacBook Pro 16", 5)
	for i := 0; i < 10; i++ {
		again := svc.Match("Apple MacBook Pro 16", 5)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\nfirst=%v\nagain=%v", i, first, again)
		}
	}
}

func TestMatchTopKBound(t *testing.T) {
	svc := newService(t, 0.0)
	for _, k := range []int{1, 2, 5, 100} {
		got := svc.Match("Apple", k)
		if len(got) > k {
			t.Fatalf("topK=%d: got %d candidates", k, len(got))
		}
	}
}

func TestMatchMonotonicThreshold(t *testing.T) {
	// Raising min_confidence never adds candidates and never reorders the
	// survivors.
	loose := newService(t, 0.2)
	strict := newService(t, 0.6)

	query := "iPhone 15 Pro"
	looseOut := loose.Match(query, 12)
	strictOut := strict.Match(query, 12)

	if len(strictOut) > len(looseOut) {
		t.Fatalf("strict returned more: %d > %d", len(strictOut), len(looseOut))
	}
	// strictOut must be a prefix-order subsequence of looseOut.
	j := 0
	for _, want := range strictOut {
		found := false
		for ; j < len(looseOut); j++ {
			if looseOut[j].ProductID == want.ProductID {
				found = true
				j++
				break
			}
		}
		if !found {
			t.Fatalf("candidate %s reordered or missing in loose results", want.ProductID)
		}
	}
}

func TestMatchTieBreakCatalogOrder(t *testing.T) {
	// Two products scoring identically keep catalog insertion order.
	products := []domain.Product{
		{ProductID: "twin-a", Title: "Widget 3000", Brand: "Acme", Model: "W3000"},
		{ProductID: "twin-b", Title: "Widget 3000", Brand: "Acme", Model: "W3000"},
	}
	cat, err := catalog.New(products)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	svc, err := NewService(testLogger(t), cat, Config{Weights: DefaultWeights(), MinConfidence: 0.1, TopK: 2})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	got := svc.Match("Widget 3000", 2)
	if len(got) != 2 {
		t.Fatalf("want 2 candidates, got %d", len(got))
	}
	if got[0].ProductID != "twin-a" || got[1].ProductID != "twin-b" {
		t.Fatalf("tie-break order: got %s, %s", got[0].ProductID, got[1].ProductID)
	}
}

func TestMatchMissingFieldPenalizesOnlyItsWeight(t *testing.T) {
	full := []domain.Product{{ProductID: "p1", Title: "Zephyr Laptop", Brand: "Zephyr", Model: "Zephyr Laptop"}}
	noModel := []domain.Product{{ProductID: "p1", Title: "Zephyr Laptop", Brand: "Zephyr"}}

	mk := func(products []domain.Product) *Service {
		cat, err := catalog.New(products)
		if err != nil {
			t.Fatalf("catalog: %v", err)
		}
		svc, err := NewService(testLogger(t), cat, Config{Weights: DefaultWeights(), MinConfidence: 0, TopK: 1})
		if err != nil {
			t.Fatalf("NewService: %v", err)
		}
		return svc
	}

	withModel := mk(full).Match("Zephyr Laptop", 1)[0].Score
	withoutModel := mk(noModel).Match("Zephyr Laptop", 1)[0].Score

	diff := withModel - withoutModel
	// The model field scores 1.0 when present, 0 when missing, so the gap is
	// exactly the model weight.
	if diff < 0.29 || diff > 0.31 {
		t.Fatalf("missing model field gap: want ~0.30 got=%v", diff)
	}
}

func TestWeightsValidate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights invalid: %v", err)
	}
	bad := Weights{Title: 0.9, Model: 0.3, Brand: 0.1, Aliases: 0.1}
	if err := bad.Validate(); err == nil {
		t.Fatal("want error for weights summing past 1.0")
	}
	neg := Weights{Title: 1.2, Model: -0.2, Brand: 0, Aliases: 0}
	if err := neg.Validate(); err == nil {
		t.Fatal("want error for negative weight")
	}
}
