package matcher

import (
	"sort"
	"strings"
)

// Token-order-insensitive fuzzy similarity in [0,1]. This is the token-set
// ratio construction: compare the shared token set against each side's full
// token set and take the best pairwise indel similarity. Word reordering
// between OCR output and a catalog field costs nothing; character-level OCR
// noise costs proportionally to the edits it introduces.

// TokenSetRatio expects both inputs already normalized (see textnorm).
func TokenSetRatio(a, b string) float64 {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	setA := toSet(ta)
	setB := toSet(tb)

	var sect, diffA, diffB []string
	for tok := range setA {
		if setB[tok] {
			sect = append(sect, tok)
		} else {
			diffA = append(diffA, tok)
		}
	}
	for tok := range setB {
		if !setA[tok] {
			diffB = append(diffB, tok)
		}
	}
	sort.Strings(sect)
	sort.Strings(diffA)
	sort.Strings(diffB)

	// One side's tokens fully contained in the other's: exact on the shared
	// set, so the score is 1.
	if len(sect) > 0 && (len(diffA) == 0 || len(diffB) == 0) {
		return 1
	}

	sectStr := strings.Join(sect, " ")
	combA := joinNonEmpty(sectStr, strings.Join(diffA, " "))
	combB := joinNonEmpty(sectStr, strings.Join(diffB, " "))

	best := indelRatio(combA, combB)
	if len(sect) > 0 {
		if r := indelRatio(sectStr, combA); r > best {
			best = r
		}
		if r := indelRatio(sectStr, combB); r > best {
			best = r
		}
	}
	return best
}

func toSet(tokens []string) map[string]bool {
	m := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		m[t] = true
	}
	return m
}

func joinNonEmpty(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + " " + b
}

// indelRatio is 1 - dist/(|a|+|b|) where dist counts insertions and
// deletions only (substitution = delete + insert).
func indelRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	dist := indelDistance([]rune(a), []rune(b))
	total := len([]rune(a)) + len([]rune(b))
	return 1 - float64(dist)/float64(total)
}

func indelDistance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
			} else {
				del := prev[j] + 1
				ins := curr[j-1] + 1
				if del < ins {
					curr[j] = del
				} else {
					curr[j] = ins
				}
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
