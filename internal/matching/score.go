package matching

import (
	"time"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// scoreMatch computes the symmetric [0,1] match score between two
// identifier records as achieved/possible across identifier, address and
// temporal evidence. Sub-components missing on either side contribute to
// neither numerator nor denominator, so sparse documents are not
// penalized for fields they never carried.
func scoreMatch(cfg Config, a, b *DocumentIdentifiers) float64 {
	var achieved, possible float64

	s, p := scoreIdentifierEvidence(cfg, a, b)
	achieved += s
	possible += p

	s, p = scoreAddressEvidence(cfg, a, b)
	achieved += s
	possible += p

	s, p = scoreTemporalEvidence(cfg, a, b)
	achieved += s
	possible += p

	if possible <= 0 {
		return 0
	}
	return achieved / possible
}

func scoreIdentifierEvidence(cfg Config, a, b *DocumentIdentifiers) (achieved, possible float64) {
	categories := []struct {
		weight float64
		left   mapset.Set[string]
		right  mapset.Set[string]
	}{
		{cfg.BOLWeight, a.BOLNumbers, b.BOLNumbers},
		{cfg.PROWeight, a.PRONumbers, b.PRONumbers},
		{cfg.InvoiceWeight, a.InvoiceNumbers, b.InvoiceNumbers},
	}

	for _, category := range categories {
		if category.left == nil || category.right == nil {
			continue
		}
		if category.left.Cardinality() == 0 || category.right.Cardinality() == 0 {
			continue
		}
		possible += category.weight
		if category.left.Intersect(category.right).Cardinality() > 0 {
			achieved += category.weight
			continue
		}
		if best := bestFuzzyMatch(category.left, category.right); best >= cfg.FuzzyThreshold {
			achieved += category.weight * best * cfg.FuzzyMatchWeight
		}
	}
	return achieved, possible
}

func scoreAddressEvidence(cfg Config, a, b *DocumentIdentifiers) (achieved, possible float64) {
	fields := []struct {
		weight    float64
		threshold float64
		left      string
		right     string
	}{
		{1.0, cfg.NameSimilarityThreshold, a.ShipperName, b.ShipperName},
		{1.0, cfg.NameSimilarityThreshold, a.ConsigneeName, b.ConsigneeName},
		{0.5, cfg.AddressSimilarityThreshold, a.ShipperAddress, b.ShipperAddress},
		{0.5, cfg.AddressSimilarityThreshold, a.ConsigneeAddress, b.ConsigneeAddress},
	}

	for _, field := range fields {
		if field.left == "" || field.right == "" {
			continue
		}
		possible += field.weight
		if similarity := stringSimilarity(field.left, field.right); similarity >= field.threshold {
			achieved += field.weight * similarity
		}
	}
	return achieved, possible
}

func scoreTemporalEvidence(cfg Config, a, b *DocumentIdentifiers) (achieved, possible float64) {
	leftDates := a.dates()
	rightDates := b.dates()
	if len(leftDates) == 0 || len(rightDates) == 0 {
		return 0, 0
	}

	possible = 1.0
	minDiff := -1
	for _, left := range leftDates {
		for _, right := range rightDates {
			diff := daysBetween(left, right)
			if minDiff < 0 || diff < minDiff {
				minDiff = diff
			}
		}
	}

	switch {
	case minDiff <= cfg.StrictDateWindowDays:
		achieved = 1.0
	case minDiff <= cfg.MaxDateDifferenceDays:
		achieved = 1.0 - float64(minDiff)/float64(cfg.MaxDateDifferenceDays)
	}
	return achieved, possible
}

// bestFuzzyMatch returns the highest pairwise similarity across all value
// pairs drawn from the two sets.
func bestFuzzyMatch(left, right mapset.Set[string]) float64 {
	best := 0.0
	for _, l := range left.ToSlice() {
		for _, r := range right.ToSlice() {
			if score := stringSimilarity(l, r); score > best {
				best = score
			}
		}
	}
	return best
}

// stringSimilarity is an edit-distance ratio in [0,1]: one minus the
// Levenshtein distance over the length of the longer string.
func stringSimilarity(left, right string) float64 {
	if left == "" || right == "" {
		return 0
	}
	if left == right {
		return 1
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(left, right, false)
	distance := dmp.DiffLevenshtein(diffs)

	longest := utf8.RuneCountInString(left)
	if r := utf8.RuneCountInString(right); r > longest {
		longest = r
	}
	if longest == 0 {
		return 0
	}

	similarity := 1 - float64(distance)/float64(longest)
	if similarity < 0 {
		return 0
	}
	return similarity
}

// daysBetween is the whole-day difference between two timestamps,
// truncated toward zero.
func daysBetween(a, b time.Time) int {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}
