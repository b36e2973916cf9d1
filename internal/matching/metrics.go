package matching

import (
	"fmt"
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// conflictingNameSimilarity is the low-agreement bar below which two
// populated name fields are considered contradictory. It is intentionally
// independent of the configured similarity thresholds.
const conflictingNameSimilarity = 0.3

// amountDiscrepancyRatio flags a pair when the absolute amount difference
// exceeds this share of the smaller amount, i.e. the amounts differ by
// more than 1.5x.
const amountDiscrepancyRatio = 0.5

// oversizeGroupThreshold is the member count beyond which a group is
// review-flagged as likely over-grouped.
const oversizeGroupThreshold = 5

// calculateGroupMetrics finalizes a freshly clustered group in place:
// mean all-pairs confidence, deduplicated match/mismatch diagnostics,
// review flag, completeness against the configured type sets, dominant
// identifiers and the covered date range.
func calculateGroupMetrics(cfg Config, group *DocumentGroup, now time.Time) {
	if group == nil || len(group.Documents) == 0 {
		return
	}

	matchReasons := make(map[string]struct{})
	mismatchFlags := make(map[string]struct{})

	totalScore := 0.0
	comparisons := 0
	for i := 0; i < len(group.Documents); i++ {
		for j := i + 1; j < len(group.Documents); j++ {
			left, right := group.Documents[i], group.Documents[j]
			totalScore += scoreMatch(cfg, left, right)
			comparisons++
			collectPairDiagnostics(cfg, left, right, matchReasons, mismatchFlags)
		}
	}

	if comparisons > 0 {
		group.ConfidenceScore = totalScore / float64(comparisons)
	} else {
		group.ConfidenceScore = 0.0
	}
	group.MatchReasons = sortedKeys(matchReasons)
	group.MismatchFlags = sortedKeys(mismatchFlags)

	group.NeedsReview = group.ConfidenceScore < cfg.MediumConfidenceThreshold ||
		len(group.MismatchFlags) > 0 ||
		len(group.Documents) > oversizeGroupThreshold

	group.CompletenessScore = completenessScore(cfg, group.Documents)
	group.DominantIdentifiers = dominantIdentifiers(group.Documents)
	group.DateRange = groupDateRange(group.Documents)
	group.TotalDocuments = len(group.Documents)
	group.UpdatedAt = now
}

func collectPairDiagnostics(cfg Config, left, right *DocumentIdentifiers, reasons, flags map[string]struct{}) {
	identifierCategories := []struct {
		label string
		l, r  mapset.Set[string]
	}{
		{"BOL number match", left.BOLNumbers, right.BOLNumbers},
		{"PRO number match", left.PRONumbers, right.PRONumbers},
		{"Invoice number match", left.InvoiceNumbers, right.InvoiceNumbers},
	}
	for _, category := range identifierCategories {
		if category.l == nil || category.r == nil {
			continue
		}
		if shared := category.l.Intersect(category.r); shared.Cardinality() > 0 {
			reasons[fmt.Sprintf("%s: %s", category.label, strings.Join(SortedValues(shared), ", "))] = struct{}{}
		}
	}

	if left.ShipperName != "" && right.ShipperName != "" {
		similarity := stringSimilarity(left.ShipperName, right.ShipperName)
		if similarity >= cfg.NameSimilarityThreshold {
			reasons["Shipper name match"] = struct{}{}
		}
		if similarity < conflictingNameSimilarity {
			flags["Conflicting shipper names"] = struct{}{}
		}
	}
	if left.ConsigneeName != "" && right.ConsigneeName != "" {
		similarity := stringSimilarity(left.ConsigneeName, right.ConsigneeName)
		if similarity >= cfg.NameSimilarityThreshold {
			reasons["Consignee name match"] = struct{}{}
		}
		if similarity < conflictingNameSimilarity {
			flags["Conflicting consignee names"] = struct{}{}
		}
	}

	if pickupAfterDelivery(left, right) || pickupAfterDelivery(right, left) {
		flags["Pickup date after delivery date"] = struct{}{}
	}

	if left.TotalAmount != nil && right.TotalAmount != nil {
		smaller := *left.TotalAmount
		if *right.TotalAmount < smaller {
			smaller = *right.TotalAmount
		}
		diff := *left.TotalAmount - *right.TotalAmount
		if diff < 0 {
			diff = -diff
		}
		if diff > smaller*amountDiscrepancyRatio {
			flags["Large amount discrepancy"] = struct{}{}
		}
	}
}

func pickupAfterDelivery(a, b *DocumentIdentifiers) bool {
	return a.PickupDate != nil && b.DeliveryDate != nil && a.PickupDate.After(*b.DeliveryDate)
}

func completenessScore(cfg Config, documents []*DocumentIdentifiers) float64 {
	typesPresent := mapset.NewThreadUnsafeSet[DocumentType]()
	for _, doc := range documents {
		typesPresent.Add(doc.DocumentType)
	}
	return 0.7*typeSetFraction(typesPresent, cfg.RequiredDocumentTypes) +
		0.3*typeSetFraction(typesPresent, cfg.PreferredDocumentTypes)
}

// typeSetFraction is the share of wanted types present. An empty wanted
// set is vacuously satisfied, keeping completeness within [0,1].
func typeSetFraction(present, wanted mapset.Set[DocumentType]) float64 {
	if wanted == nil || wanted.Cardinality() == 0 {
		return 1.0
	}
	return float64(present.Intersect(wanted).Cardinality()) / float64(wanted.Cardinality())
}

func dominantIdentifiers(documents []*DocumentIdentifiers) map[string]string {
	bolCounts := make(map[string]int)
	proCounts := make(map[string]int)
	shipperCounts := make(map[string]int)
	consigneeCounts := make(map[string]int)

	for _, doc := range documents {
		for _, bol := range doc.BOLNumbers.ToSlice() {
			bolCounts[bol]++
		}
		for _, pro := range doc.PRONumbers.ToSlice() {
			proCounts[pro]++
		}
		if doc.ShipperName != "" {
			shipperCounts[doc.ShipperName]++
		}
		if doc.ConsigneeName != "" {
			consigneeCounts[doc.ConsigneeName]++
		}
	}

	result := make(map[string]string)
	if value, ok := mostFrequent(bolCounts); ok {
		result["primary_bol"] = value
	}
	if value, ok := mostFrequent(proCounts); ok {
		result["primary_pro"] = value
	}
	if value, ok := mostFrequent(shipperCounts); ok {
		result["primary_shipper"] = value
	}
	if value, ok := mostFrequent(consigneeCounts); ok {
		result["primary_consignee"] = value
	}
	return result
}

// mostFrequent picks the highest-count value; equal counts fall back to
// the lexicographically smallest value so group labels are stable across
// runs.
func mostFrequent(counts map[string]int) (string, bool) {
	best := ""
	bestCount := 0
	for value, count := range counts {
		if count > bestCount || (count == bestCount && bestCount > 0 && value < best) {
			best = value
			bestCount = count
		}
	}
	return best, bestCount > 0
}

func groupDateRange(documents []*DocumentIdentifiers) *DateRange {
	var span *DateRange
	for _, doc := range documents {
		for _, ts := range doc.dates() {
			if span == nil {
				span = &DateRange{Start: ts, End: ts}
				continue
			}
			if ts.Before(span.Start) {
				span.Start = ts
			}
			if ts.After(span.End) {
				span.End = ts
			}
		}
	}
	return span
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
