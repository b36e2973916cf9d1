package matching

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func identifiersFixture(modify func(ids *DocumentIdentifiers)) *DocumentIdentifiers {
	ids := newDocumentIdentifiers(Document{
		ID:   uuid.New(),
		Type: DocumentTypePOD,
	}, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))
	if modify != nil {
		modify(ids)
	}
	return ids
}

func datePtr(year int, month time.Month, day int) *time.Time {
	ts := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &ts
}

func TestScoreMatch_Symmetry(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	a := identifiersFixture(func(ids *DocumentIdentifiers) {
		ids.BOLNumbers.Add("BOL12345")
		ids.ShipperName = "ACME LOGISTICS"
		ids.PickupDate = datePtr(2024, 3, 14)
	})
	b := identifiersFixture(func(ids *DocumentIdentifiers) {
		ids.BOLNumbers.Add("BOL12399")
		ids.ShipperName = "ACME LOGISTIC"
		ids.DocumentDate = datePtr(2024, 3, 20)
	})

	left := scoreMatch(cfg, a, b)
	right := scoreMatch(cfg, b, a)
	if left != right {
		t.Fatalf("score is not symmetric: %f vs %f", left, right)
	}
}

func TestScoreMatch_SelfIsOne(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	a := identifiersFixture(func(ids *DocumentIdentifiers) {
		ids.BOLNumbers.Add("BOL12345")
		ids.ShipperName = "ACME LOGISTICS"
		ids.ConsigneeAddress = "900 DOCK BLVD"
		ids.PickupDate = datePtr(2024, 3, 14)
	})

	if got := scoreMatch(cfg, a, a); got != 1.0 {
		t.Fatalf("self score = %f, want 1.0", got)
	}
}

func TestScoreMatch_NoSharedEvidence(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	a := identifiersFixture(func(ids *DocumentIdentifiers) {
		ids.BOLNumbers.Add("BOL12345")
	})
	b := identifiersFixture(func(ids *DocumentIdentifiers) {
		ids.ShipperName = "ACME LOGISTICS"
	})

	if got := scoreMatch(cfg, a, b); got != 0 {
		t.Fatalf("documents with no comparable sub-components must score 0, got %f", got)
	}
}

func TestScoreMatch_FormatInsensitiveIdentifiers(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	a := identifiersFixture(func(ids *DocumentIdentifiers) {
		ids.BOLNumbers.Add(NormalizeIdentifier("BOL-12345"))
	})
	b := identifiersFixture(func(ids *DocumentIdentifiers) {
		ids.BOLNumbers.Add(NormalizeIdentifier("bol 12345"))
	})

	// The BOL category is the only shared sub-component, so an exact
	// normalized match must yield the full score.
	if got := scoreMatch(cfg, a, b); got != 1.0 {
		t.Fatalf("normalized identifiers must match exactly, got %f", got)
	}
}

func TestScoreTemporalEvidence(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	cases := []struct {
		name  string
		left  *time.Time
		right *time.Time
		want  float64
	}{
		{"within strict window", datePtr(2024, 1, 1), datePtr(2024, 1, 5), 1.0},
		{"linear decay", datePtr(2024, 1, 1), datePtr(2024, 1, 11), 1.0 - 10.0/14.0},
		{"beyond cutoff", datePtr(2024, 1, 1), datePtr(2024, 1, 20), 0.0},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := identifiersFixture(func(ids *DocumentIdentifiers) { ids.PickupDate = tc.left })
			b := identifiersFixture(func(ids *DocumentIdentifiers) { ids.DocumentDate = tc.right })
			achieved, possible := scoreTemporalEvidence(cfg, a, b)
			if possible != 1.0 {
				t.Fatalf("temporal evidence must be countable when both sides have dates")
			}
			if diff := achieved - tc.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("temporal sub-score = %f, want %f", achieved, tc.want)
			}
		})
	}
}

func TestScoreTemporalEvidence_MissingDates(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	a := identifiersFixture(func(ids *DocumentIdentifiers) { ids.PickupDate = datePtr(2024, 1, 1) })
	b := identifiersFixture(nil)

	achieved, possible := scoreTemporalEvidence(cfg, a, b)
	if achieved != 0 || possible != 0 {
		t.Fatalf("missing dates must contribute nothing, got achieved=%f possible=%f", achieved, possible)
	}
}

func TestScoreIdentifierEvidence_FuzzyThresholdMonotonicity(t *testing.T) {
	t.Parallel()

	a := identifiersFixture(func(ids *DocumentIdentifiers) { ids.BOLNumbers.Add("BOL12345") })
	b := identifiersFixture(func(ids *DocumentIdentifiers) { ids.BOLNumbers.Add("BOL12346") })

	loose := DefaultConfig()
	loose.FuzzyThreshold = 0.5
	strict := DefaultConfig()
	strict.FuzzyThreshold = 0.95

	looseScore := scoreMatch(loose, a, b)
	strictScore := scoreMatch(strict, a, b)
	if looseScore <= 0 {
		t.Fatalf("expected a fuzzy award at the loose threshold, got %f", looseScore)
	}
	if strictScore > looseScore {
		t.Fatalf("raising the fuzzy threshold must never increase the score: %f -> %f", looseScore, strictScore)
	}
	if strictScore != 0 {
		t.Fatalf("near-miss identifiers above the strict threshold must score 0, got %f", strictScore)
	}
}

func TestScoreIdentifierEvidence_FuzzyAwardIsDiscounted(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	a := identifiersFixture(func(ids *DocumentIdentifiers) { ids.BOLNumbers.Add("BOL12345") })
	b := identifiersFixture(func(ids *DocumentIdentifiers) { ids.BOLNumbers.Add("BOL12346") })

	achieved, possible := scoreIdentifierEvidence(cfg, a, b)
	if possible != cfg.BOLWeight {
		t.Fatalf("possible = %f, want BOL weight %f", possible, cfg.BOLWeight)
	}
	similarity := stringSimilarity("BOL12345", "BOL12346")
	want := cfg.BOLWeight * similarity * cfg.FuzzyMatchWeight
	if diff := achieved - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("fuzzy award = %f, want %f", achieved, want)
	}
}

func TestScoreAddressEvidence_BelowThresholdStillCounts(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	a := identifiersFixture(func(ids *DocumentIdentifiers) { ids.ShipperName = "ACME LOGISTICS" })
	b := identifiersFixture(func(ids *DocumentIdentifiers) { ids.ShipperName = "ZEBRA FREIGHT" })

	achieved, possible := scoreAddressEvidence(cfg, a, b)
	if possible != 1.0 {
		t.Fatalf("dissimilar but present names must count in possible, got %f", possible)
	}
	if achieved != 0 {
		t.Fatalf("names below the similarity threshold must award nothing, got %f", achieved)
	}
}

func TestStringSimilarity(t *testing.T) {
	t.Parallel()

	if got := stringSimilarity("ACME", "ACME"); got != 1.0 {
		t.Fatalf("identical strings must score 1.0, got %f", got)
	}
	if got := stringSimilarity("", "ACME"); got != 0 {
		t.Fatalf("empty input must score 0, got %f", got)
	}
	got := stringSimilarity("BOL12345", "BOL12346")
	if got <= 0.8 || got >= 1.0 {
		t.Fatalf("one-character difference over eight should land in (0.8,1.0), got %f", got)
	}
}

func TestDaysBetween(t *testing.T) {
	t.Parallel()

	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	if got := daysBetween(a, b); got != 19 {
		t.Fatalf("daysBetween = %d, want 19", got)
	}
	if got := daysBetween(b, a); got != 19 {
		t.Fatalf("daysBetween must be symmetric, got %d", got)
	}
	if got := daysBetween(a, a.Add(30*time.Hour)); got != 1 {
		t.Fatalf("partial days truncate, got %d", got)
	}
}
