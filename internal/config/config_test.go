package config

import (
	"strings"
	"testing"

	"github.com/loaddocs/docmatch/internal/matching"
)

func defaultMatchingEnv() MatchingEnv {
	return MatchingEnv{
		MatchBOLWeight:              3.0,
		MatchPROWeight:              2.0,
		MatchInvoiceWeight:          1.5,
		MatchFuzzyMatchWeight:       0.7,
		MatchFuzzyThreshold:         0.8,
		MatchAddressSimThreshold:    0.75,
		MatchNameSimThreshold:       0.80,
		MatchMaxDateDifferenceDays:  14,
		MatchStrictDateWindowDays:   7,
		MatchHighConfidence:         0.85,
		MatchMediumConfidence:       0.65,
		MatchReviewThreshold:        0.40,
		MatchRequiredDocumentTypes:  "INVOICE",
		MatchPreferredDocumentTypes: "INVOICE,POD",
	}
}

func TestMatchingEnv_MatchesEngineDefaults(t *testing.T) {
	t.Parallel()

	env := defaultMatchingEnv()
	got, err := env.Matching()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := matching.DefaultConfig()
	if got.BOLWeight != want.BOLWeight {
		t.Fatalf("BOLWeight = %v, want %v", got.BOLWeight, want.BOLWeight)
	}
	if got.FuzzyThreshold != want.FuzzyThreshold {
		t.Fatalf("FuzzyThreshold = %v, want %v", got.FuzzyThreshold, want.FuzzyThreshold)
	}
	if got.ReviewThreshold != want.ReviewThreshold {
		t.Fatalf("ReviewThreshold = %v, want %v", got.ReviewThreshold, want.ReviewThreshold)
	}
	if !got.RequiredDocumentTypes.Equal(want.RequiredDocumentTypes) {
		t.Fatalf("RequiredDocumentTypes = %v, want %v", got.RequiredDocumentTypes, want.RequiredDocumentTypes)
	}
	if !got.PreferredDocumentTypes.Equal(want.PreferredDocumentTypes) {
		t.Fatalf("PreferredDocumentTypes = %v, want %v", got.PreferredDocumentTypes, want.PreferredDocumentTypes)
	}
}

func TestMatchingEnv_ParsesTypeListsLooselyFormatted(t *testing.T) {
	t.Parallel()

	env := defaultMatchingEnv()
	env.MatchRequiredDocumentTypes = " invoice , pod "
	env.MatchPreferredDocumentTypes = "lumper,"

	got, err := env.Matching()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !got.RequiredDocumentTypes.Contains(matching.DocumentTypeInvoice) {
		t.Fatalf("expected required set to contain INVOICE")
	}
	if !got.RequiredDocumentTypes.Contains(matching.DocumentTypePOD) {
		t.Fatalf("expected required set to contain POD")
	}
	if got.PreferredDocumentTypes.Cardinality() != 1 {
		t.Fatalf("expected 1 preferred type, got %d", got.PreferredDocumentTypes.Cardinality())
	}
}

func TestMatchingEnv_RejectsUnknownType(t *testing.T) {
	t.Parallel()

	env := defaultMatchingEnv()
	env.MatchRequiredDocumentTypes = "INVOICE,RECEIPT"

	_, err := env.Matching()
	if err == nil {
		t.Fatalf("expected error for unknown document type")
	}
	if !strings.Contains(err.Error(), "MATCH_REQUIRED_DOCUMENT_TYPES") {
		t.Fatalf("expected env name in error, got: %v", err)
	}
}

func TestMatchingEnv_RejectsInvalidThresholds(t *testing.T) {
	t.Parallel()

	env := defaultMatchingEnv()
	env.MatchFuzzyThreshold = 1.4

	if _, err := env.Matching(); err == nil {
		t.Fatalf("expected error for fuzzy threshold > 1")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Environment: "local",
		LogLevel:    "info",
		DatabaseURL: "postgres://localhost:5432/docs",
		DBMinConns:  1,
		DBMaxConns:  8,
		HTTPAddr:    ":8080",
		MatchingEnv: defaultMatchingEnv(),
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.DatabaseURL = "   "
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for blank DATABASE_URL")
	}

	cfg.DatabaseURL = "postgres://localhost:5432/docs"
	cfg.DBMinConns = 9
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error when min conns exceed max conns")
	}
}

func TestCORSAllowedOriginsList(t *testing.T) {
	t.Parallel()

	cfg := &Config{CORSAllowedOrigins: " https://a.example , https://b.example ,https://a.example,, "}
	origins := cfg.CORSAllowedOriginsList()
	if len(origins) != 2 {
		t.Fatalf("expected 2 unique origins, got %v", origins)
	}
	if origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", origins)
	}
}
