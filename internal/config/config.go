package config

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/kelseyhightower/envconfig"

	"github.com/loaddocs/docmatch/internal/matching"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"DM_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"DM_DB_MAX_CONNS" default:"8"`

	HTTPAddr           string `envconfig:"HTTP_ADDR" default:":8080"`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`

	MatchingEnv
}

// MatchingEnv holds the engine threshold overrides. It loads on its own
// so offline commands can build an engine without a database URL.
type MatchingEnv struct {
	// Defaults mirror matching.DefaultConfig.
	MatchBOLWeight              float64 `envconfig:"MATCH_BOL_WEIGHT" default:"3.0"`
	MatchPROWeight              float64 `envconfig:"MATCH_PRO_WEIGHT" default:"2.0"`
	MatchInvoiceWeight          float64 `envconfig:"MATCH_INVOICE_WEIGHT" default:"1.5"`
	MatchFuzzyMatchWeight       float64 `envconfig:"MATCH_FUZZY_MATCH_WEIGHT" default:"0.7"`
	MatchFuzzyThreshold         float64 `envconfig:"MATCH_FUZZY_THRESHOLD" default:"0.8"`
	MatchAddressSimThreshold    float64 `envconfig:"MATCH_ADDRESS_SIMILARITY_THRESHOLD" default:"0.75"`
	MatchNameSimThreshold       float64 `envconfig:"MATCH_NAME_SIMILARITY_THRESHOLD" default:"0.80"`
	MatchMaxDateDifferenceDays  int     `envconfig:"MATCH_MAX_DATE_DIFFERENCE_DAYS" default:"14"`
	MatchStrictDateWindowDays   int     `envconfig:"MATCH_STRICT_DATE_WINDOW_DAYS" default:"7"`
	MatchHighConfidence         float64 `envconfig:"MATCH_HIGH_CONFIDENCE_THRESHOLD" default:"0.85"`
	MatchMediumConfidence       float64 `envconfig:"MATCH_MEDIUM_CONFIDENCE_THRESHOLD" default:"0.65"`
	MatchReviewThreshold        float64 `envconfig:"MATCH_REVIEW_THRESHOLD" default:"0.40"`
	MatchRequiredDocumentTypes  string  `envconfig:"MATCH_REQUIRED_DOCUMENT_TYPES" default:"INVOICE"`
	MatchPreferredDocumentTypes string  `envconfig:"MATCH_PREFERRED_DOCUMENT_TYPES" default:"INVOICE,POD"`
}

// LoadMatching builds the engine configuration from the environment
// alone. Commands that never touch the database use this instead of Load.
func LoadMatching() (matching.Config, error) {
	var env MatchingEnv
	if err := envconfig.Process("", &env); err != nil {
		return matching.Config{}, err
	}
	return env.Matching()
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("DM_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DM_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DM_DB_MIN_CONNS (%d) cannot exceed DM_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if _, err := c.Matching(); err != nil {
		return err
	}
	return nil
}

// Matching materializes the immutable engine configuration. It is built
// once per process and passed explicitly into every grouping call.
func (m *MatchingEnv) Matching() (matching.Config, error) {
	required, err := parseDocumentTypeList("MATCH_REQUIRED_DOCUMENT_TYPES", m.MatchRequiredDocumentTypes)
	if err != nil {
		return matching.Config{}, err
	}
	preferred, err := parseDocumentTypeList("MATCH_PREFERRED_DOCUMENT_TYPES", m.MatchPreferredDocumentTypes)
	if err != nil {
		return matching.Config{}, err
	}

	cfg := matching.Config{
		BOLWeight:                  m.MatchBOLWeight,
		PROWeight:                  m.MatchPROWeight,
		InvoiceWeight:              m.MatchInvoiceWeight,
		FuzzyMatchWeight:           m.MatchFuzzyMatchWeight,
		FuzzyThreshold:             m.MatchFuzzyThreshold,
		AddressSimilarityThreshold: m.MatchAddressSimThreshold,
		NameSimilarityThreshold:    m.MatchNameSimThreshold,
		MaxDateDifferenceDays:      m.MatchMaxDateDifferenceDays,
		StrictDateWindowDays:       m.MatchStrictDateWindowDays,
		HighConfidenceThreshold:    m.MatchHighConfidence,
		MediumConfidenceThreshold:  m.MatchMediumConfidence,
		ReviewThreshold:            m.MatchReviewThreshold,
		RequiredDocumentTypes:      required,
		PreferredDocumentTypes:     preferred,
	}
	if err := cfg.Validate(); err != nil {
		return matching.Config{}, err
	}
	return cfg, nil
}

func parseDocumentTypeList(envName, raw string) (mapset.Set[matching.DocumentType], error) {
	types := mapset.NewThreadUnsafeSet[matching.DocumentType]()
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		docType, err := matching.ParseDocumentType(part)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", envName, err)
		}
		types.Add(docType)
	}
	return types, nil
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}
