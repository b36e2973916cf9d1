package matching

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// Config holds the weights and thresholds consumed by scoring, clustering
// and group metrics. It is a plain value constructed once by the caller
// and must not be mutated after construction; every grouping call reads
// the same instance, so concurrent calls need no locking.
type Config struct {
	// Identifier evidence weights.
	BOLWeight     float64
	PROWeight     float64
	InvoiceWeight float64

	// Fuzzy identifier matching.
	FuzzyMatchWeight float64
	FuzzyThreshold   float64

	// Address evidence thresholds.
	AddressSimilarityThreshold float64
	NameSimilarityThreshold    float64

	// Temporal evidence windows.
	MaxDateDifferenceDays int
	StrictDateWindowDays  int

	// Confidence thresholds.
	HighConfidenceThreshold   float64
	MediumConfidenceThreshold float64
	ReviewThreshold           float64

	// Group completeness requirements.
	RequiredDocumentTypes  mapset.Set[DocumentType]
	PreferredDocumentTypes mapset.Set[DocumentType]
}

// DefaultConfig returns the production matching configuration.
func DefaultConfig() Config {
	return Config{
		BOLWeight:                  3.0,
		PROWeight:                  2.0,
		InvoiceWeight:              1.5,
		FuzzyMatchWeight:           0.7,
		FuzzyThreshold:             0.8,
		AddressSimilarityThreshold: 0.75,
		NameSimilarityThreshold:    0.80,
		MaxDateDifferenceDays:      14,
		StrictDateWindowDays:       7,
		HighConfidenceThreshold:    0.85,
		MediumConfidenceThreshold:  0.65,
		ReviewThreshold:            0.40,
		RequiredDocumentTypes:      mapset.NewThreadUnsafeSet(DocumentTypeInvoice),
		PreferredDocumentTypes:     mapset.NewThreadUnsafeSet(DocumentTypeInvoice, DocumentTypePOD),
	}
}

func (c Config) Validate() error {
	unitRanged := map[string]float64{
		"fuzzy match weight":           c.FuzzyMatchWeight,
		"fuzzy threshold":              c.FuzzyThreshold,
		"address similarity threshold": c.AddressSimilarityThreshold,
		"name similarity threshold":    c.NameSimilarityThreshold,
		"high confidence threshold":    c.HighConfidenceThreshold,
		"medium confidence threshold":  c.MediumConfidenceThreshold,
		"review threshold":             c.ReviewThreshold,
	}
	for label, value := range unitRanged {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be within [0,1], got %g", label, value)
		}
	}
	if c.BOLWeight <= 0 || c.PROWeight <= 0 || c.InvoiceWeight <= 0 {
		return fmt.Errorf("identifier weights must be positive")
	}
	if c.StrictDateWindowDays < 0 {
		return fmt.Errorf("strict date window must be >= 0 days")
	}
	if c.MaxDateDifferenceDays < c.StrictDateWindowDays {
		return fmt.Errorf("max date difference (%d) cannot be below strict date window (%d)",
			c.MaxDateDifferenceDays, c.StrictDateWindowDays)
	}
	if c.RequiredDocumentTypes == nil || c.PreferredDocumentTypes == nil {
		return fmt.Errorf("required and preferred document type sets must be non-nil")
	}
	return nil
}
