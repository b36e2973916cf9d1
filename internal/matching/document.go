package matching

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DocumentType is the closed set of document types the ingestion system
// produces. Only a subset carries identifiers usable for load matching.
type DocumentType string

const (
	DocumentTypeCDL       DocumentType = "CDL"
	DocumentTypeCOI       DocumentType = "COI"
	DocumentTypeAgreement DocumentType = "AGREEMENT"
	DocumentTypeRateCon   DocumentType = "RATE_CON"
	// DocumentTypePOD is how bills of lading are stored upstream.
	DocumentTypePOD     DocumentType = "POD"
	DocumentTypeInvoice DocumentType = "INVOICE"
	DocumentTypeLumper  DocumentType = "LUMPER"
)

var knownDocumentTypes = map[DocumentType]struct{}{
	DocumentTypeCDL:       {},
	DocumentTypeCOI:       {},
	DocumentTypeAgreement: {},
	DocumentTypeRateCon:   {},
	DocumentTypePOD:       {},
	DocumentTypeInvoice:   {},
	DocumentTypeLumper:    {},
}

// ParseDocumentType normalizes and validates a raw document type label.
func ParseDocumentType(raw string) (DocumentType, error) {
	value := DocumentType(strings.ToUpper(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("document type is empty")
	}
	if _, ok := knownDocumentTypes[value]; !ok {
		return "", fmt.Errorf("unknown document type %q", raw)
	}
	return value, nil
}

// Document is the engine's view of an ingested document: identity, type,
// and the field map produced by the upstream parsing pipeline. ParsedData
// may be nil or empty; that is an extraction gap, not an error.
type Document struct {
	ID         uuid.UUID
	Type       DocumentType
	ParsedData map[string]any
	Confidence float64
}

func (d Document) validate() error {
	if d.ID == uuid.Nil {
		return fmt.Errorf("document has no usable id")
	}
	if strings.TrimSpace(string(d.Type)) == "" {
		return fmt.Errorf("document %s has no usable type", d.ID)
	}
	return nil
}
