package matching

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
)

// DocumentIdentifiers is the normalized identifier record derived from a
// document's parsed data. Instances are built fresh on every extraction
// and are not mutated afterwards.
type DocumentIdentifiers struct {
	DocumentID   uuid.UUID
	DocumentType DocumentType

	BOLNumbers           mapset.Set[string]
	PRONumbers           mapset.Set[string]
	InvoiceNumbers       mapset.Set[string]
	CustomerOrderNumbers mapset.Set[string]

	ShipperName      string
	ShipperAddress   string
	ConsigneeName    string
	ConsigneeAddress string

	DocumentDate *time.Time
	PickupDate   *time.Time
	DeliveryDate *time.Time

	TotalAmount *float64

	Confidence  float64
	ExtractedAt time.Time
}

func newDocumentIdentifiers(doc Document, extractedAt time.Time) *DocumentIdentifiers {
	return &DocumentIdentifiers{
		DocumentID:           doc.ID,
		DocumentType:         doc.Type,
		BOLNumbers:           mapset.NewThreadUnsafeSet[string](),
		PRONumbers:           mapset.NewThreadUnsafeSet[string](),
		InvoiceNumbers:       mapset.NewThreadUnsafeSet[string](),
		CustomerOrderNumbers: mapset.NewThreadUnsafeSet[string](),
		Confidence:           doc.Confidence,
		ExtractedAt:          extractedAt,
	}
}

func (d *DocumentIdentifiers) dates() []time.Time {
	dates := make([]time.Time, 0, 3)
	for _, ts := range []*time.Time{d.PickupDate, d.DeliveryDate, d.DocumentDate} {
		if ts != nil {
			dates = append(dates, *ts)
		}
	}
	return dates
}

// SortedValues returns a set's members in lexicographic order, for
// deterministic rendering of identifier sets.
func SortedValues(set mapset.Set[string]) []string {
	if set == nil || set.Cardinality() == 0 {
		return nil
	}
	values := set.ToSlice()
	sort.Strings(values)
	return values
}

type extractorFunc func(parsed map[string]any, ids *DocumentIdentifiers)

// extractors maps each matchable document type to its extraction strategy.
// Types without an entry are valid input but contribute no identifiers.
var extractors = map[DocumentType]extractorFunc{
	DocumentTypeInvoice: extractInvoiceIdentifiers,
	DocumentTypePOD:     extractBOLIdentifiers,
	DocumentTypeLumper:  extractLumperIdentifiers,
}

var (
	bolReferencePattern = regexp.MustCompile(`BOL[#:\s]*([A-Z0-9\-_]+)`)
	proReferencePattern = regexp.MustCompile(`PRO[#:\s]*([A-Z0-9\-_]+)`)
)

func extractInvoiceIdentifiers(parsed map[string]any, ids *DocumentIdentifiers) {
	if invoiceNum := fieldString(parsed, "invoice_number"); invoiceNum != "" {
		ids.InvoiceNumbers.Add(NormalizeIdentifier(invoiceNum))
	}

	// Invoices frequently reference the shipment's BOL or PRO number
	// inside free-text line-item descriptions.
	for _, item := range fieldSlice(parsed, "line_items") {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		description := strings.ToUpper(fieldString(entry, "description"))
		for _, match := range bolReferencePattern.FindAllStringSubmatch(description, -1) {
			ids.BOLNumbers.Add(NormalizeIdentifier(match[1]))
		}
		for _, match := range proReferencePattern.FindAllStringSubmatch(description, -1) {
			ids.PRONumbers.Add(NormalizeIdentifier(match[1]))
		}
	}

	ids.ShipperName = NormalizeName(fieldString(parsed, "vendor_name"))
	ids.ConsigneeName = NormalizeName(fieldString(parsed, "customer_name"))
	ids.ShipperAddress = NormalizeAddress(fieldString(parsed, "vendor_address"))
	ids.ConsigneeAddress = NormalizeAddress(fieldString(parsed, "customer_address"))

	ids.DocumentDate = ParseDate(parsed["invoice_date"])
	ids.TotalAmount = fieldAmount(parsed, "total_amount")
}

func extractBOLIdentifiers(parsed map[string]any, ids *DocumentIdentifiers) {
	if bolNum := fieldString(parsed, "bol_number"); bolNum != "" {
		ids.BOLNumbers.Add(NormalizeIdentifier(bolNum))
	}
	if proNum := fieldString(parsed, "pro_number"); proNum != "" {
		ids.PRONumbers.Add(NormalizeIdentifier(proNum))
	}

	ids.ShipperName = NormalizeName(fieldString(parsed, "shipper_name"))
	ids.ConsigneeName = NormalizeName(fieldString(parsed, "consignee_name"))
	ids.ShipperAddress = NormalizeAddress(fieldString(parsed, "shipper_address"))
	ids.ConsigneeAddress = NormalizeAddress(fieldString(parsed, "consignee_address"))

	ids.PickupDate = ParseDate(parsed["pickup_date"])
	ids.DeliveryDate = ParseDate(parsed["delivery_date"])
	ids.TotalAmount = fieldAmount(parsed, "freight_charges")
}

func extractLumperIdentifiers(parsed map[string]any, ids *DocumentIdentifiers) {
	if bolNum := fieldString(parsed, "bol_number"); bolNum != "" {
		ids.BOLNumbers.Add(NormalizeIdentifier(bolNum))
	}

	// Lumper receipts name the warehouse where the unloading happened,
	// which corresponds to the load's consignee side.
	ids.ConsigneeName = NormalizeName(fieldString(parsed, "facility_name"))
	ids.ConsigneeAddress = NormalizeAddress(fieldString(parsed, "facility_address"))

	ids.DocumentDate = ParseDate(parsed["receipt_date"])
	ids.TotalAmount = fieldAmount(parsed, "total_amount")
}

func fieldString(parsed map[string]any, key string) string {
	raw, ok := parsed[key]
	if !ok || raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func fieldSlice(parsed map[string]any, key string) []any {
	raw, ok := parsed[key]
	if !ok {
		return nil
	}
	values, ok := raw.([]any)
	if !ok {
		return nil
	}
	return values
}

func fieldAmount(parsed map[string]any, key string) *float64 {
	raw, ok := parsed[key]
	if !ok || raw == nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		return &v
	case float32:
		value := float64(v)
		return &value
	case int:
		value := float64(v)
		return &value
	case int64:
		value := float64(v)
		return &value
	case json.Number:
		if value, err := v.Float64(); err == nil {
			return &value
		}
	case string:
		trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), "$"))
		trimmed = strings.ReplaceAll(trimmed, ",", "")
		if value, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return &value
		}
	}
	return nil
}
