package matching

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	engine, err := NewEngine(cfg, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	return engine
}

func TestExtractDocumentIdentifiers_Invoice(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, DefaultConfig())
	doc := Document{
		ID:         uuid.New(),
		Type:       DocumentTypeInvoice,
		Confidence: 0.92,
		ParsedData: map[string]any{
			"invoice_number": "INV-2024-001",
			"line_items": []any{
				map[string]any{"description": "Freight charges BOL# 12345 and PRO: 998877"},
				map[string]any{"description": "Fuel surcharge"},
			},
			"vendor_name":      "Acme Logistics LLC",
			"customer_name":    "Fresh Foods Inc",
			"vendor_address":   "123 Main Street",
			"customer_address": "900 Dock Boulevard",
			"invoice_date":     "2024-03-15",
			"total_amount":     1250.00,
		},
	}

	ids, err := engine.ExtractDocumentIdentifiers(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !ids.InvoiceNumbers.Contains("INV2024001") {
		t.Fatalf("missing normalized invoice number, got %v", SortedValues(ids.InvoiceNumbers))
	}
	if !ids.BOLNumbers.Contains("12345") {
		t.Fatalf("BOL reference not scanned from line items, got %v", SortedValues(ids.BOLNumbers))
	}
	if !ids.PRONumbers.Contains("998877") {
		t.Fatalf("PRO reference not scanned from line items, got %v", SortedValues(ids.PRONumbers))
	}
	if ids.ShipperName != "ACME LOGISTICS" {
		t.Fatalf("unexpected shipper name: %q", ids.ShipperName)
	}
	if ids.ConsigneeName != "FRESH FOODS" {
		t.Fatalf("unexpected consignee name: %q", ids.ConsigneeName)
	}
	if ids.ShipperAddress != "123 MAIN ST" {
		t.Fatalf("unexpected shipper address: %q", ids.ShipperAddress)
	}
	if ids.DocumentDate == nil {
		t.Fatalf("invoice date was not parsed")
	}
	if ids.TotalAmount == nil || *ids.TotalAmount != 1250.00 {
		t.Fatalf("unexpected total amount: %v", ids.TotalAmount)
	}
	if ids.Confidence != 0.92 {
		t.Fatalf("confidence not carried over: %f", ids.Confidence)
	}
}

func TestExtractDocumentIdentifiers_BOL(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, DefaultConfig())
	doc := Document{
		ID:   uuid.New(),
		Type: DocumentTypePOD,
		ParsedData: map[string]any{
			"bol_number":        "BOL-12345",
			"pro_number":        "PRO 998877",
			"shipper_name":      "Acme Logistics",
			"consignee_name":    "Fresh Foods",
			"shipper_address":   "123 Main Street",
			"consignee_address": "900 Dock Boulevard",
			"pickup_date":       "2024-03-14",
			"delivery_date":     "2024-03-16",
			"freight_charges":   "1,250.00",
		},
	}

	ids, err := engine.ExtractDocumentIdentifiers(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !ids.BOLNumbers.Contains("BOL12345") {
		t.Fatalf("unexpected BOL numbers: %v", SortedValues(ids.BOLNumbers))
	}
	if !ids.PRONumbers.Contains("PRO998877") {
		t.Fatalf("unexpected PRO numbers: %v", SortedValues(ids.PRONumbers))
	}
	if ids.PickupDate == nil || ids.DeliveryDate == nil {
		t.Fatalf("pickup/delivery dates were not parsed")
	}
	if ids.TotalAmount == nil || *ids.TotalAmount != 1250.00 {
		t.Fatalf("freight charges not mapped to total amount: %v", ids.TotalAmount)
	}
}

func TestExtractDocumentIdentifiers_Lumper(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, DefaultConfig())
	doc := Document{
		ID:   uuid.New(),
		Type: DocumentTypeLumper,
		ParsedData: map[string]any{
			"bol_number":       "bol 12345",
			"facility_name":    "Fresh Foods Warehouse Co",
			"facility_address": "900 Dock Boulevard",
			"receipt_date":     "03/16/2024",
			"total_amount":     150,
		},
	}

	ids, err := engine.ExtractDocumentIdentifiers(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !ids.BOLNumbers.Contains("BOL12345") {
		t.Fatalf("unexpected BOL numbers: %v", SortedValues(ids.BOLNumbers))
	}
	if ids.ConsigneeName != "FRESH FOODS WAREHOUSE" {
		t.Fatalf("facility name not mapped to consignee: %q", ids.ConsigneeName)
	}
	if ids.ConsigneeAddress != "900 DOCK BLVD" {
		t.Fatalf("facility address not mapped to consignee: %q", ids.ConsigneeAddress)
	}
	if ids.DocumentDate == nil {
		t.Fatalf("receipt date was not parsed")
	}
	if ids.TotalAmount == nil || *ids.TotalAmount != 150 {
		t.Fatalf("unexpected total amount: %v", ids.TotalAmount)
	}
}

func TestExtractDocumentIdentifiers_UnsupportedType(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, DefaultConfig())
	doc := Document{
		ID:   uuid.New(),
		Type: DocumentTypeCDL,
		ParsedData: map[string]any{
			"license_number": "D123-456-789",
		},
	}

	ids, err := engine.ExtractDocumentIdentifiers(doc)
	if err != nil {
		t.Fatalf("unsupported types must not error: %v", err)
	}
	if ids.BOLNumbers.Cardinality() != 0 || ids.InvoiceNumbers.Cardinality() != 0 {
		t.Fatalf("unsupported type must yield empty identifier sets")
	}
	if ids.ShipperName != "" || ids.ConsigneeName != "" {
		t.Fatalf("unsupported type must yield unset names")
	}
}

func TestExtractDocumentIdentifiers_NoParsedData(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, DefaultConfig())
	ids, err := engine.ExtractDocumentIdentifiers(Document{ID: uuid.New(), Type: DocumentTypeInvoice})
	if err != nil {
		t.Fatalf("missing parsed data must not error: %v", err)
	}
	if ids.InvoiceNumbers.Cardinality() != 0 {
		t.Fatalf("expected empty identifiers for empty parsed data")
	}
}

func TestExtractDocumentIdentifiers_MalformedDocument(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, DefaultConfig())

	if _, err := engine.ExtractDocumentIdentifiers(Document{Type: DocumentTypeInvoice}); err == nil {
		t.Fatalf("expected error for document without id")
	}
	if _, err := engine.ExtractDocumentIdentifiers(Document{ID: uuid.New()}); err == nil {
		t.Fatalf("expected error for document without type")
	}
}

func TestParseDocumentType(t *testing.T) {
	t.Parallel()

	if got, err := ParseDocumentType(" invoice "); err != nil || got != DocumentTypeInvoice {
		t.Fatalf("unexpected result: %v %v", got, err)
	}
	if _, err := ParseDocumentType("WAYBILL"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	if _, err := ParseDocumentType(""); err == nil {
		t.Fatalf("expected error for empty type")
	}
}
