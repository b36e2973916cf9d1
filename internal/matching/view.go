package matching

import "time"

// IdentifierView is the JSON rendering of one document's extracted
// identifiers. Set members are sorted so output is stable.
type IdentifierView struct {
	DocumentID           string     `json:"document_id"`
	DocumentType         string     `json:"document_type"`
	BOLNumbers           []string   `json:"bol_numbers,omitempty"`
	PRONumbers           []string   `json:"pro_numbers,omitempty"`
	InvoiceNumbers       []string   `json:"invoice_numbers,omitempty"`
	CustomerOrderNumbers []string   `json:"customer_order_numbers,omitempty"`
	ShipperName          string     `json:"shipper_name,omitempty"`
	ShipperAddress       string     `json:"shipper_address,omitempty"`
	ConsigneeName        string     `json:"consignee_name,omitempty"`
	ConsigneeAddress     string     `json:"consignee_address,omitempty"`
	DocumentDate         *time.Time `json:"document_date,omitempty"`
	PickupDate           *time.Time `json:"pickup_date,omitempty"`
	DeliveryDate         *time.Time `json:"delivery_date,omitempty"`
	TotalAmount          *float64   `json:"total_amount,omitempty"`
	Confidence           float64    `json:"confidence"`
	ExtractedAt          time.Time  `json:"extracted_at"`
}

// DateRangeView is the JSON rendering of a group's document date span.
type DateRangeView struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// GroupView is the JSON rendering of one document group.
type GroupView struct {
	GroupID             string            `json:"group_id"`
	Documents           []IdentifierView  `json:"documents"`
	ConfidenceScore     float64           `json:"confidence_score"`
	MatchReasons        []string          `json:"match_reasons"`
	MismatchFlags       []string          `json:"mismatch_flags"`
	DominantIdentifiers map[string]string `json:"dominant_identifiers"`
	DateRange           *DateRangeView    `json:"date_range,omitempty"`
	TotalDocuments      int               `json:"total_documents"`
	NeedsReview         bool              `json:"needs_review"`
	CompletenessScore   float64           `json:"completeness_score"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// BuildGroupViews renders groups for JSON output. Nil slices become
// empty so consumers always see arrays.
func BuildGroupViews(groups []*DocumentGroup) []GroupView {
	views := make([]GroupView, 0, len(groups))
	for _, group := range groups {
		if group == nil {
			continue
		}

		view := GroupView{
			GroupID:             group.GroupID.String(),
			Documents:           make([]IdentifierView, 0, len(group.Documents)),
			ConfidenceScore:     group.ConfidenceScore,
			MatchReasons:        emptyIfNil(group.MatchReasons),
			MismatchFlags:       emptyIfNil(group.MismatchFlags),
			DominantIdentifiers: group.DominantIdentifiers,
			TotalDocuments:      group.TotalDocuments,
			NeedsReview:         group.NeedsReview,
			CompletenessScore:   group.CompletenessScore,
			CreatedAt:           group.CreatedAt,
			UpdatedAt:           group.UpdatedAt,
		}
		if view.DominantIdentifiers == nil {
			view.DominantIdentifiers = map[string]string{}
		}
		if group.DateRange != nil {
			view.DateRange = &DateRangeView{
				Start: group.DateRange.Start,
				End:   group.DateRange.End,
			}
		}
		for _, doc := range group.Documents {
			if doc == nil {
				continue
			}
			view.Documents = append(view.Documents, BuildIdentifierView(doc))
		}
		views = append(views, view)
	}
	return views
}

// BuildIdentifierView renders one extraction record for JSON output.
func BuildIdentifierView(ids *DocumentIdentifiers) IdentifierView {
	return IdentifierView{
		DocumentID:           ids.DocumentID.String(),
		DocumentType:         string(ids.DocumentType),
		BOLNumbers:           SortedValues(ids.BOLNumbers),
		PRONumbers:           SortedValues(ids.PRONumbers),
		InvoiceNumbers:       SortedValues(ids.InvoiceNumbers),
		CustomerOrderNumbers: SortedValues(ids.CustomerOrderNumbers),
		ShipperName:          ids.ShipperName,
		ShipperAddress:       ids.ShipperAddress,
		ConsigneeName:        ids.ConsigneeName,
		ConsigneeAddress:     ids.ConsigneeAddress,
		DocumentDate:         ids.DocumentDate,
		PickupDate:           ids.PickupDate,
		DeliveryDate:         ids.DeliveryDate,
		TotalAmount:          ids.TotalAmount,
		Confidence:           ids.Confidence,
		ExtractedAt:          ids.ExtractedAt,
	}
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
