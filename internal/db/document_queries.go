package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/loaddocs/docmatch/internal/matching"
)

// ListMatchableDocumentsByLoad returns all non-deleted documents attached
// to a load, converted into engine input. Documents with unparseable
// UUIDs are rejected because they indicate data corruption; unknown
// document types pass through and the engine skips them.
func (p *Pool) ListMatchableDocumentsByLoad(ctx context.Context, loadUUID string) ([]matching.Document, error) {
	trimmedUUID := strings.TrimSpace(loadUUID)
	if trimmedUUID == "" {
		return nil, fmt.Errorf("load UUID is required")
	}

	const q = `
SELECT
	d.document_uuid::text,
	d.document_type,
	d.confidence,
	d.parsed_data
FROM docs.documents d
WHERE d.load_uuid = $1::uuid
  AND d.deleted_at IS NULL
ORDER BY d.created_at ASC, d.document_id ASC
`

	rows, err := p.Query(ctx, q, trimmedUUID)
	if err != nil {
		return nil, fmt.Errorf("query documents by load: %w", err)
	}
	defer rows.Close()

	var docs []matching.Document
	for rows.Next() {
		var (
			docUUID    string
			docType    string
			confidence float64
			parsedRaw  []byte
		)
		if err := rows.Scan(&docUUID, &docType, &confidence, &parsedRaw); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}

		id, err := uuid.Parse(docUUID)
		if err != nil {
			return nil, fmt.Errorf("parse document UUID %q: %w", docUUID, err)
		}

		var parsed map[string]any
		if len(parsedRaw) > 0 {
			if err := json.Unmarshal(parsedRaw, &parsed); err != nil {
				return nil, fmt.Errorf("decode parsed_data for document %s: %w", docUUID, err)
			}
		}

		docs = append(docs, matching.Document{
			ID:         id,
			Type:       matching.DocumentType(strings.ToUpper(strings.TrimSpace(docType))),
			ParsedData: parsed,
			Confidence: confidence,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document rows: %w", err)
	}
	return docs, nil
}
