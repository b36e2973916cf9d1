package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed match_request.schema.json
var matchRequestSchemaJSON string

type MatchRequest struct {
	Documents []MatchDocument `json:"documents"`
}

type MatchDocument struct {
	DocumentID   string         `json:"document_id"`
	DocumentType string         `json:"document_type"`
	Confidence   float64        `json:"confidence"`
	ParsedData   map[string]any `json:"parsed_data"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

func ValidateMatchRequestPayload(payload json.RawMessage) (*MatchRequest, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var request MatchRequest
	if err := json.Unmarshal(normalized, &request); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := validateSemantics(&request); err != nil {
		return nil, err
	}

	return &request, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("match_request.schema.json", strings.NewReader(matchRequestSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("match_request.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateSemantics(request *MatchRequest) error {
	if request == nil {
		return fmt.Errorf("payload is nil")
	}
	if len(request.Documents) == 0 {
		return fmt.Errorf("documents must not be empty")
	}

	seen := make(map[string]struct{}, len(request.Documents))
	for i, doc := range request.Documents {
		parsedID, err := uuid.Parse(strings.TrimSpace(doc.DocumentID))
		if err != nil {
			return fmt.Errorf("documents[%d].document_id is not a valid UUID: %w", i, err)
		}
		if parsedID == uuid.Nil {
			return fmt.Errorf("documents[%d].document_id must not be the nil UUID", i)
		}
		canonical := parsedID.String()
		if _, exists := seen[canonical]; exists {
			return fmt.Errorf("documents[%d].document_id %s is duplicated", i, canonical)
		}
		seen[canonical] = struct{}{}

		if strings.TrimSpace(doc.DocumentType) == "" {
			return fmt.Errorf("documents[%d].document_type must not be empty", i)
		}
	}

	return nil
}
