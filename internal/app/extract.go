package app

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/loaddocs/docmatch/internal/cli"
	"github.com/loaddocs/docmatch/internal/matching"
)

type extractInput struct {
	DocumentID   string         `json:"document_id"`
	DocumentType string         `json:"document_type"`
	Confidence   float64        `json:"confidence"`
	ParsedData   map[string]any `json:"parsed_data"`
}

func runExtract(args []string) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	payload := fs.String("payload", "", "Document JSON payload")
	payloadFile := fs.String("payload-file", "", "Path to a document JSON file, or - for stdin")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "extract does not accept positional arguments")
		return 2
	}

	var raw []byte
	switch {
	case strings.TrimSpace(*payload) != "" && strings.TrimSpace(*payloadFile) != "":
		fmt.Fprintln(os.Stderr, "--payload and --payload-file are mutually exclusive")
		return 2
	case strings.TrimSpace(*payload) != "":
		raw = []byte(*payload)
	case strings.TrimSpace(*payloadFile) != "":
		var err error
		raw, err = readInput(*payloadFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read payload: %v\n", err)
			return 1
		}
	default:
		fmt.Fprintln(os.Stderr, "one of --payload or --payload-file is required")
		return 2
	}

	var input extractInput
	if err := json.Unmarshal(raw, &input); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid payload JSON: %v\n", err)
		return 1
	}

	docID, err := uuid.Parse(strings.TrimSpace(input.DocumentID))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid document_id: %v\n", err)
		return 1
	}
	docType, err := matching.ParseDocumentType(input.DocumentType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid document_type: %v\n", err)
		return 1
	}

	logger := newCommandLogger()
	engine, err := newOfflineEngine(envLoader, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build engine: %v\n", err)
		return 1
	}

	record, err := engine.ExtractDocumentIdentifiers(matching.Document{
		ID:         docID,
		Type:       docType,
		ParsedData: input.ParsedData,
		Confidence: input.Confidence,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		return 1
	}

	view := matching.BuildIdentifierView(record)
	if err := printJSON(view); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	return 0
}
