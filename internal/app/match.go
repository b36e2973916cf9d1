package app

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/loaddocs/docmatch/internal/cli"
	"github.com/loaddocs/docmatch/internal/db"
	"github.com/loaddocs/docmatch/internal/logging"
	"github.com/loaddocs/docmatch/internal/matching"
	payloadschema "github.com/loaddocs/docmatch/schema"
)

func runMatch(args []string) int {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	input := fs.String("input", "", "Path to a match request JSON file, or - for stdin")
	loadUUID := fs.String("load", "", "Load UUID whose documents should be grouped")
	save := fs.Bool("save", false, "Persist the grouping (requires --load)")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "match does not accept positional arguments")
		return 2
	}

	hasInput := strings.TrimSpace(*input) != ""
	hasLoad := strings.TrimSpace(*loadUUID) != ""
	switch {
	case hasInput && hasLoad:
		fmt.Fprintln(os.Stderr, "--input and --load are mutually exclusive")
		return 2
	case !hasInput && !hasLoad:
		fmt.Fprintln(os.Stderr, "one of --input or --load is required")
		return 2
	case *save && !hasLoad:
		fmt.Fprintln(os.Stderr, "--save requires --load")
		return 2
	}

	if hasInput {
		return runMatchFromInput(envLoader, *input)
	}
	return runMatchFromLoad(envLoader, *loadUUID, *save, *timeout)
}

func runMatchFromInput(envLoader *cli.EnvLoader, inputPath string) int {
	raw, err := readInput(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read input: %v\n", err)
		return 1
	}

	request, err := payloadschema.ValidateMatchRequestPayload(json.RawMessage(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid match request: %v\n", err)
		return 1
	}

	documents := make([]matching.Document, 0, len(request.Documents))
	for i, item := range request.Documents {
		id, err := uuid.Parse(strings.TrimSpace(item.DocumentID))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid documents[%d].document_id: %v\n", i, err)
			return 1
		}
		docType, err := matching.ParseDocumentType(item.DocumentType)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid documents[%d].document_type: %v\n", i, err)
			return 1
		}
		documents = append(documents, matching.Document{
			ID:         id,
			Type:       docType,
			ParsedData: item.ParsedData,
			Confidence: item.Confidence,
		})
	}

	logger := newCommandLogger()
	engine, err := newOfflineEngine(envLoader, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build engine: %v\n", err)
		return 1
	}

	groups, err := engine.GroupRelatedDocuments(documents)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Grouping failed: %v\n", err)
		return 1
	}

	if err := printJSON(matching.BuildGroupViews(groups)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	return 0
}

func runMatchFromLoad(envLoader *cli.EnvLoader, loadUUID string, save bool, timeout time.Duration) int {
	parsedLoad, err := uuid.Parse(strings.TrimSpace(loadUUID))
	if err != nil || parsedLoad == uuid.Nil {
		fmt.Fprintln(os.Stderr, "--load must be a valid UUID")
		return 2
	}

	ctx, cancel, cfg, pool, err := connectPool(timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	matchCfg, err := cfg.Matching()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid matching config: %v\n", err)
		return 1
	}

	store, err := db.NewGroupStore(pool)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build group store: %v\n", err)
		return 1
	}

	engine, err := matching.NewEngine(matchCfg, store, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build engine: %v\n", err)
		return 1
	}

	documents, err := pool.ListMatchableDocumentsByLoad(ctx, parsedLoad.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list documents for load: %v\n", err)
		return 1
	}

	groups, err := engine.GroupRelatedDocuments(documents)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Grouping failed: %v\n", err)
		return 1
	}

	if save {
		if err := store.SaveLoadGroups(ctx, parsedLoad.String(), groups); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save groups: %v\n", err)
			return 1
		}
		logger.Info().
			Str("load_uuid", parsedLoad.String()).
			Int("groups", len(groups)).
			Msg("document groups saved")
	}

	if err := printJSON(matching.BuildGroupViews(groups)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	return 0
}
