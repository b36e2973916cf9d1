package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/loaddocs/docmatch/internal/matching"
	payloadschema "github.com/loaddocs/docmatch/schema"
)

// maxMatchRequestBytes bounds ad-hoc match payloads. Parsed OCR output
// for a single load is far below this.
const maxMatchRequestBytes = 4 << 20

// handleMatch groups an ad-hoc batch of documents supplied in the
// request body. Nothing is persisted.
func (s *Server) handleMatch(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxMatchRequestBytes+1))
	if err != nil {
		return failValidation(c, map[string]string{"body": "could not read request body"})
	}
	if len(body) > maxMatchRequestBytes {
		return fail(c, http.StatusRequestEntityTooLarge, "Request body too large", nil)
	}

	request, err := payloadschema.ValidateMatchRequestPayload(body)
	if err != nil {
		return failValidation(c, map[string]string{"documents": err.Error()})
	}

	documents, err := buildEngineDocuments(request.Documents)
	if err != nil {
		return failValidation(c, map[string]string{"documents": err.Error()})
	}

	groups, err := s.engine.GroupRelatedDocuments(documents)
	if err != nil {
		s.logger.Error().Err(err).Msg("group documents failed")
		return internalError(c, "Failed to group documents")
	}

	return success(c, map[string]any{
		"groups": matching.BuildGroupViews(groups),
	})
}

// handleLoadMatch groups every document attached to a load. With
// ?save=true the result replaces the load's persisted grouping.
func (s *Server) handleLoadMatch(c echo.Context) error {
	loadUUID, err := parseLoadUUID(c.Param("load_uuid"))
	if err != nil {
		return failValidation(c, map[string]string{"load_uuid": err.Error()})
	}

	save := false
	if raw := strings.TrimSpace(c.QueryParam("save")); raw != "" {
		save, err = strconv.ParseBool(raw)
		if err != nil {
			return failValidation(c, map[string]string{"save": "must be a boolean"})
		}
	}

	ctx := c.Request().Context()
	documents, err := s.pool.ListMatchableDocumentsByLoad(ctx, loadUUID)
	if err != nil {
		s.logger.Error().Err(err).Str("load_uuid", loadUUID).Msg("list load documents failed")
		return internalError(c, "Failed to load documents")
	}

	groups, err := s.engine.GroupRelatedDocuments(documents)
	if err != nil {
		s.logger.Error().Err(err).Str("load_uuid", loadUUID).Msg("group load documents failed")
		return internalError(c, "Failed to group documents")
	}

	if save {
		if s.store == nil {
			return fail(c, http.StatusConflict, "Persistence is not available", nil)
		}
		if err := s.store.SaveLoadGroups(ctx, loadUUID, groups); err != nil {
			s.logger.Error().Err(err).Str("load_uuid", loadUUID).Msg("save load groups failed")
			return internalError(c, "Failed to save document groups")
		}
	}

	return success(c, map[string]any{
		"load_uuid": loadUUID,
		"saved":     save,
		"groups":    matching.BuildGroupViews(groups),
	})
}

// handleLoadGroups returns the persisted grouping for a load.
func (s *Server) handleLoadGroups(c echo.Context) error {
	loadUUID, err := parseLoadUUID(c.Param("load_uuid"))
	if err != nil {
		return failValidation(c, map[string]string{"load_uuid": err.Error()})
	}

	if s.store == nil {
		return fail(c, http.StatusConflict, "Persistence is not available", nil)
	}

	records, err := s.store.FetchGroupsByLoad(c.Request().Context(), loadUUID)
	if err != nil {
		s.logger.Error().Err(err).Str("load_uuid", loadUUID).Msg("fetch load groups failed")
		return internalError(c, "Failed to load document groups")
	}
	if len(records) == 0 {
		return failNotFound(c, "No document groups for load")
	}

	return success(c, map[string]any{
		"load_uuid": loadUUID,
		"items":     records,
	})
}

func parseLoadUUID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("is required")
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil || parsed == uuid.Nil {
		return "", fmt.Errorf("must be a valid UUID")
	}
	return parsed.String(), nil
}

func buildEngineDocuments(items []payloadschema.MatchDocument) ([]matching.Document, error) {
	documents := make([]matching.Document, 0, len(items))
	for i, item := range items {
		id, err := uuid.Parse(strings.TrimSpace(item.DocumentID))
		if err != nil {
			return nil, fmt.Errorf("documents[%d].document_id is not a valid UUID", i)
		}
		docType, err := matching.ParseDocumentType(item.DocumentType)
		if err != nil {
			return nil, fmt.Errorf("documents[%d]: %v", i, err)
		}
		documents = append(documents, matching.Document{
			ID:         id,
			Type:       docType,
			ParsedData: item.ParsedData,
			Confidence: item.Confidence,
		})
	}
	return documents, nil
}
