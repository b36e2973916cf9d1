package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/loaddocs/docmatch/internal/matching"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	engine, err := matching.NewEngine(matching.DefaultConfig(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return NewServer(nil, nil, engine, zerolog.Nop(), Options{})
}

func newMatchContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type matchResponse struct {
	Status string `json:"status"`
	Data   struct {
		Groups []struct {
			GroupID        string   `json:"group_id"`
			TotalDocuments int      `json:"total_documents"`
			MatchReasons   []string `json:"match_reasons"`
			NeedsReview    bool     `json:"needs_review"`
		} `json:"groups"`
	} `json:"data"`
}

func TestHandleMatch_GroupsDocumentsSharingBOL(t *testing.T) {
	server := newTestServer(t)

	body := `{
		"documents":[
			{
				"document_id":"0b0f79c2-6f0a-4f5e-9c10-9a4a2b9f3c01",
				"document_type":"POD",
				"confidence":0.9,
				"parsed_data":{"bol_number":"BOL-777"}
			},
			{
				"document_id":"4c6a1f34-2a6f-4f38-8c1a-b8f10f2d9e02",
				"document_type":"LUMPER",
				"confidence":0.8,
				"parsed_data":{"bol_number":"BOL 777"}
			}
		]
	}`

	c, rec := newMatchContext(http.MethodPost, "/api/v1/match", body)
	if err := server.handleMatch(c); err != nil {
		t.Fatalf("handleMatch returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp matchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Fatalf("expected jsend success, got %q", resp.Status)
	}
	if len(resp.Data.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(resp.Data.Groups))
	}
	if resp.Data.Groups[0].TotalDocuments != 2 {
		t.Fatalf("expected 2 documents in group, got %d", resp.Data.Groups[0].TotalDocuments)
	}

	foundBOLReason := false
	for _, reason := range resp.Data.Groups[0].MatchReasons {
		if strings.HasPrefix(reason, "BOL number match") {
			foundBOLReason = true
		}
	}
	if !foundBOLReason {
		t.Fatalf("expected a BOL number match reason, got %v", resp.Data.Groups[0].MatchReasons)
	}
}

func TestHandleMatch_RejectsInvalidPayload(t *testing.T) {
	server := newTestServer(t)

	c, rec := newMatchContext(http.MethodPost, "/api/v1/match", `{"documents":[]}`)
	if err := server.handleMatch(c); err != nil {
		t.Fatalf("handleMatch returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleMatch_RejectsUnknownDocumentType(t *testing.T) {
	server := newTestServer(t)

	body := `{
		"documents":[
			{
				"document_id":"0b0f79c2-6f0a-4f5e-9c10-9a4a2b9f3c01",
				"document_type":"RECEIPT"
			}
		]
	}`

	c, rec := newMatchContext(http.MethodPost, "/api/v1/match", body)
	if err := server.handleMatch(c); err != nil {
		t.Fatalf("handleMatch returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleLoadMatch_RejectsInvalidLoadUUID(t *testing.T) {
	server := newTestServer(t)

	c, rec := newMatchContext(http.MethodPost, "/api/v1/loads/nope/match", "")
	c.SetParamNames("load_uuid")
	c.SetParamValues("nope")

	if err := server.handleLoadMatch(c); err != nil {
		t.Fatalf("handleLoadMatch returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestParseLoadUUID(t *testing.T) {
	t.Parallel()

	canonical, err := parseLoadUUID(" 0B0F79C2-6F0A-4F5E-9C10-9A4A2B9F3C01 ")
	if err != nil {
		t.Fatalf("expected valid UUID, got error: %v", err)
	}
	if canonical != "0b0f79c2-6f0a-4f5e-9c10-9a4a2b9f3c01" {
		t.Fatalf("expected canonical lowercase UUID, got %q", canonical)
	}

	if _, err := parseLoadUUID(""); err == nil {
		t.Fatalf("expected error for empty UUID")
	}
	if _, err := parseLoadUUID("00000000-0000-0000-0000-000000000000"); err == nil {
		t.Fatalf("expected error for nil UUID")
	}
}
