package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"oecdmcp/internal/domain"
	"oecdmcp/internal/sdmx"
)

// stubService records calls and returns canned results.
type stubService struct {
	queryErr    error
	describeErr error
	lastOpts    domain.QueryOptions
}

func (s *stubService) ListDatasets() []domain.DatasetRef {
	return []domain.DatasetRef{{ID: "QNA", Name: "Quarterly national accounts"}}
}

func (s *stubService) SearchDatasets(text string) []domain.DatasetRef {
	if text == "national" {
		return s.ListDatasets()
	}
	return []domain.DatasetRef{}
}

func (s *stubService) DescribeDataset(ctx context.Context, id string) (*domain.DatasetStructure, error) {
	if s.describeErr != nil {
		return nil, s.describeErr
	}
	return &domain.DatasetStructure{Dataset: domain.DatasetRef{ID: id}}, nil
}

func (s *stubService) QueryDataset(ctx context.Context, id, filter string, opts domain.QueryOptions) ([]domain.Observation, error) {
	s.lastOpts = opts
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return []domain.Observation{
		{Dimensions: map[string]string{"REF_AREA": "USA"}, Value: 2.5},
	}, nil
}

func toolRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return text.Text
}

func TestHandleListDatasets(t *testing.T) {
	s := New(Deps{Service: &stubService{}})

	res, err := s.handleListDatasets(context.Background(), toolRequest("list_datasets", nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	var refs []domain.DatasetRef
	if err := json.Unmarshal([]byte(resultText(t, res)), &refs); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != "QNA" {
		t.Errorf("unexpected result: %+v", refs)
	}
}

func TestHandleSearchDatasets(t *testing.T) {
	s := New(Deps{Service: &stubService{}})

	res, err := s.handleSearchDatasets(context.Background(), toolRequest("search_datasets", map[string]any{"query": "national"}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !strings.Contains(resultText(t, res), "QNA") {
		t.Errorf("expected QNA in result, got %s", resultText(t, res))
	}

	res, err = s.handleSearchDatasets(context.Background(), toolRequest("search_datasets", map[string]any{"query": "zebra"}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !strings.Contains(resultText(t, res), "No datasets match") {
		t.Errorf("empty search should explain itself, got %s", resultText(t, res))
	}

	if _, err := s.handleSearchDatasets(context.Background(), toolRequest("search_datasets", nil)); err == nil {
		t.Error("missing query should fail")
	}
}

func TestHandleQueryDataset_PassesOptions(t *testing.T) {
	stub := &stubService{}
	s := New(Deps{Service: stub})

	res, err := s.handleQueryDataset(context.Background(), toolRequest("query_dataset", map[string]any{
		"datasetId":         "QNA",
		"filter":            "USA.",
		"startPeriod":       "2020",
		"endPeriod":         "2024",
		"lastNObservations": float64(4),
		"limit":             float64(10),
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	want := domain.QueryOptions{StartPeriod: "2020", EndPeriod: "2024", LastN: 4, Limit: 10}
	if stub.lastOpts != want {
		t.Errorf("options = %+v, want %+v", stub.lastOpts, want)
	}
	if !strings.Contains(resultText(t, res), `"count": 1`) {
		t.Errorf("result should carry the observation count, got %s", resultText(t, res))
	}
}

func TestHandleQueryDataset_ErrorBecomesDiagnostic(t *testing.T) {
	stub := &stubService{queryErr: &sdmx.UnknownDatasetError{ID: "NOPE"}}
	s := New(Deps{Service: stub})

	res, err := s.handleQueryDataset(context.Background(), toolRequest("query_dataset", map[string]any{
		"datasetId": "NOPE",
		"filter":    "USA.",
	}))
	if err != nil {
		t.Fatalf("pipeline errors must render as diagnostics, not handler errors: %v", err)
	}
	if !res.IsError {
		t.Error("diagnostic result should be flagged as an error")
	}

	var diag sdmx.Diagnostic
	if err := json.Unmarshal([]byte(resultText(t, res)), &diag); err != nil {
		t.Fatalf("diagnostic is not JSON: %v", err)
	}
	if diag.Category != "unknown_dataset" {
		t.Errorf("category = %q, want unknown_dataset", diag.Category)
	}
	if len(diag.Suggestions) == 0 {
		t.Error("diagnostic should carry suggestions")
	}
}

func TestHandleGetDatasetStructure(t *testing.T) {
	s := New(Deps{Service: &stubService{}})

	res, err := s.handleGetDatasetStructure(context.Background(), toolRequest("get_dataset_structure", map[string]any{"datasetId": "QNA"}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !strings.Contains(resultText(t, res), "QNA") {
		t.Errorf("unexpected result: %s", resultText(t, res))
	}

	if _, err := s.handleGetDatasetStructure(context.Background(), toolRequest("get_dataset_structure", nil)); err == nil {
		t.Error("missing datasetId should fail")
	}
}

func TestHandleGetDatasetStructure_RemoteFailureDiagnostic(t *testing.T) {
	stub := &stubService{describeErr: &sdmx.RemoteError{Status: 503, URL: "u"}}
	s := New(Deps{Service: stub})

	res, err := s.handleGetDatasetStructure(context.Background(), toolRequest("get_dataset_structure", map[string]any{"datasetId": "QNA"}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	var diag sdmx.Diagnostic
	if err := json.Unmarshal([]byte(resultText(t, res)), &diag); err != nil {
		t.Fatalf("diagnostic is not JSON: %v", err)
	}
	if diag.Status != 503 {
		t.Errorf("status = %d, want 503", diag.Status)
	}
}
