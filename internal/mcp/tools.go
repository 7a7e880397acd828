package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"oecdmcp/internal/domain"
	"oecdmcp/internal/sdmx"
)

func (s *Server) registerDatasetTools() {
	s.mcp.AddTool(mcp.NewTool("list_datasets",
		mcp.WithDescription("List the curated OECD datasets available for querying"),
	), s.handleListDatasets)

	s.mcp.AddTool(mcp.NewTool("search_datasets",
		mcp.WithDescription("Search the dataset catalog by id, name, or description"),
		mcp.WithString("query", mcp.Description("Search text (case-insensitive substring)"), mcp.Required()),
	), s.handleSearchDatasets)

	s.mcp.AddTool(mcp.NewTool("get_dataset_structure",
		mcp.WithDescription("Get the dimensions of a dataset and their valid codes, for building query filters"),
		mcp.WithString("datasetId", mcp.Description("Dataset id from list_datasets"), mcp.Required()),
	), s.handleGetDatasetStructure)

	s.mcp.AddTool(mcp.NewTool("query_dataset",
		mcp.WithDescription("Query observations from a dataset using a dot-separated dimension filter (e.g. USA.GDP..A)"),
		mcp.WithString("datasetId", mcp.Description("Dataset id from list_datasets"), mcp.Required()),
		mcp.WithString("filter", mcp.Description("Dimension filter: values separated by dots, empty position matches all, + combines values"), mcp.Required()),
		mcp.WithString("startPeriod", mcp.Description("Earliest period to include (YYYY, YYYY-Qn, or YYYY-MM)")),
		mcp.WithString("endPeriod", mcp.Description("Latest period to include (YYYY, YYYY-Qn, or YYYY-MM)")),
		mcp.WithNumber("lastNObservations", mcp.Description("Return only the last N observations per series")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of observations to return (default 100)")),
	), s.handleQueryDataset)
}

func (s *Server) handleListDatasets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.service.ListDatasets())
}

func (s *Server) handleSearchDatasets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	matches := s.service.SearchDatasets(query)
	if len(matches) == 0 {
		return textResult(fmt.Sprintf("No datasets match %q. Use list_datasets to see everything available.", query)), nil
	}
	return jsonResult(matches)
}

func (s *Server) handleGetDatasetStructure(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	datasetID := req.GetString("datasetId", "")
	if datasetID == "" {
		return nil, fmt.Errorf("datasetId is required")
	}
	structure, err := s.service.DescribeDataset(ctx, datasetID)
	if err != nil {
		return diagnosticResult(err), nil
	}
	return jsonResult(structure)
}

func (s *Server) handleQueryDataset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	datasetID, _ := args["datasetId"].(string)
	filter, _ := args["filter"].(string)
	if datasetID == "" {
		return nil, fmt.Errorf("datasetId is required")
	}

	opts := domain.QueryOptions{
		StartPeriod: req.GetString("startPeriod", ""),
		EndPeriod:   req.GetString("endPeriod", ""),
		LastN:       int(getFloat(args, "lastNObservations", 0)),
		Limit:       int(getFloat(args, "limit", 0)),
	}

	observations, err := s.service.QueryDataset(ctx, datasetID, filter, opts)
	if err != nil {
		return diagnosticResult(err), nil
	}
	return jsonResult(map[string]any{
		"dataset":      datasetID,
		"count":        len(observations),
		"observations": observations,
	})
}

// diagnosticResult renders a pipeline failure as a structured JSON
// diagnostic. Raw error text never crosses this boundary: the front-end
// forwards tool output to untrusted callers verbatim.
func diagnosticResult(err error) *mcp.CallToolResult {
	diag := sdmx.DiagnosticFor(err)
	data, marshalErr := json.MarshalIndent(diag, "", "  ")
	if marshalErr != nil {
		data = []byte(fmt.Sprintf(`{"category":%q,"summary":%q}`, diag.Category, diag.Summary))
	}
	result := textResult(string(data))
	result.IsError = true
	return result
}
