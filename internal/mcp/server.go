// Package mcpserver exposes the SDMX query pipeline as MCP tools over
// stdio, so AI agents can browse and query the curated OECD datasets.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"oecdmcp/internal/domain"
)

// QueryService is the facade surface the tools call. Implemented by
// *sdmx.Client.
type QueryService interface {
	ListDatasets() []domain.DatasetRef
	SearchDatasets(text string) []domain.DatasetRef
	DescribeDataset(ctx context.Context, id string) (*domain.DatasetStructure, error)
	QueryDataset(ctx context.Context, id, filter string, opts domain.QueryOptions) ([]domain.Observation, error)
}

// Server is the MCP front-end for the SDMX pipeline.
type Server struct {
	mcp     *server.MCPServer
	service QueryService
}

// Deps holds the dependencies the server needs.
type Deps struct {
	Service QueryService
}

// New creates and configures the MCP server with all tools registered.
func New(deps Deps) *Server {
	s := &Server{service: deps.Service}

	s.mcp = server.NewMCPServer(
		"oecd-sdmx",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerDatasetTools()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}
