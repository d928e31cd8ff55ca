// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes filmtag tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"filmtag/internal/models"
	"filmtag/internal/pipeline"
)

// Server wraps the MCP server with filmtag tools.
type Server struct {
	mcp      *server.MCPServer
	pipeline *pipeline.Pipeline
}

// New creates a new MCP server with all filmtag tools registered.
func New(p *pipeline.Pipeline) *Server {
	s := &Server{pipeline: p}

	s.mcp = server.NewMCPServer(
		"Filmtag",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_recipes",
		mcp.WithDescription("List the recipe definitions from the configured recipes CSV, "+
			"one name per line."),
	), s.listRecipes)

	s.mcp.AddTool(mcp.NewTool("identify_photo",
		mcp.WithDescription("Extract a photo's film simulation settings and return the "+
			"names of every recipe they match."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to a JPG file")),
	), s.identifyPhoto)

	s.mcp.AddTool(mcp.NewTool("run_pipeline",
		mcp.WithDescription("Run the full pipeline over the configured photo library: "+
			"export metadata, match against the recipes, and write "+
			"matched_recipes.csv / unmatched_jpgs.csv. Returns the run report as JSON."),
		mcp.WithBoolean("tag", mcp.Description("Also write matched recipe names into photo keywords")),
	), s.runPipeline)

	s.mcp.AddTool(mcp.NewTool("get_recipe_contract",
		mcp.WithDescription("Returns the canonical recipes CSV format contract. "+
			"Call this before producing or editing recipe definitions."),
	), s.getRecipeContract)

	// Resource: recipe format contract.
	s.mcp.AddResource(
		mcp.NewResource("filmtag://recipe-format", "Recipe Format Contract",
			mcp.WithResourceDescription("Canonical recipes CSV schema that recipe definitions must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecipeFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listRecipes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tbl, err := s.pipeline.Recipes()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	names := make([]string, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		names = append(names, tbl.Get(i, models.ColRecipe))
	}
	if len(names) == 0 {
		return mcp.NewToolResultText("no recipes defined"), nil
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) identifyPhoto(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	names, err := s.pipeline.IdentifyPhoto(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(names) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("no recipe matches %s", path)), nil
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) runPipeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := req.GetBool("tag", false)
	report, err := s.pipeline.Run(ctx, tag)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getRecipeContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecipeFormatContract), nil
}

func (s *Server) readRecipeFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "filmtag://recipe-format",
			MIMEType: "text/markdown",
			Text:     RecipeFormatContract,
		},
	}, nil
}
