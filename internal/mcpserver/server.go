// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes folio tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folio/internal/manifest"
	"github.com/starford/folio/internal/search"
	"github.com/starford/folio/internal/viewer"
)

const manifestURI = "folio://manifest"

// Server wraps the MCP server with folio tools. One MCP connection is one
// reader, so the server holds a single viewer session.
type Server struct {
	mcp     *server.MCPServer
	svc     *viewer.Service
	session *viewer.Session
}

// New creates a new MCP server with all folio tools registered.
func New(svc *viewer.Service, version string) *Server {
	s := &Server{svc: svc, session: viewer.NewSession(svc)}

	s.mcp = server.NewMCPServer(
		"folio",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_docs",
		mcp.WithDescription("Case-insensitive full-text search over the documentation. "+
			"Returns up to 5 matching lines per document with surrounding context. "+
			"The query stays active for open_doc highlighting."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text, at least 2 characters")),
	), s.searchDocs)

	s.mcp.AddTool(mcp.NewTool("open_doc",
		mcp.WithDescription("Render a documentation page to HTML. Occurrences of the active "+
			"search query are wrapped in <mark class=\"search-highlight\">."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Document path from list_docs (e.g. docs/guide/setup.md)")),
		mcp.WithBoolean("highlight", mcp.Description("Highlight the active search query (default true)")),
	), s.openDoc)

	s.mcp.AddTool(mcp.NewTool("read_source",
		mcp.WithDescription("Read the raw Markdown source of a documentation page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Document path (e.g. docs/guide/setup.md)")),
	), s.readSource)

	s.mcp.AddTool(mcp.NewTool("list_docs",
		mcp.WithDescription("List document paths from the manifest, optionally within one folder."),
		mcp.WithString("folder", mcp.Description("Optional path prefix (e.g. docs/guide)")),
	), s.listDocs)

	s.mcp.AddTool(mcp.NewTool("recent_docs",
		mcp.WithDescription("List every document, most recently dated first."),
	), s.recentDocs)

	s.mcp.AddTool(mcp.NewTool("reading_history",
		mcp.WithDescription("List recently opened documents, most recent first."),
	), s.readingHistory)

	s.mcp.AddResource(
		mcp.NewResource(manifestURI, "Documentation tree",
			mcp.WithResourceDescription("Navigation tree of the documentation site as JSON."),
			mcp.WithMIMEType("application/json"),
		),
		s.readManifestResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view := s.session.SetQuery(query)
	if view == nil {
		return mcp.NewToolResultError(fmt.Sprintf("query must be at least %d characters", search.MinQueryLength)), nil
	}
	if len(view.Hits) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("no results found for %q", view.Query)), nil
	}
	return jsonResult(view)
}

func (s *Server) openDoc(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	open := s.session.FollowLink
	if !req.GetBool("highlight", true) {
		open = s.session.Open
	}
	page, err := open(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Could not load: %s", path)), nil
	}
	return jsonResult(page)
}

func (s *Server) readSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := s.svc.Source(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) listDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := strings.Trim(req.GetString("folder", ""), "/")

	var paths []string
	for _, p := range manifest.Paths(s.svc.Manifest()) {
		if folder == "" || strings.HasPrefix(p, folder+"/") {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no documents found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) recentDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Recent())
}

func (s *Server) readingHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	visits, err := s.svc.History(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(visits) == 0 {
		return mcp.NewToolResultText("no recently read documents"), nil
	}
	return jsonResult(visits)
}

func (s *Server) readManifestResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := json.Marshal(s.svc.Tree())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      manifestURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}
