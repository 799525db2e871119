// Package mcpserver exposes the extraction operations as MCP tools over
// stdio, mirroring the HTTP API for editor and agent integrations.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pdf-extract-service/internal/domain"
)

const serverVersion = "1.0.0"

// Server wraps an MCP stdio server around the extractor.
type Server struct {
	mcp       *server.MCPServer
	extractor domain.Extractor
	logger    domain.Logger
}

// New registers the four extraction tools on a fresh MCP server.
func New(extractor domain.Extractor, logger domain.Logger) *Server {
	s := &Server{
		mcp:       server.NewMCPServer("pdf-extract-service", serverVersion),
		extractor: extractor,
		logger:    logger,
	}

	s.mcp.AddTool(mcp.NewTool("read_pdf",
		mcp.WithDescription("Extract all text from a PDF file, skipping pages that fail to decode and noting them"),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the PDF file (relative paths are not supported)"),
		),
	), s.handleReadPDF)

	s.mcp.AddTool(mcp.NewTool("read_pdf_page",
		mcp.WithDescription("Extract text from a single page of a PDF file"),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the PDF file (relative paths are not supported)"),
		),
		mcp.WithNumber("page",
			mcp.Required(),
			mcp.Description("Page number (1-indexed)"),
		),
	), s.handleReadPDFPage)

	s.mcp.AddTool(mcp.NewTool("read_pdf_pages",
		mcp.WithDescription("Extract text from an inclusive range of PDF pages"),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the PDF file (relative paths are not supported)"),
		),
		mcp.WithNumber("start_page",
			mcp.Required(),
			mcp.Description("Start page number (1-indexed, inclusive)"),
		),
		mcp.WithNumber("end_page",
			mcp.Required(),
			mcp.Description("End page number (1-indexed, inclusive)"),
		),
	), s.handleReadPDFPages)

	s.mcp.AddTool(mcp.NewTool("get_pdf_info",
		mcp.WithDescription("Get PDF metadata: page count, encryption flag, and info dictionary fields"),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the PDF file (relative paths are not supported)"),
		),
	), s.handleGetPDFInfo)

	return s
}

// ServeStdio runs the server over stdin/stdout until the client hangs
// up.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleReadPDF(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := filePathArg(req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.extractor.ExtractDocument(ctx, path)
	if err != nil {
		s.logger.Error("read_pdf failed", err, "path", path)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result.Text), nil
}

func (s *Server) handleReadPDFPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := filePathArg(req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := intArg(req.GetArguments(), "page")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := s.extractor.ExtractPage(ctx, path, page)
	if err != nil {
		s.logger.Error("read_pdf_page failed", err, "path", path, "page", page)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleReadPDFPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := filePathArg(req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, err := intArg(req.GetArguments(), "start_page")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := intArg(req.GetArguments(), "end_page")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.extractor.ExtractRange(ctx, path, start, end)
	if err != nil {
		s.logger.Error("read_pdf_pages failed", err, "path", path, "start", start, "end", end)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResultJSON(result)
}

func (s *Server) handleGetPDFInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := filePathArg(req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := s.extractor.Info(ctx, path)
	if err != nil {
		s.logger.Error("get_pdf_info failed", err, "path", path)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResultJSON(info)
}

func filePathArg(args map[string]interface{}) (string, error) {
	path, ok := args["file_path"].(string)
	if !ok || path == "" {
		return "", fmt.Errorf("missing or invalid required parameter: file_path")
	}
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("file_path must be an absolute path")
	}
	return path, nil
}

// intArg reads a JSON number argument. Non-integral values are
// rejected rather than truncated.
func intArg(args map[string]interface{}, key string) (int, error) {
	v, ok := args[key].(float64)
	if !ok || v != float64(int(v)) {
		return 0, fmt.Errorf("missing or invalid required parameter: %s", key)
	}
	return int(v), nil
}

func toolResultJSON(payload interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
