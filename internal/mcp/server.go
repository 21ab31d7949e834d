// Package mcp exposes a viewer session to MCP clients over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ziadkadry99/contractqa/internal/logging"
	"github.com/ziadkadry99/contractqa/internal/viewer"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Controller is the subset of *viewer.Controller the tools drive.
type Controller interface {
	Upload(ctx context.Context, f *viewer.File) error
	PrevPage(ctx context.Context) error
	NextPage(ctx context.Context) error
	Ask(ctx context.Context, question string) (string, error)
	Session() viewer.SessionInfo
}

// PageWriter saves the rendered page to disk.
type PageWriter interface {
	WriteFile(path string) error
}

// Options configures a Server.
type Options struct {
	// Labels must receive the same Display calls as the controller.
	Labels *viewer.Recorder
	// Page, when set together with OutputDir, is written to
	// OutputDir/page.png after every tool call that renders.
	Page      PageWriter
	OutputDir string
	Logger    *zap.Logger
}

// Server wraps an MCP server that exposes document viewing tools.
type Server struct {
	controller Controller
	labels     *viewer.Recorder
	page       PageWriter
	outputDir  string
	logger     *zap.Logger
	mcp        *server.MCPServer
}

// NewServer creates a new MCP server driving controller.
func NewServer(controller Controller, opts Options) *Server {
	s := &Server{
		controller: controller,
		labels:     opts.Labels,
		page:       opts.Page,
		outputDir:  opts.OutputDir,
		logger:     opts.Logger,
	}
	if s.labels == nil {
		s.labels = &viewer.Recorder{}
	}
	s.logger = logging.OrNop(s.logger)

	s.mcp = server.NewMCPServer(
		"contractqa",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(uploadDocumentTool, s.handleUploadDocument)
	s.mcp.AddTool(askQuestionTool, s.handleAskQuestion)
	s.mcp.AddTool(navigateTool, s.handleNavigate)
	s.mcp.AddTool(sessionStatusTool, s.handleSessionStatus)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
