package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/ziadkadry99/contractqa/internal/viewer"
)

// pageFile is the name the rendered page is written under.
const pageFile = "page.png"

// handleUploadDocument reads a PDF from disk and runs the upload action.
func (s *Server) handleUploadDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return mcp.NewToolResultError(fmt.Sprintf("file not found: %s", path)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to read file: %v", err)), nil
	}

	if err := s.controller.Upload(ctx, &viewer.File{Name: filepath.Base(path), Data: data}); err != nil {
		return toolError("upload failed", err), nil
	}

	info := s.controller.Session()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Uploaded %s (contract %s).\n", info.FileName, info.ContractID)
	sb.WriteString(s.pageLine())
	return mcp.NewToolResultText(sb.String()), nil
}

// handleAskQuestion asks the backend about the uploaded document.
func (s *Server) handleAskQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	answer, err := s.controller.Ask(ctx, question)
	if err != nil {
		return toolError("question failed", err), nil
	}
	return mcp.NewToolResultText(answer), nil
}

// handleNavigate moves one page back or forward.
func (s *Server) handleNavigate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	direction, err := request.RequireString("direction")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: direction"), nil
	}

	switch direction {
	case "prev":
		err = s.controller.PrevPage(ctx)
	case "next":
		err = s.controller.NextPage(ctx)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid direction %q: must be prev or next", direction)), nil
	}
	if err != nil {
		return toolError("navigation failed", err), nil
	}
	return mcp.NewToolResultText(s.pageLine()), nil
}

type statusResponse struct {
	viewer.SessionInfo
	Answer string `json:"answer,omitempty"`
}

// handleSessionStatus returns the session as JSON.
func (s *Server) handleSessionStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp := statusResponse{
		SessionInfo: s.controller.Session(),
		Answer:      s.labels.Labels().Answer,
	}
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode session: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// pageLine reports the current labels and writes the page image when
// configured.
func (s *Server) pageLine() string {
	l := s.labels.Labels()
	line := fmt.Sprintf("Page %d of %d.", l.PageNumber, l.PageCount)

	if s.page == nil || s.outputDir == "" {
		return line
	}
	path := filepath.Join(s.outputDir, pageFile)
	if err := s.page.WriteFile(path); err != nil {
		s.logger.Warn("writing page image", zap.String("path", path), zap.Error(err))
		return line
	}
	return line + " Image: " + path
}

// toolError reports input errors by their user-facing message and other
// errors with context.
func toolError(prefix string, err error) *mcp.CallToolResult {
	var inputErr *viewer.InputError
	if errors.As(err, &inputErr) {
		return mcp.NewToolResultError(inputErr.Message)
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", prefix, err))
}
