package mcp

import "github.com/mark3labs/mcp-go/mcp"

// uploadDocumentTool defines the upload_document MCP tool.
var uploadDocumentTool = mcp.NewTool("upload_document",
	mcp.WithDescription("Upload a PDF to the Q&A backend and open it at page 1."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the PDF file"),
	),
)

// askQuestionTool defines the ask_question MCP tool.
var askQuestionTool = mcp.NewTool("ask_question",
	mcp.WithDescription("Ask a question about the uploaded document. Returns the backend's answer."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("Natural language question about the document"),
	),
)

// navigateTool defines the navigate MCP tool.
var navigateTool = mcp.NewTool("navigate",
	mcp.WithDescription("Move to the previous or next page. Stays put at the first and last page."),
	mcp.WithString("direction",
		mcp.Required(),
		mcp.Description("Which way to move"),
		mcp.Enum("prev", "next"),
	),
)

// sessionStatusTool defines the session_status MCP tool.
var sessionStatusTool = mcp.NewTool("session_status",
	mcp.WithDescription("Get the current session: file, contract identifier, page number and page count, last answer."),
)
