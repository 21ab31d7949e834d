// Package backend is the HTTP client for the document Q&A service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/contractqa/internal/logging"
	"github.com/ziadkadry99/contractqa/internal/progress"
	"github.com/ziadkadry99/contractqa/internal/viewer"
)

// RequestIDHeader carries a per-request identifier for correlating logs.
const RequestIDHeader = "X-Request-ID"

// ErrMalformedResponse is returned when a response body cannot be decoded
// or lacks a required field.
var ErrMalformedResponse = errors.New("malformed backend response")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	UploadPath string
	AskPath    string
	// Timeout bounds each request. Zero means no timeout.
	Timeout  time.Duration
	Logger   *zap.Logger
	Reporter progress.Reporter
}

// Client talks to the upload and ask endpoints. It implements viewer.Backend.
type Client struct {
	baseURL    string
	uploadPath string
	askPath    string
	client     *http.Client
	logger     *zap.Logger
	reporter   progress.Reporter
}

var _ viewer.Backend = (*Client)(nil)

// NewClient creates a new backend client.
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		uploadPath: opts.UploadPath,
		askPath:    opts.AskPath,
		client:     &http.Client{Timeout: opts.Timeout},
		logger:     opts.Logger,
		reporter:   opts.Reporter,
	}
	if c.uploadPath == "" {
		c.uploadPath = "/upload"
	}
	if c.askPath == "" {
		c.askPath = "/ask"
	}
	c.logger = logging.OrNop(c.logger)
	if c.reporter == nil {
		c.reporter = progress.Nop{}
	}
	return c
}

type uploadResponse struct {
	ContractID *string `json:"contract_id"`
	Status     string  `json:"status"`
}

type askRequest struct {
	Question   string  `json:"question"`
	ContractID *string `json:"contract_id"`
}

type askResponse struct {
	Answer       string `json:"answer"`
	MatchedChunk string `json:"matched_chunk"`
}

// Upload posts the document as multipart form data under the field "file".
func (c *Client) Upload(ctx context.Context, name string, data []byte) (*viewer.UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	size := body.Len()
	reader := progress.NewReader(&body, size, "Uploading "+name, c.reporter)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.uploadPath, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.ContentLength = int64(size)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	respBody, err := c.do(req, "upload")
	if err != nil {
		return nil, err
	}

	var resp uploadResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("upload: %w: %v", ErrMalformedResponse, err)
	}
	if resp.ContractID == nil || *resp.ContractID == "" {
		return nil, fmt.Errorf("upload: %w: missing contract_id", ErrMalformedResponse)
	}

	return &viewer.UploadResult{ContractID: *resp.ContractID, Status: resp.Status}, nil
}

// Ask posts a question. A nil contractID is sent as JSON null.
func (c *Client) Ask(ctx context.Context, question string, contractID *string) (*viewer.AskResult, error) {
	payload, err := json.Marshal(askRequest{Question: question, ContractID: contractID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ask request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.askPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, err := c.do(req, "ask")
	if err != nil {
		return nil, err
	}

	var resp askResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("ask: %w: %v", ErrMalformedResponse, err)
	}
	return &viewer.AskResult{Answer: resp.Answer, MatchedChunk: resp.MatchedChunk}, nil
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	log := c.logger.With(zap.String("op", op), zap.String("request_id", requestID))

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn("backend request failed", zap.Error(err))
		return nil, fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}

	log.Debug("backend response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("backend returned error status", zap.Int("status", resp.StatusCode))
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
