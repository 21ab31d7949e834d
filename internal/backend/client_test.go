package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ziadkadry99/contractqa/internal/progress"
)

// recordingReporter is updated from the transport's write goroutine.
type recordingReporter struct {
	mu    sync.Mutex
	total int
	last  int
}

func (r *recordingReporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
}

func (r *recordingReporter) Update(current int, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = current
}

func (r *recordingReporter) Finish() {}

var _ progress.Reporter = (*recordingReporter)(nil)

func TestUploadSendsMultipartFile(t *testing.T) {
	var gotName, gotData, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/upload" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotRequestID = r.Header.Get(RequestIDHeader)
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotName, gotData = hdr.Filename, string(b)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"contract_id":"c1","status":"indexed"}`)
	}))
	defer srv.Close()

	rep := &recordingReporter{}
	c := NewClient(Options{BaseURL: srv.URL + "/", Reporter: rep})

	res, err := c.Upload(context.Background(), "lease.pdf", []byte("%PDF-1.4 data"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.ContractID != "c1" || res.Status != "indexed" {
		t.Errorf("result = %+v", res)
	}
	if gotName != "lease.pdf" || gotData != "%PDF-1.4 data" {
		t.Errorf("server received %q %q", gotName, gotData)
	}
	if gotRequestID == "" {
		t.Error("missing request id header")
	}
	rep.mu.Lock()
	defer rep.mu.Unlock()
	if rep.total == 0 || rep.last != rep.total {
		t.Errorf("progress = %d of %d, want complete", rep.last, rep.total)
	}
}

func TestUploadMissingContractID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"indexed"}`)
	}))
	defer srv.Close()

	_, err := NewClient(Options{BaseURL: srv.URL}).Upload(context.Background(), "a.pdf", []byte("x"))
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestUploadStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "only PDFs", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient(Options{BaseURL: srv.URL}).Upload(context.Background(), "a.txt", []byte("x"))
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Op != "upload" || se.StatusCode != http.StatusBadRequest || se.Body != "only PDFs" {
		t.Errorf("status error = %+v", se)
	}
}

func TestAskSendsContractID(t *testing.T) {
	var body, contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ask" {
			t.Errorf("path = %s", r.URL.Path)
		}
		contentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		json.NewEncoder(w).Encode(map[string]string{"answer": "30 days.", "matched_chunk": "Either party may terminate"})
	}))
	defer srv.Close()

	id := "c1"
	res, err := NewClient(Options{BaseURL: srv.URL}).Ask(context.Background(), "What is the termination clause?", &id)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if body != `{"question":"What is the termination clause?","contract_id":"c1"}` {
		t.Errorf("body = %s", body)
	}
	if contentType != "application/json" {
		t.Errorf("content type = %q", contentType)
	}
	if res.Answer != "30 days." || res.MatchedChunk != "Either party may terminate" {
		t.Errorf("result = %+v", res)
	}
}

func TestAskNullContractID(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		io.WriteString(w, `{"answer":""}`)
	}))
	defer srv.Close()

	res, err := NewClient(Options{BaseURL: srv.URL}).Ask(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !strings.Contains(body, `"contract_id":null`) {
		t.Errorf("body = %s, want null contract_id", body)
	}
	if res.Answer != "" {
		t.Errorf("answer = %q", res.Answer)
	}
}

func TestAskMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>oops</html>`)
	}))
	defer srv.Close()

	id := "c1"
	_, err := NewClient(Options{BaseURL: srv.URL}).Ask(context.Background(), "q", &id)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestAskCustomPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/ask" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, `{"answer":"ok"}`)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, AskPath: "/v2/ask"})
	res, err := c.Ask(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if res.Answer != "ok" {
		t.Errorf("answer = %q", res.Answer)
	}
}

func TestStatusErrorMessage(t *testing.T) {
	e := &StatusError{Op: "ask", StatusCode: 500}
	if e.Error() != "ask: backend returned status 500" {
		t.Errorf("got %q", e.Error())
	}
}
