package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ziadkadry99/contractqa/internal/pdfview"
	"github.com/ziadkadry99/contractqa/internal/viewer"
)

// resetFlags restores every subcommand flag to its default so commands can
// run more than once per process.
func resetFlags() {
	verbose = false
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			if f.Value.Type() == "stringSlice" {
				return
			}
			f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCLIWithStderr(t, args...)
	return out, err
}

func runCLIWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// fakeBackend answers /upload with contract "c-<name>" and fails files whose
// name contains "bad". /ask returns answer.
type fakeBackend struct {
	mu      sync.Mutex
	uploads []string
	bodies  []string
}

func (b *fakeBackend) askBodies() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.bodies...)
}

func newBackendServer(t *testing.T, answer string) (*httptest.Server, *fakeBackend) {
	t.Helper()
	rec := &fakeBackend{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/upload":
			_, hdr, err := r.FormFile("file")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			rec.mu.Lock()
			rec.uploads = append(rec.uploads, hdr.Filename)
			rec.mu.Unlock()
			if strings.Contains(hdr.Filename, "bad") {
				http.Error(w, "indexing failed", http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"contract_id": "c-" + strings.TrimSuffix(hdr.Filename, ".pdf"),
				"status":      "indexed",
			})
		case "/ask":
			b, _ := io.ReadAll(r.Body)
			rec.mu.Lock()
			rec.bodies = append(rec.bodies, string(b))
			rec.mu.Unlock()
			json.NewEncoder(w).Encode(map[string]string{"answer": answer, "matched_chunk": "Section 9"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

// writeConfig writes a config into a temp dir. Pages go to <dir>/pages.
func writeConfig(t *testing.T, backendURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ".contractqa.yml")
	content := fmt.Sprintf(`backend:
  url: %s
viewer:
  output_dir: %s
history:
  enabled: true
  path: %s
log:
  level: error
`, backendURL, filepath.Join(dir, "pages"), filepath.Join(dir, "history.db"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

// stubDocument is a document of blank 100x100 point pages.
type stubDocument struct{ pages int }

func (d stubDocument) NumPages() int { return d.pages }

func (d stubDocument) Page(_ context.Context, n int) (viewer.Page, error) {
	if n < 1 || n > d.pages {
		return nil, fmt.Errorf("page %d out of range", n)
	}
	return stubPage{}, nil
}

type stubPage struct{}

func (stubPage) Viewport(scale float64) viewer.Viewport {
	return viewer.Viewport{Width: int(100 * scale), Height: int(100 * scale), Scale: scale}
}

func (stubPage) Render(_ context.Context, vp viewer.Viewport) (image.Image, error) {
	img := image.NewGray(image.Rect(0, 0, vp.Width, vp.Height))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)
	return img, nil
}

type stubLoader struct{}

func (stubLoader) Load(context.Context, string) (viewer.Document, error) {
	return stubDocument{pages: 2}, nil
}

// useStubLoader swaps the PDF engine for 2-page stub documents.
func useStubLoader(t *testing.T) {
	t.Helper()
	orig := newLoader
	newLoader = func(*pdfview.Objects, *zap.Logger) viewer.Loader { return stubLoader{} }
	t.Cleanup(func() { newLoader = orig })
}

func writePDFs(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4 "+name), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

func TestAskCommandWithContract(t *testing.T) {
	srv, rec := newBackendServer(t, "30 days notice.")
	cfg := writeConfig(t, srv.URL)

	out, err := runCLI(t, "ask", "What is the termination clause?", "--contract", "c1", "--config", cfg)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if strings.TrimSpace(out) != "30 days notice." {
		t.Errorf("output = %q", out)
	}
	bodies := rec.askBodies()
	if len(bodies) != 1 || bodies[0] != `{"question":"What is the termination clause?","contract_id":"c1"}` {
		t.Errorf("backend received %v", bodies)
	}

	out, err = runCLI(t, "history", "--contract", "c1", "--config", cfg)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "What is the termination clause?") || !strings.Contains(out, "30 days notice.") {
		t.Errorf("history output = %q", out)
	}
}

func TestAskCommandWithoutContractSendsNothing(t *testing.T) {
	srv, rec := newBackendServer(t, "x")
	cfg := writeConfig(t, srv.URL)

	_, err := runCLI(t, "ask", "What is the termination clause?", "--config", cfg)
	if err == nil || !strings.Contains(err.Error(), "--contract or --last") {
		t.Fatalf("err = %v", err)
	}
	if bodies := rec.askBodies(); len(bodies) != 0 {
		t.Errorf("backend received %v", bodies)
	}
}

func TestAskCommandContractAndLastConflict(t *testing.T) {
	srv, rec := newBackendServer(t, "x")
	cfg := writeConfig(t, srv.URL)

	_, err := runCLI(t, "ask", "q", "--contract", "c1", "--last", "--config", cfg)
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("err = %v", err)
	}
	if bodies := rec.askBodies(); len(bodies) != 0 {
		t.Errorf("backend received %v", bodies)
	}
}

func TestAskCommandJSONPlaceholder(t *testing.T) {
	srv, _ := newBackendServer(t, "")
	cfg := writeConfig(t, srv.URL)

	out, err := runCLI(t, "ask", "Who signed?", "--contract", "c1", "--json", "--config", cfg)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	var got askOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	want := askOutput{Question: "Who signed?", ContractID: "c1", Answer: viewer.NoAnswerPlaceholder, MatchedChunk: "Section 9"}
	if got != want {
		t.Errorf("output = %+v, want %+v", got, want)
	}
}

func TestAskCommandLastWithoutUploads(t *testing.T) {
	srv, rec := newBackendServer(t, "x")
	cfg := writeConfig(t, srv.URL)

	_, err := runCLI(t, "ask", "q", "--last", "--config", cfg)
	if err == nil || !strings.Contains(err.Error(), "no uploads recorded") {
		t.Fatalf("err = %v", err)
	}
	if bodies := rec.askBodies(); len(bodies) != 0 {
		t.Error("backend should not be called")
	}
}

func TestAskCommandEmptyQuestion(t *testing.T) {
	_, err := runCLI(t, "ask", "   ", "--contract", "c1", "--config", filepath.Join(t.TempDir(), "none.yml"))
	if err == nil {
		t.Fatal("expected error for empty question")
	}
}

func TestUploadCommandPartialFailure(t *testing.T) {
	useStubLoader(t)
	srv, rec := newBackendServer(t, "30 days notice.")
	cfg := writeConfig(t, srv.URL)
	dir := writePDFs(t, "lease.pdf", "nda.pdf", "zz-bad-scan.pdf")

	out, stderr, err := runCLIWithStderr(t, "upload", dir, "--config", cfg)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(rec.uploads) != 3 {
		t.Fatalf("backend received %d uploads, want 3", len(rec.uploads))
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 3 || !strings.HasPrefix(lines[0], "FILE") || !strings.Contains(lines[0], "CONTRACT ID") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	for _, row := range [][]string{
		{"lease.pdf", "c-lease", "indexed", "2"},
		{"nda.pdf", "c-nda", "indexed", "2"},
	} {
		found := false
		for _, line := range lines {
			if fields := strings.Fields(line); len(fields) == 4 && filepath.Base(fields[0]) == row[0] &&
				fields[1] == row[1] && fields[2] == row[2] && fields[3] == row[3] {
				found = true
			}
		}
		if !found {
			t.Errorf("table has no row %v:\n%s", row, out)
		}
	}
	if strings.Contains(out, "c-zz-bad-scan") {
		t.Errorf("failed upload listed in table:\n%s", out)
	}
	if !strings.Contains(stderr, "zz-bad-scan.pdf") {
		t.Errorf("failure not reported on stderr: %q", stderr)
	}

	// Files are processed in path order. The last one failed, so the page
	// line names nda.pdf, the last document actually rendered.
	if !strings.Contains(out, "Page 1 of nda.pdf") {
		t.Errorf("page line should name the last successful file:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(cfg), "pages", "page.png")); err != nil {
		t.Errorf("page image not written: %v", err)
	}

	// --last resolves the newest recorded upload.
	if _, err := runCLI(t, "ask", "What is the termination clause?", "--last", "--config", cfg); err != nil {
		t.Fatalf("ask --last: %v", err)
	}
	bodies := rec.askBodies()
	if len(bodies) != 1 || bodies[0] != `{"question":"What is the termination clause?","contract_id":"c-nda"}` {
		t.Errorf("backend received %v", bodies)
	}
}

func TestUploadCommandAllFail(t *testing.T) {
	useStubLoader(t)
	srv, _ := newBackendServer(t, "")
	cfg := writeConfig(t, srv.URL)
	dir := writePDFs(t, "bad-a.pdf", "bad-b.pdf")

	_, err := runCLI(t, "upload", dir, "--config", cfg)
	if err == nil || !strings.Contains(err.Error(), "all 2 uploads failed") {
		t.Fatalf("err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(cfg), "pages", "page.png")); !os.IsNotExist(err) {
		t.Errorf("page image should not be written, stat err = %v", err)
	}
}

func TestUploadCommandNotesRepeatedContent(t *testing.T) {
	useStubLoader(t)
	srv, _ := newBackendServer(t, "")
	cfg := writeConfig(t, srv.URL)
	dir := writePDFs(t, "lease.pdf")

	if _, err := runCLI(t, "upload", dir, "--no-render", "--config", cfg); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	_, stderr, err := runCLIWithStderr(t, "upload", filepath.Join(dir, "lease.pdf"), "--no-render", "--config", cfg)
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if !strings.Contains(stderr, "uploaded before as contract c-lease") {
		t.Errorf("stderr = %q", stderr)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(cfg), "pages", "page.png")); !os.IsNotExist(err) {
		t.Errorf("--no-render should skip the page image, stat err = %v", err)
	}

	out, err := runCLI(t, "history", "--config", cfg)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if n := strings.Count(out, "c-lease"); n != 2 {
		t.Errorf("history lists c-lease %d times, want 2:\n%s", n, out)
	}
}

func TestHistoryCommandEmpty(t *testing.T) {
	cfg := writeConfig(t, "http://localhost:5000")
	out, err := runCLI(t, "history", "--config", cfg)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No uploads recorded yet.") {
		t.Errorf("output = %q", out)
	}
}

type fakePage struct {
	writes []string
	err    error
}

func (p *fakePage) WriteFile(path string) error {
	p.writes = append(p.writes, path)
	return p.err
}

func TestTerminalDisplay(t *testing.T) {
	var out bytes.Buffer
	page := &fakePage{}
	d := &terminalDisplay{out: &out, page: page, path: "pages/page.png", logger: zap.NewNop()}

	d.ShowPageCount(3)
	d.ShowPageNumber(2)
	d.ShowAnswer("30 days notice.")
	d.ShowNotice(viewer.Notice{Message: "Please select a PDF first."})

	got := out.String()
	for _, want := range []string{
		"Document has 3 pages.",
		"Page 2 of 3 -> pages/page.png",
		"30 days notice.",
		"! Please select a PDF first.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if len(page.writes) != 1 || page.writes[0] != "pages/page.png" {
		t.Errorf("writes = %v", page.writes)
	}

	// A failed write is logged, the label is still printed.
	page.err = errors.New("disk full")
	d.ShowPageNumber(3)
	if !strings.Contains(out.String(), "Page 3 of 3") {
		t.Error("label not printed after failed write")
	}
}

func TestMenuLabel(t *testing.T) {
	if got := menuLabel(viewer.SessionInfo{}); got != "No document" {
		t.Errorf("empty label = %q", got)
	}
	got := menuLabel(viewer.SessionInfo{FileName: "lease.pdf", PageNumber: 2, PageCount: 5})
	if got != "lease.pdf (page 2 of 5)" {
		t.Errorf("label = %q", got)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"ask": false, "history": false, "init": false, "mcp": false, "serve": false, "upload": false, "version": false, "view": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}
