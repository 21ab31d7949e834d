package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback while a document is being uploaded.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{out: os.Stderr}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a byte progress bar in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Uploading"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar != nil {
		r.bar.Describe(message)
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	out   io.Writer
	total int
}

func (r *CIReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(r.out, "Uploading %d bytes\n", total)
}

// Update only prints at completion; per-chunk lines would flood CI logs.
func (r *CIReporter) Update(current int, message string) {
	if current >= r.total {
		fmt.Fprintf(r.out, "[%d/%d] %s\n", current, r.total, message)
	}
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(r.out, "Upload complete")
}

// Nop discards all progress.
type Nop struct{}

func (Nop) Start(int)          {}
func (Nop) Update(int, string) {}
func (Nop) Finish()            {}

// Reader wraps an io.Reader and reports the bytes read through a Reporter.
type Reader struct {
	r        io.Reader
	reporter Reporter
	label    string
	read     int
}

// NewReader starts the reporter with total and returns a Reader that
// updates it as bytes flow through.
func NewReader(r io.Reader, total int, label string, reporter Reporter) *Reader {
	if reporter == nil {
		reporter = Nop{}
	}
	reporter.Start(total)
	return &Reader{r: r, reporter: reporter, label: label}
}

func (p *Reader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += n
		p.reporter.Update(p.read, p.label)
	}
	if err == io.EOF {
		p.reporter.Finish()
	}
	return n, err
}
