package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/contractqa/internal/canvas"
	"github.com/ziadkadry99/contractqa/internal/progress"
	"github.com/ziadkadry99/contractqa/internal/viewer"
)

var viewCmd = &cobra.Command{
	Use:   "view [file.pdf]",
	Short: "Browse a document and ask questions from the terminal",
	Long: `Starts an interactive session. Pages are written to <output_dir>/page.png
as they are rendered; open that file in an image viewer that reloads on
change. An optional file argument is uploaded before the menu appears.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

// pageImage is the surface the terminal display saves after each render.
type pageImage interface {
	WriteFile(path string) error
}

// terminalDisplay prints labels and saves the canvas whenever the page
// number changes, which happens only after the surface was drawn.
type terminalDisplay struct {
	out    io.Writer
	page   pageImage
	path   string
	logger *zap.Logger
	count  int
}

func (d *terminalDisplay) ShowPageCount(n int) {
	d.count = n
	fmt.Fprintf(d.out, "Document has %d pages.\n", n)
}

func (d *terminalDisplay) ShowPageNumber(n int) {
	if err := d.page.WriteFile(d.path); err != nil {
		d.logger.Warn("writing page image", zap.String("path", d.path), zap.Error(err))
	}
	fmt.Fprintf(d.out, "Page %d of %d -> %s\n", n, d.count, d.path)
}

func (d *terminalDisplay) ShowAnswer(text string) {
	fmt.Fprintf(d.out, "\nAnswer:\n%s\n\n", text)
}

func (d *terminalDisplay) ShowNotice(n viewer.Notice) {
	fmt.Fprintf(d.out, "! %s\n", n.Message)
}

const (
	actionUpload = "Upload a PDF"
	actionNext   = "Next page"
	actionPrev   = "Previous page"
	actionAsk    = "Ask a question"
	actionQuit   = "Quit"
)

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, closeHistory, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	c := canvas.New()
	display := &terminalDisplay{
		out:    cmd.OutOrStdout(),
		page:   c,
		path:   filepath.Join(cfg.Viewer.OutputDir, pageFile),
		logger: logger,
	}
	ws := newWorkspace(cfg, logger, newBackend(cfg, logger, progress.NewReporter(), store), c, display)
	ctx := cmd.Context()

	if len(args) == 1 {
		if err := uploadPath(cmd, ws, args[0]); err != nil {
			logger.Error("upload failed", zap.Error(err))
		}
	}

	for {
		prompt := promptui.Select{
			Label: menuLabel(ws.controller.Session()),
			Items: []string{actionUpload, actionNext, actionPrev, actionAsk, actionQuit},
		}
		_, choice, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return fmt.Errorf("prompt: %w", err)
		}

		switch choice {
		case actionUpload:
			path, perr := (&promptui.Prompt{Label: "PDF path"}).Run()
			if perr != nil {
				continue
			}
			err = uploadPath(cmd, ws, strings.TrimSpace(path))
		case actionNext:
			err = ws.controller.NextPage(ctx)
		case actionPrev:
			err = ws.controller.PrevPage(ctx)
		case actionAsk:
			q, perr := (&promptui.Prompt{Label: "Question"}).Run()
			if perr != nil {
				continue
			}
			_, err = ws.controller.Ask(ctx, q)
		case actionQuit:
			return nil
		}

		// Input errors were already printed as notices.
		var inputErr *viewer.InputError
		if err != nil && !errors.As(err, &inputErr) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}
}

func uploadPath(cmd *cobra.Command, ws *workspace, path string) error {
	f := &viewer.File{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		f.Name, f.Data = filepath.Base(path), data
	}
	return ws.controller.Upload(cmd.Context(), f)
}

func menuLabel(info viewer.SessionInfo) string {
	if info.FileName == "" {
		return "No document"
	}
	return fmt.Sprintf("%s (page %d of %d)", info.FileName, info.PageNumber, info.PageCount)
}
