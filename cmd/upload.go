package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/contractqa/internal/canvas"
	"github.com/ziadkadry99/contractqa/internal/history"
	"github.com/ziadkadry99/contractqa/internal/progress"
	"github.com/ziadkadry99/contractqa/internal/viewer"
	"github.com/ziadkadry99/contractqa/internal/walker"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file.pdf | dir | glob]...",
	Short: "Upload PDFs and render the first page",
	Long: `Uploads each PDF to the backend and prints the contract identifier it was
indexed under. Arguments may be files, directories (searched for *.pdf) or
glob patterns such as "contracts/**/*.pdf". The first page of the last
document is written to <output_dir>/page.png.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().Bool("no-render", false, "skip writing the first page image")
	uploadCmd.Flags().StringSlice("exclude", nil, "glob patterns of files to skip")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	noRender, _ := cmd.Flags().GetBool("no-render")
	exclude, _ := cmd.Flags().GetStringSlice("exclude")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	files, err := walker.Expand(args, walker.Config{Exclude: exclude})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no PDF files found")
	}

	store, closeHistory, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	ctx := cmd.Context()
	ws := newWorkspace(cfg, logger, newBackend(cfg, logger, progress.NewReporter(), store), canvas.New())

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tCONTRACT ID\tSTATUS\tPAGES")

	var (
		failed   int
		rendered string
	)
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.Path, err)
		}

		if store != nil {
			if prev, err := store.FindByHash(ctx, history.Hash(data)); err == nil && prev != nil {
				logger.Info("content uploaded before",
					zap.String("file", f.Path),
					zap.String("contract_id", prev.ContractID),
					zap.Time("at", prev.CreatedAt))
				fmt.Fprintf(cmd.ErrOrStderr(), "Note: %s was uploaded before as contract %s\n", f.Path, prev.ContractID)
			}
		}

		if err := ws.controller.Upload(ctx, &viewer.File{Name: filepath.Base(f.Path), Data: data}); err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s: %v\n", f.Path, err)
			continue
		}

		info := ws.controller.Session()
		rendered = filepath.Base(f.Path)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", f.Path, info.ContractID, info.UploadStatus, info.PageCount)
	}
	tw.Flush()

	if failed == len(files) {
		return fmt.Errorf("all %d uploads failed", failed)
	}

	if noRender || rendered == "" || ws.canvas.Empty() {
		return nil
	}
	pagePath := filepath.Join(cfg.Viewer.OutputDir, pageFile)
	if err := ws.canvas.WriteFile(pagePath); err != nil {
		return fmt.Errorf("writing page image: %w", err)
	}
	fmt.Fprintf(out, "\nPage 1 of %s: %s\n", rendered, pagePath)
	return nil
}
