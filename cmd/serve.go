package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/contractqa/internal/canvas"
	"github.com/ziadkadry99/contractqa/internal/progress"
	"github.com/ziadkadry99/contractqa/internal/server"
	"github.com/ziadkadry99/contractqa/internal/webui"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web viewer",
	Long:  `Starts a local web server hosting the document viewer page. Open http://localhost:<port>/ to upload a PDF, page through it and ask questions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		store, closeHistory, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer closeHistory()

		c := canvas.New()
		hub := webui.NewHub(c, logger)
		ws := newWorkspace(cfg, logger, newBackend(cfg, logger, progress.Nop{}, store), c, hub)

		srv := server.New(server.Config{
			Port:     port,
			AllowAll: cfg.Server.AllowAllOrigins,
		}, logger)
		webui.New(ws.controller, c, hub, webui.Config{
			AllowAllOrigins: cfg.Server.AllowAllOrigins,
			Logger:          logger,
		}).RegisterRoutes(srv.Router())

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		fmt.Fprintf(os.Stderr, "contractqa %s viewer on http://localhost:%d/\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Backend: %s\n", cfg.Backend.URL)
		logger.Debug("server config", zap.Int("port", port), zap.Bool("allow_all_origins", cfg.Server.AllowAllOrigins))

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
