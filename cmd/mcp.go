package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/contractqa/internal/canvas"
	mcpserver "github.com/ziadkadry99/contractqa/internal/mcp"
	"github.com/ziadkadry99/contractqa/internal/progress"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing document upload, navigation and question tools for AI agents.`,
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

		store, closeHistory, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer closeHistory()

		// Stdout carries the protocol; nothing else may write to it.
		c := canvas.New()
		ws := newWorkspace(cfg, logger, newBackend(cfg, logger, progress.Nop{}, store), c)

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "contractqa MCP server started on stdio (backend=%s)\n", cfg.Backend.URL)

		srv := mcpserver.NewServer(ws.controller, mcpserver.Options{
			Labels:    ws.labels,
			Page:      c,
			OutputDir: cfg.Viewer.OutputDir,
			Logger:    logger,
		})
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
