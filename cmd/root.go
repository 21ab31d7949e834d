package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "contractqa",
	Short: "Upload contracts, page through them and ask questions about them",
	Long: `ContractQA is a client for a document question-answering service. It
uploads a PDF to the backend, renders its pages locally and sends
questions about the uploaded document, either from the terminal, a
local web page or an MCP-capable agent.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".contractqa.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
