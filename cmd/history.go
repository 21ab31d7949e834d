package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/contractqa/internal/history"
	"github.com/ziadkadry99/contractqa/internal/viewer"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded uploads, or the questions asked about a contract",
	Long: `Lists uploads recorded in the local history database, newest first.
With --contract, lists the questions asked about that contract instead.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("contract", "", "list questions asked about this contract")
	historyCmd.Flags().Int("limit", 20, "maximum number of entries")
	historyCmd.Flags().Bool("json", false, "output entries as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	contract, _ := cmd.Flags().GetString("contract")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, closeHistory, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeHistory()
	if store == nil {
		return fmt.Errorf("history is disabled; set history.enabled in %s", cfgFile)
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	filter := history.ListFilter{ContractID: contract, Limit: limit}

	if contract != "" {
		questions, err := store.ListQuestions(ctx, filter)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(out, questions)
		}
		if len(questions) == 0 {
			fmt.Fprintf(out, "No questions recorded for %s.\n", contract)
			return nil
		}
		for _, q := range questions {
			fmt.Fprintf(out, "[%s] %s\n  %s\n\n", q.CreatedAt.Local().Format(time.DateTime), q.Question, answerOrPlaceholder(q.Answer))
		}
		return nil
	}

	uploads, err := store.ListUploads(ctx, filter)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(out, uploads)
	}
	if len(uploads) == 0 {
		fmt.Fprintln(out, "No uploads recorded yet.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "UPLOADED\tFILE\tCONTRACT ID\tSTATUS")
	for _, u := range uploads {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.CreatedAt.Local().Format(time.DateTime), u.FileName, u.ContractID, u.Status)
	}
	return tw.Flush()
}

func answerOrPlaceholder(answer string) string {
	return viewer.AnswerText(&viewer.AskResult{Answer: answer})
}
