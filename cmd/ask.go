package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/contractqa/internal/progress"
	"github.com/ziadkadry99/contractqa/internal/viewer"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about an uploaded contract",
	Long: `Sends a question to the backend about an uploaded document. Pass
--contract with the identifier printed by upload, or --last to use the most
recently uploaded one. One of the two is required.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("contract", "", "contract identifier returned by upload")
	askCmd.Flags().Bool("last", false, "use the contract of the most recent upload")
	askCmd.Flags().Bool("json", false, "output the answer and matched chunk as JSON")
	rootCmd.AddCommand(askCmd)
}

type askOutput struct {
	Question     string `json:"question"`
	ContractID   string `json:"contract_id"`
	Answer       string `json:"answer"`
	MatchedChunk string `json:"matched_chunk,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	contract, _ := cmd.Flags().GetString("contract")
	useLast, _ := cmd.Flags().GetBool("last")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	question := strings.TrimSpace(args[0])
	if question == "" {
		return fmt.Errorf("question must not be empty")
	}
	if contract != "" && useLast {
		return fmt.Errorf("--contract and --last are mutually exclusive")
	}
	if contract == "" && !useLast {
		return fmt.Errorf("no contract to ask about: pass --contract or --last")
	}

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

	if useLast {
		if store == nil {
			return fmt.Errorf("--last needs history.enabled")
		}
		latest, err := store.LatestUpload(cmd.Context())
		if err != nil {
			return err
		}
		if latest == nil {
			return fmt.Errorf("no uploads recorded yet; run `contractqa upload` first")
		}
		contract = latest.ContractID
	}

	res, err := newBackend(cfg, logger, progress.Nop{}, store).Ask(cmd.Context(), question, &contract)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, askOutput{
			Question:     question,
			ContractID:   contract,
			Answer:       viewer.AnswerText(res),
			MatchedChunk: res.MatchedChunk,
		})
	}

	fmt.Fprintln(out, viewer.AnswerText(res))
	return nil
}
