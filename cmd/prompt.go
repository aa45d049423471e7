package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/flowdraft/internal/coordinator"
	"github.com/zjrosen/flowdraft/internal/transcript"
)

var promptCmd = &cobra.Command{
	Use:   "prompt <description>",
	Short: "Describe a workflow in natural language",
	Long: `Send one natural language description to the workflow service and print
the exchange, exactly as the chat panel would record it.`,
	Example: `  flowdraft prompt "create a workflow named payment with activities named charge and refund"`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return fmt.Errorf("prompt must not be empty")
	}

	rt, err := newRuntime(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	outcome, _ := rt.session.SubmitPrompt(cmd.Context(), text)
	printTranscript(cmd.OutOrStdout(), rt.session.Transcript().Messages())

	if outcome.Kind != coordinator.OutcomeReply {
		return fmt.Errorf("prompt %s: %w", outcome.Kind, outcome.Err)
	}
	return nil
}

func printTranscript(w io.Writer, msgs []transcript.Message) {
	for _, msg := range msgs {
		label := "You"
		if msg.Sender == transcript.SenderBot {
			label = "Assistant"
		}
		_, _ = fmt.Fprintf(w, "%s: %s\n", label, msg.Text)
	}
}
