package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/zjrosen/flowdraft/internal/backend"
)

var (
	submitName       string
	submitActivities []string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Build a workflow draft and submit it",
	Long: `Build a workflow draft from flags and submit it to the workflow service.
Activities are added in the order given, each with a 10s timeout.`,
	Example: `  flowdraft submit --name OrderProcessor --activity ValidateOrder --activity ChargeCard`,
	RunE:    runSubmit,
}

func init() {
	submitCmd.Flags().StringVarP(&submitName, "name", "n", "", "workflow name")
	submitCmd.Flags().StringArrayVarP(&submitActivities, "activity", "a", nil, "activity name (repeatable)")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.session.SetName(submitName)
	for _, name := range submitActivities {
		rt.session.AddActivity(name)
	}

	outcome, err := rt.session.SubmitDraft(cmd.Context())
	if err != nil {
		return fmt.Errorf("workflow not submitted: %w", err)
	}
	if !outcome.OK() {
		return errors.New(outcome.Notice)
	}

	printResponse(cmd.OutOrStdout(), outcome.Response)
	if outcome.ServiceFailed() {
		code := outcome.Response.ErrorCode
		if code == "" {
			code = backend.StatusFailed
		}
		return fmt.Errorf("workflow not generated: %s", code)
	}
	return nil
}

func printResponse(w io.Writer, resp *backend.GenerateResponse) {
	if resp == nil {
		return
	}
	_, _ = fmt.Fprintln(w, resp.Message)

	files, _ := resp.Data["generated_files"].(map[string]any)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(w, "  %s\n", name)
	}
	if instr, ok := resp.Data["instruction"].(string); ok && instr != "" {
		_, _ = fmt.Fprintln(w, instr)
	}
}
