// ABOUTME: Cobra command for the interactive composer.
// ABOUTME: Opens the saved draft in a bubbletea TUI and persists what is left unsent.
package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/chirp/internal/tui"
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Write and send posts in an interactive editor",
	Long:  "Edit the saved draft, attach images with ctrl+o, and send with ctrl+s.",
	Args:  cobra.NoArgs,
	RunE:  runCompose,
}

func init() {
	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	d, err := globalStore.GetDraft()
	if err != nil {
		return fmt.Errorf("failed to load draft: %w", err)
	}

	toasts := tui.NewToasts()
	var submit tui.SubmitFn
	submitter, err := newSubmitter(toasts)
	if err != nil {
		globalLogger.Warn().Err(err).Msg("sending disabled")
	} else {
		submit = submitter.SubmitDraft
	}

	p := tea.NewProgram(tui.NewComposeModel(d, submit, toasts))
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tui.ComposeModel)
	left := final.Draft()
	if left.IsEmpty() {
		if err := globalStore.ClearDraft(); err != nil {
			return fmt.Errorf("failed to clear draft: %w", err)
		}
	} else {
		left.UpdatedAt = time.Now()
		if err := globalStore.SaveDraft(left); err != nil {
			return fmt.Errorf("failed to save draft: %w", err)
		}
	}

	if n := final.Sent(); n > 0 {
		fmt.Printf("Sent %d post(s).\n", n)
	}
	return nil
}
