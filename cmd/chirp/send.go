// ABOUTME: CLI commands that publish posts through the submitter.
// ABOUTME: Provides send (saved draft) and post (ad-hoc text and images).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389-research/chirp/internal/models"
	"github.com/2389-research/chirp/internal/notify"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send the saved draft",
	Long:  "Upload the draft's images in parallel, publish the post, and clear the draft on success.",
	Args:  cobra.NoArgs,
	RunE:  runSend,
}

var postCmd = &cobra.Command{
	Use:   "post <text>",
	Short: "Send a post without touching the saved draft",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPost,
}

var postImages []string

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(postCmd)

	postCmd.Flags().StringArrayVarP(&postImages, "image", "i", nil, "Image to attach (repeatable)")
}

func runSend(cmd *cobra.Command, args []string) error {
	d, err := globalStore.GetDraft()
	if err != nil {
		return fmt.Errorf("failed to load draft: %w", err)
	}
	if d.IsEmpty() {
		return fmt.Errorf("draft is empty - use 'chirp draft text' or 'chirp draft attach' first")
	}

	if err := submitDraft(cmd.Context(), d); err != nil {
		return err
	}

	if err := globalStore.ClearDraft(); err != nil {
		return fmt.Errorf("post sent but failed to clear draft: %w", err)
	}
	return nil
}

func runPost(cmd *cobra.Command, args []string) error {
	d := models.NewDraft()
	d.Text = strings.Join(args, " ")
	d.Images = postImages
	return submitDraft(cmd.Context(), d)
}

// submitDraft sends d, printing the notification to stdout.
// Interrupting the process cancels in-flight uploads.
func submitDraft(ctx context.Context, d *models.Draft) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	submitter, err := newSubmitter(notify.NewWriter(os.Stdout))
	if err != nil {
		return err
	}
	return submitter.SubmitDraft(ctx, d)
}
