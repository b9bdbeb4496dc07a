// ABOUTME: CLI commands for editing the saved draft.
// ABOUTME: Provides draft text, attach, detach, show, and clear subcommands.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/2389-research/chirp/internal/models"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Edit the saved draft",
	Long:  "Set the draft text, attach or detach images, and inspect the draft before sending.",
}

var draftTextCmd = &cobra.Command{
	Use:   "text <text>",
	Short: "Set the draft text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDraftText,
}

var draftAttachCmd = &cobra.Command{
	Use:   "attach <path>...",
	Short: "Attach one or more images",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDraftAttach,
}

var draftDetachCmd = &cobra.Command{
	Use:   "detach <index>",
	Short: "Remove an attached image by its 1-based index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftDetach,
}

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the draft",
	Args:  cobra.NoArgs,
	RunE:  runDraftShow,
}

var draftClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the draft",
	Args:  cobra.NoArgs,
	RunE:  runDraftClear,
}

func init() {
	rootCmd.AddCommand(draftCmd)
	draftCmd.AddCommand(draftTextCmd)
	draftCmd.AddCommand(draftAttachCmd)
	draftCmd.AddCommand(draftDetachCmd)
	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftClearCmd)
}

// updateDraft loads the draft, applies fn, and saves it.
func updateDraft(fn func(d *models.Draft) error) (*models.Draft, error) {
	d, err := globalStore.GetDraft()
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	d.UpdatedAt = time.Now()
	if err := globalStore.SaveDraft(d); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return d, nil
}

func runDraftText(cmd *cobra.Command, args []string) error {
	_, err := updateDraft(func(d *models.Draft) error {
		d.Text = strings.Join(args, " ")
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Println("Draft text updated.")
	return nil
}

func runDraftAttach(cmd *cobra.Command, args []string) error {
	d, err := updateDraft(func(d *models.Draft) error {
		for _, p := range args {
			abs, err := filepath.Abs(p)
			if err != nil {
				return fmt.Errorf("invalid path %s: %w", p, err)
			}
			info, err := os.Stat(abs)
			if err != nil {
				return fmt.Errorf("cannot attach %s: %w", p, err)
			}
			if info.IsDir() {
				return fmt.Errorf("cannot attach %s: is a directory", p)
			}
			d.Images = append(d.Images, abs)
		}
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("Draft has %d image(s).\n", len(d.Images))
	return nil
}

func runDraftDetach(cmd *cobra.Command, args []string) error {
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid index %q: %w", args[0], err)
	}
	var removed string
	_, err = updateDraft(func(d *models.Draft) error {
		if idx < 1 || idx > len(d.Images) {
			return fmt.Errorf("index %d out of range (draft has %d image(s))", idx, len(d.Images))
		}
		removed = d.Images[idx-1]
		d.Images = append(d.Images[:idx-1], d.Images[idx:]...)
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("Detached %s\n", removed)
	return nil
}

func runDraftShow(cmd *cobra.Command, args []string) error {
	d, err := globalStore.GetDraft()
	if err != nil {
		return fmt.Errorf("failed to load draft: %w", err)
	}
	if d.IsEmpty() {
		fmt.Println("Draft is empty.")
		return nil
	}

	fmt.Printf("--- draft %s [%s]\n", d.ID.String()[:8], d.UpdatedAt.Format("2006-01-02 15:04:05"))
	fmt.Println(d.Text)
	for i, p := range d.Images {
		fmt.Printf("  [%d] %s\n", i+1, p)
	}
	return nil
}

func runDraftClear(cmd *cobra.Command, args []string) error {
	if err := globalStore.ClearDraft(); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	fmt.Println("Draft cleared.")
	return nil
}
