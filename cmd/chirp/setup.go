// ABOUTME: Cobra command for interactive tweet API account setup.
// ABOUTME: Launches a bubbletea TUI wizard to collect and validate API credentials.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/chirp/internal/config"
	"github.com/2389-research/chirp/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Connect your tweet API account",
	Long:  "Interactive wizard to configure the tweet API URL, key and notification language.",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg := globalConfig

	p := tea.NewProgram(tui.NewSetupModel(cfg.API.URL, cfg.API.APIKey, cfg.Language))
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tui.SetupModel)
	if !final.ShouldSave() {
		fmt.Println("Setup cancelled.")
		return nil
	}

	res := final.Result()
	cfg.Backend = config.BackendAPI
	cfg.API.URL = res.APIURL
	cfg.API.APIKey = res.APIKey
	cfg.Language = res.Language

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if author := final.Author(); !author.IsZero() {
		if err := globalStore.SetIdentity(author); err != nil {
			return fmt.Errorf("failed to save identity: %w", err)
		}
		fmt.Printf("Logged in as %s\n", author)
	}

	configPath, err := config.GetConfigPath()
	if err != nil {
		fmt.Println("Config saved successfully.")
	} else {
		fmt.Printf("Config saved to %s\n", configPath)
	}
	return nil
}
