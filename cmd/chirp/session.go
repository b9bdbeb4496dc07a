// ABOUTME: CLI commands for the session identity and remote profile.
// ABOUTME: Provides login, whoami, and me subcommands.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2389-research/chirp/internal/models"
)

var loginCmd = &cobra.Command{
	Use:   "login <name>",
	Short: "Set your posting identity",
	Long:  "Set the author name (and optionally user id) posts are published as.",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current posting identity",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var meCmd = &cobra.Command{
	Use:   "me [user-id]",
	Short: "Show your profile, or another user's, from the tweet API",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMe,
}

var loginID string

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(meCmd)

	loginCmd.Flags().StringVar(&loginID, "id", "", "User id on the backend")
}

func runLogin(cmd *cobra.Command, args []string) error {
	author := models.Author{ID: loginID, Name: args[0]}
	if err := globalStore.SetIdentity(author); err != nil {
		return fmt.Errorf("failed to set identity: %w", err)
	}
	fmt.Printf("Logged in as %s\n", author)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	author, err := globalStore.CurrentUser(cmd.Context())
	if err != nil {
		return err
	}
	if author.ID != "" {
		fmt.Printf("%s (id %s)\n", author.Name, author.ID)
	} else {
		fmt.Println(author.Name)
	}
	return nil
}

func runMe(cmd *cobra.Command, args []string) error {
	remote, err := requireRemote()
	if err != nil {
		return err
	}
	var profile *models.Profile
	if len(args) == 1 {
		profile, err = remote.User(cmd.Context(), args[0])
	} else {
		profile, err = remote.Me(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	fmt.Printf("@%s (id %s)\n", profile.Name, profile.ID)
	fmt.Printf("Followers (%d): %s\n", len(profile.Followers), joinAuthors(profile.Followers))
	fmt.Printf("Following (%d): %s\n", len(profile.Following), joinAuthors(profile.Following))
	return nil
}

func joinAuthors(authors []models.Author) string {
	if len(authors) == 0 {
		return "-"
	}
	s := ""
	for i, a := range authors {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s
}
