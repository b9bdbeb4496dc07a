// ABOUTME: CLI commands for reading and interacting with the tweet API feed.
// ABOUTME: Provides feed, delete, like, unlike, follow, and unfollow subcommands.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389-research/chirp/internal/storage"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Read the feed",
	Long:  "List posts from the tweet API with optional filtering.",
	Args:  cobra.NoArgs,
	RunE:  runFeed,
}

var (
	feedLimit  int
	feedOffset int
	feedAuthor string
)

// remoteAction builds a one-argument command calling fn on the tweet API.
func remoteAction(use, short, done string, fn func(r *storage.RemoteClient, ctx context.Context, id string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote, err := requireRemote()
			if err != nil {
				return err
			}
			if err := fn(remote, cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf(done+"\n", args[0])
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(
		remoteAction("delete <tweet-id>", "Delete one of your posts", "Deleted %s", (*storage.RemoteClient).DeleteTweet),
		remoteAction("like <tweet-id>", "Like a post", "Liked %s", (*storage.RemoteClient).Like),
		remoteAction("unlike <tweet-id>", "Remove your like from a post", "Unliked %s", (*storage.RemoteClient).Unlike),
		remoteAction("follow <user-id>", "Follow a user", "Following %s", (*storage.RemoteClient).Follow),
		remoteAction("unfollow <user-id>", "Stop following a user", "Unfollowed %s", (*storage.RemoteClient).Unfollow),
	)

	feedCmd.Flags().IntVar(&feedLimit, "limit", 10, "Maximum number of posts to show")
	feedCmd.Flags().IntVar(&feedOffset, "offset", 0, "Number of posts to skip")
	feedCmd.Flags().StringVar(&feedAuthor, "author", "", "Filter by author name")
}

func runFeed(cmd *cobra.Command, args []string) error {
	remote, err := requireRemote()
	if err != nil {
		return err
	}

	tweets, err := remote.ReadTweets(cmd.Context(), storage.FeedOptions{
		Limit:  feedLimit,
		Offset: feedOffset,
		Author: feedAuthor,
	})
	if err != nil {
		return fmt.Errorf("failed to read feed: %w", err)
	}

	if len(tweets) == 0 {
		fmt.Println("No posts found.")
		return nil
	}

	for _, tw := range tweets {
		fmt.Printf("--- @%s [%s]", tw.Author, tw.ID)
		if len(tw.Likes) > 0 {
			names := make([]string, len(tw.Likes))
			for i, l := range tw.Likes {
				names[i] = l.String()
			}
			fmt.Printf(" ♥ %s", strings.Join(names, ", "))
		}
		fmt.Printf("\n%s\n", tw.Content)
		for _, a := range tw.Attachments {
			fmt.Printf("  %s\n", a)
		}
		fmt.Println()
	}
	return nil
}
