package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"
	"github.com/spiffcs/focus/internal/ghclient"
	"github.com/spiffcs/focus/internal/integration"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Check GitHub API rate limit status",
		Long:  `Display current GitHub API rate limit status including remaining quota and reset time.`,
	}
	cmd.AddCommand(NewCmdRateLimitStatus())
	return cmd
}

// NewCmdRateLimitStatus creates the ratelimit status subcommand.
func NewCmdRateLimitStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current rate limit status",
		Long:  `Display the current rate limit status of every configured GitHub integration.`,
		RunE:  runRateLimitStatus,
	}
}

func runRateLimitStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sessions, err := integration.Sessions(cfg, os.Getenv)
	if err != nil {
		return err
	}

	var checked int
	for _, s := range sessions {
		if !s.ID.IsGitHub() {
			continue
		}
		client, err := ghclient.NewClient(cmd.Context(), s)
		if err != nil {
			return err
		}
		limits, err := client.RateLimits(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s: failed to get rate limits: %w", s.ID.Name(), err)
		}

		if checked > 0 {
			fmt.Println()
		}
		fmt.Printf("%s API Rate Limits:\n\n", s.ID.Name())
		printRate("Core API:  ", limits.Core)
		printRate("Search API:", limits.Search)
		printRate("GraphQL:   ", limits.GraphQL)
		checked++
	}

	if checked == 0 {
		return errors.New("no GitHub integration configured. Set the GITHUB_TOKEN environment variable")
	}
	return nil
}

func printRate(label string, r *gh.Rate) {
	if r == nil {
		return
	}
	resetIn := max(time.Until(r.Reset.Time).Round(time.Second), 0)
	fmt.Printf("%s %d/%d remaining (resets in %s)\n", label, r.Remaining, r.Limit, resetIn)
}
