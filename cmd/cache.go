package cmd

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/focus/internal/cache"
	"github.com/spiffcs/focus/internal/constants"
)

// NewCmdCache creates the cache command with subcommands.
func NewCmdCache() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the provider list cache",
	}

	cmd.AddCommand(newCmdCacheClear())
	cmd.AddCommand(newCmdCacheStats())

	return cmd
}

// newCmdCacheClear creates the cache clear subcommand.
func newCmdCacheClear() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the provider list cache",
		RunE:  runCacheClear,
	}
}

// newCmdCacheStats creates the cache stats subcommand.
func newCmdCacheStats() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE:  runCacheStats,
	}
}

func runCacheClear(_ *cobra.Command, _ []string) error {
	c, err := cache.New()
	if err != nil {
		return fmt.Errorf("failed to access cache: %w", err)
	}

	if err := c.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Println("Cache cleared.")
	return nil
}

func runCacheStats(_ *cobra.Command, _ []string) error {
	c, err := cache.New()
	if err != nil {
		return fmt.Errorf("failed to access cache: %w", err)
	}

	stats, err := c.Stats()
	if err != nil {
		return fmt.Errorf("failed to get cache stats: %w", err)
	}

	now := time.Now()
	fmt.Printf("Cache statistics (%s):\n", c.Dir())
	fmt.Printf("  Provider lists (TTL: %s):\n", constants.PRListCacheTTL)
	fmt.Printf("    Total: %d\n", stats.Total)
	fmt.Printf("    Valid: %d\n", stats.Valid)
	fmt.Printf("    Expired: %d\n", stats.Total-stats.Valid)
	for _, provider := range slices.Sorted(maps.Keys(stats.Providers)) {
		p := stats.Providers[provider]
		state := "valid"
		if !p.Valid {
			state = "expired"
		}
		fmt.Printf("  %s: %d pull requests, cached %s (%s)\n", provider, p.Count, ago(p.CachedAt, now), state)
	}
	return nil
}
