package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spiffcs/focus/internal/integration"
)

// Version information, set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersionInfo sets the version information (called from main).
func SetVersionInfo(v, c, d string) {
	if v != "" {
		version = v
	}
	if c != "" {
		commit = c
	}
	if d != "" {
		date = d
	}
}

// buildInfo describes this binary.
type buildInfo struct {
	Version      string                      `json:"version"`
	Commit       string                      `json:"commit"`
	Built        string                      `json:"built"`
	Go           string                      `json:"go"`
	Integrations []integration.IntegrationID `json:"integrations"`
}

// builtInIntegrations are the integrations this build can query.
var builtInIntegrations = []integration.IntegrationID{
	integration.GitHub,
	integration.GitHubEnterprise,
	integration.GitLab,
	integration.GitLabSelfHosted,
}

func currentBuild() buildInfo {
	return buildInfo{
		Version:      version,
		Commit:       commit,
		Built:        date,
		Go:           runtime.Version(),
		Integrations: builtInIntegrations,
	}
}

// NewCmdVersion creates the version command.
func NewCmdVersion() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printVersion(cmd.OutOrStdout(), currentBuild(), outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, json)")
	return cmd
}

func printVersion(w io.Writer, b buildInfo, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	case "", "text":
		fmt.Fprintf(w, "focus %s\n", b.Version)
		fmt.Fprintf(w, "  commit:       %s\n", b.Commit)
		fmt.Fprintf(w, "  built:        %s\n", b.Built)
		fmt.Fprintf(w, "  go:           %s\n", b.Go)
		fmt.Fprint(w, "  integrations:")
		for _, id := range b.Integrations {
			fmt.Fprintf(w, " %s", id)
		}
		fmt.Fprintln(w)
		return nil
	default:
		return fmt.Errorf("invalid output format %q: must be 'text' or 'json'", format)
	}
}
