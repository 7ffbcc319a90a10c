package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spiffcs/focus/config"
	"github.com/spiffcs/focus/internal/integration"
	"github.com/spiffcs/focus/internal/output"
)

// integrationsOutput is the JSON shape of the integrations command.
type integrationsOutput struct {
	Configured     []integration.ConfiguredIntegrationDescriptor `json:"configured"`
	CloudEnabled   bool                                          `json:"cloudIntegrationsEnabled"`
	SupportedCloud []integration.IntegrationID                   `json:"supportedCloudIntegrations"`
}

// NewCmdIntegrations creates the integrations command.
func NewCmdIntegrations() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "integrations [id]",
		Short: "Show configured integrations",
		Long: `Lists the integrations focus will query, without their credentials,
and the cloud integrations supported under the current settings.

An integration id (github-enterprise) or cloud provider type
(githubEnterprise) narrows the output to that integration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out, err := describeIntegrations(cfg, os.Getenv)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if out, err = out.only(args[0]); err != nil {
					return err
				}
			}
			switch outputFormat {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			case "", "table":
				return printIntegrations(os.Stdout, out)
			default:
				return fmt.Errorf("invalid output format %q: must be 'table' or 'json'", outputFormat)
			}
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json)")
	return cmd
}

func describeIntegrations(cfg *config.Config, getenv func(string) string) (*integrationsOutput, error) {
	sessions, err := integration.Sessions(cfg, getenv)
	if err != nil {
		return nil, err
	}

	cloud := cfg.CloudIntegrationsEnabled()
	out := &integrationsOutput{
		Configured:     make([]integration.ConfiguredIntegrationDescriptor, 0, len(sessions)),
		CloudEnabled:   cloud,
		SupportedCloud: integration.SupportedCloudIntegrationIDs(cloud),
	}
	for _, s := range sessions {
		out.Configured = append(out.Configured, s.Descriptor())
	}
	return out, nil
}

// only narrows the output to the integration named by query.
func (o *integrationsOutput) only(query string) (*integrationsOutput, error) {
	id, ok := integration.Resolve(query)
	if !ok {
		return nil, fmt.Errorf("unknown integration %q", query)
	}

	out := &integrationsOutput{
		Configured:     []integration.ConfiguredIntegrationDescriptor{},
		CloudEnabled:   o.CloudEnabled,
		SupportedCloud: []integration.IntegrationID{},
	}
	for _, d := range o.Configured {
		if d.IntegrationID == id {
			out.Configured = append(out.Configured, d)
		}
	}
	if integration.IsSupportedCloudIntegrationID(string(id), o.CloudEnabled) {
		out.SupportedCloud = append(out.SupportedCloud, id)
	}
	return out, nil
}

func printIntegrations(w io.Writer, out *integrationsOutput) error {
	rows := make([][]string, 0, len(out.Configured))
	for _, d := range out.Configured {
		rows = append(rows, []string{d.IntegrationID.Name(), string(d.IntegrationID), d.Domain, d.Scopes})
	}
	if err := output.RenderList(w, []string{"INTEGRATION", "ID", "DOMAIN", "SCOPES"}, rows); err != nil {
		return err
	}

	fmt.Fprintln(w)
	state := "disabled"
	if out.CloudEnabled {
		state = "enabled"
	}
	fmt.Fprintf(w, "Cloud integrations (%s):", state)
	for _, id := range out.SupportedCloud {
		fmt.Fprintf(w, " %s", id)
	}
	fmt.Fprintln(w)
	return nil
}
