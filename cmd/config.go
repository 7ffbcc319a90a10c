package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spiffcs/focus/config"
	"github.com/spiffcs/focus/internal/indicator"
	"github.com/spiffcs/focus/internal/integration"
	"github.com/spiffcs/focus/internal/output"
	"gopkg.in/yaml.v3"
)

// NewCmdConfig creates the config command with subcommands.
func NewCmdConfig() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		Long: `Show or manage configuration.

When run without arguments, shows the merged configuration and what focus
makes of it: the indicator behavior and the integrations it will query.

Subcommands:
  init      Create a starter config file
  path      Show config file locations
  defaults  Show all default values
  show      Show the merged config (same as bare 'focus config')
  set       Set a configuration value`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.OutOrStdout(), outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	cmd.AddCommand(NewCmdConfigInit())
	cmd.AddCommand(NewCmdConfigPath())
	cmd.AddCommand(NewCmdConfigDefaults())
	cmd.AddCommand(NewCmdConfigShow())
	cmd.AddCommand(NewCmdConfigSet())

	return cmd
}

// NewCmdConfigInit creates the config init subcommand.
func NewCmdConfigInit() *cobra.Command {
	var global, local bool
	var refreshRate int

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter config file",
		Long: `Create a starter config file with the indicator enabled.

Use --global to create ~/.config/focus/config.yaml (applies everywhere).
Use --local to create ./.focus.yaml (applies only in this directory).
Without either flag you are asked to choose.`,
		Example: `  focus config init --global
  focus config init --local --refresh-rate 15`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := chooseConfigTarget(cmd.InOrStdin(), cmd.OutOrStdout(), global, local)
			if err != nil {
				return err
			}
			rate := -1
			if cmd.Flags().Changed("refresh-rate") {
				rate = refreshRate
			}
			return runConfigInit(cmd.OutOrStdout(), target, rate)
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Create the global config file")
	cmd.Flags().BoolVar(&local, "local", false, "Create the local config file")
	cmd.Flags().IntVar(&refreshRate, "refresh-rate", 5, "Minutes between indicator refreshes, 0 disables polling")
	cmd.MarkFlagsMutuallyExclusive("global", "local")

	return cmd
}

// NewCmdConfigPath creates the config path subcommand.
func NewCmdConfigPath() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file locations",
		Long:  `Show the global and local config file paths and whether they exist.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printConfigPaths(cmd.OutOrStdout(), config.GetConfigPaths())
		},
	}
}

// NewCmdConfigDefaults creates the config defaults subcommand.
func NewCmdConfigDefaults() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Show all default configuration values",
		Long: `Show a complete configuration with all default values.

This can be redirected to create a config file with all defaults:
  focus config defaults > ~/.config/focus/config.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printConfig(cmd.OutOrStdout(), config.DefaultConfig(), outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	return cmd
}

// NewCmdConfigShow creates the config show subcommand.
func NewCmdConfigShow() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the merged configuration",
		Long: `Show the configuration after merging defaults, global and local files,
followed by the effective indicator behavior and integrations.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.OutOrStdout(), outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	return cmd
}

// NewCmdConfigSet creates the config set subcommand.
func NewCmdConfigSet() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a value in the global config file. Available keys:
  default_format                   Default output format (table, json, markdown)
  focus.indicators.enabled         Show the status indicator (true, false)
  focus.indicators.openQuickFocus  Bind the indicator to quick focus (true, false)
  focus.indicators.refreshRate     Minutes between refreshes, 0 disables polling

A running 'focus watch' picks up indicator changes without a restart.`,
		Example: `  focus config set focus.indicators.refreshRate 10
  focus config set default_format markdown`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), config.ConfigPath(), args[0], args[1])
		},
	}
}

// effectiveConfig is what focus derives from the merged config and the
// environment.
type effectiveConfig struct {
	Indicator        effectiveIndicator `json:"indicator" yaml:"indicator"`
	Integrations     []string           `json:"integrations" yaml:"integrations"`
	IntegrationError string             `json:"integrationError,omitempty" yaml:"integration_error,omitempty"`
	Sources          []string           `json:"sources" yaml:"sources"`
}

type effectiveIndicator struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Command string `json:"command" yaml:"command"`
	Refresh string `json:"refresh" yaml:"refresh"`
}

func describeConfig(cfg *config.Config, paths config.ConfigPathInfo, getenv func(string) string) effectiveConfig {
	s := cfg.GetIndicatorSettings()
	eff := effectiveConfig{
		Indicator: effectiveIndicator{
			Enabled: s.Enabled,
			Command: indicator.CommandFor(s),
			Refresh: refreshLabel(s.RefreshRate),
		},
		Integrations: []string{},
		Sources:      []string{"defaults"},
	}

	sessions, err := integration.Sessions(cfg, getenv)
	if err != nil {
		eff.IntegrationError = err.Error()
	}
	for _, session := range sessions {
		eff.Integrations = append(eff.Integrations, fmt.Sprintf("%s (%s)", session.ID, session.Domain))
	}

	if paths.GlobalExists {
		eff.Sources = append(eff.Sources, paths.GlobalPath)
	}
	if paths.LocalExists {
		eff.Sources = append(eff.Sources, paths.LocalPath)
	}
	return eff
}

func refreshLabel(minutes int) string {
	if minutes <= 0 {
		return "off, loads once at startup"
	}
	return "every " + indicator.Pluralize(minutes, "minute")
}

func runConfigShow(w io.Writer, format string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return printConfigView(w, cfg, describeConfig(cfg, config.GetConfigPaths(), os.Getenv), format)
}

// printConfigView prints the config followed by its effective settings. In
// YAML the effective settings are comments, so the output still loads as a
// config file.
func printConfigView(w io.Writer, cfg *config.Config, eff effectiveConfig, format string) error {
	switch format {
	case "yaml":
		if err := printConfig(w, cfg, format); err != nil {
			return err
		}
		data, err := yaml.Marshal(eff)
		if err != nil {
			return fmt.Errorf("failed to marshal effective settings: %w", err)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# effective:")
		for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
			fmt.Fprintf(w, "#   %s\n", line)
		}
		return nil
	case "json":
		view := struct {
			Config    *config.Config  `json:"config"`
			Effective effectiveConfig `json:"effective"`
		}{cfg, eff}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	default:
		return fmt.Errorf("invalid format: %s (must be yaml or json)", format)
	}
}

func printConfig(w io.Writer, cfg *config.Config, format string) error {
	switch format {
	case "yaml":
		yamlStr, err := cfg.ToYAML()
		if err != nil {
			return err
		}
		fmt.Fprint(w, yamlStr)
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	default:
		return fmt.Errorf("invalid format: %s (must be yaml or json)", format)
	}
	return nil
}

func printConfigPaths(w io.Writer, paths config.ConfigPathInfo) error {
	status := func(exists bool) string {
		if exists {
			return "exists"
		}
		return "not found"
	}
	rows := [][]string{
		{"global", paths.GlobalPath, status(paths.GlobalExists)},
		{"local", paths.LocalPath, status(paths.LocalExists)},
	}
	if err := output.RenderList(w, []string{"SCOPE", "PATH", "STATUS"}, rows); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Load order: defaults -> global -> local (local overrides global).")
	fmt.Fprintln(w, "'focus watch' reloads both files when they change, or on SIGHUP.")
	return nil
}

// chooseConfigTarget returns the file init should create, asking on in
// when neither scope flag is set.
func chooseConfigTarget(in io.Reader, w io.Writer, global, local bool) (string, error) {
	paths := config.GetConfigPaths()
	switch {
	case global:
		return paths.GlobalPath, nil
	case local:
		return paths.LocalPath, nil
	}

	fmt.Fprintln(w, "Where would you like to create the config file?")
	fmt.Fprintf(w, "  [1] Global (%s) - applies everywhere\n", paths.GlobalPath)
	fmt.Fprintf(w, "  [2] Local (%s) - applies only in this directory\n", paths.LocalPath)
	fmt.Fprint(w, "Choose [1/2]: ")

	choice, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && choice == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	fmt.Fprintln(w)

	switch strings.TrimSpace(choice) {
	case "1":
		return paths.GlobalPath, nil
	case "2":
		return paths.LocalPath, nil
	default:
		return "", fmt.Errorf("invalid choice: %s (must be 1 or 2)", strings.TrimSpace(choice))
	}
}

// runConfigInit writes the starter config to target. A non-negative
// refreshRate replaces the starter refresh rate.
func runConfigInit(w io.Writer, target string, refreshRate int) error {
	if _, err := os.Stat(target); err == nil {
		return fmt.Errorf("config file already exists: %s\nUse 'focus config show' to view current config", target)
	}

	content := config.MinimalConfig()
	if refreshRate >= 0 {
		content = strings.Replace(content, "refreshRate: 5", "refreshRate: "+strconv.Itoa(refreshRate), 1)
	}
	if err := config.SaveTo(target, content); err != nil {
		return err
	}

	cfg, err := config.LoadFrom(target, "")
	if err != nil {
		return err
	}
	s := cfg.GetIndicatorSettings()
	fmt.Fprintf(w, "Created %s\n\n", target)
	fmt.Fprintf(w, "The status indicator runs %s and refreshes %s.\n", indicator.CommandFor(s), refreshLabel(s.RefreshRate))
	fmt.Fprintln(w, "Run 'focus config defaults' to see all available options.")
	return nil
}

// runConfigSet writes one value to the config file at path and reports
// what changed. Only the global file is written so local overrides stay
// local.
func runConfigSet(w io.Writer, path, key, value string) error {
	if strings.Contains(strings.ToLower(key), "token") {
		return fmt.Errorf("tokens cannot be stored in config files. Set %s, %s or %s instead",
			integration.EnvGitHubToken, integration.EnvGitHubEnterpriseToken, integration.EnvGitLabToken)
	}

	prev, err := config.LoadFrom(path, "")
	if err != nil {
		return err
	}
	next, err := config.LoadFrom(path, "")
	if err != nil {
		return err
	}
	if err := next.Set(key, value); err != nil {
		return err
	}

	if config.Diff(prev, next).Empty() {
		fmt.Fprintf(w, "%s is already %s.\n", key, value)
		return nil
	}

	if err := next.Save(path); err != nil {
		return err
	}

	fmt.Fprintf(w, "Set %s to %s in %s.\n", key, value, path)
	if key == config.KeyIndicatorsRefreshRate {
		fmt.Fprintf(w, "The indicator now refreshes %s.\n", refreshLabel(next.GetIndicatorSettings().RefreshRate))
	}
	return nil
}
