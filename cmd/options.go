package cmd

// Options holds the shared command-line options for the focus CLI.
type Options struct {
	Format    string
	Since     string
	Groups    []string
	Verbosity int
	Force     bool  // Bypass the provider list cache
	TUI       *bool // nil = auto-detect, true = force TUI, false = disable TUI

	// Quick focus options
	Link string // Command link selecting the initial group

	// Watch options
	Details bool // Print tooltip messages under each status line
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format (table, json, markdown).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithSince limits output to items updated within the window (e.g. "1w").
func WithSince(since string) Option {
	return func(o *Options) {
		o.Since = since
	}
}

// WithGroups limits output to the named groups.
func WithGroups(groups ...string) Option {
	return func(o *Options) {
		o.Groups = groups
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithForce bypasses the provider list cache.
func WithForce(force bool) Option {
	return func(o *Options) {
		o.Force = force
	}
}

// WithTUI controls TUI mode (nil = auto-detect, true = force, false = disable).
func WithTUI(tui *bool) Option {
	return func(o *Options) {
		o.TUI = tui
	}
}
