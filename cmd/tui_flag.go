package cmd

import (
	"fmt"
	"strconv"

	"github.com/spiffcs/focus/internal/tui"
)

// autoBool is a pflag.Value for on/off/auto switches. auto stores nil so
// the caller detects the right behavior at run time.
type autoBool struct {
	target **bool
}

// newTUIFlag binds --tui to opts.TUI.
func newTUIFlag(opts *Options) *autoBool {
	return &autoBool{target: &opts.TUI}
}

func (f *autoBool) String() string {
	if *f.target == nil {
		return "auto"
	}
	return strconv.FormatBool(**f.target)
}

func (f *autoBool) Set(s string) error {
	switch s {
	case "auto":
		*f.target = nil
		return nil
	case "yes", "on":
		s = "true"
	case "no", "off":
		s = "false"
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid value %q: use true, false, or auto", s)
	}
	*f.target = &v
	return nil
}

func (f *autoBool) Type() string {
	return "bool"
}

// IsBoolFlag lets a bare --tui mean --tui=true.
func (f *autoBool) IsBoolFlag() bool {
	return true
}

// shouldUseTUI reports whether a command takes over the terminal. Verbose
// logging turns it off so logs stay visible.
func shouldUseTUI(opts *Options) bool {
	if opts.Verbosity > 0 {
		return false
	}
	if opts.TUI != nil {
		return *opts.TUI
	}
	return tui.ShouldUseTUI()
}
