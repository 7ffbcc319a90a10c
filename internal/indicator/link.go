package indicator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spiffcs/focus/internal/focus"
)

// Commands the status indicator can bind.
const (
	CommandQuickFocus    = "focus.quickFocus"
	CommandShowFocusPage = "focus.showFocusPage"
)

const commandScheme = "command:"

// ErrInvalidLink is returned for URIs that are not command links.
var ErrInvalidLink = errors.New("invalid command link")

// QuickFocusArgs is the payload of a quick focus navigation link.
type QuickFocusArgs struct {
	State QuickFocusState `json:"state"`
}

// QuickFocusState selects the group the quick focus view opens on.
type QuickFocusState struct {
	InitialGroup focus.Group `json:"initialGroup,omitempty"`
}

// Link is a titled command link.
type Link struct {
	Title   string
	Command string
	Args    QuickFocusArgs
}

// NewGroupLink returns a link that opens quick focus on group.
func NewGroupLink(title string, group focus.Group) Link {
	return Link{
		Title:   title,
		Command: CommandQuickFocus,
		Args:    QuickFocusArgs{State: QuickFocusState{InitialGroup: group}},
	}
}

// componentEscaper turns query escaping into URI component escaping:
// spaces become %20 and !'()* stay literal.
var componentEscaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// URI encodes the link as command:<cmd>?<url-encoded JSON>.
func (l Link) URI() string {
	data, err := json.Marshal(l.Args)
	if err != nil {
		return commandScheme + l.Command
	}
	return commandScheme + l.Command + "?" + escapeComponent(string(data))
}

func escapeComponent(s string) string {
	return componentEscaper.Replace(url.QueryEscape(s))
}

// ParseCommandLink decodes a URI produced by Link.URI.
func ParseCommandLink(uri string) (string, QuickFocusArgs, error) {
	var args QuickFocusArgs

	rest, ok := strings.CutPrefix(uri, commandScheme)
	if !ok {
		return "", args, fmt.Errorf("%w: missing %q scheme", ErrInvalidLink, commandScheme)
	}

	command, query, hasArgs := strings.Cut(rest, "?")
	if command == "" {
		return "", args, fmt.Errorf("%w: empty command", ErrInvalidLink)
	}
	if !hasArgs || query == "" {
		return command, args, nil
	}

	raw, err := url.QueryUnescape(query)
	if err != nil {
		return "", args, fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return "", args, fmt.Errorf("%w: bad arguments: %w", ErrInvalidLink, err)
	}
	if g := args.State.InitialGroup; g != "" {
		if _, ok := focus.ParseGroup(string(g)); !ok {
			return "", args, fmt.Errorf("%w: unknown group %q", ErrInvalidLink, g)
		}
	}
	return command, args, nil
}
