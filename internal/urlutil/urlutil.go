// Package urlutil parses pull and merge request references.
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrNotARef is returned for input that names no pull or merge request.
var ErrNotARef = errors.New("not a pull request reference")

// Ref identifies a pull or merge request. Provider is empty unless the
// input was an item key such as github:owner/repo#42.
type Ref struct {
	Provider   string
	Repository string
	Number     int
}

// ParseRef accepts an item key (github:owner/repo#42), a short reference
// (owner/repo#42), a GitHub pull URL or a GitLab merge request URL.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "://") {
		return parseURL(s)
	}

	var ref Ref
	if provider, rest, ok := strings.Cut(s, ":"); ok && !strings.Contains(provider, "/") {
		ref.Provider = provider
		s = rest
	}

	repo, num, ok := strings.Cut(s, "#")
	if !ok || !strings.Contains(repo, "/") {
		return Ref{}, fmt.Errorf("%w: %q", ErrNotARef, s)
	}
	n, err := parseNumber(num)
	if err != nil {
		return Ref{}, err
	}
	ref.Repository = repo
	ref.Number = n
	return ref, nil
}

// parseURL handles https://host/owner/repo/pull/42 and
// https://host/group/project/-/merge_requests/42, ignoring trailing tabs
// such as /files or /diffs.
func parseURL(raw string) (Ref, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %w", ErrNotARef, err)
	}
	path := strings.Trim(u.Path, "/")

	if repo, rest, ok := strings.Cut(path, "/-/merge_requests/"); ok {
		n, err := parseNumber(firstSegment(rest))
		if err != nil {
			return Ref{}, err
		}
		return Ref{Repository: repo, Number: n}, nil
	}

	parts := strings.Split(path, "/")
	for i := 2; i < len(parts)-1; i++ {
		if parts[i] != "pull" && parts[i] != "pulls" {
			continue
		}
		n, err := parseNumber(parts[i+1])
		if err != nil {
			return Ref{}, err
		}
		return Ref{Repository: strings.Join(parts[:i], "/"), Number: n}, nil
	}
	return Ref{}, fmt.Errorf("%w: %q", ErrNotARef, raw)
}

func firstSegment(s string) string {
	seg, _, _ := strings.Cut(s, "/")
	return seg
}

func parseNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: bad number %q", ErrNotARef, s)
	}
	return n, nil
}
