// Package filter compiles textual host filters and applies them to entry
// lists. Three grammars, in precedence order: "attr:regex" scopes a regex
// to one attribute (empty regex means the attribute is empty),
// "attr?" checks that an attribute is set, and anything else is an
// unscoped case-insensitive regex matched against every string value of
// the entry.
package filter

import (
	"fmt"
	"regexp"

	"github.com/lsi-dev/lsi/hosts"
)

var (
	scopedPattern    = regexp.MustCompile(`^([a-z_.]+):(.*)$`)
	existencePattern = regexp.MustCompile(`^([a-z_.]+)\?$`)
)

// Filter is a compiled predicate over a host entry. Matching is pure and
// the filter is never mutated after compilation.
type Filter struct {
	text string

	// Exactly one of these modes is active.
	attr      string         // scoped or existence attribute, "" for unscoped
	existence bool           // "attr?" form
	wantEmpty bool           // "attr:" form with empty pattern
	re        *regexp.Regexp // nil for existence and wantEmpty forms
}

// Compile classifies the filter text and compiles any embedded regex.
// Unscoped regexes compile case-insensitively.
func Compile(text string) (*Filter, error) {
	if m := scopedPattern.FindStringSubmatch(text); m != nil {
		f := &Filter{text: text, attr: m[1]}
		if m[2] == "" {
			f.wantEmpty = true
			return f, nil
		}
		re, err := regexp.Compile("(?i)" + m[2])
		if err != nil {
			return nil, fmt.Errorf("bad filter %q: %w", text, err)
		}
		f.re = re
		return f, nil
	}
	if m := existencePattern.FindStringSubmatch(text); m != nil {
		return &Filter{text: text, attr: m[1], existence: true}, nil
	}
	re, err := regexp.Compile("(?i)" + text)
	if err != nil {
		return nil, fmt.Errorf("bad filter %q: %w", text, err)
	}
	return &Filter{text: text, re: re}, nil
}

// Text returns the original filter text.
func (f *Filter) Text() string {
	return f.text
}

// Matches reports whether the entry satisfies the filter. An unknown
// attribute in a scoped filter surfaces as an error so callers can warn.
func (f *Filter) Matches(e *hosts.Entry) (bool, error) {
	if f.attr != "" {
		v, err := e.Attribute(f.attr)
		if err != nil {
			return false, err
		}
		switch {
		case f.existence:
			return !v.IsEmpty(), nil
		case f.wantEmpty:
			return v.IsEmpty(), nil
		default:
			return v.MatchesRegex(f.re), nil
		}
	}
	for _, v := range e.Values() {
		if v.MatchesRegex(f.re) {
			return true, nil
		}
	}
	return false, nil
}

// CompileAll compiles a list of filter texts.
func CompileAll(texts []string) ([]*Filter, error) {
	filters := make([]*Filter, 0, len(texts))
	for _, t := range texts {
		f, err := Compile(t)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// Apply keeps entries matching all include filters and none of the
// exclude filters, preserving order. An unknown attribute referenced by
// any filter is returned as an error.
func Apply(entries []hosts.Entry, include, exclude []*Filter) ([]hosts.Entry, error) {
	filtered := make([]hosts.Entry, 0, len(entries))
entries:
	for i := range entries {
		for _, f := range include {
			ok, err := f.Matches(&entries[i])
			if err != nil {
				return nil, err
			}
			if !ok {
				continue entries
			}
		}
		for _, f := range exclude {
			ok, err := f.Matches(&entries[i])
			if err != nil {
				return nil, err
			}
			if ok {
				continue entries
			}
		}
		filtered = append(filtered, entries[i])
	}
	return filtered, nil
}

// ApplyTexts compiles and applies raw filter texts in one step.
func ApplyTexts(entries []hosts.Entry, include, exclude []string) ([]hosts.Entry, error) {
	inc, err := CompileAll(include)
	if err != nil {
		return nil, err
	}
	exc, err := CompileAll(exclude)
	if err != nil {
		return nil, err
	}
	return Apply(entries, inc, exc)
}
