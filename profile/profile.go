// Package profile loads named, inheritable bundles of session defaults
// from the user's INI-style ~/.lsi file.
package profile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// Profile describes the settings a profile section can carry.
type Profile struct {
	Username     string
	IdentityFile string
	Command      string
	Filters      []string
	Exclude      []string
	NoPrompt     bool
}

// LoadError is returned when a requested profile section does not exist.
type LoadError struct {
	Name string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("no such profile %q", e.Name)
}

// Load reads the profile with the given name from path. An empty name
// loads the "default" section if one exists, else an empty profile.
// Sections may inherit from another section; the child's scalar fields
// win and its list fields extend the parent's.
func Load(path, name string) (*Profile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if name != "" {
			return nil, &LoadError{Name: name}
		}
		return &Profile{}, nil
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file %s: %w", path, err)
	}

	if name == "" {
		if !hasSection(cfg, "default") {
			return &Profile{}, nil
		}
		name = "default"
	}
	return loadSection(cfg, name, map[string]bool{})
}

func hasSection(cfg *ini.File, name string) bool {
	_, err := cfg.GetSection(name)
	return err == nil
}

func loadSection(cfg *ini.File, name string, seen map[string]bool) (*Profile, error) {
	if seen[name] {
		return nil, fmt.Errorf("profile %q inherits itself", name)
	}
	seen[name] = true

	sec, err := cfg.GetSection(name)
	if err != nil {
		return nil, &LoadError{Name: name}
	}

	p := &Profile{}
	if sec.HasKey("inherit") {
		parent, err := loadSection(cfg, sec.Key("inherit").String(), seen)
		if err != nil {
			return nil, err
		}
		p = parent
	}

	if sec.HasKey("username") {
		p.Username = sec.Key("username").String()
	}
	if sec.HasKey("identity file") {
		p.IdentityFile = sec.Key("identity file").String()
	}
	if sec.HasKey("command") {
		p.Command = sec.Key("command").String()
	}
	p.Filters = append(p.Filters, splitList(sec.Key("filters").String())...)
	p.Exclude = append(p.Exclude, splitList(sec.Key("exclude").String())...)
	return p, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Override replaces scalar fields with non-empty values and extends the
// filter lists. Used to layer command-line flags over a loaded profile.
func (p *Profile) Override(username, identityFile, command string, filters, exclude []string) {
	if username != "" {
		p.Username = username
	}
	if identityFile != "" {
		p.IdentityFile = identityFile
	}
	if command != "" {
		p.Command = command
	}
	p.Filters = append(p.Filters, filters...)
	p.Exclude = append(p.Exclude, exclude...)
}
