// Package hosts defines the host entry record and attribute lookup used by
// the rest of lsi. An entry is an immutable snapshot of one instance; new
// fetches replace the whole collection.
package hosts

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultColumns are the attributes shown when no column selection is given.
var DefaultColumns = []string{"name", "public_ip"}

// Entry is a selection of information about one host.
// Every field except Tags is a flat scalar or string slice, which keeps
// attribute lookup and string formatting well-defined.
type Entry struct {
	Name           string            `json:"name"`
	InstanceID     string            `json:"instance_id"`
	InstanceType   string            `json:"instance_type"`
	Hostname       string            `json:"hostname"`
	PrivateIP      string            `json:"private_ip"`
	PublicIP       string            `json:"public_ip"`
	StackName      string            `json:"stack_name"`
	StackID        string            `json:"stack_id"`
	LogicalID      string            `json:"logical_id"`
	SecurityGroups []string          `json:"security_groups"`
	AMIID          string            `json:"ami_id"`
	LaunchTime     time.Time         `json:"launch_time"`
	Tags           map[string]string `json:"tags"`
}

// Display returns the best name to show for this host: the instance name
// with its public IP if a name is set, else just the public IP.
func (e *Entry) Display() string {
	if e.Name != "" {
		return fmt.Sprintf("%s (%s)", e.Name, e.PublicIP)
	}
	return e.PublicIP
}

// Address returns the usable address for connecting: DNS name if present,
// else the public IP. May be empty.
func (e *Entry) Address() string {
	if strings.TrimSpace(e.Hostname) != "" {
		return e.Hostname
	}
	return e.PublicIP
}

var formatVarPattern = regexp.MustCompile(`\{([a-z_.]+)\}`)

// FormatString substitutes {attribute} placeholders in s with this entry's
// attribute values, e.g. "{name}-log.txt" -> "web-1-log.txt".
func (e *Entry) FormatString(s string) (string, error) {
	var firstErr error
	out := formatVarPattern.ReplaceAllStringFunc(s, func(m string) string {
		attr := m[1 : len(m)-1]
		v, err := e.Attribute(attr)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("invalid format string %q: %w", s, err)
			}
			return m
		}
		return v.String()
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}
