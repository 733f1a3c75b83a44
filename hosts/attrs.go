package hosts

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// UnknownAttributeError is returned when an attribute name resolves to
// neither a fixed field nor a tags.* path.
type UnknownAttributeError struct {
	Attr string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("invalid attribute: %s. Perhaps you meant tags.%s?", e.Attr, e.Attr)
}

// Kind tags the closed set of value shapes an attribute can have.
type Kind int

const (
	KindString Kind = iota
	KindList
	KindMap
	KindTime
)

// Value is the result of an attribute lookup. Entries only ever hold
// scalars, lists of scalars, and scalar maps, so this covers everything.
type Value struct {
	kind Kind
	str  string
	list []string
	m    map[string]string
	t    time.Time
}

func stringValue(s string) Value         { return Value{kind: KindString, str: s} }
func listValue(l []string) Value         { return Value{kind: KindList, list: l} }
func mapValue(m map[string]string) Value { return Value{kind: KindMap, m: m} }
func timeValue(t time.Time) Value        { return Value{kind: KindTime, t: t} }

// IsEmpty reports whether the value is empty, null, or an empty list.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindList:
		return len(v.list) == 0
	case KindMap:
		return len(v.m) == 0
	case KindTime:
		return v.t.IsZero()
	default:
		return v.str == ""
	}
}

// String renders the value without any placeholder substitution.
func (v Value) String() string {
	switch v.kind {
	case KindList:
		return strings.Join(v.list, ", ")
	case KindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + v.m[k]
		}
		return strings.Join(parts, ", ")
	case KindTime:
		if v.t.IsZero() {
			return ""
		}
		return v.t.Format(time.RFC3339)
	default:
		return v.str
	}
}

// Display renders the value for table output, substituting placeholder
// when the value is empty.
func (v Value) Display(placeholder string) string {
	if v.IsEmpty() {
		return placeholder
	}
	return v.String()
}

// MatchesRegex walks the value's strings and reports whether any matches.
func (v Value) MatchesRegex(re *regexp.Regexp) bool {
	switch v.kind {
	case KindList:
		for _, s := range v.list {
			if re.MatchString(s) {
				return true
			}
		}
		return false
	case KindMap:
		for _, s := range v.m {
			if re.MatchString(s) {
				return true
			}
		}
		return false
	case KindTime:
		return re.MatchString(v.String())
	default:
		return re.MatchString(v.str)
	}
}

// SortKey returns a key suitable for ordering entries by this value.
// RFC3339 timestamps sort lexicographically, so everything reduces to a
// string compare.
func (v Value) SortKey() string {
	return v.String()
}

// accessors maps every fixed attribute name to its lookup function.
// Built once; an unknown name is a map miss, not a reflection failure.
var accessors = map[string]func(*Entry) Value{
	"name":            func(e *Entry) Value { return stringValue(e.Name) },
	"instance_id":     func(e *Entry) Value { return stringValue(e.InstanceID) },
	"instance_type":   func(e *Entry) Value { return stringValue(e.InstanceType) },
	"hostname":        func(e *Entry) Value { return stringValue(e.Hostname) },
	"private_ip":      func(e *Entry) Value { return stringValue(e.PrivateIP) },
	"public_ip":       func(e *Entry) Value { return stringValue(e.PublicIP) },
	"stack_name":      func(e *Entry) Value { return stringValue(e.StackName) },
	"stack_id":        func(e *Entry) Value { return stringValue(e.StackID) },
	"logical_id":      func(e *Entry) Value { return stringValue(e.LogicalID) },
	"security_groups": func(e *Entry) Value { return listValue(e.SecurityGroups) },
	"ami_id":          func(e *Entry) Value { return stringValue(e.AMIID) },
	"launch_time":     func(e *Entry) Value { return timeValue(e.LaunchTime) },
	"tags":            func(e *Entry) Value { return mapValue(e.Tags) },
}

const tagPrefix = "tags."

// Attribute resolves an attribute name on the entry. Names starting with
// "tags." are looked up in the tag map; the rest go through the accessor
// map. Unknown names return UnknownAttributeError.
func (e *Entry) Attribute(attr string) (Value, error) {
	if strings.HasPrefix(attr, tagPrefix) {
		tag := attr[len(tagPrefix):]
		return stringValue(e.Tags[tag]), nil
	}
	fn, ok := accessors[attr]
	if !ok {
		return Value{}, &UnknownAttributeError{Attr: attr}
	}
	return fn(e), nil
}

// DisplayAttribute resolves an attribute and converts it to its display
// string. Absent tags show "<not set>"; empty fixed attributes show
// "<none>".
func (e *Entry) DisplayAttribute(attr string) (string, error) {
	v, err := e.Attribute(attr)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(attr, tagPrefix) {
		return v.Display("<not set>"), nil
	}
	return v.Display("<none>"), nil
}

// Values returns every attribute value of the entry, tag values included.
// Used by unscoped regex filters.
func (e *Entry) Values() []Value {
	vals := make([]Value, 0, len(accessors))
	for _, fn := range accessors {
		vals = append(vals, fn(e))
	}
	return vals
}

// ListAttributes returns the fixed attribute names an entry exposes,
// excluding dynamic tags.* ones. Used for help output.
func ListAttributes() []string {
	names := make([]string, 0, len(accessors))
	for name := range accessors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// columnNames maps attribute names to their pretty names for display.
var columnNames = map[string]string{
	"name":          "Instance Name",
	"hostname":      "Hostname",
	"private_ip":    "Private IP",
	"public_ip":     "Public IP",
	"instance_type": "Instance Type",
	"launch_time":   "Launch Time",
}

// PrettyName returns the display name of an attribute.
func PrettyName(attr string) string {
	if strings.HasPrefix(attr, tagPrefix) {
		return attr[len(tagPrefix):] + " (tag)"
	}
	if pretty, ok := columnNames[attr]; ok {
		return pretty
	}
	return attr
}

// SortBy returns the entries stably sorted ascending by the given
// attribute. Entries with equal keys keep their original relative order.
func SortBy(entries []Entry, attr string) ([]Entry, error) {
	keys := make([]string, len(entries))
	for i := range entries {
		v, err := entries[i].Attribute(attr)
		if err != nil {
			return nil, err
		}
		keys[i] = v.SortKey()
	}
	sorted := make([]Entry, len(entries))
	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })
	for out, in := range idx {
		sorted[out] = entries[in]
	}
	return sorted, nil
}
