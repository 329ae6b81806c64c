// Package killswitch gates capability groups on operator-controlled flags.
// A group is disabled only when its flag value is the literal string
// "false". Any other value, including absent or malformed, means enabled:
// the fail-open default keeps a misconfigured flag from silently taking a
// production capability down, at the cost of requiring the exact sentinel
// to disable one.
package killswitch

// Disabled is the only flag value that turns a capability group off.
const Disabled = "false"

// Flags is an immutable snapshot of kill-switch values keyed by group name.
type Flags struct {
	values map[string]string
}

// New builds a Flags snapshot. values may be nil (everything enabled).
func New(values map[string]string) *Flags {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Flags{values: copied}
}

// Enabled reports whether the named group may serve requests.
func (f *Flags) Enabled(group string) bool {
	return f.values[group] != Disabled
}
