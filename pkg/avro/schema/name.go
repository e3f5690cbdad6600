package schema

import (
	"regexp"
	"strings"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// name is the name/namespace pair shared by all named types.
type name struct {
	name      string
	namespace string
}

// newName splits a possibly dotted name. A dotted name is a full name and its
// namespace part overrides ns.
func newName(n, ns string) (name, error) {
	if idx := strings.LastIndex(n, "."); idx >= 0 {
		ns = n[:idx]
		n = n[idx+1:]
	}
	if !identRe.MatchString(n) {
		return name{}, newSchemaError(n, "invalid name %q", n)
	}
	if ns != "" {
		for _, part := range strings.Split(ns, ".") {
			if !identRe.MatchString(part) {
				return name{}, newSchemaError(n, "invalid namespace %q", ns)
			}
		}
	}
	return name{name: n, namespace: ns}, nil
}

// Name returns the unqualified name.
func (n name) Name() string { return n.name }

// Namespace returns the namespace.
func (n name) Namespace() string { return n.namespace }

// FullName returns namespace.name, or name in the null namespace.
func (n name) FullName() string {
	return qualify(n.name, n.namespace)
}

func qualify(n, ns string) string {
	if ns == "" || strings.Contains(n, ".") {
		return n
	}
	return ns + "." + n
}

// qualifyAliases turns short aliases into full names relative to ns.
func qualifyAliases(aliases []string, ns string) ([]string, error) {
	if len(aliases) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(aliases))
	for _, a := range aliases {
		n, err := newName(a, ns)
		if err != nil {
			return nil, err
		}
		out = append(out, n.FullName())
	}
	return out, nil
}
