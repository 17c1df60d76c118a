package testjson

import (
	"regexp"
	"strings"
)

var lowerUpperRe = regexp.MustCompile(`([a-z])([A-Z])`)

// FormatName converts a Go test name into a readable one.
// "TestLoginSuperuser" becomes "Test Login Superuser". For subtests only
// the part after the first slash is reformatted.
func FormatName(name string) string {
	if head, rest, ok := strings.Cut(name, "/"); ok {
		return head + "/" + FormatName(rest)
	}
	if !strings.HasPrefix(name, "Test") {
		return name
	}

	name = lowerUpperRe.ReplaceAllString(name, "$1 $2")
	name = strings.ReplaceAll(name, "_", " ")
	if strings.HasPrefix(name, "Test ") || name == "Test" {
		return name
	}
	return strings.Replace(name, "Test", "Test ", 1)
}

// LeafName returns the last segment of a test name.
func LeafName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// ParentName reports whether name is a subtest and returns its parent.
func ParentName(name string) (string, bool) {
	i := strings.LastIndex(name, "/")
	if i < 0 {
		return "", false
	}
	return name[:i], true
}
