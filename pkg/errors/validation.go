package errors

import (
	"strings"
	"unicode"
)

// Length limits for user-supplied names.
const (
	MaxProjectNameLen = 128
	MaxIDLen          = 64
)

// ValidateProjectName checks a project name. Names become file names and
// store keys, so anything that could address another file is rejected:
// empty names, names over MaxProjectNameLen bytes, control characters,
// separators, ".." and a leading dot.
func ValidateProjectName(name string) error {
	if err := checkText("project name", name, MaxProjectNameLen); err != nil {
		return err
	}
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidProject, "project name cannot start with a dot")
	}
	for _, bad := range []string{"..", "/", "\\"} {
		if strings.Contains(name, bad) {
			return New(ErrCodeInvalidProject, "project name contains %q", bad)
		}
	}
	return nil
}

// ValidateID checks a node, category or edge id. IDs appear in edge keys
// ("from->to") and SVG element ids, so they may not contain "->" or
// whitespace.
func ValidateID(kind, id string) error {
	if err := checkText(kind+" id", id, MaxIDLen); err != nil {
		return err
	}
	if strings.Contains(id, "->") {
		return New(ErrCodeInvalidProject, "%s id %q contains \"->\"", kind, id)
	}
	if strings.IndexFunc(id, unicode.IsSpace) >= 0 {
		return New(ErrCodeInvalidProject, "%s id %q contains whitespace", kind, id)
	}
	return nil
}

func checkText(what, s string, limit int) error {
	switch {
	case s == "":
		return New(ErrCodeInvalidProject, "%s cannot be empty", what)
	case len(s) > limit:
		return New(ErrCodeInvalidProject, "%s too long (max %d characters)", what, limit)
	case strings.IndexFunc(s, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidProject, "%s contains control characters", what)
	}
	return nil
}
