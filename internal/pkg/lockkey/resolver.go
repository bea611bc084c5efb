// Package lockkey derives lock names from request fields. Resolution is pure
// and deterministic: the whole exclusion scheme depends on two concurrent
// requests for the same order resolving to the same key.
package lockkey

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrResolution reports a template reference with no matching argument.
var ErrResolution = errors.New("lockkey: unresolved field reference")

var fieldRef = regexp.MustCompile(`#([A-Za-z_][A-Za-z0-9_]*)`)

// Resolve substitutes each #name reference in template with the string form
// of args[name]. A template without references is returned verbatim.
func Resolve(template string, args map[string]any) (string, error) {
	if !strings.Contains(template, "#") {
		return template, nil
	}

	var missing string
	resolved := fieldRef.ReplaceAllStringFunc(template, func(ref string) string {
		name := ref[1:]
		value, ok := args[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return ref
		}
		return fmt.Sprint(value)
	})
	if missing != "" {
		return "", fmt.Errorf("%w: %s", ErrResolution, missing)
	}
	return resolved, nil
}
