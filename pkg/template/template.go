// Package template resolves {{token}} placeholders against run-scoped data.
package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/hivecrm/flowline/pkg/models"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// Resolve replaces every {{token}} occurrence in input with its resolved
// value. Tokens that cannot be resolved are left as their literal {{token}}
// text; callers treat an unresolved token as "value absent", not as an error.
// The function is pure: the same input and context always produce the same
// output.
func Resolve(input string, run *models.RunContext) string {
	return tokenPattern.ReplaceAllStringFunc(input, func(match string) string {
		token := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(match, "{{"), "}}"))

		value, ok := Lookup(token, run)
		if !ok {
			return match
		}

		return Stringify(value)
	})
}

// ResolveValue resolves string config values and passes every other type
// through unchanged. Only string templates are scanned.
func ResolveValue(value any, run *models.RunContext) any {
	if s, ok := value.(string); ok {
		return Resolve(s, run)
	}

	return value
}

// Lookup resolves a single token against the run context:
//  1. a key directly present in the trigger payload wins;
//  2. otherwise a dotted token descends from a variables entry named by its
//     first segment through nested object fields;
//  3. otherwise a dotless token may name a top-level variables entry.
func Lookup(token string, run *models.RunContext) (any, bool) {
	if value, ok := run.Payload[token]; ok {
		return value, true
	}

	if strings.Contains(token, ".") {
		segments := strings.Split(token, ".")

		current, ok := run.Variables[segments[0]]
		if !ok {
			return nil, false
		}

		for _, segment := range segments[1:] {
			object, ok := current.(map[string]any)
			if !ok {
				return nil, false
			}

			current, ok = object[segment]
			if !ok {
				return nil, false
			}
		}

		return current, true
	}

	if value, ok := run.Variables[token]; ok {
		return value, true
	}

	return nil, false
}

// HasUnresolvedTokens reports whether a string still carries {{token}}
// placeholders after resolution.
func HasUnresolvedTokens(s string) bool {
	return tokenPattern.MatchString(s)
}

// Stringify renders a resolved value for substitution into a template string.
// Objects and lists become JSON so nested values survive a round trip.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}
