package validation

import (
	"sort"
	"strings"
)

// Errors maps a field path (e.g. "items[0].quantity") to a human-readable
// message. It is returned whole: either every reported field failed, or the
// operation succeeded and no Errors value exists.
type Errors map[string]string

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}

	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) Add(field, message string) {
	e[field] = message
}

func (e Errors) Empty() bool {
	return len(e) == 0
}
