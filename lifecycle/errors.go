// lifecycle/errors.go
package lifecycle

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports missing or invalid form fields. It is raised at the
// submission boundary, before the engine runs; a candidate that fails
// validation is never persisted.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IllegalTransitionError is returned when a candidate status edge is not in
// the transition table.
type IllegalTransitionError struct {
	From string
	To   string
}

func (e *IllegalTransitionError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("illegal transition: cannot create a QRF in status %s", e.To)
	}
	return fmt.Sprintf("illegal transition: %s -> %s", e.From, e.To)
}
