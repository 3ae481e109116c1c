package system

import "fmt"

// MissingDependencyError is returned when the configuration references a
// component key that has no definition. The graph builder deliberately
// emits placeholders for unknown keys; this error is raised here, at
// resolution time, so every wiring failure surfaces at a single stage.
type MissingDependencyError struct {
	// Key is the missing component key.
	Key string

	// WantedBy is the component that declared the dependency.
	WantedBy string
}

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("system: missing dependency %q wanted by %q", e.Key, e.WantedBy)
}
