package registry

import "fmt"

// NotFoundError is returned when a plugin or version is not present
// in the registry document.
type NotFoundError struct {
	Plugin  string
	Version string // empty when the plugin itself is missing
}

func (e *NotFoundError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("plugin '%s' not found in registry", e.Plugin)
	}
	return fmt.Sprintf("version '%s' of plugin '%s' not found in registry", e.Version, e.Plugin)
}

// IntegrityError is returned when the registry document contradicts
// itself, e.g. latest_version points at a version missing from the
// versions list. Surfaced, never silently ignored.
type IntegrityError struct {
	Plugin string
	Detail string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("registry entry '%s' is inconsistent: %s", e.Plugin, e.Detail)
}
