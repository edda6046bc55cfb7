package installer

import "fmt"

// RetrievalError means the plugin content could not be fetched at
// all: both the clone and the archive download failed.
type RetrievalError struct {
	URL      string
	CloneErr error
	FetchErr error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("failed to retrieve plugin from %s: clone failed (%v), archive download failed (%v)",
		e.URL, e.CloneErr, e.FetchErr)
}

// ValidationError means retrieved content did not pass manifest
// validation. The staged content is discarded before this is
// returned.
type ValidationError struct {
	URL    string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("plugin from %s failed validation: %s", e.URL, e.Reason)
	}
	return fmt.Sprintf("plugin from %s failed validation: %v", e.URL, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// DependencyError reports a failed dependency install. Dependency
// installation is best-effort: the plugin's own files stay in place.
type DependencyError struct {
	Plugin     string
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("plugin '%s': failed to install dependency '%s': %v", e.Plugin, e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }
