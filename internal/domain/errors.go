package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries field-level messages for bad form input. It is
// recovered locally and never triggers a collaborator call.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, f := range names {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ConfigurationError means a required environment value is missing. The
// dependent operation fails explicitly rather than silently no-oping.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("not configured: %s is required", e.Setting)
}

// CollaboratorError wraps a failure from an external service (email API,
// automation webhook). Recoverable by manual retry only.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// PermissionError means the camera device could not be acquired.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return "camera permission denied: " + e.Reason
}

// ScanError is a terminal decode failure: the scanned payload was not
// parseable JSON or was missing required fields. Frames that simply contain
// no code are never reported as ScanError.
type ScanError struct {
	Reason string
}

func (e *ScanError) Error() string {
	return "invalid QR payload: " + e.Reason
}
