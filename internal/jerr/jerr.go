// Package jerr defines the structured error kinds shared by every Jin
// component, per the error handling design in spec.md §7.
package jerr

import (
	"errors"
	"fmt"
)

// Kind identifies which of the fixed error categories an Error carries.
type Kind int

const (
	// KindInvalidRouting means a staging flag combination or context
	// mismatch was rejected before any store write.
	KindInvalidRouting Kind = iota
	// KindNotFound means a ref, blob, or path was missing.
	KindNotFound
	// KindDirtyWorkspace means the workspace changed since the last apply.
	KindDirtyWorkspace
	// KindDetachedWorkspace means the attachment validator refused to proceed.
	KindDetachedWorkspace
	// KindMergeConflict means a text merge produced conflict markers.
	KindMergeConflict
	// KindParse means a structured-file or conflict-marker parse failed.
	KindParse
	// KindStorage means the object store or filesystem failed.
	KindStorage
	// KindLocked means the advisory lock is held by another process.
	KindLocked
)

// String renders the kind's name, used in exit-code dispatch logs.
func (k Kind) String() string {
	switch k {
	case KindInvalidRouting:
		return "InvalidRouting"
	case KindNotFound:
		return "NotFound"
	case KindDirtyWorkspace:
		return "DirtyWorkspace"
	case KindDetachedWorkspace:
		return "DetachedWorkspace"
	case KindMergeConflict:
		return "MergeConflict"
	case KindParse:
		return "Parse"
	case KindStorage:
		return "Storage"
	case KindLocked:
		return "Locked"
	default:
		return "Unknown"
	}
}

// Error is the structured error type carried across every Jin package
// boundary. Fields beyond Kind/Message are kind-specific and exported as
// typed struct fields rather than kept in a loose map.
type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// NotFound
	NotFoundKind string
	NotFoundName string

	// DirtyWorkspace
	Modified []string
	Deleted  []string

	// DetachedWorkspace
	Details       []string
	RecoveryHint  string

	// MergeConflict
	Paths []string

	// Parse
	Format string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a *Error with the same Kind, so callers
// can do errors.Is(err, &jerr.Error{Kind: jerr.KindLocked}).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// KindOf extracts the Kind from err if it (or something it wraps) is a
// *Error, and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// InvalidRouting constructs a KindInvalidRouting error.
func InvalidRouting(format string, args ...any) error {
	return &Error{Kind: KindInvalidRouting, Message: fmt.Sprintf(format, args...)}
}

// NotFound constructs a KindNotFound error naming the missing ref/blob/path.
func NotFound(kind, name string) error {
	return &Error{
		Kind:         KindNotFound,
		Message:      fmt.Sprintf("%s %q not found", kind, name),
		NotFoundKind: kind,
		NotFoundName: name,
	}
}

// DirtyWorkspace constructs a KindDirtyWorkspace error.
func DirtyWorkspace(modified, deleted []string) error {
	return &Error{
		Kind:     KindDirtyWorkspace,
		Message:  fmt.Sprintf("workspace has %d modified and %d deleted tracked files", len(modified), len(deleted)),
		Modified: modified,
		Deleted:  deleted,
	}
}

// DetachedWorkspace constructs a KindDetachedWorkspace error.
func DetachedWorkspace(details []string, recoveryHint string) error {
	return &Error{
		Kind:         KindDetachedWorkspace,
		Message:      "workspace is detached from its last applied state",
		Details:      details,
		RecoveryHint: recoveryHint,
	}
}

// MergeConflict constructs a KindMergeConflict error naming the
// conflicted paths.
func MergeConflict(paths []string) error {
	return &Error{
		Kind:    KindMergeConflict,
		Message: fmt.Sprintf("%d file(s) have unresolved merge conflicts", len(paths)),
		Paths:   paths,
	}
}

// Parse constructs a KindParse error.
func Parse(format, message string) error {
	return &Error{Kind: KindParse, Message: message, Format: format}
}

// Storage wraps a backing-store or filesystem error.
func Storage(cause error) error {
	return &Error{Kind: KindStorage, Message: "storage operation failed", Cause: cause}
}

// Locked constructs a KindLocked error.
func Locked(path string) error {
	return &Error{Kind: KindLocked, Message: fmt.Sprintf("lock held: %s", path)}
}

// ExitCode maps a Kind to the process exit code contract of spec.md §6.5.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	kind, ok := KindOf(err)
	if !ok {
		return 1
	}
	switch kind {
	case KindInvalidRouting, KindDirtyWorkspace:
		return 1
	case KindMergeConflict:
		return 2
	case KindDetachedWorkspace:
		return 3
	case KindLocked:
		return 4
	case KindStorage:
		return 5
	case KindNotFound, KindParse:
		return 1
	default:
		return 1
	}
}
