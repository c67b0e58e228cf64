package model

import "errors"

// ExitCode defines the process exit statuses of the CLI.
//
// Every failure maps to the same code. 255 is what an exit status of -1
// normalizes to on POSIX systems.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitFailure indicates any failure: bad arguments, an unreadable
	// VERSION file, an unsupported Qemu version, or a failed build step.
	ExitFailure ExitCode = 255
)

// ErrorKind tags the cause of an InstallerError.
//
// Kinds exist for programmatic inspection only. User-facing output is the
// error message alone, so two errors of different kinds with the same
// message are indistinguishable on the console.
type ErrorKind string

const (
	// KindSourceDir indicates the source directory argument failed
	// validation (missing, or not a git checkout).
	KindSourceDir ErrorKind = "source-dir"

	// KindMissingMarker indicates the VERSION file is absent.
	KindMissingMarker ErrorKind = "missing-marker"

	// KindVersionParse indicates the VERSION file content could not be
	// parsed as a dotted integer triple.
	KindVersionParse ErrorKind = "version-parse"

	// KindUnexpectedVersion indicates no recipe exists for the major version.
	KindUnexpectedVersion ErrorKind = "unexpected-version"

	// KindCommand indicates an external command exited non-zero or could
	// not be launched.
	KindCommand ErrorKind = "command"

	// KindConfig indicates the builder settings file is malformed.
	KindConfig ErrorKind = "config"

	// KindDocker indicates a Docker Engine API call failed.
	KindDocker ErrorKind = "docker"

	// KindFilesystem indicates a local file could not be listed or removed.
	KindFilesystem ErrorKind = "filesystem"
)

// InstallerError is the single error type reported by every component of
// the builder. Message is the complete user-facing text, already carrying
// any context prefix supplied at the call site; Err keeps the underlying
// cause for errors.As inspection.
type InstallerError struct {
	// Kind tags the cause of the failure.
	Kind ErrorKind

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error returns Message only. Call sites fold whatever detail of the
// underlying error should be shown into Message.
func (e *InstallerError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *InstallerError) Unwrap() error {
	return e.Err
}

// NewInstallerError creates an InstallerError with the given kind and message.
func NewInstallerError(kind ErrorKind, message string) *InstallerError {
	return &InstallerError{Kind: kind, Message: message}
}

// WrapInstallerError creates an InstallerError that wraps an existing error.
func WrapInstallerError(kind ErrorKind, message string, err error) *InstallerError {
	return &InstallerError{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err is, or wraps, an InstallerError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ie *InstallerError
	if errors.As(err, &ie) {
		return ie.Kind == kind
	}
	return false
}
