package transfer

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrNotConfigured indicates the signing key or account identity is
	// missing. Operator-actionable, never retried automatically.
	ErrNotConfigured = errors.New("transfer: signing key or account not configured")

	// ErrEmptyFilename indicates a grant was requested without a filename
	ErrEmptyFilename = errors.New("transfer: filename is required")

	// ErrInvalidFilename indicates the filename contains path separators or
	// dot segments and cannot name a storage object
	ErrInvalidFilename = errors.New("transfer: filename must be a single path element")

	// ErrMissingSignature is returned when the sig query parameter is missing
	ErrMissingSignature = errors.New("transfer: missing signature parameter")

	// ErrInvalidWindow is returned when the st/se parameters cannot be parsed
	ErrInvalidWindow = errors.New("transfer: invalid validity window parameters")

	// ErrUnsupportedVersion is returned for a signature scheme version this
	// build does not understand
	ErrUnsupportedVersion = errors.New("transfer: unsupported signature version")

	// ErrGrantNotYetValid is returned when the grant window has not opened
	ErrGrantNotYetValid = errors.New("transfer: grant not yet valid")

	// ErrGrantExpired is returned when the grant window has closed
	ErrGrantExpired = errors.New("transfer: grant expired")

	// ErrInvalidSignature is returned when the signature does not verify
	ErrInvalidSignature = errors.New("transfer: invalid signature")

	// ErrPermissionDenied is returned when a verified grant does not carry
	// the permission the operation needs
	ErrPermissionDenied = errors.New("transfer: grant does not permit this operation")
)

// IsAuthError reports whether the error is a grant validation failure, as
// opposed to a malformed request.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMissingSignature) ||
		errors.Is(err, ErrGrantNotYetValid) ||
		errors.Is(err, ErrGrantExpired) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrPermissionDenied)
}

// GrantError wraps a failure while issuing grants for an object.
type GrantError struct {
	ObjectName string
	Op         string
	Err        error
}

func (e *GrantError) Error() string {
	return fmt.Sprintf("grant operation %s failed for object %s: %v", e.Op, e.ObjectName, e.Err)
}

func (e *GrantError) Unwrap() error {
	return e.Err
}
