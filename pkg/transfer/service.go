package transfer

import "context"

// Service mints access grant pairs for uploaded objects.
type Service interface {
	// IssueGrants derives the object name for the given display filename
	// and returns a short-lived write grant URL plus a 24-hour read grant
	// URL, both bound to that exact object. Fails with ErrNotConfigured
	// when the signing key or account identity is missing and with
	// ErrEmptyFilename for an empty filename.
	IssueGrants(ctx context.Context, filename string) (*IssuedGrants, error)
}
