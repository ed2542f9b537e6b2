package transfer

import (
	"context"
	"fmt"
	"time"
)

// service implements the Service interface
type service struct {
	signer      *Signer
	accountName string
	container   string
	baseURL     string
	clock       func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithSigner sets the grant signer
func WithSigner(signer *Signer) Option {
	return func(s *service) {
		s.signer = signer
	}
}

// WithAccount sets the storage account identity grants are issued for
func WithAccount(name string) Option {
	return func(s *service) {
		s.accountName = name
	}
}

// WithContainer sets the storage container. Default "temporales".
func WithContainer(container string) Option {
	return func(s *service) {
		s.container = container
	}
}

// WithStorageBaseURL sets the base URL signed storage URLs are composed
// under, e.g. "https://files.ssgl.example" for the built-in blob gateway.
func WithStorageBaseURL(baseURL string) Option {
	return func(s *service) {
		s.baseURL = baseURL
	}
}

// WithClock overrides the clock used for naming and grant windows
func WithClock(clock func() time.Time) Option {
	return func(s *service) {
		s.clock = clock
	}
}

// New creates a new transfer service with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		container: "temporales",
		clock:     time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.signer == nil {
		s.signer = NewSigner()
	}
	if s.baseURL == "" && s.accountName != "" {
		s.baseURL = fmt.Sprintf("https://%s.blob.ssgl.cloud", s.accountName)
	}

	return s, nil
}

func (s *service) IssueGrants(ctx context.Context, filename string) (*IssuedGrants, error) {
	// Fail fast before any signing work when the process is misconfigured.
	if s.accountName == "" || !s.signer.IsEnabled() {
		return nil, ErrNotConfigured
	}
	if filename == "" {
		return nil, ErrEmptyFilename
	}
	if !ValidFilename(filename) {
		return nil, ErrInvalidFilename
	}

	// Single clock read: the object name and both grant windows must not
	// drift against each other.
	now := s.clock()
	objectName := ObjectName(now, filename)

	composer := NewLinkComposer(s.baseURL, s.container)
	objectPath := composer.ObjectPath(objectName)

	writeGrant := Grant{
		ObjectPath:  objectPath,
		Permissions: PermissionsWrite,
		ValidFrom:   now.Add(-GrantClockSkew),
		ValidUntil:  now.Add(WriteGrantTTL),
	}
	readGrant := Grant{
		ObjectPath:  objectPath,
		Permissions: PermissionsRead,
		ValidFrom:   now.Add(-GrantClockSkew),
		ValidUntil:  now.Add(ReadGrantTTL),
		Disposition: fmt.Sprintf("attachment; filename=%q", filename),
	}

	writeQuery, err := s.signer.Sign(writeGrant)
	if err != nil {
		return nil, &GrantError{ObjectName: objectName, Op: "sign_write", Err: err}
	}
	readQuery, err := s.signer.Sign(readGrant)
	if err != nil {
		return nil, &GrantError{ObjectName: objectName, Op: "sign_read", Err: err}
	}

	return &IssuedGrants{
		ObjectName: objectName,
		UploadURL:  composer.StorageURL(objectName, writeQuery),
		PublicLink: composer.StorageURL(objectName, readQuery),
	}, nil
}
