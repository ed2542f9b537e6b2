package transfer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SchemeVersion identifies the canonical signing layout. The payload byte
// layout below is a versioned contract: any change to the field order or
// encoding breaks every outstanding link, so changes must bump the version
// and keep verifying the old one until its longest window has drained.
const SchemeVersion = "1"

// Query parameter names carried by a signed URL. The grant is serialized
// entirely into these parameters; there is no server-side record of it.
const (
	paramVersion     = "sv"
	paramPermissions = "sp"
	paramValidFrom   = "st"
	paramValidUntil  = "se"
	paramDisposition = "rscd"
	paramSignature   = "sig"
)

// Signer produces and validates HMAC-signed access grants.
//
// Signing is a pure function of the grant fields and the secret key: no
// network or storage calls, no shared mutable state, so a single Signer is
// safe for concurrent use.
type Signer struct {
	secretKey []byte
	clock     func() time.Time
}

// SignerOption is a functional option for configuring a Signer
type SignerOption func(*Signer)

// WithSecretKey sets the secret key used for HMAC signing.
// The key should be at least 32 bytes.
func WithSecretKey(key []byte) SignerOption {
	return func(s *Signer) {
		s.secretKey = key
	}
}

// WithSignerClock overrides the clock used for window validation. Tests use
// this to pin time.
func WithSignerClock(clock func() time.Time) SignerOption {
	return func(s *Signer) {
		s.clock = clock
	}
}

// NewSigner creates a new Signer with the given options
func NewSigner(opts ...SignerOption) *Signer {
	s := &Signer{
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsEnabled returns true if a secret key is configured
func (s *Signer) IsEnabled() bool {
	return len(s.secretKey) > 0
}

// Sign serializes the grant into URL query parameters, including the
// hex-encoded HMAC-SHA256 signature over the canonical payload.
func (s *Signer) Sign(g Grant) (url.Values, error) {
	if len(s.secretKey) == 0 {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set(paramVersion, SchemeVersion)
	q.Set(paramPermissions, g.Permissions)
	q.Set(paramValidFrom, strconv.FormatInt(g.ValidFrom.Unix(), 10))
	q.Set(paramValidUntil, strconv.FormatInt(g.ValidUntil.Unix(), 10))
	if g.Disposition != "" {
		q.Set(paramDisposition, g.Disposition)
	}
	q.Set(paramSignature, s.signature(canonicalPayload(g)))

	return q, nil
}

// Verify parses the grant out of the query parameters of a signed URL,
// checks the signature against the given decoded object path, and checks
// the validity window. It returns the verified grant on success.
func (s *Signer) Verify(objectPath string, q url.Values) (Grant, error) {
	if len(s.secretKey) == 0 {
		return Grant{}, ErrNotConfigured
	}

	if v := q.Get(paramVersion); v != SchemeVersion {
		return Grant{}, ErrUnsupportedVersion
	}

	sig := q.Get(paramSignature)
	if sig == "" {
		return Grant{}, ErrMissingSignature
	}

	validFrom, err := strconv.ParseInt(q.Get(paramValidFrom), 10, 64)
	if err != nil {
		return Grant{}, ErrInvalidWindow
	}
	validUntil, err := strconv.ParseInt(q.Get(paramValidUntil), 10, 64)
	if err != nil {
		return Grant{}, ErrInvalidWindow
	}

	g := Grant{
		ObjectPath:  objectPath,
		Permissions: q.Get(paramPermissions),
		ValidFrom:   time.Unix(validFrom, 0),
		ValidUntil:  time.Unix(validUntil, 0),
		Disposition: q.Get(paramDisposition),
	}

	// Constant-time comparison to prevent timing attacks
	expected := s.signature(canonicalPayload(g))
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return Grant{}, ErrInvalidSignature
	}

	now := s.clock()
	if now.Before(g.ValidFrom) {
		return Grant{}, ErrGrantNotYetValid
	}
	if now.After(g.ValidUntil) {
		return Grant{}, ErrGrantExpired
	}

	return g, nil
}

// Permits reports whether the verified grant carries the given permission
// letter ("c", "w" or "r").
func (g Grant) Permits(perm string) bool {
	return strings.Contains(g.Permissions, perm)
}

// Allow returns ErrPermissionDenied unless the grant carries at least one
// of the given permission letters.
func (g Grant) Allow(perms ...string) error {
	for _, p := range perms {
		if g.Permits(p) {
			return nil
		}
	}
	return ErrPermissionDenied
}

// canonicalPayload is the versioned byte layout the signature covers:
// version, object path, permissions, window bounds as unix seconds, and
// the disposition, joined by newlines.
func canonicalPayload(g Grant) string {
	return strings.Join([]string{
		SchemeVersion,
		g.ObjectPath,
		g.Permissions,
		strconv.FormatInt(g.ValidFrom.Unix(), 10),
		strconv.FormatInt(g.ValidUntil.Unix(), 10),
		g.Disposition,
	}, "\n")
}

func (s *Signer) signature(payload string) string {
	h := hmac.New(sha256.New, s.secretKey)
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}
