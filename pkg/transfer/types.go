package transfer

import "time"

// Grant permission sets. The letters follow the storage convention the
// outstanding links already use: "c" create, "w" write, "r" read.
const (
	PermissionsWrite = "cw"
	PermissionsRead  = "r"
)

// Validity windows for issued grants. The write window is short to bound
// the blast radius of a leaked upload credential; the read window matches
// the 24-hour expiry advertised to end users. Both grants tolerate 5
// minutes of clock skew against storage servers with a fast clock.
const (
	GrantClockSkew = 5 * time.Minute
	WriteGrantTTL  = 10 * time.Minute
	ReadGrantTTL   = 24 * time.Hour
)

// Grant is a time-bounded authorization to perform one operation against
// one named storage object. It is never persisted: the signed query string
// produced by Signer.Sign is its only representation, and anyone holding
// that URL holds the grant.
type Grant struct {
	// ObjectPath is the decoded storage path the grant is bound to,
	// e.g. "/temporales/1714752000000-report.pdf".
	ObjectPath string

	// Permissions is one of the Permissions* constants.
	Permissions string

	ValidFrom  time.Time
	ValidUntil time.Time

	// Disposition carries the Content-Disposition directive storage should
	// answer with. Set on read grants so that a direct open of the storage
	// URL already downloads under the right name.
	Disposition string
}

// IssuedGrants is the result of minting an upload/download grant pair for
// a single object.
type IssuedGrants struct {
	// ObjectName is the internal storage name, "{unixMillis}-{filename}".
	ObjectName string

	// UploadURL is the full signed URL the client PUTs the file bytes to.
	UploadURL string

	// PublicLink is the full signed read URL, valid for 24 hours.
	PublicLink string
}
