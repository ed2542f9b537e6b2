package transfer

import (
	"fmt"
	"net/url"
)

// LinkComposer assembles the URLs a grant travels in. Pure string work, no
// I/O: the storage base URL and container are fixed at construction.
type LinkComposer struct {
	storageBaseURL string
	container      string
}

// NewLinkComposer creates a composer for the given storage base URL (no
// trailing slash) and container.
func NewLinkComposer(storageBaseURL, container string) LinkComposer {
	return LinkComposer{storageBaseURL: storageBaseURL, container: container}
}

// ObjectPath returns the decoded storage path a grant is signed over.
func (c LinkComposer) ObjectPath(objectName string) string {
	return "/" + c.container + "/" + objectName
}

// StorageURL builds the full signed storage URL for an object. The object
// name is percent-encoded in the path; the query string is encoded by
// url.Values, so the result is encoded exactly once end to end.
func (c LinkComposer) StorageURL(objectName string, query url.Values) string {
	return fmt.Sprintf("%s/%s/%s?%s",
		c.storageBaseURL, c.container, url.PathEscape(objectName), query.Encode())
}

// ShareLink builds the application-level link a recipient opens:
// {appOrigin}/download?url={storageURL}&filename={displayName}.
//
// The storage URL is percent-encoded exactly once here, and decoded exactly
// once by the download route's standard query parsing. No other call site
// may decode it: a second decode corrupts percent-encoded signature
// material inside the storage URL's own query string.
func ShareLink(appOrigin, storageURL, displayName string) string {
	return fmt.Sprintf("%s/download?url=%s&filename=%s",
		appOrigin, url.QueryEscape(storageURL), url.QueryEscape(displayName))
}
