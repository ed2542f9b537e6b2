// Package client drives the two-phase upload flow against an OurTransfer
// server: request a grant pair, PUT the file bytes directly against the
// write grant, then compose the shareable download link. The flow is an
// explicit state machine so cancellation and retry behavior can be tested
// independently of any UI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ssgl/ourtransfer/pkg/transfer"
)

// State is one step of the upload flow
type State string

const (
	StateIdle            State = "idle"
	StateRequestingGrant State = "requesting_grant"
	StateUploading       State = "uploading"
	StateComposing       State = "composing"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// BlockBlobHeader is the header the blob endpoint requires on direct
// uploads, declaring block-blob semantics.
const BlockBlobHeader = "x-ms-blob-type"

// Client performs uploads against an OurTransfer server
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	onState    func(State)
	onProgress func(float64)
}

// Option is a functional option for configuring a Client
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for all requests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sets the bearer token sent on grant requests
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithStateFunc registers a callback fired on every state transition
func WithStateFunc(fn func(State)) Option {
	return func(c *Client) {
		c.onState = fn
	}
}

// WithProgressFunc registers a callback fired with upload progress in the
// range 0..1 as bytes are sent
func WithProgressFunc(fn func(float64)) Option {
	return func(c *Client) {
		c.onProgress = fn
	}
}

// New creates a new upload client for the given server base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the outcome of a completed upload
type Result struct {
	UploadURL  string
	PublicLink string
	ShareLink  string
}

// Login authenticates against the server and stores the returned access
// token for subsequent grant requests.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	err := c.postJSON(ctx, "/api/login",
		map[string]string{"username": username, "password": password}, &resp)
	if err != nil {
		return err
	}
	c.token = resp.AccessToken
	return nil
}

// Send uploads size bytes from r under the given display filename and
// returns the composed share link. The context cancels whichever phase is
// in flight; a canceled or failed transfer ends in StateFailed.
func (c *Client) Send(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*Result, error) {
	c.setState(StateRequestingGrant)

	var grants struct {
		UploadURL  string `json:"uploadUrl"`
		PublicLink string `json:"publicLink"`
		ShareLink  string `json:"shareLink"`
	}
	if err := c.postJSON(ctx, "/api/grants", map[string]string{"filename": filename}, &grants); err != nil {
		c.setState(StateFailed)
		return nil, err
	}

	c.setState(StateUploading)
	if err := c.uploadBytes(ctx, grants.UploadURL, contentType, size, r); err != nil {
		c.setState(StateFailed)
		return nil, err
	}

	c.setState(StateComposing)
	shareLink := grants.ShareLink
	if shareLink == "" {
		shareLink = transfer.ShareLink(c.baseURL, grants.PublicLink, filename)
	}
	result := &Result{
		UploadURL:  grants.UploadURL,
		PublicLink: grants.PublicLink,
		ShareLink:  shareLink,
	}

	c.setState(StateDone)
	return result, nil
}

// uploadBytes performs the direct binary PUT against the write grant URL
func (c *Client) uploadBytes(ctx context.Context, uploadURL, contentType string, size int64, r io.Reader) error {
	body := io.Reader(r)
	if c.onProgress != nil {
		body = &progressReader{r: r, total: size, report: c.onProgress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set(BlockBlobHeader, "BlockBlob")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, serverMessage(resp.Body))
	}

	return nil
}

// postJSON is a helper for making JSON requests against the server API
func (c *Client) postJSON(ctx context.Context, endpoint string, body, response interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server error (status %d): %s", resp.StatusCode, serverMessage(resp.Body))
	}

	if response != nil {
		if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func (c *Client) setState(s State) {
	if c.onState != nil {
		c.onState(s)
	}
}

// serverMessage extracts the message from a JSON error body, falling back
// to the raw text.
func serverMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))

	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return string(raw)
}

// progressReader reports fractional progress as bytes are consumed by the
// HTTP transport.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report func(float64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.total > 0 {
			fraction := float64(p.read) / float64(p.total)
			if fraction > 1 {
				fraction = 1
			}
			p.report(fraction)
		}
	}
	return n, err
}
