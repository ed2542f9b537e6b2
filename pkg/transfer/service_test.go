package transfer_test

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssgl/ourtransfer/pkg/transfer"
)

func newTestService(t *testing.T, now time.Time) transfer.Service {
	t.Helper()
	signer := transfer.NewSigner(
		transfer.WithSecretKey(testKey),
		transfer.WithSignerClock(fixedClock(now)),
	)
	svc, err := transfer.New(
		transfer.WithSigner(signer),
		transfer.WithAccount("ssglstorage"),
		transfer.WithStorageBaseURL("https://files.ssgl.example"),
		transfer.WithClock(fixedClock(now)),
	)
	require.NoError(t, err)
	return svc
}

func TestIssueGrants(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	grants, err := svc.IssueGrants(context.Background(), "report.pdf")
	require.NoError(t, err)

	expectedName := fmt.Sprintf("%d-report.pdf", now.UnixMilli())
	assert.Equal(t, expectedName, grants.ObjectName)
	assert.Regexp(t, regexp.MustCompile(`^\d+-report\.pdf$`), grants.ObjectName)

	uploadURL, err := url.Parse(grants.UploadURL)
	require.NoError(t, err)
	publicURL, err := url.Parse(grants.PublicLink)
	require.NoError(t, err)

	// Same object, different grants.
	assert.Equal(t, uploadURL.Path, publicURL.Path)
	assert.Equal(t, "/temporales/"+expectedName, uploadURL.Path)
	assert.Equal(t, "files.ssgl.example", uploadURL.Host)

	uq := uploadURL.Query()
	pq := publicURL.Query()
	assert.Equal(t, "cw", uq.Get("sp"))
	assert.Equal(t, "r", pq.Get("sp"))
	assert.NotEqual(t, uq.Get("sig"), pq.Get("sig"))

	// Disposition travels on the read grant only.
	assert.Empty(t, uq.Get("rscd"))
	assert.Equal(t, `attachment; filename="report.pdf"`, pq.Get("rscd"))
}

func TestIssueGrantsWindows(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	grants, err := svc.IssueGrants(context.Background(), "report.pdf")
	require.NoError(t, err)

	window := func(raw string) (from, until time.Time) {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		q := u.Query()
		from = unixParam(t, q.Get("st"))
		until = unixParam(t, q.Get("se"))
		return from, until
	}

	writeFrom, writeUntil := window(grants.UploadURL)
	assert.True(t, writeFrom.Equal(now.Add(-5*time.Minute)))
	assert.True(t, writeUntil.Equal(now.Add(10*time.Minute)))
	assert.Equal(t, 15*time.Minute, writeUntil.Sub(writeFrom))

	readFrom, readUntil := window(grants.PublicLink)
	assert.True(t, readFrom.Equal(now.Add(-5*time.Minute)))
	assert.True(t, readUntil.Equal(now.Add(24*time.Hour)))
	assert.Equal(t, 24*time.Hour+5*time.Minute, readUntil.Sub(readFrom))
}

func TestIssueGrantsVerifiableByGateway(t *testing.T) {
	// The signed upload URL must verify against the same signer with the
	// decoded object path, the way the blob gateway checks it.
	now := time.Now()
	signer := transfer.NewSigner(
		transfer.WithSecretKey(testKey),
		transfer.WithSignerClock(fixedClock(now)),
	)
	svc, err := transfer.New(
		transfer.WithSigner(signer),
		transfer.WithAccount("ssglstorage"),
		transfer.WithStorageBaseURL("https://files.ssgl.example"),
		transfer.WithClock(fixedClock(now)),
	)
	require.NoError(t, err)

	grants, err := svc.IssueGrants(context.Background(), "informe final.pdf")
	require.NoError(t, err)

	u, err := url.Parse(grants.UploadURL)
	require.NoError(t, err)

	g, err := signer.Verify(u.Path, u.Query())
	require.NoError(t, err)
	assert.True(t, g.Permits("w"))
	assert.False(t, g.Permits("r"))
}

func TestIssueGrantsDistinctNamesAcrossCalls(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	clock := func() time.Time {
		current = current.Add(time.Millisecond)
		return current
	}

	signer := transfer.NewSigner(transfer.WithSecretKey(testKey))
	svc, err := transfer.New(
		transfer.WithSigner(signer),
		transfer.WithAccount("ssglstorage"),
		transfer.WithClock(clock),
	)
	require.NoError(t, err)

	first, err := svc.IssueGrants(context.Background(), "a.txt")
	require.NoError(t, err)
	second, err := svc.IssueGrants(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.NotEqual(t, first.ObjectName, second.ObjectName)
}

func TestIssueGrantsErrors(t *testing.T) {
	t.Run("empty filename", func(t *testing.T) {
		svc := newTestService(t, time.Now())
		_, err := svc.IssueGrants(context.Background(), "")
		assert.ErrorIs(t, err, transfer.ErrEmptyFilename)
	})

	t.Run("filename with path segments", func(t *testing.T) {
		svc := newTestService(t, time.Now())
		for _, filename := range []string{
			"x/../../../escaped.txt",
			"../escaped.txt",
			"/etc/passwd",
			`dir\archivo.txt`,
			"..",
		} {
			_, err := svc.IssueGrants(context.Background(), filename)
			assert.ErrorIs(t, err, transfer.ErrInvalidFilename, filename)
		}
	})

	t.Run("missing account", func(t *testing.T) {
		signer := transfer.NewSigner(transfer.WithSecretKey(testKey))
		svc, err := transfer.New(transfer.WithSigner(signer))
		require.NoError(t, err)
		_, err = svc.IssueGrants(context.Background(), "a.txt")
		assert.ErrorIs(t, err, transfer.ErrNotConfigured)
	})

	t.Run("missing signing key", func(t *testing.T) {
		svc, err := transfer.New(transfer.WithAccount("ssglstorage"))
		require.NoError(t, err)
		_, err = svc.IssueGrants(context.Background(), "a.txt")
		assert.ErrorIs(t, err, transfer.ErrNotConfigured)
	})
}

func TestDefaultStorageBaseURL(t *testing.T) {
	signer := transfer.NewSigner(transfer.WithSecretKey(testKey))
	svc, err := transfer.New(
		transfer.WithSigner(signer),
		transfer.WithAccount("ssglstorage"),
	)
	require.NoError(t, err)

	grants, err := svc.IssueGrants(context.Background(), "a.txt")
	require.NoError(t, err)

	u, err := url.Parse(grants.UploadURL)
	require.NoError(t, err)
	assert.Equal(t, "ssglstorage.blob.ssgl.cloud", u.Host)
}

func unixParam(t *testing.T, raw string) time.Time {
	t.Helper()
	var sec int64
	_, err := fmt.Sscanf(raw, "%d", &sec)
	require.NoError(t, err)
	return time.Unix(sec, 0)
}
