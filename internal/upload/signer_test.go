package upload

import (
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSignedURL(t *testing.T, signed string) (storagePath string, q url.Values) {
	t.Helper()
	u, err := url.Parse(signed)
	require.NoError(t, err)
	return strings.TrimPrefix(u.Path, "/upload/"), u.Query()
}

func TestSignerRoundTrip(t *testing.T) {
	signer := NewSigner("secret")

	signed := signer.SignedURL("abc.jpg", 2048, "image/jpeg", 15*time.Minute)
	storagePath, q := parseSignedURL(t, signed)
	assert.Equal(t, "abc.jpg", storagePath)

	exp, err := strconv.ParseInt(q.Get("exp"), 10, 64)
	require.NoError(t, err)
	size, err := strconv.ParseInt(q.Get("size"), 10, 64)
	require.NoError(t, err)

	assert.NoError(t, signer.Verify(storagePath, size, q.Get("type"), exp, q.Get("sig")))
}

func TestSignerRejectsTamperedParams(t *testing.T) {
	signer := NewSigner("secret")

	signed := signer.SignedURL("abc.jpg", 2048, "image/jpeg", 15*time.Minute)
	storagePath, q := parseSignedURL(t, signed)
	exp, _ := strconv.ParseInt(q.Get("exp"), 10, 64)

	// grow the authorized size
	err := signer.Verify(storagePath, 1<<30, q.Get("type"), exp, q.Get("sig"))
	assert.ErrorIs(t, err, ErrSignatureInvalid)

	// swap the path
	err = signer.Verify("other.jpg", 2048, q.Get("type"), exp, q.Get("sig"))
	assert.ErrorIs(t, err, ErrSignatureInvalid)

	// swap the content type
	err = signer.Verify(storagePath, 2048, "video/mp4", exp, q.Get("sig"))
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestSignerRejectsExpired(t *testing.T) {
	signer := NewSigner("secret")
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return base }

	signed := signer.SignedURL("abc.jpg", 2048, "image/jpeg", time.Minute)
	storagePath, q := parseSignedURL(t, signed)
	exp, _ := strconv.ParseInt(q.Get("exp"), 10, 64)

	signer.now = func() time.Time { return base.Add(2 * time.Minute) }
	err := signer.Verify(storagePath, 2048, q.Get("type"), exp, q.Get("sig"))
	assert.ErrorIs(t, err, ErrSignatureExpired)
}

func TestSignerDifferentSecretsDisagree(t *testing.T) {
	a := NewSigner("one")
	b := NewSigner("two")

	signed := a.SignedURL("abc.jpg", 2048, "image/jpeg", 15*time.Minute)
	storagePath, q := parseSignedURL(t, signed)
	exp, _ := strconv.ParseInt(q.Get("exp"), 10, 64)

	err := b.Verify(storagePath, 2048, q.Get("type"), exp, q.Get("sig"))
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}
