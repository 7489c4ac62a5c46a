package upload

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

var (
	ErrSignatureInvalid = errors.New("upload signature invalid")
	ErrSignatureExpired = errors.New("upload signature expired")
)

// Signer authorizes direct uploads: the service signs a short-lived PUT URL
// binding path, size and content type, and the transfer endpoint verifies the
// signature before accepting bytes. Splitting authorize and transfer keeps
// large payloads out of the JSON API.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner builds a Signer with the shared HMAC secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

func (s *Signer) mac(storagePath string, size int64, contentType string, expiresAt int64) string {
	h := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(h, "%s|%d|%s|%d", storagePath, size, contentType, expiresAt)
	return hex.EncodeToString(h.Sum(nil))
}

// SignedURL returns the relative PUT URL authorizing one upload.
func (s *Signer) SignedURL(storagePath string, size int64, contentType string, ttl time.Duration) string {
	expiresAt := s.now().Add(ttl).Unix()
	sig := s.mac(storagePath, size, contentType, expiresAt)
	q := url.Values{}
	q.Set("exp", strconv.FormatInt(expiresAt, 10))
	q.Set("size", strconv.FormatInt(size, 10))
	q.Set("type", contentType)
	q.Set("sig", sig)
	return "/upload/" + storagePath + "?" + q.Encode()
}

// Verify checks an incoming transfer against its signature parameters.
func (s *Signer) Verify(storagePath string, size int64, contentType string, expiresAt int64, sig string) error {
	if s.now().Unix() > expiresAt {
		return ErrSignatureExpired
	}
	expected := s.mac(storagePath, size, contentType, expiresAt)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrSignatureInvalid
	}
	return nil
}
