// Package flash signs short messages carried in redirect query strings so
// that pages only display messages the server produced.
package flash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
)

// Signer computes and checks HMAC-SHA256 tags.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer keyed with secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the hex encoded tag of msg.
func (s *Signer) Sign(msg string) string {
	return hex.EncodeToString(s.mac(msg))
}

// Verify reports whether tag is the hex encoded tag of msg.
func (s *Signer) Verify(msg, tag string) bool {
	raw, err := hex.DecodeString(tag)
	if err != nil {
		return false
	}
	return hmac.Equal(raw, s.mac(msg))
}

// RedirectURL appends msg and its tag to path as error and tag query parameters.
func (s *Signer) RedirectURL(path, msg string) string {
	q := url.Values{}
	q.Set("error", msg)
	q.Set("tag", s.Sign(msg))
	return path + "?" + q.Encode()
}

func (s *Signer) mac(msg string) []byte {
	m := hmac.New(sha256.New, s.secret)
	m.Write([]byte("error=" + url.QueryEscape(msg)))
	return m.Sum(nil)
}
