package flash

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSigner_SignVerify(t *testing.T) {
	s := NewSigner("secret")

	rapid.Check(t, func(t *rapid.T) {
		msg := rapid.String().Draw(t, "msg")
		tag := s.Sign(msg)
		if !s.Verify(msg, tag) {
			t.Fatalf("tag for %q did not verify", msg)
		}
		if s.Verify(msg+"x", tag) {
			t.Fatalf("tag for %q verified a different message", msg)
		}
	})
}

func TestSigner_RejectsForeignTags(t *testing.T) {
	a, b := NewSigner("secret-a"), NewSigner("secret-b")

	tag := a.Sign("Authentication failed.")
	assert.False(t, b.Verify("Authentication failed.", tag))
	assert.False(t, a.Verify("Authentication failed.", "not-hex"))
	assert.False(t, a.Verify("Authentication failed.", ""))
}

func TestSigner_RedirectURL(t *testing.T) {
	s := NewSigner("secret")

	loc := s.RedirectURL("/login", "Authentication failed.")
	require.True(t, strings.HasPrefix(loc, "/login?"))

	u, err := url.Parse(loc)
	require.NoError(t, err)
	msg := u.Query().Get("error")
	assert.Equal(t, "Authentication failed.", msg)
	assert.True(t, s.Verify(msg, u.Query().Get("tag")))
}
