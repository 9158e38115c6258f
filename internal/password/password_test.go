package password

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"pgregory.net/rapid"
)

// testParams keep argon2 cheap enough for property tests.
var testParams = Params{
	Memory:      64,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(testParams)
	require.NoError(t, err)
	return h
}

func TestHasher_RoundTrip(t *testing.T) {
	h := newTestHasher(t)

	rapid.Check(t, func(rt *rapid.T) {
		pw := rapid.SliceOf(rapid.Byte()).Draw(rt, "password")
		other := rapid.SliceOf(rapid.Byte()).
			Filter(func(b []byte) bool { return !bytes.Equal(b, pw) }).
			Draw(rt, "other")

		encoded, err := h.Hash(pw)
		if err != nil {
			rt.Fatalf("hash: %v", err)
		}

		ok, err := h.Verify(pw, encoded)
		if err != nil || !ok {
			rt.Fatalf("expected password to verify against its own hash, ok=%v err=%v", ok, err)
		}

		ok, err = h.Verify(other, encoded)
		if err != nil || ok {
			rt.Fatalf("expected a different password to be rejected, ok=%v err=%v", ok, err)
		}
	})
}

func TestHasher_SaltIsRandom(t *testing.T) {
	h := newTestHasher(t)

	first, err := h.Hash([]byte("same password"))
	require.NoError(t, err)
	second, err := h.Hash([]byte("same password"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHasher_EncodingIsSelfDescribing(t *testing.T) {
	h := newTestHasher(t)

	encoded, err := h.Hash([]byte("secret"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=64,t=1,p=1$"), encoded)

	// A hasher with other parameters still verifies it.
	stronger, err := NewHasher(Params{Memory: 128, Iterations: 2, Parallelism: 2, SaltLength: 16, KeyLength: 32})
	require.NoError(t, err)
	ok, err := stronger.Verify([]byte("secret"), encoded)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestHasher_HashWithSaltIsDeterministic(t *testing.T) {
	h := newTestHasher(t)
	salt := []byte("0123456789abcdef")

	assert.Equal(t, h.HashWithSalt([]byte("pw"), salt), h.HashWithSalt([]byte("pw"), salt))
}

func TestHasher_VerifyBcrypt(t *testing.T) {
	h := newTestHasher(t)
	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := h.Verify([]byte("legacy"), string(legacy))
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify([]byte("wrong"), string(legacy))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_VerifyInvalidEncodings(t *testing.T) {
	h := newTestHasher(t)

	tests := []struct {
		name    string
		encoded string
		wantErr error
	}{
		{name: "empty", encoded: "", wantErr: ErrInvalidHash},
		{name: "wrong algorithm", encoded: "$argon2i$v=19$m=64,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5a2V5a2V5", wantErr: ErrInvalidHash},
		{name: "missing parts", encoded: "$argon2id$v=19$m=64,t=1,p=1$c2FsdHNhbHQ", wantErr: ErrInvalidHash},
		{name: "bad version", encoded: "$argon2id$v=16$m=64,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5a2V5a2V5", wantErr: ErrIncompatibleVersion},
		{name: "bad params", encoded: "$argon2id$v=19$m=x,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5a2V5a2V5", wantErr: ErrInvalidHash},
		{name: "bad salt", encoded: "$argon2id$v=19$m=64,t=1,p=1$!!!$a2V5a2V5a2V5a2V5a2V5a2V5", wantErr: ErrInvalidHash},
		{name: "corrupt bcrypt", encoded: "$2a$10$short", wantErr: ErrInvalidHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify([]byte("pw"), tt.encoded)
			assert.False(t, ok)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParams_Validate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())
	assert.NoError(t, testParams.Validate())

	bad := testParams
	bad.Iterations = 0
	assert.Error(t, bad.Validate())

	bad = testParams
	bad.Memory = 4
	assert.Error(t, bad.Validate())

	_, err := NewHasher(Params{})
	assert.Error(t, err)
}

func TestWorker_HashAndVerify(t *testing.T) {
	w := NewWorker(newTestHasher(t), 2)
	ctx := context.Background()

	encoded, err := w.Hash(ctx, []byte("secret"))
	require.NoError(t, err)

	ok, err := w.Verify(ctx, []byte("secret"), encoded)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = w.Verify(ctx, []byte("nope"), encoded)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestWorker_CallerBufferCanBeWiped(t *testing.T) {
	w := NewWorker(newTestHasher(t), 1)
	ctx := context.Background()

	pw := []byte("secret")
	encoded, err := w.Hash(ctx, pw)
	require.NoError(t, err)
	wipe(pw)

	ok, err := w.Verify(ctx, []byte("secret"), encoded)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestWorker_ContextCancelled(t *testing.T) {
	w := NewWorker(newTestHasher(t), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	_, err := w.Verify(ctx, []byte("pw"), "$argon2id$v=19$m=64,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5a2V5a2V5")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHasher_DummyHashVerifies(t *testing.T) {
	h := newTestHasher(t)

	dummy := h.DummyHash()
	assert.Equal(t, dummy, h.DummyHash())

	ok, err := h.Verify([]byte("anything"), dummy)
	assert.NoError(t, err)
	assert.False(t, ok)
}
