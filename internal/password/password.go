// Package password hashes and verifies passwords with argon2id.
//
// Hashes use the PHC string format, so every hash carries its own
// algorithm version, cost parameters and salt:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt>$<key>
//
// Hashes produced by bcrypt ($2a$, $2b$, $2y$) are still accepted by Verify.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidHash is returned when an encoded hash cannot be parsed.
	ErrInvalidHash = errors.New("the encoded hash is not in the correct format")
	// ErrIncompatibleVersion is returned for argon2 versions other than the one linked in.
	ErrIncompatibleVersion = errors.New("incompatible version of argon2")
)

// Params are the argon2id cost parameters.
type Params struct {
	Memory      uint32 // Memory in KiB
	Iterations  uint32 // Number of passes over the memory
	Parallelism uint8  // Number of lanes
	SaltLength  uint32 // Salt length in bytes
	KeyLength   uint32 // Derived key length in bytes
}

// DefaultParams follow the OWASP minimum recommendation for argon2id.
func DefaultParams() Params {
	return Params{
		Memory:      19456,
		Iterations:  2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Validate reports whether the parameters can produce a hash.
func (p Params) Validate() error {
	if p.Memory < 8*uint32(p.Parallelism) {
		return fmt.Errorf("argon2 memory must be at least 8*parallelism KiB, got %d", p.Memory)
	}
	if p.Iterations < 1 {
		return errors.New("argon2 iterations must be at least 1")
	}
	if p.Parallelism < 1 {
		return errors.New("argon2 parallelism must be at least 1")
	}
	if p.SaltLength < 8 {
		return errors.New("salt must be at least 8 bytes")
	}
	if p.KeyLength < 16 {
		return errors.New("key must be at least 16 bytes")
	}
	return nil
}

// Hasher produces and checks argon2id hashes with a fixed set of parameters.
type Hasher struct {
	params Params
}

// NewHasher creates a Hasher.
func NewHasher(params Params) (*Hasher, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Hasher{params: params}, nil
}

// Params returns the parameters new hashes are produced with.
func (h *Hasher) Params() Params {
	return h.params
}

// Hash returns the encoded hash of password with a fresh random salt.
func (h *Hasher) Hash(password []byte) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return h.HashWithSalt(password, salt), nil
}

// HashWithSalt returns the encoded hash of password using salt.
// Callers outside of tests should use Hash.
func (h *Hasher) HashWithSalt(password, salt []byte) string {
	p := h.params
	key := argon2.IDKey(password, salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	return encode(p, salt, key)
}

// DummyHash returns a valid hash of a fixed password under the hasher's
// parameters. Verifying against it costs the same as verifying a real hash.
func (h *Hasher) DummyHash() string {
	return h.HashWithSalt([]byte("gw-newsletter-dummy-password"), []byte("gw-newsletter-dummy-salt"))
}

// Verify reports whether password matches encoded.
func (h *Hasher) Verify(password []byte, encoded string) (bool, error) {
	if isBcrypt(encoded) {
		err := bcrypt.CompareHashAndPassword([]byte(encoded), password)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
		}
	}

	p, salt, key, err := decode(encoded)
	if err != nil {
		return false, err
	}

	other := argon2.IDKey(password, salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

func encode(p Params, salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

func decode(encoded string) (Params, []byte, []byte, error) {
	var p Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return p, nil, nil, ErrIncompatibleVersion
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	if p.Iterations < 1 || p.Parallelism < 1 {
		return p, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.Strict().DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, ErrInvalidHash
	}
	p.SaltLength = uint32(len(salt))

	key, err := base64.RawStdEncoding.Strict().DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, ErrInvalidHash
	}
	p.KeyLength = uint32(len(key))

	return p, salt, key, nil
}
