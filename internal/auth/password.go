package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Supported digest algorithms.
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

// ErrEmptySecret is returned when attempting to hash an empty secret.
var ErrEmptySecret = oops.Code("AUTH_EMPTY_SECRET").Errorf("secret cannot be empty")

// Hasher hashes and verifies secrets. Verify returns (false, nil) on mismatch and an error
// only for malformed digests.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) (bool, error)
	NeedsUpgrade(digest string) bool
}

// Argon2idHasher produces PHC-formatted argon2id digests.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id digest of the secret.
func (h *Argon2idHasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(secret), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify checks the secret against an argon2id digest in constant time.
func (h *Argon2idHasher) Verify(secret, digest string) (bool, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 {
		return false, oops.Code("AUTH_INVALID_DIGEST").Errorf("invalid digest format")
	}
	if parts[1] != AlgorithmArgon2id {
		return false, oops.Code("AUTH_INVALID_DIGEST").Errorf("unsupported digest algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, oops.Code("AUTH_INVALID_DIGEST").Wrap(err)
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, oops.Code("AUTH_INVALID_DIGEST").Wrap(err)
	}
	if iterations == 0 || threads == 0 {
		return false, oops.Code("AUTH_INVALID_DIGEST").Errorf("zero cost parameter: t=%d p=%d", iterations, threads)
	}
	if threads > 255 {
		return false, oops.Code("AUTH_INVALID_DIGEST").Errorf("threads value %d exceeds uint8 max", threads)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_DIGEST").Wrap(err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_DIGEST").Wrap(err)
	}
	if len(expected) == 0 || len(expected) > 1<<10 {
		return false, oops.Code("AUTH_INVALID_DIGEST").Errorf("invalid key length: %d", len(expected))
	}

	computed := argon2.IDKey([]byte(secret), salt, iterations, memory, uint8(threads), uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// NeedsUpgrade reports digests produced by another algorithm.
func (h *Argon2idHasher) NeedsUpgrade(digest string) bool {
	return !strings.HasPrefix(digest, "$argon2id$")
}

// BcryptHasher hashes secrets with bcrypt at a configured cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher builds a hasher; out-of-range costs fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash hashes a plaintext secret with the configured cost.
func (h *BcryptHasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}
	return string(hashed), nil
}

// Verify compares a secret against its bcrypt digest.
func (h *BcryptHasher) Verify(secret, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, oops.Code("AUTH_INVALID_DIGEST").Wrap(err)
	}
}

// NeedsUpgrade reports digests that are not bcrypt or were hashed at a different cost.
func (h *BcryptHasher) NeedsUpgrade(digest string) bool {
	cost, err := bcrypt.Cost([]byte(digest))
	return err != nil || cost != h.cost
}

// MultiHasher hashes with a primary algorithm and verifies digests of any supported algorithm,
// so stored digests can be migrated on the next successful login.
type MultiHasher struct {
	primary Hasher
	argon   *Argon2idHasher
	bcrypt  *BcryptHasher
}

// NewHasher returns a MultiHasher whose primary algorithm is algorithm.
func NewHasher(algorithm string, bcryptCost int) (*MultiHasher, error) {
	h := &MultiHasher{argon: NewArgon2idHasher(), bcrypt: NewBcryptHasher(bcryptCost)}
	switch strings.ToLower(algorithm) {
	case "", AlgorithmArgon2id:
		h.primary = h.argon
	case AlgorithmBcrypt:
		h.primary = h.bcrypt
	default:
		return nil, oops.Code("AUTH_UNKNOWN_ALGORITHM").Errorf("unknown hash algorithm %q", algorithm)
	}
	return h, nil
}

// Hash hashes with the primary algorithm.
func (h *MultiHasher) Hash(secret string) (string, error) {
	return h.primary.Hash(secret)
}

// Verify dispatches on the digest prefix.
func (h *MultiHasher) Verify(secret, digest string) (bool, error) {
	if strings.HasPrefix(digest, "$argon2id$") {
		return h.argon.Verify(secret, digest)
	}
	return h.bcrypt.Verify(secret, digest)
}

// NeedsUpgrade defers to the primary algorithm.
func (h *MultiHasher) NeedsUpgrade(digest string) bool {
	return h.primary.NeedsUpgrade(digest)
}
