// Package security contains everything related to the security of user data
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var ErrInvalidHash = errors.New("invalid hash format")

type ArgonHash struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// New returns an ArgonHash with the given cost parameters. Zero values fall
// back to the defaults of 64 MiB, 3 iterations and 2 lanes.
func New(memory, iterations uint32, parallelism uint8) *ArgonHash {
	a := &ArgonHash{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}

	if memory > 0 {
		a.Memory = memory
	}
	if iterations > 0 {
		a.Iterations = iterations
	}
	if parallelism > 0 {
		a.Parallelism = parallelism
	}

	return a
}

// HashPassword derives an argon2id key from p with a fresh random salt and
// returns it PHC encoded
func (a *ArgonHash) HashPassword(p string) (encoded string, err error) {
	salt, err := genRandByt(a.SaltLength)
	if err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(p), salt, a.Iterations, a.Memory, a.Parallelism, a.KeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	encoded = fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, a.Memory, a.Iterations, a.Parallelism, b64Salt, b64Hash)

	return encoded, nil
}

// VerifyPassword compares a password p with the stored PHC-style encoded hash e.
// Parameters are read from e so hashes made with older settings keep working.
func (a *ArgonHash) VerifyPassword(p, e string) (ok bool, err error) {
	parts := strings.Split(e, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrInvalidHash
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, ErrInvalidHash
	}
	if version != argon2.Version {
		return false, fmt.Errorf("unsupported argon2 version %d, %w", version, ErrInvalidHash)
	}

	var memory, iterations uint32
	var parallelism uint8

	_, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		return false, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrInvalidHash
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return false, ErrInvalidHash
	}

	calcHash := argon2.IDKey([]byte(p), salt, iterations, memory, parallelism, uint32(len(hash)))

	return subtle.ConstantTimeCompare(hash, calcHash) == 1, nil
}

func genRandByt(n uint32) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}

	return b, nil
}
