package stubapi

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrPasswordMismatch is returned when a password does not derive the stored key.
	ErrPasswordMismatch = errors.New("stubapi: password does not match")

	errMalformedHash = errors.New("stubapi: malformed password hash")
	errHashVersion   = errors.New("stubapi: unsupported argon2 version")
)

// Argon2idParams are the cost parameters used to hash registered passwords.
type Argon2idParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2idParams are used by serve-stub.
var DefaultArgon2idParams = Argon2idParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// FastArgon2idParams keeps hashing cheap for tests and demo seeding.
var FastArgon2idParams = Argon2idParams{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash derives a salted argon2id key for password and returns it in PHC
// form: $argon2id$v=19$m=<memory>,t=<iterations>,p=<parallelism>$<salt>$<key>.
func (p Argon2idParams) Hash(password string) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("stubapi: read salt: %w", err)
	}
	h := passwordHash{params: p, salt: salt, key: p.derive(password, salt, p.KeyLength)}
	return h.String(), nil
}

func (p Argon2idParams) derive(password string, salt []byte, keyLength uint32) []byte {
	return argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, keyLength)
}

// passwordHash is a decoded PHC string. Salt and key lengths come from the
// encoding, not from params.
type passwordHash struct {
	params Argon2idParams
	salt   []byte
	key    []byte
}

func (h passwordHash) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(h.salt), base64.RawStdEncoding.EncodeToString(h.key))
}

func parsePasswordHash(encoded string) (passwordHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return passwordHash{}, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return passwordHash{}, errMalformedHash
	}
	if version != argon2.Version {
		return passwordHash{}, errHashVersion
	}

	var h passwordHash
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.params.Memory, &h.params.Iterations, &h.params.Parallelism); err != nil {
		return passwordHash{}, errMalformedHash
	}
	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(h.salt) == 0 {
		return passwordHash{}, errMalformedHash
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(h.key) == 0 {
		return passwordHash{}, errMalformedHash
	}
	return h, nil
}

// checkPassword returns nil only when password derives the key stored in encoded.
func checkPassword(encoded, password string) error {
	h, err := parsePasswordHash(encoded)
	if err != nil {
		return err
	}
	candidate := h.params.derive(password, h.salt, uint32(len(h.key)))
	if subtle.ConstantTimeCompare(h.key, candidate) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}
