// Package cryptox implements the credential hasher: salted argon2id digests
// stored as "<salt-hex>:<digest-hex>", plus verification of legacy formats.
package cryptox

import (
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	separator = ":"

	saltRandomLen  = 16
	saltCounterLen = 8
)

// saltCounter is prefixed to every salt so two salts never collide even if
// the random source repeats. It is process-wide and never reset.
var saltCounter atomic.Uint64

// Params are the argon2id cost parameters.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
}

// DefaultParams is the cost used when none is configured.
func DefaultParams() Params {
	return Params{Time: 1, MemoryKiB: 64 * 1024, Threads: 4, KeyLen: 32}
}

// Hasher hashes and verifies secrets. It is safe for concurrent use.
type Hasher struct {
	params Params
}

// NewHasher returns a Hasher using p. Zero fields fall back to DefaultParams.
func NewHasher(p Params) *Hasher {
	d := DefaultParams()
	if p.Time == 0 {
		p.Time = d.Time
	}
	if p.MemoryKiB == 0 {
		p.MemoryKiB = d.MemoryKiB
	}
	if p.Threads == 0 {
		p.Threads = d.Threads
	}
	if p.KeyLen == 0 {
		p.KeyLen = d.KeyLen
	}
	return &Hasher{params: p}
}

// Params returns the effective cost parameters.
func (h *Hasher) Params() Params {
	return h.params
}

// DeriveKey runs argon2id over secret and salt.
func DeriveKey(secret, salt []byte, p Params) []byte {
	return argon2.IDKey(secret, salt, p.Time, p.MemoryKiB, p.Threads, p.KeyLen)
}

func newSalt() []byte {
	salt := make([]byte, saltCounterLen, saltCounterLen+saltRandomLen)
	binary.BigEndian.PutUint64(salt, saltCounter.Add(1))
	return append(salt, common.GenerateRandByteArray(saltRandomLen)...)
}

// Hash returns the stored form of secret. Empty or whitespace-only secrets
// are rejected with common.ErrInvalidArgument.
func (h *Hasher) Hash(secret string) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", common.ErrInvalidArgument
	}

	salt := newSalt()
	digest := DeriveKey([]byte(secret), salt, h.params)

	return hex.EncodeToString(salt) + separator + hex.EncodeToString(digest), nil
}

// Verify reports whether secret matches stored. A stored form without the
// separator is treated as a legacy format.
func (h *Hasher) Verify(secret, stored string) bool {
	saltHex, digestHex, ok := strings.Cut(stored, separator)
	if !ok {
		return verifyLegacy(secret, stored)
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) == 0 {
		return false
	}
	want, err := hex.DecodeString(digestHex)
	if err != nil || len(want) == 0 {
		return false
	}

	p := h.params
	p.KeyLen = uint32(len(want))
	got := DeriveKey([]byte(secret), salt, p)

	return subtle.ConstantTimeCompare(got, want) == 1
}

// IsLegacy reports whether stored uses one of the legacy formats and should
// be rehashed on the next successful verification.
func IsLegacy(stored string) bool {
	return !strings.Contains(stored, separator)
}
