package cryptox

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/GehirnInc/crypt"
	"github.com/GehirnInc/crypt/md5_crypt"
	"github.com/GehirnInc/crypt/sha256_crypt"
	"github.com/GehirnInc/crypt/sha512_crypt"
)

// LegacyDigest is the unsalted 32-bit digest of early account records,
// rendered as eight upper-case hex digits. It is only ever used to verify
// old records.
func LegacyDigest(secret string) string {
	var h int32 = 17
	for _, c := range secret {
		h = h*31 + int32(c)
	}
	return fmt.Sprintf("%08X", uint32(h))
}

func verifyLegacy(secret, stored string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$") {
		return verifyCrypt(secret, stored)
	}

	want := strings.ToUpper(strings.TrimSpace(stored))
	got := LegacyDigest(secret)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// verifyCrypt checks crypt(3) strings imported from a shadow file:
// $1$ (md5-crypt), $5$ (sha256-crypt) and $6$ (sha512-crypt).
func verifyCrypt(secret, stored string) bool {
	var c crypt.Crypter
	switch {
	case strings.HasPrefix(stored, "$6$"):
		c = sha512_crypt.New()
	case strings.HasPrefix(stored, "$5$"):
		c = sha256_crypt.New()
	case strings.HasPrefix(stored, "$1$"):
		c = md5_crypt.New()
	default:
		return false
	}
	return c.Verify(stored, []byte(secret)) == nil
}
