// Package digest implements the credential transform the portal service
// expects: a fixed, keyless SHA-1 hex digest applied to the email and
// password fields before transmission.
//
// This keeps raw credentials out of request bodies but is not a
// confidentiality measure: anyone observing the wire can compute the same
// digest. Transport security still matters.
package digest

import (
	"crypto/sha1"
	"encoding/hex"
)

// Method is the algorithm name sent alongside digested credentials.
const Method = "sha1"

// Hex returns the lowercase hex SHA-1 digest of plain.
func Hex(plain string) string {
	sum := sha1.Sum([]byte(plain))
	return hex.EncodeToString(sum[:])
}
