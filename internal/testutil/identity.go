package testutil

import (
	"crypto/sha256"

	"github.com/roach88/commune/internal/address"
)

const identityDomain = "commune/test-identity/v1"

// Identity returns a deterministic caller identity for name. The same name
// always yields the same key, across runs and machines.
func Identity(name string) address.Key {
	h := sha256.New()
	h.Write([]byte(identityDomain))
	h.Write([]byte{0x00})
	h.Write([]byte(name))

	var k address.Key
	copy(k[:], h.Sum(nil))
	return k
}

// Identities returns Identity(name) for each name.
func Identities(names ...string) map[string]address.Key {
	out := make(map[string]address.Key, len(names))
	for _, name := range names {
		out[name] = Identity(name)
	}
	return out
}
