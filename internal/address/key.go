package address

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

// KeySize is the byte length of identities and addresses.
const KeySize = 32

// Key is an identity (ed25519 public key) or a derived address.
// The zero Key means "absent".
type Key [KeySize]byte

// Zero is the absent key.
var Zero Key

// IsZero reports whether k is the absent key.
func (k Key) IsZero() bool {
	return k == Zero
}

// Bytes returns a copy of the raw key bytes.
func (k Key) Bytes() []byte {
	b := make([]byte, KeySize)
	copy(b, k[:])
	return b
}

// String returns the base58 form of the key.
func (k Key) String() string {
	return base58.Encode(k[:])
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKey decodes a base58 key.
func ParseKey(s string) (Key, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Zero, fmt.Errorf("parse key %q: %w", s, err)
	}
	return KeyFromBytes(raw)
}

// KeyFromBytes copies raw into a Key. raw must be exactly KeySize bytes.
func KeyFromBytes(raw []byte) (Key, error) {
	var k Key
	if len(raw) != KeySize {
		return k, fmt.Errorf("key length %d, want %d", len(raw), KeySize)
	}
	copy(k[:], raw)
	return k, nil
}

// NewIdentity generates a fresh ed25519 keypair and returns its public key
// as an identity together with the private key.
func NewIdentity() (Key, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Zero, nil, fmt.Errorf("generate identity: %w", err)
	}
	k, err := KeyFromBytes(pub)
	if err != nil {
		return Zero, nil, err
	}
	return k, priv, nil
}
