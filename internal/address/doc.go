// Package address derives and validates the deterministic addresses of
// commune records and holdings.
//
// An address is a SHA-256 digest over a domain tag, a list of seeds and a
// one-byte bump. A candidate only counts as an address when it does NOT
// decode as an ed25519 curve point, so no private key can sign for it.
// FindAddress searches bumps from 255 downward and the first valid bump is
// the canonical one. Callers hand that bump back as the "nonce" of an
// operation and the engine re-derives the address before trusting any
// record stored there.
//
// Identities and addresses share the 32-byte Key type. Keys print as
// base58.
package address
