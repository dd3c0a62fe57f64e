// Package ir provides the canonical value types and content-addressed
// identities of the commune audit log.
//
// Operation arguments and results are recorded as IRObject values and
// serialised with MarshalCanonical (RFC 8785 style: sorted keys, NFC
// strings, no floats, no null). Invocation and completion IDs are SHA-256
// digests of that canonical form with domain separation, so the same call
// always yields the same ID.
//
// ir imports nothing internal.
package ir
