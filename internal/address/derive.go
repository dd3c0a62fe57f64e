package address

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

// Domain separates address digests from every other hash in the system.
// The version suffix leaves room for a future derivation scheme.
const Domain = "commune/address/v1"

// Seed limits.
const (
	MaxSeeds   = 16
	MaxSeedLen = 32
)

// Record tags.
const (
	TagCommune  = "commune"
	TagApprover = "approver_account"
	TagItem     = "item_account"
	TagProposal = "proposal_account"
	TagVote     = "vote_account"
)

var (
	// ErrOnCurve means the candidate digest is a valid curve point and
	// therefore not usable as a derived address.
	ErrOnCurve = errors.New("derived address lies on the ed25519 curve")

	// ErrAddressMismatch means the recomputed address differs from the
	// claimed one.
	ErrAddressMismatch = errors.New("address does not match its seeds and bump")

	// ErrNoValidBump means no bump in 0..255 produced an off-curve address.
	ErrNoValidBump = errors.New("no valid bump for seeds")

	// ErrSeeds means the seed list breaks MaxSeeds or MaxSeedLen.
	ErrSeeds = errors.New("invalid seeds")
)

// Tag returns the seed bytes of a record tag.
func Tag(tag string) []byte {
	return []byte(tag)
}

// U64 encodes a numeric id as an 8-byte little-endian seed.
func U64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// CreateAddress computes the address for seeds and bump.
// Format: SHA256(Domain + 0x00 + (len(seed) + seed)... + bump)
func CreateAddress(bump uint8, seeds ...[]byte) (Key, error) {
	if len(seeds) > MaxSeeds {
		return Zero, fmt.Errorf("%w: %d seeds, max %d", ErrSeeds, len(seeds), MaxSeeds)
	}

	h := sha256.New()
	h.Write([]byte(Domain))
	h.Write([]byte{0x00})
	for i, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return Zero, fmt.Errorf("%w: seed %d is %d bytes, max %d", ErrSeeds, i, len(seed), MaxSeedLen)
		}
		h.Write([]byte{byte(len(seed))})
		h.Write(seed)
	}
	h.Write([]byte{bump})

	var k Key
	copy(k[:], h.Sum(nil))

	if onCurve(k) {
		return Zero, ErrOnCurve
	}
	return k, nil
}

// FindAddress returns the canonical address and bump for seeds: the first
// bump, counting down from 255, whose candidate is off the curve.
func FindAddress(seeds ...[]byte) (Key, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		k, err := CreateAddress(uint8(bump), seeds...)
		if errors.Is(err, ErrOnCurve) {
			continue
		}
		if err != nil {
			return Zero, 0, err
		}
		return k, uint8(bump), nil
	}
	return Zero, 0, ErrNoValidBump
}

// Verify recomputes the address from seeds and bump and compares it with
// addr.
func Verify(addr Key, bump uint8, seeds ...[]byte) error {
	k, err := CreateAddress(bump, seeds...)
	if err != nil {
		return fmt.Errorf("verify %s: %w", addr, err)
	}
	if k != addr {
		return fmt.Errorf("verify %s: %w", addr, ErrAddressMismatch)
	}
	return nil
}

// onCurve reports whether k decodes as an ed25519 point.
func onCurve(k Key) bool {
	_, err := new(edwards25519.Point).SetBytes(k[:])
	return err == nil
}

// CommuneSeeds returns the seeds of the commune singleton.
func CommuneSeeds() [][]byte {
	return [][]byte{Tag(TagCommune)}
}

// ApproverSeeds returns the seeds of member's approver record.
func ApproverSeeds(member Key) [][]byte {
	return [][]byte{Tag(TagApprover), member.Bytes()}
}

// ItemSeeds returns the seeds of an item record.
func ItemSeeds(id uint64) [][]byte {
	return [][]byte{Tag(TagItem), U64(id)}
}

// ProposalSeeds returns the seeds of a proposal record.
func ProposalSeeds(id uint64) [][]byte {
	return [][]byte{Tag(TagProposal), U64(id)}
}

// VoteSeeds returns the seeds of voter's vote on a proposal.
func VoteSeeds(proposalID uint64, voter Key) [][]byte {
	return [][]byte{Tag(TagVote), U64(proposalID), voter.Bytes()}
}
