package address

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAddress_Deterministic(t *testing.T) {
	a1, b1, err := FindAddress(ItemSeeds(7)...)
	require.NoError(t, err)
	a2, b2, err := FindAddress(ItemSeeds(7)...)
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
	assert.False(t, a1.IsZero())
}

func TestFindAddress_OffCurve(t *testing.T) {
	for id := uint64(0); id < 32; id++ {
		addr, _, err := FindAddress(ProposalSeeds(id)...)
		require.NoError(t, err)
		assert.False(t, onCurve(addr), "id %d produced an on-curve address", id)
	}
}

func TestFindAddress_SeedsDiscriminate(t *testing.T) {
	voter := Key{1}
	other := Key{2}

	item1, _, err := FindAddress(ItemSeeds(1)...)
	require.NoError(t, err)
	item2, _, err := FindAddress(ItemSeeds(2)...)
	require.NoError(t, err)
	prop1, _, err := FindAddress(ProposalSeeds(1)...)
	require.NoError(t, err)
	vote1, _, err := FindAddress(VoteSeeds(1, voter)...)
	require.NoError(t, err)
	vote2, _, err := FindAddress(VoteSeeds(1, other)...)
	require.NoError(t, err)

	seen := map[Key]string{}
	for name, k := range map[string]Key{
		"item1": item1, "item2": item2, "prop1": prop1, "vote1": vote1, "vote2": vote2,
	} {
		if prev, ok := seen[k]; ok {
			t.Fatalf("%s and %s derived the same address", prev, name)
		}
		seen[k] = name
	}
}

func TestFindAddress_LengthPrefixPreventsAmbiguity(t *testing.T) {
	a, _, err := FindAddress([]byte("ab"), []byte("c"))
	require.NoError(t, err)
	b, _, err := FindAddress([]byte("a"), []byte("bc"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify(t *testing.T) {
	member := Key{9, 9, 9}
	seeds := ApproverSeeds(member)

	addr, bump, err := FindAddress(seeds...)
	require.NoError(t, err)

	require.NoError(t, Verify(addr, bump, seeds...))

	// Any other bump either lands on the curve or yields a different address.
	assert.Error(t, Verify(addr, bump-1, seeds...))

	// Same bump, different seeds.
	assert.ErrorIs(t, Verify(addr, bump, ApproverSeeds(Key{1})...), ErrAddressMismatch)
}

func TestCreateAddress_SeedLimits(t *testing.T) {
	_, err := CreateAddress(255, bytes.Repeat([]byte{1}, MaxSeedLen+1))
	assert.ErrorIs(t, err, ErrSeeds)

	many := make([][]byte, MaxSeeds+1)
	for i := range many {
		many[i] = []byte{byte(i)}
	}
	_, err = CreateAddress(255, many...)
	assert.ErrorIs(t, err, ErrSeeds)

	_, _, err = FindAddress(many...)
	assert.ErrorIs(t, err, ErrSeeds)
}

func TestU64_LittleEndian(t *testing.T) {
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, U64(1))
	assert.Equal(t, []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, U64(0x0102030405060708))
}
