package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/commune/internal/address"
)

func TestMaxSize(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindCommune, 49},
		{KindApprover, 10},
		{KindItem, 4522},
		{KindProposal, 4514},
		{KindVote, 58},
		{Kind("Unknown"), 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, MaxSize(tt.kind))
		})
	}
}

func TestDiscriminator_Distinct(t *testing.T) {
	seen := map[[DiscriminatorLen]byte]Kind{}
	for _, k := range []Kind{KindCommune, KindApprover, KindItem, KindProposal, KindVote} {
		d := k.Discriminator()
		prev, dup := seen[d]
		require.False(t, dup, "%s collides with %s", k, prev)
		seen[d] = k
	}
}

func TestItem_RoundTrip(t *testing.T) {
	in := &Item{
		ID:          42,
		Seller:      address.Key{1},
		Title:       "Bicycle",
		Description: "Blue, barely used",
		Price:       103,
		Tax:         3,
		Bump:        254,
	}
	data, err := Marshal(in)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(data), MaxSize(KindItem))

	var out Item
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, *in, out)
	assert.True(t, out.Buyer.IsZero())
}

func TestProposal_NegativeTimestamps(t *testing.T) {
	in := &Proposal{ID: 1, CreatedAt: -5, EndTimestamp: -1, Title: "t"}
	data, err := Marshal(in)
	require.NoError(t, err)

	var out Proposal
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, int64(-5), out.CreatedAt)
	assert.Equal(t, int64(-1), out.EndTimestamp)
}

func TestMarshal_WidestCharactersFit(t *testing.T) {
	// 80 four-byte code points use the whole title budget.
	title := strings.Repeat("😀", MaxTitleChars)
	desc := strings.Repeat("😀", MaxDescriptionChars)
	require.Len(t, title, MaxTitleChars*MaxBytesPerChar)

	data, err := Marshal(&Item{Title: title, Description: desc})
	require.NoError(t, err)
	assert.Equal(t, MaxSize(KindItem), len(data))
}

func TestMarshal_ByteBudgetExceeded(t *testing.T) {
	title := strings.Repeat("a", MaxTitleChars*MaxBytesPerChar+1)
	_, err := Marshal(&Item{Title: title})
	assert.ErrorIs(t, err, ErrRecordTooLarge)

	desc := strings.Repeat("a", MaxDescriptionChars*MaxBytesPerChar+1)
	_, err = Marshal(&Proposal{Description: desc})
	assert.ErrorIs(t, err, ErrRecordTooLarge)
}

func TestUnmarshal_KindMismatch(t *testing.T) {
	data, err := Marshal(&Approver{Approval: true, Bump: 1})
	require.NoError(t, err)

	var c Commune
	assert.ErrorIs(t, Unmarshal(data, &c), ErrKindMismatch)
}

func TestUnmarshal_Truncated(t *testing.T) {
	data, err := Marshal(&Vote{ProposalID: 3, Vote: true, Voter: address.Key{7}})
	require.NoError(t, err)

	var v Vote
	assert.ErrorIs(t, Unmarshal(data[:len(data)-1], &v), ErrTruncated)
	assert.ErrorIs(t, Unmarshal(data[:4], &v), ErrTruncated)
}

func TestUnmarshal_StringLengthBeyondData(t *testing.T) {
	data, err := Marshal(&Item{Title: "abc"})
	require.NoError(t, err)

	// Corrupt the title length prefix.
	off := DiscriminatorLen + U64Len + KeyLen + KeyLen
	data[off] = 0xff
	data[off+1] = 0xff

	var it Item
	assert.ErrorIs(t, Unmarshal(data, &it), ErrTruncated)
}

func TestCharCount(t *testing.T) {
	assert.Equal(t, 5, CharCount("hello"))
	assert.Equal(t, 1, CharCount("😀"))
	assert.Equal(t, 1, CharCount("\u00e9"))
	// Combining marks count on their own.
	assert.Equal(t, 2, CharCount("e\u0301"))
	// U+0958 decomposes under NFC but is one character as written.
	assert.Equal(t, 1, CharCount("\u0958"))
}
