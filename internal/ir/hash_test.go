package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvocationID_Stable(t *testing.T) {
	args := IRObject{"id": IRInt(1), "price": IRInt(100)}

	id1, err := InvocationID("req-1", "Commune.createItem", "alice", args, 3)
	require.NoError(t, err)
	id2, err := InvocationID("req-1", "Commune.createItem", "alice", IRObject{"price": IRInt(100), "id": IRInt(1)}, 3)
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "key order must not matter")
	assert.Len(t, id1, 64)
}

func TestInvocationID_Discriminates(t *testing.T) {
	args := IRObject{"id": IRInt(1)}
	base, err := InvocationID("req-1", "Commune.join", "alice", args, 1)
	require.NoError(t, err)

	variants := []struct {
		name                string
		req, action, caller string
		seq                 int64
	}{
		{"request", "req-2", "Commune.join", "alice", 1},
		{"action", "req-1", "Commune.initialize", "alice", 1},
		{"caller", "req-1", "Commune.join", "bob", 1},
		{"seq", "req-1", "Commune.join", "alice", 2},
	}
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			id, err := InvocationID(v.req, v.action, v.caller, args, v.seq)
			require.NoError(t, err)
			assert.NotEqual(t, base, id)
		})
	}
}

func TestCompletionID_DomainSeparated(t *testing.T) {
	inv, err := InvocationID("r", "a", "", nil, 1)
	require.NoError(t, err)

	ok, err := CompletionID(inv, CaseSuccess, nil, 2)
	require.NoError(t, err)
	failed, err := CompletionID(inv, "ItemAlreadySold", nil, 2)
	require.NoError(t, err)

	assert.NotEqual(t, ok, failed)
	assert.NotEqual(t, inv, ok)
}
