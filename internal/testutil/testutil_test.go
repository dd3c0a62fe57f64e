package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManualTime_SetAndAdvance(t *testing.T) {
	c := NewManualTime(1_000)
	assert.Equal(t, int64(1_000), c.Now())

	assert.Equal(t, int64(1_060), c.Advance(60))
	assert.Equal(t, int64(1_060), c.Now())

	c.Set(500)
	assert.Equal(t, int64(500), c.Now())
}

func TestManualTime_ThreadSafe(t *testing.T) {
	c := NewManualTime(0)
	const goroutines = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			c.Advance(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(goroutines), c.Now())
}

func TestFixedRequestGenerator(t *testing.T) {
	gen := NewFixedRequestGenerator("req-1")
	assert.Equal(t, "req-1", gen.Generate())
	assert.Equal(t, "req-1", gen.Generate())

	assert.Equal(t, "test-request-default", NewFixedRequestGenerator("").Generate())
}

func TestIdentity_Deterministic(t *testing.T) {
	assert.Equal(t, Identity("alice"), Identity("alice"))
	assert.NotEqual(t, Identity("alice"), Identity("bob"))
	assert.False(t, Identity("alice").IsZero())

	ids := Identities("alice", "bob")
	assert.Len(t, ids, 2)
	assert.Equal(t, Identity("bob"), ids["bob"])
}
