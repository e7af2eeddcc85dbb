package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewULID(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	prev := ""
	for i := 0; i < 1000; i++ {
		id := NewULID()
		assert.Len(t, id, 26)
		assert.True(t, IsULID(id))
		assert.Greater(t, id, prev)
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
		prev = id
	}
}

func TestIsULID(t *testing.T) {
	assert.True(t, IsULID("01ARZ3NDEKTSV4RRFFQ69G5FAV"))
	assert.False(t, IsULID(""))
	assert.False(t, IsULID("01ARZ3NDEKTSV4RRFFQ69G5FA"))
	assert.False(t, IsULID("01ARZ3NDEKTSV4RRFFQ69G5FAU"[:25]+"!"))
	assert.False(t, IsULID("not-a-ulid-at-all-00000000"))
}
