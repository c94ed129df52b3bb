package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/j-millet/scriptrunner/internal/ir"
)

func TestStateStore_Update(t *testing.T) {
	s := NewStateStore()

	assert.True(t, s.Update("a", ir.Int(1)), "first observation is a change")
	assert.False(t, s.Update("a", ir.Int(1)), "same value is not a change")
	assert.True(t, s.Update("a", ir.Int(2)))
	assert.True(t, s.Update("a", ir.Float(2)), "different variant is a change")

	v, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, ir.Float(2), v)
	assert.Equal(t, 1, s.Len())
}

func TestStateStore_SnapshotIsCopy(t *testing.T) {
	s := NewStateStore()
	s.Update("a", ir.String("x"))

	snap := s.Snapshot()
	snap["a"] = ir.String("y")

	v, _ := s.Get("a")
	assert.Equal(t, ir.String("x"), v)
}
