package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionIndex_Claim(t *testing.T) {
	x := NewSubscriptionIndex()

	assert.Empty(t, x.Claim("net", []string{"num_up_interfaces", "shared"}))
	assert.Equal(t, []string{"shared"}, x.Claim("lid", []string{"lid_open", "shared"}))

	owner, ok := x.Owner("shared")
	assert.True(t, ok)
	assert.Equal(t, "net", owner, "first provider keeps the key")
	assert.Equal(t, []string{"lid_open", "num_up_interfaces", "shared"}, x.Keys())

	assert.Empty(t, x.Claim("net", []string{"shared"}), "reclaiming an own key is not a conflict")
}

func TestSubscriptionIndex_Subscribe(t *testing.T) {
	x := NewSubscriptionIndex()
	x.Claim("p", []string{"a", "b"})

	_, ok := x.Subscribe(0, []string{"a", "b"})
	assert.True(t, ok)
	_, ok = x.Subscribe(1, []string{"b"})
	assert.True(t, ok)

	assert.Equal(t, []int{0}, x.Rules("a"))
	assert.Equal(t, []int{0, 1}, x.Rules("b"))
}

func TestSubscriptionIndex_SubscribeUnknownIsAllOrNothing(t *testing.T) {
	x := NewSubscriptionIndex()
	x.Claim("p", []string{"a"})

	unknown, ok := x.Subscribe(0, []string{"a", "missing"})
	assert.False(t, ok)
	assert.Equal(t, "missing", unknown)
	assert.Empty(t, x.Rules("a"))
	assert.False(t, x.Subscribed(0))
}

func TestSubscriptionIndex_SubscribeTwiceDoesNotDuplicate(t *testing.T) {
	x := NewSubscriptionIndex()
	x.Claim("p", []string{"a"})

	x.Subscribe(3, []string{"a"})
	x.Subscribe(3, []string{"a"})
	assert.Equal(t, []int{3}, x.Rules("a"))
}
