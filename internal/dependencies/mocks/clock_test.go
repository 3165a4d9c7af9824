package mocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClock_FiresTimersInDeadlineOrder(t *testing.T) {
	c := NewMockClock(time.Unix(0, 0))
	var fired []string
	c.AfterFunc(2*time.Second, func() { fired = append(fired, "second") })
	c.AfterFunc(time.Second, func() { fired = append(fired, "first") })

	c.Advance(500 * time.Millisecond)
	assert.Empty(t, fired)

	c.Advance(2 * time.Second)
	assert.Equal(t, []string{"first", "second"}, fired)
	assert.Equal(t, 0, c.PendingTimers())
}

func TestMockClock_StopPreventsFire(t *testing.T) {
	c := NewMockClock(time.Unix(0, 0))
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	require.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	c.Advance(time.Minute)
	assert.False(t, fired)
}

func TestMockClock_TimerArmedByCallbackUsesFireTime(t *testing.T) {
	c := NewMockClock(time.Unix(0, 0))
	var at []time.Time
	c.AfterFunc(time.Second, func() {
		at = append(at, c.Now())
		c.AfterFunc(time.Second, func() { at = append(at, c.Now()) })
	})

	c.Advance(5 * time.Second)
	require.Len(t, at, 2)
	assert.Equal(t, time.Unix(1, 0), at[0])
	assert.Equal(t, time.Unix(2, 0), at[1])
	assert.Equal(t, time.Unix(5, 0), c.Now())
}

func TestMockRandom_StringFallsBackToDistinctValues(t *testing.T) {
	r := NewMockRandom()
	r.QueueString("ABCD")

	assert.Equal(t, "ABCD", r.String(4, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		s := r.String(4, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
		assert.Len(t, s, 4)
		assert.False(t, seen[s])
		seen[s] = true
	}
}

func TestMockRandom_ChoiceUsesIntnQueue(t *testing.T) {
	r := NewMockRandom()
	r.QueueIntn(2, 7)

	assert.Equal(t, "c", r.Choice([]string{"a", "b", "c"}))
	assert.Equal(t, "b", r.Choice([]string{"a", "b", "c"}))
	assert.Equal(t, "a", r.Choice([]string{"a", "b", "c"}))
}
