package conversation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryContextOrder(t *testing.T) {
	h := NewHistory(10, 5)
	assert.Equal(t, "", h.Context())

	h.Add("first question", "first answer")
	h.Add("second question", "second answer")

	want := "User: first question\nAssistant: first answer\n" +
		"User: second question\nAssistant: second answer"
	assert.Equal(t, want, h.Context())
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(3, 2)
	for i := 1; i <= 5; i++ {
		h.Add(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	turns := h.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, "q3", turns[0].Request)
	assert.Equal(t, "q5", turns[2].Request)

	assert.Equal(t, "User: q4\nAssistant: a4\nUser: q5\nAssistant: a5", h.Context())
}

func TestHistoryTimestampsAreChronological(t *testing.T) {
	h := NewHistory(5, 5)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	h.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	h.Add("a", "1")
	h.Add("b", "2")

	turns := h.Turns()
	assert.True(t, turns[0].Timestamp.Before(turns[1].Timestamp))
}

func TestHistoryDefaultsAndClear(t *testing.T) {
	h := NewHistory(0, 0)
	assert.Equal(t, 50, h.maxTurns)
	assert.Equal(t, 5, h.contextTurns)

	small := NewHistory(2, 9)
	assert.Equal(t, 2, small.contextTurns)

	h.Add("x", "y")
	turns := h.Turns()
	turns[0].Request = "mutated"
	assert.Equal(t, "x", h.Turns()[0].Request, "Turns must return a copy")

	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, "", h.Context())
}
