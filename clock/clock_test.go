package clock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPopNextOrdersByTimestampThenFIFO(t *testing.T) {
	c := New(0, nil)
	c.ScheduleAt(500, ShowQuote, NoSubject)
	c.ScheduleAt(100, SpawnRider, NoSubject)
	c.ScheduleAt(100, SpawnDriver, NoSubject)

	first, ok := c.PopNext()
	require.True(t, ok)
	require.Equal(t, SpawnRider, first.Kind)
	require.Equal(t, uint64(100), c.Now())

	second, ok := c.PopNext()
	require.True(t, ok)
	require.Equal(t, SpawnDriver, second.Kind)

	third, ok := c.PopNext()
	require.True(t, ok)
	require.Equal(t, ShowQuote, third.Kind)
	require.Equal(t, uint64(500), c.Now())

	require.True(t, c.IsEmpty())
	_, ok = c.PopNext()
	require.False(t, ok)
}

func TestPeekNextDoesNotAdvanceOrRemove(t *testing.T) {
	c := New(1000, nil)
	c.ScheduleIn(50, TryMatch, NoSubject)

	peeked, ok := c.PeekNext()
	require.True(t, ok)
	require.Equal(t, TryMatch, peeked.Kind)
	require.Equal(t, uint64(1000), c.Now())
	require.Equal(t, 1, c.Len())

	popped, ok := c.PopNext()
	require.True(t, ok)
	require.Equal(t, peeked.Kind, popped.Kind)
}

func TestScheduleAtCoercesPastTimestampToNow(t *testing.T) {
	c := New(0, nil)
	c.ScheduleAt(100, ShowQuote, NoSubject)
	_, _ = c.PopNext() // advances now() to 100

	c.ScheduleAt(50, SpawnRider, NoSubject)
	ev, ok := c.PopNext()
	require.True(t, ok)
	require.Equal(t, uint64(100), ev.TimestampMs)
}

func TestScheduleAtPastTimestampPanicsInStrictMode(t *testing.T) {
	c := New(0, nil)
	c.StrictMode = true
	c.ScheduleAt(100, ShowQuote, NoSubject)
	_, _ = c.PopNext()

	require.Panics(t, func() {
		c.ScheduleAt(50, SpawnRider, NoSubject)
	})
}

func TestSimToRealMsAndRealToSimMsRoundTrip(t *testing.T) {
	c := New(0, nil)
	c.SimSecondsPerRealSecond = 60

	require.Equal(t, uint64(1000), c.SimToRealMs(60_000))
	require.Equal(t, uint64(60_000), c.RealToSimMs(1000))
}

func TestSimToRealMsUnthrottledWhenRatioIsZero(t *testing.T) {
	c := New(0, nil)
	require.Equal(t, uint64(0), c.SimToRealMs(60_000))
	require.Equal(t, uint64(0), c.RealToSimMs(1000))
}

func TestKindStringUnknownFallback(t *testing.T) {
	require.Equal(t, "ShowQuote", ShowQuote.String())
	require.Equal(t, "Unknown", Kind(255).String())
}
