package gallery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTagEvent_RoundTrip(t *testing.T) {
	t.Parallel()
	ids := map[int64]struct{}{1: {}, 2: {}, 7: {}}

	ev := NewTagEvent(ids, true)
	require.True(t, ev.Tagged())
	require.Equal(t, map[int64]struct{}{1: {}, 2: {}, 7: {}}, ev.FileIDs())

	ev = NewTagEvent(ids, false)
	require.False(t, ev.Tagged())
}

func TestTagEvent_DefensiveCopy(t *testing.T) {
	t.Parallel()
	ids := map[int64]struct{}{1: {}, 2: {}}
	ev := NewTagEvent(ids, true)

	// mutating the caller's set must not change what the event reports
	ids[99] = struct{}{}
	delete(ids, 1)
	require.Equal(t, map[int64]struct{}{1: {}, 2: {}}, ev.FileIDs())

	// mutating a returned copy must not change later reads
	got := ev.FileIDs()
	got[42] = struct{}{}
	require.Equal(t, map[int64]struct{}{1: {}, 2: {}}, ev.FileIDs())
}

func TestTagEvent_EmptySet(t *testing.T) {
	t.Parallel()
	ev := NewTagEvent(nil, false)
	require.Empty(t, ev.FileIDs())
	require.False(t, ev.Tagged())
}
