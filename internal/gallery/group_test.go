package gallery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroup_CountersAndMembership(t *testing.T) {
	t.Parallel()
	g := NewGroup(GroupKey{Attr: ByFolder, Value: "phone/DCIM"})

	g.AddFile(1, true, false)
	g.AddFile(2, false, true)
	g.AddFile(2, false, true) // duplicate add is a no-op

	require.Equal(t, 2, g.Size())
	require.Equal(t, 1, g.UncategorizedCount())
	require.Equal(t, 1, g.HashHitCount())
	require.True(t, g.Contains(1))
	require.ElementsMatch(t, []int64{1, 2}, g.FileIDs())

	g.RemoveFile(1, true, false)
	g.RemoveFile(1, true, false) // absent remove is a no-op
	require.Equal(t, 1, g.Size())
	require.Equal(t, 0, g.UncategorizedCount())
	require.False(t, g.Contains(1))
}

func TestGroup_CounterSubscription(t *testing.T) {
	t.Parallel()
	g := NewGroup(GroupKey{Attr: ByFolder, Value: "x"})

	fired := 0
	unsub := g.SubscribeCounters(func() { fired++ })

	g.AddFile(1, false, false)
	require.Equal(t, 1, fired)
	g.AdjustUncategorized(1)
	require.Equal(t, 2, fired)

	unsub()
	unsub() // idempotent
	g.AddFile(2, false, false)
	require.Equal(t, 2, fired)
}

func TestGroup_SeenSubscription(t *testing.T) {
	t.Parallel()
	g := NewGroup(GroupKey{Attr: ByTag, Value: "Notable"})

	fired := 0
	unsub := g.SubscribeSeen(func() { fired++ })
	defer unsub()

	require.False(t, g.Seen())
	g.SetSeen(true)
	require.True(t, g.Seen())
	require.Equal(t, 1, fired)

	g.SetSeen(true) // no change, no notification
	require.Equal(t, 1, fired)

	g.SetSeen(false)
	require.Equal(t, 2, fired)
}

func TestGroupKey_String(t *testing.T) {
	t.Parallel()
	require.Equal(t, "folder:a/b", GroupKey{Attr: ByFolder, Value: "a/b"}.String())
	require.Equal(t, "tag:Notable", GroupKey{Attr: ByTag, Value: "Notable"}.String())
	require.Equal(t, "dir:a", GroupKey{Attr: FolderOnly, Value: "a"}.String())
}
