package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"imagetriage/internal/gallery"
)

// msgSink collects messages a cell posts and applies them the way the
// program loop would.
type msgSink struct {
	msgs []tea.Msg
}

func (s *msgSink) post(m tea.Msg) { s.msgs = append(s.msgs, m) }

func (s *msgSink) drain() int {
	n := len(s.msgs)
	for _, m := range s.msgs {
		switch msg := m.(type) {
		case cellDisplayMsg:
			msg.cell.applyDisplay(msg)
		case cellTextMsg:
			msg.cell.applyText(msg)
		case cellStyleMsg:
			msg.cell.applyStyle(msg)
		case cellClearMsg:
			msg.cell.applyClear()
		}
	}
	s.msgs = nil
	return n
}

func newTestCell(order gallery.SortOrder) (*groupCell, *msgSink) {
	sink := &msgSink{}
	return newGroupCell(gallery.NewSortRef(order), tagIcon, sink.post), sink
}

func folderGroup(name string, size int) *gallery.Group {
	g := gallery.NewGroup(gallery.GroupKey{Attr: gallery.ByFolder, Value: name})
	for i := 0; i < size; i++ {
		g.AddFile(int64(i+1), false, false)
	}
	return g
}

func TestCell_AlphabeticalLabelShowsSize(t *testing.T) {
	t.Parallel()
	c, sink := newTestCell(gallery.SortAlphabetical)
	g := folderGroup("Vacation Photos", 42)

	c.bind(g)
	require.Equal(t, 1, sink.drain()) // one message, applied atomically

	require.Equal(t, "Vacation Photos (42)", c.text)
	require.Equal(t, "Vacation Photos (42)", c.tooltip)
	require.Equal(t, folderIcon, c.icon)
	require.True(t, c.bold) // group starts unseen
}

func TestCell_NonAlphabeticalLabelShowsOrderValue(t *testing.T) {
	t.Parallel()
	c, sink := newTestCell(gallery.SortUncategorized)
	g := gallery.NewGroup(gallery.GroupKey{Attr: gallery.ByFolder, Value: "DCIM"})
	g.AddFile(1, true, false)
	g.AddFile(2, true, false)
	g.AddFile(3, false, false)

	c.bind(g)
	sink.drain()
	require.Equal(t, "DCIM (2)", c.text)
}

func TestCell_SortSwapRefreshesCounts(t *testing.T) {
	t.Parallel()
	sink := &msgSink{}
	ref := gallery.NewSortRef(gallery.SortAlphabetical)
	c := newGroupCell(ref, tagIcon, sink.post)
	g := gallery.NewGroup(gallery.GroupKey{Attr: gallery.ByFolder, Value: "DCIM"})
	g.AddFile(1, false, true)
	g.AddFile(2, false, false)

	c.bind(g)
	sink.drain()
	require.Equal(t, "DCIM (2)", c.text)

	ref.Set(gallery.SortHashHits)
	sink.drain()
	require.Equal(t, "DCIM (1)", c.text)
}

func TestCell_CounterChangeRefreshesLabel(t *testing.T) {
	t.Parallel()
	c, sink := newTestCell(gallery.SortAlphabetical)
	g := folderGroup("DCIM", 2)

	c.bind(g)
	sink.drain()

	g.AddFile(99, false, false)
	sink.drain()
	require.Equal(t, "DCIM (3)", c.text)
}

func TestCell_RebindRemovesOldListeners(t *testing.T) {
	t.Parallel()
	c, sink := newTestCell(gallery.SortAlphabetical)
	g1 := folderGroup("old", 1)
	g2 := folderGroup("new", 5)

	c.bind(g1)
	sink.drain()
	c.bind(g2)
	sink.drain()
	require.Equal(t, "new (5)", c.text)

	// a change on the old group must not reach the cell
	g1.AddFile(50, false, false)
	g1.SetSeen(true)
	require.Equal(t, 0, sink.drain())
	require.Equal(t, "new (5)", c.text)

	// while the new group still does
	g2.AddFile(50, false, false)
	require.Equal(t, 1, sink.drain())
	require.Equal(t, "new (6)", c.text)
}

func TestCell_UnbindClearsDisplay(t *testing.T) {
	t.Parallel()
	c, sink := newTestCell(gallery.SortAlphabetical)
	g := folderGroup("DCIM", 3)

	c.bind(g)
	sink.drain()
	require.NotEmpty(t, c.text)

	c.bind(nil)
	sink.drain()
	require.Empty(t, c.text)
	require.Empty(t, c.tooltip)
	require.Empty(t, c.icon)
	require.False(t, c.bold)

	// the unbound cell no longer reacts to the group
	g.AddFile(9, false, false)
	require.Equal(t, 0, sink.drain())
}

func TestCell_SeenToggleSwitchesStyle(t *testing.T) {
	t.Parallel()
	c, sink := newTestCell(gallery.SortAlphabetical)
	g := folderGroup("DCIM", 1)

	c.bind(g)
	sink.drain()
	require.True(t, c.bold)

	g.SetSeen(true)
	sink.drain()
	require.False(t, c.bold)

	g.SetSeen(false)
	sink.drain()
	require.True(t, c.bold)
}

func TestCell_TagGroupUsesTagIconProvider(t *testing.T) {
	t.Parallel()
	var asked []string
	sink := &msgSink{}
	provider := func(name string) string {
		asked = append(asked, name)
		return "T:" + name
	}
	c := newGroupCell(gallery.NewSortRef(gallery.SortAlphabetical), provider, sink.post)

	g := gallery.NewGroup(gallery.GroupKey{Attr: gallery.ByTag, Value: "Notable"})
	g.AddFile(1, false, false)
	c.bind(g)
	sink.drain()

	require.Equal(t, []string{"Notable"}, asked)
	require.Equal(t, "T:Notable", c.icon)
}

func TestCell_FillerRowIsStatic(t *testing.T) {
	t.Parallel()
	c, sink := newTestCell(gallery.SortAlphabetical)
	g := gallery.NewGroup(gallery.GroupKey{Attr: gallery.FolderOnly, Value: "phone"})

	c.bind(g)
	sink.drain()
	require.Equal(t, "phone", c.text) // no count suffix
	require.Equal(t, emptyFolderIcon, c.icon)
	require.False(t, c.bold)

	// filler rows observe nothing
	g.SetSeen(false)
	g.AddFile(1, false, false)
	require.Equal(t, 0, sink.drain())
}

func TestCell_StaleMessageIsDropped(t *testing.T) {
	t.Parallel()
	c, sink := newTestCell(gallery.SortAlphabetical)
	g1 := folderGroup("old", 1)
	g2 := folderGroup("new", 2)

	// rebind before the first bind's message is applied; the queued
	// message for the old group must not overwrite the new display
	c.bind(g1)
	c.bind(g2)
	sink.drain()
	require.Equal(t, "new (2)", c.text)
}
