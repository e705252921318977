package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"imagetriage/internal/gallery"
)

// Cell display messages. Listener callbacks may fire on any goroutine, so
// a cell never touches its own display fields directly: it posts one of
// these onto the program loop, and the loop applies it. One message
// carries everything a refresh changes, so a refresh lands atomically.
type cellDisplayMsg struct {
	cell    *groupCell
	group   *gallery.Group
	text    string
	tooltip string
	icon    string
	bold    bool
}

type cellTextMsg struct {
	cell    *groupCell
	group   *gallery.Group
	text    string
	tooltip string
}

type cellStyleMsg struct {
	cell  *groupCell
	group *gallery.Group
	bold  bool
}

type cellClearMsg struct {
	cell *groupCell
}

// groupCell renders one visible row of the groups pane. The viewport owns
// a fixed pool of cells and rebinds them as it scrolls, so a cell is
// subscribed to at most one group's signals at any time.
type groupCell struct {
	sortOrder *gallery.SortRef
	tagIcon   func(string) string
	post      func(tea.Msg)

	group  *gallery.Group
	unsubs []func()

	// display state, mutated only on the program loop
	text    string
	tooltip string
	icon    string
	bold    bool
}

func newGroupCell(sortOrder *gallery.SortRef, tagIcon func(string) string, post func(tea.Msg)) *groupCell {
	return &groupCell{sortOrder: sortOrder, tagIcon: tagIcon, post: post}
}

// bind points the cell at a new group, or at nothing. The previous
// group's subscriptions are torn down first, so no callback can fire
// against a group this cell no longer displays.
func (c *groupCell) bind(g *gallery.Group) {
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
	c.group = g

	if g == nil {
		c.post(cellClearMsg{cell: c})
		return
	}

	if g.Key().Attr == gallery.FolderOnly {
		// filler directory row: static, nothing to observe
		c.post(cellDisplayMsg{cell: c, group: g, text: g.DisplayName(), tooltip: g.DisplayName(), icon: emptyFolderIcon})
		return
	}

	countListener := func() {
		text := label(g, c.sortOrder.Get())
		c.post(cellTextMsg{cell: c, group: g, text: text, tooltip: text})
	}
	seenListener := func() {
		c.post(cellStyleMsg{cell: c, group: g, bold: !g.Seen()})
	}
	c.unsubs = append(c.unsubs,
		g.SubscribeCounters(countListener),
		c.sortOrder.Subscribe(countListener),
		g.SubscribeSeen(seenListener),
	)

	text := label(g, c.sortOrder.Get())
	c.post(cellDisplayMsg{cell: c, group: g, text: text, tooltip: text, icon: c.iconFor(g), bold: !g.Seen()})
}

func (c *groupCell) iconFor(g *gallery.Group) string {
	if g.Key().Attr == gallery.ByTag {
		return c.tagIcon(g.Key().Value)
	}
	return folderIcon
}

// label is the rendered row text: display name plus the count suffix. The
// count is plain group size under alphabetical order and the order's
// formatted value otherwise.
func label(g *gallery.Group, order gallery.SortOrder) string {
	return g.DisplayName() + countsText(g, order)
}

func countsText(g *gallery.Group, order gallery.SortOrder) string {
	return " (" + order.FormattedValue(g) + ")"
}

// apply* run on the program loop. Messages queued before a rebind are
// dropped when their group no longer matches the cell's.

func (c *groupCell) applyDisplay(msg cellDisplayMsg) {
	if c.group != msg.group {
		return
	}
	c.text = msg.text
	c.tooltip = msg.tooltip
	c.icon = msg.icon
	c.bold = msg.bold
}

func (c *groupCell) applyText(msg cellTextMsg) {
	if c.group != msg.group {
		return
	}
	c.text = msg.text
	c.tooltip = msg.tooltip
}

func (c *groupCell) applyStyle(msg cellStyleMsg) {
	if c.group != msg.group {
		return
	}
	c.bold = msg.bold
}

func (c *groupCell) applyClear() {
	if c.group != nil {
		return
	}
	c.text = ""
	c.tooltip = ""
	c.icon = ""
	c.bold = false
}

// view renders the cell's current display state.
func (c *groupCell) view(selected bool) string {
	marker := " "
	if selected {
		marker = "▶"
	}
	text := c.text
	switch {
	case selected && c.bold:
		text = selectedStyle.Bold(true).Render(text)
	case selected:
		text = selectedStyle.Render(text)
	case c.bold:
		text = unseenStyle.Render(text)
	}
	if c.icon == "" {
		return marker + " " + text
	}
	return marker + " " + c.icon + " " + text
}
