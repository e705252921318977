package tui

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

// styles
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	unseenStyle   = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
)

// row icons
const (
	folderIcon      = "▸"
	emptyFolderIcon = "▫"
	tagIconGlyph    = "⬤"
)

// colors assigned to the seeded tag names; everything else gets a stable
// color from the fallback palette.
var tagColors = map[string]lipgloss.Color{
	"Follow Up": lipgloss.Color("11"),
	"Notable":   lipgloss.Color("9"),
	"Bookmark":  lipgloss.Color("12"),
	"Reviewed":  lipgloss.Color("10"),
	"Excluded":  lipgloss.Color("8"),
}

var tagPalette = []lipgloss.Color{"13", "14", "3", "6", "5", "2"}

// tagIcon is the tag-icon provider: given a tag name it returns the glyph
// shown for groups keyed by that tag.
func tagIcon(name string) string {
	color, ok := tagColors[name]
	if !ok {
		h := fnv.New32a()
		h.Write([]byte(name))
		color = tagPalette[h.Sum32()%uint32(len(tagPalette))]
	}
	return lipgloss.NewStyle().Foreground(color).Render(tagIconGlyph)
}
