package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"imagetriage/internal/config"
	"imagetriage/internal/gallery"
	"imagetriage/internal/service"
)

// App is the Bubble Tea model for the group navigation panel.
type App struct {
	ctx     context.Context
	cfg     config.Config
	manager *gallery.Manager
	scanner *service.Scanner
	sortRef *gallery.SortRef

	post     func(tea.Msg)
	unsubTag func()

	groups []*gallery.Group
	cells  []*groupCell
	cursor int
	offset int
	width  int
	height int

	mode        appMode
	inputBuffer string
	jumpMatches []*gallery.Group
	jumpCursor  int

	status string
}

type appMode string

const (
	modeBrowse appMode = "browse"
	modeTag    appMode = "tag"
	modeUntag  appMode = "untag"
	modeJump   appMode = "jump"
)

func New(ctx context.Context, cfg config.Config, manager *gallery.Manager, scanner *service.Scanner, sortRef *gallery.SortRef) *App {
	return &App{
		ctx:     ctx,
		cfg:     cfg,
		manager: manager,
		scanner: scanner,
		sortRef: sortRef,
		mode:    modeBrowse,
		width:   100,
		height:  32,
		status:  "Ready",
		post:    func(tea.Msg) {},
	}
}

// SetSender wires the program's Send so cell listeners and tag-event
// subscribers can marshal onto the program loop. Call before Run.
func (a *App) SetSender(send func(tea.Msg)) {
	a.post = send
	if a.unsubTag != nil {
		a.unsubTag()
	}
	a.unsubTag = a.manager.SubscribeTagEvents(func(ev gallery.TagEvent) {
		send(tagEventMsg{Event: ev})
	})
}

func (a *App) Init() tea.Cmd {
	return a.reloadCmd()
}

// messages
type groupsMsg []*gallery.Group

type tagEventMsg struct {
	Event gallery.TagEvent
}

type scanDoneMsg struct {
	Result service.ScanResult
}

type statusMsg string

type errMsg struct{ error }

// commands
func (a *App) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		if err := a.manager.Rebuild(a.ctx); err != nil {
			return errMsg{err}
		}
		return groupsMsg(a.manager.Groups(a.sortRef.Get()))
	}
}

func (a *App) listCmd() tea.Cmd {
	return func() tea.Msg {
		return groupsMsg(a.manager.Groups(a.sortRef.Get()))
	}
}

func (a *App) markSeenCmd(g *gallery.Group, seen bool) tea.Cmd {
	return func() tea.Msg {
		if err := a.manager.MarkSeen(a.ctx, g, seen); err != nil {
			return errMsg{err}
		}
		if seen {
			return statusMsg("marked seen")
		}
		return statusMsg("marked unseen")
	}
}

func (a *App) tagCmd(g *gallery.Group, name string, tagged bool) tea.Cmd {
	return func() tea.Msg {
		ids := g.FileIDs()
		if len(ids) == 0 {
			return statusMsg("group has no files")
		}
		if tagged {
			if err := a.manager.TagFiles(a.ctx, ids, name); err != nil {
				return errMsg{err}
			}
			return statusMsg(fmt.Sprintf("tagged %d files with %q", len(ids), name))
		}
		if err := a.manager.UntagFiles(a.ctx, ids, name); err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("untagged %d files from %q", len(ids), name))
	}
}

func (a *App) scanCmd() tea.Cmd {
	root := a.cfg.Scan.Root
	if root == "" {
		return func() tea.Msg { return errMsg{fmt.Errorf("scan root not configured")} }
	}
	return func() tea.Msg {
		res, err := a.scanner.Scan(a.ctx, root)
		if err != nil {
			return errMsg{err}
		}
		return scanDoneMsg{Result: res}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
		a.height = m.Height
		a.rebindVisible()

	case tea.KeyMsg:
		if a.mode != modeBrowse {
			return a.handleModalKey(m)
		}
		return a.handleBrowseKey(m)

	case groupsMsg:
		a.groups = []*gallery.Group(m)
		if a.cursor >= len(a.groups) {
			a.cursor = 0
			a.offset = 0
		}
		a.rebindVisible()

	case cellDisplayMsg:
		m.cell.applyDisplay(m)
	case cellTextMsg:
		m.cell.applyText(m)
	case cellStyleMsg:
		m.cell.applyStyle(m)
	case cellClearMsg:
		m.cell.applyClear()

	case tagEventMsg:
		verb := "untagged"
		if m.Event.Tagged() {
			verb = "tagged"
		}
		a.status = fmt.Sprintf("%s %d files", verb, len(m.Event.FileIDs()))
		// tag changes can create or remove whole groups under tag grouping
		return a, a.listCmd()

	case scanDoneMsg:
		a.status = fmt.Sprintf("scanned: %d new, %d known, %d hash hits", m.Result.Imported, m.Result.Skipped, m.Result.HashHits)
		if n := len(m.Result.Errors); n > 0 {
			a.status += fmt.Sprintf(", %d errors (first: %v)", n, m.Result.Errors[0])
		}
		return a, a.reloadCmd()

	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) handleBrowseKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
			a.rebindVisible()
		}
	case "down", "j":
		if a.cursor < len(a.groups)-1 {
			a.cursor++
			a.rebindVisible()
		}
	case "o":
		a.sortRef.Set(a.sortRef.Get().Next())
		a.status = "sort: " + a.sortRef.Get().String()
		return a, a.listCmd()
	case "g":
		if a.manager.GroupBy() == gallery.ByFolder {
			a.manager.SetGroupBy(gallery.ByTag)
			a.status = "grouping by tag"
		} else {
			a.manager.SetGroupBy(gallery.ByFolder)
			a.status = "grouping by folder"
		}
		return a, a.reloadCmd()
	case "m":
		if g := a.selected(); g != nil && g.Key().Attr != gallery.FolderOnly {
			return a, a.markSeenCmd(g, !g.Seen())
		}
	case "t":
		if g := a.selected(); g != nil && g.Key().Attr != gallery.FolderOnly {
			a.mode = modeTag
			a.inputBuffer = ""
		}
	case "u":
		if g := a.selected(); g != nil && g.Key().Attr != gallery.FolderOnly {
			a.mode = modeUntag
			a.inputBuffer = ""
		}
	case "/":
		a.mode = modeJump
		a.inputBuffer = ""
		a.jumpMatches = a.manager.FindGroups("")
		a.jumpCursor = 0
	case "r":
		a.status = "scanning..."
		return a, a.scanCmd()
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.mode {
	case modeTag, modeUntag:
		switch m.Type {
		case tea.KeyEsc:
			a.mode = modeBrowse
			a.inputBuffer = ""
		case tea.KeyEnter:
			name := strings.TrimSpace(a.inputBuffer)
			mode := a.mode
			a.mode = modeBrowse
			a.inputBuffer = ""
			if name == "" {
				a.status = "enter a tag name"
				return a, nil
			}
			g := a.selected()
			if g == nil {
				return a, nil
			}
			return a, a.tagCmd(g, name, mode == modeTag)
		case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
			if len(a.inputBuffer) > 0 {
				a.inputBuffer = a.inputBuffer[:len(a.inputBuffer)-1]
			}
		case tea.KeySpace:
			a.inputBuffer += " "
		case tea.KeyRunes:
			a.inputBuffer += string(m.Runes)
		}
	case modeJump:
		switch m.Type {
		case tea.KeyEsc:
			a.mode = modeBrowse
			a.inputBuffer = ""
		case tea.KeyEnter:
			a.mode = modeBrowse
			if a.jumpCursor < len(a.jumpMatches) {
				a.jumpTo(a.jumpMatches[a.jumpCursor])
			}
			a.inputBuffer = ""
		case tea.KeyUp:
			if a.jumpCursor > 0 {
				a.jumpCursor--
			}
		case tea.KeyDown:
			if a.jumpCursor < len(a.jumpMatches)-1 {
				a.jumpCursor++
			}
		case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
			if len(a.inputBuffer) > 0 {
				a.inputBuffer = a.inputBuffer[:len(a.inputBuffer)-1]
				a.refreshJump()
			}
		case tea.KeySpace:
			a.inputBuffer += " "
			a.refreshJump()
		case tea.KeyRunes:
			a.inputBuffer += string(m.Runes)
			a.refreshJump()
		}
	}
	return a, nil
}

func (a *App) refreshJump() {
	a.jumpMatches = a.manager.FindGroups(a.inputBuffer)
	a.jumpCursor = 0
}

func (a *App) jumpTo(target *gallery.Group) {
	for i, g := range a.groups {
		if g == target {
			a.cursor = i
			a.rebindVisible()
			return
		}
	}
}

func (a *App) selected() *gallery.Group {
	if a.cursor < 0 || a.cursor >= len(a.groups) {
		return nil
	}
	return a.groups[a.cursor]
}

// rebindVisible resizes the cell pool to the viewport and rebinds each
// cell to the group now behind its row. Cells whose row scrolled past the
// end are bound to nothing.
func (a *App) rebindVisible() {
	rows := a.visibleRows()
	for len(a.cells) < rows {
		a.cells = append(a.cells, newGroupCell(a.sortRef, tagIcon, func(msg tea.Msg) { a.post(msg) }))
	}
	for len(a.cells) > rows {
		last := a.cells[len(a.cells)-1]
		last.bind(nil)
		a.cells = a.cells[:len(a.cells)-1]
	}

	if a.cursor < a.offset {
		a.offset = a.cursor
	}
	if a.cursor >= a.offset+rows {
		a.offset = a.cursor - rows + 1
	}

	for i, c := range a.cells {
		idx := a.offset + i
		if idx < len(a.groups) {
			c.bind(a.groups[idx])
		} else {
			c.bind(nil)
		}
	}
}

func (a *App) visibleRows() int {
	rows := a.height - 5 // title, blank, footer, status, margin
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (a *App) View() string {
	groupBy := "folder"
	if a.manager.GroupBy() == gallery.ByTag {
		groupBy = "tag"
	}
	title := titleStyle.Render("Image Triage") +
		mutedStyle.Render(fmt.Sprintf("  groups by %s · sort: %s", groupBy, a.sortRef.Get().String()))

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	if len(a.groups) == 0 {
		b.WriteString("(no groups - press r to scan)\n")
	}
	for i, c := range a.cells {
		b.WriteString(c.view(a.offset+i == a.cursor))
		b.WriteString("\n")
	}
	b.WriteString("[j/k] Move  [o] Sort  [g] Group by  [m] Seen  [t] Tag  [u] Untag  [/] Jump  [r] Scan  [q] Quit")
	if a.status != "" {
		b.WriteString("\n" + a.status)
	}

	body := b.String()
	if a.mode != modeBrowse {
		body += "\n\n" + a.renderModal()
	}
	return body
}

func (a *App) renderModal() string {
	switch a.mode {
	case modeTag:
		return titleStyle.Render("Tag group files") + fmt.Sprintf("\n%s\n[enter] Tag  [esc] Cancel", a.inputBuffer)
	case modeUntag:
		return titleStyle.Render("Untag group files") + fmt.Sprintf("\n%s\n[enter] Untag  [esc] Cancel", a.inputBuffer)
	case modeJump:
		out := titleStyle.Render("Jump to group") + fmt.Sprintf("\n> %s\n", a.inputBuffer)
		limit := len(a.jumpMatches)
		if limit > 8 {
			limit = 8
		}
		for i := 0; i < limit; i++ {
			marker := " "
			if i == a.jumpCursor {
				marker = "▶"
			}
			out += fmt.Sprintf("%s %s\n", marker, a.jumpMatches[i].DisplayName())
		}
		out += "[enter] Jump  [esc] Cancel"
		return out
	default:
		return ""
	}
}
