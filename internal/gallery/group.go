package gallery

import "sync"

// GroupAttr identifies what a group is keyed by.
type GroupAttr int

const (
	// ByFolder groups files that share a parent directory.
	ByFolder GroupAttr = iota
	// ByTag groups files that carry the same tag name.
	ByTag
	// FolderOnly marks a filler row for a directory that contains no
	// drawable files itself, only subdirectories that do.
	FolderOnly
)

// GroupKey identifies a group: the grouping attribute plus its value
// (a folder path or a tag name).
type GroupKey struct {
	Attr  GroupAttr
	Value string
}

func (k GroupKey) String() string {
	switch k.Attr {
	case ByTag:
		return "tag:" + k.Value
	case FolderOnly:
		return "dir:" + k.Value
	default:
		return "folder:" + k.Value
	}
}

// Group is a live collection of drawable files sharing a grouping key.
// Counters and the seen flag may be mutated from any goroutine; readers
// see a consistent snapshot. Interested views subscribe to the counters
// signal and the seen signal separately, mirroring how the counts text
// and the row style react to different changes.
type Group struct {
	key GroupKey

	mu           sync.Mutex
	fileIDs      map[int64]struct{}
	uncatCount   int
	hashHitCount int
	seen         bool

	counters observable
	seenObs  observable
}

// NewGroup creates an empty group for the given key.
func NewGroup(key GroupKey) *Group {
	return &Group{key: key, fileIDs: map[int64]struct{}{}}
}

func (g *Group) Key() GroupKey { return g.key }

// DisplayName is the human-readable group label, without counts.
func (g *Group) DisplayName() string { return g.key.Value }

func (g *Group) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.fileIDs)
}

func (g *Group) UncategorizedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.uncatCount
}

func (g *Group) HashHitCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hashHitCount
}

func (g *Group) Seen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seen
}

// FileIDs returns a snapshot of the member file ids.
func (g *Group) FileIDs() []int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]int64, 0, len(g.fileIDs))
	for id := range g.fileIDs {
		out = append(out, id)
	}
	return out
}

// Contains reports whether the file id is a member of the group.
func (g *Group) Contains(id int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.fileIDs[id]
	return ok
}

// AddFile adds a member and updates derived counters. No-op if already present.
func (g *Group) AddFile(id int64, uncategorized, hashHit bool) {
	g.mu.Lock()
	if _, ok := g.fileIDs[id]; ok {
		g.mu.Unlock()
		return
	}
	g.fileIDs[id] = struct{}{}
	if uncategorized {
		g.uncatCount++
	}
	if hashHit {
		g.hashHitCount++
	}
	g.mu.Unlock()
	g.counters.notify()
}

// RemoveFile removes a member and updates derived counters. No-op if absent.
func (g *Group) RemoveFile(id int64, uncategorized, hashHit bool) {
	g.mu.Lock()
	if _, ok := g.fileIDs[id]; !ok {
		g.mu.Unlock()
		return
	}
	delete(g.fileIDs, id)
	if uncategorized {
		g.uncatCount--
	}
	if hashHit {
		g.hashHitCount--
	}
	g.mu.Unlock()
	g.counters.notify()
}

// AdjustUncategorized shifts the uncategorized counter by delta, for
// recategorization of a file that stays a member.
func (g *Group) AdjustUncategorized(delta int) {
	g.mu.Lock()
	g.uncatCount += delta
	g.mu.Unlock()
	g.counters.notify()
}

// SetSeen updates the seen flag, notifying only on an actual change.
func (g *Group) SetSeen(seen bool) {
	g.mu.Lock()
	if g.seen == seen {
		g.mu.Unlock()
		return
	}
	g.seen = seen
	g.mu.Unlock()
	g.seenObs.notify()
}

// SubscribeCounters registers fn to fire whenever group membership or the
// derived counters change. Returns an unsubscribe handle.
func (g *Group) SubscribeCounters(fn func()) func() {
	return g.counters.subscribe(fn)
}

// SubscribeSeen registers fn to fire whenever the seen flag flips.
// Returns an unsubscribe handle.
func (g *Group) SubscribeSeen(fn func()) func() {
	return g.seenObs.subscribe(fn)
}
