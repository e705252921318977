package gallery

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"imagetriage/internal/database/repository"
)

// Manager owns the live group model: it builds groups from the repository,
// applies tag and category changes, tracks seen marks, and publishes
// TagEvents to subscribers. Group instances are preserved across rebuilds
// when their key survives, so view subscriptions stay valid.
type Manager struct {
	files *repository.FileRepo
	tags  *repository.TagRepo
	seen  *repository.SeenRepo

	mu      sync.Mutex
	groupBy GroupAttr
	groups  map[string]*Group
	byID    map[int64]repository.DrawableFile

	evMu   sync.Mutex
	evNext int
	evSubs map[int]func(TagEvent)
}

func NewManager(files *repository.FileRepo, tags *repository.TagRepo, seen *repository.SeenRepo, groupBy GroupAttr) *Manager {
	return &Manager{
		files:   files,
		tags:    tags,
		seen:    seen,
		groupBy: groupBy,
		groups:  map[string]*Group{},
		byID:    map[int64]repository.DrawableFile{},
		evSubs:  map[int]func(TagEvent){},
	}
}

func (m *Manager) GroupBy() GroupAttr {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.groupBy
}

// SetGroupBy switches the grouping attribute. Call Rebuild afterwards.
func (m *Manager) SetGroupBy(attr GroupAttr) {
	m.mu.Lock()
	m.groupBy = attr
	m.mu.Unlock()
}

// Rebuild reloads files and seen marks and reconciles the group model.
// Existing Group instances are kept where the key persists; membership
// changes flow through the groups' counter signals.
func (m *Manager) Rebuild(ctx context.Context) error {
	list, err := m.files.List(ctx)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}
	seenMarks, err := m.seen.All(ctx)
	if err != nil {
		return fmt.Errorf("load seen marks: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := map[string]map[int64]repository.DrawableFile{}
	keys := map[string]GroupKey{}
	add := func(k GroupKey, f repository.DrawableFile) {
		ks := k.String()
		if wanted[ks] == nil {
			wanted[ks] = map[int64]repository.DrawableFile{}
			keys[ks] = k
		}
		wanted[ks][f.ID] = f
	}

	byID := map[int64]repository.DrawableFile{}
	for _, f := range list {
		byID[f.ID] = f
		switch m.groupBy {
		case ByTag:
			for _, t := range f.Tags {
				add(GroupKey{Attr: ByTag, Value: t.Name}, f)
			}
		default:
			add(GroupKey{Attr: ByFolder, Value: f.Folder}, f)
		}
	}

	// Folder grouping shows filler rows for ancestor directories that hold
	// no drawables directly, so the tree reads like the file system.
	if m.groupBy == ByFolder {
		for ks, k := range fillerKeys(keys) {
			if wanted[ks] == nil {
				wanted[ks] = map[int64]repository.DrawableFile{}
				keys[ks] = k
			}
		}
	}

	// drop groups whose key disappeared
	for ks := range m.groups {
		if _, ok := wanted[ks]; !ok {
			delete(m.groups, ks)
		}
	}

	for ks, members := range wanted {
		g, ok := m.groups[ks]
		if !ok {
			g = NewGroup(keys[ks])
			m.groups[ks] = g
		}
		// remove stale members first, using the previous snapshot
		for id, prev := range m.byID {
			if _, want := members[id]; !want && g.Contains(id) {
				g.RemoveFile(id, prev.Category == 0, prev.HashHit)
			}
		}
		for id, f := range members {
			g.AddFile(id, f.Category == 0, f.HashHit)
		}
		g.SetSeen(seenMarks[ks])
	}

	m.byID = byID
	return nil
}

// fillerKeys returns FolderOnly keys for ancestors of the given folder
// groups that do not themselves hold files.
func fillerKeys(keys map[string]GroupKey) map[string]GroupKey {
	out := map[string]GroupKey{}
	for _, k := range keys {
		if k.Attr != ByFolder {
			continue
		}
		dir := path.Dir(k.Value)
		for dir != "." && dir != "/" && dir != "" {
			filler := GroupKey{Attr: FolderOnly, Value: dir}
			if _, holdsFiles := keys[GroupKey{Attr: ByFolder, Value: dir}.String()]; !holdsFiles {
				out[filler.String()] = filler
			}
			dir = path.Dir(dir)
		}
	}
	return out
}

// Groups returns a snapshot of the current groups ordered by the given
// sort order.
func (m *Manager) Groups(order SortOrder) []*Group {
	m.mu.Lock()
	out := make([]*Group, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, g)
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return order.Less(out[i], out[j]) })
	return out
}

// Group returns the live group for the key, or nil.
func (m *Manager) Group(key GroupKey) *Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.groups[key.String()]
}

// TagFiles attaches the named tag to every file id, creating the tag name
// on first use, then publishes a TagEvent with tagged=true.
func (m *Manager) TagFiles(ctx context.Context, fileIDs []int64, tagName string) error {
	tag, err := m.ensureTag(ctx, tagName)
	if err != nil {
		return err
	}
	if err := m.tags.AttachBatch(ctx, fileIDs, tag.ID); err != nil {
		return fmt.Errorf("attach tag %q: %w", tagName, err)
	}
	updated := map[int64]struct{}{}
	for _, id := range fileIDs {
		updated[id] = struct{}{}
	}

	m.mu.Lock()
	if m.groupBy == ByTag {
		key := GroupKey{Attr: ByTag, Value: tag.Name}
		g, ok := m.groups[key.String()]
		if !ok {
			g = NewGroup(key)
			m.groups[key.String()] = g
		}
		for id := range updated {
			if f, ok := m.byID[id]; ok {
				g.AddFile(id, f.Category == 0, f.HashHit)
			}
		}
	}
	for id := range updated {
		f := m.byID[id]
		f.Tags = appendTag(f.Tags, *tag)
		m.byID[id] = f
	}
	m.mu.Unlock()

	m.publish(NewTagEvent(updated, true))
	return nil
}

// UntagFiles removes the named tag from every file id and publishes a
// TagEvent with tagged=false. Unknown tag names are a no-op.
func (m *Manager) UntagFiles(ctx context.Context, fileIDs []int64, tagName string) error {
	tag, err := m.tags.ByName(ctx, tagName)
	if err != nil {
		return fmt.Errorf("lookup tag %q: %w", tagName, err)
	}
	if tag == nil {
		return nil
	}
	if err := m.tags.RemoveBatch(ctx, fileIDs, tag.ID); err != nil {
		return fmt.Errorf("remove tag %q: %w", tagName, err)
	}
	updated := map[int64]struct{}{}
	for _, id := range fileIDs {
		updated[id] = struct{}{}
	}

	m.mu.Lock()
	if m.groupBy == ByTag {
		key := GroupKey{Attr: ByTag, Value: tag.Name}
		if g, ok := m.groups[key.String()]; ok {
			for id := range updated {
				if f, ok := m.byID[id]; ok {
					g.RemoveFile(id, f.Category == 0, f.HashHit)
				}
			}
			if g.Size() == 0 {
				delete(m.groups, key.String())
			}
		}
	}
	for id := range updated {
		f := m.byID[id]
		f.Tags = removeTag(f.Tags, tag.ID)
		m.byID[id] = f
	}
	m.mu.Unlock()

	m.publish(NewTagEvent(updated, false))
	return nil
}

// SetCategory recategorizes a file, keeping the uncategorized counters of
// every containing group live.
func (m *Manager) SetCategory(ctx context.Context, fileID int64, category int) error {
	if err := m.files.UpdateCategory(ctx, fileID, category); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	m.mu.Lock()
	f, ok := m.byID[fileID]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	wasUncat, isUncat := f.Category == 0, category == 0
	f.Category = category
	m.byID[fileID] = f
	var touched []*Group
	if wasUncat != isUncat {
		for _, g := range m.groups {
			if g.Contains(fileID) {
				touched = append(touched, g)
			}
		}
	}
	m.mu.Unlock()
	delta := 0
	if wasUncat && !isUncat {
		delta = -1
	} else if !wasUncat && isUncat {
		delta = 1
	}
	for _, g := range touched {
		g.AdjustUncategorized(delta)
	}
	return nil
}

// MarkSeen persists the seen mark and flips the group's flag.
func (m *Manager) MarkSeen(ctx context.Context, g *Group, seen bool) error {
	if err := m.seen.Set(ctx, g.Key().String(), seen); err != nil {
		return fmt.Errorf("persist seen mark: %w", err)
	}
	g.SetSeen(seen)
	return nil
}

// FindGroups ranks groups by how closely their display name matches the
// query: substring matches first, then by edit distance.
func (m *Manager) FindGroups(query string) []*Group {
	q := strings.ToLower(strings.TrimSpace(query))
	groups := m.Groups(SortAlphabetical)
	if q == "" {
		return groups
	}
	type scored struct {
		g         *Group
		substring bool
		dist      int
	}
	ranked := make([]scored, 0, len(groups))
	for _, g := range groups {
		name := strings.ToLower(g.DisplayName())
		ranked = append(ranked, scored{
			g:         g,
			substring: strings.Contains(name, q),
			dist:      levenshtein.ComputeDistance(name, q),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].substring != ranked[j].substring {
			return ranked[i].substring
		}
		return ranked[i].dist < ranked[j].dist
	})
	out := make([]*Group, len(ranked))
	for i, s := range ranked {
		out[i] = s.g
	}
	return out
}

// SubscribeTagEvents registers fn for tag/untag batches, fire-and-forget.
// Returns an unsubscribe handle.
func (m *Manager) SubscribeTagEvents(fn func(TagEvent)) func() {
	m.evMu.Lock()
	defer m.evMu.Unlock()
	id := m.evNext
	m.evNext++
	m.evSubs[id] = fn
	return func() {
		m.evMu.Lock()
		delete(m.evSubs, id)
		m.evMu.Unlock()
	}
}

func (m *Manager) publish(ev TagEvent) {
	m.evMu.Lock()
	fns := make([]func(TagEvent), 0, len(m.evSubs))
	for _, fn := range m.evSubs {
		fns = append(fns, fn)
	}
	m.evMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (m *Manager) ensureTag(ctx context.Context, name string) (*repository.TagName, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty tag name")
	}
	tag, err := m.tags.ByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup tag %q: %w", name, err)
	}
	if tag != nil {
		return tag, nil
	}
	t := repository.TagName{ID: uuid.NewString(), Name: name}
	if err := m.tags.Upsert(ctx, t); err != nil {
		return nil, fmt.Errorf("create tag %q: %w", name, err)
	}
	return &t, nil
}

func appendTag(tags []repository.TagName, t repository.TagName) []repository.TagName {
	for _, have := range tags {
		if have.ID == t.ID {
			return tags
		}
	}
	return append(tags, t)
}

func removeTag(tags []repository.TagName, id string) []repository.TagName {
	out := tags[:0]
	for _, t := range tags {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
