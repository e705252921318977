package gallery

import (
	"strconv"
	"strings"
	"sync"
)

// SortOrder is a shared, swappable ordering applied uniformly to all
// visible group rows. Each order also provides the value shown in a row's
// count suffix; the alphabetical order shows plain group size instead.
type SortOrder int

const (
	SortAlphabetical SortOrder = iota
	SortFileCount
	SortUncategorized
	SortHashHits
)

var sortOrders = []SortOrder{SortAlphabetical, SortFileCount, SortUncategorized, SortHashHits}

func (s SortOrder) String() string {
	switch s {
	case SortFileCount:
		return "file count"
	case SortUncategorized:
		return "uncategorized"
	case SortHashHits:
		return "hash hits"
	default:
		return "alphabetical"
	}
}

// Next cycles to the following sort order.
func (s SortOrder) Next() SortOrder {
	return sortOrders[(int(s)+1)%len(sortOrders)]
}

// ParseSortOrder maps a config string to a sort order, defaulting to
// alphabetical for unknown values.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file count", "filecount", "size":
		return SortFileCount
	case "uncategorized":
		return SortUncategorized
	case "hash hits", "hashhits":
		return SortHashHits
	default:
		return SortAlphabetical
	}
}

// FormattedValue renders this order's value for the group, used in the
// row count suffix when the order is not alphabetical.
func (s SortOrder) FormattedValue(g *Group) string {
	switch s {
	case SortUncategorized:
		return strconv.Itoa(g.UncategorizedCount())
	case SortHashHits:
		return strconv.Itoa(g.HashHitCount())
	default:
		return strconv.Itoa(g.Size())
	}
}

// Less orders two groups under this sort order. Non-alphabetical orders
// sort descending (biggest counts first) with name as tiebreak.
func (s SortOrder) Less(a, b *Group) bool {
	switch s {
	case SortFileCount:
		if a.Size() != b.Size() {
			return a.Size() > b.Size()
		}
	case SortUncategorized:
		if a.UncategorizedCount() != b.UncategorizedCount() {
			return a.UncategorizedCount() > b.UncategorizedCount()
		}
	case SortHashHits:
		if a.HashHitCount() != b.HashHitCount() {
			return a.HashHitCount() > b.HashHitCount()
		}
	}
	return strings.ToLower(a.DisplayName()) < strings.ToLower(b.DisplayName())
}

// SortRef is the single sort-order reference shared by every visible row.
// Cells subscribe to it so a swap re-renders all count suffixes.
type SortRef struct {
	mu  sync.Mutex
	val SortOrder
	obs observable
}

// NewSortRef creates a shared reference starting at the given order.
func NewSortRef(initial SortOrder) *SortRef {
	return &SortRef{val: initial}
}

func (r *SortRef) Get() SortOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.val
}

// Set swaps the shared order and notifies subscribers on a change.
func (r *SortRef) Set(v SortOrder) {
	r.mu.Lock()
	changed := r.val != v
	r.val = v
	r.mu.Unlock()
	if changed {
		r.obs.notify()
	}
}

// Subscribe registers fn for order swaps. Returns an unsubscribe handle.
func (r *SortRef) Subscribe(fn func()) func() {
	return r.obs.subscribe(fn)
}
