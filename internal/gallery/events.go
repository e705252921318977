package gallery

// TagEvent is published by the Manager to indicate that a batch of files
// has been tagged or untagged. It is immutable after construction: the id
// set is copied in and copied out, so neither the publisher nor any
// subscriber can alias the other's state.
type TagEvent struct {
	fileIDs map[int64]struct{}
	tagged  bool
}

// NewTagEvent builds an event for the given file ids. The set is copied.
func NewTagEvent(fileIDs map[int64]struct{}, tagged bool) TagEvent {
	ids := make(map[int64]struct{}, len(fileIDs))
	for id := range fileIDs {
		ids[id] = struct{}{}
	}
	return TagEvent{fileIDs: ids, tagged: tagged}
}

// FileIDs returns a fresh copy of the updated file id set.
func (e TagEvent) FileIDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(e.fileIDs))
	for id := range e.fileIDs {
		ids[id] = struct{}{}
	}
	return ids
}

// Tagged reports whether the files were tagged (true) or untagged (false).
func (e TagEvent) Tagged() bool { return e.tagged }
