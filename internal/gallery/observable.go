package gallery

import "sync"

// observable is an invalidation signal: subscribers learn that something
// changed and re-read the value themselves. Notifications run on whichever
// goroutine performed the mutation, so callbacks that touch UI state must
// marshal onto the UI loop.
type observable struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()
}

// subscribe registers fn and returns an unsubscribe handle. The handle is
// idempotent.
func (o *observable) subscribe(fn func()) (unsub func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.subs == nil {
		o.subs = map[int]func(){}
	}
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}

func (o *observable) notify() {
	o.mu.Lock()
	fns := make([]func(), 0, len(o.subs))
	for _, fn := range o.subs {
		fns = append(fns, fn)
	}
	o.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
