package bridge

import (
	"io"
	"sync"
)

// Handle is the opaque token handed to the host for a live session. The
// zero Handle never refers to a session.
type Handle uint64

// A Handle packs the slot index (plus one) into the lower 32 bits and the
// slot generation into the upper 32 bits. Reused slots get a new
// generation, so stale handles are detected instead of aliasing a newer
// session.
func makeHandle(idx, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(idx+1))
}

func (h Handle) split() (idx, gen uint32, ok bool) {
	low := uint32(h)
	if low == 0 {
		return 0, 0, false
	}
	return low - 1, uint32(h >> 32), true
}

// slot serializes the operations on one session. removed is set once the
// session has been taken out of the registry.
type slot struct {
	mu      sync.Mutex
	value   io.Closer
	removed bool
}

// Registry maps handles to sessions. It is safe for concurrent use;
// operations on the same handle are serialized, operations on different
// handles run in parallel.
type Registry struct {
	mu       sync.RWMutex
	slots    []*slot
	gens     []uint32
	freeList []uint32
	live     int
	closed   bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		slots:    make([]*slot, 0, 16),
		gens:     make([]uint32, 0, 16),
		freeList: make([]uint32, 0, 16),
	}
}

// Insert stores a session and returns its handle. Once the registry is
// closed, Insert returns the zero Handle.
func (r *Registry) Insert(v io.Closer) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0
	}

	s := &slot{value: v}
	r.live++

	if len(r.freeList) > 0 {
		idx := r.freeList[len(r.freeList)-1]
		r.freeList = r.freeList[:len(r.freeList)-1]
		r.gens[idx]++
		if r.gens[idx] == 0 {
			r.gens[idx] = 1
		}
		r.slots[idx] = s
		return makeHandle(idx, r.gens[idx])
	}

	r.slots = append(r.slots, s)
	r.gens = append(r.gens, 1)
	return makeHandle(uint32(len(r.slots)-1), 1)
}

func (r *Registry) lookup(h Handle) (*slot, bool) {
	idx, gen, ok := h.split()
	if !ok {
		return nil, false
	}
	if int(idx) >= len(r.slots) || r.gens[idx] != gen || r.slots[idx] == nil {
		return nil, false
	}
	return r.slots[idx], true
}

// With runs fn with the session behind h while holding the handle's lock.
// It returns false without calling fn if h does not refer to a live
// session.
func (r *Registry) With(h Handle, fn func(io.Closer)) bool {
	r.mu.RLock()
	s, ok := r.lookup(h)
	r.mu.RUnlock()
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removed {
		return false
	}
	fn(s.value)
	return true
}

// Get returns the session behind h without taking the handle's lock.
func (r *Registry) Get(h Handle) (io.Closer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.lookup(h)
	if !ok {
		return nil, false
	}
	return s.value, true
}

// Remove takes the session behind h out of the registry and closes it after
// all pending operations on the handle have finished. Removing an unknown
// handle returns false.
func (r *Registry) Remove(h Handle) (io.Closer, bool) {
	r.mu.Lock()
	s, ok := r.lookup(h)
	if ok {
		idx, _, _ := h.split()
		r.slots[idx] = nil
		r.freeList = append(r.freeList, idx)
		r.live--
	}
	r.mu.Unlock()
	if !ok {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = true
	s.value.Close()
	return s.value, true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.live
}

// Close removes and closes all sessions. Afterwards the registry does not
// accept new sessions.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true

	var handles []Handle
	for idx, s := range r.slots {
		if s != nil {
			handles = append(handles, makeHandle(uint32(idx), r.gens[idx]))
		}
	}
	r.mu.Unlock()

	for _, h := range handles {
		r.Remove(h)
	}
	return nil
}
