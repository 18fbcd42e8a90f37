// Package thinker keeps the list of objects that are updated once per game tick.
//
// Thinkers live in a slot arena and are addressed by generational IDs, so a
// handle to a removed thinker never resolves to whatever later reuses its
// slot. Iteration order is insertion order. Removing a thinker while the
// registry is being iterated only marks it dead; the slot is reclaimed when
// the outermost iteration finishes.
package thinker

// ID is a stable handle to a thinker. The zero ID refers to nothing.
type ID struct {
	index uint32
	gen   uint32
}

// IsZero reports whether id refers to nothing.
func (id ID) IsZero() bool {
	return id.gen == 0
}

// Index returns the slot index of the thinker. Only meaningful while the
// thinker is alive.
func (id ID) Index() int {
	return int(id.index)
}

type slotState uint8

const (
	slotFree slotState = iota
	slotLive
	slotDead // removed during iteration, awaiting sweep
)

const none = -1

type slot[T any] struct {
	value      T
	gen        uint32
	prev, next int32
	state      slotState
	stasis     bool
}

// Registry is a doubly linked list of thinkers stored in a growable arena.
// The zero value is not usable; call New.
type Registry[T any] struct {
	slots      []slot[T]
	head, tail int32
	free       []int32
	live       int
	iterating  int
	dead       int
}

// New returns an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{head: none, tail: none}
}

// Add appends v to the end of the list and returns its ID.
func (r *Registry[T]) Add(v T) ID {
	var idx int32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.slots = append(r.slots, slot[T]{})
		idx = int32(len(r.slots) - 1)
	}
	s := &r.slots[idx]
	s.gen++
	if s.gen == 0 { // Wrapped; generation zero is reserved for the zero ID
		s.gen = 1
	}
	s.value = v
	s.state = slotLive
	s.stasis = false
	s.next = none
	s.prev = r.tail
	if r.tail != none {
		r.slots[r.tail].next = idx
	} else {
		r.head = idx
	}
	r.tail = idx
	r.live++
	return ID{index: uint32(idx), gen: s.gen}
}

// Remove takes the thinker out of the registry. It reports whether id
// referred to a live thinker.
func (r *Registry[T]) Remove(id ID) bool {
	s := r.lookup(id)
	if s == nil {
		return false
	}
	r.live--
	if r.iterating > 0 {
		s.state = slotDead
		r.dead++
		return true
	}
	r.unlink(int32(id.index))
	return true
}

// Get returns the thinker for id.
func (r *Registry[T]) Get(id ID) (T, bool) {
	s := r.lookup(id)
	if s == nil {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Live reports whether id refers to a thinker that has not been removed.
func (r *Registry[T]) Live(id ID) bool {
	return r.lookup(id) != nil
}

// SetStasis pauses or resumes a thinker without removing it.
func (r *Registry[T]) SetStasis(id ID, on bool) bool {
	s := r.lookup(id)
	if s == nil {
		return false
	}
	s.stasis = on
	return true
}

// InStasis reports whether the thinker is paused.
func (r *Registry[T]) InStasis(id ID) bool {
	s := r.lookup(id)
	return s != nil && s.stasis
}

// Len returns the number of live thinkers.
func (r *Registry[T]) Len() int {
	return r.live
}

// ForEach calls fn for each live thinker accepted by filter, in insertion
// order. A nil filter accepts everything. Thinkers in stasis are included.
// Iteration stops when fn returns false.
func (r *Registry[T]) ForEach(filter func(T) bool, fn func(ID, T) bool) {
	r.walk(false, func(id ID, v T) bool {
		if filter != nil && !filter(v) {
			return true
		}
		return fn(id, v)
	})
}

// Run calls fn for every live thinker that is not in stasis. It is the
// per-tick pass.
func (r *Registry[T]) Run(fn func(ID, T)) {
	r.walk(true, func(id ID, v T) bool {
		fn(id, v)
		return true
	})
}

// IDs returns the IDs of all live thinkers in iteration order.
func (r *Registry[T]) IDs() []ID {
	ids := make([]ID, 0, r.live)
	r.ForEach(nil, func(id ID, _ T) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// Clear removes every thinker. It must not be called during iteration.
func (r *Registry[T]) Clear() {
	if r.iterating > 0 {
		panic("thinker: Clear called during iteration")
	}
	for i := range r.slots {
		s := &r.slots[i]
		if s.state == slotFree {
			continue
		}
		var zero T
		s.value = zero
		s.state = slotFree
		s.stasis = false
		r.free = append(r.free, int32(i))
	}
	r.head, r.tail = none, none
	r.live = 0
	r.dead = 0
}

func (r *Registry[T]) walk(skipStasis bool, fn func(ID, T) bool) {
	r.iterating++
	defer func() {
		r.iterating--
		if r.iterating == 0 && r.dead > 0 {
			r.sweep()
		}
	}()

	// Links of dead slots stay intact until the sweep, so following next
	// from a thinker that removed itself is safe.
	for i := r.head; i != none; i = r.slots[i].next {
		s := &r.slots[i]
		if s.state != slotLive || (skipStasis && s.stasis) {
			continue
		}
		if !fn(ID{index: uint32(i), gen: s.gen}, s.value) {
			return
		}
	}
}

func (r *Registry[T]) sweep() {
	i := r.head
	for i != none {
		next := r.slots[i].next
		if r.slots[i].state == slotDead {
			r.unlink(i)
		}
		i = next
	}
	r.dead = 0
}

func (r *Registry[T]) unlink(i int32) {
	s := &r.slots[i]
	if s.prev != none {
		r.slots[s.prev].next = s.next
	} else {
		r.head = s.next
	}
	if s.next != none {
		r.slots[s.next].prev = s.prev
	} else {
		r.tail = s.prev
	}
	var zero T
	s.value = zero
	s.state = slotFree
	s.stasis = false
	s.prev, s.next = none, none
	r.free = append(r.free, i)
}

func (r *Registry[T]) lookup(id ID) *slot[T] {
	if id.gen == 0 || int(id.index) >= len(r.slots) {
		return nil
	}
	s := &r.slots[id.index]
	if s.gen != id.gen || s.state != slotLive {
		return nil
	}
	return s
}
