package thinker

import (
	"reflect"
	"testing"
)

type mover struct {
	name      string
	direction int
	countdown int
}

func names(r *Registry[*mover]) []string {
	var out []string
	r.ForEach(nil, func(_ ID, m *mover) bool {
		out = append(out, m.name)
		return true
	})
	return out
}

func TestAddKeepsInsertionOrder(t *testing.T) {
	r := New[*mover]()
	for _, n := range []string{"a", "b", "c"} {
		r.Add(&mover{name: n})
	}
	if got, want := names(r), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}
}

func TestRemoveOutsideIteration(t *testing.T) {
	r := New[*mover]()
	a := r.Add(&mover{name: "a"})
	b := r.Add(&mover{name: "b"})
	c := r.Add(&mover{name: "c"})

	if !r.Remove(b) {
		t.Fatal("Remove(b) = false")
	}
	if r.Remove(b) {
		t.Fatal("second Remove(b) = true")
	}
	if got, want := names(r), []string{"a", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	r.Remove(a)
	r.Remove(c)
	if r.Len() != 0 || len(names(r)) != 0 {
		t.Fatalf("registry not empty: %v", names(r))
	}
}

func TestStaleIDDoesNotResolve(t *testing.T) {
	r := New[*mover]()
	old := r.Add(&mover{name: "old"})
	r.Remove(old)
	fresh := r.Add(&mover{name: "fresh"})

	if old.Index() != fresh.Index() {
		t.Fatalf("slot not reused: %d vs %d", old.Index(), fresh.Index())
	}
	if _, ok := r.Get(old); ok {
		t.Fatal("stale ID resolved")
	}
	if m, ok := r.Get(fresh); !ok || m.name != "fresh" {
		t.Fatalf("Get(fresh) = %v, %v", m, ok)
	}
	var zero ID
	if !zero.IsZero() || r.Live(zero) {
		t.Fatal("zero ID should refer to nothing")
	}
}

func TestRemoveSelfDuringRun(t *testing.T) {
	r := New[*mover]()
	for _, n := range []string{"a", "b", "c", "d"} {
		r.Add(&mover{name: n})
	}
	var visited []string
	r.Run(func(id ID, m *mover) {
		visited = append(visited, m.name)
		if m.name == "b" || m.name == "d" {
			r.Remove(id)
		}
	})
	if want := []string{"a", "b", "c", "d"}; !reflect.DeepEqual(visited, want) {
		t.Fatalf("visited = %v, want %v", visited, want)
	}
	if got, want := names(r), []string{"a", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after sweep = %v, want %v", got, want)
	}
	if r.dead != 0 {
		t.Fatalf("dead = %d after sweep", r.dead)
	}
}

func TestRemoveOtherDuringRunSkipsIt(t *testing.T) {
	r := New[*mover]()
	r.Add(&mover{name: "a"})
	b := r.Add(&mover{name: "b"})
	r.Add(&mover{name: "c"})

	var visited []string
	r.Run(func(id ID, m *mover) {
		visited = append(visited, m.name)
		if m.name == "a" {
			r.Remove(b)
		}
	})
	if want := []string{"a", "c"}; !reflect.DeepEqual(visited, want) {
		t.Fatalf("visited = %v, want %v", visited, want)
	}
}

func TestAddDuringRunIsVisited(t *testing.T) {
	r := New[*mover]()
	r.Add(&mover{name: "a"})
	var visited []string
	r.Run(func(_ ID, m *mover) {
		visited = append(visited, m.name)
		if m.name == "a" {
			r.Add(&mover{name: "spawned"})
		}
	})
	if want := []string{"a", "spawned"}; !reflect.DeepEqual(visited, want) {
		t.Fatalf("visited = %v, want %v", visited, want)
	}
}

func TestForEachEarlyExitAndFilter(t *testing.T) {
	r := New[*mover]()
	for _, n := range []string{"door", "plat", "door", "plat"} {
		r.Add(&mover{name: n})
	}
	count := 0
	r.ForEach(func(m *mover) bool { return m.name == "plat" }, func(_ ID, m *mover) bool {
		count++
		return false
	})
	if count != 1 {
		t.Fatalf("callback ran %d times, want 1", count)
	}
}

func TestNestedIterationDefersSweep(t *testing.T) {
	r := New[*mover]()
	a := r.Add(&mover{name: "a"})
	r.Add(&mover{name: "b"})

	r.ForEach(nil, func(_ ID, outer *mover) bool {
		r.ForEach(nil, func(id ID, inner *mover) bool {
			if id == a {
				r.Remove(id)
			}
			return true
		})
		// Still mid-iteration: the slot must not have been reclaimed yet.
		if r.slots[a.index].state != slotDead && outer.name == "a" {
			t.Errorf("slot reclaimed during outer iteration")
		}
		return true
	})
	if got, want := names(r), []string{"b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after sweep = %v, want %v", got, want)
	}
}

func TestStasisSkipsRunButNotForEach(t *testing.T) {
	r := New[*mover]()
	id := r.Add(&mover{name: "crusher", direction: -1, countdown: 42})
	r.Add(&mover{name: "door"})

	before := *mustGet(t, r, id)
	r.SetStasis(id, true)
	if !r.InStasis(id) {
		t.Fatal("InStasis = false after SetStasis(true)")
	}
	var ran []string
	r.Run(func(_ ID, m *mover) { ran = append(ran, m.name) })
	if want := []string{"door"}; !reflect.DeepEqual(ran, want) {
		t.Fatalf("Run visited %v, want %v", ran, want)
	}
	if got := names(r); len(got) != 2 {
		t.Fatalf("ForEach visited %v, want both", got)
	}
	r.SetStasis(id, false)
	if after := *mustGet(t, r, id); after != before {
		t.Fatalf("state changed across stasis: %+v -> %+v", before, after)
	}
}

func TestClear(t *testing.T) {
	r := New[*mover]()
	id := r.Add(&mover{name: "a"})
	r.Add(&mover{name: "b"})
	r.Clear()
	if r.Len() != 0 || r.Live(id) {
		t.Fatal("Clear left live thinkers")
	}
	r.Add(&mover{name: "c"})
	if got, want := names(r), []string{"c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after Clear+Add = %v, want %v", got, want)
	}
}

func mustGet(t *testing.T, r *Registry[*mover], id ID) *mover {
	t.Helper()
	m, ok := r.Get(id)
	if !ok {
		t.Fatalf("Get(%v) failed", id)
	}
	return m
}
