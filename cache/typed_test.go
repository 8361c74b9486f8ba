package cache

import (
	"reflect"
	"testing"
	"time"
)

func TestTyped(t *testing.T) {
	engine, store, clock := newTestEngine(t, "app_")
	view := NewTyped[[]string](engine, "history", time.Minute)

	if view.Key() != "history" {
		t.Errorf("unexpected key %q", view.Key())
	}
	if _, ok := view.Get(); ok {
		t.Error("expected miss on empty store")
	}
	if got := view.GetOr([]string{"fallback"}); !reflect.DeepEqual([]string{"fallback"}, got) {
		t.Errorf("expected fallback, got %v", got)
	}

	if !view.Set([]string{"btc"}) {
		t.Fatal("Set returned false")
	}
	if !view.Has() {
		t.Error("expected Has true after Set")
	}
	if _, ok := store.Raw("app_history"); !ok {
		t.Error("typed view must write through the engine namespace")
	}

	clock.Advance(2 * time.Minute)
	if view.Has() {
		t.Error("typed view must honour its ttl")
	}
}

func TestTyped_Update(t *testing.T) {
	engine, _, _ := newTestEngine(t, "app_")
	counter := NewTyped[int](engine, "counter", NoExpiry)

	var sawMissing bool
	next, ok := counter.Update(func(current int, found bool) int {
		sawMissing = !found
		return current + 1
	})
	if !ok || next != 1 || !sawMissing {
		t.Errorf("first update: next=%d ok=%v sawMissing=%v", next, ok, sawMissing)
	}

	next, _ = counter.Update(func(current int, found bool) int {
		if !found {
			t.Error("second update should see the stored value")
		}
		return current + 1
	})
	if next != 2 {
		t.Errorf("expected 2, got %d", next)
	}
	if v, _ := counter.Get(); v != 2 {
		t.Errorf("expected stored 2, got %d", v)
	}

	if !counter.Remove() || counter.Has() {
		t.Error("Remove should delete the value")
	}
}
