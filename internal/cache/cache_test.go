package cache

import (
	"errors"
	"testing"
)

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []int
	c := New[int, string](3, func(k int, _ string) { evicted = append(evicted, k) })
	c.Set(1, "a")
	c.Set(2, "b")
	c.Set(3, "c")
	if _, ok := c.Get(1); !ok {
		t.Fatal("entry 1 missing")
	}
	c.Set(4, "d")

	if len(evicted) != 1 || evicted[0] != 2 {
		t.Fatalf("evicted = %v, want [2]", evicted)
	}
	if c.Contains(2) || !c.Contains(1) || !c.Contains(4) {
		t.Error("wrong entry evicted")
	}
	if s := c.Stats(); s.Len != 3 || s.Evictions != 1 || s.Hits != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestGetOrCreate(t *testing.T) {
	c := New[string, int](0, nil)
	if c.Capacity() != DefaultCapacity {
		t.Errorf("capacity = %d, want %d", c.Capacity(), DefaultCapacity)
	}
	calls := 0
	create := func() (int, error) {
		calls++
		return 42, nil
	}
	for i := 0; i < 3; i++ {
		v, err := c.GetOrCreate("k", create)
		if err != nil || v != 42 {
			t.Fatalf("GetOrCreate = %v, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	failure := errors.New("boom")
	if _, err := c.GetOrCreate("bad", func() (int, error) { return 0, failure }); !errors.Is(err, failure) {
		t.Errorf("err = %v, want %v", err, failure)
	}
	if c.Contains("bad") {
		t.Error("failed creation was cached")
	}
	s := c.Stats()
	if s.Hits != 2 || s.Misses != 2 {
		t.Errorf("stats = %+v", s)
	}
}

func TestClearRunsCallback(t *testing.T) {
	released := 0
	c := New[int, int](8, func(int, int) { released++ })
	for i := 0; i < 5; i++ {
		c.Set(i, i)
	}
	if !c.Delete(0) {
		t.Error("Delete(0) = false")
	}
	c.Clear()
	if released != 5 || c.Len() != 0 {
		t.Errorf("released = %d, len = %d", released, c.Len())
	}
}
