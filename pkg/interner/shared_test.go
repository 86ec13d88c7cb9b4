// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package interner

import (
	"fmt"
	"path/filepath"
	"slices"
	"testing"

	"github.com/khonsulabs/interner/pkg/util/collection/hash"
)

func Test_Shared_01(t *testing.T) {
	pool := New[string]()
	h1 := pool.Get("hello")
	h2 := pool.Get("hello")
	//
	if !PtrEq(h1, h2) || !pool.PtrEq(h1, h2) {
		t.Errorf("expected %#v and %#v to share a slot", h1, h2)
	}
	//
	check_Pooled(t, pool, "hello")
	// Releasing one handle leaves the value pooled
	h1.Release()
	check_Pooled(t, pool, "hello")
	// Releasing the last handle removes it
	h2.Release()
	check_Pooled(t, pool)
	check_Invariants(t, pool)
}

func Test_Shared_02(t *testing.T) {
	pool := New[string]()
	a := pool.Get("a")
	b := pool.Get("b")
	slot := a.ID().Slot
	//
	a.Release()
	// Slot freed by "a" is reused
	c := pool.Get("c")
	//
	if c.ID().Slot != slot {
		t.Errorf("expected slot %d to be reused, got %d", slot, c.ID().Slot)
	}
	//
	check_Pooled(t, pool, "c", "b")
	check_Invariants(t, pool)
	//
	b.Release()
	c.Release()
	check_Pooled(t, pool)
}

func Test_Shared_03(t *testing.T) {
	p1 := New[string]()
	p2 := New[string]()
	h1 := p1.Get("x")
	h2 := p2.Get("x")
	// Equal values, but distinct storage
	if PtrEq(h1, h2) {
		t.Errorf("handles from distinct pools cannot share a slot")
	} else if !h1.Equals(h2) || !h2.Equals(h1) {
		t.Errorf("handles with equal values should be equal")
	} else if !p1.Owns(h1) || p1.Owns(h2) {
		t.Errorf("incorrect pool ownership")
	}
	// Hash-based lookups across pools generally fail.
	set := hash.NewSet[*Handle[string]](4)
	set.Insert(h1)
	//
	if set.Contains(h2) {
		t.Errorf("unexpected cross-pool lookup of %#v", h2)
	} else if !set.Contains(h1) {
		t.Errorf("missing %#v", h1)
	}
	//
	h1.Release()
	h2.Release()
}

func Test_Shared_04(t *testing.T) {
	pool := New[string]()
	h1 := pool.Get("value")
	h2 := h1.Clone()
	// Clones share the slot, and keep the value alive
	if !PtrEq(h1, h2) {
		t.Errorf("clone refers to a different slot")
	}
	//
	h1.Release()
	//
	if h2.Value() != "value" {
		t.Errorf("expected \"value\", got %q", h2.Value())
	}
	//
	check_Pooled(t, pool, "value")
	h2.Release()
	check_Pooled(t, pool)
}

func Test_Shared_05(t *testing.T) {
	pool := New[string]()
	h := pool.Get("gone")
	h.Release()
	// Releasing twice has no further effect
	h.Release()
	//
	if !h.Released() {
		t.Errorf("handle should be released")
	}
	//
	check_Panics(t, func() { h.Value() })
	check_Panics(t, func() { h.Clone() })
	check_Invariants(t, pool)
}

func Test_Shared_06(t *testing.T) {
	pool := New[string]()
	h1 := pool.Get("a")
	h2 := pool.Get("b")
	h3 := pool.Get("a")
	// Handle equality within a pool is slot identity
	if !h1.Equals(h3) || h1.Equals(h2) {
		t.Errorf("incorrect handle equality")
	} else if h1.Hash() != h3.Hash() {
		t.Errorf("equal handles must have equal hashcodes")
	} else if h1.ID() != h3.ID() || h1.ID() == h2.ID() {
		t.Errorf("incorrect handle identifiers")
	}
	// Identifiers are usable as map keys
	ids := map[ID]string{h1.ID(): "a", h2.ID(): "b"}
	//
	if ids[h3.ID()] != "a" {
		t.Errorf("lookup of %v failed", h3.ID())
	}
	//
	h1.Release()
	h2.Release()
	h3.Release()
}

func Test_Shared_07(t *testing.T) {
	pool := New[string]()
	h := pool.Get("hello")
	//
	check_Format(t, "hello", fmt.Sprint(h))
	check_Format(t, "hello", fmt.Sprintf("%v", h))
	check_Format(t, fmt.Sprintf("Handle{value: \"hello\", slot: 0, pool: %d}", h.ID().Pool), fmt.Sprintf("%#v", h))
	//
	h.Release()
}

func Test_Shared_08(t *testing.T) {
	pool := New(WithValues("a", "b"))
	// Seed values are pinned
	check_Pooled(t, pool, "a", "b")
	//
	h := pool.Get("a")
	h.Release()
	check_Pooled(t, pool, "a", "b")
	// Unpinned values are reclaimed once unreferenced
	h = pool.Get("b")
	pool.Unpin()
	check_Pooled(t, pool, "b")
	h.Release()
	check_Pooled(t, pool)
	// Unpinning again has no effect
	pool.Unpin()
	check_Invariants(t, pool)
}

func Test_Shared_09(t *testing.T) {
	pool := New[[]byte]()
	buf := []byte("hello")
	h1 := pool.Get(buf)
	// Borrowed buffers are copied on insertion
	buf[0] = 'j'
	//
	if string(h1.Value()) != "hello" {
		t.Errorf("pooled value aliases caller buffer (%q)", h1.Value())
	}
	//
	h2 := pool.Get([]byte("hello"))
	h3 := pool.Get(buf)
	//
	if !PtrEq(h1, h2) || PtrEq(h1, h3) {
		t.Errorf("incorrect buffer interning")
	}
	//
	h1.Release()
	h2.Release()
	h3.Release()
	check_Invariants(t, pool)
}

func Test_Shared_10(t *testing.T) {
	pool := New[[]byte]()
	buf := []byte("owned")
	h := pool.GetOwned(buf)
	// Owned buffers are retained as given
	if &h.Value()[0] != &buf[0] {
		t.Errorf("owned buffer was copied")
	}
	//
	h.Release()
}

func Test_Shared_11(t *testing.T) {
	type point struct{ x, y int }
	//
	pool := New[point]()
	h1 := pool.Get(point{1, 2})
	h2 := pool.Get(point{1, 2})
	h3 := pool.Get(point{2, 1})
	//
	if !PtrEq(h1, h2) || PtrEq(h1, h3) {
		t.Errorf("incorrect struct interning")
	}
	//
	h1.Release()
	h2.Release()
	h3.Release()
	check_Invariants(t, pool)
}

func Test_Shared_12(t *testing.T) {
	// Non-comparable types require a strategy
	check_Panics(t, func() { New[[]int]() })
	check_Panics(t, func() { New[map[string]int]() })
}

func Test_Shared_13(t *testing.T) {
	// Degenerate strategy forcing every value to collide
	pool := New(WithStrategy[uint](collidingStrategy{}))
	handles := make([]*Handle[uint], 100)
	//
	for i := range handles {
		handles[i] = pool.Get(uint(i))
	}
	//
	for i := range handles {
		h := pool.Get(uint(i))
		//
		if !PtrEq(h, handles[i]) || h.Value() != uint(i) {
			t.Errorf("collision misresolved for %d", i)
		}
		//
		h.Release()
	}
	//
	check_Invariants(t, pool)
	//
	for _, h := range handles {
		h.Release()
	}
	//
	check_Pooled(t, pool)
	check_Invariants(t, pool)
}

func Test_Shared_14(t *testing.T) {
	for _, algorithm := range hash.Algorithms {
		pool := New(WithStrategy[string](hash.Strings(algorithm)), WithName[string](algorithm.Name()))
		check_RoundTrip(t, pool, util_strings(500))
	}
}

func Test_Shared_15(t *testing.T) {
	pool := New(WithCapacity[string](64))
	values := util_strings(64)
	handles := make([]*Handle[string], len(values))
	//
	for i, v := range values {
		handles[i] = pool.Get(v)
	}
	// Presized pool never needs to grow
	if stats := pool.Stats(); stats.Slots != 64 || stats.Buckets != numOfBuckets(64) {
		t.Errorf("unexpected growth: %s", stats)
	}
	//
	for _, h := range handles {
		h.Release()
	}
}

func Test_Shared_16(t *testing.T) {
	pool := New[string]()
	h1 := pool.Get("a")
	h2 := pool.Get("a")
	h3 := pool.Get("b")
	h3.Release()
	//
	stats := pool.Stats()
	//
	if stats.Hits != 1 || stats.Misses != 2 || stats.Reclaimed != 1 {
		t.Errorf("unexpected counters: %s", stats)
	} else if stats.Slots != 2 || stats.Occupied != 1 || stats.Free != 1 {
		t.Errorf("unexpected slots: %s", stats)
	} else if stats.Pool != h1.ID().Pool {
		t.Errorf("unexpected pool %d", stats.Pool)
	} else if r := stats.HitRatio(); r < 0.33 || r > 0.34 {
		t.Errorf("unexpected hit ratio %f", r)
	}
	//
	h1.Release()
	h2.Release()
}

func Test_Shared_17(t *testing.T) {
	pool := New[string]()
	values := util_strings(1000)
	handles := make([]*Handle[string], len(values))
	// Insert all values, then release every other one.
	for i, v := range values {
		handles[i] = pool.Get(v)
	}
	//
	for i := 0; i < len(handles); i += 2 {
		handles[i].Release()
	}
	//
	check_Invariants(t, pool)
	// Reinsert released values, which must reuse freed slots.
	slots := pool.Stats().Slots
	//
	for i := 0; i < len(handles); i += 2 {
		handles[i] = pool.Get(values[i])
	}
	//
	if pool.Stats().Slots != slots {
		t.Errorf("free slots not reused (%d slots, was %d)", pool.Stats().Slots, slots)
	}
	//
	check_Invariants(t, pool)
	//
	for _, h := range handles {
		h.Release()
	}
	//
	check_Pooled(t, pool)
}

func Test_PathPool_01(t *testing.T) {
	pool := NewPathPool(WithValues("/usr/lib/../bin"))
	h1 := pool.Get("/usr/bin")
	h2 := pool.Get("/usr//bin/")
	h3 := pool.Get("/usr/./bin/.")
	//
	if !pool.PtrEq(h1, h2) || !pool.PtrEq(h1, h3) {
		t.Errorf("equivalent paths not interned together")
	}
	// Parent components are not resolved
	h4 := pool.Get("/usr/lib/../bin")
	//
	if pool.PtrEq(h1, h4) {
		t.Errorf("%#v and %#v should be distinct", h1, h4)
	}
	//
	check_Values(t, pool.Pooled(), "/usr/lib/../bin", "/usr/bin")
	//
	h1.Release()
	h2.Release()
	h3.Release()
	h4.Release()
	// Seed value remains pinned
	if pool.Stats().Occupied != 1 {
		t.Errorf("seed path not pinned")
	}
}

func Test_PathPool_02(t *testing.T) {
	check_NormalisePath(t, "", "")
	check_NormalisePath(t, ".", ".")
	check_NormalisePath(t, "/", "/")
	check_NormalisePath(t, "a/", "a")
	check_NormalisePath(t, "./a//b", "./a/b")
	check_NormalisePath(t, "a/./b/.", "a/b")
	check_NormalisePath(t, "//a/../b/", "/a/../b")
	check_NormalisePath(t, "/./.", "/")
}

func Test_StringPool_01(t *testing.T) {
	pool := NewStringPool(WithStrategy[string](hash.Strings(hash.FNV1a)))
	check_RoundTrip(t, pool, util_strings(100))
}

func Test_BufferPool_01(t *testing.T) {
	pool := NewBufferPool()
	h1 := pool.Get(nil)
	h2 := pool.Get([]byte{})
	// Empty and nil buffers are interned together
	if !PtrEq(h1, h2) || h1.Value() == nil {
		t.Errorf("empty buffer misinterned")
	}
	//
	h1.Release()
	h2.Release()
}

// ===================================================================
// Test Helpers
// ===================================================================

type collidingStrategy struct{}

func (collidingStrategy) Hash(uint) uint64 {
	return 0
}

func (collidingStrategy) Equal(lhs uint, rhs uint) bool {
	return lhs == rhs
}

func util_strings(n int) []string {
	values := make([]string, n)
	//
	for i := range values {
		values[i] = fmt.Sprintf("value_%d", i)
	}
	//
	return values
}

// Intern every value twice, check the pool contents, then release everything.
func check_RoundTrip(t *testing.T, pool *Shared[string], values []string) {
	t.Helper()
	//
	var handles []*Handle[string]
	//
	for range 2 {
		for _, v := range values {
			h := pool.Get(v)
			//
			if h.Value() != v {
				t.Errorf("expected %q, got %q", v, h.Value())
			}
			//
			handles = append(handles, h)
		}
	}
	//
	for i, v := range values {
		if !PtrEq(handles[i], handles[i+len(values)]) {
			t.Errorf("value %q interned twice", v)
		}
	}
	//
	pooled := pool.Pooled()
	slices.Sort(pooled)
	expected := slices.Clone(values)
	slices.Sort(expected)
	check_Values(t, pooled, expected...)
	check_Invariants(t, pool)
	//
	for _, h := range handles {
		h.Release()
	}
	//
	check_Pooled(t, pool)
	check_Invariants(t, pool)
}

func check_Pooled[T comparable](t *testing.T, pool *Shared[T], expected ...T) {
	t.Helper()
	//
	check_Values(t, pool.Pooled(), expected...)
	//
	if pool.Len() != uint(len(expected)) {
		t.Errorf("expected %d values, got %d", len(expected), pool.Len())
	}
}

func check_NormalisePath(t *testing.T, path string, expected string) {
	t.Helper()
	//
	expected = filepath.FromSlash(expected)
	//
	if actual := normalisePath(filepath.FromSlash(path)); actual != expected {
		t.Errorf("normalising %q: expected %q, got %q", path, expected, actual)
	}
}

func check_Format(t *testing.T, expected string, actual string) {
	t.Helper()
	//
	if expected != actual {
		t.Errorf("expected %s, got %s", expected, actual)
	}
}

// Check the slot store, free list and lookup index agree with each other.
func check_Invariants[T any](t *testing.T, pool *Shared[T]) {
	t.Helper()
	//
	engine := pool.engine
	engine.mux.RLock()
	defer engine.mux.RUnlock()
	//
	var (
		slots = &engine.slots
		index = &engine.index
		free  = make(map[uint32]bool)
	)
	// Walk free list
	for id := slots.free; id != NO_FREE_SLOT; id = slots.slots[id].next {
		if free[id] {
			t.Fatalf("free list contains cycle at slot %d", id)
		} else if slots.slots[id].entry != nil {
			t.Errorf("occupied slot %d on free list", id)
		}
		//
		free[id] = true
	}
	//
	if uint(len(free)) != slots.Free() {
		t.Errorf("free list has %d slots, expected %d", len(free), slots.Free())
	}
	// Every occupied slot is indexed exactly once, under its own hash
	for id, s := range slots.slots {
		if s.entry == nil {
			if !free[uint32(id)] {
				t.Errorf("free slot %d not on free list", id)
			}
			//
			continue
		} else if s.entry.slot != uint32(id) {
			t.Errorf("slot %d holds entry for slot %d", id, s.entry.slot)
		} else if s.entry.refs.Load() <= 0 {
			t.Errorf("slot %d holds unreferenced entry", id)
		}
		//
		count := 0
		//
		for _, ie := range index.Bucket(s.entry.hash) {
			if ie.slot == uint32(id) {
				count++
			}
		}
		//
		if count != 1 {
			t.Errorf("slot %d indexed %d times", id, count)
		}
	}
	//
	if index.Len() != slots.Occupied() {
		t.Errorf("index has %d entries, expected %d", index.Len(), slots.Occupied())
	}
}
