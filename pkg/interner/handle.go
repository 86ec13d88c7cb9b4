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
	"runtime"

	"github.com/khonsulabs/interner/pkg/util/collection/hash"
	"go.uber.org/atomic"
)

// Handle is a reference counted pointer to a value held in a pool.  Handles are
// obtained from a pool (or by cloning an existing handle), and must be released
// exactly once when no longer required.  Releasing the last handle to a value
// removes the value from its pool.  Handles which become unreachable without
// being released are released by the garbage collector, though callers should
// not rely on this for timely reclamation.
//
// Handles compare by identity within a pool, and by value across pools.  Their
// hashcode is derived solely from their pool and slot, not from the value.
// Hence, handles from different pools should not be mixed as keys in the same
// hash-based collection, since equal handles from distinct pools will
// (generally) have different hashcodes.
type Handle[T any] struct {
	state   *handleState[T]
	cleanup runtime.Cleanup
}

var _ hash.Hasher[*Handle[string]] = &Handle[string]{}

// ID uniquely identifies a slot occupancy within the process.  This is a
// comparable value which can be used as the key of a Go map.  The same
// restrictions on mixing pools apply as for Handle.Hash.
type ID struct {
	Pool uint64
	Slot uint32
}

// The state of a handle is separate from the handle itself, such that it can
// be passed to the cleanup function without keeping the handle reachable.
type handleState[T any] struct {
	entry    *entry[T]
	released atomic.Bool
}

func newHandle[T any](e *entry[T]) *Handle[T] {
	state := &handleState[T]{entry: e}
	handle := &Handle[T]{state: state}
	handle.cleanup = runtime.AddCleanup(handle, (*handleState[T]).release, state)
	//
	return handle
}

// Value returns the interned value.  The value must not be modified.  It is an
// error to call this on a released handle.
func (h *Handle[T]) Value() T {
	value := h.live().value
	// Handle must outlive the read, otherwise its cleanup could reclaim the
	// entry underneath us.
	runtime.KeepAlive(h)
	//
	return value
}

// Clone returns a new handle to the same value, incrementing the reference
// count.  This never touches the pool itself.  It is an error to clone a
// released handle.
func (h *Handle[T]) Clone() *Handle[T] {
	e := h.live()
	e.refs.Inc()
	// Handle must outlive the increment (see Value).
	runtime.KeepAlive(h)
	//
	return newHandle(e)
}

// Release this handle.  Subsequent calls have no effect.
func (h *Handle[T]) Release() {
	h.cleanup.Stop()
	h.state.release()
}

// Released checks whether this handle has been released (or not).
func (h *Handle[T]) Released() bool {
	return h.state.released.Load()
}

// ID returns the identifier of the slot occupancy this handle refers to.
func (h *Handle[T]) ID() ID {
	e := h.state.entry
	return ID{e.pool.id, e.slot}
}

// Equals checks whether two handles are equal.  Handles from the same pool are
// equal iff they refer to the same entry, whilst handles from different pools
// are equal iff their values are equal.  Comparing handles from different
// pools requires both to be live.
func (h *Handle[T]) Equals(other *Handle[T]) bool {
	var (
		lhs = h.state.entry
		rhs = other.state.entry
	)
	//
	if lhs.pool == rhs.pool {
		return lhs == rhs
	}
	//
	r := lhs.pool.strategy.Equal(h.live().value, other.live().value)
	runtime.KeepAlive(h)
	runtime.KeepAlive(other)
	//
	return r
}

// Hash returns a hashcode derived from the pool and slot of this handle.
func (h *Handle[T]) Hash() uint64 {
	e := h.state.entry
	return e.pool.id<<32 ^ uint64(e.slot)
}

func (h *Handle[T]) String() string {
	return fmt.Sprint(h.Value())
}

// GoString renders the handle along with its slot and pool, for use with the
// %#v verb.
func (h *Handle[T]) GoString() string {
	e := h.state.entry
	return fmt.Sprintf("Handle{value: %#v, slot: %d, pool: %d}", h.Value(), e.slot, e.pool.id)
}

// PtrEq checks whether two handles refer to the same slot of the same pool.
// This is strictly stronger than Equals, and never compares values.
func PtrEq[T any](lhs *Handle[T], rhs *Handle[T]) bool {
	return lhs.state.entry == rhs.state.entry
}

// Pin this handle such that it is never released, even if it becomes
// unreachable.
func (h *Handle[T]) pin() {
	h.cleanup.Stop()
}

func (h *Handle[T]) live() *entry[T] {
	if h.state.released.Load() {
		e := h.state.entry
		panic(fmt.Sprintf("use of released handle (pool %d, slot %d)", e.pool.id, e.slot))
	}
	//
	return h.state.entry
}

func (s *handleState[T]) release() {
	if s.released.CompareAndSwap(false, true) {
		s.entry.pool.Release(s.entry)
	}
}
