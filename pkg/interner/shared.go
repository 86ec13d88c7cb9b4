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
	"sync"
)

// Shared is an interning pool owned by the caller.  Each pool has its own
// storage, hence handles from distinct pools are never PtrEq (though they may
// be Equal).  A Shared pool is safe for concurrent use.
type Shared[T any] struct {
	engine *engine[T]
	// handles pinning the values given at construction.
	pinned []*Handle[T]
	mux    sync.Mutex
}

// New constructs a new pool.  Unless a strategy is given, strings and byte
// slices are hashed with xxHash, whilst other types must be comparable.
func New[T any](opts ...Option[T]) *Shared[T] {
	return newShared(newConfig(opts))
}

func newShared[T any](cfg config[T]) *Shared[T] {
	var (
		engine = newEngine(cfg)
		pinned = make([]*Handle[T], len(cfg.values))
	)
	//
	for i, v := range cfg.values {
		pinned[i] = engine.Get(v, false)
		pinned[i].pin()
	}
	//
	return &Shared[T]{engine: engine, pinned: pinned}
}

// Get returns a handle to the pooled value equal to the given value, inserting
// it if necessary.  The given value is treated as borrowed: it is only retained
// if no equal value was found, and then only after being copied if the pool's
// strategy requires it (e.g. for byte slices).  While any handle to a value
// remains live, this is guaranteed to return a handle to the same slot.
func (p *Shared[T]) Get(value T) *Handle[T] {
	return p.engine.Get(value, false)
}

// GetOwned is like Get, except that ownership of the value passes to the pool
// if insertion is required, thus avoiding any copy.  The caller must not
// modify the value afterwards.
func (p *Shared[T]) GetOwned(value T) *Handle[T] {
	return p.engine.Get(value, true)
}

// Pooled returns a snapshot of all values currently held in the pool.  The
// values are ordered by slot.
func (p *Shared[T]) Pooled() []T {
	return p.engine.Pooled()
}

// PtrEq checks whether two handles refer to the same slot of the same pool.
func (p *Shared[T]) PtrEq(lhs *Handle[T], rhs *Handle[T]) bool {
	return PtrEq(lhs, rhs)
}

// Owns checks whether a given handle was obtained from this pool.
func (p *Shared[T]) Owns(handle *Handle[T]) bool {
	return handle.state.entry.pool == p.engine
}

// Len returns the number of distinct values currently held in the pool.
func (p *Shared[T]) Len() uint {
	p.engine.mux.RLock()
	defer p.engine.mux.RUnlock()
	//
	return p.engine.slots.Occupied()
}

// Stats returns a snapshot of the pool's current state.
func (p *Shared[T]) Stats() Stats {
	return p.engine.Stats()
}

// Unpin releases the handles which pinned the values given at construction.
// Those values then remain pooled only whilst other handles refer to them.
func (p *Shared[T]) Unpin() {
	p.mux.Lock()
	pinned := p.pinned
	p.pinned = nil
	p.mux.Unlock()
	//
	for _, h := range pinned {
		h.Release()
	}
}
