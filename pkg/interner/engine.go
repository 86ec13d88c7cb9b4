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
	"sync"

	"github.com/khonsulabs/interner/pkg/util/collection/hash"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Source of pool identities.  Identities start from one, such that the zero
// identity never refers to a live pool.
var poolIds atomic.Uint64

// entry holds a single interned value for the duration of one occupancy of a
// slot.  Handles refer to the entry, rather than to the slot directly, so that
// a handle whose slot was since reused can never observe the new occupant.
type entry[T any] struct {
	// interned value (immutable)
	value T
	// hashcode of value
	hash uint64
	// slot occupied by this entry
	slot uint32
	// number of live handles referring to this entry
	refs atomic.Int64
	// pool which owns this entry
	pool *engine[T]
}

// engine coordinates the slot store, the lookup index and the free list (which
// is threaded through the slot store).  All three are protected by a single
// RWMutex.  Lookups which hit an existing entry only require the read lock,
// since the transition of an entry's reference count to zero always happens
// under the write lock.
type engine[T any] struct {
	// identity of this pool
	id uint64
	// label used for logging
	name string
	// strategy for hashing / comparing values
	strategy hash.Strategy[T]
	// slots holding entries (and the free list)
	slots slotStore[T]
	// index from hashcodes to slots
	index lookupIndex
	// mutex required to ensure thread safety.
	mux sync.RWMutex
	// statistics
	hits, misses, reclaimed atomic.Uint64
}

func newEngine[T any](cfg config[T]) *engine[T] {
	return &engine[T]{
		id:       poolIds.Inc(),
		name:     cfg.name,
		strategy: cfg.strategy,
		slots:    newSlotStore[T](cfg.capacity),
		index:    newLookupIndex(cfg.capacity),
	}
}

// Get returns a handle to the entry holding a value equal to the given value,
// creating a new entry if none exists.  When owned is false, the value is
// treated as borrowed and is only retained via the strategy's ownership
// function (if any).
func (p *engine[T]) Get(value T, owned bool) *Handle[T] {
	hashcode := p.strategy.Hash(value)
	// Optimistically look for an existing entry.
	p.mux.RLock()
	e := p.find(value, hashcode)
	//
	if e != nil {
		e.refs.Inc()
	}
	// Release read lock
	p.mux.RUnlock()
	// Check whether we found it
	if e != nil {
		p.hits.Inc()
		return newHandle(e)
	}
	// No, therefore begin critical section
	p.mux.Lock()
	// Recheck whether value stored in between read lock being released
	// (unlikely, but it is possible).
	if e = p.find(value, hashcode); e != nil {
		e.refs.Inc()
		p.mux.Unlock()
		p.hits.Inc()
		//
		return newHandle(e)
	}
	//
	if !owned {
		value = hash.Own(p.strategy, value)
	}
	// Value still not present, so add it.
	e = p.insert(value, hashcode)
	// end critical section
	p.mux.Unlock()
	p.misses.Inc()
	//
	return newHandle(e)
}

// Pooled returns a snapshot of all values currently held in the pool, ordered
// by slot.
func (p *engine[T]) Pooled() []T {
	p.mux.RLock()
	defer p.mux.RUnlock()
	//
	return p.slots.Values()
}

// Stats returns a snapshot of the pool's current state.
func (p *engine[T]) Stats() Stats {
	p.mux.RLock()
	stats := Stats{
		Pool:     p.id,
		Name:     p.name,
		Slots:    p.slots.Len(),
		Occupied: p.slots.Occupied(),
		Free:     p.slots.Free(),
		Buckets:  p.index.Buckets(),
	}
	p.mux.RUnlock()
	//
	stats.Hits = p.hits.Load()
	stats.Misses = p.misses.Load()
	stats.Reclaimed = p.reclaimed.Load()
	//
	return stats
}

// Release drops one reference to a given entry.  This must be called exactly
// once for each handle.  Decrements which cannot reach zero proceed without
// locking; otherwise, the decrement happens under the write lock so that no
// concurrent lookup can join an entry which is being reclaimed.
func (p *engine[T]) Release(e *entry[T]) {
	for {
		n := e.refs.Load()
		//
		if n <= 0 {
			panic(fmt.Sprintf("release of unreferenced slot %d (refs %d)", e.slot, n))
		} else if n == 1 {
			break
		} else if e.refs.CompareAndSwap(n, n-1) {
			return
		}
	}
	// Potentially the last reference, so begin critical section
	p.mux.Lock()
	//
	if e.refs.Dec() == 0 {
		p.reclaim(e)
	}
	// end critical section
	p.mux.Unlock()
}

// Find an existing entry for a given value, or return nil.  This method is not
// threadsafe.
func (p *engine[T]) find(value T, hashcode uint64) *entry[T] {
	for _, ie := range p.index.Bucket(hashcode) {
		if ie.hash == hashcode {
			e := p.slots.Get(ie.slot)
			//
			if p.strategy.Equal(e.value, value) {
				return e
			}
		}
	}
	//
	return nil
}

// Allocate a new entry for a value which is known not to be present.  This
// method is not threadsafe.
func (p *engine[T]) insert(value T, hashcode uint64) *entry[T] {
	slot, grew := p.slots.Alloc()
	//
	e := &entry[T]{value: value, hash: hashcode, slot: slot, pool: p}
	e.refs.Store(1)
	//
	p.slots.Occupy(slot, e)
	//
	if grew {
		p.logger().Debugf("slot store grown to %d slots", p.slots.Len())
	}
	//
	if p.index.Insert(hashcode, slot) {
		p.logger().Debugf("lookup index rehashed to %d buckets", p.index.Buckets())
	}
	//
	return e
}

// Reclaim an entry whose reference count has reached zero.  This method is not
// threadsafe.
func (p *engine[T]) reclaim(e *entry[T]) {
	var empty T
	//
	p.index.Remove(e.hash, e.slot)
	p.slots.Release(e.slot)
	// Drop value so that it can be collected, even if stale handles remain.
	e.value = empty
	//
	p.reclaimed.Inc()
}

func (p *engine[T]) logger() *log.Entry {
	if p.name != "" {
		return log.WithField("pool", p.name)
	}
	//
	return log.WithField("pool", p.id)
}
