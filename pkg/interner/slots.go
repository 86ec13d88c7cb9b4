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
	"math"
)

// NO_FREE_SLOT marks the end of the free list.
const NO_FREE_SLOT uint32 = math.MaxUint32

// A slot in the store is either occupied by an entry, or free.  Free slots are
// linked together (through next) to form the free list, hence no separate
// allocation is required to track them.
type slot[T any] struct {
	// Entry occupying this slot, or nil if the slot is free.
	entry *entry[T]
	// Next slot on the free list (only meaningful when free).
	next uint32
}

// slotStore is a growable arena of slots which is *not* thread safe.  Slots are
// identified by their position in the arena, and identifiers are reused after
// the slot is freed.
type slotStore[T any] struct {
	slots []slot[T]
	// head of the free list
	free uint32
	// number of slots on the free list
	nfree uint
}

func newSlotStore[T any](capacity uint) slotStore[T] {
	return slotStore[T]{
		slots: make([]slot[T], 0, capacity),
		free:  NO_FREE_SLOT,
	}
}

// Len returns the total number of slots (both free and occupied).
func (p *slotStore[T]) Len() uint {
	return uint(len(p.slots))
}

// Occupied returns the number of occupied slots.
func (p *slotStore[T]) Occupied() uint {
	return uint(len(p.slots)) - p.nfree
}

// Free returns the number of free slots.
func (p *slotStore[T]) Free() uint {
	return p.nfree
}

// Get returns the entry occupying a given slot.  It is an error to read a slot
// which is free.
func (p *slotStore[T]) Get(id uint32) *entry[T] {
	e := p.slots[id].entry
	//
	if e == nil {
		panic(fmt.Sprintf("slot %d is free", id))
	}
	//
	return e
}

// Alloc reserves a slot, taking it from the free list if possible or otherwise
// growing the store.  The second return indicates whether the store had to
// reallocate its backing array.
func (p *slotStore[T]) Alloc() (uint32, bool) {
	if p.free != NO_FREE_SLOT {
		id := p.free
		p.free = p.slots[id].next
		p.slots[id].next = NO_FREE_SLOT
		p.nfree--
		//
		return id, false
	}
	//
	var (
		id       = len(p.slots)
		capacity = cap(p.slots)
	)
	//
	if uint64(id) >= uint64(NO_FREE_SLOT) {
		panic("slot store exhausted")
	}
	//
	p.slots = append(p.slots, slot[T]{nil, NO_FREE_SLOT})
	//
	return uint32(id), cap(p.slots) != capacity
}

// Occupy places an entry into a previously allocated slot.
func (p *slotStore[T]) Occupy(id uint32, e *entry[T]) {
	if p.slots[id].entry != nil {
		panic(fmt.Sprintf("slot %d already occupied", id))
	}
	//
	p.slots[id].entry = e
}

// Release frees a given slot, pushing it onto the free list.  Releasing a slot
// which is already free indicates a double free, and is an error.
func (p *slotStore[T]) Release(id uint32) {
	if p.slots[id].entry == nil {
		panic(fmt.Sprintf("slot %d already free", id))
	}
	//
	p.slots[id] = slot[T]{nil, p.free}
	p.free = id
	p.nfree++
}

// Values returns the values of all occupied slots, ordered by slot.
func (p *slotStore[T]) Values() []T {
	values := make([]T, 0, p.Occupied())
	//
	for _, s := range p.slots {
		if s.entry != nil {
			values = append(values, s.entry.value)
		}
	}
	//
	return values
}
