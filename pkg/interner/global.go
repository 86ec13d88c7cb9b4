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

	log "github.com/sirupsen/logrus"
)

// Global is a process-wide interning pool, intended to be declared as a
// package-level variable.  The zero value is ready to use:
//
//	var names interner.Global[string]
//
// The underlying pool is initialised on first use, and lives for the remainder
// of the process.  Every declared Global has its own storage, even when
// another Global holds values of the same type.
type Global[T any] struct {
	once   sync.Once
	opts   []Option[T]
	shared *Shared[T]
}

// NewGlobal declares a process-wide pool with the given options.  The options
// are only applied when the pool is first used.
func NewGlobal[T any](opts ...Option[T]) *Global[T] {
	return &Global[T]{opts: opts}
}

// Pool returns the underlying pool, initialising it if necessary.  When several
// goroutines race on first use, exactly one performs the initialisation whilst
// the others wait for it to complete.
func (p *Global[T]) Pool() *Shared[T] {
	p.once.Do(func() {
		p.shared = newShared(newConfig(p.opts))
		p.shared.engine.logger().Trace("initialised global pool")
	})
	//
	return p.shared
}

// Get returns a handle to the pooled value equal to the given value, inserting
// it if necessary (see Shared.Get).
func (p *Global[T]) Get(value T) *Handle[T] {
	return p.Pool().Get(value)
}

// GetOwned is like Get, except that ownership of the value passes to the pool
// (see Shared.GetOwned).
func (p *Global[T]) GetOwned(value T) *Handle[T] {
	return p.Pool().GetOwned(value)
}

// Pooled returns a snapshot of all values currently held in the pool.
func (p *Global[T]) Pooled() []T {
	return p.Pool().Pooled()
}

// PtrEq checks whether two handles refer to the same slot of the same pool.
func (p *Global[T]) PtrEq(lhs *Handle[T], rhs *Handle[T]) bool {
	return PtrEq(lhs, rhs)
}

// Stats returns a snapshot of the pool's current state.
func (p *Global[T]) Stats() Stats {
	return p.Pool().Stats()
}

// Static declares a value which is pinned in this pool for the remainder of the
// process.  The value is only interned on first use of the returned Static.
func (p *Global[T]) Static(value T) *Static[T] {
	return p.StaticFunc(func() T { return value })
}

// StaticFunc declares a pinned value which is computed on first use.  This is
// useful for values which are expensive (or impossible) to construct when the
// Static is declared.
func (p *Global[T]) StaticFunc(init func() T) *Static[T] {
	return &Static[T]{global: p, init: init}
}

// Static is a lazily obtained handle to a value in a global pool, which is
// never released.  The value therefore remains pooled for the remainder of the
// process.
type Static[T any] struct {
	once   sync.Once
	global *Global[T]
	init   func() T
	handle *Handle[T]
}

// Get returns a new handle to the pinned value.  The returned handle should be
// released as normal, which never affects the pinned handle.
func (p *Static[T]) Get() *Handle[T] {
	return p.pinned().Clone()
}

// Value returns the pinned value.
func (p *Static[T]) Value() T {
	return p.pinned().Value()
}

// PtrEq checks whether a given handle refers to the pinned value.
func (p *Static[T]) PtrEq(handle *Handle[T]) bool {
	return PtrEq(p.pinned(), handle)
}

func (p *Static[T]) pinned() *Handle[T] {
	p.once.Do(func() {
		p.handle = p.global.Get(p.init())
		p.handle.pin()
		//
		log.WithField("slot", p.handle.state.entry.slot).Trace("pinned static value")
	})
	//
	return p.handle
}
