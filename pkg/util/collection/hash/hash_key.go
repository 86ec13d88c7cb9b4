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
package hash

import (
	"hash/maphash"
)

// Hasher provides a generic definition of a hashing function suitable for use
// within the hashset.  This is similar to the Hasher interface provided in
// go-set, except that it additionally includes equality.
type Hasher[T any] interface {
	// Check whether two items are equal (or not).
	Equals(T) bool
	// Return a suitable hashcode.
	Hash() uint64
}

// Strategy is the external counterpart of Hasher.  Rather than requiring the
// values themselves to implement hashing and equality, a strategy supplies both
// on their behalf.  This allows plain values (e.g. strings or byte slices) to be
// stored in a bucketed table without wrapping each one.
type Strategy[T any] interface {
	// Hash returns a hashcode for the given value.  Equal values must produce
	// equal hashcodes.
	Hash(T) uint64
	// Equal checks whether two values are equal (or not).
	Equal(T, T) bool
}

// Owner is an optional extension of Strategy for value kinds which can alias
// memory owned by the caller (e.g. byte slices).  Own returns a copy which is
// safe to retain indefinitely.  Strategies which don't implement Owner have
// their values retained as given.
type Owner[T any] interface {
	Own(T) T
}

// Own returns a retainable copy of a value according to a given strategy.
func Own[T any](strategy Strategy[T], value T) T {
	if o, ok := strategy.(Owner[T]); ok {
		return o.Own(value)
	}
	//
	return value
}

// ============================================================================
// Comparable Strategy
// ============================================================================

// ComparableStrategy hashes any comparable value using a randomly seeded hash,
// and compares values using Go's built-in equality.
type ComparableStrategy[T comparable] struct {
	seed maphash.Seed
}

// Comparable constructs a fresh strategy for comparable values.  Every
// strategy gets its own random seed, hence hashcodes are not stable across
// strategies (or processes).
func Comparable[T comparable]() ComparableStrategy[T] {
	return ComparableStrategy[T]{maphash.MakeSeed()}
}

// Hash implementation for the Strategy interface.
func (p ComparableStrategy[T]) Hash(value T) uint64 {
	return maphash.Comparable(p.seed, value)
}

// Equal implementation for the Strategy interface.
func (p ComparableStrategy[T]) Equal(lhs T, rhs T) bool {
	return lhs == rhs
}

// ============================================================================
// Any Strategy
// ============================================================================

// AnyStrategy hashes values through their interface representation, meaning it
// can be used for any type whose dynamic values are comparable.  Using a value
// which is not comparable (e.g. a slice) results in a runtime panic.
type AnyStrategy[T any] struct {
	seed maphash.Seed
}

// Any constructs a fresh strategy for values which are comparable at runtime,
// but not necessarily known to be comparable at compile time.
func Any[T any]() AnyStrategy[T] {
	return AnyStrategy[T]{maphash.MakeSeed()}
}

// Hash implementation for the Strategy interface.
func (p AnyStrategy[T]) Hash(value T) uint64 {
	return maphash.Comparable[any](p.seed, value)
}

// Equal implementation for the Strategy interface.
func (p AnyStrategy[T]) Equal(lhs T, rhs T) bool {
	return any(lhs) == any(rhs)
}
