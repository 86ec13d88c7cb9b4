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
	"bytes"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"
)

// FNV-1a parameters (as used by hash/fnv)
const (
	offset64 uint64 = 14695981039346656037
	prime64  uint64 = 1099511628211
)

// Algorithm identifies a 64-bit hash function over raw bytes, along with a
// specialised version for strings which avoids converting them into byte
// slices first.
type Algorithm struct {
	name   string
	bytes  func([]byte) uint64
	string func(string) uint64
}

var (
	// FNV1a is the 64-bit Fowler-Noll-Vo hash (variant 1a).
	FNV1a = Algorithm{"fnv", fnvBytes, fnvString}
	// XXHash is the 64-bit xxHash algorithm.
	XXHash = Algorithm{"xxhash", xxhash.Sum64, xxhash.Sum64String}
	// XXH3 is the 64-bit variant of the XXH3 algorithm.
	XXH3 = Algorithm{"xxh3", xxh3.Hash, xxh3.HashString}
)

// Algorithms lists every available algorithm.
var Algorithms = []Algorithm{FNV1a, XXHash, XXH3}

// ParseAlgorithm looks up an algorithm by name (case insensitive).
func ParseAlgorithm(name string) (Algorithm, error) {
	for _, a := range Algorithms {
		if strings.EqualFold(a.name, name) {
			return a, nil
		}
	}
	//
	return Algorithm{}, fmt.Errorf("unknown hash algorithm \"%s\"", name)
}

// Name returns the name of this algorithm.
func (a Algorithm) Name() string {
	return a.name
}

func (a Algorithm) String() string {
	return a.name
}

// Sum64 hashes a given byte sequence.
func (a Algorithm) Sum64(data []byte) uint64 {
	return a.bytes(data)
}

// Sum64String hashes a given string.
func (a Algorithm) Sum64String(data string) uint64 {
	return a.string(data)
}

func fnvBytes(data []byte) uint64 {
	hash := fnv.New64a()
	hash.Write(data)
	// Done
	return hash.Sum64()
}

// Equivalent to fnvBytes, but avoids converting the string into a byte slice.
func fnvString(data string) uint64 {
	hash := offset64
	//
	for i := range len(data) {
		hash ^= uint64(data[i])
		hash *= prime64
	}
	//
	return hash
}

// ============================================================================
// String Strategy
// ============================================================================

// StringStrategy hashes strings using a given algorithm.
type StringStrategy struct {
	algorithm Algorithm
}

// Strings constructs a strategy for strings based on a given algorithm.
func Strings(algorithm Algorithm) StringStrategy {
	return StringStrategy{algorithm}
}

// Hash implementation for the Strategy interface.
func (p StringStrategy) Hash(value string) uint64 {
	return p.algorithm.string(value)
}

// Equal implementation for the Strategy interface.
func (p StringStrategy) Equal(lhs string, rhs string) bool {
	return lhs == rhs
}

// ============================================================================
// Bytes Strategy
// ============================================================================

// BytesStrategy hashes byte slices using a given algorithm.  Since slices
// alias memory owned by the caller, this strategy also implements Owner.
type BytesStrategy struct {
	algorithm Algorithm
}

var _ Owner[[]byte] = BytesStrategy{}

// Bytes constructs a strategy for byte slices based on a given algorithm.
func Bytes(algorithm Algorithm) BytesStrategy {
	return BytesStrategy{algorithm}
}

// Hash implementation for the Strategy interface.
func (p BytesStrategy) Hash(value []byte) uint64 {
	return p.algorithm.bytes(value)
}

// Equal implementation for the Strategy interface.
func (p BytesStrategy) Equal(lhs []byte, rhs []byte) bool {
	return bytes.Equal(lhs, rhs)
}

// Own implementation for the Owner interface.  A nil slice is owned as an empty
// (non-nil) slice, such that all pooled buffers are uniformly non-nil.
func (p BytesStrategy) Own(value []byte) []byte {
	owned := make([]byte, len(value))
	copy(owned, value)
	//
	return owned
}
