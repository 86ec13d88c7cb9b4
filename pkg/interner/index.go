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

import "fmt"

// INDEX_INIT_BUCKETS determines the initial number of buckets to use for any
// index which is not constructed with an explicit capacity.
const INDEX_INIT_BUCKETS = 16

// INDEX_LOADING determines the loading point, overwhich rehashing will occur.
// This is currently set to 75% capacity forces a rehashing.
const INDEX_LOADING = 75

// lookupIndex maps hashcodes to the slots holding values with that hashcode.
// Since distinct values can share a hashcode, the index only identifies
// candidate slots and the caller is responsible for comparing values.  This is
// *not* thread safe.
type lookupIndex struct {
	// hash buckets
	buckets [][]indexEntry
	// number of entries in the index
	count uint
}

type indexEntry struct {
	hash uint64
	slot uint32
}

func newLookupIndex(capacity uint) lookupIndex {
	return lookupIndex{
		buckets: make([][]indexEntry, numOfBuckets(capacity)),
	}
}

// Len returns the number of entries in this index.
func (p *lookupIndex) Len() uint {
	return p.count
}

// Buckets returns the number of hash buckets currently in use.
func (p *lookupIndex) Buckets() uint {
	return uint(len(p.buckets))
}

// Bucket returns the bucket for a given hashcode.  Entries in the bucket whose
// hash differs from the given hashcode can be safely skipped.
func (p *lookupIndex) Bucket(hash uint64) []indexEntry {
	return p.buckets[hash%uint64(len(p.buckets))]
}

// Insert a slot into the index under a given hashcode, returning true if this
// caused the index to be rehashed.
func (p *lookupIndex) Insert(hash uint64, slot uint32) bool {
	bucket := hash % uint64(len(p.buckets))
	// Record entry in relevant bucket
	p.buckets[bucket] = append(p.buckets[bucket], indexEntry{hash, slot})
	p.count++
	// Rehash (if necessary)
	return p.rehashIfOverloaded()
}

// Remove a slot from the index.  Removing a slot which is not present indicates
// the index and the slot store have diverged, and is an error.
func (p *lookupIndex) Remove(hash uint64, slot uint32) {
	var (
		index   = hash % uint64(len(p.buckets))
		entries = p.buckets[index]
	)
	//
	for i, e := range entries {
		if e.slot == slot {
			last := len(entries) - 1
			entries[i] = entries[last]
			p.buckets[index] = entries[:last]
			p.count--
			//
			return
		}
	}
	//
	panic(fmt.Sprintf("slot %d missing from index", slot))
}

// Check whether the hash map is exceed its loading factor and, if so, rehash.
func (p *lookupIndex) rehashIfOverloaded() bool {
	load := (100 * p.count) / uint(len(p.buckets))
	//
	if load > INDEX_LOADING {
		// Force a rehash
		p.rehash()
		//
		return true
	}
	//
	return false
}

func (p *lookupIndex) rehash() {
	var (
		oldBuckets = p.buckets
		n          = uint64(len(oldBuckets) * 3)
	)
	// Triple number of buckets
	p.buckets = make([][]indexEntry, n)
	// Rehash!
	for _, bucket := range oldBuckets {
		for _, e := range bucket {
			index := e.hash % n
			// Record entry in relevant bucket
			p.buckets[index] = append(p.buckets[index], e)
		}
	}
}

// Determine the number of buckets required to hold a given number of entries
// without exceeding the loading factor.
func numOfBuckets(count uint) uint {
	var nBuckets = uint(INDEX_INIT_BUCKETS)
	//
	for {
		load := (100 * count) / nBuckets
		//
		if load <= INDEX_LOADING {
			return nBuckets
		}
		//
		nBuckets *= 3
	}
}
