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

// Stats is a point-in-time snapshot of a pool's state.  The counters (Hits,
// Misses and Reclaimed) are cumulative over the lifetime of the pool.
type Stats struct {
	// Identity of the pool.
	Pool uint64 `json:"pool" yaml:"pool"`
	// Name of the pool (if any).
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Total number of slots.
	Slots uint `json:"slots" yaml:"slots"`
	// Number of slots holding a value.
	Occupied uint `json:"occupied" yaml:"occupied"`
	// Number of slots on the free list.
	Free uint `json:"free" yaml:"free"`
	// Number of lookup index buckets.
	Buckets uint `json:"buckets" yaml:"buckets"`
	// Lookups which found an existing value.
	Hits uint64 `json:"hits" yaml:"hits"`
	// Lookups which inserted a new value.
	Misses uint64 `json:"misses" yaml:"misses"`
	// Values removed after their last handle was released.
	Reclaimed uint64 `json:"reclaimed" yaml:"reclaimed"`
}

// HitRatio returns the fraction of lookups which found an existing value.
func (s Stats) HitRatio() float64 {
	if total := s.Hits + s.Misses; total != 0 {
		return float64(s.Hits) / float64(total)
	}
	//
	return 0
}

func (s Stats) String() string {
	return fmt.Sprintf("pool %d: %d/%d slots occupied (%d free), %d hits, %d misses, %d reclaimed",
		s.Pool, s.Occupied, s.Slots, s.Free, s.Hits, s.Misses, s.Reclaimed)
}
