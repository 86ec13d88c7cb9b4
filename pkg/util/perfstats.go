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
package util

import (
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// PerfStats provides a snapshot of memory allocation at a given point in time.
type PerfStats struct {
	// Starting time
	startTime time.Time
	// Starting total memory allocation
	startMem uint64
	// Starting number of gc events
	startGc uint32
}

// PerfReport summarises the resources consumed since a PerfStats snapshot was
// taken.
type PerfReport struct {
	// Elapsed wall-clock time.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
	// Total memory allocated (in bytes).
	Allocated uint64 `json:"allocated" yaml:"allocated"`
	// Number of gc events.
	GcEvents uint32 `json:"gc_events" yaml:"gc_events"`
	// Memory currently allocated on the heap (in bytes).
	Heap uint64 `json:"heap" yaml:"heap"`
}

// NewPerfStats creates a new snapshot of the current amount of memory allocated.
func NewPerfStats() *PerfStats {
	var m runtime.MemStats

	startTime := time.Now()

	runtime.ReadMemStats(&m)

	return &PerfStats{startTime, m.TotalAlloc, m.NumGC}
}

// Report returns the difference between the state now and as it was when the
// PerfStats object was created.
func (p *PerfStats) Report() PerfReport {
	var m runtime.MemStats

	runtime.ReadMemStats(&m)

	return PerfReport{
		Elapsed:   time.Since(p.startTime),
		Allocated: m.TotalAlloc - p.startMem,
		GcEvents:  m.NumGC - p.startGc,
		Heap:      m.HeapAlloc,
	}
}

// Log logs the difference between the state now and as it was when the PerfStats object was created.
func (p *PerfStats) Log(prefix string) {
	r := p.Report()

	log.Debugf("%s took %0.2fs using %v Mb (%v GC events) [%v Mb]", prefix, r.Elapsed.Seconds(),
		r.Allocated/1024/1024, r.GcEvents, r.Heap/1024/1024)
}
