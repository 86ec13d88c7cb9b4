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
	"strings"
	"testing"
)

func Test_GenerateRandomStrings_01(t *testing.T) {
	items := GenerateRandomStrings("v", 1000, 10)
	seen := make(map[string]bool)
	//
	for _, item := range items {
		if !strings.HasPrefix(item, "v") {
			t.Errorf("missing prefix: %s", item)
		}
		//
		seen[item] = true
	}
	//
	if len(items) != 1000 || len(seen) > 10 {
		t.Errorf("expected 1000 items from at most 10 values, got %d from %d", len(items), len(seen))
	}
}

func Test_PerfStats_01(t *testing.T) {
	stats := NewPerfStats()
	items := GenerateRandomStrings("perf", 10000, 10000)
	report := stats.Report()
	//
	if report.Elapsed <= 0 || report.Allocated == 0 {
		t.Errorf("implausible report %v for %d items", report, len(items))
	}
	//
	stats.Log("test")
}
