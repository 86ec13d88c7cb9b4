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
	"testing"
)

func Test_Algorithm_01(t *testing.T) {
	for _, a := range Algorithms {
		check_Algorithm(t, a, "")
	}
}

func Test_Algorithm_02(t *testing.T) {
	for _, a := range Algorithms {
		check_Algorithm(t, a, "hello")
	}
}

func Test_Algorithm_03(t *testing.T) {
	for _, a := range Algorithms {
		check_Algorithm(t, a, "the quick brown fox jumps over the lazy dog")
	}
}

func Test_Algorithm_04(t *testing.T) {
	// Known FNV-1a test vectors
	if h := FNV1a.Sum64String(""); h != 0xcbf29ce484222325 {
		t.Errorf("unexpected fnv hash of empty string: %x", h)
	}
	//
	if h := FNV1a.Sum64String("a"); h != 0xaf63dc4c8601ec8c {
		t.Errorf("unexpected fnv hash of \"a\": %x", h)
	}
	// Byte variant agrees with the same vectors
	if h := FNV1a.Sum64(nil); h != 0xcbf29ce484222325 {
		t.Errorf("unexpected fnv hash of empty bytes: %x", h)
	}
	//
	if h := FNV1a.Sum64([]byte("a")); h != 0xaf63dc4c8601ec8c {
		t.Errorf("unexpected fnv hash of bytes \"a\": %x", h)
	}
}

func Test_ParseAlgorithm_01(t *testing.T) {
	for _, name := range []string{"fnv", "xxhash", "XXH3"} {
		if a, err := ParseAlgorithm(name); err != nil {
			t.Errorf("failed parsing %s: %v", name, err)
		} else if a.Name() != name && a.Name() != "xxh3" {
			t.Errorf("parsed %s as %s", name, a.Name())
		}
	}
	//
	if _, err := ParseAlgorithm("md5"); err == nil {
		t.Errorf("expected error parsing unknown algorithm")
	}
}

func Test_Strategy_01(t *testing.T) {
	strategy := Comparable[string]()
	//
	if strategy.Hash("abc") != strategy.Hash("abc") {
		t.Errorf("unstable hash for comparable strategy")
	}
	//
	if !strategy.Equal("abc", "abc") || strategy.Equal("abc", "abd") {
		t.Errorf("incorrect equality for comparable strategy")
	}
}

func Test_Strategy_02(t *testing.T) {
	var (
		strategy = Bytes(XXHash)
		borrowed = []byte("buffer")
		owned    = Own[[]byte](strategy, borrowed)
	)
	//
	if !strategy.Equal(borrowed, owned) || strategy.Hash(borrowed) != strategy.Hash(owned) {
		t.Errorf("owned copy differs from original")
	}
	// Mutating the borrowed slice must not affect the owned copy
	borrowed[0] = 'B'
	//
	if string(owned) != "buffer" {
		t.Errorf("owned copy aliases borrowed slice: %s", owned)
	}
}

func Test_Strategy_03(t *testing.T) {
	// Strategies which don't implement Owner retain values as given
	if Own[string](Strings(FNV1a), "value") != "value" {
		t.Errorf("unexpected ownership transfer")
	}
	//
	if owned := Own[[]byte](Bytes(FNV1a), nil); owned == nil || len(owned) != 0 {
		t.Errorf("expected empty non-nil buffer, got %v", owned)
	}
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_Algorithm(t *testing.T, a Algorithm, input string) {
	var (
		strings = Strings(a)
		bytes   = Bytes(a)
	)
	// String and byte variants must agree
	if a.Sum64String(input) != a.Sum64([]byte(input)) {
		t.Errorf("%s: string and byte hashes differ for \"%s\"", a, input)
	}
	//
	if strings.Hash(input) != bytes.Hash([]byte(input)) {
		t.Errorf("%s: string and byte strategies differ for \"%s\"", a, input)
	}
	// Hash must be deterministic
	if strings.Hash(input) != strings.Hash(input) {
		t.Errorf("%s: unstable hash for \"%s\"", a, input)
	}
	//
	if !strings.Equal(input, input) || strings.Equal(input, input+"!") {
		t.Errorf("%s: incorrect equality for \"%s\"", a, input)
	}
}
