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
	"fmt"
	"math/rand/v2"
)

// GenerateRandomUints generates n random unsigned integers in the range 0..m.
func GenerateRandomUints(n, m uint) []uint {
	items := make([]uint, n)

	for i := uint(0); i < n; i++ {
		items[i] = rand.UintN(m)
	}

	return items
}

// GenerateRandomStrings generates n random strings drawn from a vocabulary of m
// distinct strings, each carrying the given prefix.  Duplicates are therefore
// expected whenever n exceeds m.
func GenerateRandomStrings(prefix string, n, m uint) []string {
	items := make([]string, n)

	for i, v := range GenerateRandomUints(n, m) {
		items[i] = fmt.Sprintf("%s%d", prefix, v)
	}

	return items
}
