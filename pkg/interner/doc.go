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

// Package interner provides pools which guarantee that at most one copy of any
// given value is stored at a time.  Requesting a value from a pool returns a
// reference counted Handle, and repeated requests for equal values return
// handles to the same stored copy.  When the last handle to a value is
// released, the value is dropped and its slot is recycled for future values.
//
// Pools come in two flavours.  A Shared pool is constructed and owned by the
// caller, whilst a Global pool is declared once as a package-level variable and
// initialised lazily on first use:
//
//	var names interner.Global[string]
//	var root = names.Static("root")
//
//	func lookup(name string) {
//		h := names.Get(name)
//		defer h.Release()
//		// ...
//	}
//
// Handles are compared by identity when they come from the same pool, which is
// cheap regardless of the size of the value.  Across pools, handles are
// compared by value.  A handle's hashcode depends only on its pool and slot,
// hence handles from different pools must not be mixed as keys of the same
// hash-based collection (lookups may fail, though nothing worse happens).
package interner
