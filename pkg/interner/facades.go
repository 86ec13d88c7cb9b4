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
	"os"
	"path/filepath"
	"strings"
)

// StringPool is a pool of strings.
type StringPool = Shared[string]

// BufferPool is a pool of byte buffers.  Buffers passed to Get are copied if
// they need to be inserted, hence callers remain free to reuse them.
type BufferPool = Shared[[]byte]

// NewStringPool constructs a new pool of strings.
func NewStringPool(opts ...Option[string]) *StringPool {
	return New(opts...)
}

// NewBufferPool constructs a new pool of byte buffers.
func NewBufferPool(opts ...Option[[]byte]) *BufferPool {
	return New(opts...)
}

// PathPool is a pool of filesystem paths.  Paths are normalised component-wise
// before being interned: repeated and trailing separators are dropped, as are
// "." components (other than a leading one).  Unlike filepath.Clean, ".."
// components are retained, since "a/b/.." need not refer to "a" when b is a
// symbolic link.
type PathPool struct {
	strings *Shared[string]
}

// NewPathPool constructs a new pool of paths.  Any values given via WithValues
// are normalised before being interned.
func NewPathPool(opts ...Option[string]) *PathPool {
	cfg := newConfig(opts)
	//
	for i, v := range cfg.values {
		cfg.values[i] = normalisePath(v)
	}
	//
	return &PathPool{newShared(cfg)}
}

// Get returns a handle to the pooled path equivalent to the given path.
func (p *PathPool) Get(path string) *Handle[string] {
	return p.strings.GetOwned(normalisePath(path))
}

// Pooled returns a snapshot of all paths currently held in the pool.
func (p *PathPool) Pooled() []string {
	return p.strings.Pooled()
}

// PtrEq checks whether two handles refer to the same slot of the same pool.
func (p *PathPool) PtrEq(lhs *Handle[string], rhs *Handle[string]) bool {
	return PtrEq(lhs, rhs)
}

// Stats returns a snapshot of the pool's current state.
func (p *PathPool) Stats() Stats {
	return p.strings.Stats()
}

// Normalise a path by its components, retaining any volume name and root.
func normalisePath(path string) string {
	var (
		volume = filepath.VolumeName(path)
		rest   = path[len(volume):]
		rooted = len(rest) > 0 && os.IsPathSeparator(rest[0])
		parts  []string
	)
	//
	for i, c := range strings.FieldsFunc(rest, isSeparator) {
		// Only a leading "." is significant
		if c != "." || (i == 0 && !rooted) {
			parts = append(parts, c)
		}
	}
	//
	var builder strings.Builder
	//
	builder.WriteString(volume)
	//
	if rooted {
		builder.WriteByte(filepath.Separator)
	}
	//
	builder.WriteString(strings.Join(parts, string(filepath.Separator)))
	//
	return builder.String()
}

func isSeparator(r rune) bool {
	return r < 0x80 && os.IsPathSeparator(uint8(r))
}
