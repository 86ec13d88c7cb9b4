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
	"fmt"
	"reflect"

	"github.com/khonsulabs/interner/pkg/util/collection/hash"
)

// Option configures a pool at construction time.
type Option[T any] func(*config[T])

type config[T any] struct {
	// strategy for hashing / comparing values.
	strategy hash.Strategy[T]
	// expected number of distinct values.
	capacity uint
	// values to pre-populate the pool with.
	values []T
	// label used when logging.
	name string
}

// WithStrategy configures the strategy used for hashing and comparing values.
func WithStrategy[T any](strategy hash.Strategy[T]) Option[T] {
	return func(cfg *config[T]) {
		cfg.strategy = strategy
	}
}

// WithCapacity configures the pool with enough capacity to hold a given number
// of distinct values without reallocating.
func WithCapacity[T any](capacity uint) Option[T] {
	return func(cfg *config[T]) {
		cfg.capacity = capacity
	}
}

// WithValues pre-populates the pool with a given set of values.  These values
// are pinned, meaning they remain pooled even when no handle refers to them.
func WithValues[T any](values ...T) Option[T] {
	return func(cfg *config[T]) {
		cfg.values = append(cfg.values, values...)
	}
}

// WithName assigns a name to the pool, which is used to identify it in log
// messages.
func WithName[T any](name string) Option[T] {
	return func(cfg *config[T]) {
		cfg.name = name
	}
}

func newConfig[T any](opts []Option[T]) config[T] {
	var cfg config[T]
	//
	for _, opt := range opts {
		opt(&cfg)
	}
	//
	if cfg.strategy == nil {
		cfg.strategy = defaultStrategy[T]()
	}
	//
	return cfg
}

// Determine the strategy to use when none was given.  Strings and byte slices
// have dedicated strategies, whilst any other comparable type is hashed via its
// interface value.
func defaultStrategy[T any]() hash.Strategy[T] {
	var (
		strategy any
		empty    T
	)
	//
	switch any(empty).(type) {
	case string:
		strategy = hash.Strings(hash.XXHash)
	case []byte:
		strategy = hash.Bytes(hash.XXHash)
	default:
		if t := reflect.TypeFor[T](); !t.Comparable() {
			panic(fmt.Sprintf("%s is not comparable (a hash strategy is required)", t))
		}
		//
		strategy = hash.Any[T]()
	}
	//
	return strategy.(hash.Strategy[T])
}
