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
package cmd

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"

	"github.com/khonsulabs/interner/pkg/interner"
	"github.com/khonsulabs/interner/pkg/metrics"
	"github.com/khonsulabs/interner/pkg/util"
	"github.com/khonsulabs/interner/pkg/util/collection/hash"
	"github.com/khonsulabs/interner/pkg/util/termio"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// number of handles each worker may hold at once
const STRESS_MAX_HELD = 64

var stressCmd = &cobra.Command{
	Use:   "stress [flags]",
	Short: "Stress test a shared string pool from many goroutines.",
	Long: `Stress test a shared string pool by having many goroutines concurrently
acquire, clone and release handles to a fixed vocabulary of values.  On
completion, the pool is checked to have been fully drained.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		cfg := stressConfig{
			workers:    GetUint(cmd, "workers"),
			iterations: GetUint(cmd, "iterations"),
			values:     GetUint(cmd, "values"),
			algorithm:  getAlgorithm(cmd),
		}
		//
		if cfg.workers == 0 || cfg.values == 0 {
			fmt.Println("workers and values must be positive")
			os.Exit(1)
		}
		//
		report, err := runStress(cmd.Context(), cfg)
		//
		if err != nil {
			log.Error(err)
			os.Exit(2)
		}
		//
		writeReport(cmd, report, report.Table())
		//
		if GetFlag(cmd, "metrics") {
			if err := metrics.WriteText(os.Stdout, report.registry); err != nil {
				log.Error(err)
				os.Exit(2)
			}
		}
	},
}

type stressConfig struct {
	workers    uint
	iterations uint
	values     uint
	algorithm  hash.Algorithm
}

// StressReport summarises a stress run.
type StressReport struct {
	Workers    uint            `json:"workers" yaml:"workers"`
	Iterations uint            `json:"iterations" yaml:"iterations"`
	Hash       string          `json:"hash" yaml:"hash"`
	Pool       interner.Stats  `json:"pool" yaml:"pool"`
	Perf       util.PerfReport `json:"perf" yaml:"perf"`
	registry   prometheus.Gatherer
}

// Table renders this report as a table.
func (r *StressReport) Table() *termio.TablePrinter {
	table := termio.NewTablePrinter("metric", "value").Numeric(1)
	//
	table.AddRow("workers", fmt.Sprint(r.Workers))
	table.AddRow("iterations", fmt.Sprint(r.Iterations))
	table.AddRow("hash", r.Hash)
	table.AddRow("slots", fmt.Sprint(r.Pool.Slots))
	table.AddRow("buckets", fmt.Sprint(r.Pool.Buckets))
	table.AddRow("hits", fmt.Sprint(r.Pool.Hits))
	table.AddRow("misses", fmt.Sprint(r.Pool.Misses))
	table.AddRow("reclaimed", fmt.Sprint(r.Pool.Reclaimed))
	table.AddRow("hit ratio", fmt.Sprintf("%.3f", r.Pool.HitRatio()))
	table.AddRow("elapsed", r.Perf.Elapsed.String())
	table.AddRow("allocated", fmt.Sprintf("%dKb", r.Perf.Allocated/1024))
	//
	return table
}

// Run a stress test against a fresh pool, returning an error if any worker
// observed an inconsistency or the pool was not drained afterwards.
func runStress(ctx context.Context, cfg stressConfig) (*StressReport, error) {
	var (
		stats    = util.NewPerfStats()
		values   = util.GenerateRandomStrings("value_", cfg.values, cfg.values)
		pool     = interner.NewStringPool(interner.WithStrategy[string](hash.Strings(cfg.algorithm)), interner.WithName[string]("stress"))
		registry = prometheus.NewRegistry()
	)
	//
	registry.MustRegister(metrics.NewCollector(pool))
	//
	group, ctx := errgroup.WithContext(ctx)
	//
	for w := range cfg.workers {
		group.Go(func() error {
			return stressWorker(ctx, pool, values, cfg.iterations, uint64(w))
		})
	}
	//
	if err := group.Wait(); err != nil {
		return nil, err
	}
	//
	stats.Log("stress")
	//
	report := &StressReport{
		Workers:    cfg.workers,
		Iterations: cfg.iterations,
		Hash:       cfg.algorithm.Name(),
		Pool:       pool.Stats(),
		Perf:       stats.Report(),
		registry:   registry,
	}
	// Every handle was released, so the pool must be empty.
	if report.Pool.Occupied != 0 {
		return report, fmt.Errorf("pool not drained (%d values remain: %v)", report.Pool.Occupied, pool.Pooled())
	}
	//
	return report, nil
}

func stressWorker(ctx context.Context, pool *interner.StringPool, values []string, iterations uint,
	seed uint64) error {
	var (
		rng  = rand.New(rand.NewPCG(seed, uint64(len(values))))
		held []*interner.Handle[string]
	)
	// Release anything still held
	defer func() {
		for _, h := range held {
			h.Release()
		}
	}()
	//
	for i := range iterations {
		// Check for cancellation periodically
		if i%1024 == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		//
		switch n := len(held); {
		case n > 0 && (n >= STRESS_MAX_HELD || rng.IntN(3) == 0):
			// Release a random handle
			j := rng.IntN(n)
			held[j].Release()
			held[j] = held[n-1]
			held = held[:n-1]
		case n > 0 && rng.IntN(2) == 0:
			// Clone a random handle
			held = append(held, held[rng.IntN(n)].Clone())
		default:
			v := values[rng.IntN(len(values))]
			h := pool.Get(v)
			//
			if h.Value() != v {
				return fmt.Errorf("interned %q, but got %q", v, h.Value())
			}
			//
			held = append(held, h)
		}
	}
	//
	log.Debugf("worker %d finished holding %d handles", seed, len(held))
	//
	return nil
}

func init() {
	rootCmd.AddCommand(stressCmd)
	stressCmd.Flags().Uint("workers", uint(runtime.NumCPU()), "number of concurrent workers")
	stressCmd.Flags().Uint("iterations", 100000, "number of operations per worker")
	stressCmd.Flags().Uint("values", 1000, "number of distinct values")
	stressCmd.Flags().String("hash", "xxhash", "hash algorithm (fnv, xxhash or xxh3)")
	stressCmd.Flags().Bool("metrics", false, "write prometheus metrics for the pool")
}
