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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/khonsulabs/interner/pkg/interner"
	"github.com/khonsulabs/interner/pkg/util"
	"github.com/khonsulabs/interner/pkg/util/collection/hash"
	"github.com/khonsulabs/interner/pkg/util/termio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var dedupCmd = &cobra.Command{
	Use:   "dedup [flags] file1 file2 ...",
	Short: "Intern every line of the given files, and report on duplication.",
	Long: `Intern every line of the given files into a single shared pool, reading each
file on its own goroutine.  Files named more than once (e.g. via equivalent
paths) are read only once.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		stats := util.NewPerfStats()
		report, err := runDedup(cmd.Context(), getAlgorithm(cmd), args, GetFlag(cmd, "list"))
		//
		if err != nil {
			log.Error(err)
			os.Exit(2)
		}
		//
		stats.Log("dedup")
		writeReport(cmd, report, report.Table())
	},
}

// DedupReport summarises the duplication found across a set of files.
type DedupReport struct {
	Files  []FileReport   `json:"files" yaml:"files"`
	Lines  uint           `json:"lines" yaml:"lines"`
	Pool   interner.Stats `json:"pool" yaml:"pool"`
	Values []ValueReport  `json:"values,omitempty" yaml:"values,omitempty"`
}

// FileReport summarises a single file.
type FileReport struct {
	Path     string `json:"path" yaml:"path"`
	Lines    uint   `json:"lines" yaml:"lines"`
	Distinct uint   `json:"distinct" yaml:"distinct"`
}

// ValueReport identifies how many times a given line occurred.
type ValueReport struct {
	Value string `json:"value" yaml:"value"`
	Count uint   `json:"count" yaml:"count"`
}

// Table renders this report as a table.  When values are listed, these are
// rendered instead of the per-file summary.
func (r *DedupReport) Table() *termio.TablePrinter {
	if r.Values != nil {
		table := termio.NewTablePrinter("value", "count").Numeric(1)
		//
		for _, v := range r.Values {
			table.AddRow(v.Value, fmt.Sprint(v.Count))
		}
		//
		return table
	}
	//
	table := termio.NewTablePrinter("file", "lines", "distinct").Numeric(1, 2)
	//
	for _, f := range r.Files {
		table.AddRow(f.Path, fmt.Sprint(f.Lines), fmt.Sprint(f.Distinct))
	}
	//
	table.AddRow("(total)", fmt.Sprint(r.Lines), fmt.Sprint(r.Pool.Occupied))
	//
	return table
}

// Intern every line of the given files into a fresh pool.  Handles are held
// until all files have been read, so that the pool reflects every distinct line
// at the end.
func runDedup(ctx context.Context, algorithm hash.Algorithm, args []string, list bool) (*DedupReport, error) {
	var (
		paths = interner.NewPathPool(interner.WithName[string]("paths"))
		lines = interner.NewStringPool(interner.WithStrategy[string](hash.Strings(algorithm)),
			interner.WithName[string]("lines"))
		files   []*interner.Handle[string]
		handles = make([][]*interner.Handle[string], 0, len(args))
		mux     sync.Mutex
	)
	// Deduplicate the files themselves
	for _, arg := range args {
		h := paths.Get(arg)
		//
		if slices.ContainsFunc(files, func(f *interner.Handle[string]) bool { return paths.PtrEq(f, h) }) {
			log.Debugf("skipping duplicate file %s", arg)
			h.Release()
		} else {
			files = append(files, h)
		}
	}
	//
	defer func() {
		for _, f := range files {
			f.Release()
		}
		//
		for _, hs := range handles {
			for _, h := range hs {
				h.Release()
			}
		}
	}()
	//
	group, ctx := errgroup.WithContext(ctx)
	reports := make([]FileReport, len(files))
	//
	for i, f := range files {
		group.Go(func() error {
			hs, err := readLines(ctx, f.Value(), lines)
			// Record handles so they can be released
			mux.Lock()
			handles = append(handles, hs)
			mux.Unlock()
			//
			if err != nil {
				return fmt.Errorf("reading %s: %w", f.Value(), err)
			}
			//
			reports[i] = FileReport{f.Value(), uint(len(hs)), countDistinct(hs)}
			//
			return nil
		})
	}
	//
	if err := group.Wait(); err != nil {
		return nil, err
	}
	//
	report := &DedupReport{Files: reports, Pool: lines.Stats()}
	//
	for _, f := range reports {
		report.Lines += f.Lines
	}
	//
	if list {
		report.Values = countValues(handles)
	}
	//
	return report, nil
}

// Read a file line by line, interning each line.
func readLines(ctx context.Context, path string, pool *interner.StringPool) ([]*interner.Handle[string], error) {
	var handles []*interner.Handle[string]
	//
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	//
	defer file.Close()
	//
	reader := bufio.NewReader(file)
	//
	for {
		if ctx.Err() != nil {
			return handles, ctx.Err()
		}
		//
		line, err := reader.ReadBytes('\n')
		//
		if len(line) > 0 {
			line = trimEol(line)
			// Conversion copies the line, hence ownership can pass to the pool.
			handles = append(handles, pool.GetOwned(string(line)))
		}
		//
		if err == io.EOF {
			return handles, nil
		} else if err != nil {
			return handles, err
		}
	}
}

func trimEol(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	//
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	//
	return line
}

// Count the number of distinct values referred to by a set of handles.
func countDistinct(handles []*interner.Handle[string]) uint {
	seen := hash.NewSet[*interner.Handle[string]](uint(len(handles)))
	//
	for _, h := range handles {
		seen.Insert(h)
	}
	//
	return seen.Size()
}

// Count the occurrences of every value, ordered by decreasing count (and then
// by value).
func countValues(handles [][]*interner.Handle[string]) []ValueReport {
	counts := hash.NewMap[*interner.Handle[string], uint](0)
	//
	for _, hs := range handles {
		for _, h := range hs {
			n, _ := counts.Get(h)
			counts.Insert(h, n+1)
		}
	}
	//
	values := make([]ValueReport, 0, counts.Size())
	//
	for h, n := range counts.All() {
		values = append(values, ValueReport{h.Value(), n})
	}
	//
	slices.SortFunc(values, func(l, r ValueReport) int {
		if l.Count != r.Count {
			return int(r.Count) - int(l.Count)
		} else if l.Value < r.Value {
			return -1
		} else if l.Value > r.Value {
			return 1
		}
		//
		return 0
	})
	//
	return values
}

func init() {
	rootCmd.AddCommand(dedupCmd)
	dedupCmd.Flags().String("hash", "xxhash", "hash algorithm (fnv, xxhash or xxh3)")
	dedupCmd.Flags().Bool("list", false, "list every distinct line along with its count")
}
