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
package metrics

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/khonsulabs/interner/pkg/interner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// NAMESPACE prefixes every metric exported by this package.
const NAMESPACE = "interner"

// Source is anything which can report a snapshot of its pool's state.  Shared
// pools, global pools and path pools all satisfy this.
type Source interface {
	Stats() interner.Stats
}

var (
	slotsDesc = prometheus.NewDesc(prometheus.BuildFQName(NAMESPACE, "pool", "slots"),
		"Total number of slots allocated by the pool", []string{"pool", "name"}, nil)
	occupiedDesc = prometheus.NewDesc(prometheus.BuildFQName(NAMESPACE, "pool", "occupied_slots"),
		"Number of slots currently holding a value", []string{"pool", "name"}, nil)
	freeDesc = prometheus.NewDesc(prometheus.BuildFQName(NAMESPACE, "pool", "free_slots"),
		"Number of slots on the free list", []string{"pool", "name"}, nil)
	bucketsDesc = prometheus.NewDesc(prometheus.BuildFQName(NAMESPACE, "pool", "index_buckets"),
		"Number of buckets in the lookup index", []string{"pool", "name"}, nil)
	hitsDesc = prometheus.NewDesc(prometheus.BuildFQName(NAMESPACE, "pool", "hits_total"),
		"Lookups which found an existing value", []string{"pool", "name"}, nil)
	missesDesc = prometheus.NewDesc(prometheus.BuildFQName(NAMESPACE, "pool", "misses_total"),
		"Lookups which inserted a new value", []string{"pool", "name"}, nil)
	reclaimedDesc = prometheus.NewDesc(prometheus.BuildFQName(NAMESPACE, "pool", "reclaimed_total"),
		"Values removed after their last handle was released", []string{"pool", "name"}, nil)
)

// Collector exports the state of one or more pools as prometheus metrics.
// Pool state is sampled on every scrape, hence pools incur no cost for being
// monitored between scrapes.
type Collector struct {
	mux     sync.RWMutex
	sources []Source
}

var _ prometheus.Collector = &Collector{}

// NewCollector constructs a collector over the given pools.
func NewCollector(sources ...Source) *Collector {
	return &Collector{sources: sources}
}

// Add a pool to this collector.
func (c *Collector) Add(source Source) {
	c.mux.Lock()
	defer c.mux.Unlock()
	//
	c.sources = append(c.sources, source)
}

// Describe implementation for the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- slotsDesc
	ch <- occupiedDesc
	ch <- freeDesc
	ch <- bucketsDesc
	ch <- hitsDesc
	ch <- missesDesc
	ch <- reclaimedDesc
}

// Collect implementation for the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mux.RLock()
	defer c.mux.RUnlock()
	//
	for _, source := range c.sources {
		var (
			stats = source.Stats()
			id    = strconv.FormatUint(stats.Pool, 10)
		)
		//
		gauge := func(desc *prometheus.Desc, value uint) {
			ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(value), id, stats.Name)
		}
		//
		counter := func(desc *prometheus.Desc, value uint64) {
			ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(value), id, stats.Name)
		}
		//
		gauge(slotsDesc, stats.Slots)
		gauge(occupiedDesc, stats.Occupied)
		gauge(freeDesc, stats.Free)
		gauge(bucketsDesc, stats.Buckets)
		counter(hitsDesc, stats.Hits)
		counter(missesDesc, stats.Misses)
		counter(reclaimedDesc, stats.Reclaimed)
	}
}

// WriteText gathers all metrics from a given registry and writes them out in
// the prometheus text exposition format.
func WriteText(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	//
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	//
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return err
		}
	}
	//
	return nil
}
