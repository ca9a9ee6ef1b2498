package vnet

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Simple and combined per-sw-interface counters: two simple counters
// {drops, punts} and two combined (packets+bytes) counters {rx, tx}.
type swCounters struct {
	drops, punts   uint64
	rxPkts, rxByte uint64
	txPkts, txByte uint64
}

// CounterCollector shards counters per worker (indexed 0..nWorkers-1)
// and sums shards on read. Every increment and read takes the
// collector's single mutex. It implements prometheus.Collector for
// scrape export.
type CounterCollector struct {
	mu      sync.Mutex
	shards  [][]swCounters // [worker][sw_if_index]
	workers int

	names func(SwIfIndex) string

	descDrops, descPunts, descRxPkts, descRxBytes, descTxPkts, descTxBytes *prometheus.Desc
}

// NewCounterCollector creates a collector with the given worker-shard
// count (1 for a single-threaded deployment).
func NewCounterCollector(workers int) *CounterCollector {
	if workers < 1 {
		workers = 1
	}
	c := &CounterCollector{
		workers: workers,
		shards:  make([][]swCounters, workers),
		names:   func(idx SwIfIndex) string { return "" },
	}
	ns := "vnet_interface"
	labels := []string{"sw_if_index"}
	c.descDrops = prometheus.NewDesc(ns+"_drops_total", "Packets dropped on this sw-interface.", labels, nil)
	c.descPunts = prometheus.NewDesc(ns+"_punts_total", "Packets punted on this sw-interface.", labels, nil)
	c.descRxPkts = prometheus.NewDesc(ns+"_rx_packets_total", "Packets received on this sw-interface.", labels, nil)
	c.descRxBytes = prometheus.NewDesc(ns+"_rx_bytes_total", "Bytes received on this sw-interface.", labels, nil)
	c.descTxPkts = prometheus.NewDesc(ns+"_tx_packets_total", "Packets transmitted on this sw-interface.", labels, nil)
	c.descTxBytes = prometheus.NewDesc(ns+"_tx_bytes_total", "Bytes transmitted on this sw-interface.", labels, nil)
	return c
}

// SetNameFunc lets the owning Manager supply a sw_if_index -> name
// mapping used as the prometheus label value.
func (c *CounterCollector) SetNameFunc(f func(SwIfIndex) string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = f
}

// Grow ensures every shard can address at least n sw-interfaces.
// RegisterInterface/CreateSubInterface call this as new indices are
// allocated; tests driving a CounterCollector directly call it too.
func (c *CounterCollector) Grow(n int) { c.ensure(n) }

func (c *CounterCollector) ensure(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for w := range c.shards {
		if len(c.shards[w]) < n {
			grown := make([]swCounters, n)
			copy(grown, c.shards[w])
			c.shards[w] = grown
		}
	}
}

func (c *CounterCollector) shard(worker int) []swCounters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shards[worker%c.workers]
}

// AddDrop increments the drop counter for sw_if_index on worker.
func (c *CounterCollector) AddDrop(worker int, idx SwIfIndex, n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shards[worker%c.workers][idx].drops += n
}

// AddPunt increments the punt counter.
func (c *CounterCollector) AddPunt(worker int, idx SwIfIndex, n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shards[worker%c.workers][idx].punts += n
}

// AddRx increments the combined rx (packets, bytes) counter.
func (c *CounterCollector) AddRx(worker int, idx SwIfIndex, packets, bytes uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shards[worker%c.workers][idx].rxPkts += packets
	c.shards[worker%c.workers][idx].rxByte += bytes
}

// AddTx increments the combined tx (packets, bytes) counter.
func (c *CounterCollector) AddTx(worker int, idx SwIfIndex, packets, bytes uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shards[worker%c.workers][idx].txPkts += packets
	c.shards[worker%c.workers][idx].txByte += bytes
}

// Totals sums every worker shard for idx.
func (c *CounterCollector) Totals(idx SwIfIndex) (drops, punts, rxPkts, rxBytes, txPkts, txBytes uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, shard := range c.shards {
		if int(idx) >= len(shard) {
			continue
		}
		s := shard[idx]
		drops += s.drops
		punts += s.punts
		rxPkts += s.rxPkts
		rxBytes += s.rxByte
		txPkts += s.txPkts
		txBytes += s.txByte
	}
	return
}

// ClearCounters zeroes every shard for idx.
func (c *CounterCollector) ClearCounters(idx SwIfIndex) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, shard := range c.shards {
		if int(idx) < len(shard) {
			shard[idx] = swCounters{}
		}
	}
}

// Describe implements prometheus.Collector.
func (c *CounterCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.descDrops
	ch <- c.descPunts
	ch <- c.descRxPkts
	ch <- c.descRxBytes
	ch <- c.descTxPkts
	ch <- c.descTxBytes
}

// Collect implements prometheus.Collector, summing shards per
// sw_if_index on read.
func (c *CounterCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	n := 0
	for _, shard := range c.shards {
		if len(shard) > n {
			n = len(shard)
		}
	}
	names := c.names
	c.mu.Unlock()

	for i := 0; i < n; i++ {
		idx := SwIfIndex(i)
		drops, punts, rxPkts, rxBytes, txPkts, txBytes := c.Totals(idx)
		label := names(idx)
		ch <- prometheus.MustNewConstMetric(c.descDrops, prometheus.CounterValue, float64(drops), label)
		ch <- prometheus.MustNewConstMetric(c.descPunts, prometheus.CounterValue, float64(punts), label)
		ch <- prometheus.MustNewConstMetric(c.descRxPkts, prometheus.CounterValue, float64(rxPkts), label)
		ch <- prometheus.MustNewConstMetric(c.descRxBytes, prometheus.CounterValue, float64(rxBytes), label)
		ch <- prometheus.MustNewConstMetric(c.descTxPkts, prometheus.CounterValue, float64(txPkts), label)
		ch <- prometheus.MustNewConstMetric(c.descTxBytes, prometheus.CounterValue, float64(txBytes), label)
	}
}
