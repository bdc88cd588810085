// Package reader implements C7 (beam fan-out/merge) and C8
// (stats/control), grounded on proc/mux.go's puller/merge-channel
// pattern and driver/parallel.go's mutex-guarded Stats accumulation.
package reader

import (
	"sync"

	"github.com/paulbellamy/ratecounter"
	"github.com/prometheus/client_golang/prometheus"
)

// Stats is the mutex-guarded counter set every beam worker updates and
// Reader.Stats reads back, mirroring the original's read/atomic stat
// block plus a Prometheus-exported view for long-running deployments.
type Stats struct {
	mu              sync.Mutex
	SegmentsRead    int64
	ExtentsSent     int64
	ExtentsDropped  int64
	ExtentsRetried  int64
	ExtentsFiltered int64

	rate *ratecounter.RateCounter
}

func newStats() *Stats {
	return &Stats{rate: ratecounter.NewRateCounter(1e9)} // 1s window, nanosecond ticks
}

// recordSegmentsRead adds n to the number of ATL03 geolocation segments
// read for a beam, mirroring region.num_segments in the original.
func (s *Stats) recordSegmentsRead(n int64) {
	s.mu.Lock()
	s.SegmentsRead += n
	s.mu.Unlock()
	s.rate.Incr(n)
}

func (s *Stats) recordSent() {
	s.mu.Lock()
	s.ExtentsSent++
	s.mu.Unlock()
}

func (s *Stats) recordDropped() {
	s.mu.Lock()
	s.ExtentsDropped++
	s.mu.Unlock()
}

func (s *Stats) recordRetried() {
	s.mu.Lock()
	s.ExtentsRetried++
	s.mu.Unlock()
}

func (s *Stats) recordFiltered() {
	s.mu.Lock()
	s.ExtentsFiltered++
	s.mu.Unlock()
}

// Snapshot is an immutable copy of a Stats instant, optionally zeroing
// the live counters (reset=true) the way a periodic scrape would.
type Snapshot struct {
	SegmentsRead      int64
	ExtentsSent       int64
	ExtentsDropped    int64
	ExtentsRetried    int64
	ExtentsFiltered   int64
	SegmentsPerSecond int64
}

// Snapshot reads the current counters, resetting them when reset is
// true.
func (s *Stats) Snapshot(reset bool) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		SegmentsRead:      s.SegmentsRead,
		ExtentsSent:       s.ExtentsSent,
		ExtentsDropped:    s.ExtentsDropped,
		ExtentsRetried:    s.ExtentsRetried,
		ExtentsFiltered:   s.ExtentsFiltered,
		SegmentsPerSecond: s.rate.Rate(),
	}
	if reset {
		s.SegmentsRead, s.ExtentsSent, s.ExtentsDropped, s.ExtentsRetried, s.ExtentsFiltered = 0, 0, 0, 0, 0
	}
	return snap
}

// Collector adapts Stats to prometheus.Collector so a long-running
// reader can be scraped alongside the rest of a service's metrics.
type Collector struct {
	stats *Stats

	segments *prometheus.Desc
	sent     *prometheus.Desc
	dropped  *prometheus.Desc
	retried  *prometheus.Desc
	filtered *prometheus.Desc
}

// NewCollector wraps s for Prometheus registration.
func NewCollector(s *Stats) *Collector {
	return &Collector{
		stats:    s,
		segments: prometheus.NewDesc("sliderule_segments_read_total", "ATL03 geolocation segments read.", nil, nil),
		sent:     prometheus.NewDesc("sliderule_extents_sent_total", "Extents successfully posted.", nil, nil),
		dropped:  prometheus.NewDesc("sliderule_extents_dropped_total", "Extents dropped after post failure.", nil, nil),
		retried:  prometheus.NewDesc("sliderule_extents_retried_total", "Extent posts retried after a queue timeout.", nil, nil),
		filtered: prometheus.NewDesc("sliderule_extents_filtered_total", "Extent windows rejected as invalid, including empty ones.", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.segments
	ch <- c.sent
	ch <- c.dropped
	ch <- c.retried
	ch <- c.filtered
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.stats.Snapshot(false)
	ch <- prometheus.MustNewConstMetric(c.segments, prometheus.CounterValue, float64(snap.SegmentsRead))
	ch <- prometheus.MustNewConstMetric(c.sent, prometheus.CounterValue, float64(snap.ExtentsSent))
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(snap.ExtentsDropped))
	ch <- prometheus.MustNewConstMetric(c.retried, prometheus.CounterValue, float64(snap.ExtentsRetried))
	ch <- prometheus.MustNewConstMetric(c.filtered, prometheus.CounterValue, float64(snap.ExtentsFiltered))
}
