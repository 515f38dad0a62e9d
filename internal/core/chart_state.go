package core

import "sync"

// ChartState holds the last computed chart for the dashboard.
//
// The chart is recomputed when the requested granularity changes or when
// a newer transaction list arrives (a higher snapshot version). A list
// older than the stored one never replaces the stored chart. An empty
// transaction list leaves the previous chart untouched so the dashboard
// does not flash an empty chart while data is loading.
type ChartState struct {
	mu       sync.Mutex
	chart    Chart
	version  uint64
	computed bool
}

// Observe returns the chart for txs at granularity g, recomputing only when
// needed. version identifies the transaction list.
func (s *ChartState) Observe(version uint64, txs []Transaction, g Granularity, b Bucketer) Chart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(txs) == 0 {
		return s.chart.Clone()
	}
	if s.computed && version < s.version {
		if s.chart.Granularity == g {
			return s.chart.Clone()
		}
		return b.Bucket(txs, g)
	}
	if s.computed && s.version == version && s.chart.Granularity == g {
		return s.chart.Clone()
	}
	s.chart = b.Bucket(txs, g)
	s.version = version
	s.computed = true
	return s.chart.Clone()
}

// Current returns the last computed chart without recomputing.
func (s *ChartState) Current() Chart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chart.Clone()
}
