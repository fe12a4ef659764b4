package metrics

// Metrics collection for NETCONF exchanges

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

// Operation names the NETCONF operation of an exchange.
type Operation string

const (
	OperationEditConfig Operation = "edit-config"
	OperationGet        Operation = "get"
	OperationRPC        Operation = "rpc"
)

// Metric is one request/reply exchange.
type Metric struct {
	Timestamp    time.Time
	Module       string
	Operation    Operation
	Path         string // Skeleton entry path
	Success      bool
	RTTMs        float64
	RequestBytes int
	ReplyBytes   int
	Error        string
}

// Sink collects and aggregates metrics
type Sink struct {
	mu      sync.RWMutex
	metrics []Metric
	summary *Summary
}

// Summary contains aggregated statistics
type Summary struct {
	TotalOperations int
	SuccessfulOps   int
	FailedOps       int
	TimeoutCount    int
	RequestBytes    uint64
	ReplyBytes      uint64
	MinRTT          float64
	MaxRTT          float64
	AvgRTT          float64
	P50RTT          float64
	P90RTT          float64
	P95RTT          float64
	P99RTT          float64
	RTTBuckets      map[string]int
	ByOperation     map[Operation]*OperationStats
}

// OperationStats contains statistics for one operation
type OperationStats struct {
	Count   int
	Success int
	Failed  int
	MinRTT  float64
	MaxRTT  float64
	AvgRTT  float64
	SumRTT  float64
}

func newSummary() *Summary {
	return &Summary{
		RTTBuckets:  make(map[string]int),
		ByOperation: make(map[Operation]*OperationStats),
	}
}

// NewSink creates a new metrics sink
func NewSink() *Sink {
	return &Sink{
		metrics: make([]Metric, 0),
		summary: newSummary(),
	}
}

// Record records a new metric
func (s *Sink) Record(m Metric) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics = append(s.metrics, m)
	s.updateSummary(m)
}

// GetMetrics returns a copy of all recorded metrics
func (s *Sink) GetMetrics() []Metric {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics := make([]Metric, len(s.metrics))
	copy(metrics, s.metrics)
	return metrics
}

// GetSummary returns a copy of the aggregated summary with percentiles
// computed over all successful exchanges.
func (s *Sink) GetSummary() *Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := *s.summary
	summary.RTTBuckets = make(map[string]int)
	summary.ByOperation = make(map[Operation]*OperationStats)
	for op, stats := range s.summary.ByOperation {
		c := *stats
		summary.ByOperation[op] = &c
	}

	rtts := make([]float64, 0, len(s.metrics))
	for _, m := range s.metrics {
		if m.Success && m.RTTMs > 0 {
			rtts = append(rtts, m.RTTMs)
			incrementBucket(summary.RTTBuckets, m.RTTMs)
		}
	}
	p := computePercentiles(rtts)
	summary.P50RTT, summary.P90RTT, summary.P95RTT, summary.P99RTT = p[0], p[1], p[2], p[3]
	return &summary
}

func (s *Sink) updateSummary(m Metric) {
	s.summary.TotalOperations++
	s.summary.RequestBytes += uint64(m.RequestBytes)
	s.summary.ReplyBytes += uint64(m.ReplyBytes)

	if m.Success {
		s.summary.SuccessfulOps++
	} else {
		s.summary.FailedOps++
		if strings.Contains(m.Error, "deadline exceeded") || strings.Contains(m.Error, "timeout") {
			s.summary.TimeoutCount++
		}
	}

	if m.Success && m.RTTMs > 0 {
		if s.summary.MinRTT == 0 || m.RTTMs < s.summary.MinRTT {
			s.summary.MinRTT = m.RTTMs
		}
		if m.RTTMs > s.summary.MaxRTT {
			s.summary.MaxRTT = m.RTTMs
		}
		totalRTT := s.summary.AvgRTT * float64(s.summary.SuccessfulOps-1)
		totalRTT += m.RTTMs
		s.summary.AvgRTT = totalRTT / float64(s.summary.SuccessfulOps)
	}

	opStats, exists := s.summary.ByOperation[m.Operation]
	if !exists {
		opStats = &OperationStats{}
		s.summary.ByOperation[m.Operation] = opStats
	}
	opStats.Count++
	if !m.Success {
		opStats.Failed++
		return
	}
	opStats.Success++
	if m.RTTMs > 0 {
		if opStats.MinRTT == 0 || m.RTTMs < opStats.MinRTT {
			opStats.MinRTT = m.RTTMs
		}
		if m.RTTMs > opStats.MaxRTT {
			opStats.MaxRTT = m.RTTMs
		}
		opStats.SumRTT += m.RTTMs
		opStats.AvgRTT = opStats.SumRTT / float64(opStats.Success)
	}
}

func incrementBucket(buckets map[string]int, value float64) {
	switch {
	case value < 1:
		buckets["lt_1ms"]++
	case value < 5:
		buckets["1_5ms"]++
	case value < 10:
		buckets["5_10ms"]++
	case value < 50:
		buckets["10_50ms"]++
	case value < 100:
		buckets["50_100ms"]++
	case value < 500:
		buckets["100_500ms"]++
	default:
		buckets["gt_500ms"]++
	}
}

func computePercentiles(values []float64) [4]float64 {
	var result [4]float64
	if len(values) == 0 {
		return result
	}
	sort.Float64s(values)
	result[0] = percentile(values, 0.50)
	result[1] = percentile(values, 0.90)
	result[2] = percentile(values, 0.95)
	result[3] = percentile(values, 0.99)
	return result
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
