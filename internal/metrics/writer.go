package metrics

// Metrics output (CSV) and summary formatting

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
)

// Writer streams metrics to a CSV file
type Writer struct {
	csvFile   *os.File
	csvWriter *csv.Writer
}

var csvHeader = []string{
	"timestamp",
	"module",
	"operation",
	"path",
	"success",
	"rtt_ms",
	"request_bytes",
	"reply_bytes",
	"error",
}

// NewWriter creates a CSV file at csvPath and writes the header.
func NewWriter(csvPath string) (*Writer, error) {
	file, err := os.Create(csvPath)
	if err != nil {
		return nil, fmt.Errorf("create CSV file: %w", err)
	}
	w := &Writer{csvFile: file, csvWriter: csv.NewWriter(file)}
	if err := w.csvWriter.Write(csvHeader); err != nil {
		file.Close()
		return nil, fmt.Errorf("write CSV header: %w", err)
	}
	w.csvWriter.Flush()
	return w, nil
}

// WriteMetric writes a single metric
func (w *Writer) WriteMetric(m Metric) error {
	record := []string{
		m.Timestamp.Format(time.RFC3339Nano),
		m.Module,
		string(m.Operation),
		m.Path,
		strconv.FormatBool(m.Success),
		formatRTT(m.RTTMs),
		strconv.Itoa(m.RequestBytes),
		strconv.Itoa(m.ReplyBytes),
		m.Error,
	}
	if err := w.csvWriter.Write(record); err != nil {
		return fmt.Errorf("write CSV record: %w", err)
	}
	w.csvWriter.Flush()
	return w.csvWriter.Error()
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.csvWriter.Flush()
	return multierr.Combine(w.csvWriter.Error(), w.csvFile.Close())
}

// formatRTT formats RTT value for CSV (empty string if 0)
func formatRTT(rtt float64) string {
	if rtt == 0 {
		return ""
	}
	return fmt.Sprintf("%.3f", rtt)
}

// FormatSummary formats a summary for human-readable output
func FormatSummary(summary *Summary) string {
	var b strings.Builder
	if summary.TotalOperations == 0 {
		b.WriteString("No exchanges recorded\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Total Operations: %d\n", summary.TotalOperations)
	fmt.Fprintf(&b, "Successful: %d (%.1f%%)\n",
		summary.SuccessfulOps,
		float64(summary.SuccessfulOps)/float64(summary.TotalOperations)*100)
	fmt.Fprintf(&b, "Failed: %d (%.1f%%)\n",
		summary.FailedOps,
		float64(summary.FailedOps)/float64(summary.TotalOperations)*100)
	if summary.TimeoutCount > 0 {
		fmt.Fprintf(&b, "Timeouts: %d\n", summary.TimeoutCount)
	}
	fmt.Fprintf(&b, "Sent: %s, received: %s\n",
		humanize.Bytes(summary.RequestBytes), humanize.Bytes(summary.ReplyBytes))

	if summary.SuccessfulOps > 0 {
		b.WriteString("\nRTT Statistics:\n")
		fmt.Fprintf(&b, "  Min: %.3f ms\n", summary.MinRTT)
		fmt.Fprintf(&b, "  Max: %.3f ms\n", summary.MaxRTT)
		fmt.Fprintf(&b, "  Avg: %.3f ms\n", summary.AvgRTT)
		if summary.P50RTT > 0 {
			fmt.Fprintf(&b, "  P50: %.3f ms\n", summary.P50RTT)
			fmt.Fprintf(&b, "  P90: %.3f ms\n", summary.P90RTT)
			fmt.Fprintf(&b, "  P95: %.3f ms\n", summary.P95RTT)
			fmt.Fprintf(&b, "  P99: %.3f ms\n", summary.P99RTT)
		}
		if len(summary.RTTBuckets) > 0 {
			fmt.Fprintf(&b, "  Buckets: <1ms=%d 1-5ms=%d 5-10ms=%d 10-50ms=%d 50-100ms=%d 100-500ms=%d >500ms=%d\n",
				summary.RTTBuckets["lt_1ms"],
				summary.RTTBuckets["1_5ms"],
				summary.RTTBuckets["5_10ms"],
				summary.RTTBuckets["10_50ms"],
				summary.RTTBuckets["50_100ms"],
				summary.RTTBuckets["100_500ms"],
				summary.RTTBuckets["gt_500ms"],
			)
		}
	}

	if len(summary.ByOperation) > 0 {
		ops := make([]string, 0, len(summary.ByOperation))
		for op := range summary.ByOperation {
			ops = append(ops, string(op))
		}
		sort.Strings(ops)
		b.WriteString("\nPer-Operation Statistics:\n")
		for _, op := range ops {
			stats := summary.ByOperation[Operation(op)]
			fmt.Fprintf(&b, "  %s: %d ops (%d success, %d failed)",
				op, stats.Count, stats.Success, stats.Failed)
			if stats.Success > 0 {
				fmt.Fprintf(&b, " - RTT: min=%.3fms, max=%.3fms, avg=%.3fms",
					stats.MinRTT, stats.MaxRTT, stats.AvgRTT)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
