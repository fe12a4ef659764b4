// Package artifact handles structured output artifacts for send runs.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tturner/yangfuzz/internal/metrics"
)

// RunMetadata contains metadata about a send run.
type RunMetadata struct {
	RunID     string    `json:"run_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  string    `json:"duration"`

	Module    string `json:"module"`
	Filter    string `json:"filter,omitempty"`
	Seed      *int64 `json:"seed,omitempty"`
	Datastore string `json:"datastore"`

	TargetHost string `json:"target_host"`
	TargetPort int    `json:"target_port"`
	SessionID  string `json:"session_id,omitempty"`

	Stats    RunStats `json:"stats"`
	ExitCode int      `json:"exit_code"`
	Error    string   `json:"error,omitempty"`

	// Paths relative to the output directory
	Artifacts ArtifactPaths `json:"artifacts"`
}

// RunStats contains statistics from a send run.
type RunStats struct {
	TotalOperations int     `json:"total_operations"`
	SuccessfulOps   int     `json:"successful_ops"`
	FailedOps       int     `json:"failed_ops"`
	TimeoutCount    int     `json:"timeout_count"`
	RequestBytes    uint64  `json:"request_bytes"`
	ReplyBytes      uint64  `json:"reply_bytes"`
	AvgRTTMs        float64 `json:"avg_rtt_ms"`
	P50RTTMs        float64 `json:"p50_rtt_ms"`
	P95RTTMs        float64 `json:"p95_rtt_ms"`
	P99RTTMs        float64 `json:"p99_rtt_ms"`
	MaxRTTMs        float64 `json:"max_rtt_ms"`
}

// ArtifactPaths contains relative paths to generated artifacts.
type ArtifactPaths struct {
	RunJSON      string `json:"run_json"`
	MetricsCSV   string `json:"metrics_csv,omitempty"`
	SummaryTxt   string `json:"summary_txt,omitempty"`
	SkeletonJSON string `json:"skeleton_json,omitempty"`
	RepliesDir   string `json:"replies_dir,omitempty"`
	PCAP         string `json:"pcap,omitempty"`
}

// OutputManager manages artifact output for a run.
type OutputManager struct {
	outputDir string
	runID     string
	metadata  *RunMetadata
	replies   int
}

// NewOutputManager creates a new output manager for the given directory.
func NewOutputManager(outputDir string) (*OutputManager, error) {
	now := time.Now()
	runID := now.Format("20060102-150405")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	return &OutputManager{
		outputDir: outputDir,
		runID:     runID,
		metadata: &RunMetadata{
			RunID:     runID,
			StartTime: now,
			Artifacts: ArtifactPaths{
				RunJSON: "run.json",
			},
		},
	}, nil
}

// OutputDir returns the output directory path.
func (m *OutputManager) OutputDir() string {
	return m.outputDir
}

// RunID returns the run identifier.
func (m *OutputManager) RunID() string {
	return m.runID
}

// Metadata returns the run metadata. Changes are written by Finalize.
func (m *OutputManager) Metadata() *RunMetadata {
	return m.metadata
}

// SetModule records what was generated.
func (m *OutputManager) SetModule(name, filter string, seed *int64) {
	m.metadata.Module = name
	m.metadata.Filter = filter
	m.metadata.Seed = seed
}

// SetTarget records the NETCONF target.
func (m *OutputManager) SetTarget(host string, port int, datastore string) {
	m.metadata.TargetHost = host
	m.metadata.TargetPort = port
	m.metadata.Datastore = datastore
}

// SetSessionID records the server-assigned session id.
func (m *OutputManager) SetSessionID(id string) {
	m.metadata.SessionID = id
}

// MetricsPath returns the full path for the metrics file and records it.
func (m *OutputManager) MetricsPath() string {
	name := fmt.Sprintf("metrics_%s.csv", m.runID)
	m.metadata.Artifacts.MetricsCSV = name
	return filepath.Join(m.outputDir, name)
}

// SkeletonPath returns the full path for the skeleton report and records it.
func (m *OutputManager) SkeletonPath() string {
	m.metadata.Artifacts.SkeletonJSON = "skeleton.json"
	return filepath.Join(m.outputDir, "skeleton.json")
}

// PCAPPath returns the full path for the session capture and records it.
func (m *OutputManager) PCAPPath() string {
	m.metadata.Artifacts.PCAP = "session.pcap"
	return filepath.Join(m.outputDir, "session.pcap")
}

// SummaryPath returns the full path for the summary file.
func (m *OutputManager) SummaryPath() string {
	return filepath.Join(m.outputDir, fmt.Sprintf("summary_%s.txt", m.runID))
}

// RunJSONPath returns the full path for the run.json file.
func (m *OutputManager) RunJSONPath() string {
	return filepath.Join(m.outputDir, "run.json")
}

// WriteReply stores one raw reply as replies/NNNN.xml and returns its path.
func (m *OutputManager) WriteReply(reply []byte) (string, error) {
	dir := filepath.Join(m.outputDir, "replies")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create replies directory: %w", err)
	}
	m.metadata.Artifacts.RepliesDir = "replies"
	m.replies++
	path := filepath.Join(dir, fmt.Sprintf("%04d.xml", m.replies))
	if err := os.WriteFile(path, reply, 0644); err != nil {
		return "", fmt.Errorf("write reply: %w", err)
	}
	return path, nil
}

// Finalize completes the run and writes the summary and run.json.
func (m *OutputManager) Finalize(summary *metrics.Summary, exitCode int, runErr error) error {
	m.metadata.EndTime = time.Now()
	m.metadata.Duration = m.metadata.EndTime.Sub(m.metadata.StartTime).String()
	m.metadata.ExitCode = exitCode

	if runErr != nil {
		m.metadata.Error = runErr.Error()
	}

	if summary != nil {
		m.metadata.Stats = RunStats{
			TotalOperations: summary.TotalOperations,
			SuccessfulOps:   summary.SuccessfulOps,
			FailedOps:       summary.FailedOps,
			TimeoutCount:    summary.TimeoutCount,
			RequestBytes:    summary.RequestBytes,
			ReplyBytes:      summary.ReplyBytes,
			AvgRTTMs:        summary.AvgRTT,
			P50RTTMs:        summary.P50RTT,
			P95RTTMs:        summary.P95RTT,
			P99RTTMs:        summary.P99RTT,
			MaxRTTMs:        summary.MaxRTT,
		}
	}

	m.metadata.Artifacts.SummaryTxt = filepath.Base(m.SummaryPath())
	if err := m.writeSummary(summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if err := m.writeRunJSON(); err != nil {
		return fmt.Errorf("write run.json: %w", err)
	}

	return nil
}

func (m *OutputManager) writeSummary(summary *metrics.Summary) error {
	f, err := os.Create(m.SummaryPath())
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "yangfuzz Run Summary\n")
	fmt.Fprintf(f, "====================\n\n")

	fmt.Fprintf(f, "Run ID:     %s\n", m.metadata.RunID)
	fmt.Fprintf(f, "Start Time: %s\n", m.metadata.StartTime.Format(time.RFC3339))
	fmt.Fprintf(f, "End Time:   %s\n", m.metadata.EndTime.Format(time.RFC3339))
	fmt.Fprintf(f, "Duration:   %s\n\n", m.metadata.Duration)

	fmt.Fprintf(f, "Module:    %s\n", m.metadata.Module)
	if m.metadata.Filter != "" {
		fmt.Fprintf(f, "Filter:    %s\n", m.metadata.Filter)
	}
	if m.metadata.Seed != nil {
		fmt.Fprintf(f, "Seed:      %d\n", *m.metadata.Seed)
	}
	fmt.Fprintf(f, "Target:    %s:%d\n", m.metadata.TargetHost, m.metadata.TargetPort)
	fmt.Fprintf(f, "Datastore: %s\n\n", m.metadata.Datastore)

	if summary != nil {
		fmt.Fprintf(f, "Results\n")
		fmt.Fprintf(f, "-------\n")
		fmt.Fprint(f, metrics.FormatSummary(summary))
		fmt.Fprintln(f)
	}

	if m.metadata.Error != "" {
		fmt.Fprintf(f, "Error: %s\n\n", m.metadata.Error)
	}

	fmt.Fprintf(f, "Artifacts\n")
	fmt.Fprintf(f, "---------\n")
	if m.metadata.Artifacts.MetricsCSV != "" {
		fmt.Fprintf(f, "Metrics:  %s\n", m.metadata.Artifacts.MetricsCSV)
	}
	if m.metadata.Artifacts.SkeletonJSON != "" {
		fmt.Fprintf(f, "Skeleton: %s\n", m.metadata.Artifacts.SkeletonJSON)
	}
	if m.metadata.Artifacts.RepliesDir != "" {
		fmt.Fprintf(f, "Replies:  %s/ (%d files)\n", m.metadata.Artifacts.RepliesDir, m.replies)
	}
	if m.metadata.Artifacts.PCAP != "" {
		fmt.Fprintf(f, "PCAP:     %s\n", m.metadata.Artifacts.PCAP)
	}
	fmt.Fprintf(f, "Summary:  %s\n", m.metadata.Artifacts.SummaryTxt)
	fmt.Fprintf(f, "Run JSON: %s\n", m.metadata.Artifacts.RunJSON)

	return nil
}

func (m *OutputManager) writeRunJSON() error {
	data, err := json.MarshalIndent(m.metadata, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.RunJSONPath(), data, 0644)
}
