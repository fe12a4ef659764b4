package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tturner/yangfuzz/internal/metrics"
)

func TestNewOutputManager(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "output")

	m, err := NewOutputManager(outDir)
	if err != nil {
		t.Fatalf("NewOutputManager() error = %v", err)
	}

	if m.OutputDir() != outDir {
		t.Errorf("OutputDir() = %q, want %q", m.OutputDir(), outDir)
	}
	if m.RunID() == "" {
		t.Error("RunID() should not be empty")
	}

	info, err := os.Stat(outDir)
	if err != nil {
		t.Fatalf("output dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("output path should be a directory")
	}
}

func TestNewOutputManager_InvalidPath(t *testing.T) {
	_, err := NewOutputManager("/dev/null/impossible")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestOutputManager_Setters(t *testing.T) {
	m, _ := NewOutputManager(t.TempDir())
	seed := int64(4)
	m.SetModule("example", "/example:cfg", &seed)
	m.SetTarget("192.0.2.10", 830, "candidate")
	m.SetSessionID("17")

	md := m.Metadata()
	if md.Module != "example" || md.Filter != "/example:cfg" || *md.Seed != 4 {
		t.Errorf("module metadata = %+v", md)
	}
	if md.TargetHost != "192.0.2.10" || md.TargetPort != 830 || md.Datastore != "candidate" {
		t.Errorf("target metadata = %+v", md)
	}
	if md.SessionID != "17" {
		t.Errorf("SessionID = %q", md.SessionID)
	}
}

func TestOutputManager_Paths(t *testing.T) {
	dir := t.TempDir()
	m, _ := NewOutputManager(dir)

	if got := m.MetricsPath(); got != filepath.Join(dir, "metrics_"+m.RunID()+".csv") {
		t.Errorf("MetricsPath() = %q", got)
	}
	if got := m.PCAPPath(); got != filepath.Join(dir, "session.pcap") {
		t.Errorf("PCAPPath() = %q", got)
	}
	if got := m.SkeletonPath(); got != filepath.Join(dir, "skeleton.json") {
		t.Errorf("SkeletonPath() = %q", got)
	}
	if got := m.RunJSONPath(); got != filepath.Join(dir, "run.json") {
		t.Errorf("RunJSONPath() = %q", got)
	}
	a := m.Metadata().Artifacts
	if a.MetricsCSV == "" || a.SkeletonJSON != "skeleton.json" {
		t.Errorf("artifacts not recorded: %+v", a)
	}
}

func TestOutputManager_WriteReply(t *testing.T) {
	dir := t.TempDir()
	m, _ := NewOutputManager(dir)

	first, err := m.WriteReply([]byte(`<rpc-reply message-id="1"><ok/></rpc-reply>`))
	if err != nil {
		t.Fatalf("WriteReply: %v", err)
	}
	second, err := m.WriteReply([]byte(`<rpc-reply message-id="2"><ok/></rpc-reply>`))
	if err != nil {
		t.Fatalf("WriteReply: %v", err)
	}
	if first != filepath.Join(dir, "replies", "0001.xml") || second != filepath.Join(dir, "replies", "0002.xml") {
		t.Errorf("paths = %s, %s", first, second)
	}
	data, err := os.ReadFile(second)
	if err != nil || !strings.Contains(string(data), `message-id="2"`) {
		t.Errorf("reply file = %q, %v", data, err)
	}
}

func TestOutputManager_Finalize(t *testing.T) {
	dir := t.TempDir()
	m, _ := NewOutputManager(dir)

	m.SetModule("example", "", nil)
	m.SetTarget("192.0.2.10", 830, "running")
	m.MetricsPath()
	m.WriteReply([]byte("<rpc-reply/>"))

	summary := &metrics.Summary{
		TotalOperations: 100,
		SuccessfulOps:   95,
		FailedOps:       5,
		TimeoutCount:    2,
		RequestBytes:    4096,
		AvgRTT:          1.5,
		P50RTT:          1.2,
		P95RTT:          3.0,
		P99RTT:          5.0,
		MaxRTT:          8.0,
	}

	if err := m.Finalize(summary, 0, nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	runJSON, err := os.ReadFile(m.RunJSONPath())
	if err != nil {
		t.Fatalf("read run.json: %v", err)
	}

	var meta RunMetadata
	if err := json.Unmarshal(runJSON, &meta); err != nil {
		t.Fatalf("unmarshal run.json: %v", err)
	}

	if meta.RunID == "" {
		t.Error("run_id should not be empty")
	}
	if meta.Module != "example" {
		t.Errorf("module = %q, want %q", meta.Module, "example")
	}
	if meta.Stats.TotalOperations != 100 || meta.Stats.SuccessfulOps != 95 {
		t.Errorf("stats = %+v", meta.Stats)
	}
	if meta.Stats.AvgRTTMs != 1.5 || meta.Stats.RequestBytes != 4096 {
		t.Errorf("stats = %+v", meta.Stats)
	}
	if meta.Duration == "" {
		t.Error("duration should not be empty")
	}
	if meta.Artifacts.SummaryTxt == "" || meta.Artifacts.RepliesDir != "replies" {
		t.Errorf("artifacts = %+v", meta.Artifacts)
	}

	summaryData, err := os.ReadFile(m.SummaryPath())
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	summaryStr := string(summaryData)
	for _, want := range []string{"yangfuzz Run Summary", "Module:    example", "192.0.2.10:830", "Total Operations: 100", "replies/ (1 files)"} {
		if !strings.Contains(summaryStr, want) {
			t.Errorf("summary missing %q:\n%s", want, summaryStr)
		}
	}
}

func TestOutputManager_Finalize_WithError(t *testing.T) {
	dir := t.TempDir()
	m, _ := NewOutputManager(dir)
	m.SetTarget("192.0.2.10", 830, "running")

	if err := m.Finalize(nil, 1, os.ErrPermission); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	runJSON, err := os.ReadFile(m.RunJSONPath())
	if err != nil {
		t.Fatalf("read run.json: %v", err)
	}

	var meta RunMetadata
	json.Unmarshal(runJSON, &meta)

	if meta.ExitCode != 1 {
		t.Errorf("exit_code = %d, want 1", meta.ExitCode)
	}
	if meta.Error == "" {
		t.Error("error should not be empty")
	}
	summaryData, _ := os.ReadFile(m.SummaryPath())
	if !strings.Contains(string(summaryData), "Error: permission denied") {
		t.Errorf("summary = %s", summaryData)
	}
}
