package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func sampleReport() SkeletonReport {
	seed := int64(42)
	return SkeletonReport{
		GeneratedAt:     "2024-01-15T10:00:00Z",
		YangfuzzVersion: "1.0.0",
		Module:          "example",
		Namespace:       "urn:example",
		Features:        []string{"advanced"},
		Seed:            &seed,
		Entries: []EntryReport{
			{
				Name:     "cfg",
				Path:     "/example:cfg",
				Template: `<cfg xmlns="urn:example"><name>{{/example:cfg/name}}</name></cfg>`,
				Initial:  `<cfg xmlns="urn:example"><name>abc</name></cfg>`,
				Slots:    []SlotReport{{Path: "/example:cfg/name", Generator: "string len 1..32", Initial: "abc"}},
			},
		},
	}
}

func TestWriteJSON(t *testing.T) {
	report := sampleReport()
	var buf bytes.Buffer
	if err := WriteJSON(&buf, report); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded SkeletonReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.GeneratedAt != report.GeneratedAt {
		t.Errorf("GeneratedAt mismatch: got %q, want %q", decoded.GeneratedAt, report.GeneratedAt)
	}
	if len(decoded.Entries) != 1 || len(decoded.Entries[0].Slots) != 1 {
		t.Errorf("entries = %+v", decoded.Entries)
	}
	if decoded.Seed == nil || *decoded.Seed != 42 {
		t.Errorf("seed = %v", decoded.Seed)
	}
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := WriteJSONFile(path, sampleReport()); err != nil {
		t.Fatalf("WriteJSONFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var decoded SkeletonReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("file is not valid JSON: %v", err)
	}
	if decoded.Module != "example" {
		t.Errorf("module = %q", decoded.Module)
	}
}

func TestWriteJSONFile_BadPath(t *testing.T) {
	if err := WriteJSONFile(filepath.Join(t.TempDir(), "missing", "r.json"), sampleReport()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
