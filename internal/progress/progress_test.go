package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestNewProgressBar(t *testing.T) {
	pb := NewProgressBar(100, "test")
	if pb.total != 100 {
		t.Errorf("total = %d, want 100", pb.total)
	}
	if pb.current != 0 {
		t.Errorf("current = %d, want 0", pb.current)
	}
	if !pb.enabled {
		t.Error("should be enabled by default")
	}
}

func TestProgressBar_Disabled(t *testing.T) {
	var buf bytes.Buffer
	pb := NewProgressBar(10, "send")
	pb.SetOutput(&buf)
	pb.Disable()
	pb.lastUpdate = time.Time{}
	pb.Increment(100)
	pb.Finish()
	if buf.Len() > 0 {
		t.Errorf("disabled bar produced %q", buf.String())
	}
	if pb.current != 1 || pb.Bytes() != 100 {
		t.Errorf("counts should advance while disabled: %d items, %d bytes", pb.current, pb.Bytes())
	}
}

func TestProgressBar_Line(t *testing.T) {
	pb := NewProgressBar(4, "send")
	pb.current = 2
	pb.bytes = 2048
	line := pb.line(2 * time.Second)

	for _, want := range []string{"send [", "2/4 (50.0%)", "2.0 kB", "Elapsed: 2.0s", "ETA: 2.0s"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
	if got := strings.Count(line, "="); got != barWidth/2 {
		t.Errorf("filled = %d, want %d", got, barWidth/2)
	}
}

func TestProgressBar_LineEdges(t *testing.T) {
	pb := NewProgressBar(0, "")
	if line := pb.line(0); !strings.HasPrefix(line, "[>") || !strings.Contains(line, "0/0 (0.0%)") {
		t.Errorf("zero total line = %q", line)
	}

	pb = NewProgressBar(3, "fetch")
	pb.current = 3
	line := pb.line(time.Second)
	if strings.Contains(line, "ETA") {
		t.Errorf("complete bar should not show ETA: %q", line)
	}
	if strings.Count(line, "=") != barWidth {
		t.Errorf("complete bar should be full: %q", line)
	}
}

func TestProgressBar_FinishWrites(t *testing.T) {
	var buf bytes.Buffer
	pb := NewProgressBar(2, "send")
	pb.SetOutput(&buf)
	pb.Increment(10)
	pb.Finish()
	out := buf.String()
	if !strings.Contains(out, "2/2 (100.0%)") {
		t.Errorf("output = %q, want completed bar", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish should end the line")
	}
}

func TestProgressBar_Throttle(t *testing.T) {
	var buf bytes.Buffer
	pb := NewProgressBar(100, "")
	pb.SetOutput(&buf)
	pb.lastUpdate = time.Now()
	pb.Set(1)
	if buf.Len() != 0 {
		t.Error("update within throttle window should not render")
	}
	pb.lastUpdate = time.Now().Add(-time.Second)
	pb.Set(2)
	if buf.Len() == 0 {
		t.Error("update after throttle window should render")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Millisecond, "500ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m30s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
