// Package progress renders a single-line progress bar for long CLI
// operations such as sending payloads or fetching modules.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const barWidth = 40

// ProgressBar tracks items processed and bytes moved.
type ProgressBar struct {
	total       int64
	current     int64
	bytes       uint64
	startTime   time.Time
	lastUpdate  time.Time
	output      io.Writer
	enabled     bool
	description string
}

// NewProgressBar creates a new progress bar writing to stderr.
func NewProgressBar(total int64, description string) *ProgressBar {
	return &ProgressBar{
		total:       total,
		startTime:   time.Now(),
		lastUpdate:  time.Now(),
		output:      os.Stderr, // Use stderr so it doesn't interfere with stdout
		enabled:     true,
		description: description,
	}
}

// SetOutput redirects rendering.
func (p *ProgressBar) SetOutput(w io.Writer) { p.output = w }

// Disable disables the progress bar
func (p *ProgressBar) Disable() { p.enabled = false }

// Increment records one finished item of n bytes.
func (p *ProgressBar) Increment(n int) {
	p.current++
	if n > 0 {
		p.bytes += uint64(n)
	}
	p.render()
}

// Set sets the current item count.
func (p *ProgressBar) Set(n int64) {
	p.current = n
	p.render()
}

// Bytes returns the bytes recorded so far.
func (p *ProgressBar) Bytes() uint64 { return p.bytes }

func (p *ProgressBar) render() {
	if !p.enabled {
		return
	}

	// Throttle updates to avoid too much output
	now := time.Now()
	if now.Sub(p.lastUpdate) < 100*time.Millisecond && p.current < p.total {
		return
	}
	p.lastUpdate = now
	fmt.Fprint(p.output, "\r"+p.line(time.Since(p.startTime)))
}

func (p *ProgressBar) line(elapsed time.Duration) string {
	var percent float64
	if p.total > 0 {
		percent = float64(p.current) / float64(p.total) * 100
	}
	filled := min(int(barWidth*percent/100), barWidth)
	bar := strings.Repeat("=", filled)
	if filled < barWidth {
		bar += ">" + strings.Repeat("-", barWidth-filled-1)
	}

	var b strings.Builder
	if p.description != "" {
		b.WriteString(p.description + " ")
	}
	fmt.Fprintf(&b, "[%s] %d/%d (%.1f%%) | %s | Elapsed: %s",
		bar, p.current, p.total, percent, humanize.Bytes(p.bytes), formatDuration(elapsed))

	if p.current > 0 && p.current < p.total && elapsed > 0 {
		rate := float64(p.current) / elapsed.Seconds()
		if eta := time.Duration(float64(p.total-p.current)/rate) * time.Second; eta > 0 {
			fmt.Fprintf(&b, " | ETA: %s", formatDuration(eta))
		}
	}
	return b.String()
}

// Finish marks the bar complete and ends the line.
func (p *ProgressBar) Finish() {
	if !p.enabled {
		return
	}
	p.current = p.total
	p.lastUpdate = time.Time{}
	p.render()
	fmt.Fprint(p.output, "\n")
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", minutes, seconds)
}
