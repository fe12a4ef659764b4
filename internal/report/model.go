package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/tturner/yangfuzz/internal/message"
	"github.com/tturner/yangfuzz/internal/primitives"
)

// SkeletonReport describes one assembled skeleton.
type SkeletonReport struct {
	GeneratedAt     string        `json:"generated_at"`
	YangfuzzVersion string        `json:"yangfuzz_version"`
	Module          string        `json:"module"`
	Namespace       string        `json:"namespace"`
	YangVersion     string        `json:"yang_version,omitempty"`
	Features        []string      `json:"features"`
	Filter          string        `json:"filter,omitempty"`
	Seed            *int64        `json:"seed,omitempty"`
	Entries         []EntryReport `json:"entries"`
}

// EntryReport is one top-level envelope.
type EntryReport struct {
	Name     string       `json:"name"`
	Path     string       `json:"path"`
	Template string       `json:"template"`
	Initial  string       `json:"initial"`
	Slots    []SlotReport `json:"slots"`
}

// SlotReport describes one generator slot.
type SlotReport struct {
	Path      string `json:"path"`
	Generator string `json:"generator"`
	Initial   string `json:"initial"`
}

// Meta carries run details that are not part of the skeleton itself.
type Meta struct {
	Version     string
	YangVersion string
	Features    []string
	Filter      string
	Seed        *int64
}

// FromSkeleton builds a report. Entries render with initial values.
func FromSkeleton(sk *message.Skeleton, meta Meta) (*SkeletonReport, error) {
	r := &SkeletonReport{
		GeneratedAt:     FormatTimestamp(),
		YangfuzzVersion: meta.Version,
		Module:          sk.Module,
		Namespace:       sk.Namespace,
		YangVersion:     meta.YangVersion,
		Features:        append([]string{}, meta.Features...),
		Filter:          meta.Filter,
		Seed:            meta.Seed,
		Entries:         []EntryReport{},
	}
	for i := range sk.Entries {
		e := &sk.Entries[i]
		initial, err := e.RenderInitial()
		if err != nil {
			return nil, err
		}
		er := EntryReport{
			Name:     e.Name,
			Path:     e.Path,
			Template: e.Template(),
			Initial:  initial,
			Slots:    []SlotReport{},
		}
		for _, s := range e.Slots() {
			er.Slots = append(er.Slots, SlotReport{
				Path:      s.Path,
				Generator: Describe(s.Generator),
				Initial:   s.Generator.InitialValue(),
			})
		}
		r.Entries = append(r.Entries, er)
	}
	return r, nil
}

// SlotCount returns the number of slots over all entries.
func (r *SkeletonReport) SlotCount() int {
	n := 0
	for _, e := range r.Entries {
		n += len(e.Slots)
	}
	return n
}

// Describe summarizes a generator's value space.
func Describe(g primitives.Generator) string {
	switch v := g.(type) {
	case *primitives.Int:
		lo, hi := v.Bounds()
		return fmt.Sprintf("int %d..%d", lo, hi)
	case *primitives.Uint:
		lo, hi := v.Bounds()
		return fmt.Sprintf("uint %d..%d", lo, hi)
	case *primitives.String:
		lo, hi := v.LengthBounds()
		d := fmt.Sprintf("string len %d..%s", lo, formatMax(hi))
		if p := v.Pattern(); p != "" {
			d += fmt.Sprintf(" pattern %q", p)
		}
		return d
	case *primitives.Enum:
		return "enum {" + strings.Join(v.Labels(), ", ") + "}"
	case *primitives.Static:
		return fmt.Sprintf("static %q", v.InitialValue())
	case *primitives.Union:
		members := v.Members()
		parts := make([]string, len(members))
		for i, m := range members {
			parts[i] = Describe(m)
		}
		return "union {" + strings.Join(parts, " | ") + "}"
	default:
		return fmt.Sprintf("%T", g)
	}
}

func formatMax(n int) string {
	if n == math.MaxInt {
		return "max"
	}
	return fmt.Sprint(n)
}
