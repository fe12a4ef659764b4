// Package message turns a feature-resolved YANG module into a message
// skeleton: ordered NETCONF payload entries made of literal markup and
// generator slots.
package message

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/tturner/yangfuzz/internal/primitives"
)

// Skeleton is the assembled payload set for one module.
type Skeleton struct {
	Module    string
	Namespace string
	Entries   []Entry
}

// Entry is one top-level envelope.
type Entry struct {
	Name      string
	Path      string
	Fragments []Fragment
}

// Fragment is either literal markup or a slot. Exactly one is set.
type Fragment struct {
	Literal string
	Slot    *Slot
}

// Slot is a leaf value position backed by a generator.
type Slot struct {
	Path      string
	Generator primitives.Generator
}

// IsSlot reports whether f is a generator slot.
func (f Fragment) IsSlot() bool { return f.Slot != nil }

// Slots returns the entry's slots in fragment order.
func (e *Entry) Slots() []*Slot {
	var slots []*Slot
	for _, f := range e.Fragments {
		if f.Slot != nil {
			slots = append(slots, f.Slot)
		}
	}
	return slots
}

// Template renders the entry with every slot shown as {{path}}.
func (e *Entry) Template() string {
	var b strings.Builder
	for _, f := range e.Fragments {
		if f.Slot != nil {
			b.WriteString("{{" + f.Slot.Path + "}}")
			continue
		}
		b.WriteString(f.Literal)
	}
	return b.String()
}

// Render concatenates the literals with values, one per slot in order.
// Values are escaped as XML character data.
func (e *Entry) Render(values []string) (string, error) {
	var b strings.Builder
	i := 0
	for _, f := range e.Fragments {
		if f.Slot == nil {
			b.WriteString(f.Literal)
			continue
		}
		if i >= len(values) {
			return "", fmt.Errorf("entry %s: %d values for more slots", e.Name, len(values))
		}
		if err := xml.EscapeText(&b, f.Slot.Generator.Encode(values[i])); err != nil {
			return "", fmt.Errorf("entry %s: slot %s: %w", e.Name, f.Slot.Path, err)
		}
		i++
	}
	if i != len(values) {
		return "", fmt.Errorf("entry %s: %d values for %d slots", e.Name, len(values), i)
	}
	return b.String(), nil
}

// RenderInitial renders the entry with every slot's initial value.
func (e *Entry) RenderInitial() (string, error) {
	slots := e.Slots()
	values := make([]string, len(slots))
	for i, s := range slots {
		values[i] = s.Generator.InitialValue()
	}
	return e.Render(values)
}

// Slots returns every slot of every entry.
func (s *Skeleton) Slots() []*Slot {
	var slots []*Slot
	for i := range s.Entries {
		slots = append(slots, s.Entries[i].Slots()...)
	}
	return slots
}

// Empty reports whether assembly produced no entries, usually a filter
// that matched nothing.
func (s *Skeleton) Empty() bool { return len(s.Entries) == 0 }
