package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tturner/yangfuzz/internal/message"
	"github.com/tturner/yangfuzz/internal/primitives"
	"github.com/tturner/yangfuzz/internal/schema"
)

func TestWriteText(t *testing.T) {
	r := sampleReport()
	var buf bytes.Buffer
	WriteText(&buf, &r, PlainStyles())
	out := buf.String()

	for _, want := range []string{
		"Skeleton for example",
		"Namespace: urn:example",
		"Features: advanced",
		"Seed: 42",
		"Entries: 1, slots: 1, initial size: 47 B",
		"cfg /example:cfg",
		"{{/example:cfg/name}}",
		`- /example:cfg/name: string len 1..32 (initial "abc")`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTextEmpty(t *testing.T) {
	r := SkeletonReport{Module: "example", Namespace: "urn:example"}
	var buf bytes.Buffer
	WriteText(&buf, &r, PlainStyles())
	out := buf.String()
	if !strings.Contains(out, "Features: none") || !strings.Contains(out, "no entries") {
		t.Errorf("output = %s", out)
	}
}

func TestFromSkeleton(t *testing.T) {
	m := schema.NewStaticModule("example", "urn:example",
		schema.Container("cfg",
			schema.Leaf("name", &schema.Type{Base: schema.TypeString, Length: "1..32"}),
			schema.Leaf("mode", &schema.Type{Base: schema.TypeEnum, Enums: []string{"auto"}}),
		),
	)
	sk, err := message.Assemble(m, message.Options{Seeded: true, Seed: 3})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	seed := int64(3)
	r, err := FromSkeleton(sk, Meta{Version: "dev", YangVersion: "1.0", Seed: &seed})
	if err != nil {
		t.Fatalf("FromSkeleton: %v", err)
	}
	if r.Module != "example" || len(r.Entries) != 1 || r.SlotCount() != 2 {
		t.Fatalf("report = %+v", r)
	}
	e := r.Entries[0]
	if !strings.Contains(e.Initial, "<mode>auto</mode>") {
		t.Errorf("initial = %s", e.Initial)
	}
	if e.Slots[1].Generator != "enum {auto}" {
		t.Errorf("generator = %q", e.Slots[1].Generator)
	}
	if r.Features == nil {
		t.Error("features should encode as an empty list")
	}
}

func TestDescribe(t *testing.T) {
	i8, _ := primitives.NewInt8("a", primitives.WithBounds("-5", "5"))
	u16, _ := primitives.NewUint16("b")
	s, _ := primitives.NewString("c", primitives.WithBounds("1", "max"), primitives.WithPattern("[a-z]+"))
	e, _ := primitives.NewBool("d")
	u, _ := primitives.NewUnion("e", []primitives.Generator{i8, e})

	tests := []struct {
		g    primitives.Generator
		want string
	}{
		{i8, "int -5..5"},
		{u16, "uint 0..65535"},
		{s, `string len 1..max pattern "[a-z]+"`},
		{e, "enum {true, false}"},
		{primitives.NewStatic("f", ""), `static ""`},
		{u, "union {int -5..5 | enum {true, false}}"},
	}
	for _, tt := range tests {
		if got := Describe(tt.g); got != tt.want {
			t.Errorf("Describe = %q, want %q", got, tt.want)
		}
	}
}
