package schema

import "testing"

func testModule() *StaticModule {
	return NewStaticModule("example", "urn:example",
		Container("cfg",
			Leaf("name", &Type{Base: TypeString, Length: "1..32"}),
			Container("stats",
				Leaf("counter", &Type{Base: TypeUint32}),
			).ConfigFalse(),
			Leaf("tuning", &Type{Base: TypeUint8}).IfFeature("advanced"),
		),
		Operation("reset", Leaf("delay", &Type{Base: TypeUint16})),
	).DeclareFeatures("advanced")
}

func TestStaticModule_Paths(t *testing.T) {
	m := testModule()
	top := m.Children()
	if len(top) != 2 {
		t.Fatalf("top-level children = %d, want 2", len(top))
	}
	if top[0].Path() != "/example:cfg" {
		t.Errorf("path = %q, want /example:cfg", top[0].Path())
	}
	name := top[0].Children()[0]
	if name.Path() != "/example:cfg/name" {
		t.Errorf("path = %q, want /example:cfg/name", name.Path())
	}
	if top[1].Kind() != KindOperation {
		t.Errorf("kind = %v, want rpc", top[1].Kind())
	}
}

func TestStaticModule_ReadOnlyInherited(t *testing.T) {
	m := testModule()
	stats := m.Children()[0].Children()[1]
	if !stats.ReadOnly() {
		t.Fatal("stats should be read-only")
	}
	if !stats.Children()[0].ReadOnly() {
		t.Error("read-only should be inherited by descendants")
	}
	if m.Children()[0].ReadOnly() {
		t.Error("cfg should not be read-only")
	}
}

func TestStaticModule_FeatureGuard(t *testing.T) {
	m := testModule()
	if got := len(m.Children()[0].Children()); got != 2 {
		t.Fatalf("children before enabling = %d, want 2", got)
	}
	if err := m.EnableFeature("advanced"); err != nil {
		t.Fatalf("EnableFeature: %v", err)
	}
	children := m.Children()[0].Children()
	if len(children) != 3 {
		t.Fatalf("children after enabling = %d, want 3", len(children))
	}
	if children[2].Name() != "tuning" {
		t.Errorf("third child = %q, want tuning", children[2].Name())
	}
	if err := m.EnableFeature("unknown"); err == nil {
		t.Error("enabling an undeclared feature should fail")
	}
}

func TestKindStructural(t *testing.T) {
	for _, k := range []Kind{KindContainer, KindList, KindOperation} {
		if !k.Structural() {
			t.Errorf("%v should be structural", k)
		}
	}
	if KindLeaf.Structural() {
		t.Error("leaf should not be structural")
	}
}
