package schema

import "testing"

func TestEvalIfFeature(t *testing.T) {
	enabled := map[string]bool{"a": true, "b": false, "c": true, "pfx:d": true}
	lookup := func(name string) bool { return enabled[name] }

	tests := []struct {
		expr    string
		want    bool
		wantErr bool
	}{
		{expr: "a", want: true},
		{expr: "b", want: false},
		{expr: "pfx:a", want: false},
		{expr: "pfx:d", want: true},
		{expr: "pfx:d and a", want: true},
		{expr: "not b", want: true},
		{expr: "a and b", want: false},
		{expr: "a or b", want: true},
		{expr: "a and (b or c)", want: true},
		{expr: "not (a and c)", want: false},
		{expr: "b or c and a", want: true},
		{expr: "\"a and c\"", want: true},
		{expr: "", wantErr: true},
		{expr: "a and", wantErr: true},
		{expr: "(a", wantErr: true},
		{expr: "a b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := EvalIfFeature(tt.expr, lookup)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("EvalIfFeature(%q) expected error", tt.expr)
				}
				return
			}
			if err != nil {
				t.Fatalf("EvalIfFeature(%q) error: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("EvalIfFeature(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestFeatureSet_EnableUndeclared(t *testing.T) {
	fs := newFeatureSet([]string{"x"})
	if err := fs.enable("x"); err != nil {
		t.Fatalf("enable declared feature: %v", err)
	}
	if err := fs.enable("y"); err == nil {
		t.Error("enabling an undeclared feature should fail")
	}
	if !fs.visible([]string{"x"}) {
		t.Error("guard on enabled feature should be visible")
	}
	if fs.visible([]string{"x", "y"}) {
		t.Error("all guards must hold")
	}
	if fs.visible([]string{"x and"}) {
		t.Error("malformed guard should hide the node")
	}
}
