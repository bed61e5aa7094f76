package tools

import "testing"

func TestNormalizePayload(t *testing.T) {
	tests := []struct {
		name     string
		raw      interface{}
		wantKeys []string
	}{
		{"nil becomes empty map", nil, nil},
		{"json string parsed", `{"screen":"intake"}`, []string{"screen"}},
		{"invalid json becomes empty map", `{"screen":`, nil},
		{"json null string becomes empty map", `null`, nil},
		{"non-object json becomes empty map", `[1,2,3]`, nil},
		{"map passes through", map[string]interface{}{"a": 1, "b": 2}, []string{"a", "b"}},
		{"number becomes empty map", float64(7), nil},
		{"bool becomes empty map", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePayload(tt.raw)
			if got == nil {
				t.Fatal("normalization must never return nil")
			}
			if len(got) != len(tt.wantKeys) {
				t.Fatalf("got %d keys, want %d: %v", len(got), len(tt.wantKeys), got)
			}
			for _, key := range tt.wantKeys {
				if _, ok := got[key]; !ok {
					t.Errorf("missing key %q", key)
				}
			}
		})
	}
}

func TestGetStringArg(t *testing.T) {
	args := map[string]interface{}{
		"screen": "intake",
		"count":  float64(3),
	}
	if got := getStringArg(args, "screen"); got != "intake" {
		t.Errorf("screen = %q", got)
	}
	if got := getStringArg(args, "count"); got != "" {
		t.Errorf("non-string should yield empty, got %q", got)
	}
	if got := getStringArg(args, "missing"); got != "" {
		t.Errorf("missing key should yield empty, got %q", got)
	}
}
