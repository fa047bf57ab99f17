package aw

import "testing"

func TestFlatten(t *testing.T) {
	payload := map[string]any{
		"app": "Code",
		"data": map[string]any{
			"project": "apollo-api",
			"meta": map[string]any{
				"branch": "main",
			},
		},
		"issues": []any{"AP-1", "AP-2"},
	}

	fields := Flatten(payload)
	if got := fields.Str("app"); got != "Code" {
		t.Errorf("app = %q, want Code", got)
	}
	if got := fields.Str("project"); got != "apollo-api" {
		t.Errorf("project = %q, want apollo-api (one level deep)", got)
	}
	if got := fields.Str("branch"); got != "main" {
		t.Errorf("branch = %q, want main (two levels deep)", got)
	}
	if _, ok := fields["data"]; ok {
		t.Errorf("container key preserved, want only leaves")
	}
	if got := fields.Strs("issues"); len(got) != 2 {
		t.Errorf("issues = %v, want list preserved", got)
	}
}

func TestFlattenEmpty(t *testing.T) {
	fields := Flatten(map[string]any{})
	if len(fields) != 0 {
		t.Errorf("got %d fields, want 0", len(fields))
	}
}
