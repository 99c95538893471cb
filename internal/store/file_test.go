package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/baiirun/lanes/internal/model"
)

func TestWriteFileReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "board.json")

	want := []model.Todo{
		{ID: "td-1", Title: "One", Status: model.StatusTodo, Priority: model.PriorityLow, Color: model.DefaultColor, Position: 0, CreatedAt: 1},
		{ID: "td-2", Title: "Two", Status: model.StatusDone, Priority: model.PriorityHigh, Color: "#ffc6ff", Pinned: true, Position: 4, CreatedAt: 2},
	}
	if err := WriteFile(path, want); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read back: %v", err)
	}
	if !strings.HasSuffix(string(data), "]\n") {
		t.Error("expected trailing newline")
	}
	if !strings.Contains(string(data), "\n  {") {
		t.Error("expected 2-space indentation")
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d todos, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("todo %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the export file, found %d entries", len(entries))
	}
}

func TestReadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"nope": true}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(bad); err == nil {
		t.Error("expected error for non-array file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantErrs int
		wantPath string
	}{
		{"valid", `[{"id": "td-1", "title": "x", "status": "done", "position": 2, "pinned": false}]`, 0, ""},
		{"legacy", `[{"id": "td-1", "title": "x", "completed": true}]`, 0, ""},
		{"bad status", `[{"id": "td-1", "title": "x"}, {"id": "td-2", "title": "y", "status": "blocked"}]`, 1, "[1].status"},
		{"negative position", `[{"id": "td-1", "title": "x", "position": -1}]`, 1, "[0].position"},
		{"missing title", `[{"id": "td-1"}]`, 1, "[0]"},
		{"not an array", `{"id": "td-1"}`, 1, ""},
		{"not json", `[{`, 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := Validate([]byte(tt.data))
			if err != nil {
				t.Fatalf("validate failed: %v", err)
			}
			if len(errs) != tt.wantErrs {
				t.Fatalf("expected %d errors, got %d: %v", tt.wantErrs, len(errs), errs)
			}
			if tt.wantPath != "" {
				ve, ok := errs[0].(*ValidationError)
				if !ok {
					t.Fatalf("error %T should be *ValidationError", errs[0])
				}
				if ve.Path != tt.wantPath {
					t.Errorf("path = %q, want %q", ve.Path, tt.wantPath)
				}
			}
		})
	}
}

func TestPointerToPath(t *testing.T) {
	tests := []struct {
		ptr  string
		want string
	}{
		{"", ""},
		{"/0", "[0]"},
		{"/2/status", "[2].status"},
		{"#/1/a~1b", "[1].a/b"},
	}
	for _, tt := range tests {
		if got := pointerToPath(tt.ptr); got != tt.want {
			t.Errorf("pointerToPath(%q) = %q, want %q", tt.ptr, got, tt.want)
		}
	}
}
