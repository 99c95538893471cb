package model

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	id := GenerateID()

	if !strings.HasPrefix(id, "td-") {
		t.Errorf("expected prefix %q, got %q", "td-", id)
	}

	// Should be prefix (3 chars) + 8 hex chars = 11 total
	if len(id) != 11 {
		t.Errorf("expected length 11, got %d (%q)", len(id), id)
	}
}

func TestGenerateID_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if seen[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		status Status
		valid  bool
	}{
		{StatusTodo, true},
		{StatusDoing, true},
		{StatusDone, true},
		{Status(""), false},
		{Status("blocked"), false},
		{Status("Done"), false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestStatus_Next(t *testing.T) {
	tests := []struct {
		from Status
		want Status
	}{
		{StatusTodo, StatusDoing},
		{StatusDoing, StatusDone},
		{StatusDone, StatusTodo},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			if got := tt.from.Next(); got != tt.want {
				t.Errorf("Next() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPriority_IsValid(t *testing.T) {
	tests := []struct {
		priority Priority
		valid    bool
	}{
		{PriorityLow, true},
		{PriorityMedium, true},
		{PriorityHigh, true},
		{Priority(""), false},
		{Priority("urgent"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			if got := tt.priority.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestFilter_IsValid(t *testing.T) {
	for _, f := range Filters() {
		if !f.IsValid() {
			t.Errorf("%q should be valid", f)
		}
	}
	if Filter("done").IsValid() {
		t.Error(`"done" is a status, not a filter`)
	}
}
