package model

import (
	"math"
	"strconv"
	"time"
)

// Record is a todo as it appears in stored or imported JSON, before
// normalization. Values follow encoding/json's decoding into any.
type Record map[string]any

// Normalize turns a possibly partial or legacy record into a fully
// populated Todo. It never fails: every missing or mistyped field gets
// its default. A legacy "completed" flag decides the lane when there is
// no valid status, and fallbackIndex becomes the position when the
// stored one is not a finite whole number >= 0.
func Normalize(raw Record, fallbackIndex int) Todo {
	t := Todo{
		ID:        stringField(raw, "id"),
		Title:     stringField(raw, "title"),
		Status:    Status(stringField(raw, "status")),
		Priority:  Priority(stringField(raw, "priority")),
		Color:     stringField(raw, "color"),
		DueDate:   stringField(raw, "dueDate"),
		Pinned:    truthy(raw["pinned"]),
		CreatedAt: timestampField(raw, "createdAt"),
	}

	if t.ID == "" {
		t.ID = GenerateID()
	}
	if !t.Status.IsValid() {
		t.Status = StatusTodo
		if truthy(raw["completed"]) {
			t.Status = StatusDone
		}
	}
	if !t.Priority.IsValid() {
		t.Priority = PriorityMedium
	}
	if t.Color == "" {
		t.Color = DefaultColor
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().UnixMilli()
	}

	pos, ok := positionField(raw["position"])
	if !ok {
		pos = max(fallbackIndex, 0)
	}
	t.Position = pos

	return t
}

// Record converts the todo back into its stored shape.
func (t Todo) Record() Record {
	return Record{
		"id":        t.ID,
		"title":     t.Title,
		"status":    string(t.Status),
		"priority":  string(t.Priority),
		"color":     t.Color,
		"dueDate":   t.DueDate,
		"pinned":    t.Pinned,
		"position":  t.Position,
		"createdAt": t.CreatedAt,
	}
}

func stringField(raw Record, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case float64:
		if v == 0 || math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func timestampField(raw Record, key string) int64 {
	switch v := raw[key].(type) {
	case float64:
		// Outside the int64 range counts as missing.
		if math.IsNaN(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0
		}
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

func positionField(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, n >= 0
	case int64:
		return int(n), n >= 0
	case float64:
		if math.IsNaN(n) || n < 0 || n >= math.MaxInt || n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case float64:
		return b != 0 && !math.IsNaN(b)
	case int:
		return b != 0
	case int64:
		return b != 0
	case string:
		return b != ""
	}
	return true
}
