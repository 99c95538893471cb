package model

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Status is the lane a todo lives in.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// Statuses returns the lanes in board order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusDoing, StatusDone}
}

// IsValid returns true if the status is one of the three lanes.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

// Next returns the lane a "move" action sends a todo to.
// The cycle is todo -> doing -> done -> todo.
func (s Status) Next() Status {
	switch s {
	case StatusTodo:
		return StatusDoing
	case StatusDoing:
		return StatusDone
	default:
		return StatusTodo
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities returns all priorities from lowest to highest.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Filter selects which todos are visible on the board.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

func Filters() []Filter {
	return []Filter{FilterAll, FilterActive, FilterCompleted}
}

func (f Filter) IsValid() bool {
	switch f {
	case FilterAll, FilterActive, FilterCompleted:
		return true
	}
	return false
}

// DefaultColor is the sticky-note yellow used when no color is chosen.
const DefaultColor = "#fff6a3"

// Palette is the set of swatches offered for new todos.
var Palette = []string{DefaultColor, "#ffd6a5", "#caffbf", "#9bf6ff", "#bdb2ff", "#ffc6ff"}

// Todo is a single note on the board.
type Todo struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Status    Status   `json:"status"`
	Priority  Priority `json:"priority"`
	Color     string   `json:"color"`
	DueDate   string   `json:"dueDate"`
	Pinned    bool     `json:"pinned"`
	Position  int      `json:"position"`
	CreatedAt int64    `json:"createdAt"` // unix milliseconds
}

// IsDone reports whether the todo sits in the done lane.
func (t Todo) IsDone() bool {
	return t.Status == StatusDone
}

// GenerateID returns a new todo ID: "td-" followed by 8 hex chars.
func GenerateID() string {
	u := uuid.New()
	return "td-" + hex.EncodeToString(u[:4])
}

// Log is one entry in a todo's history.
type Log struct {
	ID        int64
	TodoID    string
	Message   string
	CreatedAt time.Time
}
