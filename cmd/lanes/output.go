package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/baiirun/lanes/internal/board"
	"github.com/baiirun/lanes/internal/model"
)

// BoardJSON is the JSON output of 'lanes list'.
type BoardJSON struct {
	Lanes     LanesJSON        `json:"lanes"`
	Counts    board.LaneCounts `json:"counts"`
	ItemsLeft int              `json:"itemsLeft"`
	Filter    model.Filter     `json:"filter"`
	Search    string           `json:"search,omitempty"`
}

// LanesJSON keeps the lanes in board order.
type LanesJSON struct {
	Todo  []model.Todo `json:"todo"`
	Doing []model.Todo `json:"doing"`
	Done  []model.Todo `json:"done"`
}

// LogJSON is one history entry in 'lanes history --json'.
type LogJSON struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func snapshotJSON(s board.Snapshot) BoardJSON {
	lane := func(status model.Status) []model.Todo {
		if todos := s.Lane(status); todos != nil {
			return todos
		}
		return []model.Todo{}
	}
	return BoardJSON{
		Lanes: LanesJSON{
			Todo:  lane(model.StatusTodo),
			Doing: lane(model.StatusDoing),
			Done:  lane(model.StatusDone),
		},
		Counts:    s.Counts,
		ItemsLeft: s.ItemsLeft,
		Filter:    s.Filter,
		Search:    strings.TrimSpace(s.Search),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var (
	laneHeaderStyle = lipgloss.NewStyle().Bold(true)
	idStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	pinnedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	dueStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	priorityStyles = map[model.Priority]lipgloss.Style{
		model.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		model.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		model.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

// printBoard writes the lanes one after another:
//
//	TODO (2)
//	  td-1a2b3c4d  high    Buy milk  due 2025-03-01  pinned
func printBoard(w io.Writer, s board.Snapshot) {
	for i, status := range model.Statuses() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		header := fmt.Sprintf("%s (%d)", strings.ToUpper(string(status)), s.Counts.Get(status))
		fmt.Fprintln(w, laneHeaderStyle.Render(header))

		todos := s.Lane(status)
		if len(todos) == 0 {
			fmt.Fprintln(w, footerStyle.Render("  (empty)"))
			continue
		}
		for _, t := range todos {
			fmt.Fprintln(w, formatTodoLine(t))
		}
	}

	fmt.Fprintln(w)
	footer := board.ItemsLeftLabel(s.ItemsLeft)
	if s.Filter != model.FilterAll {
		footer += "  filter: " + string(s.Filter)
	}
	if q := strings.TrimSpace(s.Search); q != "" {
		footer += fmt.Sprintf("  search: %q", q)
	}
	fmt.Fprintln(w, footerStyle.Render(footer))
}

func formatTodoLine(t model.Todo) string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(idStyle.Render(t.ID))
	b.WriteString("  ")
	b.WriteString(priorityStyles[t.Priority].Render(fmt.Sprintf("%-6s", t.Priority)))
	b.WriteString("  ")
	b.WriteString(t.Title)
	if t.DueDate != "" {
		b.WriteString("  ")
		b.WriteString(dueStyle.Render("due " + t.DueDate))
	}
	if t.Pinned {
		b.WriteString("  ")
		b.WriteString(pinnedStyle.Render("pinned"))
	}
	return b.String()
}
