package tui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/baiirun/lanes/internal/board"
	"github.com/baiirun/lanes/internal/model"
	"github.com/baiirun/lanes/internal/store"
	tea "github.com/charmbracelet/bubbletea"
)

func setupTestModel(t *testing.T, titles ...string) (Model, *board.Board) {
	t.Helper()

	n := 0
	b := board.New(store.New(store.NewMemory(), ""), nil,
		board.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("td-%08d", n)
		}),
	)
	// Positions follow insertion order, so titles[0] is on top of the todo lane.
	for _, title := range titles {
		if _, err := b.Add(title); err != nil {
			t.Fatalf("Add(%q) failed: %v", title, err)
		}
	}
	m := New(b, Options{})
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, b
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		var ok bool
		m, ok = updated.(Model)
		if !ok {
			t.Fatalf("Update returned %T, want Model", updated)
		}
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCreateTodo(t *testing.T) {
	m, b := setupTestModel(t)

	m = send(t, m, key("n"), typeText("Buy milk"), key("enter"))

	todos := b.Todos()
	if len(todos) != 1 {
		t.Fatalf("len = %d, want 1", len(todos))
	}
	if todos[0].Title != "Buy milk" || todos[0].Status != model.StatusTodo {
		t.Errorf("todo = %+v", todos[0])
	}
	if m.mode != ModeBoard {
		t.Errorf("mode = %v, want ModeBoard", m.mode)
	}
	if view := m.View(); !strings.Contains(view, "1 item left") || !strings.Contains(view, "Buy milk") {
		t.Errorf("view missing new todo:\n%s", view)
	}
}

func TestCreateTodo_InFocusedLane(t *testing.T) {
	m, b := setupTestModel(t)

	m = send(t, m, key("l"), key("n"), typeText("review"), key("enter"))

	todos := b.Todos()
	if len(todos) != 1 || todos[0].Status != model.StatusDoing {
		t.Fatalf("todos = %+v, want one doing", todos)
	}
	if got, ok := m.selected(); !ok || got.ID != todos[0].ID {
		t.Errorf("selected = %+v, want new todo", got)
	}
}

func TestCreateTodo_EscCancels(t *testing.T) {
	m, b := setupTestModel(t)

	send(t, m, key("n"), typeText("nope"), key("esc"))

	if n := len(b.Todos()); n != 0 {
		t.Errorf("len = %d, want 0", n)
	}
}

func TestToggleMovePinDelete(t *testing.T) {
	m, b := setupTestModel(t, "a")
	id := b.Todos()[0].ID

	m = send(t, m, key(" "))
	if got, _ := b.Get(id); got.Status != model.StatusDone {
		t.Fatalf("status = %s, want done", got.Status)
	}
	if m.lane != 2 {
		t.Errorf("focus lane = %d, want 2 (follows the card)", m.lane)
	}

	m = send(t, m, key("m"))
	if got, _ := b.Get(id); got.Status != model.StatusTodo {
		t.Fatalf("status = %s, want todo", got.Status)
	}

	m = send(t, m, key("p"))
	if got, _ := b.Get(id); !got.Pinned {
		t.Error("expected pinned")
	}

	send(t, m, key("x"))
	if _, ok := b.Get(id); ok {
		t.Error("expected deleted")
	}
}

func TestEdit(t *testing.T) {
	m, b := setupTestModel(t, "old title")
	id := b.Todos()[0].ID

	m = send(t, m, key("e"))
	if got := m.input.Value(); got != "old title" {
		t.Fatalf("input = %q, want %q", got, "old title")
	}
	m.input.SetValue("  new title ")
	m = send(t, m, key("enter"))

	if got, _ := b.Get(id); got.Title != "new title" {
		t.Errorf("title = %q, want %q", got.Title, "new title")
	}

	m = send(t, m, key("e"))
	m.input.SetValue("")
	send(t, m, key("enter"))
	if _, ok := b.Get(id); ok {
		t.Error("empty edit should delete")
	}
}

func TestSearchIsLive(t *testing.T) {
	m, b := setupTestModel(t, "Buy milk", "Walk dog")

	m = send(t, m, key("/"), typeText("MILK"))
	if got := b.Search(); got != "MILK" {
		t.Errorf("search = %q, want %q", got, "MILK")
	}
	if ids := m.snapshot().IDs(model.StatusTodo); len(ids) != 1 {
		t.Errorf("visible = %v, want one", ids)
	}

	send(t, m, key("esc"))
	if got := b.Search(); got != "" {
		t.Errorf("search after esc = %q, want empty", got)
	}
}

func TestFilterCycles(t *testing.T) {
	m, b := setupTestModel(t)

	want := []model.Filter{model.FilterActive, model.FilterCompleted, model.FilterAll}
	for _, w := range want {
		m = send(t, m, key("f"))
		if b.Filter() != w {
			t.Errorf("filter = %q, want %q", b.Filter(), w)
		}
	}
}

func TestDraftColorAndPriority(t *testing.T) {
	m, b := setupTestModel(t, "existing")

	m = send(t, m, key("c"), key("P"))
	d := b.Draft()
	if d.Color != model.Palette[1] {
		t.Errorf("draft color = %q, want %q", d.Color, model.Palette[1])
	}
	if d.Priority != model.PriorityHigh {
		t.Errorf("draft priority = %q, want %q", d.Priority, model.PriorityHigh)
	}
	if got := b.Todos()[0].Color; got != model.DefaultColor {
		t.Errorf("existing color = %q, want unchanged", got)
	}

	m = send(t, m, key("D"), typeText("2024-13-40"), key("enter"))
	if m.err == nil {
		t.Error("expected error for invalid due date")
	}
	send(t, m, key("D"), typeText("2024-06-30"), key("enter"))
	if got := b.Draft().DueDate; got != "2024-06-30" {
		t.Errorf("draft due = %q, want %q", got, "2024-06-30")
	}
}

func TestClearAll_Confirm(t *testing.T) {
	m, b := setupTestModel(t, "a", "b")

	m = send(t, m, key("X"))
	if m.mode != ModeConfirm {
		t.Fatalf("mode = %v, want ModeConfirm", m.mode)
	}
	if !strings.Contains(m.View(), "Clear all 2 todos?") {
		t.Error("confirmation prompt not shown")
	}
	m = send(t, m, key("n"))
	if len(b.Todos()) != 2 {
		t.Fatal("declined clear removed todos")
	}

	send(t, m, key("X"), key("y"))
	if len(b.Todos()) != 0 {
		t.Errorf("len = %d, want 0", len(b.Todos()))
	}
}

func TestClearCompletedAndToggleAll(t *testing.T) {
	m, b := setupTestModel(t, "a", "b")

	m = send(t, m, key("A"))
	if board.ItemsLeft(b.Todos()) != 0 {
		t.Fatal("toggle all should complete everything")
	}
	send(t, m, key("C"))
	if len(b.Todos()) != 0 {
		t.Errorf("len = %d, want 0", len(b.Todos()))
	}
}

func TestGrab_KeyboardReorder(t *testing.T) {
	m, b := setupTestModel(t, "first", "second")
	// Lane shows first (position 0) then second (position 1).
	first, second := b.Todos()[1], b.Todos()[0]

	m = send(t, m, key("g"), key("j"))
	if m.mode != ModeGrab {
		t.Fatalf("mode = %v, want ModeGrab", m.mode)
	}
	if got, _ := b.Get(first.ID); got.Position != 0 {
		t.Fatal("grab changed the board before drop")
	}

	m = send(t, m, key("enter"))
	if m.mode != ModeBoard {
		t.Errorf("mode = %v, want ModeBoard", m.mode)
	}
	ids := m.snapshot().IDs(model.StatusTodo)
	if len(ids) != 2 || ids[0] != second.ID || ids[1] != first.ID {
		t.Errorf("todo lane = %v, want [%s %s]", ids, second.ID, first.ID)
	}
}

func TestGrab_ToOtherLaneAndCancel(t *testing.T) {
	m, b := setupTestModel(t, "card")
	id := b.Todos()[0].ID

	m = send(t, m, key("g"), key("l"), key("esc"))
	if got, _ := b.Get(id); got.Status != model.StatusTodo {
		t.Errorf("cancelled grab moved the card to %s", got.Status)
	}

	send(t, m, key("g"), key("l"), key("l"), key("enter"))
	if got, _ := b.Get(id); got.Status != model.StatusDone {
		t.Errorf("status = %s, want done", got.Status)
	}
}

func TestMouseDrag(t *testing.T) {
	m, b := setupTestModel(t, "drag me")
	id := b.Todos()[0].ID

	boxes := m.cardBoxes(model.StatusTodo)
	if len(boxes) != 1 {
		t.Fatalf("boxes = %+v, want one", boxes)
	}
	x := contentPadding + 1
	doingX := contentPadding + (m.laneWidth()+2+laneGap)*1 + 1

	m = send(t, m,
		tea.MouseMsg{X: x, Y: boxes[0].top, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: doingX, Y: laneBodyTop, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
	)
	if got, _ := b.Get(id); got.Status != model.StatusTodo {
		t.Fatal("drag persisted before release")
	}
	if !strings.Contains(m.View(), "drag me") {
		t.Error("placeholder not rendered")
	}

	m = send(t, m, tea.MouseMsg{X: doingX, Y: laneBodyTop, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if got, _ := b.Get(id); got.Status != model.StatusDoing || got.Position != 0 {
		t.Errorf("card = %s/%d, want doing/0", got.Status, got.Position)
	}
	if m.mode != ModeBoard {
		t.Errorf("mode = %v, want ModeBoard", m.mode)
	}
}

func TestMouseClickSelects(t *testing.T) {
	m, b := setupTestModel(t, "one", "two")

	boxes := m.cardBoxes(model.StatusTodo)
	if len(boxes) != 2 {
		t.Fatalf("boxes = %+v, want two", boxes)
	}
	x := contentPadding + 1
	m = send(t, m,
		tea.MouseMsg{X: x, Y: boxes[1].top, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: x, Y: boxes[1].top, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft},
	)

	if got, ok := m.selected(); !ok || got.ID != boxes[1].id {
		t.Errorf("selected = %+v, want %s", got, boxes[1].id)
	}
	for _, td := range b.Todos() {
		if td.Status != model.StatusTodo {
			t.Errorf("click moved %s", td.ID)
		}
	}
}

func TestLaneAt(t *testing.T) {
	m, _ := setupTestModel(t)
	outer := m.laneWidth() + 2

	tests := []struct {
		x    int
		want int
	}{
		{0, -1},
		{contentPadding, 0},
		{contentPadding + outer - 1, 0},
		{contentPadding + outer, -1},
		{contentPadding + outer + laneGap, 1},
		{contentPadding + 2*(outer+laneGap), 2},
		{contentPadding + 3*(outer+laneGap), -1},
	}
	for _, tt := range tests {
		if got := m.laneAt(tt.x); got != tt.want {
			t.Errorf("laneAt(%d) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestView_Lanes(t *testing.T) {
	m, _ := setupTestModel(t, "a task with a rather long title that needs wrapping across lines")

	view := m.View()
	for _, want := range []string{"TODO (1)", "DOING (0)", "DONE (0)", "1 item left", "medium"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
