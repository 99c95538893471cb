// Package tui provides the interactive terminal board for lanes using
// Bubble Tea.
package tui

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/baiirun/lanes/internal/board"
	"github.com/baiirun/lanes/internal/model"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// Mode represents what the keyboard currently drives.
type Mode int

const (
	ModeBoard   Mode = iota
	ModeInput        // typing into the text input
	ModeGrab         // moving a grabbed card with the keyboard
	ModeConfirm      // waiting for y/n before clearing everything
)

// InputMode represents what kind of text input is active.
type InputMode int

const (
	InputNone   InputMode = iota
	InputCreate           // new todo title
	InputEdit             // in-place title edit
	InputSearch           // live search
	InputDue              // draft due date
)

const dueLayout = "2006-01-02"

// Options configures the terminal board.
type Options struct {
	Palette []string
	Logger  *log.Logger
}

// viewCache holds the last derived snapshot. The board marks it stale
// through its change hook.
type viewCache struct {
	snap  board.Snapshot
	stale bool
}

// Model is the main Bubble Tea model for the board.
type Model struct {
	board   *board.Board
	view    *viewCache
	palette []string
	logger  *log.Logger

	lane   int    // focused lane index into model.Statuses()
	cursor [3]int // selected card per lane

	mode      Mode
	inputMode InputMode
	input     textinput.Model
	editID    string

	drag      *board.Drag
	mouseDrag bool
	dragMoved bool

	width   int
	height  int
	err     error
	message string
}

// New creates a board model. It registers itself as the board's change
// hook.
func New(b *board.Board, opts Options) Model {
	palette := opts.Palette
	if len(palette) == 0 {
		palette = model.Palette
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	cache := &viewCache{snap: b.View()}
	b.SetOnChange(func() { cache.stale = true })

	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 200

	return Model{
		board:   b,
		view:    cache,
		palette: palette,
		logger:  logger,
		input:   input,
	}
}

func (m Model) snapshot() board.Snapshot {
	if m.view.stale {
		m.view.snap = m.board.View()
		m.view.stale = false
	}
	return m.view.snap
}

func (m Model) focusedStatus() model.Status {
	return model.Statuses()[m.lane]
}

// laneTodos returns the cards of a lane as displayed, following the
// drag placeholder when a drag is active.
func (m Model) laneTodos(status model.Status) []model.Todo {
	snap := m.snapshot()
	if m.drag == nil {
		return snap.Lane(status)
	}

	byID := make(map[string]model.Todo)
	for _, s := range model.Statuses() {
		for _, t := range snap.Lane(s) {
			byID[t.ID] = t
		}
	}
	ids := m.drag.IDs(status)
	todos := make([]model.Todo, 0, len(ids))
	for _, id := range ids {
		todos = append(todos, byID[id])
	}
	return todos
}

// selected returns the card under the cursor in the focused lane.
func (m Model) selected() (model.Todo, bool) {
	lane := m.laneTodos(m.focusedStatus())
	i := m.cursor[m.lane]
	if i < 0 || i >= len(lane) {
		return model.Todo{}, false
	}
	return lane[i], true
}

// clampCursors keeps every cursor inside its lane after a change.
func (m *Model) clampCursors() {
	for i, status := range model.Statuses() {
		n := len(m.laneTodos(status))
		m.cursor[i] = max(0, min(m.cursor[i], n-1))
	}
}

// selectID moves focus to the lane and row showing id.
func (m *Model) selectID(id string) {
	for i, status := range model.Statuses() {
		for j, t := range m.laneTodos(status) {
			if t.ID == id {
				m.lane, m.cursor[i] = i, j
				return
			}
		}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != ModeInput {
			m.message = ""
			m.err = nil
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeInput:
		return m.handleInputKey(msg)
	case ModeGrab:
		return m.handleGrabKey(msg)
	case ModeConfirm:
		return m.handleConfirmKey(msg)
	}
	return m.handleBoardKey(msg)
}

func (m Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "h", "left":
		m.lane = max(0, m.lane-1)
	case "l", "right":
		m.lane = min(len(model.Statuses())-1, m.lane+1)
	case "j", "down":
		if m.cursor[m.lane] < len(m.laneTodos(m.focusedStatus()))-1 {
			m.cursor[m.lane]++
		}
	case "k", "up":
		if m.cursor[m.lane] > 0 {
			m.cursor[m.lane]--
		}

	case "n":
		return m.startInput(InputCreate, "")
	case "/":
		return m.startInput(InputSearch, m.board.Search())
	case "D":
		return m.startInput(InputDue, m.board.Draft().DueDate)
	case "e":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editID = t.ID
		return m.startInput(InputEdit, t.Title)

	case "c":
		m.board.SetCreationColor(next(m.palette, m.board.Draft().Color))
		m.message = "New todos: " + m.board.Draft().Color
	case "P":
		d := m.board.Draft()
		d.Priority = next(model.Priorities(), d.Priority)
		m.board.SetDraft(d)
		m.message = fmt.Sprintf("New todos: %s priority", d.Priority)
	case "f":
		m.board.SetFilter(next(model.Filters(), m.board.Filter()))
		m.clampCursors()

	case " ":
		return m.withSelected("toggle", func(t model.Todo) error {
			return m.board.ToggleDone(t.ID, !t.IsDone())
		})
	case "m":
		return m.withSelected("move", func(t model.Todo) error {
			return m.board.Move(t.ID)
		})
	case "p":
		return m.withSelected("pin", func(t model.Todo) error {
			return m.board.TogglePin(t.ID)
		})
	case "x":
		return m.withSelected("delete", func(t model.Todo) error {
			return m.board.Delete(t.ID)
		})

	case "C":
		m.apply("clear completed", m.board.ClearCompleted())
		m.clampCursors()
	case "A":
		m.apply("toggle all", m.board.ToggleAll())
		m.clampCursors()
	case "X":
		if len(m.board.Todos()) > 0 {
			m.mode = ModeConfirm
		}

	case "g":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		if d, ok := board.StartDrag(m.snapshot(), t.ID); ok {
			m.drag = d
			m.mode = ModeGrab
		}
	}
	return m, nil
}

// withSelected runs op on the selected card and keeps the cursor on it
// if it is still displayed.
func (m Model) withSelected(name string, op func(model.Todo) error) (tea.Model, tea.Cmd) {
	t, ok := m.selected()
	if !ok {
		return m, nil
	}
	if m.apply(name, op(t)) {
		m.selectID(t.ID)
	}
	m.clampCursors()
	return m, nil
}

// apply records the outcome of a board operation.
func (m *Model) apply(name string, err error) bool {
	if err != nil {
		m.logger.Error("operation failed", "op", name, "err", err)
		m.err = err
		return false
	}
	return true
}

func (m Model) startInput(mode InputMode, value string) (tea.Model, tea.Cmd) {
	m.mode = ModeInput
	m.inputMode = mode
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Placeholder = inputPlaceholder(mode)
	cmd := m.input.Focus()
	return m, cmd
}

func inputPlaceholder(mode InputMode) string {
	switch mode {
	case InputCreate:
		return "What needs to be done?"
	case InputSearch:
		return "Search titles"
	case InputDue:
		return "YYYY-MM-DD (blank clears)"
	}
	return ""
}

func (m Model) stopInput() Model {
	m.mode = ModeBoard
	m.inputMode = InputNone
	m.editID = ""
	m.input.Blur()
	m.input.SetValue("")
	return m
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.inputMode == InputSearch {
			m.board.SetSearch("")
			m.clampCursors()
		}
		return m.stopInput(), nil
	case "enter":
		return m.submitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.inputMode == InputSearch {
		m.board.SetSearch(m.input.Value())
		m.clampCursors()
	}
	return m, cmd
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	mode := m.inputMode
	editID := m.editID
	m = m.stopInput()

	switch mode {
	case InputCreate:
		d := m.board.Draft()
		d.Status = m.focusedStatus()
		t, err := m.board.AddWith(text, d)
		if m.apply("add", err) && t != nil {
			m.selectID(t.ID)
		}

	case InputEdit:
		m.apply("edit", m.board.CommitEdit(editID, text))
		m.selectID(editID)
		m.clampCursors()

	case InputSearch:
		m.board.SetSearch(text)
		m.clampCursors()

	case InputDue:
		text = strings.TrimSpace(text)
		if text != "" {
			if _, err := time.Parse(dueLayout, text); err != nil {
				m.err = fmt.Errorf("invalid due date: %s (use YYYY-MM-DD)", text)
				return m, nil
			}
		}
		d := m.board.Draft()
		d.DueDate = text
		m.board.SetDraft(d)
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeBoard
	switch msg.String() {
	case "y", "Y":
		if m.apply("clear all", m.board.ClearAll()) {
			m.message = "Cleared all todos"
		}
		m.cursor = [3]int{}
	}
	return m, nil
}

func (m Model) handleGrabKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.drag.ShiftLane(-1)
	case "l", "right":
		m.drag.ShiftLane(1)
	case "k", "up":
		m.drag.Shift(-1)
	case "j", "down":
		m.drag.Shift(1)
	case "enter", " ", "g":
		return m.drop(), nil
	case "esc":
		return m.cancelDrag(), nil
	}
	m.followDrag()
	return m, nil
}

// followDrag keeps focus on the placeholder.
func (m *Model) followDrag() {
	m.lane = slices.Index(model.Statuses(), m.drag.Lane())
	m.cursor[m.lane] = m.drag.Index()
}

// drop commits the dragged layout.
func (m Model) drop() Model {
	id := m.drag.ID()
	layout := m.drag.Layout()
	m.drag = nil
	m.mode = ModeBoard
	m.mouseDrag = false
	if m.apply("reorder", m.board.ReorderFromLayout(layout)) {
		m.selectID(id)
	}
	m.clampCursors()
	return m
}

func (m Model) cancelDrag() Model {
	id := ""
	if m.drag != nil {
		id = m.drag.ID()
	}
	m.drag = nil
	m.mode = ModeBoard
	m.mouseDrag = false
	m.selectID(id)
	m.clampCursors()
	return m
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeInput || m.mode == ModeConfirm {
		return m, nil
	}
	if m.mode == ModeGrab && !m.mouseDrag {
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		lane := m.laneAt(msg.X)
		if lane < 0 {
			return m, nil
		}
		m.lane = lane
		for _, card := range m.cardBoxes(model.Statuses()[lane]) {
			if msg.Y < card.top || msg.Y >= card.top+card.height {
				continue
			}
			m.cursor[lane] = card.index
			if d, ok := board.StartDrag(m.snapshot(), card.id); ok {
				m.drag = d
				m.mode = ModeGrab
				m.mouseDrag = true
				m.dragMoved = false
			}
			break
		}

	case tea.MouseActionMotion:
		if !m.mouseDrag {
			return m, nil
		}
		lane := m.laneAt(msg.X)
		if lane < 0 {
			return m, nil
		}
		status := model.Statuses()[lane]
		var mids []int
		for _, card := range m.cardBoxes(status) {
			if card.id == m.drag.ID() {
				continue
			}
			mids = append(mids, card.top+card.height/2)
		}
		m.drag.MoveTo(status, board.DropIndex(mids, msg.Y))
		m.dragMoved = true
		m.followDrag()

	case tea.MouseActionRelease:
		if !m.mouseDrag {
			return m, nil
		}
		if m.dragMoved {
			return m.drop(), nil
		}
		return m.cancelDrag(), nil
	}
	return m, nil
}

// next returns the element after cur in values, wrapping around. An
// unknown cur yields the first element.
func next[T comparable](values []T, cur T) T {
	i := slices.Index(values, cur)
	return values[(i+1)%len(values)]
}

// Run starts the terminal board.
func Run(b *board.Board, opts Options) error {
	m := New(b, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
