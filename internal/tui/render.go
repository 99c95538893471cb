package tui

import (
	"fmt"
	"strings"

	"github.com/baiirun/lanes/internal/board"
	"github.com/baiirun/lanes/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// Layout constants. Rows are counted from the top of the screen.
const (
	contentPadding = 2
	laneGap        = 1
	laneBodyTop    = 6 // padding, header, blank, border, lane title, rule
	minLaneWidth   = 16
	defaultWidth   = 100
	defaultHeight  = 30
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Italic(true)

	laneColors = map[model.Status]lipgloss.Color{
		model.StatusTodo:  lipgloss.Color("252"),
		model.StatusDoing: lipgloss.Color("214"),
		model.StatusDone:  lipgloss.Color("42"),
	}

	priorityColors = map[model.Priority]lipgloss.Color{
		model.PriorityLow:    lipgloss.Color("245"),
		model.PriorityMedium: lipgloss.Color("39"),
		model.PriorityHigh:   lipgloss.Color("196"),
	}

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	filterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	doneTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Strikethrough(true)
)

var priorityIcons = map[model.Priority]string{
	model.PriorityLow:    "↓",
	model.PriorityMedium: "•",
	model.PriorityHigh:   "↑",
}

func (m Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

// laneWidth is the content width of one lane, excluding its borders.
func (m Model) laneWidth() int {
	w, _ := m.size()
	n := len(model.Statuses())
	avail := w - contentPadding*2 - laneGap*(n-1) - 2*n
	return max(minLaneWidth, avail/n)
}

// bodyHeight is the number of rows available for cards in a lane.
func (m Model) bodyHeight() int {
	_, h := m.size()
	// below the body: bottom border, blank, help, status line
	return max(4, h-laneBodyTop-4)
}

// laneAt returns the lane index under screen column x, or -1.
func (m Model) laneAt(x int) int {
	outer := m.laneWidth() + 2
	rel := x - contentPadding
	if rel < 0 {
		return -1
	}
	i := rel / (outer + laneGap)
	if i >= len(model.Statuses()) || rel%(outer+laneGap) >= outer {
		return -1
	}
	return i
}

// cardBox is where a card sits on screen.
type cardBox struct {
	id     string
	index  int // index within the displayed lane
	top    int
	height int
}

// cardBoxes lays out the visible cards of a lane. The window scrolls so
// the selected card stays visible.
func (m Model) cardBoxes(status model.Status) []cardBox {
	todos := m.laneTodos(status)
	width := m.laneWidth()
	limit := m.bodyHeight()

	heights := make([]int, len(todos))
	for i, t := range todos {
		heights[i] = len(m.cardLines(t, width, false))
	}

	start := 0
	if lane := laneIndex(status); lane >= 0 {
		cur := min(m.cursor[lane], len(todos)-1)
		for start < cur && span(heights[start:cur+1]) > limit {
			start++
		}
	}

	var boxes []cardBox
	top := laneBodyTop
	for i := start; i < len(todos); i++ {
		if top+heights[i]-laneBodyTop > limit {
			break
		}
		boxes = append(boxes, cardBox{id: todos[i].ID, index: i, top: top, height: heights[i]})
		top += heights[i] + 1
	}
	return boxes
}

// span is the rows taken by cards with one blank row between each.
func span(heights []int) int {
	total := 0
	for _, h := range heights {
		total += h + 1
	}
	return max(0, total-1)
}

func laneIndex(status model.Status) int {
	for i, s := range model.Statuses() {
		if s == status {
			return i
		}
	}
	return -1
}

// cardLines renders one card: a meta line and the wrapped title, each
// behind a stripe in the card's color.
func (m Model) cardLines(t model.Todo, width int, selected bool) []string {
	stripe := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render("▌")
	textWidth := max(1, width-2)

	placeholder := m.drag != nil && m.drag.ID() == t.ID

	var meta []string
	meta = append(meta, lipgloss.NewStyle().
		Foreground(priorityColors[t.Priority]).
		Render(priorityIcons[t.Priority]+" "+string(t.Priority)))
	if t.DueDate != "" {
		meta = append(meta, dimStyle.Render("due "+t.DueDate))
	}
	if t.Pinned {
		meta = append(meta, filterStyle.Render("pinned"))
	}

	lines := []string{stripe + " " + strings.Join(meta, "  ")}
	for _, line := range strings.Split(wordwrap.String(t.Title, textWidth), "\n") {
		line = truncate(line, textWidth)
		switch {
		case placeholder:
			line = placeholderStyle.Render(line)
		case selected:
			line = selectedStyle.Render(line)
		case t.IsDone():
			line = doneTitleStyle.Render(line)
		}
		lines = append(lines, stripe+" "+line)
	}
	return lines
}

// truncate cuts a word longer than the card.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

// View implements tea.Model.
func (m Model) View() string {
	snap := m.snapshot()
	var b strings.Builder

	b.WriteString(m.headerView(snap))
	b.WriteString("\n\n")
	b.WriteString(m.lanesView(snap))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(m.helpText()))

	switch {
	case m.mode == ModeInput:
		b.WriteString("\n")
		b.WriteString(inputStyle.Render(inputLabel(m.inputMode) + m.input.View()))
	case m.mode == ModeConfirm:
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Clear all %d todos? (y/n)", snap.Counts.Total())))
	case m.err != nil:
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case m.message != "":
		b.WriteString("\n")
		b.WriteString(messageStyle.Render(m.message))
	}

	padStyle := lipgloss.NewStyle().
		PaddingLeft(contentPadding).
		PaddingRight(contentPadding).
		PaddingTop(1)

	return padStyle.Render(b.String())
}

func inputLabel(mode InputMode) string {
	switch mode {
	case InputCreate:
		return "New: "
	case InputEdit:
		return "Edit: "
	case InputSearch:
		return "Search: "
	case InputDue:
		return "Due: "
	}
	return ""
}

func (m Model) headerView(snap board.Snapshot) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("lanes"))
	b.WriteString("  ")
	b.WriteString(board.ItemsLeftLabel(snap.ItemsLeft))

	var filters []string
	if snap.Filter != model.FilterAll {
		filters = append(filters, "filter:"+string(snap.Filter))
	}
	if q := strings.TrimSpace(snap.Search); q != "" {
		filters = append(filters, fmt.Sprintf("search:%q", q))
	}
	if len(filters) > 0 {
		b.WriteString("  ")
		b.WriteString(filterStyle.Render(strings.Join(filters, " ")))
	}

	d := snap.Draft
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(d.Color)).Render("■")
	draft := fmt.Sprintf("new: %s %s", swatch, d.Priority)
	if d.DueDate != "" {
		draft += " due " + d.DueDate
	}
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(draft))
	return b.String()
}

func (m Model) lanesView(snap board.Snapshot) string {
	width := m.laneWidth()
	height := m.bodyHeight() + 2 // lane title and rule

	var boxes []string
	for i, status := range model.Statuses() {
		lines := []string{
			lipgloss.NewStyle().Bold(true).Foreground(laneColors[status]).
				Render(fmt.Sprintf("%s (%d)", strings.ToUpper(string(status)), snap.Counts.Get(status))),
			dimStyle.Render(strings.Repeat("─", width)),
		}

		todos := m.laneTodos(status)
		cards := m.cardBoxes(status)
		if len(todos) == 0 {
			lines = append(lines, dimStyle.Render("empty"))
		}
		for j, card := range cards {
			if j > 0 {
				lines = append(lines, "")
			}
			selected := i == m.lane && card.index == m.cursor[i]
			lines = append(lines, m.cardLines(todos[card.index], width, selected)...)
		}
		if len(cards) > 0 {
			last := cards[len(cards)-1].index
			if hidden := len(todos) - 1 - last + cards[0].index; hidden > 0 {
				lines = append(lines, dimStyle.Render(fmt.Sprintf("… %d more", hidden)))
			}
		}

		color := lipgloss.Color("241")
		if i == m.lane {
			color = laneColors[status]
		}
		boxes = append(boxes, buildBorderedBox(normalizeLines(lines, height, width), width, color))
		if i < len(model.Statuses())-1 {
			boxes = append(boxes, strings.Repeat(" ", laneGap))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func (m Model) helpText() string {
	switch m.mode {
	case ModeGrab:
		return "h/l: lane  j/k: position  enter: drop  esc: cancel"
	case ModeInput:
		return "enter: confirm  esc: cancel"
	}
	return "h/l/j/k: move  n: new  space: done  m: next lane  p: pin  e: edit  x: delete  g: grab\n" +
		"/: search  f: filter  c: color  P: priority  D: due  C: clear done  A: toggle all  X: clear all  q: quit"
}

// normalizeLines ensures the slice has exactly `height` lines, each padded to `width`.
func normalizeLines(lines []string, height, width int) []string {
	result := make([]string, height)
	for i := 0; i < height; i++ {
		if i < len(lines) {
			result[i] = padToWidth(lines[i], width)
		} else {
			result[i] = strings.Repeat(" ", width)
		}
	}
	return result
}

// buildBorderedBox creates a box with rounded borders around content lines.
func buildBorderedBox(lines []string, contentWidth int, borderColor lipgloss.Color) string {
	style := lipgloss.NewStyle().Foreground(borderColor)

	topLeft := style.Render("╭")
	topRight := style.Render("╮")
	bottomLeft := style.Render("╰")
	bottomRight := style.Render("╯")
	horizontal := style.Render("─")
	vertical := style.Render("│")

	var b strings.Builder

	b.WriteString(topLeft)
	b.WriteString(strings.Repeat(horizontal, contentWidth))
	b.WriteString(topRight)
	b.WriteString("\n")

	for _, line := range lines {
		b.WriteString(vertical)
		b.WriteString(line)
		b.WriteString(vertical)
		b.WriteString("\n")
	}

	b.WriteString(bottomLeft)
	b.WriteString(strings.Repeat(horizontal, contentWidth))
	b.WriteString(bottomRight)

	return b.String()
}

// padToWidth pads a string to the specified width with spaces.
// Accounts for ANSI escape codes when calculating visible width.
func padToWidth(s string, width int) string {
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}
