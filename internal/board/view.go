package board

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/baiirun/lanes/internal/model"
)

// Lanes maps each of the three statuses to its todos. Values built by
// this package always carry all three keys.
type Lanes map[model.Status][]model.Todo

// LaneCounts holds per-lane totals over the whole collection.
type LaneCounts struct {
	Todo  int `json:"todo"`
	Doing int `json:"doing"`
	Done  int `json:"done"`
}

// Get returns the count for one lane.
func (c LaneCounts) Get(s model.Status) int {
	switch s {
	case model.StatusTodo:
		return c.Todo
	case model.StatusDoing:
		return c.Doing
	case model.StatusDone:
		return c.Done
	}
	return 0
}

func (c LaneCounts) Total() int {
	return c.Todo + c.Doing + c.Done
}

// Matches reports whether a todo passes the filter and search. Search is
// a case-insensitive substring match on the title; blank matches all.
func Matches(t model.Todo, filter model.Filter, search string) bool {
	switch filter {
	case model.FilterActive:
		if t.IsDone() {
			return false
		}
	case model.FilterCompleted:
		if !t.IsDone() {
			return false
		}
	}

	query := strings.ToLower(strings.TrimSpace(search))
	return query == "" || strings.Contains(strings.ToLower(t.Title), query)
}

// FilteredView yields the todos that pass filter and search, in
// collection order. The sequence is lazy and can be ranged over more
// than once; it never modifies todos.
func FilteredView(todos []model.Todo, filter model.Filter, search string) iter.Seq[model.Todo] {
	return func(yield func(model.Todo) bool) {
		for _, t := range todos {
			if !Matches(t, filter, search) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// GroupByLane partitions a view into the three lanes, keeping the
// sequence order inside each lane. Todos with any other status are
// dropped.
func GroupByLane(view iter.Seq[model.Todo]) Lanes {
	lanes := Lanes{
		model.StatusTodo:  {},
		model.StatusDoing: {},
		model.StatusDone:  {},
	}
	for t := range view {
		if _, ok := lanes[t.Status]; !ok {
			continue
		}
		lanes[t.Status] = append(lanes[t.Status], t)
	}
	return lanes
}

// SortLane returns the lane in display order: pinned first, then by
// ascending position, then newest first.
func SortLane(todos []model.Todo) []model.Todo {
	sorted := slices.Clone(todos)
	slices.SortStableFunc(sorted, compareTodos)
	return sorted
}

func compareTodos(a, b model.Todo) int {
	if a.Pinned != b.Pinned {
		if a.Pinned {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(a.Position, b.Position); c != 0 {
		return c
	}
	return cmp.Compare(b.CreatedAt, a.CreatedAt)
}

// Counts totals each lane over the unfiltered collection.
func Counts(todos []model.Todo) LaneCounts {
	var c LaneCounts
	for _, t := range todos {
		switch t.Status {
		case model.StatusTodo:
			c.Todo++
		case model.StatusDoing:
			c.Doing++
		case model.StatusDone:
			c.Done++
		}
	}
	return c
}

// ItemsLeft counts todos not yet done. It ignores filter and search.
func ItemsLeft(todos []model.Todo) int {
	n := 0
	for _, t := range todos {
		if !t.IsDone() {
			n++
		}
	}
	return n
}

// ItemsLeftLabel renders the global counter, e.g. "1 item left".
func ItemsLeftLabel(n int) string {
	if n == 1 {
		return "1 item left"
	}
	return fmt.Sprintf("%d items left", n)
}

// NextPosition returns one past the highest position in the lane, or 0
// when the lane is empty.
func NextPosition(todos []model.Todo, status model.Status) int {
	next := 0
	for _, t := range todos {
		if t.Status == status && t.Position+1 > next {
			next = t.Position + 1
		}
	}
	return next
}

// Snapshot is everything a renderer needs to draw the board.
type Snapshot struct {
	Lanes     Lanes
	Counts    LaneCounts
	ItemsLeft int
	Filter    model.Filter
	Search    string
	Draft     Draft
}

// Lane returns the sorted, filtered todos of one lane.
func (s Snapshot) Lane(status model.Status) []model.Todo {
	return s.Lanes[status]
}

// IDs returns the ids of one lane in display order.
func (s Snapshot) IDs(status model.Status) []string {
	lane := s.Lanes[status]
	ids := make([]string, len(lane))
	for i, t := range lane {
		ids[i] = t.ID
	}
	return ids
}

// Layout returns the displayed order of every lane.
func (s Snapshot) Layout() Layout {
	layout := make(Layout, len(s.Lanes))
	for _, status := range model.Statuses() {
		layout[status] = s.IDs(status)
	}
	return layout
}

// Derive builds the snapshot for a collection and the given UI state.
func Derive(todos []model.Todo, filter model.Filter, search string, draft Draft) Snapshot {
	lanes := GroupByLane(FilteredView(todos, filter, search))
	for status, lane := range lanes {
		lanes[status] = SortLane(lane)
	}
	return Snapshot{
		Lanes:     lanes,
		Counts:    Counts(todos),
		ItemsLeft: ItemsLeft(todos),
		Filter:    filter,
		Search:    search,
		Draft:     draft,
	}
}
