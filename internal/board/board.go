// Package board holds the in-memory todo collection together with the
// ephemeral UI state (filter, search, creation draft) and applies every
// mutation to it. Each mutation computes a new collection, saves it and
// then notifies the change hook.
package board

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/baiirun/lanes/internal/model"
)

// Persister saves the whole collection.
type Persister interface {
	Save(ctx context.Context, todos []model.Todo) error
}

// Loader reads the whole collection.
type Loader interface {
	Load(ctx context.Context) ([]model.Todo, error)
}

// Journal records per-todo activity. Failures are logged, never
// returned from board operations.
type Journal interface {
	AddLog(ctx context.Context, todoID, message string) error
}

// Draft is the creation-time selection for new todos. It never touches
// existing todos.
type Draft struct {
	Status   model.Status
	Priority model.Priority
	DueDate  string
	Color    string
}

// DefaultDraft returns the draft a fresh board starts with.
func DefaultDraft() Draft {
	return Draft{
		Status:   model.StatusTodo,
		Priority: model.PriorityMedium,
		Color:    model.DefaultColor,
	}
}

// Patch holds the fields Update merges into a todo. Nil fields are left
// alone.
type Patch struct {
	Title    *string
	Status   *model.Status
	Priority *model.Priority
	Color    *string
	DueDate  *string
	Pinned   *bool
	Position *int
}

// Layout is the displayed order of ids per lane after a drop.
type Layout map[model.Status][]string

// Option configures a Board.
type Option func(*Board)

func WithLogger(l *log.Logger) Option {
	return func(b *Board) { b.logger = l }
}

func WithJournal(j Journal) Option {
	return func(b *Board) { b.journal = j }
}

// WithClock replaces time.Now for createdAt stamps.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// WithIDGenerator replaces model.GenerateID for new todos.
func WithIDGenerator(gen func() string) Option {
	return func(b *Board) { b.newID = gen }
}

// WithDraft sets the initial creation draft.
func WithDraft(d Draft) Option {
	return func(b *Board) { b.draft = d }
}

// Board is the single owner of the collection and UI state. It is not
// safe for concurrent use; callers drive it from one goroutine.
type Board struct {
	todos  []model.Todo
	filter model.Filter
	search string
	draft  Draft

	store    Persister
	journal  Journal
	logger   *log.Logger
	now      func() time.Time
	newID    func() string
	onChange func()
}

// New returns a board over todos that saves through p.
func New(p Persister, todos []model.Todo, opts ...Option) *Board {
	b := &Board{
		todos:  slices.Clone(todos),
		filter: model.FilterAll,
		draft:  DefaultDraft(),
		store:  p,
		logger: log.New(io.Discard),
		now:    time.Now,
		newID:  model.GenerateID,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Store is what Open needs: a loader that can also save.
type Store interface {
	Loader
	Persister
}

// Open loads the collection from s and returns a board over it.
func Open(ctx context.Context, s Store, opts ...Option) (*Board, error) {
	todos, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return New(s, todos, opts...), nil
}

// SetOnChange registers the function called after every change to the
// collection or the view state.
func (b *Board) SetOnChange(fn func()) {
	b.onChange = fn
}

// Todos returns a copy of the collection in stored order.
func (b *Board) Todos() []model.Todo {
	return slices.Clone(b.todos)
}

// Get returns the todo with id.
func (b *Board) Get(id string) (model.Todo, bool) {
	i := b.indexOf(id)
	if i < 0 {
		return model.Todo{}, false
	}
	return b.todos[i], true
}

func (b *Board) Filter() model.Filter { return b.filter }
func (b *Board) Search() string       { return b.search }
func (b *Board) Draft() Draft         { return b.draft }

// View derives the current snapshot.
func (b *Board) View() Snapshot {
	return Derive(b.todos, b.filter, b.search, b.draft)
}

// Add creates a todo from title using the current draft. A blank title
// is rejected and returns nil.
func (b *Board) Add(title string) (*model.Todo, error) {
	return b.AddWith(title, b.draft)
}

// AddWith creates a todo from title and draft. The new todo goes to the
// front of the collection and to the bottom of its lane.
func (b *Board) AddWith(title string, d Draft) (*model.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}

	status := d.Status
	if !status.IsValid() {
		status = model.StatusTodo
	}
	t := model.Normalize(model.Record{
		"id":        b.newID(),
		"title":     title,
		"status":    string(status),
		"priority":  string(d.Priority),
		"color":     d.Color,
		"dueDate":   d.DueDate,
		"pinned":    false,
		"position":  NextPosition(b.todos, status),
		"createdAt": b.now().UnixMilli(),
	}, 0)

	next := make([]model.Todo, 0, len(b.todos)+1)
	next = append(next, t)
	next = append(next, b.todos...)
	if err := b.apply("add", next, entry{t.ID, fmt.Sprintf("created in %s", t.Status)}); err != nil {
		return nil, err
	}
	b.logger.Debug("added todo", "id", t.ID, "status", t.Status, "position", t.Position)
	return &t, nil
}

// Update merges the non-nil fields of p into the todo with id. Invalid
// enum values and negative positions are ignored.
func (b *Board) Update(id string, p Patch) error {
	i := b.indexOf(id)
	if i < 0 {
		return nil
	}

	next := slices.Clone(b.todos)
	t := &next[i]
	var notes []entry
	if p.Title != nil && *p.Title != t.Title {
		t.Title = *p.Title
		notes = append(notes, entry{id, fmt.Sprintf("title changed to %q", t.Title)})
	}
	if p.Status != nil && p.Status.IsValid() && *p.Status != t.Status {
		t.Status = *p.Status
		notes = append(notes, entry{id, fmt.Sprintf("moved to %s", t.Status)})
	}
	if p.Priority != nil && p.Priority.IsValid() && *p.Priority != t.Priority {
		t.Priority = *p.Priority
		notes = append(notes, entry{id, fmt.Sprintf("priority set to %s", t.Priority)})
	}
	if p.Color != nil && *p.Color != "" {
		t.Color = *p.Color
	}
	if p.DueDate != nil && *p.DueDate != t.DueDate {
		t.DueDate = *p.DueDate
		if t.DueDate == "" {
			notes = append(notes, entry{id, "due date cleared"})
		} else {
			notes = append(notes, entry{id, fmt.Sprintf("due %s", t.DueDate)})
		}
	}
	if p.Pinned != nil {
		t.Pinned = *p.Pinned
	}
	if p.Position != nil && *p.Position >= 0 {
		t.Position = *p.Position
	}

	return b.apply("update", next, notes...)
}

// ToggleDone moves the todo to done when checked, otherwise back to
// todo, placing it at the bottom of the target lane.
func (b *Board) ToggleDone(id string, checked bool) error {
	status := model.StatusTodo
	if checked {
		status = model.StatusDone
	}
	return b.relane("toggle", id, func(model.Status) model.Status { return status })
}

// Move advances the todo to the next lane in the todo, doing, done
// cycle.
func (b *Board) Move(id string) error {
	return b.relane("move", id, model.Status.Next)
}

func (b *Board) relane(op, id string, target func(model.Status) model.Status) error {
	i := b.indexOf(id)
	if i < 0 {
		return nil
	}

	next := slices.Clone(b.todos)
	t := &next[i]
	t.Status = target(t.Status)
	t.Position = NextPosition(b.todos, t.Status)

	msg := fmt.Sprintf("moved to %s", t.Status)
	if t.IsDone() {
		msg = "marked done"
	}
	b.logger.Debug(op, "id", id, "status", t.Status, "position", t.Position)
	return b.apply(op, next, entry{id, msg})
}

// TogglePin flips the pinned flag. Position is unchanged.
func (b *Board) TogglePin(id string) error {
	i := b.indexOf(id)
	if i < 0 {
		return nil
	}

	next := slices.Clone(b.todos)
	next[i].Pinned = !next[i].Pinned
	msg := "unpinned"
	if next[i].Pinned {
		msg = "pinned"
	}
	return b.apply("pin", next, entry{id, msg})
}

// Delete removes the todo with id.
func (b *Board) Delete(id string) error {
	i := b.indexOf(id)
	if i < 0 {
		return nil
	}
	next := slices.Delete(slices.Clone(b.todos), i, i+1)
	return b.apply("delete", next, entry{id, "deleted"})
}

// ClearCompleted removes every done todo.
func (b *Board) ClearCompleted() error {
	next := slices.DeleteFunc(slices.Clone(b.todos), model.Todo.IsDone)
	return b.apply("clear completed", next)
}

// ClearAll empties the collection.
func (b *Board) ClearAll() error {
	return b.apply("clear all", []model.Todo{})
}

// ToggleAll sends every todo to todo when all are done, otherwise to
// done. Positions are left as they are, so lanes can end up with
// duplicate positions until the next reorder.
func (b *Board) ToggleAll() error {
	allDone := len(b.todos) > 0 && !slices.ContainsFunc(b.todos, func(t model.Todo) bool {
		return !t.IsDone()
	})
	status := model.StatusDone
	if allDone {
		status = model.StatusTodo
	}

	next := slices.Clone(b.todos)
	for i := range next {
		next[i].Status = status
	}
	return b.apply("toggle all", next)
}

// CommitEdit finishes an in-place title edit. A blank title deletes the
// todo.
func (b *Board) CommitEdit(id, title string) error {
	if b.indexOf(id) < 0 {
		return nil
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return b.Delete(id)
	}
	return b.Update(id, Patch{Title: &title})
}

// ReorderFromLayout applies the displayed order after a drop: every
// listed id takes the lane it is listed under and its index as
// position. Unknown ids and lanes are skipped. Todos hidden by the
// current filter or search are not listed and keep their positions,
// which may then collide with the renumbered ones.
func (b *Board) ReorderFromLayout(layout Layout) error {
	next := slices.Clone(b.todos)
	index := make(map[string]int, len(next))
	for i, t := range next {
		index[t.ID] = i
	}

	var notes []entry
	for _, status := range model.Statuses() {
		for pos, id := range layout[status] {
			i, ok := index[id]
			if !ok {
				continue
			}
			t := &next[i]
			if t.Status != status {
				notes = append(notes, entry{id, fmt.Sprintf("moved to %s", status)})
			}
			t.Status = status
			t.Position = pos
		}
	}
	return b.apply("reorder", next, notes...)
}

// Replace swaps in a whole new collection, keeping the first todo for
// any repeated id.
func (b *Board) Replace(todos []model.Todo) error {
	return b.apply("replace", dedupe(todos))
}

// Merge appends todos whose ids are not already on the board and
// returns how many were added.
func (b *Board) Merge(todos []model.Todo) (int, error) {
	seen := make(map[string]bool, len(b.todos)+len(todos))
	for _, t := range b.todos {
		seen[t.ID] = true
	}

	next := slices.Clone(b.todos)
	added := 0
	for _, t := range todos {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		next = append(next, t)
		added++
	}
	if err := b.apply("merge", next); err != nil {
		return 0, err
	}
	return added, nil
}

func dedupe(todos []model.Todo) []model.Todo {
	seen := make(map[string]bool, len(todos))
	out := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}

// SetFilter changes the visible subset. Unknown filters are ignored.
func (b *Board) SetFilter(f model.Filter) {
	if !f.IsValid() {
		return
	}
	b.filter = f
	b.changed()
}

// SetSearch changes the title search. It is matched case-insensitively
// after trimming.
func (b *Board) SetSearch(s string) {
	b.search = s
	b.changed()
}

// SetCreationColor sets the color for future todos only.
func (b *Board) SetCreationColor(c string) {
	if c == "" {
		return
	}
	b.draft.Color = c
	b.changed()
}

// SetDraft replaces the whole creation draft.
func (b *Board) SetDraft(d Draft) {
	b.draft = d
	b.changed()
}

type entry struct {
	id  string
	msg string
}

// apply saves next and, on success, makes it the current collection.
// On failure the board keeps its previous state.
func (b *Board) apply(op string, next []model.Todo, notes ...entry) error {
	if err := b.store.Save(context.Background(), next); err != nil {
		b.logger.Error("save failed", "op", op, "err", err)
		return fmt.Errorf("failed to save after %s: %w", op, err)
	}
	b.todos = next
	b.logger.Debug("saved", "op", op, "count", len(next))

	if b.journal != nil {
		for _, n := range notes {
			if err := b.journal.AddLog(context.Background(), n.id, n.msg); err != nil {
				b.logger.Warn("failed to record history", "id", n.id, "err", err)
			}
		}
	}
	b.changed()
	return nil
}

func (b *Board) changed() {
	if b.onChange != nil {
		b.onChange()
	}
}

func (b *Board) indexOf(id string) int {
	return slices.IndexFunc(b.todos, func(t model.Todo) bool {
		return t.ID == id
	})
}
