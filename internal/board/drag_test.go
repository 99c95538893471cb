package board

import (
	"slices"
	"testing"

	"github.com/baiirun/lanes/internal/model"
)

func TestDropIndex(t *testing.T) {
	mids := []int{2, 6, 10}

	tests := []struct {
		name string
		mids []int
		y    int
		want int
	}{
		{"above all", mids, 0, 0},
		{"between first and second", mids, 4, 1},
		{"on a midpoint", mids, 6, 2},
		{"below all", mids, 12, 3},
		{"empty lane", nil, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DropIndex(tt.mids, tt.y); got != tt.want {
				t.Errorf("DropIndex(%v, %d) = %d, want %d", tt.mids, tt.y, got, tt.want)
			}
		})
	}
}

func dragSnapshot() Snapshot {
	return Derive([]model.Todo{
		todo("a", model.StatusTodo, 0),
		todo("b", model.StatusTodo, 1),
		todo("c", model.StatusTodo, 2),
		todo("d", model.StatusDoing, 0),
	}, model.FilterAll, "", DefaultDraft())
}

func TestStartDrag(t *testing.T) {
	d, ok := StartDrag(dragSnapshot(), "b")
	if !ok {
		t.Fatal("StartDrag returned false")
	}
	if d.Lane() != model.StatusTodo || d.Index() != 1 {
		t.Errorf("placeholder at %s/%d, want todo/1", d.Lane(), d.Index())
	}
	if got := d.IDs(model.StatusTodo); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("todo lane = %v", got)
	}

	if _, ok := StartDrag(dragSnapshot(), "ghost"); ok {
		t.Error("StartDrag of unknown id should fail")
	}
}

func TestDrag_Shift(t *testing.T) {
	d, _ := StartDrag(dragSnapshot(), "a")

	d.Shift(1)
	if got := d.IDs(model.StatusTodo); !slices.Equal(got, []string{"b", "a", "c"}) {
		t.Errorf("after Shift(1) = %v", got)
	}
	d.Shift(5)
	if got := d.IDs(model.StatusTodo); !slices.Equal(got, []string{"b", "c", "a"}) {
		t.Errorf("after Shift(5) = %v", got)
	}
	d.Shift(-10)
	if got := d.IDs(model.StatusTodo); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("after Shift(-10) = %v", got)
	}
}

func TestDrag_ShiftLane(t *testing.T) {
	d, _ := StartDrag(dragSnapshot(), "c")

	d.ShiftLane(-1)
	if d.Lane() != model.StatusTodo {
		t.Errorf("lane = %s, want todo (no lane to the left)", d.Lane())
	}

	d.ShiftLane(1)
	if d.Lane() != model.StatusDoing {
		t.Fatalf("lane = %s, want doing", d.Lane())
	}
	if got := d.IDs(model.StatusDoing); !slices.Equal(got, []string{"d", "c"}) {
		t.Errorf("doing = %v, want [d c]", got)
	}
	if got := d.IDs(model.StatusTodo); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("todo = %v, want [a b]", got)
	}

	d.ShiftLane(1)
	if got := d.IDs(model.StatusDone); !slices.Equal(got, []string{"c"}) {
		t.Errorf("done = %v, want [c]", got)
	}
}

func TestDrag_DropCommitsLayout(t *testing.T) {
	b, _ := setupTestBoard(t,
		todo("a", model.StatusTodo, 0),
		todo("b", model.StatusTodo, 1),
		todo("d", model.StatusDoing, 0),
	)

	d, ok := StartDrag(b.View(), "a")
	if !ok {
		t.Fatal("StartDrag returned false")
	}
	d.MoveTo(model.StatusDoing, DropIndex([]int{1}, 0))
	d.MoveTo("archive", 0)

	if got := mustGet(t, b, "a").Status; got != model.StatusTodo {
		t.Errorf("drag changed board before drop: status %s", got)
	}

	if err := b.ReorderFromLayout(d.Layout()); err != nil {
		t.Fatalf("ReorderFromLayout failed: %v", err)
	}
	if got := b.View().IDs(model.StatusDoing); !slices.Equal(got, []string{"a", "d"}) {
		t.Errorf("doing = %v, want [a d]", got)
	}
	if got := mustGet(t, b, "b").Position; got != 0 {
		t.Errorf("b position = %d, want 0", got)
	}
}
