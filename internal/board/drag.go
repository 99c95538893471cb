package board

import (
	"math"
	"slices"

	"github.com/baiirun/lanes/internal/model"
)

// DropIndex returns where a dragged card lands in a lane given the
// vertical midpoints of the other cards, top to bottom, and the pointer
// row y. It is the index of the card whose midpoint is the closest one
// below y, or len(midpoints) to append at the end.
func DropIndex(midpoints []int, y int) int {
	idx := len(midpoints)
	closest := math.MinInt
	for i, mid := range midpoints {
		offset := y - mid
		if offset < 0 && offset > closest {
			closest = offset
			idx = i
		}
	}
	return idx
}

// Drag tracks one card being dragged across the displayed lanes. Only
// the placeholder moves; the board is untouched until the caller hands
// Layout to ReorderFromLayout.
type Drag struct {
	id    string
	lane  model.Status
	index int
	lanes map[model.Status][]string // displayed ids without the dragged one
}

// StartDrag picks up id from the snapshot. ok is false when id is not
// displayed.
func StartDrag(s Snapshot, id string) (d *Drag, ok bool) {
	d = &Drag{id: id, lanes: make(map[model.Status][]string, 3)}
	found := false
	for _, status := range model.Statuses() {
		ids := s.IDs(status)
		if i := slices.Index(ids, id); i >= 0 {
			d.lane, d.index, found = status, i, true
			ids = slices.Delete(ids, i, i+1)
		}
		d.lanes[status] = ids
	}
	if !found {
		return nil, false
	}
	return d, true
}

func (d *Drag) ID() string { return d.id }

// Lane returns the lane the placeholder is in.
func (d *Drag) Lane() model.Status { return d.lane }

// Index returns the placeholder's index within its lane.
func (d *Drag) Index() int { return d.index }

// MoveTo puts the placeholder at index in lane, counting only the other
// cards. The index is clamped to the lane; unknown lanes are ignored.
func (d *Drag) MoveTo(lane model.Status, index int) {
	ids, ok := d.lanes[lane]
	if !ok {
		return
	}
	d.lane = lane
	d.index = min(max(index, 0), len(ids))
}

// Shift moves the placeholder up (negative) or down within its lane.
func (d *Drag) Shift(delta int) {
	d.MoveTo(d.lane, d.index+delta)
}

// ShiftLane moves the placeholder to a neighboring lane, keeping its
// row where the target lane allows.
func (d *Drag) ShiftLane(delta int) {
	statuses := model.Statuses()
	i := slices.Index(statuses, d.lane) + delta
	if i < 0 || i >= len(statuses) {
		return
	}
	d.MoveTo(statuses[i], d.index)
}

// IDs returns the displayed ids of a lane with the placeholder in
// place.
func (d *Drag) IDs(lane model.Status) []string {
	ids := slices.Clone(d.lanes[lane])
	if lane == d.lane {
		ids = slices.Insert(ids, d.index, d.id)
	}
	return ids
}

// Layout returns the per-lane order to commit on drop.
func (d *Drag) Layout() Layout {
	layout := make(Layout, len(d.lanes))
	for _, status := range model.Statuses() {
		layout[status] = d.IDs(status)
	}
	return layout
}
