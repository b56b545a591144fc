package ordering

import (
	"fmt"

	"task-tracker-api/internal/models"
)

// Plan is the outcome of a status change over a whole collection.
type Plan struct {
	// Tasks is the full collection after the change, in the input order.
	Tasks []models.Task
	// Moved holds the ids whose status changed, in collection order.
	Moved []string
	// Changed holds the ids whose status or index changed, in collection order.
	Changed []string
}

// Noop reports whether applying the plan would change nothing
func (p Plan) Noop() bool {
	return len(p.Moved) == 0 && len(p.Changed) == 0
}

// ChangedTasks returns the records named in Changed
func (p Plan) ChangedTasks() []models.Task {
	want := make(map[string]struct{}, len(p.Changed))
	for _, id := range p.Changed {
		want[id] = struct{}{}
	}
	out := make([]models.Task, 0, len(p.Changed))
	for _, t := range p.Tasks {
		if _, ok := want[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Move changes the status of one task. The task takes the next free slot of its new
// bucket and every bucket is renumbered without gaps. Moving a task onto its own
// status returns an empty plan.
func Move(tasks []models.Task, id string, to models.TaskStatus) (Plan, error) {
	for _, t := range tasks {
		if t.ID != id {
			continue
		}
		if t.Status == to {
			return Plan{Tasks: tasks}, nil
		}
		return MoveMany(tasks, []string{id}, to)
	}
	return Plan{}, fmt.Errorf("%w: %s", ErrMissingTask, id)
}

// MoveMany reassigns every selected task to one status in a single pass. Selected tasks
// join the end of the target bucket in collection order; tasks already there stay put.
// Every bucket is then renumbered by its current relative order.
func MoveMany(tasks []models.Task, ids []string, to models.TaskStatus) (Plan, error) {
	if _, err := Rank(to); err != nil {
		return Plan{}, err
	}

	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}
	for _, id := range ids {
		if !contains(tasks, id) {
			return Plan{}, fmt.Errorf("%w: %s", ErrMissingTask, id)
		}
	}

	next := make([]models.Task, len(tasks))
	moved := make(map[string]bool)
	var movedOrder []string
	for i, t := range tasks {
		next[i] = t.Clone()
		if selected[t.ID] && t.Status != to {
			next[i].Status = to
			moved[t.ID] = true
			movedOrder = append(movedOrder, t.ID)
		}
	}

	if err := renumber(next, moved); err != nil {
		return Plan{}, err
	}

	plan := Plan{Tasks: next, Moved: movedOrder}
	for i := range next {
		if next[i].Index != tasks[i].Index || next[i].Status != tasks[i].Status {
			plan.Changed = append(plan.Changed, next[i].ID)
		}
	}
	return plan, nil
}

// renumber rewrites Index for every task in place. Within a bucket, tasks that did not
// move keep their relative order by current index; moved tasks follow in slice order.
func renumber(tasks []models.Task, moved map[string]bool) error {
	for _, status := range models.Statuses {
		var stay, arrive []models.Task
		for _, t := range tasks {
			if t.Status != status {
				continue
			}
			if moved[t.ID] {
				arrive = append(arrive, t)
			} else {
				stay = append(stay, t)
			}
		}
		SortBucket(stay)

		indexes, err := ReindexBucket(status, append(stay, arrive...))
		if err != nil {
			return err
		}
		for i := range tasks {
			if idx, ok := indexes[tasks[i].ID]; ok && tasks[i].Status == status {
				tasks[i].Index = idx
			}
		}
	}
	return nil
}

func contains(tasks []models.Task, id string) bool {
	for _, t := range tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}
