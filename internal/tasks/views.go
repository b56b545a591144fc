package tasks

import (
	"task-tracker-api/internal/models"
	"task-tracker-api/internal/ordering"
	"task-tracker-api/internal/session"
)

// Column is one status bucket of the board or kanban view
type Column struct {
	Status models.TaskStatus `json:"status"`
	Title  string            `json:"title"`
	Tasks  []models.Task     `json:"tasks"`
	// Total counts the bucket before filtering
	Total int `json:"total"`
	Shown int `json:"shown"`
}

// Board is the grouped view of a user's tasks
type Board struct {
	View    session.ViewMode `json:"view"`
	Columns []Column         `json:"columns"`
}

// Stats summarises a user's tasks by status
type Stats struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// List returns the matching tasks ordered by index
func (s *Service) List(sess *session.Session, f Filter) []models.Task {
	out := f.Apply(sess.Tasks())
	ordering.SortBucket(out)
	return out
}

// Board groups the matching tasks by status in board order. A status filter hides
// the other columns' tasks but keeps their totals.
func (s *Service) Board(sess *session.Session, f Filter) Board {
	all := sess.Tasks()
	buckets := make(map[models.TaskStatus][]models.Task, len(models.Statuses))
	totals := make(map[models.TaskStatus]int, len(models.Statuses))
	for _, t := range all {
		totals[t.Status]++
		if f.Match(t) {
			buckets[t.Status] = append(buckets[t.Status], t)
		}
	}

	board := Board{View: sess.View(), Columns: make([]Column, 0, len(models.Statuses))}
	for _, st := range models.Statuses {
		bucket := buckets[st]
		if bucket == nil {
			bucket = []models.Task{}
		}
		ordering.SortBucket(bucket)
		board.Columns = append(board.Columns, Column{
			Status: st,
			Title:  st.Title(),
			Tasks:  bucket,
			Total:  totals[st],
			Shown:  len(bucket),
		})
	}
	return board
}

// Stats counts the session's tasks per status
func (s *Service) Stats(sess *session.Session) Stats {
	var st Stats
	for _, t := range sess.Tasks() {
		st.Total++
		switch t.Status {
		case models.StatusTodo:
			st.Todo++
		case models.StatusInProgress:
			st.InProgress++
		case models.StatusCompleted:
			st.Completed++
		}
	}
	return st
}
