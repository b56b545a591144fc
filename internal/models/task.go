package models

import (
	"slices"
	"time"
)

// TaskStatus represents the workflow state of a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "to-do"
	StatusInProgress TaskStatus = "inprogress"
	StatusCompleted  TaskStatus = "completed"
)

// Statuses lists every status in board order
var Statuses = []TaskStatus{StatusTodo, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known statuses
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Title returns the column heading used by the board and kanban views
func (s TaskStatus) Title() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// TaskCategory represents the category of a task
type TaskCategory string

const (
	CategoryPersonal TaskCategory = "Personal"
	CategoryWork     TaskCategory = "Work"
)

func (c TaskCategory) Valid() bool {
	return c == CategoryPersonal || c == CategoryWork
}

// AuditEntry is one human readable change event in a task's history
type AuditEntry struct {
	Change string `json:"change"`
	Time   string `json:"time"`
}

// Task represents a task in the system
type Task struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	Title        string       `json:"title" gorm:"not null"`
	Description  string       `json:"description"`
	Category     TaskCategory `json:"category" gorm:"not null;default:'Personal'"`
	DueDate      string       `json:"dueDate" gorm:"column:due_date;not null"`
	Status       TaskStatus   `json:"status" gorm:"not null;default:'to-do';index:idx_tasks_user_status,priority:2"`
	Files        []string     `json:"files" gorm:"serializer:json"`
	CreatedDate  string       `json:"createdDate" gorm:"column:created_date"`
	UpdatedDates []AuditEntry `json:"updatedDates" gorm:"column:updated_dates;serializer:json"`
	Index        int          `json:"index" gorm:"column:sort_index"`
	UserID       string       `json:"userId" gorm:"column:user_id;not null;index:idx_tasks_user_status,priority:1"`
	CreatedAt    time.Time    `json:"-"`
	UpdatedAt    time.Time    `json:"-"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// Clone returns a deep copy so snapshots never share slices
func (t Task) Clone() Task {
	out := t
	out.Files = slices.Clone(t.Files)
	out.UpdatedDates = slices.Clone(t.UpdatedDates)
	return out
}

// AppendAudit returns a copy of t with one more history entry
func (t Task) AppendAudit(change, at string) Task {
	out := t.Clone()
	out.UpdatedDates = append(out.UpdatedDates, AuditEntry{Change: change, Time: at})
	return out
}
