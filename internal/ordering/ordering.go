// Package ordering computes the per-status sort keys of tasks.
//
// A sort key concatenates the status rank with the zero-padded, one-based position
// inside the status bucket: inprogress (rank 2) at position 3 is 204. The encoding has
// two position digits, so a bucket holds at most MaxBucketSize tasks; positions past
// that are rejected rather than silently producing a three-digit suffix.
package ordering

import (
	"errors"
	"fmt"
	"sort"

	"task-tracker-api/internal/models"
)

// MaxBucketSize is the number of tasks one status bucket can number
const MaxBucketSize = 99

const rankBase = 100

var (
	ErrUnknownStatus      = errors.New("unknown task status")
	ErrPositionOutOfRange = errors.New("position outside the sortable range")
	ErrMissingTask        = errors.New("task not in collection")
)

var ranks = map[models.TaskStatus]int{
	models.StatusTodo:       1,
	models.StatusInProgress: 2,
	models.StatusCompleted:  3,
}

// Rank returns the leading digit used for status in every sort key
func Rank(status models.TaskStatus) (int, error) {
	r, ok := ranks[status]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	return r, nil
}

// ComputeIndex returns the sort key for a task at the zero-based position within status
func ComputeIndex(status models.TaskStatus, position int) (int, error) {
	rank, err := Rank(status)
	if err != nil {
		return 0, err
	}
	if position < 0 || position >= MaxBucketSize {
		return 0, fmt.Errorf("%w: %d (bucket %s holds %d)", ErrPositionOutOfRange, position, status, MaxBucketSize)
	}
	return rank*rankBase + position + 1, nil
}

// NextIndex is the key a new task gets when it joins the end of status
func NextIndex(tasks []models.Task, status models.TaskStatus) (int, error) {
	n := 0
	for _, t := range tasks {
		if t.Status == status {
			n++
		}
	}
	return ComputeIndex(status, n)
}

// SortBucket orders tasks by index, keeping the given order between equal keys
func SortBucket(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Index < tasks[j].Index
	})
}

// ReindexBucket numbers tasks in the order given, all as members of status
func ReindexBucket(status models.TaskStatus, tasks []models.Task) (map[string]int, error) {
	out := make(map[string]int, len(tasks))
	for i, t := range tasks {
		idx, err := ComputeIndex(status, i)
		if err != nil {
			return nil, err
		}
		out[t.ID] = idx
	}
	return out, nil
}
