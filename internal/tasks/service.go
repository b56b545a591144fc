// Package tasks implements the task workflow: create, edit, status changes, deletes
// and the read views, all over one user's session collection.
//
// Every mutation follows the same sequence: compute the next collection, install it
// in the session, await the store, and restore the previous collection if the store
// fails. Writes touching several records go through one store transaction.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"task-tracker-api/internal/models"
	"task-tracker-api/internal/ordering"
	"task-tracker-api/internal/realtime"
	"task-tracker-api/internal/richtext"
	"task-tracker-api/internal/session"
	"task-tracker-api/internal/store"
)

// AuditTimeLayout renders audit timestamps like an en-IN locale string
const AuditTimeLayout = "2/1/2006, 3:04:05 pm"

const createdChange = "Task created"

// Source names the UI affordance that asked for a status change
type Source string

const (
	SourceDrag     Source = "drag"
	SourceDropdown Source = "dropdown"
	SourceForm     Source = "form"
	SourceBulk     Source = "bulk"
)

// Publisher receives an event after every persisted mutation
type Publisher interface {
	Publish(evt realtime.Event)
}

// Options tunes a Service
type Options struct {
	Location         *time.Location
	DescriptionLimit int
	Now              func() time.Time
}

type Service struct {
	store     store.TaskStore
	events    Publisher
	loc       *time.Location
	descLimit int
	now       func() time.Time
}

func NewService(st store.TaskStore, events Publisher, opts Options) *Service {
	s := &Service{
		store:     st,
		events:    events,
		loc:       opts.Location,
		descLimit: opts.DescriptionLimit,
		now:       opts.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.descLimit <= 0 {
		s.descLimit = richtext.DefaultLimit
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) timestamp() string {
	return s.now().In(s.loc).Format(AuditTimeLayout)
}

func (s *Service) publish(userID string, typ realtime.EventType, ids ...string) {
	if s.events == nil || len(ids) == 0 {
		return
	}
	s.events.Publish(realtime.Event{Type: typ, TaskIDs: ids, UserID: userID, Version: 1})
}

// Create adds a task to its status bucket at the index after the bucket's current
// size. Deletes leave gaps, so a new task can sort above tasks created earlier.
func (s *Service) Create(ctx context.Context, sess *session.Session, d Draft) (models.Task, error) {
	task, err := s.validateDraft(d)
	if err != nil {
		return models.Task{}, err
	}

	release := sess.Exclusive()
	defer release()

	before := sess.Tasks()
	idx, err := ordering.NextIndex(before, task.Status)
	if err != nil {
		return models.Task{}, fromOrdering(err)
	}

	ts := s.timestamp()
	task.Index = idx
	task.CreatedDate = ts
	task.UpdatedDates = []models.AuditEntry{{Change: createdChange, Time: ts}}
	task.UserID = sess.User.UID

	sess.Replace(append(slices.Clone(before), task))
	id, err := s.store.Create(ctx, task)
	if err != nil {
		sess.Replace(before)
		log.Printf("tasks: create for user %s failed: %v", sess.User.UID, err)
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	task.ID = id
	sess.Replace(append(before, task))

	s.publish(task.UserID, realtime.TaskCreated, task.ID)
	return task.Clone(), nil
}

// Get returns one task from the session
func (s *Service) Get(sess *session.Session, id string) (models.Task, error) {
	t, ok := sess.Find(id)
	if !ok {
		return models.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t, nil
}

// Edit applies field changes with one audit entry naming all of them. A status in
// the patch goes through the same transition as a drag or dropdown change.
func (s *Service) Edit(ctx context.Context, sess *session.Session, id string, p Patch) (models.Task, error) {
	patch, err := s.validatePatch(p)
	if err != nil {
		return models.Task{}, err
	}

	release := sess.Exclusive()
	defer release()

	before := sess.Tasks()
	pos := position(before, id)
	if pos < 0 {
		log.Printf("tasks: edit for user %s references unknown task %s", sess.User.UID, id)
		return models.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	current := before[pos]
	updated := current.Clone()

	var changes []string
	if patch.title != nil && *patch.title != current.Title {
		updated.Title = *patch.title
		changes = append(changes, fmt.Sprintf("title to %q", *patch.title))
	}
	if patch.description != nil && *patch.description != current.Description {
		updated.Description = *patch.description
		changes = append(changes, "description")
	}
	if patch.category != nil && *patch.category != current.Category {
		updated.Category = *patch.category
		changes = append(changes, "category to "+string(*patch.category))
	}
	if patch.dueDate != nil && *patch.dueDate != current.DueDate {
		updated.DueDate = *patch.dueDate
		changes = append(changes, "due date to "+*patch.dueDate)
	}
	if patch.files != nil && !slices.Equal(patch.files, current.Files) {
		updated.Files = patch.files
		changes = append(changes, "attached files")
	}

	ts := s.timestamp()
	next := slices.Clone(before)
	dirty := map[string]bool{}
	if len(changes) > 0 {
		next[pos] = updated.AppendAudit("You changed "+strings.Join(changes, " and "), ts)
		dirty[id] = true
	}

	statusChanged := false
	if patch.status != nil && *patch.status != current.Status {
		var plan ordering.Plan
		plan, next, err = s.transition(sess.User.UID, next, []string{id}, *patch.status, SourceForm, ts)
		if err != nil {
			return models.Task{}, err
		}
		for _, cid := range plan.Changed {
			dirty[cid] = true
		}
		statusChanged = true
	}

	if len(dirty) == 0 {
		return current, nil
	}

	if err := s.commit(ctx, sess, before, next, dirty); err != nil {
		return models.Task{}, err
	}

	s.publish(sess.User.UID, realtime.TaskUpdated, id)
	if statusChanged {
		s.publish(sess.User.UID, realtime.TaskStatusChanged, keys(next, dirty)...)
	}
	out, _ := sess.Find(id)
	return out, nil
}

// ChangeStatus moves one task to status. Drag-and-drop, the card dropdown and the
// edit form all land here. Moving a task onto its own status changes nothing and
// reports changed=false.
func (s *Service) ChangeStatus(ctx context.Context, sess *session.Session, id string, status string, src Source) (task models.Task, changed bool, err error) {
	to, ok := ParseStatus(status)
	if !ok {
		return models.Task{}, false, fieldError("status", "Status must be one of to-do, inprogress, completed")
	}

	release := sess.Exclusive()
	defer release()

	before := sess.Tasks()
	plan, next, err := s.transition(sess.User.UID, before, []string{id}, to, src, s.timestamp())
	if err != nil {
		return models.Task{}, false, err
	}
	if plan.Noop() {
		t, _ := sess.Find(id)
		return t, false, nil
	}

	if err := s.commit(ctx, sess, before, next, asSet(plan.Changed)); err != nil {
		return models.Task{}, false, err
	}

	s.publish(sess.User.UID, realtime.TaskStatusChanged, plan.Changed...)
	out, _ := sess.Find(id)
	return out, true, nil
}

// BulkChangeStatus reassigns the selected tasks to status in one pass followed by one
// renumbering pass. It returns the tasks whose status actually changed.
func (s *Service) BulkChangeStatus(ctx context.Context, sess *session.Session, ids []string, status string) ([]models.Task, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, fieldError("ids", "Select at least one task")
	}
	to, ok := ParseStatus(status)
	if !ok {
		return nil, fieldError("status", "Status must be one of to-do, inprogress, completed")
	}

	release := sess.Exclusive()
	defer release()

	before := sess.Tasks()
	plan, next, err := s.transition(sess.User.UID, before, ids, to, SourceBulk, s.timestamp())
	if err != nil {
		return nil, err
	}
	if plan.Noop() {
		return []models.Task{}, nil
	}

	if err := s.commit(ctx, sess, before, next, asSet(plan.Changed)); err != nil {
		return nil, err
	}

	s.publish(sess.User.UID, realtime.TasksStatusChanged, plan.Changed...)
	moved := asSet(plan.Moved)
	out := make([]models.Task, 0, len(plan.Moved))
	for _, t := range next {
		if moved[t.ID] {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

// Delete removes one task. Its former bucket keeps its gap until the next status change.
func (s *Service) Delete(ctx context.Context, sess *session.Session, id string) error {
	release := sess.Exclusive()
	defer release()

	before := sess.Tasks()
	pos := position(before, id)
	if pos < 0 {
		log.Printf("tasks: delete for user %s references unknown task %s", sess.User.UID, id)
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	sess.Replace(slices.Delete(slices.Clone(before), pos, pos+1))
	if err := s.store.Delete(ctx, sess.User.UID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("tasks: task %s of user %s was already gone from the store", id, sess.User.UID)
		} else {
			sess.Replace(before)
			log.Printf("tasks: delete for user %s failed: %v", sess.User.UID, err)
			return fmt.Errorf("delete task: %w", err)
		}
	}

	s.publish(sess.User.UID, realtime.TaskDeleted, id)
	return nil
}

// BulkDelete removes every selected task or none of them
func (s *Service) BulkDelete(ctx context.Context, sess *session.Session, ids []string) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return fieldError("ids", "Select at least one task")
	}

	release := sess.Exclusive()
	defer release()

	before := sess.Tasks()
	drop := asSet(ids)
	for _, id := range ids {
		if position(before, id) < 0 {
			log.Printf("tasks: bulk delete for user %s references unknown task %s", sess.User.UID, id)
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
	}

	sess.Replace(slices.DeleteFunc(slices.Clone(before), func(t models.Task) bool { return drop[t.ID] }))
	if err := s.store.DeleteMany(ctx, sess.User.UID, ids); err != nil {
		sess.Replace(before)
		log.Printf("tasks: bulk delete for user %s failed: %v", sess.User.UID, err)
		return fmt.Errorf("delete tasks: %w", err)
	}

	s.publish(sess.User.UID, realtime.TasksDeleted, ids...)
	return nil
}

// commit installs next, persists the dirty records and restores before on failure
func (s *Service) commit(ctx context.Context, sess *session.Session, before, next []models.Task, dirty map[string]bool) error {
	sess.Replace(next)

	changed := make([]models.Task, 0, len(dirty))
	for _, t := range next {
		if dirty[t.ID] {
			changed = append(changed, t)
		}
	}
	if err := s.store.UpdateMany(ctx, changed); err != nil {
		sess.Replace(before)
		log.Printf("tasks: persisting %d task(s) for user %s failed, session rolled back: %v", len(changed), sess.User.UID, err)
		return fmt.Errorf("update tasks: %w", err)
	}
	return nil
}

// transition is the one status change behind drag, dropdown, form and bulk. It returns
// the plan and the collection with status audit entries appended.
func (s *Service) transition(uid string, tasks []models.Task, ids []string, to models.TaskStatus, src Source, ts string) (ordering.Plan, []models.Task, error) {
	var plan ordering.Plan
	var err error
	if len(ids) == 1 {
		plan, err = ordering.Move(tasks, ids[0], to)
	} else {
		plan, err = ordering.MoveMany(tasks, ids, to)
	}
	if err != nil {
		if errors.Is(err, ordering.ErrMissingTask) {
			log.Printf("tasks: %s status change for user %s references unknown task: %v", src, uid, err)
		}
		return ordering.Plan{}, nil, fromOrdering(err)
	}
	if plan.Noop() {
		return plan, tasks, nil
	}
	return plan, stampMoved(plan, ts), nil
}

// stampMoved appends the status audit entry to every task the plan moved
func stampMoved(plan ordering.Plan, ts string) []models.Task {
	moved := asSet(plan.Moved)
	out := make([]models.Task, len(plan.Tasks))
	for i, t := range plan.Tasks {
		if moved[t.ID] {
			out[i] = t.AppendAudit("You changed status to "+string(t.Status), ts)
			continue
		}
		out[i] = t
	}
	return out
}

func position(tasks []models.Task, id string) int {
	return slices.IndexFunc(tasks, func(t models.Task) bool { return t.ID == id })
}

func asSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

// keys lists the ids in set in collection order
func keys(tasks []models.Task, set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for _, t := range tasks {
		if set[t.ID] {
			out = append(out, t.ID)
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
