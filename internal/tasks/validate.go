package tasks

import (
	"fmt"
	"strings"
	"time"

	"task-tracker-api/internal/models"
	"task-tracker-api/internal/richtext"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Draft is the create form
type Draft struct {
	Title       string
	Description string
	Category    string
	DueDate     string
	Status      string
	Files       []string
}

// Patch is the edit form; nil fields are left alone
type Patch struct {
	Title       *string
	Description *string
	Category    *string
	DueDate     *string
	Status      *string
	Files       *[]string
}

var dateLayouts = []string{
	"2006-01-02",  // ISO date
	"2 Jan 2006",  // e.g., 30 Oct 2025
	time.RFC3339,  // full RFC3339
	"02 Jan 2006", // zero-padded day
	"2 Jan, 2006", // card label format
}

// ParseDate accepts the date formats the clients send
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// ParseCategory accepts any casing of Personal or Work
func ParseCategory(s string) (models.TaskCategory, bool) {
	c := models.TaskCategory(cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(s))))
	return c, c.Valid()
}

// ParseStatus accepts the three workflow states
func ParseStatus(s string) (models.TaskStatus, bool) {
	st := models.TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

func checkTitle(v *ValidationError, title string) {
	if strings.TrimSpace(title) == "" {
		v.add("title", "Title is required")
	}
}

func checkDueDate(v *ValidationError, due string) {
	if strings.TrimSpace(due) == "" {
		v.add("dueDate", "Due date is required")
		return
	}
	if _, ok := ParseDate(due); !ok {
		v.add("dueDate", "Due date must be a calendar date")
	}
}

func (s *Service) checkDescription(v *ValidationError, markup string) string {
	clean := richtext.Sanitize(markup)
	if err := richtext.Validate(clean, s.descLimit); err != nil {
		over := -richtext.Remaining(clean, s.descLimit)
		v.add("description", fmt.Sprintf("Description must be at most %d characters (%d over)", s.descLimit, over))
	}
	return clean
}

func checkCategory(v *ValidationError, raw string) models.TaskCategory {
	c, ok := ParseCategory(raw)
	if !ok {
		v.add("category", "Category must be Personal or Work")
	}
	return c
}

func checkStatus(v *ValidationError, raw string) models.TaskStatus {
	st, ok := ParseStatus(raw)
	if !ok {
		v.add("status", "Status must be one of to-do, inprogress, completed")
	}
	return st
}

func cleanFiles(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// validateDraft fills defaults and returns the task fields a create may persist
func (s *Service) validateDraft(d Draft) (models.Task, error) {
	v := &ValidationError{}
	checkTitle(v, d.Title)
	checkDueDate(v, d.DueDate)
	desc := s.checkDescription(v, d.Description)

	category := models.CategoryPersonal
	if strings.TrimSpace(d.Category) != "" {
		category = checkCategory(v, d.Category)
	}
	status := models.StatusTodo
	if strings.TrimSpace(d.Status) != "" {
		status = checkStatus(v, d.Status)
	}
	if err := v.orNil(); err != nil {
		return models.Task{}, err
	}

	return models.Task{
		Title:       d.Title,
		Description: desc,
		Category:    category,
		DueDate:     d.DueDate,
		Status:      status,
		Files:       cleanFiles(d.Files),
	}, nil
}

// validPatch is a Patch whose fields passed validation
type validPatch struct {
	title       *string
	description *string
	category    *models.TaskCategory
	dueDate     *string
	status      *models.TaskStatus
	files       []string
}

func (s *Service) validatePatch(p Patch) (validPatch, error) {
	v := &ValidationError{}
	var out validPatch
	if p.Title != nil {
		checkTitle(v, *p.Title)
		out.title = p.Title
	}
	if p.DueDate != nil {
		checkDueDate(v, *p.DueDate)
		out.dueDate = p.DueDate
	}
	if p.Description != nil {
		clean := s.checkDescription(v, *p.Description)
		out.description = &clean
	}
	if p.Category != nil {
		c := checkCategory(v, *p.Category)
		out.category = &c
	}
	if p.Status != nil {
		st := checkStatus(v, *p.Status)
		out.status = &st
	}
	if p.Files != nil {
		out.files = cleanFiles(*p.Files)
	}
	return out, v.orNil()
}
