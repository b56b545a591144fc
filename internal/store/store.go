// Package store persists tasks and users. Every task query is scoped to its owner.
package store

import (
	"context"
	"errors"

	"task-tracker-api/internal/models"
)

// ErrNotFound is returned when a record is absent or owned by another user
var ErrNotFound = errors.New("record not found")

// TaskStore is the document store seen by the task workflow
type TaskStore interface {
	// Create inserts task and returns the id it was stored under
	Create(ctx context.Context, task models.Task) (string, error)
	// Update replaces the stored record; ErrNotFound if it does not exist
	Update(ctx context.Context, task models.Task) error
	// UpdateMany replaces every record in one transaction
	UpdateMany(ctx context.Context, tasks []models.Task) error
	Delete(ctx context.Context, userID, id string) error
	// DeleteMany removes every record in one transaction
	DeleteMany(ctx context.Context, userID string, ids []string) error
	Get(ctx context.Context, userID, id string) (models.Task, error)
	// Query returns the owner's tasks ordered by index
	Query(ctx context.Context, userID string) ([]models.Task, error)
}

// UserStore holds one record per signed-in user
type UserStore interface {
	GetUser(ctx context.Context, uid string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	CreateUser(ctx context.Context, user models.User) error
}
