package store

import (
	"context"
	"errors"
	"fmt"

	"task-tracker-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore implements TaskStore and UserStore on top of gorm
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var (
	_ TaskStore = (*GormStore)(nil)
	_ UserStore = (*GormStore)(nil)
)

// columns the owner never rewrites after creation
var immutableColumns = []string{"id", "user_id", "created_at", "created_date"}

func (s *GormStore) Create(ctx context.Context, task models.Task) (string, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return task.ID, nil
}

func (s *GormStore) Update(ctx context.Context, task models.Task) error {
	return updateTask(s.db.WithContext(ctx), task)
}

func (s *GormStore) UpdateMany(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range tasks {
			if err := updateTask(tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

func updateTask(db *gorm.DB, task models.Task) error {
	if task.ID == "" {
		return fmt.Errorf("update task: %w: missing id", ErrNotFound)
	}
	result := db.Model(&models.Task{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Select("*").
		Omit(immutableColumns...).
		Updates(&task)
	if result.Error != nil {
		return fmt.Errorf("update task %s: %w", task.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update task %s: %w", task.ID, ErrNotFound)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, userID, id string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Task{})
	if result.Error != nil {
		return fmt.Errorf("delete task %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete task %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *GormStore) DeleteMany(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.Task{})
		if result.Error != nil {
			return fmt.Errorf("delete tasks: %w", result.Error)
		}
		if result.RowsAffected != int64(len(ids)) {
			return fmt.Errorf("delete tasks: %w: %d of %d present", ErrNotFound, result.RowsAffected, len(ids))
		}
		return nil
	})
}

func (s *GormStore) Get(ctx context.Context, userID, id string) (models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return task, nil
}

func (s *GormStore) Query(ctx context.Context, userID string) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sort_index asc, created_at asc").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	return tasks, nil
}

func (s *GormStore) GetUser(ctx context.Context, uid string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, fmt.Errorf("user %s: %w", uid, ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user %s: %w", uid, err)
	}
	return user, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user %s: %w", email, err)
	}
	return user, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user models.User) error {
	if user.UID == "" {
		user.UID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
