// internal/tasks/postgres.go
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	wferrors "rentflow/internal/common/errors"
	"rentflow/internal/models"

	"github.com/google/uuid"
)

// PostgresStore implements Store on top of PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, task models.Task) (string, error) {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, assignee_id, role, name, description, due_date, priority,
			property_id, address, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		task.ID, task.AssigneeID, task.Role, task.Name, task.Description,
		task.DueDate, task.Priority, task.PropertyID, task.Address, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert task: %w", err)
	}
	return task.ID, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, fields Fields) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET name = $1, description = $2, due_date = $3, priority = $4, updated_at = $5
		WHERE id = $6`,
		fields.Name, fields.Description, fields.DueDate, fields.Priority,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if affected == 0 {
		return wferrors.NewNotFoundError("task", id)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (models.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, assignee_id, role, name, description, due_date, priority,
			property_id, address, created_at, updated_at
		FROM tasks WHERE id = $1`, id)

	var task models.Task
	var address sql.NullString
	err := row.Scan(
		&task.ID, &task.AssigneeID, &task.Role, &task.Name, &task.Description,
		&task.DueDate, &task.Priority, &task.PropertyID, &address,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, wferrors.NewNotFoundError("task", id)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	task.Address = address.String
	return task, nil
}
