package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/pkg/metrics"
)

// sortColumns whitelists the task sort keys exposed by the API. An
// unrecognized key falls back to creation order.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"dueDate":   "due_date",
	"title":     "title",
	"status":    "status",
}

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) error {
	r.logger.Debug("Inserting task",
		zap.Int("project_id", t.ProjectID),
		zap.String("title", t.Title),
		zap.String("status", t.Status),
	)
	start := time.Now()

	query := `
        INSERT INTO tasks (project_id, title, description, status, due_date)
        VALUES ($1, $2, NULLIF($3, ''), $4, $5)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		t.ProjectID,
		t.Title,
		t.Description,
		t.Status,
		t.DueDate,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.Int("project_id", t.ProjectID),
		)
		return err
	}

	metrics.RecordDBQueryDuration("insert", "tasks", time.Since(start))
	r.logger.Info("Task inserted successfully",
		zap.Int("task_id", t.ID),
		zap.Int("project_id", t.ProjectID),
	)
	return nil
}

// ListByProject returns the project's tasks. An empty status means no
// filter. sortBy is looked up in the whitelist; desc flips direction.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID int, status, sortBy string, desc bool) ([]model.Task, error) {
	r.logger.Debug("Listing tasks for project",
		zap.Int("project_id", projectID),
		zap.String("status", status),
	)
	start := time.Now()

	column, ok := sortColumns[sortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if desc {
		direction = "DESC"
	}

	query := `
        SELECT id, project_id, title, COALESCE(description, ''), status, due_date, created_at, updated_at
        FROM tasks
        WHERE project_id = $1
    `
	args := []interface{}{projectID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY %s %s, id ASC`, column, direction)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query tasks",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.Title,
			&t.Description,
			&t.Status,
			&t.DueDate,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan task row", zap.Error(err))
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	metrics.RecordDBQueryDuration("list", "tasks", time.Since(start))
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id int) (*model.Task, error) {
	query := `
        SELECT id, project_id, title, COALESCE(description, ''), status, due_date, created_at, updated_at
        FROM tasks
        WHERE id = $1
    `
	var t model.Task
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		r.logger.Error("Failed to find task", zap.Error(err), zap.Int("id", id))
		return nil, err
	}
	return &t, nil
}

// Update writes the task's mutable fields. The caller is responsible
// for merging; the row is overwritten with what t contains.
func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	start := time.Now()

	query := `
        UPDATE tasks
        SET title = $2, description = NULLIF($3, ''), status = $4, due_date = $5, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `
	err := r.db.QueryRow(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		t.Status,
		t.DueDate,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrNotFound
		}
		r.logger.Error("Failed to update task", zap.Error(err), zap.Int("id", t.ID))
		return err
	}

	metrics.RecordDBQueryDuration("update", "tasks", time.Since(start))
	r.logger.Info("Task updated successfully", zap.Int("id", t.ID))
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	start := time.Now()

	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete task", zap.Error(err), zap.Int("id", id))
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	metrics.RecordDBQueryDuration("delete", "tasks", time.Since(start))
	r.logger.Info("Task deleted successfully", zap.Int("id", id))
	return nil
}
