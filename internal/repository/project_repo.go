package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/pkg/metrics"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) error {
	r.logger.Debug("Inserting project",
		zap.Int("user_id", p.UserID),
		zap.String("title", p.Title),
	)
	start := time.Now()

	query := `
        INSERT INTO projects (user_id, title, description)
        VALUES ($1, $2, NULLIF($3, ''))
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		p.UserID,
		p.Title,
		p.Description,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return err
	}

	metrics.RecordDBQueryDuration("insert", "projects", time.Since(start))
	r.logger.Info("Project inserted successfully",
		zap.Int("id", p.ID),
		zap.Int("user_id", p.UserID),
	)
	return nil
}

// ListByOwner returns the user's projects, most recently updated first.
func (r *ProjectRepository) ListByOwner(ctx context.Context, userID int) ([]model.Project, error) {
	r.logger.Debug("Listing projects for user", zap.Int("user_id", userID))
	start := time.Now()

	query := `
        SELECT id, user_id, title, COALESCE(description, ''), created_at, updated_at
        FROM projects
        WHERE user_id = $1
        ORDER BY updated_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query projects",
			zap.Error(err),
			zap.Int("user_id", userID),
		)
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Title,
			&p.Description,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan project row", zap.Error(err))
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	metrics.RecordDBQueryDuration("list", "projects", time.Since(start))
	return projects, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id int) (*model.Project, error) {
	query := `
        SELECT id, user_id, title, COALESCE(description, ''), created_at, updated_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.UserID,
		&p.Title,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		r.logger.Error("Failed to find project", zap.Error(err), zap.Int("id", id))
		return nil, err
	}
	return &p, nil
}

// Update overwrites the project's title and description.
func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	start := time.Now()

	query := `
        UPDATE projects
        SET title = $2, description = NULLIF($3, ''), updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `
	err := r.db.QueryRow(ctx, query, p.ID, p.Title, p.Description).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrNotFound
		}
		r.logger.Error("Failed to update project", zap.Error(err), zap.Int("id", p.ID))
		return err
	}

	metrics.RecordDBQueryDuration("update", "projects", time.Since(start))
	r.logger.Info("Project updated successfully", zap.Int("id", p.ID))
	return nil
}

// DeleteWithTasks removes a project and every task belonging to it in
// a single transaction, so a crash cannot leave orphan tasks behind.
func (r *ProjectRepository) DeleteWithTasks(ctx context.Context, id int) error {
	start := time.Now()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE project_id = $1`, id); err != nil {
		r.logger.Error("Failed to delete project tasks", zap.Error(err), zap.Int("project_id", id))
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete project", zap.Error(err), zap.Int("id", id))
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("Failed to commit project delete", zap.Error(err), zap.Int("id", id))
		return err
	}

	metrics.RecordDBQueryDuration("delete", "projects", time.Since(start))
	r.logger.Info("Project deleted successfully", zap.Int("id", id))
	return nil
}
