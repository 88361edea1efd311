// Package cache holds a read-through cache of project data, invalidated
// manually on every mutation. A cache failure is never surfaced to the
// caller; the repository remains the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/pkg/metrics"
)

const projectTTL = 5 * time.Minute

type ProjectCache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewProjectCache returns a cache over rdb. A nil rdb yields a cache
// that always misses, which keeps the service wiring unconditional.
func NewProjectCache(rdb *redis.Client, logger *zap.Logger) *ProjectCache {
	return &ProjectCache{rdb: rdb, logger: logger}
}

func listKey(userID int) string {
	return fmt.Sprintf("projects:user:%d", userID)
}

func projectKey(id int) string {
	return fmt.Sprintf("project:%d", id)
}

func (c *ProjectCache) enabled() bool {
	return c != nil && c.rdb != nil
}

// GetList returns the cached project list for a user, if present.
func (c *ProjectCache) GetList(ctx context.Context, userID int) ([]model.Project, bool) {
	if !c.enabled() {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, listKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			metrics.IncrementCacheLookup("error")
			c.logger.Warn("Project list cache read failed", zap.Error(err), zap.Int("user_id", userID))
			return nil, false
		}
		metrics.IncrementCacheLookup("miss")
		return nil, false
	}

	var projects []model.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		metrics.IncrementCacheLookup("error")
		c.logger.Warn("Project list cache decode failed", zap.Error(err), zap.Int("user_id", userID))
		return nil, false
	}

	metrics.IncrementCacheLookup("hit")
	return projects, true
}

func (c *ProjectCache) SetList(ctx context.Context, userID int, projects []model.Project) {
	if !c.enabled() {
		return
	}

	data, err := json.Marshal(projects)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, listKey(userID), data, projectTTL).Err(); err != nil {
		c.logger.Warn("Project list cache write failed", zap.Error(err), zap.Int("user_id", userID))
	}
}

// GetProject returns a cached project record, if present.
func (c *ProjectCache) GetProject(ctx context.Context, id int) (*model.Project, bool) {
	if !c.enabled() {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, projectKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			metrics.IncrementCacheLookup("error")
			c.logger.Warn("Project cache read failed", zap.Error(err), zap.Int("id", id))
			return nil, false
		}
		metrics.IncrementCacheLookup("miss")
		return nil, false
	}

	var p model.Project
	if err := json.Unmarshal(data, &p); err != nil {
		metrics.IncrementCacheLookup("error")
		return nil, false
	}

	metrics.IncrementCacheLookup("hit")
	return &p, true
}

func (c *ProjectCache) SetProject(ctx context.Context, p *model.Project) {
	if !c.enabled() {
		return
	}

	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, projectKey(p.ID), data, projectTTL).Err(); err != nil {
		c.logger.Warn("Project cache write failed", zap.Error(err), zap.Int("id", p.ID))
	}
}

// InvalidateUser drops the user's project list.
func (c *ProjectCache) InvalidateUser(ctx context.Context, userID int) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Del(ctx, listKey(userID)).Err(); err != nil {
		c.logger.Warn("Project list cache invalidation failed", zap.Error(err), zap.Int("user_id", userID))
	}
}

// InvalidateProject drops a project record and its owner's list.
func (c *ProjectCache) InvalidateProject(ctx context.Context, id, userID int) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Del(ctx, projectKey(id), listKey(userID)).Err(); err != nil {
		c.logger.Warn("Project cache invalidation failed", zap.Error(err), zap.Int("id", id))
	}
}
