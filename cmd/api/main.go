package main

import (
	"taskboard/config"
	"taskboard/internal/cache"
	"taskboard/internal/handler"
	"taskboard/internal/httpserver"
	"taskboard/internal/repository"
	"taskboard/internal/service/auth"
	"taskboard/internal/service/tracker"
	"taskboard/pkg/db"
	"taskboard/pkg/logger"
	redisclient "taskboard/pkg/redis"

	"go.uber.org/zap"
)

func main() {
	// Load config
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init Redis
	rdb := redisclient.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	// Init Repositories
	userRepo := repository.NewUserRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn, log)
	taskRepo := repository.NewTaskRepository(dbConn, log)

	// Init Services
	authService := auth.NewService(userRepo, cfg.JWT.Secret)
	projectCache := cache.NewProjectCache(rdb, log)
	trackerService := tracker.NewService(projectRepo, taskRepo, projectCache, log)

	// Init Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	projectHandler := handler.NewProjectHandler(trackerService, log)
	taskHandler := handler.NewTaskHandler(trackerService, log)

	// Router
	router := httpserver.NewRouter(authHandler, projectHandler, taskHandler, cfg.JWT.Secret, log, dbConn)

	// Start API server
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("server start failed", zap.Error(err))
	}
}
