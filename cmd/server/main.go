package main

import (
	"context"
	"log"
	"time"

	"pomodoro/app/internal/config"
	"pomodoro/app/internal/db"
	"pomodoro/app/internal/engine"
	"pomodoro/app/internal/handler"
	"pomodoro/app/internal/repository"
	"pomodoro/app/internal/router"
	"pomodoro/app/internal/service"
)

func main() {
	cfg := config.Load()

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	settingsRepo := repository.NewSettingsRepository(database)
	sessionRepo := repository.NewSessionRepository(database)
	projectRepo := repository.NewProjectRepository(database)
	maintenanceRepo := repository.NewMaintenanceRepository(database)

	settingsService := service.NewSettingsService(settingsRepo)
	if err := settingsService.Init(context.Background()); err != nil {
		log.Fatalf("load settings: %v", err)
	}

	eng := engine.New(settingsService)
	if state, err := settingsRepo.LoadTimerState(context.Background()); err == nil {
		eng.Restore(state)
	} else if err != repository.ErrNotFound {
		log.Fatalf("load timer state: %v", err)
	}

	store := service.NewStore(sessionRepo, settingsRepo)
	store.Attach(eng)

	timerService := service.NewTimerService(eng, sessionRepo, maintenanceRepo, settingsService)
	analyticsService := service.NewAnalyticsService(sessionRepo)
	exportService := service.NewExportService(sessionRepo, projectRepo, settingsService)
	projectService := service.NewProjectService(projectRepo)

	timerHandler := handler.NewTimerHandler(timerService)
	settingsHandler := handler.NewSettingsHandler(settingsService, timerService)
	projectHandler := handler.NewProjectHandler(projectService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, exportService)

	go runTicker(context.Background(), eng, cfg.TickInterval)

	ginEngine := router.New(settingsService, timerHandler, settingsHandler, projectHandler, analyticsHandler, cfg.CORSOrigins)
	log.Printf("pomodoro app listening on :%s", cfg.Port)
	if err := ginEngine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

// runTicker drives wall-clock reconciliation so phase completions are
// detected even when no client is polling. Completion is derived from the
// stored target timestamp, so a missed tick only delays the event.
func runTicker(ctx context.Context, eng *engine.Engine, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eng.Tick()
		}
	}
}
