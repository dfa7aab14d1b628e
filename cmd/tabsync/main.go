package main

import (
	"os"

	"tabsync/internal/config"
	"tabsync/internal/database"
	"tabsync/internal/database/migrations"
	"tabsync/internal/handlers"
	"tabsync/internal/httpapi"
	"tabsync/internal/logging"
	"tabsync/internal/repos"
	"tabsync/internal/services"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Errorf("open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.MigrateUp(db); err != nil {
		log.Errorf("migrate database: %v", err)
		os.Exit(1)
	}

	syncSvc := services.NewSyncService(repos.NewSyncRepo(db), log)
	sessionSvc := services.NewSessionService(repos.NewSessionRepo(db), log)
	router := httpapi.NewRouter(cfg, log,
		handlers.NewSyncHandler(syncSvc, cfg.MaxBatchSize),
		handlers.NewSessionHandler(sessionSvc))

	addr := ":" + cfg.Port
	log.Infof("tabsync listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
