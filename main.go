package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"

	"cinetrack/api"
	"cinetrack/config"
	"cinetrack/handlers"
	"cinetrack/internal/database"
	"cinetrack/services/catalog"
	"cinetrack/services/goals"
	"cinetrack/services/history"
	"cinetrack/services/lists"
	"cinetrack/services/stats"
	"cinetrack/services/users"
	"cinetrack/services/watchlist"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("🎬 CineTrack Backend Starting...")

	configPath := os.Getenv("CINETRACK_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	manager := config.NewManager(configPath)
	settings, err := manager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}
	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	// Log to stdout and a rotating file
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	db, err := database.Open(settings.Database.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	contentRepo := database.NewContentRepository(db.Connection())
	userRepo := database.NewUserRepository(db.Connection())
	watchlistRepo := database.NewWatchlistRepository(db.Connection())
	historyRepo := database.NewHistoryRepository(db.Connection())
	goalRepo := database.NewGoalRepository(db.Connection())
	achievementRepo := database.NewAchievementRepository(db.Connection())
	listRepo := database.NewListRepository(db.Connection())

	catalogSvc := catalog.NewService(contentRepo, catalog.Options{
		BaseURL:        settings.Catalog.BaseURL,
		RetryAttempts:  settings.Catalog.RetryAttempts,
		RetryDelay:     time.Duration(settings.Catalog.RetryDelayMs) * time.Millisecond,
		RateInterval:   time.Duration(settings.Catalog.RateIntervalMs) * time.Millisecond,
		RateBurst:      settings.Catalog.RateBurst,
		CacheTTL:       time.Duration(settings.Catalog.CacheTTLMins) * time.Minute,
		RefreshWorkers: settings.Catalog.RefreshWorkers,
	})
	usersSvc := users.NewService(userRepo, settings.Auth.Secret, time.Duration(settings.Auth.TokenTTLHours)*time.Hour)
	watchlistSvc := watchlist.NewService(watchlistRepo, contentRepo)
	historySvc := history.NewService(historyRepo, contentRepo)
	statsSvc := stats.NewService(historyRepo)
	goalsSvc := goals.NewService(goalRepo, achievementRepo, historyRepo)
	listsSvc := lists.NewService(listRepo, contentRepo)

	r := mux.NewRouter()
	api.Register(r,
		handlers.NewAuthHandler(usersSvc),
		handlers.NewContentHandler(catalogSvc),
		handlers.NewWatchlistHandler(watchlistSvc),
		handlers.NewAnalyticsHandler(historySvc, statsSvc),
		handlers.NewGoalsHandler(goalsSvc),
		handlers.NewListsHandler(listsSvc),
		handlers.AuthMiddleware(usersSvc),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("✅ Shutdown complete")
}
