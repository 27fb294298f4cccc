package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"dramastream/api"
	"dramastream/config"
	"dramastream/handlers"
	"dramastream/services/drama"
	"dramastream/utils"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("[main] config: %v", err)
	}

	if settings.Log.File != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   settings.Log.File,
			MaxSize:    settings.Log.MaxSizeMB,
			MaxBackups: settings.Log.MaxBackups,
			MaxAge:     settings.Log.MaxAgeDays,
			Compress:   true,
		}))
	}

	if settings.Upstream.RequireToken && settings.Upstream.Token == "" {
		log.Printf("[main] WARNING: upstream token required but not set; API calls will fail")
	}

	svc := drama.NewServiceFromConfig(
		settings.Upstream.BaseURL,
		settings.Upstream.Token,
		settings.Upstream.RequireToken,
		drama.Options{
			Timeout:        time.Duration(settings.Upstream.TimeoutSeconds) * time.Second,
			Retries:        uint(settings.Upstream.Retries),
			Backoff:        time.Duration(settings.Upstream.BackoffMillis) * time.Millisecond,
			DefaultTTL:     time.Duration(settings.Cache.DefaultTTLSeconds) * time.Second,
			PlayTTLCeiling: time.Duration(settings.Cache.PlayTTLCeilingSeconds) * time.Second,
			PlayTTLFloor:   time.Duration(settings.Cache.PlayTTLFloorSeconds) * time.Second,
			CoverTTL:       time.Duration(settings.Cache.CoverTTLSeconds) * time.Second,
			CoverRepairMax: settings.Cache.CoverRepairMax,
		},
	)

	router := utils.NewRouter()
	router.Use(api.RequestIDMiddleware())
	router.Use(api.LoggingMiddleware())

	pages := handlers.NewPagesHandler(svc, settings.Site.Name, settings.Site.Tagline, settings.Site.BaseURL)
	handlers.NewCatalogHandler(svc).Register(router)
	handlers.NewSEOHandler(svc, pages).Register(router)
	router.PathPrefix("/public/").Handler(http.StripPrefix("/public/", handlers.NewStaticHandler()))
	pages.Register(router)

	addr := fmt.Sprintf(":%d", settings.App.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	log.Printf("[main] %s listening on %s (upstream %s)", settings.Site.Name, addr, settings.Upstream.BaseURL)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("[main] server: %v", err)
	}
}
