package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TubeFM/cache"
	"TubeFM/config"
	"TubeFM/core/convert"
	"TubeFM/core/media"
	"TubeFM/core/search"
	"TubeFM/logger"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	})

	// Redis is optional: without it the rate limiter keeps counters in
	// process memory and cover art is fetched fresh per conversion.
	if cfg.RedisHost != "" {
		if err := cache.ConnectRedis(cfg); err != nil {
			logger.Warn("Redis unavailable, continuing without it", logger.ErrorField(err))
		} else {
			defer cache.CloseRedis()
			logger.Info("connected to Redis",
				logger.String("addr", cfg.RedisHost+":"+cfg.RedisPort))
		}
	}

	if cfg.YouTubeAPIKey == "" {
		logger.Warn("YOUTUBE_API_KEY is not set; /api/search will fail until it is configured")
	}

	searchClient := search.NewClient(cfg.YouTubeAPIKey, cfg.YouTubeSearchURL)
	resolver := media.NewYouTubeResolver(cfg.StreamBufferMB << 20)
	pipeline := convert.NewPipeline(cfg.FFmpegPath)

	apiHandler := NewAPIHandler(searchClient, cfg)
	convertHandler := NewConvertHandler(resolver, pipeline, cfg)
	limiter := NewRateLimiter(cfg.RateLimitPerMin, time.Minute, cache.RedisClient)

	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(requestLogMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(limiter.Middleware)
	api.HandleFunc("/health", apiHandler.HealthHandler).Methods(http.MethodGet)
	api.HandleFunc("/search", apiHandler.SearchHandler).Methods(http.MethodGet)
	api.Handle("/convert", convertHandler).Methods(http.MethodGet)

	// Frontend UI serving; API routes are matched first.
	router.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.WebAppDir)))

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// WriteTimeout stays zero: a streamed conversion legitimately runs
		// longer than any fixed deadline.
		IdleTimeout: 120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}
