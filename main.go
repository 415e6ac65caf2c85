// Command pestguard serves the leaf pest detection web application:
// registration, login, image upload, classification via the external ML
// service, and the per-user prediction history.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/user/pestguard-go/auth"
	"github.com/user/pestguard-go/config"
	"github.com/user/pestguard-go/db"
	"github.com/user/pestguard-go/detection"
	"github.com/user/pestguard-go/predict"
	"github.com/user/pestguard-go/upload"
	"github.com/user/pestguard-go/web"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info(".env file not loaded", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DB); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	uploads, err := upload.NewStore(cfg.Server.UploadDir)
	if err != nil {
		logger.Fatal("failed to prepare upload directory", zap.Error(err))
	}

	renderer, err := web.NewRenderer(logger)
	if err != nil {
		logger.Fatal("failed to load templates", zap.Error(err))
	}

	sessions := auth.NewSessionManager(cfg.Auth)
	authService := auth.NewService(auth.NewPostgresRepository(pool))
	authHandlers := auth.NewHandlers(authService, sessions, logger)

	predictor := predict.NewClient(cfg.Predict.URL, cfg.Predict.Timeout)
	detectionService := detection.NewService(detection.NewPostgresRepository(pool), predictor)
	detectionHandlers := detection.NewHandlers(detectionService, uploads, renderer, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	// The prediction round trip dominates request time; the global timeout
	// has to sit above it.
	r.Use(middleware.Timeout(cfg.Predict.Timeout + 15*time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes.
	r.Get("/", renderer.HandleLoginPage())
	r.Get("/register", renderer.HandleRegisterPage())
	r.Post("/register", authHandlers.HandleRegister())
	r.Post("/login", authHandlers.HandleLogin())

	// Stored images referenced by the result and history pages.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploads.Dir()))))

	// Session-gated routes.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(sessions))

		r.Get("/dashboard", detectionHandlers.HandleDashboard())
		r.Get("/detect", detectionHandlers.HandleDetectPage())
		r.Post("/predict", detectionHandlers.HandlePredict())
		r.Get("/history", detectionHandlers.HandleHistory())
		r.Get("/logout", authHandlers.HandleLogout())
	})

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Predict.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

// requestLogger logs one structured line per request with status, size and
// duration.
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("took", time.Since(start)))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
