package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	_ "github.com/joho/godotenv/autoload"

	"github.com/tendant/ngo-content/pkg/ngocontent"
	"github.com/tendant/ngo-content/pkg/ngocontent/api"
	"github.com/tendant/ngo-content/pkg/ngocontent/config"
)

func main() {
	envHelp := flag.Bool("env-help", false, "print the environment variables and exit")
	tokenRole := flag.String("issue-token", "", "print a bearer token carrying the given role and exit")
	flag.Parse()

	if *envHelp {
		usage, err := config.EnvUsage()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(usage)
		return
	}

	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Environment)
	slog.SetDefault(logger)

	if *tokenRole != "" {
		if err := printToken(cfg, *tokenRole); err != nil {
			slog.Error("Failed to issue token", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx := context.Background()
	services, err := cfg.BuildServices(ctx, ngocontent.WithLogger(logger))
	if err != nil {
		slog.Error("Failed to build services", "error", err)
		os.Exit(1)
	}
	defer services.Close()

	routes, err := newRouter(cfg, services)
	if err != nil {
		slog.Error("Failed to build routes", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port, "env", cfg.Environment,
			"database", cfg.DatabaseType, "storage", cfg.Storage.Type, "auth", cfg.JWTSecret != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("Server exited")
}

func newLogger(environment string) *slog.Logger {
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newRouter(cfg *config.ServerConfig, services *ngocontent.Services) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	images, ok, err := cfg.ImageHandler()
	if err != nil {
		return nil, err
	}
	if ok {
		r.Mount(cfg.ImagesRoute, images)
	}

	opts := []api.Option{api.WithPageSize(cfg.PageSize)}
	if cfg.JWTSecret != "" {
		opts = append(opts, api.WithAuth(api.NewAuth(cfg.JWTSecret)))
	} else {
		slog.Warn("JWT_SECRET is not set, entity routes are unauthenticated")
	}
	r.Mount("/", api.NewHandler(services, opts...).Routes())

	return r, nil
}

func printToken(cfg *config.ServerConfig, role string) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required to issue tokens")
	}
	token, err := api.IssueToken(api.NewAuth(cfg.JWTSecret), "cli", role, 24*time.Hour)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
