package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/config"
	"task-tracker-api/internal/database"
	"task-tracker-api/internal/handlers"
	"task-tracker-api/internal/realtime"
	"task-tracker-api/internal/routes"
	"task-tracker-api/internal/session"
	"task-tracker-api/internal/store"
	"task-tracker-api/internal/tasks"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const sweepInterval = 5 * time.Minute

var (
	configPath string
	addr       string
)

var rootCmd = &cobra.Command{
	Use:          "task-tracker",
	Short:        "Task tracker API server",
	Long:         `task-tracker serves the personal task board API: sign-in, task CRUD, status changes with ordered buckets, and live updates over websocket.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.Open(cfg.Database)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("TASKS_CONFIG"), "path to a YAML config file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the config file")
	rootCmd.AddCommand(migrateCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	return cfg, nil
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gin.SetMode(cfg.Server.GinMode)

	// Init database
	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	st := store.NewGormStore(db)

	tokens := auth.NewTokens(cfg.Auth)
	sessions := session.NewManager(st, tokens.TTL())
	provider := auth.NewLocalProvider(st)
	provider.OnAuthStateChange(sessions.OnAuthStateChange)
	hub := realtime.NewHub()

	h := &handlers.Handler{
		Tokens:   tokens,
		Provider: provider,
		Sessions: sessions,
		Tasks: tasks.NewService(st, hub, tasks.Options{
			Location:         cfg.Tasks.Location(),
			DescriptionLimit: cfg.Tasks.DescriptionLimit,
		}),
		Hub: hub,
	}

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes(cfg.Server, h)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sessions.RunSweeper(ctx, sweepInterval)
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tokens.PurgeRevoked()
			}
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           ginRoutes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Addr)
	log.Println("API endpoints:")
	log.Println("  POST   /api/login")
	log.Println("  POST   /api/logout")
	log.Println("  GET    /api/me")
	log.Println("  PUT    /api/view")
	log.Println("  GET    /api/tasks")
	log.Println("  GET    /api/board")
	log.Println("  GET    /api/stats")
	log.Println("  GET    /api/tasks/:id")
	log.Println("  POST   /api/tasks")
	log.Println("  PUT    /api/tasks/:id")
	log.Println("  PATCH  /api/tasks/:id/status")
	log.Println("  DELETE /api/tasks/:id")
	log.Println("  POST   /api/tasks/bulk/status")
	log.Println("  POST   /api/tasks/bulk/delete")
	log.Println("  GET    /ws")
	log.Println("  GET    /health")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
