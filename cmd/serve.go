package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"memory-map-backend/internal/config"
	"memory-map-backend/internal/geo"
	"memory-map-backend/internal/handlers"
	"memory-map-backend/internal/repository"
	"memory-map-backend/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the HTTP and WebSocket API",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return Run(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

type repositories struct {
	memories repository.MemoryRepository
	users    repository.UserRepository
	friends  repository.FriendRepository
}

// openRepositories builds the configured storage; the returned func releases it
func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := connectDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := repository.CreateSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return &repositories{
			memories: repository.NewPgMemoryRepository(db),
			users:    repository.NewPgUserRepository(db),
			friends:  repository.NewPgFriendRepository(db),
		}, db.Close, nil
	default:
		memories, err := localMemories(cfg.Storage.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		return &repositories{
			memories: memories,
			users:    repository.NewLocalUserRepository(),
			friends:  repository.NewLocalFriendRepository(),
		}, func() {}, nil
	}
}

func localMemories(seedFile string) (*repository.LocalMemoryRepository, error) {
	if seedFile == "" {
		return repository.NewLocalMemoryRepository(nil)
	}
	seed, err := repository.LoadSeed(seedFile)
	if err != nil {
		return nil, err
	}
	log.Info().Str("file", seedFile).Int("memories", len(seed)).Msg("Seed memories loaded")
	return repository.NewLocalMemoryRepository(seed)
}

func connectDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info().Msg("Database connection established")
	return db, nil
}

func newLocator(cfg config.GeolocationConfig) services.GeolocationProvider {
	if cfg.Mode == "simulated" {
		center := geo.Point{Lat: cfg.Latitude, Lng: cfg.Longitude}
		return services.NewSimulatedProvider(center, cfg.AccuracyMeters, 500*time.Millisecond, time.Now().UnixNano())
	}
	return services.NewStaticProvider(cfg.Latitude, cfg.Longitude, cfg.AccuracyMeters)
}

// Run starts the server and blocks until SIGINT or SIGTERM
func Run(cfg *config.Config) error {
	ctx := context.Background()

	repos, closeRepos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepos()
	log.Info().Str("driver", cfg.Storage.Driver).Msg("Storage ready")

	// Initialize services
	userService := services.NewUserService(repos.users, cfg.JWT.Secret)
	friendService := services.NewFriendService(repos.friends, repos.users)
	photoService, err := services.NewPhotoService(ctx, cfg.AWS)
	if err != nil {
		return fmt.Errorf("failed to create photo service: %w", err)
	}
	wsHub := services.NewWSHub()

	notifiers := []services.MemoryNotifier{wsHub}
	pushService, err := services.NewPushService(cfg.APNS, userService)
	if err != nil {
		return fmt.Errorf("failed to create push service: %w", err)
	}
	if pushService != nil {
		notifiers = append(notifiers, pushService)
	} else {
		log.Info().Msg("Push notifications disabled")
	}
	memoryService := services.NewMemoryService(repos.memories, friendService, notifiers...)

	router := handlers.NewRouter(handlers.Services{
		Users:     userService,
		Friends:   friendService,
		Memories:  memoryService,
		Photos:    photoService,
		Locator:   newLocator(cfg.Geolocation),
		Hub:       wsHub,
		ClusterCf: cfg.Cluster,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("version", Version).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}
