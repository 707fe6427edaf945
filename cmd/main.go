package main

import (
	"errors"
	"log/slog"
	"os"
	"time"

	httpapi "github.com/immxrtalbeast/chatrooms/internal/api/http"
	"github.com/immxrtalbeast/chatrooms/internal/config"
	"github.com/immxrtalbeast/chatrooms/internal/ratelimit"
	"github.com/immxrtalbeast/chatrooms/internal/repository"
	"github.com/immxrtalbeast/chatrooms/internal/repository/model"
	"github.com/immxrtalbeast/chatrooms/internal/service"
	"github.com/immxrtalbeast/chatrooms/lib/logger/slogpretty"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	roomRepo, messageRepo, err := setupRepositories(cfg.Database)
	if err != nil {
		log.Error("failed to set up storage", slog.Any("error", err))
		os.Exit(1)
	}

	limiter := ratelimit.NewFixedWindow(cfg.RateLimit.Window, cfg.RateLimit.Limit)
	roomService := service.NewRoomService(roomRepo, messageRepo, limiter, log)
	roomController := httpapi.NewRoomController(roomService, log)

	router := httpapi.SetupRouter(roomController)

	log.Info("starting application",
		slog.String("addr", cfg.HTTP.Address),
		slog.String("db_driver", cfg.Database.Driver),
	)
	if err := router.Run(cfg.HTTP.Address); err != nil {
		log.Error("http server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

func setupRepositories(cfg config.DatabaseConfig) (repository.RoomRepository, repository.MessageRepository, error) {
	switch cfg.Driver {
	case "memory":
		return repository.NewInMemoryRoomRepository(), repository.NewInMemoryMessageRepository(), nil
	case "sqlite", "postgres":
		db, err := connectDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewGormRoomRepository(db), repository.NewGormMessageRepository(db), nil
	default:
		return nil, nil, errors.New("unknown database driver: " + cfg.Driver)
	}
}

func connectDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is empty")
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, errors.New("unsupported database driver: " + cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	db.AutoMigrate(&model.Room{}, &model.Message{})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
