package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/templui/filebox/internal/config"
	"github.com/templui/filebox/internal/db"
	"github.com/templui/filebox/internal/repository"
	"github.com/templui/filebox/internal/service"
	"github.com/templui/filebox/internal/service/payment"
	"github.com/templui/filebox/internal/storage"
)

type App struct {
	Cfg                 *config.Config
	DB                  *sqlx.DB
	Storage             storage.Storage
	AuthService         *service.AuthService
	UserService         *service.UserService
	FolderService       *service.FolderService
	FileService         *service.FileService
	Streamer            *service.Streamer
	SubscriptionService *service.SubscriptionService
	PaymentService      payment.Provider // nil when PAYMENT_PROVIDER=none
}

// New opens the store, applies migrations, wires services and seeds the
// admin account and subscription window on first start. Close releases the store.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a, err := build(ctx, cfg, database)
	if err != nil {
		db.Close(database)
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg *config.Config, database *sqlx.DB) (*App, error) {
	// Run database migrations
	err := db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	folderRepository := repository.NewFolderRepository(database)
	fileRepository := repository.NewFileRepository(database)
	settingRepository := repository.NewSettingRepository(database)
	paymentRepository := repository.NewPaymentRepository(database)
	txManager := db.NewTxManager(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Services
	gate := service.NewAccessGate(folderRepository)
	folderService := service.NewFolderService(folderRepository, fileRepository, txManager, fileStorage)
	fileService := service.NewFileService(fileRepository, folderRepository, gate, fileStorage, cfg.MaxUploadBytes())
	streamer := service.NewStreamer(fileStorage)
	authService := service.NewAuthService(userRepository, cfg.JWTSecret, cfg.IsProduction(), cfg.JWTExpiry)
	userService := service.NewUserService(userRepository)
	subscriptionService := service.NewSubscriptionService(
		settingRepository,
		paymentRepository,
		txManager,
		cfg.SubscriptionTrialDays,
		cfg.SubscriptionRenewalDays,
	)

	// Initialize payment provider based on config
	paymentProvider, err := payment.NewProvider(cfg, subscriptionService)
	if errors.Is(err, payment.ErrDisabled) {
		slog.Info("payments disabled, webhook and checkout routes are not mounted")
		paymentProvider = nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to initialize payment provider: %w", err)
	}

	// Seed
	_, err = authService.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to seed admin: %w", err)
	}
	err = subscriptionService.Seed(ctx)
	if err != nil {
		return nil, err
	}

	return &App{
		Cfg:                 cfg,
		DB:                  database,
		Storage:             fileStorage,
		AuthService:         authService,
		UserService:         userService,
		FolderService:       folderService,
		FileService:         fileService,
		Streamer:            streamer,
		SubscriptionService: subscriptionService,
		PaymentService:      paymentProvider,
	}, nil
}

func (a *App) Close() error {
	return db.Close(a.DB)
}
