package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grocerylab/grocery-api/internal/api"
	"github.com/grocerylab/grocery-api/internal/app"
	"github.com/grocerylab/grocery-api/internal/app/maintenance"
	iauth "github.com/grocerylab/grocery-api/internal/auth"
	"github.com/grocerylab/grocery-api/internal/cache"
	"github.com/grocerylab/grocery-api/internal/database"
	"github.com/grocerylab/grocery-api/pkg/logger"
	"github.com/grocerylab/grocery-api/pkg/mail"
	"github.com/grocerylab/grocery-api/pkg/sms"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("grocery-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	if err := ensureSecretsPresent(cfg); err != nil {
		return err
	}

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	// The primary database doubles as the cache backend unless Redis is
	// configured and reachable.
	dbStore := cache.NewDatabaseStore(db)

	var store cache.Store = dbStore
	var redisStore *cache.RedisStore
	if cfg.Cache.Redis.Enabled {
		rs, redisErr := cache.NewRedisStore(cfg.Cache.RedisClientConfig())
		if redisErr != nil {
			log.Warn("redis unavailable; falling back to database cache", zap.Error(redisErr))
		} else {
			redisStore = rs
			store = rs
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}
	defer func() {
		if redisStore != nil {
			_ = redisStore.Close()
		}
	}()

	jwtService, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return fmt.Errorf("initialise jwt service: %w", err)
	}

	otpCfg := cfg.Auth.OTPServiceConfig()
	otpCfg.Store = store
	otpCfg.CompanyName = cfg.Company.Name
	otpCfg.Mailer, otpCfg.SMS = initialiseDelivery(cfg, log)

	otpService, err := iauth.NewOTPService(otpCfg)
	if err != nil {
		return fmt.Errorf("initialise otp service: %w", err)
	}

	refreshCfg := cfg.Auth.RefreshServiceConfig()
	refreshCfg.Store = store
	refreshService, err := iauth.NewRefreshTokenService(refreshCfg)
	if err != nil {
		return fmt.Errorf("initialise refresh token service: %w", err)
	}

	authService, err := iauth.NewAuthService(iauth.AuthConfig{
		DB:      db,
		Store:   store,
		JWT:     jwtService,
		OTP:     otpService,
		Refresh: refreshService,
	})
	if err != nil {
		return fmt.Errorf("initialise auth service: %w", err)
	}

	// Expired cache rows only pile up in the database backend; Redis
	// expires keys on its own.
	var purgeTarget *cache.DatabaseStore
	if redisStore == nil {
		purgeTarget = dbStore
	}
	cleaner := maintenance.NewCleaner(purgeTarget)
	if err := cleaner.Start(); err != nil {
		return fmt.Errorf("start maintenance jobs: %w", err)
	}
	defer func() {
		stopCtx := cleaner.Stop()
		if err := cleaner.RunOnce(stopCtx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}()

	router, err := api.NewRouter(db, store, cfg, jwtService, authService)
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var shutdownErrs error
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		shutdownErrs = multierr.Append(shutdownErrs, fmt.Errorf("graceful shutdown: %w", err))
	}

	if err, ok := <-serverErr; ok && err != nil {
		shutdownErrs = multierr.Append(shutdownErrs, fmt.Errorf("server error: %w", err))
	}

	if shutdownErrs != nil {
		return shutdownErrs
	}

	log.Info("server stopped gracefully")
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func ensureSecretsPresent(cfg *app.Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Auth.JWT.Secret = strings.TrimSpace(cfg.Auth.JWT.Secret)
	if cfg.Auth.JWT.Secret == "" {
		return errors.New("auth.jwt.secret must be configured")
	}

	return nil
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg.Database.DatabaseOpenConfig())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	logger.WithModule("database").Info("database ready",
		zap.String("driver", cfg.Database.Driver))
	return db, nil
}

// initialiseDelivery wires the optional OTP delivery channels. A disabled
// channel stays nil; the OTP service reports an error only when a send
// actually needs the missing channel.
func initialiseDelivery(cfg *app.Config, log *zap.Logger) (mail.Mailer, sms.Sender) {
	var mailer mail.Mailer
	if cfg.Email.SMTP.Enabled {
		m, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
		if err != nil {
			log.Warn("smtp mailer unavailable", zap.Error(err))
		} else {
			mailer = m
		}
	}

	var sender sms.Sender
	if cfg.SMS.Enabled {
		s, err := sms.NewGatewaySender(cfg.SMS.GatewaySettings())
		if err != nil {
			log.Warn("sms gateway unavailable", zap.Error(err))
		} else {
			sender = s
		}
	}

	return mailer, sender
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("database handle unavailable during shutdown", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("database close failed", zap.Error(err))
	}
}
