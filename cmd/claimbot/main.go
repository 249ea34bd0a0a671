package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"claimbot/internal/bot"
	"claimbot/internal/config"
	"claimbot/internal/health"
	"claimbot/internal/logging"
	"claimbot/internal/repository"
	"claimbot/internal/service"
)

const defaultEnvFile = ".env"

var cfgFile string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:          "claimbot",
		Short:        "Telegram bot that records /claim coordinates",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
	}

	setupFlags(rootCmd)
	rootCmd.AddCommand(newUsersCommand())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a .env style configuration file")
	cmd.PersistentFlags().String("database-url", "", "Database URL (postgres:// or SQLite path)")
	cmd.PersistentFlags().String("log-level", defaults.GetString(config.KeyLogLevel), "Log level (debug, info, warn, error)")
	cmd.Flags().String("health-address", "", "Listen address for the /healthz endpoint, empty disables it")

	bindFlag(cmd.PersistentFlags().Lookup("database-url"), config.KeyDatabaseURL)
	bindFlag(cmd.PersistentFlags().Lookup("log-level"), config.KeyLogLevel)
	bindFlag(cmd.Flags().Lookup("health-address"), config.KeyHealthAddress)
}

func bindFlag(flag *pflag.Flag, key string) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// initConfig reads --config, or a .env file in the working directory when present.
// Real environment variables take precedence over file values.
func initConfig() error {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); err != nil {
			return nil
		}
		path = defaultEnvFile
	}

	viper.SetConfigFile(path)
	viper.SetConfigType("env")
	return viper.ReadInConfig()
}

func runBot(ctx context.Context) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := repository.NewDB(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("open database", zap.Error(err))
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	userRepo := repository.NewUserRepository(db)
	claimSvc := service.NewClaimService(userRepo)
	rosterSvc := service.NewRosterService(userRepo)

	api, err := bot.Connect(cfg.TelegramToken, logger)
	if err != nil {
		logger.Error("connect telegram", zap.Error(err))
		return err
	}
	telegramBot := bot.New(api, claimSvc, logger)

	scheduler, err := scheduleRoster(cfg, rosterSvc, logger)
	if err != nil {
		return err
	}
	if scheduler != nil {
		scheduler.Start()
		defer scheduler.Stop()
	}

	if cfg.HealthAddress != "" {
		shutdown := serveHealth(cfg.HealthAddress, sqlDB, logger)
		defer shutdown()
	}

	logger.Info("claim bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bot stopped with error", zap.Error(err))
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

// scheduleRoster registers the roster log job. It returns nil when no schedule is configured.
func scheduleRoster(cfg config.Config, roster *service.RosterService, logger *zap.Logger) (*service.SchedulerService, error) {
	if cfg.RosterInterval <= 0 && cfg.RosterDailyAt == "" {
		return nil, nil
	}

	job := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		report, err := roster.Report(jobCtx, cfg.RosterLimit)
		if err != nil {
			logger.Warn("roster report failed", zap.Error(err))
			return
		}
		logger.Info("roster", zap.Int64("total", report.Total), zap.Strings("users", report.Lines()))
	}

	scheduler := service.NewSchedulerService(time.Local, logger)
	if cfg.RosterInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.RosterInterval, job); err != nil {
			return nil, err
		}
	}
	if cfg.RosterDailyAt != "" {
		if _, err := scheduler.ScheduleDaily(cfg.RosterDailyAt, job); err != nil {
			return nil, err
		}
	}
	return scheduler, nil
}

func serveHealth(address string, store health.Pinger, logger *zap.Logger) func() {
	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:              address,
		Handler:           health.NewHandler(store, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("health endpoint starting", zap.String("address", address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health endpoint stopped", zap.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health endpoint shutdown", zap.Error(err))
		}
	}
}
