package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"MarketMovers/internal/analyzer"
	"MarketMovers/internal/config"
	"MarketMovers/internal/gateway"
	"MarketMovers/internal/logging"
	"MarketMovers/internal/notifier"
	"MarketMovers/internal/pipeline"
	"MarketMovers/internal/recorder"
	"MarketMovers/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	cfgPath := flag.String("config", defaultCfg, "path to the YAML config file")
	once := flag.Bool("once", false, "run a single report and exit")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger, *once); err != nil {
		logger.Error("market movers exited with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger, once bool) error {
	logger.Info("market movers starting", zap.Bool("once", once))

	gw := newGateway(cfg)
	logger.Info("data source selected", zap.String("provider", gw.Name()))
	gw = gateway.NewCachedGateway(gw, cfg.DataSource.CacheTTL)

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	policy := notifier.RetryPolicy{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
		Multiplier:      cfg.Retry.Multiplier,
	}

	var notifiers []notifier.Notifier
	if cfg.EmailEnabled() {
		en, err := notifier.NewEmailNotifier(cfg.Email.From, cfg.Email.Recipient, notifier.SMTPSettings{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
		}, policy, logger)
		if err != nil {
			return fmt.Errorf("init email notifier: %w", err)
		}
		notifiers = append(notifiers, en)
	} else {
		logger.Info("no recipient configured, email delivery disabled")
	}

	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, policy, logger)
		notifiers = append(notifiers, tn)
	}

	an := analyzer.New(gw, logger, cfg.Report.Pace, cfg.Report.Workers)
	runner := pipeline.NewRunner(pipeline.Config{
		Days:      cfg.Report.Days,
		TopN:      cfg.Report.TopN,
		Sources:   cfg.Report.Sources,
		OutputDir: cfg.Report.OutputDir,
		Timeout:   cfg.Report.Timeout,
	}, gw, an, rec, notifiers, logger)

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if once {
		_, err := runner.Run(ctx)
		return err
	}

	sched := scheduler.NewScheduler(ctx, runner, rec, logger)
	if err := sched.Register(cfg.Report.Cron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Info("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, executing report now")
		go func() {
			if _, err := sched.RunNow(); err != nil {
				logger.Error("startup report failed", zap.Error(err))
			}
		}()
	}

	logger.Info("market movers is running, press Ctrl+C to stop", zap.String("cron", cfg.Report.Cron))
	<-ctx.Done()
	logger.Info("shutdown signal received, stopping")
	return nil
}

func newGateway(cfg *config.Config) gateway.Gateway {
	switch cfg.DataSource.Provider {
	case "vstrader":
		return gateway.NewVsTraderGateway(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "alpaca":
		return gateway.NewAlpacaGateway(cfg.DataSource.APIKey, cfg.DataSource.APISecret)
	default:
		return gateway.NewYahooGateway(cfg.Proxy)
	}
}
