package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"StockScope/internal/api"
	"StockScope/internal/batch"
	"StockScope/internal/collector"
	"StockScope/internal/config"
	"StockScope/internal/logger"
	"StockScope/internal/metrics"
	"StockScope/internal/notifier"
	"StockScope/internal/pipeline"
	"StockScope/internal/scheduler"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to the YAML config file")
	once := flag.Bool("once", false, "compute once, print the report and exit")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, closer, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	if err := run(cfg, *once, log); err != nil {
		log.Error().Err(err).Msg("exiting")
		closer.Close()
		os.Exit(1)
	}
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Source {
	case "vstrader":
		return collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "mock":
		return &collector.MockFetcher{Price: 100}
	default:
		return collector.NewYahooFetcher(cfg.Proxy)
	}
}

func run(cfg *config.Config, once bool, log zerolog.Logger) error {
	log.Info().Msg("StockScope starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)

	fetcher := newFetcher(cfg)
	log.Info().Str("source", fetcher.Name()).Strs("symbols", cfg.DataSource.Symbols).Msg("data source")

	col := collector.NewCollector(fetcher, cfg.DataSource.RequestsPerSecond, log)
	runner := batch.NewRunner(cfg.Batch.Workers, log)
	pipe := pipeline.New(col, runner, cfg.Indicators, rec, log)

	var sender scheduler.Sender
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
	if tn.Enabled() && !once {
		sender = tn
	}

	sched := scheduler.NewScheduler(ctx, pipe, sender, scheduler.Options{
		Symbols:      cfg.DataSource.Symbols,
		LookbackDays: cfg.DataSource.LookbackDays,
		TrimWarmup:   cfg.Batch.TrimWarmup,
		Range:        cfg.Range,
	}, log)

	if once {
		snap, err := sched.Refresh(ctx, "once")
		if err != nil {
			return err
		}
		fmt.Println(notifier.FormatReport(snap.Result, snap.Start, snap.End))
		if len(snap.Result.Failures()) > 0 && snap.Result.Len() == 0 {
			return snap.Result.Err()
		}
		return nil
	}

	if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	var srv *api.Server
	if cfg.HTTP.Addr != "" {
		srv = api.NewServer(cfg.HTTP.Addr, api.NewHandler(pipe, cfg.DataSource.Symbols, log), reg, log)
		srv.Start()
	}

	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, refreshing now")
		go func() {
			if _, err := sched.Refresh(ctx, "start"); err != nil {
				log.Error().Err(err).Msg("startup refresh")
			}
		}()
	}

	log.Info().Msg("StockScope is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping...")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}
	log.Info().Msg("StockScope stopped")
	return nil
}
