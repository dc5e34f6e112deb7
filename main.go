package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"watchlist/config"
	"watchlist/internal/metrics"
	"watchlist/logger"
	"watchlist/writer"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "", "Path to configuration file (default "+config.DefaultPath+")")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.LoadConfig(config.ResolvePath(*configPath))
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.CloudWatch.Enabled {
		metrics.InitCloudWatch(ctx, cfg.Metrics.CloudWatch.Region, cfg.Metrics.CloudWatch.Namespace)
	}

	var out writer.Writer = writer.NewFileWriter(cfg.Output.Dir)
	if cfg.Output.S3.Enabled {
		s3w, err := writer.NewS3Writer(ctx, cfg)
		if err != nil {
			log.WithError(err).Error("failed to create S3 writer")
			os.Exit(1)
		}
		out = writer.MultiWriter{out, s3w}
	}

	a := newApp(cfg, out, os.Stdout)
	jobs, err := a.parse(flag.Args())
	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usage)
			os.Exit(2)
		}
		log.WithError(err).Error("failed to build jobs")
		os.Exit(1)
	}

	log.WithEnv("APP_ENV", "LOG_LEVEL").WithFields(logger.Fields{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
		"command": flag.Arg(0),
		"jobs":    len(jobs),
	}).Info("starting watchlist")

	summary := metrics.NewSummary()
	ok := a.run(ctx, jobs)
	summary.Close()

	for _, src := range summary.Sources() {
		entry := log.WithComponent("main").WithFields(logger.Fields{
			"source":   src.Label,
			"tickers":  src.Tickers,
			"rejected": src.Rejected,
		})
		if len(src.Failures) > 0 {
			entry.WithFields(logger.Fields{"failures": src.Failures}).Warn("source run summary")
			continue
		}
		entry.Info("source run summary")
	}
	for _, r := range logger.Report() {
		log.WithComponent(r.Component).WithFields(logger.Fields{
			"warns":  r.Warns,
			"errors": r.Errors,
		}).Debug("component report")
	}

	if !ok {
		os.Exit(1)
	}
}
