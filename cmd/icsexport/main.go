package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"github.com/xlab/closer"

	"icsexport/internal/config"
	"icsexport/internal/export"
	"icsexport/internal/ics"
	appLog "icsexport/internal/log"
	"icsexport/internal/window"
)

// flagConfig holds CLI flag values; non-empty values override config.
type flagConfig struct {
	configPath string
	icsFile    string
	startDate  string
	endDate    string
	format     string
	output     string
	schedule   string
	logLevel   string
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		closer.Exit(1)
		return
	}
	applyFlags(conf, flags)

	if err := appLog.Init(appLog.ParseLevel(conf.LogLevel), conf.ProductionLog); err != nil {
		fmt.Fprintf(os.Stderr, "unable to initialize logger: %v\n", err)
		closer.Exit(1)
		return
	}
	closer.Bind(appLog.Sync)

	if flags.icsFile == "" {
		appLog.Error("missing required flag", fmt.Errorf("--icsfile is required"))
		closer.Exit(1)
		return
	}

	win, err := window.Parse(flags.startDate, flags.endDate)
	if err != nil {
		appLog.Error("invalid date window", err, "startdate", flags.startDate, "enddate", flags.endDate)
		closer.Exit(1)
		return
	}

	appLog.Debug("effective config",
		"format", conf.Format,
		"output", conf.Output,
		"schedule", conf.Schedule,
		"max_occurrences_per_event", conf.MaxOccurrencesPerEvent,
		"clip_to_window_end", conf.ClipToWindowEnd,
		"strict", conf.Strict,
	)

	ctx, cancel := context.WithCancel(context.Background())
	closer.Bind(cancel)

	job := &export.Job{
		Source:  flags.icsFile,
		Window:  win,
		Fetcher: ics.NewFetcher(conf.CacheDir, conf.FetchTimeout),
		Options: export.Options{
			MaxOccurrencesPerEvent: conf.MaxOccurrencesPerEvent,
			ClipToWindowEnd:        conf.ClipToWindowEnd,
			Strict:                 conf.Strict,
		},
		Format: conf.Format,
		Header: conf.CSVHeader,
		Output: conf.Output,
	}

	if _, err := job.Run(ctx); err != nil {
		appLog.Error("export failed", err, "source", flags.icsFile)
		closer.Exit(1)
		return
	}

	if conf.Schedule == "" {
		closer.Close()
		return
	}

	runWatch(ctx, job, conf.Schedule)
}

// runWatch repeats the export on every cron tick until SIGINT/SIGTERM.
// Failures of a single tick are logged and the schedule keeps running.
func runWatch(ctx context.Context, job *export.Job, schedule string) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := job.Run(ctx); err != nil {
			appLog.Error("scheduled export failed", err, "source", job.Source)
		}
	})
	if err != nil {
		appLog.Error("invalid schedule", err, "schedule", schedule)
		closer.Exit(1)
		return
	}

	c.Start()
	closer.Bind(func() {
		<-c.Stop().Done()
		appLog.Info("scheduler stopped")
	})

	appLog.Info("watching source", "source", job.Source, "schedule", schedule)
	closer.Hold()
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "", "Path to YAML config file (optional)")
	flag.StringVar(&cfg.icsFile, "icsfile", "", "ICS file path or http(s) URL to parse")
	flag.StringVar(&cfg.startDate, "startdate", "", "First date to produce rows for")
	flag.StringVar(&cfg.endDate, "enddate", "", "Last date bounding open-ended recurrences")
	flag.StringVar(&cfg.format, "format", "", "Output format: table or csv (overrides config)")
	flag.StringVar(&cfg.output, "output", "", "Output file (overrides config; default stdout)")
	flag.StringVar(&cfg.schedule, "schedule", "", "Cron expression to repeat the export (overrides config)")
	flag.StringVar(&cfg.logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR (overrides config)")

	flag.Parse()

	return cfg
}

func applyFlags(conf *config.Config, flags flagConfig) {
	if flags.format != "" {
		conf.Format = flags.format
	}
	if flags.output != "" {
		conf.Output = flags.output
	}
	if flags.schedule != "" {
		conf.Schedule = flags.schedule
	}
	if flags.logLevel != "" {
		conf.LogLevel = flags.logLevel
	}
	conf.Normalize()
}
