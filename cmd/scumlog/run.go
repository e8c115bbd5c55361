package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scumlog/scumlog-go/internal/config"
	"github.com/scumlog/scumlog-go/internal/notify"
	"github.com/scumlog/scumlog-go/pkg/scumlog"
	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

var (
	// run flags
	onlyCategories []string
	runOnce        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Relay new log events until interrupted",
	Long: `Poll every enabled source of the configuration file and post new
events to Discord.

On the very first run a source starts at the end of its current log file;
history is not replayed. Read positions are kept under state_dir, so a
restart continues where the previous run stopped.

Examples:
  # Relay every configured source
  scumlog run -c /etc/scumlog.yaml

  # Only kills and economy, waking early on file changes
  scumlog run --only kill,economy --fsnotify

  # One pass over every source, e.g. from cron
  scumlog run --once`,
	Args: cobra.NoArgs,
	RunE: runRelay,
}

func init() {
	runCmd.Flags().StringSliceVar(&onlyCategories, "only", nil,
		"Categories to relay (comma-separated); default all enabled sources")
	runCmd.Flags().BoolVar(&runOnce, "once", false,
		"Tick every source once and exit")
	runCmd.Flags().Bool("fsnotify", false,
		"Also tick when the log directory reports a change")
	_ = viper.BindPFlag("fsnotify", runCmd.Flags().Lookup("fsnotify"))

	rootCmd.AddCommand(runCmd)
}

func runRelay(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := loggerFromSettings(cmd)
	if err != nil {
		return err
	}
	only, err := normalizeCategories(onlyCategories)
	if err != nil {
		return err
	}
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return err
	}

	sink := newSink(cfg, logger)
	pipelines := buildPipelines(cfg, sink, only, logger)
	if len(pipelines) == 0 {
		return errors.New("no source could be started")
	}

	if runOnce {
		return tickOnce(ctx, pipelines, logger)
	}

	poller := scumlog.NewPoller(pipelines,
		scumlog.WithInterval(cfg.PollInterval),
		scumlog.WithFSNotify(viper.GetBool("fsnotify")),
		scumlog.WithPollerLogger(logger),
	)
	defer poller.Close()
	return poller.Run(ctx)
}

func newSink(cfg *config.Config, logger *slog.Logger) scumlog.Sink {
	return notify.NewDiscordSink(
		notify.WithBaseURL(cfg.Sink.BaseURL),
		notify.WithRate(cfg.Sink.Rate, cfg.Sink.Burst),
		notify.WithHTTPTimeout(cfg.Sink.Timeout),
		notify.WithSinkLogger(logger.With("component", "discord")),
	)
}

// buildPipelines builds a pipeline per enabled source. A source that fails
// to initialise is logged and left out; the others still run.
func buildPipelines(cfg *config.Config, sink scumlog.Sink, only []event.Category, logger *slog.Logger) []*scumlog.Pipeline {
	wanted := make(map[event.Category]bool, len(only))
	for _, c := range only {
		wanted[c] = true
	}

	var out []*scumlog.Pipeline
	for _, s := range cfg.Sources {
		c := event.Category(s.Category)
		if len(wanted) > 0 && !wanted[c] {
			continue
		}
		if !s.IsEnabled() {
			logger.Info("source disabled", "source", s.Name)
			continue
		}
		p, err := scumlog.NewPipeline(scumlog.Source{
			Name:     s.Name,
			Category: c,
			Dir:      s.Dir,
			Pattern:  s.Pattern,
			Encoding: scumlog.Encoding(s.Encoding),
			Enabled:  true,
			Channel:  s.Channel,
		},
			scumlog.WithSink(sink),
			scumlog.WithStateDir(cfg.StateDir),
			scumlog.WithDispatchTimeout(cfg.Sink.Timeout),
			scumlog.WithLogger(logger),
		)
		if err != nil {
			logger.Error("source not started", "source", s.Name, "error", err)
			continue
		}
		out = append(out, p)
	}
	return out
}

func tickOnce(ctx context.Context, pipelines []*scumlog.Pipeline, logger *slog.Logger) error {
	var errs []error
	for _, p := range pipelines {
		res, err := p.Tick(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		logger.Info("tick", "source", p.Source().Name, "file", res.File,
			"lines", res.Lines, "events", res.Events, "dispatched", res.Dispatched)
	}
	return errors.Join(errs...)
}
