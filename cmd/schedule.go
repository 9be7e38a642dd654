package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xolan/logpost/internal/rollup"
	"github.com/xolan/logpost/internal/schedule"
	"github.com/xolan/logpost/internal/service"
)

const shutdownTimeout = 5 * time.Second

var (
	scheduleAt          string
	scheduleMetricsAddr string
	scheduleNoCatchUp   bool
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Post the daily summary at a fixed time",
	Long: `Run in the foreground and post the daily summary once a day.

The trigger time comes from --at or the [schedule] table of config.toml
(default 23:50) and is read in the configured timezone. When the process
starts after today's trigger time the summary is posted immediately, unless
--no-catch-up is given or catch_up is false.

Stop with Ctrl+C or SIGTERM; a run in progress is cancelled.

Examples:
  logpost schedule                             Post every day at the configured time
  logpost schedule --at 21:30                  Post every day at 21:30
  logpost schedule --metrics-addr :9090        Also serve Prometheus metrics on /metrics`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		runSchedule(ctx, scheduleAt, scheduleMetricsAddr, !scheduleNoCatchUp)
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().StringVar(&scheduleAt, "at", "", "Daily trigger time, HH:MM (default from config)")
	scheduleCmd.Flags().StringVar(&scheduleMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	scheduleCmd.Flags().BoolVar(&scheduleNoCatchUp, "no-catch-up", false, "Do not post at start when today's trigger time has passed")
}

// runSchedule blocks until ctx is cancelled. catchUp is combined with the
// configured catch_up setting; both must allow it.
func runSchedule(ctx context.Context, at, metricsAddr string, catchUp bool) {
	cfg, paths, err := deps.Paths()
	if err != nil {
		fail("Failed to load configuration", err, "Run 'logpost config' to see where settings are read from")
		return
	}
	if at == "" {
		at = cfg.Schedule.At
	}

	logger := newLogger(cfg, cfg.Log.Level)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	services := buildServices(cfg, paths, logger, service.WithMetrics(rollup.NewMetrics(reg)))

	daily, err := schedule.New(schedule.Options{
		At:       at,
		Location: cfg.Location(),
		CatchUp:  catchUp && cfg.Schedule.CatchUp,
		Logger:   logger,
		Run: func(ctx context.Context) {
			// The orchestrator logs the outcome; a failed run is retried tomorrow.
			_, _ = services.Rollup.Run(ctx)
		},
	})
	if err != nil {
		fail("Invalid schedule", err, "Use a 24-hour HH:MM time such as 23:50")
		return
	}

	if err := serve(ctx, daily, metricsHandler(reg), metricsAddr, logger); err != nil {
		fail("Scheduler stopped", err, "")
	}
}

// serve runs the scheduler and, when addr is set, the metrics endpoint
// until ctx is cancelled or either of them fails.
func serve(ctx context.Context, daily *schedule.Daily, metrics http.Handler, addr string, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return daily.Start(gctx)
	})

	if addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics)
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: shutdownTimeout,
		}

		g.Go(func() error {
			logger.Info("serving metrics", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
