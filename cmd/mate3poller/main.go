// cmd/mate3poller/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/tamzrod/mate3-sunspec/internal/config"
	"github.com/tamzrod/mate3-sunspec/internal/monitor"
	"github.com/tamzrod/mate3-sunspec/internal/poller"
	"github.com/tamzrod/mate3-sunspec/internal/status"
	"github.com/tamzrod/mate3-sunspec/internal/writer"
)

var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfgPath := pflag.StringP("config", "c", "config.yaml", "Configuration file path.")
	once := pflag.Bool("once", false, "Walk every device once, report and exit.")
	level := pflag.StringP("log-level", "v", "", "Override log.level (debug, info, warn, error).")
	showVersion := pflag.Bool("version", false, "Print version and exit.")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("mate3poller v%s (build %s)\n", Version, BuildTime)
		return 0
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		return 2
	}

	if *level != "" {
		cfg.Log.Level = *level
	}
	if *once {
		for i := range cfg.Devices {
			cfg.Devices[i].Poll.Once = true
		}
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config validation failed: %v\n", err)
		return 2
	}
	config.Normalize(cfg)

	log := setupLogger(cfg.Log)
	log.Infof("mate3poller v%s starting, config=%s", Version, *cfgPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Metrics
	// --------------------

	var metrics *monitor.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = monitor.New(reg)
		go metrics.Serve(ctx, cfg.Metrics.Listen, log)
	}

	// --------------------
	// Report sinks
	// --------------------

	w, closeWriters, err := writer.Build(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("writer build failed")
		return 1
	}
	defer closeWriters()

	// --------------------
	// Build per-device pipelines
	// --------------------

	var (
		wg     sync.WaitGroup
		failed atomic.Bool
	)

	for _, d := range cfg.Devices {
		p, closePoller, err := poller.Build(d, log)
		if err != nil {
			log.WithError(err).WithField("device", d.ID).Error("poller build failed")
			stop()
			wg.Wait()
			return 1
		}
		defer closePoller()

		// ---- channel between poller and orchestrator ----
		out := make(chan poller.PollResult)

		wg.Add(1)
		go orchestrate(ctx, orchestration{
			deviceID: d.ID,
			once:     d.Poll.Once,
			in:       out,
			writer:   w,
			metrics:  metrics,
			failed:   &failed,
			log:      log.WithField("device", d.ID),
		}, &wg)

		// poller producer; joined before the deferred closePoller runs
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Run(ctx, out)
		}()
	}

	wg.Wait()
	stop()

	if failed.Load() {
		return 1
	}
	log.Info("mate3poller stopped")
	return 0
}

type orchestration struct {
	deviceID string
	once     bool
	in       <-chan poller.PollResult
	writer   writer.Writer
	metrics  *monitor.Metrics
	failed   *atomic.Bool
	log      logrus.FieldLogger
}

// orchestrate owns the device's status tracker (result-driven + 1Hz ticker)
// and fans each result out to the report sinks and metrics.
func orchestrate(ctx context.Context, o orchestration, wg *sync.WaitGroup) {
	defer wg.Done()

	tracker := status.NewTracker()
	publish := func() {
		if o.metrics != nil {
			o.metrics.ObserveStatus(o.deviceID, tracker.Snapshot())
		}
	}
	publish()

	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-o.in:
			if err := o.writer.Write(ctx, res); err != nil {
				o.log.WithError(err).Warn("report delivery failed")
			}
			if o.metrics != nil {
				o.metrics.ObservePoll(res)
			}

			if tracker.Observe(res.Err) {
				snap := tracker.Snapshot()
				o.log.WithFields(logrus.Fields{
					"health":     snap.Health,
					"error_code": snap.LastErrorCode,
				}).Info("device status changed")
				publish()
			}

			if o.once {
				if res.Err != nil {
					o.failed.Store(true)
				}
				return
			}

		case <-secTicker.C:
			if tracker.Tick() {
				publish()
			}
		}
	}
}

func setupLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	if cfg.Output == "file" && cfg.FilePath != "" {
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err == nil {
			log.SetOutput(file)
		} else {
			log.Warnf("open log file failed: %v, using stdout", err)
		}
	}

	return log
}
