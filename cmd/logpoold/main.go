// Command logpoold runs a logpool controller behind a small admin HTTP
// surface: health and status endpoints, runtime reconfiguration, and
// Prometheus metrics. It is the runnable wiring for deployments that
// want the pool supervised as a standalone process.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/mjurado/logpool"
	"github.com/mjurado/logpool/internal/config"
	"github.com/mjurado/logpool/logx"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("logpoold: %v", err)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := logx.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	format := logx.FormatText
	if cfg.Log.Format == "json" {
		format = logx.FormatJSON
	}

	var sinks []logx.Sink
	if cfg.Log.Stdout {
		sinks = append(sinks, logx.NewWriterSink(os.Stdout, format))
	}
	if cfg.Log.File != "" {
		fileSink, err := logx.NewFileSink(cfg.Log.File, format)
		if err != nil {
			return err
		}
		sinks = append(sinks, fileSink)
	}
	var memSink *logx.MemorySink
	if cfg.Log.Memory {
		memSink = logx.NewMemorySink()
		sinks = append(sinks, memSink)
	}
	if cfg.Log.Redact {
		for i, s := range sinks {
			sinks[i] = logx.NewRedactSink(s)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	ctl, err := logpool.New(logpool.Config{
		Workers:         cfg.Pool.Workers,
		QueueCapacity:   cfg.Pool.QueueCapacity,
		Log:             logx.Config{Level: level, Sinks: sinks},
		MetricsRegistry: registry,
	})
	if err != nil {
		return err
	}
	if err := ctl.Start(); err != nil {
		return err
	}
	ctl.Info("controller started",
		slog.Int("workers", cfg.Pool.Workers),
		slog.Int("queue_capacity", cfg.Pool.QueueCapacity))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: newRouter(ctl, registry, memSink),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ctl.Info("admin server listening", slog.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	ctl.Info("draining pool before exit")
	if shutdownErr := ctl.Shutdown(true); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}

func newRouter(ctl *logpool.Controller, registry *prometheus.Registry, memSink *logx.MemorySink) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, ctl.Stats())
	})

	r.Post("/reconfigure", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Workers       *int    `json:"workers"`
			QueueCapacity *int    `json:"queue_capacity"`
			LogLevel      *string `json:"log_level"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		rc := logpool.Reconfig{
			Workers:       body.Workers,
			QueueCapacity: body.QueueCapacity,
		}
		if body.LogLevel != nil {
			level, err := logx.ParseLevel(*body.LogLevel)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			rc.LogLevel = &level
		}

		if err := ctl.Reconfigure(rc); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, logpool.ErrInvalidConfig) {
				status = http.StatusBadRequest
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}
		ctl.Info("reconfigured via admin API")
		writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
	})

	if memSink != nil {
		r.Get("/logs", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, memSink.Entries())
		})
		r.Delete("/logs", func(w http.ResponseWriter, _ *http.Request) {
			memSink.Clear()
			writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
		})
	}

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
