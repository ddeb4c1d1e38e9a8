package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/claude/gymflow/internal/attendance"
	"github.com/claude/gymflow/internal/catalog"
	"github.com/claude/gymflow/internal/config"
	"github.com/claude/gymflow/internal/journal"
	gymmcp "github.com/claude/gymflow/internal/mcp"
	"github.com/claude/gymflow/internal/metrics"
	"github.com/claude/gymflow/internal/programs"
	"github.com/claude/gymflow/internal/server"
	"github.com/claude/gymflow/internal/session"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run journal migrations and exit")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	log.Info("gymflow starting", "version", Version)

	// Open journal (runs migrations)
	var j *journal.Journal
	if cfg.Journal.Path != "" {
		j, err = journal.Open(cfg.Journal.Path, log)
		if err != nil {
			log.Error("failed to open journal", "path", cfg.Journal.Path, "error", err)
			os.Exit(1)
		}
		defer j.Close()
		log.Info("journal ready", "path", cfg.Journal.Path)
	}

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Load catalog
	now := time.Now()
	var cat *catalog.Catalog
	if cfg.Catalog.Path != "" {
		cat, err = catalog.Load(cfg.Catalog.Path, now)
	} else {
		cat, err = catalog.Default(now)
	}
	if err != nil {
		log.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	log.Info("catalog loaded", "programs", len(cat.Programs), "exercises", len(cat.Library))

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("gymflow", "server", promRegistry)

	// Stores and sessions
	programStore := programs.NewStore(cat.Programs, log)
	attendanceStore := attendance.NewStore(log)

	// A nil *journal.Journal must not reach the interface fields.
	var (
		sessionJournal session.Journal
		history        server.HistoryLister
		mcpHistory     gymmcp.HistoryLister
	)
	if j != nil {
		sessionJournal, history, mcpHistory = j, j, j
	}

	sessions := session.NewManager(programStore, sessionJournal, session.Deps{
		Notifier:  metrics.AlertNotifier{Next: session.LogNotifier{Log: log}, Alerts: metricsManager.CounterRestAlerts},
		Navigator: session.LogNavigator{Log: log},
		Scheduler: session.TickerScheduler{},
		Options: session.Options{
			TickInterval:  cfg.Session.TickInterval.Std(),
			AlertInterval: cfg.Session.AlertInterval.Std(),
			MaxAlerts:     cfg.Session.MaxAlerts,
		},
	}, log, session.WithLiveGauge(metricsManager.GaugeLiveSessions))
	defer sessions.Close()

	// Create server
	srv := server.New(server.Deps{
		Programs:   programStore,
		Attendance: attendanceStore,
		Sessions:   sessions,
		History:    history,
		Library:    cat.Library,
		Presets:    cat.Presets,
		Metrics:    metricsManager,
	}, cfg.Auth.APIKey, log)

	mcpSrv := gymmcp.New(&gymmcp.Local{
		Programs:   programStore,
		Attendance: attendanceStore,
		Journal:    mcpHistory,
	}, Version, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcpSrv))

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsAddr := net.JoinHostPort(cfg.Metrics.Host, strconv.Itoa(cfg.Metrics.Port))
		metricsSrv = &http.Server{Addr: metricsAddr, Handler: metricsManager.Handler()}
		go func() {
			log.Info("metrics server starting", "addr", metricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", "error", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("metrics shutdown error", "error", err)
		}
	}
	log.Info("server stopped")
}
