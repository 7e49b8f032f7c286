package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/coreipc/corert/internal/httpd"
	"github.com/coreipc/corert/internal/logger"
	"github.com/coreipc/corert/internal/telemetry"
	"github.com/coreipc/corert/pkg/config"
	"github.com/coreipc/corert/pkg/kernel/simkernel"
	"github.com/coreipc/corert/pkg/metrics"
	"github.com/coreipc/corert/pkg/reactor"

	// Import prometheus metrics to register init() functions.
	_ "github.com/coreipc/corert/pkg/metrics/prometheus"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the corert reactor host",
	Long: `Run the corert reactor host: construct a kernel, a reactor over it,
and expose a liveness probe over HTTP, plus Prometheus metrics when
enabled in configuration.

By default the host runs in the background (daemon mode). Use --foreground
to run in the foreground for debugging or when managed by a process
supervisor.

Examples:
  # Start in background (default)
  corertd serve

  # Start in foreground
  corertd serve --foreground

  # Start with custom config file
  corertd serve --config /etc/corert/config.yaml`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	serveCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/corert/corertd.pid)")
	serveCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/corert/corertd.log)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "corertd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		ProfileTypes:   cfg.Telemetry.ProfileTypes,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Endpoint, "profile_types", cfg.Telemetry.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	k := simkernel.New()

	rx, err := reactor.New(k)
	if err != nil {
		return fmt.Errorf("failed to construct reactor: %w", err)
	}
	defer func() {
		if err := rx.Close(); err != nil {
			logger.Error("reactor close error", "error", err)
		}
	}()

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.InitRegistry()
		k.SetMetrics(metrics.NewKernelMetrics())
		rx.SetMetrics(metrics.NewReactorMetrics())
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: httpd.NewRouter(reg, func() (bool, string) { return true, "" }),
	}

	httpDone := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			httpDone <- err
			return
		}
		httpDone <- nil
	}()

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	reactorDone := make(chan error, 1)
	go func() {
		reactorDone <- rx.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("corertd is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		if err := <-reactorDone; err != nil {
			logger.Error("reactor run error", "error", err)
			return err
		}
		logger.Info("corertd stopped gracefully")

	case err := <-reactorDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("reactor error", "error", err)
			return err
		}
		logger.Info("reactor stopped")

	case err := <-httpDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("HTTP server error", "error", err)
			return err
		}
	}

	return nil
}

// startDaemon starts the server as a background daemon process.
func startDaemon() error {
	stateDir := GetDefaultStateDir()
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	pidPath := pidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	if _, err := os.Stat(pidPath); err == nil {
		pidData, err := os.ReadFile(pidPath)
		if err == nil {
			var pid int
			if _, err := fmt.Sscanf(string(pidData), "%d", &pid); err == nil {
				if process, err := os.FindProcess(pid); err == nil {
					if err := process.Signal(syscall.Signal(0)); err == nil {
						return fmt.Errorf("corertd is already running (PID %d)\nUse 'kill %d' to stop the running instance", pid, pid)
					}
				}
			}
		}
		_ = os.Remove(pidPath)
	}

	logPath := logFile
	if logPath == "" {
		logPath = filepath.Join(stateDir, "corertd.log")
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	daemonArgs := []string{"serve", "--foreground", "--pid-file", pidPath}
	if GetConfigFile() != "" {
		daemonArgs = append(daemonArgs, "--config", GetConfigFile())
	}

	cmd := exec.Command(executable, daemonArgs...)

	logFileHandle, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	cmd.Stdout = logFileHandle
	cmd.Stderr = logFileHandle
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		_ = logFileHandle.Close()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	_ = logFileHandle.Close()

	fmt.Printf("corertd started in background (PID %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", pidPath)
	fmt.Printf("  Log file: %s\n", logPath)
	fmt.Println("\nUse 'corertd status' to check server status")

	return nil
}
