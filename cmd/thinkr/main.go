package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/SailingSF/thinkr-web-app-sub000/cmd/thinkr/commands"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/log"
	loglogrus "github.com/SailingSF/thinkr-web-app-sub000/internal/log/logrus"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/metrics"
	metricsprometheus "github.com/SailingSF/thinkr-web-app-sub000/internal/metrics/prometheus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("thinkr", "thinkr assistant backend client.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	chatCmd := commands.NewChatCommand(rootCmd, app)
	shopActionCmd := commands.NewShopActionCommand(rootCmd, app)
	historyCmd := commands.NewHistoryCommand(rootCmd, app)

	// Autopilot subcommands share a parent command.
	autopilotCmd := commands.NewAutopilotCommand(rootCmd, app)
	autopilotCreateCmd := commands.NewAutopilotCreateCommand(autopilotCmd)
	autopilotFeedbackCmd := commands.NewAutopilotFeedbackCommand(autopilotCmd)
	autopilotStatusCmd := commands.NewAutopilotStatusCommand(autopilotCmd)

	cmds := map[string]commands.Command{
		chatCmd.Name():              chatCmd,
		shopActionCmd.Name():        shopActionCmd,
		historyCmd.Name():           historyCmd,
		autopilotCreateCmd.Name():   autopilotCreateCmd,
		autopilotFeedbackCmd.Name(): autopilotFeedbackCmd,
		autopilotStatusCmd.Name():   autopilotStatusCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Auto-suppress logging for commands that only produce structured output (table/JSON)
	// to prevent log noise from mixing with printer output in the terminal.
	// Users can still enable logging with --debug.
	printerCommands := map[string]bool{
		"history": true,
	}
	if printerCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(ctx, *rootCmd)

	if err := rootCmd.LoadConfig(ctx); err != nil {
		return err
	}

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Metrics.
	rootCmd.MetricsRecorder = metrics.Noop
	if rootCmd.MetricsListenAddress != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		rootCmd.MetricsRecorder = metricsprometheus.NewRecorder(metricsprometheus.Config{Registerer: reg})

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		server := &http.Server{
			Addr:              rootCmd.MetricsListenAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Add(
			func() error {
				rootCmd.Logger.Infof("Serving metrics on %s", rootCmd.MetricsListenAddress)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("metrics server failed: %w", err)
				}
				return nil
			},
			func(_ error) {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = server.Shutdown(ctx)
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(ctx context.Context, config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	// If logger not disabled use logrus logger.
	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // By default logger goes to stderr (so it can split stdout prints).
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	// Log format.
	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled") // Will log only when debug enabled.

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
