package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/api"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/conventions"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/credentials"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/log"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/metrics"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/printer"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/storage"
	storageio "github.com/SailingSF/thinkr-web-app-sub000/internal/storage/io"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/storage/sqlite"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/task"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug                bool
	NoLog                bool
	NoColor              bool
	LoggerType           string
	APIURL               string
	Token                string
	TokenFile            string
	ConfigPath           string
	ConfigPathSet        bool
	DBPath               string
	NoJournal            bool
	MetricsListenAddress string

	// Global instances.
	Stdin           io.Reader
	Stdout          io.Writer
	Stderr          io.Writer
	Logger          log.Logger
	MetricsRecorder metrics.Recorder
	Config          model.ClientConfig
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)
	app.Flag("api-url", "Backend API base URL, overrides the config file.").StringVar(&c.APIURL)
	app.Flag("token", "Backend API token, overrides the config file.").StringVar(&c.Token)
	app.Flag("token-file", "File with the backend API token, read on every request.").StringVar(&c.TokenFile)

	dataDir := filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir)
	defaultConfigPath := conventions.ConfigPath(dataDir)
	app.Flag("config", "Path to the YAML config file.").Default(defaultConfigPath).IsSetByUser(&c.ConfigPathSet).StringVar(&c.ConfigPath)

	defaultDBPath := conventions.DBPath(dataDir)
	app.Flag("db-path", "Path to the SQLite journal database file.").Default(defaultDBPath).StringVar(&c.DBPath)
	app.Flag("no-journal", "Don't journal finished operations.").BoolVar(&c.NoJournal)
	app.Flag("metrics-listen-address", "Serve Prometheus metrics on this address while the command runs (e.g. :8081).").StringVar(&c.MetricsListenAddress)

	return c
}

// LoadConfig loads the config file and applies the flags over it. A missing config
// file is only an error when its path was set explicitly.
func (r *RootCommand) LoadConfig(ctx context.Context) error {
	repo := storageio.NewConfigYAMLRepository(os.DirFS(filepath.Dir(r.ConfigPath)))
	cfg, err := repo.GetConfig(ctx, filepath.Base(r.ConfigPath))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || r.ConfigPathSet {
			return fmt.Errorf("could not load config %q: %w", r.ConfigPath, err)
		}
		r.Logger.Debugf("Config file %q missing, using defaults", r.ConfigPath)
	}

	if r.APIURL != "" {
		cfg.APIURL = r.APIURL
	}
	if r.Token != "" {
		cfg.Token = r.Token
	}
	if r.TokenFile != "" {
		cfg.TokenFile = r.TokenFile
	}
	r.Config = cfg

	return nil
}

// Credentials returns the token provider: the configured token, then the token file
// and last the token env var.
func (r *RootCommand) Credentials() credentials.Provider {
	return credentials.Chain{
		credentials.Static(r.Config.Token),
		credentials.File(r.Config.TokenFile),
		credentials.Env(conventions.TokenEnvVar),
	}
}

// NewClient returns the backend API client.
func (r *RootCommand) NewClient() (api.Client, error) {
	if r.Config.APIURL == "" {
		return nil, fmt.Errorf("api url is required, use --api-url or the config file api_url")
	}
	if _, ok := r.Credentials().Token(); !ok {
		r.Logger.Warningf("No API token configured, requests will be anonymous")
	}

	c, err := api.NewHTTPClient(api.HTTPClientConfig{
		BaseURL:     r.Config.APIURL,
		Credentials: r.Credentials(),
		Logger:      r.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create api client: %w", err)
	}
	return c, nil
}

// NewJournal returns the operations journal, nil when journaling is disabled. The
// returned close func must be called when done.
func (r *RootCommand) NewJournal(ctx context.Context) (storage.JournalRepository, func(), error) {
	if r.NoJournal {
		return nil, func() {}, nil
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: r.DBPath,
		Logger: r.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create journal repository: %w", err)
	}

	return repo, func() {
		if err := repo.Close(); err != nil {
			r.Logger.Warningf("Could not close journal: %s", err)
		}
	}, nil
}

// NewTracker returns the tracker of an operation kind with its configured polling policy.
func (r *RootCommand) NewTracker(kind model.OperationKind, journal storage.JournalRepository) (*task.Tracker, error) {
	tr, err := task.NewTracker(task.TrackerConfig{
		Kind:            kind,
		Policy:          r.Config.Policy(kind),
		Journal:         journal,
		MetricsRecorder: r.MetricsRecorder,
		Logger:          r.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create tracker: %w", err)
	}
	return tr, nil
}

// NewPrinter returns the printer for an output format.
func (r *RootCommand) NewPrinter(format string) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(r.Stdout)
	}
	return printer.NewTablePrinter(r.Stdout)
}

// printOperation prints the final status of an operation, failed operations are
// returned as errors after being printed.
func printOperation(p printer.Printer, kind model.OperationKind, s model.NormalizedStatus) error {
	if err := p.PrintResult(kind, s); err != nil {
		return fmt.Errorf("could not print result: %w", err)
	}
	if s.Outcome == model.OutcomeFailed {
		return fmt.Errorf("%s operation failed: %s", kind, s.ErrorMessage)
	}
	return nil
}

// updatePrinter returns an update callback that prints on p, logging print errors.
func updatePrinter(p printer.Printer, logger log.Logger) func(model.NormalizedStatus) {
	return func(s model.NormalizedStatus) {
		if s.IsTerminal() {
			return
		}
		if err := p.PrintUpdate(s); err != nil {
			logger.Warningf("Could not print update: %s", err)
		}
	}
}
