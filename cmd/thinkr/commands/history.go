package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/app/history"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/storage/sqlite"
)

type HistoryCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id     string
	kind   string
	limit  int
	format string
}

// NewHistoryCommand returns the history command.
func NewHistoryCommand(rootCmd *RootCommand, app *kingpin.Application) *HistoryCommand {
	c := &HistoryCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("history", "List the finished operations.")
	c.Cmd.Arg("id", "Show a single journal entry.").StringVar(&c.id)
	c.Cmd.Flag("kind", "Filter by operation kind (chat, autopilot, shop_action).").EnumVar(&c.kind,
		string(model.OperationKindChat), string(model.OperationKindAutopilot), string(model.OperationKindShopAction))
	c.Cmd.Flag("limit", "Max number of operations listed, 0 lists all.").Default("20").IntVar(&c.limit)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c HistoryCommand) Name() string { return c.Cmd.FullCommand() }

func (c HistoryCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Initialize storage (SQLite), the journal is always read even if writing is disabled.
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	svc, err := history.NewService(history.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	entries, err := svc.Run(ctx, history.Request{
		ID:    c.id,
		Kind:  model.OperationKind(c.kind),
		Limit: c.limit,
	})
	if err != nil {
		return fmt.Errorf("could not list history: %w", err)
	}

	if err := c.rootCmd.NewPrinter(c.format).PrintJournal(entries); err != nil {
		return fmt.Errorf("could not print history: %w", err)
	}

	return nil
}
