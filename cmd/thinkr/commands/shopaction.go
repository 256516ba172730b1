package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/app/shopaction"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

type ShopActionCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	action string
	format string
}

// NewShopActionCommand returns the shop action command.
func NewShopActionCommand(rootCmd *RootCommand, app *kingpin.Application) *ShopActionCommand {
	c := &ShopActionCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("shop-action", "Execute a shop action and wait until it finishes.")
	c.Cmd.Arg("action", "Shop action to execute.").Required().StringVar(&c.action)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c ShopActionCommand) Name() string { return c.Cmd.FullCommand() }

func (c ShopActionCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	client, err := c.rootCmd.NewClient()
	if err != nil {
		return err
	}

	journal, closeJournal, err := c.rootCmd.NewJournal(ctx)
	if err != nil {
		return err
	}
	defer closeJournal()

	tracker, err := c.rootCmd.NewTracker(model.OperationKindShopAction, journal)
	if err != nil {
		return err
	}

	svc, err := shopaction.NewService(shopaction.ServiceConfig{
		Client:  client,
		Tracker: tracker,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	p := c.rootCmd.NewPrinter(c.format)
	status, err := svc.Execute(ctx, shopaction.Request{
		Action:   c.action,
		OnUpdate: updatePrinter(p, logger),
	})
	if err != nil {
		return err
	}

	return printOperation(p, model.OperationKindShopAction, status)
}
