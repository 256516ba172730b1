package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/app/chat"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

type ChatCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	message  string
	threadID string
	format   string
}

// NewChatCommand returns the chat command.
func NewChatCommand(rootCmd *RootCommand, app *kingpin.Application) *ChatCommand {
	c := &ChatCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("chat", "Send a message to the assistant and wait for the response.")
	c.Cmd.Arg("message", "Message to send.").Required().StringVar(&c.message)
	c.Cmd.Flag("thread-id", "Conversation thread to continue.").StringVar(&c.threadID)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c ChatCommand) Name() string { return c.Cmd.FullCommand() }

func (c ChatCommand) Run(ctx context.Context) error {
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

	tracker, err := c.rootCmd.NewTracker(model.OperationKindChat, journal)
	if err != nil {
		return err
	}

	svc, err := chat.NewService(chat.ServiceConfig{
		Client:  client,
		Tracker: tracker,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	p := c.rootCmd.NewPrinter(c.format)
	status, err := svc.Send(ctx, chat.Request{
		Message:  c.message,
		ThreadID: c.threadID,
		OnUpdate: updatePrinter(p, logger),
	})
	if err != nil {
		return err
	}

	return printOperation(p, model.OperationKindChat, status)
}
