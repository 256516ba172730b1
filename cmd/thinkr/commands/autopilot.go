package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/api"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/app/autopilot"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/lifecycle"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

// AutopilotCommand is the parent command for autopilot proposal subcommands.
type AutopilotCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewAutopilotCommand returns the autopilot parent command.
func NewAutopilotCommand(rootCmd *RootCommand, app *kingpin.Application) *AutopilotCommand {
	c := &AutopilotCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("autopilot", "Manage autopilot proposals.")
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

// run runs fn with a ready autopilot service and prints the final status.
func (c *AutopilotCommand) run(ctx context.Context, fn func(svc *autopilot.Service, onUpdate func(model.NormalizedStatus)) (model.NormalizedStatus, error)) error {
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

	tracker, err := c.rootCmd.NewTracker(model.OperationKindAutopilot, journal)
	if err != nil {
		return err
	}

	svc, err := autopilot.NewService(autopilot.ServiceConfig{
		Client:  client,
		Tracker: tracker,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	p := c.rootCmd.NewPrinter(c.format)
	status, err := fn(svc, updatePrinter(p, logger))
	if err != nil {
		return err
	}

	if err := printOperation(p, model.OperationKindAutopilot, status); err != nil {
		return err
	}

	// JSON output is a single document.
	if c.format == formatTable && status.State == string(lifecycle.ProposalStateAwaitingReview) {
		return p.PrintMessage(fmt.Sprintf("Review it with: thinkr autopilot feedback %s --task-id %s --action approve|refine|reject",
			status.Handle.SecondaryID, status.Handle.TaskID))
	}

	return nil
}

// AutopilotCreateCommand requests a new proposal.
type AutopilotCreateCommand struct {
	Cmd       *kingpin.CmdClause
	parentCmd *AutopilotCommand

	request string
}

// NewAutopilotCreateCommand returns the autopilot create command.
func NewAutopilotCreateCommand(parentCmd *AutopilotCommand) *AutopilotCreateCommand {
	c := &AutopilotCreateCommand{parentCmd: parentCmd}

	c.Cmd = parentCmd.Cmd.Command("create", "Request a proposal and wait until it's ready for review.")
	c.Cmd.Arg("request", "What the autopilot should do.").Required().StringVar(&c.request)

	return c
}

func (c AutopilotCreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c AutopilotCreateCommand) Run(ctx context.Context) error {
	return c.parentCmd.run(ctx, func(svc *autopilot.Service, onUpdate func(model.NormalizedStatus)) (model.NormalizedStatus, error) {
		return svc.Create(ctx, autopilot.CreateRequest{Request: c.request, OnUpdate: onUpdate})
	})
}

// AutopilotFeedbackCommand reviews a proposal.
type AutopilotFeedbackCommand struct {
	Cmd       *kingpin.CmdClause
	parentCmd *AutopilotCommand

	proposalID string
	taskID     string
	action     string
	feedback   string
}

// NewAutopilotFeedbackCommand returns the autopilot feedback command.
func NewAutopilotFeedbackCommand(parentCmd *AutopilotCommand) *AutopilotFeedbackCommand {
	c := &AutopilotFeedbackCommand{parentCmd: parentCmd}

	c.Cmd = parentCmd.Cmd.Command("feedback", "Approve, refine or reject a proposal.")
	c.Cmd.Arg("proposal-id", "Proposal ID.").Required().StringVar(&c.proposalID)
	c.Cmd.Flag("task-id", "Task ID of the proposal.").StringVar(&c.taskID)
	c.Cmd.Flag("action", "Review action.").Required().EnumVar(&c.action,
		string(api.FeedbackActionApprove), string(api.FeedbackActionRefine), string(api.FeedbackActionReject))
	c.Cmd.Flag("feedback", "Feedback for the autopilot, used when refining.").StringVar(&c.feedback)

	return c
}

func (c AutopilotFeedbackCommand) Name() string { return c.Cmd.FullCommand() }

func (c AutopilotFeedbackCommand) Run(ctx context.Context) error {
	action := api.FeedbackAction(c.action)
	if action == api.FeedbackActionRefine && c.feedback == "" {
		return fmt.Errorf("feedback is required when refining")
	}

	return c.parentCmd.run(ctx, func(svc *autopilot.Service, onUpdate func(model.NormalizedStatus)) (model.NormalizedStatus, error) {
		return svc.Feedback(ctx, autopilot.FeedbackRequest{
			Handle:   model.OperationHandle{TaskID: c.taskID, SecondaryID: c.proposalID},
			Action:   action,
			Feedback: c.feedback,
			OnUpdate: onUpdate,
		})
	})
}

// AutopilotStatusCommand follows an existing proposal.
type AutopilotStatusCommand struct {
	Cmd       *kingpin.CmdClause
	parentCmd *AutopilotCommand

	taskID     string
	proposalID string
}

// NewAutopilotStatusCommand returns the autopilot status command.
func NewAutopilotStatusCommand(parentCmd *AutopilotCommand) *AutopilotStatusCommand {
	c := &AutopilotStatusCommand{parentCmd: parentCmd}

	c.Cmd = parentCmd.Cmd.Command("status", "Wait until a proposal is ready for review or finishes.")
	c.Cmd.Arg("task-id", "Task ID of the proposal.").StringVar(&c.taskID)
	c.Cmd.Flag("proposal-id", "Proposal ID, used when the task ID is unknown.").StringVar(&c.proposalID)

	return c
}

func (c AutopilotStatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c AutopilotStatusCommand) Run(ctx context.Context) error {
	if c.taskID == "" && c.proposalID == "" {
		return fmt.Errorf("task id or proposal id is required")
	}

	return c.parentCmd.run(ctx, func(svc *autopilot.Service, onUpdate func(model.NormalizedStatus)) (model.NormalizedStatus, error) {
		return svc.Status(ctx, autopilot.StatusRequest{
			Handle:   model.OperationHandle{TaskID: c.taskID, SecondaryID: c.proposalID},
			OnUpdate: onUpdate,
		})
	})
}
