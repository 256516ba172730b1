// Package lib provides a Go SDK for the thinkr assistant backend.
//
// The backend runs chat messages, autopilot proposals and shop actions as
// asynchronous tasks. This package starts them and polls their status until they
// finish, so applications get a final [Status] without dealing with task ids,
// backoff or the different response shapes the backend sends.
//
// # Quick Start
//
//	client, err := lib.New(ctx, lib.Config{
//	    APIURL: "https://example.com/api",
//	    Token:  os.Getenv("THINKR_API_TOKEN"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	status, err := client.Chat(ctx, "How are my sales?", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(status.Content)
//
// # Autopilot Proposals
//
// A proposal is created, reviewed and then approved, refined or rejected:
//
//	proposal, _ := client.CreateProposal(ctx, "Increase conversion on product pages", nil)
//	// proposal.State is "awaiting_review" and proposal.Payload has the proposal.
//	result, _ := client.SendProposalFeedback(ctx, proposal.Handle, lib.FeedbackApprove, "", nil)
//
// # Status Updates
//
// Every operation accepts an optional [UpdateFunc] that receives the statuses
// while the operation runs. Updates are never delivered after the operation
// is cancelled.
//
// # Failures
//
// Operations that reach the backend return a [Status] even when they fail:
// check [Status.Outcome] and [Status.FailureKind]. Errors are only returned when
// an operation could not be started. They can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: Resource does not exist.
//   - [ErrNotValid]: Invalid input or operation.
//   - [ErrTransport]: The backend could not be reached or sent an invalid response.
//
// # Journal
//
// Finished operations are recorded in a SQLite journal (~/.thinkr/thinkr.db by
// default) that can be read with [Client.History]. Set [Config].NoJournal to
// disable it.
//
// # Thread Safety
//
// A [Client] is safe for concurrent use. Each kind of operation runs one at a time:
// starting a new one cancels the previous one of the same kind.
package lib
