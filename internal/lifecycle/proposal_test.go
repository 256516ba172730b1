package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/lifecycle"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

func TestInterpretProposal(t *testing.T) {
	tests := map[string]struct {
		raw      model.RawResponse
		expState string
		expOut   model.Outcome
		expKind  model.FailureKind
		expMsg   string
		expSts   func(t *testing.T, s model.NormalizedStatus)
	}{
		"A lower case pending status should keep polling.": {
			raw:      model.RawResponse{"status": "pending", "task_id": "t1"},
			expState: "processing",
			expOut:   model.OutcomePending,
		},

		"An upper case pending status should keep polling.": {
			raw:      model.RawResponse{"status": "PENDING", "task_id": "t1"},
			expState: "processing",
			expOut:   model.OutcomePending,
		},

		"An approved status should keep polling.": {
			raw:      model.RawResponse{"status": "APPROVED"},
			expState: "processing",
			expOut:   model.OutcomePending,
		},

		"A refining status should keep polling in refining state.": {
			raw:      model.RawResponse{"status": "refining"},
			expState: "refining",
			expOut:   model.OutcomePending,
		},

		"A rejected status should be terminal rejected.": {
			raw:      model.RawResponse{"status": "REJECTED"},
			expState: "rejected",
			expOut:   model.OutcomeFailed,
			expKind:  model.FailureKindDomain,
			expMsg:   "Proposal rejected",
		},

		"A rejected with feedback status should be terminal rejected.": {
			raw:      model.RawResponse{"status": "REJECTED_WITH_FEEDBACK", "message": "not now"},
			expState: "rejected",
			expOut:   model.OutcomeFailed,
			expKind:  model.FailureKindDomain,
			expMsg:   "not now",
		},

		"A direct proposal should wait for review.": {
			raw: model.RawResponse{
				"status":   "proposed",
				"task_id":  "t1",
				"proposal": map[string]any{"id": "p1", "explanation": "Raise prices"},
			},
			expState: "awaiting_review",
			expOut:   model.OutcomeSucceeded,
			expSts: func(t *testing.T, s model.NormalizedStatus) {
				assert.Equal(t, "Raise prices", s.Content)
				assert.Equal(t, model.OperationHandle{TaskID: "t1", SecondaryID: "p1"}, s.Handle)
			},
		},

		"A legacy flat proposal should wait for review.": {
			raw: model.RawResponse{
				"proposal_id":      "p1",
				"explanation":      "Discount",
				"parameters":       map[string]any{"pct": float64(10)},
				"expected_outcome": "More sales",
			},
			expState: "awaiting_review",
			expOut:   model.OutcomeSucceeded,
			expSts: func(t *testing.T, s model.NormalizedStatus) {
				assert.Equal(t, "Discount", s.Content)
				assert.Equal(t, "p1", s.Payload["id"])
				assert.Equal(t, "More sales", s.Payload["expected_outcome"])
			},
		},

		"A direct result should succeed.": {
			raw:      model.RawResponse{"status": "completed", "result": map[string]any{"message": "done"}},
			expState: "succeeded",
			expOut:   model.OutcomeSucceeded,
			expSts: func(t *testing.T, s model.NormalizedStatus) {
				assert.Equal(t, "done", s.Content)
			},
		},

		"A failed status should fail with the domain error.": {
			raw:      model.RawResponse{"status": "failed", "error": "no shop"},
			expState: "failed",
			expOut:   model.OutcomeFailed,
			expKind:  model.FailureKindDomain,
			expMsg:   "no shop",
		},

		"An unknown status should fail as unrecognized.": {
			raw:      model.RawResponse{"status": "bogus"},
			expState: "failed",
			expOut:   model.OutcomeFailed,
			expKind:  model.FailureKindUnrecognizedStatus,
			expMsg:   "Unexpected status: bogus",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			got := lifecycle.InterpretProposal(test.raw)
			assert.Equal(test.expState, got.State)
			assert.Equal(test.expOut, got.Outcome)
			assert.Equal(test.expKind, got.FailureKind)
			assert.Equal(test.expMsg, got.ErrorMessage)
			if test.expSts != nil {
				test.expSts(t, got)
			}
		})
	}
}

func TestProposalLifecycle(t *testing.T) {
	proposalReady := model.NormalizedStatus{
		State:   "awaiting_review",
		Outcome: model.OutcomeSucceeded,
		Payload: map[string]any{"id": "p1"},
		Handle:  model.OperationHandle{SecondaryID: "p1"},
	}

	t.Run("A proposal should be reviewed, refined, approved and succeed.", func(t *testing.T) {
		require := require.New(t)
		assert := assert.New(t)

		p := lifecycle.NewProposal()
		require.NoError(p.Begin(model.OperationHandle{TaskID: "t1"}))
		assert.Equal(lifecycle.ProposalStateProcessing, p.State())

		require.NoError(p.Apply(proposalReady))
		assert.Equal(lifecycle.ProposalStateAwaitingReview, p.State())
		assert.Equal(model.OperationHandle{TaskID: "t1", SecondaryID: "p1"}, p.Handle())
		assert.Equal(map[string]any{"id": "p1"}, p.Proposal())

		require.NoError(p.Refine())
		assert.Equal(lifecycle.ProposalStateRefining, p.State())
		require.NoError(p.Apply(model.PendingStatus("refining")))
		assert.Equal(lifecycle.ProposalStateRefining, p.State())

		// The refined proposal is reviewed again.
		require.NoError(p.Apply(proposalReady))
		assert.Equal(lifecycle.ProposalStateAwaitingReview, p.State())

		require.NoError(p.Approve())
		assert.Equal(lifecycle.ProposalStateProcessing, p.State())

		require.NoError(p.Apply(model.NormalizedStatus{State: "succeeded", Outcome: model.OutcomeSucceeded, Payload: map[string]any{"ok": true}}))
		assert.Equal(lifecycle.ProposalStateSucceeded, p.State())
		assert.Equal(map[string]any{"ok": true}, p.Result())
		assert.Nil(p.Proposal())
		assert.True(p.Handle().IsZero())
	})

	t.Run("Rejecting a proposal should go back to idle discarding the handle.", func(t *testing.T) {
		require := require.New(t)
		assert := assert.New(t)

		p := lifecycle.NewProposal()
		require.NoError(p.Begin(model.OperationHandle{TaskID: "t1"}))
		require.NoError(p.Apply(proposalReady))
		require.NoError(p.Reject())

		assert.Equal(lifecycle.ProposalStateIdle, p.State())
		assert.True(p.Handle().IsZero())
		assert.Nil(p.Proposal())
	})

	t.Run("A rejected status should go back to idle discarding the handle.", func(t *testing.T) {
		require := require.New(t)
		assert := assert.New(t)

		p := lifecycle.NewProposal()
		require.NoError(p.Begin(model.OperationHandle{TaskID: "t1"}))
		require.NoError(p.Apply(lifecycle.InterpretProposal(model.RawResponse{"status": "REJECTED_WITH_FEEDBACK"})))

		assert.Equal(lifecycle.ProposalStateIdle, p.State())
		assert.True(p.Handle().IsZero())
	})

	t.Run("A failure should move to failed.", func(t *testing.T) {
		p := lifecycle.NewProposal()
		require.NoError(t, p.Begin(model.OperationHandle{TaskID: "t1"}))
		require.NoError(t, p.Apply(model.FailedStatus("failed", model.FailureKindDomain, "boom")))
		assert.Equal(t, lifecycle.ProposalStateFailed, p.State())
	})

	t.Run("Reviewing without a proposal should fail.", func(t *testing.T) {
		assert := assert.New(t)

		p := lifecycle.NewProposal()
		assert.ErrorIs(p.Approve(), model.ErrNotValid)
		assert.ErrorIs(p.Refine(), model.ErrNotValid)
		assert.ErrorIs(p.Reject(), model.ErrNotValid)
	})

	t.Run("Resuming a known proposal should put it under review.", func(t *testing.T) {
		require := require.New(t)
		assert := assert.New(t)

		p := lifecycle.NewProposal()
		require.NoError(p.Resume(model.OperationHandle{SecondaryID: "p1"}, nil))
		assert.Equal(lifecycle.ProposalStateAwaitingReview, p.State())
		require.NoError(p.Approve())
		assert.Equal(lifecycle.ProposalStateProcessing, p.State())
	})

	t.Run("Beginning while under review should fail.", func(t *testing.T) {
		p := lifecycle.NewProposal()
		require.NoError(t, p.Begin(model.OperationHandle{TaskID: "t1"}))
		require.NoError(t, p.Apply(proposalReady))
		assert.ErrorIs(t, p.Begin(model.OperationHandle{TaskID: "t2"}), model.ErrNotValid)
	})
}
