package normalize

import (
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

// Shape is a response shape the backend is known to send.
type Shape int

const (
	// ShapeStatus is a `status` string mapped through the synonyms table.
	ShapeStatus Shape = iota
	// ShapeResult is a direct `result` field.
	ShapeResult
	// ShapeProposal is a direct `proposal` object.
	ShapeProposal
	// ShapeLegacyProposal is the flat `explanation`, `parameters`, `expected_outcome` fields.
	ShapeLegacyProposal
)

var (
	// AutopilotShapes are the shapes of autopilot create, feedback and status responses.
	AutopilotShapes = []Shape{ShapeStatus, ShapeResult, ShapeProposal, ShapeLegacyProposal}
	// ShopActionShapes are the shapes of shop action responses.
	ShopActionShapes = []Shape{ShapeStatus, ShapeResult}
)

// DecodedKind is the kind of a decoded proposal or action response.
type DecodedKind string

const (
	DecodedResult       DecodedKind = "result"
	DecodedProposal     DecodedKind = "proposal"
	DecodedStillPending DecodedKind = "still_pending"
	DecodedRejected     DecodedKind = "rejected"
	DecodedError        DecodedKind = "error"
)

// Decoded is the canonical form of a proposal or action response.
type Decoded struct {
	Kind     DecodedKind
	Status   Status
	Result   map[string]any
	Proposal map[string]any
	// Message is the error message on errors, and the human readable message otherwise.
	Message string
	// Advisory is the error text sent alongside a completed status.
	Advisory string
	// Unrecognized is true when the error comes from a status outside the synonyms table.
	Unrecognized bool
	Handle       model.OperationHandle
}

var legacyProposalKeys = []string{"explanation", "parameters", "expected_outcome"}

// Decode interprets a proposal or action response using the given ordered shapes.
func Decode(raw model.RawResponse, shapes []Shape) Decoded {
	d := Decoded{Handle: handleFromResponse(raw)}
	errMsg := errorMessage(raw)

	has := make(map[Shape]bool, len(shapes))
	for _, s := range shapes {
		has[s] = true
	}

	if has[ShapeStatus] {
		if rawStatus, ok := raw["status"]; ok && rawStatus != nil {
			statusStr, isString := rawStatus.(string)
			status, known := CanonicalStatus(statusStr)
			if !isString || !known {
				d.Kind = DecodedError
				d.Unrecognized = true
				d.Message = UnexpectedStatusMessage(rawStatus)
				return d
			}
			d.Status = status
		}
	}

	switch d.Status {
	case StatusFailed:
		// An error next to a completed result means the operation was already done.
		if result, ok := raw["result"].(map[string]any); ok && has[ShapeResult] {
			if s, _ := CanonicalStatus(stringField(result, "status")); s == StatusCompleted {
				d.Kind = DecodedResult
				d.Status = StatusCompleted
				d.Result = result
				d.Message = firstString(stringField(result, "message"), stringField(raw, "message"))
				d.Advisory = errMsg
				return d
			}
		}
		d.Kind = DecodedError
		d.Message = firstString(errMsg, stringField(raw, "message"), "Operation failed")
		return d
	case StatusRejected:
		d.Kind = DecodedRejected
		d.Message = errMsg
		if d.Message == "" {
			d.Message = stringField(raw, "message")
		}
		return d
	}

	message := stringField(raw, "message")
	for _, shape := range shapes {
		switch shape {
		case ShapeResult:
			result, ok := raw["result"]
			if !ok || result == nil || d.Status == StatusPending {
				continue
			}
			d.Kind = DecodedResult
			d.Result = resultObject(result)
			d.Message = firstString(stringField(d.Result, "message"), message)
			if d.Status == StatusCompleted {
				d.Advisory = errMsg
			}
			return d

		case ShapeProposal:
			proposal, ok := raw["proposal"].(map[string]any)
			if !ok || proposal == nil {
				continue
			}
			d.Kind = DecodedProposal
			d.Proposal = proposal
			d.Message = firstString(stringField(proposal, "explanation"), message)
			if id := stringField(proposal, "id"); id != "" && d.Handle.SecondaryID == "" {
				d.Handle.SecondaryID = id
			}
			return d

		case ShapeLegacyProposal:
			proposal := map[string]any{}
			for _, k := range legacyProposalKeys {
				if v, ok := raw[k]; ok && v != nil {
					proposal[k] = v
				}
			}
			if len(proposal) == 0 {
				continue
			}
			if d.Handle.SecondaryID != "" {
				proposal["id"] = d.Handle.SecondaryID
			}
			d.Kind = DecodedProposal
			d.Proposal = proposal
			d.Message = firstString(stringField(proposal, "explanation"), message)
			return d
		}
	}

	switch d.Status {
	case StatusCompleted:
		// Completed without a result body, completed wins over any error text.
		d.Kind = DecodedResult
		d.Result = map[string]any{}
		d.Message = message
		d.Advisory = errMsg
	case StatusProposed:
		d.Kind = DecodedError
		d.Message = "Proposal ready but no proposal was received"
	case StatusPending, StatusApproved, StatusRefining:
		d.Kind = DecodedStillPending
		d.Message = message
	default:
		// Start responses may only carry the ids of the accepted task.
		if raw["status"] == nil && errMsg == "" && !d.Handle.IsZero() {
			d.Kind = DecodedStillPending
			d.Message = message
			return d
		}
		d.Kind = DecodedError
		d.Unrecognized = true
		d.Message = UnexpectedStatusMessage(raw["status"])
		if errMsg != "" {
			d.Unrecognized = false
			d.Message = errMsg
		}
	}

	return d
}

func handleFromResponse(raw model.RawResponse) model.OperationHandle {
	return model.OperationHandle{
		TaskID:      stringField(raw, "task_id"),
		SecondaryID: firstString(stringField(raw, "proposal_id"), stringField(raw, "action_id")),
	}
}

// resultObject returns the result as an object, wrapping scalar results.
func resultObject(v any) map[string]any {
	if obj, ok := v.(map[string]any); ok {
		return obj
	}
	if s, ok := v.(string); ok {
		if obj, ok := parseLeadingObject(s); ok {
			return obj
		}
		return map[string]any{"message": s}
	}
	return map[string]any{"value": v}
}

func errorMessage(raw map[string]any) string {
	switch e := raw["error"].(type) {
	case string:
		return e
	case map[string]any:
		return firstString(stringField(e, "message"), stringField(e, "detail"))
	}
	return stringField(raw, "detail")
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
