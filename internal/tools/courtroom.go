package tools

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"tribunal/internal/ledger"
	"tribunal/internal/types"
)

// ErrNotConnected is returned by mutating tools when no wallet session is
// connected.
var ErrNotConnected = errors.New("not connected: connect a wallet before filing or mutating cases")

// RegisterCourtroomTools installs the ledger-backed tool set into the
// registry. Executors close over the ledger client and the session
// context; the session context is read fresh on every call so the UI can
// update it between commands.
func RegisterCourtroomTools(reg *Registry, lc ledger.Client, sctx *types.SessionContext) {
	reg.MustRegister(&Tool{
		Name:        "file_case",
		Description: "File a new case on the ledger. Returns the created case, including its assigned id.",
		Mutating:    true,
		Schema: Schema{Properties: map[string]Property{
			"title":       {Type: TypeString, Description: "Short title of the case"},
			"evidenceUri": {Type: TypeString, Description: "Reference to the filed evidence (URI)", Optional: true},
		}},
		Execute: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !sctx.Connected {
				return nil, ErrNotConnected
			}
			evidence, _ := args["evidenceUri"].(string)
			return lc.FileCase(ctx, sctx.UserAddress, args["title"].(string), evidence)
		},
	})

	reg.MustRegister(&Tool{
		Name:        "get_case",
		Description: "Fetch a single case by its id.",
		Schema: Schema{Properties: map[string]Property{
			"caseId": {Type: TypeBigInt, Description: "Id of the case"},
		}},
		Execute: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return lc.GetCase(ctx, args["caseId"].(*big.Int))
		},
	})

	reg.MustRegister(&Tool{
		Name:        "get_user_cases",
		Description: "List all cases filed by the connected user.",
		Schema:      Schema{Properties: map[string]Property{}},
		Execute: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			cases, err := lc.GetUserCases(ctx, sctx.UserAddress)
			if err != nil {
				return nil, err
			}
			return CaseList{Cases: cases}, nil
		},
	})

	reg.MustRegister(&Tool{
		Name:        "start_trial",
		Description: "Start the trial for a pending or appealed case.",
		Mutating:    true,
		Schema: Schema{Properties: map[string]Property{
			"caseId": {Type: TypeBigInt, Description: "Id of the case to bring to trial"},
		}},
		Execute: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !sctx.Connected {
				return nil, ErrNotConnected
			}
			id := args["caseId"].(*big.Int)
			if err := lc.StartTrial(ctx, id); err != nil {
				return nil, err
			}
			return StatusMessage{Message: fmt.Sprintf("Trial started for case %s.", id)}, nil
		},
	})

	reg.MustRegister(&Tool{
		Name:        "record_verdict",
		Description: "Record the trial outcome for a case. A final verdict completes the case.",
		Mutating:    true,
		Schema: Schema{Properties: map[string]Property{
			"caseId":  {Type: TypeBigInt, Description: "Id of the case"},
			"verdict": {Type: TypeString, Description: "The outcome", Enum: []string{"GUILTY", "NOT_GUILTY"}},
			"reasoning": {
				Type: TypeString, Description: "The judge's reasoning", Optional: true,
			},
			"isFinal": {
				Type: TypeBoolean, Description: "Whether this verdict completes the case (default true)", Optional: true,
			},
		}},
		Execute: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !sctx.Connected {
				return nil, ErrNotConnected
			}
			id := args["caseId"].(*big.Int)
			v := types.VerdictGuilty
			if args["verdict"].(string) == "NOT_GUILTY" {
				v = types.VerdictNotGuilty
			}
			reasoning, _ := args["reasoning"].(string)
			final := true
			if f, ok := args["isFinal"].(bool); ok {
				final = f
			}
			if err := lc.RecordVerdict(ctx, id, v, reasoning, final); err != nil {
				return nil, err
			}
			return StatusMessage{Message: fmt.Sprintf("Verdict %s recorded for case %s.", v, id)}, nil
		},
	})

	reg.MustRegister(&Tool{
		Name:        "get_verdict",
		Description: "Fetch the recorded verdict for a case.",
		Schema: Schema{Properties: map[string]Property{
			"caseId": {Type: TypeBigInt, Description: "Id of the case"},
		}},
		Execute: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return lc.GetVerdict(ctx, args["caseId"].(*big.Int))
		},
	})

	reg.MustRegister(&Tool{
		Name:        "has_verdict",
		Description: "Check whether a verdict has been recorded for a case.",
		Schema: Schema{Properties: map[string]Property{
			"caseId": {Type: TypeBigInt, Description: "Id of the case"},
		}},
		Execute: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return lc.HasVerdict(ctx, args["caseId"].(*big.Int))
		},
	})

	reg.MustRegister(&Tool{
		Name:        "appeal_case",
		Description: "Appeal a completed case, reopening it for retrial.",
		Mutating:    true,
		Schema: Schema{Properties: map[string]Property{
			"caseId":  {Type: TypeBigInt, Description: "Id of the case to appeal"},
			"grounds": {Type: TypeString, Description: "Grounds for the appeal", Optional: true},
		}},
		Execute: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !sctx.Connected {
				return nil, ErrNotConnected
			}
			id := args["caseId"].(*big.Int)
			grounds, _ := args["grounds"].(string)
			if err := lc.AppealCase(ctx, id, grounds); err != nil {
				return nil, err
			}
			return StatusMessage{Message: fmt.Sprintf("Case %s appealed.", id)}, nil
		},
	})

	reg.MustRegister(&Tool{
		Name:        "request_adjournment",
		Description: "Request an adjournment (pause) of an in-trial case.",
		Mutating:    true,
		Schema: Schema{Properties: map[string]Property{
			"caseId": {Type: TypeBigInt, Description: "Id of the case"},
			"hours":  {Type: TypeNumber, Description: "How many hours to adjourn for", Optional: true},
			"reason": {Type: TypeString, Description: "Reason for the adjournment", Optional: true},
		}},
		Execute: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !sctx.Connected {
				return nil, ErrNotConnected
			}
			id := args["caseId"].(*big.Int)
			hours := 24.0
			if h, ok := args["hours"].(float64); ok && h > 0 {
				hours = h
			}
			reason, _ := args["reason"].(string)
			until := time.Now().Add(time.Duration(hours * float64(time.Hour)))
			if err := lc.RequestAdjournment(ctx, id, until, reason); err != nil {
				return nil, err
			}
			return StatusMessage{Message: fmt.Sprintf("Case %s adjourned until %s.", id, until.Format(time.RFC1123))}, nil
		},
	})

	reg.MustRegister(&Tool{
		Name:        "get_owner",
		Description: "Return the ledger owner's address.",
		Schema:      Schema{Properties: map[string]Property{}},
		Execute: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return lc.GetOwner(ctx)
		},
	})
}

// CaseList wraps a case listing so the formatter can distinguish an empty
// listing from a missing one.
type CaseList struct {
	Cases []*types.Case `json:"cases"`
}

// StatusMessage is a plain confirmation result.
type StatusMessage struct {
	Message string `json:"message"`
}
