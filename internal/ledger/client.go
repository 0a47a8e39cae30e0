// Package ledger provides clients for the case ledger service.
//
// The ledger owns cases, verdicts, appeals and adjournments and enforces
// its own authorization and finality rules; this package only speaks to it
// at the interface level. A defining property of the service is
// confirmation latency: writes are not immediately reflected in reads.
// Callers that need a fresh view must re-read after a settle delay (see
// internal/cache).
package ledger

import (
	"context"
	"math/big"
	"time"

	"tribunal/internal/types"
)

// Client is the minimum ledger operation set the orchestrator consumes.
// Every operation must be idempotent-tolerant from the caller's
// perspective: duplicate starts and duplicate finalizations surface as
// typed errors that IsBenignDuplicate classifies as non-fatal.
type Client interface {
	// FileCase files a new case for the given filer and returns the
	// ledger's record, including the assigned id.
	FileCase(ctx context.Context, filer, title, evidenceURI string) (*types.Case, error)

	// GetCase returns a single case by id.
	GetCase(ctx context.Context, id *big.Int) (*types.Case, error)

	// GetUserCases returns all cases filed by the given address.
	GetUserCases(ctx context.Context, filer string) ([]*types.Case, error)

	// StartTrial transitions a case from PENDING (or APPEALED) to IN_TRIAL.
	StartTrial(ctx context.Context, id *big.Int) error

	// RecordVerdict records a trial outcome. When final is true the case
	// transitions to COMPLETED and further verdicts are rejected.
	RecordVerdict(ctx context.Context, id *big.Int, v types.Verdict, reasoning string, final bool) error

	// GetVerdict returns the recorded verdict for a case.
	GetVerdict(ctx context.Context, id *big.Int) (*types.VerdictRecord, error)

	// HasVerdict reports whether a verdict has been recorded for a case.
	HasVerdict(ctx context.Context, id *big.Int) (bool, error)

	// AppealCase transitions a COMPLETED case to APPEALED.
	AppealCase(ctx context.Context, id *big.Int, grounds string) error

	// RequestAdjournment records a pause request for an in-trial case.
	RequestAdjournment(ctx context.Context, id *big.Int, until time.Time, reason string) error

	// GetOwner returns the ledger owner's address.
	GetOwner(ctx context.Context) (string, error)
}
