// Package types holds the shared domain types for tribunal.
//
// It exists to break import cycles: the ledger client, the tool registry,
// the trial scheduler and the assistant loop all exchange these types
// without importing each other.
package types

import (
	"math/big"
	"time"
)

// CaseStatus tracks the lifecycle of a filed case on the ledger.
// Transitions are monotonic: Pending → InTrial → Completed → (Appealed).
// The orchestrator never assumes a transition happened locally; it always
// re-reads after a mutating call.
type CaseStatus int

const (
	StatusPending CaseStatus = iota
	StatusInTrial
	StatusCompleted
	StatusAppealed
)

// String returns the ledger wire name for the status.
func (s CaseStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusInTrial:
		return "IN_TRIAL"
	case StatusCompleted:
		return "COMPLETED"
	case StatusAppealed:
		return "APPEALED"
	default:
		return "UNKNOWN"
	}
}

// ParseCaseStatus maps a ledger wire name back to a CaseStatus.
// Unknown names default to StatusPending.
func ParseCaseStatus(s string) CaseStatus {
	switch s {
	case "IN_TRIAL":
		return StatusInTrial
	case "COMPLETED":
		return StatusCompleted
	case "APPEALED":
		return StatusAppealed
	default:
		return StatusPending
	}
}

// Verdict is the outcome of a trial, or None when no outcome could be
// determined from the judge's response.
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictGuilty
	VerdictNotGuilty
)

func (v Verdict) String() string {
	switch v {
	case VerdictGuilty:
		return "GUILTY"
	case VerdictNotGuilty:
		return "NOT_GUILTY"
	default:
		return "NONE"
	}
}

// Case is the orchestrator's view of a case tracked by the ledger service.
// The ledger owns the record; local copies are disposable caches rebuilt
// on demand.
type Case struct {
	// ID is the ledger's case identifier. The ledger represents it as an
	// arbitrary-precision integer, so it is carried as *big.Int end to end
	// and rendered as a decimal string on every wire.
	ID *big.Int `json:"id"`

	Title       string     `json:"title"`
	Filer       string     `json:"filer"`
	EvidenceURI string     `json:"evidence_uri"`
	FiledAt     time.Time  `json:"filed_at"`
	Status      CaseStatus `json:"status"`

	// Verdict is set once the judge has recorded an outcome.
	Verdict *VerdictRecord `json:"verdict,omitempty"`
}

// VerdictRecord is a recorded trial outcome on the ledger.
type VerdictRecord struct {
	CaseID    *big.Int  `json:"case_id"`
	Verdict   Verdict   `json:"verdict"`
	Reasoning string    `json:"reasoning"`
	Final     bool      `json:"final"`
	Recorded  time.Time `json:"recorded"`
}

// Adjournment is a requested pause of an in-trial case.
type Adjournment struct {
	CaseID    *big.Int  `json:"case_id"`
	Until     time.Time `json:"until"`
	Reason    string    `json:"reason"`
	Requested time.Time `json:"requested"`
}

// SessionContext carries the user-session state injected into the
// assistant's system prompt and into tool preconditions. The orchestrator
// never manages wallet or identity state itself; the UI layer fills this in.
type SessionContext struct {
	Connected   bool
	UserAddress string
	Privileged  bool

	// SelectedCase is the id of the currently selected case, or nil.
	SelectedCase *big.Int
}

// AgentRole identifies one of the three debate participants.
type AgentRole string

const (
	RoleProsecution AgentRole = "prosecution"
	RoleDefense     AgentRole = "defense"
	RoleJudge       AgentRole = "judge"
)
