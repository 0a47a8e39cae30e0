package ledger

import (
	"context"
	"math/big"
	"sort"
	"sync"
	"time"

	"tribunal/internal/logging"
	"tribunal/internal/types"
)

// MemoryLedger is an in-process ledger used for offline/demo operation and
// tests. It reproduces the one property of the real service the
// orchestrator must tolerate: confirmation latency. Mutations validate and
// apply against an authoritative state immediately, but reads serve a
// confirmed view that trails behind by the settle delay.
type MemoryLedger struct {
	mu     sync.Mutex
	settle time.Duration
	owner  string

	nextID int64

	// state is authoritative and current; view is what reads observe.
	state map[string]*types.Case
	view  map[string]*types.Case

	stateVersion int64
	viewVersion  int64

	adjournments map[string][]types.Adjournment

	timers map[int64]*time.Timer
}

// NewMemoryLedger creates an in-memory ledger. A zero settle delay makes
// writes visible to reads synchronously.
func NewMemoryLedger(owner string, settle time.Duration) *MemoryLedger {
	return &MemoryLedger{
		settle:       settle,
		owner:        owner,
		nextID:       1,
		state:        make(map[string]*types.Case),
		view:         make(map[string]*types.Case),
		adjournments: make(map[string][]types.Adjournment),
		timers:       make(map[int64]*time.Timer),
	}
}

// Close cancels pending confirmation timers. Confirmed state is frozen as
// of the last applied snapshot.
func (m *MemoryLedger) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for v, t := range m.timers {
		t.Stop()
		delete(m.timers, v)
	}
}

// confirmLocked schedules the current authoritative state to become
// visible to reads after the settle delay. Caller holds mu.
func (m *MemoryLedger) confirmLocked() {
	m.stateVersion++
	version := m.stateVersion
	snapshot := make(map[string]*types.Case, len(m.state))
	for k, c := range m.state {
		snapshot[k] = cloneCase(c)
	}

	if m.settle <= 0 {
		m.view = snapshot
		m.viewVersion = version
		return
	}

	m.timers[version] = time.AfterFunc(m.settle, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.timers, version)
		// Out-of-order timers must never roll the view backwards.
		if version > m.viewVersion {
			m.view = snapshot
			m.viewVersion = version
		}
	})
}

func cloneCase(c *types.Case) *types.Case {
	out := *c
	out.ID = new(big.Int).Set(c.ID)
	if c.Verdict != nil {
		v := *c.Verdict
		v.CaseID = new(big.Int).Set(c.Verdict.CaseID)
		out.Verdict = &v
	}
	return &out
}

// FileCase files a new case with status PENDING.
func (m *MemoryLedger) FileCase(ctx context.Context, filer, title, evidenceURI string) (*types.Case, error) {
	if title == "" {
		return nil, newError(KindInvalidState, "fileCase", "title required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := big.NewInt(m.nextID)
	m.nextID++

	c := &types.Case{
		ID:          id,
		Title:       title,
		Filer:       filer,
		EvidenceURI: evidenceURI,
		FiledAt:     time.Now().UTC(),
		Status:      types.StatusPending,
	}
	m.state[id.String()] = c
	m.confirmLocked()

	logging.Ledger("filed case %s (%q) for %s", id, title, filer)
	return cloneCase(c), nil
}

// GetCase returns the confirmed view of a case.
func (m *MemoryLedger) GetCase(ctx context.Context, id *big.Int) (*types.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.view[id.String()]
	if !ok {
		return nil, newError(KindNotFound, "getCase", "case %s not found", id)
	}
	return cloneCase(c), nil
}

// GetUserCases returns the confirmed view of all cases filed by an address.
func (m *MemoryLedger) GetUserCases(ctx context.Context, filer string) ([]*types.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*types.Case
	for _, c := range m.view {
		if c.Filer == filer {
			out = append(out, cloneCase(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Cmp(out[j].ID) < 0 })
	return out, nil
}

// StartTrial transitions PENDING or APPEALED to IN_TRIAL.
func (m *MemoryLedger) StartTrial(ctx context.Context, id *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.state[id.String()]
	if !ok {
		return newError(KindNotFound, "startTrial", "case %s not found", id)
	}
	switch c.Status {
	case types.StatusInTrial:
		return newError(KindAlreadyInTrial, "startTrial", "case %s already in trial", id)
	case types.StatusCompleted:
		return newError(KindAlreadyFinalized, "startTrial", "case %s already completed", id)
	}

	c.Status = types.StatusInTrial
	m.confirmLocked()
	logging.Ledger("trial started for case %s", id)
	return nil
}

// RecordVerdict records a verdict for an in-trial case. A final verdict
// completes the case; recording over a final verdict is rejected.
func (m *MemoryLedger) RecordVerdict(ctx context.Context, id *big.Int, v types.Verdict, reasoning string, final bool) error {
	if v == types.VerdictNone {
		return newError(KindInvalidState, "recordVerdict", "verdict must be GUILTY or NOT_GUILTY")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.state[id.String()]
	if !ok {
		return newError(KindNotFound, "recordVerdict", "case %s not found", id)
	}
	if c.Verdict != nil && c.Verdict.Final {
		return newError(KindAlreadyFinalized, "recordVerdict", "verdict already recorded for case %s", id)
	}
	if c.Status != types.StatusInTrial && c.Status != types.StatusAppealed {
		return newError(KindInvalidState, "recordVerdict", "case %s is %s, not in trial", id, c.Status)
	}

	c.Verdict = &types.VerdictRecord{
		CaseID:    new(big.Int).Set(id),
		Verdict:   v,
		Reasoning: reasoning,
		Final:     final,
		Recorded:  time.Now().UTC(),
	}
	if final {
		c.Status = types.StatusCompleted
	}
	m.confirmLocked()
	logging.Ledger("verdict %s recorded for case %s (final=%v)", v, id, final)
	return nil
}

// GetVerdict returns the confirmed verdict for a case.
func (m *MemoryLedger) GetVerdict(ctx context.Context, id *big.Int) (*types.VerdictRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.view[id.String()]
	if !ok {
		return nil, newError(KindNotFound, "getVerdict", "case %s not found", id)
	}
	if c.Verdict == nil {
		return nil, newError(KindNotFound, "getVerdict", "no verdict for case %s", id)
	}
	out := *c.Verdict
	out.CaseID = new(big.Int).Set(c.Verdict.CaseID)
	return &out, nil
}

// HasVerdict reports whether a confirmed verdict exists.
func (m *MemoryLedger) HasVerdict(ctx context.Context, id *big.Int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.view[id.String()]
	if !ok {
		return false, newError(KindNotFound, "hasVerdict", "case %s not found", id)
	}
	return c.Verdict != nil, nil
}

// AppealCase transitions a COMPLETED case to APPEALED.
func (m *MemoryLedger) AppealCase(ctx context.Context, id *big.Int, grounds string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.state[id.String()]
	if !ok {
		return newError(KindNotFound, "appealCase", "case %s not found", id)
	}
	if c.Status != types.StatusCompleted {
		return newError(KindInvalidState, "appealCase", "case %s is %s; only completed cases can be appealed", id, c.Status)
	}

	c.Status = types.StatusAppealed
	m.confirmLocked()
	logging.Ledger("case %s appealed: %s", id, grounds)
	return nil
}

// RequestAdjournment records an adjournment request for an in-trial case.
func (m *MemoryLedger) RequestAdjournment(ctx context.Context, id *big.Int, until time.Time, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.state[id.String()]
	if !ok {
		return newError(KindNotFound, "requestAdjournment", "case %s not found", id)
	}
	if c.Status != types.StatusInTrial {
		return newError(KindInvalidState, "requestAdjournment", "case %s is %s, not in trial", id, c.Status)
	}

	key := id.String()
	m.adjournments[key] = append(m.adjournments[key], types.Adjournment{
		CaseID:    new(big.Int).Set(id),
		Until:     until,
		Reason:    reason,
		Requested: time.Now().UTC(),
	})
	logging.Ledger("adjournment requested for case %s until %s", id, until.Format(time.RFC3339))
	return nil
}

// GetOwner returns the configured owner address.
func (m *MemoryLedger) GetOwner(ctx context.Context) (string, error) {
	return m.owner, nil
}

var _ Client = (*MemoryLedger)(nil)
