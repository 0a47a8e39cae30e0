// Package cache maintains a local view of the user's cases.
//
// The ledger is eventually consistent: a write is not visible to reads
// until it settles. Rather than merging updates field-by-field (which
// would race with in-flight writes the cache does not know about), the
// cache is always replaced wholesale from a fresh ledger read. Mutating
// tool calls schedule a detached best-effort reload after the settle
// delay.
package cache

import (
	"context"
	"math/big"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"tribunal/internal/ledger"
	"tribunal/internal/logging"
	"tribunal/internal/types"
)

// CaseCache is a read-through snapshot of one filer's cases.
type CaseCache struct {
	client      ledger.Client
	filer       string
	settleDelay time.Duration

	mu       sync.RWMutex
	cases    []*types.Case
	byID     map[string]*types.Case
	loadedAt time.Time

	group singleflight.Group
	wg    sync.WaitGroup
}

// New creates a cache for the given filer address. settleDelay is how
// long a scheduled reload waits before reading, matching the ledger's
// confirmation latency.
func New(client ledger.Client, filer string, settleDelay time.Duration) *CaseCache {
	return &CaseCache{
		client:      client,
		filer:       filer,
		settleDelay: settleDelay,
		byID:        make(map[string]*types.Case),
	}
}

// Reload fetches the case list from the ledger and replaces the cache
// wholesale. Concurrent callers are collapsed into a single fetch.
func (c *CaseCache) Reload(ctx context.Context) error {
	_, err, _ := c.group.Do("reload", func() (interface{}, error) {
		cases, err := c.client.GetUserCases(ctx, c.filer)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]*types.Case, len(cases))
		for _, cs := range cases {
			byID[cs.ID.String()] = cs
		}
		c.mu.Lock()
		c.cases = cases
		c.byID = byID
		c.loadedAt = time.Now()
		c.mu.Unlock()
		logging.Reconcile("case cache reloaded: filer=%s cases=%d", c.filer, len(cases))
		return nil, nil
	})
	return err
}

// ScheduleReload kicks off a detached reload after the settle delay.
// Failures are logged and otherwise ignored; the command or trial that
// triggered the reload is never affected by it.
func (c *CaseCache) ScheduleReload(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		timer := time.NewTimer(c.settleDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			logging.ReconcileDebug("scheduled reload cancelled: %v", ctx.Err())
			return
		case <-timer.C:
		}
		if err := c.Reload(ctx); err != nil {
			logging.Get(logging.CategoryReconcile).Warn("scheduled reload failed: %v", err)
		}
	}()
}

// Wait blocks until all scheduled reloads have finished. Test helper.
func (c *CaseCache) Wait() {
	c.wg.Wait()
}

// Snapshot returns the cached case list. The returned slice must not be
// mutated.
func (c *CaseCache) Snapshot() []*types.Case {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cases
}

// Get returns the cached case with the given id, or nil.
func (c *CaseCache) Get(id *big.Int) *types.Case {
	if id == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byID[id.String()]
}

// Len returns the number of cached cases.
func (c *CaseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cases)
}

// LoadedAt returns the time of the last successful reload, zero if the
// cache has never loaded.
func (c *CaseCache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}
