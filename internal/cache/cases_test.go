package cache

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"tribunal/internal/ledger"
	"tribunal/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestLedger(t *testing.T, settle time.Duration) *ledger.MemoryLedger {
	t.Helper()
	ml := ledger.NewMemoryLedger("0xowner", settle)
	t.Cleanup(ml.Close)
	return ml
}

func TestReloadReplacesWholesale(t *testing.T) {
	ml := newTestLedger(t, 0)
	ctx := context.Background()

	first, err := ml.FileCase(ctx, "0xfiler", "First", "ipfs://a")
	require.NoError(t, err)

	c := New(ml, "0xfiler", 0)
	require.NoError(t, c.Reload(ctx))
	assert.Equal(t, 1, c.Len())
	assert.NotNil(t, c.Get(first.ID))

	second, err := ml.FileCase(ctx, "0xfiler", "Second", "ipfs://b")
	require.NoError(t, err)
	require.NoError(t, c.Reload(ctx))

	assert.Equal(t, 2, c.Len())
	assert.NotNil(t, c.Get(second.ID))
	assert.False(t, c.LoadedAt().IsZero())
}

func TestGetUnknownID(t *testing.T) {
	ml := newTestLedger(t, 0)
	c := New(ml, "0xfiler", 0)
	assert.Nil(t, c.Get(big.NewInt(99)))
	assert.Nil(t, c.Get(nil))
}

func TestScheduleReloadWaitsForSettle(t *testing.T) {
	ml := newTestLedger(t, 0)
	ctx := context.Background()

	_, err := ml.FileCase(ctx, "0xfiler", "Case", "ipfs://a")
	require.NoError(t, err)

	c := New(ml, "0xfiler", 20*time.Millisecond)
	c.ScheduleReload(ctx)

	// Before the settle delay the cache is still empty.
	assert.Equal(t, 0, c.Len())

	c.Wait()
	assert.Equal(t, 1, c.Len())
}

func TestScheduleReloadCancelled(t *testing.T) {
	ml := newTestLedger(t, 0)
	c := New(ml, "0xfiler", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	c.ScheduleReload(ctx)
	cancel()
	c.Wait()

	assert.Equal(t, 0, c.Len())
}

// failingLedger always errors on GetUserCases.
type failingLedger struct {
	ledger.Client
}

func (f *failingLedger) GetUserCases(ctx context.Context, filer string) ([]*types.Case, error) {
	return nil, errors.New("ledger unavailable")
}

func TestScheduledReloadFailureIsSwallowed(t *testing.T) {
	c := New(&failingLedger{}, "0xfiler", time.Millisecond)
	c.ScheduleReload(context.Background())
	c.Wait()
	assert.Equal(t, 0, c.Len())
}

func TestConcurrentReloadsCollapse(t *testing.T) {
	ml := newTestLedger(t, 0)
	ctx := context.Background()
	_, err := ml.FileCase(ctx, "0xfiler", "Case", "ipfs://a")
	require.NoError(t, err)

	c := New(ml, "0xfiler", 0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Reload(ctx))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}
