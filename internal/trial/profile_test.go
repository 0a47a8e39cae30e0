package trial

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tribunal/internal/types"
)

func TestDefaultProfiles(t *testing.T) {
	ps, err := NewProfileSet("")
	require.NoError(t, err)

	for _, role := range []types.AgentRole{types.RoleJudge, types.RoleProsecution, types.RoleDefense} {
		p := ps.Get(role)
		require.NotNil(t, p, "missing profile for %s", role)
		assert.Equal(t, role, p.Role)
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.SystemPrompt)
	}
}

func TestCeilingFallsBackToPhaseDefault(t *testing.T) {
	p := &AgentProfile{TokenCeilings: map[Phase]int{PhaseVerdict: 900}}
	assert.Equal(t, 900, p.Ceiling(PhaseVerdict))
	assert.Equal(t, defaultCeilings[PhaseOpening], p.Ceiling(PhaseOpening))
}

func TestProfileSetYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	override := `name: Judge Ayodele
style: Dry, laconic.
token_ceilings:
  Verdict: 600
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "judge.yaml"), []byte(override), 0o644))

	ps, err := NewProfileSet(dir)
	require.NoError(t, err)

	judge := ps.Get(types.RoleJudge)
	assert.Equal(t, "Judge Ayodele", judge.Name)
	assert.Equal(t, 600, judge.Ceiling(PhaseVerdict))
	// Fields the override omits keep the built-in values.
	assert.NotEmpty(t, judge.SystemPrompt)

	// Untouched roles keep built-ins entirely.
	assert.Equal(t, defaultProfiles()[types.RoleProsecution].Name, ps.Get(types.RoleProsecution).Name)
}

func TestProfileSetMissingDir(t *testing.T) {
	ps, err := NewProfileSet(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.NotNil(t, ps.Get(types.RoleJudge))
}

func TestProfileSetUnknownRoleIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bailiff.yaml"), []byte("name: B\n"), 0o644))

	ps, err := NewProfileSet(dir)
	require.NoError(t, err)
	assert.Len(t, ps.profiles, 3)
}

func TestProfileWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	ps, err := NewProfileSet(dir)
	require.NoError(t, err)

	w, err := WatchProfiles(ps)
	require.NoError(t, err)
	require.NotNil(t, w)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "defense.yaml"), []byte("name: Counsel Reyes\n"), 0o644))

	assert.Eventually(t, func() bool {
		return ps.Get(types.RoleDefense).Name == "Counsel Reyes"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatchProfilesNoDir(t *testing.T) {
	ps, err := NewProfileSet("")
	require.NoError(t, err)

	w, err := WatchProfiles(ps)
	require.NoError(t, err)
	assert.Nil(t, w)
	assert.NoError(t, w.Close())
}
