package trial

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"tribunal/internal/logging"
	"tribunal/internal/types"
)

// AgentProfile is the static persona for one debate role: display
// name, style text, system prompt, and a response-length ceiling per
// phase. Profiles are shared read-only by all turns of a run.
type AgentProfile struct {
	Role          types.AgentRole `yaml:"role"`
	Name          string          `yaml:"name"`
	Style         string          `yaml:"style"`
	SystemPrompt  string          `yaml:"system_prompt"`
	TokenCeilings map[Phase]int   `yaml:"token_ceilings"`
}

// Ceiling returns the response-length ceiling for a phase, falling
// back to the default when the profile does not override it.
func (p *AgentProfile) Ceiling(phase Phase) int {
	if n, ok := p.TokenCeilings[phase]; ok && n > 0 {
		return n
	}
	if n, ok := defaultCeilings[phase]; ok {
		return n
	}
	return 400
}

var defaultCeilings = map[Phase]int{
	PhaseOpening:      400,
	PhaseExamination:  500,
	PhaseCross:        400,
	PhaseClosing:      450,
	PhaseDeliberation: 500,
	PhaseVerdict:      400,
}

func defaultProfiles() map[types.AgentRole]*AgentProfile {
	return map[types.AgentRole]*AgentProfile{
		types.RoleJudge: {
			Role:  types.RoleJudge,
			Name:  "Judge Wexler",
			Style: "Measured, formal, impartial. Keeps counsel on topic.",
			SystemPrompt: "You are the presiding judge in a courtroom simulation. " +
				"You run the proceedings, weigh the arguments of both sides, and " +
				"ultimately deliver a verdict. Remain impartial until your ruling. " +
				"Speak in a measured, formal register.",
		},
		types.RoleProsecution: {
			Role:  types.RoleProsecution,
			Name:  "Prosecutor Vance",
			Style: "Sharp, methodical, evidence-driven.",
			SystemPrompt: "You are the prosecuting counsel in a courtroom simulation. " +
				"Your job is to establish the claim from the evidence on record. " +
				"Argue methodically, cite the evidence, and press weaknesses in " +
				"the defense's position.",
		},
		types.RoleDefense: {
			Role:  types.RoleDefense,
			Name:  "Counsel Okafor",
			Style: "Persuasive, skeptical of overreach, protective of the burden of proof.",
			SystemPrompt: "You are the defense counsel in a courtroom simulation. " +
				"Your job is to test the prosecution's case and hold it to its " +
				"burden of proof. Challenge inference chains, highlight gaps in " +
				"the evidence, and advocate for your client.",
		},
	}
}

// ProfileSet holds the three agent profiles and supports atomic
// replacement when the profile directory changes on disk.
type ProfileSet struct {
	mu       sync.RWMutex
	profiles map[types.AgentRole]*AgentProfile
	dir      string
}

// NewProfileSet returns the built-in profiles, overlaid with any YAML
// files found in dir (one file per role, e.g. judge.yaml). An empty
// dir means built-ins only.
func NewProfileSet(dir string) (*ProfileSet, error) {
	ps := &ProfileSet{profiles: defaultProfiles(), dir: dir}
	if dir != "" {
		if err := ps.loadDir(); err != nil {
			return nil, err
		}
	}
	return ps, nil
}

// Get returns the profile for a role.
func (ps *ProfileSet) Get(role types.AgentRole) *AgentProfile {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.profiles[role]
}

// Reload re-reads the profile directory, replacing the set wholesale.
// Called by the watcher when a profile file changes.
func (ps *ProfileSet) Reload() error {
	if ps.dir == "" {
		return nil
	}
	return ps.loadDir()
}

func (ps *ProfileSet) loadDir() error {
	entries, err := os.ReadDir(ps.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read profile dir: %w", err)
	}

	next := defaultProfiles()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		path := filepath.Join(ps.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read profile %s: %w", name, err)
		}
		var p AgentProfile
		if err := yaml.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("failed to parse profile %s: %w", name, err)
		}
		if p.Role == "" {
			p.Role = types.AgentRole(strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml"))
		}
		base, ok := next[p.Role]
		if !ok {
			logging.Trial("ignoring profile %s: unknown role %q", name, p.Role)
			continue
		}
		merged := *base
		if p.Name != "" {
			merged.Name = p.Name
		}
		if p.Style != "" {
			merged.Style = p.Style
		}
		if p.SystemPrompt != "" {
			merged.SystemPrompt = p.SystemPrompt
		}
		if len(p.TokenCeilings) > 0 {
			merged.TokenCeilings = p.TokenCeilings
		}
		next[p.Role] = &merged
		logging.TrialDebug("loaded profile override: role=%s file=%s", p.Role, name)
	}

	ps.mu.Lock()
	ps.profiles = next
	ps.mu.Unlock()
	return nil
}
