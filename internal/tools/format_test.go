package tools

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tribunal/internal/types"
)

func TestFormatCase(t *testing.T) {
	c := &types.Case{
		ID:          big.NewInt(7),
		Title:       "The State v. Doe",
		Filer:       "0xfeed",
		EvidenceURI: "ipfs://evidence",
		FiledAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Status:      types.StatusInTrial,
	}
	out := Format("get_case", c)
	assert.Contains(t, out, "Case #7: The State v. Doe")
	assert.Contains(t, out, "IN_TRIAL")
	assert.Contains(t, out, "ipfs://evidence")
}

func TestFormatVerdictRecord(t *testing.T) {
	v := &types.VerdictRecord{
		CaseID:    big.NewInt(7),
		Verdict:   types.VerdictNotGuilty,
		Reasoning: "insufficient evidence",
		Final:     true,
	}
	out := Format("get_verdict", v)
	assert.Contains(t, out, "NOT_GUILTY")
	assert.Contains(t, out, "(final)")
	assert.Contains(t, out, "insufficient evidence")
}

func TestFormatHasVerdict(t *testing.T) {
	assert.Contains(t, Format("has_verdict", true), "has been recorded")
	assert.Contains(t, Format("has_verdict", false), "No verdict")
}

func TestFormatErrorPayload(t *testing.T) {
	out := Format("start_trial", ErrorPayload{Error: "case 7 already in trial"})
	assert.Contains(t, out, "start_trial")
	assert.Contains(t, out, "already in trial")
}

func TestFormatGenericFallback(t *testing.T) {
	out := Format("mystery", map[string]int{"answer": 42})
	assert.Contains(t, out, "mystery result")
	assert.Contains(t, out, "42")
}

func TestFormatError(t *testing.T) {
	out := FormatError("appeal_case", errors.New("not completed"))
	assert.Contains(t, out, "appeal_case")
	assert.Contains(t, out, "not completed")
}
