package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaseStatusRoundTrip(t *testing.T) {
	statuses := []CaseStatus{StatusPending, StatusInTrial, StatusCompleted, StatusAppealed}
	for _, s := range statuses {
		assert.Equal(t, s, ParseCaseStatus(s.String()), "status %v should survive the wire", s)
	}
}

func TestParseCaseStatusUnknownDefaultsToPending(t *testing.T) {
	assert.Equal(t, StatusPending, ParseCaseStatus("DISMISSED"))
	assert.Equal(t, StatusPending, ParseCaseStatus(""))
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "GUILTY", VerdictGuilty.String())
	assert.Equal(t, "NOT_GUILTY", VerdictNotGuilty.String())
	assert.Equal(t, "NONE", VerdictNone.String())
}
