package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tribunal/internal/ledger"
	"tribunal/internal/types"
)

func newCourtroom(t *testing.T) (*Registry, *ledger.MemoryLedger, *types.SessionContext) {
	t.Helper()
	lc := ledger.NewMemoryLedger("0xowner", 0)
	t.Cleanup(lc.Close)
	sctx := &types.SessionContext{Connected: true, UserAddress: "0xfeed"}
	reg := NewRegistry()
	RegisterCourtroomTools(reg, lc, sctx)
	return reg, lc, sctx
}

func TestCourtroomToolSet(t *testing.T) {
	reg, _, _ := newCourtroom(t)
	assert.ElementsMatch(t, []string{
		"file_case", "get_case", "get_user_cases", "start_trial",
		"record_verdict", "get_verdict", "has_verdict", "appeal_case",
		"request_adjournment", "get_owner",
	}, reg.Names())
}

func TestFileCaseThenList(t *testing.T) {
	ctx := context.Background()
	reg, _, _ := newCourtroom(t)

	res, err := reg.Execute(ctx, "file_case", map[string]interface{}{
		"title":       "The State v. Doe",
		"evidenceUri": "ipfs://evidence",
	})
	require.NoError(t, err)
	filed := res.Value.(*types.Case)
	assert.Equal(t, "0xfeed", filed.Filer)

	res, err = reg.Execute(ctx, "get_user_cases", map[string]interface{}{})
	require.NoError(t, err)
	list := res.Value.(CaseList)
	require.Len(t, list.Cases, 1)
	assert.Equal(t, "The State v. Doe", list.Cases[0].Title)
}

func TestEmptyCaseListFormatsCleanly(t *testing.T) {
	ctx := context.Background()
	reg, _, _ := newCourtroom(t)

	res, err := reg.Execute(ctx, "get_user_cases", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "No cases found.", Format("get_user_cases", res.Value))
}

func TestMutatingToolsRequireConnection(t *testing.T) {
	ctx := context.Background()
	reg, _, sctx := newCourtroom(t)
	sctx.Connected = false

	_, err := reg.Execute(ctx, "file_case", map[string]interface{}{"title": "Nope"})
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = reg.Execute(ctx, "start_trial", map[string]interface{}{"caseId": "1"})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestTrialAndVerdictFlow(t *testing.T) {
	ctx := context.Background()
	reg, _, _ := newCourtroom(t)

	res, err := reg.Execute(ctx, "file_case", map[string]interface{}{"title": "Case X"})
	require.NoError(t, err)
	id := res.Value.(*types.Case).ID.String()

	_, err = reg.Execute(ctx, "start_trial", map[string]interface{}{"caseId": id})
	require.NoError(t, err)

	_, err = reg.Execute(ctx, "record_verdict", map[string]interface{}{
		"caseId":    id,
		"verdict":   "NOT_GUILTY",
		"reasoning": "insufficient evidence",
		"isFinal":   true,
	})
	require.NoError(t, err)

	res, err = reg.Execute(ctx, "get_verdict", map[string]interface{}{"caseId": id})
	require.NoError(t, err)
	v := res.Value.(*types.VerdictRecord)
	assert.Equal(t, types.VerdictNotGuilty, v.Verdict)
	assert.True(t, v.Final)

	res, err = reg.Execute(ctx, "has_verdict", map[string]interface{}{"caseId": id})
	require.NoError(t, err)
	assert.Equal(t, true, res.Value)
}

func TestMutatingFlags(t *testing.T) {
	reg, _, _ := newCourtroom(t)
	for _, name := range []string{"file_case", "start_trial", "record_verdict", "appeal_case", "request_adjournment"} {
		assert.True(t, reg.IsMutating(name), "%s should be mutating", name)
	}
	for _, name := range []string{"get_case", "get_user_cases", "get_verdict", "has_verdict", "get_owner"} {
		assert.False(t, reg.IsMutating(name), "%s should not be mutating", name)
	}
}

func TestGetOwner(t *testing.T) {
	reg, _, _ := newCourtroom(t)
	res, err := reg.Execute(context.Background(), "get_owner", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "0xowner", res.Value)
}
