// Package trial runs the fixed-turn courtroom debate.
//
// A trial is a scripted sequence of eleven speaking turns across three
// role-based agents. Each turn is one completion-service call; the
// judge's final turn must produce an explicit verdict line, which is
// extracted and recorded on the ledger. Runs are cooperatively
// cancellable at every suspension point.
package trial

import "tribunal/internal/types"

// Phase labels one step of the trial script. The phase picks the
// instruction text and the response-length ceiling for the turn.
type Phase string

const (
	PhaseOpening      Phase = "Opening Argument"
	PhaseExamination  Phase = "Examination"
	PhaseCross        Phase = "Cross-Examination"
	PhaseClosing      Phase = "Closing Argument"
	PhaseDeliberation Phase = "Deliberation"
	PhaseVerdict      Phase = "Verdict"
)

// Turn is one scripted step, bound to an agent role and a phase.
type Turn struct {
	Index int
	Role  types.AgentRole
	Phase Phase
}

// Script is the fixed eleven-turn trial sequence. The order is part of
// the product contract and never varies with completion content.
var Script = [11]Turn{
	{0, types.RoleJudge, PhaseOpening},
	{1, types.RoleProsecution, PhaseOpening},
	{2, types.RoleDefense, PhaseOpening},
	{3, types.RoleProsecution, PhaseExamination},
	{4, types.RoleDefense, PhaseCross},
	{5, types.RoleDefense, PhaseExamination},
	{6, types.RoleProsecution, PhaseCross},
	{7, types.RoleProsecution, PhaseClosing},
	{8, types.RoleDefense, PhaseClosing},
	{9, types.RoleJudge, PhaseDeliberation},
	{10, types.RoleJudge, PhaseVerdict},
}

// VerdictTurnIndex is the scripted judge-verdict turn.
const VerdictTurnIndex = 10

// phaseInstructions gives the model a short task description per phase.
var phaseInstructions = map[Phase]string{
	PhaseOpening:      "Deliver your opening statement for this case.",
	PhaseExamination:  "Examine the evidence and develop your side's strongest points.",
	PhaseCross:        "Challenge the opposing side's most recent arguments directly.",
	PhaseClosing:      "Deliver your closing argument, summarizing your side's position.",
	PhaseDeliberation: "Deliberate aloud over the arguments presented by both sides.",
	PhaseVerdict:      "Deliver your final ruling on this case.",
}

// verdictInstruction is appended verbatim to the judge's final turn.
// The literal tokens are what the verdict extractor keys on.
const verdictInstruction = "\n\nIMPORTANT: This is your final ruling. Your response MUST contain " +
	"a line with exactly the literal token VERDICT: GUILTY or VERDICT: NOT GUILTY. " +
	"You may not request further evidence or defer the decision."
