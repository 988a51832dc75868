package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/poferraz/motion-lite/internal/plan"
	"github.com/poferraz/motion-lite/internal/state"
)

// sessionSummary is one list_sessions entry: enough to pick a session
// without pulling its exercises.
type sessionSummary struct {
	Name          string     `json:"name"`
	ExerciseCount int        `json:"exercise_count"`
	SetsTotal     int        `json:"sets_total"`
	SetsDone      int        `json:"sets_done"`
	Selected      bool       `json:"selected"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// exerciseView is one exercise with stored check state and any override
// attached. CheckedSets always has exactly Sets entries.
type exerciseView struct {
	plan.Exercise
	CheckedSets []bool          `json:"checked_sets"`
	Override    *state.Override `json:"override,omitempty"`
}

// sessionView is the get_session payload.
type sessionView struct {
	Name      string         `json:"name"`
	Completed bool           `json:"completed"`
	Exercises []exerciseView `json:"exercises"`
}

// progressReport is the get_progress payload: totals across the whole plan
// plus the per-session breakdown.
type progressReport struct {
	SetsTotal int              `json:"sets_total"`
	SetsDone  int              `json:"sets_done"`
	Sessions  []sessionSummary `json:"sessions"`
}

// summarizeSessions reduces every session in the plan to its summary,
// covering the whole document rather than only the selected names.
func summarizeSessions(snap *state.Snapshot) []sessionSummary {
	sessions := plan.BuildSessions(snap.Rows, snap.SessionNames)
	summaries := make([]sessionSummary, 0, len(sessions))
	for _, s := range sessions {
		sum := sessionSummary{
			Name:          s.Name,
			ExerciseCount: len(s.Exercises),
			Selected:      containsName(snap.SelectedSessions, s.Name),
		}
		if c, ok := snap.Completions[s.Name]; ok {
			sum.Completed = true
			at := c.CompletedAt
			sum.CompletedAt = &at
		}
		for _, ex := range s.Exercises {
			sum.SetsTotal += ex.Sets
			sum.SetsDone += checkedCount(snap.CheckedSets[s.Name][ex.ID], ex.Sets)
		}
		summaries = append(summaries, sum)
	}
	return summaries
}

// viewSession merges stored progress into one session. Stored flags beyond
// the exercise's set count are dropped, missing ones read false.
func viewSession(s plan.Session, snap *state.Snapshot) sessionView {
	view := sessionView{Name: s.Name, Exercises: make([]exerciseView, 0, len(s.Exercises))}
	if _, ok := snap.Completions[s.Name]; ok {
		view.Completed = true
	}
	for _, ex := range s.Exercises {
		ev := exerciseView{Exercise: ex, CheckedSets: make([]bool, ex.Sets)}
		copy(ev.CheckedSets, snap.CheckedSets[s.Name][ex.ID])
		if ov, ok := snap.Overrides[s.Name][ex.ID]; ok {
			ev.Override = &ov
		}
		view.Exercises = append(view.Exercises, ev)
	}
	return view
}

// buildProgress totals set completion over every session summary.
func buildProgress(snap *state.Snapshot) progressReport {
	report := progressReport{Sessions: summarizeSessions(snap)}
	for _, s := range report.Sessions {
		report.SetsTotal += s.SetsTotal
		report.SetsDone += s.SetsDone
	}
	return report
}

// planDocument is the full-plan payload shared by the get_plan tool and the
// plan resource.
func planDocument(snap *state.Snapshot) map[string]any {
	return map[string]any{
		"sessions":          plan.BuildSessions(snap.Rows, snap.SessionNames),
		"selected_sessions": snap.SelectedSessions,
		"meta":              snap.CSVMeta,
	}
}

// checkedCount counts true flags, capped at the set count so stale checks
// from an older plan shape cannot overcount.
func checkedCount(flags []bool, sets int) int {
	n := 0
	for i, f := range flags {
		if i >= sets {
			break
		}
		if f {
			n++
		}
	}
	return n
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func joinDiagnostics(diags []plan.Diagnostic) string {
	msgs := make([]string, len(diags))
	for i, d := range diags {
		msgs[i] = d.String()
	}
	return strings.Join(msgs, "; ")
}

// --- Tool definitions ---

var toolListSessions = mcp.NewTool("list_sessions",
	mcp.WithDescription("List every session in the current plan with exercise counts, set completion, and whether it is selected for the active workout."),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Retrieve one session's exercises with per-set check state and any user overrides attached."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Session name exactly as listed by list_sessions (e.g. 'Day 1')")),
)

var toolGetPlan = mcp.NewTool("get_plan",
	mcp.WithDescription("Retrieve the full imported plan: every session with its exercises, the selected session names, and import metadata."),
)

var toolGetProgress = mcp.NewTool("get_progress",
	mcp.WithDescription("Set completion totals for the whole plan and per session, with completion timestamps."),
)

var toolImportPlan = mcp.NewTool("import_plan",
	mcp.WithDescription("Replace the stored plan with new CSV text. Requires Day, Exercise, Sets, Reps or Time, and Weight columns; a rejected document leaves the current plan untouched."),
	mcp.WithString("csv", mcp.Required(), mcp.Description("Plan document as CSV or TSV text, header row first")),
)

// --- Tool handlers ---

func (h *handlers) listSessions(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.ds.Snapshot(ctx)
	if err != nil {
		h.log.Error("mcp list_sessions", "error", err)
		return mcp.NewToolResultError("state load failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summarizeSessions(snap))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	snap, err := h.ds.Snapshot(ctx)
	if err != nil {
		h.log.Error("mcp get_session", "error", err)
		return mcp.NewToolResultError("state load failed: " + err.Error()), nil
	}

	if !containsName(snap.SessionNames, name) {
		return mcp.NewToolResultError("unknown session: " + name), nil
	}

	sessions := plan.BuildSessions(snap.Rows, []string{name})
	result, err := mcp.NewToolResultJSON(viewSession(sessions[0], snap))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPlan(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.ds.Snapshot(ctx)
	if err != nil {
		h.log.Error("mcp get_plan", "error", err)
		return mcp.NewToolResultError("state load failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(planDocument(snap))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgress(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.ds.Snapshot(ctx)
	if err != nil {
		h.log.Error("mcp get_progress", "error", err)
		return mcp.NewToolResultError("state load failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(buildProgress(snap))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) importPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	csvText, err := req.RequireString("csv")
	if err != nil {
		return mcp.NewToolResultError("csv parameter is required"), nil
	}

	res, err := h.ds.ImportPlan(ctx, csvText)
	if err != nil {
		h.log.Error("mcp import_plan", "error", err)
		return mcp.NewToolResultError("import failed: " + err.Error()), nil
	}
	if !res.OK() {
		return mcp.NewToolResultError("plan rejected: " + joinDiagnostics(res.Diagnostics)), nil
	}

	result, err := mcp.NewToolResultJSON(res)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
