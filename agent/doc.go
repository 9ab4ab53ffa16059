// Package agent contains the orchestration behaviors of agentloom. Every
// agent implements core.Agent; concrete variants differ in how they build
// their model input and post-process the response:
//
//   - Simple: one model query with an optional trigger prompt. NaturalResponse,
//     Summary, FactualKnowledge and Planner are Simple configurations.
//   - Chaining: fixed pipeline of sub-agents with a fallback on failure.
//   - Manager: routes the conversation to one candidate agent by name.
//   - PlanBreakdown: decomposes the latest plan into indexed steps.
//   - Execution: bounded model/tool loop ending on a completion sentinel.
//   - Critic: bounded improve loop around a target agent.
//
// Agents hold no per-run state; all run state lives in the *core.RunContext
// passed to Run, so one agent value may serve many sessions.
package agent
