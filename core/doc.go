// Package core provides the orchestration engine's domain types and scopes:
//
//   - Prompt and Part, the canonical prompt model, plus Usage accounting
//   - Gateway, the single entry point to a language model provider
//   - Tool and ToolContext, invocable capabilities with declared schemas
//   - Agent, the capability shared by all orchestration behaviors
//   - Session, the root scope of one request owning usage, the active agent
//     registry and the query and operation logs
//   - RunContext, the per-invocation scope forming a tree of tree paths
//   - SessionStore, the persistence contract for finished runs
//
// Concrete agents, gateways, tools and stores live in sibling packages.
package core
