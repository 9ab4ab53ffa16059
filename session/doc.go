// Package session houses concrete implementations of core.SessionStore. The
// contract and the persisted core.Message live in core so agents and the
// runner never depend on a concrete backend.
//
// InMemoryStore keeps messages in process memory. Durable backends live in
// sub-packages (see session/sqlite); only the wiring layer decides which
// implementation to instantiate.
package session
