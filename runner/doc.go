// Package runner implements the request layer of agentloom.
//
// A Runner owns the root agent, the model gateway and a core.SessionStore.
// Each call to Ask answers one question of a chat:
//   - prior messages of the chat become the session history
//   - the question is recorded as user input and the root agent runs
//   - the finished session is persisted as a core.Message
//
// Runs are tracked by session id while in flight so they can be canceled.
package runner
