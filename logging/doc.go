// Package logging provides the Logger interface used by the orchestration core
// together with adapters for the common structured loggers:
//
//   - AgentLoomLogger, a slog based logger with session and tree path context
//   - ZerologAdapter for github.com/rs/zerolog
//   - ZapAdapter for go.uber.org/zap
//   - NoOpLogger for silent operation (tests, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	sess := core.NewSession(gateway, func(o *core.SessionOptions) { o.Logger = logger })
package logging
