package core

import (
	"time"

	"github.com/hupe1980/agentloom/logging"
)

// loggerAdapter binds a logging.Logger to the session and tree path of the
// scope that emits through it. Plain loggers receive session_id and
// tree_path as leading key/value pairs; an *logging.AgentLoomLogger is
// cloned with WithSession instead, so its own helpers apply.
type loggerAdapter struct {
	logger    logging.Logger
	sessionID string
	path      TreePath
	bound     bool
}

// newLoggerAdapter constructs an unscoped loggerAdapter with a non-nil logger.
func newLoggerAdapter(l logging.Logger) *loggerAdapter {
	if l == nil {
		l = logging.NoOpLogger{}
	}
	return &loggerAdapter{logger: l}
}

// scoped returns an adapter attributing every entry to sessionID and path.
// The receiver is left untouched.
func (l *loggerAdapter) scoped(sessionID string, path TreePath) *loggerAdapter {
	base := l.logger
	if al, ok := base.(*logging.AgentLoomLogger); ok {
		return &loggerAdapter{
			logger:    al.WithSession(sessionID, path.String()),
			sessionID: sessionID,
			path:      path,
			bound:     true,
		}
	}
	return &loggerAdapter{logger: base, sessionID: sessionID, path: path}
}

// Logger returns the underlying logger, already scoped when it is an
// *logging.AgentLoomLogger.
func (l *loggerAdapter) Logger() logging.Logger {
	return l.logger
}

func (l *loggerAdapter) args(args []any) []any {
	if l.bound || l.sessionID == "" {
		return args
	}

	scope := []any{"session_id", l.sessionID}
	if len(l.path) > 0 {
		scope = append(scope, "tree_path", l.path.String())
	}

	return append(scope, args...)
}

// LogDebug logs a debug message.
func (l *loggerAdapter) LogDebug(msg string, args ...any) {
	l.logger.Debug(msg, l.args(args)...)
}

// LogInfo logs an info message.
func (l *loggerAdapter) LogInfo(msg string, args ...any) {
	l.logger.Info(msg, l.args(args)...)
}

// LogWarn logs a warning message.
func (l *loggerAdapter) LogWarn(msg string, args ...any) {
	l.logger.Warn(msg, l.args(args)...)
}

// LogError logs an error message.
func (l *loggerAdapter) LogError(msg string, args ...any) {
	l.logger.Error(msg, l.args(args)...)
}

// LogModelCall reports one gateway call with its token usage.
func (l *loggerAdapter) LogModelCall(model string, u Usage, dur time.Duration, err error) {
	if al, ok := l.logger.(*logging.AgentLoomLogger); ok {
		al.WithComponent("gateway").LogLLMCall(model, u.InputTokens, u.OutputTokens, dur, err == nil, err)
		return
	}
	if err != nil {
		l.LogError("session.generate.error", "model", model, "duration_ms", dur.Milliseconds(), "error", err.Error())
		return
	}
	l.LogDebug("session.generate", "model", model,
		"input_tokens", u.InputTokens, "output_tokens", u.OutputTokens, "duration_ms", dur.Milliseconds())
}

// LogToolCall reports one tool invocation.
func (l *loggerAdapter) LogToolCall(tool string, dur time.Duration, err error) {
	if al, ok := l.logger.(*logging.AgentLoomLogger); ok {
		al.WithComponent("tool").LogToolCall(tool, dur, err == nil, err)
		return
	}
	if err != nil {
		l.LogWarn("tool.call.error", "tool", tool, "duration_ms", dur.Milliseconds(), "error", err.Error())
		return
	}
	l.LogDebug("tool.call", "tool", tool, "duration_ms", dur.Milliseconds())
}
