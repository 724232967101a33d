// Package logger builds the process-wide zerolog base logger and the per-job logger
// derived from it, following the teacher's appctx.WithLogger/GetLogger convention for
// threading a *zerolog.Logger through a context.Context.
package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds the base logger for the process from a level name ("debug", "info", ...)
// and a format ("json" or "console").
func New(level, format string) zerolog.Logger {
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		l = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(l)

	var writer = os.Stderr
	if format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: writer}).With().Timestamp().Logger()
	}
	return zerolog.New(writer).With().Timestamp().Logger()
}

// ForJob returns a child logger with job identifiers attached, for the audit-trail fields
// every driver call site logs (job_id, session_id, project_code, operator).
func ForJob(base zerolog.Logger, sessionID, jobID, projectCode, operator string) zerolog.Logger {
	return base.With().
		Str("session_id", sessionID).
		Str("job_id", jobID).
		Str("project_code", projectCode).
		Str("operator", operator).
		Logger()
}

// Audit emits an info-level event tagged audit=true, mirroring the source's
// logger.audit(...) calls at operation start/success/failure.
func Audit(l zerolog.Logger, msg string, fields map[string]interface{}) {
	ev := l.Info().Bool("audit", true)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
