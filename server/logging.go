package server

import (
	"net/http"
	"time"

	"github.com/brettbedarf/previewfs/internal/util"
	"github.com/go-chi/chi/v5/middleware"
)

// logFormatter routes chi request logs to zerolog
type logFormatter struct{}

var _ middleware.LogFormatter = logFormatter{}

func (logFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return logEntry{request: r}
}

type logEntry struct {
	request *http.Request
}

var _ middleware.LogEntry = logEntry{}

func (e logEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ any) {
	logger := util.GetLogger("Server.HTTP")
	req := e.request
	logger.Debug().
		Str("id", middleware.GetReqID(req.Context())).
		Str("method", req.Method).
		Str("uri", req.RequestURI).
		Int("status", status).
		Int("bytes", bytes).
		Dur("elapsed", elapsed).
		Msg("Request served")
}

func (e logEntry) Panic(v any, stack []byte) {
	logger := util.GetLogger("Server.HTTP")
	logger.Error().
		Str("uri", e.request.RequestURI).
		Interface("panic", v).
		Bytes("stack", stack).
		Msg("Request handler panicked")
}
