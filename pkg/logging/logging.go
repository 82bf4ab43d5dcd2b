package logging

import (
	"log/slog"
	"os"

	"gitlab.com/teachcorps/recruitment-backend/pkg/env"
)

// Setup builds the process-wide logger. The returned cleanup is a hook
// for handlers that buffer, the default stdout handlers do not.
func Setup(mode env.Mode) (*slog.Logger, func()) {
	opts := &slog.HandlerOptions{Level: mode.SlogLevel()}

	var handler slog.Handler
	switch mode {
	case env.Local, env.Test:
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), func() {}
}
