package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey struct{ name string }

var (
	loggerKey = ctxKey{"logger"}
	runIDKey  = ctxKey{"run_id"}
)

// nop is returned when no logger was attached: packages stay silent unless
// the caller asks for logs.
var nop = zerolog.Nop()

// WithLogger attaches logger to ctx. A nil logger detaches.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger attached to ctx, or a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && l != nil {
			return l
		}
	}
	return &nop
}

// Ctx is FromContext.
func Ctx(ctx context.Context) *zerolog.Logger { return FromContext(ctx) }

// WithRunID records the run id in ctx and tags its logger with run_id.
func WithRunID(ctx context.Context, id string) context.Context {
	return tag(context.WithValue(ctx, runIDKey, id), "run_id", id)
}

// RunID returns the run id recorded by WithRunID.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// WithStage tags the context logger with the run stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return tag(ctx, "stage", stage)
}

// WithObject tags the context logger with a CRM object name.
func WithObject(ctx context.Context, object string) context.Context {
	return tag(ctx, "object", object)
}

func tag(ctx context.Context, key, value string) context.Context {
	l := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, &l)
}
