package log

import (
	"context"
	"log/slog"
	"net/http"

	slogctx "github.com/veqryn/slog-context"

	"github.com/flocktrack/flocktrack/internal/tenantctx"
)

func InjectRequest(ctx context.Context, r *http.Request) context.Context {
	requestID, _ := tenantctx.GetRequestID(ctx)

	return slogctx.With(ctx,
		slog.String("requestId", requestID),
		slog.Group("requestData",
			slog.String("method", r.Method),
			slog.String("host", r.Host),
			slog.String("path", r.URL.Path),
		),
	)
}

// InjectTenant attaches the resolved tenant id to the logging context. It
// runs at resolution time, not at request entry, because the tenant is not
// known until the resolver has consulted the store.
func InjectTenant(ctx context.Context, tenantID string) context.Context {
	return slogctx.With(ctx, slog.String("tenantId", tenantID))
}

func InjectWebhookEvent(ctx context.Context, messageID, eventType string) context.Context {
	return slogctx.With(ctx,
		slog.String("webhookMessageId", messageID),
		slog.String("webhookEventType", eventType),
	)
}

func ErrorAttr(err error) slog.Attr {
	return slog.Attr{
		Key:   slogctx.ErrKey,
		Value: slog.StringValue(err.Error()),
	}
}

func Debug(ctx context.Context, msg string, args ...slog.Attr) {
	slogctx.LogAttrs(ctx, slog.LevelDebug, msg, args...)
}

func Warn(ctx context.Context, msg string, args ...slog.Attr) {
	slogctx.LogAttrs(ctx, slog.LevelWarn, msg, args...)
}

func Info(ctx context.Context, msg string, args ...slog.Attr) {
	slogctx.LogAttrs(ctx, slog.LevelInfo, msg, args...)
}

func Error(ctx context.Context, msg string, err error, args ...slog.Attr) {
	args = append(args, slogctx.Err(err))

	slogctx.LogAttrs(ctx, slog.LevelError, msg, args...)
}
