package logger

import (
	"context"
	log "log/slog"
)

// TraceIDKey Context 中 trace_id 的 Key
const TraceIDKey = "trace_id"

// ContextHandler 从 ctx 中提取 trace_id 写入日志
type ContextHandler struct {
	log.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if traceID := TraceID(ctx); traceID != "" {
		r.AddAttrs(log.String(TraceIDKey, traceID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &ContextHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) log.Handler {
	return &ContextHandler{h.Handler.WithGroup(name)}
}

// WithTraceID 把 trace_id 放进 ctx，Kafka 消费与定时任务没有 HTTP 中间件时使用
func WithTraceID(ctx context.Context, traceID string) context.Context {
	//nolint:staticcheck
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// TraceID 读取 ctx 中的 trace_id
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}
