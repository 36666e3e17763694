// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var base zerolog.Logger

func init() {
	base = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// Init 设置全局 Logger 的服务名等基础字段。
// 在 main 中尽早调用一次。
func Init(serviceName string) {
	base = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Logger 返回全局 Logger，用于没有请求上下文的场景（启动、关停）。
func Logger() *zerolog.Logger {
	return &base
}

// Ctx 返回一个绑定了当前链路信息的 Logger。
// 如果 ctx 中携带了有效的 Span，日志会自动附加 trace_id/span_id，
// 这样可以在日志系统中和 Jaeger 的链路互相跳转。
func Ctx(ctx context.Context) *zerolog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return &base
	}
	l := base.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
	return &l
}
