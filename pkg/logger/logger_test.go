package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/config"
)

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger(&config.LogConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("format=%s NewLogger 应成功: %v", format, err)
		}
		_ = l.Sync()
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "loud", Format: "json"}); err == nil {
		t.Error("期望无效日志级别返回错误")
	}
}

func TestFromContext_AddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := WithRequestID(context.Background(), "req-123")
	if got := RequestID(ctx); got != "req-123" {
		t.Fatalf("期望 request_id=req-123，实际=%q", got)
	}

	FromContext(ctx, base).Info("依赖不可用")
	FromContext(context.Background(), base).Info("无请求上下文")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("期望 2 条日志，实际=%d", len(entries))
	}
	if rid, ok := entries[0].ContextMap()["request_id"]; !ok || rid != "req-123" {
		t.Errorf("第一条日志应带 request_id，实际=%v", entries[0].ContextMap())
	}
	if _, ok := entries[1].ContextMap()["request_id"]; ok {
		t.Error("无请求 ID 时不应附加 request_id 字段")
	}
}
