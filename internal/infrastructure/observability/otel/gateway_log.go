package otel

import (
	"context"

	"mobipaid-gateway/internal/domain/gateway"
)

// GatewayLogger ゲートウェイ設定の「ログを有効化」に従うロガー
// 有効時はINFOレベルで記録する
// 無効時は何も出力せず、出力失敗が呼び出し元に伝播することもない
type GatewayLogger struct {
	logger  *Logger
	enabled bool
}

// NewGatewayLogger 新しいGatewayLoggerを作成
func NewGatewayLogger(logger *Logger, enabled bool) *GatewayLogger {
	return &GatewayLogger{
		logger:  logger,
		enabled: enabled,
	}
}

// Enabled ログ出力が有効かどうか
func (g *GatewayLogger) Enabled() bool {
	return g != nil && g.enabled && g.logger != nil
}

// Log メッセージを出力する（mp_tokenはマスクされる）
func (g *GatewayLogger) Log(ctx context.Context, message string, fields map[string]interface{}) {
	if !g.Enabled() {
		return
	}
	defer func() {
		_ = recover()
	}()

	redacted := redactFields(fields)
	if redacted == nil {
		redacted = make(map[string]interface{}, 1)
	}
	redacted["gateway"] = gateway.GatewayID
	g.logger.Log(ctx, LogLevelInfo, gateway.RedactToken(message), redacted)
}

// redactFields フィールド中の文字列からトークンを取り除く
func redactFields(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		return nil
	}
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = redactValue(v)
	}
	return out
}

func redactValue(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return gateway.RedactToken(val)
	case map[string]interface{}:
		return redactFields(val)
	case map[string]string:
		m := make(map[string]string, len(val))
		for k, s := range val {
			m[k] = gateway.RedactToken(s)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(val))
		for i, e := range val {
			s[i] = redactValue(e)
		}
		return s
	default:
		return v
	}
}
