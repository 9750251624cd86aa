package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/raphaelgruber/voicejournal/internal/metrics"
)

// maxArgLogLen is the maximum length for logged arguments before truncation.
const maxArgLogLen = 200

// slowRequestThreshold is the duration above which requests are logged at
// WARN. Tool calls that reach the language model routinely take seconds.
const slowRequestThreshold = 10 * time.Second

// LoggingMiddleware logs every request with timing. Tool calls are logged
// with the tool name and timed under metrics.OpToolCall; a tool result with
// IsError counts as a failure.
func LoggingMiddleware(logger *slog.Logger, mc *metrics.Collector) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			start := time.Now()
			result, err := next(ctx, method, req)
			duration := time.Since(start)

			attrs := []any{
				"method", method,
				"duration_ms", duration.Milliseconds(),
			}
			tool := toolName(req)
			if tool != "" {
				attrs = append(attrs, "tool", tool)
				mc.RecordResult(metrics.OpToolCall, duration, toolError(result, err))
			}
			if params := formatParams(req); params != "" {
				attrs = append(attrs, "params", truncate(params, maxArgLogLen))
			}

			switch {
			case err != nil:
				attrs = append(attrs, "error", err.Error())
				logger.Error("request failed", attrs...)
			case toolError(result, nil) != nil:
				logger.Warn("tool returned error", attrs...)
			case duration > slowRequestThreshold:
				logger.Warn("slow request", attrs...)
			default:
				logger.Debug("request completed", attrs...)
			}
			return result, err
		}
	}
}

var errToolResult = fmt.Errorf("tool returned an error result")

func toolError(result mcp.Result, err error) error {
	if err != nil {
		return err
	}
	if r, ok := result.(*mcp.CallToolResult); ok && r != nil && r.IsError {
		return errToolResult
	}
	return nil
}

func toolName(req mcp.Request) string {
	if req == nil {
		return ""
	}
	if p, ok := req.GetParams().(*mcp.CallToolParamsRaw); ok && p != nil {
		return p.Name
	}
	return ""
}

func formatParams(req mcp.Request) string {
	if req == nil {
		return ""
	}
	params := req.GetParams()
	if params == nil {
		return ""
	}
	return fmt.Sprintf("%+v", params)
}

// truncate shortens s to at most maxLen bytes without splitting a rune,
// marking the cut with "...".
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
