package server

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tidwall/gjson"

	"webolla/internal/core"
	"webolla/internal/metrics"
)

// maxLineBytes bounds a single backend stream line. Chunks are a few hundred
// bytes of JSON; 1MiB leaves plenty of headroom.
const maxLineBytes = 1 << 20

// doneSentinel is the final SSE frame terminating a successful stream.
const doneSentinel = "data: [DONE]\n\n"

// relayStream re-frames the backend's newline-delimited JSON stream as
// Server-Sent-Events. Each qualifying line is forwarded raw and flushed
// immediately; nothing is buffered beyond the current line, so chunk order
// and backend formatting are preserved exactly.
func (h *Handler) relayStream(c echo.Context, stream io.Reader, action string) error {
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	flusher, ok := resp.Writer.(http.Flusher)
	if !ok {
		// Headers are committed; nothing more can be written to the client.
		slog.Error("response writer does not support flushing, cannot stream", "action", action)
		h.countRequest(action, metrics.OutcomeClientError)
		return nil
	}

	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		// A single malformed chunk must not cancel an otherwise healthy
		// generation: skip it, count it, keep reading.
		if !gjson.ValidBytes(line) {
			if h.metrics != nil {
				h.metrics.SkippedLines.Inc()
			}
			slog.Warn("skipping malformed stream line", "action", action, "bytes", len(line))
			continue
		}

		if chunkHasContent(action, line) {
			if _, err := fmt.Fprintf(resp.Writer, "data: %s\n\n", line); err != nil {
				// Client went away mid-stream; the deferred body close
				// cancels the backend call through the request context.
				slog.Debug("client write failed mid-stream", "action", action, "error", err)
				return nil
			}
			flusher.Flush()
			if h.metrics != nil {
				h.metrics.FramesForwarded.Inc()
			}
		}

		if gjson.GetBytes(line, "done").Bool() {
			_, _ = io.WriteString(resp.Writer, doneSentinel)
			flusher.Flush()
			break
		}
	}

	if err := scanner.Err(); err != nil {
		// Mid-stream backend failure: headers are long gone, so all we can
		// do is stop and record it.
		slog.Warn("backend stream ended abnormally", "action", action, "error", err)
		h.countRequest(action, metrics.OutcomeBackendErr)
		return nil
	}

	h.countRequest(action, metrics.OutcomeOK)
	return nil
}

// chunkHasContent reports whether the chunk carries incremental output for
// the given action: generate chunks use the response field, chat chunks
// carry a message with content.
func chunkHasContent(action string, line []byte) bool {
	if action == core.ActionChat {
		return gjson.GetBytes(line, "message.content").String() != ""
	}
	return gjson.GetBytes(line, "response").String() != ""
}
