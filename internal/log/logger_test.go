package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestMaskingHandler tests that credential attributes never reach output.
func TestMaskingHandler(t *testing.T) {
	t.Parallel()

	t.Run("masks cookie values", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, Options{Verbose: true})

		logger.Info("fetching page", "url", "https://example.com/", "cookie", "session=secret123")

		out := buf.String()
		if strings.Contains(out, "secret123") {
			t.Errorf("cookie value leaked into log output: %s", out)
		}
		if !strings.Contains(out, MaskValue) {
			t.Errorf("expected mask value in output: %s", out)
		}
		if !strings.Contains(out, "https://example.com/") {
			t.Errorf("non-sensitive attribute missing from output: %s", out)
		}
	})

	t.Run("masks authorization case-insensitively", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, Options{Verbose: true})

		logger.Info("request", "Authorization", "Bearer abc")

		if strings.Contains(buf.String(), "Bearer abc") {
			t.Errorf("authorization value leaked: %s", buf.String())
		}
	})

	t.Run("masks attributes inside groups", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, Options{Verbose: true})

		logger.Info("request",
			slog.Group("headers", slog.String("cookie", "sid=42"), slog.String("accept", "text/html")),
		)

		out := buf.String()
		if strings.Contains(out, "sid=42") {
			t.Errorf("grouped cookie leaked: %s", out)
		}
		if !strings.Contains(out, "text/html") {
			t.Errorf("non-sensitive group attribute missing: %s", out)
		}
	})

	t.Run("default level suppresses debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, Options{})

		logger.Debug("noise")
		if buf.Len() != 0 {
			t.Errorf("debug output at default level: %s", buf.String())
		}

		logger.Info("signal")
		if buf.Len() == 0 {
			t.Error("info output missing at default level")
		}
	})
}
