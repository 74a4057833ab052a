package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestShared(t *testing.T) {
	t.Run("NewLogger", func(t *testing.T) {
		t.Run("writes to provided writer", func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewLogger(buf)

			logger.Info("hello")

			if !strings.Contains(buf.String(), "hello") {
				t.Errorf("expected log output, got %q", buf.String())
			}
		})

		t.Run("nil writer defaults to stderr", func(t *testing.T) {
			if NewLogger(nil) == nil {
				t.Error("expected logger")
			}
		})
	})

	t.Run("WithLogger", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := WithLogger(NewLogger(buf), "session", "abc")

		logger.Info("tagged")

		output := buf.String()
		if !strings.Contains(output, "session") || !strings.Contains(output, "abc") {
			t.Errorf("expected key-value pair in output, got %q", output)
		}
	})

	t.Run("SetLogLevel", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(buf)
		SetLogLevel(logger, log.ErrorLevel)

		logger.Info("hidden")
		logger.Error("shown")

		output := buf.String()
		if strings.Contains(output, "hidden") {
			t.Error("info message should be suppressed")
		}
		if !strings.Contains(output, "shown") {
			t.Error("error message should be logged")
		}
	})

	t.Run("GenerateID", func(t *testing.T) {
		first := GenerateID()
		second := GenerateID()

		if first == "" {
			t.Fatal("expected non-empty ID")
		}
		if first == second {
			t.Error("expected unique IDs")
		}
		if len(first) != 36 {
			t.Errorf("expected UUID string length 36, got %d", len(first))
		}
	})

	t.Run("GenerateState", func(t *testing.T) {
		first, err := GenerateState()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		second, _ := GenerateState()

		if len(first) != 32 {
			t.Errorf("expected 32 hex characters, got %d", len(first))
		}
		if first == second {
			t.Error("expected unique state tokens")
		}
	})

	t.Run("MarshalJSON", func(t *testing.T) {
		t.Run("compact", func(t *testing.T) {
			out, err := MarshalJSON(map[string]int{"n": 1}, false)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if string(out) != `{"n":1}` {
				t.Errorf("expected compact JSON, got %s", out)
			}
		})

		t.Run("pretty", func(t *testing.T) {
			out, err := MarshalJSON(map[string]int{"n": 1}, true)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(string(out), "\n") {
				t.Error("expected indented JSON")
			}
		})

		t.Run("unmarshalable value fails", func(t *testing.T) {
			if _, err := MarshalJSON(make(chan int), false); err == nil {
				t.Error("expected error for channel value")
			}
		})
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		tmpDir := t.TempDir()
		logPath := filepath.Join(tmpDir, "logs", "app.log")

		logger, err := NewFileLogger(logPath)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		logger.Info("to file")

		data, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "to file") {
			t.Errorf("expected log line in file, got %q", data)
		}
	})
}
