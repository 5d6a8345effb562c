package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter_JSON(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "info", "json")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	log.Debug("hidden")
	log.Info("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Expected debug message to be filtered at info level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"key":"value"`) {
		t.Errorf("Expected JSON record, got %s", out)
	}
}

func TestNew_InvalidInput(t *testing.T) {
	tests := []struct {
		level  string
		format string
	}{
		{"", "text"},
		{"info", ""},
		{"verbose", "text"},
		{"info", "xml"},
	}

	for _, tt := range tests {
		if _, err := New(tt.level, tt.format); err == nil {
			t.Errorf("Expected error for level=%q format=%q", tt.level, tt.format)
		}
	}
}
