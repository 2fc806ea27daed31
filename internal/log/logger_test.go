package log

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		env     string
		debug   bool
		info    bool
		warning bool
	}{
		{"prod", false, true, true},
		{"test", false, false, true},
		{"dev", true, true, true},
	}

	for _, tt := range tests {
		logger, err := NewLogger(tt.env)
		if err != nil {
			t.Fatalf("NewLogger(%q) failed: %v", tt.env, err)
		}
		core := logger.Core()
		if got := core.Enabled(zap.DebugLevel); got != tt.debug {
			t.Errorf("%s: debug enabled = %v, want %v", tt.env, got, tt.debug)
		}
		if got := core.Enabled(zap.InfoLevel); got != tt.info {
			t.Errorf("%s: info enabled = %v, want %v", tt.env, got, tt.info)
		}
		if got := core.Enabled(zap.WarnLevel); got != tt.warning {
			t.Errorf("%s: warn enabled = %v, want %v", tt.env, got, tt.warning)
		}
	}
}
