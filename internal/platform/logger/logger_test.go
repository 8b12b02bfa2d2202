package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerRoutesLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerTo(&out, &errOut)

	l.Info("started")
	l.Warnf("low energy: %.1f", 0.5)
	l.Errorf("bad tick: %d", -1)
	l.Event("PATTERN_SOLVED", "session-1", "Temporal Balance +50")

	info := out.String()
	for _, want := range []string{"[CHRONO-INFO] ", "started", "[CHRONO-WARN] ", "low energy: 0.5", "[EVENT:PATTERN_SOLVED] Actor:session-1 | Temporal Balance +50"} {
		if !strings.Contains(info, want) {
			t.Errorf("stdout missing %q:\n%s", want, info)
		}
	}
	if !strings.Contains(errOut.String(), "[CHRONO-ERROR] ") || !strings.Contains(errOut.String(), "bad tick: -1") {
		t.Errorf("stderr missing error line:\n%s", errOut.String())
	}
	if strings.Contains(info, "bad tick") {
		t.Errorf("errors must not go to the info sink")
	}
	if !strings.Contains(info, "logger_test.go") {
		t.Errorf("expected caller file in output:\n%s", info)
	}
}
