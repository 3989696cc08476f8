package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, false)

	log.Info("item added")
	log.Warn("price moved")
	log.Error("cart rejected")

	out := buf.String()
	for _, want := range []string{"[INFO] item added", "[WARN] price moved", "[ERROR] cart rejected"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLoggerTraceGatedOnDebug(t *testing.T) {
	var buf bytes.Buffer

	NewLogger(&buf, false).Trace("hidden detail")
	if buf.Len() != 0 {
		t.Errorf("trace should be suppressed without debug mode, got %q", buf.String())
	}

	NewLogger(&buf, true).Trace("visible detail")
	if !strings.Contains(buf.String(), "[TRACE] visible detail") {
		t.Errorf("trace should be emitted in debug mode, got %q", buf.String())
	}
}

func TestLoggerFormatting(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, false)

	log.Info("next attempt in %d seconds", 12)
	if !strings.Contains(buf.String(), "next attempt in 12 seconds") {
		t.Errorf("formatting args were not applied: %q", buf.String())
	}
}

func TestLoggerLiteralPercentWithoutArgs(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, false)

	// Messages without args must pass through verbatim, even with a percent.
	log.Info("100% complete")
	if !strings.Contains(buf.String(), "100% complete") {
		t.Errorf("literal message was mangled: %q", buf.String())
	}
}
