package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestLogger(enabled, verbose bool) (*DefaultLogger, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	l := NewWithOutput(enabled, "", verbose, stdout, stderr)
	return l, stdout, stderr
}

func TestNew(t *testing.T) {
	l := New(false, "", true)
	if l == nil {
		t.Fatalf("New() returned nil")
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
}

func TestUserFacingMessages(t *testing.T) {
	l, stdout, stderr := newTestLogger(false, true)

	l.InfoToUser("opened %s", "trips.json")
	l.Success("saved %d trips", 3)
	l.WarningToUser("stale booking")
	l.StatusMessage("plain status")
	l.Error("broken %s", "document")

	out := stdout.String()
	if !strings.Contains(out, "ℹ️") || !strings.Contains(out, "opened trips.json") {
		t.Errorf("Expected info emoji and message on stdout, got %q", out)
	}
	if !strings.Contains(out, "✅") || !strings.Contains(out, "saved 3 trips") {
		t.Errorf("Expected success emoji and message on stdout, got %q", out)
	}
	if !strings.Contains(out, "⚠️") || !strings.Contains(out, "stale booking") {
		t.Errorf("Expected warning emoji and message on stdout, got %q", out)
	}
	if !strings.Contains(out, "plain status") {
		t.Errorf("Expected status message on stdout, got %q", out)
	}

	errOut := stderr.String()
	if !strings.Contains(errOut, "❌") || !strings.Contains(errOut, "broken document") {
		t.Errorf("Expected error emoji and message on stderr, got %q", errOut)
	}
}

func TestWarningRespectsVerbose(t *testing.T) {
	quiet, stdout, _ := newTestLogger(false, false)
	quiet.Warning("should stay quiet")
	if strings.Contains(stdout.String(), "should stay quiet") {
		t.Errorf("Expected Warning to be hidden when verbose is off")
	}

	verbose, stdout, _ := newTestLogger(false, true)
	verbose.Warning("should be visible")
	if !strings.Contains(stdout.String(), "should be visible") {
		t.Errorf("Expected Warning to show when verbose is on")
	}
}

func TestInfoIsFileOnly(t *testing.T) {
	l, stdout, _ := newTestLogger(false, true)
	l.Info("internal detail")
	if strings.Contains(stdout.String(), "internal detail") {
		t.Errorf("Expected Info to stay out of user output")
	}
}

func TestDebugLoggingWritesFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "tripedit-test.log")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	l := NewWithOutput(true, logFile, true, stdout, stderr)
	l.Info("written to the file")
	l.InfoToUser("written to both")

	if err := l.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Expected the log file to exist: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "written to the file") {
		t.Errorf("Expected Info message in log file, got %q", content)
	}
	if !strings.Contains(content, "written to both") {
		t.Errorf("Expected InfoToUser message in log file, got %q", content)
	}

	// Close is safe to call again after the file is gone
	if err := l.Close(); err != nil {
		t.Errorf("Second Close() should be a no-op, got %v", err)
	}
}

func TestSetOutputWriters(t *testing.T) {
	l, _, _ := newTestLogger(false, true)

	replacement := &bytes.Buffer{}
	l.SetStdout(replacement)
	l.Success("rerouted")
	if !strings.Contains(replacement.String(), "rerouted") {
		t.Errorf("Expected output on the replacement writer")
	}

	errReplacement := &bytes.Buffer{}
	l.SetStderr(errReplacement)
	l.Error("rerouted error")
	if !strings.Contains(errReplacement.String(), "rerouted error") {
		t.Errorf("Expected error output on the replacement writer")
	}
}
