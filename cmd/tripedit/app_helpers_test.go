package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanroute/tripedit/internal/config"
)

// mockLogger collects every message for assertions
type mockLogger struct {
	messages []string
}

func (l *mockLogger) record(format string, args ...interface{}) {
	l.messages = append(l.messages, fmt.Sprintf(format, args...))
}

func (l *mockLogger) Info(format string, args ...interface{})          { l.record(format, args...) }
func (l *mockLogger) Warning(format string, args ...interface{})       { l.record(format, args...) }
func (l *mockLogger) Error(format string, args ...interface{})         { l.record(format, args...) }
func (l *mockLogger) InfoToUser(format string, args ...interface{})    { l.record(format, args...) }
func (l *mockLogger) WarningToUser(format string, args ...interface{}) { l.record(format, args...) }
func (l *mockLogger) Success(format string, args ...interface{})       { l.record(format, args...) }
func (l *mockLogger) StatusMessage(format string, args ...interface{}) { l.record(format, args...) }

func (l *mockLogger) saw(substr string) bool {
	for _, m := range l.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// mockLocker tracks acquire/release calls and can be scripted to fail
type mockLocker struct {
	acquireErr   error
	acquireCalls int
	releaseCalls int
}

func (m *mockLocker) Acquire() error {
	m.acquireCalls++
	return m.acquireErr
}

func (m *mockLocker) Release() error {
	m.releaseCalls++
	return nil
}

// mockPublisher records which publish entry point ran
type mockPublisher struct {
	runErr      error
	checkErr    error
	runCalled   bool
	checkCalled bool
}

func (m *mockPublisher) Run(ctx context.Context) error {
	m.runCalled = true
	return m.runErr
}

func (m *mockPublisher) CheckSSH(ctx context.Context) error {
	m.checkCalled = true
	return m.checkErr
}

// testApp bundles the app under test with its observable parts
type testApp struct {
	app       *App
	logger    *mockLogger
	locker    *mockLocker
	publisher *mockPublisher
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	docPath   string
}

const minimalDocument = `{
  "trips": [
    {
      "id": "feira",
      "date": "2026-02-03",
      "direction": "ida",
      "title": "Feira",
      "capacity": 3,
      "stops": ["Paulo Afonso-BA", "Floresta-PE", "Salgueiro-PE"],
      "bookings": [
        {"name": "Maria", "from": "Paulo Afonso-BA", "to": "Salgueiro-PE"},
        {"name": "João", "from": "Recife-PE", "to": "Salgueiro-PE"}
      ]
    },
    {
      "id": "volta",
      "date": "2026-02-05",
      "direction": "volta",
      "title": "Feira",
      "capacity": 3,
      "stops": ["Salgueiro-PE", "Floresta-PE", "Paulo Afonso-BA"],
      "bookings": []
    }
  ]
}`

// newTestApp builds an App wired to mocks around a real document on disk.
// The document content may be "" to start without a file.
func newTestApp(t *testing.T, args []string, docContent string) *testApp {
	t.Helper()

	// Keep XDG state (last-file marker, log files) inside the test
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	docPath := filepath.Join(t.TempDir(), "trips.json")
	if docContent != "" {
		if err := os.WriteFile(docPath, []byte(docContent), 0644); err != nil {
			t.Fatalf("Failed to write test document: %v", err)
		}
	}

	cfg := config.New()
	if err := cfg.ParseArguments(args); err != nil {
		t.Fatalf("Failed to parse test arguments: %v", err)
	}
	if cfg.FilePath == "" {
		cfg.FilePath = docPath
	}

	ta := &testApp{
		logger:    &mockLogger{},
		locker:    &mockLocker{},
		publisher: &mockPublisher{},
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
		docPath:   docPath,
	}

	ta.app = NewApp(AppOptions{
		Config:    cfg,
		Logger:    ta.logger,
		Locker:    ta.locker,
		Publisher: ta.publisher,
		Stdout:    ta.stdout,
		Stderr:    ta.stderr,
		Exit:      func(code int) { t.Fatalf("Unexpected exit(%d)", code) },
		ExecLookPath: func(file string) (string, error) {
			return "/usr/bin/" + file, nil
		},
		IsRepository: func(path string) bool { return true },
	})

	return ta
}

func (ta *testApp) run(t *testing.T) error {
	t.Helper()
	return ta.app.Run(context.Background())
}

func (ta *testApp) document(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(ta.docPath)
	if err != nil {
		t.Fatalf("Failed to read document: %v", err)
	}
	return string(data)
}
