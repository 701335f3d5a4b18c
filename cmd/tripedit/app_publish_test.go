package main

import (
	"errors"
	"testing"

	internalErrors "github.com/vanroute/tripedit/internal/errors"
)

func TestRunPublish(t *testing.T) {
	ta := newTestApp(t, []string{"publish"}, minimalDocument)

	if err := ta.run(t); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if !ta.publisher.runCalled {
		t.Errorf("Expected the publish workflow to run")
	}
	if ta.publisher.checkCalled {
		t.Errorf("Expected no SSH check without -check-ssh")
	}
}

func TestRunPublishCheckSSH(t *testing.T) {
	ta := newTestApp(t, []string{"publish", "-check-ssh"}, minimalDocument)

	if err := ta.run(t); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if !ta.publisher.checkCalled {
		t.Errorf("Expected the SSH check to run")
	}
	if ta.publisher.runCalled {
		t.Errorf("Expected -check-ssh to skip the publish workflow")
	}
}

func TestRunPublishOutsideRepository(t *testing.T) {
	ta := newTestApp(t, []string{"publish"}, minimalDocument)
	ta.app.isRepository = func(path string) bool { return false }

	err := ta.run(t)
	if !internalErrors.Is(err, internalErrors.ErrNotGitRepository) {
		t.Errorf("Expected ErrNotGitRepository, got %v", err)
	}
	if ta.publisher.runCalled {
		t.Errorf("Expected no publish attempt outside a repository")
	}
}

func TestRunPublishWithoutGit(t *testing.T) {
	ta := newTestApp(t, []string{"publish"}, minimalDocument)
	ta.app.execLookPath = func(file string) (string, error) {
		return "", errors.New("not found")
	}

	err := ta.run(t)
	if !internalErrors.Is(err, internalErrors.ErrGitOperationFailed) {
		t.Errorf("Expected ErrGitOperationFailed, got %v", err)
	}
}

func TestRunPublishPropagatesFailure(t *testing.T) {
	ta := newTestApp(t, []string{"publish"}, minimalDocument)
	ta.publisher.runErr = internalErrors.Wrap(internalErrors.ErrGitOperationFailed, "push failed")

	err := ta.run(t)
	if !internalErrors.Is(err, internalErrors.ErrGitOperationFailed) {
		t.Errorf("Expected the publish error to surface, got %v", err)
	}
}
