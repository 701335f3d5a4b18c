package publish

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanroute/tripedit/internal/common"
	"github.com/vanroute/tripedit/internal/errors"
)

// Config contains configuration for a publish run
type Config struct {
	// DocumentPath is the trips.json file whose repository gets published
	DocumentPath string

	// CommitMessage overrides the default timestamped message
	CommitMessage string

	// Force pushes with --force instead of rebasing when the remote rejects
	Force bool

	// When true, disables prompts: a rejected push is resolved with
	// pull --rebase (or --force when Force is set) without asking
	NonInteractive bool
}

// Logger alias to common.Logger
type Logger = common.Logger

// Publisher stages, commits and pushes the document's repository.
type Publisher struct {
	config     Config
	logger     Logger
	executor   CommandExecutor
	interactor UserInteractor
	repoRoot   string
}

// New creates a Publisher with default dependencies
func New(config Config, logger Logger) *Publisher {
	executor := NewExecExecutor()

	var interactor UserInteractor
	if config.NonInteractive {
		interactor = NewNonInteractiveInteractor()
	} else {
		interactor = NewDefaultInteractor(logger)
	}

	return NewWithDeps(config, logger, executor, interactor)
}

// NewWithDeps creates a Publisher with custom dependencies
func NewWithDeps(
	config Config,
	logger Logger,
	executor CommandExecutor,
	interactor UserInteractor,
) *Publisher {
	return &Publisher{
		config:     config,
		logger:     logger,
		executor:   executor,
		interactor: interactor,
	}
}

// DefaultCommitMessage is the message used when the user provides none,
// e.g. "atualiza calendário (2026-02-03 14:05)".
func DefaultCommitMessage(now time.Time) string {
	return fmt.Sprintf("atualiza calendário (%s)", now.Format("2006-01-02 15:04"))
}

// IsRepository checks whether the directory containing path is inside a git
// work tree.
func IsRepository(path string) bool {
	cmd := exec.Command("git", "-C", filepath.Dir(path), "rev-parse", "--is-inside-work-tree")
	executor := NewExecExecutor()
	return executor.Execute(cmd) == nil
}

// Run publishes the repository: resolve the repo root, stage everything,
// commit, and push, recovering from a rejected push per configuration.
func (p *Publisher) Run(ctx context.Context) error {
	if err := p.resolveRepoRoot(ctx); err != nil {
		return err
	}

	msg := strings.TrimSpace(p.config.CommitMessage)
	if msg == "" {
		msg = DefaultCommitMessage(time.Now())
	}

	if err := p.stageAll(ctx); err != nil {
		return err
	}

	if err := p.commit(ctx, msg); err != nil {
		return err
	}

	return p.push(ctx)
}

// CheckSSH runs the `ssh -T git@github.com` diagnostic. GitHub closes the
// connection with a non-zero status even on success, so only the output
// decides: seeing "successfully authenticated" means the key works.
func (p *Publisher) CheckSSH(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "ssh", "-T", "-o", "BatchMode=yes", "git@github.com")
	output, err := p.executor.ExecuteWithOutput(cmd)
	if strings.Contains(strings.ToLower(output), "successfully authenticated") {
		p.logger.Success("SSH authentication to GitHub works")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "SSH authentication check failed")
	}
	p.logger.WarningToUser("Unexpected response from GitHub: %s", strings.TrimSpace(output))
	return nil
}

// resolveRepoRoot locates the git work tree containing the document.
func (p *Publisher) resolveRepoRoot(ctx context.Context) error {
	baseDir := filepath.Dir(p.config.DocumentPath)
	cmd := p.gitCommandIn(ctx, baseDir, "rev-parse", "--show-toplevel")
	output, err := p.executor.ExecuteWithOutput(cmd)
	if err != nil {
		p.logger.Info("rev-parse --show-toplevel failed in %s: %v", baseDir, err)
		return errors.Wrapf(errors.ErrNotGitRepository,
			"%s is not inside a git repository (run git init / git remote add first)", baseDir)
	}
	p.repoRoot = strings.TrimSpace(output)
	p.logger.Info("Publishing from repository root %s", p.repoRoot)
	return nil
}

// stageAll stages every change in the repository. Staging everything rather
// than just the document keeps committed assets (photos, notes) alongside
// the calendar.
func (p *Publisher) stageAll(ctx context.Context) error {
	if err := p.runGit(ctx, "add", "-A"); err != nil {
		if errors.Is(err, errors.ErrGitOperationFailed) {
			return err
		}
		return errors.NewGitError("add", []string{"-A"},
			errors.Wrap(errors.ErrGitOperationFailed, "failed to stage changes"), "")
	}
	return nil
}

// commit creates the commit. A clean tree is not an error: the user may be
// re-publishing after a failed push, so "nothing to commit" falls through to
// the push.
func (p *Publisher) commit(ctx context.Context, msg string) error {
	output, err := p.runGitWithOutput(ctx, "commit", "-m", msg)
	if err != nil {
		if strings.Contains(strings.ToLower(output), "nothing to commit") {
			p.logger.InfoToUser("Nothing new to commit - pushing existing commits")
			return nil
		}
		if errors.Is(err, errors.ErrGitOperationFailed) {
			return err
		}
		return errors.NewGitError("commit", []string{"-m", msg},
			errors.Wrap(errors.ErrGitOperationFailed, "failed to create commit"), output)
	}
	p.logger.Success("Commit created: %s", msg)
	return nil
}

// push pushes to the remote, handling the rejected/non-fast-forward case.
func (p *Publisher) push(ctx context.Context) error {
	output, err := p.runGitWithOutput(ctx, "push")
	if err == nil {
		p.logger.Success("Published to remote")
		return nil
	}

	if !isRejectedPush(output) {
		if errors.Is(err, errors.ErrGitOperationFailed) {
			return err
		}
		return errors.NewGitError("push", nil,
			errors.Wrap(errors.ErrGitOperationFailed, "failed to push"), output)
	}

	p.logger.WarningToUser("The remote has commits the local repository doesn't; push was rejected.")
	if p.shouldForcePush() {
		return p.forcePush(ctx)
	}
	return p.rebaseAndRetry(ctx)
}

// shouldForcePush decides how to recover from a rejected push. Force comes
// from the flag, or from an explicit user answer in interactive mode; the
// default recovery is the safe pull --rebase.
func (p *Publisher) shouldForcePush() bool {
	if p.config.Force {
		return true
	}
	if p.config.NonInteractive {
		return false
	}
	if p.interactor.PromptYesNo("Integrate remote changes with pull --rebase and push again? (answering no will FORCE push and overwrite the remote)") {
		return false
	}
	return p.interactor.PromptYesNo("Really overwrite the remote with git push --force?")
}

// rebaseAndRetry integrates the remote history and pushes again.
func (p *Publisher) rebaseAndRetry(ctx context.Context) error {
	p.logger.StatusMessage("🔄 Running git pull --rebase origin main ...")
	if output, err := p.runGitWithOutput(ctx, "pull", "--rebase", "origin", "main"); err != nil {
		return errors.NewGitError("pull", []string{"--rebase", "origin", "main"},
			errors.Wrap(errors.ErrGitOperationFailed, "rebase failed - resolve conflicts manually"), output)
	}

	if output, err := p.runGitWithOutput(ctx, "push"); err != nil {
		return errors.NewGitError("push", nil,
			errors.Wrap(errors.ErrGitOperationFailed, "push failed even after rebase"), output)
	}
	p.logger.Success("Published to remote after rebase")
	return nil
}

// forcePush overwrites the remote.
func (p *Publisher) forcePush(ctx context.Context) error {
	if output, err := p.runGitWithOutput(ctx, "push", "--force"); err != nil {
		return errors.NewGitError("push", []string{"--force"},
			errors.Wrap(errors.ErrGitOperationFailed, "force push failed"), output)
	}
	p.logger.Success("Force-pushed to remote")
	return nil
}

// isRejectedPush recognizes the remote-ahead rejection in git's output.
func isRejectedPush(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "fetch first") ||
		strings.Contains(lower, "rejected") ||
		strings.Contains(lower, "non-fast-forward")
}

// gitCommandIn builds a git command rooted at dir with prompting disabled, so
// a missing key or passphrase fails fast instead of hanging the process.
func (p *Publisher) gitCommandIn(ctx context.Context, dir string, args ...string) *exec.Cmd {
	baseArgs := []string{"-C", dir}
	cmd := exec.CommandContext(ctx, "git", append(baseArgs, args...)...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_SSH_COMMAND=ssh -o BatchMode=yes",
		"GIT_TERMINAL_PROMPT=0",
	)
	return cmd
}

// runGit executes a git command in the repository root.
func (p *Publisher) runGit(ctx context.Context, args ...string) error {
	return p.executor.Execute(p.gitCommandIn(ctx, p.repoRoot, args...))
}

// runGitWithOutput executes a git command in the repository root and returns
// its output.
func (p *Publisher) runGitWithOutput(ctx context.Context, args ...string) (string, error) {
	return p.executor.ExecuteWithOutput(p.gitCommandIn(ctx, p.repoRoot, args...))
}
