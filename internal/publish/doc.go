// Package publish pushes the trips calendar's repository to its remote by
// shelling out to git.
//
// The workflow: find the repository root containing the document, stage
// everything, commit with a timestamped default message, and push. A push
// rejected because the remote is ahead is recovered with pull --rebase (the
// default) or push --force (explicitly requested). All git and ssh
// invocations run with prompting disabled so the process never hangs waiting
// for credentials.
//
// Command execution and user prompts sit behind the CommandExecutor and
// UserInteractor interfaces so the workflow is testable without a real
// repository.
package publish
