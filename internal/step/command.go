package step

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/sm2x/neos-backups/internal/domain"
)

func init() {
	Register("command", NewCommand)
}

// Command is a step that shells out. The configured commands run with the
// working directory as their current directory and receive it in
// NEOS_BACKUPS_WORKDIR, so a backup command can drop files there and a
// restore command can read them back.
type Command struct {
	name       string
	workingDir string
	backupCmd  string
	restoreCmd string
}

// NewCommand creates a command step. Options:
//
//	backup:  shell command run during backup (at least one of backup/restore required)
//	restore: shell command run during restore
func NewCommand(workingDir, name string, options map[string]any) (domain.Step, error) {
	backupCmd, err := stringOption(options, "backup")
	if err != nil {
		return nil, err
	}
	restoreCmd, err := stringOption(options, "restore")
	if err != nil {
		return nil, err
	}
	if backupCmd == "" && restoreCmd == "" {
		return nil, fmt.Errorf("command step requires a backup or restore command")
	}
	return &Command{
		name:       name,
		workingDir: workingDir,
		backupCmd:  backupCmd,
		restoreCmd: restoreCmd,
	}, nil
}

func (s *Command) Name() string { return s.name }

// Backup runs the configured backup command, if any.
func (s *Command) Backup(ctx context.Context) error {
	return s.run(ctx, s.backupCmd)
}

// Restore runs the configured restore command, if any.
func (s *Command) Restore(ctx context.Context) error {
	return s.run(ctx, s.restoreCmd)
}

func (s *Command) run(ctx context.Context, command string) error {
	if command == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = s.workingDir
	cmd.Env = append(os.Environ(), "NEOS_BACKUPS_WORKDIR="+s.workingDir)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("command failed: %w: %s", err, output)
	}
	return nil
}

func stringOption(options map[string]any, key string) (string, error) {
	raw, ok := options[key]
	if !ok {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("option %s: expected string, got %T", key, raw)
	}
	return s, nil
}
