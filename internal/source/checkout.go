package source

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/qemu-eos-builder/internal/model"
)

// Validate checks that dir exists as a directory and contains a .git
// directory, the proxy for "is a real qemu-eos checkout". It does not look
// at VERSION; that is ReadVersion's job.
func Validate(dir string) error {
	if !isDir(dir) {
		return model.NewInstallerError(model.KindSourceDir,
			"Qemu source dir didn't exist.  You may need to clone the qemu-eos repo.")
	}
	if !isDir(filepath.Join(dir, ".git")) {
		return model.NewInstallerError(model.KindSourceDir,
			"Qemu source dir didn't look like a git repo.  It should contain the qemu-eos repo.")
	}
	return nil
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// Head returns the abbreviated commit hash checked out in dir, using
// `git -C <dir> rev-parse --short HEAD`. It is informational only; the
// build never depends on it.
func Head(ctx context.Context, dir string) (string, error) {
	out, err := runGit(ctx, dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// runGit executes a git command against the checkout at dir and returns
// its stdout. stderr is folded into the error message on failure.
func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	// -C makes git resolve the repository from dir without changing
	// this process's working directory.
	fullArgs := append([]string{"-C", dir}, args...)

	// #nosec G204 -- args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, "git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if s := strings.TrimSpace(stderr.String()); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return "", model.WrapInstallerError(model.KindCommand, message, err)
	}

	return stdout.String(), nil
}
