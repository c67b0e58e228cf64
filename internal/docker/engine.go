package docker

import (
	"strings"

	"github.com/shinji-kodama/qemu-eos-builder/internal/runner"
)

// Engine builds container engine CLI commands.
type Engine struct {
	// Binary is the engine CLI, normally "docker".
	Binary string

	// Sudo prefixes every command with sudo.
	Sudo bool
}

// Build returns `docker build -t <tag> -f <dockerfile> <contextDir>`, run
// in dir. dockerfile and contextDir may be relative to dir.
func (e Engine) Build(tag, dockerfile, contextDir, dir string) runner.Command {
	return e.command(dir, "build", "-t", tag, "-f", dockerfile, contextDir)
}

// Remove returns `docker rm <name>`.
func (e Engine) Remove(name string) runner.Command {
	return e.command("", "rm", name)
}

// Create returns `docker create --name <name> <image>`. The container is
// created but never started; it only exists so files can be copied out.
func (e Engine) Create(name, image string) runner.Command {
	return e.command("", "create", "--name", name, image)
}

// Copy returns `docker cp <container>:<src> <dst>`, run in dir.
func (e Engine) Copy(container, src, dst, dir string) runner.Command {
	return e.command(dir, "cp", container+":"+src, dst)
}

// command assembles a subcommand invocation. The error context names the
// full prefix, e.g. "sudo docker build failed: ".
func (e Engine) command(dir, sub string, args ...string) runner.Command {
	prefix := []string{e.Binary}
	if e.Sudo {
		prefix = append([]string{"sudo"}, prefix...)
	}

	argv := make([]string, 0, len(prefix)+1+len(args))
	argv = append(argv, prefix...)
	argv = append(argv, sub)
	argv = append(argv, args...)

	return runner.Command{
		Name:         argv[0],
		Args:         argv[1:],
		Dir:          dir,
		ErrorContext: strings.Join(prefix, " ") + " " + sub + " failed: ",
	}
}
