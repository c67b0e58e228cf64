// Package build sequences a containerized Qemu-EOS build.
//
// A build is five external commands run one after another:
//
//  1. archive    the source tree's archive script writes a tarball into the
//     docker build context
//  2. image      docker build, with the Dockerfile selected for the version
//  3. clean      docker rm of the previous output container (may fail)
//  4. container  docker create of a fresh, never-started output container
//  5. copy       docker cp of qemu_<major>.zip into the working directory
//
// Any failure other than in the clean stage aborts the build and is
// returned unchanged. Each command receives an explicit working directory,
// so the process's own working directory is never changed.
package build

import (
	"context"
	"path/filepath"

	"github.com/shinji-kodama/qemu-eos-builder/internal/config"
	"github.com/shinji-kodama/qemu-eos-builder/internal/docker"
	"github.com/shinji-kodama/qemu-eos-builder/internal/model"
	"github.com/shinji-kodama/qemu-eos-builder/internal/runner"
	"github.com/shinji-kodama/qemu-eos-builder/internal/source"
)

// Stage is one step of a build plan.
type Stage struct {
	// Name is a short label for logging.
	Name string

	// Command is run once for the stage.
	Command runner.Command

	// Optional stages may fail without aborting the build.
	Optional bool
}

// Result describes a completed build.
type Result struct {
	Version model.Version
	Recipe  model.Recipe

	// Artifact is the path of the extracted zip on the host.
	Artifact string
}

// Builder runs builds. The zero value is not usable; Runner and ToolDir
// must be set.
type Builder struct {
	// Runner executes each stage's command.
	Runner runner.Runner

	// Settings supplies image, container, and script names.
	Settings config.Settings

	// ToolDir is the directory the builder directory is resolved against.
	ToolDir string

	// WorkDir receives the artifact. Empty means the current directory.
	WorkDir string

	// Logf, when set, receives progress messages.
	Logf func(format string, args ...any)
}

// Build reads the version of the checkout at sourceDir, selects its recipe,
// and runs the build plan.
//
// Version and recipe errors are returned before any command runs.
func (b *Builder) Build(ctx context.Context, sourceDir string) (*Result, error) {
	version, err := source.ReadVersion(sourceDir)
	if err != nil {
		return nil, err
	}

	recipe, err := model.SelectRecipe(version)
	if err != nil {
		return nil, err
	}
	b.logf("Qemu %s: using recipe %s", version, recipe)

	for _, stage := range b.Plan(sourceDir, version, recipe) {
		b.logf("Stage %s", stage.Name)
		if err := b.Runner.Run(ctx, stage.Command); err != nil {
			if stage.Optional {
				// Expected on the first run, when no output container exists yet.
				b.logf("Ignoring failed stage %s: %v", stage.Name, err)
				continue
			}
			return nil, err
		}
	}

	return &Result{
		Version:  version,
		Recipe:   recipe,
		Artifact: filepath.Join(b.WorkDir, config.ArtifactName(version.Major)),
	}, nil
}

// Plan returns the ordered stages for building the given version.
func (b *Builder) Plan(sourceDir string, version model.Version, recipe model.Recipe) []Stage {
	s := b.Settings
	engine := docker.Engine{Binary: s.Engine, Sudo: s.Sudo}

	archive := runner.Command{
		Name:         s.ArchiveScript,
		Args:         []string{s.SourceTarball(b.ToolDir, version.Major)},
		Dir:          sourceDir,
		ErrorContext: "Tarring qemu source failed: ",
	}

	return []Stage{
		{Name: "archive", Command: archive},
		{Name: "image", Command: engine.Build(s.ImageName, s.DockerfileArg(recipe), s.BuilderDir, b.ToolDir)},
		{Name: "clean", Command: engine.Remove(s.ContainerName), Optional: true},
		{Name: "container", Command: engine.Create(s.ContainerName, s.ImageName)},
		{Name: "copy", Command: engine.Copy(s.ContainerName, s.ArtifactPath(version.Major), ".", b.WorkDir)},
	}
}

func (b *Builder) logf(format string, args ...any) {
	if b.Logf != nil {
		b.Logf(format, args...)
	}
}
