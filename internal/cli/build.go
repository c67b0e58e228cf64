package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/shinji-kodama/qemu-eos-builder/internal/build"
	"github.com/shinji-kodama/qemu-eos-builder/internal/config"
	"github.com/shinji-kodama/qemu-eos-builder/internal/model"
	"github.com/shinji-kodama/qemu-eos-builder/internal/runner"
	"github.com/shinji-kodama/qemu-eos-builder/internal/source"
)

// runBuild wires the real runner and settings into a Builder and runs it.
func runBuild(ctx context.Context, w io.Writer, sourceDir string) error {
	toolDir, settings, err := loadSettings()
	if err != nil {
		return err
	}

	r := runner.NewExecRunner()
	r.Logf = VerboseLog

	b := &build.Builder{
		Runner:   r,
		Settings: settings,
		ToolDir:  toolDir,
		Logf:     VerboseLog,
	}
	return buildFrom(ctx, w, b, sourceDir)
}

// buildFrom validates sourceDir and runs the build. It is separate from
// runBuild so tests can supply their own Builder.
func buildFrom(ctx context.Context, w io.Writer, b *build.Builder, sourceDir string) error {
	if err := source.Validate(sourceDir); err != nil {
		return err
	}

	VerboseLog("Building from %s", sourceDir)
	result, err := b.Build(ctx, sourceDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Built %s from Qemu %s (recipe %s)\n", result.Artifact, result.Version, result.Recipe)
	return nil
}

// loadSettings resolves the tool directory and loads its settings.
func loadSettings() (string, config.Settings, error) {
	toolDir, err := config.ToolDir()
	if err != nil {
		return "", config.Settings{}, model.WrapInstallerError(model.KindConfig, err.Error(), err)
	}

	settings, err := config.Load(toolDir)
	if err != nil {
		return "", config.Settings{}, err
	}
	if settings.Source != "" {
		VerboseLog("Using builder settings from %s", settings.Source)
	}
	return toolDir, settings, nil
}
