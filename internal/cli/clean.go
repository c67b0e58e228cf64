// clean.go implements the "qemu-eos-builder clean" command.
//
// A build that fails or is interrupted leaves partial artifacts behind:
// the output container, the builder image, and the source tarball staged
// in the docker build context. The next build overwrites most of them,
// but clean removes them explicitly.
//
// The output container is always removed. The image and tarballs are
// removed only when asked for, since rebuilding the image is slow.

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/qemu-eos-builder/internal/config"
	"github.com/shinji-kodama/qemu-eos-builder/internal/docker"
	"github.com/shinji-kodama/qemu-eos-builder/internal/model"
)

// cleanFlags holds the flag values for the clean command.
type cleanFlags struct {
	// image also removes the builder image.
	image bool

	// tarballs also deletes staged qemu_src_*.tar files.
	tarballs bool
}

// dockerCleaner is the subset of *docker.Client the clean command uses.
type dockerCleaner interface {
	FindImage(ctx context.Context, ref string) (*docker.ImageState, error)
	FindContainer(ctx context.Context, name string) (*docker.ContainerState, error)
	RemoveContainer(ctx context.Context, id string) error
	RemoveImage(ctx context.Context, id string) error
}

// NewCleanCommand creates the "clean" cobra command.
func NewCleanCommand() *cobra.Command {
	flags := &cleanFlags{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the output container and, optionally, the image and staged tarballs",
		Long: `Remove what a previous build left behind.

The output container is always removed. --image also removes the builder
image; --tarballs deletes the source tarballs staged in the docker build
context.

Examples:
  qemu-eos-builder clean
  qemu-eos-builder clean --image --tarballs`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.image, "image", false, "Also remove the builder image")
	cmd.Flags().BoolVar(&flags.tarballs, "tarballs", false, "Also delete staged source tarballs")

	return cmd
}

// runClean removes tarballs first, since that needs no daemon, then the
// Docker resources.
func runClean(ctx context.Context, w io.Writer, flags *cleanFlags) error {
	toolDir, settings, err := loadSettings()
	if err != nil {
		return err
	}

	if flags.tarballs {
		if err := removeTarballs(w, settings.BuilderPath(toolDir)); err != nil {
			return err
		}
	}

	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}
	VerboseLog("Connected to Docker daemon")

	return cleanDocker(ctx, w, cli, settings, flags.image)
}

// cleanDocker removes the output container and, when removeImage is set,
// the builder image. Absent resources are reported, not treated as errors.
func cleanDocker(ctx context.Context, w io.Writer, d dockerCleaner, settings config.Settings, removeImage bool) error {
	ctr, err := d.FindContainer(ctx, settings.ContainerName)
	if err != nil {
		return err
	}
	if ctr == nil {
		fmt.Fprintf(w, "Container %s not found\n", settings.ContainerName)
	} else {
		if err := d.RemoveContainer(ctx, ctr.ID); err != nil {
			return err
		}
		fmt.Fprintf(w, "Removed container %s\n", settings.ContainerName)
	}

	if !removeImage {
		return nil
	}

	img, err := d.FindImage(ctx, settings.ImageName)
	if err != nil {
		return err
	}
	if img == nil {
		fmt.Fprintf(w, "Image %s not found\n", settings.ImageName)
		return nil
	}
	if err := d.RemoveImage(ctx, img.ID); err != nil {
		return err
	}
	fmt.Fprintf(w, "Removed image %s\n", settings.ImageName)
	return nil
}

// stagedTarballs lists the source tarballs in the builder directory,
// sorted by name.
func stagedTarballs(builderDir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(builderDir, "qemu_src_*.tar"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// removeTarballs deletes every staged source tarball and reports each one.
func removeTarballs(w io.Writer, builderDir string) error {
	tarballs, err := stagedTarballs(builderDir)
	if err != nil {
		return model.WrapInstallerError(model.KindFilesystem,
			fmt.Sprintf("failed to list tarballs in %s: %v", builderDir, err), err)
	}
	if len(tarballs) == 0 {
		fmt.Fprintf(w, "No staged tarballs in %s\n", builderDir)
		return nil
	}

	for _, p := range tarballs {
		if err := os.Remove(p); err != nil {
			return model.WrapInstallerError(model.KindFilesystem,
				fmt.Sprintf("failed to remove %s: %v", p, err), err)
		}
		fmt.Fprintf(w, "Removed %s\n", p)
	}
	return nil
}
