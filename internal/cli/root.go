// Package cli implements the cobra-based command line of qemu-eos-builder.
//
// The root command performs the build itself. The status and clean
// subcommands, each in its own file, inspect and tidy up what a build
// leaves behind. This file defines the root command, the shared flags,
// and the single place where errors are turned into output and an exit
// status.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/shinji-kodama/qemu-eos-builder/internal/config"
	"github.com/shinji-kodama/qemu-eos-builder/internal/model"
)

// verbose enables [verbose] trace lines on stderr. It is bound to the
// persistent -v/--verbose flag and therefore shared by all subcommands.
var verbose bool

// Build metadata, injected from the main package.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// rootFlags holds the flag values of the build (root) command.
type rootFlags struct {
	// sourceDir is the qemu-eos checkout to build.
	sourceDir string
}

// NewRootCommand creates the root command. Running it without a
// subcommand builds Qemu.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "qemu-eos-builder",
		Short: "Build Qemu with EOS support, using Docker",
		Long: `qemu-eos-builder builds the qemu-eos fork inside a Docker container.

It reads the VERSION file of the source checkout, picks the Dockerfile
matching the Qemu major version, archives the source into the docker
build context, builds the image, and copies qemu_<major>.zip out of a
freshly created container into the current directory.

Docker commands are run through sudo.

Examples:
  qemu-eos-builder
  qemu-eos-builder -s ~/src/qemu-eos
  qemu-eos-builder status
  qemu-eos-builder clean --tarballs`,

		Args: cobra.NoArgs,

		// Errors and usage are printed by Execute, in the "ERROR: " format.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), cmd.OutOrStdout(), flags.sourceDir)
		},
	}

	// The long option keeps its historical underscore spelling; the
	// normalization lets --qemu-source-dir work as well.
	rootCmd.SetGlobalNormalizationFunc(underscoreFlags)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	addSourceDirFlag(rootCmd.Flags(), &flags.sourceDir)

	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewCleanCommand())

	return rootCmd
}

// addSourceDirFlag registers -s/--qemu_source_dir on fs. The default is
// the qemu-eos sibling checkout next to the tool.
func addSourceDirFlag(fs *pflag.FlagSet, p *string) {
	def := ""
	if toolDir, err := config.ToolDir(); err == nil {
		def = config.DefaultSourceDir(toolDir)
	}
	fs.StringVarP(p, "qemu_source_dir", "s", def, "source dir for ML Qemu")
}

// underscoreFlags maps dashes in flag names to underscores.
func underscoreFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "-", "_"))
}

// Execute runs the root command and translates failures into output and
// an exit status. It is the only place errors are reported.
//
// SIGINT and SIGTERM cancel the command context, which kills any running
// child process. Nothing is cleaned up afterwards; see the clean command.
func Execute(rootCmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		printError(os.Stdout, err)
		os.Exit(int(model.ExitFailure))
	}
}

// printError writes the user-facing form of err. Errors go to standard
// output, which is where wrapper scripts have always looked for them.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "ERROR: %s\n", err)
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}
