// status.go implements the "qemu-eos-builder status" command.
//
// The status command reports what a build would do and what previous
// builds left behind, without running anything: the source checkout and
// its VERSION, the recipe and Dockerfile it maps to, whether the artifact
// already exists, and the state of the builder image and output container
// in Docker.
//
// Docker is queried through the Engine API without sudo. When the daemon
// is unreachable (commonly because the socket is root-only) the report
// says so instead of failing.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/qemu-eos-builder/internal/config"
	"github.com/shinji-kodama/qemu-eos-builder/internal/docker"
	"github.com/shinji-kodama/qemu-eos-builder/internal/model"
	"github.com/shinji-kodama/qemu-eos-builder/internal/source"
)

// statusFlags holds the flag values for the status command.
type statusFlags struct {
	sourceDir  string
	jsonOutput bool
	yamlOutput bool
}

// statusReport is the complete output of the status command.
type statusReport struct {
	SourceDir string `json:"sourceDir" yaml:"sourceDir"`

	// Problem is the validation or VERSION error, empty when the
	// checkout is buildable.
	Problem string `json:"problem,omitempty" yaml:"problem,omitempty"`

	Version *model.Version `json:"version,omitempty" yaml:"version,omitempty"`
	Commit  string         `json:"commit,omitempty" yaml:"commit,omitempty"`

	Recipe           string `json:"recipe,omitempty" yaml:"recipe,omitempty"`
	Dockerfile       string `json:"dockerfile,omitempty" yaml:"dockerfile,omitempty"`
	DockerfileExists bool   `json:"dockerfileExists" yaml:"dockerfileExists"`

	Artifact       string `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	ArtifactExists bool   `json:"artifactExists" yaml:"artifactExists"`

	// Recipes lists every supported major version and its recipe.
	Recipes []model.RecipeMapping `json:"recipes" yaml:"recipes"`

	Settings string `json:"settings,omitempty" yaml:"settings,omitempty"`

	Docker dockerStatus `json:"docker" yaml:"docker"`
}

// dockerStatus is the Docker half of a statusReport.
type dockerStatus struct {
	Reachable bool   `json:"reachable" yaml:"reachable"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`

	ImageName     string `json:"imageName" yaml:"imageName"`
	ContainerName string `json:"containerName" yaml:"containerName"`

	Image     *docker.ImageState     `json:"image,omitempty" yaml:"image,omitempty"`
	Container *docker.ContainerState `json:"container,omitempty" yaml:"container,omitempty"`
}

// dockerInspector is the subset of *docker.Client the status command uses.
type dockerInspector interface {
	Ping(ctx context.Context) error
	FindImage(ctx context.Context, ref string) (*docker.ImageState, error)
	FindContainer(ctx context.Context, name string) (*docker.ContainerState, error)
}

// NewStatusCommand creates the "status" cobra command.
func NewStatusCommand() *cobra.Command {
	flags := &statusFlags{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what a build would use and what previous builds left behind",
		Long: `Report the source checkout, its Qemu version and build recipe, whether
the artifact already exists in the current directory, and the state of
the builder image and output container.

Nothing is built or modified.

Examples:
  qemu-eos-builder status
  qemu-eos-builder status -s ~/src/qemu-eos --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}

	addSourceDirFlag(cmd.Flags(), &flags.sourceDir)
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&flags.yamlOutput, "yaml", false, "Output in YAML format")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")

	return cmd
}

// runStatus gathers the report and prints it in the requested format.
func runStatus(ctx context.Context, w io.Writer, flags *statusFlags) error {
	toolDir, settings, err := loadSettings()
	if err != nil {
		return err
	}

	report := collectSourceStatus(ctx, flags.sourceDir, toolDir, settings, ".")

	cli, err := docker.NewClient()
	if err != nil {
		report.Docker = dockerStatus{
			Error:         err.Error(),
			ImageName:     settings.ImageName,
			ContainerName: settings.ContainerName,
		}
	} else {
		defer func() { _ = cli.Close() }()
		report.Docker = collectDockerStatus(ctx, cli, settings)
	}

	switch {
	case flags.jsonOutput:
		return printStatusJSON(w, report)
	case flags.yamlOutput:
		return printStatusYAML(w, report)
	default:
		printStatusText(w, report)
		return nil
	}
}

// collectSourceStatus fills in everything that can be learned from the
// filesystem. workDir is where the artifact would be copied to.
func collectSourceStatus(ctx context.Context, sourceDir, toolDir string, settings config.Settings, workDir string) statusReport {
	report := statusReport{
		SourceDir: sourceDir,
		Recipes:   model.SupportedRecipes(),
		Settings:  settings.Source,
	}

	if err := source.Validate(sourceDir); err != nil {
		report.Problem = err.Error()
		return report
	}

	if head, err := source.Head(ctx, sourceDir); err == nil {
		report.Commit = head
	} else {
		VerboseLog("Could not read source commit: %v", err)
	}

	version, err := source.ReadVersion(sourceDir)
	if err != nil {
		report.Problem = err.Error()
		return report
	}
	report.Version = &version
	report.Artifact = config.ArtifactName(version.Major)
	report.ArtifactExists = fileExists(filepath.Join(workDir, report.Artifact))

	recipe, err := model.SelectRecipe(version)
	if err != nil {
		report.Problem = err.Error()
		return report
	}
	report.Recipe = recipe.String()
	report.Dockerfile = settings.DockerfilePath(toolDir, recipe)
	report.DockerfileExists = fileExists(report.Dockerfile)

	return report
}

// collectDockerStatus queries the daemon for the builder image and the
// output container. Errors are recorded in the result, never returned.
func collectDockerStatus(ctx context.Context, d dockerInspector, settings config.Settings) dockerStatus {
	status := dockerStatus{
		ImageName:     settings.ImageName,
		ContainerName: settings.ContainerName,
	}

	if err := d.Ping(ctx); err != nil {
		status.Error = err.Error()
		return status
	}
	status.Reachable = true

	img, err := d.FindImage(ctx, settings.ImageName)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Image = img

	ctr, err := d.FindContainer(ctx, settings.ContainerName)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Container = ctr

	return status
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// printStatusJSON outputs the report as indented JSON.
func printStatusJSON(w io.Writer, report statusReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printStatusYAML outputs the report as YAML.
func printStatusYAML(w io.Writer, report statusReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}
	return enc.Close()
}

// printStatusText outputs the report as aligned, human-readable lines.
func printStatusText(w io.Writer, r statusReport) {
	fmt.Fprintf(w, "Source:     %s\n", r.SourceDir)
	if r.Problem != "" {
		fmt.Fprintf(w, "Problem:    %s\n", r.Problem)
	}
	if r.Version != nil {
		if r.Commit != "" {
			fmt.Fprintf(w, "Version:    %s (commit %s)\n", r.Version, r.Commit)
		} else {
			fmt.Fprintf(w, "Version:    %s\n", r.Version)
		}
	}
	if r.Recipe != "" {
		missing := ""
		if !r.DockerfileExists {
			missing = " [missing]"
		}
		fmt.Fprintf(w, "Recipe:     %s (%s)%s\n", r.Recipe, r.Dockerfile, missing)
	}
	if r.Recipe == "" && len(r.Recipes) > 0 {
		supported := make([]string, 0, len(r.Recipes))
		for _, m := range r.Recipes {
			supported = append(supported, fmt.Sprintf("%d.x -> %s", m.Major, m.Recipe))
		}
		fmt.Fprintf(w, "Supported:  %s\n", strings.Join(supported, ", "))
	}
	if r.Artifact != "" {
		state := "not built"
		if r.ArtifactExists {
			state = "present"
		}
		fmt.Fprintf(w, "Artifact:   %s (%s)\n", r.Artifact, state)
	}
	if r.Settings != "" {
		fmt.Fprintf(w, "Settings:   %s\n", r.Settings)
	}

	d := r.Docker
	if !d.Reachable {
		fmt.Fprintf(w, "Docker:     unreachable: %s\n", d.Error)
		return
	}
	fmt.Fprintln(w, "Docker:     reachable")
	if d.Error != "" {
		fmt.Fprintf(w, "  Error:      %s\n", d.Error)
	}
	if d.Image != nil {
		fmt.Fprintf(w, "  Image:      %s (%s)\n", d.ImageName, shortID(d.Image.ID))
	} else {
		fmt.Fprintf(w, "  Image:      %s (absent)\n", d.ImageName)
	}
	if d.Container != nil {
		fmt.Fprintf(w, "  Container:  %s (%s)\n", d.ContainerName, d.Container.State)
	} else {
		fmt.Fprintf(w, "  Container:  %s (absent)\n", d.ContainerName)
	}
}

// shortID trims an image or container ID to the 12 hex digits the docker
// CLI shows, dropping any "sha256:" prefix.
func shortID(id string) string {
	if len(id) > 7 && id[:7] == "sha256:" {
		id = id[7:]
	}
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
