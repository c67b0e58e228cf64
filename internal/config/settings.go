package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/qemu-eos-builder/internal/model"
)

// Default values reproduce the names the builder has always used.
const (
	DefaultEngine        = "docker"
	DefaultImageName     = "qemu_build"
	DefaultContainerName = "qemu_build_output"
	DefaultArtifactDir   = "/home/ml_builder"
	DefaultArchiveScript = "./scripts/archive-source.sh"
	DefaultBuilderDir    = "docker_builder"
)

// settingsFileNames are probed in order inside the builder directory.
// The first one that exists wins; the rest are ignored.
var settingsFileNames = []string{
	"builder.yaml",
	"builder.yml",
	"builder.jsonc",
	"builder.json",
}

// Settings holds the names and paths the build stages are assembled from.
type Settings struct {
	// Engine is the container engine CLI binary.
	Engine string `json:"engine" yaml:"engine"`

	// Sudo runs every engine command through sudo.
	Sudo bool `json:"sudo" yaml:"sudo"`

	// ImageName tags the built image.
	ImageName string `json:"image" yaml:"image"`

	// ContainerName names the non-running container the artifact is
	// copied out of.
	ContainerName string `json:"container" yaml:"container"`

	// ArtifactDir is the directory inside the image where the build
	// leaves qemu_<major>.zip.
	ArtifactDir string `json:"artifactDir" yaml:"artifactDir"`

	// ArchiveScript is the source tree's archiving script, relative to the
	// source checkout. It receives the destination tarball path.
	ArchiveScript string `json:"archiveScript" yaml:"archiveScript"`

	// BuilderDir is the docker build context, relative to the tool
	// directory unless absolute. It holds the Dockerfiles and receives the
	// source tarball.
	BuilderDir string `json:"builderDir" yaml:"builderDir"`

	// Source records which settings file was applied, if any.
	Source string `json:"-" yaml:"-"`
}

// overrides mirrors Settings with pointer fields so that a settings file
// can tell "unset" apart from an explicit false or empty value.
type overrides struct {
	Engine        *string `json:"engine" yaml:"engine"`
	Sudo          *bool   `json:"sudo" yaml:"sudo"`
	ImageName     *string `json:"image" yaml:"image"`
	ContainerName *string `json:"container" yaml:"container"`
	ArtifactDir   *string `json:"artifactDir" yaml:"artifactDir"`
	ArchiveScript *string `json:"archiveScript" yaml:"archiveScript"`
	BuilderDir    *string `json:"builderDir" yaml:"builderDir"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Engine:        DefaultEngine,
		Sudo:          true,
		ImageName:     DefaultImageName,
		ContainerName: DefaultContainerName,
		ArtifactDir:   DefaultArtifactDir,
		ArchiveScript: DefaultArchiveScript,
		BuilderDir:    DefaultBuilderDir,
	}
}

// Load returns the defaults with any settings file from the default
// builder directory under toolDir applied on top.
//
// A missing settings file is not an error. A malformed one is reported as
// a KindConfig InstallerError.
func Load(toolDir string) (Settings, error) {
	s := Defaults()
	dir := filepath.Join(toolDir, DefaultBuilderDir)

	for _, name := range settingsFileNames {
		p := filepath.Join(dir, name)
		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return s, model.WrapInstallerError(model.KindConfig,
				fmt.Sprintf("failed to read builder settings %s: %v", p, err), err)
		}

		o, err := decodeOverrides(name, data)
		if err != nil {
			return s, model.WrapInstallerError(model.KindConfig,
				fmt.Sprintf("failed to parse builder settings %s: %v", p, err), err)
		}
		s.apply(o)
		s.Source = p
		return s, nil
	}

	return s, nil
}

// decodeOverrides parses a settings file according to its extension.
// YAML files reject unknown keys so typos do not silently fall back to
// defaults. JSON files may contain comments and trailing commas.
func decodeOverrides(name string, data []byte) (overrides, error) {
	var o overrides
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&o); err != nil {
			// An empty or comment-only document decodes to io.EOF.
			if errors.Is(err, io.EOF) {
				return overrides{}, nil
			}
			return o, err
		}
	default:
		clean := jsonc.ToJSON(data)
		if len(bytes.TrimSpace(clean)) == 0 {
			return overrides{}, nil
		}
		dec := json.NewDecoder(bytes.NewReader(clean))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&o); err != nil {
			return o, err
		}
	}
	return o, nil
}

// apply copies every non-empty override onto s.
func (s *Settings) apply(o overrides) {
	setString(&s.Engine, o.Engine)
	setString(&s.ImageName, o.ImageName)
	setString(&s.ContainerName, o.ContainerName)
	setString(&s.ArtifactDir, o.ArtifactDir)
	setString(&s.ArchiveScript, o.ArchiveScript)
	setString(&s.BuilderDir, o.BuilderDir)
	if o.Sudo != nil {
		s.Sudo = *o.Sudo
	}
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

// BuilderPath returns the builder directory as an absolute path.
func (s Settings) BuilderPath(toolDir string) string {
	if filepath.IsAbs(s.BuilderDir) {
		return s.BuilderDir
	}
	return filepath.Join(toolDir, s.BuilderDir)
}

// DockerfileArg returns the -f argument for docker build: the recipe's
// Dockerfile relative to the tool directory.
func (s Settings) DockerfileArg(recipe model.Recipe) string {
	return filepath.Join(s.BuilderDir, recipe.Dockerfile())
}

// DockerfilePath returns the absolute path of the recipe's Dockerfile.
func (s Settings) DockerfilePath(toolDir string, recipe model.Recipe) string {
	return filepath.Join(s.BuilderPath(toolDir), recipe.Dockerfile())
}

// SourceTarball returns where the source archive for the given major
// version is staged inside the build context.
func (s Settings) SourceTarball(toolDir string, major int) string {
	return filepath.Join(s.BuilderPath(toolDir), fmt.Sprintf("qemu_src_%d.tar", major))
}

// ArtifactName returns the file name of the build output for a major version.
func ArtifactName(major int) string {
	return fmt.Sprintf("qemu_%d.zip", major)
}

// ArtifactPath returns the artifact's path inside the output container.
// Container paths are always slash-separated.
func (s Settings) ArtifactPath(major int) string {
	return path.Join(s.ArtifactDir, ArtifactName(major))
}
