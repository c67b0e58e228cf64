package docker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEngine_Sudo verifies the argument vectors and error contexts of each
// command with privilege elevation, the default configuration.
func TestEngine_Sudo(t *testing.T) {
	e := Engine{Binary: "docker", Sudo: true}

	build := e.Build("qemu_build", "docker_builder/dockerfile_4.2.1", "docker_builder", "/opt/tools")
	assert.Equal(t,
		[]string{"sudo", "docker", "build", "-t", "qemu_build", "-f", "docker_builder/dockerfile_4.2.1", "docker_builder"},
		build.Argv())
	assert.Equal(t, "/opt/tools", build.Dir)
	assert.Equal(t, "sudo docker build failed: ", build.ErrorContext)

	rm := e.Remove("qemu_build_output")
	assert.Equal(t, []string{"sudo", "docker", "rm", "qemu_build_output"}, rm.Argv())
	assert.Empty(t, rm.Dir)
	assert.Equal(t, "sudo docker rm failed: ", rm.ErrorContext)

	create := e.Create("qemu_build_output", "qemu_build")
	assert.Equal(t, []string{"sudo", "docker", "create", "--name", "qemu_build_output", "qemu_build"}, create.Argv())
	assert.Equal(t, "sudo docker create failed: ", create.ErrorContext)

	cp := e.Copy("qemu_build_output", "/home/ml_builder/qemu_4.zip", ".", "")
	assert.Equal(t, []string{"sudo", "docker", "cp", "qemu_build_output:/home/ml_builder/qemu_4.zip", "."}, cp.Argv())
	assert.Equal(t, "sudo docker cp failed: ", cp.ErrorContext)
}

// TestEngine_NoSudo verifies commands run the engine binary directly when
// sudo is disabled.
func TestEngine_NoSudo(t *testing.T) {
	e := Engine{Binary: "podman"}

	rm := e.Remove("qemu_build_output")
	assert.Equal(t, "podman", rm.Name)
	assert.Equal(t, []string{"rm", "qemu_build_output"}, rm.Args)
	assert.Equal(t, "podman rm failed: ", rm.ErrorContext)
}
