package docker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/qemu-eos-builder/internal/model"
)

// fakeAPI stubs the few Engine API calls the Client makes. Calling any
// other method panics through the nil embedded interface.
type fakeAPI struct {
	client.APIClient

	containers []container.Summary
	images     []image.Summary
	listErr    error

	listOpts       container.ListOptions
	removedCtr     []string
	removedCtrOpts container.RemoveOptions
	removedImg     []string
}

func (f *fakeAPI) ContainerList(_ context.Context, opts container.ListOptions) ([]container.Summary, error) {
	f.listOpts = opts
	return f.containers, f.listErr
}

func (f *fakeAPI) ImageList(_ context.Context, _ image.ListOptions) ([]image.Summary, error) {
	return f.images, f.listErr
}

func (f *fakeAPI) ContainerRemove(_ context.Context, id string, opts container.RemoveOptions) error {
	f.removedCtr = append(f.removedCtr, id)
	f.removedCtrOpts = opts
	return nil
}

func (f *fakeAPI) ImageRemove(_ context.Context, id string, _ image.RemoveOptions) ([]image.DeleteResponse, error) {
	f.removedImg = append(f.removedImg, id)
	return nil, nil
}

func (f *fakeAPI) Close() error { return nil }

// TestClient_FindContainer verifies stopped containers are requested and
// the name filter is applied.
func TestClient_FindContainer(t *testing.T) {
	api := &fakeAPI{containers: []container.Summary{
		{ID: "bbb222", Names: []string{"/qemu_build_output"}, State: "created"},
	}}
	c := &Client{inner: api}

	got, err := c.FindContainer(context.Background(), "qemu_build_output")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "bbb222", got.ID)

	assert.True(t, api.listOpts.All, "never-started containers must be listed")
	assert.Equal(t, []string{"qemu_build_output"}, api.listOpts.Filters.Get("name"))
}

func TestClient_FindContainer_Error(t *testing.T) {
	c := &Client{inner: &fakeAPI{listErr: errors.New("permission denied")}}

	_, err := c.FindContainer(context.Background(), "qemu_build_output")
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindDocker))
	assert.Contains(t, err.Error(), "permission denied")
}

func TestClient_FindImage(t *testing.T) {
	api := &fakeAPI{images: []image.Summary{{ID: "sha256:abc", RepoTags: []string{"qemu_build:latest"}}}}
	c := &Client{inner: api}

	got, err := c.FindImage(context.Background(), "qemu_build")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "sha256:abc", got.ID)

	api.images = nil
	got, err = c.FindImage(context.Background(), "qemu_build")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestClient_Remove verifies containers are force-removed.
func TestClient_Remove(t *testing.T) {
	api := &fakeAPI{}
	c := &Client{inner: api}

	require.NoError(t, c.RemoveContainer(context.Background(), "bbb222"))
	require.NoError(t, c.RemoveImage(context.Background(), "sha256:abc"))

	assert.Equal(t, []string{"bbb222"}, api.removedCtr)
	assert.True(t, api.removedCtrOpts.Force)
	assert.Equal(t, []string{"sha256:abc"}, api.removedImg)
}

// TestPickContainer_ExactMatch verifies that substring matches returned by
// the daemon's name filter are discarded.
func TestPickContainer_ExactMatch(t *testing.T) {
	list := []container.Summary{
		{ID: "aaa111", Names: []string{"/qemu_build_output_old"}, State: "exited"},
		{ID: "bbb222", Names: []string{"/qemu_build_output"}, Image: "qemu_build", State: "created"},
	}

	got := pickContainer(list, "qemu_build_output")
	require.NotNil(t, got)
	assert.Equal(t, "bbb222", got.ID)
	assert.Equal(t, "qemu_build_output", got.Name)
	assert.Equal(t, "qemu_build", got.Image)
	assert.Equal(t, "created", got.State)
}

func TestPickContainer_None(t *testing.T) {
	list := []container.Summary{
		{ID: "aaa111", Names: []string{"/my_qemu_build_output"}},
	}
	assert.Nil(t, pickContainer(list, "qemu_build_output"))
	assert.Nil(t, pickContainer(nil, "qemu_build_output"))
}

func TestPickImage(t *testing.T) {
	assert.Nil(t, pickImage(nil))

	got := pickImage([]image.Summary{
		{ID: "sha256:abc", RepoTags: []string{"qemu_build:latest"}, Created: 1700000000, Size: 1 << 30},
	})
	require.NotNil(t, got)
	assert.Equal(t, "sha256:abc", got.ID)
	assert.Equal(t, []string{"qemu_build:latest"}, got.Tags)
	assert.Equal(t, int64(1700000000), got.Created)
	assert.Equal(t, int64(1<<30), got.Size)
}

// TestDetectUnixSocket verifies the probe order and the not-found error.
func TestDetectUnixSocket(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "docker.sock")
	missing := filepath.Join(dir, "missing.sock")
	require.NoError(t, os.WriteFile(present, nil, 0o600))

	host, err := detectUnixSocket([]string{missing, present})
	require.NoError(t, err)
	assert.Equal(t, "unix://"+present, host)

	_, err = detectUnixSocket([]string{missing})
	assert.Error(t, err)
}

func TestClient_CloseWithoutConnection(t *testing.T) {
	c := &Client{}
	assert.NoError(t, c.Close())
}
