package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"

	"github.com/shinji-kodama/qemu-eos-builder/internal/model"
)

// ContainerState describes an existing container.
type ContainerState struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Image string `json:"image" yaml:"image"`

	// State is the engine's short state string: "created", "exited", ...
	// An output container that was never started reports "created".
	State string `json:"state" yaml:"state"`
}

// ImageState describes an existing image.
type ImageState struct {
	ID      string   `json:"id" yaml:"id"`
	Tags    []string `json:"tags" yaml:"tags"`
	Created int64    `json:"created" yaml:"created"`
	Size    int64    `json:"size" yaml:"size"`
}

// FindContainer returns the container with exactly the given name, or nil
// when none exists. Stopped and never-started containers are included.
func (c *Client) FindContainer(ctx context.Context, name string) (*ContainerState, error) {
	// The name filter is a substring match on the daemon side, so results
	// are narrowed to an exact match afterwards.
	list, err := c.inner.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return nil, model.WrapInstallerError(model.KindDocker,
			fmt.Sprintf("failed to list containers: %v", err), err)
	}
	return pickContainer(list, name), nil
}

// pickContainer returns the summary whose name is exactly name. The API
// reports names with a leading "/".
func pickContainer(list []container.Summary, name string) *ContainerState {
	for _, s := range list {
		for _, n := range s.Names {
			if strings.TrimPrefix(n, "/") == name {
				return &ContainerState{
					ID:    s.ID,
					Name:  name,
					Image: s.Image,
					State: s.State,
				}
			}
		}
	}
	return nil
}

// FindImage returns the image tagged ref, or nil when none exists.
// A bare name such as "qemu_build" matches the "latest" tag.
func (c *Client) FindImage(ctx context.Context, ref string) (*ImageState, error) {
	list, err := c.inner.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", ref)),
	})
	if err != nil {
		return nil, model.WrapInstallerError(model.KindDocker,
			fmt.Sprintf("failed to list images: %v", err), err)
	}
	return pickImage(list), nil
}

// pickImage returns the first listed image. The reference filter already
// restricts the list to matching tags.
func pickImage(list []image.Summary) *ImageState {
	if len(list) == 0 {
		return nil
	}
	s := list[0]
	return &ImageState{
		ID:      s.ID,
		Tags:    s.RepoTags,
		Created: s.Created,
		Size:    s.Size,
	}
}

// RemoveContainer force-removes a container by ID or name.
func (c *Client) RemoveContainer(ctx context.Context, id string) error {
	if err := c.inner.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
		return model.WrapInstallerError(model.KindDocker,
			fmt.Sprintf("failed to remove container %q: %v", id, err), err)
	}
	return nil
}

// RemoveImage removes an image by ID or reference, pruning untagged parents.
func (c *Client) RemoveImage(ctx context.Context, id string) error {
	_, err := c.inner.ImageRemove(ctx, id, image.RemoveOptions{PruneChildren: true})
	if err != nil {
		return model.WrapInstallerError(model.KindDocker,
			fmt.Sprintf("failed to remove image %q: %v", id, err), err)
	}
	return nil
}
