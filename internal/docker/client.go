package docker

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/docker/docker/client"

	"github.com/shinji-kodama/qemu-eos-builder/internal/model"
)

// defaultPingTimeout bounds how long Ping waits for the daemon. Docker
// Desktop on macOS can take a few seconds to answer.
const defaultPingTimeout = 5 * time.Second

// Client wraps the Docker Engine SDK client. It is used by the status and
// clean commands only; builds go through Engine and the CLI.
//
//	c, err := docker.NewClient()
//	if err != nil { ... }
//	defer c.Close()
type Client struct {
	inner client.APIClient
}

// NewClient connects to the Docker daemon named by DOCKER_HOST, or to the
// platform's default socket when DOCKER_HOST is unset.
//
// Creating the client does not contact the daemon; use Ping for that.
// Failures are KindDocker InstallerErrors.
func NewClient() (*Client, error) {
	if host := os.Getenv("DOCKER_HOST"); host != "" {
		return newClientWithHost(host)
	}

	host, err := detectDockerHost()
	if err != nil {
		return nil, model.WrapInstallerError(model.KindDocker,
			fmt.Sprintf("Docker socket not found: %v", err), err)
	}
	return newClientWithHost(host)
}

func newClientWithHost(host string) (*Client, error) {
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapInstallerError(model.KindDocker,
			fmt.Sprintf("failed to create Docker client for host %q: %v", host, err), err)
	}
	return &Client{inner: c}, nil
}

// detectDockerHost returns the daemon address for the current platform,
// probing the known socket locations in order of preference.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		candidates := []string{"/var/run/docker.sock"}
		// Rootless Docker listens under $XDG_RUNTIME_DIR.
		if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
			candidates = append(candidates, filepath.Join(xdg, "docker.sock"))
		}
		return detectUnixSocket(candidates)

	case "darwin":
		candidates := []string{"/var/run/docker.sock"}
		if home, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(home, ".docker", "run", "docker.sock"))
		}
		return detectUnixSocket(candidates)

	case "windows":
		// os.Stat does not work on named pipes; dial briefly instead.
		pipePath := `//./pipe/docker_engine`
		conn, err := net.DialTimeout("pipe", pipePath, 1*time.Second)
		if err != nil {
			return "", fmt.Errorf("Docker named pipe not found at %s: %w", pipePath, err)
		}
		_ = conn.Close()
		return "npipe://" + pipePath, nil

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// detectUnixSocket returns the unix:// URI of the first path that exists.
// Existence does not guarantee the daemon is listening; Ping checks that.
func detectUnixSocket(paths []string) (string, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return "unix://" + p, nil
		}
	}
	return "", fmt.Errorf("no Docker socket at any of %v; is Docker running?", paths)
}

// Ping checks that the daemon is reachable, waiting at most
// defaultPingTimeout. A daemon that only root may talk to fails here
// with a permission error, even though `sudo docker` builds would work.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapInstallerError(model.KindDocker,
			fmt.Sprintf("Docker daemon is not responding: %v", err), err)
	}
	return nil
}

// Close releases the client's resources. It is safe to call on a Client
// whose connection was never used.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}
