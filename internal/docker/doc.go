// Package docker covers both ways the builder talks to the container engine.
//
// Engine assembles the privileged CLI invocations of a build
// (`sudo docker build|rm|create|cp`) as runner.Command values. The build
// always goes through the CLI so that privilege elevation works the same
// as when the commands are typed by hand.
//
// Client wraps the Docker Engine SDK (github.com/docker/docker/client) for
// the read-mostly housekeeping commands: checking whether the builder
// image and output container exist, and removing them. It detects the
// Docker socket automatically and negotiates the API version.
package docker
