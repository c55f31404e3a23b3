package environ

import (
	"context"
	"strings"

	"github.com/docker/docker/client"
)

// DockerProvider reads ambient state of the container the process runs in:
// variables come from container labels, then from the container's configured
// environment; the user identity is the container's configured user.
type DockerProvider struct {
	client      *client.Client
	containerID string
}

// NewDockerProvider connects to the Docker daemon from the environment.
func NewDockerProvider(containerID string) (*DockerProvider, error) {
	c, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, err
	}
	return &DockerProvider{client: c, containerID: containerID}, nil
}

func (p *DockerProvider) UserID(ctx context.Context) (string, bool) {
	info, err := p.client.ContainerInspect(ctx, p.containerID)
	if err != nil || info.Config == nil {
		return "", false
	}
	return info.Config.User, info.Config.User != ""
}

func (p *DockerProvider) Var(ctx context.Context, name string) (any, bool) {
	info, err := p.client.ContainerInspect(ctx, p.containerID)
	if err != nil || info.Config == nil {
		return nil, false
	}
	if v, ok := info.Config.Labels[name]; ok {
		return v, true
	}
	prefix := name + "="
	for _, kv := range info.Config.Env {
		if strings.HasPrefix(kv, prefix) {
			return strings.TrimPrefix(kv, prefix), true
		}
	}
	return nil, false
}

// Close releases the Docker client.
func (p *DockerProvider) Close() error {
	return p.client.Close()
}
