// Package container starts disposable infrastructure for integration tests.
package container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	defaultRegistryImage = "redpandadata/redpanda:v24.1.1"
	registryPort         = "8081/tcp"
)

// SchemaRegistryContainer is a running schema registry.
type SchemaRegistryContainer struct {
	Container testcontainers.Container
	URL       string
}

// SchemaRegistryOption configures the Schema Registry container.
type SchemaRegistryOption func(*schemaRegistryOptions)

type schemaRegistryOptions struct {
	image          string
	startupTimeout time.Duration
}

// WithSchemaRegistryImage sets the Redpanda image to use.
func WithSchemaRegistryImage(image string) SchemaRegistryOption {
	return func(o *schemaRegistryOptions) {
		o.image = image
	}
}

// WithStartupTimeout bounds how long to wait for the registry to answer.
func WithStartupTimeout(d time.Duration) SchemaRegistryOption {
	return func(o *schemaRegistryOptions) {
		o.startupTimeout = d
	}
}

// StartSchemaRegistryContainer starts Redpanda, which serves a
// Confluent-compatible schema registry API on port 8081.
func StartSchemaRegistryContainer(ctx context.Context, opts ...SchemaRegistryOption) (*SchemaRegistryContainer, error) {
	options := &schemaRegistryOptions{
		image:          defaultRegistryImage,
		startupTimeout: 90 * time.Second,
	}
	for _, opt := range opts {
		opt(options)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        options.image,
			ExposedPorts: []string{registryPort},
			Cmd: []string{
				"redpanda", "start",
				"--mode", "dev-container",
				"--smp", "1",
				"--memory", "512M",
				"--overprovisioned",
				"--schema-registry-addr", "0.0.0.0:8081",
			},
			WaitingFor: wait.ForHTTP("/subjects").
				WithPort(registryPort).
				WithStatusCodeMatcher(func(status int) bool { return status == http.StatusOK }).
				WithStartupTimeout(options.startupTimeout),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start redpanda container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, registryPort)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("failed to get schema registry port: %w", err)
	}

	return &SchemaRegistryContainer{
		Container: container,
		URL:       fmt.Sprintf("http://%s:%s", host, port.Port()),
	}, nil
}

// Terminate stops and removes the container.
func (s *SchemaRegistryContainer) Terminate() error {
	if s.Container == nil {
		return nil
	}
	return testcontainers.TerminateContainer(s.Container)
}
