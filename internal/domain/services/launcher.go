package services

import (
	"context"
	"fmt"
	"sync"

	mockinstance "mock_env_server/internal/domain/model/mock_instance"
	mockroute "mock_env_server/internal/domain/model/mock_route"
)

// Launcher brings the backing route set of an instance up or down.
type Launcher interface {
	Start(ctx context.Context, instance *mockinstance.MockInstance) error
	Stop(ctx context.Context, instance *mockinstance.MockInstance) error
}

// RegistryLauncher serves instances from the in-process registry. Several
// instances may share a registry key; the last one started owns it, and stopping
// an instance that no longer owns its key leaves the entry alone.
type RegistryLauncher struct {
	registry *mockroute.Registry

	mu     sync.Mutex
	owners map[string]string
}

var _ Launcher = (*RegistryLauncher)(nil)

func NewRegistryLauncher(registry *mockroute.Registry) *RegistryLauncher {
	return &RegistryLauncher{registry: registry, owners: make(map[string]string)}
}

func (l *RegistryLauncher) Start(_ context.Context, instance *mockinstance.MockInstance) error {
	if len(instance.Config.Routes) == 0 {
		return fmt.Errorf("instance %s has no generated routes", instance.ID)
	}
	key := registryKey(instance)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.registry.Register(key, instance.Config.Entry()); err != nil {
		return err
	}
	l.owners[key] = instance.ID
	return nil
}

func (l *RegistryLauncher) Stop(_ context.Context, instance *mockinstance.MockInstance) error {
	key := registryKey(instance)

	l.mu.Lock()
	defer l.mu.Unlock()
	if owner, ok := l.owners[key]; ok && owner != instance.ID {
		return nil
	}
	l.registry.Remove(key)
	delete(l.owners, key)
	return nil
}

// Serving reports whether the instance currently owns its registry key.
func (l *RegistryLauncher) Serving(instanceID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, owner := range l.owners {
		if owner == instanceID {
			return true
		}
	}
	return false
}

func registryKey(instance *mockinstance.MockInstance) string {
	if instance.Config.RegistryKey != "" {
		return instance.Config.RegistryKey
	}
	return instance.ID
}
