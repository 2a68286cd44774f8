package services

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"mock_env_server/internal/domain/iface"
	mockinstance "mock_env_server/internal/domain/model/mock_instance"
	configs "mock_env_server/internal/infra/config"
	"mock_env_server/internal/infra/repo"
	"mock_env_server/internal/infra/telemetry"
	"mock_env_server/utils"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

// HealthMonitorService probes every instance on a bounded worker pool. Status
// writes are plain field updates, so overlapping sweeps settle on the last write.
type HealthMonitorService struct {
	instanceRepo repo.InstanceRepositoryIface
	manager      iface.InstanceManager
	prober       iface.Prober
	config       *configs.HealthConfig
	pool         *ants.Pool
	now          func() time.Time
}

var _ iface.HealthMonitor = (*HealthMonitorService)(nil)

func NewHealthMonitorService(instanceRepo repo.InstanceRepositoryIface, manager iface.InstanceManager, prober iface.Prober, config *configs.HealthConfig) (*HealthMonitorService, func(), error) {
	pool, err := ants.NewPool(config.PoolSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create probe pool: %w", err)
	}
	m := &HealthMonitorService{
		instanceRepo: instanceRepo,
		manager:      manager,
		prober:       prober,
		config:       config,
		pool:         pool,
		now:          time.Now,
	}
	return m, pool.Release, nil
}

// Sweep returns one result per instance, in listing order.
func (m *HealthMonitorService) Sweep(ctx context.Context) ([]iface.SweepResult, error) {
	instances, err := m.instanceRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mock instances: %w", err)
	}

	results := make([]iface.SweepResult, len(instances))
	var wg sync.WaitGroup
	for i, instance := range instances {
		i, instance := i, instance
		wg.Add(1)
		if err := m.pool.Submit(func() {
			defer wg.Done()
			results[i] = m.check(ctx, instance)
		}); err != nil {
			wg.Done()
			results[i] = iface.SweepResult{
				ID:           instance.ID,
				Status:       instance.Status,
				HealthStatus: instance.HealthStatus,
				Error:        fmt.Sprintf("probe not scheduled: %v", err),
			}
		}
	}
	wg.Wait()
	return results, nil
}

func (m *HealthMonitorService) check(ctx context.Context, instance *mockinstance.MockInstance) (res iface.SweepResult) {
	log := utils.GetLogger().WithFields(logrus.Fields{
		"instance_id": instance.ID,
		"project_id":  instance.ProjectID,
	})
	res = iface.SweepResult{ID: instance.ID, Status: instance.Status, HealthStatus: mockinstance.HealthUnhealthy}
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(logrus.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("health check panic")
			res.Error = fmt.Sprintf("health check panic: %v", r)
		}
	}()

	statusCode, probeErr := m.prober.Probe(ctx, instance.ProbeURL())
	health := mockinstance.ClassifyProbe(statusCode, probeErr)
	telemetry.Count(telemetry.HealthProbeTotal, map[string]string{"health": string(health)})

	status := instance.Status
	var errMsg string
	switch health {
	case mockinstance.HealthUnhealthy:
		log.Warnf("probe failed: %v", probeErr)
		status, health, errMsg = m.tryRestore(ctx, instance)
	default:
		if !instance.IsRunning() || health == mockinstance.HealthDegraded {
			status, health, errMsg = m.bringUp(ctx, instance, health)
		}
	}

	if err := m.instanceRepo.UpdateHealth(ctx, instance.ID, health, m.now()); err != nil {
		log.Errorf("failed to record health: %v", err)
		if errMsg == "" {
			errMsg = err.Error()
		}
	}
	return iface.SweepResult{ID: instance.ID, Status: status, HealthStatus: health, Error: errMsg}
}

// bringUp starts a reachable instance through the manager, so RUNNING always
// comes with registered routes. A running instance whose probe is not 2xx is
// restarted to register its routes again.
func (m *HealthMonitorService) bringUp(ctx context.Context, instance *mockinstance.MockInstance, health mockinstance.HealthStatus) (mockinstance.Status, mockinstance.HealthStatus, string) {
	started, err := m.manager.Ensure(ctx, instance, iface.EnsureOptions{ForceRestart: instance.IsRunning()})
	if err == nil {
		return started.Status, health, ""
	}
	if instance.IsRunning() {
		if _, stopErr := m.manager.Stop(ctx, instance.ID); stopErr != nil {
			return instance.Status, mockinstance.HealthUnhealthy, fmt.Sprintf("%v; stop failed: %v", err, stopErr)
		}
	}
	return mockinstance.StatusStopped, mockinstance.HealthUnhealthy, err.Error()
}

// tryRestore stops an unhealthy instance and, with auto-restart on, starts it again.
func (m *HealthMonitorService) tryRestore(ctx context.Context, instance *mockinstance.MockInstance) (mockinstance.Status, mockinstance.HealthStatus, string) {
	stopped, err := m.manager.Stop(ctx, instance.ID)
	if err != nil {
		return instance.Status, mockinstance.HealthUnhealthy, fmt.Sprintf("stop failed: %v", err)
	}
	if !m.config.AutoRestart {
		return mockinstance.StatusStopped, mockinstance.HealthUnhealthy, ""
	}
	if _, err := m.manager.Ensure(ctx, stopped, iface.EnsureOptions{}); err != nil {
		return mockinstance.StatusStopped, mockinstance.HealthUnhealthy, err.Error()
	}
	return mockinstance.StatusRunning, mockinstance.HealthHealthy, ""
}

// Run sweeps at the configured interval until ctx is done.
func (m *HealthMonitorService) Run(ctx context.Context) error {
	log := utils.GetLogger().WithField("component", "health_monitor")
	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	log.Infof("health monitor started, interval %s, auto restart %v", m.config.Interval, m.config.AutoRestart)
	for {
		select {
		case <-ctx.Done():
			log.Info("health monitor stopped")
			return nil
		case <-ticker.C:
			results, err := m.Sweep(ctx)
			if err != nil {
				log.Errorf("sweep failed: %v", err)
				continue
			}
			unhealthy := 0
			for _, r := range results {
				if r.HealthStatus == mockinstance.HealthUnhealthy {
					unhealthy++
				}
			}
			log.WithFields(logrus.Fields{"checked": len(results), "unhealthy": unhealthy}).Info("sweep finished")
		}
	}
}
