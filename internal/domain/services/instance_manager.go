package services

import (
	"context"
	"time"

	"mock_env_server/internal/domain/errs"
	"mock_env_server/internal/domain/iface"
	mockinstance "mock_env_server/internal/domain/model/mock_instance"
	configs "mock_env_server/internal/infra/config"
	"mock_env_server/internal/infra/repo"
	"mock_env_server/utils"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// InstanceManagerService keeps persisted instance status and the launcher in step.
// Starts for one instance id are serialized through a singleflight group.
type InstanceManagerService struct {
	instanceRepo repo.InstanceRepositoryIface
	launcher     Launcher
	config       *configs.HealthConfig
	sfGroup      singleflight.Group
	now          func() time.Time
}

var _ iface.InstanceManager = (*InstanceManagerService)(nil)

func NewInstanceManagerService(instanceRepo repo.InstanceRepositoryIface, launcher Launcher, config *configs.HealthConfig) *InstanceManagerService {
	return &InstanceManagerService{
		instanceRepo: instanceRepo,
		launcher:     launcher,
		config:       config,
		now:          time.Now,
	}
}

// Ensure starts the instance unless it is already running. With ForceRestart a
// running instance is stopped and started again.
func (s *InstanceManagerService) Ensure(ctx context.Context, instance *mockinstance.MockInstance, opts iface.EnsureOptions) (*mockinstance.MockInstance, error) {
	if instance.IsRunning() && !opts.ForceRestart {
		return instance, nil
	}

	key := "ensure_" + instance.ID
	if opts.ForceRestart {
		key = "restart_" + instance.ID
	}
	data, err, _ := s.sfGroup.Do(key, func() (interface{}, error) {
		current, err := s.instanceRepo.FindByID(ctx, instance.ID)
		if err != nil {
			return nil, err
		}
		if current.IsRunning() && !opts.ForceRestart {
			return current, nil
		}
		return s.start(ctx, current, opts.ForceRestart)
	})
	if err != nil {
		return nil, err
	}
	return data.(*mockinstance.MockInstance), nil
}

func (s *InstanceManagerService) start(ctx context.Context, instance *mockinstance.MockInstance, restart bool) (*mockinstance.MockInstance, error) {
	log := s.logger(instance)
	if restart && instance.IsRunning() {
		if err := s.launcher.Stop(ctx, instance); err != nil {
			log.Warnf("stop before restart failed: %v", err)
		}
	}

	err := retry.Do(
		func() error {
			return s.launcher.Start(ctx, instance)
		},
		retry.Attempts(uint(s.config.StartRetryCount)),
		retry.Delay(s.config.StartRetryDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warnf("start attempt %d failed: %v", n+1, err)
		}),
	)
	if err != nil {
		log.Errorf("mock instance failed to start: %v", err)
		return nil, &errs.MockStartError{InstanceID: instance.ID, Err: err}
	}

	if err := s.instanceRepo.MarkRunning(ctx, instance.ID); err != nil {
		return nil, err
	}
	instance.Status = mockinstance.StatusRunning
	log.Info("mock instance running")
	return instance, nil
}

// Stop is a no-op for an instance that is already stopped.
func (s *InstanceManagerService) Stop(ctx context.Context, instanceID string) (*mockinstance.MockInstance, error) {
	instance, err := s.instanceRepo.FindByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if !instance.IsRunning() {
		return instance, nil
	}

	if err := s.launcher.Stop(ctx, instance); err != nil {
		s.logger(instance).Warnf("launcher stop failed: %v", err)
	}
	at := s.now()
	if err := s.instanceRepo.MarkStopped(ctx, instanceID, at); err != nil {
		return nil, err
	}
	instance.Status = mockinstance.StatusStopped
	instance.LastStoppedAt = &at
	s.logger(instance).Info("mock instance stopped")
	return instance, nil
}

func (s *InstanceManagerService) Restart(ctx context.Context, instanceID string) (*mockinstance.MockInstance, error) {
	instance, err := s.instanceRepo.FindByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	return s.Ensure(ctx, instance, iface.EnsureOptions{ForceRestart: true})
}

// Rehydrate starts the route sets of every instance the database says is running.
// Instances are listed oldest first, so the newest instance of a project ends up
// owning a shared registry key. Instances that cannot start are marked stopped.
func (s *InstanceManagerService) Rehydrate(ctx context.Context) (int, error) {
	instances, err := s.instanceRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	started := 0
	for _, instance := range instances {
		if !instance.IsRunning() {
			continue
		}
		if err := s.launcher.Start(ctx, instance); err != nil {
			s.logger(instance).Warnf("rehydrate failed, marking stopped: %v", err)
			if err := s.instanceRepo.MarkStopped(ctx, instance.ID, s.now()); err != nil {
				s.logger(instance).Errorf("failed to mark stopped: %v", err)
			}
			continue
		}
		started++
	}
	utils.GetLogger().Infof("rehydrated %d mock instances", started)
	return started, nil
}

func (s *InstanceManagerService) logger(instance *mockinstance.MockInstance) *logrus.Entry {
	return utils.GetLogger().WithFields(logrus.Fields{
		"instance_id": instance.ID,
		"project_id":  instance.ProjectID,
	})
}
