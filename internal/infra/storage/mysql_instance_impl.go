package storage

import (
	"context"
	"errors"
	"fmt"

	mockinstance "mock_env_server/internal/domain/model/mock_instance"

	"gorm.io/gorm"
)

type MysqlInstanceStorage struct {
	mysqlClient *gorm.DB
}

func NewMysqlInstanceStorage(mysqlClient *gorm.DB) MySQLInstanceStorageIface {
	return &MysqlInstanceStorage{mysqlClient: mysqlClient}
}

var _ MySQLInstanceStorageIface = (*MysqlInstanceStorage)(nil)

func (s *MysqlInstanceStorage) CreateInstance(ctx context.Context, instance *mockinstance.MockInstance) error {
	if err := s.mysqlClient.WithContext(ctx).Create(instance).Error; err != nil {
		return fmt.Errorf("failed to save mock instance to mysql: %w", err)
	}
	return nil
}

func (s *MysqlInstanceStorage) GetInstance(ctx context.Context, instanceID string) (*mockinstance.MockInstance, error) {
	instance := &mockinstance.MockInstance{}
	if err := s.mysqlClient.WithContext(ctx).First(instance, "id = ?", instanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get mock instance from mysql: %w", err)
	}
	return instance, nil
}

// LatestInstanceForProject returns the most recently created instance of the project.
func (s *MysqlInstanceStorage) LatestInstanceForProject(ctx context.Context, projectID string) (*mockinstance.MockInstance, error) {
	instance := &mockinstance.MockInstance{}
	err := s.mysqlClient.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Order("id DESC").
		First(instance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest mock instance from mysql: %w", err)
	}
	return instance, nil
}

func (s *MysqlInstanceStorage) ListInstances(ctx context.Context) ([]*mockinstance.MockInstance, error) {
	var instances []*mockinstance.MockInstance
	if err := s.mysqlClient.WithContext(ctx).Order("created_at ASC").Find(&instances).Error; err != nil {
		return nil, fmt.Errorf("failed to list mock instances from mysql: %w", err)
	}
	return instances, nil
}

func (s *MysqlInstanceStorage) UpdateInstanceFields(ctx context.Context, instanceID string, fields map[string]interface{}) error {
	res := s.mysqlClient.WithContext(ctx).
		Model(&mockinstance.MockInstance{}).
		Where("id = ?", instanceID).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update mock instance %s: %w", instanceID, res.Error)
	}
	return nil
}
