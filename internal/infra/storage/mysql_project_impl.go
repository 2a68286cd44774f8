package storage

import (
	"context"
	"errors"
	"fmt"

	"mock_env_server/internal/domain/model/project"

	"gorm.io/gorm"
)

type MysqlProjectStorage struct {
	mysqlClient *gorm.DB
}

func NewMysqlProjectStorage(mysqlClient *gorm.DB) MySQLProjectStorageIface {
	return &MysqlProjectStorage{mysqlClient: mysqlClient}
}

var _ MySQLProjectStorageIface = (*MysqlProjectStorage)(nil)

func (s *MysqlProjectStorage) GetProject(ctx context.Context, projectID string) (*project.Project, error) {
	p := &project.Project{}
	if err := s.mysqlClient.WithContext(ctx).First(p, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project from mysql: %w", err)
	}
	return p, nil
}

func (s *MysqlProjectStorage) ListProjects(ctx context.Context) ([]*project.Project, error) {
	var projects []*project.Project
	if err := s.mysqlClient.WithContext(ctx).Order("id ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects from mysql: %w", err)
	}
	return projects, nil
}

func (s *MysqlProjectStorage) UpdateProjectConfig(ctx context.Context, projectID string, config project.RawConfig) error {
	res := s.mysqlClient.WithContext(ctx).
		Model(&project.Project{}).
		Where("id = ?", projectID).
		Update("config", config)
	if res.Error != nil {
		return fmt.Errorf("failed to update project config %s: %w", projectID, res.Error)
	}
	return nil
}
