package storage

import (
	"context"
	"errors"
	"fmt"

	testsuite "mock_env_server/internal/domain/model/test_suite"

	"gorm.io/gorm"
)

type MysqlRunStorage struct {
	mysqlClient *gorm.DB
}

func NewMysqlRunStorage(mysqlClient *gorm.DB) MySQLRunStorageIface {
	return &MysqlRunStorage{mysqlClient: mysqlClient}
}

var _ MySQLRunStorageIface = (*MysqlRunStorage)(nil)

// CreateRun inserts the run inside a transaction. Runs are never updated afterwards.
func (s *MysqlRunStorage) CreateRun(ctx context.Context, run *testsuite.SuiteRunResult) error {
	tx := s.mysqlClient.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	if err := tx.Create(run).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to save suite run to mysql: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *MysqlRunStorage) GetRun(ctx context.Context, runID string) (*testsuite.SuiteRunResult, error) {
	run := &testsuite.SuiteRunResult{}
	if err := s.mysqlClient.WithContext(ctx).First(run, "id = ?", runID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get suite run from mysql: %w", err)
	}
	return run, nil
}

func (s *MysqlRunStorage) ListRunsByProject(ctx context.Context, projectID string, limit int) ([]*testsuite.SuiteRunResult, error) {
	var runs []*testsuite.SuiteRunResult
	err := s.mysqlClient.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list suite runs from mysql: %w", err)
	}
	return runs, nil
}
