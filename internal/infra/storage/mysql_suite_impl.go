package storage

import (
	"context"
	"errors"
	"fmt"

	testsuite "mock_env_server/internal/domain/model/test_suite"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MysqlSuiteStorage struct {
	mysqlClient *gorm.DB
}

func NewMysqlSuiteStorage(mysqlClient *gorm.DB) MySQLSuiteStorageIface {
	return &MysqlSuiteStorage{mysqlClient: mysqlClient}
}

var _ MySQLSuiteStorageIface = (*MysqlSuiteStorage)(nil)

func (s *MysqlSuiteStorage) GetSuite(ctx context.Context, suiteID string) (*testsuite.Suite, error) {
	suite := &testsuite.Suite{}
	if err := s.mysqlClient.WithContext(ctx).First(suite, "id = ?", suiteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get suite from mysql: %w", err)
	}
	return suite, nil
}

// SaveSuite upserts by primary key.
func (s *MysqlSuiteStorage) SaveSuite(ctx context.Context, suite *testsuite.Suite) error {
	err := s.mysqlClient.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(suite).Error
	if err != nil {
		return fmt.Errorf("failed to save suite to mysql: %w", err)
	}
	return nil
}
