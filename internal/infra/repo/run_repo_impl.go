package repo

import (
	"context"
	"fmt"

	"mock_env_server/internal/domain/errs"
	testsuite "mock_env_server/internal/domain/model/test_suite"
	configs "mock_env_server/internal/infra/config"
	"mock_env_server/internal/infra/storage"

	"github.com/avast/retry-go/v4"
)

const maxListRuns = 200

type runRepoImpl struct {
	mysqlStorage storage.MySQLRunStorageIface
	config       *configs.RepoConfig
}

var _ RunRepositoryIface = (*runRepoImpl)(nil)

func NewRunRepoImpl(mysqlStorage storage.MySQLRunStorageIface, config *configs.RepoConfig) RunRepositoryIface {
	return &runRepoImpl{mysqlStorage: mysqlStorage, config: config}
}

func (r *runRepoImpl) Save(ctx context.Context, run *testsuite.SuiteRunResult) error {
	err := retry.Do(
		func() error {
			return r.mysqlStorage.CreateRun(ctx, run)
		},
		retry.Attempts(uint(r.config.SaveDBRetryCount)),
		retry.Delay(r.config.SaveDBRetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save suite run: %w", err)
	}
	return nil
}

func (r *runRepoImpl) FindByID(ctx context.Context, runID string) (*testsuite.SuiteRunResult, error) {
	run, err := r.mysqlStorage.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, &errs.RunNotFoundError{RunID: runID}
	}
	return run, nil
}

func (r *runRepoImpl) ListByProject(ctx context.Context, projectID string, limit int) ([]*testsuite.SuiteRunResult, error) {
	if limit <= 0 || limit > maxListRuns {
		limit = maxListRuns
	}
	return r.mysqlStorage.ListRunsByProject(ctx, projectID, limit)
}
