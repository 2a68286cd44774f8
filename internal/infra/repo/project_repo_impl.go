package repo

import (
	"context"

	"mock_env_server/internal/domain/errs"
	"mock_env_server/internal/domain/model/project"
	"mock_env_server/internal/infra/storage"
)

type projectRepoImpl struct {
	mysqlStorage storage.MySQLProjectStorageIface
}

var _ ProjectRepositoryIface = (*projectRepoImpl)(nil)

func NewProjectRepoImpl(mysqlStorage storage.MySQLProjectStorageIface) ProjectRepositoryIface {
	return &projectRepoImpl{mysqlStorage: mysqlStorage}
}

func (r *projectRepoImpl) FindByID(ctx context.Context, projectID string) (*project.Project, error) {
	p, err := r.mysqlStorage.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &errs.ProjectNotFoundError{ProjectID: projectID}
	}
	return p, nil
}

func (r *projectRepoImpl) ListAll(ctx context.Context) ([]*project.Project, error) {
	return r.mysqlStorage.ListProjects(ctx)
}

func (r *projectRepoImpl) UpdateConfig(ctx context.Context, projectID string, config project.RawConfig) error {
	return r.mysqlStorage.UpdateProjectConfig(ctx, projectID, config)
}
