package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mock_env_server/internal/domain/errs"
	"mock_env_server/internal/domain/iface"
	"mock_env_server/internal/domain/model/project"
	testsuite "mock_env_server/internal/domain/model/test_suite"
	"mock_env_server/internal/infra/repo"
	"mock_env_server/internal/infra/telemetry"
	"mock_env_server/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TestCoordinatorService loads a suite, resolves its origin, runs the cases and
// records an immutable run.
type TestCoordinatorService struct {
	suiteRepo repo.SuiteRepositoryIface
	runRepo   repo.RunRepositoryIface
	resolver  iface.OriginResolver
	executor  iface.CaseExecutor
	now       func() time.Time
	newID     func() string
}

var _ iface.TestCoordinator = (*TestCoordinatorService)(nil)

func NewTestCoordinatorService(suiteRepo repo.SuiteRepositoryIface, runRepo repo.RunRepositoryIface, resolver iface.OriginResolver, executor iface.CaseExecutor) *TestCoordinatorService {
	return &TestCoordinatorService{
		suiteRepo: suiteRepo,
		runRepo:   runRepo,
		resolver:  resolver,
		executor:  executor,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *TestCoordinatorService) Run(ctx context.Context, req iface.RunRequest) (*testsuite.SuiteRunResult, error) {
	suiteID := strings.TrimSpace(req.SuiteID)
	if suiteID == "" {
		return nil, errs.Validation("suiteId is required")
	}
	if req.ProjectID == "" {
		return nil, errs.Validation("projectId is required")
	}
	if !req.Actor.IsValid() {
		return nil, errs.Validation("unknown actor %q", req.Actor)
	}
	envKey, err := project.ParseEnvKey(req.EnvKey)
	if err != nil {
		return nil, errs.Validation("%v", err)
	}

	log := utils.GetLogger().WithFields(logrus.Fields{
		"suite_id":   suiteID,
		"project_id": req.ProjectID,
		"actor":      req.Actor,
		"env_key":    envKey,
	})

	suite, err := s.suiteRepo.FindByID(ctx, suiteID)
	if err != nil {
		return nil, err
	}
	if !suite.VisibleTo(req.ProjectID) {
		return nil, &errs.SuiteForbiddenError{SuiteID: suiteID, ProjectID: req.ProjectID}
	}

	baseURL, err := s.resolver.Resolve(ctx, envKey, req.ProjectID)
	if err != nil {
		log.Warnf("origin resolution failed: %v", err)
		return nil, fmt.Errorf("resolve %s origin: %w", envKey, err)
	}

	startedAt := s.now()
	results := s.executor.Execute(ctx, baseURL, suite.Definition.Cases)
	run := &testsuite.SuiteRunResult{
		ID:         s.newID(),
		SuiteID:    suite.ID,
		ProjectID:  req.ProjectID,
		Actor:      req.Actor,
		ActorID:    req.ActorID,
		EnvKey:     string(envKey),
		BaseURL:    baseURL,
		StartedAt:  startedAt,
		FinishedAt: s.now(),
		Summary:    testsuite.Summarize(results),
		Results:    results,
	}

	// an aborted caller still gets its partial run recorded
	if err := s.runRepo.Save(context.WithoutCancel(ctx), run); err != nil {
		log.Errorf("failed to persist run: %v", err)
		return nil, fmt.Errorf("persist run: %w", err)
	}

	outcome := "passed"
	if run.Summary.Failed > 0 {
		outcome = "failed"
	}
	telemetry.Count(telemetry.SuiteRunTotal, map[string]string{
		"actor":   string(req.Actor),
		"env":     string(envKey),
		"outcome": outcome,
	})
	log.WithFields(logrus.Fields{
		"run_id":   run.ID,
		"base_url": baseURL,
		"total":    run.Summary.Total,
		"passed":   run.Summary.Passed,
		"failed":   run.Summary.Failed,
		"skipped":  run.Summary.Skipped,
	}).Info("suite run finished")
	return run, nil
}

// GetRun hides runs of other projects behind a not-found error.
func (s *TestCoordinatorService) GetRun(ctx context.Context, projectID, runID string) (*testsuite.SuiteRunResult, error) {
	run, err := s.runRepo.FindByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.ProjectID != projectID {
		return nil, &errs.RunNotFoundError{RunID: runID}
	}
	return run, nil
}

func (s *TestCoordinatorService) ListRuns(ctx context.Context, projectID string, limit int) ([]*testsuite.SuiteRunResult, error) {
	return s.runRepo.ListByProject(ctx, projectID, limit)
}
