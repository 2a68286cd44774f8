package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"mock_env_server/internal/domain/errs"
	"mock_env_server/internal/domain/iface"
	"mock_env_server/internal/domain/model/project"
	testsuite "mock_env_server/internal/domain/model/test_suite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExecutor struct {
	results []testsuite.CaseRunResult
	baseURL string
	calls   int32
}

func (e *stubExecutor) Execute(ctx context.Context, baseURL string, cases []testsuite.Case) []testsuite.CaseRunResult {
	atomic.AddInt32(&e.calls, 1)
	e.baseURL = baseURL
	return e.results
}

func coordinatorFixture() (*TestCoordinatorService, *fakeRunRepo, *stubResolver, *stubExecutor) {
	suites := &fakeSuiteRepo{suites: map[string]*testsuite.Suite{
		"s-private": {ID: "s-private", ProjectID: "p1", Visibility: testsuite.VisibilityPrivate,
			Definition: testsuite.Definition{Cases: []testsuite.Case{{ID: "a"}, {ID: "b"}, {ID: "c"}}}},
		"s-shared": {ID: "s-shared", ProjectID: "p1", Visibility: testsuite.VisibilityShared},
	}}
	runs := &fakeRunRepo{}
	resolver := &stubResolver{origin: "https://mocks.example.com/mock"}
	exec := &stubExecutor{results: []testsuite.CaseRunResult{
		{CaseID: "a", Outcome: testsuite.OutcomePassed},
		{CaseID: "b", Outcome: testsuite.OutcomePassed},
		{CaseID: "c", Outcome: testsuite.OutcomeFailed, Reason: "expected status 200, got 500"},
	}}
	c := NewTestCoordinatorService(suites, runs, resolver, exec)
	c.newID = func() string { return "run-1" }
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return fixed }
	return c, runs, resolver, exec
}

func TestRunRecordsSummaryAndActor(t *testing.T) {
	for _, actor := range []testsuite.Actor{testsuite.ActorVendor, testsuite.ActorPartner} {
		t.Run(string(actor), func(t *testing.T) {
			c, runs, _, exec := coordinatorFixture()

			run, err := c.Run(context.Background(), iface.RunRequest{
				SuiteID: " s-private ", ProjectID: "p1", EnvKey: "mock", Actor: actor, ActorID: "user-7",
			})
			require.NoError(t, err)
			assert.Equal(t, testsuite.Summary{Total: 3, Passed: 2, Failed: 1, Skipped: 0}, run.Summary)
			assert.Equal(t, actor, run.Actor)
			assert.Equal(t, "user-7", run.ActorID)
			assert.Equal(t, "MOCK", run.EnvKey)
			assert.Equal(t, "https://mocks.example.com/mock", run.BaseURL)
			assert.Equal(t, "https://mocks.example.com/mock", exec.baseURL)

			require.Len(t, runs.runs, 1)
			assert.Equal(t, "run-1", runs.runs[0].ID)
			assert.Equal(t, actor, runs.runs[0].Actor)
		})
	}
}

func TestRunRejections(t *testing.T) {
	resolveErr := &errs.PrivateNetworkBlockedError{Hostname: "localhost"}

	tests := []struct {
		name     string
		req      iface.RunRequest
		resolver error
		wantKind errs.Kind
	}{
		{name: "missing suite", req: iface.RunRequest{ProjectID: "p1", Actor: testsuite.ActorVendor}, wantKind: errs.KindValidation},
		{name: "missing project", req: iface.RunRequest{SuiteID: "s-private", Actor: testsuite.ActorVendor}, wantKind: errs.KindValidation},
		{name: "bad actor", req: iface.RunRequest{SuiteID: "s-private", ProjectID: "p1", Actor: "ADMIN"}, wantKind: errs.KindValidation},
		{name: "bad env", req: iface.RunRequest{SuiteID: "s-private", ProjectID: "p1", Actor: testsuite.ActorVendor, EnvKey: "staging"}, wantKind: errs.KindValidation},
		{name: "unknown suite", req: iface.RunRequest{SuiteID: "nope", ProjectID: "p1", Actor: testsuite.ActorVendor}, wantKind: errs.KindNotFound},
		{name: "private suite of another project", req: iface.RunRequest{SuiteID: "s-private", ProjectID: "p2", Actor: testsuite.ActorPartner}, wantKind: errs.KindForbidden},
		{name: "origin blocked", req: iface.RunRequest{SuiteID: "s-private", ProjectID: "p1", Actor: testsuite.ActorVendor, EnvKey: "SANDBOX"}, resolver: resolveErr, wantKind: errs.KindSecurityPolicy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, runs, resolver, exec := coordinatorFixture()
			resolver.err = tt.resolver

			_, err := c.Run(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errs.KindOf(err))
			assert.Empty(t, runs.runs)
			assert.Zero(t, atomic.LoadInt32(&exec.calls))
		})
	}
}

func TestRunOriginErrorKeepsCause(t *testing.T) {
	c, _, resolver, _ := coordinatorFixture()
	resolver.err = &errs.OriginNotConfiguredError{EnvKey: "PROD"}

	_, err := c.Run(context.Background(), iface.RunRequest{SuiteID: "s-private", ProjectID: "p1", Actor: testsuite.ActorVendor, EnvKey: "PROD"})
	var target *errs.OriginNotConfiguredError
	require.True(t, errors.As(err, &target))
	assert.Contains(t, err.Error(), "resolve PROD origin")
}

func TestRunSharedSuiteFromOtherProject(t *testing.T) {
	c, _, _, _ := coordinatorFixture()
	run, err := c.Run(context.Background(), iface.RunRequest{SuiteID: "s-shared", ProjectID: "p2", Actor: testsuite.ActorPartner})
	require.NoError(t, err)
	assert.Equal(t, "p2", run.ProjectID)
	assert.Equal(t, string(project.EnvMock), run.EnvKey)
}

func TestRunPersistsWhenCallerCancels(t *testing.T) {
	c, runs, _, _ := coordinatorFixture()
	ctx, cancel := context.WithCancel(context.Background())
	c.executor = iface.CaseExecutor(cancelingExecutor{cancel: cancel})

	run, err := c.Run(ctx, iface.RunRequest{SuiteID: "s-private", ProjectID: "p1", Actor: testsuite.ActorVendor})
	require.NoError(t, err)
	assert.Equal(t, 1, run.Summary.Skipped)
	assert.Len(t, runs.runs, 1)
}

type cancelingExecutor struct{ cancel context.CancelFunc }

func (e cancelingExecutor) Execute(ctx context.Context, baseURL string, cases []testsuite.Case) []testsuite.CaseRunResult {
	e.cancel()
	return []testsuite.CaseRunResult{{CaseID: "a", Outcome: testsuite.OutcomeSkipped, Reason: reasonAborted}}
}

func TestRunPersistFailure(t *testing.T) {
	c, runs, _, _ := coordinatorFixture()
	runs.err = errors.New("db down")
	_, err := c.Run(context.Background(), iface.RunRequest{SuiteID: "s-private", ProjectID: "p1", Actor: testsuite.ActorVendor})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestGetRunScopedToProject(t *testing.T) {
	c, _, _, _ := coordinatorFixture()
	_, err := c.Run(context.Background(), iface.RunRequest{SuiteID: "s-private", ProjectID: "p1", Actor: testsuite.ActorVendor})
	require.NoError(t, err)

	got, err := c.GetRun(context.Background(), "p1", "run-1")
	require.NoError(t, err)
	assert.Equal(t, "s-private", got.SuiteID)

	_, err = c.GetRun(context.Background(), "p2", "run-1")
	assert.IsType(t, &errs.RunNotFoundError{}, err)

	_, err = c.GetRun(context.Background(), "p1", "missing")
	assert.IsType(t, &errs.RunNotFoundError{}, err)

	list, err := c.ListRuns(context.Background(), "p1", 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
