package http_mock_app

import (
	"strconv"

	"mock_env_server/internal/domain/errs"
	"mock_env_server/internal/domain/iface"
	"mock_env_server/internal/domain/model/session"
	testsuite "mock_env_server/internal/domain/model/test_suite"
	"mock_env_server/internal/infra/ratelimit"
	"mock_env_server/utils"

	rf "github.com/go-chassis/go-chassis/v2/server/restful"
	"github.com/sirupsen/logrus"
)

const (
	runFailurePrefix = "unable to run suite"
	defaultListLimit = 20
)

// TestRunController exposes suite runs to vendors and, rate limited, to partners.
type TestRunController struct {
	Coordinator iface.TestCoordinator
	Limiter     ratelimit.Limiter
	Auth        *SessionAuth
}

func NewTestRunController(coordinator iface.TestCoordinator, limiter ratelimit.Limiter, auth *SessionAuth) *TestRunController {
	return &TestRunController{Coordinator: coordinator, Limiter: limiter, Auth: auth}
}

func (c *TestRunController) RunVendor(b *rf.Context, p *session.Principal) {
	c.run(b, p, testsuite.ActorVendor)
}

// RunPartner checks the limiter before the body is even read.
func (c *TestRunController) RunPartner(b *rf.Context, p *session.Principal) {
	allowed, err := c.Limiter.Allow(b.Ctx, p.ProjectID+":"+p.Subject)
	if err != nil {
		utils.GetLogger().Errorf("rate limiter err: %v", err)
		writeFailure(b, err, runFailurePrefix)
		return
	}
	if !allowed {
		writeFailure(b, &errs.RateLimitedError{Key: p.Subject}, "")
		return
	}
	c.run(b, p, testsuite.ActorPartner)
}

func (c *TestRunController) run(b *rf.Context, p *session.Principal, actor testsuite.Actor) {
	log := utils.GetLogger().WithFields(logrus.Fields{
		"subject":    p.Subject,
		"project_id": p.ProjectID,
		"actor":      actor,
	})

	var req RunSuiteRequest
	if err := b.ReadEntity(&req); err != nil {
		log.Errorf("read request body err: %v", err)
		writeFailure(b, readBodyErr(err), "")
		return
	}
	if err := req.Validate(); err != nil {
		writeFailure(b, err, "")
		return
	}

	result, err := c.Coordinator.Run(b.Ctx, iface.RunRequest{
		SuiteID:   req.SuiteID,
		ProjectID: p.ProjectID,
		EnvKey:    req.EnvKey,
		Actor:     actor,
		ActorID:   p.Subject,
	})
	if err != nil {
		log.WithField("suite_id", req.SuiteID).Errorf("run suite err: %v", err)
		writeFailure(b, err, runFailurePrefix)
		return
	}
	writeOK(b, result)
}

func (c *TestRunController) GetRun(b *rf.Context, p *session.Principal) {
	run, err := c.Coordinator.GetRun(b.Ctx, p.ProjectID, b.ReadPathParameter("runId"))
	if err != nil {
		writeFailure(b, err, "unable to read run")
		return
	}
	writeOK(b, run)
}

func (c *TestRunController) ListRuns(b *rf.Context, p *session.Principal) {
	limit := defaultListLimit
	if raw := b.ReadQueryParameter("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeFailure(b, errs.Validation("limit must be a positive integer"), "")
			return
		}
		limit = n
	}
	runs, err := c.Coordinator.ListRuns(b.Ctx, p.ProjectID, limit)
	if err != nil {
		writeFailure(b, err, "unable to list runs")
		return
	}
	writeOK(b, runs)
}

func (c *TestRunController) URLPatterns() []rf.Route {
	return []rf.Route{
		{Method: "POST", Path: "/tests/run", ResourceFunc: c.Auth.withPrincipal(testsuite.ActorVendor, c.RunVendor),
			Read: RunSuiteRequest{}, Returns: []*rf.Returns{{Code: 200}, {Code: 400}, {Code: 403}, {Code: 404}, {Code: 500}}},
		{Method: "POST", Path: "/partner/tests/run", ResourceFunc: c.Auth.withPrincipal(testsuite.ActorPartner, c.RunPartner),
			Read: RunSuiteRequest{}, Returns: []*rf.Returns{{Code: 200}, {Code: 401}, {Code: 403}, {Code: 404}, {Code: 429}, {Code: 500}}},
		{Method: "GET", Path: "/tests/runs", ResourceFunc: c.Auth.withPrincipal(testsuite.ActorVendor, c.ListRuns),
			Returns: []*rf.Returns{{Code: 200}}},
		{Method: "GET", Path: "/tests/runs/{runId}", ResourceFunc: c.Auth.withPrincipal(testsuite.ActorVendor, c.GetRun),
			Returns: []*rf.Returns{{Code: 200}, {Code: 404}}},
	}
}
