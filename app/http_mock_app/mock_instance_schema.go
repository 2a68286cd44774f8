package http_mock_app

import (
	"mock_env_server/internal/domain/errs"
	"mock_env_server/internal/domain/iface"
	mockinstance "mock_env_server/internal/domain/model/mock_instance"
	"mock_env_server/internal/domain/model/session"
	testsuite "mock_env_server/internal/domain/model/test_suite"
	"mock_env_server/internal/infra/repo"
	"mock_env_server/utils"

	rf "github.com/go-chassis/go-chassis/v2/server/restful"
)

// MockInstanceController provisions mock instances and drives their lifecycle.
type MockInstanceController struct {
	Provisioner  iface.MockProvisioner
	Manager      iface.InstanceManager
	InstanceRepo repo.InstanceRepositoryIface
	Auth         *SessionAuth
}

func NewMockInstanceController(provisioner iface.MockProvisioner, manager iface.InstanceManager, instanceRepo repo.InstanceRepositoryIface, auth *SessionAuth) *MockInstanceController {
	return &MockInstanceController{
		Provisioner:  provisioner,
		Manager:      manager,
		InstanceRepo: instanceRepo,
		Auth:         auth,
	}
}

func (c *MockInstanceController) Provision(b *rf.Context, p *session.Principal) {
	var req ProvisionRequest
	if err := b.ReadEntity(&req); err != nil {
		writeFailure(b, readBodyErr(err), "")
		return
	}
	if err := req.Validate(); err != nil {
		writeFailure(b, err, "")
		return
	}

	instance, err := c.Provisioner.Provision(b.Ctx, p.ProjectID, []byte(req.Spec), req.Latency())
	if err != nil {
		utils.GetLogger().WithField("project_id", p.ProjectID).Errorf("provision err: %v", err)
		writeFailure(b, err, "unable to provision mock")
		return
	}
	writeOK(b, instance)
}

func (c *MockInstanceController) Stop(b *rf.Context, p *session.Principal) {
	instance, ok := c.ownedInstance(b, p)
	if !ok {
		return
	}
	stopped, err := c.Manager.Stop(b.Ctx, instance.ID)
	if err != nil {
		writeFailure(b, err, "unable to stop mock")
		return
	}
	writeOK(b, stopped)
}

func (c *MockInstanceController) Restart(b *rf.Context, p *session.Principal) {
	instance, ok := c.ownedInstance(b, p)
	if !ok {
		return
	}
	restarted, err := c.Manager.Restart(b.Ctx, instance.ID)
	if err != nil {
		writeFailure(b, err, "unable to restart mock")
		return
	}
	writeOK(b, restarted)
}

// ownedInstance loads the path instance; instances of other projects read as missing.
func (c *MockInstanceController) ownedInstance(b *rf.Context, p *session.Principal) (*mockinstance.MockInstance, bool) {
	id := b.ReadPathParameter("instanceId")
	instance, err := c.InstanceRepo.FindByID(b.Ctx, id)
	if err != nil {
		writeFailure(b, err, "unable to load mock")
		return nil, false
	}
	if instance.ProjectID != p.ProjectID {
		writeFailure(b, &errs.MockInstanceNotFoundError{InstanceID: id}, "")
		return nil, false
	}
	return instance, true
}

func (c *MockInstanceController) URLPatterns() []rf.Route {
	return []rf.Route{
		{Method: "POST", Path: "/mocks/provision", ResourceFunc: c.Auth.withPrincipal(testsuite.ActorVendor, c.Provision),
			Read: ProvisionRequest{}, Returns: []*rf.Returns{{Code: 200}, {Code: 400}, {Code: 404}}},
		{Method: "POST", Path: "/mocks/{instanceId}/stop", ResourceFunc: c.Auth.withPrincipal(testsuite.ActorVendor, c.Stop),
			Returns: []*rf.Returns{{Code: 200}, {Code: 404}}},
		{Method: "POST", Path: "/mocks/{instanceId}/restart", ResourceFunc: c.Auth.withPrincipal(testsuite.ActorVendor, c.Restart),
			Returns: []*rf.Returns{{Code: 200}, {Code: 404}}},
	}
}
