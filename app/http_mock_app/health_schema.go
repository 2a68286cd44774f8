package http_mock_app

import (
	"crypto/subtle"
	"net/http"

	"mock_env_server/internal/domain/errs"
	"mock_env_server/internal/domain/iface"
	configs "mock_env_server/internal/infra/config"
	"mock_env_server/utils"

	rf "github.com/go-chassis/go-chassis/v2/server/restful"
)

const healthSecretHeader = "x-health-secret"

// HealthController triggers a health sweep on demand, typically from a scheduler.
type HealthController struct {
	Monitor  iface.HealthMonitor
	Security *configs.SecurityConfig
}

func NewHealthController(monitor iface.HealthMonitor, security *configs.SecurityConfig) *HealthController {
	return &HealthController{Monitor: monitor, Security: security}
}

type sweepResponse struct {
	OK      bool                `json:"ok"`
	Checked int                 `json:"checked"`
	Results []iface.SweepResult `json:"results"`
}

func (c *HealthController) Sweep(b *rf.Context) {
	defer recoverHandler(b)

	if secret := c.Security.HealthSecret; secret != "" {
		got := b.ReadHeader(healthSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			writeFailure(b, &errs.UnauthorizedError{Reason: "health secret mismatch"}, "")
			return
		}
	}

	results, err := c.Monitor.Sweep(b.Ctx)
	if err != nil {
		utils.GetLogger().Errorf("health sweep err: %v", err)
		writeFailure(b, err, "health sweep failed")
		return
	}
	writeJSON(b, http.StatusOK, sweepResponse{OK: true, Checked: len(results), Results: results})
}

func (c *HealthController) URLPatterns() []rf.Route {
	return []rf.Route{
		{Method: "POST", Path: "/mocks/health", ResourceFunc: c.Sweep,
			Returns: []*rf.Returns{{Code: 200}, {Code: 401}}},
	}
}
