package http_mock_app

import (
	"time"

	"mock_env_server/internal/domain/errs"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RunSuiteRequest is the body of both run endpoints. The project and the actor
// come from the session.
type RunSuiteRequest struct {
	SuiteID string `json:"suiteId" validate:"required,max=64"`
	EnvKey  string `json:"envKey,omitempty" validate:"omitempty,max=16"`
}

func (req *RunSuiteRequest) Validate() error {
	if err := validate.Struct(req); err != nil {
		return errs.Validation("invalid request: %v", err)
	}
	return nil
}

// ProvisionRequest carries an OpenAPI document, JSON or YAML, as a string.
type ProvisionRequest struct {
	Spec      string `json:"spec" validate:"required"`
	LatencyMs int    `json:"latencyMs,omitempty" validate:"min=0,max=60000"`
}

func (req *ProvisionRequest) Validate() error {
	if err := validate.Struct(req); err != nil {
		return errs.Validation("invalid request: %v", err)
	}
	return nil
}

func (req *ProvisionRequest) Latency() time.Duration {
	return time.Duration(req.LatencyMs) * time.Millisecond
}

func readBodyErr(err error) error {
	return errs.Validation("read request body: %v", err)
}
