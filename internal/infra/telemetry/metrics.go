// Package telemetry records service counters through the go-chassis metrics registry.
package telemetry

import (
	"sync/atomic"

	"mock_env_server/utils"

	"github.com/go-chassis/go-chassis/v2/pkg/metrics"
)

const (
	MockRequestTotal = "mock_request_total"
	SuiteRunTotal    = "suite_run_total"
	HealthProbeTotal = "health_probe_total"
)

var enabled atomic.Bool

var counters = []metrics.CounterOpts{
	{Name: MockRequestTotal, Help: "simulated requests served by the mock proxy", Labels: []string{"method", "matched"}},
	{Name: SuiteRunTotal, Help: "suite runs by actor, environment and outcome", Labels: []string{"actor", "env", "outcome"}},
	{Name: HealthProbeTotal, Help: "liveness probes by health status", Labels: []string{"health"}},
}

// Enable registers the counters. It must run after chassis.Init; until then
// every counter call is a no-op.
func Enable() {
	for _, opts := range counters {
		if err := metrics.CreateCounter(opts); err != nil {
			utils.GetLogger().Warnf("failed to create counter %s: %v", opts.Name, err)
		}
	}
	enabled.Store(true)
}

// Count adds one to the named counter.
func Count(name string, labels map[string]string) {
	if !enabled.Load() {
		return
	}
	if err := metrics.CounterAdd(name, 1, labels); err != nil {
		utils.GetLogger().Debugf("counter %s: %v", name, err)
	}
}
