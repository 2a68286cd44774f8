package mockinstance

// Status is the run state of a mock instance.
type Status string

const (
	StatusStopped Status = "STOPPED"
	StatusRunning Status = "RUNNING"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusStopped, StatusRunning:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// HealthStatus is the outcome of the latest liveness probe.
type HealthStatus string

const (
	HealthUnknown   HealthStatus = "unknown"
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

func (h HealthStatus) IsValid() bool {
	switch h {
	case HealthUnknown, HealthHealthy, HealthDegraded, HealthUnhealthy:
		return true
	default:
		return false
	}
}

func (h HealthStatus) String() string {
	return string(h)
}

// ClassifyProbe maps a probe outcome to a health status: 2xx healthy, any other
// response degraded, no response unhealthy.
func ClassifyProbe(statusCode int, err error) HealthStatus {
	if err != nil {
		return HealthUnhealthy
	}
	if statusCode >= 200 && statusCode < 300 {
		return HealthHealthy
	}
	return HealthDegraded
}
