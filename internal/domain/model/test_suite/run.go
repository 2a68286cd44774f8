package testsuite

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Actor is the identity class a run is attributed to.
type Actor string

const (
	ActorVendor  Actor = "VENDOR"
	ActorPartner Actor = "PARTNER"
)

func (a Actor) IsValid() bool {
	return a == ActorVendor || a == ActorPartner
}

// CaseOutcome is the result of one case.
type CaseOutcome string

const (
	OutcomePassed  CaseOutcome = "passed"
	OutcomeFailed  CaseOutcome = "failed"
	OutcomeSkipped CaseOutcome = "skipped"
)

type Summary struct {
	Total   int `gorm:"column:total" json:"total"`
	Passed  int `gorm:"column:passed" json:"passed"`
	Failed  int `gorm:"column:failed" json:"failed"`
	Skipped int `gorm:"column:skipped" json:"skipped"`
}

// Summarize counts outcomes.
func Summarize(results []CaseRunResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Outcome {
		case OutcomePassed:
			s.Passed++
		case OutcomeFailed:
			s.Failed++
		case OutcomeSkipped:
			s.Skipped++
		}
	}
	return s
}

type CaseRunResult struct {
	CaseID     string      `json:"caseId"`
	Name       string      `json:"name"`
	Method     string      `json:"method"`
	Path       string      `json:"path"`
	Outcome    CaseOutcome `json:"outcome"`
	StatusCode int         `json:"statusCode,omitempty"`
	Attempts   int         `json:"attempts"`
	DurationMs int64       `json:"durationMs"`
	Reason     string      `json:"reason,omitempty"`
}

type CaseResults []CaseRunResult

func (c *CaseResults) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*c = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for case results")
	}
	return json.Unmarshal(data, c)
}

func (c CaseResults) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ErrRunImmutable is returned when something tries to update a persisted run.
var ErrRunImmutable = errors.New("suite runs are immutable once written")

// SuiteRunResult is the auditable record of one execution.
type SuiteRunResult struct {
	ID         string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SuiteID    string      `gorm:"type:varchar(36);index" json:"suiteId"`
	ProjectID  string      `gorm:"type:varchar(36);index:idx_project_started,priority:1" json:"projectId"`
	Actor      Actor       `gorm:"type:varchar(20)" json:"actor"`
	ActorID    string      `gorm:"type:varchar(100)" json:"actorId,omitempty"`
	EnvKey     string      `gorm:"type:varchar(20)" json:"envKey"`
	BaseURL    string      `gorm:"type:varchar(255)" json:"baseUrl"`
	StartedAt  time.Time   `gorm:"index:idx_project_started,priority:2" json:"startedAt"`
	FinishedAt time.Time   `json:"finishedAt"`
	Summary    Summary     `gorm:"embedded;embeddedPrefix:summary_" json:"summary"`
	Results    CaseResults `gorm:"type:json" json:"results"`
}

func (SuiteRunResult) TableName() string { return "suite_runs" }

func (r *SuiteRunResult) BeforeUpdate(tx *gorm.DB) error {
	return ErrRunImmutable
}

func (r *SuiteRunResult) BeforeDelete(tx *gorm.DB) error {
	return ErrRunImmutable
}
