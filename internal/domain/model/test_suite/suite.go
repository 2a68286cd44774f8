package testsuite

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Visibility controls which projects may run a suite.
type Visibility string

const (
	VisibilityPrivate Visibility = "PRIVATE"
	VisibilityShared  Visibility = "SHARED"
)

// Suite is a named, versioned golden test suite.
type Suite struct {
	ID         string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProjectID  string     `gorm:"type:varchar(36);index" json:"projectId"`
	Visibility Visibility `gorm:"type:varchar(20);default:PRIVATE" json:"visibility"`
	Name       string     `gorm:"type:varchar(100)" json:"name"`
	Version    string     `gorm:"type:varchar(40)" json:"version"`
	Definition Definition `gorm:"type:json" json:"definition"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Suite) TableName() string { return "test_suites" }

// VisibleTo reports whether projectID may run the suite.
func (s *Suite) VisibleTo(projectID string) bool {
	return s.ProjectID == projectID || s.Visibility == VisibilityShared
}

// Definition is the ordered list of cases.
type Definition struct {
	Cases []Case `json:"cases"`
}

func (d *Definition) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*d = Definition{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for suite definition")
	}
	return json.Unmarshal(data, d)
}

func (d Definition) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

const CaseTypeHTTP = "http"

// Case is one request/expectation pair.
type Case struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Type    string            `json:"type,omitempty"`
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body,omitempty"`
	Repeat  int               `json:"repeat,omitempty"`
	Skip    bool              `json:"skip,omitempty"`
	Expect  Expectation       `json:"expect"`
}

// Supported reports whether the executor knows how to run the case.
func (c *Case) Supported() bool {
	return c.Type == "" || strings.EqualFold(c.Type, CaseTypeHTTP)
}

// Repeats returns how many times the request is issued, at least once.
func (c *Case) Repeats() int {
	if c.Repeat < 1 {
		return 1
	}
	return c.Repeat
}

// Expectation describes a passing response. Zero fields are not checked, except
// Status which defaults to any 2xx.
type Expectation struct {
	Status       int               `json:"status,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	BodyContains string            `json:"bodyContains,omitempty"`
	JSONPath     map[string]any    `json:"jsonPath,omitempty"`
}
