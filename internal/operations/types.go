package operations

import (
	"time"
)

// operation Step identifiers
const (
	StageIDParse     = "parse"
	StageIDAggregate = "aggregate"
	StageIDFormat    = "format"
	StageIDExport    = "export"
)

// operation Step names
const (
	StageNameParse     = "Parse Sales"
	StageNameAggregate = "Aggregate Products"
	StageNameFormat    = "Format Report"
	StageNameExport    = "Export Report"
)

// Context keys for operation state
const (
	ContextKeyRecords   = "records"
	ContextKeyTable     = "table"
	ContextKeyRows      = "rows"
	ContextKeyReport    = "report"
	ContextKeyArtifacts = "artifacts"
)

// OperationRequest represents a request to execute a operation
type OperationRequest struct {
	ID string `json:"id"`
}

// OperationResponse represents the response from a operation execution
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatusValue  `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Error    string                `json:"error,omitempty"`

	// State gives callers access to the data the steps produced
	State *OperationState `json:"-"`
}
