package bulk

import (
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// Operation is a Bulk API job operation.
type Operation string

// Operations supported by the client.
const (
	OpQuery  Operation = "query"
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Valid reports whether op can be used for an ingest job.
func (op Operation) Valid() bool {
	switch op {
	case OpInsert, OpUpdate, OpDelete:
		return true
	}
	return false
}

// JobState is the lifecycle state of a bulk job.
type JobState string

// Job states. Ingest jobs move Open → UploadComplete → InProgress and end in
// JobComplete, Failed or Aborted.
const (
	StateOpen           JobState = "Open"
	StateUploadComplete JobState = "UploadComplete"
	StateInProgress     JobState = "InProgress"
	StateJobComplete    JobState = "JobComplete"
	StateFailed         JobState = "Failed"
	StateAborted        JobState = "Aborted"
)

// Terminal reports whether no further transition is possible.
func (s JobState) Terminal() bool {
	return s == StateJobComplete || s == StateFailed || s == StateAborted
}

// JobInfo is the job description returned by create and status calls.
type JobInfo struct {
	ID                     string    `json:"id"`
	Object                 string    `json:"object,omitempty"`
	Operation              Operation `json:"operation"`
	State                  JobState  `json:"state"`
	ErrorMessage           string    `json:"errorMessage,omitempty"`
	NumberRecordsProcessed int       `json:"numberRecordsProcessed"`
	NumberRecordsFailed    int       `json:"numberRecordsFailed"`
}

// JobResult summarizes a finished ingest job. Rows the CRM rejected are in
// FailedRecords, carrying sf__Id and sf__Error next to the submitted columns.
type JobResult struct {
	ID            string
	Object        string
	Operation     Operation
	Processed     int
	Failed        int
	FailedRecords *table.Table
}

// Succeeded is the number of rows the CRM accepted.
func (r *JobResult) Succeeded() int {
	if r == nil {
		return 0
	}
	return r.Processed - r.Failed
}

type createQueryRequest struct {
	Operation Operation `json:"operation"`
	Query     string    `json:"query"`
}

type createIngestRequest struct {
	Operation   Operation `json:"operation"`
	Object      string    `json:"object"`
	ContentType string    `json:"contentType"`
	LineEnding  string    `json:"lineEnding"`
}

type stateRequest struct {
	State JobState `json:"state"`
}
