package v1beta1

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownState is returned for job states outside the known lifecycle.
var ErrUnknownState = errors.New("unknown job state")

// JobState is the lifecycle state of a job. Values are normalized to lower case
// when decoded, so "Running" and "running" compare equal.
type JobState string

const (
	JobStatePending  JobState = "pending"
	JobStateRunning  JobState = "running"
	JobStateComplete JobState = "complete"
	JobStateError    JobState = "error"
)

// ParseJobState normalizes a raw state string. Unrecognized values return an
// *UnknownStateError.
func ParseJobState(raw string) (JobState, error) {
	s := JobState(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsKnown() {
		return s, &UnknownStateError{State: raw}
	}
	return s, nil
}

// IsKnown reports whether the state is part of the job lifecycle.
func (s JobState) IsKnown() bool {
	switch s {
	case JobStatePending, JobStateRunning, JobStateComplete, JobStateError:
		return true
	}
	return false
}

// IsTerminal returns true if no further transition can occur.
func (s JobState) IsTerminal() bool {
	return s == JobStateComplete || s == JobStateError
}

// UnmarshalJSON lower-cases the state at the wire boundary.
func (s *JobState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = JobState(strings.ToLower(strings.TrimSpace(raw)))
	return nil
}

// UnknownStateError reports a job state the poller cannot interpret.
type UnknownStateError struct {
	JobID string
	State string
}

func (e *UnknownStateError) Error() string {
	if e.JobID != "" {
		return fmt.Sprintf("job %s: unknown state %q", e.JobID, e.State)
	}
	return fmt.Sprintf("unknown state %q", e.State)
}

func (e *UnknownStateError) Is(target error) bool {
	return target == ErrUnknownState
}

// StateSet is a set of job states.
type StateSet []JobState

// TerminalStates is the set of states from which no further transition occurs.
var TerminalStates = StateSet{JobStateComplete, JobStateError}

// Has reports whether s is in the set.
func (set StateSet) Has(s JobState) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// CreateJobRequest submits a job. ResourceURI is the job target.
type CreateJobRequest struct {
	JobTemplateURI string                 `json:"jobTemplateUri"`
	ResourceURI    string                 `json:"resourceUri"`
	Data           map[string]interface{} `json:"data,omitempty"`
}

// JobResults points at the output of a finished job.
type JobResults struct {
	// Location of a downstream resource (e.g., a report)
	Location string `json:"location,omitempty"`
}

// Job is a unit of asynchronous work tracked until it reaches a terminal state.
type Job struct {
	ID             string                 `json:"id"`
	ResourceURI    string                 `json:"resourceUri"`
	JobTemplateURI string                 `json:"jobTemplateUri"`
	Resource       ResourceReference      `json:"resource"`
	State          JobState               `json:"state"`
	Status         string                 `json:"status,omitempty"`
	Results        *JobResults            `json:"results,omitempty"`
	Data           map[string]interface{} `json:"data,omitempty"`
	CreatedAt      string                 `json:"createdAt,omitempty"`
	UpdatedAt      string                 `json:"updatedAt,omitempty"`
}

// TargetURI returns the resource the job operates on.
func (j *Job) TargetURI() string {
	return j.Resource.ResourceURI
}

// ResultLocation returns results.location, or "" if none was published.
func (j *Job) ResultLocation() string {
	if j.Results == nil {
		return ""
	}
	return j.Results.Location
}
