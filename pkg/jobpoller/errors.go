package jobpoller

import (
	"errors"
	"fmt"
	"time"

	api "github.com/vpatelsj/comops/api/v1beta1"
)

var (
	// ErrJobFailed is returned when a job reaches the error state.
	ErrJobFailed = errors.New("job failed")

	// ErrTimeout is returned when the wait or attempt bound is exhausted.
	ErrTimeout = errors.New("timed out waiting for job")

	// ErrNoResult is returned by FetchResult for jobs without results.location.
	ErrNoResult = errors.New("job has no result location")

	// errAttemptsExhausted stops the wait loop once MaxAttempts reads are spent
	errAttemptsExhausted = errors.New("attempts exhausted")
)

// JobFailedError carries the status message of a failed job.
type JobFailedError struct {
	JobID  string
	Status string
}

func (e *JobFailedError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("job %s failed", e.JobID)
	}
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Status)
}

func (e *JobFailedError) Is(target error) bool {
	return target == ErrJobFailed
}

// TimeoutError reports the last observed state when polling gave up.
type TimeoutError struct {
	JobID     string
	LastState api.JobState
	Attempts  int
	Waited    time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("job %s still %q after %d attempts (%s)", e.JobID, e.LastState, e.Attempts, e.Waited.Round(time.Millisecond))
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
