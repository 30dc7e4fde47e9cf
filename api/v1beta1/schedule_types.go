package v1beta1

// Schedule purposes
const (
	SchedulePurposeGroupFirmwareUpdate = "GROUP_FW_UPDATE"
)

// Schedule is a deferred or recurring job submission.
type Schedule struct {
	ID                    string             `json:"id"`
	Name                  string             `json:"name"`
	Description           string             `json:"description,omitempty"`
	ResourceURI           string             `json:"resourceUri"`
	AssociatedResourceURI string             `json:"associatedResourceUri"`
	Purpose               string             `json:"purpose"`
	Schedule              ScheduleTiming     `json:"schedule"`
	Operation             ScheduledOperation `json:"operation"`
	NextStartAt           string             `json:"nextStartAt,omitempty"`
}

// ScheduleTiming is when a schedule fires.
type ScheduleTiming struct {
	// StartAt is an RFC 3339 timestamp (offset optional)
	StartAt string `json:"startAt"`

	// Interval is an ISO 8601 duration (P7D, P1M, ...). Nil runs once.
	Interval *string `json:"interval"`
}

// ScheduledOperation is the REST call a schedule issues when it fires.
type ScheduledOperation struct {
	Type   string           `json:"type"`
	Method string           `json:"method"`
	URI    string           `json:"uri"`
	Body   CreateJobRequest `json:"body"`
}

// CreateScheduleRequest is the body of a schedule creation call.
type CreateScheduleRequest struct {
	Name                  string             `json:"name"`
	Description           string             `json:"description,omitempty"`
	AssociatedResourceURI string             `json:"associatedResourceUri"`
	Purpose               string             `json:"purpose"`
	Schedule              ScheduleTiming     `json:"schedule"`
	Operation             ScheduledOperation `json:"operation"`
}

// SchedulePatch is a merge-patch document for a schedule.
type SchedulePatch struct {
	Name                  *string `json:"name,omitempty"`
	Description           *string `json:"description,omitempty"`
	AssociatedResourceURI *string `json:"associatedResourceUri,omitempty"`
	Purpose               *string `json:"purpose,omitempty"`
}
