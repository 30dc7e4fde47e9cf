package v1beta1

// Well-known job template names
const (
	JobTemplateGroupFirmwareUpdate           = "GroupFirmwareUpdate"
	JobTemplateDataRoundupReportOrchestrator = "DataRoundupReportOrchestrator"
)

// JobTemplate is a named, reusable job definition referenced by submissions.
type JobTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ResourceURI string `json:"resourceUri"`
}

// Filter is a saved server query usable as a job target.
type Filter struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	FilterExpression string `json:"filter,omitempty"`
	ResourceURI      string `json:"resourceUri"`
}
