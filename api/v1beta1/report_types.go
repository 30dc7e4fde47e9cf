package v1beta1

// Report types understood by the DataRoundupReportOrchestrator template
const (
	ReportTypeCarbonFootprint = "CARBON_FOOTPRINT"
	ReportTypeEnergy          = "ENERGY"
)

// SubjectTypeTotal tags the fleet-wide aggregate series of a report.
const SubjectTypeTotal = "TOTAL"

// ReportData is the /data sub-resource of a report.
type ReportData struct {
	ID     string         `json:"id,omitempty"`
	Name   string         `json:"name,omitempty"`
	Series []ReportSeries `json:"series"`
}

// ReportSeries is one summary record of a report.
type ReportSeries struct {
	Name    string        `json:"name,omitempty"`
	Subject ReportSubject `json:"subject"`
	Summary ReportSummary `json:"summary"`
	Unit    string        `json:"unit,omitempty"`
}

// ReportSubject identifies what a series summarizes.
type ReportSubject struct {
	Type        string `json:"type"`
	DisplayName string `json:"displayName,omitempty"`
	ID          string `json:"id,omitempty"`
}

// ReportSummary carries the aggregates of a series.
type ReportSummary struct {
	Sum float64 `json:"sum"`
	Avg float64 `json:"avg,omitempty"`
	Min float64 `json:"min,omitempty"`
	Max float64 `json:"max,omitempty"`
}
