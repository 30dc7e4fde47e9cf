package workflow

import (
	"context"
	"fmt"

	api "github.com/vpatelsj/comops/api/v1beta1"
	"github.com/vpatelsj/comops/pkg/jobpoller"
	"github.com/vpatelsj/comops/pkg/report"
)

// AllServersFilter is the built-in filter the fleet reports run against
const AllServersFilter = "All Servers"

// CarbonReport generates a carbon footprint report for every server and
// prints the fleet total as a line protocol point.
func (r *Runner) CarbonReport(ctx context.Context) (report.Point, error) {
	tmpl, err := r.resolver.JobTemplateByName(ctx, api.JobTemplateDataRoundupReportOrchestrator)
	if err != nil {
		return report.Point{}, err
	}
	filter, err := r.resolver.FilterByName(ctx, AllServersFilter)
	if err != nil {
		return report.Point{}, err
	}

	job, err := r.track(ctx, NameCarbonReport, jobpoller.JobSpec{
		TemplateURI: tmpl.ResourceURI,
		TargetURI:   filter.ResourceURI,
		Data:        map[string]interface{}{"reportType": api.ReportTypeCarbonFootprint},
	}, nil)
	if status, failed := failureStatus(err); failed {
		fmt.Fprintf(r.out, "Carbon footprint report creation failure! %s\n", status)
		return report.Point{}, err
	}
	if err != nil {
		return report.Point{}, err
	}

	r.logLatestActivity(ctx, job)

	data, err := r.poller.FetchResult(ctx, job)
	if err != nil {
		return report.Point{}, err
	}
	point, err := report.CarbonPoint(data)
	if err != nil {
		return report.Point{}, fmt.Errorf("report %s: %w", job.ResultLocation(), err)
	}

	fmt.Fprintln(r.out, point.Line())
	if r.TextfilePath != "" {
		if err := report.WriteTextfile(r.TextfilePath, point); err != nil {
			return point, err
		}
	}
	return point, nil
}

// logLatestActivity logs the most recent activity raised for job.
func (r *Runner) logLatestActivity(ctx context.Context, job *api.Job) {
	page, err := r.client.ListActivities(ctx, api.ListOptions{
		Filter: fmt.Sprintf("contains(source/resourceUri,'%s')", job.ID),
		Limit:  1,
	})
	if err != nil {
		r.log.Error(err, "Failed to read job activity", "id", job.ID)
		return
	}
	if len(page.Items) > 0 {
		a := page.Items[0]
		r.log.Info("Job activity", "id", job.ID, "key", a.Key, "message", a.Message)
	}
}
