package workflow

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	api "github.com/vpatelsj/comops/api/v1beta1"
	"github.com/vpatelsj/comops/pkg/jobpoller"
)

// Workflow names as recorded in the journal
const (
	NameGroupFirmwareUpdate    = "group-firmware-update"
	NameScheduleFirmwareUpdate = "schedule-firmware-update"
	NameCarbonReport           = "carbon-report"
)

// jobsURI is the collection a schedule posts its job to
const jobsURI = "/api/compute/v1/jobs"

// GroupFirmwareUpdate updates every server of the named group to the firmware
// bundle with the given release version and reports the result per server.
func (r *Runner) GroupFirmwareUpdate(ctx context.Context, groupName, baseline string) (*api.Job, error) {
	tmpl, err := r.resolver.JobTemplateByName(ctx, api.JobTemplateGroupFirmwareUpdate)
	if err != nil {
		return nil, err
	}
	group, err := r.resolver.GroupByName(ctx, groupName)
	if err != nil {
		return nil, err
	}
	bundle, err := r.resolver.FirmwareBundleByVersion(ctx, baseline)
	if err != nil {
		return nil, err
	}

	devices := group.DeviceIDs()
	r.log.Info("Starting group firmware update", "group", group.Name, "baseline", bundle.ReleaseVersion, "devices", len(devices))

	job, err := r.track(ctx, NameGroupFirmwareUpdate, jobpoller.JobSpec{
		TemplateURI: tmpl.ResourceURI,
		TargetURI:   group.ResourceURI,
		Data: map[string]interface{}{
			"bundle_id": bundle.ID,
			"devices":   devices,
		},
	}, r.printStateCounts)
	if status, failed := failureStatus(err); failed {
		fmt.Fprintf(r.out, "Group firmware update failed! %s\n", status)
		return job, err
	}
	if err != nil {
		return job, err
	}

	fmt.Fprintf(r.out, "State: %s - Status: %s\n", job.State, job.Status)
	for _, id := range devices {
		server, err := r.client.GetServer(ctx, id)
		if err != nil {
			return job, fmt.Errorf("read server %s: %w", id, err)
		}
		if server.LastFirmwareUpdate != nil {
			fmt.Fprintf(r.out, "Server: %s - Report status: %s\n", server.Name, server.LastFirmwareUpdate.Status)
		} else {
			fmt.Fprintf(r.out, "Server: %s - State: Firmware update successful - No update was required\n", server.Name)
		}
	}
	return job, nil
}

// ScheduleRequest describes a deferred group firmware update.
type ScheduleRequest struct {
	Group    string
	Baseline string
	StartAt  time.Time

	// Interval is an ISO 8601 duration such as P7D; empty runs once
	Interval string

	// Name and Description default to values derived from the group and baseline
	Name        string
	Description string
}

var isoDurationPattern = regexp.MustCompile(`^P(?:\d+[YMWD])*(?:T(?:\d+[HMS])+)?$`)

func (req *ScheduleRequest) validate(now time.Time) error {
	var errs []error
	if req.Group == "" {
		errs = append(errs, errors.New("group is required"))
	}
	if req.Baseline == "" {
		errs = append(errs, errors.New("baseline is required"))
	}
	if req.StartAt.IsZero() {
		errs = append(errs, errors.New("start time is required"))
	} else if req.StartAt.Before(now) {
		errs = append(errs, fmt.Errorf("start time %s is in the past", req.StartAt.Format(time.RFC3339)))
	}
	if req.Interval != "" && (req.Interval == "P" || !isoDurationPattern.MatchString(req.Interval)) {
		errs = append(errs, fmt.Errorf("interval %q is not an ISO 8601 duration", req.Interval))
	}
	return errors.Join(errs...)
}

// ScheduleFirmwareUpdate sets the group's firmware baseline and creates a
// schedule that submits a group firmware update job at req.StartAt.
func (r *Runner) ScheduleFirmwareUpdate(ctx context.Context, req ScheduleRequest) (*api.Schedule, error) {
	if err := req.validate(time.Now()); err != nil {
		return nil, fmt.Errorf("invalid schedule request: %w", err)
	}
	if req.Name == "" {
		req.Name = "Firmware upgrade for group " + req.Group
	}
	if req.Description == "" {
		req.Description = "Upgrade to SPP " + req.Baseline
	}

	bundle, err := r.resolver.FirmwareBundleByVersion(ctx, req.Baseline)
	if err != nil {
		return nil, err
	}
	group, err := r.resolver.GroupByName(ctx, req.Group)
	if err != nil {
		return nil, err
	}
	tmpl, err := r.resolver.JobTemplateByName(ctx, api.JobTemplateGroupFirmwareUpdate)
	if err != nil {
		return nil, err
	}

	if _, err := r.client.UpdateGroup(ctx, group.ID, api.GroupPatch{FirmwareBaseline: &bundle.ID}); err != nil {
		return nil, fmt.Errorf("set firmware baseline of group %s: %w", group.Name, err)
	}
	fmt.Fprintf(r.out, "Group '%s' modification to use SPP '%s' - Status: OK\n", group.Name, bundle.ReleaseVersion)

	timing := api.ScheduleTiming{StartAt: req.StartAt.UTC().Format(time.RFC3339)}
	if req.Interval != "" {
		timing.Interval = &req.Interval
	}

	created, err := r.client.CreateSchedule(ctx, api.CreateScheduleRequest{
		Name:                  req.Name,
		Description:           req.Description,
		AssociatedResourceURI: group.ResourceURI,
		Purpose:               api.SchedulePurposeGroupFirmwareUpdate,
		Schedule:              timing,
		Operation: api.ScheduledOperation{
			Type:   "REST",
			Method: "POST",
			URI:    jobsURI,
			Body: api.CreateJobRequest{
				JobTemplateURI: tmpl.ResourceURI,
				ResourceURI:    group.ResourceURI,
				Data: map[string]interface{}{
					"devices":       group.DeviceIDs(),
					"parallel":      true,
					"stopOnFailure": false,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}

	schedule, err := r.client.GetSchedule(ctx, created.ID)
	if err != nil {
		return nil, fmt.Errorf("read schedule %s: %w", created.ID, err)
	}
	r.log.Info("Schedule created", "id", schedule.ID, "startAt", schedule.Schedule.StartAt)

	interval := "once"
	if schedule.Schedule.Interval != nil {
		interval = *schedule.Schedule.Interval
	}
	fmt.Fprintf(r.out, "Schedule: %s (%s)\n", schedule.Name, schedule.ID)
	fmt.Fprintf(r.out, "  Purpose:  %s\n", schedule.Purpose)
	fmt.Fprintf(r.out, "  Start at: %s\n", schedule.Schedule.StartAt)
	fmt.Fprintf(r.out, "  Interval: %s\n", interval)
	fmt.Fprintf(r.out, "  Devices:  %d\n", len(group.Devices))
	return schedule, nil
}
