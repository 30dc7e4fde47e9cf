package comclient

import (
	"context"

	api "github.com/vpatelsj/comops/api/v1beta1"
)

// Client defines the Compute Ops Management API operations used by the toolkit
type Client interface {
	// ListServers lists servers, one page at a time
	ListServers(ctx context.Context, opts api.ListOptions) (*api.Collection[api.Server], error)

	// GetServer retrieves a server by ID
	GetServer(ctx context.Context, id string) (*api.Server, error)

	// ListServerAlerts lists the alerts raised by a server
	ListServerAlerts(ctx context.Context, id string) ([]api.Alert, error)

	// GetServerStateCounts returns the fleet-wide count of servers per state
	GetServerStateCounts(ctx context.Context) (api.ServerStateCounts, error)

	// ListActivities lists audit activities
	ListActivities(ctx context.Context, opts api.ListOptions) (*api.Collection[api.Activity], error)

	ListFirmwareBundles(ctx context.Context) ([]api.FirmwareBundle, error)
	GetFirmwareBundle(ctx context.Context, id string) (*api.FirmwareBundle, error)

	ListGroups(ctx context.Context) ([]api.Group, error)
	GetGroup(ctx context.Context, id string) (*api.Group, error)
	CreateGroup(ctx context.Context, req api.CreateGroupRequest) (*api.Group, error)
	// UpdateGroup applies a merge-patch to a group
	UpdateGroup(ctx context.Context, id string, patch api.GroupPatch) (*api.Group, error)
	DeleteGroup(ctx context.Context, id string) error
	AddGroupDevices(ctx context.Context, id string, devices []api.GroupDevice) (*api.Group, error)

	ListJobTemplates(ctx context.Context) ([]api.JobTemplate, error)
	GetJobTemplate(ctx context.Context, id string) (*api.JobTemplate, error)

	ListFilters(ctx context.Context) ([]api.Filter, error)

	ListJobs(ctx context.Context) ([]api.Job, error)
	GetJob(ctx context.Context, id string) (*api.Job, error)
	// GetJobByURI re-reads a job through the handle returned at submission
	GetJobByURI(ctx context.Context, uri string) (*api.Job, error)
	// CreateJob submits an asynchronous job
	CreateJob(ctx context.Context, req api.CreateJobRequest) (*api.Job, error)

	ListSchedules(ctx context.Context) ([]api.Schedule, error)
	GetSchedule(ctx context.Context, id string) (*api.Schedule, error)
	CreateSchedule(ctx context.Context, req api.CreateScheduleRequest) (*api.Schedule, error)
	// UpdateSchedule applies a merge-patch to a schedule
	UpdateSchedule(ctx context.Context, id string, patch api.SchedulePatch) (*api.Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error

	// GetReportData fetches the data sub-resource of a report location
	GetReportData(ctx context.Context, location string) (*api.ReportData, error)
}
