package workflow

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"

	api "github.com/vpatelsj/comops/api/v1beta1"
	"github.com/vpatelsj/comops/comclient"
	"github.com/vpatelsj/comops/internal/fakecom"
	"github.com/vpatelsj/comops/internal/journal"
	"github.com/vpatelsj/comops/pkg/inventory"
	"github.com/vpatelsj/comops/pkg/jobpoller"
)

type fixture struct {
	fake    *fakecom.Server
	demo    fakecom.Demo
	runner  *Runner
	out     *bytes.Buffer
	journal *journal.Journal
}

func newFixture(t *testing.T, mutate func(*fakecom.Config)) *fixture {
	t.Helper()
	cfg := fakecom.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	fake := fakecom.New(cfg)
	demo := fake.SeedDemo(3)
	server := httptest.NewServer(fake.Handler())
	t.Cleanup(server.Close)

	client, err := comclient.NewHTTPClientWithToken(comclient.Config{Endpoint: server.URL}, cfg.Token, logr.Discard())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	log := testr.New(t)
	poller := jobpoller.New(client, log)
	poller.Start.Interval = time.Millisecond
	poller.Completion.Interval = time.Millisecond

	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })

	out := &bytes.Buffer{}
	runner := NewRunner(client, poller, out, log)
	runner.Journal = j
	return &fixture{fake: fake, demo: demo, runner: runner, out: out, journal: j}
}

func TestCarbonReport(t *testing.T) {
	f := newFixture(t, nil)
	f.runner.TextfilePath = filepath.Join(t.TempDir(), "carbon.prom")

	point, err := f.runner.CarbonReport(context.Background())
	if err != nil {
		t.Fatalf("CarbonReport failed: %v", err)
	}
	if point.Value != 707 {
		t.Errorf("expected rounded value 707, got %v", point.Value)
	}
	if got := f.out.String(); got != "Carbon_Report,name=Total emissions=707.0\n" {
		t.Errorf("unexpected output %q", got)
	}

	prom, err := os.ReadFile(f.runner.TextfilePath)
	if err != nil {
		t.Fatalf("textfile not written: %v", err)
	}
	if !strings.Contains(string(prom), "carbon_report_emissions") {
		t.Errorf("unexpected textfile:\n%s", prom)
	}

	entries, err := f.journal.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("journal list failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Workflow != NameCarbonReport || entries[0].State != api.JobStateComplete {
		t.Errorf("unexpected journal entries %+v", entries)
	}
	if !strings.Contains(entries[0].ResultLocation, "/reports/") {
		t.Errorf("expected journaled result location, got %q", entries[0].ResultLocation)
	}
}

func TestCarbonReportFailure(t *testing.T) {
	f := newFixture(t, func(cfg *fakecom.Config) {
		cfg.JobStates = []string{"pending", "error"}
		cfg.FailureStatus = "Report generation failed"
	})

	_, err := f.runner.CarbonReport(context.Background())
	if !errors.Is(err, jobpoller.ErrJobFailed) {
		t.Fatalf("expected ErrJobFailed, got %v", err)
	}
	if got := f.out.String(); got != "Carbon footprint report creation failure! Report generation failed\n" {
		t.Errorf("unexpected output %q", got)
	}
	if n := f.fake.CountCalls("GET /compute-ops/v1beta2/reports/"); n != 0 {
		t.Errorf("expected no report fetch, got %d", n)
	}

	entries, _ := f.journal.List(context.Background(), 0)
	if len(entries) != 1 || entries[0].State != api.JobStateError || entries[0].Status != "Report generation failed" {
		t.Errorf("unexpected journal entries %+v", entries)
	}
}

func TestGroupFirmwareUpdate(t *testing.T) {
	f := newFixture(t, nil)

	job, err := f.runner.GroupFirmwareUpdate(context.Background(), "Production-Group", "2022.03.0")
	if err != nil {
		t.Fatalf("GroupFirmwareUpdate failed: %v", err)
	}
	if job.State != api.JobStateComplete {
		t.Errorf("expected complete, got %q", job.State)
	}
	if job.TargetURI() != f.demo.Group.ResourceURI {
		t.Errorf("expected target %q, got %q", f.demo.Group.ResourceURI, job.TargetURI())
	}
	if job.Data["bundle_id"] != f.demo.Bundle.ID {
		t.Errorf("expected bundle %q in job data, got %v", f.demo.Bundle.ID, job.Data["bundle_id"])
	}

	out := f.out.String()
	if !strings.Contains(out, "State: complete - Status: Job completed successfully") {
		t.Errorf("missing final state line:\n%s", out)
	}
	if !strings.Contains(out, "Server states:") {
		t.Errorf("missing progress lines:\n%s", out)
	}
	for _, srv := range f.demo.Servers {
		if !strings.Contains(out, "Server: "+srv.Name+" - Report status: OK") {
			t.Errorf("missing report line for %s:\n%s", srv.Name, out)
		}
	}
}

func TestGroupFirmwareUpdateFailure(t *testing.T) {
	f := newFixture(t, func(cfg *fakecom.Config) {
		cfg.JobStates = []string{"pending", "running", "error"}
	})

	_, err := f.runner.GroupFirmwareUpdate(context.Background(), "Production-Group", "2022.03.0")
	if !errors.Is(err, jobpoller.ErrJobFailed) {
		t.Fatalf("expected ErrJobFailed, got %v", err)
	}
	if !strings.Contains(f.out.String(), "Group firmware update failed! Firmware update failed on 1 server") {
		t.Errorf("unexpected output:\n%s", f.out.String())
	}
	if n := f.fake.CountCalls("GET /compute-ops/v1beta2/servers/"); n != 0 {
		t.Errorf("expected no per-server report reads, got %d", n)
	}
}

func TestGroupFirmwareUpdateLookupFailure(t *testing.T) {
	tests := []struct {
		name     string
		group    string
		baseline string
	}{
		{"unknown group", "Staging-Group", "2022.03.0"},
		{"unknown baseline", "Production-Group", "2099.01.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)

			_, err := f.runner.GroupFirmwareUpdate(context.Background(), tt.group, tt.baseline)
			if !errors.Is(err, inventory.ErrResourceNotFound) {
				t.Fatalf("expected ErrResourceNotFound, got %v", err)
			}
			if n := f.fake.CountCalls("POST /compute-ops/v1beta2/jobs"); n != 0 {
				t.Errorf("expected no job submission, got %d", n)
			}
		})
	}
}

func TestScheduleFirmwareUpdate(t *testing.T) {
	f := newFixture(t, nil)

	startAt := time.Now().Add(24 * time.Hour)
	schedule, err := f.runner.ScheduleFirmwareUpdate(context.Background(), ScheduleRequest{
		Group:    "Production-Group",
		Baseline: "2022.03.0",
		StartAt:  startAt,
		Interval: "P7D",
	})
	if err != nil {
		t.Fatalf("ScheduleFirmwareUpdate failed: %v", err)
	}

	if schedule.Purpose != api.SchedulePurposeGroupFirmwareUpdate {
		t.Errorf("unexpected purpose %q", schedule.Purpose)
	}
	if schedule.Name != "Firmware upgrade for group Production-Group" {
		t.Errorf("unexpected name %q", schedule.Name)
	}
	if schedule.Schedule.Interval == nil || *schedule.Schedule.Interval != "P7D" {
		t.Errorf("unexpected interval %v", schedule.Schedule.Interval)
	}
	if schedule.AssociatedResourceURI != f.demo.Group.ResourceURI {
		t.Errorf("unexpected associated resource %q", schedule.AssociatedResourceURI)
	}

	op := schedule.Operation
	if op.Method != "POST" || op.URI != jobsURI || op.Body.ResourceURI != f.demo.Group.ResourceURI {
		t.Errorf("unexpected operation %+v", op)
	}
	devices, _ := op.Body.Data["devices"].([]interface{})
	if len(devices) != len(f.demo.Servers) {
		t.Errorf("expected %d devices, got %v", len(f.demo.Servers), op.Body.Data["devices"])
	}
	if op.Body.Data["parallel"] != true || op.Body.Data["stopOnFailure"] != false {
		t.Errorf("unexpected operation data %v", op.Body.Data)
	}

	group, ok := f.fake.Group(f.demo.Group.ID)
	if !ok || group.FirmwareBaseline != f.demo.Bundle.ID {
		t.Errorf("expected group baseline %q, got %q", f.demo.Bundle.ID, group.FirmwareBaseline)
	}
	if len(f.fake.Schedules()) != 1 {
		t.Errorf("expected one stored schedule, got %d", len(f.fake.Schedules()))
	}
	if !strings.Contains(f.out.String(), "Group 'Production-Group' modification to use SPP '2022.03.0' - Status: OK") {
		t.Errorf("unexpected output:\n%s", f.out.String())
	}
}

func TestScheduleRequestValidation(t *testing.T) {
	tests := []struct {
		name string
		req  ScheduleRequest
	}{
		{"past start", ScheduleRequest{Group: "g", Baseline: "b", StartAt: time.Now().Add(-time.Hour)}},
		{"missing start", ScheduleRequest{Group: "g", Baseline: "b"}},
		{"bad interval", ScheduleRequest{Group: "g", Baseline: "b", StartAt: time.Now().Add(time.Hour), Interval: "weekly"}},
		{"empty duration", ScheduleRequest{Group: "g", Baseline: "b", StartAt: time.Now().Add(time.Hour), Interval: "P"}},
		{"missing group", ScheduleRequest{Baseline: "b", StartAt: time.Now().Add(time.Hour)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			if _, err := f.runner.ScheduleFirmwareUpdate(context.Background(), tt.req); err == nil {
				t.Fatal("expected validation error")
			}
			if n := len(f.fake.Calls()); n != 0 {
				t.Errorf("expected no API calls, got %v", f.fake.Calls())
			}
		})
	}
}

func TestFormatCounts(t *testing.T) {
	got := formatCounts(api.ServerStateCounts{"UPDATING": 2, "OK": 1})
	if got != "Server states: OK=1 UPDATING=2" {
		t.Errorf("unexpected %q", got)
	}
}
