package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	api "github.com/vpatelsj/comops/api/v1beta1"
	"github.com/vpatelsj/comops/internal/config"
	"github.com/vpatelsj/comops/internal/fakecom"
	"github.com/vpatelsj/comops/internal/journal"
	"github.com/vpatelsj/comops/pkg/jobpoller"
)

func newFakeCOM(t *testing.T) (*fakecom.Server, string) {
	t.Helper()
	return newFakeCOMWithConfig(t, nil)
}

func newFakeCOMWithConfig(t *testing.T, cfg *fakecom.Config) (*fakecom.Server, string) {
	t.Helper()
	fake := fakecom.New(cfg)
	fake.SeedDemo(3)
	server := httptest.NewServer(fake.Handler())
	t.Cleanup(server.Close)
	return fake, server.URL
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{config.EnvEndpoint, config.EnvClientID, config.EnvClientSecret, config.EnvAPIVersion, config.EnvTokenURL} {
		t.Setenv(k, "")
	}
}

// runCLI runs comctl against the fake service with valid credentials.
func runCLI(t *testing.T, endpoint string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := runApp(t, newApp(&out, &errOut), endpoint, args...)
	return out.String(), err
}

func runApp(t *testing.T, a *app, endpoint string, args ...string) error {
	t.Helper()
	clearEnv(t)
	t.Setenv(config.EnvClientSecret, "fake-secret")

	return a.execute(context.Background(), append(args,
		"--endpoint", endpoint,
		"--client-id", "fake-client",
		"--token-url", endpoint+fakecom.TokenPath,
		"--poll-interval", "1ms",
	))
}

func TestReportCarbon(t *testing.T) {
	_, endpoint := newFakeCOM(t)

	out, err := runCLI(t, endpoint, "report", "carbon")
	if err != nil {
		t.Fatalf("report carbon failed: %v", err)
	}
	if out != "Carbon_Report,name=Total emissions=707.0\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestFirmwareUpdateJournaled(t *testing.T) {
	_, endpoint := newFakeCOM(t)
	journalPath := filepath.Join(t.TempDir(), "journal.db")

	out, err := runCLI(t, endpoint, "firmware", "update", "--group", "Production-Group", "--baseline", "2022.03.0", "--journal", journalPath)
	if err != nil {
		t.Fatalf("firmware update failed: %v", err)
	}
	if !strings.Contains(out, "State: complete") || !strings.Contains(out, "Server: HPE-HOL01 - Report status: OK") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = runCLI(t, endpoint, "journal", "list", "--journal", journalPath)
	if err != nil {
		t.Fatalf("journal list failed: %v", err)
	}
	if !strings.Contains(out, "group-firmware-update") || !strings.Contains(out, "complete") {
		t.Errorf("unexpected journal:\n%s", out)
	}
}

func TestFailedJobReleasesJournal(t *testing.T) {
	cfg := fakecom.DefaultConfig()
	cfg.JobStates = []string{"pending", "running", "error"}
	_, endpoint := newFakeCOMWithConfig(t, cfg)
	journalPath := filepath.Join(t.TempDir(), "journal.db")

	var out, errOut bytes.Buffer
	a := newApp(&out, &errOut)
	err := runApp(t, a, endpoint, "firmware", "update", "--group", "Production-Group", "--baseline", "2022.03.0", "--journal", journalPath)
	if !errors.Is(err, jobpoller.ErrJobFailed) {
		t.Fatalf("expected job failure, got %v", err)
	}
	if !strings.Contains(out.String(), "Group firmware update failed! Firmware update failed on 1 server") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
	if a.journal != nil {
		t.Error("expected the journal to be closed after a failed command")
	}

	j, err := journal.Open(journalPath)
	if err != nil {
		t.Fatalf("reopen journal: %v", err)
	}
	defer j.Close()
	entries, err := j.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list journal: %v", err)
	}
	if len(entries) != 1 || entries[0].State != api.JobStateError || entries[0].FinishedAt == nil {
		t.Errorf("expected one finished entry in error, got %+v", entries)
	}
}

func TestFirmwareUpdateUnknownGroup(t *testing.T) {
	fake, endpoint := newFakeCOM(t)

	_, err := runCLI(t, endpoint, "firmware", "update", "--group", "Nope", "--baseline", "2022.03.0")
	if err == nil || !strings.Contains(err.Error(), `group "Nope" not found`) {
		t.Fatalf("expected group not found, got %v", err)
	}
	if n := fake.CountCalls("POST /compute-ops/v1beta2/jobs"); n != 0 {
		t.Errorf("expected no job submission, got %d", n)
	}
}

func TestFirmwareSchedule(t *testing.T) {
	fake, endpoint := newFakeCOM(t)

	out, err := runCLI(t, endpoint, "firmware", "schedule", "--group", "Production-Group", "--baseline", "2022.03.0", "--in", "1h", "--interval", "P7D")
	if err != nil {
		t.Fatalf("firmware schedule failed: %v", err)
	}
	if !strings.Contains(out, "Interval: P7D") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if len(fake.Schedules()) != 1 {
		t.Errorf("expected one schedule, got %d", len(fake.Schedules()))
	}

	out, err = runCLI(t, endpoint, "schedules", "list")
	if err != nil {
		t.Fatalf("schedules list failed: %v", err)
	}
	if !strings.Contains(out, "Firmware upgrade for group Production-Group") {
		t.Errorf("unexpected schedules:\n%s", out)
	}
}

func TestServersListByModel(t *testing.T) {
	_, endpoint := newFakeCOM(t)

	out, err := runCLI(t, endpoint, "servers", "list", "--model", "ProLiant DL360 Gen10 Plus")
	if err != nil {
		t.Fatalf("servers list failed: %v", err)
	}
	for _, name := range []string{"HPE-HOL01", "HPE-HOL02", "HPE-HOL03"} {
		if !strings.Contains(out, name) {
			t.Errorf("expected %s in output:\n%s", name, out)
		}
	}

	out, err = runCLI(t, endpoint, "servers", "list", "--model", "Synergy 480 Gen10")
	if err != nil {
		t.Fatalf("servers list failed: %v", err)
	}
	if !strings.Contains(out, "No servers found.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestGroupsCreateAndDelete(t *testing.T) {
	_, endpoint := newFakeCOM(t)

	if _, err := runCLI(t, endpoint, "groups", "create", "Staging", "--baseline", "2021.10.0"); err != nil {
		t.Fatalf("groups create failed: %v", err)
	}
	out, err := runCLI(t, endpoint, "groups", "list")
	if err != nil {
		t.Fatalf("groups list failed: %v", err)
	}
	if !strings.Contains(out, "Staging") {
		t.Errorf("expected Staging in output:\n%s", out)
	}

	if _, err := runCLI(t, endpoint, "groups", "delete", "Staging"); err != nil {
		t.Fatalf("groups delete failed: %v", err)
	}
	out, _ = runCLI(t, endpoint, "groups", "list")
	if strings.Contains(out, "Staging") {
		t.Errorf("expected Staging to be gone:\n%s", out)
	}
}

func TestJobsSubmitWait(t *testing.T) {
	_, endpoint := newFakeCOM(t)

	out, err := runCLI(t, endpoint, "jobs", "submit", "--template", "DataRoundupReportOrchestrator",
		"--target", "/api/compute/v1/filters/all", "--data", `{"reportType":"CARBON_FOOTPRINT"}`, "--wait")
	if err != nil {
		t.Fatalf("jobs submit failed: %v", err)
	}
	if !strings.Contains(out, "submitted") || !strings.Contains(out, "State: complete") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestInvalidConfiguration(t *testing.T) {
	clearEnv(t)

	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).execute(context.Background(), []string{"groups", "list"})
	if err == nil {
		t.Fatal("expected configuration error")
	}
	for _, want := range []string{"endpoint: required", "client-id: required", "client-secret: required"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestFlagOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvEndpoint, "https://us-west2-api.compute.cloud.hpe.com")
	t.Setenv(config.EnvClientID, "id")
	t.Setenv(config.EnvClientSecret, "secret")

	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).execute(context.Background(), []string{"groups", "list", "--endpoint", "ftp://example.com"})
	if err == nil || !strings.Contains(err.Error(), "invalid URL 'ftp://example.com'") {
		t.Fatalf("expected flag endpoint to be validated, got %v", err)
	}
}
