// Package fakecom provides an in-process simulation of the Compute Ops
// Management API for tests and demos.
//
// Jobs progress through a configurable state sequence. By default every status
// read advances the job by one state; with StepDuration set, the state is
// derived from the time elapsed since submission instead.
package fakecom

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	api "github.com/vpatelsj/comops/api/v1beta1"
)

// TokenPath is the path of the OAuth2 token endpoint served by the fake.
const TokenPath = "/as/token.oauth2"

// Config holds behavior configuration for the fake service.
type Config struct {
	// Credentials accepted by the token endpoint
	ClientID     string
	ClientSecret string

	// Token is the bearer token issued and required on every API call
	Token string

	// JobStates is the sequence of raw states a job reports. The last entry repeats.
	JobStates []string

	// StepDuration, when non-zero, advances jobs by wall clock instead of by reads
	StepDuration time.Duration

	// FailureStatus is the status message of jobs that end in "error"
	FailureStatus string

	// ReportSum is the TOTAL series sum of generated reports
	ReportSum float64
}

// DefaultConfig returns a configuration where jobs complete after a few reads.
func DefaultConfig() *Config {
	return &Config{
		ClientID:      "fake-client",
		ClientSecret:  "fake-secret",
		Token:         "fake-token",
		JobStates:     []string{"pending", "running", "running", "complete"},
		FailureStatus: "Firmware update failed on 1 server",
		ReportSum:     707.004,
	}
}

type fakeJob struct {
	job       api.Job
	states    []string
	reads     int
	createdAt time.Time

	// applied is the last state whose side effects ran
	applied api.JobState
}

// Server simulates the Compute Ops Management API.
type Server struct {
	mu  sync.RWMutex
	cfg *Config

	servers     []api.Server
	groups      []api.Group
	bundles     []api.FirmwareBundle
	templates   []api.JobTemplate
	filters     []api.Filter
	activities  []api.Activity
	schedules   []api.Schedule
	jobs        map[string]*fakeJob
	jobOrder    []string
	reports     map[string]api.ReportData
	stateCounts api.ServerStateCounts

	calls  []string
	router chi.Router
	now    func() time.Time
}

// New creates a fake service. A nil cfg uses DefaultConfig.
func New(cfg *Config) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if len(cfg.JobStates) == 0 {
		cfg.JobStates = DefaultConfig().JobStates
	}
	s := &Server{
		cfg:         cfg,
		jobs:        make(map[string]*fakeJob),
		reports:     make(map[string]api.ReportData),
		schedules:   []api.Schedule{},
		stateCounts: api.ServerStateCounts{},
		now:         time.Now,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler of the fake.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.recordCall)

	r.Post(TokenPath, s.handleToken)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireBearer)

		r.Get("/ui-doorway/compute/v1/servers/counts/state", s.handleStateCounts)

		r.Route("/compute-ops/{version}", func(r chi.Router) {
			r.Get("/servers", s.handleListServers)
			r.Get("/servers/{id}", s.handleGetServer)
			r.Get("/servers/{id}/alerts", s.handleServerAlerts)

			r.Get("/activities", s.handleListActivities)

			r.Get("/firmware-bundles", listHandler(s, func() []api.FirmwareBundle { return s.bundles }))
			r.Get("/firmware-bundles/{id}", getHandler(s, "firmware bundle", func() []api.FirmwareBundle { return s.bundles }, func(fb api.FirmwareBundle) string { return fb.ID }))

			r.Get("/job-templates", listHandler(s, func() []api.JobTemplate { return s.templates }))
			r.Get("/job-templates/{id}", getHandler(s, "job template", func() []api.JobTemplate { return s.templates }, func(jt api.JobTemplate) string { return jt.ID }))

			r.Get("/filters", listHandler(s, func() []api.Filter { return s.filters }))

			r.Get("/groups", listHandler(s, func() []api.Group { return s.groups }))
			r.Post("/groups", s.handleCreateGroup)
			r.Get("/groups/{id}", getHandler(s, "group", func() []api.Group { return s.groups }, func(g api.Group) string { return g.ID }))
			r.Patch("/groups/{id}", s.handlePatchGroup)
			r.Delete("/groups/{id}", s.handleDeleteGroup)
			r.Post("/groups/{id}/devices", s.handleAddDevices)

			r.Get("/jobs", s.handleListJobs)
			r.Post("/jobs", s.handleCreateJob)
			r.Get("/jobs/{id}", s.handleGetJob)

			r.Get("/schedules", listHandler(s, func() []api.Schedule { return s.schedules }))
			r.Post("/schedules", s.handleCreateSchedule)
			r.Get("/schedules/{id}", getHandler(s, "schedule", func() []api.Schedule { return s.schedules }, func(sc api.Schedule) string { return sc.ID }))
			r.Patch("/schedules/{id}", s.handlePatchSchedule)
			r.Delete("/schedules/{id}", s.handleDeleteSchedule)

			r.Get("/reports/{id}/data", s.handleReportData)
		})
	})
	return r
}

// recordCall keeps "METHOD /path" of every request for assertions.
func (s *Server) recordCall(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.cfg.Token {
			writeError(w, http.StatusUnauthorized, "invalid or missing bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Calls returns the recorded requests in order.
func (s *Server) Calls() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// CountCalls returns how many recorded requests start with prefix, e.g. "GET /compute-ops/v1beta2/jobs/".
func (s *Server) CountCalls(prefix string) int {
	n := 0
	for _, c := range s.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// ResetCalls clears the recorded requests.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]interface{}{"httpStatusCode": code, "message": msg})
}

func newID() string {
	return uuid.NewString()
}

func listHandler[T any](s *Server, items func() []T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		list := append([]T(nil), items()...)
		s.mu.RUnlock()
		if list == nil {
			list = []T{}
		}
		writeJSON(w, http.StatusOK, api.Collection[T]{Count: len(list), Total: len(list), Items: list})
	}
}

func getHandler[T any](s *Server, kind string, items func() []T, id func(T) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		want := chi.URLParam(r, "id")
		s.mu.RLock()
		defer s.mu.RUnlock()
		for _, it := range items() {
			if id(it) == want {
				writeJSON(w, http.StatusOK, it)
				return
			}
		}
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s %s not found", kind, want))
	}
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	id, secret, ok := r.BasicAuth()
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.Form.Get("grant_type") != "client_credentials" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}
	if !ok || id != s.cfg.ClientID || secret != s.cfg.ClientSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_client"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": s.cfg.Token,
		"token_type":   "Bearer",
		"expires_in":   7199,
	})
}

func (s *Server) handleStateCounts(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	counts := make(api.ServerStateCounts, len(s.stateCounts))
	for k, v := range s.stateCounts {
		counts[k] = v
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"counts": counts})
}

func (s *Server) handleListServers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	s.mu.RLock()
	all := append([]api.Server(nil), s.servers...)
	s.mu.RUnlock()

	if offset > len(all) {
		offset = len(all)
	}
	page := all[offset:]
	if limit > 0 && limit < len(page) {
		page = page[:limit]
	}
	if page == nil {
		page = []api.Server{}
	}
	writeJSON(w, http.StatusOK, api.Collection[api.Server]{Count: len(page), Offset: offset, Total: len(all), Items: page})
}

func (s *Server) handleGetServer(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.serverIndex(chi.URLParam(r, "id")); i >= 0 {
		writeJSON(w, http.StatusOK, s.servers[i])
		return
	}
	writeError(w, http.StatusNotFound, "server not found")
}

func (s *Server) handleServerAlerts(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	found := s.serverIndex(chi.URLParam(r, "id")) >= 0
	s.mu.RUnlock()
	if !found {
		writeError(w, http.StatusNotFound, "server not found")
		return
	}
	writeJSON(w, http.StatusOK, api.Collection[api.Alert]{Items: []api.Alert{}})
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	filter := r.URL.Query().Get("filter")

	s.mu.RLock()
	var items []api.Activity
	for _, a := range s.activities {
		if matchActivity(a, filter) {
			items = append(items, a)
		}
	}
	s.mu.RUnlock()

	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	if items == nil {
		items = []api.Activity{}
	}
	writeJSON(w, http.StatusOK, api.Collection[api.Activity]{Count: len(items), Total: len(items), Items: items})
}

// matchActivity understands the two filter forms the toolkit sends:
// "source/type eq 'X'" and "contains(source/resourceUri,'X')".
func matchActivity(a api.Activity, filter string) bool {
	if filter == "" {
		return true
	}
	if v, ok := quoted(filter, "source/type eq "); ok && a.Source.Type != v {
		return false
	}
	if v, ok := quoted(filter, "contains(source/resourceUri,"); ok && !strings.Contains(a.Source.ResourceURI, v) {
		return false
	}
	if v, ok := quoted(filter, "contains(key,"); ok && !strings.Contains(a.Key, v) {
		return false
	}
	return true
}

func quoted(filter, prefix string) (string, bool) {
	i := strings.Index(filter, prefix)
	if i < 0 {
		return "", false
	}
	rest := filter[i+len(prefix):]
	start := strings.IndexByte(rest, '\'')
	if start < 0 {
		return "", false
	}
	end := strings.IndexByte(rest[start+1:], '\'')
	if end < 0 {
		return "", false
	}
	return rest[start+1 : start+1+end], true
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req api.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	g := s.AddGroup(api.Group{
		Name:                   req.Name,
		Description:            req.Description,
		FirmwareBaseline:       req.FirmwareBaseline,
		AutoIloFwUpdateEnabled: req.AutoIloFwUpdateEnabled,
		AutoFwUpdateOnAdd:      req.AutoFwUpdateOnAdd,
		DeviceSettingsURIs:     req.DeviceSettingsURIs,
		Tags:                   req.Tags,
	})
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handlePatchGroup(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "application/merge-patch+json" {
		writeError(w, http.StatusUnsupportedMediaType, "expected application/merge-patch+json")
		return
	}
	var patch api.GroupPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.groupIndex(chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "group not found")
		return
	}
	g := &s.groups[i]
	if patch.Name != nil {
		g.Name = *patch.Name
	}
	if patch.Description != nil {
		g.Description = *patch.Description
	}
	if patch.FirmwareBaseline != nil {
		g.FirmwareBaseline = *patch.FirmwareBaseline
	}
	writeJSON(w, http.StatusOK, *g)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.groupIndex(chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "group not found")
		return
	}
	s.groups = append(s.groups[:i], s.groups[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddDevices(w http.ResponseWriter, r *http.Request) {
	var req api.AddDevicesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.groupIndex(chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "group not found")
		return
	}
	for _, d := range req.Devices {
		if j := s.serverIndex(d.ID); j >= 0 {
			d.Name = s.servers[j].Name
			d.ResourceURI = s.servers[j].ResourceURI
		}
		s.groups[i].Devices = append(s.groups[i].Devices, d)
	}
	writeJSON(w, http.StatusOK, s.groups[i])
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	items := make([]api.Job, 0, len(s.jobOrder))
	for _, id := range s.jobOrder {
		items = append(items, s.jobs[id].job)
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, api.Collection[api.Job]{Count: len(items), Total: len(items), Items: items})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req api.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if req.JobTemplateURI == "" || req.ResourceURI == "" {
		writeError(w, http.StatusBadRequest, "jobTemplateUri and resourceUri are required")
		return
	}

	version := chi.URLParam(r, "version")
	id := newID()
	now := s.now()

	s.mu.Lock()
	fj := &fakeJob{
		job: api.Job{
			ID:             id,
			ResourceURI:    "/compute-ops/" + version + "/jobs/" + id,
			JobTemplateURI: req.JobTemplateURI,
			Resource:       api.ResourceReference{ResourceURI: req.ResourceURI},
			State:          api.JobState(strings.ToLower(s.cfg.JobStates[0])),
			Data:           req.Data,
			CreatedAt:      now.UTC().Format(time.RFC3339),
			UpdatedAt:      now.UTC().Format(time.RFC3339),
		},
		states:    append([]string(nil), s.cfg.JobStates...),
		createdAt: now,
	}
	s.jobs[id] = fj
	s.jobOrder = append(s.jobOrder, id)
	s.activities = append(s.activities, api.Activity{
		ID:        newID(),
		Key:       "JOB_CREATED",
		Message:   "Job created",
		Source:    api.ActivitySource{Type: "Job", ResourceURI: fj.job.ResourceURI},
		CreatedAt: fj.job.CreatedAt,
	})
	job := fj.job
	s.mu.Unlock()

	// Raw state on the wire, as submitted in the configured sequence
	writeJSON(w, http.StatusCreated, rawJob(job, s.cfg.JobStates[0]))
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	fj, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	raw := s.advance(fj, chi.URLParam(r, "version"))
	job := fj.job
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, rawJob(job, raw))
}

// advance moves a job to its next state and applies completion side effects.
// Caller must hold s.mu.
func (s *Server) advance(fj *fakeJob, version string) string {
	var idx int
	if s.cfg.StepDuration > 0 {
		idx = int(s.now().Sub(fj.createdAt) / s.cfg.StepDuration)
	} else {
		idx = fj.reads
		fj.reads++
	}
	if idx >= len(fj.states) {
		idx = len(fj.states) - 1
	}
	raw := fj.states[idx]
	fj.job.State = api.JobState(strings.ToLower(raw))
	fj.job.UpdatedAt = s.now().UTC().Format(time.RFC3339)

	if fj.applied == fj.job.State {
		return raw
	}
	fj.applied = fj.job.State
	switch fj.job.State {
	case api.JobStateRunning:
		fj.job.Status = "Job is running"
		s.stateCounts["UPDATING"] += s.targetSize(fj)
	case api.JobStateError:
		fj.job.Status = s.cfg.FailureStatus
	case api.JobStateComplete:
		fj.job.Status = "Job completed successfully"
		s.complete(fj, version)
	}
	return raw
}

// complete publishes results for finished jobs. Caller must hold s.mu.
func (s *Server) complete(fj *fakeJob, version string) {
	if n := s.targetSize(fj); n > 0 {
		s.stateCounts["UPDATING"] -= n
		if s.stateCounts["UPDATING"] <= 0 {
			delete(s.stateCounts, "UPDATING")
		}
		s.stateCounts["OK"] += n
	}

	if reportType, ok := fj.job.Data["reportType"].(string); ok {
		reportID := newID()
		s.reports[reportID] = api.ReportData{
			ID:   reportID,
			Name: reportType,
			Series: []api.ReportSeries{
				{Name: "server-1", Subject: api.ReportSubject{Type: "SERVER"}, Summary: api.ReportSummary{Sum: s.cfg.ReportSum / 2}},
				{Name: "Total", Subject: api.ReportSubject{Type: api.SubjectTypeTotal}, Summary: api.ReportSummary{Sum: s.cfg.ReportSum}},
			},
		}
		fj.job.Results = &api.JobResults{Location: "/compute-ops/" + version + "/reports/" + reportID}
		return
	}

	if devices, ok := fj.job.Data["devices"].([]interface{}); ok {
		for _, d := range devices {
			id, _ := d.(string)
			if i := s.serverIndex(id); i >= 0 {
				s.servers[i].LastFirmwareUpdate = &api.FirmwareUpdateInfo{
					Status:    "OK",
					BundleURI: fmt.Sprint(fj.job.Data["bundle_id"]),
					EndTime:   s.now().UTC().Format(time.RFC3339),
				}
			}
		}
	}
}

func (s *Server) targetSize(fj *fakeJob) int {
	if devices, ok := fj.job.Data["devices"].([]interface{}); ok {
		return len(devices)
	}
	return 0
}

// rawJob renders a job with its state string exactly as configured, so
// clients see the service's casing.
func rawJob(job api.Job, rawState string) map[string]interface{} {
	data, _ := json.Marshal(job)
	var m map[string]interface{}
	json.Unmarshal(data, &m)
	m["state"] = rawState
	return m
}

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req api.CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if req.Name == "" || req.Schedule.StartAt == "" {
		writeError(w, http.StatusBadRequest, "name and schedule.startAt are required")
		return
	}

	id := newID()
	sc := api.Schedule{
		ID:                    id,
		Name:                  req.Name,
		Description:           req.Description,
		ResourceURI:           "/compute-ops/" + chi.URLParam(r, "version") + "/schedules/" + id,
		AssociatedResourceURI: req.AssociatedResourceURI,
		Purpose:               req.Purpose,
		Schedule:              req.Schedule,
		Operation:             req.Operation,
		NextStartAt:           req.Schedule.StartAt,
	}

	s.mu.Lock()
	s.schedules = append(s.schedules, sc)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, sc)
}

func (s *Server) handlePatchSchedule(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "application/merge-patch+json" {
		writeError(w, http.StatusUnsupportedMediaType, "expected application/merge-patch+json")
		return
	}
	var patch api.SchedulePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.scheduleIndex(chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "schedule not found")
		return
	}
	sc := &s.schedules[i]
	if patch.Name != nil {
		sc.Name = *patch.Name
	}
	if patch.Description != nil {
		sc.Description = *patch.Description
	}
	if patch.AssociatedResourceURI != nil {
		sc.AssociatedResourceURI = *patch.AssociatedResourceURI
	}
	if patch.Purpose != nil {
		sc.Purpose = *patch.Purpose
	}
	writeJSON(w, http.StatusOK, *sc)
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.scheduleIndex(chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "schedule not found")
		return
	}
	s.schedules = append(s.schedules[:i], s.schedules[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReportData(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	data, ok := s.reports[chi.URLParam(r, "id")]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) serverIndex(id string) int {
	for i := range s.servers {
		if s.servers[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) groupIndex(id string) int {
	for i := range s.groups {
		if s.groups[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) scheduleIndex(id string) int {
	for i := range s.schedules {
		if s.schedules[i].ID == id {
			return i
		}
	}
	return -1
}
