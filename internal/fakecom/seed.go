package fakecom

import (
	"fmt"

	api "github.com/vpatelsj/comops/api/v1beta1"
)

// AddServer registers a server. An empty ID is generated.
func (s *Server) AddServer(srv api.Server) api.Server {
	if srv.ID == "" {
		srv.ID = newID()
	}
	if srv.ResourceURI == "" {
		srv.ResourceURI = "/api/compute/v1/servers/" + srv.ID
	}
	s.mu.Lock()
	s.servers = append(s.servers, srv)
	s.stateCounts["OK"]++
	s.mu.Unlock()
	return srv
}

// AddGroup registers a group. An empty ID is generated.
func (s *Server) AddGroup(g api.Group) api.Group {
	if g.ID == "" {
		g.ID = newID()
	}
	if g.ResourceURI == "" {
		g.ResourceURI = "/api/compute/v1/groups/" + g.ID
	}
	s.mu.Lock()
	s.groups = append(s.groups, g)
	s.mu.Unlock()
	return g
}

// AddFirmwareBundle registers a firmware bundle. An empty ID is generated.
func (s *Server) AddFirmwareBundle(fb api.FirmwareBundle) api.FirmwareBundle {
	if fb.ID == "" {
		fb.ID = newID()
	}
	if fb.ResourceURI == "" {
		fb.ResourceURI = "/api/compute/v1/firmware-bundles/" + fb.ID
	}
	s.mu.Lock()
	s.bundles = append(s.bundles, fb)
	s.mu.Unlock()
	return fb
}

// AddJobTemplate registers a job template. An empty ID is generated.
func (s *Server) AddJobTemplate(jt api.JobTemplate) api.JobTemplate {
	if jt.ID == "" {
		jt.ID = newID()
	}
	if jt.ResourceURI == "" {
		jt.ResourceURI = "/api/compute/v1/job-templates/" + jt.ID
	}
	s.mu.Lock()
	s.templates = append(s.templates, jt)
	s.mu.Unlock()
	return jt
}

// AddFilter registers a saved filter. An empty ID is generated.
func (s *Server) AddFilter(f api.Filter) api.Filter {
	if f.ID == "" {
		f.ID = newID()
	}
	if f.ResourceURI == "" {
		f.ResourceURI = "/api/compute/v1/filters/" + f.ID
	}
	s.mu.Lock()
	s.filters = append(s.filters, f)
	s.mu.Unlock()
	return f
}

// Job returns a job as the service currently stores it.
func (s *Server) Job(id string) (api.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fj, ok := s.jobs[id]
	if !ok {
		return api.Job{}, false
	}
	return fj.job, true
}

// Group returns a group by ID.
func (s *Server) Group(id string) (api.Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.groupIndex(id); i >= 0 {
		return s.groups[i], true
	}
	return api.Group{}, false
}

// Schedules returns the stored schedules.
func (s *Server) Schedules() []api.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]api.Schedule(nil), s.schedules...)
}

// Demo holds the handles of the inventory created by SeedDemo.
type Demo struct {
	Servers []api.Server
	Group   api.Group
	Bundle  api.FirmwareBundle
}

// SeedDemo populates an inventory resembling a small production account:
// N DL360 servers in group "Production-Group", SPP 2022.03.0, the built-in job
// templates and the "All Servers" filter.
func (s *Server) SeedDemo(n int) Demo {
	var demo Demo

	s.AddFirmwareBundle(api.FirmwareBundle{ReleaseVersion: "2021.10.0", DisplayName: "HPE Service Pack for ProLiant 2021.10.0", BundleType: "BASE"})
	demo.Bundle = s.AddFirmwareBundle(api.FirmwareBundle{ReleaseVersion: "2022.03.0", DisplayName: "HPE Service Pack for ProLiant 2022.03.0", BundleType: "BASE"})

	s.AddJobTemplate(api.JobTemplate{Name: api.JobTemplateGroupFirmwareUpdate, Description: "Update firmware on every server of a group"})
	s.AddJobTemplate(api.JobTemplate{Name: api.JobTemplateDataRoundupReportOrchestrator, Description: "Generate a fleet report"})
	s.AddFilter(api.Filter{Name: "All Servers", FilterExpression: ""})

	var devices []api.GroupDevice
	for i := 0; i < n; i++ {
		srv := s.AddServer(api.Server{
			Name:        fmt.Sprintf("HPE-HOL%02d", i+1),
			DisplayName: fmt.Sprintf("HPE-HOL%02d", i+1),
			Generation:  10,
			Hardware: api.ServerHardware{
				SerialNumber: fmt.Sprintf("CZ2D1%05d", i+1),
				Model:        "ProLiant DL360 Gen10 Plus",
				PowerState:   "ON",
				BMC:          api.BMC{IP: fmt.Sprintf("192.168.0.%d", i+10)},
				Health:       api.ServerHealth{Summary: "OK"},
			},
			State: api.ServerState{Managed: true, Connected: true},
		})
		demo.Servers = append(demo.Servers, srv)
		devices = append(devices, api.GroupDevice{ID: srv.ID, Name: srv.Name, ResourceURI: srv.ResourceURI})
	}

	demo.Group = s.AddGroup(api.Group{
		Name:             "Production-Group",
		Description:      "My Production Group with DL360 Gen10 Plus servers",
		FirmwareBaseline: demo.Bundle.ID,
		Devices:          devices,
		Tags:             map[string]string{"location": "Houston"},
	})
	return demo
}
