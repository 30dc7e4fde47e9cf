package inventory

import (
	"context"
	"errors"
	"testing"

	api "github.com/vpatelsj/comops/api/v1beta1"
	"github.com/vpatelsj/comops/comclient"
)

// stubClient serves fixed collections and counts list calls. Methods not
// overridden panic through the nil embedded interface.
type stubClient struct {
	comclient.Client

	templates []api.JobTemplate
	groups    []api.Group
	bundles   []api.FirmwareBundle
	servers   []api.Server
	pageSize  int
	listErr   error

	calls int
}

func (s *stubClient) ListJobTemplates(ctx context.Context) ([]api.JobTemplate, error) {
	s.calls++
	return s.templates, s.listErr
}

func (s *stubClient) ListGroups(ctx context.Context) ([]api.Group, error) {
	s.calls++
	return s.groups, s.listErr
}

func (s *stubClient) ListFirmwareBundles(ctx context.Context) ([]api.FirmwareBundle, error) {
	s.calls++
	return s.bundles, s.listErr
}

func (s *stubClient) ListServers(ctx context.Context, opts api.ListOptions) (*api.Collection[api.Server], error) {
	s.calls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	page := s.servers[min(opts.Offset, len(s.servers)):]
	if s.pageSize > 0 && len(page) > s.pageSize {
		page = page[:s.pageSize]
	}
	return &api.Collection[api.Server]{Count: len(page), Offset: opts.Offset, Total: len(s.servers), Items: page}, nil
}

func TestFirst(t *testing.T) {
	items := []api.Group{{ID: "g1", Name: "A"}, {ID: "g2", Name: "B"}, {ID: "g3", Name: "B"}}

	got, err := First(items, "group", "B", func(g api.Group) bool { return g.Name == "B" })
	if err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if got.ID != "g2" {
		t.Errorf("expected first match g2, got %s", got.ID)
	}

	_, err = First(items, "group", "C", func(g api.Group) bool { return g.Name == "C" })
	if !errors.Is(err, ErrResourceNotFound) {
		t.Fatalf("expected ErrResourceNotFound, got %v", err)
	}
	if err.Error() != `group "C" not found` {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestResolverNotFound(t *testing.T) {
	tests := []struct {
		name    string
		client  *stubClient
		resolve func(r *Resolver) error
	}{
		{
			name:   "empty template list",
			client: &stubClient{},
			resolve: func(r *Resolver) error {
				_, err := r.JobTemplateByName(context.Background(), api.JobTemplateGroupFirmwareUpdate)
				return err
			},
		},
		{
			name:   "no matching group",
			client: &stubClient{groups: []api.Group{{ID: "g1", Name: "Staging"}}},
			resolve: func(r *Resolver) error {
				_, err := r.GroupByName(context.Background(), "Production-Group")
				return err
			},
		},
		{
			name:   "no matching bundle",
			client: &stubClient{bundles: []api.FirmwareBundle{{ID: "fb1", ReleaseVersion: "2021.10.0"}}},
			resolve: func(r *Resolver) error {
				_, err := r.FirmwareBundleByVersion(context.Background(), "2022.03.0")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.resolve(NewResolver(tt.client))
			if !errors.Is(err, ErrResourceNotFound) {
				t.Fatalf("expected ErrResourceNotFound, got %v", err)
			}
			if tt.client.calls != 1 {
				t.Errorf("expected exactly one list call, got %d", tt.client.calls)
			}
		})
	}
}

func TestResolverListError(t *testing.T) {
	client := &stubClient{listErr: &comclient.APIError{Method: "GET", Path: "/groups", StatusCode: 500}}
	_, err := NewResolver(client).GroupByName(context.Background(), "x")
	if !errors.Is(err, comclient.ErrAPI) {
		t.Fatalf("expected ErrAPI, got %v", err)
	}
	if errors.Is(err, ErrResourceNotFound) {
		t.Error("list failure must not be reported as not found")
	}
}

func TestResolverMatches(t *testing.T) {
	client := &stubClient{
		templates: []api.JobTemplate{
			{ID: "jt1", Name: api.JobTemplateDataRoundupReportOrchestrator, ResourceURI: "/api/compute/v1/job-templates/jt1"},
			{ID: "jt2", Name: api.JobTemplateGroupFirmwareUpdate, ResourceURI: "/api/compute/v1/job-templates/jt2"},
		},
		bundles: []api.FirmwareBundle{
			{ID: "fb1", ReleaseVersion: "2021.10.0"},
			{ID: "fb2", ReleaseVersion: "2022.03.0"},
		},
	}
	r := NewResolver(client)

	jt, err := r.JobTemplateByName(context.Background(), api.JobTemplateGroupFirmwareUpdate)
	if err != nil {
		t.Fatalf("JobTemplateByName failed: %v", err)
	}
	if jt.ResourceURI != "/api/compute/v1/job-templates/jt2" {
		t.Errorf("unexpected template %+v", jt)
	}

	fb, err := r.FirmwareBundleByVersion(context.Background(), "2022.03.0")
	if err != nil {
		t.Fatalf("FirmwareBundleByVersion failed: %v", err)
	}
	if fb.ID != "fb2" {
		t.Errorf("expected fb2, got %s", fb.ID)
	}
}

func TestServersPaged(t *testing.T) {
	var servers []api.Server
	models := []string{"ProLiant DL360 Gen10 Plus", "ProLiant DL380 Gen10", "ProLiant DL360 Gen10 Plus", "ProLiant DL360 Gen10 Plus", "Synergy 480"}
	for i, m := range models {
		servers = append(servers, api.Server{ID: string(rune('a' + i)), Name: "srv-" + string(rune('a'+i)), Hardware: api.ServerHardware{Model: m}})
	}
	client := &stubClient{servers: servers, pageSize: 2}
	r := NewResolver(client)

	got, err := r.ServersByModel(context.Background(), "ProLiant DL360 Gen10 Plus")
	if err != nil {
		t.Fatalf("ServersByModel failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 servers, got %d", len(got))
	}
	if client.calls != 3 {
		t.Errorf("expected 3 pages, got %d", client.calls)
	}

	srv, err := r.ServerByName(context.Background(), "srv-e")
	if err != nil {
		t.Fatalf("ServerByName failed: %v", err)
	}
	if srv.Hardware.Model != "Synergy 480" {
		t.Errorf("unexpected server %+v", srv)
	}

	none, err := r.ServersByModel(context.Background(), "Apollo 4200")
	if err != nil || len(none) != 0 {
		t.Errorf("expected empty result without error, got %v, %v", none, err)
	}
}
