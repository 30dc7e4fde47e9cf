// Package comclient is a client for the HPE Compute Ops Management REST API.
package comclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	api "github.com/vpatelsj/comops/api/v1beta1"
)

const (
	// DefaultTokenURL is the GreenLake SSO token endpoint
	DefaultTokenURL = "https://sso.common.cloud.hpe.com/as/token.oauth2"

	DefaultAPIVersion = "v1beta2"
	DefaultPathPrefix = "/compute-ops"

	// Path of the fleet-wide server state counters
	serverStateCountsPath = "/ui-doorway/compute/v1/servers/counts/state"

	contentTypeJSON       = "application/json"
	contentTypeMergePatch = "application/merge-patch+json"
)

// Config holds the connection settings of an HTTPClient.
type Config struct {
	// Endpoint is the regional connectivity endpoint, e.g. https://us-west2-api.compute.cloud.hpe.com
	Endpoint string

	// APIVersion is the versioned path segment (v1beta1, v1beta2)
	APIVersion string

	// PathPrefix precedes the API version in every collection path
	PathPrefix string

	ClientID     string
	ClientSecret string
	TokenURL     string

	// Timeout bounds each HTTP request
	Timeout time.Duration
}

func (c *Config) setDefaults() {
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.PathPrefix == "" {
		c.PathPrefix = DefaultPathPrefix
	}
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
}

// HTTPClient implements Client over HTTPS. It is the session object of a
// process: it holds the endpoint and a cached bearer token.
type HTTPClient struct {
	endpoint   string
	apiVersion string
	pathPrefix string
	httpClient *http.Client
	logger     logr.Logger
}

// NewHTTPClient creates a client that obtains its bearer token with the OAuth2
// client-credentials grant. The token is fetched lazily and reused until it expires.
func NewHTTPClient(ctx context.Context, cfg Config, logger logr.Logger) (*HTTPClient, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("client ID and client secret must be set")
	}
	cfg.setDefaults()

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	// The token request itself is bounded by the same timeout
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: cfg.Timeout})
	return newHTTPClient(cfg, cc.Client(tokenCtx), logger)
}

// NewHTTPClientWithToken creates a client that sends a fixed bearer token.
func NewHTTPClientWithToken(cfg Config, token string, logger logr.Logger) (*HTTPClient, error) {
	if token == "" {
		return nil, fmt.Errorf("token must be set")
	}
	cfg.setDefaults()

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return newHTTPClient(cfg, oauth2.NewClient(context.Background(), ts), logger)
}

func newHTTPClient(cfg Config, hc *http.Client, logger logr.Logger) (*HTTPClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint must be set")
	}
	if _, err := url.Parse(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	hc.Timeout = cfg.Timeout

	return &HTTPClient{
		endpoint:   cfg.Endpoint,
		apiVersion: cfg.APIVersion,
		pathPrefix: cfg.PathPrefix,
		httpClient: hc,
		logger:     logger.WithName("comclient"),
	}, nil
}

// collectionPath returns the versioned path of a collection, e.g. /compute-ops/v1beta2/servers
func (c *HTTPClient) collectionPath(parts ...string) string {
	escaped := make([]string, 0, len(parts))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return c.pathPrefix + "/" + c.apiVersion + "/" + strings.Join(escaped, "/")
}

// doRequest performs an authenticated request and decodes the JSON response into out.
// path may carry a query string.
func (c *HTTPClient) doRequest(ctx context.Context, method, path, contentType string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.V(1).Info("request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, path string, out interface{}) error {
	return c.doRequest(ctx, http.MethodGet, path, "", nil, out)
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out interface{}) error {
	return c.doRequest(ctx, http.MethodPost, path, contentTypeJSON, body, out)
}

func (c *HTTPClient) patch(ctx context.Context, path string, body, out interface{}) error {
	return c.doRequest(ctx, http.MethodPatch, path, contentTypeMergePatch, body, out)
}

func (c *HTTPClient) delete(ctx context.Context, path string) error {
	return c.doRequest(ctx, http.MethodDelete, path, "", nil, nil)
}

// withQuery appends paging and filter parameters to a path.
func withQuery(path string, opts api.ListOptions) string {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Filter != "" {
		q.Set("filter", opts.Filter)
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// listItems fetches a collection and returns its items.
func listItems[T any](ctx context.Context, c *HTTPClient, path string) ([]T, error) {
	var page api.Collection[T]
	if err := c.get(ctx, path, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ListServers lists servers via HTTP GET
func (c *HTTPClient) ListServers(ctx context.Context, opts api.ListOptions) (*api.Collection[api.Server], error) {
	var page api.Collection[api.Server]
	if err := c.get(ctx, withQuery(c.collectionPath("servers"), opts), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetServer retrieves a server via HTTP GET
func (c *HTTPClient) GetServer(ctx context.Context, id string) (*api.Server, error) {
	var server api.Server
	if err := c.get(ctx, c.collectionPath("servers", id), &server); err != nil {
		return nil, err
	}
	return &server, nil
}

func (c *HTTPClient) ListServerAlerts(ctx context.Context, id string) ([]api.Alert, error) {
	return listItems[api.Alert](ctx, c, c.collectionPath("servers", id, "alerts"))
}

// GetServerStateCounts reads the fleet-wide per-state counters.
func (c *HTTPClient) GetServerStateCounts(ctx context.Context) (api.ServerStateCounts, error) {
	var counts struct {
		Counts api.ServerStateCounts `json:"counts"`
	}
	if err := c.get(ctx, serverStateCountsPath, &counts); err != nil {
		return nil, err
	}
	return counts.Counts, nil
}

func (c *HTTPClient) ListActivities(ctx context.Context, opts api.ListOptions) (*api.Collection[api.Activity], error) {
	var page api.Collection[api.Activity]
	if err := c.get(ctx, withQuery(c.collectionPath("activities"), opts), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) ListFirmwareBundles(ctx context.Context) ([]api.FirmwareBundle, error) {
	return listItems[api.FirmwareBundle](ctx, c, c.collectionPath("firmware-bundles"))
}

func (c *HTTPClient) GetFirmwareBundle(ctx context.Context, id string) (*api.FirmwareBundle, error) {
	var fb api.FirmwareBundle
	if err := c.get(ctx, c.collectionPath("firmware-bundles", id), &fb); err != nil {
		return nil, err
	}
	return &fb, nil
}

func (c *HTTPClient) ListGroups(ctx context.Context) ([]api.Group, error) {
	return listItems[api.Group](ctx, c, c.collectionPath("groups"))
}

func (c *HTTPClient) GetGroup(ctx context.Context, id string) (*api.Group, error) {
	var group api.Group
	if err := c.get(ctx, c.collectionPath("groups", id), &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (c *HTTPClient) CreateGroup(ctx context.Context, req api.CreateGroupRequest) (*api.Group, error) {
	var group api.Group
	if err := c.post(ctx, c.collectionPath("groups"), req, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// UpdateGroup sends a merge-patch via HTTP PATCH
func (c *HTTPClient) UpdateGroup(ctx context.Context, id string, patch api.GroupPatch) (*api.Group, error) {
	var group api.Group
	if err := c.patch(ctx, c.collectionPath("groups", id), patch, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (c *HTTPClient) DeleteGroup(ctx context.Context, id string) error {
	return c.delete(ctx, c.collectionPath("groups", id))
}

func (c *HTTPClient) AddGroupDevices(ctx context.Context, id string, devices []api.GroupDevice) (*api.Group, error) {
	var group api.Group
	if err := c.post(ctx, c.collectionPath("groups", id, "devices"), api.AddDevicesRequest{Devices: devices}, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (c *HTTPClient) ListJobTemplates(ctx context.Context) ([]api.JobTemplate, error) {
	return listItems[api.JobTemplate](ctx, c, c.collectionPath("job-templates"))
}

func (c *HTTPClient) GetJobTemplate(ctx context.Context, id string) (*api.JobTemplate, error) {
	var jt api.JobTemplate
	if err := c.get(ctx, c.collectionPath("job-templates", id), &jt); err != nil {
		return nil, err
	}
	return &jt, nil
}

func (c *HTTPClient) ListFilters(ctx context.Context) ([]api.Filter, error) {
	return listItems[api.Filter](ctx, c, c.collectionPath("filters"))
}

func (c *HTTPClient) ListJobs(ctx context.Context) ([]api.Job, error) {
	return listItems[api.Job](ctx, c, c.collectionPath("jobs"))
}

// GetJob retrieves job status via HTTP GET
func (c *HTTPClient) GetJob(ctx context.Context, id string) (*api.Job, error) {
	return c.GetJobByURI(ctx, c.collectionPath("jobs", id))
}

// GetJobByURI retrieves job status through its resource URI.
func (c *HTTPClient) GetJobByURI(ctx context.Context, uri string) (*api.Job, error) {
	if !strings.HasPrefix(uri, "/") {
		return nil, fmt.Errorf("job URI %q is not an absolute path", uri)
	}
	var job api.Job
	if err := c.get(ctx, uri, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJob submits a job via HTTP POST
func (c *HTTPClient) CreateJob(ctx context.Context, req api.CreateJobRequest) (*api.Job, error) {
	var job api.Job
	if err := c.post(ctx, c.collectionPath("jobs"), req, &job); err != nil {
		return nil, err
	}
	if job.ResourceURI == "" {
		return nil, &TransportError{Method: http.MethodPost, Path: c.collectionPath("jobs"), Err: fmt.Errorf("response carries no job resourceUri")}
	}
	return &job, nil
}

func (c *HTTPClient) ListSchedules(ctx context.Context) ([]api.Schedule, error) {
	return listItems[api.Schedule](ctx, c, c.collectionPath("schedules"))
}

func (c *HTTPClient) GetSchedule(ctx context.Context, id string) (*api.Schedule, error) {
	var s api.Schedule
	if err := c.get(ctx, c.collectionPath("schedules", id), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) CreateSchedule(ctx context.Context, req api.CreateScheduleRequest) (*api.Schedule, error) {
	var s api.Schedule
	if err := c.post(ctx, c.collectionPath("schedules"), req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) UpdateSchedule(ctx context.Context, id string, patch api.SchedulePatch) (*api.Schedule, error) {
	var s api.Schedule
	if err := c.patch(ctx, c.collectionPath("schedules", id), patch, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) DeleteSchedule(ctx context.Context, id string) error {
	return c.delete(ctx, c.collectionPath("schedules", id))
}

// GetReportData fetches <location>/data.
func (c *HTTPClient) GetReportData(ctx context.Context, location string) (*api.ReportData, error) {
	if !strings.HasPrefix(location, "/") {
		return nil, fmt.Errorf("report location %q is not an absolute path", location)
	}
	var data api.ReportData
	if err := c.get(ctx, strings.TrimRight(location, "/")+"/data", &data); err != nil {
		return nil, err
	}
	return &data, nil
}

var _ Client = (*HTTPClient)(nil)
