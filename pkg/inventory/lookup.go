// Package inventory resolves named resources to the handles used in follow-up calls.
//
// Every lookup lists the full collection and takes the first match. A missing
// entry is a hard failure: callers must not continue with an empty handle.
package inventory

import (
	"context"
	"errors"
	"fmt"

	api "github.com/vpatelsj/comops/api/v1beta1"
	"github.com/vpatelsj/comops/comclient"
)

// ErrResourceNotFound is returned when no entry of a collection matches.
var ErrResourceNotFound = errors.New("resource not found")

// NotFoundError names the collection and key that failed to match.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrResourceNotFound
}

// First returns the first item accepted by match.
func First[T any](items []T, kind, key string, match func(T) bool) (*T, error) {
	for i := range items {
		if match(items[i]) {
			return &items[i], nil
		}
	}
	return nil, &NotFoundError{Kind: kind, Key: key}
}

// Resolver looks resources up by name against a live client.
type Resolver struct {
	Client comclient.Client
}

// NewResolver creates a Resolver.
func NewResolver(c comclient.Client) *Resolver {
	return &Resolver{Client: c}
}

// JobTemplateByName returns the job template with the given name.
func (r *Resolver) JobTemplateByName(ctx context.Context, name string) (*api.JobTemplate, error) {
	items, err := r.Client.ListJobTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list job templates: %w", err)
	}
	return First(items, "job template", name, func(jt api.JobTemplate) bool { return jt.Name == name })
}

// GroupByName returns the group with the given name.
func (r *Resolver) GroupByName(ctx context.Context, name string) (*api.Group, error) {
	items, err := r.Client.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return First(items, "group", name, func(g api.Group) bool { return g.Name == name })
}

// FirmwareBundleByVersion returns the bundle with the given release version (e.g. "2022.03.0").
func (r *Resolver) FirmwareBundleByVersion(ctx context.Context, version string) (*api.FirmwareBundle, error) {
	items, err := r.Client.ListFirmwareBundles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list firmware bundles: %w", err)
	}
	return First(items, "firmware bundle", version, func(fb api.FirmwareBundle) bool { return fb.ReleaseVersion == version })
}

// FilterByName returns the saved filter with the given name.
func (r *Resolver) FilterByName(ctx context.Context, name string) (*api.Filter, error) {
	items, err := r.Client.ListFilters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	return First(items, "filter", name, func(f api.Filter) bool { return f.Name == name })
}

// ScheduleByName returns the schedule with the given name.
func (r *Resolver) ScheduleByName(ctx context.Context, name string) (*api.Schedule, error) {
	items, err := r.Client.ListSchedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return First(items, "schedule", name, func(s api.Schedule) bool { return s.Name == name })
}

// ServerByName returns the server with the given name.
func (r *Resolver) ServerByName(ctx context.Context, name string) (*api.Server, error) {
	servers, err := r.allServers(ctx)
	if err != nil {
		return nil, err
	}
	return First(servers, "server", name, func(s api.Server) bool { return s.Name == name })
}

// ServersByModel returns every server whose hardware model matches exactly.
// An empty result is not an error.
func (r *Resolver) ServersByModel(ctx context.Context, model string) ([]api.Server, error) {
	servers, err := r.allServers(ctx)
	if err != nil {
		return nil, err
	}
	var out []api.Server
	for _, s := range servers {
		if s.Hardware.Model == model {
			out = append(out, s)
		}
	}
	return out, nil
}

// allServers walks every page of the server collection.
func (r *Resolver) allServers(ctx context.Context) ([]api.Server, error) {
	var all []api.Server
	opts := api.ListOptions{}
	for {
		page, err := r.Client.ListServers(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("list servers: %w", err)
		}
		all = append(all, page.Items...)
		if len(page.Items) == 0 || page.Total == 0 || len(all) >= page.Total {
			return all, nil
		}
		opts.Offset = len(all)
	}
}
