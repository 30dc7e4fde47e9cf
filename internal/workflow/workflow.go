// Package workflow implements the end-to-end automations of the toolkit: a
// group firmware update, its scheduled variant and the carbon footprint report.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-logr/logr"

	api "github.com/vpatelsj/comops/api/v1beta1"
	"github.com/vpatelsj/comops/comclient"
	"github.com/vpatelsj/comops/pkg/inventory"
	"github.com/vpatelsj/comops/pkg/jobpoller"
)

// Recorder journals submitted jobs. *journal.Journal satisfies it.
type Recorder interface {
	Record(ctx context.Context, workflow string, job *api.Job) error
	Finish(ctx context.Context, job *api.Job) error
}

// Runner runs workflows against one COM session and prints their progress.
type Runner struct {
	client   comclient.Client
	poller   *jobpoller.Poller
	resolver *inventory.Resolver
	out      io.Writer
	log      logr.Logger

	// Journal, if set, records every submitted job
	Journal Recorder

	// TextfilePath, if set, also writes report points as a Prometheus textfile
	TextfilePath string
}

// NewRunner creates a Runner. Output lines are written to out.
func NewRunner(client comclient.Client, poller *jobpoller.Poller, out io.Writer, log logr.Logger) *Runner {
	return &Runner{
		client:   client,
		poller:   poller,
		resolver: inventory.NewResolver(client),
		out:      out,
		log:      log.WithName("workflow"),
	}
}

// track submits spec, journals it and waits for it to start and finish.
// On a job failure the failed job is returned with the error.
func (r *Runner) track(ctx context.Context, workflow string, spec jobpoller.JobSpec, onTick jobpoller.TickFunc) (*api.Job, error) {
	job, err := r.poller.Submit(ctx, spec)
	if err != nil {
		return nil, err
	}
	if r.Journal != nil {
		if err := r.Journal.Record(ctx, workflow, job); err != nil {
			r.log.Error(err, "Failed to journal job", "id", job.ID)
		}
	}

	final, err := r.await(ctx, job, onTick)

	if r.Journal != nil && final != nil && final.State.IsTerminal() {
		if err := r.Journal.Finish(ctx, final); err != nil {
			r.log.Error(err, "Failed to journal job result", "id", final.ID)
		}
	}
	return final, err
}

func (r *Runner) await(ctx context.Context, job *api.Job, onTick jobpoller.TickFunc) (*api.Job, error) {
	job, err := r.poller.Await(ctx, job, r.poller.Start)
	if err != nil || job.State.IsTerminal() {
		return job, err
	}
	completion := r.poller.Completion
	completion.OnTick = onTick
	return r.poller.Await(ctx, job, completion)
}

// printStateCounts prints the fleet-wide server state summary. It is only
// informational so failures are logged, not returned.
func (r *Runner) printStateCounts(ctx context.Context, _ *api.Job, _ int) {
	counts, err := r.client.GetServerStateCounts(ctx)
	if err != nil {
		r.log.Error(err, "Failed to read server state counts")
		return
	}
	fmt.Fprintln(r.out, formatCounts(counts))
}

func formatCounts(counts api.ServerStateCounts) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return "Server states: " + strings.Join(parts, " ")
}

// failureStatus returns the status message of a failed job error.
func failureStatus(err error) (string, bool) {
	var failed *jobpoller.JobFailedError
	if errors.As(err, &failed) {
		return failed.Status, true
	}
	return "", false
}
