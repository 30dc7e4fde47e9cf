// Package jobpoller submits asynchronous jobs and polls them until they settle.
//
// A job is submitted once, then re-read through its handle at a fixed interval.
// Polling stops on the first state in the configured stop set, or on any
// terminal state, and is always bounded by MaxWait and optionally by
// MaxAttempts. A job that ends in error never has its result fetched.
package jobpoller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/wait"

	api "github.com/vpatelsj/comops/api/v1beta1"
	"github.com/vpatelsj/comops/comclient"
)

// Intervals observed for the two transitions of a job.
const (
	// StartInterval is used while waiting for a job to leave pending
	StartInterval = 5 * time.Second
	// CompletionInterval is used while waiting for a running job to finish
	CompletionInterval = 20 * time.Second

	// DefaultMaxWait bounds a single Await when Options.MaxWait is unset
	DefaultMaxWait = 2 * time.Hour
)

// TickFunc observes every status read. It must not modify the job.
type TickFunc func(ctx context.Context, job *api.Job, attempt int)

// JobSpec describes a job to submit.
type JobSpec struct {
	TemplateURI string
	TargetURI   string
	Data        map[string]interface{}
}

// Options controls a single Await.
type Options struct {
	// Interval between status reads. The first read is immediate.
	Interval time.Duration

	// MaxWait bounds the total time spent polling. Defaults to DefaultMaxWait.
	MaxWait time.Duration

	// MaxAttempts bounds the number of status reads. Zero means no attempt bound.
	MaxAttempts int

	// Until is the set of states that end the wait. Defaults to the terminal set.
	Until api.StateSet

	// OnTick, if set, is called after every status read with a known state
	OnTick TickFunc
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = CompletionInterval
	}
	if o.MaxWait <= 0 {
		o.MaxWait = DefaultMaxWait
	}
	if len(o.Until) == 0 {
		o.Until = api.TerminalStates
	}
	return o
}

// StartOptions waits for a job to be picked up (running or error).
func StartOptions() Options {
	return Options{
		Interval: StartInterval,
		Until:    api.StateSet{api.JobStateRunning, api.JobStateError},
	}
}

// CompletionOptions waits for a job to finish (complete or error).
func CompletionOptions() Options {
	return Options{
		Interval: CompletionInterval,
		Until:    api.TerminalStates,
	}
}

// Poller runs jobs against a COM client.
type Poller struct {
	client comclient.Client
	log    logr.Logger

	// Start and Completion are the options Run uses for its two waits
	Start      Options
	Completion Options
}

// New creates a Poller with the observed start and completion intervals.
func New(client comclient.Client, log logr.Logger) *Poller {
	return &Poller{
		client:     client,
		log:        log.WithName("jobpoller"),
		Start:      StartOptions(),
		Completion: CompletionOptions(),
	}
}

// Submit creates the job with a single call and returns it with its handle.
func (p *Poller) Submit(ctx context.Context, spec JobSpec) (*api.Job, error) {
	if spec.TemplateURI == "" {
		return nil, errors.New("job template uri is required")
	}
	if spec.TargetURI == "" {
		return nil, errors.New("job target uri is required")
	}

	job, err := p.client.CreateJob(ctx, api.CreateJobRequest{
		JobTemplateURI: spec.TemplateURI,
		ResourceURI:    spec.TargetURI,
		Data:           spec.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("submit job: %w", err)
	}

	p.log.Info("Job submitted", "id", job.ID, "uri", job.ResourceURI, "state", job.State)
	return job, nil
}

// Await re-reads job until its state is in opts.Until or terminal.
//
// A job that ends in error is returned together with a *JobFailedError. When
// the wait or attempt bound runs out a *TimeoutError is returned. If ctx is
// canceled the context error is returned unchanged.
func (p *Poller) Await(ctx context.Context, job *api.Job, opts Options) (*api.Job, error) {
	if job == nil || job.ResourceURI == "" {
		return nil, errors.New("job has no resource uri to poll")
	}
	opts = opts.withDefaults()

	var (
		current  = job
		attempts int
		started  = time.Now()
	)

	err := wait.PollUntilContextTimeout(ctx, opts.Interval, opts.MaxWait, true, func(ctx context.Context) (bool, error) {
		attempts++
		latest, err := p.client.GetJobByURI(ctx, job.ResourceURI)
		if err != nil {
			if ctx.Err() != nil {
				// The read was cut short by the wait bound
				return false, ctx.Err()
			}
			return false, err
		}
		current = latest

		if !latest.State.IsKnown() {
			return false, &api.UnknownStateError{JobID: latest.ID, State: string(latest.State)}
		}

		p.log.V(1).Info("Job status", "id", latest.ID, "state", latest.State, "attempt", attempts)
		if opts.OnTick != nil {
			opts.OnTick(ctx, latest, attempts)
		}

		if opts.Until.Has(latest.State) || latest.State.IsTerminal() {
			return true, nil
		}
		if opts.MaxAttempts > 0 && attempts >= opts.MaxAttempts {
			return false, errAttemptsExhausted
		}
		return false, nil
	})

	switch {
	case err == nil:
	case ctx.Err() != nil:
		return current, ctx.Err()
	case errors.Is(err, errAttemptsExhausted), wait.Interrupted(err) && !errors.Is(err, comclient.ErrTransport):
		return current, &TimeoutError{
			JobID:     job.ID,
			LastState: current.State,
			Attempts:  attempts,
			Waited:    time.Since(started),
		}
	default:
		return current, fmt.Errorf("poll job %s: %w", job.ID, err)
	}

	if current.State == api.JobStateError {
		p.log.Info("Job failed", "id", current.ID, "status", current.Status)
		return current, &JobFailedError{JobID: current.ID, Status: current.Status}
	}
	p.log.Info("Job settled", "id", current.ID, "state", current.State, "attempts", attempts)
	return current, nil
}

// FetchResult reads the data published at the job's results.location.
func (p *Poller) FetchResult(ctx context.Context, job *api.Job) (*api.ReportData, error) {
	if job.State != api.JobStateComplete {
		return nil, fmt.Errorf("job %s is %q, not complete", job.ID, job.State)
	}
	location := job.ResultLocation()
	if location == "" {
		return nil, ErrNoResult
	}
	data, err := p.client.GetReportData(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("fetch result of job %s: %w", job.ID, err)
	}
	return data, nil
}

// Run submits spec and waits for it to start and then to finish, using the
// poller's Start and Completion options. onTick, if not nil, replaces the
// observers of both waits.
func (p *Poller) Run(ctx context.Context, spec JobSpec, onTick TickFunc) (*api.Job, error) {
	job, err := p.Submit(ctx, spec)
	if err != nil {
		return nil, err
	}

	start, completion := p.Start, p.Completion
	if onTick != nil {
		start.OnTick, completion.OnTick = onTick, onTick
	}

	job, err = p.Await(ctx, job, start)
	if err != nil || job.State.IsTerminal() {
		return job, err
	}
	return p.Await(ctx, job, completion)
}
