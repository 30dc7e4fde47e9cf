package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	api "github.com/vpatelsj/comops/api/v1beta1"
	"github.com/vpatelsj/comops/pkg/inventory"
	"github.com/vpatelsj/comops/pkg/jobpoller"
)

// ============================================================================
// jobs
// ============================================================================

func newJobsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Submit and track jobs",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			jobs, err := client.ListJobs(cmd.Context())
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintln(a.out, "No jobs found.")
				return nil
			}
			w := a.table()
			fmt.Fprintln(w, "ID\tSTATE\tTARGET\tSTATUS")
			for _, j := range jobs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", j.ID, j.State, j.TargetURI(), orDash(j.Status))
			}
			return w.Flush()
		},
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			j, err := client.GetJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printJob(j)
			return nil
		},
	}

	var (
		template string
		target   string
		data     string
		wait     bool
	)
	submit := &cobra.Command{
		Use:   "submit",
		Short: "Submit a job from a named template",
		Example: `  comctl jobs submit --template GroupFirmwareUpdate --target /api/compute/v1/groups/<id> \
    --data '{"bundle_id":"<id>","devices":["<server-id>"]}' --wait`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			spec := jobpoller.JobSpec{TargetURI: target}
			if data != "" {
				if err := json.Unmarshal([]byte(data), &spec.Data); err != nil {
					return fmt.Errorf("invalid --data: %w", err)
				}
			}
			tmpl, err := inventory.NewResolver(client).JobTemplateByName(cmd.Context(), template)
			if err != nil {
				return err
			}
			spec.TemplateURI = tmpl.ResourceURI

			p := a.poller(client)
			job, err := p.Submit(cmd.Context(), spec)
			if err != nil {
				return err
			}
			if err := a.record(cmd.Context(), "jobs-submit", job); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Job %s submitted (%s)\n", job.ID, job.ResourceURI)
			if !wait {
				return nil
			}
			return a.awaitJob(cmd.Context(), p, job)
		},
	}
	submit.Flags().StringVar(&template, "template", "", "Job template name")
	submit.Flags().StringVar(&target, "target", "", "Resource URI the job operates on")
	submit.Flags().StringVar(&data, "data", "", "Job data as a JSON object")
	submit.Flags().BoolVar(&wait, "wait", false, "Wait for the job to finish")
	submit.MarkFlagRequired("template")
	submit.MarkFlagRequired("target")

	await := &cobra.Command{
		Use:   "await <id>",
		Short: "Wait for a job to finish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			job, err := client.GetJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.awaitJob(cmd.Context(), a.poller(client), job)
		},
	}

	cmd.AddCommand(list, get, submit, await)
	return cmd
}

func (a *app) printJob(j *api.Job) {
	w := a.table()
	fmt.Fprintf(w, "ID:\t%s\n", j.ID)
	fmt.Fprintf(w, "State:\t%s\n", j.State)
	fmt.Fprintf(w, "Status:\t%s\n", orDash(j.Status))
	fmt.Fprintf(w, "Template:\t%s\n", j.JobTemplateURI)
	fmt.Fprintf(w, "Target:\t%s\n", j.TargetURI())
	fmt.Fprintf(w, "Result:\t%s\n", orDash(j.ResultLocation()))
	w.Flush()
}

// awaitJob waits for the job to start and finish, printing each state change.
func (a *app) awaitJob(ctx context.Context, p *jobpoller.Poller, job *api.Job) error {
	last := job.State
	onTick := func(_ context.Context, j *api.Job, attempt int) {
		if j.State != last {
			fmt.Fprintf(a.out, "Job %s: %s\n", j.ID, j.State)
			last = j.State
		}
	}

	start, completion := p.Start, p.Completion
	start.OnTick, completion.OnTick = onTick, onTick

	final, err := p.Await(ctx, job, start)
	if err == nil && !final.State.IsTerminal() {
		final, err = p.Await(ctx, final, completion)
	}
	if final != nil && final.State.IsTerminal() {
		if ferr := a.finish(ctx, final); ferr != nil {
			return ferr
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "State: %s - Status: %s\n", final.State, orDash(final.Status))
	return nil
}

func (a *app) record(ctx context.Context, workflow string, job *api.Job) error {
	j, err := a.openJournal()
	if err != nil || j == nil {
		return err
	}
	return j.Record(ctx, workflow, job)
}

func (a *app) finish(ctx context.Context, job *api.Job) error {
	j, err := a.openJournal()
	if err != nil || j == nil {
		return err
	}
	return j.Finish(ctx, job)
}

// ============================================================================
// schedules
// ============================================================================

func newSchedulesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedules",
		Short: "Manage schedules",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			schedules, err := client.ListSchedules(cmd.Context())
			if err != nil {
				return err
			}
			if len(schedules) == 0 {
				fmt.Fprintln(a.out, "No schedules found.")
				return nil
			}
			w := a.table()
			fmt.Fprintln(w, "NAME\tID\tPURPOSE\tSTART\tINTERVAL")
			for _, s := range schedules {
				interval := "-"
				if s.Schedule.Interval != nil {
					interval = *s.Schedule.Interval
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.Name, s.ID, s.Purpose, s.Schedule.StartAt, interval)
			}
			return w.Flush()
		},
	}

	get := &cobra.Command{
		Use:   "get <name>",
		Short: "Show a schedule as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			s, err := inventory.NewResolver(client).ScheduleByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, string(data))
			return nil
		},
	}

	var description string
	rename := &cobra.Command{
		Use:   "update <name> [new-name]",
		Short: "Rename a schedule or change its description",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			s, err := inventory.NewResolver(client).ScheduleByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var patch api.SchedulePatch
			if len(args) == 2 {
				patch.Name = &args[1]
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			updated, err := client.UpdateSchedule(cmd.Context(), s.ID, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Schedule '%s' updated\n", updated.Name)
			return nil
		},
	}
	rename.Flags().StringVar(&description, "description", "", "New description")

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			s, err := inventory.NewResolver(client).ScheduleByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := client.DeleteSchedule(cmd.Context(), s.ID); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Schedule '%s' deleted\n", s.Name)
			return nil
		},
	}

	cmd.AddCommand(list, get, rename, del)
	return cmd
}
