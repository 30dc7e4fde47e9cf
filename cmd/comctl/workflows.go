package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	api "github.com/vpatelsj/comops/api/v1beta1"
	"github.com/vpatelsj/comops/internal/workflow"
)

func newFirmwareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "firmware",
		Short: "Update group firmware",
	}

	var group, baseline string
	update := &cobra.Command{
		Use:   "update",
		Short: "Update every server of a group to a firmware baseline now",
		Long: `Update every server of a group to a firmware baseline now.

Any update other than iLO firmware requires a server reboot. To choose when the
update runs, use 'firmware schedule' instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.runner(cmd.Context())
			if err != nil {
				return err
			}
			_, err = r.GroupFirmwareUpdate(cmd.Context(), group, baseline)
			return err
		},
	}
	update.Flags().StringVar(&group, "group", "", "Group name")
	update.Flags().StringVar(&baseline, "baseline", "", "Firmware bundle release version, e.g. 2022.03.0")
	update.MarkFlagRequired("group")
	update.MarkFlagRequired("baseline")

	var (
		req     workflow.ScheduleRequest
		startAt string
		in      time.Duration
	)
	schedule := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule a group firmware update",
		Example: `  comctl firmware schedule --group Production-Group --baseline 2022.03.0 --start-at 2024-06-01T02:00:00Z
  comctl firmware schedule --group Production-Group --baseline 2022.03.0 --in 15m --interval P7D`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case startAt != "" && in > 0:
				return fmt.Errorf("--start-at and --in are mutually exclusive")
			case startAt != "":
				t, err := time.Parse(time.RFC3339, startAt)
				if err != nil {
					return fmt.Errorf("invalid --start-at: %w", err)
				}
				req.StartAt = t
			case in > 0:
				req.StartAt = time.Now().Add(in)
			default:
				return fmt.Errorf("one of --start-at or --in is required")
			}

			r, err := a.runner(cmd.Context())
			if err != nil {
				return err
			}
			_, err = r.ScheduleFirmwareUpdate(cmd.Context(), req)
			return err
		},
	}
	schedule.Flags().StringVar(&req.Group, "group", "", "Group name")
	schedule.Flags().StringVar(&req.Baseline, "baseline", "", "Firmware bundle release version")
	schedule.Flags().StringVar(&startAt, "start-at", "", "RFC 3339 start time")
	schedule.Flags().DurationVar(&in, "in", 0, "Start after this delay")
	schedule.Flags().StringVar(&req.Interval, "interval", "", "ISO 8601 repeat interval, e.g. P7D; empty runs once")
	schedule.Flags().StringVar(&req.Name, "name", "", "Schedule name")
	schedule.Flags().StringVar(&req.Description, "description", "", "Schedule description")
	schedule.MarkFlagRequired("group")
	schedule.MarkFlagRequired("baseline")

	cmd.AddCommand(update, schedule)
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate fleet reports",
	}

	var textfile string
	carbon := &cobra.Command{
		Use:   "carbon",
		Short: "Generate a carbon footprint report and print the fleet total",
		Long: `Generate a carbon footprint report for all servers and print the fleet total
as a line protocol point, e.g.

  Carbon_Report,name=Total emissions=707.0

The output can be consumed by a Telegraf exec input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.runner(cmd.Context())
			if err != nil {
				return err
			}
			r.TextfilePath = textfile
			_, err = r.CarbonReport(cmd.Context())
			return err
		},
	}
	carbon.Flags().StringVar(&textfile, "textfile", "", "Also write the point to a Prometheus textfile collector file")

	cmd.AddCommand(carbon)
	return cmd
}

func newJournalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the local job journal",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List journaled jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openJournal()
			if err != nil {
				return err
			}
			if j == nil {
				return fmt.Errorf("no journal configured; set --journal or 'journal' in the config file")
			}
			entries, err := j.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(a.out, "Journal is empty.")
				return nil
			}
			w := a.table()
			fmt.Fprintln(w, "ID\tWORKFLOW\tSTATE\tSUBMITTED\tFINISHED\tSTATUS")
			for _, e := range entries {
				finished := "-"
				if e.FinishedAt != nil {
					finished = e.FinishedAt.Local().Format(time.DateTime)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, orDash(e.Workflow), e.State,
					e.SubmittedAt.Local().Format(time.DateTime), finished, orDash(e.Status))
			}
			return w.Flush()
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries; 0 lists all")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Count journaled jobs per state",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openJournal()
			if err != nil {
				return err
			}
			if j == nil {
				return fmt.Errorf("no journal configured; set --journal or 'journal' in the config file")
			}
			counts, err := j.Stats(cmd.Context())
			if err != nil {
				return err
			}
			states := make([]string, 0, len(counts))
			for s := range counts {
				states = append(states, string(s))
			}
			sort.Strings(states)

			w := a.table()
			fmt.Fprintln(w, "STATE\tJOBS")
			for _, s := range states {
				fmt.Fprintf(w, "%s\t%d\n", s, counts[api.JobState(s)])
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(list, stats)
	return cmd
}
