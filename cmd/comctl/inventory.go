package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	api "github.com/vpatelsj/comops/api/v1beta1"
	"github.com/vpatelsj/comops/pkg/inventory"
)

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ============================================================================
// servers
// ============================================================================

func newServersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servers",
		Short: "Inspect managed servers",
	}

	var (
		model  string
		limit  int
		offset int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}

			var servers []api.Server
			if model != "" {
				servers, err = inventory.NewResolver(client).ServersByModel(cmd.Context(), model)
			} else {
				var page *api.Collection[api.Server]
				page, err = client.ListServers(cmd.Context(), api.ListOptions{Limit: limit, Offset: offset})
				if page != nil {
					servers = page.Items
				}
			}
			if err != nil {
				return err
			}

			if len(servers) == 0 {
				fmt.Fprintln(a.out, "No servers found.")
				return nil
			}
			w := a.table()
			fmt.Fprintln(w, "NAME\tID\tMODEL\tSERIAL\tPOWER\tHEALTH\tILO")
			for _, s := range servers {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", s.Name, s.ID, s.Hardware.Model, s.Hardware.SerialNumber,
					orDash(s.Hardware.PowerState), orDash(s.Hardware.Health.Summary), orDash(s.Hardware.BMC.IP))
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&model, "model", "", "Only servers of this hardware model, e.g. 'ProLiant DL360 Gen10 Plus'")
	list.Flags().IntVar(&limit, "limit", 0, "Page size")
	list.Flags().IntVar(&offset, "offset", 0, "Page offset")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			s, err := client.GetServer(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := a.table()
			fmt.Fprintf(w, "Name:\t%s\n", s.Name)
			fmt.Fprintf(w, "ID:\t%s\n", s.ID)
			fmt.Fprintf(w, "Model:\t%s\n", s.Hardware.Model)
			fmt.Fprintf(w, "Serial:\t%s\n", s.Hardware.SerialNumber)
			fmt.Fprintf(w, "Power:\t%s\n", orDash(s.Hardware.PowerState))
			fmt.Fprintf(w, "iLO:\t%s\n", orDash(s.Hardware.BMC.IP))
			if s.LastFirmwareUpdate != nil {
				fmt.Fprintf(w, "Last firmware update:\t%s (%s)\n", s.LastFirmwareUpdate.Status, orDash(s.LastFirmwareUpdate.EndTime))
			} else {
				fmt.Fprintf(w, "Last firmware update:\tnone\n")
			}
			return w.Flush()
		},
	}

	alerts := &cobra.Command{
		Use:   "alerts <id>",
		Short: "List the alerts of a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			items, err := client.ListServerAlerts(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(a.out, "No alerts.")
				return nil
			}
			w := a.table()
			fmt.Fprintln(w, "SEVERITY\tCREATED\tDESCRIPTION")
			for _, al := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\n", al.Severity, orDash(al.CreatedAt), al.Description)
			}
			return w.Flush()
		},
	}

	states := &cobra.Command{
		Use:   "states",
		Short: "Count servers per state across the fleet",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			counts, err := client.GetServerStateCounts(cmd.Context())
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(counts))
			for k := range counts {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			w := a.table()
			fmt.Fprintln(w, "STATE\tCOUNT")
			for _, k := range keys {
				fmt.Fprintf(w, "%s\t%d\n", k, counts[k])
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(list, get, alerts, states)
	return cmd
}

// ============================================================================
// groups
// ============================================================================

func newGroupsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage server groups",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			groups, err := client.ListGroups(cmd.Context())
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Fprintln(a.out, "No groups found.")
				return nil
			}
			w := a.table()
			fmt.Fprintln(w, "NAME\tID\tDEVICES\tBASELINE")
			for _, g := range groups {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", g.Name, g.ID, len(g.Devices), orDash(g.FirmwareBaseline))
			}
			return w.Flush()
		},
	}

	get := &cobra.Command{
		Use:   "get <name>",
		Short: "Show a group and its devices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			g, err := inventory.NewResolver(client).GroupByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := a.table()
			fmt.Fprintf(w, "Name:\t%s\n", g.Name)
			fmt.Fprintf(w, "ID:\t%s\n", g.ID)
			fmt.Fprintf(w, "Description:\t%s\n", orDash(g.Description))
			fmt.Fprintf(w, "Baseline:\t%s\n", orDash(g.FirmwareBaseline))
			for _, d := range g.Devices {
				fmt.Fprintf(w, "Device:\t%s (%s)\n", orDash(d.Name), d.ID)
			}
			return w.Flush()
		},
	}

	var (
		description string
		baseline    string
		autoIlo     bool
	)
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			req := api.CreateGroupRequest{
				Name:                   args[0],
				Description:            description,
				AutoIloFwUpdateEnabled: autoIlo,
				DeviceSettingsURIs:     []string{},
				Data:                   map[string]interface{}{},
			}
			if baseline != "" {
				fb, err := inventory.NewResolver(client).FirmwareBundleByVersion(cmd.Context(), baseline)
				if err != nil {
					return err
				}
				req.FirmwareBaseline = fb.ID
			}
			g, err := client.CreateGroup(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Group '%s' created (%s)\n", g.Name, g.ID)
			return nil
		},
	}
	create.Flags().StringVar(&description, "description", "", "Group description")
	create.Flags().StringVar(&baseline, "baseline", "", "Firmware bundle release version, e.g. 2022.03.0")
	create.Flags().BoolVar(&autoIlo, "auto-ilo-update", true, "Update iLO firmware automatically")

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			g, err := inventory.NewResolver(client).GroupByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := client.DeleteGroup(cmd.Context(), g.ID); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Group '%s' deleted\n", g.Name)
			return nil
		},
	}

	addDevices := &cobra.Command{
		Use:   "add-servers <group> <server-name>...",
		Short: "Add servers to a group by name",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			r := inventory.NewResolver(client)
			g, err := r.GroupByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var devices []api.GroupDevice
			for _, name := range args[1:] {
				s, err := r.ServerByName(cmd.Context(), name)
				if err != nil {
					return err
				}
				devices = append(devices, api.GroupDevice{ID: s.ID})
			}
			updated, err := client.AddGroupDevices(cmd.Context(), g.ID, devices)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Group '%s' now has %d devices\n", updated.Name, len(updated.Devices))
			return nil
		},
	}

	setBaseline := &cobra.Command{
		Use:   "set-baseline <group> <release-version>",
		Short: "Set the firmware baseline of a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			r := inventory.NewResolver(client)
			g, err := r.GroupByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fb, err := r.FirmwareBundleByVersion(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			if _, err := client.UpdateGroup(cmd.Context(), g.ID, api.GroupPatch{FirmwareBaseline: &fb.ID}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Group '%s' modification to use SPP '%s' - Status: OK\n", g.Name, fb.ReleaseVersion)
			return nil
		},
	}

	cmd.AddCommand(list, get, create, del, addDevices, setBaseline)
	return cmd
}

// ============================================================================
// bundles, templates, filters, activities
// ============================================================================

func newBundlesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bundles",
		Short: "List firmware bundles",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			bundles, err := client.ListFirmwareBundles(cmd.Context())
			if err != nil {
				return err
			}
			w := a.table()
			fmt.Fprintln(w, "VERSION\tID\tTYPE\tNAME")
			for _, fb := range bundles {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", fb.ReleaseVersion, fb.ID, orDash(fb.BundleType), fb.DisplayName)
			}
			return w.Flush()
		},
	}
}

func newTemplatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List job templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			templates, err := client.ListJobTemplates(cmd.Context())
			if err != nil {
				return err
			}
			w := a.table()
			fmt.Fprintln(w, "NAME\tID\tDESCRIPTION")
			for _, jt := range templates {
				fmt.Fprintf(w, "%s\t%s\t%s\n", jt.Name, jt.ID, orDash(jt.Description))
			}
			return w.Flush()
		},
	}
}

func newFiltersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List saved server filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			filters, err := client.ListFilters(cmd.Context())
			if err != nil {
				return err
			}
			w := a.table()
			fmt.Fprintln(w, "NAME\tID\tEXPRESSION")
			for _, f := range filters {
				fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, f.ID, orDash(f.FilterExpression))
			}
			return w.Flush()
		},
	}
}

func newActivitiesCmd(a *app) *cobra.Command {
	var (
		filter string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "List recent activities",
		Example: `  comctl activities --filter "source/type eq 'Firmware'" --limit 10
  comctl activities --filter "contains(source/resourceUri,'<job-id>')" --limit 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.comClient(cmd.Context())
			if err != nil {
				return err
			}
			page, err := client.ListActivities(cmd.Context(), api.ListOptions{Filter: filter, Limit: limit})
			if err != nil {
				return err
			}
			w := a.table()
			fmt.Fprintln(w, "CREATED\tSOURCE\tKEY\tMESSAGE")
			for _, act := range page.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", orDash(act.CreatedAt), act.Source.Type, act.Key, act.Message)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "OData filter expression")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of activities")
	return cmd
}
