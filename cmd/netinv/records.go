package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"netinv/internal/inventory"
	"netinv/internal/model"
)

// createRecord decodes patch into a new record of kind and creates it.
func createRecord(ctx context.Context, svc *inventory.Service, kind model.Kind, patch model.Patch, user string) (model.DependentRecord, error) {
	switch kind {
	case model.KindEquipment:
		v, err := model.Apply(model.Equipment{}, model.EquipmentFields, patch)
		if err != nil {
			return nil, err
		}
		return svc.CreateEquipment(ctx, v, user)
	case model.KindConnection:
		v, err := model.Apply(model.NetworkConnection{}, model.ConnectionFields, patch)
		if err != nil {
			return nil, err
		}
		return svc.CreateConnection(ctx, v, user)
	case model.KindIPRange:
		v, err := model.Apply(model.IPRange{}, model.IPRangeFields, patch)
		if err != nil {
			return nil, err
		}
		return svc.CreateIPRange(ctx, v, user)
	default:
		return nil, fmt.Errorf("unsupported kind %q", kind)
	}
}

// operationName builds names like "EquipmentAdd" or "IpRangesAssign".
func operationName(kind model.Kind, verb string) string {
	var b strings.Builder
	for _, part := range strings.Split(string(kind), "-") {
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	b.WriteString(verb)
	return b.String()
}

// newRecordCmd builds the command tree managing one dependent kind.
func newRecordCmd(kind model.Kind, use, short string) *cobra.Command {
	root := &cobra.Command{Use: use, Short: short}

	add := &cobra.Command{
		Use:   "add FIELD=VALUE...",
		Short: "Create a record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			patch, err := parseAssignments(model.FieldsFor(kind), args)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), operationName(kind, "Add"))
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			return a.Mutate(cmd.Context(), strings.Join(args, " "), func(ctx context.Context) error {
				rec, err := createRecord(ctx, a.Service(), kind, patch, a.UserID())
				if err != nil {
					return err
				}
				fmt.Printf("Created %s %s\n", kind, rec.RecordID())
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List records",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			f := inventory.Filter{}
			f.Query, _ = cmd.Flags().GetString("query")
			f.Status, _ = cmd.Flags().GetString("status")
			f.Type, _ = cmd.Flags().GetString("type")
			f.SiteID, _ = cmd.Flags().GetString("site")
			f.Unassigned, _ = cmd.Flags().GetBool("unassigned")
			sortKey, _ := cmd.Flags().GetString("sort")
			f.Sort = inventory.SortKey(sortKey)

			a, err := newApp(cmd.Context(), operationName(kind, "List"))
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			records, err := a.Service().List(cmd.Context(), kind)
			if err != nil {
				return err
			}
			records = inventory.FilterRecords(records, f)
			if len(records) == 0 {
				fmt.Println("No records.")
				return nil
			}
			for _, r := range records {
				fmt.Printf("%-36s  %-30s  %s\n", r.RecordID(), r.DisplayLabel(), orDash(r.ParentSiteID()))
			}
			return nil
		},
	}
	list.Flags().StringP("query", "q", "", "Only records matching the text")
	list.Flags().String("status", "", "Only records with this status")
	list.Flags().String("type", "", "Only records of this type")
	list.Flags().String("site", "", "Only records of this site")
	list.Flags().Bool("unassigned", false, "Only records without a site")
	list.Flags().String("sort", "", "Order by name or ip")

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := newApp(cmd.Context(), operationName(kind, "Show"))
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			rec, err := a.Service().Get(cmd.Context(), kind, args[0])
			if err != nil {
				return err
			}
			return printJSON(rec)
		},
	}

	update := &cobra.Command{
		Use:   "update ID FIELD=VALUE...",
		Short: "Update fields of a record",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			patch, err := parseAssignments(model.FieldsFor(kind), args[1:])
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), operationName(kind, "Update"))
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			return a.Mutate(cmd.Context(), strings.Join(args, " "), func(ctx context.Context) error {
				if _, err := a.Service().Update(ctx, kind, args[0], patch, a.UserID()); err != nil {
					return err
				}
				fmt.Printf("Updated %s %s\n", kind, args[0])
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := newApp(cmd.Context(), operationName(kind, "Delete"))
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			return a.Mutate(cmd.Context(), args[0], func(ctx context.Context) error {
				if err := a.Service().Delete(ctx, kind, args[0], a.UserID()); err != nil {
					return err
				}
				fmt.Printf("Deleted %s %s\n", kind, args[0])
				return nil
			})
		},
	}

	assign := &cobra.Command{
		Use:   "assign ID SITE_ID",
		Short: "Attach a record to a site",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := newApp(cmd.Context(), operationName(kind, "Assign"))
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			return a.Mutate(cmd.Context(), strings.Join(args, " "), func(ctx context.Context) error {
				if _, err := a.Service().Assign(ctx, kind, args[0], args[1], a.UserID()); err != nil {
					return err
				}
				fmt.Printf("Assigned %s %s to site %s\n", kind, args[0], args[1])
				return nil
			})
		},
	}

	unassign := &cobra.Command{
		Use:   "unassign ID",
		Short: "Return a record to the unassigned pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := newApp(cmd.Context(), operationName(kind, "Unassign"))
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			return a.Mutate(cmd.Context(), args[0], func(ctx context.Context) error {
				if _, err := a.Service().Unassign(ctx, kind, args[0], a.UserID()); err != nil {
					return err
				}
				fmt.Printf("Unassigned %s %s\n", kind, args[0])
				return nil
			})
		},
	}

	root.AddCommand(add, list, show, update, del, assign, unassign)
	return root
}

var unassignedCmd = &cobra.Command{
	Use:   "unassigned KIND",
	Short: "List equipment, connections or IP ranges without a site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		kind, err := model.ParseKind(args[0])
		if err != nil {
			return err
		}
		if !kind.Dependent() {
			return fmt.Errorf("%s are never unassigned", kind)
		}

		a, err := newApp(cmd.Context(), "Unassigned")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		items, err := a.Service().FindUnassigned(cmd.Context(), kind)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Printf("No unassigned %s.\n", kind)
			return nil
		}
		for _, it := range items {
			fmt.Printf("%-36s  %s\n", it.ID, it.DisplayLabel)
		}
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show inventory totals",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "Dashboard")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		d, err := a.Service().Dashboard(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(d)
	},
}

func init() {
	rootCmd.AddCommand(newRecordCmd(model.KindEquipment, "equipment", "Manage equipment"))
	rootCmd.AddCommand(newRecordCmd(model.KindConnection, "connection", "Manage network connections"))
	rootCmd.AddCommand(newRecordCmd(model.KindIPRange, "iprange", "Manage IP ranges"))
	rootCmd.AddCommand(unassignedCmd)
	rootCmd.AddCommand(dashboardCmd)
}
