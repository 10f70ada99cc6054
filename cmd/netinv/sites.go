package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"netinv/internal/inventory"
	"netinv/internal/model"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Manage sites",
}

var siteAddCmd = &cobra.Command{
	Use:   "add FIELD=VALUE...",
	Short: "Create a site",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		patch, err := parseAssignments(model.SiteFields, args)
		if err != nil {
			return err
		}
		site, err := model.Apply(model.Site{}, model.SiteFields, patch)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "SiteAdd")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		return a.Mutate(cmd.Context(), strings.Join(args, " "), func(ctx context.Context) error {
			created, err := a.Service().CreateSite(ctx, site, a.UserID())
			if err != nil {
				return err
			}
			fmt.Printf("Created site %s\n", created.ID)
			return nil
		})
	},
}

var siteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sites",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		query, _ := cmd.Flags().GetString("query")

		a, err := newApp(cmd.Context(), "SiteList")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		sites, err := a.Service().ListSites(cmd.Context())
		if err != nil {
			return err
		}
		sites = inventory.FilterSites(sites, query)
		if len(sites) == 0 {
			fmt.Println("No sites.")
			return nil
		}
		for _, s := range sites {
			fmt.Printf("%-36s  %-30s  %s\n", s.ID, s.Name, orDash(s.Location))
		}
		return nil
	},
}

var siteShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a site with its dependent counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "SiteShow")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		sum, err := a.Service().SiteSummary(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(sum)
	},
}

var siteUpdateCmd = &cobra.Command{
	Use:   "update ID FIELD=VALUE...",
	Short: "Update fields of a site",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		patch, err := parseAssignments(model.SiteFields, args[1:])
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "SiteUpdate")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		return a.Mutate(cmd.Context(), strings.Join(args, " "), func(ctx context.Context) error {
			if _, err := a.Service().UpdateSite(ctx, args[0], patch, a.UserID()); err != nil {
				return err
			}
			fmt.Printf("Updated site %s\n", args[0])
			return nil
		})
	},
}

var siteDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a site together with its equipment, connections and IP ranges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "SiteDelete")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		return a.Mutate(cmd.Context(), args[0], func(ctx context.Context) error {
			res, err := a.Service().CascadeDelete(ctx, args[0], a.UserID())
			var cerr *inventory.CascadeError
			if errors.As(err, &cerr) && cerr.Partial() {
				for _, c := range cerr.Completed {
					fmt.Printf("Deleted %d %s before the failure\n", c.Count, c.Kind)
				}
			}
			if err != nil {
				return err
			}
			for _, c := range res.Deleted {
				fmt.Printf("Deleted %d %s\n", c.Count, c.Kind)
			}
			fmt.Printf("Deleted site %s (%d object(s) removed)\n", res.SiteID, res.ObjectsDeleted)
			return nil
		})
	},
}

var siteFloorplanCmd = &cobra.Command{
	Use:   "floorplan ID FILE",
	Short: "Upload the floor plan of a site",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return uploadSiteFile(cmd, "SiteFloorplan", args, func(ctx context.Context, svc *inventory.Service, up inventory.ObjectUpload, user string) (string, error) {
			site, err := svc.UploadFloorplan(ctx, args[0], up, user)
			return site.FloorplanURL, err
		})
	},
}

var sitePhotoCmd = &cobra.Command{
	Use:   "photo",
	Short: "Manage the rack photos of a site",
}

var sitePhotoAddCmd = &cobra.Command{
	Use:   "add ID FILE",
	Short: "Upload a rack photo",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return uploadSiteFile(cmd, "SitePhotoAdd", args, func(ctx context.Context, svc *inventory.Service, up inventory.ObjectUpload, user string) (string, error) {
			site, err := svc.AddRackPhoto(ctx, args[0], up, user)
			if err != nil {
				return "", err
			}
			return site.RackPhotosURLs[len(site.RackPhotosURLs)-1], nil
		})
	},
}

var sitePhotoRmCmd = &cobra.Command{
	Use:   "rm ID URL",
	Short: "Remove a rack photo",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "SitePhotoRemove")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		return a.Mutate(cmd.Context(), strings.Join(args, " "), func(ctx context.Context) error {
			if _, err := a.Service().RemoveRackPhoto(ctx, args[0], args[1], a.UserID()); err != nil {
				return err
			}
			fmt.Printf("Removed %s\n", args[1])
			return nil
		})
	},
}

type uploadFn func(ctx context.Context, svc *inventory.Service, up inventory.ObjectUpload, user string) (string, error)

func uploadSiteFile(cmd *cobra.Command, operation string, args []string, fn uploadFn) (err error) {
	up, f, err := openUpload(args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	a, err := newApp(cmd.Context(), operation)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	return a.Mutate(cmd.Context(), strings.Join(args, " "), func(ctx context.Context) error {
		url, err := fn(ctx, a.Service(), up, a.UserID())
		if err != nil {
			return err
		}
		fmt.Printf("Stored %s\n", url)
		return nil
	})
}

func init() {
	siteCmd.AddCommand(siteAddCmd)
	siteCmd.AddCommand(siteListCmd)
	siteListCmd.Flags().StringP("query", "q", "", "Only sites matching the text")
	siteCmd.AddCommand(siteShowCmd)
	siteCmd.AddCommand(siteUpdateCmd)
	siteCmd.AddCommand(siteDeleteCmd)
	siteCmd.AddCommand(siteFloorplanCmd)
	siteCmd.AddCommand(sitePhotoCmd)
	sitePhotoCmd.AddCommand(sitePhotoAddCmd)
	sitePhotoCmd.AddCommand(sitePhotoRmCmd)

	rootCmd.AddCommand(siteCmd)
}
