package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"netinv/internal/api"
	"netinv/internal/app"
	"netinv/internal/sheet"
)

var importCmd = &cobra.Command{
	Use:   "import FILE.xlsx",
	Short: "Import sites, equipment, connections and IP ranges from a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		batch, err := sheet.Read(f)
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		a, err := newApp(cmd.Context(), "Import")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		return a.Mutate(cmd.Context(), filepath.Base(args[0]), func(ctx context.Context) error {
			counts, err := a.Service().Import(ctx, batch, a.UserID())
			if err != nil {
				return err
			}
			for _, c := range counts {
				fmt.Printf("Imported %d %s\n", c.Count, c.Kind)
			}
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export FILE.xlsx",
	Short: "Export the inventory to a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "Export")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		batch, err := a.Service().Export(cmd.Context())
		if err != nil {
			return err
		}

		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		if err := sheet.Write(f, batch); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", args[0], err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("Exported %d record(s) to %s\n", batch.Len(), args[0])
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context(), "GetHistory")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		ops, err := a.Service().History(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				duration = op.FinishedAt.Sub(op.StartedAt).Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-24s  %s  %-11s  %-20s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Local().Format("2006-01-02 15:04:05"),
				op.Status,
				orDash(op.UserID),
				duration,
			)
		}
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage database backups",
}

var backupPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download the stored database backup of this host",
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, _ := cmd.Flags().GetString("dest")
		force, _ := cmd.Flags().GetBool("force")

		cfg, _, err := readConfig()
		if err != nil {
			return err
		}
		var pass string
		if cfg.Encryption.Type != "none" {
			if pass, err = readSecret(passphraseEnv, "Passphrase: "); err != nil {
				return err
			}
		}

		version, err := app.PullBackup(cmd.Context(), cfg, dest, pass, force)
		if err != nil {
			return err
		}
		fmt.Printf("Restored backup version %d\n", version)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the inventory over HTTP",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "Serve")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = a.Config().Server.Addr
		}
		if len(a.Config().Server.Tokens) == 0 {
			a.Logger().Warn("no API tokens configured: every /v1 request will be rejected")
		}

		srv := api.NewServer(api.Options{
			Service: a.Service(),
			Ops:     a.Store(),
			Auth:    api.NewTokenAuth(a.Config().Server.Tokens),
			Logger:  a.Logger(),
			Cache:   a.Listings(),
		})
		return a.Mutate(cmd.Context(), addr, func(ctx context.Context) error {
			return srv.Run(ctx, addr)
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")

	backupCmd.AddCommand(backupPullCmd)
	backupPullCmd.Flags().String("dest", "", "Destination file (default: the configured SQLite database)")
	backupPullCmd.Flags().Bool("force", false, "Replace an existing database file")
	rootCmd.AddCommand(backupCmd)

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default: server.addr from the config)")
}
