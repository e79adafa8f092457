package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/gw1000/internal/archive"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [observation]",
		Short: "Read observations back from the archive",
		Long: `Read observations stored by 'poll --archive', 'publish' or the relay server.

Without an argument the latest value of every observation is printed. With
an observation name its values since --since ago are listed, oldest first.`,
		Example: `  gw1000 history --archive ~/weather.db
  gw1000 history outtemp --since 6h -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.v.GetString("archive")
			if path == "" {
				path = a.registry.Preferences.ArchivePath
			}
			if path == "" {
				return errors.New("no archive given and no archive_path configured")
			}

			store, err := archive.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()
			ctx := cmd.Context()

			if len(args) == 0 {
				obs, at, err := store.Latest(ctx)
				if err != nil {
					return err
				}
				if !at.IsZero() {
					fmt.Fprintf(cmd.ErrOrStderr(), "Latest record %s\n", at.Format(time.RFC3339))
				}
				return a.render(cmd, obs)
			}

			points, err := store.History(ctx, args[0], time.Now().Add(-a.v.GetDuration("since")))
			if err != nil {
				return err
			}
			format, err := a.format()
			if err != nil {
				return err
			}
			if format != formatTable {
				return writeValue(cmd.OutOrStdout(), format, points)
			}
			for _, p := range points {
				value := "-"
				if p.Value != nil {
					value = fmt.Sprintf("%g", *p.Value)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", p.Time.Format(time.RFC3339), value)
			}
			return nil
		},
	}
	cmd.Flags().String("archive", "", "SQLite archive (default from config)")
	cmd.Flags().Duration("since", 24*time.Hour, "How far back to list an observation")
	return cmd
}
