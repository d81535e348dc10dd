package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/filebox/internal/db"
)

func ExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a consistent copy of the SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			conn, err := db.Init(cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return err
			}
			defer db.Close(conn)

			err = db.Snapshot(cmd.Context(), conn, out)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported database to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "filebox-export.db", "destination file")
	return cmd
}
