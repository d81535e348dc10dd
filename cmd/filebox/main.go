package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/templui/filebox/cmd/filebox/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "filebox",
		Short:         "Administration tools for filebox",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.UserCmd())
	rootCmd.AddCommand(cmd.SubscriptionCmd())
	rootCmd.AddCommand(cmd.ExportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
