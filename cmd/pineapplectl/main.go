package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "pineapplectl",
		Short:        "pineapple admin tool",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "config file path")

	cmd.AddCommand(
		newMigrateCmd(&configPath),
		newCreateSuperuserCmd(&configPath),
		newPasswdCmd(&configPath),
		newSystemsCmd(&configPath),
		newRolesCmd(&configPath),
		newPermsCmd(&configPath),
		newGrantsCmd(&configPath),
		newAuditCmd(&configPath),
		newVersionCmd(),
	)
	return cmd
}
