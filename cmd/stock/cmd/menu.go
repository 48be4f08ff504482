package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/stockdb/pkg/menu"
)

func runMenu(cmd *cobra.Command, args []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	return menu.New(a.store, cmd.InOrStdin(), cmd.OutOrStdout(), a.config.ReportFile).Run(cmd.Context())
}

func newMenuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Start the interactive menu",
		Args:  cobra.NoArgs,
		RunE:  runMenu,
	}
}
