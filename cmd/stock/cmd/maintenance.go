package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the data file for a partial trailing record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			result, err := a.store.Check()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "File:\t%s\n", a.store.Path())
			fmt.Fprintf(w, "Size:\t%d bytes\n", result.FileSize)
			fmt.Fprintf(w, "Records:\t%d\n", result.Records)
			fmt.Fprintf(w, "Trailing bytes:\t%d\n", result.TrailingBytes)
			if err := w.Flush(); err != nil {
				return err
			}

			if !result.Healthy() {
				fmt.Fprintln(cmd.OutOrStdout(), "The file ends in a partial record. Run 'stock repair' to truncate it.")
			}
			return nil
		},
	}
}

func newRepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Truncate a partial trailing record",
		Long: `Truncate the data file to its last complete record. Complete records
are never touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			result, err := a.store.Repair()
			if err != nil {
				return fmt.Errorf("failed to repair: %w", err)
			}

			if result.BytesTruncated == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing to repair: %d records\n", result.RecordsValidated)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Truncated %d trailing bytes: %d records kept (%d -> %d bytes)\n",
				result.BytesTruncated, result.RecordsValidated, result.FileSizeBefore, result.FileSizeAfter)
			return nil
		},
	}
}
