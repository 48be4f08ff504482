package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/stockdb/pkg/codec"
	"github.com/ssargent/stockdb/pkg/report"
)

func parseIndex(arg string) (int64, error) {
	index, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", arg)
	}
	return index, nil
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <code> <price>",
		Short: "Append a product record",
		Long: `Append a product record to the end of the data file. Names longer
than 49 bytes are truncated.

Example:
  stock add "cordless drill" 501 149.90`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			code, err := strconv.ParseInt(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid code %q", args[1])
			}
			price, err := strconv.ParseFloat(strings.ReplaceAll(args[2], ",", "."), 32)
			if err != nil {
				return fmt.Errorf("invalid price %q", args[2])
			}

			record := codec.NewRecord(args[0], int32(code), float32(price))
			if err := a.store.Append(record); err != nil {
				return fmt.Errorf("failed to add record: %w", err)
			}

			count, err := a.store.Count()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added record %d: %s\n", count-1, record.Name)
			return nil
		},
	}
}

func newGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get <index>",
		Short: "Show the record at a position",
		Long: `Show the record at a 0-based position.

Example:
  stock get 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}

			record, err := a.store.ReadAt(index)
			if err != nil {
				return fmt.Errorf("failed to get record: %w", err)
			}

			entry := report.NewEntry(index, record)
			if format, _ := cmd.Flags().GetString("format"); format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entry)
			}
			return report.WriteEntry(cmd.OutOrStdout(), entry)
		},
	}
	getCmd.Flags().String("format", "table", "Output format: table or json")
	return getCmd
}

func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			count, err := a.store.Count()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), count)
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all records in file order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			switch format, _ := cmd.Flags().GetString("format"); format {
			case "json":
				return report.WriteJSON(cmd.OutOrStdout(), a.store)
			case "table":
				return report.WriteTable(cmd.OutOrStdout(), a.store)
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
	listCmd.Flags().String("format", "table", "Output format: table or json")
	return listCmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <index>",
		Short: "Delete the record at a position",
		Long: `Delete the record at a 0-based position. Every later record moves down
by one. The data file is rebuilt through a temporary file and swapped into place.

Example:
  stock delete 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}

			if err := a.store.DeleteAt(index); err != nil {
				return fmt.Errorf("failed to delete record: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted record %d\n", index)
			return nil
		},
	}
}

func newReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Write the text report of all records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				output = a.config.ReportFile
			}

			if output == "-" {
				_, err := report.Generate(cmd.OutOrStdout(), a.store)
				return err
			}

			n, err := report.WriteFile(output, a.store)
			if err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report with %d records written to %s\n", n, output)
			return nil
		},
	}
	reportCmd.Flags().StringP("output", "o", "", "Report path, - for stdout (default from config)")
	return reportCmd
}
