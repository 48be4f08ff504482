package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteTable displays every record in table format
func WriteTable(w io.Writer, src Source) error {
	entries, err := Collect(src)
	if len(entries) == 0 && err == nil {
		fmt.Fprintln(w, "No records found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAME\tCODE\tPRICE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\n", e.Index, e.Name, e.Code, e.Price)
	}
	if ferr := tw.Flush(); ferr != nil && err == nil {
		err = ferr
	}

	return err
}

// WriteEntry displays a single record
func WriteEntry(w io.Writer, e Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Index:\t%d\n", e.Index)
	fmt.Fprintf(tw, "Name:\t%s\n", e.Name)
	fmt.Fprintf(tw, "Code:\t%d\n", e.Code)
	fmt.Fprintf(tw, "Price:\t%.2f\n", e.Price)

	return tw.Flush()
}

// WriteJSON displays every record in JSON format. Nothing is written if the
// records cannot all be read.
func WriteJSON(w io.Writer, src Source) error {
	entries, err := Collect(src)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}
