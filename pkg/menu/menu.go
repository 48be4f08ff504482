// Package menu is the interactive front end of the record store: a numbered
// menu read from an input stream, with every store error reported to the
// user and the loop carrying on.
package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	logging "github.com/op/go-logging"

	"github.com/ssargent/stockdb/pkg/codec"
	"github.com/ssargent/stockdb/pkg/report"
	"github.com/ssargent/stockdb/pkg/store"
)

var log = logging.MustGetLogger("menu")

// Store is the set of record store operations the menu dispatches to
type Store interface {
	Count() (int64, error)
	Append(record *codec.Record) error
	ReadAt(index int64) (*codec.Record, error)
	ReadAll() store.RecordIterator
	DeleteAt(index int64) error
}

const menuText = `
=== Inventory Manager ===
1 - Register product
2 - Look up by index
3 - Show record count
4 - List all
5 - Delete by index
6 - Generate report
0 - Exit
`

// Dispatcher runs the menu loop against one store
type Dispatcher struct {
	store      Store
	input      *Input
	out        io.Writer
	reportPath string
}

// New creates a dispatcher reading choices from in and writing to out
func New(s Store, in io.Reader, out io.Writer, reportPath string) *Dispatcher {
	return &Dispatcher{
		store:      s,
		input:      NewInput(in, out),
		out:        out,
		reportPath: reportPath,
	}
}

// Run shows the menu until the user exits, the input ends or ctx is done
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(d.out, menuText)
		line, err := d.input.ReadLine("Choice: ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(d.out)
			return nil
		}
		if err != nil {
			return err
		}

		var actionErr error
		switch strings.TrimSpace(line) {
		case "1":
			actionErr = d.register()
		case "2":
			actionErr = d.lookup()
		case "3":
			actionErr = d.count()
		case "4":
			actionErr = d.list()
		case "5":
			actionErr = d.delete()
		case "6":
			actionErr = d.report()
		case "0":
			fmt.Fprintln(d.out, "Exiting...")
			return nil
		default:
			fmt.Fprintln(d.out, "Invalid option.")
		}

		if errors.Is(actionErr, io.EOF) {
			fmt.Fprintln(d.out)
			return nil
		}
		if actionErr != nil {
			d.fail(actionErr)
		}
	}
}

// fail reports an error and keeps the loop going
func (d *Dispatcher) fail(err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		fmt.Fprintf(d.out, "Invalid entry: %v\n", err)
	case errors.Is(err, store.ErrStoreUnavailable):
		log.Errorf("store unavailable: %v", err)
		fmt.Fprintf(d.out, "Error: %v (restart the program to reopen the file)\n", err)
	default:
		log.Warningf("operation failed: %v", err)
		fmt.Fprintf(d.out, "Error: %v\n", err)
	}
}

func (d *Dispatcher) register() error {
	name, err := d.input.ReadName("Product name: ")
	if err != nil {
		return err
	}
	code, err := d.input.ReadInt("Code (integer): ")
	if err != nil {
		return err
	}
	price, err := d.input.ReadFloat("Price (e.g. 19.90): ")
	if err != nil {
		return err
	}

	if err := d.store.Append(&codec.Record{Name: name, Code: code, Price: price}); err != nil {
		return err
	}
	fmt.Fprintln(d.out, "Product registered.")
	return nil
}

// askIndex prompts for an index in [0, total) and reports whether one was given
func (d *Dispatcher) askIndex(prompt string, total int64) (int64, bool, error) {
	idx, err := d.input.ReadInt64(fmt.Sprintf(prompt, total, total-1))
	if err != nil {
		return 0, false, err
	}
	if idx < 0 || idx >= total {
		fmt.Fprintln(d.out, "Index out of range.")
		return 0, false, nil
	}
	return idx, true, nil
}

func (d *Dispatcher) lookup() error {
	total, err := d.store.Count()
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Fprintln(d.out, "File is empty. No records to look up.")
		return nil
	}

	idx, ok, err := d.askIndex("There are %d records. Enter index (0 .. %d): ", total)
	if err != nil || !ok {
		return err
	}

	r, err := d.store.ReadAt(idx)
	if err != nil {
		return err
	}

	fmt.Fprintf(d.out, "\n--- Record %d ---\n", idx)
	fmt.Fprintf(d.out, "Name  : %s\n", r.Name)
	fmt.Fprintf(d.out, "Code  : %d\n", r.Code)
	fmt.Fprintf(d.out, "Price : %.2f\n", r.Price)
	fmt.Fprintln(d.out, "-------------------")
	return nil
}

func (d *Dispatcher) count() error {
	total, err := d.store.Count()
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Total records in file: %d\n", total)
	return nil
}

func (d *Dispatcher) list() error {
	total, err := d.store.Count()
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Fprintln(d.out, "File is empty.")
		return nil
	}

	fmt.Fprintf(d.out, "\n=== All records (%d) ===\n", total)
	it := d.store.ReadAll()
	defer it.Close()
	for it.Next() {
		r := it.Record()
		fmt.Fprintf(d.out, "[%d] Name: %s | Code: %d | Price: %.2f\n", it.Index(), r.Name, r.Code, r.Price)
	}
	if err := it.Err(); err != nil {
		return err
	}
	fmt.Fprintln(d.out, "=========================================")
	return nil
}

func (d *Dispatcher) delete() error {
	total, err := d.store.Count()
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Fprintln(d.out, "File is empty. Nothing to delete.")
		return nil
	}

	idx, ok, err := d.askIndex("There are %d records. Enter index to delete (0 .. %d): ", total)
	if err != nil || !ok {
		return err
	}

	if err := d.store.DeleteAt(idx); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Record %d deleted.\n", idx)
	return nil
}

func (d *Dispatcher) report() error {
	total, err := d.store.Count()
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Fprintln(d.out, "File is empty. No data for report.")
		return nil
	}

	n, err := report.WriteFile(d.reportPath, d.store)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Report with %d records written to '%s'.\n", n, d.reportPath)
	return nil
}
