// Package report renders the records of a store as a text report, a table or
// JSON.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ssargent/stockdb/pkg/codec"
	"github.com/ssargent/stockdb/pkg/store"
)

// Source is the part of the record store a report reads from
type Source interface {
	Count() (int64, error)
	ReadAll() store.RecordIterator
}

// Entry is a record together with its ordinal position
type Entry struct {
	Index int64   `json:"index"`
	Name  string  `json:"name"`
	Code  int32   `json:"code"`
	Price Price   `json:"price"`
}

// Price is a stored price. The file format holds any float32 bit pattern, so
// NaN and the infinities are encoded as the JSON strings "NaN", "+Inf" and
// "-Inf".
type Price float32

func (p Price) MarshalJSON() ([]byte, error) {
	f := float64(p)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(float32(p))
}

func (p *Price) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return fmt.Errorf("invalid price %q", s)
		}
		*p = Price(f)
		return nil
	}
	var f float32
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*p = Price(f)
	return nil
}

// NewEntry pairs a record with its index
func NewEntry(index int64, r *codec.Record) Entry {
	return Entry{
		Index: index,
		Name:  r.Name.String(),
		Code:  r.Code,
		Price: Price(r.Price),
	}
}

// Collect reads every record of src into memory
func Collect(src Source) ([]Entry, error) {
	it := src.ReadAll()
	defer it.Close()

	entries := []Entry{}
	for it.Next() {
		entries = append(entries, NewEntry(it.Index(), it.Record()))
	}
	if err := it.Err(); err != nil {
		return entries, err
	}
	return entries, nil
}

// Generate writes the text report for src to w and returns the number of
// entries written. Entries written before a read error are not retracted.
func Generate(w io.Writer, src Source) (int64, error) {
	total, err := src.Count()
	if err != nil {
		return 0, err
	}

	if _, err := fmt.Fprintf(w, "===== PRODUCT REPORT (%d records) =====\n\n", total); err != nil {
		return 0, err
	}

	it := src.ReadAll()
	defer it.Close()

	var written int64
	for it.Next() {
		r := it.Record()
		if _, err := fmt.Fprintf(w, "[%d] Name: %s\n     Code: %d\n     Price: %.2f\n\n",
			it.Index(), r.Name, r.Code, r.Price); err != nil {
			return written, err
		}
		written++
	}

	return written, it.Err()
}

// WriteFile generates the report into path. A failed report does not leave
// a partial file behind.
func WriteFile(path string, src Source) (n int64, err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return 0, fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	w := bufio.NewWriter(f)
	n, err = Generate(w, src)
	if err != nil {
		f.Close()
		return n, err
	}
	if err = w.Flush(); err != nil {
		f.Close()
		return n, fmt.Errorf("failed to write report: %w", err)
	}
	if err = f.Close(); err != nil {
		return n, fmt.Errorf("failed to write report: %w", err)
	}
	return n, nil
}
