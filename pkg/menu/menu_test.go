package menu

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/stockdb/pkg/codec"
	"github.com/ssargent/stockdb/pkg/store"
)

type session struct {
	store      *store.RecordStore
	reportPath string
	out        bytes.Buffer
}

func newSession(t *testing.T, n int) *session {
	t.Helper()

	dir := t.TempDir()
	s, err := store.OpenOrCreate(store.StoreConfig{Path: filepath.Join(dir, "inventory.dat")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	for i := 0; i < n; i++ {
		require.NoError(t, s.Append(codec.NewRecord(fmt.Sprintf("item-%d", i), int32(i), float32(i)*2)))
	}

	return &session{store: s, reportPath: filepath.Join(dir, "report.txt")}
}

func (s *session) run(t *testing.T, script ...string) string {
	t.Helper()

	input := strings.Join(script, "\n") + "\n"
	d := New(s.store, strings.NewReader(input), &s.out, s.reportPath)
	require.NoError(t, d.Run(context.Background()))
	return s.out.String()
}

func (s *session) count(t *testing.T) int64 {
	t.Helper()
	n, err := s.store.Count()
	require.NoError(t, err)
	return n
}

func TestDispatcher_Register(t *testing.T) {
	s := newSession(t, 0)

	out := s.run(t, "1", "drill", "501", "149,90", "0")
	assert.Contains(t, out, "Product registered.")
	assert.Contains(t, out, "Exiting...")

	r, err := s.store.ReadAt(0)
	require.NoError(t, err)
	assert.Equal(t, codec.Name("drill"), r.Name)
	assert.Equal(t, int32(501), r.Code)
	assert.Equal(t, float32(149.90), r.Price)
}

func TestDispatcher_RegisterInvalidCode(t *testing.T) {
	s := newSession(t, 0)

	out := s.run(t, "1", "drill", "five", "3")
	assert.Contains(t, out, "Invalid entry")
	assert.Contains(t, out, "Total records in file: 0")
	assert.Zero(t, s.count(t))
}

func TestDispatcher_Lookup(t *testing.T) {
	t.Run("valid index", func(t *testing.T) {
		s := newSession(t, 3)
		out := s.run(t, "2", "1", "0")

		assert.Contains(t, out, "There are 3 records. Enter index (0 .. 2): ")
		assert.Contains(t, out, "--- Record 1 ---")
		assert.Contains(t, out, "Name  : item-1")
		assert.Contains(t, out, "Price : 2.00")
	})

	t.Run("out of range", func(t *testing.T) {
		s := newSession(t, 3)
		out := s.run(t, "2", "3", "2", "-1", "0")

		assert.Equal(t, 2, strings.Count(out, "Index out of range."))
		assert.NotContains(t, out, "--- Record")
	})

	t.Run("empty store", func(t *testing.T) {
		s := newSession(t, 0)
		out := s.run(t, "2", "0")

		assert.Contains(t, out, "File is empty. No records to look up.")
		assert.NotContains(t, out, "Enter index")
	})
}

func TestDispatcher_List(t *testing.T) {
	s := newSession(t, 2)
	out := s.run(t, "4")

	assert.Contains(t, out, "=== All records (2) ===")
	assert.Contains(t, out, "[0] Name: item-0 | Code: 0 | Price: 0.00")
	assert.Contains(t, out, "[1] Name: item-1 | Code: 1 | Price: 2.00")

	t.Run("empty store", func(t *testing.T) {
		s := newSession(t, 0)
		assert.Contains(t, s.run(t, "4"), "File is empty.")
	})
}

func TestDispatcher_Delete(t *testing.T) {
	s := newSession(t, 3)
	out := s.run(t, "5", "0", "4")

	assert.Contains(t, out, "Record 0 deleted.")
	assert.NotContains(t, out, "item-0 |")
	assert.Contains(t, out, "[0] Name: item-1")
	assert.Equal(t, int64(2), s.count(t))

	t.Run("out of range leaves the store alone", func(t *testing.T) {
		s := newSession(t, 2)
		out := s.run(t, "5", "2")

		assert.Contains(t, out, "Index out of range.")
		assert.Equal(t, int64(2), s.count(t))
	})

	t.Run("empty store", func(t *testing.T) {
		s := newSession(t, 0)
		assert.Contains(t, s.run(t, "5"), "File is empty. Nothing to delete.")
	})
}

func TestDispatcher_Report(t *testing.T) {
	s := newSession(t, 2)
	out := s.run(t, "6")

	assert.Contains(t, out, fmt.Sprintf("Report with 2 records written to '%s'.", s.reportPath))

	data, err := os.ReadFile(s.reportPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "===== PRODUCT REPORT (2 records) ====="))

	t.Run("empty store writes nothing", func(t *testing.T) {
		s := newSession(t, 0)
		out := s.run(t, "6")

		assert.Contains(t, out, "File is empty. No data for report.")
		assert.NoFileExists(t, s.reportPath)
	})
}

func TestDispatcher_InvalidOption(t *testing.T) {
	s := newSession(t, 0)
	out := s.run(t, "9", "abc", "0")

	assert.Equal(t, 2, strings.Count(out, "Invalid option."))
	assert.Contains(t, out, "Exiting...")
}

func TestDispatcher_EndOfInput(t *testing.T) {
	s := newSession(t, 0)

	// input ends in the middle of a registration
	d := New(s.store, strings.NewReader("1\nhalf"), &s.out, s.reportPath)
	assert.NoError(t, d.Run(context.Background()))
	assert.Zero(t, s.count(t))
}

func TestDispatcher_ContextCancelled(t *testing.T) {
	s := newSession(t, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(s.store, strings.NewReader("3\n"), &s.out, s.reportPath)
	err := d.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, s.out.String())
}

func TestDispatcher_StoreErrorKeepsLooping(t *testing.T) {
	s := newSession(t, 1)
	require.NoError(t, s.store.Close())

	out := s.run(t, "3", "4", "0")
	assert.Equal(t, 2, strings.Count(out, "Error: "))
	assert.Contains(t, out, "Exiting...")
}
