package store

import (
	"fmt"

	"github.com/ssargent/stockdb/pkg/codec"
)

// RecordSize is the byte length of one record in the backing file
const RecordSize = codec.RecordSize

// StoreConfig holds configuration for the record store
type StoreConfig struct {
	Path       string     // Path to the backing file
	TempPath   string     // Rebuild target during delete (default: Path + ".tmp")
	FileSystem FileSystem // File access (default: the OS)
	NoSync     bool       // Skip fsync after append and rebuild
}

// State describes where the store is in the rebuild-and-swap cycle
type State int

const (
	// StateStable means one live handle on the canonical path
	StateStable State = iota
	// StateRebuilding means a delete is copying into the temp file
	StateRebuilding
	// StateUnavailable means a swap left the store without a handle
	StateUnavailable
	// StateClosed means Close was called
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateStable:
		return "stable"
	case StateRebuilding:
		return "rebuilding"
	case StateUnavailable:
		return "unavailable"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// RecordIterator provides streaming access to records in ordinal order
type RecordIterator interface {
	Next() bool
	Record() *codec.Record
	Index() int64
	Err() error
	Close() error
}

// CheckResult describes the shape of the backing file
type CheckResult struct {
	FileSize      int64 `json:"file_size"`
	Records       int64 `json:"records"`
	TrailingBytes int64 `json:"trailing_bytes"`
}

// Healthy reports whether the file is an exact multiple of RecordSize
func (c *CheckResult) Healthy() bool {
	return c.TrailingBytes == 0
}

// RecoveryResult contains information about a tail repair
type RecoveryResult struct {
	RecordsValidated int64 `json:"records_validated"`
	BytesTruncated   int64 `json:"bytes_truncated"`
	FileSizeBefore   int64 `json:"file_size_before"`
	FileSizeAfter    int64 `json:"file_size_after"`
}

// Errors
var (
	ErrIO               = &StoreError{"i/o error"}
	ErrIndexOutOfRange  = &StoreError{"index out of range"}
	ErrStoreUnavailable = &StoreError{"store unavailable"}
	ErrTempPathConflict = &StoreError{"temp path names the data file"}
	ErrCorruptRecord    = codec.ErrCorruptRecord
)

// StoreError represents a record store error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}

func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}

func unavailable() error {
	return fmt.Errorf("%w: %w", ErrIO, ErrStoreUnavailable)
}

func outOfRange(index, count int64) error {
	return fmt.Errorf("%w: index %d, count %d", ErrIndexOutOfRange, index, count)
}

func trailingBytes(size int64) error {
	return fmt.Errorf("%w: %d trailing bytes after record %d", ErrCorruptRecord, size%RecordSize, size/RecordSize)
}
