package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	logging "github.com/op/go-logging"

	"github.com/ssargent/stockdb/pkg/codec"
)

var log = logging.MustGetLogger("store")

// RecordStore is a dense file of fixed-size records addressed by position.
//
// A RecordStore owns exactly one handle on its backing file and is not safe
// for concurrent use; callers serialize access.
type RecordStore struct {
	config StoreConfig
	fs     FileSystem
	file   File
	codec  *codec.RecordCodec
	state  State
}

// OpenOrCreate opens the backing file for read+write without truncating it,
// creating an empty file if it does not exist yet.
func OpenOrCreate(config StoreConfig) (*RecordStore, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if config.TempPath == "" {
		config.TempPath = config.Path + ".tmp"
	}
	if config.FileSystem == nil {
		config.FileSystem = OSFileSystem{}
	}
	fs := config.FileSystem

	same, err := samePath(config.Path, config.TempPath)
	if err != nil {
		return nil, ioError("resolve path", err)
	}
	if same {
		return nil, fmt.Errorf("%w: %s", ErrTempPathConflict, config.TempPath)
	}

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := fs.MkdirAll(dir, 0750); err != nil {
			return nil, ioError("create directory", err)
		}
	}

	file, err := fs.OpenFile(config.Path, os.O_RDWR, 0)
	if errors.Is(err, os.ErrNotExist) {
		log.Infof("creating record file %s", config.Path)
		file, err = fs.OpenFile(config.Path, os.O_RDWR|os.O_CREATE, 0644)
	}
	if err != nil {
		return nil, ioError("open", err)
	}

	// a link or bind mount can still alias the data file under another name
	if err := checkTempAlias(fs, config.Path, config.TempPath); err != nil {
		_ = file.Close()
		return nil, err
	}

	s := &RecordStore{
		config: config,
		fs:     fs,
		file:   file,
		codec:  codec.NewRecordCodec(),
		state:  StateStable,
	}

	if check, err := s.Check(); err == nil && !check.Healthy() {
		log.Warningf("%s has %d trailing bytes after record %d", config.Path, check.TrailingBytes, check.Records)
	}

	return s, nil
}

// Path returns the backing file path
func (s *RecordStore) Path() string {
	return s.config.Path
}

// TempPath returns the path used while rebuilding
func (s *RecordStore) TempPath() string {
	return s.config.TempPath
}

// State returns the current lifecycle state
func (s *RecordStore) State() State {
	return s.state
}

// handle returns the live file or ErrStoreUnavailable
func (s *RecordStore) handle() (File, error) {
	if s.file == nil {
		return nil, unavailable()
	}
	return s.file, nil
}

// size seeks to the end of the file and returns its length
func (s *RecordStore) size() (int64, error) {
	file, err := s.handle()
	if err != nil {
		return 0, err
	}
	end, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, ioError("seek", err)
	}
	return end, nil
}

// Count returns the number of complete records in the file. Trailing bytes
// that do not form a whole record are ignored.
func (s *RecordStore) Count() (int64, error) {
	size, err := s.size()
	if err != nil {
		return 0, err
	}
	return size / RecordSize, nil
}

// Append writes a record after the last one. On failure the file is
// truncated back to its previous length.
func (s *RecordStore) Append(record *codec.Record) error {
	file, err := s.handle()
	if err != nil {
		return err
	}

	data, err := s.codec.Encode(record)
	if err != nil {
		return err
	}

	// size leaves the cursor at end of file
	size, err := s.size()
	if err != nil {
		return err
	}
	if size%RecordSize != 0 {
		return trailingBytes(size)
	}

	n, err := file.Write(data)
	if err == nil && n != len(data) {
		err = io.ErrShortWrite
	}
	if err == nil && !s.config.NoSync {
		err = file.Sync()
	}
	if err != nil {
		appendErr := ioError("append", err)
		if terr := file.Truncate(size); terr != nil {
			log.Errorf("rollback of partial append to %s failed: %v", s.config.Path, terr)
			return errors.Join(appendErr, ioError("truncate", terr))
		}
		log.Warningf("append to %s failed after %d bytes, truncated back to %d", s.config.Path, n, size)
		return appendErr
	}

	log.Debugf("appended record %d to %s", size/RecordSize, s.config.Path)
	return nil
}

// ReadAt reads the record at a 0-based ordinal position
func (s *RecordStore) ReadAt(index int64) (*codec.Record, error) {
	count, err := s.Count()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= count {
		return nil, outOfRange(index, count)
	}

	file := s.file
	if _, err := file.Seek(index*RecordSize, io.SeekStart); err != nil {
		return nil, ioError("seek", err)
	}

	buf := make([]byte, RecordSize)
	if _, err := io.ReadFull(file, buf); err != nil {
		return nil, readError(index, err)
	}

	return s.codec.Decode(buf)
}

// ReadAll returns an iterator over every record from position 0. Each call
// starts a fresh pass; the store must not be mutated while iterating.
func (s *RecordStore) ReadAll() RecordIterator {
	return &recordIterator{store: s}
}

// Check reports the file size and whether it ends in a partial record
func (s *RecordStore) Check() (*CheckResult, error) {
	size, err := s.size()
	if err != nil {
		return nil, err
	}
	return &CheckResult{
		FileSize:      size,
		Records:       size / RecordSize,
		TrailingBytes: size % RecordSize,
	}, nil
}

// Repair truncates a partial trailing record, if any
func (s *RecordStore) Repair() (*RecoveryResult, error) {
	check, err := s.Check()
	if err != nil {
		return nil, err
	}

	result := &RecoveryResult{
		RecordsValidated: check.Records,
		FileSizeBefore:   check.FileSize,
		FileSizeAfter:    check.FileSize,
	}
	if check.Healthy() {
		return result, nil
	}

	good := check.Records * RecordSize
	if err := s.file.Truncate(good); err != nil {
		return nil, ioError("truncate", err)
	}
	if !s.config.NoSync {
		if err := s.file.Sync(); err != nil {
			return nil, ioError("sync", err)
		}
	}

	result.BytesTruncated = check.TrailingBytes
	result.FileSizeAfter = good
	log.Infof("repaired %s: truncated %d trailing bytes", s.config.Path, check.TrailingBytes)
	return result, nil
}

// Close releases the file handle
func (s *RecordStore) Close() error {
	s.state = StateClosed
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return ioError("close", err)
	}
	return nil
}

// readError maps a failed full-record read to the store's error kinds
func readError(index int64, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: short read at record %d", ErrCorruptRecord, index)
	}
	return ioError("read", err)
}

// samePath reports whether two paths resolve to the same absolute name
func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}

// checkTempAlias fails when an existing temp file is the data file itself
func checkTempAlias(fs FileSystem, path, tempPath string) error {
	tempInfo, err := fs.Stat(tempPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return ioError("stat temp file", err)
	}
	info, err := fs.Stat(path)
	if err != nil {
		return ioError("stat", err)
	}
	if os.SameFile(info, tempInfo) {
		return fmt.Errorf("%w: %s is the same file as %s", ErrTempPathConflict, tempPath, path)
	}
	return nil
}
