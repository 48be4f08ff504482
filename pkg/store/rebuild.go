package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// DeleteAt removes the record at index by rebuilding the file without it.
//
// The remaining records are copied in order into TempPath, which is then
// renamed over the backing file and reopened as the live handle. If the copy
// fails the temp file is removed and the original is left as it was. If the
// swap fails the store still reopens whatever is at the canonical path; when
// even that fails it moves to StateUnavailable.
//
// The rename replaces the directory entry atomically on POSIX, but the
// directory itself is not fsynced: a crash right after the swap can surface
// the old file again on some filesystems.
func (s *RecordStore) DeleteAt(index int64) error {
	file, err := s.handle()
	if err != nil {
		return err
	}

	size, err := s.size()
	if err != nil {
		return err
	}
	count := size / RecordSize
	if index < 0 || index >= count {
		return outOfRange(index, count)
	}

	s.state = StateRebuilding
	log.Debugf("rebuilding %s without record %d of %d", s.config.Path, index, count)

	if err := s.copyExcept(file, size, index); err != nil {
		s.state = StateStable
		log.Warningf("delete of record %d aborted, %s left untouched: %v", index, s.config.Path, err)
		return err
	}

	if err := s.swap(); err != nil {
		return err
	}

	log.Infof("deleted record %d from %s, %d records remain", index, s.config.Path, count-1)
	return nil
}

// copyExcept writes every complete record of src except skip into the temp
// file. The temp file is closed on return and removed on failure.
func (s *RecordStore) copyExcept(src File, size, skip int64) (err error) {
	tmp, err := s.fs.OpenFile(s.config.TempPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return ioError("create temp file", err)
	}

	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			if cerr := tmp.Close(); cerr != nil {
				log.Debugf("closing %s after failed copy: %v", s.config.TempPath, cerr)
			}
		}
		if rerr := s.fs.Remove(s.config.TempPath); rerr != nil {
			log.Warningf("could not remove %s: %v", s.config.TempPath, rerr)
		}
	}()

	count := size / RecordSize
	reader := bufio.NewReader(io.NewSectionReader(src, 0, count*RecordSize))
	writer := bufio.NewWriter(tmp)
	buf := make([]byte, RecordSize)

	for i := int64(0); i < count; i++ {
		if _, err := io.ReadFull(reader, buf); err != nil {
			return fmt.Errorf("%w: copy: %w", ErrIO, readError(i, err))
		}
		// Decode only to catch malformed blocks; the bytes are copied as-is
		if _, err := s.codec.Decode(buf); err != nil {
			return fmt.Errorf("%w: copy record %d: %w", ErrIO, i, err)
		}
		if i == skip {
			continue
		}
		if _, err := writer.Write(buf); err != nil {
			return ioError("write temp file", err)
		}
	}

	if size%RecordSize != 0 {
		return fmt.Errorf("%w: copy: %w", ErrIO, trailingBytes(size))
	}

	if err := writer.Flush(); err != nil {
		return ioError("write temp file", err)
	}
	if !s.config.NoSync {
		if err := tmp.Sync(); err != nil {
			return ioError("sync temp file", err)
		}
	}

	closed = true
	if err := tmp.Close(); err != nil {
		return ioError("close temp file", err)
	}
	return nil
}

// swap installs the temp file at the canonical path and reopens it. It always
// ends with either one live handle or none and StateUnavailable.
func (s *RecordStore) swap() error {
	if err := s.file.Close(); err != nil {
		log.Warningf("closing %s before swap: %v", s.config.Path, err)
	}
	s.file = nil

	var swapErr error
	if err := s.fs.Rename(s.config.TempPath, s.config.Path); err != nil {
		swapErr = ioError("replace", err)
		log.Errorf("replacing %s failed: %v", s.config.Path, err)
		if rerr := s.fs.Remove(s.config.TempPath); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			log.Warningf("could not remove %s: %v", s.config.TempPath, rerr)
		}
	}

	file, err := s.fs.OpenFile(s.config.Path, os.O_RDWR, 0)
	if err != nil {
		s.state = StateUnavailable
		log.Errorf("reopening %s failed, store is unavailable: %v", s.config.Path, err)
		return errors.Join(swapErr, fmt.Errorf("%w: reopen %s: %w", unavailable(), s.config.Path, err))
	}

	s.file = file
	s.state = StateStable
	return swapErr
}
