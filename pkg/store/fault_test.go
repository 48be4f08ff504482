package store

import (
	"errors"
	"os"
)

var errInjected = errors.New("injected failure")

// faultFS wraps the OS file system and fails selected operations
type faultFS struct {
	OSFileSystem

	path     string
	tempPath string

	tempWriteBudget int  // bytes the temp file accepts before failing; -1 disables
	mainShortWrite  bool // writes to path stop halfway
	truncateErr     error
	renameErr       error
	reopenErr       error // returned when path is opened after a rename attempt

	renameAttempted bool
}

func newFaultFS(path string) *faultFS {
	return &faultFS{
		path:            path,
		tempPath:        path + ".tmp",
		tempWriteBudget: -1,
	}
}

func (f *faultFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	if name == f.path && f.renameAttempted && f.reopenErr != nil {
		return nil, f.reopenErr
	}

	file, err := f.OSFileSystem.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}

	switch {
	case name == f.tempPath && f.tempWriteBudget >= 0:
		return &faultyFile{File: file, budget: f.tempWriteBudget}, nil
	case name == f.path && (f.mainShortWrite || f.truncateErr != nil):
		return &faultyFile{File: file, budget: -1, shortWrite: f.mainShortWrite, truncateErr: f.truncateErr}, nil
	}
	return file, nil
}

func (f *faultFS) Rename(oldpath, newpath string) error {
	f.renameAttempted = true
	if f.renameErr != nil {
		return f.renameErr
	}
	return f.OSFileSystem.Rename(oldpath, newpath)
}

// faultyFile fails writes once its byte budget is spent
type faultyFile struct {
	File
	budget      int
	shortWrite  bool
	truncateErr error
}

func (f *faultyFile) Write(p []byte) (int, error) {
	if f.shortWrite {
		n, err := f.File.Write(p[:len(p)/2])
		if err != nil {
			return n, err
		}
		return n, errInjected
	}
	if f.budget < 0 || len(p) <= f.budget {
		if f.budget >= 0 {
			f.budget -= len(p)
		}
		return f.File.Write(p)
	}

	n, err := f.File.Write(p[:f.budget])
	f.budget = 0
	if err != nil {
		return n, err
	}
	return n, errInjected
}

func (f *faultyFile) Truncate(size int64) error {
	if f.truncateErr != nil {
		return f.truncateErr
	}
	return f.File.Truncate(size)
}
