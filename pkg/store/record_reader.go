package store

import (
	"bufio"
	"io"

	"github.com/ssargent/stockdb/pkg/codec"
)

// recordIterator reads records sequentially through a buffered reader
type recordIterator struct {
	store   *RecordStore
	reader  *bufio.Reader
	buf     []byte
	size    int64
	count   int64
	next    int64
	index   int64
	record  *codec.Record
	err     error
	started bool
	done    bool
}

func (it *recordIterator) start() bool {
	it.started = true

	size, err := it.store.size()
	if err != nil {
		it.err = err
		return false
	}

	it.size = size
	it.count = size / RecordSize
	it.reader = bufio.NewReader(io.NewSectionReader(it.store.file, 0, it.count*RecordSize))
	it.buf = make([]byte, RecordSize)
	return true
}

func (it *recordIterator) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	if !it.started && !it.start() {
		return false
	}

	if it.next >= it.count {
		it.done = true
		it.record = nil
		if it.size%RecordSize != 0 {
			it.err = trailingBytes(it.size)
		}
		return false
	}

	if _, err := io.ReadFull(it.reader, it.buf); err != nil {
		it.err = readError(it.next, err)
		return false
	}

	record, err := it.store.codec.Decode(it.buf)
	if err != nil {
		it.err = err
		return false
	}

	it.record = record
	it.index = it.next
	it.next++
	return true
}

func (it *recordIterator) Record() *codec.Record {
	return it.record
}

// Index returns the ordinal position of the current record
func (it *recordIterator) Index() int64 {
	return it.index
}

func (it *recordIterator) Err() error {
	return it.err
}

func (it *recordIterator) Close() error {
	// The file belongs to the store
	it.done = true
	it.reader = nil
	return nil
}
