package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// NameFieldSize is the on-disk width of the name field, terminator included
	NameFieldSize = 50
	// NameCapacity is the maximum number of name bytes that survive encoding
	NameCapacity = NameFieldSize - 1

	codeOffset  = NameFieldSize
	priceOffset = codeOffset + 4

	// RecordSize is the encoded size of every record
	RecordSize = priceOffset + 4
)

// ErrCorruptRecord is returned when a block cannot be a record
var ErrCorruptRecord = errors.New("corrupt record")

// Name is product text bounded to NameCapacity bytes
type Name string

// NewName builds a Name, cutting s at the first NUL and truncating it to
// NameCapacity bytes. A valid multibyte rune that straddles the limit is
// dropped whole; invalid bytes are cut at the limit like ASCII.
func NewName(s string) Name {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	if len(s) <= NameCapacity {
		return Name(s)
	}

	cut := NameCapacity
	for i := cut; i >= 0 && i > cut-utf8.UTFMax; i-- {
		if !utf8.RuneStart(s[i]) {
			continue
		}
		if _, size := utf8.DecodeRuneInString(s[i:]); size > 1 && i+size > cut {
			cut = i
		}
		break
	}
	return Name(s[:cut])
}

// String returns the name text
func (n Name) String() string {
	return string(n)
}

// Record is one product entry
type Record struct {
	Name  Name    // Product name
	Code  int32   // Product code, not unique
	Price float32 // Unit price
}

// NewRecord creates a record, truncating name to NameCapacity
func NewRecord(name string, code int32, price float32) *Record {
	return &Record{
		Name:  NewName(name),
		Code:  code,
		Price: price,
	}
}

// RecordCodec handles serialization and deserialization of records
type RecordCodec struct{}

// NewRecordCodec creates a new record codec instance
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{}
}

// Encode serializes a record into a new RecordSize block
// Format: [Name(50)][Code(4)][Price(4)]
func (c *RecordCodec) Encode(r *Record) ([]byte, error) {
	buf := make([]byte, RecordSize)
	if err := c.EncodeTo(buf, r); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeTo serializes a record into dst, which must be exactly RecordSize long
func (c *RecordCodec) EncodeTo(dst []byte, r *Record) error {
	if r == nil {
		return fmt.Errorf("cannot encode nil record")
	}
	if len(dst) != RecordSize {
		return fmt.Errorf("destination is %d bytes, need %d", len(dst), RecordSize)
	}

	// Re-bound the name in case the caller built a Name by conversion
	name := NewName(string(r.Name))

	clear(dst[:NameFieldSize])
	copy(dst[:NameCapacity], name)
	binary.LittleEndian.PutUint32(dst[codeOffset:], uint32(r.Code))
	binary.LittleEndian.PutUint32(dst[priceOffset:], math.Float32bits(r.Price))

	return nil
}

// Decode deserializes a RecordSize block into a Record
func (c *RecordCodec) Decode(data []byte) (*Record, error) {
	if len(data) != RecordSize {
		return nil, fmt.Errorf("%w: block is %d bytes, want %d", ErrCorruptRecord, len(data), RecordSize)
	}

	field := data[:NameFieldSize]
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}

	return &Record{
		Name:  Name(field),
		Code:  int32(binary.LittleEndian.Uint32(data[codeOffset:])),
		Price: math.Float32frombits(binary.LittleEndian.Uint32(data[priceOffset:])),
	}, nil
}
