// Package codec provides the fixed-width binary encoding of a product record.
//
// Every record occupies exactly RecordSize bytes, which is what lets the store
// address records by position instead of by key.
//
// # Record Format
//
// Records are serialized in a fixed layout with the following structure:
//
//	[Name(50)][Code(4)][Price(4)]
//
// Fields:
//   - Name: UTF-8 text, NUL padded. At most NameCapacity (49) bytes of payload;
//     the last byte of the field is reserved for the terminator
//   - Code: 32-bit signed integer (little-endian)
//   - Price: IEEE-754 single precision float bits (little-endian)
//
// The total record size is always 58 bytes. There is no header, no checksum and
// no version byte: a file of records is nothing but RecordSize-aligned blocks.
//
// # Names
//
// Names longer than NameCapacity are truncated silently when a Name is built,
// backing off to the previous rune boundary so the stored text is always valid
// UTF-8. Decoding stops at the first NUL byte or at the field width, whichever
// comes first.
//
// # Usage
//
//	c := codec.NewRecordCodec()
//
//	encoded, err := c.Encode(codec.NewRecord("widget", 42, 9.90))
//	if err != nil {
//	    return err
//	}
//
//	record, err := c.Decode(encoded)
//	if err != nil {
//	    return err // ErrCorruptRecord when len(encoded) != RecordSize
//	}
//
// # Thread Safety
//
// RecordCodec holds no state and is safe for concurrent use.
package codec
