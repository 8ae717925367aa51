package countmin

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zeebo/xxh3"
)

// Serialization constants and errors.
const (
	// serializeVersion is the current binary format version.
	serializeVersion byte = 1

	// headerSize is the size of the binary header in bytes.
	// Version (1) + Width (8) + Depth (4) + TotalCount (8) = 21 bytes
	headerSize = 21
)

var (
	// ErrInvalidFormat is returned when serialized data is not a
	// well-formed sketch record or is missing required fields.
	ErrInvalidFormat = errors.New("countmin: invalid serialized data")

	// ErrTableLengthMismatch is returned when a serialized table's
	// length disagrees with width*depth after normalization.
	ErrTableLengthMismatch = errors.New("countmin: table length mismatch")

	// ErrUnsupportedVersion is returned when the binary format version
	// is not supported.
	ErrUnsupportedVersion = errors.New("countmin: unsupported serialization version")
)

// Snapshot is the structured serialized form of a sketch: its
// dimensions plus a row-major copy of the counter table. A Snapshot
// owns its table and is independent of the sketch it was taken from.
// Seeds are not part of the form; they are regenerated as 0..depth-1
// on restore, so hash behavior survives a round trip.
//
// Consumers must preserve table order exactly: reordering corrupts the
// counter-to-index mapping.
type Snapshot struct {
	Width int      `json:"width"`
	Depth int      `json:"depth"`
	Table []uint32 `json:"table"`
}

// Snapshot returns the structured serialized form of the sketch. The
// returned value holds its own copy of the counters.
func (s *Sketch) Snapshot() *Snapshot {
	table := make([]uint32, len(s.table))
	copy(table, s.table)
	return &Snapshot{
		Width: s.width,
		Depth: s.depth,
		Table: table,
	}
}

// FromSnapshot reconstructs a sketch from its structured form. The
// dimensions pass through the normal constructor, including
// power-of-two width normalization; if the table length disagrees with
// the normalized width*depth, ErrTableLengthMismatch is returned.
func FromSnapshot(snap *Snapshot, opts ...Option) (*Sketch, error) {
	if snap == nil || snap.Table == nil {
		return nil, fmt.Errorf("%w: missing width, depth or table", ErrInvalidFormat)
	}

	s, err := NewWithDimensions(snap.Width, snap.Depth, opts...)
	if err != nil {
		return nil, err
	}
	if len(snap.Table) != len(s.table) {
		return nil, fmt.Errorf("%w: got %d counters, need %d (width %d x depth %d)",
			ErrTableLengthMismatch, len(snap.Table), len(s.table), s.width, s.depth)
	}

	copy(s.table, snap.Table)
	s.total = s.sumRow0()
	return s, nil
}

// sumRow0 recovers the total inserted mass from the table: every
// update lands exactly once in row 0, so its sum is the total count.
// Exact until a counter wraps at 2^32.
func (s *Sketch) sumRow0() uint64 {
	var total uint64
	for _, c := range s.table[:s.width] {
		total += uint64(c)
	}
	return total
}

// MarshalJSON encodes the sketch as its Snapshot form:
// {"width":..., "depth":..., "table":[...]}.
func (s *Sketch) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// UnmarshalJSON decodes a sketch from its Snapshot JSON form. Returns
// ErrInvalidFormat if data is not a JSON object or lacks any of the
// width, depth and table fields; otherwise the same validation as
// FromSnapshot applies.
func UnmarshalJSON(data []byte) (*Sketch, error) {
	var raw struct {
		Width *int      `json:"width"`
		Depth *int      `json:"depth"`
		Table *[]uint32 `json:"table"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if raw.Width == nil || raw.Depth == nil || raw.Table == nil {
		return nil, fmt.Errorf("%w: missing width, depth or table", ErrInvalidFormat)
	}
	return FromSnapshot(&Snapshot{
		Width: *raw.Width,
		Depth: *raw.Depth,
		Table: *raw.Table,
	})
}

// MarshalBinary serializes the sketch to a byte slice. The format is:
//   - Version (1 byte): serialization format version
//   - Width (8 bytes): counters per row (little-endian uint64)
//   - Depth (4 bytes): number of rows (little-endian uint32)
//   - TotalCount (8 bytes): sum of applied counts (little-endian uint64)
//   - Table (width * depth * 4 bytes): counters, row-major (little-endian uint32s)
//
// Seeds are not serialized; they are derived from depth.
func (s *Sketch) MarshalBinary() ([]byte, error) {
	buf := make([]byte, headerSize+len(s.table)*4)

	buf[0] = serializeVersion
	binary.LittleEndian.PutUint64(buf[1:9], uint64(s.width))
	binary.LittleEndian.PutUint32(buf[9:13], uint32(s.depth))
	binary.LittleEndian.PutUint64(buf[13:21], s.total)

	offset := headerSize
	for _, c := range s.table {
		binary.LittleEndian.PutUint32(buf[offset:offset+4], c)
		offset += 4
	}

	return buf, nil
}

// UnmarshalBinary deserializes a sketch from the MarshalBinary format.
func UnmarshalBinary(data []byte) (*Sketch, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: data too short (got %d bytes, need at least %d)",
			ErrInvalidFormat, len(data), headerSize)
	}

	version := data[0]
	if version != serializeVersion {
		return nil, fmt.Errorf("%w: got version %d, expected %d",
			ErrUnsupportedVersion, version, serializeVersion)
	}

	width := binary.LittleEndian.Uint64(data[1:9])
	depth := binary.LittleEndian.Uint32(data[9:13])
	total := binary.LittleEndian.Uint64(data[13:21])

	if width == 0 || width > MaxWidth || width&(width-1) != 0 {
		return nil, fmt.Errorf("%w: width %d is not a power of two in [1, %d]",
			ErrInvalidFormat, width, MaxWidth)
	}
	if depth == 0 {
		return nil, fmt.Errorf("%w: depth cannot be zero", ErrInvalidFormat)
	}

	cells := int(width) * int(depth)
	expected := headerSize + cells*4
	if len(data) != expected {
		return nil, fmt.Errorf("%w: got %d bytes of counters, need %d (width %d x depth %d)",
			ErrTableLengthMismatch, len(data)-headerSize, cells*4, width, depth)
	}

	s := newSketch(int(width), int(depth))
	offset := headerSize
	for i := range s.table {
		s.table[i] = binary.LittleEndian.Uint32(data[offset : offset+4])
		offset += 4
	}
	s.total = total

	return s, nil
}

// Checksum returns a 64-bit xxh3 digest of the sketch's logical value
// (dimensions and counters). Two sketches with equal checksums hold
// identical tables, so replicas can compare state without exchanging
// or scanning full tables.
func (s *Sketch) Checksum() uint64 {
	buf := make([]byte, 12+len(s.table)*4)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(s.width))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(s.depth))
	offset := 12
	for _, c := range s.table {
		binary.LittleEndian.PutUint32(buf[offset:offset+4], c)
		offset += 4
	}
	return xxh3.Hash(buf)
}
