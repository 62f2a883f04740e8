package rdb

import "encoding/binary"

// IntSet is spec.md §4.3's compact integer set: an outer RedisString
// containing [encoding u32 LE][count u32 LE][count * signed int, encoding
// bytes each, LE], widened to int64 so no value loses its sign.
//
// The original Rust implementation this was distilled from returns an
// error on successful decode (a bug); per spec.md §7/SPEC_FULL.md §7 this
// decoder returns the decoded values on success instead.
type IntSet struct {
	Values []int64
	width  int
}

// Width reports the total decoded payload length.
func (s IntSet) Width() int { return s.width }

const (
	intsetEnc16 = 2
	intsetEnc32 = 4
	intsetEnc64 = 8
)

// decodeIntSet parses the [encoding][length][values...] layout, grounded
// on the teacher's parseIntset.
func decodeIntSet(data []byte) (IntSet, error) {
	if len(data) < 8 {
		return IntSet{}, errMalformed("intset: payload shorter than header")
	}
	enc := binary.LittleEndian.Uint32(data[0:4])
	count := binary.LittleEndian.Uint32(data[4:8])
	switch enc {
	case intsetEnc16, intsetEnc32, intsetEnc64:
	default:
		return IntSet{}, errMalformedf("intset: unsupported encoding %d", enc)
	}

	offset := 8
	values := make([]int64, 0, count)
	for i := uint32(0); i < count; i++ {
		var val int64
		switch enc {
		case intsetEnc16:
			v, n, err := readI16LE(data[offset:])
			if err != nil {
				return IntSet{}, errMalformed("intset: truncated int16 element")
			}
			val, offset = int64(v), offset+n
		case intsetEnc32:
			v, n, err := readI32LE(data[offset:])
			if err != nil {
				return IntSet{}, errMalformed("intset: truncated int32 element")
			}
			val, offset = int64(v), offset+n
		case intsetEnc64:
			v, n, err := readI64LE(data[offset:])
			if err != nil {
				return IntSet{}, errMalformed("intset: truncated int64 element")
			}
			val, offset = v, offset+n
		default:
			return IntSet{}, errMalformedf("intset: unsupported encoding %d", enc)
		}
		values = append(values, val)
	}
	return IntSet{Values: values, width: offset}, nil
}
