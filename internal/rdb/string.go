package rdb

import "strconv"

// StringKind tags which alternative of the RedisString union decoded.
type StringKind int

const (
	StringLengthPrefixed StringKind = iota
	StringInt
	StringLZF
)

// RedisString is spec.md §3's tagged union {LengthPrefixed, StrInt, LZF}.
// Bytes is the fully decoded semantic value regardless of which wire
// alternative produced it.
type RedisString struct {
	Kind  StringKind
	Bytes []byte
	width int
}

// Width reports the number of wire bytes this RedisString occupied.
func (s RedisString) Width() int { return s.width }

// decodeRedisString implements spec.md §4.2's alternation: try
// length-prefixed, then StrInt, then LZF, treating "wrong tag" as "try the
// next alternative" via errAlternative. If all three reject, the result is
// Malformed("not a RedisString"). decomp is the external LZF
// collaborator (spec.md §1(b)); pass DefaultDecompressor in production.
func decodeRedisString(src []byte, decomp Decompressor) (RedisString, error) {
	if s, err := decodeLengthPrefixedString(src); !isAlternative(err) {
		return s, err
	}
	if s, err := decodeStrIntString(src); !isAlternative(err) {
		return s, err
	}
	s, err := decodeLZFString(src, decomp)
	if isAlternative(err) {
		return RedisString{}, errMalformed("not a RedisString")
	}
	return s, err
}

// decodeLengthPrefixedString is the RedisString alternative backed by a
// plain Length followed by that many raw bytes. The top-2-bit escape
// (Length's kindAlternative) is propagated so the caller tries StrInt/LZF
// next; decodeLength has no dedicated 32/64-bit markers (0x80/0x81): any
// 10xxxxxx byte decodes here as a plain large Length, per spec.md §3's
// model (no dedicated marker beyond the three Length widths and the escape).
func decodeLengthPrefixedString(src []byte) (RedisString, error) {
	l, err := decodeLength(src)
	if err != nil {
		return RedisString{}, err
	}
	n := int(l.Value)
	rest := src[l.Width():]
	if len(rest) < n {
		return RedisString{}, errMore
	}
	buf := make([]byte, n)
	copy(buf, rest[:n])
	return RedisString{Kind: StringLengthPrefixed, Bytes: buf, width: l.Width() + n}, nil
}

// decodeStrIntString is the RedisString alternative backed by a small
// integer rendered as its decimal text (spec.md §3 StrInt).
func decodeStrIntString(src []byte) (RedisString, error) {
	si, err := decodeStrInt(src)
	if err != nil {
		return RedisString{}, err
	}
	text := strconv.FormatInt(int64(si.Value), 10)
	return RedisString{Kind: StringInt, Bytes: []byte(text), width: si.Width()}, nil
}

const rdbEncLZFTag = 0x3 // low 6 bits of the 11xxxxxx escape byte selecting LZF

// decodeLZFString is the RedisString alternative backed by LZF-compressed
// data: compressed_len:Length, original_len:Length, payload. Grounded on
// the teacher's readLZFString (rdb_string.go).
func decodeLZFString(src []byte, decomp Decompressor) (RedisString, error) {
	if len(src) < 1 {
		return RedisString{}, errMore
	}
	if src[0]>>6 != 3 || src[0]&0x3f != rdbEncLZFTag {
		return RedisString{}, errAlternative
	}
	cur := src[1:]
	width := 1

	compressedLen, err := decodeLength(cur)
	if err != nil {
		if isAlternative(err) {
			return RedisString{}, errMalformed("lzf string: invalid compressed length")
		}
		return RedisString{}, err
	}
	cur = cur[compressedLen.Width():]
	width += compressedLen.Width()

	originalLen, err := decodeLength(cur)
	if err != nil {
		if isAlternative(err) {
			return RedisString{}, errMalformed("lzf string: invalid original length")
		}
		return RedisString{}, err
	}
	cur = cur[originalLen.Width():]
	width += originalLen.Width()

	n := int(compressedLen.Value)
	if len(cur) < n {
		return RedisString{}, errMore
	}
	payload := cur[:n]
	width += n

	decompressed, err := decomp.Decompress(payload, int(originalLen.Value))
	if err != nil {
		return RedisString{}, err
	}
	return RedisString{Kind: StringLZF, Bytes: decompressed, width: width}, nil
}
