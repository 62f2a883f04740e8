package rdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildZipList assembles a ziplist byte blob: zlbytes is computed to make
// the header+entries+terminator length self-consistent, per spec.md §4.3.
func buildZipList(entries ...[]byte) []byte {
	var body []byte
	for _, e := range entries {
		body = append(body, e...)
	}
	header := 1 + 4 + 2 // small zlbytes + zltail + zllen, all fit here
	total := header + len(body) + 1
	out := []byte{byte(total)} // zlbytes, small encoding (total < 64 in these tests)
	out = append(out, 0, 0, 0, 0) // zltail, unused
	out = append(out, byte(len(entries)), 0)
	out = append(out, body...)
	out = append(out, ziplistEndMarker)
	return out
}

// ziplistStringEntry builds one prevlen(1)+encoding+payload entry for a
// 6-bit-length string (payload under 64 bytes).
func ziplistStringEntry(s string) []byte {
	e := []byte{0x00, byte(len(s))}
	return append(e, s...)
}

// ziplistInlineIntEntry builds a 4-bit inline-int entry for 0 <= v <= 12
// (nibbles 14/15 collide with the 1-byte-int marker/terminator; nibble 0,
// encoding 0xF0, is the 3-byte-int marker handled separately in
// decodeZipListEntry, but 0xF1 (v=0) is a genuine inline immediate).
func ziplistInlineIntEntry(v int64) []byte {
	return []byte{0x00, byte(0xF0 | (v + 1))}
}

func TestDecodeZipListStringsAndInlineInt(t *testing.T) {
	data := buildZipList(ziplistStringEntry("abc"), ziplistInlineIntEntry(5))

	zl, err := decodeZipList(data)
	require.NoError(t, err)
	require.Len(t, zl.Entries, 2)
	require.Equal(t, ZipListEntryString, zl.Entries[0].Kind)
	require.Equal(t, "abc", string(zl.Entries[0].Bytes))
	require.Equal(t, ZipListEntryInt, zl.Entries[1].Kind)
	require.Equal(t, "5", string(zl.Entries[1].Bytes))
	require.Equal(t, len(data), zl.Width())
}

// TestDecodeZipListInlineZeroDoesNotCollideWith3ByteInt guards against the
// off-by-one mask bug where 0xF1 (inline immediate 0) was matched by the
// 3-byte-int branch's `encoding&0xFE==0xF0` check instead of its own
// `encoding&0xF0==0xF0` case, consuming 3 bytes of the next entry instead
// of none.
func TestDecodeZipListInlineZeroDoesNotCollideWith3ByteInt(t *testing.T) {
	data := buildZipList(ziplistInlineIntEntry(0), ziplistStringEntry("abc"))

	zl, err := decodeZipList(data)
	require.NoError(t, err)
	require.Len(t, zl.Entries, 2)
	require.Equal(t, ZipListEntryInt, zl.Entries[0].Kind)
	require.Equal(t, "0", string(zl.Entries[0].Bytes))
	require.Equal(t, 2, zl.Entries[0].Width()) // prevlen + encoding byte only, no payload
	require.Equal(t, ZipListEntryString, zl.Entries[1].Kind)
	require.Equal(t, "abc", string(zl.Entries[1].Bytes))
	require.Equal(t, len(data), zl.Width())
}

func TestDecodeZipListMissingTerminator(t *testing.T) {
	data := buildZipList(ziplistStringEntry("abc"))
	data[len(data)-1] = 0x00 // corrupt the terminator
	_, err := decodeZipList(data)
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, KindMalformed, rerr.Kind)
}

func TestDecodeZipListEmpty(t *testing.T) {
	data := buildZipList()
	zl, err := decodeZipList(data)
	require.NoError(t, err)
	require.Empty(t, zl.Entries)
	require.Equal(t, len(data), zl.Width())
}
