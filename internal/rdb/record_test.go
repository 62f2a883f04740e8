package rdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeExpireTime(t *testing.T) {
	t.Run("milliseconds", func(t *testing.T) {
		src := []byte{opcodeExpireMs, 1, 0, 0, 0, 0, 0, 0, 0} // value 1, LE
		e, err := decodeExpireTime(src)
		require.NoError(t, err)
		require.Equal(t, ExpireMilliseconds, e.Kind)
		require.EqualValues(t, 1, e.Ms)
		require.Equal(t, 9, e.Width())
	})

	t.Run("seconds", func(t *testing.T) {
		src := []byte{opcodeExpire, 10, 0, 0, 0}
		e, err := decodeExpireTime(src)
		require.NoError(t, err)
		require.Equal(t, ExpireSeconds, e.Kind)
		require.EqualValues(t, 10, e.Sec)
		require.Equal(t, 5, e.Width())
	})

	t.Run("none consumes nothing", func(t *testing.T) {
		e, err := decodeExpireTime([]byte{0x00})
		require.NoError(t, err)
		require.Equal(t, ExpireNone, e.Kind)
		require.Equal(t, 0, e.Width())
	})
}

// TestRedisDataAllKinds exercises decodeRedisData for every one of the
// nine type bytes spec.md §4.4 names, guarding against an unhandled
// RedisDataKind slipping through Go's lack of exhaustiveness checking
// (SPEC_FULL.md §5).
func TestRedisDataAllKinds(t *testing.T) {
	decomp := fakeDecompressor{}
	lengthPrefixedString := func(s string) []byte { return append([]byte{byte(len(s))}, s...) }

	cases := []struct {
		name     string
		typeByte byte
		src      []byte
		wantKind RedisDataKind
	}{
		{"string", rdbTypeString, lengthPrefixedString("v"), DataString},
		{"list", rdbTypeList, append([]byte{0x01}, lengthPrefixedString("x")...), DataList},
		{"set", rdbTypeSet, append([]byte{0x01}, lengthPrefixedString("x")...), DataSet},
		{"sortedset", rdbTypeSortedSet, append(append([]byte{0x01}, lengthPrefixedString("m")...), lengthPrefixedString("1")...), DataSortedSet},
		{"hash", rdbTypeHash, append(append([]byte{0x01}, lengthPrefixedString("f")...), lengthPrefixedString("v")...), DataHash},
		{"list-ziplist", rdbTypeListZip, lengthPrefixedString("\x00\x00\x00"), DataListAsZipList},
		{"set-intset", rdbTypeSetIntSet, lengthPrefixedString("\x00\x00\x00"), DataSetAsIntSet},
		{"zset-ziplist", rdbTypeZSetZip, lengthPrefixedString("\x00\x00\x00"), DataSortedSetAsZipList},
		{"hash-ziplist", rdbTypeHashZip, lengthPrefixedString("\x00\x00\x00"), DataHashAsZipList},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := decodeRedisData(tc.typeByte, tc.src, decomp)
			require.NoError(t, err)
			require.Equal(t, tc.wantKind, d.Kind)
			require.Greater(t, d.Width(), 0)
		})
	}
}

func TestRedisDataZipmapIsFatal(t *testing.T) {
	_, err := decodeRedisData(rdbTypeZipmap, []byte{0x00}, fakeDecompressor{})
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, KindMalformed, rerr.Kind)
}

func TestRedisDataUnknownTypeByte(t *testing.T) {
	_, err := decodeRedisData(99, []byte{0x00}, fakeDecompressor{})
	require.Error(t, err)
}
