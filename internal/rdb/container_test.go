package rdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeContainerOfStrings(t *testing.T) {
	// count=2, then "ab", "cd" length-prefixed.
	src := []byte{0x02, 0x02, 'a', 'b', 0x02, 'c', 'd'}
	c, err := decodeContainer(src, decodeRedisStringItem(fakeDecompressor{}))
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	require.Equal(t, "ab", string(c.Items[0].Bytes))
	require.Equal(t, "cd", string(c.Items[1].Bytes))
	require.Equal(t, len(src), c.Width())
}

func TestDecodeContainerOfPairs(t *testing.T) {
	// count=1 pair, field "m" value "1".
	item := decodeRedisStringItem(fakeDecompressor{})
	src := []byte{0x01, 0x01, 'm', 0x01, '1'}
	c, err := decodeContainer(src, decodePair(item, item))
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	require.Equal(t, "m", string(c.Items[0].First.Bytes))
	require.Equal(t, "1", string(c.Items[0].Second.Bytes))
	require.Equal(t, len(src), c.Width())
}

func TestDecodeContainerEmpty(t *testing.T) {
	src := []byte{0x00}
	c, err := decodeContainer(src, decodeRedisStringItem(fakeDecompressor{}))
	require.NoError(t, err)
	require.Empty(t, c.Items)
	require.Equal(t, 1, c.Width())
}
