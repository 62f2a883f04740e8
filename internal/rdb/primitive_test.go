package rdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeLength(t *testing.T) {
	t.Run("6-bit", func(t *testing.T) {
		l, err := decodeLength([]byte{0x05})
		require.NoError(t, err)
		require.Equal(t, LengthSmall, l.Kind)
		require.EqualValues(t, 5, l.Value)
		require.Equal(t, 1, l.Width())
	})

	t.Run("14-bit big-endian", func(t *testing.T) {
		// tag=01, top byte 0x01, low byte 0xF4 -> 0x1F4 = 500
		l, err := decodeLength([]byte{0x41, 0xF4})
		require.NoError(t, err)
		require.Equal(t, LengthNormal, l.Kind)
		require.EqualValues(t, 500, l.Value)
		require.Equal(t, 2, l.Width())
	})

	t.Run("32-bit big-endian", func(t *testing.T) {
		l, err := decodeLength([]byte{0x80, 0x00, 0x01, 0x00, 0x00})
		require.NoError(t, err)
		require.Equal(t, LengthLarge, l.Kind)
		require.EqualValues(t, 65536, l.Value)
		require.Equal(t, 5, l.Width())
	})

	t.Run("escape is alternative, not an error", func(t *testing.T) {
		_, err := decodeLength([]byte{0xC0})
		require.True(t, isAlternative(err))
	})

	t.Run("truncated is more", func(t *testing.T) {
		_, err := decodeLength([]byte{0x41})
		require.True(t, IsMore(err))
		_, err = decodeLength(nil)
		require.True(t, IsMore(err))
	})
}

func TestDecodeStrInt(t *testing.T) {
	t.Run("int8", func(t *testing.T) {
		si, err := decodeStrInt([]byte{0xC0, 0x2A})
		require.NoError(t, err)
		require.Equal(t, StrInt8, si.Kind)
		require.EqualValues(t, 42, si.Value)
		require.Equal(t, 2, si.Width())
	})

	t.Run("int16", func(t *testing.T) {
		si, err := decodeStrInt([]byte{0xC1, 0x2C, 0x01}) // 0x012C = 300
		require.NoError(t, err)
		require.Equal(t, StrInt16, si.Kind)
		require.EqualValues(t, 300, si.Value)
		require.Equal(t, 3, si.Width())
	})

	t.Run("int32", func(t *testing.T) {
		si, err := decodeStrInt([]byte{0xC2, 0x78, 0x56, 0x34, 0x12})
		require.NoError(t, err)
		require.Equal(t, StrInt32, si.Kind)
		require.EqualValues(t, 0x12345678, si.Value)
		require.Equal(t, 5, si.Width())
	})

	t.Run("LZF tag is alternative", func(t *testing.T) {
		_, err := decodeStrInt([]byte{0xC3})
		require.True(t, isAlternative(err))
	})

	t.Run("not an escape byte is alternative", func(t *testing.T) {
		_, err := decodeStrInt([]byte{0x05})
		require.True(t, isAlternative(err))
	})
}
