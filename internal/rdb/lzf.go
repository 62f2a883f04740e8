package rdb

import "github.com/zhuyie/golzf"

// Decompressor is the external collaborator spec.md §1(b) carves out of
// THE CORE: decompress(compressed, expected_len) -> bytes. Callers supply
// one; the core never imports a compression library directly.
type Decompressor interface {
	Decompress(compressed []byte, expectedLen int) ([]byte, error)
}

// golzfDecompressor backs Decompressor with github.com/zhuyie/golzf, the
// teacher's exact choice for this concern (rdb_string.go's lzfDecompress).
type golzfDecompressor struct{}

// DefaultDecompressor is the production Decompressor: LZF, via golzf.
var DefaultDecompressor Decompressor = golzfDecompressor{}

func (golzfDecompressor) Decompress(compressed []byte, expectedLen int) ([]byte, error) {
	dst := make([]byte, expectedLen)
	n, err := lzf.Decompress(compressed, dst)
	if err != nil {
		return nil, errLzf("lzf decompress", err)
	}
	if n != expectedLen {
		return nil, errMalformedf("lzf decompress: got %d bytes, want %d", n, expectedLen)
	}
	return dst, nil
}
