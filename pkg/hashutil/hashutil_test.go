package hashutil_test

import (
	"encoding/hex"
	"testing"

	"github.com/rohmanhakim/paper-review/pkg/hashutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/blake3"
)

func TestHashBytes(t *testing.T) {
	blakeOfHello := blake3.Sum256([]byte("hello world"))
	tests := []struct {
		name string
		algo hashutil.HashAlgo
		data []byte
		want string
	}{
		{"sha256 empty", hashutil.HashAlgoSHA256, []byte{}, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"sha256 text", hashutil.HashAlgoSHA256, []byte("hello world"), "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"},
		{"blake3 text", hashutil.HashAlgoBLAKE3, []byte("hello world"), hex.EncodeToString(blakeOfHello[:])},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := hashutil.HashBytes(tt.data, tt.algo)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHashBytes_UnsupportedAlgo(t *testing.T) {
	_, err := hashutil.HashBytes([]byte("x"), "md5")

	assert.Error(t, err)
}

func TestParseHashAlgo(t *testing.T) {
	algo, err := hashutil.ParseHashAlgo(" BLAKE3 ")
	require.NoError(t, err)
	assert.Equal(t, hashutil.HashAlgoBLAKE3, algo)

	_, err = hashutil.ParseHashAlgo("crc32")
	assert.Error(t, err)
}

func TestContentHash_IsBlake3AndStable(t *testing.T) {
	want, err := hashutil.HashBytes([]byte("digest"), hashutil.HashAlgoBLAKE3)
	require.NoError(t, err)

	assert.Equal(t, want, hashutil.ContentHash([]byte("digest")))
	assert.Len(t, hashutil.ContentHash(nil), 64)
}

func TestShort(t *testing.T) {
	assert.Equal(t, "abcd", hashutil.Short("abcdef", 4))
	assert.Equal(t, "abcdef", hashutil.Short("abcdef", 10))
	assert.Equal(t, "abcdef", hashutil.Short("abcdef", 0))
}
