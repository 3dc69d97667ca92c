package analyzer

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// "한글" encoded as EUC-KR.
var eucKRSample = []byte{0xC7, 0xD1, 0xB1, 0xDB}

func TestDecodeReaderEUCKR(t *testing.T) {
	r, err := decodeReader(bytes.NewReader(eucKRSample), "euc-kr")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "한글", string(got))
}

func TestDecodeReaderAutoSniffsEUCKR(t *testing.T) {
	r, err := decodeReader(bytes.NewReader(eucKRSample), "auto")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "한글", string(got))
}

func TestDecodeReaderAutoPassesUTF8(t *testing.T) {
	r, err := decodeReader(strings.NewReader("time,section\n09:00,GARAGE\n"), "auto")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "time,section\n09:00,GARAGE\n", string(got))
}

func TestDecodeReaderRejectsUnknownEncoding(t *testing.T) {
	_, err := decodeReader(strings.NewReader("x"), "utf-16")
	require.Error(t, err)
}
