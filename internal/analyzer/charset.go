package analyzer

import (
	"bufio"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// decodeReader wraps r so the analyzer always consumes UTF-8. The field
// loggers on the track machines historically wrote CP949/EUC-KR; "auto"
// sniffs the first block and falls back to EUC-KR when it is not valid UTF-8.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch encoding {
	case "utf-8":
		return r, nil
	case "euc-kr":
		return transform.NewReader(r, korean.EUCKR.NewDecoder()), nil
	case "auto":
		br := bufio.NewReaderSize(r, 4096)
		peek, err := br.Peek(4096)
		if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
			return nil, err
		}
		if looksLikeUTF8(peek) {
			return br, nil
		}
		return transform.NewReader(br, korean.EUCKR.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}

// looksLikeUTF8 reports whether the sample decodes cleanly as UTF-8. A
// truncated multi-byte sequence at the very end of the sample is tolerated.
func looksLikeUTF8(sample []byte) bool {
	for len(sample) > 0 {
		r, size := utf8.DecodeRune(sample)
		if r == utf8.RuneError && size == 1 {
			// Could be a sequence cut off by the sample boundary.
			if len(sample) < utf8.UTFMax {
				return true
			}
			return false
		}
		sample = sample[size:]
	}
	return true
}
