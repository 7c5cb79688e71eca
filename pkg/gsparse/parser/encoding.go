package parser

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// DefaultMinConfidence is the lowest detector confidence, on its 0-100
// scale, that is accepted without an explicit encoding.
const DefaultMinConfidence = 30

var (
	errLowConfidence  = errors.New("confidence below threshold")
	errUnknownCharset = errors.New("no decoder for charset")
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF32LE = []byte{0xFF, 0xFE, 0x00, 0x00}
	bomUTF32BE = []byte{0x00, 0x00, 0xFE, 0xFF}
)

// charsetAliases covers detector names the WHATWG index spells differently.
var charsetAliases = map[string]string{
	"gb-18030": "gb18030",
}

// decodeText converts data to UTF-8. An explicit encoding name skips
// detection; otherwise a byte order mark wins, then valid UTF-8, then the
// statistical detector. It returns the charset that was used.
func decodeText(data []byte, explicit string, minConfidence int, logger *slog.Logger) (string, string, error) {
	if explicit != "" {
		enc := lookupEncoding(explicit)
		if enc == nil {
			return "", "", &EncodingDetectionError{Charset: explicit, Confidence: 100, Err: errUnknownCharset}
		}
		text, err := decodeWith(enc, bytes.TrimPrefix(data, bomUTF8))
		if err != nil {
			return "", "", &EncodingDetectionError{Charset: explicit, Confidence: 100, Err: err}
		}
		return text, explicit, nil
	}

	if text, charset, ok, err := decodeBOM(data); ok || err != nil {
		if err != nil {
			return "", "", &EncodingDetectionError{Charset: charset, Confidence: 100, Err: err}
		}
		return text, charset, nil
	}

	if utf8.Valid(data) {
		return string(data), "UTF-8", nil
	}

	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return "", "", &EncodingDetectionError{Err: err}
	}
	logger.Debug("detected encoding", slog.String("charset", result.Charset), slog.Int("confidence", result.Confidence))

	if result.Confidence < minConfidence {
		return "", "", &EncodingDetectionError{
			Charset:    result.Charset,
			Confidence: result.Confidence,
			Err:        fmt.Errorf("%w: %d < %d", errLowConfidence, result.Confidence, minConfidence),
		}
	}
	enc := lookupEncoding(result.Charset)
	if enc == nil {
		return "", "", &EncodingDetectionError{Charset: result.Charset, Confidence: result.Confidence, Err: errUnknownCharset}
	}
	text, err := decodeWith(enc, data)
	if err != nil {
		return "", "", &EncodingDetectionError{Charset: result.Charset, Confidence: result.Confidence, Err: err}
	}
	return text, result.Charset, nil
}

func decodeBOM(data []byte) (text, charset string, ok bool, err error) {
	var enc encoding.Encoding
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), "UTF-8", true, nil
	case bytes.HasPrefix(data, bomUTF32LE):
		enc, charset = utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM), "UTF-32LE"
	case bytes.HasPrefix(data, bomUTF32BE):
		enc, charset = utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM), "UTF-32BE"
	case bytes.HasPrefix(data, bomUTF16LE):
		enc, charset = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), "UTF-16LE"
	case bytes.HasPrefix(data, bomUTF16BE):
		enc, charset = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), "UTF-16BE"
	default:
		return "", "", false, nil
	}
	text, err = decodeWith(enc, data)
	return text, charset, true, err
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// lookupEncoding resolves a charset name through the WHATWG index first and
// the IANA registry second. It returns nil when neither has a decoder.
func lookupEncoding(name string) encoding.Encoding {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := charsetAliases[key]; ok {
		key = alias
	}
	if enc, err := htmlindex.Get(key); err == nil {
		return enc
	}
	if enc, err := ianaindex.IANA.Encoding(key); err == nil && enc != nil {
		return enc
	}
	return nil
}
