package ndef

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	textStatusUTF16   = 0x80
	textStatusLangLen = 0x3F
)

var bomLE = []byte{0xFF, 0xFE}

// EncodeTextPayload renders the Text RTD payload: status byte, language code, text bytes.
// Data must already be in the declared encoding.
func EncodeTextPayload(r TextRecord) ([]byte, error) {
	lang := r.Lang
	if lang == "" {
		lang = DefaultLang
	}
	if len(lang) > textStatusLangLen {
		return nil, fmt.Errorf("%w: language code %q too long", ErrInvalidText, lang)
	}
	status := byte(len(lang))
	switch strings.ToLower(strings.TrimSpace(r.Encoding)) {
	case "", EncodingUTF8, "utf8":
	case EncodingUTF16BE, EncodingUTF16LE, "utf-16":
		status |= textStatusUTF16
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, r.Encoding)
	}
	out := make([]byte, 0, 1+len(lang)+len(r.Data))
	out = append(out, status)
	out = append(out, lang...)
	out = append(out, r.Data...)
	return out, nil
}

// DecodeTextPayload splits a Text RTD payload. UTF-16 text is reported as
// big-endian unless it opens with a little-endian byte order mark.
func DecodeTextPayload(payload []byte) (TextRecord, error) {
	if len(payload) == 0 {
		return TextRecord{}, fmt.Errorf("%w: missing status byte", ErrInvalidText)
	}
	status := payload[0]
	langLen := int(status & textStatusLangLen)
	if 1+langLen > len(payload) {
		return TextRecord{}, fmt.Errorf("%w: language code exceeds payload", ErrInvalidText)
	}
	data := make([]byte, len(payload)-1-langLen)
	copy(data, payload[1+langLen:])
	rec := TextRecord{
		Encoding: EncodingUTF8,
		Lang:     string(payload[1 : 1+langLen]),
		Data:     data,
	}
	if status&textStatusUTF16 != 0 {
		rec.Encoding = EncodingUTF16BE
		if bytes.HasPrefix(data, bomLE) {
			rec.Encoding = EncodingUTF16LE
		}
	}
	return rec, nil
}
