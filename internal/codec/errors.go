package codec

import "errors"

var (
	ErrUnsupportedEncoding = errors.New("codec: unsupported text encoding")
	ErrInvalidUTF8         = errors.New("codec: invalid utf-8 payload")
	ErrIncomplete          = errors.New("codec: candidate list incomplete")
)
