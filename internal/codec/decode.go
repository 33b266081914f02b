package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/danmuck/tagcard/internal/ndef"
	"github.com/danmuck/tagcard/internal/profile"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// UnreadableMarker stands in for a record that failed to decode.
const UnreadableMarker = "[Unreadable record]"

// Status is the shape of a decode result.
type Status int

const (
	NotFound Status = iota
	Found
	RawText
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case RawText:
		return "raw-text"
	default:
		return "not-found"
	}
}

// Result is the outcome of decoding one scanned tag.
type Result struct {
	Status  Status
	Profile profile.Record
	Text    string
	// Source is the kind of the record the profile or raw text came from.
	Source ndef.Kind
	// Records describes every record examined, in transceiver order.
	Records []ndef.Descriptor
	// Dump holds the decoded text of each readable record and an
	// UnreadableMarker for each record that failed.
	Dump []string
}

// Decode runs Default.Decode.
func Decode(records []ndef.Record) Result {
	return Default.Decode(records)
}

// Decode walks records in the given order. The first record holding a JSON
// profile wins; otherwise the first non-empty non-JSON text is returned as raw
// text; otherwise the result is NotFound with diagnostics.
func (c Codec) Decode(records []ndef.Record) Result {
	res := Result{
		Records: make([]ndef.Descriptor, 0, len(records)),
		Dump:    make([]string, 0, len(records)),
	}
	var (
		rawText   string
		rawSource ndef.Kind
		haveRaw   bool
	)
	for _, rec := range records {
		res.Records = append(res.Records, ndef.Describe(rec))

		text, eligible, err := c.decodeRecord(rec)
		if err != nil {
			res.Dump = append(res.Dump, UnreadableMarker)
			continue
		}
		if !eligible {
			continue
		}
		res.Dump = append(res.Dump, text)
		if p, ok := parseProfile(text); ok {
			res.Status = Found
			res.Profile = p
			res.Source = rec.Kind()
			return res
		}
		if _, isMime := rec.(ndef.MimeRecord); isMime {
			res.Dump = append(res.Dump, UnreadableMarker)
			continue
		}
		if !haveRaw && strings.TrimSpace(text) != "" {
			rawText, rawSource, haveRaw = text, rec.Kind(), true
		}
	}
	if haveRaw {
		res.Status = RawText
		res.Text = rawText
		res.Source = rawSource
		return res
	}
	res.Status = NotFound
	return res
}

// decodeRecord returns the record's text and whether it takes part in
// profile matching at all.
func (c Codec) decodeRecord(rec ndef.Record) (string, bool, error) {
	switch r := rec.(type) {
	case ndef.MimeRecord:
		if !c.matchesMediaType(r.MediaType) {
			return "", false, nil
		}
		text, err := decodeUTF8(r.Data)
		return text, true, err
	case ndef.TextRecord:
		if r.Err != nil {
			return "", true, r.Err
		}
		text, err := decodeText(r.Data, r.Encoding)
		return text, true, err
	case ndef.UnknownRecord:
		if len(r.Data) == 0 {
			return "", false, nil
		}
		text, err := decodeUTF8(r.Data)
		return text, true, err
	default:
		return "", false, nil
	}
}

func (c Codec) matchesMediaType(mediaType string) bool {
	base, _, _ := strings.Cut(mediaType, ";")
	return strings.EqualFold(strings.TrimSpace(base), c.mediaType())
}

func parseProfile(text string) (profile.Record, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return profile.Record{}, false
	}
	var rec profile.Record
	if err := json.Unmarshal([]byte(trimmed), &rec); err != nil {
		return profile.Record{}, false
	}
	return rec.Normalize(), true
}

func decodeUTF8(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return strings.TrimPrefix(string(data), "\uFEFF"), nil
}

func decodeText(data []byte, label string) (string, error) {
	enc, err := textEncoding(label)
	if err != nil {
		return "", err
	}
	if enc == nil {
		return decodeUTF8(data)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(string(out), "\uFEFF"), nil
}

// textEncoding resolves a declared encoding label. A nil encoding means strict UTF-8.
func textEncoding(label string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8", "unicode-1-1-utf-8":
		return nil, nil
	case "utf-16":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, label)
	}
	return enc, nil
}
