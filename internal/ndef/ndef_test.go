package ndef

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/danmuck/tagcard/internal/testutil/testlog"
)

func TestMarshalUnmarshalPreservesOrderAndKinds(t *testing.T) {
	testlog.Start(t)
	in := []Record{
		NewMimeRecord("application/json", []byte(`{"name":"Jane"}`)),
		NewTextRecord("hello"),
		UnknownRecord{Data: []byte{0xAA, 0xBB}},
		OtherRecord{RecordType: KindURL, TNF: TNFWellKnown, Type: []byte("U"), Data: []byte{0x04, 'x', '.', 'c', 'o'}},
	}
	msg, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if msg[0]&flagMB == 0 || msg[0]&flagME != 0 {
		t.Fatalf("unexpected first header %#x", msg[0])
	}

	out, err := Unmarshal(msg)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 records, got %d", len(out))
	}
	mime, ok := out[0].(MimeRecord)
	if !ok || mime.MediaType != "application/json" || string(mime.Data) != `{"name":"Jane"}` {
		t.Fatalf("unexpected mime record: %#v", out[0])
	}
	text, ok := out[1].(TextRecord)
	if !ok || text.Encoding != EncodingUTF8 || text.Lang != "en" || string(text.Data) != "hello" {
		t.Fatalf("unexpected text record: %#v", out[1])
	}
	unknown, ok := out[2].(UnknownRecord)
	if !ok || !bytes.Equal(unknown.Data, []byte{0xAA, 0xBB}) {
		t.Fatalf("unexpected unknown record: %#v", out[2])
	}
	if out[3].Kind() != KindURL {
		t.Fatalf("unexpected other kind: %q", out[3].Kind())
	}
}

func TestMarshalLongPayloadUsesFourByteLength(t *testing.T) {
	testlog.Start(t)
	payload := bytes.Repeat([]byte("x"), 300)
	msg, err := Marshal([]Record{NewMimeRecord("application/json", payload)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if msg[0]&flagSR != 0 {
		t.Fatalf("short-record flag set for 300 byte payload")
	}
	out, err := Unmarshal(msg)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := out[0].Payload(); len(got) != 300 {
		t.Fatalf("payload length %d", len(got))
	}
}

func TestMarshalRejectsEmptyMessageAndBadRecords(t *testing.T) {
	testlog.Start(t)
	if _, err := Marshal(nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := Marshal([]Record{MimeRecord{}}); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	if _, err := Marshal([]Record{TextRecord{Encoding: "koi8-r", Data: []byte("x")}}); !errors.Is(err, ErrUnsupportedEncoding) {
		t.Fatalf("expected ErrUnsupportedEncoding, got %v", err)
	}
}

func TestUnmarshalMalformedIsDeterministic(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name string
		msg  []byte
		want error
	}{
		{name: "empty", msg: nil, want: ErrEmptyMessage},
		{name: "short header", msg: []byte{0xD1, 0x01}, want: ErrTruncated},
		{name: "missing begin", msg: []byte{0x51, 0x00, 0x00}, want: ErrMissingBegin},
		{name: "chunked", msg: []byte{0xB5, 0x00, 0x00}, want: ErrChunked},
		{name: "payload overrun", msg: []byte{0xD5, 0x00, 0x05, 'a', 'b'}, want: ErrTruncated},
		{name: "no message end", msg: []byte{0x95, 0x00, 0x00}, want: ErrTruncated},
		{name: "reserved tnf", msg: []byte{0xD7, 0x00, 0x00}, want: ErrInvalidTNF},
	}
	for _, tc := range cases {
		_, err := Unmarshal(tc.msg)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestUnmarshalKeepsMalformedTextRecord(t *testing.T) {
	testlog.Start(t)
	doc := []byte(`{"name":"Jane"}`)
	msg := []byte{0x92, byte(len("application/json")), byte(len(doc))}
	msg = append(msg, "application/json"...)
	msg = append(msg, doc...)
	msg = append(msg, 0x51, 0x01, 0x02, 'T', 0x0A, 'e')

	out, err := Unmarshal(msg)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if mime, ok := out[0].(MimeRecord); !ok || !bytes.Equal(mime.Data, doc) {
		t.Fatalf("unexpected first record: %#v", out[0])
	}
	text, ok := out[1].(TextRecord)
	if !ok || !errors.Is(text.Err, ErrInvalidText) {
		t.Fatalf("expected malformed text record, got %#v", out[1])
	}
	if !bytes.Equal(text.Data, []byte{0x0A, 'e'}) {
		t.Fatalf("raw payload not kept: % x", text.Data)
	}
	if _, err := Marshal([]Record{text}); !errors.Is(err, ErrInvalidText) {
		t.Fatalf("malformed text record must not be framed, got %v", err)
	}
}

func TestTextPayloadUTF16ByteOrder(t *testing.T) {
	testlog.Start(t)
	be, err := DecodeTextPayload([]byte{0x82, 'e', 'n', 0x00, 'H', 0x00, 'i'})
	if err != nil {
		t.Fatalf("decode be: %v", err)
	}
	if be.Encoding != EncodingUTF16BE || be.Lang != "en" {
		t.Fatalf("unexpected be record: %#v", be)
	}
	le, err := DecodeTextPayload([]byte{0x82, 'e', 'n', 0xFF, 0xFE, 'H', 0x00})
	if err != nil {
		t.Fatalf("decode le: %v", err)
	}
	if le.Encoding != EncodingUTF16LE {
		t.Fatalf("expected utf-16le, got %q", le.Encoding)
	}
}

func TestTLVWrapUnwrap(t *testing.T) {
	testlog.Start(t)
	short := []byte("abc")
	wrapped, err := WrapTLV(short)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if !bytes.Equal(wrapped, []byte{TLVMessage, 3, 'a', 'b', 'c', TLVTerminator}) {
		t.Fatalf("unexpected short tlv % x", wrapped)
	}

	long := bytes.Repeat([]byte{0x42}, 300)
	wrapped, err = WrapTLV(long)
	if err != nil {
		t.Fatalf("wrap long: %v", err)
	}
	if wrapped[1] != 0xFF || wrapped[2] != 0x01 || wrapped[3] != 0x2C {
		t.Fatalf("unexpected long header % x", wrapped[:4])
	}

	// lock control TLV and padding ahead of the message must be skipped
	prefixed := append([]byte{TLVNull, TLVLockControl, 0x03, 0xA0, 0x0C, 0x34}, wrapped...)
	got, err := UnwrapTLV(prefixed)
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	if !bytes.Equal(got, long) {
		t.Fatalf("unwrapped message mismatch")
	}

	if _, err := UnwrapTLV([]byte{TLVNull, TLVTerminator}); !errors.Is(err, ErrNoNDEF) {
		t.Fatalf("expected ErrNoNDEF, got %v", err)
	}
}

func TestEncodedSizeMatchesWrappedLength(t *testing.T) {
	testlog.Start(t)
	for _, n := range []int{10, 250, 400} {
		recs := []Record{NewTextRecord(strings.Repeat("a", n))}
		size, err := EncodedSize(recs)
		if err != nil {
			t.Fatalf("size: %v", err)
		}
		msg, _ := Marshal(recs)
		wrapped, _ := WrapTLV(msg)
		if size != len(wrapped) {
			t.Fatalf("n=%d size=%d wrapped=%d", n, size, len(wrapped))
		}
	}
}

func TestDescribeRendersNullsForAbsentAttributes(t *testing.T) {
	testlog.Start(t)
	b, err := json.Marshal(Describe(UnknownRecord{Data: []byte{1}}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"kind":"unknown","mediaType":null,"encoding":null,"lang":null}` {
		t.Fatalf("unexpected descriptor %s", b)
	}
	d := Describe(NewTextRecord("x"))
	if d.Encoding == nil || *d.Encoding != EncodingUTF8 || d.Lang == nil || *d.Lang != "en" {
		t.Fatalf("unexpected text descriptor %+v", d)
	}
}
