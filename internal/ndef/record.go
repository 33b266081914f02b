// Package ndef owns the tag message record model and its wire framing.
//
// Ownership boundary:
// - record variants (mime, text, unknown, other)
// - NDEF record framing (message bytes <-> records)
// - Text RTD payload (status byte, language code)
// - type 2 tag NDEF TLV wrapping
package ndef

// Kind is the record type as reported by a transceiver.
type Kind string

const (
	KindEmpty       Kind = "empty"
	KindText        Kind = "text"
	KindURL         Kind = "url"
	KindSmartPoster Kind = "smart-poster"
	KindAbsoluteURL Kind = "absolute-url"
	KindMime        Kind = "mime"
	KindUnknown     Kind = "unknown"
)

// TNF is the 3-bit type name format of a framed record.
type TNF uint8

const (
	TNFEmpty       TNF = 0x00
	TNFWellKnown   TNF = 0x01
	TNFMedia       TNF = 0x02
	TNFAbsoluteURI TNF = 0x03
	TNFExternal    TNF = 0x04
	TNFUnknown     TNF = 0x05
	TNFUnchanged   TNF = 0x06
	TNFReserved    TNF = 0x07
)

const (
	EncodingUTF8    = "utf-8"
	EncodingUTF16BE = "utf-16be"
	EncodingUTF16LE = "utf-16le"

	DefaultLang = "en"
)

// Record is one record of a tag message. The concrete type is one of
// MimeRecord, TextRecord, UnknownRecord or OtherRecord.
type Record interface {
	Kind() Kind
	Payload() []byte
	isRecord()
}

// MimeRecord carries bytes of a declared media type.
type MimeRecord struct {
	MediaType string
	Data      []byte
}

// TextRecord carries encoded text. Encoding is a text-encoding label and
// may be empty, in which case UTF-8 is assumed. Err is set on a parsed
// record whose payload is malformed; Data then holds the raw payload.
type TextRecord struct {
	Encoding string
	Lang     string
	Data     []byte
	Err      error
}

// UnknownRecord carries bytes with no declared type.
type UnknownRecord struct {
	Data []byte
}

// OtherRecord is any framed record outside the three kinds profiles use.
type OtherRecord struct {
	RecordType Kind
	TNF        TNF
	Type       []byte
	Data       []byte
}

func (MimeRecord) Kind() Kind    { return KindMime }
func (TextRecord) Kind() Kind    { return KindText }
func (UnknownRecord) Kind() Kind { return KindUnknown }
func (r OtherRecord) Kind() Kind { return r.RecordType }

func (r MimeRecord) Payload() []byte    { return r.Data }
func (r TextRecord) Payload() []byte    { return r.Data }
func (r UnknownRecord) Payload() []byte { return r.Data }
func (r OtherRecord) Payload() []byte   { return r.Data }

func (MimeRecord) isRecord()    {}
func (TextRecord) isRecord()    {}
func (UnknownRecord) isRecord() {}
func (OtherRecord) isRecord()   {}

// NewMimeRecord copies data into a mime record.
func NewMimeRecord(mediaType string, data []byte) MimeRecord {
	buf := make([]byte, len(data))
	copy(buf, data)
	return MimeRecord{MediaType: mediaType, Data: buf}
}

// NewTextRecord creates a UTF-8 text record in the default language.
func NewTextRecord(text string) TextRecord {
	return TextRecord{Encoding: EncodingUTF8, Lang: DefaultLang, Data: []byte(text)}
}

// Descriptor is the troubleshooting view of one record.
type Descriptor struct {
	Kind      Kind    `json:"kind"`
	MediaType *string `json:"mediaType"`
	Encoding  *string `json:"encoding"`
	Lang      *string `json:"lang"`
}

// Describe reports the kind and declared attributes of r.
func Describe(r Record) Descriptor {
	switch rec := r.(type) {
	case MimeRecord:
		return Descriptor{Kind: KindMime, MediaType: optional(rec.MediaType)}
	case TextRecord:
		return Descriptor{Kind: KindText, Encoding: optional(rec.Encoding), Lang: optional(rec.Lang)}
	case UnknownRecord:
		return Descriptor{Kind: KindUnknown}
	case OtherRecord:
		return Descriptor{Kind: rec.RecordType}
	default:
		return Descriptor{Kind: KindUnknown}
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
