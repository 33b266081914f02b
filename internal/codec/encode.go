package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	"github.com/danmuck/tagcard/internal/ndef"
	"github.com/danmuck/tagcard/internal/profile"
)

// MediaTypeJSON is the declared media type of structured profile records.
const MediaTypeJSON = "application/json"

// CandidateKind names one encoding strategy. Values are in priority order.
type CandidateKind int

const (
	StructuredMime CandidateKind = iota
	GenericText
	PlainTextFallback
)

// Order is the fixed priority order candidates are produced and attempted in.
var Order = []CandidateKind{StructuredMime, GenericText, PlainTextFallback}

func (k CandidateKind) String() string {
	switch k {
	case StructuredMime:
		return "structured-mime"
	case GenericText:
		return "generic-text"
	case PlainTextFallback:
		return "plain-text-fallback"
	default:
		return fmt.Sprintf("candidate(%d)", int(k))
	}
}

// Candidate is one wire form of a profile.
type Candidate struct {
	Kind   CandidateKind
	Record ndef.Record
}

// Records is the message written to the tag for this candidate.
func (c Candidate) Records() []ndef.Record {
	return []ndef.Record{c.Record}
}

// Codec carries the declared JSON media type and the plain-text placeholder.
type Codec struct {
	MediaType   string
	Placeholder string
}

// Default uses application/json and the stock placeholder.
var Default = Codec{MediaType: MediaTypeJSON, Placeholder: profile.DefaultPlaceholder}

// New returns a Codec, filling blank settings from Default.
func New(mediaType, placeholder string) Codec {
	c := Codec{MediaType: strings.TrimSpace(mediaType), Placeholder: placeholder}
	if c.MediaType == "" {
		c.MediaType = Default.MediaType
	}
	if strings.TrimSpace(c.Placeholder) == "" {
		c.Placeholder = Default.Placeholder
	}
	return c
}

// Candidates yields the three candidates for p in priority order. The JSON
// document is serialized on first use and shared by the first two forms, so a
// consumer that stops early never pays for the later ones. A build failure is
// yielded alongside the candidate kind it belongs to.
func (c Codec) Candidates(p profile.Record) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		var (
			doc     []byte
			docErr  error
			docDone bool
		)
		document := func() ([]byte, error) {
			if !docDone {
				doc, docErr = marshalDocument(p)
				docDone = true
			}
			return doc, docErr
		}
		for _, kind := range Order {
			cand, err := c.build(kind, p, document)
			if !yield(cand, err) {
				return
			}
		}
	}
}

// Encode builds all three candidates eagerly.
func (c Codec) Encode(p profile.Record) ([]Candidate, error) {
	out := make([]Candidate, 0, len(Order))
	for cand, err := range c.Candidates(p) {
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cand.Kind, err)
		}
		out = append(out, cand)
	}
	if len(out) != len(Order) {
		return nil, ErrIncomplete
	}
	return out, nil
}

func (c Codec) build(kind CandidateKind, p profile.Record, document func() ([]byte, error)) (Candidate, error) {
	cand := Candidate{Kind: kind}
	switch kind {
	case StructuredMime:
		doc, err := document()
		if err != nil {
			return cand, err
		}
		cand.Record = ndef.NewMimeRecord(c.mediaType(), doc)
	case GenericText:
		doc, err := document()
		if err != nil {
			return cand, err
		}
		cand.Record = ndef.NewTextRecord(string(doc))
	case PlainTextFallback:
		cand.Record = ndef.NewTextRecord(p.FallbackText(c.Placeholder))
	default:
		return cand, fmt.Errorf("codec: unknown candidate %d", int(kind))
	}
	return cand, nil
}

func (c Codec) mediaType() string {
	if strings.TrimSpace(c.MediaType) == "" {
		return MediaTypeJSON
	}
	return c.MediaType
}

func marshalDocument(p profile.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
