package ndef

import (
	"encoding/binary"
	"fmt"
)

const (
	flagMB = 0x80
	flagME = 0x40
	flagCF = 0x20
	flagSR = 0x10
	flagIL = 0x08

	tnfMask = 0x07
)

// Marshal frames records into one NDEF message.
func Marshal(records []Record) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrEmptyMessage
	}
	out := make([]byte, 0, 64)
	for i, rec := range records {
		tnf, typ, payload, err := frameRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("record[%d]: %w", i, err)
		}
		if len(typ) > 0xFF {
			return nil, fmt.Errorf("record[%d]: %w", i, ErrTypeTooLong)
		}
		if uint64(len(payload)) > uint64(^uint32(0)) {
			return nil, fmt.Errorf("record[%d]: %w", i, ErrPayloadTooLarge)
		}
		header := byte(tnf) & tnfMask
		if i == 0 {
			header |= flagMB
		}
		if i == len(records)-1 {
			header |= flagME
		}
		short := len(payload) <= 0xFF
		if short {
			header |= flagSR
		}
		out = append(out, header, byte(len(typ)))
		if short {
			out = append(out, byte(len(payload)))
		} else {
			out = binary.BigEndian.AppendUint32(out, uint32(len(payload)))
		}
		out = append(out, typ...)
		out = append(out, payload...)
	}
	return out, nil
}

// Unmarshal parses an NDEF message. Parsing stops at the message-end record.
func Unmarshal(msg []byte) ([]Record, error) {
	if len(msg) == 0 {
		return nil, ErrEmptyMessage
	}
	records := make([]Record, 0, 2)
	for offset := 0; offset < len(msg); {
		if len(msg)-offset < 3 {
			return nil, ErrTruncated
		}
		header := msg[offset]
		if offset == 0 && header&flagMB == 0 {
			return nil, ErrMissingBegin
		}
		if header&flagCF != 0 {
			return nil, ErrChunked
		}
		typeLen := int(msg[offset+1])
		offset += 2

		var payloadLen uint64
		if header&flagSR != 0 {
			payloadLen = uint64(msg[offset])
			offset++
		} else {
			if len(msg)-offset < 4 {
				return nil, ErrTruncated
			}
			payloadLen = uint64(binary.BigEndian.Uint32(msg[offset : offset+4]))
			offset += 4
		}

		idLen := 0
		if header&flagIL != 0 {
			if len(msg)-offset < 1 {
				return nil, ErrTruncated
			}
			idLen = int(msg[offset])
			offset++
		}

		need := uint64(typeLen) + uint64(idLen) + payloadLen
		if need > uint64(len(msg)-offset) {
			return nil, ErrTruncated
		}
		typ := msg[offset : offset+typeLen]
		offset += typeLen + idLen
		end := offset + int(payloadLen)
		payload := make([]byte, payloadLen)
		copy(payload, msg[offset:end])
		offset = end

		rec, err := parseRecord(TNF(header&tnfMask), typ, payload)
		if err != nil {
			return nil, fmt.Errorf("record[%d]: %w", len(records), err)
		}
		records = append(records, rec)
		if header&flagME != 0 {
			return records, nil
		}
	}
	return nil, ErrTruncated
}

func frameRecord(rec Record) (TNF, []byte, []byte, error) {
	switch r := rec.(type) {
	case MimeRecord:
		if r.MediaType == "" {
			return 0, nil, nil, fmt.Errorf("%w: mime record without media type", ErrInvalidRecord)
		}
		return TNFMedia, []byte(r.MediaType), r.Data, nil
	case TextRecord:
		if r.Err != nil {
			return 0, nil, nil, fmt.Errorf("%w: %w", ErrInvalidText, r.Err)
		}
		payload, err := EncodeTextPayload(r)
		if err != nil {
			return 0, nil, nil, err
		}
		return TNFWellKnown, []byte("T"), payload, nil
	case UnknownRecord:
		return TNFUnknown, nil, r.Data, nil
	case OtherRecord:
		if r.TNF == TNFUnchanged || r.TNF > TNFUnknown {
			return 0, nil, nil, ErrInvalidTNF
		}
		return r.TNF, r.Type, r.Data, nil
	default:
		return 0, nil, nil, ErrInvalidRecord
	}
}

func parseRecord(tnf TNF, typ, payload []byte) (Record, error) {
	typeCopy := append([]byte(nil), typ...)
	switch tnf {
	case TNFEmpty:
		return OtherRecord{RecordType: KindEmpty, TNF: tnf, Data: payload}, nil
	case TNFWellKnown:
		switch string(typ) {
		case "T":
			rec, err := DecodeTextPayload(payload)
			if err != nil {
				return TextRecord{Data: payload, Err: err}, nil
			}
			return rec, nil
		case "U":
			return OtherRecord{RecordType: KindURL, TNF: tnf, Type: typeCopy, Data: payload}, nil
		case "Sp":
			return OtherRecord{RecordType: KindSmartPoster, TNF: tnf, Type: typeCopy, Data: payload}, nil
		default:
			return OtherRecord{RecordType: Kind(typ), TNF: tnf, Type: typeCopy, Data: payload}, nil
		}
	case TNFMedia:
		return MimeRecord{MediaType: string(typ), Data: payload}, nil
	case TNFAbsoluteURI:
		return OtherRecord{RecordType: KindAbsoluteURL, TNF: tnf, Type: typeCopy, Data: payload}, nil
	case TNFExternal:
		return OtherRecord{RecordType: Kind(typ), TNF: tnf, Type: typeCopy, Data: payload}, nil
	case TNFUnknown:
		return UnknownRecord{Data: payload}, nil
	default:
		return nil, ErrInvalidTNF
	}
}
