package ndef

import "encoding/binary"

// Type 2 tag TLV block types.
const (
	TLVNull        byte = 0x00
	TLVLockControl byte = 0x01
	TLVMemControl  byte = 0x02
	TLVMessage     byte = 0x03
	TLVProprietary byte = 0xFD
	TLVTerminator  byte = 0xFE
)

const maxTLVLength = 0xFFFE

// WrapTLV places msg in an NDEF message TLV followed by a terminator TLV.
// Lengths of 255 and above use the three-byte form.
func WrapTLV(msg []byte) ([]byte, error) {
	if len(msg) > maxTLVLength {
		return nil, ErrPayloadTooLarge
	}
	out := make([]byte, 0, len(msg)+5)
	out = append(out, TLVMessage)
	if len(msg) < 0xFF {
		out = append(out, byte(len(msg)))
	} else {
		out = append(out, 0xFF)
		out = binary.BigEndian.AppendUint16(out, uint16(len(msg)))
	}
	out = append(out, msg...)
	out = append(out, TLVTerminator)
	return out, nil
}

// UnwrapTLV returns the value of the first NDEF message TLV in data.
func UnwrapTLV(data []byte) ([]byte, error) {
	for i := 0; i < len(data); {
		t := data[i]
		i++
		switch t {
		case TLVNull:
			continue
		case TLVTerminator:
			return nil, ErrNoNDEF
		}
		if i >= len(data) {
			return nil, ErrTruncated
		}
		length := int(data[i])
		i++
		if length == 0xFF {
			if len(data)-i < 2 {
				return nil, ErrTruncated
			}
			length = int(binary.BigEndian.Uint16(data[i : i+2]))
			i += 2
		}
		if length > len(data)-i {
			return nil, ErrTruncated
		}
		if t == TLVMessage {
			out := make([]byte, length)
			copy(out, data[i:i+length])
			return out, nil
		}
		i += length
	}
	return nil, ErrNoNDEF
}

// EncodedSize is the number of tag bytes records occupy once framed and wrapped.
func EncodedSize(records []Record) (int, error) {
	msg, err := Marshal(records)
	if err != nil {
		return 0, err
	}
	header := 2
	if len(msg) >= 0xFF {
		header = 4
	}
	return header + len(msg) + 1, nil
}
