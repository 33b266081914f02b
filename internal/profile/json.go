package profile

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// UnmarshalJSON accepts any JSON object. Known keys match case-insensitively.
// Numbers and booleans are kept as their literal text, tags may be an array
// or a comma-separated string, and values of any other shape are dropped.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var out Record
	text := map[string]*string{
		"name":      &out.Name,
		"title":     &out.Title,
		"company":   &out.Company,
		"email":     &out.Email,
		"phone":     &out.Phone,
		"address":   &out.Address,
		"bio":       &out.Bio,
		"imagedata": &out.ImageData,
		"timestamp": &out.Timestamp,
	}
	for key, raw := range fields {
		key = strings.ToLower(key)
		if key == "tags" {
			out.Tags = tagList(raw)
			continue
		}
		if dst, ok := text[key]; ok {
			*dst, _ = scalarText(raw)
		}
	}
	*r = out
	return nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	err := dec.Decode(&v)
	return v, err
}

// scalarText renders a JSON string, number, or boolean as text.
func scalarText(raw json.RawMessage) (string, bool) {
	v, err := decodeValue(raw)
	if err != nil {
		return "", false
	}
	return scalarValue(v)
}

func scalarValue(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

func tagList(raw json.RawMessage) []string {
	v, err := decodeValue(raw)
	if err != nil {
		return nil
	}
	switch x := v.(type) {
	case string:
		return ParseTags(x)
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := scalarValue(item); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
