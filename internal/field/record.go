package field

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Entry is one flattened key of a Record.
type Entry struct {
	Key   string
	Value Value
}

// Record is an open-ended JSON object kept in payload order. Nested objects
// and arrays are flattened into dotted and indexed keys, e.g.
// "capacity.1" or "outbound_routes[0].TO IUGU CODE". An empty nested object
// or array keeps its key as an Absent entry.
type Record struct {
	Entries []Entry
}

// Get returns the value for key and Absent when the key is missing.
func (r Record) Get(key string) Value {
	for _, e := range r.Entries {
		if e.Key == key {
			return e.Value
		}
	}
	return Absent()
}

// Len returns the number of flattened entries.
func (r Record) Len() int { return len(r.Entries) }

// UnmarshalJSON decodes an object while preserving key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Record{}
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out []Entry
	if err := flatten(dec, "", &out); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode record: trailing data")
	}
	r.Entries = out
	return nil
}

// MarshalJSON writes the flattened entries as a single-level object.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := e.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML emits the entries as an ordered mapping.
func (r Record) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range r.Entries {
		v, err := e.Value.MarshalYAML()
		if err != nil {
			return nil, err
		}
		var vn yaml.Node
		if err := vn.Encode(v); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key}, &vn)
	}
	return n, nil
}

func flatten(dec *json.Decoder, prefix string, out *[]Entry) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch t := tok.(type) {
	case json.Delim:
		before := len(*out)
		switch t {
		case '{':
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				key, ok := keyTok.(string)
				if !ok {
					return fmt.Errorf("object key is %T", keyTok)
				}
				if err := flatten(dec, join(prefix, key), out); err != nil {
					return err
				}
			}
			if _, err := dec.Token(); err != nil {
				return err
			}
			keepEmpty(prefix, before, out)
			return nil
		case '[':
			for i := 0; dec.More(); i++ {
				if err := flatten(dec, prefix+"["+strconv.Itoa(i)+"]", out); err != nil {
					return err
				}
			}
			if _, err := dec.Token(); err != nil {
				return err
			}
			keepEmpty(prefix, before, out)
			return nil
		default:
			return fmt.Errorf("unexpected delimiter %q", t)
		}
	case json.Number:
		*out = append(*out, Entry{Key: prefix, Value: Number(t.String())})
	case string:
		v := String(t)
		if _, marker := absentMarkers[t]; marker {
			v = Absent()
		}
		*out = append(*out, Entry{Key: prefix, Value: v})
	case bool:
		*out = append(*out, Entry{Key: prefix, Value: String(strconv.FormatBool(t))})
	case nil:
		*out = append(*out, Entry{Key: prefix, Value: Absent()})
	default:
		return fmt.Errorf("unexpected token %T", tok)
	}
	return nil
}

// keepEmpty records an empty nested object or array as an Absent entry so
// the field is still listed.
func keepEmpty(prefix string, before int, out *[]Entry) {
	if prefix != "" && len(*out) == before {
		*out = append(*out, Entry{Key: prefix, Value: Absent()})
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
