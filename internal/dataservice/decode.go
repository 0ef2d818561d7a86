package dataservice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leapstack-labs/routelens/internal/field"
)

// bareTokens are the non-standard literals the service emits for
// infinities and NaN. Longest first so -Infinity wins over Infinity.
var bareTokens = [][]byte{[]byte("-Infinity"), []byte("Infinity"), []byte("NaN")}

// sanitize quotes bare NaN and Infinity tokens outside string literals so
// the payload becomes valid JSON. The quoted text is kept verbatim.
func sanitize(data []byte) []byte {
	if !bytes.Contains(data, []byte("Infinity")) && !bytes.Contains(data, []byte("NaN")) {
		return data
	}

	out := make([]byte, 0, len(data)+16)
	inString, escaped := false, false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			out = append(out, c)
			continue
		}
		if tok := bareToken(data[i:]); tok != nil {
			out = append(out, '"')
			out = append(out, tok...)
			out = append(out, '"')
			i += len(tok) - 1
			continue
		}
		out = append(out, c)
	}
	return out
}

func bareToken(b []byte) []byte {
	for _, tok := range bareTokens {
		if bytes.HasPrefix(b, tok) {
			return tok
		}
	}
	return nil
}

// decodeIDs turns a JSON array of strings or numbers into opaque
// identifiers. Numbers keep their literal text; absent entries are skipped
// because nothing can select them.
func decodeIDs(raw []json.RawMessage) ([]string, error) {
	ids := make([]string, 0, len(raw))
	for i, r := range raw {
		var v field.Value
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, fmt.Errorf("identifier %d: %w", i, err)
		}
		if text, ok := v.Text(); ok {
			ids = append(ids, text)
		}
	}
	return ids, nil
}

// failureMessages extracts {errors:[...]} or {error:"..."} from a failure
// body. It returns nil when the body carries neither.
func failureMessages(data []byte) []string {
	var body struct {
		Errors  []string `json:"errors"`
		Error   string   `json:"error"`
		Message string   `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil
	}
	if msgs := nonBlank(body.Errors); len(msgs) > 0 {
		return msgs
	}
	if body.Error != "" {
		return []string{body.Error}
	}
	if body.Message != "" {
		return []string{body.Message}
	}
	return nil
}

// nonBlank drops the empty spacer lines the service puts between groups
// of validation messages. Order is preserved.
func nonBlank(msgs []string) []string {
	var out []string
	for _, m := range msgs {
		if strings.TrimSpace(m) != "" {
			out = append(out, m)
		}
	}
	return out
}
