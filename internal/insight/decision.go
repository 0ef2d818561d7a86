package insight

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/leapstack-labs/routelens/internal/field"
)

// DecisionVariable is one optimization variable such as P_i_t.
type DecisionVariable struct {
	Symbol      string      `json:"symbol" yaml:"symbol"`
	Value       field.Value `json:"value" yaml:"value"`
	Description field.Value `json:"description" yaml:"description"`
	Unit        field.Value `json:"unit" yaml:"unit"`
	Formula     field.Value `json:"formula" yaml:"formula"`
	// Satisfied is only reported for inventory variables.
	Satisfied field.Bool `json:"constraint_satisfied" yaml:"constraint_satisfied"`
	// Details holds the remaining keys in payload order
	// (minimum_required, excess, safety_stock, vehicle_capacity, ...).
	Details field.Record `json:"details" yaml:"details"`
}

// DecisionVariables keeps the variables in the order the service sent them.
type DecisionVariables []DecisionVariable

// Get returns the variable with the given symbol.
func (d DecisionVariables) Get(symbol string) (DecisionVariable, bool) {
	for _, v := range d {
		if v.Symbol == symbol {
			return v, true
		}
	}
	return DecisionVariable{}, false
}

var variableKeys = map[string]struct{}{
	"value":                {},
	"description":          {},
	"unit":                 {},
	"formula":              {},
	"constraint_satisfied": {},
}

// UnmarshalJSON decodes the symbol-keyed object into an ordered list.
func (d *DecisionVariables) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode decision variables: %w", err)
	}
	if tok == nil {
		*d = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode decision variables: expected object, got %v", tok)
	}

	var out DecisionVariables
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode decision variables: %w", err)
		}
		symbol, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode decision variable %s: %w", symbol, err)
		}
		v, err := decodeVariable(symbol, raw)
		if err != nil {
			return err
		}
		out = append(out, v)
	}
	*d = out
	return nil
}

func decodeVariable(symbol string, raw json.RawMessage) (DecisionVariable, error) {
	v := DecisionVariable{Symbol: symbol}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return v, nil
	}

	var known struct {
		Value       field.Value `json:"value"`
		Description field.Value `json:"description"`
		Unit        field.Value `json:"unit"`
		Formula     field.Value `json:"formula"`
		Satisfied   field.Bool  `json:"constraint_satisfied"`
	}
	if err := json.Unmarshal(raw, &known); err != nil {
		return v, fmt.Errorf("decode decision variable %s: %w", symbol, err)
	}
	var all field.Record
	if err := json.Unmarshal(raw, &all); err != nil {
		return v, fmt.Errorf("decode decision variable %s: %w", symbol, err)
	}

	v.Value = known.Value
	v.Description = known.Description
	v.Unit = known.Unit
	v.Formula = known.Formula
	v.Satisfied = known.Satisfied
	for _, e := range all.Entries {
		if _, ok := variableKeys[e.Key]; !ok {
			v.Details.Entries = append(v.Details.Entries, e)
		}
	}
	return v, nil
}
