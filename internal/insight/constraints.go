package insight

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/leapstack-labs/routelens/internal/field"
)

// Evaluation is one evaluated model constraint. The numeric terms differ by
// constraint (lhs/rhs/slack, safety_stock/current/max_capacity, ...) and are
// kept in payload order.
type Evaluation struct {
	Name      field.Value  `json:"name" yaml:"name"`
	Formula   field.Value  `json:"formula" yaml:"formula"`
	Satisfied field.Bool   `json:"satisfied" yaml:"satisfied"`
	Terms     field.Record `json:"terms" yaml:"terms"`
}

// Term returns a numeric term, Absent when the service omitted it.
func (e Evaluation) Term(key string) field.Value { return e.Terms.Get(key) }

// UnmarshalJSON splits the fixed keys from the open terms.
func (e *Evaluation) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*e = Evaluation{}
		return nil
	}
	var known struct {
		Name      field.Value `json:"name"`
		Formula   field.Value `json:"formula"`
		Satisfied field.Bool  `json:"satisfied"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return fmt.Errorf("decode constraint: %w", err)
	}
	var all field.Record
	if err := json.Unmarshal(data, &all); err != nil {
		return fmt.Errorf("decode constraint: %w", err)
	}

	*e = Evaluation{Name: known.Name, Formula: known.Formula, Satisfied: known.Satisfied}
	for _, en := range all.Entries {
		switch en.Key {
		case "name", "formula", "satisfied":
		default:
			e.Terms.Entries = append(e.Terms.Entries, en)
		}
	}
	return nil
}

// Constraints holds the four fixed evaluations and the dataset's strategic
// constraints, which have no fixed shape.
type Constraints struct {
	ProductionCapacity   Evaluation     `json:"production_capacity" yaml:"production_capacity"`
	ShipmentUpperBound   Evaluation     `json:"shipment_upper_bound" yaml:"shipment_upper_bound"`
	InventorySource      Evaluation     `json:"inventory_source" yaml:"inventory_source"`
	InventoryDestination Evaluation     `json:"inventory_destination" yaml:"inventory_destination"`
	Strategic            []field.Record `json:"strategic_constraints" yaml:"strategic_constraints"`
}
