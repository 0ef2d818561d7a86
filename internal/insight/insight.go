// Package insight models the route-insight payload returned by the data
// service for one selection tuple. Every figure is a field.Value so that
// absent data survives decoding and is rendered explicitly.
package insight

import (
	"github.com/leapstack-labs/routelens/internal/field"
)

// Tuple identifies one route-insight request.
type Tuple struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	Mode        string `json:"mode" yaml:"mode"`
	Period      string `json:"period" yaml:"period"`
}

// Complete reports whether every level is non-empty.
func (t Tuple) Complete() bool {
	return t.Source != "" && t.Destination != "" && t.Mode != "" && t.Period != ""
}

func (t Tuple) String() string {
	return t.Source + " -> " + t.Destination + " via " + t.Mode + " @ " + t.Period
}

// RouteInsight is the full optimization snapshot for one tuple. Values are
// treated as immutable once decoded.
type RouteInsight struct {
	Route             field.Record      `json:"route" yaml:"route"`
	DecisionVariables DecisionVariables `json:"decision_variables" yaml:"decision_variables"`
	Objective         Objective         `json:"objective_function" yaml:"objective_function"`
	MassBalance       MassBalance       `json:"mass_balance" yaml:"mass_balance"`
	Constraints       Constraints       `json:"constraints" yaml:"constraints"`
	Metrics           Metrics           `json:"metrics" yaml:"metrics"`
	Feasibility       Feasibility       `json:"feasibility" yaml:"feasibility"`
}

// CostComponent is one term of the objective function.
type CostComponent struct {
	Formula     field.Value `json:"formula" yaml:"formula"`
	Calculation field.Value `json:"calculation" yaml:"calculation"`
	Value       field.Value `json:"value" yaml:"value"`
	Rate        field.Value `json:"rate" yaml:"rate"`
}

// SubTotal is a rate and its extended total.
type SubTotal struct {
	Rate  field.Value `json:"rate" yaml:"rate"`
	Total field.Value `json:"total" yaml:"total"`
}

// TransportCost splits transport into freight and handling.
type TransportCost struct {
	CostComponent `yaml:",inline"`
	Freight       SubTotal    `json:"freight" yaml:"freight"`
	Handling      SubTotal    `json:"handling" yaml:"handling"`
	RatePerTon    field.Value `json:"rate_per_ton" yaml:"rate_per_ton"`
}

// HoldingNode is the holding-cost block for one node.
type HoldingNode struct {
	EndingInventory field.Value `json:"ending_inventory" yaml:"ending_inventory"`
	SafetyStock     field.Value `json:"safety_stock" yaml:"safety_stock"`
	ExcessInventory field.Value `json:"excess_inventory" yaml:"excess_inventory"`
	Cost            field.Value `json:"cost" yaml:"cost"`
	Calculation     field.Value `json:"calculation" yaml:"calculation"`
}

// HoldingCost carries source and destination sub-blocks.
type HoldingCost struct {
	CostComponent `yaml:",inline"`
	Source        HoldingNode `json:"source" yaml:"source"`
	Destination   HoldingNode `json:"destination" yaml:"destination"`
}

// UnitCosts are per-ton rates.
type UnitCosts struct {
	ProductionPerTon     field.Value `json:"production_per_ton" yaml:"production_per_ton"`
	TransportPerTon      field.Value `json:"transport_per_ton" yaml:"transport_per_ton"`
	TotalDeliveredPerTon field.Value `json:"total_delivered_per_ton" yaml:"total_delivered_per_ton"`
}

// Objective is the objective-function block.
type Objective struct {
	Type            field.Value   `json:"type" yaml:"type"`
	Formula         field.Value   `json:"formula" yaml:"formula"`
	Production      CostComponent `json:"production_cost" yaml:"production_cost"`
	Transport       TransportCost `json:"transport_cost" yaml:"transport_cost"`
	Holding         HoldingCost   `json:"holding_cost" yaml:"holding_cost"`
	TotalZ          field.Value   `json:"total_Z" yaml:"total_Z"`
	FulfilledDemand field.Value   `json:"fulfilled_demand" yaml:"fulfilled_demand"`
	CostPerTon      field.Value   `json:"cost_per_ton" yaml:"cost_per_ton"`
	CostPerTonNote  field.Value   `json:"cost_per_ton_note" yaml:"cost_per_ton_note"`
	UnitCosts       UnitCosts     `json:"unit_costs" yaml:"unit_costs"`
}

// Ledger is one node's line of the mass-balance equation
// I[t] = I[t-1] + P[t] + inbound - outbound - D[t].
type Ledger struct {
	Node       field.Value `json:"node" yaml:"node"`
	Opening    field.Value `json:"I_t_minus_1" yaml:"opening"`
	Production field.Value `json:"P_t" yaml:"production"`
	Inbound    field.Value `json:"inbound" yaml:"inbound"`
	Outbound   field.Value `json:"outbound" yaml:"outbound"`
	Demand     field.Value `json:"D_t" yaml:"demand"`
	Closing    field.Value `json:"I_t" yaml:"closing"`
	Equation   field.Value `json:"equation_string" yaml:"equation"`
}

// MassBalance holds the source and destination ledgers.
type MassBalance struct {
	Equation    field.Value `json:"equation" yaml:"equation"`
	Source      Ledger      `json:"source_node" yaml:"source_node"`
	Destination Ledger      `json:"destination_node" yaml:"destination_node"`
}

// Metrics is the performance-metrics block.
type Metrics struct {
	CapacityUtilizationPct  field.Value   `json:"capacity_utilization_pct" yaml:"capacity_utilization_pct"`
	DemandFulfillmentPct    field.Value   `json:"demand_fulfillment_pct" yaml:"demand_fulfillment_pct"`
	InventoryTurnoverSource field.Value   `json:"inventory_turnover_source" yaml:"inventory_turnover_source"`
	InventoryTurnoverDest   field.Value   `json:"inventory_turnover_dest" yaml:"inventory_turnover_dest"`
	DaysOfSupplySource      field.Value   `json:"days_of_supply_source" yaml:"days_of_supply_source"`
	DaysOfSupplyDest        field.Value   `json:"days_of_supply_dest" yaml:"days_of_supply_dest"`
	TransportEfficiency     field.Value   `json:"transport_efficiency" yaml:"transport_efficiency"`
	CostBreakdown           CostBreakdown `json:"cost_breakdown_pct" yaml:"cost_breakdown_pct"`
}

// CostBreakdown is each objective term as a percentage of Z.
type CostBreakdown struct {
	Production field.Value `json:"production" yaml:"production"`
	Transport  field.Value `json:"transport" yaml:"transport"`
	Holding    field.Value `json:"holding" yaml:"holding"`
}

// Feasibility summarizes whether the tuple's plan is feasible.
type Feasibility struct {
	IsFeasible        field.Bool  `json:"is_feasible" yaml:"is_feasible"`
	CapacityViolation field.Value `json:"capacity_violation" yaml:"capacity_violation"`
	Issues            []string    `json:"issues" yaml:"issues"`
}
