package testutil

// InfeasibleRoutePayload is a route response for IU1 -> GU5 via T1 in
// 2024-Q1 whose plan is infeasible. It carries the service's quirks: absence
// markers, a bare Infinity token and a string max_capacity.
const InfeasibleRoutePayload = `{
  "success": true,
  "route": {
    "source": "IU1",
    "destination": "GU5",
    "mode": "T1",
    "period": "2024-Q1",
    "freight_cost": 410.5,
    "handling_cost": 0,
    "source_type": "IU",
    "destination_closing_max": "N/A",
    "constraints": []
  },
  "decision_variables": {
    "P_i_t": {
      "value": 12000,
      "description": "Production at IU1 in period 2024-Q1",
      "unit": "tons",
      "minimum_required": 15000,
      "formula": "max(0, SS_src + X + D_src - I_open)"
    },
    "X_i_j_m_t": {
      "value": 3000,
      "description": "Shipment from IU1 to GU5 via T1 in period 2024-Q1",
      "unit": "tons",
      "minimum_required": 2980,
      "formula": "T x VehicleCap = 100 x 30 = 3000",
      "excess": 20
    },
    "I_source_t": {
      "value": -500,
      "description": "Ending inventory at IU1",
      "unit": "tons",
      "safety_stock": 1000,
      "constraint_satisfied": false
    },
    "I_dest_t": {
      "value": 520,
      "description": "Ending inventory at GU5",
      "unit": "tons",
      "safety_stock": 500,
      "constraint_satisfied": true
    },
    "T_i_j_m_t": {
      "value": 100,
      "description": "Number of trips from IU1 to GU5 via T1",
      "unit": "trips",
      "vehicle_capacity": 30
    }
  },
  "objective_function": {
    "type": "Minimize",
    "formula": "Z = production + transport + holding",
    "production_cost": {"formula": "C_prod x P", "calculation": "850.00 x 12000", "value": 10200000, "rate": 850},
    "transport_cost": {
      "formula": "(C_fr + C_hand) x X",
      "freight": {"rate": 410.5, "total": 1231500},
      "handling": {"rate": 0, "total": 0},
      "calculation": "(410.50 + 0.00) x 3000",
      "value": 1231500,
      "rate_per_ton": 410.5
    },
    "holding_cost": {
      "formula": "h x max(I - SS, 0)",
      "rate": 8.5,
      "source": {"ending_inventory": -500, "safety_stock": 1000, "excess_inventory": 0, "cost": 0, "calculation": "8.5 x 0"},
      "destination": {"ending_inventory": 520, "safety_stock": 500, "excess_inventory": 20, "cost": 170, "calculation": "8.5 x 20"},
      "calculation": "0 + 170",
      "value": 170
    },
    "total_Z": 11431670,
    "fulfilled_demand": 2500,
    "cost_per_ton": 4572.67,
    "cost_per_ton_note": "Total Z / Fulfilled External Demand",
    "unit_costs": {"production_per_ton": 850, "transport_per_ton": 410.5, "total_delivered_per_ton": 1260.5}
  },
  "mass_balance": {
    "equation": "I[i,t] = I[i,t-1] + P[i,t] + inbound - outbound - D[i,t]",
    "source_node": {
      "node": "IU1", "I_t_minus_1": 1500, "P_t": 12000, "inbound": 0, "outbound": 3000, "D_t": 11000, "I_t": -500,
      "equation_string": "I[IU1,2024-Q1] = 1500 + 12000 + 0 - 3000 - 11000 = -500"
    },
    "destination_node": {
      "node": "GU5", "I_t_minus_1": 20, "P_t": 0, "inbound": 3000, "outbound": 0, "D_t": 2500, "I_t": 520,
      "equation_string": "I[GU5,2024-Q1] = 20 + 0 + 3000 - 0 - 2500 = 520"
    }
  },
  "constraints": {
    "production_capacity": {"name": "Production Capacity", "formula": "P <= Cap", "lhs": 12000, "rhs": 12000, "satisfied": true, "slack": 0, "utilization_pct": 100},
    "shipment_upper_bound": {"name": "Shipment Upper Bound", "formula": "X <= T x Cap_m", "lhs": 3000, "rhs": 3000, "satisfied": true, "vehicle_capacity": 30},
    "inventory_source": {"name": "Source Inventory Bounds", "formula": "SS <= I <= MaxCap", "safety_stock": 1000, "current": -500, "max_capacity": "unlimited", "satisfied": false},
    "inventory_destination": {"name": "Destination Inventory Bounds", "formula": "SS <= I <= MaxCap", "safety_stock": 500, "current": 520, "max_capacity": 8000, "satisfied": true},
    "strategic_constraints": [
      {"IU CODE": "IU1", "TRANSPORT CODE": "T1", "BOUND TYPEID": "U", "Value TypeID": "ABS", "Value": 5000}
    ]
  },
  "metrics": {
    "capacity_utilization_pct": 100,
    "demand_fulfillment_pct": 100,
    "inventory_turnover_source": 2,
    "inventory_turnover_dest": 125,
    "days_of_supply_source": -1.4,
    "days_of_supply_dest": Infinity,
    "transport_efficiency": 100,
    "cost_breakdown_pct": {"production": 89.23, "transport": 10.77, "holding": 0}
  },
  "feasibility": {
    "is_feasible": false,
    "capacity_violation": 3000,
    "issues": ["Demand exceeds capacity"]
  },
  "note": "All values derived exclusively from uploaded dataset"
}`

// FeasibleRoutePayload builds a minimal feasible route response whose
// route block names the given tuple, so tests can tell responses apart.
func FeasibleRoutePayload(source, destination, mode, period string) string {
	return `{
  "success": true,
  "route": {"source": "` + source + `", "destination": "` + destination + `", "mode": "` + mode + `", "period": "` + period + `"},
  "decision_variables": {"X_i_j_m_t": {"value": 0, "unit": "tons"}},
  "feasibility": {"is_feasible": true, "capacity_violation": 0, "issues": []}
}`
}

// ModelPayload is a trimmed GET model response.
const ModelPayload = `{
  "success": true,
  "model": {
    "name": "Multi-Period Clinker Supply Chain Optimization (MILP)",
    "description": "Optimize clinker transportation and inventory planning",
    "decision_variables": [
      {"symbol": "P[i,t]", "description": "Production at IU i in period t", "unit": "tons", "domain": ">= 0 (Continuous)"}
    ],
    "objective_function": {
      "type": "Minimize",
      "formula": "Z = production + transport + holding",
      "components": [{"name": "Production Cost", "formula": "C_prod x P", "source": "ProductionCost.csv"}]
    },
    "constraints": [{"name": "Mass Balance", "formula": "I[t] = I[t-1] + P + in - out - D", "source": "IUGUOpeningStock"}],
    "data_sources": {"ClinkerDemand.csv": "Demand at each node"},
    "transport_modes": {"T1": {"name": "Road", "capacity": 30}}
  },
  "summary": {}
}`

// AnalyticsPayloads are the analytics responses keyed by view.
var AnalyticsPayloads = map[string]string{
	"demand": `{
  "success": true,
  "data": {"total_demand": 12500.0, "by_period": {"1": 12500.0}, "by_plant": {"GU5": 8000.0, "GU7": 4500.0}, "plant_count": 2, "period_count": 1},
  "note": "Demand analytics computed from uploaded dataset"
}`,
	"capacity": `{
  "success": true,
  "data": {"error": "Capacity data not available in dataset"},
  "note": "Capacity analytics computed from uploaded dataset"
}`,
	"routes": `{
  "success": true,
  "data": [
    {"FROM IU CODE": "IU1", "TO IUGU CODE": "GU5", "TRANSPORT CODE": "T1", "FREIGHT COST": 410.5, "HANDLING COST": NaN, "TIME PERIOD": 1},
    {"FROM IU CODE": "IU2", "TO IUGU CODE": "GU7", "TRANSPORT CODE": "T2", "FREIGHT COST": 385.0, "HANDLING COST": 12.5, "TIME PERIOD": 1}
  ],
  "count": 2,
  "note": "Routes summary from uploaded dataset"
}`,
	"inventory": `{
  "success": true,
  "data": [{"plant": "GU5", "opening_stock": 1500.0, "periods": {}}],
  "note": "Inventory data from uploaded dataset"
}`,
}

// RawLogisticsPayload is the raw head of the Logistics sheet.
const RawLogisticsPayload = `{
  "success": true,
  "sheet": "Logistics",
  "columns": ["FROM IU CODE", "TO IUGU CODE", "TRANSPORT CODE", "FREIGHT COST"],
  "row_count": 2,
  "data": [
    {"FROM IU CODE": "IU1", "TO IUGU CODE": "GU5", "TRANSPORT CODE": "T1", "FREIGHT COST": 410.5},
    {"FROM IU CODE": "IU2", "TO IUGU CODE": "GU7", "TRANSPORT CODE": "T2", "FREIGHT COST": null}
  ],
  "note": "Raw data from uploaded dataset (first 100 rows)"
}`
