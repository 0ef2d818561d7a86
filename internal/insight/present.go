package insight

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/routelens/internal/field"
)

// Row is one rendered label/value pair. Absent marks a value the service
// did not report; Text then holds field.NotAvailable.
type Row struct {
	Label  string `json:"label" yaml:"label"`
	Text   string `json:"text" yaml:"text"`
	Absent bool   `json:"absent,omitempty" yaml:"absent,omitempty"`
}

// Section is a titled group of rows, the unit every front end displays.
type Section struct {
	Title string `json:"title" yaml:"title"`
	Rows  []Row  `json:"rows" yaml:"rows"`
}

const (
	tons    = " tons"
	pct     = "%"
	perTon  = " per ton"
	days    = " days"
	noUnits = ""
)

func row(label string, v field.Value, suffix string) Row {
	r := field.Display(v, suffix)
	return Row{Label: label, Text: r.Text, Absent: r.Absent}
}

func flag(label string, b field.Bool) Row {
	r := field.DisplayBool(b, "Satisfied", "Violated")
	return Row{Label: label, Text: r.Text, Absent: r.Absent}
}

// words turns a service key such as minimum_required into label text.
func words(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// Verdict is the feasibility headline.
func (f Feasibility) Verdict() string {
	return field.RenderBool(f.IsFeasible, "Feasible", "Infeasible")
}

// Sections renders the whole insight through the formatting adapter.
func (ri *RouteInsight) Sections() []Section {
	return []Section{
		ri.FeasibilitySection(),
		ri.DecisionSection(),
		ri.ObjectiveSection(),
		ri.MassBalanceSection(),
		ri.ConstraintSection(),
		ri.MetricSection(),
		ri.RouteSection(),
	}
}

func (ri *RouteInsight) FeasibilitySection() Section {
	f := ri.Feasibility
	s := Section{Title: "Feasibility", Rows: []Row{
		{Label: "Status", Text: f.Verdict(), Absent: f.IsFeasible.IsAbsent()},
		row("Capacity violation", f.CapacityViolation, tons),
	}}
	for _, issue := range f.Issues {
		s.Rows = append(s.Rows, Row{Label: "Issue", Text: issue})
	}
	return s
}

func (ri *RouteInsight) DecisionSection() Section {
	s := Section{Title: "Decision variables"}
	for _, v := range ri.DecisionVariables {
		unit := noUnits
		if u, ok := v.Unit.Text(); ok {
			unit = " " + u
		}
		s.Rows = append(s.Rows,
			row(v.Symbol, v.Value, unit),
			row(v.Symbol+" description", v.Description, noUnits),
			row(v.Symbol+" formula", v.Formula, noUnits),
			flag(v.Symbol+" safety stock", v.Satisfied),
		)
		for _, e := range v.Details.Entries {
			s.Rows = append(s.Rows, row(v.Symbol+" "+words(e.Key), e.Value, noUnits))
		}
	}
	return s
}

func (ri *RouteInsight) ObjectiveSection() Section {
	o := ri.Objective
	rows := []Row{
		row("Type", o.Type, noUnits),
		row("Formula", o.Formula, noUnits),
	}
	rows = append(rows, costRows("Production", o.Production)...)
	rows = append(rows, costRows("Transport", o.Transport.CostComponent)...)
	rows = append(rows,
		row("Transport rate per ton", o.Transport.RatePerTon, perTon),
		row("Freight rate", o.Transport.Freight.Rate, perTon),
		row("Freight total", o.Transport.Freight.Total, noUnits),
		row("Handling rate", o.Transport.Handling.Rate, perTon),
		row("Handling total", o.Transport.Handling.Total, noUnits),
	)
	rows = append(rows, costRows("Holding", o.Holding.CostComponent)...)
	rows = append(rows, holdingRows("Source", o.Holding.Source)...)
	rows = append(rows, holdingRows("Destination", o.Holding.Destination)...)
	rows = append(rows,
		row("Total Z", o.TotalZ, noUnits),
		row("Fulfilled demand", o.FulfilledDemand, tons),
		row("Cost per ton", o.CostPerTon, noUnits),
		row("Cost per ton note", o.CostPerTonNote, noUnits),
		row("Production per ton", o.UnitCosts.ProductionPerTon, noUnits),
		row("Transport per ton", o.UnitCosts.TransportPerTon, noUnits),
		row("Delivered per ton", o.UnitCosts.TotalDeliveredPerTon, noUnits),
	)
	return Section{Title: "Objective function", Rows: rows}
}

func costRows(prefix string, c CostComponent) []Row {
	return []Row{
		row(prefix+" cost", c.Value, noUnits),
		row(prefix+" rate", c.Rate, perTon),
		row(prefix+" formula", c.Formula, noUnits),
		row(prefix+" calculation", c.Calculation, noUnits),
	}
}

func holdingRows(prefix string, h HoldingNode) []Row {
	return []Row{
		row(prefix+" ending inventory", h.EndingInventory, tons),
		row(prefix+" safety stock", h.SafetyStock, tons),
		row(prefix+" excess inventory", h.ExcessInventory, tons),
		row(prefix+" holding cost", h.Cost, noUnits),
		row(prefix+" holding calculation", h.Calculation, noUnits),
	}
}

func ledgerRows(prefix string, l Ledger) []Row {
	return []Row{
		row(prefix+" node", l.Node, noUnits),
		row(prefix+" opening inventory", l.Opening, tons),
		row(prefix+" production", l.Production, tons),
		row(prefix+" inbound", l.Inbound, tons),
		row(prefix+" outbound", l.Outbound, tons),
		row(prefix+" demand", l.Demand, tons),
		row(prefix+" closing inventory", l.Closing, tons),
		row(prefix+" equation", l.Equation, noUnits),
	}
}

func (ri *RouteInsight) MassBalanceSection() Section {
	m := ri.MassBalance
	rows := []Row{row("Equation", m.Equation, noUnits)}
	rows = append(rows, ledgerRows("Source", m.Source)...)
	rows = append(rows, ledgerRows("Destination", m.Destination)...)
	return Section{Title: "Mass balance", Rows: rows}
}

// evaluationTerms lists the terms each fixed constraint is expected to
// report; a missing one renders as not available.
var evaluationTerms = []struct {
	label string
	pick  func(Constraints) Evaluation
	terms []string
}{
	{"Production capacity", func(c Constraints) Evaluation { return c.ProductionCapacity }, []string{"lhs", "rhs", "slack", "utilization_pct"}},
	{"Shipment upper bound", func(c Constraints) Evaluation { return c.ShipmentUpperBound }, []string{"lhs", "rhs", "vehicle_capacity"}},
	{"Source inventory bounds", func(c Constraints) Evaluation { return c.InventorySource }, []string{"safety_stock", "current", "max_capacity"}},
	{"Destination inventory bounds", func(c Constraints) Evaluation { return c.InventoryDestination }, []string{"safety_stock", "current", "max_capacity"}},
}

func termSuffix(key string) string {
	switch key {
	case "utilization_pct":
		return pct
	case "vehicle_capacity", "safety_stock", "current", "max_capacity", "slack":
		return tons
	default:
		return noUnits
	}
}

func (ri *RouteInsight) ConstraintSection() Section {
	s := Section{Title: "Constraints"}
	for _, et := range evaluationTerms {
		ev := et.pick(ri.Constraints)
		label := et.label
		if name, ok := ev.Name.Text(); ok {
			label = name
		}
		s.Rows = append(s.Rows, flag(label, ev.Satisfied), row(label+" formula", ev.Formula, noUnits))
		for _, key := range et.terms {
			s.Rows = append(s.Rows, row(label+" "+words(key), ev.Term(key), termSuffix(key)))
		}
		for _, e := range ev.Terms.Entries {
			if !slices.Contains(et.terms, e.Key) {
				s.Rows = append(s.Rows, row(label+" "+words(e.Key), e.Value, termSuffix(e.Key)))
			}
		}
	}
	for i, rec := range ri.Constraints.Strategic {
		for _, e := range rec.Entries {
			s.Rows = append(s.Rows, row(strategicLabel(i, e.Key), e.Value, noUnits))
		}
	}
	return s
}

func strategicLabel(i int, key string) string {
	return fmt.Sprintf("Strategic %d %s", i+1, key)
}

func (ri *RouteInsight) MetricSection() Section {
	m := ri.Metrics
	return Section{Title: "Metrics", Rows: []Row{
		row("Capacity utilization", m.CapacityUtilizationPct, pct),
		row("Demand fulfillment", m.DemandFulfillmentPct, pct),
		row("Inventory turnover (source)", m.InventoryTurnoverSource, noUnits),
		row("Inventory turnover (destination)", m.InventoryTurnoverDest, noUnits),
		row("Days of supply (source)", m.DaysOfSupplySource, days),
		row("Days of supply (destination)", m.DaysOfSupplyDest, days),
		row("Transport efficiency", m.TransportEfficiency, pct),
		row("Production share of cost", m.CostBreakdown.Production, pct),
		row("Transport share of cost", m.CostBreakdown.Transport, pct),
		row("Holding share of cost", m.CostBreakdown.Holding, pct),
	}}
}

// RouteSection lists the raw route facts with their dataset keys.
func (ri *RouteInsight) RouteSection() Section {
	s := Section{Title: "Route data"}
	for _, e := range ri.Route.Entries {
		s.Rows = append(s.Rows, row(e.Key, e.Value, noUnits))
	}
	return s
}
