package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/routelens/internal/cli/output"
	"github.com/leapstack-labs/routelens/internal/dataservice"
	"github.com/leapstack-labs/routelens/internal/field"
)

var analyticsShort = map[string]string{
	dataservice.AnalyticsDemand:    "Demand totals by period and plant",
	dataservice.AnalyticsCapacity:  "Production capacity totals by period and plant",
	dataservice.AnalyticsRoutes:    "Average freight and handling cost per route",
	dataservice.AnalyticsInventory: "Opening stock and closing stock bounds per plant",
}

// NewAnalyticsCommand creates the analytics command group.
func NewAnalyticsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show dataset-wide analytics computed by the data service",
		Long: `Show the analytics the data service computes over the loaded dataset.
Figures the dataset does not contain are shown as not available.`,
		Example: `  routelens analytics demand
  routelens analytics routes -o json`,
	}
	for _, kind := range dataservice.AnalyticsKinds {
		cmd.AddCommand(newAnalyticsViewCommand(kind))
	}
	return cmd
}

func newAnalyticsViewCommand(kind string) *cobra.Command {
	return &cobra.Command{
		Use:   kind,
		Short: analyticsShort[kind],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContextWithoutSession(cmd)
			a, err := cc.Client.Analytics(cmd.Context(), kind)
			if err != nil {
				return err
			}
			return renderAnalytics(cc.Renderer, a)
		},
	}
}

// NewMetadataCommand creates the metadata command.
func NewMetadataCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "Show what the service derived from the loaded dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContextWithoutSession(cmd)
			md, err := cc.Client.Metadata(cmd.Context())
			if err != nil {
				return err
			}
			if handled, err := cc.Renderer.Data(md); handled {
				return err
			}
			return renderRecord(cc.Renderer, "Dataset metadata", md.Metadata)
		},
	}
}

// NewRawCommand creates the raw command.
func NewRawCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "raw <sheet>",
		Short: "Show the first rows of one dataset sheet",
		Long: `Show one sheet of the loaded dataset as the service parsed it. The
service returns at most its first 100 rows.`,
		Example: `  routelens raw Logistics
  routelens raw ClinkerDemand --limit 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			cc := NewCommandContextWithoutSession(cmd)
			sheet, err := cc.Client.RawSheet(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if limit > 0 && len(sheet.Rows) > limit {
				sheet.Rows = sheet.Rows[:limit]
			}
			return renderRawSheet(cc.Renderer, sheet)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many rows (0 shows all returned)")
	return cmd
}

// renderAnalytics prints a summary view as key/value pairs and a row view
// as a table.
func renderAnalytics(r *output.Renderer, a *dataservice.Analytics) error {
	if handled, err := r.Data(a); handled {
		return err
	}
	title := cases.Title(language.English).String(a.Kind) + " analytics"
	switch len(a.Records) {
	case 0:
		r.Header(2, title)
		r.Muted("No " + a.Kind + " data in the uploaded dataset.")
	case 1:
		if err := renderRecord(r, title, a.Records[0]); err != nil {
			return err
		}
	default:
		r.Header(2, title)
		renderRecordTable(r, columnsOf(a.Records), a.Records)
	}
	if a.Count.IsPresent() {
		r.KeyValue("Count", field.Render(a.Count, ""))
	}
	if a.Note != "" {
		r.Muted(a.Note)
	}
	return nil
}

// renderRawSheet prints a sheet head with the columns in sheet order.
func renderRawSheet(r *output.Renderer, s *dataservice.RawSheet) error {
	if handled, err := r.Data(s); handled {
		return err
	}
	r.Header(2, "Sheet "+s.Sheet)
	columns := s.Columns
	if len(columns) == 0 {
		columns = columnsOf(s.Rows)
	}
	if len(s.Rows) == 0 {
		r.Muted("The sheet has no rows.")
	} else {
		renderRecordTable(r, columns, s.Rows)
	}
	r.KeyValue("Rows shown", strconv.Itoa(len(s.Rows)))
	r.KeyValue("Rows in sheet", field.Render(s.RowCount, ""))
	return nil
}

// renderRecordTable prints one row per record. A column a record lacks is
// rendered as not available.
func renderRecordTable(r *output.Renderer, columns []string, records []field.Record) {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = field.Render(rec.Get(col), "")
		}
		rows = append(rows, row)
	}
	r.Table(columns, rows)
}

// columnsOf returns every key of records in first-seen order.
func columnsOf(records []field.Record) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, rec := range records {
		for _, e := range rec.Entries {
			if _, ok := seen[e.Key]; !ok {
				seen[e.Key] = struct{}{}
				cols = append(cols, e.Key)
			}
		}
	}
	return cols
}
