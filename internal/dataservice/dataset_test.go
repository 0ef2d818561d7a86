package dataservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/routelens/internal/field"
	"github.com/leapstack-labs/routelens/internal/testutil"
)

func TestClient_Analytics(t *testing.T) {
	c, fs := newLoadedClient(t)
	ctx := context.Background()

	tests := []struct {
		kind    string
		records int
		check   func(t *testing.T, a *Analytics)
	}{
		{kind: AnalyticsDemand, records: 1, check: func(t *testing.T, a *Analytics) {
			assert.Equal(t, "12,500", field.Render(a.Records[0].Get("total_demand"), ""))
			assert.Equal(t, "8,000", field.Render(a.Records[0].Get("by_plant.GU5"), ""))
			assert.True(t, a.Count.IsAbsent())
		}},
		{kind: AnalyticsCapacity, records: 1, check: func(t *testing.T, a *Analytics) {
			assert.Equal(t, "Capacity data not available in dataset", field.Render(a.Records[0].Get("error"), ""))
		}},
		{kind: AnalyticsRoutes, records: 2, check: func(t *testing.T, a *Analytics) {
			assert.Equal(t, "2", field.Render(a.Count, ""))
			assert.Equal(t, "NaN", field.Render(a.Records[0].Get("HANDLING COST"), ""))
			assert.Equal(t, "Routes summary from uploaded dataset", a.Note)
		}},
		{kind: AnalyticsInventory, records: 1, check: func(t *testing.T, a *Analytics) {
			assert.True(t, a.Records[0].Get("periods").IsAbsent(), "empty periods keep their key")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			a, err := c.Analytics(ctx, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, a.Kind)
			require.Len(t, a.Records, tt.records)
			tt.check(t, a)
		})
	}
	assert.Equal(t, len(AnalyticsKinds), fs.Calls("analytics"))
}

func TestClient_AnalyticsUnknownView(t *testing.T) {
	c, fs := newLoadedClient(t)
	_, err := c.Analytics(context.Background(), "weather")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown analytics view "weather"`)
	assert.Zero(t, fs.Calls("analytics"), "unknown views are not requested")
}

func TestClient_AnalyticsNothingLoaded(t *testing.T) {
	fs := testutil.NewFakeService(t, testutil.DemoDataset())
	c := New(fs.URL(), WithLogger(testutil.NewTestLogger(t)))

	_, err := c.Analytics(context.Background(), AnalyticsDemand)
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"No dataset loaded"}, se.Messages)
}

func TestClient_Metadata(t *testing.T) {
	c, _ := newLoadedClient(t)

	md, err := c.Metadata(context.Background())
	require.NoError(t, err)
	loaded, ok := md.DataLoaded.Get()
	assert.True(t, ok)
	assert.True(t, loaded)
	assert.Equal(t, "IU1", field.Render(md.Metadata.Get("plants[0]"), ""))
	assert.Equal(t, "2024-Q1", field.Render(md.Metadata.Get("periods[0]"), ""))
}

func TestClient_RawSheet(t *testing.T) {
	c, _ := newLoadedClient(t)
	ctx := context.Background()

	sheet, err := c.RawSheet(ctx, "Logistics")
	require.NoError(t, err)
	assert.Equal(t, "Logistics", sheet.Sheet)
	assert.Equal(t, []string{"FROM IU CODE", "TO IUGU CODE", "TRANSPORT CODE", "FREIGHT COST"}, sheet.Columns)
	assert.Equal(t, "2", field.Render(sheet.RowCount, ""))
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "410.5", field.Render(sheet.Cell(0, "FREIGHT COST"), ""))
	assert.True(t, sheet.Cell(1, "FREIGHT COST").IsAbsent())
	assert.True(t, sheet.Cell(5, "FREIGHT COST").IsAbsent())

	_, err = c.RawSheet(ctx, "Weather")
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{`Sheet "Weather" not found in uploaded dataset`}, se.Messages)
}

func TestDecodeRecords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{name: "missing", in: ``, want: 0},
		{name: "null", in: `null`, want: 0},
		{name: "object", in: `{"a": 1}`, want: 1},
		{name: "list", in: `[{"a": 1}, {"a": 2}]`, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeRecords([]byte(tt.in))
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}
